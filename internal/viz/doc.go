// Package viz draws rendered fractals in the terminal.
//
// A [Canvas] packs 2x4 sub-pixels into each braille cell and can carry one
// color per cell. [FromPixels] and [FromImage] downsample a raster render
// onto a canvas so the gradient survives in the preview.
//
// The remaining helpers are lipgloss styles shared by the CLI and the
// picker.
package viz
