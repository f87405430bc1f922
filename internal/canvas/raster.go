// Package canvas provides raster drawing surfaces backed by gogpu/gg.
package canvas

import (
	"fmt"
	"image"
	"io"

	"github.com/gogpu/gg"
)

// Raster is a gg context over a pixmap it owns. Coordinates passed to the
// drawing calls are local; Translate and Rotate compose the current transform.
type Raster struct {
	ctx    *gg.Context
	pixmap *gg.Pixmap
	stroke string
	width  float64

	cx, cy float64 // pen position in local coordinates
}

// Option configures a Raster.
type Option func(*Raster)

// WithStroke sets the stroke color as a hex string.
func WithStroke(hex string) Option {
	return func(r *Raster) { r.stroke = hex }
}

// WithLineWidth sets the stroke width in pixels.
func WithLineWidth(w float64) Option {
	return func(r *Raster) { r.width = w }
}

// NewRaster creates a transparent raster surface of width x height pixels.
func NewRaster(width, height int, opts ...Option) (*Raster, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("canvas: invalid size %dx%d", width, height)
	}
	r := &Raster{
		pixmap: gg.NewPixmap(width, height),
		stroke: "#000000",
		width:  1,
	}
	for _, opt := range opts {
		opt(r)
	}
	r.ctx = gg.NewContext(width, height, gg.WithPixmap(r.pixmap))
	r.ctx.SetHexColor(r.stroke)
	r.ctx.SetLineWidth(r.width)
	return r, nil
}

func (r *Raster) Size() (int, int) {
	return r.pixmap.Width(), r.pixmap.Height()
}

// Clear resets every pixel to transparent and the transform to identity.
func (r *Raster) Clear() {
	r.ctx.Identity()
	r.ctx.ClearPath()
	r.ctx.Clear()
	r.cx, r.cy = 0, 0
}

func (r *Raster) Translate(x, y float64) {
	r.ctx.Translate(x, y)
}

func (r *Raster) Rotate(angle float64) {
	r.ctx.Rotate(angle)
}

func (r *Raster) MoveTo(x, y float64) {
	r.cx, r.cy = x, y
}

// LineTo strokes one segment from the pen position to (x, y).
func (r *Raster) LineTo(x, y float64) error {
	r.ctx.MoveTo(r.cx, r.cy)
	r.ctx.LineTo(x, y)
	r.cx, r.cy = x, y
	if err := r.ctx.Stroke(); err != nil {
		return fmt.Errorf("canvas: stroke: %w", err)
	}
	return nil
}

// Pixels returns a copy of the buffer as straight (non-premultiplied) RGBA,
// row-major, 4 bytes per pixel.
func (r *Raster) Pixels() ([]byte, error) {
	if err := r.ctx.FlushGPU(); err != nil {
		return nil, fmt.Errorf("canvas: flush: %w", err)
	}
	src := r.pixmap.Data()
	buf := make([]byte, len(src))
	for i := 0; i+3 < len(src); i += 4 {
		a := src[i+3]
		buf[i] = unpremul(src[i], a)
		buf[i+1] = unpremul(src[i+1], a)
		buf[i+2] = unpremul(src[i+2], a)
		buf[i+3] = a
	}
	return buf, nil
}

// SetPixels replaces the whole buffer in one step. buf holds straight RGBA
// in the layout Pixels returns.
func (r *Raster) SetPixels(buf []byte) error {
	dst := r.pixmap.Data()
	if len(buf) != len(dst) {
		return fmt.Errorf("canvas: buffer of %d bytes, surface holds %d", len(buf), len(dst))
	}
	for i := 0; i+3 < len(buf); i += 4 {
		a := buf[i+3]
		dst[i] = premul(buf[i], a)
		dst[i+1] = premul(buf[i+1], a)
		dst[i+2] = premul(buf[i+2], a)
		dst[i+3] = a
	}
	return nil
}

// The pixmap stores premultiplied alpha.
func premul(c, a byte) byte {
	return byte((uint32(c)*uint32(a) + 127) / 255)
}

func unpremul(c, a byte) byte {
	switch a {
	case 0:
		return 0
	case 255:
		return c
	}
	v := (uint32(c)*255 + uint32(a)/2) / uint32(a)
	return byte(min(v, 255))
}

// Image returns a snapshot of the surface.
func (r *Raster) Image() *image.RGBA {
	_ = r.ctx.FlushGPU()
	return r.pixmap.ToImage()
}

func (r *Raster) EncodePNG(w io.Writer) error {
	return r.ctx.EncodePNG(w)
}

func (r *Raster) SavePNG(path string) error {
	return r.ctx.SavePNG(path)
}

func (r *Raster) Close() error {
	return r.ctx.Close()
}
