package viz

import (
	"fmt"
	"image"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/image/draw"

	"github.com/san-kum/fractal/internal/gradient"
)

// FromPixels previews a row-major RGBA buffer of width x height pixels on a
// canvas of cols x rows cells. Color channels are read as straight alpha,
// which is what the gradient pass leaves behind.
func FromPixels(buf []byte, width, height, cols, rows int) (*Canvas, error) {
	if width <= 0 || height <= 0 || len(buf) != width*height*4 {
		return nil, fmt.Errorf("viz: buffer of %d bytes does not match %dx%d", len(buf), width, height)
	}
	img := &image.NRGBA{
		Pix:    buf,
		Stride: width * 4,
		Rect:   image.Rect(0, 0, width, height),
	}
	return FromImage(img, cols, rows), nil
}

// FromImage previews img on a canvas of cols x rows cells, keeping its aspect
// ratio. Every sub-pixel covering at least one non-transparent source pixel is
// lit, so one pixel wide strokes survive heavy downscaling. Cell colors come
// from a bilinear downscale of the source.
func FromImage(img image.Image, cols, rows int) *Canvas {
	c := NewCanvas(cols, rows)
	b := img.Bounds()
	if b.Empty() || cols <= 0 || rows <= 0 {
		return c
	}

	dst := fit(b.Dx(), b.Dy(), cols*2, rows*4)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		sy := dst.Min.Y + (y-b.Min.Y)*dst.Dy()/b.Dy()
		for x := b.Min.X; x < b.Max.X; x++ {
			if alpha(img, x, y) == 0 {
				continue
			}
			c.Set(dst.Min.X+(x-b.Min.X)*dst.Dx()/b.Dx(), sy)
		}
	}

	cells := image.Rect(dst.Min.X/2, dst.Min.Y/4, (dst.Max.X+1)/2, (dst.Max.Y+3)/4)
	colors := image.NewNRGBA(image.Rect(0, 0, cols, rows))
	draw.BiLinear.Scale(colors, cells, img, b, draw.Src, nil)

	for row := 0; row < rows; row++ {
		for col := 0; col < cols; col++ {
			if c.Grid[row][col] == blank {
				continue
			}
			px := colors.NRGBAAt(col, row)
			if px.A == 0 {
				continue
			}
			hex := gradient.Color{R: float32(px.R), G: float32(px.G), B: float32(px.B)}.Hex()
			c.SetColor(col, row, lipgloss.Color(hex))
		}
	}
	return c
}

// fit returns the largest rectangle with the aspect ratio of w x h that fits
// centered in cw x ch.
func fit(w, h, cw, ch int) image.Rectangle {
	dw, dh := cw, h*cw/w
	if dh > ch {
		dw, dh = w*ch/h, ch
	}
	if dw < 1 {
		dw = 1
	}
	if dh < 1 {
		dh = 1
	}
	x0, y0 := (cw-dw)/2, (ch-dh)/2
	return image.Rect(x0, y0, x0+dw, y0+dh)
}

func alpha(img image.Image, x, y int) uint8 {
	switch im := img.(type) {
	case *image.NRGBA:
		return im.Pix[im.PixOffset(x, y)+3]
	case *image.RGBA:
		return im.Pix[im.PixOffset(x, y)+3]
	}
	_, _, _, a := img.At(x, y).RGBA()
	return uint8(a >> 8)
}
