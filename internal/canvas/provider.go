package canvas

import (
	"fmt"

	"github.com/san-kum/fractal/internal/fractal"
	"github.com/san-kum/fractal/internal/render"
)

// Provider hands out fresh raster surfaces of a fixed size.
type Provider struct {
	Width     int
	Height    int
	Stroke    string
	LineWidth float64
}

// Acquire returns a new Raster, or fractal.ErrSurfaceUnavailable when the size is unusable.
func (p Provider) Acquire() (render.Surface, error) {
	var opts []Option
	if p.Stroke != "" {
		opts = append(opts, WithStroke(p.Stroke))
	}
	if p.LineWidth > 0 {
		opts = append(opts, WithLineWidth(p.LineWidth))
	}
	r, err := NewRaster(p.Width, p.Height, opts...)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", fractal.ErrSurfaceUnavailable, err)
	}
	return r, nil
}

var _ render.Surface = (*Raster)(nil)
