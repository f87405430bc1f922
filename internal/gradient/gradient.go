// Package gradient recolors drawn pixels of an RGBA buffer with a two color ramp.
package gradient

import (
	"fmt"
	"strings"

	colorful "github.com/lucasb-eyer/go-colorful"

	"github.com/san-kum/fractal/internal/fractal"
)

// Color holds 8 bit channel values as floats so interpolation stays exact until truncation.
type Color struct {
	R, G, B float32
}

// ParseHex parses "#rrggbb" or "rrggbb".
func ParseHex(s string) (Color, error) {
	hex := strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(hex) != 6 {
		return Color{}, fmt.Errorf("%w: %q: want 6 hex digits", fractal.ErrInvalidColor, s)
	}
	c, err := colorful.Hex("#" + hex)
	if err != nil {
		return Color{}, fmt.Errorf("%w: %q: %v", fractal.ErrInvalidColor, s, err)
	}
	r, g, b := c.RGB255()
	return Color{R: float32(r), G: float32(g), B: float32(b)}, nil
}

// Hex formats c as "#rrggbb".
func (c Color) Hex() string {
	return fmt.Sprintf("#%02x%02x%02x", uint8(c.R), uint8(c.G), uint8(c.B))
}

// Lerp interpolates between c and end, truncating each channel to 8 bits.
func (c Color) Lerp(end Color, t float32) (r, g, b uint8) {
	return channel(c.R, end.R, t), channel(c.G, end.G, t), channel(c.B, end.B, t)
}

func channel(a, b, t float32) uint8 {
	v := a + (b-a)*t
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v)
}

// Recolor rewrites every drawn pixel of buf in place and returns how many were touched.
//
// A pixel counts as drawn when its alpha byte is non-zero. Its RGB becomes
// the interpolation between start and end at i/len(buf), where i is the
// offset of that alpha byte, so the ramp follows raster scan order rather
// than the path of the curve. Alpha and undrawn pixels are left alone.
func Recolor(buf []byte, width, height int, start, end Color) (int, error) {
	total := width * height * 4
	if width <= 0 || height <= 0 || len(buf) != total {
		return 0, fmt.Errorf("gradient: buffer of %d bytes does not match %dx%d", len(buf), width, height)
	}

	n := 0
	for i := 3; i < total; i += 4 {
		if buf[i] == 0 {
			continue
		}
		fraction := float32(i) / float32(total)
		buf[i-3], buf[i-2], buf[i-1] = start.Lerp(end, fraction)
		n++
	}
	return n, nil
}
