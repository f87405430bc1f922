package export

import (
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/san-kum/fractal/internal/gradient"
	"github.com/san-kum/fractal/internal/render"
)

// affine is a 2D transform in canvas order: x' = a*x + c*y + e, y' = b*x + d*y + f.
type affine struct {
	a, b, c, d, e, f float64
}

func identity() affine { return affine{a: 1, d: 1} }

func (m affine) translate(x, y float64) affine {
	m.e += m.a*x + m.c*y
	m.f += m.b*x + m.d*y
	return m
}

func (m affine) rotate(angle float64) affine {
	sin, cos := math.Sincos(angle)
	return affine{
		a: m.a*cos + m.c*sin,
		b: m.b*cos + m.d*sin,
		c: m.c*cos - m.a*sin,
		d: m.d*cos - m.b*sin,
		e: m.e,
		f: m.f,
	}
}

func (m affine) apply(x, y float64) (float64, float64) {
	return m.a*x + m.c*y + m.e, m.b*x + m.d*y + m.f
}

// SVG is a vector surface. Strokes are transformed into surface
// coordinates and collected into a single path.
//
// It has no pixel buffer; the renderer hands it the gradient instead and it
// is drawn as a vertical linear gradient, which is what row-major scan order
// amounts to.
type SVG struct {
	width, height int
	lineWidth     float64
	stroke        string

	m        affine
	penX     float64
	penY     float64
	moved    bool
	path     strings.Builder
	segments int

	start, end *gradient.Color
}

func NewSVG(width, height int, lineWidth float64) *SVG {
	if lineWidth <= 0 {
		lineWidth = 1
	}
	return &SVG{
		width:     width,
		height:    height,
		lineWidth: lineWidth,
		stroke:    "#000000",
		m:         identity(),
		moved:     true,
	}
}

func (s *SVG) Size() (int, int) { return s.width, s.height }

func (s *SVG) Clear() {
	s.m = identity()
	s.path.Reset()
	s.segments = 0
	s.penX, s.penY = 0, 0
	s.moved = true
	s.start, s.end = nil, nil
}

func (s *SVG) Translate(x, y float64) { s.m = s.m.translate(x, y) }

func (s *SVG) Rotate(angle float64) { s.m = s.m.rotate(angle) }

func (s *SVG) MoveTo(x, y float64) {
	s.penX, s.penY = s.m.apply(x, y)
	s.moved = true
}

func (s *SVG) LineTo(x, y float64) error {
	if s.moved {
		fmt.Fprintf(&s.path, "M%.2f,%.2f", s.penX, s.penY)
		s.moved = false
	}
	s.penX, s.penY = s.m.apply(x, y)
	fmt.Fprintf(&s.path, " L%.2f,%.2f", s.penX, s.penY)
	s.segments++
	return nil
}

func (s *SVG) Pixels() ([]byte, error)    { return nil, render.ErrNoPixels }
func (s *SVG) SetPixels(buf []byte) error { return render.ErrNoPixels }

// SetGradient colors the path from start at the top edge to end at the bottom edge.
func (s *SVG) SetGradient(start, end gradient.Color) {
	s.start, s.end = &start, &end
}

// Segments returns the number of strokes recorded since the last Clear.
func (s *SVG) Segments() int { return s.segments }

// String renders the document.
func (s *SVG) String() string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
`, s.width, s.height, s.width, s.height))

	stroke := s.stroke
	if s.start != nil && s.end != nil {
		sb.WriteString(fmt.Sprintf(`<defs>
<linearGradient id="scan" gradientUnits="userSpaceOnUse" x1="0" y1="0" x2="0" y2="%d">
<stop offset="0" stop-color="%s"/>
<stop offset="1" stop-color="%s"/>
</linearGradient>
</defs>
`, s.height, s.start.Hex(), s.end.Hex()))
		stroke = "url(#scan)"
	}

	if s.segments > 0 {
		sb.WriteString(fmt.Sprintf(`<path fill="none" stroke="%s" stroke-width="%g" stroke-linecap="round" d="%s"/>
`, stroke, s.lineWidth, s.path.String()))
	}

	sb.WriteString("</svg>\n")
	return sb.String()
}

func (s *SVG) WriteTo(w io.Writer) (int64, error) {
	n, err := io.WriteString(w, s.String())
	return int64(n), err
}

var _ render.Surface = (*SVG)(nil)
