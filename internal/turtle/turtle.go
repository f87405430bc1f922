package turtle

import (
	"fmt"
	"math"

	"github.com/san-kum/fractal/internal/fractal"
)

// NarrowWidth is the surface width below which the drawing is scaled from the height instead.
const NarrowWidth = 600

// narrowScale multiplies the height on narrow surfaces.
const narrowScale = 2

// Pen receives the drawing calls of a walk. LineTo strokes from the pen position immediately.
type Pen interface {
	MoveTo(x, y float64)
	LineTo(x, y float64) error
}

// Canvas is a Pen that can also be cleared and transformed.
type Canvas interface {
	Pen
	Size() (width, height int)
	Clear()
	Translate(x, y float64)
	Rotate(angle float64)
}

// Stats summarises one walk.
type Stats struct {
	Segments int
	Restores int
	MaxDepth int
}

// Frame is the placement of a drawing inside a surface.
type Frame struct {
	Scale          float64
	StrokeLength   float64
	OriginX        float64
	OriginY        float64
	Rotation       float64 // radians
	InitialHeading float64 // degrees
}

// Setup computes the frame for a surface of width x height.
// A zero iteration count is treated as one so the stroke length stays finite.
func Setup(width, height, iterations int, turnAngle float64, view fractal.ViewScaling) Frame {
	scale := float64(width)
	if width < NarrowWidth {
		scale = float64(height * narrowScale)
	}
	div := iterations
	if div < 1 {
		div = 1
	}
	return Frame{
		Scale:          scale,
		StrokeLength:   view.StrokeLength * scale / float64(div),
		OriginX:        view.OriginX * float64(width),
		OriginY:        view.OriginY * float64(height),
		Rotation:       view.InitialHeading,
		InitialHeading: turnAngle,
	}
}

// Walk interprets seq against pen, starting from start.
//
//	F A B  move forward and stroke
//	+      turn by -turnAngle
//	-      turn by +turnAngle
//	[      save the cursor
//	]      restore the cursor and move the pen there without stroking
//
// Any other symbol is ignored. A ']' without a saved cursor fails with
// fractal.ErrMalformedSequence.
func Walk(seq string, turnAngle, strokeLength float64, start Cursor, pen Pen) (Cursor, Stats, error) {
	var (
		cur   = start
		stack Stack
		stats Stats
	)
	for i := 0; i < len(seq); i++ {
		switch seq[i] {
		case 'F', 'A', 'B':
			rad := cur.Heading * math.Pi / 180
			cur.X += strokeLength * math.Cos(rad)
			cur.Y += strokeLength * math.Sin(rad)
			if err := pen.LineTo(cur.X, cur.Y); err != nil {
				return cur, stats, fmt.Errorf("stroke segment %d: %w", stats.Segments+1, err)
			}
			stats.Segments++
		case '+':
			cur.Heading -= turnAngle
		case '-':
			cur.Heading += turnAngle
		case '[':
			stack.Push(cur)
		case ']':
			saved, err := stack.Pop()
			if err != nil {
				return cur, stats, fmt.Errorf("%w at symbol %d", err, i)
			}
			cur = saved
			pen.MoveTo(cur.X, cur.Y)
			stats.Restores++
		}
	}
	stats.MaxDepth = stack.MaxDepth()
	return cur, stats, nil
}

// Interpret draws seq for def onto canvas: clear, move to the origin, rotate, then walk.
func Interpret(seq string, def *fractal.Definition, iterations int, canvas Canvas) (Stats, error) {
	width, height := canvas.Size()
	frame := Setup(width, height, iterations, def.TurnAngle, def.View)

	canvas.Clear()
	canvas.Translate(frame.OriginX, frame.OriginY)
	canvas.MoveTo(0, 0)
	canvas.Rotate(frame.Rotation)

	_, stats, err := Walk(seq, def.TurnAngle, frame.StrokeLength, Cursor{Heading: frame.InitialHeading}, canvas)
	return stats, err
}
