package turtle

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/san-kum/fractal/internal/fractal"
)

type point struct{ x, y float64 }

type segment struct{ from, to point }

// recorder is a Canvas that keeps every call for inspection.
type recorder struct {
	w, h       int
	pos        point
	segments   []segment
	moves      []point
	calls      []string
	translated point
	rotated    float64
}

func (r *recorder) Size() (int, int) { return r.w, r.h }
func (r *recorder) Clear()           { r.calls = append(r.calls, "clear") }

func (r *recorder) Translate(x, y float64) {
	r.translated = point{x, y}
	r.calls = append(r.calls, "translate")
}

func (r *recorder) Rotate(angle float64) {
	r.rotated = angle
	r.calls = append(r.calls, "rotate")
}

func (r *recorder) MoveTo(x, y float64) {
	r.pos = point{x, y}
	r.moves = append(r.moves, r.pos)
	r.calls = append(r.calls, "move")
}

func (r *recorder) LineTo(x, y float64) error {
	next := point{x, y}
	r.segments = append(r.segments, segment{r.pos, next})
	r.pos = next
	r.calls = append(r.calls, "line")
	return nil
}

func TestWalkSquareCloses(t *testing.T) {
	rec := &recorder{}
	end, stats, err := Walk("F+F+F+F", 90, 10, Cursor{}, rec)
	require.NoError(t, err)

	assert.Equal(t, 4, stats.Segments)
	require.Len(t, rec.segments, 4)
	for _, s := range rec.segments {
		dx, dy := s.to.x-s.from.x, s.to.y-s.from.y
		assert.InDelta(t, 100, dx*dx+dy*dy, 1e-9)
	}
	assert.InDelta(t, 0, end.X, 1e-9)
	assert.InDelta(t, 0, end.Y, 1e-9)
	// four strokes, three turns
	assert.InDelta(t, -270, end.Heading, 1e-9)
}

func TestWalkTurnDirections(t *testing.T) {
	rec := &recorder{}
	_, _, err := Walk("-F", 90, 1, Cursor{}, rec)
	require.NoError(t, err)
	assert.InDelta(t, 0, rec.pos.x, 1e-9)
	assert.InDelta(t, 1, rec.pos.y, 1e-9)

	rec = &recorder{}
	_, _, err = Walk("+F", 90, 1, Cursor{}, rec)
	require.NoError(t, err)
	assert.InDelta(t, 0, rec.pos.x, 1e-9)
	assert.InDelta(t, -1, rec.pos.y, 1e-9)
}

func TestWalkBranchRestoresCursor(t *testing.T) {
	rec := &recorder{}
	end, stats, err := Walk("F[+F]F", 90, 1, Cursor{}, rec)
	require.NoError(t, err)

	assert.Equal(t, 3, stats.Segments)
	assert.Equal(t, 1, stats.Restores)
	assert.Equal(t, 1, stats.MaxDepth)
	require.Len(t, rec.moves, 1)
	// restored to the position saved at '[' rather than the branch tip
	assert.InDelta(t, 1, rec.moves[0].x, 1e-9)
	assert.InDelta(t, 0, rec.moves[0].y, 1e-9)

	// the third stroke continues from the restored cursor with the restored heading
	last := rec.segments[2]
	assert.InDelta(t, 1, last.from.x, 1e-9)
	assert.InDelta(t, 2, last.to.x, 1e-9)
	assert.InDelta(t, 0, last.to.y, 1e-9)
	assert.InDelta(t, 0, end.Heading, 1e-9)
}

func TestWalkIgnoresPlaceholders(t *testing.T) {
	rec := &recorder{}
	_, stats, err := Walk("XYZFVW", 45, 1, Cursor{}, rec)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Segments)
}

func TestWalkABDrawForward(t *testing.T) {
	rec := &recorder{}
	_, stats, err := Walk("AB", 60, 2, Cursor{}, rec)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Segments)
	assert.InDelta(t, 4, rec.pos.x, 1e-9)
}

func TestWalkUnbalancedPop(t *testing.T) {
	tests := []string{"]", "F]", "[F]]"}
	for _, seq := range tests {
		_, _, err := Walk(seq, 90, 1, Cursor{}, &recorder{})
		assert.ErrorIs(t, err, fractal.ErrMalformedSequence, "sequence %q", seq)
	}
}

type failingPen struct{ recorder }

func (f *failingPen) LineTo(x, y float64) error { return errors.New("surface lost") }

func TestWalkPropagatesPenErrors(t *testing.T) {
	_, stats, err := Walk("FF", 90, 1, Cursor{}, &failingPen{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "surface lost")
	assert.Equal(t, 0, stats.Segments)
}

func TestStack(t *testing.T) {
	var s Stack
	_, err := s.Pop()
	assert.ErrorIs(t, err, fractal.ErrMalformedSequence)

	s.Push(Cursor{X: 1})
	s.Push(Cursor{X: 2})
	assert.Equal(t, 2, s.Len())

	c, err := s.Pop()
	require.NoError(t, err)
	assert.Equal(t, 2.0, c.X)
	assert.Equal(t, 2, s.MaxDepth())
}

func TestSetupScale(t *testing.T) {
	view := fractal.ViewScaling{InitialHeading: 1.5, StrokeLength: 0.1, OriginX: 0.5, OriginY: 0.25}

	wide := Setup(800, 400, 4, 30, view)
	assert.Equal(t, 800.0, wide.Scale)
	assert.InDelta(t, 20, wide.StrokeLength, 1e-9)
	assert.Equal(t, 400.0, wide.OriginX)
	assert.Equal(t, 100.0, wide.OriginY)
	assert.Equal(t, 1.5, wide.Rotation)
	assert.Equal(t, 30.0, wide.InitialHeading)

	narrow := Setup(599, 300, 2, 30, view)
	assert.Equal(t, 600.0, narrow.Scale)
	assert.InDelta(t, 30, narrow.StrokeLength, 1e-9)

	zero := Setup(800, 400, 0, 30, view)
	assert.InDelta(t, 80, zero.StrokeLength, 1e-9)
}

func TestInterpretCallOrder(t *testing.T) {
	def := &fractal.Definition{
		Name:          "line",
		Variables:     "F",
		Axiom:         "F",
		Rules:         map[byte]string{'F': "FF"},
		TurnAngle:     0,
		MaxIterations: 3,
		View:          fractal.ViewScaling{InitialHeading: 0.5, StrokeLength: 0.1, OriginX: 0.5, OriginY: 0.5},
	}
	rec := &recorder{w: 1000, h: 500}

	stats, err := Interpret("FF", def, 2, rec)
	require.NoError(t, err)

	assert.Equal(t, []string{"clear", "translate", "move", "rotate", "line", "line"}, rec.calls)
	assert.Equal(t, point{500, 250}, rec.translated)
	assert.Equal(t, 0.5, rec.rotated)
	assert.Equal(t, 2, stats.Segments)
	assert.InDelta(t, 100, rec.pos.x, 1e-9)
}

func TestInterpretSeedsHeadingFromTurnAngle(t *testing.T) {
	def := &fractal.Definition{
		Name:          "tilted",
		TurnAngle:     90,
		MaxIterations: 1,
		View:          fractal.ViewScaling{StrokeLength: 0.01},
	}
	rec := &recorder{w: 1000, h: 1000}
	_, err := Interpret("F", def, 1, rec)
	require.NoError(t, err)
	assert.InDelta(t, 0, rec.pos.x, 1e-9)
	assert.InDelta(t, 10, rec.pos.y, 1e-9)
}
