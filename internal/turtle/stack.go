package turtle

import "github.com/san-kum/fractal/internal/fractal"

// Cursor is the turtle position in local surface coordinates.
// Heading is kept in degrees and converted only for trigonometry.
type Cursor struct {
	X, Y    float64
	Heading float64
}

// Stack saves cursors for '[' and restores them for ']'.
type Stack struct {
	items    []Cursor
	maxDepth int
}

func (s *Stack) Push(c Cursor) {
	s.items = append(s.items, c)
	if len(s.items) > s.maxDepth {
		s.maxDepth = len(s.items)
	}
}

// Pop returns fractal.ErrMalformedSequence when the stack is empty.
func (s *Stack) Pop() (Cursor, error) {
	if len(s.items) == 0 {
		return Cursor{}, fractal.ErrMalformedSequence
	}
	c := s.items[len(s.items)-1]
	s.items = s.items[:len(s.items)-1]
	return c, nil
}

func (s *Stack) Len() int      { return len(s.items) }
func (s *Stack) MaxDepth() int { return s.maxDepth }
