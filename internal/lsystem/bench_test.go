package lsystem

import (
	"testing"

	"github.com/san-kum/fractal/internal/turtle"
)

type nopPen struct{}

func (nopPen) MoveTo(x, y float64)       {}
func (nopPen) LineTo(x, y float64) error { return nil }

func BenchmarkExpandDragon(b *testing.B) {
	def, _ := NewCatalog().Lookup(2)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := Expand(def, def.MaxIterations); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkLengthDragon(b *testing.B) {
	def, _ := NewCatalog().Lookup(2)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := Length(def, def.MaxIterations); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkWalkPlant(b *testing.B) {
	def, _ := NewCatalog().Lookup(11)
	seq, err := Expand(def, 8)
	if err != nil {
		b.Fatal(err)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, _, err := turtle.Walk(seq, def.TurnAngle, 1, turtle.Cursor{}, nopPen{}); err != nil {
			b.Fatal(err)
		}
	}
}
