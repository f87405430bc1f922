package fractal

import (
	"fmt"
	"maps"
	"strings"
)

// ViewScaling positions and sizes a drawing inside its surface.
// OriginX and OriginY are fractions of the surface width and height.
type ViewScaling struct {
	InitialHeading float64 // radians, applied as a surface rotation before drawing
	StrokeLength   float64
	OriginX        float64
	OriginY        float64
}

// Definition is one immutable L-system of the catalog.
type Definition struct {
	Name          string
	Slug          string
	Variables     string
	Axiom         string
	Rules         map[byte]string
	TurnAngle     float64 // degrees
	MaxIterations int
	View          ViewScaling
}

// Clone returns a deep copy of d.
func (d *Definition) Clone() *Definition {
	c := *d
	c.Rules = maps.Clone(d.Rules)
	return &c
}

// IsVariable reports whether sym is rewritten during expansion.
func (d *Definition) IsVariable(sym byte) bool {
	return strings.IndexByte(d.Variables, sym) >= 0
}

// Validate checks that every variable has a rule and the ceiling is positive.
func (d *Definition) Validate() error {
	if d.MaxIterations <= 0 {
		return fmt.Errorf("%w: %s: max iterations must be positive, got %d", ErrInconsistentDefinition, d.Name, d.MaxIterations)
	}
	for i := 0; i < len(d.Variables); i++ {
		if _, ok := d.Rules[d.Variables[i]]; !ok {
			return fmt.Errorf("%w: %s: variable %q has no rule", ErrInconsistentDefinition, d.Name, d.Variables[i])
		}
	}
	return nil
}

// CheckIterations returns ErrIterationLimitExceeded unless 0 <= n <= MaxIterations.
func (d *Definition) CheckIterations(n int) error {
	if n < 0 || n > d.MaxIterations {
		return fmt.Errorf("%w: %s accepts 0..%d iterations, got %d", ErrIterationLimitExceeded, d.Name, d.MaxIterations, n)
	}
	return nil
}
