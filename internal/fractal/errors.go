package fractal

import (
	"errors"
	"fmt"
)

// Domain errors for render operations.
var (
	// ErrUnknownFractal indicates a catalog id or name that does not exist.
	ErrUnknownFractal = errors.New("fractal: unknown fractal")

	// ErrIterationLimitExceeded indicates an iteration count outside [0, MaxIterations].
	ErrIterationLimitExceeded = errors.New("fractal: iteration limit exceeded")

	// ErrMalformedSequence indicates a cursor stack underflow while interpreting.
	ErrMalformedSequence = errors.New("fractal: malformed sequence (unbalanced ']')")

	// ErrInvalidColor indicates a color that is not a 6 digit hex triplet.
	ErrInvalidColor = errors.New("fractal: invalid color")

	// ErrSurfaceUnavailable indicates the drawing surface could not be acquired.
	ErrSurfaceUnavailable = errors.New("fractal: drawing surface unavailable")

	// ErrInconsistentDefinition indicates a variable without a rewrite rule.
	ErrInconsistentDefinition = errors.New("fractal: inconsistent definition")
)

// Stage names the pipeline step a RenderError originated from.
type Stage string

const (
	StageLookup    Stage = "lookup"
	StageValidate  Stage = "validate"
	StageSurface   Stage = "surface"
	StageExpand    Stage = "expand"
	StageInterpret Stage = "interpret"
	StageRecolor   Stage = "recolor"
)

// RenderError wraps an error with render request context.
type RenderError struct {
	FractalID  int
	Iterations int
	Stage      Stage
	Wrapped    error
}

func (e *RenderError) Error() string {
	return fmt.Sprintf("render fractal %d (iterations %d) at %s: %v", e.FractalID, e.Iterations, e.Stage, e.Wrapped)
}

func (e *RenderError) Unwrap() error {
	return e.Wrapped
}
