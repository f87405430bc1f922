// Package fractal provides the core types shared by the fractal renderer.
//
// The package defines the immutable description of an L-system and the
// error taxonomy used across the render pipeline:
//
//   - [Definition]: alphabet, axiom, rewrite rules, turn angle and ceiling
//   - [ViewScaling]: placement of the drawing inside a surface
//   - [RenderError]: a pipeline failure annotated with the request that caused it
//
// # Errors
//
// Every failure in the pipeline wraps one of the sentinel errors declared in
// this package, so callers can branch with [errors.Is]:
//
//	_, err := r.Render(req)
//	if errors.Is(err, fractal.ErrIterationLimitExceeded) {
//		// ask for fewer iterations
//	}
//
// # Thread Safety
//
// Definitions are never mutated after construction and may be shared freely
// between goroutines. Everything produced while rendering (sequences, cursor
// state, pixel buffers) is owned by a single render call.
package fractal
