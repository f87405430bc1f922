// Package render runs the full pipeline for one request: catalog lookup,
// expansion, turtle drawing and the gradient pass.
package render

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/san-kum/fractal/internal/fractal"
	"github.com/san-kum/fractal/internal/gradient"
	"github.com/san-kum/fractal/internal/logging"
	"github.com/san-kum/fractal/internal/lsystem"
	"github.com/san-kum/fractal/internal/turtle"
)

// ErrNoPixels is returned by surfaces that cannot expose a pixel buffer.
// The pipeline then hands them the gradient through GradientSetter, if they implement it.
var ErrNoPixels = errors.New("render: surface has no pixel buffer")

// Surface is a drawing target the pipeline can clear, transform, stroke,
// read back and overwrite.
type Surface interface {
	turtle.Canvas
	Pixels() ([]byte, error)
	SetPixels(buf []byte) error
}

// GradientSetter is implemented by surfaces without a pixel buffer that can
// still draw the gradient themselves.
type GradientSetter interface {
	SetGradient(start, end gradient.Color)
}

// Provider acquires a surface for a render.
type Provider interface {
	Acquire() (Surface, error)
}

// Request selects a fractal, an iteration count and the gradient endpoints.
type Request struct {
	FractalID  int
	Iterations int
	ColorStart string
	ColorEnd   string
}

// Result describes a finished render.
type Result struct {
	Definition     *fractal.Definition
	Surface        Surface
	SequenceLength int
	Stats          turtle.Stats
	Recolored      int
	Elapsed        time.Duration
}

// Renderer is the single entry point of the pipeline. It is not safe for
// concurrent use; the catalog it reads is.
type Renderer struct {
	catalog  *lsystem.Catalog
	provider Provider
	logger   *slog.Logger
}

// Option configures a Renderer.
type Option func(*Renderer)

// WithLogger sets the logger used for pipeline diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(r *Renderer) {
		if l != nil {
			r.logger = l
		}
	}
}

func New(catalog *lsystem.Catalog, provider Provider, opts ...Option) *Renderer {
	r := &Renderer{
		catalog:  catalog,
		provider: provider,
		logger:   logging.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Render validates req, acquires a surface from the provider and draws onto it.
func (r *Renderer) Render(req Request) (*Result, error) {
	def, start, end, err := r.prepare(req)
	if err != nil {
		return nil, err
	}
	if r.provider == nil {
		return nil, fail(req, fractal.StageSurface, fmt.Errorf("%w: no provider configured", fractal.ErrSurfaceUnavailable))
	}
	surface, err := r.provider.Acquire()
	if err != nil {
		if !errors.Is(err, fractal.ErrSurfaceUnavailable) {
			err = fmt.Errorf("%w: %v", fractal.ErrSurfaceUnavailable, err)
		}
		return nil, fail(req, fractal.StageSurface, err)
	}
	res, err := r.draw(req, def, start, end, surface)
	if err != nil {
		Release(surface)
		return nil, err
	}
	return res, nil
}

// Release closes s if it holds resources. Surfaces acquired through Render
// belong to the caller once a Result is returned.
func Release(s Surface) {
	if c, ok := s.(io.Closer); ok {
		_ = c.Close()
	}
}

// RenderTo is Render against a caller supplied surface.
func (r *Renderer) RenderTo(surface Surface, req Request) (*Result, error) {
	def, start, end, err := r.prepare(req)
	if err != nil {
		return nil, err
	}
	if surface == nil {
		return nil, fail(req, fractal.StageSurface, fractal.ErrSurfaceUnavailable)
	}
	return r.draw(req, def, start, end, surface)
}

func (r *Renderer) prepare(req Request) (*fractal.Definition, gradient.Color, gradient.Color, error) {
	var zero gradient.Color
	def, err := r.catalog.Lookup(req.FractalID)
	if err != nil {
		return nil, zero, zero, fail(req, fractal.StageLookup, err)
	}
	if err := def.CheckIterations(req.Iterations); err != nil {
		return nil, zero, zero, fail(req, fractal.StageValidate, err)
	}
	start, err := gradient.ParseHex(req.ColorStart)
	if err != nil {
		return nil, zero, zero, fail(req, fractal.StageValidate, err)
	}
	end, err := gradient.ParseHex(req.ColorEnd)
	if err != nil {
		return nil, zero, zero, fail(req, fractal.StageValidate, err)
	}
	return def, start, end, nil
}

func (r *Renderer) draw(req Request, def *fractal.Definition, start, end gradient.Color, surface Surface) (*Result, error) {
	began := time.Now()
	log := r.logger.With("fractal", def.Slug, "iterations", req.Iterations)

	seq, err := lsystem.Expand(def, req.Iterations)
	if err != nil {
		return nil, fail(req, fractal.StageExpand, err)
	}
	log.Debug("expanded", "length", len(seq))

	stats, err := turtle.Interpret(seq, def, req.Iterations, surface)
	if err != nil {
		return nil, fail(req, fractal.StageInterpret, err)
	}
	log.Debug("interpreted", "segments", stats.Segments, "max_depth", stats.MaxDepth)

	res := &Result{
		Definition:     def,
		Surface:        surface,
		SequenceLength: len(seq),
		Stats:          stats,
	}

	buf, err := surface.Pixels()
	switch {
	case errors.Is(err, ErrNoPixels):
		if g, ok := surface.(GradientSetter); ok {
			g.SetGradient(start, end)
		} else {
			log.Debug("gradient skipped", "reason", err)
		}
	case err != nil:
		return nil, fail(req, fractal.StageRecolor, err)
	default:
		width, height := surface.Size()
		n, err := gradient.Recolor(buf, width, height, start, end)
		if err != nil {
			return nil, fail(req, fractal.StageRecolor, err)
		}
		if err := surface.SetPixels(buf); err != nil {
			return nil, fail(req, fractal.StageRecolor, err)
		}
		res.Recolored = n
	}

	res.Elapsed = time.Since(began)
	log.Info("rendered", "segments", stats.Segments, "recolored", res.Recolored, "elapsed", res.Elapsed)
	return res, nil
}

func fail(req Request, stage fractal.Stage, err error) error {
	return &fractal.RenderError{
		FractalID:  req.FractalID,
		Iterations: req.Iterations,
		Stage:      stage,
		Wrapped:    err,
	}
}
