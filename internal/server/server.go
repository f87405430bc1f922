// Package server exposes the catalog and the renderer over HTTP.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/san-kum/fractal/internal/canvas"
	"github.com/san-kum/fractal/internal/config"
	"github.com/san-kum/fractal/internal/export"
	"github.com/san-kum/fractal/internal/fractal"
	"github.com/san-kum/fractal/internal/logging"
	"github.com/san-kum/fractal/internal/lsystem"
	"github.com/san-kum/fractal/internal/render"
)

// MaxSide bounds the width and height a client may ask for.
const MaxSide = 4096

type Server struct {
	catalog  *lsystem.Catalog
	defaults *config.Config
	logger   *slog.Logger

	renders  *prometheus.CounterVec
	duration *prometheus.HistogramVec
	registry *prometheus.Registry
}

// NewHandler builds the router. defaults supplies the surface and gradient
// used when a query parameter is absent.
func NewHandler(catalog *lsystem.Catalog, defaults *config.Config, logger *slog.Logger) http.Handler {
	if defaults == nil {
		defaults = config.DefaultConfig()
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	s := &Server{
		catalog:  catalog,
		defaults: defaults,
		logger:   logger,
		renders: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fractal_renders_total",
				Help: "Renders served, by fractal and outcome",
			},
			[]string{"fractal", "format", "status"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "fractal_render_duration_seconds",
				Help:    "Time spent in the render pipeline",
				Buckets: prometheus.ExponentialBuckets(0.001, 4, 8),
			},
			[]string{"fractal"},
		),
		registry: prometheus.NewRegistry(),
	}
	s.registry.MustRegister(s.renders, s.duration)

	r := chi.NewRouter()
	r.Get("/health", s.health)
	r.Get("/fractals", s.listFractals)
	r.Get("/fractals/{ref}", s.getFractal)
	r.Get("/fractals/{ref}/png", s.renderPNG)
	r.Get("/fractals/{ref}/svg", s.renderSVG)
	r.Handle("/metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}))
	return r
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) listFractals(w http.ResponseWriter, r *http.Request) {
	all := make([]*export.ExportData, 0, s.catalog.Len())
	for _, id := range s.catalog.IDs() {
		def, err := s.catalog.Lookup(id)
		if err != nil {
			s.fail(w, err)
			return
		}
		data, err := export.Describe(id, def)
		if err != nil {
			s.fail(w, err)
			return
		}
		all = append(all, data)
	}
	writeJSON(w, http.StatusOK, all)
}

func (s *Server) getFractal(w http.ResponseWriter, r *http.Request) {
	id, def, err := s.resolve(r)
	if err != nil {
		s.fail(w, err)
		return
	}
	data, err := export.Describe(id, def)
	if err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, data)
}

func (s *Server) renderPNG(w http.ResponseWriter, r *http.Request) {
	req, width, height, err := s.request(r)
	if err != nil {
		s.fail(w, err)
		return
	}
	provider := canvas.Provider{
		Width:     width,
		Height:    height,
		Stroke:    s.defaults.Surface.Stroke,
		LineWidth: s.defaults.Surface.LineWidth,
	}
	res, err := render.New(s.catalog, provider, render.WithLogger(s.logger)).Render(req)
	if err != nil {
		s.observe(req.FractalID, "png", nil, err)
		s.fail(w, err)
		return
	}
	s.observe(req.FractalID, "png", res, nil)

	raster, ok := res.Surface.(*canvas.Raster)
	if !ok {
		s.fail(w, fmt.Errorf("unexpected surface %T", res.Surface))
		return
	}
	defer raster.Close()

	w.Header().Set("Content-Type", "image/png")
	if err := raster.EncodePNG(w); err != nil {
		s.logger.Error("png encode failed", "error", err)
	}
}

func (s *Server) renderSVG(w http.ResponseWriter, r *http.Request) {
	req, width, height, err := s.request(r)
	if err != nil {
		s.fail(w, err)
		return
	}
	doc := export.NewSVG(width, height, s.defaults.Surface.LineWidth)
	res, err := render.New(s.catalog, nil, render.WithLogger(s.logger)).RenderTo(doc, req)
	s.observe(req.FractalID, "svg", res, err)
	if err != nil {
		s.fail(w, err)
		return
	}

	w.Header().Set("Content-Type", "image/svg+xml")
	if _, err := doc.WriteTo(w); err != nil {
		s.logger.Error("svg write failed", "error", err)
	}
}

func (s *Server) resolve(r *http.Request) (int, *fractal.Definition, error) {
	id, err := s.catalog.Resolve(chi.URLParam(r, "ref"))
	if err != nil {
		return 0, nil, err
	}
	def, err := s.catalog.Lookup(id)
	if err != nil {
		return 0, nil, err
	}
	return id, def, nil
}

// errBadQuery marks malformed query parameters.
var errBadQuery = errors.New("bad query parameter")

// request reads n, from, to, w and h. Colors may omit the leading '#'.
func (s *Server) request(r *http.Request) (render.Request, int, int, error) {
	id, def, err := s.resolve(r)
	if err != nil {
		return render.Request{}, 0, 0, err
	}
	q := r.URL.Query()

	req := render.Request{
		FractalID:  id,
		Iterations: s.defaults.IterationsFor(def.MaxIterations),
		ColorStart: s.defaults.Gradient.Start,
		ColorEnd:   s.defaults.Gradient.End,
	}
	width, height := s.defaults.Surface.Width, s.defaults.Surface.Height

	for _, p := range []struct {
		key string
		dst *int
		max int
	}{
		{"n", &req.Iterations, -1},
		{"w", &width, MaxSide},
		{"h", &height, MaxSide},
	} {
		raw := q.Get(p.key)
		if raw == "" {
			continue
		}
		v, err := strconv.Atoi(raw)
		if err != nil {
			return render.Request{}, 0, 0, fmt.Errorf("%w: %s=%q", errBadQuery, p.key, raw)
		}
		if p.max > 0 && (v <= 0 || v > p.max) {
			return render.Request{}, 0, 0, fmt.Errorf("%w: %s must be in 1..%d", errBadQuery, p.key, p.max)
		}
		*p.dst = v
	}
	if v := q.Get("from"); v != "" {
		req.ColorStart = v
	}
	if v := q.Get("to"); v != "" {
		req.ColorEnd = v
	}
	return req, width, height, nil
}

func (s *Server) observe(id int, format string, res *render.Result, err error) {
	slug := strconv.Itoa(id)
	if def, lerr := s.catalog.Lookup(id); lerr == nil {
		slug = def.Slug
	}
	status := "ok"
	if err != nil {
		status = "error"
	}
	s.renders.WithLabelValues(slug, format, status).Inc()
	if res != nil {
		s.duration.WithLabelValues(slug).Observe(res.Elapsed.Seconds())
	}
}

func (s *Server) fail(w http.ResponseWriter, err error) {
	code := statusFor(err)
	if code == http.StatusInternalServerError {
		s.logger.Error("request failed", "error", err)
	}
	writeJSON(w, code, map[string]string{"error": err.Error()})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, fractal.ErrUnknownFractal):
		return http.StatusNotFound
	case errors.Is(err, fractal.ErrIterationLimitExceeded),
		errors.Is(err, fractal.ErrInvalidColor),
		errors.Is(err, errBadQuery):
		return http.StatusBadRequest
	case errors.Is(err, fractal.ErrSurfaceUnavailable):
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

// Run serves handler on addr until ctx is done, then shuts down gracefully.
func Run(ctx context.Context, addr string, handler http.Handler) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      60 * time.Second,
	}

	errc := make(chan error, 1)
	go func() { errc <- srv.ListenAndServe() }()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errc; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
