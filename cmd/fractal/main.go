package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/gogpu/gg"
	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"github.com/san-kum/fractal/internal/canvas"
	"github.com/san-kum/fractal/internal/config"
	"github.com/san-kum/fractal/internal/export"
	"github.com/san-kum/fractal/internal/fractal"
	"github.com/san-kum/fractal/internal/logging"
	"github.com/san-kum/fractal/internal/lsystem"
	"github.com/san-kum/fractal/internal/render"
	"github.com/san-kum/fractal/internal/server"
	"github.com/san-kum/fractal/internal/storage"
	"github.com/san-kum/fractal/internal/tui"
	"github.com/san-kum/fractal/internal/viz"
)

var (
	dataDir    string
	configFile string
	logLevel   string

	iterations int
	colorFrom  string
	colorTo    string
	width      int
	height     int
	stroke     string
	lineWidth  float64
	outPath    string
	preset     string
	noHistory  bool

	cols     int
	rows     int
	plain    bool
	rounds   int
	maxChars int
	workers  int
	addr     string

	logger  = logging.NewNop()
	catalog = lsystem.NewCatalog()
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "fractal",
		Short:         "l-system fractal renderer",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return setupLogging(cmd)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTUI(cmd, args)
		},
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".fractal", "data directory")
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file path (yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error)")

	renderCmd := &cobra.Command{
		Use:   "render [fractal]",
		Short: "render a fractal to png",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runRender,
	}
	addRenderFlags(renderCmd)
	renderCmd.Flags().StringVarP(&outPath, "out", "o", "", "output png path")
	renderCmd.Flags().BoolVar(&noHistory, "no-history", false, "do not record the render in the data directory")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list the fractal catalog",
		RunE:  listFractals,
	}

	expandCmd := &cobra.Command{
		Use:   "expand [fractal]",
		Short: "print the expanded symbol sequence",
		Args:  cobra.ExactArgs(1),
		RunE:  expandFractal,
	}
	expandCmd.Flags().IntVarP(&rounds, "iterations", "n", 1, "rewrite rounds")
	expandCmd.Flags().IntVar(&maxChars, "max", 0, "truncate output to this many symbols (0 prints everything)")

	growthCmd := &cobra.Command{
		Use:   "growth [fractal]",
		Short: "plot sequence length per iteration",
		Args:  cobra.ExactArgs(1),
		RunE:  plotGrowth,
	}

	previewCmd := &cobra.Command{
		Use:   "preview [fractal]",
		Short: "render a fractal into the terminal",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runPreview,
	}
	addRenderFlags(previewCmd)
	previewCmd.Flags().IntVar(&cols, "cols", 80, "preview width in cells")
	previewCmd.Flags().IntVar(&rows, "rows", 30, "preview height in cells")
	previewCmd.Flags().BoolVar(&plain, "plain", false, "print braille only, without colors")

	svgCmd := &cobra.Command{
		Use:   "svg [fractal]",
		Short: "render a fractal to svg",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runSVG,
	}
	addRenderFlags(svgCmd)
	svgCmd.Flags().StringVarP(&outPath, "out", "o", "", "output svg path (stdout when empty)")

	historyCmd := &cobra.Command{
		Use:   "history",
		Short: "list stored renders",
		RunE:  listHistory,
	}

	presetsCmd := &cobra.Command{
		Use:   "presets [fractal]",
		Short: "list available presets for a fractal",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			def, err := lookup(args[0])
			if err != nil {
				return err
			}
			presets := config.ListPresets(def.Slug)
			if len(presets) == 0 {
				fmt.Printf("no presets for fractal: %s\n", def.Slug)
				return nil
			}
			fmt.Printf("presets for %s:\n", def.Slug)
			for _, p := range presets {
				cfg := config.GetPreset(def.Slug, p)
				fmt.Printf("  %-10s n=%-3d %s %s → %s\n", p, cfg.Iterations,
					viz.GradientText("████████", cfg.Gradient.Start, cfg.Gradient.End),
					cfg.Gradient.Start, cfg.Gradient.End)
			}
			return nil
		},
	}

	tuiCmd := &cobra.Command{
		Use:   "tui",
		Short: "interactive fractal picker",
		RunE:  runTUI,
	}

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [fractal]",
		Short: "export fractal definitions to JSON",
		Args:  cobra.MaximumNArgs(1),
		RunE:  exportJSON,
	}
	exportJSONCmd.Flags().StringVarP(&outPath, "out", "o", "", "output path (stdout when empty)")

	galleryCmd := &cobra.Command{
		Use:   "gallery [dir]",
		Short: "render every fractal concurrently into a directory",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runGallery,
	}
	addRenderFlags(galleryCmd)
	galleryCmd.Flags().IntVar(&workers, "workers", runtime.NumCPU(), "concurrent renders")

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "serve renders and the catalog over http",
		RunE:  runServe,
	}
	serveCmd.Flags().StringVar(&addr, "addr", ":8080", "listen address")

	rootCmd.AddCommand(renderCmd, listCmd, expandCmd, growthCmd, previewCmd, svgCmd, historyCmd, presetsCmd, tuiCmd, exportJSONCmd, galleryCmd, serveCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func addRenderFlags(cmd *cobra.Command) {
	cmd.Flags().IntVarP(&iterations, "iterations", "n", config.DefaultIterations, "rewrite rounds")
	cmd.Flags().StringVar(&colorFrom, "from", config.DefaultColorStart, "gradient start color")
	cmd.Flags().StringVar(&colorTo, "to", config.DefaultColorEnd, "gradient end color")
	cmd.Flags().IntVar(&width, "width", config.DefaultWidth, "surface width in pixels")
	cmd.Flags().IntVar(&height, "height", config.DefaultHeight, "surface height in pixels")
	cmd.Flags().StringVar(&stroke, "stroke", config.DefaultStroke, "stroke color")
	cmd.Flags().Float64Var(&lineWidth, "line-width", config.DefaultLineWidth, "stroke width in pixels")
	cmd.Flags().StringVar(&preset, "preset", "", "use preset configuration")
}

func setupLogging(cmd *cobra.Command) error {
	level := config.DefaultLogLevel
	if configFile != "" {
		cfg, err := config.Load(configFile)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		level = cfg.LogLevel
	}
	if logLevel != "" {
		level = logLevel
	}
	lvl, err := logging.ParseLevel(level)
	if err != nil {
		return err
	}
	logger = logging.New(lvl)
	gg.SetLogger(logger.With("component", "gg"))
	return nil
}

func lookup(ref string) (*fractal.Definition, error) {
	id, err := catalog.Resolve(ref)
	if err != nil {
		return nil, err
	}
	return catalog.Lookup(id)
}

// settings merges defaults, the config file, a preset and explicit flags,
// in that order of precedence.
func settings(cmd *cobra.Command, args []string) (*config.Config, int, error) {
	cfg := config.DefaultConfig()
	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}
	if len(args) > 0 {
		cfg.Fractal = args[0]
	}

	id, err := catalog.Resolve(cfg.Fractal)
	if err != nil {
		return nil, 0, err
	}
	def, err := catalog.Lookup(id)
	if err != nil {
		return nil, 0, err
	}
	cfg.Fractal = def.Slug

	if preset != "" {
		p := config.GetPreset(def.Slug, preset)
		if p == nil {
			return nil, 0, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets(def.Slug))
		}
		cfg.Iterations = p.Iterations
		cfg.Gradient = p.Gradient
	}

	flags := cmd.Flags()
	if flags.Changed("iterations") {
		cfg.Iterations = iterations
	} else {
		cfg.Iterations = cfg.IterationsFor(def.MaxIterations)
	}
	if flags.Changed("from") {
		cfg.Gradient.Start = colorFrom
	}
	if flags.Changed("to") {
		cfg.Gradient.End = colorTo
	}
	if flags.Changed("width") {
		cfg.Surface.Width = width
	}
	if flags.Changed("height") {
		cfg.Surface.Height = height
	}
	if flags.Changed("stroke") {
		cfg.Surface.Stroke = stroke
	}
	if flags.Changed("line-width") {
		cfg.Surface.LineWidth = lineWidth
	}
	if flags.Changed("out") && outPath != "" {
		cfg.Output = outPath
	}

	if err := cfg.Validate(); err != nil {
		return nil, 0, err
	}
	return cfg, id, nil
}

func newRenderer(cfg *config.Config) *render.Renderer {
	provider := canvas.Provider{
		Width:     cfg.Surface.Width,
		Height:    cfg.Surface.Height,
		Stroke:    cfg.Surface.Stroke,
		LineWidth: cfg.Surface.LineWidth,
	}
	return render.New(catalog, provider, render.WithLogger(logger))
}

func requestFor(cfg *config.Config, id int) render.Request {
	return render.Request{
		FractalID:  id,
		Iterations: cfg.Iterations,
		ColorStart: cfg.Gradient.Start,
		ColorEnd:   cfg.Gradient.End,
	}
}

func runRender(cmd *cobra.Command, args []string) error {
	cfg, id, err := settings(cmd, args)
	if err != nil {
		return err
	}

	req := requestFor(cfg, id)
	res, err := newRenderer(cfg).Render(req)
	if err != nil {
		return err
	}
	raster, ok := res.Surface.(*canvas.Raster)
	if !ok {
		render.Release(res.Surface)
		return fmt.Errorf("unexpected surface %T", res.Surface)
	}
	defer raster.Close()

	if err := raster.SavePNG(cfg.Output); err != nil {
		return fmt.Errorf("write %s: %w", cfg.Output, err)
	}

	fmt.Printf("rendered %s (n=%d) in %v\n", res.Definition.Name, req.Iterations, res.Elapsed)
	fmt.Printf("symbols: %d\n", res.SequenceLength)
	fmt.Printf("segments: %d\n", res.Stats.Segments)
	fmt.Printf("recolored: %d pixels\n", res.Recolored)
	fmt.Printf("output: %s\n", cfg.Output)

	if noHistory {
		return nil
	}
	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}
	renderID, err := st.Save(storage.RenderMetadata{
		Fractal:        res.Definition.Slug,
		FractalID:      id,
		Iterations:     req.Iterations,
		Width:          cfg.Surface.Width,
		Height:         cfg.Surface.Height,
		ColorStart:     req.ColorStart,
		ColorEnd:       req.ColorEnd,
		SequenceLength: res.SequenceLength,
		Segments:       res.Stats.Segments,
		Recolored:      res.Recolored,
		ElapsedMs:      float64(res.Elapsed.Microseconds()) / 1000,
	}, raster.EncodePNG)
	if err != nil {
		return err
	}
	fmt.Printf("render id: %s\n", renderID)
	return nil
}

func listFractals(cmd *cobra.Command, args []string) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tSLUG\tNAME\tAXIOM\tANGLE\tMAX")

	for _, id := range catalog.IDs() {
		def, err := catalog.Lookup(id)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%g\t%d\n",
			id,
			def.Slug,
			def.Name,
			def.Axiom,
			def.TurnAngle,
			def.MaxIterations,
		)
	}

	return w.Flush()
}

func expandFractal(cmd *cobra.Command, args []string) error {
	def, err := lookup(args[0])
	if err != nil {
		return err
	}
	seq, err := lsystem.Expand(def, rounds)
	if err != nil {
		return err
	}
	if maxChars > 0 && len(seq) > maxChars {
		fmt.Printf("%s… (%d symbols)\n", seq[:maxChars], len(seq))
		return nil
	}
	fmt.Println(seq)
	return nil
}

func plotGrowth(cmd *cobra.Command, args []string) error {
	def, err := lookup(args[0])
	if err != nil {
		return err
	}
	growth, err := lsystem.Growth(def)
	if err != nil {
		return err
	}

	data := make([]float64, len(growth))
	for i, n := range growth {
		data[i] = float64(n)
	}

	fmt.Printf("fractal: %s\n", def.Name)
	fmt.Printf("rules: %s\n\n", formatRules(def))

	graph := asciigraph.Plot(data,
		asciigraph.Height(12),
		asciigraph.Width(60),
		asciigraph.Caption("symbols per iteration"),
	)
	fmt.Println(graph)
	fmt.Println()

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "N\tSYMBOLS")
	for i, n := range growth {
		fmt.Fprintf(w, "%d\t%d\n", i, n)
	}
	return w.Flush()
}

func formatRules(def *fractal.Definition) string {
	var parts []string
	for i := 0; i < len(def.Variables); i++ {
		v := def.Variables[i]
		parts = append(parts, fmt.Sprintf("%c→%q", v, def.Rules[v]))
	}
	return strings.Join(parts, "  ")
}

func runPreview(cmd *cobra.Command, args []string) error {
	cfg, id, err := settings(cmd, args)
	if err != nil {
		return err
	}
	res, err := newRenderer(cfg).Render(requestFor(cfg, id))
	if err != nil {
		return err
	}
	defer render.Release(res.Surface)

	buf, err := res.Surface.Pixels()
	if err != nil {
		return err
	}
	w, h := res.Surface.Size()
	preview, err := viz.FromPixels(buf, w, h, cols, rows)
	if err != nil {
		return err
	}

	fmt.Println(viz.HeaderStyle.Render(fmt.Sprintf("%s  n=%d", res.Definition.Name, cfg.Iterations)))
	if plain {
		fmt.Print(preview.String())
	} else {
		fmt.Print(preview.Render())
	}
	fmt.Println(viz.MetricLabel.Render("segments ") + viz.MetricValue.Render(fmt.Sprint(res.Stats.Segments)) +
		viz.MetricLabel.Render("  recolored ") + viz.MetricValue.Render(fmt.Sprint(res.Recolored)))
	return nil
}

func runSVG(cmd *cobra.Command, args []string) error {
	cfg, id, err := settings(cmd, args)
	if err != nil {
		return err
	}

	doc := export.NewSVG(cfg.Surface.Width, cfg.Surface.Height, cfg.Surface.LineWidth)
	res, err := newRenderer(cfg).RenderTo(doc, requestFor(cfg, id))
	if err != nil {
		return err
	}

	if outPath == "" {
		_, err := doc.WriteTo(os.Stdout)
		return err
	}
	f, err := os.Create(outPath)
	if err != nil {
		return err
	}
	defer f.Close()
	if _, err := doc.WriteTo(f); err != nil {
		return err
	}
	logger.Info("svg written", "path", outPath, "segments", res.Stats.Segments)
	fmt.Printf("wrote %s (%d segments)\n", outPath, res.Stats.Segments)
	return nil
}

func listHistory(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	renders, err := st.List()
	if err != nil {
		return err
	}

	if len(renders) == 0 {
		fmt.Println("no renders found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tFRACTAL\tN\tTIME\tSIZE\tGRADIENT\tSEGMENTS\tELAPSED")

	for _, r := range renders {
		fmt.Fprintf(w, "%s\t%s\t%d\t%s\t%dx%d\t%s→%s\t%d\t%.1fms\n",
			r.ID,
			r.Fractal,
			r.Iterations,
			r.Timestamp.Format("2006-01-02 15:04:05"),
			r.Width, r.Height,
			r.ColorStart, r.ColorEnd,
			r.Segments,
			r.ElapsedMs,
		)
	}

	return w.Flush()
}

func runTUI(cmd *cobra.Command, args []string) error {
	cfg := config.DefaultConfig()
	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}

	// the alt screen owns the terminal, so diagnostics are dropped
	return tui.RunInteractive(tui.Options{
		Catalog:  catalog,
		Defaults: cfg,
		Store:    st,
		Logger:   logging.NewNop(),
	})
}

func exportJSON(cmd *cobra.Command, args []string) error {
	ids := catalog.IDs()
	if len(args) > 0 {
		id, err := catalog.Resolve(args[0])
		if err != nil {
			return err
		}
		ids = []int{id}
	}

	all := make([]*export.ExportData, 0, len(ids))
	for _, id := range ids {
		def, err := catalog.Lookup(id)
		if err != nil {
			return err
		}
		data, err := export.Describe(id, def)
		if err != nil {
			return err
		}
		all = append(all, data)
	}

	var payload any = all
	if len(args) > 0 {
		payload = all[0]
	}
	if outPath == "" {
		return export.WriteJSON(os.Stdout, payload)
	}
	if err := export.ExportJSON(outPath, payload); err != nil {
		return err
	}
	fmt.Printf("exported to %s\n", outPath)
	return nil
}

func runGallery(cmd *cobra.Command, args []string) error {
	dir := "gallery"
	if len(args) > 0 {
		dir = args[0]
	}
	cfg, _, err := settings(cmd, nil)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	// every fractal at the requested depth, capped by its own ceiling
	ids := catalog.IDs()
	reqs := make([]render.Request, 0, len(ids))
	for _, id := range ids {
		def, err := catalog.Lookup(id)
		if err != nil {
			return err
		}
		req := requestFor(cfg, id)
		req.Iterations = min(req.Iterations, def.MaxIterations)
		reqs = append(reqs, req)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	fmt.Printf("rendering %d fractals with %d workers...\n", len(reqs), workers)
	results, errs := render.NewBatch(newRenderer(cfg), workers).Run(ctx, reqs)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tFRACTAL\tN\tSEGMENTS\tELAPSED\tFILE")
	failed := 0
	for i, res := range results {
		if errs[i] != nil {
			failed++
			logger.Error("render failed", "fractal", reqs[i].FractalID, "error", errs[i])
			fmt.Fprintf(w, "%d\t-\t%d\t-\t-\t%v\n", reqs[i].FractalID, reqs[i].Iterations, errs[i])
			continue
		}
		raster, ok := res.Surface.(*canvas.Raster)
		if !ok {
			render.Release(res.Surface)
			return fmt.Errorf("unexpected surface %T", res.Surface)
		}
		path := filepath.Join(dir, fmt.Sprintf("%02d-%s.png", reqs[i].FractalID, res.Definition.Slug))
		err := raster.SavePNG(path)
		raster.Close()
		if err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
		fmt.Fprintf(w, "%d\t%s\t%d\t%d\t%v\t%s\n",
			reqs[i].FractalID, res.Definition.Slug, reqs[i].Iterations,
			res.Stats.Segments, res.Elapsed.Round(time.Millisecond), path)
	}
	if err := w.Flush(); err != nil {
		return err
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d renders failed", failed, len(reqs))
	}
	return nil
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg := config.DefaultConfig()
	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	logger.Info("listening", "addr", addr)
	return server.Run(ctx, addr, server.NewHandler(catalog, cfg, logger))
}
