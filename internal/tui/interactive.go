package tui

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/san-kum/fractal/internal/canvas"
	"github.com/san-kum/fractal/internal/config"
	"github.com/san-kum/fractal/internal/fractal"
	"github.com/san-kum/fractal/internal/logging"
	"github.com/san-kum/fractal/internal/lsystem"
	"github.com/san-kum/fractal/internal/render"
	"github.com/san-kum/fractal/internal/storage"
	"github.com/san-kum/fractal/internal/viz"
)

var (
	cyan    = lipgloss.NewStyle().Foreground(lipgloss.Color("86"))
	white   = lipgloss.NewStyle().Foreground(lipgloss.Color("255"))
	dim     = lipgloss.NewStyle().Foreground(lipgloss.Color("242"))
	dimmer  = lipgloss.NewStyle().Foreground(lipgloss.Color("238"))
	green   = lipgloss.NewStyle().Foreground(lipgloss.Color("82"))
	red     = lipgloss.NewStyle().Foreground(lipgloss.Color("203"))
	magenta = lipgloss.NewStyle().Foreground(lipgloss.Color("213"))
)

type state int

const (
	stateMenu state = iota
	stateConfig
	statePreview
)

// Options wires the picker to the rest of the program. Store may be nil,
// in which case saving is disabled.
type Options struct {
	Catalog  *lsystem.Catalog
	Defaults *config.Config
	Store    *storage.Store
	Logger   *slog.Logger
}

type palette struct {
	name       string
	start, end string
	iterations int
}

type model struct {
	opts Options

	state  state
	cursor int
	ids    []int

	selectedID int
	def        *fractal.Definition
	iterations int
	palettes   []palette
	palette    int

	rendering bool
	gen       int
	frame     int
	result    *render.Result
	preview   *viz.Canvas
	status    string
	failed    bool

	width  int
	height int
}

func NewInteractiveApp(opts Options) *model {
	if opts.Catalog == nil {
		opts.Catalog = lsystem.NewCatalog()
	}
	if opts.Defaults == nil {
		opts.Defaults = config.DefaultConfig()
	}
	if opts.Logger == nil {
		opts.Logger = logging.NewNop()
	}
	return &model{
		opts:   opts,
		state:  stateMenu,
		ids:    opts.Catalog.IDs(),
		width:  80,
		height: 24,
	}
}

func (m model) Init() tea.Cmd { return nil }

type spinMsg time.Time

func spin() tea.Cmd {
	return tea.Tick(80*time.Millisecond, func(t time.Time) tea.Msg { return spinMsg(t) })
}

type renderedMsg struct {
	gen     int
	result  *render.Result
	preview *viz.Canvas
	err     error
}

type savedMsg struct {
	id  string
	err error
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil
	case spinMsg:
		if !m.rendering {
			return m, nil
		}
		m.frame++
		return m, spin()
	case renderedMsg:
		if msg.gen != m.gen {
			if msg.result != nil {
				render.Release(msg.result.Surface)
			}
			return m, nil
		}
		m.rendering = false
		if msg.err != nil {
			m.status = msg.err.Error()
			m.failed = true
			return m, nil
		}
		m.dropResult()
		m.result = msg.result
		m.preview = msg.preview
		m.failed = false
		m.status = fmt.Sprintf("%d segments, %d pixels recolored in %s",
			msg.result.Stats.Segments, msg.result.Recolored, msg.result.Elapsed.Round(time.Millisecond))
	case savedMsg:
		if msg.err != nil {
			m.status = "save failed: " + msg.err.Error()
			m.failed = true
		} else {
			m.status = "saved " + msg.id
			m.failed = false
		}
	}
	return m, nil
}

func (m model) handleKey(msg tea.KeyMsg) (model, tea.Cmd) {
	switch m.state {
	case stateMenu:
		return m.menuKey(msg)
	case stateConfig:
		return m.configKey(msg)
	case statePreview:
		return m.previewKey(msg)
	}
	return m, nil
}

func (m model) menuKey(msg tea.KeyMsg) (model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.ids)-1 {
			m.cursor++
		}
	case "enter", " ":
		if len(m.ids) == 0 {
			return m, nil
		}
		m.selectFractal(m.ids[m.cursor])
		m.state = stateConfig
	}
	return m, nil
}

func (m model) configKey(msg tea.KeyMsg) (model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit
	case "q", "esc":
		m.state = stateMenu
	case "left", "h":
		m.stepIterations(-1)
	case "right", "l":
		m.stepIterations(1)
	case "tab":
		m.cyclePalette()
	case "enter", " ":
		m.state = statePreview
		return m, m.startRender()
	}
	return m, nil
}

func (m model) previewKey(msg tea.KeyMsg) (model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit
	case "q", "esc":
		m.gen++
		m.rendering = false
		m.dropResult()
		m.state = stateConfig
		return m, tea.ClearScreen
	case "left", "h":
		if m.stepIterations(-1) {
			return m, m.startRender()
		}
	case "right", "l":
		if m.stepIterations(1) {
			return m, m.startRender()
		}
	case "tab":
		m.cyclePalette()
		return m, m.startRender()
	case "r":
		return m, m.startRender()
	case "s":
		return m, m.save()
	}
	return m, nil
}

func (m *model) selectFractal(id int) {
	def, err := m.opts.Catalog.Lookup(id)
	if err != nil {
		m.status = err.Error()
		m.failed = true
		return
	}
	m.selectedID = id
	m.def = def
	m.iterations = m.opts.Defaults.IterationsFor(def.MaxIterations)

	m.palettes = []palette{{
		name:  "default",
		start: m.opts.Defaults.Gradient.Start,
		end:   m.opts.Defaults.Gradient.End,
	}}
	for _, name := range config.ListPresets(def.Slug) {
		p := config.GetPreset(def.Slug, name)
		m.palettes = append(m.palettes, palette{
			name:       name,
			start:      p.Gradient.Start,
			end:        p.Gradient.End,
			iterations: p.Iterations,
		})
	}
	m.palette = 0
	m.dropResult()
	m.status = ""
	m.failed = false
}

// dropResult releases the surface of the current render, if any.
func (m *model) dropResult() {
	if m.result != nil {
		render.Release(m.result.Surface)
	}
	m.result = nil
	m.preview = nil
}

// stepIterations moves the iteration count by delta within the fractal's
// bounds and reports whether it changed.
func (m *model) stepIterations(delta int) bool {
	if m.def == nil {
		return false
	}
	next := m.iterations + delta
	if next < 0 || next > m.def.MaxIterations {
		return false
	}
	m.iterations = next
	return true
}

func (m *model) cyclePalette() {
	if len(m.palettes) == 0 {
		return
	}
	m.palette = (m.palette + 1) % len(m.palettes)
	if n := m.palettes[m.palette].iterations; n > 0 && n <= m.def.MaxIterations {
		m.iterations = n
	}
}

func (m *model) request() render.Request {
	p := m.palettes[m.palette]
	return render.Request{
		FractalID:  m.selectedID,
		Iterations: m.iterations,
		ColorStart: p.start,
		ColorEnd:   p.end,
	}
}

func (m *model) previewSize() (int, int) {
	cols := m.width - 6
	rows := m.height - 8
	if cols < 40 {
		cols = 40
	}
	if rows < 12 {
		rows = 12
	}
	return cols, rows
}

func (m *model) startRender() tea.Cmd {
	m.gen++
	m.rendering = true
	m.status = ""
	m.failed = false

	gen := m.gen
	req := m.request()
	cols, rows := m.previewSize()
	surface := m.opts.Defaults.Surface
	provider := canvas.Provider{
		Width:     surface.Width,
		Height:    surface.Height,
		Stroke:    surface.Stroke,
		LineWidth: surface.LineWidth,
	}
	r := render.New(m.opts.Catalog, provider, render.WithLogger(m.opts.Logger))

	return tea.Batch(spin(), func() tea.Msg {
		res, err := r.Render(req)
		if err != nil {
			return renderedMsg{gen: gen, err: err}
		}
		buf, err := res.Surface.Pixels()
		if err != nil {
			render.Release(res.Surface)
			return renderedMsg{gen: gen, err: err}
		}
		w, h := res.Surface.Size()
		preview, err := viz.FromPixels(buf, w, h, cols, rows)
		if err != nil {
			render.Release(res.Surface)
			return renderedMsg{gen: gen, err: err}
		}
		return renderedMsg{gen: gen, result: res, preview: preview}
	})
}

type pngEncoder interface {
	EncodePNG(w io.Writer) error
}

// save encodes the current image before handing it to the store, so a
// later render may release the surface while the write is in flight.
func (m model) save() tea.Cmd {
	if m.result == nil || m.rendering {
		return nil
	}
	if m.opts.Store == nil {
		return func() tea.Msg { return savedMsg{err: fmt.Errorf("history is disabled")} }
	}
	res := m.result
	enc, ok := res.Surface.(pngEncoder)
	if !ok {
		return func() tea.Msg { return savedMsg{err: fmt.Errorf("surface cannot encode png")} }
	}
	var png bytes.Buffer
	if err := enc.EncodePNG(&png); err != nil {
		return func() tea.Msg { return savedMsg{err: err} }
	}

	req := m.request()
	store := m.opts.Store
	w, h := res.Surface.Size()
	meta := storage.RenderMetadata{
		Fractal:        res.Definition.Slug,
		FractalID:      req.FractalID,
		Iterations:     req.Iterations,
		Width:          w,
		Height:         h,
		ColorStart:     req.ColorStart,
		ColorEnd:       req.ColorEnd,
		SequenceLength: res.SequenceLength,
		Segments:       res.Stats.Segments,
		Recolored:      res.Recolored,
		ElapsedMs:      float64(res.Elapsed.Microseconds()) / 1000,
	}
	return func() tea.Msg {
		id, err := store.Save(meta, func(w io.Writer) error {
			_, err := png.WriteTo(w)
			return err
		})
		return savedMsg{id: id, err: err}
	}
}

func (m model) View() string {
	switch m.state {
	case stateMenu:
		return m.viewMenu()
	case stateConfig:
		return m.viewConfig()
	case statePreview:
		return m.viewPreview()
	}
	return ""
}

func (m model) viewMenu() string {
	var b strings.Builder

	b.WriteString("\n")
	b.WriteString(dimmer.Render("    ╺━━━━━━━━━━━━━━━━━━━━━━━━╸") + "\n")
	b.WriteString("           " + viz.GradientText("f r a c t a l", m.opts.Defaults.Gradient.Start, m.opts.Defaults.Gradient.End) + "\n")
	b.WriteString(dimmer.Render("    ╺━━━━━━━━━━━━━━━━━━━━━━━━╸") + "\n")
	b.WriteString("\n")

	for i, id := range m.ids {
		def, err := m.opts.Catalog.Lookup(id)
		if err != nil {
			continue
		}
		desc := fmt.Sprintf("%2d  max %d", id, def.MaxIterations)
		if i == m.cursor {
			b.WriteString("      " + cyan.Render("▸ ") + white.Render(fmt.Sprintf("%-22s", def.Name)) + dim.Render(desc) + "\n")
		} else {
			b.WriteString("        " + dim.Render(fmt.Sprintf("%-22s", def.Name)) + dimmer.Render(desc) + "\n")
		}
	}

	b.WriteString("\n")
	b.WriteString(dim.Render("      ↑↓ select   enter configure   q quit") + "\n")

	return b.String()
}

func (m model) viewConfig() string {
	if m.def == nil {
		return m.viewMenu()
	}
	var b strings.Builder

	b.WriteString("\n")
	b.WriteString("      " + cyan.Render(m.def.Name) + "  " + dim.Render(m.def.Slug) + "\n")
	b.WriteString("      " + viz.Separator(30) + "\n\n")

	b.WriteString("      " + viz.MetricLabel.Render(fmt.Sprintf("%-12s", "axiom")) + white.Render(m.def.Axiom) + "\n")
	b.WriteString("      " + viz.MetricLabel.Render(fmt.Sprintf("%-12s", "angle")) + white.Render(fmt.Sprintf("%g°", m.def.TurnAngle)) + "\n")

	b.WriteString("      " + viz.MetricLabel.Render(fmt.Sprintf("%-12s", "iterations")) +
		magenta.Render(fmt.Sprintf("%2d/%-2d ", m.iterations, m.def.MaxIterations)) + viz.IterationBar(m.iterations, m.def.MaxIterations) + "\n")

	if n, err := lsystem.Length(m.def, m.iterations); err == nil {
		b.WriteString("      " + viz.MetricLabel.Render(fmt.Sprintf("%-12s", "symbols")) + viz.MetricValue.Render(fmt.Sprintf("%d", n)) + "\n")
	}
	if growth, err := lsystem.Growth(m.def); err == nil {
		b.WriteString("      " + viz.MetricLabel.Render(fmt.Sprintf("%-12s", "growth")) + viz.GrowthSparkline(growth, m.iterations) + "\n")
	}

	p := m.palettes[m.palette]
	b.WriteString("      " + viz.MetricLabel.Render(fmt.Sprintf("%-12s", "palette")) +
		viz.Swatch(p.start, 2) + viz.GradientText(strings.Repeat("▄", 12), p.start, p.end) + viz.Swatch(p.end, 2) +
		" " + dim.Render(p.name) + "\n")

	if m.status != "" {
		b.WriteString("\n      " + red.Render(m.status) + "\n")
	}

	b.WriteString("\n")
	b.WriteString(dim.Render("      ←→ iterations  tab palette  enter render  esc back") + "\n")

	return b.String()
}

func (m model) viewPreview() string {
	var b strings.Builder

	header := fmt.Sprintf("\n   %s %s  %s\n",
		green.Render("●"), cyan.Render(m.def.Name), dim.Render(fmt.Sprintf("n=%d %s", m.iterations, m.palettes[m.palette].name)))
	if m.rendering {
		header = fmt.Sprintf("\n   %s %s  %s\n",
			magenta.Render(viz.AnimatedSpinner(m.frame)), cyan.Render(m.def.Name), dim.Render("rendering"))
	}
	b.WriteString(header)
	cols, _ := m.previewSize()
	b.WriteString("   " + viz.Separator(cols/2) + "\n\n")

	if m.preview != nil {
		for _, line := range strings.Split(strings.TrimRight(m.preview.Render(), "\n"), "\n") {
			b.WriteString("   " + line + "\n")
		}
	}

	if m.status != "" {
		style := dim
		if m.failed {
			style = red
		}
		b.WriteString("\n   " + style.Render(m.status) + "\n")
	}

	b.WriteString("\n" + dim.Render("   ←→ iterations  tab palette  r redraw  s save  esc back") + "\n")

	return b.String()
}

func RunInteractive(opts Options) error {
	p := tea.NewProgram(NewInteractiveApp(opts), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
