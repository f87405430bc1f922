package viz

import (
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/san-kum/fractal/internal/gradient"
)

var (
	GradientTitle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#00ffff"))

	Subtle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("#666688"))

	StatusOK = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#00ff88"))

	StatusError = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#ff4444"))

	MetricValue = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#00ccff")).
			Bold(true)

	MetricLabel = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#888899"))

	KeyHint = lipgloss.NewStyle().
		Foreground(lipgloss.Color("#666688")).
		Italic(true)

	HeaderStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#ffffff")).
			BorderStyle(lipgloss.NormalBorder()).
			BorderBottom(true).
			BorderForeground(lipgloss.Color("#444466"))

	SparkHigh = lipgloss.NewStyle().Foreground(lipgloss.Color("#00ff88"))
	SparkMid  = lipgloss.NewStyle().Foreground(lipgloss.Color("#ffcc00"))
	SparkLow  = lipgloss.NewStyle().Foreground(lipgloss.Color("#ff4444"))
)

// GradientText colors each rune of text along the ramp from start to end.
// Colors that do not parse leave the text plain.
func GradientText(text, start, end string) string {
	if text == "" {
		return ""
	}
	from, err := gradient.ParseHex(start)
	if err != nil {
		return text
	}
	to, err := gradient.ParseHex(end)
	if err != nil {
		return text
	}

	runes := []rune(text)
	var result strings.Builder
	for i, c := range runes {
		var t float32
		if len(runes) > 1 {
			t = float32(i) / float32(len(runes)-1)
		}
		r, g, b := from.Lerp(to, t)
		hex := gradient.Color{R: float32(r), G: float32(g), B: float32(b)}.Hex()
		result.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color(hex)).Render(string(c)))
	}
	return result.String()
}

// Swatch renders a short bar in the given hex color.
func Swatch(hex string, width int) string {
	c, err := gradient.ParseHex(hex)
	if err != nil {
		return Subtle.Render(strings.Repeat("?", width))
	}
	return lipgloss.NewStyle().Foreground(lipgloss.Color(c.Hex())).Render(strings.Repeat("█", width))
}

// AnimatedSpinner returns frame of animated spinner
func AnimatedSpinner(frame int) string {
	spinners := []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}
	return spinners[frame%len(spinners)]
}

// IterationBar draws one block per allowed iteration, filling the first n.
func IterationBar(n, limit int) string {
	if limit <= 0 {
		return ""
	}
	n = max(0, min(n, limit))

	var b strings.Builder
	for i := 1; i <= limit; i++ {
		if i > n {
			b.WriteString(Subtle.Render("·"))
			continue
		}
		frac := float64(i) / float64(limit)
		switch {
		case frac > 0.8:
			b.WriteString(SparkLow.Render("■"))
		case frac > 0.4:
			b.WriteString(SparkMid.Render("■"))
		default:
			b.WriteString(SparkHigh.Render("■"))
		}
	}
	return b.String()
}

// GrowthSparkline plots sequence lengths on a log scale, one bar per
// iteration, with the bar for iteration mark highlighted.
func GrowthSparkline(lengths []int, mark int) string {
	if len(lengths) == 0 {
		return ""
	}
	bars := []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

	logs := make([]float64, len(lengths))
	lo, hi := math.Inf(1), math.Inf(-1)
	for i, n := range lengths {
		logs[i] = math.Log1p(float64(n))
		lo = math.Min(lo, logs[i])
		hi = math.Max(hi, logs[i])
	}
	span := hi - lo
	if span == 0 {
		span = 1
	}

	var b strings.Builder
	for i, v := range logs {
		idx := int((v - lo) / span * float64(len(bars)-1))
		ch := string(bars[idx])
		if i == mark {
			b.WriteString(MetricValue.Render(ch))
		} else {
			b.WriteString(Subtle.Render(ch))
		}
	}
	return b.String()
}

func Separator(width int) string {
	mid := width / 2
	left := strings.Repeat("─", max(mid-3, 0))
	right := strings.Repeat("─", max(width-mid-3, 0))
	return Subtle.Render(left + " ◆ " + right)
}
