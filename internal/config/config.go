package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/fractal/internal/gradient"
	"github.com/san-kum/fractal/internal/logging"
)

const (
	DefaultFractal    = "barnsley-fern"
	DefaultIterations = 5
	DefaultWidth      = 1024
	DefaultHeight     = 768
	DefaultColorStart = "#4dfe44"
	DefaultColorEnd   = "#1e90ff"
	DefaultStroke     = "#000000"
	DefaultLineWidth  = 1.0
	DefaultOutput     = "fractal.png"
	DefaultLogLevel   = "info"
)

type Config struct {
	Fractal    string         `yaml:"fractal"`
	Iterations int            `yaml:"iterations"`
	Surface    SurfaceConfig  `yaml:"surface"`
	Gradient   GradientConfig `yaml:"gradient"`
	Output     string         `yaml:"output"`
	LogLevel   string         `yaml:"log_level"`
}

type SurfaceConfig struct {
	Width     int     `yaml:"width"`
	Height    int     `yaml:"height"`
	Stroke    string  `yaml:"stroke"`
	LineWidth float64 `yaml:"line_width"`
}

type GradientConfig struct {
	Start string `yaml:"start"`
	End   string `yaml:"end"`
}

func DefaultConfig() *Config {
	return &Config{
		Fractal:    DefaultFractal,
		Iterations: DefaultIterations,
		Surface: SurfaceConfig{
			Width:     DefaultWidth,
			Height:    DefaultHeight,
			Stroke:    DefaultStroke,
			LineWidth: DefaultLineWidth,
		},
		Gradient: GradientConfig{
			Start: DefaultColorStart,
			End:   DefaultColorEnd,
		},
		Output:   DefaultOutput,
		LogLevel: DefaultLogLevel,
	}
}

// IterationsFor caps the configured iteration count at a fractal's limit.
// Callers use it when the count was not asked for explicitly.
func (c *Config) IterationsFor(limit int) int {
	return max(min(c.Iterations, limit), 0)
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Validate checks the values that do not depend on the catalog.
// Fractal names and iteration ceilings are checked by the renderer.
func (c *Config) Validate() error {
	if c.Surface.Width <= 0 || c.Surface.Height <= 0 {
		return fmt.Errorf("surface size must be positive, got %dx%d", c.Surface.Width, c.Surface.Height)
	}
	if c.Surface.LineWidth <= 0 {
		return fmt.Errorf("line width must be positive, got %g", c.Surface.LineWidth)
	}
	for _, hex := range []string{c.Gradient.Start, c.Gradient.End, c.Surface.Stroke} {
		if _, err := gradient.ParseHex(hex); err != nil {
			return err
		}
	}
	if _, err := logging.ParseLevel(c.LogLevel); err != nil {
		return err
	}
	return nil
}
