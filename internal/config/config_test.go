package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/san-kum/fractal/internal/lsystem"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Fractal != "barnsley-fern" {
		t.Errorf("expected fractal barnsley-fern, got %s", cfg.Fractal)
	}
	if cfg.Surface.Width <= 0 || cfg.Surface.Height <= 0 {
		t.Error("surface size should be positive")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate: %v", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero width", func(c *Config) { c.Surface.Width = 0 }},
		{"negative height", func(c *Config) { c.Surface.Height = -1 }},
		{"zero line width", func(c *Config) { c.Surface.LineWidth = 0 }},
		{"bad start", func(c *Config) { c.Gradient.Start = "blue" }},
		{"bad stroke", func(c *Config) { c.Surface.Stroke = "#12" }},
		{"bad level", func(c *Config) { c.LogLevel = "chatty" }},
	}

	for _, tt := range tests {
		cfg := DefaultConfig()
		tt.mutate(cfg)
		if err := cfg.Validate(); err == nil {
			t.Errorf("%s: expected validation error", tt.name)
		}
	}
}

func TestSaveLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fractal.yaml")

	cfg := DefaultConfig()
	cfg.Fractal = "dragon-curve"
	cfg.Iterations = 9
	cfg.Gradient.End = "#abcdef"

	if err := Save(path, cfg); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if loaded.Fractal != "dragon-curve" {
		t.Errorf("expected dragon-curve, got %s", loaded.Fractal)
	}
	if loaded.Iterations != 9 {
		t.Errorf("expected 9 iterations, got %d", loaded.Iterations)
	}
	if loaded.Gradient.End != "#abcdef" {
		t.Errorf("expected #abcdef, got %s", loaded.Gradient.End)
	}
}

func TestLoadKeepsDefaultsForMissingKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "partial.yaml")
	if err := os.WriteFile(path, []byte("fractal: hilbert-curve\ngradient:\n  end: \"#000000\"\n"), 0644); err != nil {
		t.Fatalf("write failed: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if loaded.Fractal != "hilbert-curve" {
		t.Errorf("expected hilbert-curve, got %s", loaded.Fractal)
	}
	if loaded.Surface.Width != DefaultWidth {
		t.Errorf("expected default width %d, got %d", DefaultWidth, loaded.Surface.Width)
	}
	if loaded.Gradient.Start != DefaultColorStart {
		t.Errorf("expected default start color, got %s", loaded.Gradient.Start)
	}
	if loaded.Gradient.End != "#000000" {
		t.Errorf("expected #000000, got %s", loaded.Gradient.End)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestGetPreset(t *testing.T) {
	cfg := GetPreset("dragon-curve", "fire")
	if cfg == nil {
		t.Fatal("expected preset, got nil")
	}
	if cfg.Iterations != 12 {
		t.Errorf("expected 12 iterations, got %d", cfg.Iterations)
	}
}

func TestGetPreset_NotFound(t *testing.T) {
	if cfg := GetPreset("dragon-curve", "nonexistent"); cfg != nil {
		t.Error("expected nil for nonexistent preset")
	}
	if cfg := GetPreset("nonexistent", "fire"); cfg != nil {
		t.Error("expected nil for nonexistent fractal")
	}
}

func TestListPresets(t *testing.T) {
	presets := ListPresets("barnsley-fern")
	if len(presets) != 2 {
		t.Fatalf("expected 2 presets for barnsley-fern, got %d", len(presets))
	}
	if presets[0] != "autumn" || presets[1] != "forest" {
		t.Errorf("expected sorted names, got %v", presets)
	}
	if presets := ListPresets("nonexistent"); presets != nil {
		t.Error("expected nil for nonexistent fractal")
	}
}

func TestPresetsFitCatalog(t *testing.T) {
	catalog := lsystem.NewCatalog()
	for slug, presets := range Presets {
		id, err := catalog.LookupName(slug)
		if err != nil {
			t.Errorf("preset group %s: %v", slug, err)
			continue
		}
		def, _ := catalog.Lookup(id)
		for name, p := range presets {
			if p.Fractal != slug {
				t.Errorf("%s/%s: fractal field %s does not match group", slug, name, p.Fractal)
			}
			if err := def.CheckIterations(p.Iterations); err != nil {
				t.Errorf("%s/%s: %v", slug, name, err)
			}
		}
	}
}

func TestIterationsForCapsAtLimit(t *testing.T) {
	cfg := DefaultConfig()

	catalog := lsystem.NewCatalog()
	for _, id := range catalog.IDs() {
		def, _ := catalog.Lookup(id)
		n := cfg.IterationsFor(def.MaxIterations)
		if err := def.CheckIterations(n); err != nil {
			t.Errorf("%s: default iterations %d rejected: %v", def.Slug, n, err)
		}
	}

	if got := cfg.IterationsFor(3); got != 3 {
		t.Errorf("expected 3, got %d", got)
	}
	if got := cfg.IterationsFor(12); got != DefaultIterations {
		t.Errorf("expected %d, got %d", DefaultIterations, got)
	}
}
