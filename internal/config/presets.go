package config

import "sort"

// Presets are named color and size combinations per fractal slug.
var Presets = map[string]map[string]*Config{
	"barnsley-fern": {
		"forest": {
			Fractal: "barnsley-fern", Iterations: 6,
			Gradient: GradientConfig{Start: "#0b3d0b", End: "#7cfc00"},
		},
		"autumn": {
			Fractal: "barnsley-fern", Iterations: 6,
			Gradient: GradientConfig{Start: "#8b0000", End: "#ffa500"},
		},
	},
	"dragon-curve": {
		"fire": {
			Fractal: "dragon-curve", Iterations: 12,
			Gradient: GradientConfig{Start: "#ff4500", End: "#ffd700"},
		},
		"ice": {
			Fractal: "dragon-curve", Iterations: 10,
			Gradient: GradientConfig{Start: "#e0ffff", End: "#00008b"},
		},
	},
	"hilbert-curve": {
		"circuit": {
			Fractal: "hilbert-curve", Iterations: 6,
			Gradient: GradientConfig{Start: "#00ff88", End: "#004422"},
		},
	},
	"koch-snowflake": {
		"frost": {
			Fractal: "koch-snowflake", Iterations: 5,
			Gradient: GradientConfig{Start: "#ffffff", End: "#4682b4"},
		},
	},
	"sierpinski-triangle": {
		"sunset": {
			Fractal: "sierpinski-triangle", Iterations: 7,
			Gradient: GradientConfig{Start: "#ff00ff", End: "#ffa500"},
		},
	},
	"fractal-plant-2": {
		"bloom": {
			Fractal: "fractal-plant-2", Iterations: 9,
			Gradient: GradientConfig{Start: "#ff69b4", End: "#228b22"},
		},
	},
}

func GetPreset(fractal, preset string) *Config {
	fractalPresets, ok := Presets[fractal]
	if !ok {
		return nil
	}
	cfg, ok := fractalPresets[preset]
	if !ok {
		return nil
	}
	return cfg
}

// ListPresets returns the preset names of fractal in alphabetical order.
func ListPresets(fractal string) []string {
	fractalPresets, ok := Presets[fractal]
	if !ok {
		return nil
	}
	names := make([]string, 0, len(fractalPresets))
	for name := range fractalPresets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
