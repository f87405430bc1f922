package export

import (
	"encoding/json"
	"io"
	"os"

	"github.com/san-kum/fractal/internal/fractal"
	"github.com/san-kum/fractal/internal/lsystem"
)

type ExportData struct {
	ID            int               `json:"id"`
	Name          string            `json:"name"`
	Slug          string            `json:"slug"`
	Variables     string            `json:"variables"`
	Axiom         string            `json:"axiom"`
	Rules         map[string]string `json:"rules"`
	TurnAngle     float64           `json:"turn_angle"`
	MaxIterations int               `json:"max_iterations"`
	View          ViewData          `json:"view"`
	Growth        []int             `json:"growth"`
}

type ViewData struct {
	InitialHeading float64 `json:"initial_heading"`
	StrokeLength   float64 `json:"stroke_length"`
	OriginX        float64 `json:"origin_x"`
	OriginY        float64 `json:"origin_y"`
}

// Describe collects def and its sequence length at every allowed iteration.
func Describe(id int, def *fractal.Definition) (*ExportData, error) {
	growth, err := lsystem.Growth(def)
	if err != nil {
		return nil, err
	}
	rules := make(map[string]string, len(def.Rules))
	for sym, rhs := range def.Rules {
		rules[string(sym)] = rhs
	}
	return &ExportData{
		ID:            id,
		Name:          def.Name,
		Slug:          def.Slug,
		Variables:     def.Variables,
		Axiom:         def.Axiom,
		Rules:         rules,
		TurnAngle:     def.TurnAngle,
		MaxIterations: def.MaxIterations,
		View: ViewData{
			InitialHeading: def.View.InitialHeading,
			StrokeLength:   def.View.StrokeLength,
			OriginX:        def.View.OriginX,
			OriginY:        def.View.OriginY,
		},
		Growth: growth,
	}, nil
}

func WriteJSON(w io.Writer, data any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}

func ExportJSON(path string, data any) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()
	return WriteJSON(file, data)
}
