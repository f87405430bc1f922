package lsystem

import (
	"fmt"
	"math"
	"strconv"

	"github.com/san-kum/fractal/internal/fractal"
)

// Catalog is the fixed, ordered set of fractals. It is built once and only read afterwards.
type Catalog struct {
	ids    []int
	byID   map[int]*fractal.Definition
	bySlug map[string]int
}

// NewCatalog builds the catalog. Ids start at 1 and follow the order below.
func NewCatalog() *Catalog {
	c := &Catalog{
		byID:   make(map[int]*fractal.Definition),
		bySlug: make(map[string]int),
	}
	for i, def := range definitions() {
		id := i + 1
		c.ids = append(c.ids, id)
		c.byID[id] = def
		c.bySlug[def.Slug] = id
	}
	return c
}

// Lookup returns a copy of the definition registered under id. Changing it
// does not affect the catalog.
func (c *Catalog) Lookup(id int) (*fractal.Definition, error) {
	def, ok := c.byID[id]
	if !ok {
		return nil, fmt.Errorf("%w: id %d", fractal.ErrUnknownFractal, id)
	}
	return def.Clone(), nil
}

// LookupName resolves a slug such as "dragon-curve" to its id.
func (c *Catalog) LookupName(slug string) (int, error) {
	id, ok := c.bySlug[slug]
	if !ok {
		return 0, fmt.Errorf("%w: %q", fractal.ErrUnknownFractal, slug)
	}
	return id, nil
}

// Resolve accepts either a numeric id or a slug.
func (c *Catalog) Resolve(ref string) (int, error) {
	if id, err := strconv.Atoi(ref); err == nil {
		if _, err := c.Lookup(id); err != nil {
			return 0, err
		}
		return id, nil
	}
	return c.LookupName(ref)
}

// IDs returns the catalog ids in order.
func (c *Catalog) IDs() []int {
	ids := make([]int, len(c.ids))
	copy(ids, c.ids)
	return ids
}

// Len returns the number of entries.
func (c *Catalog) Len() int {
	return len(c.ids)
}

func definitions() []*fractal.Definition {
	return []*fractal.Definition{
		{
			Name:      "Barnsley fern",
			Slug:      "barnsley-fern",
			Variables: "XF",
			Axiom:     "X",
			Rules: map[byte]string{
				'X': "F-[[X]+X]+F[+FX]-X",
				'F': "FF",
			},
			TurnAngle:     22.5,
			MaxIterations: 7,
			View:          fractal.ViewScaling{InitialHeading: math.Pi / 3, StrokeLength: 0.025, OriginX: 0.5, OriginY: 1.0},
		},
		{
			Name:      "Dragon curve",
			Slug:      "dragon-curve",
			Variables: "XY",
			Axiom:     "FX",
			Rules: map[byte]string{
				'X': "X+YF+",
				'Y': "-FX-Y",
			},
			TurnAngle:     90,
			MaxIterations: 12,
			View:          fractal.ViewScaling{InitialHeading: 60, StrokeLength: 0.1, OriginX: 0.5, OriginY: 0.5},
		},
		{
			Name:      "32-segment curve",
			Slug:      "segment-32",
			Variables: "F",
			Axiom:     "F+F+F+F",
			Rules: map[byte]string{
				'F': "-F+F-F-F+F+FF-F+F+FF+F-F-FF+FF-FF+F+F-FF-F-F+FF-F-F+F+F-F+",
			},
			TurnAngle:     90,
			MaxIterations: 3,
			View:          fractal.ViewScaling{InitialHeading: 90, StrokeLength: 0.013, OriginX: 0.6, OriginY: 0.5},
		},
		{
			Name:      "Fractal plant",
			Slug:      "fractal-plant",
			Variables: "F",
			Axiom:     "F",
			Rules: map[byte]string{
				'F': "FF-[-F+F+F]+[+F-F-F]",
			},
			TurnAngle:     22.5,
			MaxIterations: 5,
			View:          fractal.ViewScaling{InitialHeading: math.Pi / 3, StrokeLength: 0.045, OriginX: 0.5, OriginY: 0.9},
		},
		{
			Name:      "Koch island",
			Slug:      "koch-island",
			Variables: "F",
			Axiom:     "F+F+F+F",
			Rules: map[byte]string{
				'F': "F+F-F-FF+F+F-F",
			},
			TurnAngle:     90,
			MaxIterations: 4,
			View:          fractal.ViewScaling{InitialHeading: 90, StrokeLength: 0.025, OriginX: 0.6, OriginY: 0.5},
		},
		{
			// A and B both draw forward.
			Name:      "Peano-Gosper curve",
			Slug:      "peano-gosper",
			Variables: "AB",
			Axiom:     "A",
			Rules: map[byte]string{
				'A': "A-B--B+A++AA+B-",
				'B': "+A-BB--B-A++A+B",
			},
			TurnAngle:     60,
			MaxIterations: 5,
			View:          fractal.ViewScaling{InitialHeading: 60, StrokeLength: 0.035, OriginX: 0.5, OriginY: 0.3},
		},
		{
			Name:      "Hilbert curve",
			Slug:      "hilbert-curve",
			Variables: "XY",
			Axiom:     "X",
			Rules: map[byte]string{
				'X': "+YF-XFX-FY+",
				'Y': "-XF+YFY+FX-",
			},
			TurnAngle:     90,
			MaxIterations: 7,
			View:          fractal.ViewScaling{InitialHeading: -90, StrokeLength: 0.035, OriginX: 0.3, OriginY: 0.7},
		},
		{
			// F carries an empty rule but is not a variable, so it is never erased.
			Name:      "Frec fractal",
			Slug:      "frec-fractal",
			Variables: "XY",
			Axiom:     "XYXYXYX+XYXYXYX+XYXYXYX+XYXYXYX",
			Rules: map[byte]string{
				'F': "",
				'X': "FX+FX+FXFY-FY-",
				'Y': "+FX+FXFY-FY-FY",
			},
			TurnAngle:     90,
			MaxIterations: 4,
			View:          fractal.ViewScaling{InitialHeading: 45, StrokeLength: 0.02, OriginX: 0.5, OriginY: 0.5},
		},
		{
			Name:      "Sierpinski triangle",
			Slug:      "sierpinski-triangle",
			Variables: "XF",
			Axiom:     "FXF--FF--FF",
			Rules: map[byte]string{
				'X': "--FXF++FXF++FXF--",
				'F': "FF",
			},
			TurnAngle:     60,
			MaxIterations: 7,
			View:          fractal.ViewScaling{InitialHeading: -60, StrokeLength: 0.03, OriginX: 0.2, OriginY: 0.2},
		},
		{
			Name:      "Sierpinski square",
			Slug:      "sierpinski-square",
			Variables: "F",
			Axiom:     "F+F+F+F",
			Rules: map[byte]string{
				'F': "FF+F+F+F+FF",
			},
			TurnAngle:     90,
			MaxIterations: 5,
			View:          fractal.ViewScaling{InitialHeading: -90, StrokeLength: 0.025, OriginX: 0.2, OriginY: 0.8},
		},
		{
			Name:      "Fractal plant 2",
			Slug:      "fractal-plant-2",
			Variables: "FVWXYZ",
			Axiom:     "VZFFF",
			Rules: map[byte]string{
				'F': "F",
				'V': "[+++W][---W]YV",
				'W': "+X[-W]Z",
				'X': "-W[+X]Z",
				'Y': "YZ",
				'Z': "[-FFF][+FFF]F",
			},
			TurnAngle:     18,
			MaxIterations: 11,
			View:          fractal.ViewScaling{InitialHeading: -math.Pi / 4, StrokeLength: 0.15, OriginX: 0.5, OriginY: 0.8},
		},
		{
			Name:      "Koch snowflake",
			Slug:      "koch-snowflake",
			Variables: "F",
			Axiom:     "F++F++F",
			Rules: map[byte]string{
				'F': "F-F++F-F",
			},
			TurnAngle:     60,
			MaxIterations: 6,
			View:          fractal.ViewScaling{InitialHeading: -60, StrokeLength: 0.01, OriginX: 0.2, OriginY: 0.7},
		},
	}
}
