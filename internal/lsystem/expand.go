package lsystem

import (
	"fmt"
	"strings"

	"github.com/san-kum/fractal/internal/fractal"
)

// Expand rewrites the axiom of def n times.
//
// Every round replaces each variable by its rule and copies every other
// symbol through, so n = 0 yields the axiom itself. Rules may be empty, in
// which case the variable disappears from the next generation.
func Expand(def *fractal.Definition, n int) (string, error) {
	if err := def.CheckIterations(n); err != nil {
		return "", err
	}

	seq := def.Axiom
	for round := 0; round < n; round++ {
		next, err := rewrite(def, seq)
		if err != nil {
			return "", err
		}
		seq = next
	}
	return seq, nil
}

func rewrite(def *fractal.Definition, seq string) (string, error) {
	var sb strings.Builder
	sb.Grow(len(seq) * 2)
	for i := 0; i < len(seq); i++ {
		sym := seq[i]
		if !def.IsVariable(sym) {
			sb.WriteByte(sym)
			continue
		}
		rule, ok := def.Rules[sym]
		if !ok {
			return "", fmt.Errorf("%w: %s: variable %q has no rule", fractal.ErrInconsistentDefinition, def.Name, sym)
		}
		sb.WriteString(rule)
	}
	return sb.String(), nil
}

// Length returns len(Expand(def, n)) without building the sequence.
func Length(def *fractal.Definition, n int) (int, error) {
	if err := def.CheckIterations(n); err != nil {
		return 0, err
	}
	if err := def.Validate(); err != nil {
		return 0, err
	}

	// lengths[sym] holds the length a single sym grows to after the current number of rounds.
	var lengths [256]int
	for i := range lengths {
		lengths[i] = 1
	}
	for round := 0; round < n; round++ {
		var next [256]int
		for i := range next {
			sym := byte(i)
			if !def.IsVariable(sym) {
				next[i] = 1
				continue
			}
			rule := def.Rules[sym]
			total := 0
			for j := 0; j < len(rule); j++ {
				total += lengths[rule[j]]
			}
			next[i] = total
		}
		lengths = next
	}

	total := 0
	for i := 0; i < len(def.Axiom); i++ {
		total += lengths[def.Axiom[i]]
	}
	return total, nil
}

// Growth returns Length for every iteration count from 0 to MaxIterations.
func Growth(def *fractal.Definition) ([]int, error) {
	out := make([]int, 0, def.MaxIterations+1)
	for n := 0; n <= def.MaxIterations; n++ {
		l, err := Length(def, n)
		if err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, nil
}
