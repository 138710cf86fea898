package levels

import (
	"github.com/matzehuels/mapstyle/pkg/errors"
	"github.com/matzehuels/mapstyle/pkg/style"
)

// Parameter names read by FromParams.
const (
	KeyLevels     = "levels"
	KeyStep       = "level_step"
	KeyReference  = "level_reference"
	KeyDivergence = "divergence_point"
	KeyN          = "n_levels"
)

// FromParams builds level settings from resolved style parameters.
//
// "levels" is either a list of numbers or a range mapping
// {start, stop, step} with stop excluded.
func FromParams(p style.Params) (Levels, error) {
	var l Levels
	if v, ok := p[KeyLevels]; ok && v != nil {
		explicit, err := Parse(v)
		if err != nil {
			return l, err
		}
		l.Explicit = explicit
	}
	if p.Has(KeyStep) {
		step, ok := p.Float(KeyStep)
		if !ok || step <= 0 {
			return l, errors.New(errors.ErrCodeInvalidLevels, "%s must be a positive number", KeyStep)
		}
		l.Step = step
	}
	if p.Has(KeyReference) {
		ref, ok := p.Float(KeyReference)
		if !ok {
			return l, errors.New(errors.ErrCodeInvalidLevels, "%s must be a number", KeyReference)
		}
		l.Reference = &ref
	}
	if p.Has(KeyDivergence) {
		d, ok := p.Float(KeyDivergence)
		if !ok {
			return l, errors.New(errors.ErrCodeInvalidLevels, "%s must be a number", KeyDivergence)
		}
		l.Divergence(d)
	}
	if p.Has(KeyN) {
		n, ok := p.Int(KeyN)
		if !ok || n < 1 {
			return l, errors.New(errors.ErrCodeInvalidLevels, "%s must be a positive integer", KeyN)
		}
		l.N = n
	}
	return l, nil
}

// Divergence sets the divergence point.
func (l *Levels) Divergence(d float64) {
	l.DivergencePoint = &d
}

// Parse reads an explicit level list or a {start, stop, step} range.
func Parse(v any) ([]float64, error) {
	switch t := v.(type) {
	case map[string]any:
		return parseRange(style.Params(t))
	case style.Params:
		return parseRange(t)
	}
	list, ok := style.AsFloats(v)
	if !ok {
		return nil, errors.New(errors.ErrCodeInvalidLevels, "levels must be a list of numbers or a {start, stop, step} range")
	}
	for i := 1; i < len(list); i++ {
		if list[i] <= list[i-1] {
			return nil, errors.New(errors.ErrCodeInvalidLevels, "levels must increase: %v follows %v", list[i], list[i-1])
		}
	}
	return list, nil
}

func parseRange(p style.Params) ([]float64, error) {
	start, ok1 := p.Float("start")
	stop, ok2 := p.Float("stop")
	if !ok1 || !ok2 {
		return nil, errors.New(errors.ErrCodeInvalidLevels, "level range needs numeric start and stop")
	}
	step := 1.0
	if p.Has("step") {
		s, ok := p.Float("step")
		if !ok {
			return nil, errors.New(errors.ErrCodeInvalidLevels, "level range step must be a number")
		}
		step = s
	}
	if step <= 0 {
		return nil, errors.New(errors.ErrCodeInvalidLevels, "level range step must be positive, got %v", step)
	}
	return Range(start, stop, step)
}
