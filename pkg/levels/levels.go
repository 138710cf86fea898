// Package levels computes contour level boundaries.
//
// Levels are either listed explicitly, generated as multiples of a step
// around a reference value, or derived automatically from the data range as
// "nice" bins. A divergence point makes automatic levels symmetric about it,
// which keeps anomaly charts centred on zero.
package levels

import (
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/matzehuels/mapstyle/pkg/errors"
)

// DefaultN is the number of bins automatic levels aim for.
const DefaultN = 10

// Levels describes how to compute contour levels for a dataset.
type Levels struct {
	// Explicit levels win over everything else.
	Explicit []float64
	// Step generates multiples of Step offset by Reference.
	Step      float64
	Reference *float64
	// DivergencePoint centres automatic levels.
	DivergencePoint *float64
	// N is the target bin count for automatic levels.
	N int
}

// IsZero reports whether l carries no settings and would compute automatic
// levels with the defaults.
func (l Levels) IsZero() bool {
	return len(l.Explicit) == 0 && l.Step == 0 && l.Reference == nil && l.DivergencePoint == nil && l.N == 0
}

// Apply computes the levels for values. Explicit levels are returned as
// is; values only matter for step and automatic levels.
func (l Levels) Apply(values []float64) ([]float64, error) {
	if len(l.Explicit) > 0 {
		return append([]float64(nil), l.Explicit...), nil
	}
	if l.Step != 0 {
		ref := 0.0
		if l.Reference != nil {
			ref = *l.Reference
		}
		return StepRange(values, l.Step, ref)
	}
	n := l.N
	if n == 0 {
		n = DefaultN
	}
	return AutoRange(values, n, l.DivergencePoint)
}

// StepRange returns the multiples of step, offset by reference, that
// bracket the range of values.
func StepRange(values []float64, step, reference float64) ([]float64, error) {
	if step <= 0 || math.IsNaN(step) || math.IsInf(step, 0) {
		return nil, errors.New(errors.ErrCodeInvalidLevels, "level step must be positive, got %v", step)
	}
	lo, hi, err := bounds(values)
	if err != nil {
		return nil, err
	}
	first := math.Floor(round((lo - reference) / step))
	last := math.Ceil(round((hi - reference) / step))
	out := make([]float64, 0, int(last-first)+1)
	for k := first; k <= last; k++ {
		out = append(out, round(reference+k*step))
	}
	return out, nil
}

// AutoRange returns evenly spaced levels with a "nice" bin width (1, 2,
// 2.5 or 5 times a power of ten) covering values in roughly n bins. With a
// divergence point the levels are symmetric about it and include it.
func AutoRange(values []float64, n int, divergence *float64) ([]float64, error) {
	if n < 1 {
		return nil, errors.New(errors.ErrCodeInvalidLevels, "level count must be positive, got %d", n)
	}
	lo, hi, err := bounds(values)
	if err != nil {
		return nil, err
	}
	if divergence != nil {
		d := *divergence
		m := math.Max(math.Abs(lo-d), math.Abs(hi-d))
		if m == 0 {
			return []float64{d}, nil
		}
		width := niceWidth(2 * m / float64(n))
		k := math.Ceil(round(m / width))
		return span(d-k*width, d+k*width, width), nil
	}
	if lo == hi {
		return []float64{lo}, nil
	}
	width := niceWidth((hi - lo) / float64(n))
	start := math.Floor(round(lo/width)) * width
	stop := math.Ceil(round(hi/width)) * width
	return span(start, stop, width), nil
}

// Range returns start, start+step, ... up to but excluding stop.
func Range(start, stop, step float64) ([]float64, error) {
	if step == 0 || math.IsNaN(step) || math.IsInf(step, 0) {
		return nil, errors.New(errors.ErrCodeInvalidLevels, "range step must be non-zero and finite, got %v", step)
	}
	count := int(math.Ceil(round((stop - start) / step)))
	if count <= 0 {
		return []float64{}, nil
	}
	out := make([]float64, count)
	for i := range out {
		out[i] = round(start + float64(i)*step)
	}
	return out, nil
}

// Between returns lo, lo+step, ... up to and including hi. The count is
// derived from the rounded quotient, so hi is kept even when step has no
// exact binary representation.
func Between(lo, hi, step float64) ([]float64, error) {
	if step <= 0 || math.IsNaN(step) || math.IsInf(step, 0) {
		return nil, errors.New(errors.ErrCodeInvalidLevels, "level step must be positive and finite, got %v", step)
	}
	if hi < lo {
		return nil, errors.New(errors.ErrCodeInvalidLevels, "level range %v..%v is empty", lo, hi)
	}
	count := int(math.Floor(round((hi-lo)/step))) + 1
	out := make([]float64, count)
	for i := range out {
		out[i] = round(lo + float64(i)*step)
	}
	return out, nil
}

func span(start, stop, width float64) []float64 {
	count := int(math.Round((stop-start)/width)) + 1
	if count < 2 {
		return []float64{round(start)}
	}
	out := floats.Span(make([]float64, count), start, stop)
	for i := range out {
		out[i] = round(out[i])
	}
	return out
}

// bounds returns the finite minimum and maximum of values.
func bounds(values []float64) (float64, float64, error) {
	finite := make([]float64, 0, len(values))
	for _, v := range values {
		if !math.IsNaN(v) && !math.IsInf(v, 0) {
			finite = append(finite, v)
		}
	}
	if len(finite) == 0 {
		return 0, 0, errors.New(errors.ErrCodeInvalidLevels, "no finite values to derive levels from")
	}
	return floats.Min(finite), floats.Max(finite), nil
}

func niceWidth(raw float64) float64 {
	mag := math.Pow(10, math.Floor(math.Log10(raw)))
	for _, m := range []float64{1, 2, 2.5, 5, 10} {
		if w := m * mag; w >= raw*(1-1e-9) {
			return w
		}
	}
	return 10 * mag
}

// round trims floating point noise so that 0.1*3 prints as 0.3.
func round(v float64) float64 {
	const scale = 1e10
	if math.Abs(v*scale) > 1<<52 {
		return v
	}
	r := math.Round(v*scale) / scale
	if r == 0 {
		return 0
	}
	return r
}
