package style

import (
	"fmt"
	"sort"
	"strconv"
)

// Layer kinds. The kind of a sub-style selects which defaults section it
// is resolved against.
const (
	KindContour = "contour"
	KindPoint   = "point"
)

// KindKey is the parameter holding the layer kind of a sub-style.
const KindKey = "type"

// Params holds rendering parameters: colours, levels, line widths, legend
// settings and anything else the renderer understands.
type Params map[string]any

// Kind returns the layer kind of the parameters, defaulting to contour.
func (p Params) Kind() string {
	if k, ok := p.String(KindKey); ok && k != "" {
		return k
	}
	return KindContour
}

// Clone returns a deep copy of p. Nested maps and slices are copied so the
// result can be modified without touching the original.
func (p Params) Clone() Params {
	if p == nil {
		return nil
	}
	out := make(Params, len(p))
	for k, v := range p {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	switch t := v.(type) {
	case Params:
		return t.Clone()
	case map[string]any:
		return map[string]any(Params(t).Clone())
	case []any:
		out := make([]any, len(t))
		for i := range t {
			out[i] = cloneValue(t[i])
		}
		return out
	case []float64:
		return append([]float64(nil), t...)
	case []string:
		return append([]string(nil), t...)
	}
	return v
}

// Merge returns a new Params holding p overlaid with each of overrides in
// turn. The merge is shallow: a top-level key in a later map replaces the
// whole value of the same key in an earlier one.
func (p Params) Merge(overrides ...Params) Params {
	out := p.Clone()
	if out == nil {
		out = Params{}
	}
	for _, o := range overrides {
		for k, v := range o {
			out[k] = cloneValue(v)
		}
	}
	return out
}

// Keys returns the parameter names in sorted order.
func (p Params) Keys() []string {
	keys := make([]string, 0, len(p))
	for k := range p {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Has reports whether key is set.
func (p Params) Has(key string) bool {
	_, ok := p[key]
	return ok
}

// String returns the string value of key.
func (p Params) String(key string) (string, bool) {
	s, ok := p[key].(string)
	return s, ok
}

// Bool returns the boolean value of key.
func (p Params) Bool(key string) (bool, bool) {
	b, ok := p[key].(bool)
	return b, ok
}

// Float returns the numeric value of key. Integers are converted.
func (p Params) Float(key string) (float64, bool) {
	v, ok := p[key]
	if !ok {
		return 0, false
	}
	return toFloat(v)
}

// Int returns the integer value of key. Floats with a fractional part are
// rejected.
func (p Params) Int(key string) (int, bool) {
	f, ok := p.Float(key)
	if !ok || f != float64(int(f)) {
		return 0, false
	}
	return int(f), true
}

// Floats returns the value of key as a list of numbers. A single number is
// returned as a one-element list.
func (p Params) Floats(key string) ([]float64, bool) {
	v, ok := p[key]
	if !ok {
		return nil, false
	}
	return AsFloats(v)
}

// Strings returns the value of key as a list of strings. A single string is
// returned as a one-element list.
func (p Params) Strings(key string) ([]string, bool) {
	switch t := p[key].(type) {
	case string:
		return []string{t}, true
	case []string:
		return t, true
	case []any:
		out := make([]string, len(t))
		for i := range t {
			s, ok := t[i].(string)
			if !ok {
				return nil, false
			}
			out[i] = s
		}
		return out, true
	}
	return nil, false
}

// Map returns the nested mapping stored under key.
func (p Params) Map(key string) (Params, bool) {
	switch t := p[key].(type) {
	case Params:
		return t, true
	case map[string]any:
		return Params(t), true
	}
	return nil, false
}

// AsFloats converts a loosely typed YAML or JSON value into a list of
// numbers.
func AsFloats(v any) ([]float64, bool) {
	switch t := v.(type) {
	case []float64:
		return t, true
	case []int:
		out := make([]float64, len(t))
		for i, n := range t {
			out[i] = float64(n)
		}
		return out, true
	case []any:
		out := make([]float64, len(t))
		for i := range t {
			f, ok := toFloat(t[i])
			if !ok {
				return nil, false
			}
			out[i] = f
		}
		return out, true
	}
	if f, ok := toFloat(v); ok {
		return []float64{f}, true
	}
	return nil, false
}

// FormatValue renders a parameter value for display. Numbers use the
// shortest representation.
func FormatValue(v any) string {
	if f, ok := toFloat(v); ok {
		return strconv.FormatFloat(f, 'g', -1, 64)
	}
	return fmt.Sprint(v)
}
