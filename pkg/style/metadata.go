package style

import (
	"fmt"
	"math"
	"sort"
)

// Metadata is the view of a dataset's attributes needed for matching.
type Metadata interface {
	// Lookup returns the value stored under key and whether it exists.
	Lookup(key string) (any, bool)
}

// Attrs is a map-backed [Metadata].
type Attrs map[string]any

// Lookup implements [Metadata].
func (a Attrs) Lookup(key string) (any, bool) {
	v, ok := a[key]
	return v, ok
}

// Keys returns the attribute names in sorted order.
func (a Attrs) Keys() []string {
	keys := make([]string, 0, len(a))
	for k := range a {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Equal reports whether two scalar metadata values are equal.
//
// Strings and booleans compare exactly. Numbers of any Go numeric kind
// compare by value, so int(228) equals float64(228). Values of different
// kinds (a string and a number) are never equal.
func Equal(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if fa, ok := toFloat(a); ok {
		fb, ok := toFloat(b)
		return ok && (fa == fb || (math.IsNaN(fa) && math.IsNaN(fb)))
	}
	switch va := a.(type) {
	case string:
		vb, ok := b.(string)
		return ok && va == vb
	case bool:
		vb, ok := b.(bool)
		return ok && va == vb
	}
	return fmt.Sprint(a) == fmt.Sprint(b)
}

// Number returns v as a float64 when it is any Go integer or float kind.
func Number(v any) (float64, bool) {
	return toFloat(v)
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	}
	return 0, false
}
