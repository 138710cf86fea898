package colors

import (
	"math"
	"sort"
	"strings"

	"github.com/hsluv/hsluv-go"
	"github.com/lucasb-eyer/go-colorful"
	"gonum.org/v1/gonum/floats"

	"github.com/matzehuels/mapstyle/pkg/errors"
)

// colormaps holds anchor stops for the named colormaps. A "_r" suffix on
// any name reverses it.
var colormaps = map[string][]string{
	"viridis": {"#440154", "#482878", "#3e4989", "#31688e", "#26828e", "#1f9e89", "#35b779", "#6ece58", "#b5de2b", "#fde725"},
	"magma":   {"#000004", "#1c1044", "#4f127b", "#812581", "#b5367a", "#e55964", "#fb8761", "#fec287", "#fcfdbf"},
	"turbo":   {"#30123b", "#4662d7", "#36aaf9", "#1ae4b6", "#72fe5e", "#c7ef34", "#faba39", "#f66b19", "#ca2a04", "#7a0403"},
	"RdBu":    {"#67001f", "#b2182b", "#d6604d", "#f4a582", "#fddbc7", "#f7f7f7", "#d1e5f0", "#92c5de", "#4393c3", "#2166ac", "#053061"},
	"Blues":   {"#f7fbff", "#deebf7", "#c6dbef", "#9ecae1", "#6baed6", "#4292c6", "#2171b5", "#08519c", "#08306b"},
	"greys":   {"#ffffff", "#f0f0f0", "#d9d9d9", "#bdbdbd", "#969696", "#737373", "#525252", "#252525", "#000000"},
	"YlGnBu":  {"#ffffd9", "#edf8b1", "#c7e9b4", "#7fcdbb", "#41b6c4", "#1d91c0", "#225ea8", "#253494", "#081d58"},
}

// Colormaps returns the colormap names in sorted order.
func Colormaps() []string {
	out := make([]string, 0, len(colormaps))
	for name := range colormaps {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Colormap returns the anchor colours of the named colormap.
func Colormap(name string) ([]string, bool) {
	if stops, ok := colormaps[name]; ok {
		return append([]string(nil), stops...), true
	}
	base, ok := strings.CutSuffix(name, "_r")
	if !ok {
		return nil, false
	}
	stops, ok := colormaps[base]
	if !ok {
		return nil, false
	}
	out := make([]string, len(stops))
	for i, s := range stops {
		out[len(stops)-1-i] = s
	}
	return out, true
}

// IsColormap reports whether name is a known colormap.
func IsColormap(name string) bool {
	_, ok := Colormap(name)
	return ok
}

// Expand turns a colour specification into exactly n normalised colours.
//
// spec is a colormap name, a single colour, or a list of colours. A single
// colour (or a one-element list) is repeated. A list of exactly n colours
// is normalised as is. Any other list, like a colormap, is treated as
// evenly spaced anchors and sampled at n points.
func Expand(spec any, n int) ([]string, error) {
	if n < 0 {
		return nil, errors.New(errors.ErrCodeInvalidInput, "cannot expand colours to %d entries", n)
	}
	var list []string
	switch t := spec.(type) {
	case string:
		if stops, ok := Colormap(t); ok {
			return Sample(stops, n)
		}
		list = []string{t}
	case []string:
		list = t
	case []any:
		list = make([]string, len(t))
		for i, v := range t {
			s, ok := v.(string)
			if !ok {
				return nil, errors.New(errors.ErrCodeInvalidColor, "colour %d is %T, not a string", i, v)
			}
			list[i] = s
		}
	default:
		return nil, errors.New(errors.ErrCodeInvalidColor, "cannot expand colours from %T", spec)
	}

	switch {
	case len(list) == 0:
		return nil, errors.New(errors.ErrCodeInvalidColor, "empty colour list")
	case len(list) == 1:
		c, err := Normalize(list[0])
		if err != nil {
			return nil, err
		}
		out := make([]string, n)
		for i := range out {
			out[i] = c
		}
		return out, nil
	case len(list) == n:
		out := make([]string, n)
		for i, s := range list {
			c, err := Normalize(s)
			if err != nil {
				return nil, err
			}
			out[i] = c
		}
		return out, nil
	}
	return Sample(list, n)
}

// Sample interpolates n colours from evenly spaced anchors. Interpolation
// runs in HSLuv space, taking the shorter way round the hue circle.
// Transparent anchors are not allowed.
func Sample(anchors []string, n int) ([]string, error) {
	if len(anchors) == 0 {
		return nil, errors.New(errors.ErrCodeInvalidColor, "no anchor colours")
	}
	stops := make([]colorful.Color, len(anchors))
	for i, a := range anchors {
		c, err := Parse(a)
		if err != nil {
			return nil, err
		}
		stops[i] = c.Clamped()
	}
	out := make([]string, n)
	switch n {
	case 0:
		return out, nil
	case 1:
		out[0] = stops[0].Hex()
		return out, nil
	}
	if len(stops) == 1 {
		for i := range out {
			out[i] = stops[0].Hex()
		}
		return out, nil
	}

	positions := floats.Span(make([]float64, n), 0, float64(len(stops)-1))
	for i, pos := range positions {
		lo := int(math.Floor(pos))
		if lo >= len(stops)-1 {
			lo = len(stops) - 2
		}
		t := pos - float64(lo)
		out[i] = blend(stops[lo], stops[lo+1], t)
	}
	return out, nil
}

const epsilon = 1e-9

func blend(a, b colorful.Color, t float64) string {
	switch {
	case t < epsilon:
		return a.Hex()
	case t > 1-epsilon:
		return b.Hex()
	}
	h1, s1, l1 := hsluv.HsluvFromRGB(a.R, a.G, a.B)
	h2, s2, l2 := hsluv.HsluvFromRGB(b.R, b.G, b.B)

	// Achromatic colours have no meaningful hue.
	if s1 < 1e-6 {
		h1 = h2
	}
	if s2 < 1e-6 {
		h2 = h1
	}
	dh := h2 - h1
	if dh > 180 {
		dh -= 360
	} else if dh < -180 {
		dh += 360
	}
	h := math.Mod(h1+t*dh+360, 360)
	s := s1 + t*(s2-s1)
	l := l1 + t*(l2-l1)

	r, g, bl := hsluv.HsluvToRGB(h, s, l)
	return colorful.Color{R: r, G: g, B: bl}.Clamped().Hex()
}
