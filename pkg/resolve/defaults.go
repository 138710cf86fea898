package resolve

import "github.com/matzehuels/mapstyle/pkg/style"

// Library defaults apply when neither the schema nor the style sets a
// parameter. They describe a plain filled contour plot and black points.
var (
	contourDefaults = style.Params{
		KeyColors:     "viridis",
		"linewidths":  1.0,
		"line_colors": "black",
		"labels":      false,
		KeyExtend:     "neither",
		"normalize":   true,
		"transparent": false,
		KeyLegend:     map[string]any{"type": "colorbar", "location": "bottom"},
	}
	pointDefaults = style.Params{
		KeyColors:   "black",
		"marker":    "o",
		"size":      4.0,
		"edgecolor": "none",
		KeyLegend:   map[string]any{"type": "none"},
	}
)

// Defaults returns a copy of the library defaults for a layer kind and
// reports whether the kind is known.
func Defaults(kind string) (style.Params, bool) {
	switch kind {
	case style.KindContour:
		return contourDefaults.Clone(), true
	case style.KindPoint:
		return pointDefaults.Clone(), true
	}
	return nil, false
}

// Kinds returns the layer kinds the resolver knows.
func Kinds() []string {
	return []string{style.KindContour, style.KindPoint}
}
