// Package resolve merges a style record's parameters with chart defaults
// into the configuration a renderer consumes.
//
// Parameters are merged in four layers, each overriding the one before:
//
//  1. Library defaults for the layer kind ([Defaults]).
//  2. Schema globals that apply to the layer kind: the colormap and level
//     count for contours.
//  3. The schema section for the layer kind ("contour", "point").
//  4. The selected sub-style.
//
// The merge is shallow except for the "legend" category, which is merged
// key by key so a style can change the legend label without restating the
// legend type.
//
// Resolution also normalises a few parameters: range-form levels become an
// explicit list, Magics keywords are translated, and a colormap name is
// sampled into one colour per level bin when the levels are known.
package resolve

import (
	"github.com/matzehuels/mapstyle/pkg/colors"
	"github.com/matzehuels/mapstyle/pkg/errors"
	"github.com/matzehuels/mapstyle/pkg/levels"
	"github.com/matzehuels/mapstyle/pkg/magics"
	"github.com/matzehuels/mapstyle/pkg/schema"
	"github.com/matzehuels/mapstyle/pkg/style"
)

// Parameter names the resolver interprets.
const (
	KeyColors = "colors"
	KeyLegend = "legend"
	KeyExtend = "extend"
	KeyUnits  = "units"
)

// Option configures a single resolution.
type Option func(*options)

type options struct {
	kind      string
	overrides style.Params
}

// WithKind forces the layer kind instead of reading it from the sub-style.
func WithKind(kind string) Option {
	return func(o *options) { o.kind = kind }
}

// WithOverrides lays caller parameters over the resolved sub-style.
func WithOverrides(p style.Params) Option {
	return func(o *options) { o.overrides = p }
}

// Resolve returns the rendering parameters for the sub-style name of rec.
// An empty name selects the preferred sub-style. A nil rec resolves the
// generic defaults used when no record matches. A nil defaults uses the
// embedded default schema.
func Resolve(rec *style.Record, name string, defaults *schema.Schema, opts ...Option) (style.Params, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	if defaults == nil {
		defaults = schema.Default()
	}

	var sub style.Params
	if rec != nil {
		p, err := rec.Style(name)
		if err != nil {
			return nil, err
		}
		sub = p
	}
	if magics.IsMagics(sub) {
		translated, err := magics.Translate(sub)
		if err != nil {
			return nil, errors.Prefix(err, "style %q", rec.ID)
		}
		sub = translated
	}

	kind := o.kind
	if kind == "" {
		kind = sub.Kind()
	}
	base, ok := Defaults(kind)
	if !ok {
		return nil, errors.New(errors.ErrCodeInvalidStyle, "unknown layer kind %q (known: %s, %s)", kind, style.KindContour, style.KindPoint)
	}

	layer := defaults.Layer(kind)
	out := base.Merge(defaults.Globals(kind), layer, sub, o.overrides)
	out[style.KindKey] = kind

	out[KeyLegend] = mergeLegend(base, defaults.LegendDefaults(kind), layer, sub, o.overrides)

	if err := normalize(out); err != nil {
		if rec != nil {
			return nil, errors.Prefix(err, "style %q", rec.ID)
		}
		return nil, err
	}
	return out, nil
}

// mergeLegend lays each layer's legend mapping over the previous one. A
// legend given as anything but a mapping replaces the result.
func mergeLegend(layers ...style.Params) any {
	var out any = style.Params{}
	for _, p := range layers {
		v, ok := p[KeyLegend]
		if !ok {
			continue
		}
		m, isMap := p.Map(KeyLegend)
		if !isMap {
			out = v
			continue
		}
		prev, _ := out.(style.Params)
		out = prev.Merge(m)
	}
	return out
}

func normalize(p style.Params) error {
	v, ok := p[levels.KeyLevels]
	if !ok || v == nil {
		return nil
	}
	list, err := levels.Parse(v)
	if err != nil {
		return err
	}
	p[levels.KeyLevels] = list

	spec, ok := p[KeyColors].(string)
	if !ok || len(list) < 2 {
		return nil
	}
	cols, err := colors.Expand(spec, bins(list, p))
	if err != nil {
		return err
	}
	p[KeyColors] = cols
	return nil
}

// bins returns the number of colours a filled contour with these levels
// needs, counting the open-ended bins added by "extend".
func bins(list []float64, p style.Params) int {
	n := len(list) - 1
	switch ext, _ := p.String(KeyExtend); ext {
	case "both":
		n += 2
	case "min", "max":
		n++
	}
	return n
}
