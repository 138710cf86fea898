package resolve

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/mapstyle/pkg/catalog"
	"github.com/matzehuels/mapstyle/pkg/errors"
	"github.com/matzehuels/mapstyle/pkg/magics"
	"github.com/matzehuels/mapstyle/pkg/schema"
	"github.com/matzehuels/mapstyle/pkg/style"
)

func builtin(t *testing.T) *catalog.Catalog {
	t.Helper()
	c, err := catalog.Load(context.Background(), catalog.Builtin())
	require.NoError(t, err)
	return c
}

func record(t *testing.T, doc string) *style.Record {
	t.Helper()
	rec, err := style.DecodeOne([]byte(doc), "test.yaml")
	require.NoError(t, err)
	return rec
}

func TestResolvePrecipitation(t *testing.T) {
	rec, ok := builtin(t).Match(style.Attrs{"shortName": "tp"})
	require.True(t, ok)

	p, err := Resolve(rec, "", schema.Default())
	require.NoError(t, err)

	lv, ok := p.Floats("levels")
	require.True(t, ok)
	assert.Equal(t, []float64{0.1, 0.2, 0.5, 1, 2, 5, 10, 20, 50, 100}, lv)
	assert.Equal(t, "mm", p["units"])
	assert.Equal(t, true, p["labels"], "style overrides the schema")
	assert.Equal(t, 0.5, p["linewidths"], "schema overrides the library")
	assert.Equal(t, style.KindContour, p[style.KindKey])

	cols, ok := p.Strings("colors")
	require.True(t, ok)
	assert.Len(t, cols, 10, "explicit colour lists are kept")

	legend, ok := p.Map("legend")
	require.True(t, ok)
	assert.Equal(t, "Total precipitation ({units})", legend["label"])
	assert.Equal(t, "colorbar", legend["type"], "legend keys merge per category")
	assert.Equal(t, "bottom", legend["location"])
	assert.Equal(t, "auto", legend["ticks"], "schema legend section reaches the output")
}

func TestSchemaLegendDefaults(t *testing.T) {
	s, err := schema.Default().With(map[string]any{
		"legend": map[string]any{"location": "right", "label": "{name}"},
	})
	require.NoError(t, err)

	p, err := Resolve(nil, "", s)
	require.NoError(t, err)
	legend, ok := p.Map("legend")
	require.True(t, ok)
	assert.Equal(t, "right", legend["location"], "schema overrides the library")
	assert.Equal(t, "{name}", legend["label"])
	assert.Equal(t, "auto", legend["ticks"])
	assert.Equal(t, "colorbar", legend["type"])

	rec := record(t, "id: l\ncriteria: [{}]\nstyles:\n  s: {legend: {label: mine}}\n")
	p, err = Resolve(rec, "", s)
	require.NoError(t, err)
	legend, _ = p.Map("legend")
	assert.Equal(t, "mine", legend["label"], "style overrides the schema")
	assert.Equal(t, "right", legend["location"])

	p, err = Resolve(nil, "", s, WithKind(style.KindPoint))
	require.NoError(t, err)
	legend, _ = p.Map("legend")
	assert.Equal(t, "none", legend["type"], "colour bar settings stay off point layers")
}

func TestResolveNamedSubStyle(t *testing.T) {
	rec, err := builtin(t).Get("precipitation")
	require.NoError(t, err)

	p, err := Resolve(rec, "precipitation_in_m", nil)
	require.NoError(t, err)
	assert.Equal(t, "m", p["units"])

	_, err = Resolve(rec, "precipitation_in_inches", nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrCodeStyleNotFound))
	assert.Contains(t, err.Error(), "precipitation_in_mm")
}

func TestResolveGenericDefaults(t *testing.T) {
	p, err := Resolve(nil, "", schema.Default())
	require.NoError(t, err)
	assert.Equal(t, "viridis", p["colors"])
	assert.Equal(t, 10, p["n_levels"])
	assert.Equal(t, 0.5, p["linewidths"])
	assert.Equal(t, "neither", p["extend"])
	assert.Equal(t, style.KindContour, p[style.KindKey])

	p, err = Resolve(nil, "", schema.Default(), WithKind(style.KindPoint))
	require.NoError(t, err)
	assert.Equal(t, "o", p["marker"])
	assert.Equal(t, 8, p["size"], "schema point section wins over the library")
	assert.Equal(t, "black", p["colors"], "the schema colormap is a contour setting")
	assert.NotContains(t, p, "n_levels")

	_, err = Resolve(nil, "", nil, WithKind("hatched"))
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidStyle))
}

func TestResolvePointStyle(t *testing.T) {
	rec, ok := builtin(t).Match(style.Attrs{"dataType": "synop"})
	require.True(t, ok)
	p, err := Resolve(rec, "", nil)
	require.NoError(t, err)
	assert.Equal(t, style.KindPoint, p[style.KindKey])
	assert.Equal(t, "^", p["marker"])
	assert.Equal(t, "ecmwf_blue", p["colors"])
	assert.NotContains(t, p, "linewidths")
}

func TestResolveRangeLevels(t *testing.T) {
	rec := record(t, `
id: ranged
criteria: [{shortName: x}]
styles:
  plain:
    levels: {start: 0, stop: 10, step: 2}
    colors: turbo
  extended:
    levels: {start: 0, stop: 10, step: 2}
    colors: turbo
    extend: both
  single:
    levels: [0, 1, 2]
    colors: red
`)
	p, err := Resolve(rec, "plain", nil)
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 2, 4, 6, 8}, p["levels"])
	cols, ok := p.Strings("colors")
	require.True(t, ok)
	assert.Len(t, cols, 4, "one colour per bin")

	p, err = Resolve(rec, "extended", nil)
	require.NoError(t, err)
	cols, _ = p.Strings("colors")
	assert.Len(t, cols, 6)

	p, err = Resolve(rec, "single", nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"#ff0000", "#ff0000"}, p["colors"])
}

func TestResolveMagics(t *testing.T) {
	rec, ok := builtin(t).Match(style.Attrs{"shortName": "tcwv"})
	require.True(t, ok)
	p, err := Resolve(rec, "", nil)
	require.NoError(t, err)

	assert.Equal(t, []float64{20, 25, 30, 35, 40, 45, 50, 55, 60, 65, 70}, p["levels"])
	cols, ok := p.Strings("colors")
	require.True(t, ok)
	assert.Len(t, cols, 10)
	assert.Equal(t, false, p["labels"])
	assert.NotContains(t, p, magics.FormatKey)
	for k := range p {
		assert.False(t, strings.HasPrefix(k, "contour_"), k)
	}
}

func TestResolveErrors(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		code errors.Code
	}{
		{"decreasing levels", "levels: [3, 2, 1]", errors.ErrCodeInvalidLevels},
		{"bad range", "levels: {start: 0}", errors.ErrCodeInvalidLevels},
		{"bad colormap", "levels: [0, 1, 2]\n    colors: not-a-colour", errors.ErrCodeInvalidColor},
		{"unknown kind", "type: hatched", errors.ErrCodeInvalidStyle},
		{"magics method", "format: magics\n    contour_level_selection_type: count", errors.ErrCodeUnsupported},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := record(t, "id: broken\ncriteria: [{a: 1}]\nstyles:\n  s:\n    "+tt.doc+"\n")
			_, err := Resolve(rec, "", nil)
			require.Error(t, err)
			assert.Equal(t, tt.code, errors.GetCode(err), "%v", err)
		})
	}
}

func TestLegendReplacedByScalar(t *testing.T) {
	rec := record(t, "id: bare\ncriteria: [{}]\nstyles:\n  s: {legend: false}\n")
	p, err := Resolve(rec, "", nil)
	require.NoError(t, err)
	assert.Equal(t, false, p["legend"])
}

func TestOverrides(t *testing.T) {
	rec := record(t, "id: o\ncriteria: [{}]\nstyles:\n  s: {linewidths: 2, legend: {label: L}}\n")
	p, err := Resolve(rec, "", nil, WithOverrides(style.Params{
		"linewidths": 3,
		"legend":     map[string]any{"location": "right"},
	}))
	require.NoError(t, err)
	assert.Equal(t, 3, p["linewidths"])
	legend, _ := p.Map("legend")
	assert.Equal(t, "L", legend["label"])
	assert.Equal(t, "right", legend["location"])
}

// A parameter set by a sub-style is never replaced by a default.
func TestStyleOverridesDefaults(t *testing.T) {
	derived := map[string]bool{"levels": true, "colors": true, "legend": true, style.KindKey: true}
	for _, rec := range builtin(t).Records() {
		for _, name := range rec.Names() {
			sub := rec.Styles[name]
			if magics.IsMagics(sub) {
				continue
			}
			p, err := Resolve(rec, name, schema.Default())
			require.NoError(t, err, "%s/%s", rec.ID, name)
			for k, v := range sub {
				if derived[k] {
					continue
				}
				assert.Equal(t, v, p[k], "%s/%s: %s", rec.ID, name, k)
			}
		}
	}
}

func TestDefaultsAreCopies(t *testing.T) {
	p, ok := Defaults(style.KindContour)
	require.True(t, ok)
	p["linewidths"] = 99.0
	q, _ := Defaults(style.KindContour)
	assert.Equal(t, 1.0, q["linewidths"])
	assert.Equal(t, []string{"contour", "point"}, Kinds())
}
