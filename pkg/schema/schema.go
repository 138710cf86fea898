// Package schema holds the chart-wide defaults that styles are resolved
// against: fonts, the default colormap, figure settings and one parameter
// section per layer kind.
//
// Named schemas ("default", "light", "ecmwf") are embedded in the binary;
// [Use] also accepts the path of a user schema file. Schemas are immutable
// once loaded: [Schema.With] returns a modified copy.
package schema

import (
	"crypto/sha256"
	"embed"
	"encoding/hex"
	"encoding/json"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/matzehuels/mapstyle/pkg/colors"
	"github.com/matzehuels/mapstyle/pkg/errors"
	"github.com/matzehuels/mapstyle/pkg/style"
)

// DefaultName is the schema used when none is configured.
const DefaultName = "default"

// Section names.
const (
	SectionContour      = "contour"
	SectionPoint        = "point"
	SectionLegend       = "legend"
	SectionTitle        = "title"
	SectionGridlines    = "gridlines"
	SectionNaturalEarth = "natural_earth"
)

//go:embed schemas/*.yaml
var builtin embed.FS

// Schema is a set of chart defaults.
type Schema struct {
	// Name is the schema name or the file it was loaded from.
	Name string `yaml:"-" json:"-"`

	Font               string    `yaml:"font,omitempty"`
	FontSize           float64   `yaml:"fontsize,omitempty"`
	Cmap               string    `yaml:"cmap,omitempty"`
	NLevels            int       `yaml:"n_levels,omitempty"`
	FigSize            []float64 `yaml:"figsize,omitempty"`
	DPI                int       `yaml:"dpi,omitempty"`
	UsePreferredStyles bool      `yaml:"use_preferred_styles"`
	ReferenceCRS       string    `yaml:"reference_crs,omitempty"`

	Contour      style.Params `yaml:"contour,omitempty"`
	Point        style.Params `yaml:"point,omitempty"`
	Legend       style.Params `yaml:"legend,omitempty"`
	Title        style.Params `yaml:"title,omitempty"`
	Gridlines    style.Params `yaml:"gridlines,omitempty"`
	NaturalEarth style.Params `yaml:"natural_earth,omitempty"`

	// Extra keeps keys this package does not interpret.
	Extra map[string]any `yaml:",inline"`
}

// Names returns the names of the embedded schemas.
func Names() []string {
	entries, _ := builtin.ReadDir("schemas")
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		out = append(out, strings.TrimSuffix(e.Name(), ".yaml"))
	}
	sort.Strings(out)
	return out
}

// Default returns the embedded default schema.
func Default() *Schema {
	s, err := Use(DefaultName)
	if err != nil {
		panic("schema: embedded default schema is invalid: " + err.Error())
	}
	return s
}

// Use loads a schema by name, falling back to treating name as a file
// path. Unknown names fail with SCHEMA_NOT_FOUND.
func Use(name string) (*Schema, error) {
	if err := errors.ValidateSchemaName(name); err == nil {
		if data, err := builtin.ReadFile(path.Join("schemas", name+".yaml")); err == nil {
			return Parse(data, name)
		}
	}
	file := expandHome(name)
	data, err := os.ReadFile(file)
	if os.IsNotExist(err) {
		return nil, errors.New(errors.ErrCodeSchemaNotFound, "no schema %q found (built-in: %s)", name, strings.Join(Names(), ", "))
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "read schema %s", file)
	}
	return Parse(data, file)
}

// Parse decodes a schema document and validates it.
func Parse(data []byte, name string) (*Schema, error) {
	var s Schema
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "parse schema %s", name)
	}
	s.Name = name
	if err := s.Validate(); err != nil {
		return nil, errors.Prefix(err, "schema %s", name)
	}
	return &s, nil
}

// Validate checks value ranges and that cmap names a colormap or colour.
func (s *Schema) Validate() error {
	if s.Cmap != "" && !colors.IsColormap(s.Cmap) && !colors.IsColor(s.Cmap) {
		return errors.New(errors.ErrCodeInvalidConfig, "cmap %q is neither a colormap nor a colour", s.Cmap)
	}
	if s.NLevels < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "n_levels must not be negative, got %d", s.NLevels)
	}
	if s.FontSize < 0 || s.DPI < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "fontsize and dpi must not be negative")
	}
	if len(s.FigSize) != 0 && (len(s.FigSize) != 2 || s.FigSize[0] <= 0 || s.FigSize[1] <= 0) {
		return errors.New(errors.ErrCodeInvalidConfig, "figsize must be two positive numbers, got %v", s.FigSize)
	}
	return nil
}

// Section returns a copy of the named parameter section, or nil.
func (s *Schema) Section(name string) style.Params {
	var p style.Params
	switch name {
	case SectionContour:
		p = s.Contour
	case SectionPoint:
		p = s.Point
	case SectionLegend:
		p = s.Legend
	case SectionTitle:
		p = s.Title
	case SectionGridlines:
		p = s.Gridlines
	case SectionNaturalEarth:
		p = s.NaturalEarth
	default:
		if m, ok := s.Extra[name].(map[string]any); ok {
			p = style.Params(m)
		}
	}
	return p.Clone()
}

// Layer returns the defaults section for a layer kind.
func (s *Schema) Layer(kind string) style.Params {
	return s.Section(kind)
}

// Globals returns the schema-wide values that apply to a layer kind. Only
// contour layers take the colormap (as "colors") and the level count (as
// "n_levels"); other kinds get an empty set.
func (s *Schema) Globals(kind string) style.Params {
	p := style.Params{}
	if kind != style.KindContour {
		return p
	}
	if s.Cmap != "" {
		p["colors"] = s.Cmap
	}
	if s.NLevels > 0 {
		p["n_levels"] = s.NLevels
	}
	return p
}

// LegendDefaults returns the legend defaults for a layer kind, wrapped under the
// "legend" key so it can be merged like any other layer. The legend section
// describes colour bars, so it applies to contour layers only.
func (s *Schema) LegendDefaults(kind string) style.Params {
	if kind != style.KindContour {
		return style.Params{}
	}
	return style.Params{SectionLegend: s.Section(SectionLegend)}
}

// Map returns the schema as a generic mapping, as it would be written in
// YAML.
func (s *Schema) Map() map[string]any {
	data, err := yaml.Marshal(s)
	if err != nil {
		return map[string]any{}
	}
	var m map[string]any
	if err := yaml.Unmarshal(data, &m); err != nil || m == nil {
		return map[string]any{}
	}
	return m
}

// With returns a copy of s with overrides applied. Nested mappings are
// merged key by key, so {"contour": {"labels": true}} only changes the
// contour labels.
func (s *Schema) With(overrides map[string]any) (*Schema, error) {
	if len(overrides) == 0 {
		return s.clone()
	}
	merged := mergeMaps(s.Map(), overrides)
	data, err := yaml.Marshal(merged)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "apply schema overrides")
	}
	out, err := Parse(data, s.Name)
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Schema) clone() (*Schema, error) {
	data, err := yaml.Marshal(s)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "copy schema")
	}
	return Parse(data, s.Name)
}

// Hash returns a content hash of the schema, used in cache keys.
func (s *Schema) Hash() string {
	data, _ := json.Marshal(s.Map())
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

func mergeMaps(base, over map[string]any) map[string]any {
	out := make(map[string]any, len(base)+len(over))
	for k, v := range base {
		out[k] = v
	}
	for k, v := range over {
		bm, ok1 := asMap(out[k])
		om, ok2 := asMap(v)
		if ok1 && ok2 {
			out[k] = mergeMaps(bm, om)
			continue
		}
		out[k] = v
	}
	return out
}

func asMap(v any) (map[string]any, bool) {
	switch t := v.(type) {
	case map[string]any:
		return t, true
	case style.Params:
		return t, true
	}
	return nil, false
}

func expandHome(p string) string {
	if rest, ok := strings.CutPrefix(p, "~/"); ok {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, rest)
		}
	}
	return p
}
