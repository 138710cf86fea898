// Package magics translates Magics contouring keywords into style
// parameters.
//
// Style documents written for the Magics plotting library describe levels
// and colours with keywords such as contour_level_selection_type and
// contour_shade_colour_list. Translate maps the supported subset onto the
// parameter names used everywhere else ("levels", "level_step", "colors").
package magics

import (
	"strconv"
	"strings"

	"github.com/matzehuels/mapstyle/pkg/colors"
	"github.com/matzehuels/mapstyle/pkg/errors"
	"github.com/matzehuels/mapstyle/pkg/levels"
	"github.com/matzehuels/mapstyle/pkg/style"
)

// FormatKey marks a sub-style written in Magics keywords.
const (
	FormatKey = "format"
	Format    = "magics"
)

// Magics keywords.
const (
	LevelSelectionType = "contour_level_selection_type"
	KeyLevelList       = "contour_level_list"
	Interval           = "contour_interval"
	ReferenceLevel     = "contour_reference_level"
	ShadeMinLevel      = "contour_shade_min_level"
	ShadeMaxLevel      = "contour_shade_max_level"
	ShadeColourMethod  = "contour_shade_colour_method"
	ShadeColourList    = "contour_shade_colour_list"
	LineColour         = "contour_line_colour"
	LineThickness      = "contour_line_thickness"
	Label              = "contour_label"
)

// IsMagics reports whether p is written in Magics keywords.
func IsMagics(p style.Params) bool {
	f, _ := p.String(FormatKey)
	return strings.EqualFold(f, Format)
}

// Translate converts Magics keywords in p into style parameters. Keywords
// it does not know are dropped; parameters that are not Magics keywords
// pass through unchanged.
func Translate(p style.Params) (style.Params, error) {
	out := style.Params{}
	for k, v := range p {
		if k != FormatKey && !strings.HasPrefix(k, "contour_") {
			out[k] = v
		}
	}

	if p.Has(LevelSelectionType) {
		if err := translateLevels(p, out); err != nil {
			return nil, err
		}
	}
	if p.Has(ShadeColourMethod) {
		cols, err := ShadeColours(p)
		if err != nil {
			return nil, err
		}
		out["colors"] = cols
	}
	if s, ok := p.String(LineColour); ok {
		c, err := ParseColour(s)
		if err != nil {
			return nil, err
		}
		out["line_colors"] = c
	}
	if f, ok := p.Float(LineThickness); ok {
		out["linewidths"] = f
	}
	if s, ok := p.String(Label); ok {
		out["labels"] = strings.EqualFold(s, "on")
	} else if b, ok := p.Bool(Label); ok {
		out["labels"] = b
	}
	return out, nil
}

func translateLevels(p style.Params, out style.Params) error {
	kind, _ := p.String(LevelSelectionType)
	switch kind {
	case "list":
		list, err := LevelList(p)
		if err != nil {
			return err
		}
		out[levels.KeyLevels] = list
	case "interval":
		step, ok := p.Float(Interval)
		if !ok || step <= 0 {
			return errors.New(errors.ErrCodeInvalidLevels, "%s must be a positive number", Interval)
		}
		if p.Has(ShadeMinLevel) {
			lo, ok1 := p.Float(ShadeMinLevel)
			hi, ok2 := p.Float(ShadeMaxLevel)
			if !ok1 || !ok2 {
				return errors.New(errors.ErrCodeInvalidLevels, "%s needs a numeric %s", ShadeMinLevel, ShadeMaxLevel)
			}
			list, err := levels.Between(lo, hi, step)
			if err != nil {
				return err
			}
			out[levels.KeyLevels] = list
			return nil
		}
		out[levels.KeyStep] = step
		if ref, ok := p.Float(ReferenceLevel); ok {
			out[levels.KeyReference] = ref
		}
	default:
		return errors.New(errors.ErrCodeUnsupported, "%s %q is not supported", LevelSelectionType, kind)
	}
	return nil
}

// LevelList parses contour_level_list, a "/"-separated list of numbers.
func LevelList(p style.Params) ([]float64, error) {
	switch v := p[KeyLevelList].(type) {
	case string:
		parts := strings.Split(v, "/")
		out := make([]float64, 0, len(parts))
		for _, s := range parts {
			s = strings.TrimSpace(s)
			if s == "" {
				continue
			}
			f, err := strconv.ParseFloat(s, 64)
			if err != nil {
				return nil, errors.Wrap(errors.ErrCodeInvalidLevels, err, "%s entry %q", KeyLevelList, s)
			}
			out = append(out, f)
		}
		if len(out) == 0 {
			return nil, errors.New(errors.ErrCodeInvalidLevels, "%s is empty", KeyLevelList)
		}
		return out, nil
	case nil:
		return nil, errors.New(errors.ErrCodeInvalidLevels, "%s is required for list selection", KeyLevelList)
	default:
		if list, ok := style.AsFloats(v); ok {
			return list, nil
		}
		return nil, errors.New(errors.ErrCodeInvalidLevels, "%s must be a \"/\"-separated string", KeyLevelList)
	}
}

// ShadeColours parses contour_shade_colour_list for the list colour method.
func ShadeColours(p style.Params) ([]string, error) {
	method, _ := p.String(ShadeColourMethod)
	if method != "list" {
		return nil, errors.New(errors.ErrCodeUnsupported, "%s %q is not supported", ShadeColourMethod, method)
	}
	raw, ok := p.String(ShadeColourList)
	if !ok {
		return nil, errors.New(errors.ErrCodeInvalidColor, "%s is required for list colours", ShadeColourList)
	}
	var out []string
	for _, s := range splitColours(raw) {
		c, err := ParseColour(s)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, nil
}

// ParseColour parses a Magics colour: a palette name, RGB(r, g, b) with
// components in 0..1, HSL(h, s, l) or a hex string.
func ParseColour(s string) (string, error) {
	return colors.Normalize(s)
}

// splitColours splits on "/" outside parentheses, so "RGB(0.1,0.2,0.3)/red"
// yields two entries.
func splitColours(s string) []string {
	var out []string
	depth, start := 0, 0
	for i, r := range s {
		switch r {
		case '(':
			depth++
		case ')':
			depth--
		case '/':
			if depth == 0 {
				out = append(out, strings.TrimSpace(s[start:i]))
				start = i + 1
			}
		}
	}
	if rest := strings.TrimSpace(s[start:]); rest != "" {
		out = append(out, rest)
	}
	return out
}
