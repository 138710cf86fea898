// Package colors parses colour specifications and expands colormaps into
// discrete colour lists.
//
// A colour may be written as a hex string ("#rgb", "#rrggbb", "#rrggbbaa"),
// a named colour from the Magics palette ("ecmwf_blue", "evergreen"), an
// rgb(r, g, b) triple with components in 0..1 or 0..255, or an
// hsl(h, s, l) triple with hue in degrees. Normalised colours are lowercase
// "#rrggbb" strings; "none" stands for a transparent fill.
//
// Colormaps are defined by anchor colours and sampled with interpolation in
// HSLuv space so ramps stay perceptually even.
package colors

import (
	"strconv"
	"strings"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/matzehuels/mapstyle/pkg/errors"
)

// None is the normalised form of a transparent colour.
const None = "none"

// Parse parses a single colour specification.
func Parse(s string) (colorful.Color, error) {
	spec := strings.ToLower(strings.TrimSpace(s))
	if spec == "" {
		return colorful.Color{}, errors.New(errors.ErrCodeInvalidColor, "empty colour")
	}
	switch {
	case strings.HasPrefix(spec, "#"):
		return parseHex(spec)
	case strings.HasPrefix(spec, "rgb"):
		return parseRGB(spec)
	case strings.HasPrefix(spec, "hsl"):
		return parseHSL(spec)
	}
	if c, ok := named[spec]; ok {
		return c, nil
	}
	return colorful.Color{}, errors.New(errors.ErrCodeInvalidColor, "unknown colour %q", s)
}

// Normalize returns the canonical "#rrggbb" form of a colour, or [None]
// for transparent colours.
func Normalize(s string) (string, error) {
	if IsTransparent(s) {
		return None, nil
	}
	c, err := Parse(s)
	if err != nil {
		return "", err
	}
	return c.Clamped().Hex(), nil
}

// IsTransparent reports whether s names a transparent colour.
func IsTransparent(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "none", "transparent", "undefined":
		return true
	}
	return false
}

// IsColor reports whether s parses as a colour.
func IsColor(s string) bool {
	if IsTransparent(s) {
		return true
	}
	_, err := Parse(s)
	return err == nil
}

func parseHex(spec string) (colorful.Color, error) {
	switch len(spec) {
	case 4, 7:
	case 9:
		// Alpha is not carried by the normalised form.
		spec = spec[:7]
	default:
		return colorful.Color{}, errors.New(errors.ErrCodeInvalidColor, "invalid hex colour %q", spec)
	}
	c, err := colorful.Hex(spec)
	if err != nil {
		return colorful.Color{}, errors.Wrap(errors.ErrCodeInvalidColor, err, "invalid hex colour %q", spec)
	}
	return c, nil
}

func parseRGB(spec string) (colorful.Color, error) {
	v, err := triple(spec, "rgb")
	if err != nil {
		return colorful.Color{}, err
	}
	scale := 1.0
	if v[0] > 1 || v[1] > 1 || v[2] > 1 {
		scale = 255
	}
	c := colorful.Color{R: v[0] / scale, G: v[1] / scale, B: v[2] / scale}
	if !c.IsValid() {
		return colorful.Color{}, errors.New(errors.ErrCodeInvalidColor, "rgb components out of range in %q", spec)
	}
	return c, nil
}

func parseHSL(spec string) (colorful.Color, error) {
	v, err := triple(spec, "hsl")
	if err != nil {
		return colorful.Color{}, err
	}
	s, l := v[1], v[2]
	if s > 1 || l > 1 {
		s, l = s/100, l/100
	}
	if s < 0 || s > 1 || l < 0 || l > 1 {
		return colorful.Color{}, errors.New(errors.ErrCodeInvalidColor, "hsl components out of range in %q", spec)
	}
	return colorful.Hsl(v[0], s, l).Clamped(), nil
}

// triple parses "name(a, b, c)" or "name a b c".
func triple(spec, name string) ([3]float64, error) {
	var out [3]float64
	body := strings.TrimSpace(strings.TrimPrefix(spec, name))
	body = strings.TrimSuffix(strings.TrimPrefix(body, "("), ")")
	fields := strings.FieldsFunc(body, func(r rune) bool { return r == ',' || r == ' ' })
	if len(fields) != 3 {
		return out, errors.New(errors.ErrCodeInvalidColor, "%s colour %q needs three components", name, spec)
	}
	for i, f := range fields {
		v, err := strconv.ParseFloat(strings.TrimSuffix(f, "%"), 64)
		if err != nil || v < 0 {
			return out, errors.New(errors.ErrCodeInvalidColor, "invalid component %q in %q", f, spec)
		}
		out[i] = v
	}
	return out, nil
}
