// Package units compares, formats and converts the physical units found in
// meteorological metadata ("K", "celsius", "m s**-1", "hPa").
//
// Units are grouped in families (temperature, length, pressure, speed,
// fraction). Two spellings are equal when they name the same unit; values
// convert between units of the same family.
package units

import (
	"sort"
	"strings"

	"github.com/matzehuels/mapstyle/pkg/errors"
)

// Family groups units that convert into one another.
type Family string

const (
	Temperature Family = "temperature"
	Length      Family = "length"
	Pressure    Family = "pressure"
	Speed       Family = "speed"
	Fraction    Family = "fraction"
)

// Unit is a known unit. A value v in this unit is v*Scale+Offset in the
// base unit of its family.
type Unit struct {
	Name   string
	Symbol string
	Family Family
	Scale  float64
	Offset float64
}

var known = []struct {
	unit    Unit
	aliases []string
}{
	{Unit{"kelvin", "K", Temperature, 1, 0}, []string{"k", "kelvin", "degk", "deg_k"}},
	{Unit{"celsius", "°C", Temperature, 1, 273.15}, []string{"celsius", "degc", "deg_c", "°c", "c", "degrees_celsius"}},
	{Unit{"fahrenheit", "°F", Temperature, 5.0 / 9, 273.15 - 32*5.0/9}, []string{"fahrenheit", "degf", "deg_f", "°f", "f"}},

	{Unit{"metre", "m", Length, 1, 0}, []string{"m", "metre", "meter", "metres", "meters"}},
	{Unit{"millimetre", "mm", Length, 1e-3, 0}, []string{"mm", "millimetre", "millimeter", "millimetres", "millimeters"}},
	{Unit{"centimetre", "cm", Length, 1e-2, 0}, []string{"cm", "centimetre", "centimeter"}},
	{Unit{"kilometre", "km", Length, 1e3, 0}, []string{"km", "kilometre", "kilometer"}},
	{Unit{"inch", "in", Length, 0.0254, 0}, []string{"in", "inch", "inches"}},

	{Unit{"pascal", "Pa", Pressure, 1, 0}, []string{"pa", "pascal"}},
	{Unit{"hectopascal", "hPa", Pressure, 100, 0}, []string{"hpa", "hectopascal", "mbar", "mb", "millibar"}},
	{Unit{"kilopascal", "kPa", Pressure, 1000, 0}, []string{"kpa", "kilopascal"}},
	{Unit{"bar", "bar", Pressure, 1e5, 0}, []string{"bar"}},

	{Unit{"metre per second", "m s⁻¹", Speed, 1, 0}, []string{"m s-1", "m/s", "ms-1", "metre per second", "meter per second"}},
	{Unit{"kilometre per hour", "km h⁻¹", Speed, 1 / 3.6, 0}, []string{"km h-1", "km/h", "kmh", "kph"}},
	{Unit{"knot", "kt", Speed, 1852.0 / 3600, 0}, []string{"knot", "knots", "kt", "kn", "kts"}},
	{Unit{"mile per hour", "mph", Speed, 0.44704, 0}, []string{"mph", "mi/h", "mi h-1"}},

	{Unit{"1", "1", Fraction, 1, 0}, []string{"1", "(0 - 1)", "0-1", "fraction", "dimensionless"}},
	{Unit{"percent", "%", Fraction, 0.01, 0}, []string{"%", "percent", "pct"}},
}

var byAlias = func() map[string]Unit {
	m := make(map[string]Unit)
	for _, k := range known {
		for _, a := range k.aliases {
			m[a] = k.unit
		}
	}
	return m
}()

// normalize folds case and the various ways of writing exponents:
// "m s**-1", "m s^-1" and "M S-1" all become "m s-1".
func normalize(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.NewReplacer("**", "", "^", "", "⁻¹", "-1").Replace(s)
	return strings.Join(strings.Fields(s), " ")
}

// Parse looks up a unit by any of its spellings.
func Parse(s string) (Unit, error) {
	if u, ok := byAlias[normalize(s)]; ok {
		return u, nil
	}
	return Unit{}, errors.New(errors.ErrCodeInvalidUnits, "unknown units %q", s)
}

// Known reports whether s names a known unit.
func Known(s string) bool {
	_, err := Parse(s)
	return err == nil
}

// Equal reports whether a and b name the same unit. Unknown units are
// equal only when they are spelled the same way.
func Equal(a, b string) bool {
	ua, errA := Parse(a)
	ub, errB := Parse(b)
	if errA == nil && errB == nil {
		return ua.Name == ub.Name
	}
	if errA != nil && errB != nil {
		return normalize(a) == normalize(b)
	}
	return false
}

// Format returns the display form of a unit: "°C" for "celsius", "hPa"
// for "mbar". Unknown units are returned unchanged.
func Format(s string) string {
	if u, err := Parse(s); err == nil {
		return u.Symbol
	}
	return s
}

// Convert converts v from one unit to another of the same family.
func Convert(v float64, from, to string) (float64, error) {
	uf, err := Parse(from)
	if err != nil {
		return 0, err
	}
	ut, err := Parse(to)
	if err != nil {
		return 0, err
	}
	if uf.Family != ut.Family {
		return 0, errors.New(errors.ErrCodeInvalidUnits, "cannot convert %s (%s) to %s (%s)", from, uf.Family, to, ut.Family)
	}
	base := v*uf.Scale + uf.Offset
	return (base - ut.Offset) / ut.Scale, nil
}

// ConvertAll converts every value in values.
func ConvertAll(values []float64, from, to string) ([]float64, error) {
	out := make([]float64, len(values))
	for i, v := range values {
		c, err := Convert(v, from, to)
		if err != nil {
			return nil, err
		}
		out[i] = c
	}
	return out, nil
}

// AnomalyCompatible reports whether a difference in units u equals a
// difference in kelvin, so anomaly styles written in K apply to it.
func AnomalyCompatible(u string) bool {
	return Equal(u, "kelvin") || Equal(u, "celsius")
}

// Names returns the canonical names of every known unit.
func Names() []string {
	out := make([]string, 0, len(known))
	for _, k := range known {
		out = append(out, k.unit.Name)
	}
	sort.Strings(out)
	return out
}
