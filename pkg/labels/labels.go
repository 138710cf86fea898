// Package labels formats legend and title templates from dataset metadata.
//
// Templates use brace fields: "{variable_name} ({units})". A field may carry
// a conversion, "!u" for upper case or "!l" for lower case. "{{" and "}}"
// are literal braces. Fields missing from the metadata render as their own
// name so broken templates stay visible.
package labels

import (
	"strings"

	"github.com/matzehuels/mapstyle/pkg/errors"
	"github.com/matzehuels/mapstyle/pkg/style"
	"github.com/matzehuels/mapstyle/pkg/units"
)

// DefaultLegend is the legend label template used when a style sets none.
const DefaultLegend = "{variable_name} ({units})"

// VariableName is a derived field resolved from the first metadata key
// present in VariableNameKeys.
const VariableName = "variable_name"

// VariableNameKeys lists the metadata keys tried for {variable_name}.
var VariableNameKeys = []string{"long_name", "standard_name", "name", "shortName"}

// Fields supplies values for template fields.
type Fields struct {
	Metadata style.Metadata
	// Units overrides the metadata units, typically with the units of the
	// selected sub-style.
	Units string
}

// Lookup returns the display value of a template field.
func (f Fields) Lookup(key string) (string, bool) {
	switch key {
	case VariableName:
		for _, k := range VariableNameKeys {
			if v, ok := f.lookup(k); ok {
				return v, true
			}
		}
		return "", false
	case "units":
		if f.Units != "" {
			return units.Format(f.Units), true
		}
		if v, ok := f.lookup("units"); ok {
			return units.Format(v), true
		}
		return "", false
	}
	return f.lookup(key)
}

func (f Fields) lookup(key string) (string, bool) {
	if f.Metadata == nil {
		return "", false
	}
	v, ok := f.Metadata.Lookup(key)
	if !ok || v == nil {
		return "", false
	}
	s := style.FormatValue(v)
	return s, s != ""
}

// Format renders template with values from fields.
func Format(template string, fields Fields) (string, error) {
	var b strings.Builder
	for i := 0; i < len(template); i++ {
		c := template[i]
		switch c {
		case '{':
			if i+1 < len(template) && template[i+1] == '{' {
				b.WriteByte('{')
				i++
				continue
			}
			end := strings.IndexByte(template[i+1:], '}')
			if end < 0 {
				return "", errors.New(errors.ErrCodeInvalidInput, "unclosed field in label %q", template)
			}
			field := template[i+1 : i+1+end]
			out, err := formatField(field, fields)
			if err != nil {
				return "", errors.Prefix(err, "label %q", template)
			}
			b.WriteString(out)
			i += end + 1
		case '}':
			if i+1 < len(template) && template[i+1] == '}' {
				i++
			}
			b.WriteByte('}')
		default:
			b.WriteByte(c)
		}
	}
	return b.String(), nil
}

func formatField(field string, fields Fields) (string, error) {
	name, conv, hasConv := strings.Cut(field, "!")
	name = strings.TrimSpace(name)
	if name == "" {
		return "", errors.New(errors.ErrCodeInvalidInput, "empty field")
	}
	value, ok := fields.Lookup(name)
	if !ok {
		value = name
	}
	if !hasConv {
		return value, nil
	}
	switch conv {
	case "u":
		return strings.ToUpper(value), nil
	case "l":
		return strings.ToLower(value), nil
	case "s":
		return value, nil
	}
	return "", errors.New(errors.ErrCodeInvalidInput, "unknown conversion %q", "!"+conv)
}
