package cli

import (
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/matzehuels/mapstyle/pkg/errors"
)

// parseMetadata builds a metadata map from a YAML or JSON file (optional)
// and key=value arguments. Arguments override file entries.
func parseMetadata(file string, args []string) (map[string]any, error) {
	md := make(map[string]any)
	if file != "" {
		data, err := os.ReadFile(file)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "read metadata file")
		}
		// JSON documents are valid YAML.
		if err := yaml.Unmarshal(data, &md); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "parse metadata file %s", file)
		}
		if md == nil {
			md = make(map[string]any)
		}
	}
	for _, arg := range args {
		key, value, ok := strings.Cut(arg, "=")
		if !ok || key == "" {
			return nil, errors.New(errors.ErrCodeInvalidInput, "metadata %q: expected key=value", arg)
		}
		md[key] = parseValue(value)
	}
	return md, nil
}

// parseValue types a command-line value the way YAML would: integers,
// then floats, then true/false, else a string. Quoting forces a string, so
// level="500" stays text.
func parseValue(s string) any {
	if len(s) >= 2 && (s[0] == '"' && s[len(s)-1] == '"' || s[0] == '\'' && s[len(s)-1] == '\'') {
		return s[1 : len(s)-1]
	}
	if i, err := strconv.Atoi(s); err == nil {
		return i
	}
	// ParseFloat also accepts "nan" and "inf", which are plausible names.
	if strings.ContainsAny(s, "0123456789") {
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return f
		}
	}
	switch s {
	case "true":
		return true
	case "false":
		return false
	}
	return s
}
