package errors

import (
	"regexp"
	"strings"
	"unicode"
)

// styleIDRegex matches style record ids and sub-style names: a letter or
// digit followed by letters, digits, underscores, dashes or dots.
var styleIDRegex = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9_.-]*$`)

// ValidateStyleID validates a style record id or sub-style name.
//
// The validation rules:
//   - No empty names
//   - Maximum length of 128 characters
//   - Must start with a letter or digit; only letters, digits, '_', '-' and '.' afterwards
func ValidateStyleID(id string) error {
	if id == "" {
		return New(ErrCodeInvalidStyle, "style id cannot be empty")
	}
	if len(id) > 128 {
		return New(ErrCodeInvalidStyle, "style id too long (max 128 characters)")
	}
	if !styleIDRegex.MatchString(id) {
		return New(ErrCodeInvalidStyle, "invalid style id: %q", id)
	}
	return nil
}

// ValidateMetadataKey validates a metadata key used in a criteria clause or
// supplied on the command line.
func ValidateMetadataKey(key string) error {
	if key == "" {
		return New(ErrCodeInvalidInput, "metadata key cannot be empty")
	}
	if len(key) > 256 {
		return New(ErrCodeInvalidInput, "metadata key too long (max 256 characters)")
	}
	for _, r := range key {
		if unicode.IsControl(r) || unicode.IsSpace(r) {
			return New(ErrCodeInvalidInput, "metadata key %q contains whitespace or control characters", key)
		}
	}
	return nil
}

// ValidatePath validates a style search path or schema path.
//
// Validation rules:
//   - Path cannot be empty
//   - Maximum length of 4096 characters
//   - No null bytes or control characters
func ValidatePath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidPath, "path cannot be empty")
	}

	const maxPathLength = 4096
	if len(path) > maxPathLength {
		return New(ErrCodeInvalidPath, "path too long (max %d characters)", maxPathLength)
	}

	for _, r := range path {
		if r == '\x00' || unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "path contains invalid characters")
		}
	}

	return nil
}

// ValidateSchemaName validates the name of a built-in defaults schema.
// Names are plain identifiers; anything containing a path separator is
// treated as a file path by the caller instead.
func ValidateSchemaName(name string) error {
	if name == "" {
		return New(ErrCodeInvalidInput, "schema name cannot be empty")
	}
	if strings.ContainsAny(name, "/\\") || strings.Contains(name, "..") {
		return New(ErrCodeInvalidInput, "schema name cannot contain path components: %q", name)
	}
	return nil
}
