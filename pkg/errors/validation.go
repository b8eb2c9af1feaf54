package errors

import (
	"strings"
	"unicode"
)

// ValidateAtLeast checks that an integer parameter is not below min.
func ValidateAtLeast(name string, value, min uint64) error {
	if value < min {
		return New(ErrCodeInvalidInput, "%s must be >= %d, got %d", name, min, value)
	}
	return nil
}

// MinWeightRatio is the exclusive lower bound on weight ratio caps.
// Smaller ratios would cap away almost every synthesised edge.
const MinWeightRatio = 5

// ValidateRatio checks a weight ratio cap. Ratios must be strictly greater
// than [MinWeightRatio].
func ValidateRatio(name string, ratio uint64) error {
	if ratio <= MinWeightRatio {
		return New(ErrCodeInvalidInput, "%s must be > %d, got %d", name, MinWeightRatio, ratio)
	}
	return nil
}

// ValidatePath validates an input or output file path given on the command
// line or in a config file.
//
// Validation rules:
//   - Path cannot be empty
//   - Maximum length of 4096 characters
//   - No null bytes or control characters
func ValidatePath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidInput, "path cannot be empty")
	}

	const maxPathLength = 4096
	if len(path) > maxPathLength {
		return New(ErrCodeInvalidInput, "path too long (max %d characters)", maxPathLength)
	}

	for _, r := range path {
		if r == '\x00' || unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "path contains invalid characters")
		}
	}
	return nil
}

// ValidateFormat checks that format is one of the allowed values
// (case-insensitive) and returns it lower-cased.
func ValidateFormat(format string, allowed ...string) (string, error) {
	f := strings.ToLower(strings.TrimSpace(format))
	for _, a := range allowed {
		if f == a {
			return f, nil
		}
	}
	return "", New(ErrCodeInvalidInput, "unsupported format %q (want one of %s)", format, strings.Join(allowed, ", "))
}
