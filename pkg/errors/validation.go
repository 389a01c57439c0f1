package errors

import (
	"math"
	"strings"
	"unicode"
)

// ValidatePlanPath validates a plan file path for safety and correctness.
//
// Validation rules:
//   - Path cannot be empty
//   - Maximum length of 500 characters
//   - No null bytes or control characters
//   - No backslashes (Windows-style paths)
func ValidatePlanPath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidPath, "plan path cannot be empty")
	}

	const maxPathLength = 500
	if len(path) > maxPathLength {
		return New(ErrCodeInvalidPath, "plan path too long (max %d characters)", maxPathLength)
	}

	for _, r := range path {
		if r == '\x00' || unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "plan path contains invalid characters")
		}
	}

	if strings.Contains(path, "\\") {
		return New(ErrCodeInvalidPath, "plan path cannot contain backslashes")
	}

	return nil
}

// ValidateTotal validates an allocation total. Zero is permitted (it is a
// no-op allocation); NaN and infinities are not.
func ValidateTotal(total float64) error {
	if math.IsNaN(total) {
		return New(ErrCodeInvalidTotal, "total cannot be NaN")
	}
	if math.IsInf(total, 0) {
		return New(ErrCodeInvalidTotal, "total must be finite")
	}
	return nil
}

// ValidateTiming validates a timing map: times must lie in [0, 1] and
// weights must be non-negative with at least one positive weight.
func ValidateTiming(timing map[float64]float64) error {
	if len(timing) == 0 {
		// An empty timing falls back to a single instant at t=0.
		return nil
	}
	var positive bool
	for when, weight := range timing {
		if when < 0 || when > 1 {
			return New(ErrCodeInvalidTiming, "time %v outside [0, 1]", when)
		}
		if weight < 0 || math.IsNaN(weight) || math.IsInf(weight, 0) {
			return New(ErrCodeInvalidTiming, "weight %v at time %v is invalid", weight, when)
		}
		if weight > 0 {
			positive = true
		}
	}
	if !positive {
		return New(ErrCodeInvalidTiming, "timing requires at least one positive weight")
	}
	return nil
}

// ValidateFormat validates a render format name.
func ValidateFormat(format string) error {
	switch format {
	case "dot", "svg", "json":
		return nil
	default:
		return New(ErrCodeInvalidFormat, "unsupported format: %q (want dot, svg, or json)", format)
	}
}
