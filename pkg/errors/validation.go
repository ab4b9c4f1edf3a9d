package errors

import (
	"math"
	"strings"
	"unicode"
)

// MaxVertexIDLength bounds vertex identifiers in model files and API requests.
const MaxVertexIDLength = 256

// ValidateRisk checks that an intrinsic risk is a probability in [0, 1].
// NaN is rejected explicitly since it compares false against both bounds.
func ValidateRisk(r float64) error {
	if math.IsNaN(r) || r < 0 || r > 1 {
		return New(ErrCodeInvalidRisk, "risk %v outside [0,1]", r)
	}
	return nil
}

// ValidateWeight checks that an edge weight is a probability in (0, 1].
// Zero is the "no edge" sentinel and is never a valid weight.
func ValidateWeight(w float64) error {
	if math.IsNaN(w) || w <= 0 || w > 1 {
		return New(ErrCodeInvalidWeight, "weight %v outside (0,1]", w)
	}
	return nil
}

// ValidateVertexID validates an external vertex identifier.
//
// The validation rules are intentionally conservative:
//   - No empty identifiers
//   - No control characters
//   - No slashes, since identifiers appear in URL paths
//   - Maximum length of 256 characters
func ValidateVertexID(id string) error {
	if id == "" {
		return New(ErrCodeInvalidInput, "vertex id cannot be empty")
	}

	if len(id) > MaxVertexIDLength {
		return New(ErrCodeInvalidInput, "vertex id too long (max %d characters)", MaxVertexIDLength)
	}

	for _, r := range id {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "vertex id contains invalid control characters")
		}
	}

	if strings.ContainsAny(id, "/\\") {
		return New(ErrCodeInvalidInput, "vertex id cannot contain slashes: %q", id)
	}

	return nil
}
