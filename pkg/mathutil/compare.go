package mathutil

import (
	"math"

	"github.com/iwvelando/dcf-valuation/pkg/constants"
)

// IsFinite reports whether val is neither NaN nor an infinity.
func IsFinite(val float64) bool {
	return !math.IsNaN(val) && !math.IsInf(val, 0)
}

// NearlyEqual compares two values using an absolute tolerance first and a
// relative tolerance scaled by the larger magnitude second. Two NaN values
// are considered equal; infinities must match exactly.
func NearlyEqual(actual, expected float64) bool {
	if math.IsNaN(actual) && math.IsNaN(expected) {
		return true
	}
	if !IsFinite(actual) || !IsFinite(expected) {
		return actual == expected
	}
	diff := math.Abs(actual - expected)
	if diff <= constants.AbsoluteTolerance {
		return true
	}
	maxAbs := math.Max(math.Max(math.Abs(actual), math.Abs(expected)), 1)
	return diff/maxAbs <= constants.RelativeTolerance
}

// Min returns the minimum of two float64 values
func Min(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}
