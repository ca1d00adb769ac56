package esmutils

import (
	"math"
	"strconv"
	"strings"
)

// ParseNumeric parses a dump value cell. NaN and infinities are accepted
// as numbers here and rejected later by ToStorePrecision.
func ParseNumeric(s string) (float64, bool) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// ParseUnixSeconds parses an integer epoch-seconds cell.
func ParseUnixSeconds(s string) (int64, bool) {
	v, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// ToStorePrecision converts to the float32 precision used by the store.
// False when the value is not finite or does not fit.
func ToStorePrecision(v float64) (float32, bool) {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	if math.Abs(v) > math.MaxFloat32 {
		return 0, false
	}
	return float32(v), true
}
