package utils

import (
	"cmp"
	"math"
)

// Scale linearly maps val from [lowerRange, upperRange] onto [lowerScale, upperScale].
// Values outside the input range are extrapolated, not clamped.
func Scale(val, lowerRange, upperRange, lowerScale, upperScale float64) float64 {
	slope := (upperScale - lowerScale) / (upperRange - lowerRange)
	return val*slope + (lowerScale - slope*lowerRange)
}

// Trim bounds an integer to [lower, upper].
func Trim(val, lower, upper int) int {
	return Clamp(val, lower, upper)
}

// Clamp bounds val to [lower, upper].
func Clamp[T cmp.Ordered](val, lower, upper T) T {
	if val > upper {
		return upper
	}
	if val < lower {
		return lower
	}
	return val
}

// AbsInt returns the absolute value of n.
func AbsInt(n int) int {
	if n < 0 {
		return -1 * n
	}
	return n
}

// MaxInt returns the larger of a and b.
func MaxInt(a, b int) int {
	if a < b {
		return b
	}
	return a
}

// MinInt returns the smaller of a and b.
func MinInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

// Sign returns -1, 0 or 1.
func Sign(n int) int {
	switch {
	case n > 0:
		return 1
	case n < 0:
		return -1
	default:
		return 0
	}
}

// RoundToInt rounds half away from zero.
func RoundToInt(f float64) int {
	return int(math.Round(f))
}

// TruncToInt drops the fractional part, rounding toward zero.
func TruncToInt(f float64) int {
	return int(f)
}
