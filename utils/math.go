package utils

import "math"

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

// ClampInt bounds n to [lo, hi].
func ClampInt(n, lo, hi int) int {
	if n < lo {
		return lo
	}
	if n > hi {
		return hi
	}
	return n
}

// Clamp01 bounds f to [0, 1].
func Clamp01(f float64) float64 {
	return math.Max(0, math.Min(1, f))
}

// Lerp interpolates linearly from a to b without clamping t.
func Lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}

// Float64AlmostEqual compares two float64s and returns if the difference between them is less than epsilon.
func Float64AlmostEqual(a, b, epsilon float64) bool {
	return math.Abs(a-b) <= epsilon
}
