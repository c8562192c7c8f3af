package domain

import "math"

// mean returns the arithmetic mean, 0 for an empty slice.
func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// populationStdDev divides by N, not N-1: the window is the whole population.
func populationStdDev(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	m := mean(values)
	var sq float64
	for _, v := range values {
		d := v - m
		sq += d * d
	}
	return math.Sqrt(sq / float64(len(values)))
}

// clampInt bounds v to [lo, hi].
func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// clampFloat bounds v to [lo, hi].
func clampFloat(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// roundHalfUp rounds to the nearest integer, ties toward positive infinity,
// so -87.5 becomes -87 and 87.5 becomes 88.
func roundHalfUp(v float64) int {
	return int(math.Floor(v + 0.5))
}

// roundScore rounds half up and clamps to the 0-100 score range.
func roundScore(v float64) int {
	if math.IsNaN(v) {
		return 0
	}
	return clampInt(roundHalfUp(v), 0, 100)
}
