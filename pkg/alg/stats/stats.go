// Package stats provides core statistical functions for daily time series.
// All functions are pure and never modify their inputs.
package stats

import (
	"cmp"
	"slices"
)

// Mean returns the arithmetic mean of values.
// Returns 0 for an empty slice.
func Mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}

	var sum float64

	for _, v := range values {
		sum += v
	}

	return sum / float64(len(values))
}

// Clamp restricts val to the range [lo, hi].
func Clamp[T cmp.Ordered](val, lo, hi T) T {
	return max(lo, min(val, hi))
}

// Max returns the largest element in values.
// Returns the zero value of T for an empty slice.
func Max[T cmp.Ordered](values []T) T {
	if len(values) == 0 {
		var zero T

		return zero
	}

	result := values[0]

	for _, v := range values[1:] {
		if v > result {
			result = v
		}
	}

	return result
}

// ArgMax returns the index of the first largest element in values.
// Ties resolve to the earliest index. Returns -1 for an empty slice.
func ArgMax[T cmp.Ordered](values []T) int {
	if len(values) == 0 {
		return -1
	}

	best := 0

	for i, v := range values[1:] {
		if v > values[best] {
			best = i + 1
		}
	}

	return best
}

// Sum returns the sum of all elements in values.
// Returns the zero value of T for an empty slice.
func Sum[T cmp.Ordered](values []T) T {
	var result T

	for _, v := range values {
		result += v
	}

	return result
}

// TopSum returns the sum of the k largest values.
// k is clamped to [0, len(values)].
func TopSum(values []float64, k int) float64 {
	k = Clamp(k, 0, len(values))
	if k == 0 {
		return 0
	}

	sorted := slices.Clone(values)
	slices.SortFunc(sorted, func(a, b float64) int { return cmp.Compare(b, a) })

	return Sum(sorted[:k])
}

// CountDistinct returns the number of distinct elements in values.
func CountDistinct[T comparable](values []T) int {
	seen := make(map[T]struct{}, len(values))

	for _, v := range values {
		seen[v] = struct{}{}
	}

	return len(seen)
}
