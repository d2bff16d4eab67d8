// Package stats provides the numeric primitives behind fleet aggregation and
// trend analysis. Standard deviation is always the population variant (÷n).
package stats

import (
	"cmp"
	"math"
	"slices"
)

// PercentScale converts a ratio into a percentage.
const PercentScale = 100.0

// Mean returns the arithmetic mean of values.
// Returns 0 for an empty slice.
func Mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}

	return Sum(values) / float64(len(values))
}

// MeanStdDev returns the arithmetic mean and population standard deviation.
// Returns (0, 0) for an empty slice.
func MeanStdDev(values []float64) (mean, stddev float64) {
	count := len(values)
	if count == 0 {
		return 0, 0
	}

	mean = Mean(values)

	var sumSq float64

	for _, v := range values {
		diff := v - mean
		sumSq += diff * diff
	}

	return mean, math.Sqrt(sumSq / float64(count))
}

// Sorted returns an ascending copy of values. The input is not modified.
func Sorted(values []float64) []float64 {
	sorted := slices.Clone(values)
	slices.Sort(sorted)

	return sorted
}

// Median returns the middle element of the sorted values for odd lengths and
// the mean of the two middle elements for even lengths.
// Returns 0 for an empty slice.
func Median(values []float64) float64 {
	count := len(values)
	if count == 0 {
		return 0
	}

	sorted := Sorted(values)
	mid := count / 2

	if count%2 == 1 {
		return sorted[mid]
	}

	return (sorted[mid-1] + sorted[mid]) / 2
}

// Percentile returns the p-th percentile of values using linear interpolation.
// p must be in [0, 1]. Returns 0 for an empty slice.
func Percentile(values []float64, p float64) float64 {
	count := len(values)
	if count == 0 {
		return 0
	}

	sorted := Sorted(values)

	idx := Clamp(p, 0, 1) * float64(count-1)
	lower := int(math.Floor(idx))
	upper := int(math.Ceil(idx))

	if lower == upper {
		return sorted[lower]
	}

	frac := idx - float64(lower)

	return sorted[lower]*(1-frac) + sorted[upper]*frac
}

// PercentChange returns (last-first)/first*100. The second result is false
// when first is zero and the change is undefined.
func PercentChange(first, last float64) (float64, bool) {
	if first == 0 {
		return 0, false
	}

	return (last - first) / first * PercentScale, true
}

// Share returns round(part/total*100). A zero total yields 0.
func Share(part, total float64) int {
	if total == 0 {
		return 0
	}

	return int(math.Round(part / total * PercentScale))
}

// Clamp restricts val to the range [lo, hi].
func Clamp[T cmp.Ordered](val, lo, hi T) T {
	return max(lo, min(val, hi))
}

// Min returns the smallest element in values.
// Returns the zero value of T for an empty slice.
func Min[T cmp.Ordered](values []T) T {
	if len(values) == 0 {
		var zero T

		return zero
	}

	return slices.Min(values)
}

// Max returns the largest element in values.
// Returns the zero value of T for an empty slice.
func Max[T cmp.Ordered](values []T) T {
	if len(values) == 0 {
		var zero T

		return zero
	}

	return slices.Max(values)
}

// Sum returns the sum of all elements in values.
func Sum[T cmp.Ordered](values []T) T {
	var result T

	for _, v := range values {
		result += v
	}

	return result
}
