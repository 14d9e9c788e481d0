// Package stats holds the small numeric helpers used for centroids and
// dwell-time statistics. Standard deviation is the population form (÷n).
package stats

import (
	"math"
	"slices"
)

// Number is any value that can be summed.
type Number interface {
	~int | ~int32 | ~int64 | ~float32 | ~float64
}

// Sum adds all values. Empty input sums to zero.
func Sum[T Number](values []T) T {
	var total T

	for _, v := range values {
		total += v
	}

	return total
}

// Mean returns the arithmetic mean, or 0 for an empty slice.
func Mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}

	return Sum(values) / float64(len(values))
}

// MeanStdDev returns the mean and population standard deviation.
func MeanStdDev(values []float64) (mean, stddev float64) {
	if len(values) == 0 {
		return 0, 0
	}

	mean = Mean(values)

	var sumSq float64

	for _, v := range values {
		d := v - mean
		sumSq += d * d
	}

	return mean, math.Sqrt(sumSq / float64(len(values)))
}

// Percentile thresholds used by reports.
const (
	PercentileMedian = 0.5
	PercentileP95    = 0.95
)

// Percentile returns the p-th percentile (p in [0, 1]) with linear
// interpolation between closest ranks. values is not modified.
func Percentile(values []float64, p float64) float64 {
	n := len(values)
	if n == 0 {
		return 0
	}

	sorted := slices.Clone(values)
	slices.Sort(sorted)

	pos := p * float64(n-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))

	if lo == hi || hi >= n {
		return sorted[lo]
	}

	frac := pos - float64(lo)

	return sorted[lo]*(1-frac) + sorted[hi]*frac
}

// Median is Percentile(values, 0.5).
func Median(values []float64) float64 {
	return Percentile(values, PercentileMedian)
}
