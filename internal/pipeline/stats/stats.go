// Package stats provides the order statistics the preprocessing pipeline fits on.
package stats

import (
	"math"
	"sort"
)

// Quantile returns the q-th quantile (0 <= q <= 1) of x using linear
// interpolation between closest ranks: rank = q*(n-1). This is the default
// estimator of numpy.percentile and pandas.Series.quantile, so bounds fit
// here agree with bounds fit on the same data elsewhere.
// x is not modified. Quantile of an empty slice is NaN.
func Quantile(x []float64, q float64) float64 {
	n := len(x)
	if n == 0 {
		return math.NaN()
	}
	cp := make([]float64, n)
	copy(cp, x)
	sort.Float64s(cp)
	return sortedQuantile(cp, q)
}

// Quantiles computes several quantiles with a single sort.
func Quantiles(x []float64, qs ...float64) []float64 {
	out := make([]float64, len(qs))
	if len(x) == 0 {
		for i := range out {
			out[i] = math.NaN()
		}
		return out
	}
	cp := make([]float64, len(x))
	copy(cp, x)
	sort.Float64s(cp)
	for i, q := range qs {
		out[i] = sortedQuantile(cp, q)
	}
	return out
}

func sortedQuantile(sorted []float64, q float64) float64 {
	n := len(sorted)
	if q <= 0 {
		return sorted[0]
	}
	if q >= 1 {
		return sorted[n-1]
	}
	rank := q * float64(n-1)
	lower := int(math.Floor(rank))
	upper := lower + 1
	if upper >= n {
		return sorted[lower]
	}
	weight := rank - float64(lower)
	return sorted[lower] + (sorted[upper]-sorted[lower])*weight
}

// Percentile is Quantile with p expressed in [0, 100].
func Percentile(x []float64, p float64) float64 {
	return Quantile(x, p/100)
}

func Median(x []float64) float64 {
	return Quantile(x, 0.5)
}

// NonFinite returns the indices of NaN or ±Inf values.
func NonFinite(x []float64) []int {
	var out []int
	for i, v := range x {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			out = append(out, i)
		}
	}
	return out
}
