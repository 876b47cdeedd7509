package stats

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// sorted returns an ascending copy of xs.
func sorted(xs []float64) []float64 {
	cp := make([]float64, len(xs))
	copy(cp, xs)
	sort.Float64s(cp)
	return cp
}

// quantile interpolates linearly between order statistics at position q*(n-1).
func quantile(sorted []float64, q float64) float64 {
	if len(sorted) == 0 {
		return math.NaN()
	}
	if q <= 0 {
		return sorted[0]
	}
	if q >= 1 {
		return sorted[len(sorted)-1]
	}
	pos := q * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	w := pos - float64(lo)
	return sorted[lo]*(1-w) + sorted[hi]*w
}

// Median returns the sample median, NaN for an empty sample.
func Median(xs []float64) float64 {
	return quantile(sorted(xs), 0.5)
}

// IQR returns the interquartile range Q3 - Q1.
func IQR(xs []float64) float64 {
	s := sorted(xs)
	return quantile(s, 0.75) - quantile(s, 0.25)
}

// MeanSD returns the mean and the unbiased standard deviation.
func MeanSD(xs []float64) (mean, sd float64) {
	return stat.MeanStdDev(xs, nil)
}

// pooledVariance combines two unbiased variances weighted by degrees of freedom.
func pooledVariance(x1, x2 []float64) float64 {
	n1, n2 := float64(len(x1)), float64(len(x2))
	v1 := stat.Variance(x1, nil)
	v2 := stat.Variance(x2, nil)
	if len(x1) < 2 {
		v1 = 0
	}
	if len(x2) < 2 {
		v2 = 0
	}
	return ((n1-1)*v1 + (n2-1)*v2) / (n1 + n2 - 2)
}
