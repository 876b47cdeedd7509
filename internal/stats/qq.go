package stats

import (
	"fmt"
	"math"
	"strings"

	"gonum.org/v1/gonum/stat/distuv"
)

// Estimator selects how the normal location and scale are estimated for a Q-Q plot.
type Estimator string

const (
	// EstimatorML uses the sample mean and the unbiased standard deviation.
	EstimatorML Estimator = "ML"
	// EstimatorRobust uses the median and IQR/1.349.
	EstimatorRobust Estimator = "robust"
	// EstimatorPreset uses caller supplied mu and sigma.
	EstimatorPreset Estimator = "preset"
)

// iqrToSigma converts an interquartile range to a normal standard deviation.
const iqrToSigma = 1.349

// z of the two-sided 95% band drawn around the normal line.
const ciZ = 1.96

// ParseEstimator accepts ML, robust or preset (case-insensitive).
func ParseEstimator(s string) (Estimator, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "ml":
		return EstimatorML, nil
	case "robust":
		return EstimatorRobust, nil
	case "preset":
		return EstimatorPreset, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidEstimator, s)
}

// QQOptions carries the estimator choice and, for EstimatorPreset, the
// externally supplied parameters.
type QQOptions struct {
	Estimator Estimator
	Mu        *float64
	Sigma     *float64
}

// Validate checks the options before any computation.
func (o QQOptions) Validate() error {
	switch o.Estimator {
	case EstimatorML, EstimatorRobust:
		return nil
	case EstimatorPreset:
		if o.Mu == nil || o.Sigma == nil {
			return ErrMissingPreset
		}
		return nil
	}
	return fmt.Errorf("%w: %q", ErrInvalidEstimator, string(o.Estimator))
}

// QQPoint is one order statistic placed against its theoretical normal quantile.
type QQPoint struct {
	P           float64 // plotting position (i - 0.5)/n
	Sample      float64 // standardized order statistic
	Theoretical float64 // standard normal quantile at P
	SE          float64 // standard error of Theoretical
	Lower       float64 // 95% band
	Upper       float64
}

// QQResult holds the data behind a normal quantile-quantile plot.
type QQResult struct {
	Estimator       Estimator
	Mu              float64
	Sigma           float64
	N               int
	ExpectedOutside int
	Points          []QQPoint
}

// Outside counts the points falling outside the 95% band.
func (r *QQResult) Outside() int {
	n := 0
	for _, p := range r.Points {
		if p.Sample < p.Lower || p.Sample > p.Upper {
			n++
		}
	}
	return n
}

// QQ computes normal Q-Q diagnostics for sample.
func QQ(sample []float64, opt QQOptions) (*QQResult, error) {
	if err := opt.Validate(); err != nil {
		return nil, err
	}
	n := len(sample)
	minN := 2
	if opt.Estimator == EstimatorPreset {
		minN = 1
	}
	if n < minN {
		return nil, fmt.Errorf("%w: need at least %d values, got %d", ErrInsufficientSample, minN, n)
	}

	var mu, sigma float64
	switch opt.Estimator {
	case EstimatorML:
		mu, sigma = MeanSD(sample)
	case EstimatorRobust:
		mu, sigma = Median(sample), IQR(sample)/iqrToSigma
	case EstimatorPreset:
		mu, sigma = *opt.Mu, *opt.Sigma
	}
	if !(sigma > 0) || math.IsInf(sigma, 0) || math.IsNaN(mu) {
		return nil, fmt.Errorf("%w: scale estimate %g is not usable", ErrInsufficientSample, sigma)
	}

	std := distuv.UnitNormal
	ys := sorted(sample)
	fn := float64(n)
	res := &QQResult{
		Estimator:       opt.Estimator,
		Mu:              mu,
		Sigma:           sigma,
		N:               n,
		ExpectedOutside: int(math.RoundToEven(0.05 * fn)),
		Points:          make([]QQPoint, n),
	}
	for i, y := range ys {
		p := (float64(i+1) - 0.5) / fn
		zt := std.Quantile(p)
		se := math.Sqrt(p*(1-p)/fn) / std.Prob(zt)
		res.Points[i] = QQPoint{
			P:           p,
			Sample:      (y - mu) / sigma,
			Theoretical: zt,
			SE:          se,
			Lower:       zt - ciZ*se,
			Upper:       zt + ciZ*se,
		}
	}
	return res, nil
}
