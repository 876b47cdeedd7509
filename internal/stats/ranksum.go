package stats

import (
	"errors"
	"fmt"
	"math"
	"strings"

	mstats "github.com/aclements/go-moremath/stats"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"
)

// Alternative is the alternative hypothesis of a two-sample location test.
type Alternative string

const (
	// TwoSided tests eta.1 != eta.2.
	TwoSided Alternative = "two-sided"
	// Less tests eta.1 < eta.2.
	Less Alternative = "less"
	// Greater tests eta.1 > eta.2.
	Greater Alternative = "greater"
)

// Above these sample sizes the p-value comes from the normal approximation
// without continuity correction; below them the exact U distribution is used.
const (
	exactLimit     = 50
	exactLimitTies = 25
)

// ParseAlternative accepts two-sided, less or greater.
func ParseAlternative(s string) (Alternative, error) {
	switch a := Alternative(strings.ToLower(strings.TrimSpace(s))); a {
	case TwoSided, Less, Greater:
		return a, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidAlternative, s)
}

func (a Alternative) location() (mstats.LocationHypothesis, error) {
	switch a {
	case TwoSided:
		return mstats.LocationDiffers, nil
	case Less:
		return mstats.LocationLess, nil
	case Greater:
		return mstats.LocationGreater, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidAlternative, string(a))
}

// Hypothesis returns the H1 statement for a, comparing the medians eta.1 and eta.2.
func Hypothesis(a Alternative) (string, error) {
	switch a {
	case TwoSided:
		return "H1: eta.1 != eta.2", nil
	case Greater:
		return "H1: eta.1  > eta.2", nil
	case Less:
		return "H1: eta.1  < eta.2", nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidAlternative, string(a))
}

// TwoSample summarizes two samples ahead of any test.
type TwoSample struct {
	Median1, Median2 float64
	N1, N2           int
}

// DescribeTwoSample returns the medians and sizes of both samples. It never fails.
func DescribeTwoSample(y1, y2 []float64) TwoSample {
	return TwoSample{Median1: Median(y1), Median2: Median(y2), N1: len(y1), N2: len(y2)}
}

// RankSumResult is the outcome of a Mann-Whitney U test.
type RankSumResult struct {
	TwoSample
	Alternative Alternative
	Alpha       float64
	// U1 is the statistic of the first sample; U2 = n1*n2 - U1; U = min(U1, U2).
	U1, U2, U float64
	PValue    float64
	// Z is the normal approximation of U; EffectSize is r = Z/sqrt(n1+n2).
	Z          float64
	EffectSize float64
	// PointBiserial uses the pooled variance of both samples.
	PointBiserial float64
}

// RankSum performs the two-sample Mann-Whitney U test. The alternative is
// validated before anything is computed.
func RankSum(y1, y2 []float64, alt Alternative, alpha float64) (*RankSumResult, error) {
	loc, err := alt.location()
	if err != nil {
		return nil, err
	}
	if !(alpha > 0 && alpha < 1) {
		return nil, fmt.Errorf("%w: got %g", ErrInvalidAlpha, alpha)
	}
	if len(y1) == 0 || len(y2) == 0 {
		return nil, fmt.Errorf("%w: both samples need at least one value", ErrInsufficientSample)
	}

	mw, err := mstats.MannWhitneyUTest(y1, y2, loc)
	if err != nil {
		if errors.Is(err, mstats.ErrSampleSize) || errors.Is(err, mstats.ErrSamplesEqual) {
			return nil, fmt.Errorf("%w: %v", ErrInsufficientSample, err)
		}
		return nil, fmt.Errorf("mann-whitney: %w", err)
	}

	res := &RankSumResult{
		TwoSample:   DescribeTwoSample(y1, y2),
		Alternative: alt,
		Alpha:       alpha,
		U1:          mw.U,
		PValue:      mw.P,
	}
	ties := tieSum(y1, y2)
	if !useExact(len(y1), len(y2), ties) {
		res.PValue = normalPValue(len(y1), len(y2), ties, res.U1, alt)
	}
	n1, n2 := float64(len(y1)), float64(len(y2))
	res.U2 = n1*n2 - res.U1
	res.U = math.Min(res.U1, res.U2)

	muU := n1 * n2 / 2
	sigmaU := math.Sqrt(n1 * n2 * (n1 + n2 + 1) / 12)
	res.Z = (res.U - muU) / sigmaU
	res.EffectSize = res.Z / math.Sqrt(n1+n2)

	res.PointBiserial = math.NaN()
	if n1+n2 >= 3 {
		sp := math.Sqrt(pooledVariance(y1, y2))
		res.PointBiserial = (stat.Mean(y1, nil) - stat.Mean(y2, nil)) / sp * math.Sqrt(n1*n2) / (n1 + n2)
	}
	return res, nil
}

func useExact(n1, n2 int, ties float64) bool {
	if ties == 0 {
		return n1 <= exactLimit && n2 <= exactLimit
	}
	return n1 <= exactLimitTies && n2 <= exactLimitTies
}

// tieSum returns the sum of t^3 - t over groups of tied values in the pooled sample.
func tieSum(y1, y2 []float64) float64 {
	pooled := sorted(append(append(make([]float64, 0, len(y1)+len(y2)), y1...), y2...))
	sum := 0.0
	for i := 0; i < len(pooled); {
		j := i + 1
		for j < len(pooled) && pooled[j] == pooled[i] {
			j++
		}
		t := float64(j - i)
		sum += t*t*t - t
		i = j
	}
	return sum
}

// normalPValue is the tie-adjusted normal approximation of U1.
func normalPValue(n1, n2 int, ties, u1 float64, alt Alternative) float64 {
	a, b := float64(n1), float64(n2)
	n := a + b
	sigma := math.Sqrt(a * b / 12 * ((n + 1) - ties/(n*(n-1))))
	z := (u1 - a*b/2) / sigma
	std := distuv.UnitNormal
	switch alt {
	case Less:
		return std.CDF(z)
	case Greater:
		return std.Survival(z)
	}
	return math.Min(1, 2*std.CDF(-math.Abs(z)))
}
