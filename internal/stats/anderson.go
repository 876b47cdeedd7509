package stats

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat/distuv"
)

// Interval is a range on the real line with explicit endpoint inclusion.
type Interval struct {
	Lo, Hi             float64
	LoClosed, HiClosed bool
}

// Contains reports whether x lies in the interval.
func (iv Interval) Contains(x float64) bool {
	if math.IsNaN(x) {
		return false
	}
	if x < iv.Lo || (x == iv.Lo && !iv.LoClosed) {
		return false
	}
	if x > iv.Hi || (x == iv.Hi && !iv.HiClosed) {
		return false
	}
	return true
}

// ADPValueBranch is one of the D'Agostino & Stephens (1986) empirical
// p-value formulas for the small-sample Anderson-Darling statistic A*:
//
//	p = exp(A + B*a + C*a²)       or, with Complement,
//	p = 1 - exp(A + B*a + C*a²)
type ADPValueBranch struct {
	Interval
	A, B, C    float64
	Complement bool
}

// PValue evaluates the branch formula at a.
func (b ADPValueBranch) PValue(a float64) float64 {
	e := math.Exp(b.A + b.B*a + b.C*a*a)
	if b.Complement {
		return 1 - e
	}
	return e
}

// ADCriticalBranch maps a range of significance levels to the p-value
// branch whose quadratic it inverts. RootSign picks the root of the quadratic.
type ADCriticalBranch struct {
	Interval
	Branch   int // index into ADPValueBranches
	RootSign float64
}

// ADPValueBranches is ordered by A*. Each A* falls in exactly one branch.
var ADPValueBranches = []ADPValueBranch{
	{Interval: Interval{Lo: math.Inf(-1), Hi: 0.2, HiClosed: true}, A: -13.436, B: 101.14, C: -223.73, Complement: true},
	{Interval: Interval{Lo: 0.2, Hi: 0.34, HiClosed: true}, A: -8.318, B: 42.796, C: -59.938, Complement: true},
	{Interval: Interval{Lo: 0.34, Hi: 0.6}, A: 0.9177, B: -4.279, C: -1.38},
	{Interval: Interval{Lo: 0.6, Hi: math.Inf(1), LoClosed: true}, A: 1.2937, B: -5.709, C: 0.0186},
}

// ADCriticalBranches is ordered by alpha, largest first, and covers (0, 1).
var ADCriticalBranches = []ADCriticalBranch{
	{Interval: Interval{Lo: 0.884, Hi: 1, LoClosed: true}, Branch: 0, RootSign: 1},
	{Interval: Interval{Lo: 0.5, Hi: 0.884, LoClosed: true}, Branch: 1, RootSign: 1},
	{Interval: Interval{Lo: 0.1182, Hi: 0.5, LoClosed: true}, Branch: 2, RootSign: -1},
	{Interval: Interval{Lo: 0, Hi: 0.1182}, Branch: 3, RootSign: -1},
}

// ADResult is the outcome of an Anderson-Darling normality test.
type ADResult struct {
	N     int
	Mean  float64
	SD    float64
	Alpha float64
	// Statistic is the large-sample A²; Corrected is A* = A²(1 + 0.75/n + 2.25/n²).
	Statistic float64
	Corrected float64
	PValue    float64
	// Critical is the A* value at which the test rejects at Alpha.
	Critical float64
	// PBranch and CritBranch are the 1-based formula numbers used.
	PBranch    int
	CritBranch int
}

// Reject reports whether normality is rejected at Alpha.
func (r *ADResult) Reject() bool { return r.Corrected > r.Critical }

// AndersonDarling tests whether sample follows a normal distribution with
// mean and variance fitted from the sample.
func AndersonDarling(sample []float64, alpha float64) (*ADResult, error) {
	if !(alpha > 0 && alpha < 1) {
		return nil, fmt.Errorf("%w: got %g", ErrInvalidAlpha, alpha)
	}
	n := len(sample)
	if n < 2 {
		return nil, fmt.Errorf("%w: need at least 2 values, got %d", ErrInsufficientSample, n)
	}
	mean, sd := MeanSD(sample)
	if !(sd > 0) {
		return nil, fmt.Errorf("%w: zero variance", ErrInsufficientSample)
	}

	ys := sorted(sample)
	fn := float64(n)
	sum := 0.0
	for i := 0; i < n; i++ {
		lo := (ys[i] - mean) / sd
		hi := (ys[n-1-i] - mean) / sd
		sum += float64(2*i+1) / fn * (logNormCDF(lo) + logNormCDF(-hi))
	}
	a2 := -fn - sum
	aStar := a2 * (1 + 0.75/fn + 2.25/(fn*fn))

	pb, err := pValueBranch(aStar)
	if err != nil {
		return nil, err
	}
	crit, cb, err := ADCritical(alpha)
	if err != nil {
		return nil, err
	}
	return &ADResult{
		N:          n,
		Mean:       mean,
		SD:         sd,
		Alpha:      alpha,
		Statistic:  a2,
		Corrected:  aStar,
		PValue:     ADPValueBranches[pb].PValue(aStar),
		Critical:   crit,
		PBranch:    pb + 1,
		CritBranch: cb + 1,
	}, nil
}

// ADPValue returns the p-value for a corrected statistic A*.
func ADPValue(aStar float64) (float64, error) {
	i, err := pValueBranch(aStar)
	if err != nil {
		return math.NaN(), err
	}
	return ADPValueBranches[i].PValue(aStar), nil
}

func pValueBranch(aStar float64) (int, error) {
	for i, b := range ADPValueBranches {
		if b.Contains(aStar) {
			return i, nil
		}
	}
	return -1, fmt.Errorf("no p-value formula covers A* = %g", aStar)
}

// ADCritical returns the critical A* for significance level alpha and the
// index of the critical branch used. The quadratic of the matching p-value
// formula is solved in closed form.
func ADCritical(alpha float64) (float64, int, error) {
	for i, cb := range ADCriticalBranches {
		if !cb.Contains(alpha) {
			continue
		}
		pb := ADPValueBranches[cb.Branch]
		target := alpha
		if pb.Complement {
			target = 1 - alpha
		}
		// C*x² + B*x + (A - ln target) = 0
		k := pb.A - math.Log(target)
		disc := pb.B*pb.B - 4*pb.C*k
		return (-pb.B + cb.RootSign*math.Sqrt(disc)) / (2 * pb.C), i, nil
	}
	return math.NaN(), -1, fmt.Errorf("%w: got %g", ErrInvalidAlpha, alpha)
}

// logTailZ is where logNormCDF switches from the direct form to the
// asymptotic series; Phi(-30) is still well inside the float64 range.
const logTailZ = -30

// logNormCDF returns ln Phi(z) for the standard normal without underflowing in
// the lower tail.
func logNormCDF(z float64) float64 {
	if z >= logTailZ {
		return math.Log(distuv.UnitNormal.CDF(z))
	}
	// Phi(z) ~ phi(z)/|z| * (1 - 1/z^2 + 3/z^4 - 15/z^6 + 105/z^8)
	z2 := z * z
	inv := 1 / z2
	series := 1 - inv*(1-inv*(3-inv*(15-inv*105)))
	return -z2/2 - math.Log(-z) - 0.5*math.Log(2*math.Pi) + math.Log(series)
}
