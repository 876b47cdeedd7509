package stats

import "errors"

var (
	// ErrInvalidEstimator indicates an unknown location/scale estimator name.
	ErrInvalidEstimator = errors.New("invalid estimator (use ML, robust or preset)")
	// ErrMissingPreset indicates the preset estimator was chosen without both mu and sigma.
	ErrMissingPreset = errors.New("preset estimator requires both mu and sigma")
	// ErrInsufficientSample indicates too few (or degenerate) observations.
	ErrInsufficientSample = errors.New("insufficient sample")
	// ErrInvalidAlternative indicates an unknown alternative hypothesis.
	ErrInvalidAlternative = errors.New("invalid alternative (use two-sided, less or greater)")
	// ErrInvalidAlpha indicates a significance level outside (0, 1).
	ErrInvalidAlpha = errors.New("alpha must lie in (0, 1)")
)
