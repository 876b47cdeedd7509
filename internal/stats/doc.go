// Package stats implements the normality diagnostics and hypothesis tests
// behind the qq, anderson and ranksum commands.
//
// # Normal Q-Q diagnostics
//
//	res, err := stats.QQ(y, stats.QQOptions{Estimator: stats.EstimatorRobust})
//	// res.Points pairs each standardized order statistic with its
//	// theoretical quantile and a pointwise 95% band.
//
// # Anderson-Darling
//
//	ad, err := stats.AndersonDarling(y, 0.05)
//	fmt.Printf("A* = %.3g, p = %.3g, crit = %.3g\n", ad.Corrected, ad.PValue, ad.Critical)
//
// The p-value and critical value come from the piecewise formulas of
// D'Agostino & Stephens (1986), see ADPValueBranches and ADCriticalBranches.
//
// # Mann-Whitney U
//
//	mw, err := stats.RankSum(y1, y2, stats.Less, 0.05)
package stats
