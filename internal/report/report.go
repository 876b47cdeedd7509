// Package report renders analysis results as plain-text blocks for the terminal.
package report

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/KaramelBytes/statloom-cli/internal/kraken"
	"github.com/KaramelBytes/statloom-cli/internal/stats"
)

// Rule is the delimiter line framing every report block.
var Rule = strings.Repeat("-", 80)

// AndersonDarling writes the normality test summary.
func AndersonDarling(w io.Writer, r *stats.ADResult) {
	fmt.Fprintln(w, Rule)
	fmt.Fprintln(w, "Anderson-Darling-test for normality of data:")
	fmt.Fprintln(w, "     assuming Normal(mu | sigma2) data for dataset")
	fmt.Fprintf(w, "y.av = %.3g, s = %.3g, n = %d, alpha = %.3g\n", r.Mean, r.SD, r.N, r.Alpha)
	fmt.Fprintln(w, "H0: data follows normal distribution")
	fmt.Fprintln(w, "H1: data does not follow normal distribution")
	fmt.Fprintf(w, "AD = %.3g, AD* = %.3g, p-value = %.3g, AD*.crit = %.3g\n", r.Statistic, r.Corrected, r.PValue, r.Critical)
	fmt.Fprintln(w, Rule)
}

// RankSumHeader writes the opening of a Mann-Whitney block, up to and
// including the alternative hypothesis. For an unknown alternative it closes
// the block and returns the validation error.
func RankSumHeader(w io.Writer, d stats.TwoSample, alt stats.Alternative, alpha float64) error {
	fmt.Fprintln(w, Rule)
	fmt.Fprintln(w, "2-sample Mann-Whitney U-test for 2 medians:")
	fmt.Fprintln(w, "     assuming identical distributions for both datasets, that may differ in location")
	fmt.Fprintf(w, "y.med.1 = %.4g, y.med.2 = %.4g, n.1 = %d, n.2 = %d, alpha = %.3g\n", d.Median1, d.Median2, d.N1, d.N2, alpha)
	fmt.Fprintln(w, "H0: eta.1  = eta.2")
	h1, err := stats.Hypothesis(alt)
	if err != nil {
		fmt.Fprintln(w, "Wrong alternative hypothesis chosen!")
		fmt.Fprintln(w, Rule)
		return err
	}
	fmt.Fprintln(w, h1)
	return nil
}

// RankSumBody writes the statistics and closes the block opened by RankSumHeader.
func RankSumBody(w io.Writer, r *stats.RankSumResult) {
	fmt.Fprintf(w, "U.1 = %.3g, U.2 = %.3g, U = %.3g, p-value = %.3g, z = %.3g\n", r.U1, r.U2, r.U, r.PValue, r.Z)
	fmt.Fprintf(w, "Effect size: r    = %.3g; benchmarks |r|: 0.1 = small, 0.3 = medium, 0.5 = large\n", r.EffectSize)
	fmt.Fprintln(w, Rule)
}

// QQ writes the estimates shown next to a Q-Q plot.
func QQ(w io.Writer, r *stats.QQResult) {
	fmt.Fprintln(w, Rule)
	fmt.Fprintf(w, "Normal Q-Q diagnostics (estimation method: %s)\n", r.Estimator)
	fmt.Fprintf(w, "n = %d, mu = %.4g, sigma = %.4g\n", r.N, r.Mu, r.Sigma)
	fmt.Fprintf(w, "Expected number of data outside CI: %d (observed %d)\n", r.ExpectedOutside, r.Outside())
	fmt.Fprintln(w, Rule)
}

// Comparison writes one aligned row per taxon present in both reports.
func Comparison(w io.Writer, before, after string, pairs []kraken.Pair) error {
	fmt.Fprintln(w, Rule)
	fmt.Fprintf(w, "Species proportions before vs. after\n  before: %s\n  after:  %s\n", before, after)
	fmt.Fprintln(w, Rule)
	if len(pairs) == 0 {
		fmt.Fprintln(w, "(no shared taxa)")
		fmt.Fprintln(w, Rule)
		return nil
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "Taxon\tBefore (%)\tAfter (%)\tDelta\t")
	for _, p := range pairs {
		delta := "NaN"
		if d, ok := p.Delta(); ok {
			delta = fmt.Sprintf("%+.4g", d)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t\n", p.Label, p.Before, p.After, delta)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	fmt.Fprintln(w, Rule)
	return nil
}
