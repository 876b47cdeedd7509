package cmd

import (
	"fmt"
	"log/slog"

	"github.com/KaramelBytes/statloom-cli/internal/chart"
	"github.com/KaramelBytes/statloom-cli/internal/kraken"
	"github.com/KaramelBytes/statloom-cli/internal/report"
	"github.com/KaramelBytes/statloom-cli/internal/results"
	"github.com/spf13/cobra"
)

var (
	cmpSpecies []string
	cmpTopN    int
	cmpChart   string
)

type comparePair struct {
	Label  string           `json:"label"`
	Before kraken.NullFloat `json:"before"`
	After  kraken.NullFloat `json:"after"`
	Delta  *float64         `json:"delta"`
}

var compareCmd = &cobra.Command{
	Use:   "compare [before.kreport after.kreport]",
	Short: "Compare taxon percentages of two Kraken reports",
	Long: `Compare two Kraken summary reports as before/after pairs.

Report paths come from the arguments, or from kraken_files in the config.
--species and --top-n override selected_species and top_n_species.`,
	Args: func(cmd *cobra.Command, args []string) error {
		if len(args) != 0 && len(args) != 2 {
			return fmt.Errorf("accepts 0 or 2 arg(s), received %d", len(args))
		}
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		c := settings()
		before, after := c.KrakenFiles.Before, c.KrakenFiles.After
		if len(args) == 2 {
			before, after = args[0], args[1]
		}
		if before == "" || after == "" {
			return fmt.Errorf("before and after reports are required (pass them as arguments or set kraken_files in the config)")
		}
		opt := kraken.Options{Labels: c.SelectedSpecies, TopN: c.TopNSpecies}
		if cmd.Flags().Changed("species") {
			opt.Labels = cmpSpecies
		}
		if cmd.Flags().Changed("top-n") {
			opt.TopN = cmpTopN
		}
		if opt.TopN < 0 {
			return fmt.Errorf("--top-n must be >= 0, got %d", opt.TopN)
		}

		bt, err := kraken.Load(before)
		if err != nil {
			return err
		}
		at, err := kraken.Load(after)
		if err != nil {
			return err
		}
		for _, t := range []*kraken.Table{bt, at} {
			slog.Debug("report loaded", "file", t.Name, "records", t.Len(), "missing", t.Missing())
		}

		pairs := kraken.Compare(kraken.Prepare(bt, opt), kraken.Prepare(at, opt))
		out := cmd.OutOrStdout()
		if err := report.Comparison(out, before, after, pairs); err != nil {
			return err
		}
		if len(pairs) == 0 {
			slog.Warn("no taxa shared between reports", "before", before, "after", after)
		} else if cmpChart != "" {
			if err := chart.Barbell(pairs, cmpChart); err != nil {
				return err
			}
			fmt.Fprintf(out, "✓ Chart written to %s\n", cmpChart)
		}

		payload := make([]comparePair, 0, len(pairs))
		for _, p := range pairs {
			cp := comparePair{Label: p.Label, Before: p.Before, After: p.After}
			if d, ok := p.Delta(); ok {
				cp.Delta = results.Num(d)
			}
			payload = append(payload, cp)
		}
		return saveResult(cmd, "compare", map[string]string{"before": before, "after": after}, payload)
	},
}

func init() {
	rootCmd.AddCommand(compareCmd)
	compareCmd.Flags().StringArrayVar(&cmpSpecies, "species", nil, "taxon label to keep (repeatable; overrides selected_species)")
	compareCmd.Flags().IntVar(&cmpTopN, "top-n", 0, "keep the N most abundant taxa per report (overrides top_n_species)")
	compareCmd.Flags().StringVar(&cmpChart, "chart", "", "write a barbell chart (.png, .svg or .pdf)")
	addSaveFlag(compareCmd)
}
