package cmd

import (
	"github.com/KaramelBytes/statloom-cli/internal/report"
	"github.com/KaramelBytes/statloom-cli/internal/results"
	"github.com/KaramelBytes/statloom-cli/internal/stats"
	"github.com/spf13/cobra"
)

var (
	rsAlternative string
	rsAlpha       float64
)

type rankSumPayload struct {
	Median1       float64           `json:"median_1"`
	Median2       float64           `json:"median_2"`
	N1            int               `json:"n_1"`
	N2            int               `json:"n_2"`
	Alternative   stats.Alternative `json:"alternative"`
	Alpha         float64           `json:"alpha"`
	U1            float64           `json:"u_1"`
	U2            float64           `json:"u_2"`
	U             float64           `json:"u"`
	PValue        *float64          `json:"p_value"`
	Z             *float64          `json:"z"`
	EffectSize    *float64          `json:"effect_size"`
	PointBiserial *float64          `json:"point_biserial"`
}

var ranksumCmd = &cobra.Command{
	Use:   "ranksum <file1> <file2>",
	Short: "Two-sample Mann-Whitney U test",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		raw := settings().Alternative
		if cmd.Flags().Changed("alternative") {
			raw = rsAlternative
		}
		alt, err := stats.ParseAlternative(raw)
		if err != nil {
			// keep the raw value so the report can flag it
			alt = stats.Alternative(raw)
		}
		alpha := alphaFor(cmd, rsAlpha)

		y1, err := loadSample(args[0])
		if err != nil {
			return err
		}
		y2, err := loadSample(args[1])
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if err := report.RankSumHeader(out, stats.DescribeTwoSample(y1, y2), alt, alpha); err != nil {
			return err
		}
		res, err := stats.RankSum(y1, y2, alt, alpha)
		if err != nil {
			return err
		}
		report.RankSumBody(out, res)

		return saveResult(cmd, "ranksum", map[string]string{"file1": args[0], "file2": args[1]}, rankSumPayload{
			Median1:       res.Median1,
			Median2:       res.Median2,
			N1:            res.N1,
			N2:            res.N2,
			Alternative:   res.Alternative,
			Alpha:         res.Alpha,
			U1:            res.U1,
			U2:            res.U2,
			U:             res.U,
			PValue:        results.Num(res.PValue),
			Z:             results.Num(res.Z),
			EffectSize:    results.Num(res.EffectSize),
			PointBiserial: results.Num(res.PointBiserial),
		})
	},
}

func init() {
	rootCmd.AddCommand(ranksumCmd)
	ranksumCmd.Flags().StringVar(&rsAlternative, "alternative", "", "two-sided, less or greater (default from config)")
	ranksumCmd.Flags().Float64Var(&rsAlpha, "alpha", 0.05, "significance level (default from config)")
	addSampleFlags(ranksumCmd)
	addSaveFlag(ranksumCmd)
}
