package cmd

import (
	"log/slog"

	"github.com/KaramelBytes/statloom-cli/internal/report"
	"github.com/KaramelBytes/statloom-cli/internal/results"
	"github.com/KaramelBytes/statloom-cli/internal/stats"
	"github.com/spf13/cobra"
)

var adAlpha float64

type adPayload struct {
	N         int      `json:"n"`
	Mean      float64  `json:"mean"`
	SD        float64  `json:"sd"`
	Alpha     float64  `json:"alpha"`
	Statistic float64  `json:"ad"`
	Corrected float64  `json:"ad_star"`
	PValue    *float64 `json:"p_value"`
	Critical  float64  `json:"ad_star_crit"`
	Reject    bool     `json:"reject"`
}

var andersonCmd = &cobra.Command{
	Use:   "anderson <file>",
	Short: "Anderson-Darling test for normality",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		alpha := alphaFor(cmd, adAlpha)
		xs, err := loadSample(args[0])
		if err != nil {
			return err
		}
		res, err := stats.AndersonDarling(xs, alpha)
		if err != nil {
			return err
		}
		slog.Debug("anderson-darling branches", "p_branch", res.PBranch, "crit_branch", res.CritBranch)
		report.AndersonDarling(cmd.OutOrStdout(), res)

		return saveResult(cmd, "anderson", map[string]string{"file": args[0]}, adPayload{
			N:         res.N,
			Mean:      res.Mean,
			SD:        res.SD,
			Alpha:     res.Alpha,
			Statistic: res.Statistic,
			Corrected: res.Corrected,
			PValue:    results.Num(res.PValue),
			Critical:  res.Critical,
			Reject:    res.Reject(),
		})
	},
}

func init() {
	rootCmd.AddCommand(andersonCmd)
	andersonCmd.Flags().Float64Var(&adAlpha, "alpha", 0.05, "significance level (default from config)")
	addSampleFlags(andersonCmd)
	addSaveFlag(andersonCmd)
}
