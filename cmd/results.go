package cmd

import (
	"fmt"
	"time"

	"github.com/KaramelBytes/statloom-cli/internal/results"
	"github.com/spf13/cobra"
)

var resultsCmd = &cobra.Command{
	Use:   "results",
	Short: "List or show saved analysis results",
}

var resultsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved results, oldest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		recs, err := results.NewStore(settings().ResultsDir).List()
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if len(recs) == 0 {
			fmt.Fprintln(out, "(no results)")
			return nil
		}
		for _, r := range recs {
			fmt.Fprintf(out, "- %s  %-8s  %s\n", r.ID, r.Kind, r.CreatedAt.Local().Format(time.RFC3339))
		}
		return nil
	},
}

var resultsShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Print a saved result as JSON",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rec, err := results.NewStore(settings().ResultsDir).Get(args[0])
		if err != nil {
			return err
		}
		b, err := rec.Pretty()
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(b))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(resultsCmd)
	resultsCmd.AddCommand(resultsListCmd)
	resultsCmd.AddCommand(resultsShowCmd)
}
