package cmd

import (
	"fmt"
	"strconv"
	"strings"

	cfgpkg "github.com/KaramelBytes/statloom-cli/internal/config"
	"github.com/KaramelBytes/statloom-cli/internal/stats"
	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "View or set StatLoom configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show effective configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		if cfg == nil {
			fmt.Fprintln(out, "No config loaded")
			return nil
		}
		if src := cfg.Source(); src != "" {
			fmt.Fprintf(out, "# from %s\n", src)
		}
		fmt.Fprintf(out, "kraken_files.before_measurement_file: %s\n", cfg.KrakenFiles.Before)
		fmt.Fprintf(out, "kraken_files.after_measurement_file: %s\n", cfg.KrakenFiles.After)
		if len(cfg.SelectedSpecies) > 0 {
			fmt.Fprintf(out, "selected_species: %s\n", strings.Join(cfg.SelectedSpecies, ", "))
		}
		fmt.Fprintf(out, "top_n_species: %d\n", cfg.TopNSpecies)
		fmt.Fprintf(out, "alpha: %g\n", cfg.Alpha)
		fmt.Fprintf(out, "estimator: %s\n", cfg.Estimator)
		fmt.Fprintf(out, "alternative: %s\n", cfg.Alternative)
		fmt.Fprintf(out, "results_dir: %s\n", cfg.ResultsDir)
		fmt.Fprintf(out, "log_level: %s\n", cfg.LogLevel)
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a config value and save to disk",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, val := args[0], args[1]
		if cfg == nil {
			c, err := cfgpkg.Load(cfgFile)
			if err != nil {
				return err
			}
			cfg = c
		}
		switch key {
		case "kraken_files.before_measurement_file", "before":
			cfg.KrakenFiles.Before = val
		case "kraken_files.after_measurement_file", "after":
			cfg.KrakenFiles.After = val
		case "selected_species":
			cfg.SelectedSpecies = nil
			for _, s := range strings.Split(val, ",") {
				if s = strings.TrimSpace(s); s != "" {
					cfg.SelectedSpecies = append(cfg.SelectedSpecies, s)
				}
			}
		case "top_n_species":
			i, err := strconv.Atoi(val)
			if err != nil || i < 0 {
				return fmt.Errorf("invalid int for top_n_species: %v", val)
			}
			cfg.TopNSpecies = i
		case "alpha":
			f, err := strconv.ParseFloat(val, 64)
			if err != nil {
				return fmt.Errorf("invalid float for alpha: %w", err)
			}
			cfg.Alpha = f
		case "estimator":
			e, err := stats.ParseEstimator(val)
			if err != nil {
				return err
			}
			cfg.Estimator = string(e)
		case "alternative":
			a, err := stats.ParseAlternative(val)
			if err != nil {
				return err
			}
			cfg.Alternative = string(a)
		case "results_dir":
			cfg.ResultsDir = val
		case "log_level":
			switch strings.ToLower(val) {
			case "debug", "info", "warn", "error":
				cfg.LogLevel = strings.ToLower(val)
			default:
				return fmt.Errorf("invalid log_level: %s (use debug, info, warn or error)", val)
			}
		default:
			return fmt.Errorf("unknown key: %s", key)
		}
		if err := cfg.Validate(); err != nil {
			return err
		}
		if err := cfgpkg.Save(cfg, cfgFile); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Saved config")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
}
