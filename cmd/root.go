package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	cfgpkg "github.com/KaramelBytes/statloom-cli/internal/config"
	"github.com/lmittmann/tint"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
)

var (
	// Global flags
	cfgFile string
	debug   bool
	noColor bool

	// Loaded configuration
	cfg *cfgpkg.Global

	logLevel = new(slog.LevelVar)
)

var rootCmd = &cobra.Command{
	Use:   "statloom",
	Short: "StatLoom CLI: Kraken report comparison and classical sample tests",
	Long: `StatLoom compares two Kraken taxonomic-abundance reports as before/after pairs
and runs normality diagnostics (Q-Q, Anderson-Darling) and the Mann-Whitney U test
on numeric samples.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute is the entry point called by main.main()
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "✗ Error:", err)
		os.Exit(1)
	}
}

func init() {
	// Initialize logging and configuration before executing commands
	cobra.OnInitialize(loadConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./config.yaml, then ~/.statloom/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug output")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored log output")
}

func setupLogger() {
	logLevel.Set(slog.LevelInfo)
	if debug {
		logLevel.Set(slog.LevelDebug)
	}
	w := os.Stderr
	color := !noColor && (isatty.IsTerminal(w.Fd()) || isatty.IsCygwinTerminal(w.Fd()))
	slog.SetDefault(slog.New(tint.NewHandler(w, &tint.Options{
		Level:      logLevel,
		TimeFormat: time.Kitchen,
		NoColor:    !color,
	})))
}

func loadConfig() {
	setupLogger()

	c, err := cfgpkg.Load(cfgFile)
	if err != nil {
		// Non-fatal: commands fall back to built-in defaults
		slog.Warn("failed to load config", "err", err)
		cfg = nil
		return
	}
	cfg = c
	if src := cfg.Source(); src != "" {
		slog.Debug("config loaded", "file", src)
	}

	if !debug && cfg.LogLevel != "" {
		var lvl slog.Level
		if err := lvl.UnmarshalText([]byte(strings.TrimSpace(cfg.LogLevel))); err != nil {
			slog.Warn("ignoring log_level", "value", cfg.LogLevel, "err", err)
		} else {
			logLevel.Set(lvl)
		}
	}
	if err := cfg.Validate(); err != nil {
		slog.Warn("config has invalid values", "err", err)
	}
}
