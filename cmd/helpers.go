package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	cfgpkg "github.com/KaramelBytes/statloom-cli/internal/config"
	"github.com/KaramelBytes/statloom-cli/internal/results"
	"github.com/KaramelBytes/statloom-cli/internal/sample"
	"github.com/KaramelBytes/statloom-cli/internal/stats"
	"github.com/spf13/cobra"
)

// Sample-input flags shared by qq, anderson and ranksum.
var (
	sampleColumn    string
	sampleDelimiter string
	sampleSheet     string
	saveRun         bool
)

func addSampleFlags(c *cobra.Command) {
	c.Flags().StringVar(&sampleColumn, "column", "", "CSV/TSV/XLSX column to read (header name or 1-based index)")
	c.Flags().StringVar(&sampleDelimiter, "delimiter", "", "CSV/TSV delimiter: ',', ';', or 'tab' (default by extension)")
	c.Flags().StringVar(&sampleSheet, "sheet", "", "XLSX sheet name or 1-based index (default first sheet)")
}

func addSaveFlag(c *cobra.Command) {
	c.Flags().BoolVar(&saveRun, "save", false, "save the result to the results store")
}

// settings returns the loaded configuration, or built-in defaults when none could be loaded.
func settings() *cfgpkg.Global {
	if cfg != nil {
		return cfg
	}
	home, _ := os.UserHomeDir()
	return &cfgpkg.Global{
		Alpha:       0.05,
		Estimator:   string(stats.EstimatorRobust),
		Alternative: string(stats.TwoSided),
		ResultsDir:  filepath.Join(home, ".statloom", "results"),
		LogLevel:    "info",
	}
}

// alphaFor returns the --alpha flag when set, otherwise the configured alpha.
func alphaFor(c *cobra.Command, flag float64) float64 {
	if c.Flags().Changed("alpha") {
		return flag
	}
	return settings().Alpha
}

func sampleOptions() (sample.Options, error) {
	opt := sample.Options{Column: strings.TrimSpace(sampleColumn), Sheet: strings.TrimSpace(sampleSheet)}
	switch strings.ToLower(sampleDelimiter) {
	case "":
	case ",", "comma":
		opt.Delimiter = ','
	case "\t", "tab":
		opt.Delimiter = '\t'
	case ";":
		opt.Delimiter = ';'
	default:
		return opt, fmt.Errorf("unsupported --delimiter: %s", sampleDelimiter)
	}
	return opt, nil
}

func loadSample(path string) ([]float64, error) {
	opt, err := sampleOptions()
	if err != nil {
		return nil, err
	}
	xs, err := sample.Load(path, opt)
	if err != nil {
		return nil, err
	}
	slog.Debug("sample loaded", "file", path, "n", len(xs))
	return xs, nil
}

// saveResult stores v when --save was given and reports the new id.
func saveResult(c *cobra.Command, kind string, inputs map[string]string, v any) error {
	if !saveRun {
		return nil
	}
	store := results.NewStore(settings().ResultsDir)
	rec, err := store.Save(kind, inputs, v)
	if err != nil {
		return fmt.Errorf("save result: %w", err)
	}
	slog.Debug("result saved", "dir", store.Dir, "id", rec.ID)
	fmt.Fprintf(c.OutOrStdout(), "✓ Saved result %s\n", rec.ID)
	return nil
}
