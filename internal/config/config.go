package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/KaramelBytes/statloom-cli/internal/stats"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// KrakenFiles names the two reports of a before/after comparison.
type KrakenFiles struct {
	Before string `mapstructure:"before_measurement_file" yaml:"before_measurement_file"`
	After  string `mapstructure:"after_measurement_file" yaml:"after_measurement_file"`
}

// Global configuration structure.
type Global struct {
	KrakenFiles     KrakenFiles `mapstructure:"kraken_files" yaml:"kraken_files"`
	SelectedSpecies []string    `mapstructure:"selected_species" yaml:"selected_species"`
	TopNSpecies     int         `mapstructure:"top_n_species" yaml:"top_n_species"`

	// Test defaults
	Alpha       float64 `mapstructure:"alpha" yaml:"alpha"`
	Estimator   string  `mapstructure:"estimator" yaml:"estimator"`
	Alternative string  `mapstructure:"alternative" yaml:"alternative"`

	ResultsDir string `mapstructure:"results_dir" yaml:"results_dir"`
	LogLevel   string `mapstructure:"log_level" yaml:"log_level"`

	// Not serialized: the file the configuration was read from, if any.
	source string
}

// Source returns the config file that was read, or "" if only defaults and env applied.
func (g *Global) Source() string { return g.source }

const appDir = ".statloom"

// Save writes c as YAML. The target is cfgFile when given, otherwise the file
// c was loaded from, otherwise ~/.statloom/config.yaml. On success c records
// the target as its source.
func Save(c *Global, cfgFile string) error {
	path, err := c.savePath(cfgFile)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("mkdir config dir: %w", err)
	}
	b, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal yaml: %w", err)
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return fmt.Errorf("write config %s: %w", path, err)
	}
	c.source = path
	return nil
}

func (g *Global) savePath(cfgFile string) (string, error) {
	switch {
	case cfgFile != "":
		return cfgFile, nil
	case g.source != "":
		return g.source, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home dir: %w", err)
	}
	return filepath.Join(home, appDir, "config.yaml"), nil
}

// Load loads configuration from file, env, and defaults.
// Precedence: env > config file > defaults; command flags are applied by the caller.
// Without cfgFile, ./config.yaml is tried before ~/.statloom/config.yaml.
func Load(cfgFile string) (*Global, error) {
	v := viper.New()
	v.SetEnvPrefix("STATLOOM")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("kraken_files.before_measurement_file", "")
	v.SetDefault("kraken_files.after_measurement_file", "")
	v.SetDefault("selected_species", []string{})
	v.SetDefault("top_n_species", 0)
	v.SetDefault("alpha", 0.05)
	v.SetDefault("estimator", string(stats.EstimatorRobust))
	v.SetDefault("alternative", string(stats.TwoSided))
	v.SetDefault("results_dir", "")
	v.SetDefault("log_level", "info")

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", cfgFile, err)
		}
	} else {
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, appDir))
		}
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			var nf viper.ConfigFileNotFoundError
			if !errors.As(err, &nf) {
				return nil, fmt.Errorf("read config: %w", err)
			}
		}
	}

	var c Global
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if src := v.ConfigFileUsed(); src != "" {
		if abs, err := filepath.Abs(src); err == nil {
			src = abs
		}
		c.source = src
	}
	if c.ResultsDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("resolve home dir: %w", err)
		}
		c.ResultsDir = filepath.Join(home, appDir, "results")
	}
	c.ResultsDir = expandHome(c.ResultsDir)
	return &c, nil
}

// Validate checks values that commands rely on.
func (g *Global) Validate() error {
	if !(g.Alpha > 0 && g.Alpha < 1) {
		return fmt.Errorf("alpha: %w", stats.ErrInvalidAlpha)
	}
	if _, err := stats.ParseEstimator(g.Estimator); err != nil {
		return fmt.Errorf("estimator: %w", err)
	}
	if _, err := stats.ParseAlternative(g.Alternative); err != nil {
		return fmt.Errorf("alternative: %w", err)
	}
	if g.TopNSpecies < 0 {
		return fmt.Errorf("top_n_species must be >= 0, got %d", g.TopNSpecies)
	}
	return nil
}

func expandHome(dir string) string {
	if !strings.HasPrefix(dir, "~") {
		return filepath.Clean(dir)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Clean(dir)
	}
	rest := strings.TrimLeft(strings.TrimPrefix(dir, "~"), `/\`)
	return filepath.Join(home, rest)
}
