package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Global configuration structure.
type Global struct {
	StudiesDir string `mapstructure:"studies_dir" yaml:"studies_dir"`
	// Sites maps a site name to its sensor file, used by compare when no
	// sites are given on the command line.
	Sites map[string]string `mapstructure:"sites" yaml:"sites"`

	CorrColumns     []string `mapstructure:"corr_columns" yaml:"corr_columns"`
	ZScoreColumns   []string `mapstructure:"zscore_columns" yaml:"zscore_columns"`
	ZScoreThreshold float64  `mapstructure:"zscore_threshold" yaml:"zscore_threshold"`
	TimeColumn      string   `mapstructure:"time_column" yaml:"time_column"`

	// Charts
	HistogramBins int `mapstructure:"histogram_bins" yaml:"histogram_bins"`
	ChartWidth    int `mapstructure:"chart_width" yaml:"chart_width"`
	ChartHeight   int `mapstructure:"chart_height" yaml:"chart_height"`

	// Input parsing
	Delimiter string `mapstructure:"delimiter" yaml:"delimiter"`
	MaxRows   int    `mapstructure:"max_rows" yaml:"max_rows"`

	LogLevel string `mapstructure:"log_level" yaml:"log_level"`
}

// Keys lists the scalar and list configuration keys, sorted.
func Keys() []string {
	return []string{
		"chart_height", "chart_width", "corr_columns", "delimiter",
		"histogram_bins", "log_level", "max_rows", "studies_dir",
		"time_column", "zscore_columns", "zscore_threshold",
	}
}

func homeDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home dir: %w", err)
	}
	return filepath.Join(home, ".solarscope"), nil
}

// Save writes the given configuration to the cfgFile path. If cfgFile is empty,
// it writes to ~/.solarscope/config.yaml, creating the directory if necessary.
func Save(c *Global, cfgFile string) error {
	path := cfgFile
	if path == "" {
		dir, err := homeDir()
		if err != nil {
			return err
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("mkdir config dir: %w", err)
		}
		path = filepath.Join(dir, "config.yaml")
	}
	b, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal yaml: %w", err)
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// Load loads configuration from file, env, and defaults.
// Precedence: flags (cfgFile) > env > config file > defaults.
func Load(cfgFile string) (*Global, error) {
	v := viper.New()
	v.SetEnvPrefix("SOLARSCOPE")
	v.AutomaticEnv()

	v.SetDefault("corr_columns", []string{"GHI", "DNI", "DHI", "TModA", "TModB"})
	v.SetDefault("zscore_columns", []string{"GHI", "DNI", "DHI", "Tamb"})
	v.SetDefault("zscore_threshold", 3.0)
	v.SetDefault("time_column", "Timestamp")
	v.SetDefault("histogram_bins", 50)
	v.SetDefault("chart_width", 1200)
	v.SetDefault("chart_height", 800)
	v.SetDefault("delimiter", "")
	v.SetDefault("max_rows", 0)
	v.SetDefault("log_level", "warn")

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		dir, err := homeDir()
		if err != nil {
			return nil, err
		}
		_ = os.MkdirAll(dir, 0o755)
		v.AddConfigPath(dir)
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}
	// optional read
	_ = v.ReadInConfig()

	var c Global
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if c.StudiesDir == "" {
		dir, err := homeDir()
		if err != nil {
			return nil, err
		}
		c.StudiesDir = filepath.Join(dir, "studies")
	}
	if c.Sites == nil {
		c.Sites = map[string]string{}
	}
	return &c, nil
}
