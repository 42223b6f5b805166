package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	cfgpkg "github.com/KaramelBytes/solarscope-cli/internal/config"
)

var (
	// Global flags
	cfgFile string
	debug   bool

	// Loaded configuration
	cfg *cfgpkg.Global
	// Diagnostics; user-facing progress goes to stdout.
	logger = zap.NewNop()
)

var rootCmd = &cobra.Command{
	Use:   "solarscope",
	Short: "SolarScope CLI: explore and compare solar irradiance sensor data",
	Long: `SolarScope loads solar-irradiance sensor exports (CSV/TSV/XLSX), computes
descriptive statistics, flags and removes anomalous readings, compares sites
and renders the standard exploratory charts as PNG files.`,
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
	cobra.OnInitialize(loadConfig)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ~/.solarscope/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug output")
}

func loadConfig() {
	c, err := cfgpkg.Load(cfgFile)
	if err != nil {
		// Non-fatal: allow running commands that don't need config
		fmt.Fprintf(os.Stderr, "⚠ Warning: failed to load config: %v\n", err)
		c = nil
	}
	cfg = c
	level := "warn"
	if cfg != nil && cfg.LogLevel != "" {
		level = cfg.LogLevel
	}
	if debug {
		level = "debug"
	}
	l, err := newLogger(level)
	if err != nil {
		fmt.Fprintf(os.Stderr, "⚠ Warning: %v\n", err)
		return
	}
	logger = l
}

// newLogger builds a console logger on stderr. "off" disables logging.
func newLogger(level string) (*zap.Logger, error) {
	if level == "off" {
		return zap.NewNop(), nil
	}
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("invalid log_level %q: %w", level, err)
	}
	zc := zap.NewDevelopmentConfig()
	zc.Level = zap.NewAtomicLevelAt(lvl)
	if lvl > zapcore.DebugLevel {
		zc.DisableStacktrace = true
		zc.DisableCaller = true
	}
	return zc.Build()
}

// settings returns the loaded configuration, falling back to defaults when
// loading failed.
func settings() *cfgpkg.Global {
	if cfg != nil {
		return cfg
	}
	c, err := cfgpkg.Load(cfgFile)
	if err != nil {
		return &cfgpkg.Global{Sites: map[string]string{}}
	}
	cfg = c
	return cfg
}
