package cmd

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	cfgpkg "github.com/KaramelBytes/solarscope-cli/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "View or set SolarScope configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show effective configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		if cfg == nil {
			fmt.Println("No config loaded")
			return nil
		}
		fmt.Printf("studies_dir: %s\n", cfg.StudiesDir)
		fmt.Printf("corr_columns: %s\n", strings.Join(cfg.CorrColumns, ","))
		fmt.Printf("zscore_columns: %s\n", strings.Join(cfg.ZScoreColumns, ","))
		fmt.Printf("zscore_threshold: %.3f\n", cfg.ZScoreThreshold)
		fmt.Printf("time_column: %s\n", cfg.TimeColumn)
		fmt.Printf("histogram_bins: %d\n", cfg.HistogramBins)
		fmt.Printf("chart_width: %d\n", cfg.ChartWidth)
		fmt.Printf("chart_height: %d\n", cfg.ChartHeight)
		if cfg.Delimiter != "" {
			fmt.Printf("delimiter: %q\n", cfg.Delimiter)
		}
		if cfg.MaxRows > 0 {
			fmt.Printf("max_rows: %d\n", cfg.MaxRows)
		}
		fmt.Printf("log_level: %s\n", cfg.LogLevel)
		if len(cfg.Sites) > 0 {
			names := make([]string, 0, len(cfg.Sites))
			for n := range cfg.Sites {
				names = append(names, n)
			}
			sort.Strings(names)
			fmt.Println("sites:")
			for _, n := range names {
				fmt.Printf("  %s: %s\n", n, cfg.Sites[n])
			}
		}
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a config value and save to disk",
	Long: `Set a config value and save to disk.

Keys: ` + strings.Join(cfgpkg.Keys(), ", ") + `.
Use sites.<name> <path> to register a site for compare; an empty path removes it.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, val := args[0], args[1]
		if cfg == nil {
			c, err := cfgpkg.Load(cfgFile)
			if err != nil {
				return err
			}
			cfg = c
		}
		if err := applySetting(cfg, key, val); err != nil {
			return err
		}
		if err := cfgpkg.Save(cfg, cfgFile); err != nil {
			return err
		}
		fmt.Println("Saved config")
		return nil
	},
}

func applySetting(c *cfgpkg.Global, key, val string) error {
	if name, ok := strings.CutPrefix(key, "sites."); ok {
		if name == "" {
			return fmt.Errorf("site name is required: sites.<name>")
		}
		if c.Sites == nil {
			c.Sites = map[string]string{}
		}
		if val == "" {
			delete(c.Sites, name)
		} else {
			c.Sites[name] = val
		}
		return nil
	}
	positive := func() (int, error) {
		i, err := strconv.Atoi(val)
		if err != nil || i <= 0 {
			return 0, fmt.Errorf("invalid positive int for %s: %v", key, val)
		}
		return i, nil
	}
	switch key {
	case "studies_dir":
		c.StudiesDir = val
	case "corr_columns":
		c.CorrColumns = splitList(val)
	case "zscore_columns":
		c.ZScoreColumns = splitList(val)
	case "zscore_threshold":
		f, err := strconv.ParseFloat(val, 64)
		if err != nil || f <= 0 {
			return fmt.Errorf("invalid float for zscore_threshold: %v", val)
		}
		c.ZScoreThreshold = f
	case "time_column":
		c.TimeColumn = val
	case "histogram_bins":
		i, err := positive()
		if err != nil {
			return err
		}
		c.HistogramBins = i
	case "chart_width":
		i, err := positive()
		if err != nil {
			return err
		}
		c.ChartWidth = i
	case "chart_height":
		i, err := positive()
		if err != nil {
			return err
		}
		c.ChartHeight = i
	case "delimiter":
		if _, err := parseDelimiter(val); err != nil {
			return err
		}
		c.Delimiter = val
	case "max_rows":
		i, err := strconv.Atoi(val)
		if err != nil || i < 0 {
			return fmt.Errorf("invalid int for max_rows: %v", val)
		}
		c.MaxRows = i
	case "log_level":
		if _, err := newLogger(val); err != nil {
			return err
		}
		c.LogLevel = val
	default:
		return fmt.Errorf("unknown key: %s", key)
	}
	return nil
}

// splitList splits a comma-separated value, dropping blanks.
func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
}
