package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/solarscope-cli/internal/analysis"
	cfgpkg "github.com/KaramelBytes/solarscope-cli/internal/config"
)

var (
	zColumns   []string
	zThreshold float64
	zOutput    string
	zOnly      bool
)

var zscoreCmd = &cobra.Command{
	Use:   "zscore <file>",
	Short: "Add per-column Z-scores and an outlier flag, written as CSV",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		t, err := loadTable(args[0])
		if err != nil {
			return err
		}
		c := settings()
		cols := zColumns
		if len(cols) == 0 {
			cols = c.ZScoreColumns
		}
		thr, err := zscoreThreshold(c, cmd.Flags().Changed("threshold"), zThreshold)
		if err != nil {
			return err
		}
		out, err := analysis.ZScores(t, cols, thr)
		if err != nil {
			return err
		}
		n := analysis.CountOutliers(out)
		if zOnly {
			flag, _ := out.Col(analysis.OutlierColumn)
			keep := make([]bool, out.Len())
			for i := range keep {
				keep[i] = !flag.IsNull(i) && flag.Nums[i] == 1
			}
			out = out.Filter(keep)
		}
		body, err := csvBytes(out)
		if err != nil {
			return err
		}
		if err := writeOutput(zOutput, body); err != nil {
			return err
		}
		// stdout may carry the CSV itself
		fmt.Fprintf(os.Stderr, "✓ %d of %d rows exceed |z| > %g\n", n, t.Len(), thr)
		return nil
	},
}

// zscoreThreshold picks the flag value when it was given, else the
// configured one. Zero is honored from the flag; in the config it means unset.
func zscoreThreshold(c *cfgpkg.Global, flagSet bool, flag float64) (float64, error) {
	if flagSet {
		if flag < 0 {
			return 0, fmt.Errorf("--threshold must not be negative: %g", flag)
		}
		return flag, nil
	}
	switch thr := c.ZScoreThreshold; {
	case thr < 0:
		return 0, fmt.Errorf("zscore_threshold must not be negative: %g", thr)
	case thr == 0:
		return analysis.DefaultZThreshold, nil
	default:
		return thr, nil
	}
}

func init() {
	rootCmd.AddCommand(zscoreCmd)
	zscoreCmd.Flags().StringSliceVar(&zColumns, "columns", nil, "columns to score (default config zscore_columns)")
	zscoreCmd.Flags().Float64Var(&zThreshold, "threshold", analysis.DefaultZThreshold, "|z| above which a row is flagged")
	zscoreCmd.Flags().StringVarP(&zOutput, "output", "o", "", "CSV output path (default stdout)")
	zscoreCmd.Flags().BoolVar(&zOnly, "only-outliers", false, "write only flagged rows")
	addInputFlags(zscoreCmd)
}
