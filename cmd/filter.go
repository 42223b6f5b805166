package cmd

import (
	"fmt"
	"math"
	"os"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/solarscope-cli/internal/analysis"
)

var (
	filColumns []string
	filColumn  string
	filMin     float64
	filMax     float64
	filOutput  string
)

var filterCmd = &cobra.Command{
	Use:   "filter <file>",
	Short: "Select columns and keep rows whose value lies in a range",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		t, err := loadTable(args[0])
		if err != nil {
			return err
		}
		rows := t.Len()
		if filColumn != "" {
			if first, last, ok, err := analysis.Range(t, filColumn); err != nil {
				return err
			} else if ok {
				logger.Sugar().Debugf("%s spans [%g, %g]", filColumn, first, last)
			}
			lo, hi := math.NaN(), math.NaN()
			if cmd.Flags().Changed("min") {
				lo = filMin
			}
			if cmd.Flags().Changed("max") {
				hi = filMax
			}
			if t, err = analysis.FilterRange(t, filColumn, lo, hi); err != nil {
				return err
			}
		} else if cmd.Flags().Changed("min") || cmd.Flags().Changed("max") {
			return fmt.Errorf("--min/--max require --column")
		}
		if len(filColumns) > 0 {
			for _, name := range filColumns {
				if _, ok := t.Col(name); !ok {
					return &analysis.ColumnError{Column: name, Err: analysis.ErrColumnNotFound}
				}
			}
			sel, err := t.Select(filColumns...)
			if err != nil {
				return err
			}
			t = sel
		}
		body, err := csvBytes(t)
		if err != nil {
			return err
		}
		if err := writeOutput(filOutput, body); err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "✓ Kept %d of %d rows\n", t.Len(), rows)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(filterCmd)
	filterCmd.Flags().StringSliceVar(&filColumns, "columns", nil, "columns to keep (default all)")
	filterCmd.Flags().StringVar(&filColumn, "column", "", "numeric column for the range filter")
	filterCmd.Flags().Float64Var(&filMin, "min", 0, "lower bound, inclusive")
	filterCmd.Flags().Float64Var(&filMax, "max", 0, "upper bound, inclusive")
	filterCmd.Flags().StringVarP(&filOutput, "output", "o", "", "CSV output path (default stdout)")
	addInputFlags(filterCmd)
}
