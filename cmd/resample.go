package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/solarscope-cli/internal/analysis"
)

var (
	resTimeColumn string
	resColumns    []string
	resOutput     string
)

var resampleCmd = &cobra.Command{
	Use:   "resample <file>",
	Short: "Average numeric columns per calendar day",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		t, err := loadTable(args[0])
		if err != nil {
			return err
		}
		tc := resTimeColumn
		if tc == "" {
			tc = settings().TimeColumn
		}
		daily, err := analysis.ResampleDaily(t, tc, resColumns...)
		if err != nil {
			return err
		}
		body, err := csvBytes(daily)
		if err != nil {
			return err
		}
		if err := writeOutput(resOutput, body); err != nil {
			return err
		}
		if resOutput != "" {
			fmt.Printf("✓ Wrote %d daily rows to %s\n", daily.Len(), resOutput)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(resampleCmd)
	resampleCmd.Flags().StringVar(&resTimeColumn, "time-column", "", "timestamp column (default config time_column)")
	resampleCmd.Flags().StringSliceVar(&resColumns, "columns", nil, "columns to average (default every numeric column)")
	resampleCmd.Flags().StringVarP(&resOutput, "output", "o", "", "CSV output path (default stdout)")
	addInputFlags(resampleCmd)
}
