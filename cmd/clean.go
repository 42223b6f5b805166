package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/solarscope-cli/internal/analysis"
)

var (
	cleanOutput string
	cleanReport string
)

var cleanCmd = &cobra.Command{
	Use:   "clean <file>",
	Short: "Impute gaps, drop empty comments and remove IQR outlier rows",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		t, err := loadTable(args[0])
		if err != nil {
			return err
		}
		res, err := analysis.Clean(t)
		if err != nil {
			return err
		}
		for _, w := range res.Warnings {
			fmt.Fprintf(os.Stderr, "⚠ %s\n", w)
		}
		body, err := csvBytes(res.Table)
		if err != nil {
			return err
		}
		if err := writeOutput(cleanOutput, body); err != nil {
			return err
		}
		summary := res.Summary()
		if cleanReport != "" {
			if err := writeOutput(cleanReport, []byte(summary)); err != nil {
				return err
			}
		}
		if cleanOutput != "" {
			fmt.Printf("✓ Wrote cleaned data to %s (%d -> %d rows)\n", cleanOutput, res.RowsIn, res.RowsOut)
		} else if cleanReport == "" {
			fmt.Fprint(os.Stderr, summary)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(cleanCmd)
	cleanCmd.Flags().StringVarP(&cleanOutput, "output", "o", "", "CSV output path (default stdout)")
	cleanCmd.Flags().StringVar(&cleanReport, "report", "", "optional path for the cleaning report")
	addInputFlags(cleanCmd)
}
