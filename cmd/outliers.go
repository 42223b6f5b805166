package cmd

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/KaramelBytes/solarscope-cli/internal/analysis"
)

var (
	outFormat  string
	outOutput  string
	outMaxRows int
)

var outliersCmd = &cobra.Command{
	Use:   "outliers <file>",
	Short: "List IQR outliers and missing values per column",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		t, err := loadTable(args[0])
		if err != nil {
			return err
		}
		report, err := analysis.OutlierReport(t)
		if err != nil {
			return err
		}
		missing, err := analysis.CheckMissingValues(t)
		if err != nil {
			return err
		}
		var body []byte
		switch outFormat {
		case "", "markdown", "md":
			body = []byte(outliersMarkdown(report, missing, t.Len(), outMaxRows))
		case "yaml", "yml":
			body, err = yaml.Marshal(struct {
				Outliers []analysis.ColumnOutliers `yaml:"outliers"`
				Missing  map[string]int            `yaml:"missing"`
			}{report, missing})
			if err != nil {
				return fmt.Errorf("marshal yaml: %w", err)
			}
		default:
			return fmt.Errorf("unsupported --format: %s (use markdown|yaml)", outFormat)
		}
		if err := writeOutput(outOutput, body); err != nil {
			return err
		}
		if outOutput != "" {
			fmt.Printf("✓ Wrote outlier report to %s\n", outOutput)
		}
		return nil
	},
}

func outliersMarkdown(report []analysis.ColumnOutliers, missing map[string]int, rows, limit int) string {
	var b strings.Builder
	b.WriteString("[OUTLIERS (IQR)]\n")
	b.WriteString("| column | lower | upper | outliers |\n|---|---|---|---|\n")
	for _, co := range report {
		fmt.Fprintf(&b, "| %s | %.4g | %.4g | %d |\n", co.Column, co.Fence.Lower, co.Fence.Upper, len(co.Rows))
	}
	for _, co := range report {
		if len(co.Rows) == 0 {
			continue
		}
		shown := co.Rows
		if limit > 0 && len(shown) > limit {
			shown = shown[:limit]
		}
		idx := make([]string, len(shown))
		for i, r := range shown {
			idx[i] = fmt.Sprint(r)
		}
		more := ""
		if len(shown) < len(co.Rows) {
			more = fmt.Sprintf(" (+%d more)", len(co.Rows)-len(shown))
		}
		fmt.Fprintf(&b, "- %s rows: %s%s\n", co.Column, strings.Join(idx, ", "), more)
	}

	b.WriteString("\n[MISSING VALUES]\n")
	names := make([]string, 0, len(missing))
	for n, c := range missing {
		if c > 0 {
			names = append(names, n)
		}
	}
	if len(names) == 0 {
		b.WriteString("(none)\n")
		return b.String()
	}
	sort.Strings(names)
	for _, n := range names {
		fmt.Fprintf(&b, "- %s: %d (%.1f%%)\n", n, missing[n], 100*float64(missing[n])/float64(max(rows, 1)))
	}
	return b.String()
}

func init() {
	rootCmd.AddCommand(outliersCmd)
	outliersCmd.Flags().StringVarP(&outFormat, "format", "f", "markdown", "output format: markdown|yaml")
	outliersCmd.Flags().StringVarP(&outOutput, "output", "o", "", "optional path to write the report")
	outliersCmd.Flags().IntVar(&outMaxRows, "list", 20, "row indices listed per column (0 = all)")
	addInputFlags(outliersCmd)
}
