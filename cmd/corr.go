package cmd

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"math"
	"strconv"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/KaramelBytes/solarscope-cli/internal/analysis"
	"github.com/KaramelBytes/solarscope-cli/internal/charts"
)

var (
	corrColumns []string
	corrFormat  string
	corrOutput  string
	corrHeatmap string
	corrPair    []string
)

var corrCmd = &cobra.Command{
	Use:   "corr <file>",
	Short: "Pearson correlation matrix of the irradiance and module temperature fields",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		t, err := loadTable(args[0])
		if err != nil {
			return err
		}
		cols := corrColumns
		if len(cols) == 0 {
			cols = settings().CorrColumns
		}
		m, err := analysis.CorrelationMatrix(t, cols...)
		if err != nil {
			return err
		}
		if len(corrPair) > 0 {
			return printPair(m, corrPair)
		}
		body, err := encodeCorr(m, corrFormat)
		if err != nil {
			return err
		}
		if err := writeOutput(corrOutput, body); err != nil {
			return err
		}
		if corrOutput != "" {
			fmt.Printf("✓ Wrote correlations to %s\n", corrOutput)
		}
		if corrHeatmap != "" {
			f, err := charts.Heatmap(m, chartOptions())
			if err != nil {
				return err
			}
			if err := saveFigure(f, corrHeatmap); err != nil {
				return err
			}
			fmt.Printf("✓ Wrote heatmap to %s\n", corrHeatmap)
		}
		return nil
	},
}

// printPair prints the single coefficient between two matrix columns.
func printPair(m *analysis.CorrMatrix, pair []string) error {
	if len(pair) != 2 {
		return fmt.Errorf("--pair takes exactly two columns, got %d", len(pair))
	}
	r, ok := m.At(pair[0], pair[1])
	if !ok {
		return fmt.Errorf("--pair %s,%s: both columns must be correlated (see --columns)", pair[0], pair[1])
	}
	if math.IsNaN(r) {
		fmt.Printf("%s ~ %s: undefined (no variance)\n", pair[0], pair[1])
		return nil
	}
	fmt.Printf("%s ~ %s: %.4f\n", pair[0], pair[1], r)
	return nil
}

func encodeCorr(m *analysis.CorrMatrix, format string) ([]byte, error) {
	switch format {
	case "", "markdown", "md":
		return []byte(m.Markdown()), nil
	case "yaml", "yml":
		b, err := yaml.Marshal(m)
		if err != nil {
			return nil, fmt.Errorf("marshal yaml: %w", err)
		}
		return b, nil
	case "csv":
		return corrCSV(m)
	}
	return nil, fmt.Errorf("unsupported --format: %s (use markdown|csv|yaml)", format)
}

// corrCSV writes the matrix with a header row and the column name leading
// each row. Undefined coefficients are empty cells.
func corrCSV(m *analysis.CorrMatrix) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(append([]string{""}, m.Columns...)); err != nil {
		return nil, err
	}
	for i, name := range m.Columns {
		row := []string{name}
		for _, v := range m.Values[i] {
			cell := ""
			if !math.IsNaN(v) {
				cell = strconv.FormatFloat(v, 'f', 6, 64)
			}
			row = append(row, cell)
		}
		if err := w.Write(row); err != nil {
			return nil, err
		}
	}
	w.Flush()
	return buf.Bytes(), w.Error()
}

func init() {
	rootCmd.AddCommand(corrCmd)
	corrCmd.Flags().StringSliceVar(&corrColumns, "columns", nil, "columns to correlate (default config corr_columns)")
	corrCmd.Flags().StringVarP(&corrFormat, "format", "f", "markdown", "output format: markdown|csv|yaml")
	corrCmd.Flags().StringVarP(&corrOutput, "output", "o", "", "optional path to write the matrix")
	corrCmd.Flags().StringVar(&corrHeatmap, "heatmap", "", "optional PNG path for the annotated heatmap")
	corrCmd.Flags().StringSliceVar(&corrPair, "pair", nil, "print only the coefficient of two columns, e.g. GHI,DNI")
	addInputFlags(corrCmd)
}
