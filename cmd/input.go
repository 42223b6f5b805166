package cmd

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/KaramelBytes/solarscope-cli/internal/charts"
	"github.com/KaramelBytes/solarscope-cli/internal/dataset"
	"github.com/KaramelBytes/solarscope-cli/internal/table"
	"github.com/KaramelBytes/solarscope-cli/internal/utils"
)

// Input parsing flags shared by every command that reads sensor files.
var (
	inDelimiter string
	inDecimal   string
	inThousands string
	inMaxRows   int
	inSheet     string
	inRawUnits  bool
)

func addInputFlags(c *cobra.Command) {
	c.Flags().StringVar(&inDelimiter, "delimiter", "", "CSV delimiter: ',' | ';' | 'tab' (default from config or file extension)")
	c.Flags().StringVar(&inDecimal, "decimal", "", "decimal separator for numbers: '.'|'comma' (auto-detect if omitted)")
	c.Flags().StringVar(&inThousands, "thousands", "", "thousands separator for numbers: ','|'.'|'space' (auto-detect if omitted)")
	c.Flags().IntVar(&inMaxRows, "max-rows", 0, "maximum rows to read (0 = config max_rows, unlimited by default)")
	c.Flags().StringVar(&inSheet, "sheet", "", "XLSX: sheet name (default first sheet)")
	c.Flags().BoolVar(&inRawUnits, "raw-units", false, "keep values in their source units")
}

func parseDelimiter(s string) (rune, error) {
	switch s {
	case "":
		return 0, nil
	case ",":
		return ',', nil
	case "\t", "tab":
		return '\t', nil
	case ";":
		return ';', nil
	}
	return 0, fmt.Errorf("unsupported --delimiter: %s", s)
}

// datasetOptions merges config defaults with the input flags.
func datasetOptions() (dataset.Options, error) {
	c := settings()
	opt := dataset.DefaultOptions()
	opt.MaxRows = c.MaxRows
	if inMaxRows > 0 {
		opt.MaxRows = inMaxRows
	}
	delim := c.Delimiter
	if inDelimiter != "" {
		delim = inDelimiter
	}
	d, err := parseDelimiter(delim)
	if err != nil {
		return opt, err
	}
	opt.Delimiter = d
	switch strings.ToLower(strings.TrimSpace(inDecimal)) {
	case ",", "comma":
		opt.DecimalSeparator = ','
	case ".", "dot":
		opt.DecimalSeparator = '.'
	case "":
	default:
		return opt, fmt.Errorf("unsupported --decimal: %s (use '.'|'comma')", inDecimal)
	}
	switch strings.ToLower(strings.TrimSpace(inThousands)) {
	case ",":
		opt.ThousandsSeparator = ','
	case ".":
		opt.ThousandsSeparator = '.'
	case "space", " ":
		opt.ThousandsSeparator = ' '
	case "":
	default:
		return opt, fmt.Errorf("unsupported --thousands: %s (use ','|'.'|'space')", inThousands)
	}
	opt.Sheet = inSheet
	if inRawUnits {
		opt.UnitNormalize = false
	}
	return opt, nil
}

func newCache() (*dataset.Cache, error) {
	opt, err := datasetOptions()
	if err != nil {
		return nil, err
	}
	return dataset.NewCache(opt, logger), nil
}

// loadTable reads one sensor file with the current input options.
func loadTable(path string) (*table.Table, error) {
	c, err := newCache()
	if err != nil {
		return nil, err
	}
	t, err := c.Get(path)
	if err != nil {
		return nil, err
	}
	logger.Debug("loaded dataset", zap.String("path", path), zap.Int("rows", t.Len()), zap.Int("cols", len(t.Columns)))
	return t, nil
}

func chartOptions() charts.Options {
	c := settings()
	return charts.Options{
		Width:      c.ChartWidth,
		Height:     c.ChartHeight,
		Bins:       c.HistogramBins,
		TimeColumn: c.TimeColumn,
	}
}

// writeOutput writes data to path, or to stdout when path is empty or "-".
func writeOutput(path string, data []byte) error {
	if path == "" || path == "-" {
		_, err := os.Stdout.Write(data)
		return err
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := utils.EnsureDir(dir); err != nil {
			return err
		}
	}
	if err := utils.SafeWriteFile(path, data); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	return nil
}

// saveFigure renders f as PNG into path.
func saveFigure(f charts.Figure, path string) error {
	var buf bytes.Buffer
	if err := f.Render(&buf); err != nil {
		return fmt.Errorf("render %s: %w", filepath.Base(path), err)
	}
	return writeOutput(path, buf.Bytes())
}

func csvBytes(t *table.Table) ([]byte, error) {
	var buf bytes.Buffer
	if err := dataset.WriteCSV(&buf, t); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// baseName strips directory and extension: data/benin.csv -> benin.
func baseName(path string) string {
	b := filepath.Base(path)
	return strings.TrimSuffix(b, filepath.Ext(b))
}

// status prints a progress line unless quiet.
func status(quiet bool, format string, args ...any) {
	if quiet {
		return
	}
	fmt.Printf(format+"\n", args...)
}
