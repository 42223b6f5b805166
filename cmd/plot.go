package cmd

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/solarscope-cli/internal/analysis"
	"github.com/KaramelBytes/solarscope-cli/internal/charts"
	"github.com/KaramelBytes/solarscope-cli/internal/table"
)

// plotArgs carries the per-kind chart parameters.
type plotArgs struct {
	Columns []string
	X, Y    string
	Bubble  string
	WS, WD  string
}

// plotKinds lists every chart the plot command can draw.
var plotKinds = []string{
	"heatmap", "pairplot", "scatter-matrix", "polar", "temperature", "histograms",
	"bubbles", "timeseries", "area", "cleaning", "scatter", "lines",
}

// reportKinds are drawn for every site by the report command.
var reportKinds = []string{
	"heatmap", "pairplot", "scatter-matrix", "polar", "temperature", "histograms",
	"bubbles", "timeseries", "area", "cleaning",
}

var (
	plotOutput  string
	plotColumns []string
	plotX       string
	plotY       string
	plotBubble  string
	plotWS      string
	plotWD      string
	plotWidth   int
	plotHeight  int
)

var plotCmd = &cobra.Command{
	Use:       "plot <kind> <file>",
	Short:     "Render a chart of a sensor file as PNG",
	Long:      "Render a chart of a sensor file as PNG.\n\nKinds: " + strings.Join(plotKinds, ", ") + ".",
	Args:      cobra.ExactArgs(2),
	ValidArgs: plotKinds,
	RunE: func(cmd *cobra.Command, args []string) error {
		kind, path := args[0], args[1]
		t, err := loadTable(path)
		if err != nil {
			return err
		}
		opt := chartOptions()
		if plotWidth > 0 {
			opt.Width = plotWidth
		}
		if plotHeight > 0 {
			opt.Height = plotHeight
		}
		f, err := renderPlot(kind, t, plotArgs{
			Columns: plotColumns, X: plotX, Y: plotY, Bubble: plotBubble, WS: plotWS, WD: plotWD,
		}, opt)
		if err != nil {
			return err
		}
		out := plotOutput
		if out == "" {
			out = filepath.Join(".", fmt.Sprintf("%s-%s.png", baseName(path), kind))
		}
		if err := saveFigure(f, out); err != nil {
			return err
		}
		fmt.Printf("✓ Wrote %s chart to %s\n", kind, out)
		return nil
	},
}

func renderPlot(kind string, t *table.Table, a plotArgs, opt charts.Options) (charts.Figure, error) {
	corrCols := func() []string {
		if len(a.Columns) > 0 {
			return a.Columns
		}
		return settings().CorrColumns
	}
	switch kind {
	case "heatmap":
		m, err := analysis.CorrelationMatrix(t, corrCols()...)
		if err != nil {
			return nil, err
		}
		return charts.Heatmap(m, opt)
	case "pairplot":
		return charts.PairPlot(t, corrCols(), opt)
	case "scatter-matrix":
		return charts.ScatterMatrix(t, opt)
	case "polar":
		return charts.Polar(t, a.WS, a.WD, opt)
	case "temperature":
		return charts.Temperature(t, opt)
	case "histograms":
		return charts.Histograms(t, opt)
	case "bubbles":
		return charts.Bubbles(t, a.Bubble, opt)
	case "timeseries":
		if len(a.Columns) > 0 {
			return charts.Lines(t, a.Columns, opt)
		}
		return charts.TimeSeries(t, opt)
	case "area":
		return charts.Area(t, opt)
	case "cleaning":
		return charts.CleaningImpact(t, opt)
	case "scatter":
		if a.X == "" || a.Y == "" {
			return nil, fmt.Errorf("scatter requires --x and --y")
		}
		return charts.Scatter(t, a.X, a.Y, opt)
	case "lines":
		if len(a.Columns) == 0 {
			return nil, fmt.Errorf("lines requires --columns")
		}
		return charts.Lines(t, a.Columns, opt)
	}
	return nil, fmt.Errorf("unknown plot kind %q (use %s)", kind, strings.Join(plotKinds, ", "))
}

func init() {
	rootCmd.AddCommand(plotCmd)
	plotCmd.Flags().StringVarP(&plotOutput, "output", "o", "", "PNG output path (default <file>-<kind>.png)")
	plotCmd.Flags().StringSliceVar(&plotColumns, "columns", nil, "columns for heatmap, pairplot, timeseries and lines")
	plotCmd.Flags().StringVar(&plotX, "x", "", "scatter: x column")
	plotCmd.Flags().StringVar(&plotY, "y", "", "scatter: y column")
	plotCmd.Flags().StringVar(&plotBubble, "bubble", "RH", "bubbles: column setting marker size")
	plotCmd.Flags().StringVar(&plotWS, "ws", "WS", "polar: wind speed column")
	plotCmd.Flags().StringVar(&plotWD, "wd", "WD", "polar: wind direction column")
	plotCmd.Flags().IntVar(&plotWidth, "width", 0, "figure width in pixels (default config chart_width)")
	plotCmd.Flags().IntVar(&plotHeight, "height", 0, "figure height in pixels (default config chart_height)")
	addInputFlags(plotCmd)
}
