package cmd

import (
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/KaramelBytes/solarscope-cli/internal/analysis"
	"github.com/KaramelBytes/solarscope-cli/internal/charts"
	"github.com/KaramelBytes/solarscope-cli/internal/dataset"
)

var (
	cmpStudy       string
	cmpOutput      string
	cmpFormat      string
	cmpCharts      string
	cmpDailyColumn string
)

var compareCmd = &cobra.Command{
	Use:   "compare [name=path ...]",
	Short: "Compare irradiance across sites and recommend the best one",
	Long: `Compare mean and standard deviation of GHI, DNI and DHI across sites and
rank them by mean GHI.

Sites come from name=path arguments, from a study (--project), or from the
config sites map. A bare name is looked up in the config sites map.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		paths, missing, err := compareInputs(args)
		if err != nil {
			return err
		}
		if len(missing) > 0 {
			fmt.Printf("⚠ Please %s (missing: %s)\n", analysis.ErrIncompleteSites, strings.Join(missing, ", "))
			return nil
		}
		c, err := newCache()
		if err != nil {
			return err
		}
		sites, err := loadSites(c, paths)
		if err != nil {
			return err
		}
		cmp, err := analysis.Compare(sites)
		if err != nil {
			return err
		}
		var body []byte
		switch cmpFormat {
		case "", "markdown", "md":
			body = []byte(cmp.Markdown())
		case "yaml", "yml":
			if body, err = yaml.Marshal(cmp); err != nil {
				return fmt.Errorf("marshal yaml: %w", err)
			}
		default:
			return fmt.Errorf("unsupported --format: %s (use markdown|yaml)", cmpFormat)
		}
		if err := writeOutput(cmpOutput, body); err != nil {
			return err
		}
		if cmpOutput != "" {
			fmt.Printf("✓ Wrote comparison to %s (best site: %s)\n", cmpOutput, cmp.Best())
		}
		if cmpCharts != "" {
			written, err := compareCharts(cmp, sites, cmpCharts, cmpDailyColumn)
			if err != nil {
				return err
			}
			for _, p := range written {
				fmt.Printf("✓ Wrote %s\n", p)
			}
		}
		return nil
	},
}

// compareInputs resolves site names to paths. Sites named without data are
// returned in missing rather than as an error.
func compareInputs(args []string) (map[string]string, []string, error) {
	paths := map[string]string{}
	var missing []string
	switch {
	case len(args) > 0:
		known := settings().Sites
		for _, a := range args {
			name, path, hasPath := strings.Cut(a, "=")
			name = strings.TrimSpace(name)
			if name == "" {
				return nil, nil, fmt.Errorf("invalid site %q (use name=path)", a)
			}
			if !hasPath {
				path = known[name]
			}
			if strings.TrimSpace(path) == "" {
				missing = append(missing, name)
				continue
			}
			paths[name] = path
		}
	case cmpStudy != "":
		st, err := openStudy(cmpStudy)
		if err != nil {
			return nil, nil, err
		}
		for name, s := range st.Sites {
			paths[name] = s.Path
		}
	default:
		for name, p := range settings().Sites {
			if strings.TrimSpace(p) == "" {
				missing = append(missing, name)
				continue
			}
			paths[name] = p
		}
	}
	sort.Strings(missing)
	if len(paths) == 0 && len(missing) == 0 {
		return nil, nil, fmt.Errorf("no sites given: %w", analysis.ErrIncompleteSites)
	}
	return paths, missing, nil
}

// loadSites reads every site through the cache, ordered by name.
func loadSites(c *dataset.Cache, paths map[string]string) ([]analysis.Site, error) {
	names := make([]string, 0, len(paths))
	for n := range paths {
		names = append(names, n)
	}
	sort.Strings(names)
	sites := make([]analysis.Site, 0, len(names))
	for _, n := range names {
		t, err := c.Get(paths[n])
		if err != nil {
			return nil, fmt.Errorf("site %s: %w", n, err)
		}
		sites = append(sites, analysis.Site{Name: n, Table: t})
	}
	return sites, nil
}

// compareCharts writes the mean bar chart and the daily mean line chart of
// column into dir and returns the written paths. Sites without a usable time
// column are left out of the daily chart.
func compareCharts(cmp *analysis.Comparison, sites []analysis.Site, dir, column string) ([]string, error) {
	opt := chartOptions()
	if column == "" {
		column = "GHI"
	}
	var written []string
	bars, err := charts.MeanBars(cmp, opt)
	if err != nil {
		return nil, err
	}
	p := filepath.Join(dir, "compare-means.png")
	if err := saveFigure(bars, p); err != nil {
		return nil, err
	}
	written = append(written, p)

	var daily []analysis.Site
	for _, s := range sites {
		d, err := analysis.ResampleDaily(s.Table, opt.TimeColumn, column)
		if err != nil {
			fmt.Printf("⚠ %s: no daily means: %v\n", s.Name, err)
			continue
		}
		daily = append(daily, analysis.Site{Name: s.Name, Table: d})
	}
	if len(daily) == 0 {
		return written, nil
	}
	f, err := charts.DailyMeans(daily, column, opt)
	if errors.Is(err, charts.ErrNoData) {
		fmt.Printf("⚠ daily %s: %v\n", column, err)
		return written, nil
	}
	if err != nil {
		return nil, err
	}
	p = filepath.Join(dir, "compare-daily-"+strings.ToLower(column)+".png")
	if err := saveFigure(f, p); err != nil {
		return nil, err
	}
	return append(written, p), nil
}

func init() {
	rootCmd.AddCommand(compareCmd)
	compareCmd.Flags().StringVarP(&cmpStudy, "project", "p", "", "study whose sites are compared")
	compareCmd.Flags().StringVarP(&cmpOutput, "output", "o", "", "optional path to write the comparison")
	compareCmd.Flags().StringVarP(&cmpFormat, "format", "f", "markdown", "output format: markdown|yaml")
	compareCmd.Flags().StringVar(&cmpCharts, "charts", "", "directory for the comparison charts")
	compareCmd.Flags().StringVar(&cmpDailyColumn, "daily-column", "GHI", "column of the daily mean chart")
	addInputFlags(compareCmd)
}
