package cmd

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/KaramelBytes/solarscope-cli/internal/analysis"
	"github.com/KaramelBytes/solarscope-cli/internal/dataset"
	"github.com/KaramelBytes/solarscope-cli/internal/study"
	"github.com/KaramelBytes/solarscope-cli/internal/utils"
)

var (
	repStudy    string
	repOutDir   string
	repQuiet    bool
	repNoCharts bool
	repWatch    bool
)

// watchSettle is how long report --watch waits for a burst of file events
// to end before regenerating.
const watchSettle = 300 * time.Millisecond

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Summaries, charts and a site comparison for every site of a study",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := openStudy(repStudy)
		if err != nil {
			return err
		}
		if len(st.Sites) == 0 {
			return fmt.Errorf("study '%s' has no sites; add one with 'solarscope add -p %s --site <name> <file>'", st.Name, st.Name)
		}
		c, err := newCache()
		if err != nil {
			return err
		}
		dir := repOutDir
		if dir == "" {
			dir = st.ArtifactsDir()
		}
		if err := runReport(st, c, dir); err != nil {
			return err
		}
		if !repWatch {
			return nil
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()
		var paths []string
		for _, name := range st.SiteNames() {
			paths = append(paths, st.Sites[name].Path)
		}
		changes, err := c.Watch(ctx, paths...)
		if err != nil {
			return err
		}
		fmt.Printf("… Watching %d files (Ctrl+C to stop)\n", len(paths))
		for {
			select {
			case <-ctx.Done():
				return nil
			case p, ok := <-changes:
				if !ok {
					return nil
				}
				settle(changes, watchSettle)
				fmt.Printf("↻ %s changed, regenerating\n", filepath.Base(p))
				if err := runReport(st, c, dir); err != nil {
					fmt.Fprintln(os.Stderr, "✗ Error:", err)
				}
			}
		}
	},
}

// settle drains events until none arrive for d.
func settle(ch <-chan string, d time.Duration) {
	for {
		select {
		case _, ok := <-ch:
			if !ok {
				return
			}
		case <-time.After(d):
			return
		}
	}
}

// runReport writes every site's report and charts into dir, then the
// cross-site comparison, and records all of them in the study.
func runReport(st *study.Study, c *dataset.Cache, dir string) error {
	sites, err := st.LoadSites(c)
	if err != nil {
		return err
	}
	opt := chartOptions()
	total := len(sites)
	artifacts := 0
	for i, s := range sites {
		status(repQuiet, "[%d/%d] Processing %s...", i+1, total, s.Name)
		st.Sites[s.Name].Rows = s.Table.Len()

		md, err := siteReport(s)
		if err != nil {
			return fmt.Errorf("site %s: %w", s.Name, err)
		}
		p, err := utils.WriteFileIn(dir, utils.FileStem(s.Name)+".report.md", []byte(md))
		if err != nil {
			return err
		}
		st.AddArtifact("report", p, "Report for "+s.Name, s.Name)
		artifacts++

		if repNoCharts {
			continue
		}
		for _, kind := range reportKinds {
			f, err := renderPlot(kind, s.Table, plotArgs{}, opt)
			if err != nil {
				status(repQuiet, "⚠ %s: skipped %s chart: %v", s.Name, kind, err)
				continue
			}
			var buf bytes.Buffer
			if err := f.Render(&buf); err != nil {
				status(repQuiet, "⚠ %s: skipped %s chart: %v", s.Name, kind, err)
				continue
			}
			p, err := utils.WriteFileIn(dir, fmt.Sprintf("%s-%s.png", utils.FileStem(s.Name), kind), buf.Bytes())
			if err != nil {
				return err
			}
			logger.Debug("chart written", zap.String("site", s.Name), zap.String("kind", kind), zap.String("path", p))
			st.AddArtifact(kind, p, fmt.Sprintf("%s %s", s.Name, kind), s.Name)
			artifacts++
		}
	}

	if total > 1 {
		status(repQuiet, "Comparing %d sites...", total)
		cmp, err := analysis.Compare(sites)
		if err != nil {
			status(repQuiet, "⚠ comparison skipped: %v", err)
		} else {
			p, err := utils.WriteFileIn(dir, "comparison.md", []byte(cmp.Markdown()))
			if err != nil {
				return err
			}
			st.AddArtifact("comparison", p, "Site comparison", "")
			artifacts++
			if !repNoCharts {
				written, err := compareCharts(cmp, sites, dir, "GHI")
				if err != nil {
					return err
				}
				for _, w := range written {
					st.AddArtifact("comparison-chart", w, filepath.Base(w), "")
					artifacts++
				}
			}
		}
	}
	if err := st.Save(); err != nil {
		return err
	}
	status(repQuiet, "✓ Report written to %s (%d artifacts)", dir, artifacts)
	return nil
}

// siteReport combines the summary, outlier, Z-score and cleaning sections of
// one site.
func siteReport(s analysis.Site) (string, error) {
	sum, err := analysis.Summarize(s.Table)
	if err != nil {
		return "", err
	}
	var b strings.Builder
	b.WriteString(sum.Markdown())
	if sum.Empty {
		return b.String(), nil
	}
	report, err := analysis.OutlierReport(s.Table)
	if err != nil {
		return "", err
	}
	b.WriteString("\n")
	b.WriteString(outliersMarkdown(report, sum.Missing, s.Table.Len(), 20))

	c := settings()
	thr, err := zscoreThreshold(c, false, 0)
	if err != nil {
		return "", err
	}
	b.WriteString("\n[Z-SCORES]\n")
	z, err := analysis.ZScores(s.Table, c.ZScoreColumns, thr)
	var nv *analysis.NoVarianceError
	switch {
	case err == nil:
		fmt.Fprintf(&b, "Rows with |z| > %g in %s: %d of %d\n", thr, strings.Join(columnsOrDefault(c.ZScoreColumns, analysis.DefaultZScoreColumns), ", "), analysis.CountOutliers(z), z.Len())
	case errors.As(err, &nv), errors.Is(err, analysis.ErrColumnNotFound), errors.Is(err, analysis.ErrNotNumeric),
		errors.Is(err, analysis.ErrNoNumericColumns):
		fmt.Fprintf(&b, "(not computed: %v)\n", err)
	default:
		return "", err
	}

	res, err := analysis.Clean(s.Table)
	if err != nil {
		return "", err
	}
	b.WriteString("\n")
	b.WriteString(res.Summary())
	return b.String(), nil
}

func columnsOrDefault(cols, def []string) []string {
	if len(cols) == 0 {
		return def
	}
	return cols
}

func init() {
	rootCmd.AddCommand(reportCmd)
	reportCmd.Flags().StringVarP(&repStudy, "project", "p", "", "study name (default: study containing the working directory)")
	reportCmd.Flags().StringVarP(&repOutDir, "out", "o", "", "output directory (default the study's artifacts directory)")
	reportCmd.Flags().BoolVar(&repQuiet, "quiet", false, "suppress progress and non-essential output")
	reportCmd.Flags().BoolVar(&repNoCharts, "no-charts", false, "write text reports only")
	reportCmd.Flags().BoolVar(&repWatch, "watch", false, "regenerate when a site file changes")
	addInputFlags(reportCmd)
}
