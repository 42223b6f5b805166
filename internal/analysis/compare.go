package analysis

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/montanaflynn/stats"

	"github.com/KaramelBytes/solarscope-cli/internal/table"
)

// CompareColumns are the irradiance fields compared across sites.
var CompareColumns = []string{"GHI", "DNI", "DHI"}

// Site is one measurement location and its observations.
type Site struct {
	Name  string
	Table *table.Table
}

// MeanStd is the mean and sample standard deviation of a column.
type MeanStd struct {
	Mean float64 `json:"mean" yaml:"mean"`
	Std  float64 `json:"std" yaml:"std"`
}

// SiteSummary holds the compared statistics of one site.
type SiteSummary struct {
	Site  string             `json:"site" yaml:"site"`
	Rows  int                `json:"rows" yaml:"rows"`
	Stats map[string]MeanStd `json:"stats" yaml:"stats"`
}

// Comparison ranks sites by mean GHI, highest first.
type Comparison struct {
	Columns []string      `json:"columns" yaml:"columns"`
	Sites   []SiteSummary `json:"sites" yaml:"sites"`
	Ranking []string      `json:"ranking" yaml:"ranking"`
}

// Best returns the site with the highest mean GHI.
func (c *Comparison) Best() string {
	if len(c.Ranking) == 0 {
		return ""
	}
	return c.Ranking[0]
}

// Compare computes mean and std of GHI, DNI and DHI per site. Every site must
// carry a table with those numeric columns. Sites keep their input order;
// Ranking orders them by mean GHI descending, ties broken by name.
func Compare(sites []Site) (*Comparison, error) {
	if len(sites) == 0 {
		return nil, ErrIncompleteSites
	}
	cmp := &Comparison{Columns: append([]string(nil), CompareColumns...)}
	for _, s := range sites {
		if s.Table == nil {
			return nil, fmt.Errorf("%s: %w", s.Name, ErrIncompleteSites)
		}
		ss := SiteSummary{Site: s.Name, Rows: s.Table.Len(), Stats: map[string]MeanStd{}}
		for _, name := range CompareColumns {
			c, err := numericColumn(s.Table, name)
			if err != nil {
				return nil, fmt.Errorf("site %s: %w", s.Name, err)
			}
			vals := c.Values()
			ms := MeanStd{Mean: math.NaN(), Std: sampleStd(vals)}
			if len(vals) > 0 {
				ms.Mean, _ = stats.Mean(vals)
			}
			ss.Stats[name] = ms
		}
		cmp.Sites = append(cmp.Sites, ss)
	}

	ranked := append([]SiteSummary(nil), cmp.Sites...)
	key := CompareColumns[0]
	sort.SliceStable(ranked, func(i, j int) bool {
		a, b := ranked[i].Stats[key].Mean, ranked[j].Stats[key].Mean
		switch {
		case math.IsNaN(a) && math.IsNaN(b):
			return ranked[i].Site < ranked[j].Site
		case math.IsNaN(a):
			return false
		case math.IsNaN(b):
			return true
		case a == b:
			return ranked[i].Site < ranked[j].Site
		}
		return a > b
	})
	for _, s := range ranked {
		cmp.Ranking = append(cmp.Ranking, s.Site)
	}
	return cmp, nil
}

// Markdown renders the comparison table, ranking and recommendation.
func (c *Comparison) Markdown() string {
	var b strings.Builder
	b.WriteString("[SITE COMPARISON]\n| site | rows |")
	for _, col := range c.Columns {
		b.WriteString(fmt.Sprintf(" %s mean | %s std |", col, col))
	}
	b.WriteString("\n|---|---|")
	for range c.Columns {
		b.WriteString("---|---|")
	}
	b.WriteString("\n")
	for _, s := range c.Sites {
		b.WriteString(fmt.Sprintf("| %s | %d |", safeName(s.Site), s.Rows))
		for _, col := range c.Columns {
			ms := s.Stats[col]
			b.WriteString(fmt.Sprintf(" %s | %s |", num(ms.Mean), num(ms.Std)))
		}
		b.WriteString("\n")
	}
	b.WriteString("\n[RANKING BY MEAN GHI]\n")
	for i, name := range c.Ranking {
		b.WriteString(fmt.Sprintf("%d. %s\n", i+1, name))
	}
	if best := c.Best(); best != "" {
		b.WriteString(fmt.Sprintf("\nRecommended site: %s\n", best))
	}
	return b.String()
}
