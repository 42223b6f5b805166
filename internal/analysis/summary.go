package analysis

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/montanaflynn/stats"

	"github.com/KaramelBytes/solarscope-cli/internal/table"
)

// StatsRecord is the describe() row of one numeric column.
type StatsRecord struct {
	Column string  `json:"column" yaml:"column"`
	Unit   string  `json:"unit,omitempty" yaml:"unit,omitempty"`
	Count  int     `json:"count" yaml:"count"`
	Mean   float64 `json:"mean" yaml:"mean"`
	Std    float64 `json:"std" yaml:"std"`
	Min    float64 `json:"min" yaml:"min"`
	Q25    float64 `json:"25%" yaml:"25%"`
	Median float64 `json:"50%" yaml:"50%"`
	Q75    float64 `json:"75%" yaml:"75%"`
	Max    float64 `json:"max" yaml:"max"`
}

// MarshalJSON writes undefined statistics as null.
func (r StatsRecord) MarshalJSON() ([]byte, error) {
	num := func(v float64) *float64 {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil
		}
		return &v
	}
	return json.Marshal(struct {
		Column string   `json:"column"`
		Unit   string   `json:"unit,omitempty"`
		Count  int      `json:"count"`
		Mean   *float64 `json:"mean"`
		Std    *float64 `json:"std"`
		Min    *float64 `json:"min"`
		Q25    *float64 `json:"25%"`
		Median *float64 `json:"50%"`
		Q75    *float64 `json:"75%"`
		Max    *float64 `json:"max"`
	}{r.Column, r.Unit, r.Count, num(r.Mean), num(r.Std), num(r.Min), num(r.Q25), num(r.Median), num(r.Q75), num(r.Max)})
}

// CategoryCount is one value of a non-numeric column and its frequency.
type CategoryCount struct {
	Value string `json:"value" yaml:"value"`
	Count int    `json:"count" yaml:"count"`
}

// ValueCounts summarizes a text or datetime column.
type ValueCounts struct {
	Column string          `json:"column" yaml:"column"`
	Kind   table.Kind      `json:"kind" yaml:"kind"`
	Count  int             `json:"count" yaml:"count"`
	Unique int             `json:"unique" yaml:"unique"`
	Top    []CategoryCount `json:"top,omitempty" yaml:"top,omitempty"`
	First  *time.Time      `json:"first,omitempty" yaml:"first,omitempty"`
	Last   *time.Time      `json:"last,omitempty" yaml:"last,omitempty"`
}

// Summary is the descriptive report of a table.
type Summary struct {
	Name       string         `json:"name,omitempty" yaml:"name,omitempty"`
	Rows       int            `json:"rows" yaml:"rows"`
	Cols       int            `json:"cols" yaml:"cols"`
	Empty      bool           `json:"empty" yaml:"empty"`
	Numeric    []StatsRecord  `json:"numeric,omitempty" yaml:"numeric,omitempty"`
	NonNumeric []ValueCounts  `json:"non_numeric,omitempty" yaml:"non_numeric,omitempty"`
	Missing    map[string]int `json:"missing,omitempty" yaml:"missing,omitempty"`
}

const topValues = 5

// Summarize computes count, mean, sample std, min, quartiles and max for
// every numeric column, plus value counts for the others. An empty table is
// reported through Summary.Empty rather than as an error.
func Summarize(t *table.Table) (*Summary, error) {
	if t == nil {
		return nil, ErrNotTabular
	}
	s := &Summary{Name: t.Name, Rows: t.Len(), Cols: len(t.Columns)}
	if t.Empty() {
		s.Empty = true
		return s, nil
	}
	s.Missing, _ = CheckMissingValues(t)
	for _, c := range t.Columns {
		switch c.Kind {
		case table.Numeric:
			s.Numeric = append(s.Numeric, describe(c))
		default:
			s.NonNumeric = append(s.NonNumeric, countValues(c))
		}
	}
	return s, nil
}

func describe(c *table.Column) StatsRecord {
	vals := c.Values()
	r := StatsRecord{Column: c.Name, Unit: c.Unit, Count: len(vals)}
	if len(vals) == 0 {
		nan := math.NaN()
		r.Mean, r.Std, r.Min, r.Q25, r.Median, r.Q75, r.Max = nan, nan, nan, nan, nan, nan, nan
		return r
	}
	r.Mean, _ = stats.Mean(vals)
	r.Std = sampleStd(vals)
	r.Min, _ = stats.Min(vals)
	r.Max, _ = stats.Max(vals)
	sorted := sortedCopy(vals)
	r.Q25 = quantile(sorted, 0.25)
	r.Median = quantile(sorted, 0.5)
	r.Q75 = quantile(sorted, 0.75)
	return r
}

// sampleStd is the n-1 standard deviation; NaN below two values.
func sampleStd(vals []float64) float64 {
	if len(vals) < 2 {
		return math.NaN()
	}
	sd, err := stats.StandardDeviationSample(vals)
	if err != nil {
		return math.NaN()
	}
	return sd
}

func countValues(c *table.Column) ValueCounts {
	vc := ValueCounts{Column: c.Name, Kind: c.Kind}
	freq := map[string]int{}
	for i := 0; i < c.Len(); i++ {
		if c.IsNull(i) {
			continue
		}
		vc.Count++
		freq[c.Format(i)]++
		if c.Kind == table.Datetime {
			ts := c.Times[i]
			if vc.First == nil || ts.Before(*vc.First) {
				vc.First = &ts
			}
			if vc.Last == nil || ts.After(*vc.Last) {
				vc.Last = &ts
			}
		}
	}
	vc.Unique = len(freq)
	for v, n := range freq {
		vc.Top = append(vc.Top, CategoryCount{Value: v, Count: n})
	}
	sort.Slice(vc.Top, func(i, j int) bool {
		if vc.Top[i].Count == vc.Top[j].Count {
			return vc.Top[i].Value < vc.Top[j].Value
		}
		return vc.Top[i].Count > vc.Top[j].Count
	})
	if len(vc.Top) > topValues {
		vc.Top = vc.Top[:topValues]
	}
	return vc
}

// CheckMissingValues counts missing entries per column.
func CheckMissingValues(t *table.Table) (map[string]int, error) {
	if t == nil {
		return nil, ErrNotTabular
	}
	out := make(map[string]int, len(t.Columns))
	for _, c := range t.Columns {
		out[c.Name] = c.Missing()
	}
	return out, nil
}

// Markdown renders the summary as a compact sectioned report.
func (s *Summary) Markdown() string {
	var b strings.Builder
	b.WriteString("[DATASET SUMMARY]\n")
	if s.Name != "" {
		b.WriteString(fmt.Sprintf("File: %s\n", s.Name))
	}
	b.WriteString(fmt.Sprintf("Rows: %d\n", s.Rows))
	b.WriteString(fmt.Sprintf("Columns: %d\n", s.Cols))
	if s.Empty {
		b.WriteString("\nThe table is empty; no statistics to report.\n")
		return b.String()
	}

	if len(s.Numeric) > 0 {
		b.WriteString("\n[NUMERIC COLUMNS]\n")
		b.WriteString("| column | count | mean | std | min | 25% | 50% | 75% | max |\n")
		b.WriteString("| --- | --- | --- | --- | --- | --- | --- | --- | --- |\n")
		for _, r := range s.Numeric {
			name := safeName(r.Column)
			if r.Unit != "" {
				name = fmt.Sprintf("%s [%s]", name, r.Unit)
			}
			b.WriteString(fmt.Sprintf("| %s | %d | %s | %s | %s | %s | %s | %s | %s |\n",
				name, r.Count, num(r.Mean), num(r.Std), num(r.Min), num(r.Q25), num(r.Median), num(r.Q75), num(r.Max)))
		}
	}

	if len(s.NonNumeric) > 0 {
		b.WriteString("\n[OTHER COLUMNS]\n")
		for _, vc := range s.NonNumeric {
			b.WriteString(fmt.Sprintf("- %s: %s (non-null %d, unique %d)", safeName(vc.Column), vc.Kind, vc.Count, vc.Unique))
			if vc.First != nil && vc.Last != nil {
				b.WriteString(fmt.Sprintf(", %s to %s", vc.First.Format("2006-01-02 15:04"), vc.Last.Format("2006-01-02 15:04")))
			} else if len(vc.Top) > 0 {
				b.WriteString(", top: ")
				for i, kv := range vc.Top {
					if i > 0 {
						b.WriteString(", ")
					}
					b.WriteString(fmt.Sprintf("%s(%d)", safeVal(kv.Value), kv.Count))
				}
			}
			b.WriteString("\n")
		}
	}

	var missing []string
	for name, n := range s.Missing {
		if n > 0 {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		b.WriteString("\n[MISSING VALUES]\n")
		for _, name := range missing {
			pct := float64(s.Missing[name]) * 100.0 / float64(s.Rows)
			b.WriteString(fmt.Sprintf("- %s: %d (%.1f%%)\n", safeName(name), s.Missing[name], pct))
		}
	}
	return b.String()
}

func num(v float64) string {
	if math.IsNaN(v) {
		return "NaN"
	}
	return fmt.Sprintf("%.4g", v)
}

func safeName(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return "(unnamed)"
	}
	return s
}

func safeVal(s string) string { return strings.ReplaceAll(strings.ReplaceAll(s, "\n", " "), "|", "/") }
