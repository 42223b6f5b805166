package analysis

import (
	"fmt"
	"sort"
	"strings"

	"github.com/montanaflynn/stats"

	"github.com/KaramelBytes/solarscope-cli/internal/table"
)

// CleanResult is the cleaned table plus what happened along the way.
type CleanResult struct {
	Table          *table.Table   `json:"-" yaml:"-"`
	RowsIn         int            `json:"rows_in" yaml:"rows_in"`
	RowsOut        int            `json:"rows_out" yaml:"rows_out"`
	DroppedColumns []string       `json:"dropped_columns,omitempty" yaml:"dropped_columns,omitempty"`
	Imputed        map[string]int `json:"imputed,omitempty" yaml:"imputed,omitempty"`
	Filled         map[string]int `json:"filled,omitempty" yaml:"filled,omitempty"`
	// Unresolved counts leading missing values that forward fill could not
	// reach, per non-numeric column.
	Unresolved map[string]int `json:"unresolved,omitempty" yaml:"unresolved,omitempty"`
	Warnings   []string       `json:"warnings,omitempty" yaml:"warnings,omitempty"`
}

// Clean returns a new table where:
//   - an entirely empty Comments column is dropped,
//   - numeric gaps are filled with the column mean,
//   - non-numeric gaps are forward-filled in row order,
//   - rows with any numeric value outside that column's IQR fence are removed.
//
// The fences are computed after imputation. A numeric column without any
// value cannot be imputed; it stays missing, is reported in Warnings and
// takes no part in row filtering. The input table is left untouched.
func Clean(t *table.Table) (*CleanResult, error) {
	if t == nil {
		return nil, ErrNotTabular
	}
	res := &CleanResult{
		RowsIn:     t.Len(),
		Imputed:    map[string]int{},
		Filled:     map[string]int{},
		Unresolved: map[string]int{},
	}

	work := t.Clone()
	if c, ok := work.FindFold("comments", "comment"); ok && c.Missing() == c.Len() {
		work = work.Drop(c.Name)
		res.DroppedColumns = append(res.DroppedColumns, c.Name)
	}

	var fenced []*table.Column
	for i, c := range work.Columns {
		if c.Kind == table.Numeric {
			vals := c.Values()
			if len(vals) == 0 {
				if c.Len() > 0 {
					res.Warnings = append(res.Warnings, (&ImputeError{Column: c.Name}).Error())
				}
				continue
			}
			mean, _ := stats.Mean(vals)
			if n := imputeMean(c, mean); n > 0 {
				res.Imputed[c.Name] = n
			}
			fenced = append(fenced, c)
			continue
		}
		filled, unresolved := ForwardFill(c)
		work.Columns[i] = filled
		if n := c.Missing() - unresolved; n > 0 {
			res.Filled[c.Name] = n
		}
		if unresolved > 0 {
			res.Unresolved[c.Name] = unresolved
		}
	}

	keep := make([]bool, work.Len())
	for i := range keep {
		keep[i] = true
	}
	for _, c := range fenced {
		f, _ := Fence(c.Values())
		for i, v := range c.Nums {
			if keep[i] && !f.Contains(v) {
				keep[i] = false
			}
		}
	}
	res.Table = work.Filter(keep)
	res.RowsOut = res.Table.Len()
	return res, nil
}

// imputeMean replaces missing entries of c in place and returns how many.
func imputeMean(c *table.Column, mean float64) int {
	n := 0
	for i := range c.Nums {
		if c.Null[i] {
			c.Nums[i] = mean
			c.Null[i] = false
			n++
		}
	}
	return n
}

// ForwardFill returns a copy of c where each missing entry takes the nearest
// preceding value. Entries before the first value stay missing; their count
// is returned.
func ForwardFill(c *table.Column) (*table.Column, int) {
	out := c.Clone()
	last := -1
	unresolved := 0
	for i := 0; i < out.Len(); i++ {
		if !out.Null[i] {
			last = i
			continue
		}
		if last < 0 {
			unresolved++
			continue
		}
		out.Null[i] = false
		switch out.Kind {
		case table.Numeric:
			out.Nums[i] = out.Nums[last]
		case table.Datetime:
			out.Times[i] = out.Times[last]
		default:
			out.Strs[i] = out.Strs[last]
		}
	}
	return out, unresolved
}

// Summary renders a short account of the cleaning pass.
func (r *CleanResult) Summary() string {
	var b strings.Builder
	b.WriteString("[CLEANING]\n")
	b.WriteString(fmt.Sprintf("Rows: %d -> %d (removed %d)\n", r.RowsIn, r.RowsOut, r.RowsIn-r.RowsOut))
	if len(r.DroppedColumns) > 0 {
		b.WriteString("Dropped columns: " + strings.Join(r.DroppedColumns, ", ") + "\n")
	}
	writeCounts(&b, "Mean-imputed", r.Imputed)
	writeCounts(&b, "Forward-filled", r.Filled)
	writeCounts(&b, "Left missing", r.Unresolved)
	if len(r.Warnings) > 0 {
		b.WriteString("\n[NOTES]\n")
		for _, w := range r.Warnings {
			b.WriteString("- " + w + "\n")
		}
	}
	return b.String()
}

func writeCounts(b *strings.Builder, label string, counts map[string]int) {
	if len(counts) == 0 {
		return
	}
	names := make([]string, 0, len(counts))
	for k := range counts {
		names = append(names, k)
	}
	sort.Strings(names)
	b.WriteString(label + ":")
	for i, k := range names {
		if i > 0 {
			b.WriteString(",")
		}
		b.WriteString(fmt.Sprintf(" %s(%d)", k, counts[k]))
	}
	b.WriteString("\n")
}
