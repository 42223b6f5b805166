package table

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// Kind is the declared type of a column, fixed at load time.
type Kind string

const (
	Numeric  Kind = "numeric"
	Datetime Kind = "datetime"
	Text     Kind = "text"
)

// Column holds one named field of an observation table. Exactly one of
// Nums, Times or Strs is populated, matching Kind. Null marks missing values
// for every kind; numeric nulls also carry NaN.
type Column struct {
	Name  string
	Kind  Kind
	Unit  string
	Nums  []float64
	Times []time.Time
	Strs  []string
	Null  []bool
}

// NewNumeric builds a numeric column. NaN values are treated as missing.
func NewNumeric(name string, vals []float64) *Column {
	c := &Column{Name: name, Kind: Numeric, Nums: make([]float64, len(vals)), Null: make([]bool, len(vals))}
	copy(c.Nums, vals)
	for i, v := range vals {
		if math.IsNaN(v) {
			c.Null[i] = true
		}
	}
	return c
}

// NewText builds a text column. A nil entry is missing.
func NewText(name string, vals []*string) *Column {
	c := &Column{Name: name, Kind: Text, Strs: make([]string, len(vals)), Null: make([]bool, len(vals))}
	for i, v := range vals {
		if v == nil {
			c.Null[i] = true
			continue
		}
		c.Strs[i] = *v
	}
	return c
}

// NewDatetime builds a datetime column. Zero times are missing.
func NewDatetime(name string, vals []time.Time) *Column {
	c := &Column{Name: name, Kind: Datetime, Times: make([]time.Time, len(vals)), Null: make([]bool, len(vals))}
	copy(c.Times, vals)
	for i, v := range vals {
		if v.IsZero() {
			c.Null[i] = true
		}
	}
	return c
}

// Len returns the number of rows in the column.
func (c *Column) Len() int { return len(c.Null) }

// IsNull reports whether row i is missing.
func (c *Column) IsNull(i int) bool { return c.Null[i] }

// Missing counts null rows.
func (c *Column) Missing() int {
	n := 0
	for _, b := range c.Null {
		if b {
			n++
		}
	}
	return n
}

// Values returns the non-missing numeric values in row order.
func (c *Column) Values() []float64 {
	if c.Kind != Numeric {
		return nil
	}
	out := make([]float64, 0, len(c.Nums))
	for i, v := range c.Nums {
		if !c.Null[i] {
			out = append(out, v)
		}
	}
	return out
}

// Format renders row i as it would appear in a CSV cell. Missing is "".
func (c *Column) Format(i int) string {
	if c.Null[i] {
		return ""
	}
	switch c.Kind {
	case Numeric:
		return strconv.FormatFloat(c.Nums[i], 'f', -1, 64)
	case Datetime:
		t := c.Times[i]
		if t.Hour() == 0 && t.Minute() == 0 && t.Second() == 0 && t.Nanosecond() == 0 {
			return t.Format("2006-01-02")
		}
		return t.Format("2006-01-02 15:04:05")
	default:
		return c.Strs[i]
	}
}

// Clone returns a deep copy.
func (c *Column) Clone() *Column {
	out := &Column{Name: c.Name, Kind: c.Kind, Unit: c.Unit, Null: append([]bool(nil), c.Null...)}
	switch c.Kind {
	case Numeric:
		out.Nums = append([]float64(nil), c.Nums...)
	case Datetime:
		out.Times = append([]time.Time(nil), c.Times...)
	default:
		out.Strs = append([]string(nil), c.Strs...)
	}
	return out
}

// Take returns a new column holding the given rows in order.
func (c *Column) Take(rows []int) *Column {
	out := &Column{Name: c.Name, Kind: c.Kind, Unit: c.Unit, Null: make([]bool, len(rows))}
	switch c.Kind {
	case Numeric:
		out.Nums = make([]float64, len(rows))
	case Datetime:
		out.Times = make([]time.Time, len(rows))
	default:
		out.Strs = make([]string, len(rows))
	}
	for j, i := range rows {
		out.Null[j] = c.Null[i]
		switch c.Kind {
		case Numeric:
			out.Nums[j] = c.Nums[i]
		case Datetime:
			out.Times[j] = c.Times[i]
		default:
			out.Strs[j] = c.Strs[i]
		}
	}
	return out
}

// ErrLengthMismatch is returned when columns of a table differ in length.
var ErrLengthMismatch = errors.New("column lengths differ")

// ErrDuplicateColumn is returned when two columns share a name.
var ErrDuplicateColumn = errors.New("duplicate column name")

// Table is an ordered set of equally long named columns.
type Table struct {
	Name    string
	Columns []*Column
	index   map[string]int
}

// New assembles a table. The columns are used as given, not copied.
func New(name string, cols ...*Column) (*Table, error) {
	t := &Table{Name: name, Columns: cols, index: make(map[string]int, len(cols))}
	for i, c := range cols {
		if _, dup := t.index[c.Name]; dup {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateColumn, c.Name)
		}
		if i > 0 && c.Len() != cols[0].Len() {
			return nil, fmt.Errorf("%w: %q has %d rows, %q has %d", ErrLengthMismatch, c.Name, c.Len(), cols[0].Name, cols[0].Len())
		}
		t.index[c.Name] = i
	}
	return t, nil
}

func mustNew(name string, cols []*Column) *Table {
	t, err := New(name, cols...)
	if err != nil {
		panic(err)
	}
	return t
}

// Len returns the row count.
func (t *Table) Len() int {
	if len(t.Columns) == 0 {
		return 0
	}
	return t.Columns[0].Len()
}

// Empty reports whether the table has no rows or no columns.
func (t *Table) Empty() bool { return len(t.Columns) == 0 || t.Len() == 0 }

// Col looks up a column by exact name.
func (t *Table) Col(name string) (*Column, bool) {
	i, ok := t.index[name]
	if !ok {
		return nil, false
	}
	return t.Columns[i], true
}

// Names returns column names in order.
func (t *Table) Names() []string {
	out := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		out[i] = c.Name
	}
	return out
}

// NumericNames returns the names of numeric columns in order.
func (t *Table) NumericNames() []string {
	var out []string
	for _, c := range t.Columns {
		if c.Kind == Numeric {
			out = append(out, c.Name)
		}
	}
	return out
}

// Clone deep-copies the table.
func (t *Table) Clone() *Table {
	cols := make([]*Column, len(t.Columns))
	for i, c := range t.Columns {
		cols[i] = c.Clone()
	}
	return mustNew(t.Name, cols)
}

// Select returns a copy restricted to the named columns, in the given order.
func (t *Table) Select(names ...string) (*Table, error) {
	cols := make([]*Column, 0, len(names))
	for _, n := range names {
		c, ok := t.Col(n)
		if !ok {
			return nil, fmt.Errorf("column %q not found", n)
		}
		cols = append(cols, c.Clone())
	}
	return New(t.Name, cols...)
}

// Filter returns a copy holding rows where keep is true.
func (t *Table) Filter(keep []bool) *Table {
	rows := make([]int, 0, len(keep))
	for i, k := range keep {
		if k {
			rows = append(rows, i)
		}
	}
	return t.Take(rows)
}

// Take returns a copy holding the given rows in order.
func (t *Table) Take(rows []int) *Table {
	cols := make([]*Column, len(t.Columns))
	for i, c := range t.Columns {
		cols[i] = c.Take(rows)
	}
	return mustNew(t.Name, cols)
}

// WithColumn returns a copy with c appended, or replacing a column of the same name.
func (t *Table) WithColumn(c *Column) (*Table, error) {
	if len(t.Columns) > 0 && c.Len() != t.Len() {
		return nil, fmt.Errorf("%w: %q has %d rows, table has %d", ErrLengthMismatch, c.Name, c.Len(), t.Len())
	}
	cols := make([]*Column, 0, len(t.Columns)+1)
	replaced := false
	for _, old := range t.Columns {
		if old.Name == c.Name {
			cols = append(cols, c)
			replaced = true
			continue
		}
		cols = append(cols, old.Clone())
	}
	if !replaced {
		cols = append(cols, c)
	}
	return New(t.Name, cols...)
}

// Drop returns a copy without the named column. Unknown names are ignored.
func (t *Table) Drop(name string) *Table {
	cols := make([]*Column, 0, len(t.Columns))
	for _, c := range t.Columns {
		if c.Name == name {
			continue
		}
		cols = append(cols, c.Clone())
	}
	return mustNew(t.Name, cols)
}

// FindFold returns the first column whose name matches any candidate, ignoring case.
func (t *Table) FindFold(candidates ...string) (*Column, bool) {
	for _, c := range t.Columns {
		for _, want := range candidates {
			if strings.EqualFold(strings.TrimSpace(c.Name), want) {
				return c, true
			}
		}
	}
	return nil, false
}
