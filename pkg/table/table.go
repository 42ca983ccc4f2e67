// Package table is a small column store for catalogue data: an ordered set of
// named columns that are either string or float typed and share one length.
// Row identity is position. Operations return new tables and never mutate
// their receiver.
package table

import (
	"math"

	errorsmod "cosmossdk.io/errors"

	"github.com/oxygene76/exotargets/internal/types"
)

// Kind is the element type of a column
type Kind int

const (
	String Kind = iota
	Float
)

func (k Kind) String() string {
	if k == Float {
		return "float"
	}
	return "string"
}

// Column is one named column. Exactly one of Strings and Floats is used,
// depending on Kind.
type Column struct {
	Name    string
	Kind    Kind
	Strings []string
	Floats  []float64
}

// Len returns the number of cells
func (c *Column) Len() int {
	if c.Kind == Float {
		return len(c.Floats)
	}
	return len(c.Strings)
}

// Missing reports whether cell i is missing: NaN for floats, empty for strings
func (c *Column) Missing(i int) bool {
	if c.Kind == Float {
		return math.IsNaN(c.Floats[i])
	}
	return c.Strings[i] == ""
}

func (c *Column) take(idx []int) *Column {
	out := &Column{Name: c.Name, Kind: c.Kind}
	if c.Kind == Float {
		out.Floats = make([]float64, len(idx))
		for j, i := range idx {
			out.Floats[j] = c.Floats[i]
		}
		return out
	}
	out.Strings = make([]string, len(idx))
	for j, i := range idx {
		out.Strings[j] = c.Strings[i]
	}
	return out
}

func (c *Column) clone() *Column {
	out := &Column{Name: c.Name, Kind: c.Kind}
	if c.Kind == Float {
		out.Floats = append([]float64(nil), c.Floats...)
	} else {
		out.Strings = append([]string(nil), c.Strings...)
	}
	return out
}

// Table is an ordered sequence of equally long columns
type Table struct {
	columns []*Column
	index   map[string]int
	rows    int
}

// New returns an empty table
func New() *Table {
	return &Table{index: make(map[string]int)}
}

// Len returns the number of rows
func (t *Table) Len() int {
	return t.rows
}

// Names returns the column names in order
func (t *Table) Names() []string {
	names := make([]string, len(t.columns))
	for i, c := range t.columns {
		names[i] = c.Name
	}
	return names
}

// Has reports whether a column exists
func (t *Table) Has(name string) bool {
	_, ok := t.index[name]
	return ok
}

// Column returns the named column or ErrMissingField
func (t *Table) Column(name string) (*Column, error) {
	i, ok := t.index[name]
	if !ok {
		return nil, errorsmod.Wrapf(types.ErrMissingField, "column %q", name)
	}
	return t.columns[i], nil
}

// Strings returns the cells of a string column
func (t *Table) Strings(name string) ([]string, error) {
	c, err := t.Column(name)
	if err != nil {
		return nil, err
	}
	if c.Kind != String {
		return nil, errorsmod.Wrapf(types.ErrInvalidArgument, "column %q is %s, not string", name, c.Kind)
	}
	return c.Strings, nil
}

// Floats returns the cells of a float column
func (t *Table) Floats(name string) ([]float64, error) {
	c, err := t.Column(name)
	if err != nil {
		return nil, err
	}
	if c.Kind != Float {
		return nil, errorsmod.Wrapf(types.ErrInvalidArgument, "column %q is %s, not float", name, c.Kind)
	}
	return c.Floats, nil
}

// SetStrings adds or replaces a string column
func (t *Table) SetStrings(name string, vals []string) error {
	return t.set(&Column{Name: name, Kind: String, Strings: vals})
}

// SetFloats adds or replaces a float column
func (t *Table) SetFloats(name string, vals []float64) error {
	return t.set(&Column{Name: name, Kind: Float, Floats: vals})
}

func (t *Table) set(c *Column) error {
	i, replacing := t.index[c.Name]
	sole := len(t.columns) == 0 || (replacing && len(t.columns) == 1)
	if !sole && c.Len() != t.rows {
		return errorsmod.Wrapf(types.ErrInvalidArgument,
			"column %q has %d rows, table has %d", c.Name, c.Len(), t.rows)
	}
	if replacing {
		t.columns[i] = c
	} else {
		t.index[c.Name] = len(t.columns)
		t.columns = append(t.columns, c)
	}
	t.rows = c.Len()
	return nil
}

// Clone returns a deep copy
func (t *Table) Clone() *Table {
	out := New()
	for _, c := range t.columns {
		out.index[c.Name] = len(out.columns)
		out.columns = append(out.columns, c.clone())
	}
	out.rows = t.rows
	return out
}

// Take returns a table holding the given rows in the given order
func (t *Table) Take(idx []int) *Table {
	out := New()
	for _, c := range t.columns {
		out.index[c.Name] = len(out.columns)
		out.columns = append(out.columns, c.take(idx))
	}
	out.rows = len(idx)
	return out
}

// Filter returns the rows for which keep is true, in order
func (t *Table) Filter(keep func(row int) bool) *Table {
	idx := make([]int, 0, t.rows)
	for i := 0; i < t.rows; i++ {
		if keep(i) {
			idx = append(idx, i)
		}
	}
	return t.Take(idx)
}

// Select returns a table with only the named columns, in the given order
func (t *Table) Select(names ...string) (*Table, error) {
	out := New()
	for _, name := range names {
		c, err := t.Column(name)
		if err != nil {
			return nil, err
		}
		out.index[name] = len(out.columns)
		out.columns = append(out.columns, c.clone())
	}
	out.rows = t.rows
	if len(names) == 0 {
		out.rows = 0
	}
	return out, nil
}

// FillMissing returns a copy where NaN cells of float columns are replaced by v
func (t *Table) FillMissing(v float64) *Table {
	out := t.Clone()
	for _, c := range out.columns {
		if c.Kind != Float {
			continue
		}
		for i, f := range c.Floats {
			if math.IsNaN(f) {
				c.Floats[i] = v
			}
		}
	}
	return out
}

// Equal reports whether two tables have the same columns and cells.
// NaN cells compare equal to each other.
func (t *Table) Equal(o *Table) bool {
	if t.rows != o.rows || len(t.columns) != len(o.columns) {
		return false
	}
	for i, c := range t.columns {
		d := o.columns[i]
		if c.Name != d.Name || c.Kind != d.Kind {
			return false
		}
		for r := 0; r < t.rows; r++ {
			if c.Kind == Float {
				a, b := c.Floats[r], d.Floats[r]
				if a != b && !(math.IsNaN(a) && math.IsNaN(b)) {
					return false
				}
			} else if c.Strings[r] != d.Strings[r] {
				return false
			}
		}
	}
	return true
}

// Concat stacks tables vertically. The result has the union of all columns in
// first-seen order; cells a table lacks are NaN or empty. A column must have the
// same kind in every table that carries it.
func Concat(tables ...*Table) (*Table, error) {
	out := New()
	kinds := make(map[string]Kind)
	var order []string
	for _, t := range tables {
		for _, c := range t.columns {
			k, seen := kinds[c.Name]
			if !seen {
				kinds[c.Name] = c.Kind
				order = append(order, c.Name)
				continue
			}
			if k != c.Kind {
				return nil, errorsmod.Wrapf(types.ErrInvalidArgument,
					"column %q is %s in one table and %s in another", c.Name, k, c.Kind)
			}
		}
	}

	for _, name := range order {
		col := &Column{Name: name, Kind: kinds[name]}
		for _, t := range tables {
			c, ok := t.index[name]
			switch {
			case ok && col.Kind == Float:
				col.Floats = append(col.Floats, t.columns[c].Floats...)
			case ok:
				col.Strings = append(col.Strings, t.columns[c].Strings...)
			case col.Kind == Float:
				for i := 0; i < t.rows; i++ {
					col.Floats = append(col.Floats, math.NaN())
				}
			default:
				col.Strings = append(col.Strings, make([]string, t.rows)...)
			}
		}
		out.index[name] = len(out.columns)
		out.columns = append(out.columns, col)
		out.rows = col.Len()
	}
	return out, nil
}
