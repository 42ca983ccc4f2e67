package targets

import (
	"fmt"
	"math"
	"strings"

	"github.com/oxygene76/exotargets/pkg/table"
)

// Step is one stage of a reduction pipeline. Apply must not modify its input.
type Step interface {
	Name() string
	Apply(t *table.Table) (*table.Table, error)
}

// TypeFilter keeps rows whose string column equals Value
type TypeFilter struct {
	Column string
	Value  string
}

func (s TypeFilter) Name() string { return fmt.Sprintf("type %s == %s", s.Column, s.Value) }

func (s TypeFilter) Apply(t *table.Table) (*table.Table, error) {
	vals, err := t.Strings(s.Column)
	if err != nil {
		return nil, err
	}
	return t.Filter(func(i int) bool { return vals[i] == s.Value }), nil
}

// OneOf keeps rows whose string column is any of Values
type OneOf struct {
	Column string
	Values []string
}

func (s OneOf) Name() string {
	return fmt.Sprintf("%s in [%s]", s.Column, strings.Join(s.Values, ", "))
}

func (s OneOf) Apply(t *table.Table) (*table.Table, error) {
	vals, err := t.Strings(s.Column)
	if err != nil {
		return nil, err
	}
	allowed := make(map[string]bool, len(s.Values))
	for _, v := range s.Values {
		allowed[v] = true
	}
	return t.Filter(func(i int) bool { return allowed[vals[i]] }), nil
}

// Dedup keeps the first row of every distinct key, where the key is the
// tuple of the listed string columns. Surviving rows keep their order.
type Dedup struct {
	Columns []string
}

func (s Dedup) Name() string { return "dedup by " + strings.Join(s.Columns, ", ") }

func (s Dedup) Apply(t *table.Table) (*table.Table, error) {
	keys := make([][]string, len(s.Columns))
	for j, name := range s.Columns {
		vals, err := t.Strings(name)
		if err != nil {
			return nil, err
		}
		keys[j] = vals
	}

	seen := make(map[string]bool, t.Len())
	var sb strings.Builder
	return t.Filter(func(i int) bool {
		sb.Reset()
		for _, col := range keys {
			sb.WriteString(col[i])
			sb.WriteByte(0)
		}
		k := sb.String()
		if seen[k] {
			return false
		}
		seen[k] = true
		return true
	}), nil
}

// ValidityFilter drops every row that has a missing value in any of the
// tracked columns. Float cells are missing when NaN or zero, string cells
// when empty.
type ValidityFilter struct {
	Columns []string
}

func (s ValidityFilter) Name() string { return "valid " + strings.Join(s.Columns, ", ") }

func (s ValidityFilter) Apply(t *table.Table) (*table.Table, error) {
	return dropWhere(t, s.Columns, func(c *table.Column, i int) bool {
		return c.Missing(i) || (c.Kind == table.Float && c.Floats[i] == 0)
	})
}

// DropMissing drops rows with a NaN or empty cell in any of the listed
// columns. Unlike ValidityFilter, zero is a legitimate value.
type DropMissing struct {
	Columns []string
}

func (s DropMissing) Name() string { return "present " + strings.Join(s.Columns, ", ") }

func (s DropMissing) Apply(t *table.Table) (*table.Table, error) {
	return dropWhere(t, s.Columns, func(c *table.Column, i int) bool { return c.Missing(i) })
}

func dropWhere(t *table.Table, names []string, missing func(*table.Column, int) bool) (*table.Table, error) {
	cols := make([]*table.Column, len(names))
	for j, name := range names {
		c, err := t.Column(name)
		if err != nil {
			return nil, err
		}
		cols[j] = c
	}
	return t.Filter(func(i int) bool {
		for _, c := range cols {
			if missing(c, i) {
				return false
			}
		}
		return true
	}), nil
}

// RangeFilter keeps rows whose float column lies within the bounds. A nil
// bound is open. NaN never satisfies a bound.
type RangeFilter struct {
	Column       string
	Min          *float64
	Max          *float64
	MinInclusive bool
	MaxInclusive bool
}

func (s RangeFilter) Name() string {
	lo, hi := "-inf", "+inf"
	lb, rb := "(", ")"
	if s.Min != nil {
		lo = table.FormatFloat(*s.Min)
		if s.MinInclusive {
			lb = "["
		}
	}
	if s.Max != nil {
		hi = table.FormatFloat(*s.Max)
		if s.MaxInclusive {
			rb = "]"
		}
	}
	return fmt.Sprintf("%s in %s%s, %s%s", s.Column, lb, lo, hi, rb)
}

func (s RangeFilter) Apply(t *table.Table) (*table.Table, error) {
	vals, err := t.Floats(s.Column)
	if err != nil {
		return nil, err
	}
	return t.Filter(func(i int) bool { return s.contains(vals[i]) }), nil
}

func (s RangeFilter) contains(v float64) bool {
	if math.IsNaN(v) {
		return s.Min == nil && s.Max == nil
	}
	if s.Min != nil {
		if s.MinInclusive && v < *s.Min || !s.MinInclusive && v <= *s.Min {
			return false
		}
	}
	if s.Max != nil {
		if s.MaxInclusive && v > *s.Max || !s.MaxInclusive && v >= *s.Max {
			return false
		}
	}
	return true
}

// AtMost keeps rows with column ≤ max
func AtMost(column string, max float64) RangeFilter {
	return RangeFilter{Column: column, Max: &max, MaxInclusive: true}
}

// Above keeps rows with column > min
func Above(column string, min float64) RangeFilter {
	return RangeFilter{Column: column, Min: &min}
}

// Between keeps rows with min ≤ column ≤ max
func Between(column string, min, max float64) RangeFilter {
	return RangeFilter{Column: column, Min: &min, Max: &max, MinInclusive: true, MaxInclusive: true}
}
