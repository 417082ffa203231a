// Package dataset provides the column-oriented observation table and the
// filter/transform and aggregation stages of the weight-analysis pipeline.
// Every operation returns a new table or summary; nothing mutates its input.
package dataset

import (
	"github.com/drewgille/lemurs/pkg/errors"
)

// Kind discriminates column storage.
type Kind int

const (
	// Numeric columns hold float64 values.
	Numeric Kind = iota
	// Categorical columns hold string labels.
	Categorical
)

func (k Kind) String() string {
	switch k {
	case Numeric:
		return "numeric"
	case Categorical:
		return "categorical"
	default:
		return "unknown"
	}
}

// Column is one typed column of a Table. Exactly one of Floats or Labels is
// populated, matching Kind.
type Column struct {
	Name   string
	Kind   Kind
	Floats []float64
	Labels []string
}

func (c Column) length() int {
	if c.Kind == Numeric {
		return len(c.Floats)
	}
	return len(c.Labels)
}

// Table is an immutable in-memory observation table with one row per
// observation. Columns keep their load order; rows keep their source order.
type Table struct {
	cols  []Column
	index map[string]int
	rows  int
}

// NewTable assembles a table from columns. All columns must have the same
// length.
func NewTable(cols ...Column) (*Table, error) {
	if len(cols) == 0 {
		return nil, errors.NewValidationError("cols", "table requires at least one column", 0)
	}
	rows := cols[0].length()
	index := make(map[string]int, len(cols))
	for i, c := range cols {
		if c.length() != rows {
			return nil, errors.NewValidationError("cols", "column lengths differ", c.Name)
		}
		if _, dup := index[c.Name]; dup {
			return nil, errors.NewValidationError("cols", "duplicate column name", c.Name)
		}
		index[c.Name] = i
	}
	return &Table{cols: cols, index: index, rows: rows}, nil
}

// Rows returns the number of observation rows.
func (t *Table) Rows() int { return t.rows }

// ColumnNames returns column names in table order.
func (t *Table) ColumnNames() []string {
	names := make([]string, len(t.cols))
	for i, c := range t.cols {
		names[i] = c.Name
	}
	return names
}

// HasColumn reports whether the named column exists.
func (t *Table) HasColumn(name string) bool {
	_, ok := t.index[name]
	return ok
}

// Column returns the named column.
func (t *Table) Column(name string) (Column, error) {
	i, ok := t.index[name]
	if !ok {
		return Column{}, errors.Wrapf(errors.ErrUnknownColumn, "column %q", name)
	}
	return t.cols[i], nil
}

// Numeric returns the float values of a numeric column. The returned slice
// is shared; callers must not modify it.
func (t *Table) Numeric(name string) ([]float64, error) {
	c, err := t.Column(name)
	if err != nil {
		return nil, err
	}
	if c.Kind != Numeric {
		return nil, errors.Wrapf(errors.ErrColumnKind, "column %q is %s, want numeric", name, c.Kind)
	}
	return c.Floats, nil
}

// Categorical returns the labels of a categorical column. The returned slice
// is shared; callers must not modify it.
func (t *Table) Categorical(name string) ([]string, error) {
	c, err := t.Column(name)
	if err != nil {
		return nil, err
	}
	if c.Kind != Categorical {
		return nil, errors.Wrapf(errors.ErrColumnKind, "column %q is %s, want categorical", name, c.Kind)
	}
	return c.Labels, nil
}

// subset builds a new table containing the given row indices, in the given
// order, with all columns carried over unchanged.
func (t *Table) subset(keep []int) *Table {
	cols := make([]Column, len(t.cols))
	for i, c := range t.cols {
		nc := Column{Name: c.Name, Kind: c.Kind}
		if c.Kind == Numeric {
			nc.Floats = make([]float64, len(keep))
			for j, r := range keep {
				nc.Floats[j] = c.Floats[r]
			}
		} else {
			nc.Labels = make([]string, len(keep))
			for j, r := range keep {
				nc.Labels[j] = c.Labels[r]
			}
		}
		cols[i] = nc
	}
	index := make(map[string]int, len(cols))
	for i, c := range cols {
		index[c.Name] = i
	}
	return &Table{cols: cols, index: index, rows: len(keep)}
}

// WithColumn returns a new table with an extra column appended. The source
// table is untouched.
func (t *Table) WithColumn(c Column) (*Table, error) {
	if c.length() != t.rows {
		return nil, errors.NewValidationError("column", "length does not match table rows", c.Name)
	}
	cols := make([]Column, 0, len(t.cols)+1)
	cols = append(cols, t.cols...)
	cols = append(cols, c)
	return NewTable(cols...)
}
