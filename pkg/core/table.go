package core

import (
	"math"
	"slices"
)

// Value is a single cell: nil (null), float64, or string.
type Value = any

// Row maps column name to cell value.
type Row map[string]Value

// Table is an ordered column list plus the rows holding those columns.
// Stages never mutate a Table they receive; they return a new one.
type Table struct {
	Columns []string
	Rows    []Row
}

// NewTable creates a table with the given columns and no rows.
func NewTable(columns ...string) Table {
	return Table{Columns: slices.Clone(columns)}
}

// Len returns the number of rows.
func (t Table) Len() int { return len(t.Rows) }

// HasColumn reports whether the column is part of the table.
func (t Table) HasColumn(name string) bool {
	return slices.Contains(t.Columns, name)
}

// ColumnIndex returns the position of the column, or -1.
func (t Table) ColumnIndex(name string) int {
	return slices.Index(t.Columns, name)
}

// Clone returns a deep copy of the column list and every row map.
func (t Table) Clone() Table {
	out := Table{
		Columns: slices.Clone(t.Columns),
		Rows:    make([]Row, len(t.Rows)),
	}
	for i, r := range t.Rows {
		out.Rows[i] = r.Clone()
	}
	return out
}

// Clone copies the row.
func (r Row) Clone() Row {
	out := make(Row, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// IsNull reports whether the cell for column is absent, nil or NaN.
func (r Row) IsNull(column string) bool {
	v, ok := r[column]
	if !ok || v == nil {
		return true
	}
	f, isFloat := v.(float64)
	return isFloat && math.IsNaN(f)
}
