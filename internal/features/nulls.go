package features

import (
	"slices"

	"github.com/leapstack-labs/leapprice/pkg/core"
)

// NullPolicy is a set of column-specific missing-value rules. Rules run in
// field order: FillZero, DropRowIfNull, DropColumns, DropAnyNull. Columns
// named by a rule but absent from the table are skipped.
type NullPolicy struct {
	Name          string
	FillZero      []string
	DropRowIfNull []string
	DropColumns   []string
	DropAnyNull   bool
}

// PreEncodePolicy runs before encoding.
var PreEncodePolicy = NullPolicy{
	Name:          "nulls_pre",
	FillZero:      []string{"LotFrontage"},
	DropRowIfNull: []string{"MasVnrArea"},
	DropColumns:   []string{"GarageYrBlt"},
}

// FinalSweepPolicy runs after encoding and drops every row still holding a null.
var FinalSweepPolicy = NullPolicy{
	Name:        "nulls_final",
	DropAnyNull: true,
}

// NullReport summarises what a policy changed.
type NullReport struct {
	RowsIn         int
	RowsOut        int
	FilledCells    int
	DroppedColumns []string
}

// RowsDropped returns the number of rows removed.
func (r NullReport) RowsDropped() int { return r.RowsIn - r.RowsOut }

// Apply runs the policy against t and returns a new table.
func (p NullPolicy) Apply(t core.Table) (core.Table, NullReport) {
	report := NullReport{RowsIn: t.Len()}

	fill := presentColumns(t, p.FillZero)
	dropIfNull := presentColumns(t, p.DropRowIfNull)
	dropCols := presentColumns(t, p.DropColumns)

	out := core.Table{Columns: make([]string, 0, len(t.Columns))}
	for _, c := range t.Columns {
		if !slices.Contains(dropCols, c) {
			out.Columns = append(out.Columns, c)
		}
	}
	report.DroppedColumns = dropCols

	out.Rows = make([]core.Row, 0, t.Len())
rows:
	for _, r := range t.Rows {
		row := r.Clone()
		for _, c := range fill {
			if row.IsNull(c) {
				row[c] = 0.0
				report.FilledCells++
			}
		}
		for _, c := range dropIfNull {
			if row.IsNull(c) {
				continue rows
			}
		}
		for _, c := range dropCols {
			delete(row, c)
		}
		if p.DropAnyNull {
			for _, c := range out.Columns {
				if row.IsNull(c) {
					continue rows
				}
			}
		}
		out.Rows = append(out.Rows, row)
	}

	report.RowsOut = out.Len()
	return out, report
}

func presentColumns(t core.Table, names []string) []string {
	var out []string
	for _, n := range names {
		if t.HasColumn(n) {
			out = append(out, n)
		}
	}
	return out
}
