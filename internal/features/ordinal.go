package features

import (
	"github.com/leapstack-labs/leapprice/pkg/core"
)

// EncodeOrdinal replaces every schema column present in t with the rank of
// its value in the declared category list.
//
// Nulls become "None" in columns that declare it. Rows still null in any
// present schema column are dropped. A value outside the declared list fails
// with *core.UnknownCategoryError.
func EncodeOrdinal(t core.Table, schema OrdinalSchema) (core.Table, error) {
	var cols []OrdinalColumn
	for _, c := range schema {
		if t.HasColumn(c.Name) {
			cols = append(cols, c)
		}
	}

	out := core.Table{Columns: append([]string(nil), t.Columns...)}
	out.Rows = make([]core.Row, 0, t.Len())

rows:
	for _, r := range t.Rows {
		row := r.Clone()
		for _, c := range cols {
			if row.IsNull(c.Name) && c.HasNone() {
				row[c.Name] = NoneCategory
			}
		}
		for _, c := range cols {
			if row.IsNull(c.Name) {
				continue rows
			}
		}
		for _, c := range cols {
			label := formatCategory(row[c.Name])
			rank, ok := c.Rank(label)
			if !ok {
				return core.Table{}, &core.UnknownCategoryError{Column: c.Name, Value: label}
			}
			row[c.Name] = float64(rank)
		}
		out.Rows = append(out.Rows, row)
	}

	return out, nil
}
