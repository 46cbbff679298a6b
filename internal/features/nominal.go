package features

import (
	"fmt"
	"slices"
	"strconv"

	"github.com/leapstack-labs/leapprice/pkg/core"
)

// EncodeNominal expands each listed column present in t into one indicator
// column per distinct value observed in t, named "<column>_<value>".
//
// Nulls are rewritten to "None" first. Source columns are removed and the
// indicators are appended after the remaining columns, grouped by source
// column in the order given and sorted by value within a group.
//
// The vocabulary comes from t alone, so two tables encoded separately can
// produce different indicator sets; Align reconciles them.
func EncodeNominal(t core.Table, columns []string) core.Table {
	present := presentColumns(t, columns)
	if len(present) == 0 {
		return t.Clone()
	}

	labels := make([]map[string]string, t.Len())
	vocab := make(map[string][]string, len(present))
	for i, r := range t.Rows {
		labels[i] = make(map[string]string, len(present))
		for _, c := range present {
			label := NoneCategory
			if !r.IsNull(c) {
				label = formatCategory(r[c])
			}
			labels[i][c] = label
			if !slices.Contains(vocab[c], label) {
				vocab[c] = append(vocab[c], label)
			}
		}
	}

	out := core.Table{}
	for _, c := range t.Columns {
		if !slices.Contains(present, c) {
			out.Columns = append(out.Columns, c)
		}
	}
	for _, c := range present {
		slices.Sort(vocab[c])
		for _, v := range vocab[c] {
			out.Columns = append(out.Columns, IndicatorName(c, v))
		}
	}

	out.Rows = make([]core.Row, t.Len())
	for i, r := range t.Rows {
		row := r.Clone()
		for _, c := range present {
			delete(row, c)
			for _, v := range vocab[c] {
				hit := 0.0
				if labels[i][c] == v {
					hit = 1
				}
				row[IndicatorName(c, v)] = hit
			}
		}
		out.Rows[i] = row
	}

	return out
}

// IndicatorName returns the one-hot column name for a category value.
func IndicatorName(column, value string) string {
	return column + "_" + value
}

// formatCategory renders a cell as a category label.
func formatCategory(v core.Value) string {
	switch x := v.(type) {
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'g', -1, 64)
	case nil:
		return ""
	default:
		return fmt.Sprint(x)
	}
}
