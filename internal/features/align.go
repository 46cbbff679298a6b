package features

import (
	"slices"

	"github.com/leapstack-labs/leapprice/pkg/core"
)

// AlignReport lists the columns Align had to synthesise or discard.
type AlignReport struct {
	Filled  []string // reference columns absent from the candidate, filled with 0
	Dropped []string // candidate columns absent from the reference
}

// Align returns a table whose columns are exactly reference, in order.
//
// Reference columns missing from candidate are filled with 0, candidate
// columns not in reference are dropped, and remaining nulls become 0.
// Align never fails on a column mismatch: a category first seen at inference
// time is silently dropped and an unseen training category reads as absent.
func Align(reference []string, candidate core.Table) core.Table {
	out, _ := AlignWithReport(reference, candidate)
	return out
}

// AlignWithReport is Align plus a report of the substitutions it made.
func AlignWithReport(reference []string, candidate core.Table) (core.Table, AlignReport) {
	var report AlignReport
	for _, c := range reference {
		if !candidate.HasColumn(c) {
			report.Filled = append(report.Filled, c)
		}
	}
	for _, c := range candidate.Columns {
		if !slices.Contains(reference, c) {
			report.Dropped = append(report.Dropped, c)
		}
	}

	out := core.Table{
		Columns: slices.Clone(reference),
		Rows:    make([]core.Row, candidate.Len()),
	}
	for i, r := range candidate.Rows {
		row := make(core.Row, len(reference))
		for _, c := range reference {
			if r.IsNull(c) {
				row[c] = 0.0
			} else {
				row[c] = r[c]
			}
		}
		out.Rows[i] = row
	}

	return out, report
}
