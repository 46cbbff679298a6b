package features

import (
	"math"

	"github.com/leapstack-labs/leapprice/pkg/core"
)

// TransformTarget appends column+LogSuffix holding log(1+value). The source
// column is kept. Null targets stay null and are removed by the final sweep.
func TransformTarget(t core.Table, column string) (core.Table, error) {
	if !t.HasColumn(column) {
		return core.Table{}, &core.MissingColumnError{Column: column}
	}

	logCol := column + LogSuffix
	out := core.Table{Columns: append([]string(nil), t.Columns...)}
	if !out.HasColumn(logCol) {
		out.Columns = append(out.Columns, logCol)
	}
	out.Rows = make([]core.Row, t.Len())

	for i, r := range t.Rows {
		row := r.Clone()
		switch v := row[column].(type) {
		case nil:
			row[logCol] = nil
		case float64:
			row[logCol] = math.Log1p(v)
		default:
			return core.Table{}, &core.NonNumericError{Column: column, Value: v}
		}
		out.Rows[i] = row
	}

	return out, nil
}

// InverseTarget undoes TransformTarget on model output: exp(v)-1 element-wise.
func InverseTarget(values []float64) []float64 {
	out := make([]float64, len(values))
	for i, v := range values {
		out[i] = math.Expm1(v)
	}
	return out
}
