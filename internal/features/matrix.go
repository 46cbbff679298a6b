package features

import (
	"slices"

	"gonum.org/v1/gonum/mat"

	"github.com/leapstack-labs/leapprice/pkg/core"
)

// Matrix is a numeric feature matrix with a stable column order.
// Data is nil when the matrix has no rows or no columns.
type Matrix struct {
	Columns []string
	Data    *mat.Dense
}

// Rows returns the number of rows.
func (m Matrix) Rows() int {
	if m.Data == nil {
		return 0
	}
	r, _ := m.Data.Dims()
	return r
}

// SchemaCompatible reports whether both matrices have identical columns in
// identical order.
func (m Matrix) SchemaCompatible(other Matrix) bool {
	return slices.Equal(m.Columns, other.Columns)
}

// ToMatrix converts t into a numeric matrix, leaving out the excluded
// columns. A null or string cell fails with *core.NonNumericError.
func ToMatrix(t core.Table, exclude []string) (Matrix, error) {
	var cols []string
	for _, c := range t.Columns {
		if !slices.Contains(exclude, c) {
			cols = append(cols, c)
		}
	}

	m := Matrix{Columns: cols}
	if t.Len() == 0 || len(cols) == 0 {
		return m, nil
	}

	data := make([]float64, 0, t.Len()*len(cols))
	for _, r := range t.Rows {
		for _, c := range cols {
			v, ok := r[c].(float64)
			if !ok {
				return Matrix{}, &core.NonNumericError{Column: c, Value: r[c]}
			}
			data = append(data, v)
		}
	}
	m.Data = mat.NewDense(t.Len(), len(cols), data)
	return m, nil
}

// Column extracts one numeric column.
func Column(t core.Table, name string) ([]float64, error) {
	if !t.HasColumn(name) {
		return nil, &core.MissingColumnError{Column: name}
	}
	out := make([]float64, t.Len())
	for i, r := range t.Rows {
		v, ok := r[name].(float64)
		if !ok {
			return nil, &core.NonNumericError{Column: name, Value: r[name]}
		}
		out[i] = v
	}
	return out, nil
}

// FeatureColumns returns columns with the non-feature columns removed.
func FeatureColumns(columns []string) []string {
	drop := NonFeatureColumns()
	var out []string
	for _, c := range columns {
		if !slices.Contains(drop, c) {
			out = append(out, c)
		}
	}
	return out
}
