package model

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// dims is X.Dims that tolerates a nil matrix.
func dims(X mat.Matrix) (int, int) {
	if X == nil {
		return 0, 0
	}
	if d, ok := X.(*mat.Dense); ok && d == nil {
		return 0, 0
	}
	return X.Dims()
}

// rowViews returns the rows of X as slices. Rows of a dense matrix share
// its backing storage and must not be written.
func rowViews(X mat.Matrix) [][]float64 {
	r, _ := dims(X)
	out := make([][]float64, r)
	if v, ok := X.(mat.RawRowViewer); ok {
		for i := range out {
			out[i] = v.RawRowView(i)
		}
		return out
	}
	for i := range out {
		out[i] = mat.Row(nil, i, X)
	}
	return out
}

func checkXY(X mat.Matrix, y []float64) (int, error) {
	r, c := dims(X)
	if r == 0 || c == 0 {
		return 0, errors.New("empty X")
	}
	if r != len(y) {
		return 0, fmt.Errorf("X has %d rows but y has %d values", r, len(y))
	}
	return c, nil
}
