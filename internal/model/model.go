// Package model is the regression boundary of leapprice: a random forest
// regressor, k-fold grid search over its hyperparameters, and the
// serialized model artifact.
package model

import "gonum.org/v1/gonum/mat"

// Regressor is a supervised model producing continuous predictions.
// X holds one sample per row.
type Regressor interface {
	Fit(X mat.Matrix, y []float64) error
	Predict(X mat.Matrix) ([]float64, error)
}

var _ Regressor = (*Forest)(nil)
var _ Regressor = (*Tree)(nil)
