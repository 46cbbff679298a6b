package model

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// MAE is the mean absolute error between truth and predictions.
func MAE(truth, pred []float64) (float64, error) {
	if err := checkPair(truth, pred); err != nil {
		return 0, err
	}
	return floats.Distance(truth, pred, 1) / float64(len(truth)), nil
}

// RMSE is the root mean squared error between truth and predictions.
func RMSE(truth, pred []float64) (float64, error) {
	if err := checkPair(truth, pred); err != nil {
		return 0, err
	}
	return floats.Distance(truth, pred, 2) / math.Sqrt(float64(len(truth))), nil
}

// R2 is the coefficient of determination. A constant truth vector yields 0.
func R2(truth, pred []float64) (float64, error) {
	if err := checkPair(truth, pred); err != nil {
		return 0, err
	}
	if floats.Min(truth) == floats.Max(truth) {
		return 0, nil
	}
	return stat.RSquaredFrom(pred, truth, nil), nil
}

func checkPair(truth, pred []float64) error {
	if len(truth) != len(pred) {
		return fmt.Errorf("length mismatch: %d truth values, %d predictions", len(truth), len(pred))
	}
	if len(truth) == 0 {
		return fmt.Errorf("no values to score")
	}
	return nil
}
