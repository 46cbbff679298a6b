package model

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMAE(t *testing.T) {
	mae, err := MAE([]float64{1, 2, 3}, []float64{2, 2, 1})
	require.NoError(t, err)
	assert.InDelta(t, 1.0, mae, 1e-12)

	_, err = MAE([]float64{1}, []float64{1, 2})
	assert.Error(t, err)
	_, err = MAE(nil, nil)
	assert.Error(t, err)
}

func TestRMSE(t *testing.T) {
	rmse, err := RMSE([]float64{0, 0}, []float64{3, 4})
	require.NoError(t, err)
	assert.InDelta(t, math.Sqrt(12.5), rmse, 1e-12)
}

func TestR2(t *testing.T) {
	truth := []float64{1, 2, 3, 4}

	r2, err := R2(truth, truth)
	require.NoError(t, err)
	assert.InDelta(t, 1.0, r2, 1e-12)

	r2, err = R2(truth, []float64{2.5, 2.5, 2.5, 2.5})
	require.NoError(t, err)
	assert.InDelta(t, 0.0, r2, 1e-12)

	r2, err = R2([]float64{5, 5}, []float64{4, 6})
	require.NoError(t, err)
	assert.Equal(t, 0.0, r2)
}
