package model

import (
	"fmt"
	"math/rand"

	"gonum.org/v1/gonum/mat"
)

// Split holds row indices for one train/validation partition.
type Split struct {
	Train []int
	Test  []int
}

// TrainTestSplit shuffles n row indices with seed and holds out
// testFraction of them.
func TrainTestSplit(n int, testFraction float64, seed int64) (Split, error) {
	if testFraction <= 0 || testFraction >= 1 {
		return Split{}, fmt.Errorf("test fraction must be in (0, 1), got %g", testFraction)
	}
	nTest := int(float64(n) * testFraction)
	if nTest < 1 || nTest >= n {
		return Split{}, fmt.Errorf("cannot split %d rows with test fraction %g", n, testFraction)
	}

	perm := rand.New(rand.NewSource(seed)).Perm(n)
	return Split{
		Train: perm[nTest:],
		Test:  perm[:nTest],
	}, nil
}

// KFold partitions n shuffled row indices into k folds. Each returned split
// uses one fold for validation and the rest for training. Fold sizes differ
// by at most one.
func KFold(n, k int, seed int64) ([]Split, error) {
	if k < 2 {
		return nil, fmt.Errorf("k-fold needs at least 2 folds, got %d", k)
	}
	if n < k {
		return nil, fmt.Errorf("cannot split %d rows into %d folds", n, k)
	}

	perm := rand.New(rand.NewSource(seed)).Perm(n)
	splits := make([]Split, k)
	start := 0
	for f := 0; f < k; f++ {
		size := n / k
		if f < n%k {
			size++
		}
		end := start + size

		test := append([]int(nil), perm[start:end]...)
		train := make([]int, 0, n-size)
		train = append(train, perm[:start]...)
		train = append(train, perm[end:]...)
		splits[f] = Split{Train: train, Test: test}
		start = end
	}
	return splits, nil
}

// Take selects the rows of X and y listed in idx. y may be nil.
func Take(X mat.Matrix, y []float64, idx []int) (*mat.Dense, []float64) {
	var ys []float64
	if y != nil {
		ys = make([]float64, len(idx))
		for i, j := range idx {
			ys[i] = y[j]
		}
	}

	_, c := dims(X)
	if len(idx) == 0 || c == 0 {
		return &mat.Dense{}, ys
	}
	rows := rowViews(X)
	xs := mat.NewDense(len(idx), c, nil)
	for i, j := range idx {
		xs.SetRow(i, rows[j])
	}
	return xs, ys
}
