package ml

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func linearData(n int) ([][]float64, []float64) {
	X := make([][]float64, n)
	y := make([]float64, n)
	for i := range X {
		X[i] = []float64{float64(i), float64(i % 4)}
		y[i] = float64(i)
	}
	return X, y
}

func TestRandomForest_ApproximatesTrainingData(t *testing.T) {
	X, y := linearData(20)
	opts := DefaultForestOptions()
	opts.Trees = 50

	forest := NewRandomForest(opts)
	require.NoError(t, forest.Fit(X, y))
	assert.Equal(t, 50, forest.Size())

	for _, i := range []int{3, 10, 16} {
		assert.InDelta(t, y[i], forest.Predict(X[i]), 1.5)
	}
}

func TestRandomForest_SeedMakesRunsReproducible(t *testing.T) {
	X, y := linearData(25)
	opts := DefaultForestOptions()
	opts.Trees = 30

	sequential := NewRandomForest(opts)
	require.NoError(t, sequential.Fit(X, y))

	opts.Workers = 4
	parallel := NewRandomForest(opts)
	require.NoError(t, parallel.Fit(X, y))

	opts.Seed = 7
	reseeded := NewRandomForest(opts)
	require.NoError(t, reseeded.Fit(X, y))

	probe := []float64{12.5, 1}
	assert.Equal(t, sequential.Predict(probe), parallel.Predict(probe))

	differs := false
	for x := 0.5; x < 25; x++ {
		if sequential.Predict([]float64{x, 2}) != reseeded.Predict([]float64{x, 2}) {
			differs = true
			break
		}
	}
	assert.True(t, differs)
}

func TestRandomForest_Unfitted(t *testing.T) {
	assert.True(t, math.IsNaN(NewRandomForest(DefaultForestOptions()).Predict([]float64{1})))
}
