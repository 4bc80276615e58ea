package ml

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

type Evaluation struct {
	R2        float64
	MAE       float64
	TrainSize int
	TestSize  int
}

// Evaluate scores predictions against held-out values. R2 is NaN with fewer than two
// values. A constant target scores 1 when matched exactly and 0 otherwise.
func Evaluate(actual, predicted []float64) (r2, mae float64) {
	n := len(actual)
	if n == 0 || n != len(predicted) {
		return math.NaN(), math.NaN()
	}

	mae = floats.Distance(actual, predicted, 1) / float64(n)
	if n < 2 {
		return math.NaN(), mae
	}

	if stat.Variance(actual, nil) == 0 {
		if mae == 0 {
			return 1, mae
		}
		return 0, mae
	}

	return stat.RSquaredFrom(predicted, actual, nil), mae
}
