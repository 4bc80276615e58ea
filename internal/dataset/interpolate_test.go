package dataset

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func points(dates []string, values []float64) []SeriesPoint {
	out := make([]SeriesPoint, len(dates))
	for i := range dates {
		out[i] = SeriesPoint{Date: day(dates[i]), Value: values[i]}
	}
	return out
}

func TestInterpolateTime_WeightsByElapsedTime(t *testing.T) {
	nan := math.NaN()
	in := points(
		[]string{"2024-01-01", "2024-01-04", "2024-01-11"},
		[]float64{0.1, nan, 0.6},
	)

	out, err := InterpolateTime(in)
	require.NoError(t, err)

	// 3 of 10 days elapsed
	assert.InDelta(t, 0.1+0.5*0.3, out[1].Value, 1e-12)
	assert.True(t, math.IsNaN(in[1].Value), "input must not be modified")
}

func TestInterpolateTime_ExactLinearValueBetweenKnownPoints(t *testing.T) {
	nan := math.NaN()
	in := points(
		[]string{"2024-03-01", "2024-03-05", "2024-03-20", "2024-03-31"},
		[]float64{-0.2, nan, nan, 0.4},
	)

	out, err := InterpolateTime(in)
	require.NoError(t, err)

	span := out[3].Date.Sub(out[0].Date).Hours()
	for i := 1; i <= 2; i++ {
		frac := out[i].Date.Sub(out[0].Date).Hours() / span
		assert.InDelta(t, -0.2+0.6*frac, out[i].Value, 1e-12)
	}
}

func TestInterpolateTime_EdgeFill(t *testing.T) {
	nan := math.NaN()
	in := points(
		[]string{"2024-01-01", "2024-02-01", "2024-03-01", "2024-04-01", "2024-05-01"},
		[]float64{nan, nan, 0.3, 0.5, nan},
	)

	out, err := InterpolateTime(in)
	require.NoError(t, err)

	assert.Equal(t, 0.3, out[0].Value)
	assert.Equal(t, 0.3, out[1].Value)
	assert.Equal(t, 0.5, out[4].Value)
	for _, p := range out {
		assert.False(t, p.Missing())
	}
}

func TestInterpolateTime_SingleObservationFillsEverything(t *testing.T) {
	nan := math.NaN()
	out, err := InterpolateTime(points(
		[]string{"2024-01-01", "2024-02-01", "2024-03-01"},
		[]float64{nan, 0.25, nan},
	))
	require.NoError(t, err)
	for _, p := range out {
		assert.Equal(t, 0.25, p.Value)
	}
}

func TestInterpolateTime_NoObservations(t *testing.T) {
	nan := math.NaN()
	_, err := InterpolateTime(points([]string{"2024-01-01", "2024-02-01"}, []float64{nan, nan}))
	assert.True(t, errors.Is(err, ErrNoObservations))
}
