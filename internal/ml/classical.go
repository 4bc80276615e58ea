package ml

import (
	"fmt"
	"math"
	"time"

	"github.com/Raf-Pimentel/PantanalBurns/internal/dataset"
	"github.com/Raf-Pimentel/PantanalBurns/internal/utils"
)

// ForecastPoint is one predicted index value.
type ForecastPoint struct {
	Date           time.Time
	PredictedValue float64
}

type ClassicalOptions struct {
	Order     ARIMAOrder
	Horizon   int
	Frequency Frequency
}

func DefaultClassicalOptions() ClassicalOptions {
	return ClassicalOptions{
		Order:     ARIMAOrder{P: 5, D: 1, Q: 0},
		Horizon:   6,
		Frequency: FrequencyMonthEnd,
	}
}

type ClassicalForecast struct {
	Order     ARIMAOrder
	AR        []float64
	MA        []float64
	Intercept float64
	Points    []ForecastPoint
}

type ClassicalForecaster struct {
	opts ClassicalOptions
}

func NewClassicalForecaster(opts ClassicalOptions) *ClassicalForecaster {
	return &ClassicalForecaster{opts: opts}
}

// Forecast fits the model on the whole series and predicts Horizon points dated from
// the last observation. Every failure wraps ErrModelFit.
func (c *ClassicalForecaster) Forecast(series []dataset.SeriesPoint) (*ClassicalForecast, error) {
	if c.opts.Horizon < 1 {
		return nil, fmt.Errorf("%w: horizon must be at least 1, got %d", ErrModelFit, c.opts.Horizon)
	}

	if !utils.IsSortedByDate(series, func(p dataset.SeriesPoint) time.Time { return p.Date }) {
		return nil, fmt.Errorf("%w: series is not ordered by date", ErrModelFit)
	}

	values := make([]float64, len(series))
	for i, p := range series {
		if math.IsNaN(p.Value) || math.IsInf(p.Value, 0) {
			return nil, fmt.Errorf("%w: series has a missing value at %s", ErrModelFit, p.Date.Format(dataset.DateLayout))
		}
		values[i] = p.Value
	}

	model, err := fitARIMA(values, c.opts.Order)
	if err != nil {
		return nil, err
	}

	dates, err := FutureDates(series[len(series)-1].Date, c.opts.Horizon, c.opts.Frequency)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrModelFit, err)
	}

	predictions := model.forecast(c.opts.Horizon)
	points := make([]ForecastPoint, c.opts.Horizon)
	for i := range points {
		if math.IsNaN(predictions[i]) || math.IsInf(predictions[i], 0) {
			return nil, fmt.Errorf("%w: forecast diverged at step %d", ErrModelFit, i+1)
		}
		points[i] = ForecastPoint{Date: dates[i], PredictedValue: predictions[i]}
	}

	return &ClassicalForecast{
		Order:     c.opts.Order,
		AR:        model.ar,
		MA:        model.ma,
		Intercept: model.intercept,
		Points:    points,
	}, nil
}
