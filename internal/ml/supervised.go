package ml

import (
	"errors"
	"fmt"
	"time"

	"github.com/Raf-Pimentel/PantanalBurns/internal/dataset"
	"github.com/Raf-Pimentel/PantanalBurns/internal/utils"
)

// Regressor is a model trained on feature rows laid out by FeatureVector.
type Regressor interface {
	Fit(X [][]float64, y []float64) error
	Predict(x []float64) float64
}

// FeatureNames lists the columns of FeatureVector in order.
var FeatureNames = []string{"days_since_start", "month", "day_of_year", "nbr_lag1", "ndvi_lag1"}

func FeatureVector(daysSinceStart int, date time.Time, nbrLag1, ndviLag1 float64) []float64 {
	return []float64{
		float64(daysSinceStart),
		float64(date.Month()),
		float64(date.YearDay()),
		nbrLag1,
		ndviLag1,
	}
}

func featureVectorOf(f dataset.FeatureRow) []float64 {
	return FeatureVector(f.DaysSinceStart, f.Date.Time, f.NBRLag1, f.NDVILag1)
}

type SupervisedOptions struct {
	TrainRatio float64
	Horizon    int
	StepDays   int
	Forest     ForestOptions
}

func DefaultSupervisedOptions() SupervisedOptions {
	return SupervisedOptions{
		TrainRatio: 0.8,
		Horizon:    12,
		StepDays:   30,
		Forest:     DefaultForestOptions(),
	}
}

type SupervisedResult struct {
	Train           []dataset.FeatureRow
	Test            []dataset.FeatureRow
	TestPredictions []ForecastPoint
	Evaluation      Evaluation
	Forecast        []ForecastPoint
}

type SupervisedForecaster struct {
	opts     SupervisedOptions
	newModel func() Regressor
}

func NewSupervisedForecaster(opts SupervisedOptions) *SupervisedForecaster {
	return &SupervisedForecaster{
		opts:     opts,
		newModel: func() Regressor { return NewRandomForest(opts.Forest) },
	}
}

// WithRegressor replaces the forest with another model.
func (s *SupervisedForecaster) WithRegressor(newModel func() Regressor) *SupervisedForecaster {
	s.newModel = newModel
	return s
}

// TemporalSplit keeps row order: the first int(n*ratio) rows train, the rest test.
func TemporalSplit(features []dataset.FeatureRow, ratio float64) ([]dataset.FeatureRow, []dataset.FeatureRow, error) {
	if len(features) == 0 {
		return nil, nil, ErrInsufficientData
	}
	if ratio <= 0 || ratio >= 1 {
		return nil, nil, fmt.Errorf("train ratio must be in (0, 1), got %v", ratio)
	}

	split := int(float64(len(features)) * ratio)
	if split == 0 {
		return nil, nil, fmt.Errorf("%w: %d feature rows leave no training rows at ratio %v", ErrModelFit, len(features), ratio)
	}
	return features[:split], features[split:], nil
}

// ForecastRecursive predicts horizon steps of stepDays each, starting from last. Each
// prediction becomes the NBR lag of the next step. The NDVI lag stays at last's value.
func ForecastRecursive(model Regressor, last dataset.ResultRow, horizon, stepDays int) []ForecastPoint {
	currentNBR := last.MeanNBR
	currentNDVI := last.MeanNDVI

	out := make([]ForecastPoint, 0, horizon)
	for i := 1; i <= horizon; i++ {
		date := last.Date.AddDate(0, 0, stepDays*i)
		days := last.DaysSinceStart + stepDays*i

		pred := model.Predict(FeatureVector(days, date, currentNBR, currentNDVI))
		out = append(out, ForecastPoint{Date: date, PredictedValue: pred})
		currentNBR = pred
	}
	return out
}

// Run builds features, trains on the earliest rows, scores on the latest and forecasts
// past the last row. ErrInsufficientData is returned when no feature row survives
// the lag; every other failure wraps ErrModelFit.
func (s *SupervisedForecaster) Run(rows []dataset.ResultRow) (result *SupervisedResult, err error) {
	defer func() {
		if r := recover(); r != nil {
			result, err = nil, fmt.Errorf("%w: %v", ErrModelFit, r)
		}
	}()

	if s.opts.Horizon < 1 || s.opts.StepDays < 1 {
		return nil, fmt.Errorf("%w: horizon %d and step %d days must be positive", ErrModelFit, s.opts.Horizon, s.opts.StepDays)
	}

	features, err := dataset.BuildFeatures(rows)
	if err != nil {
		return nil, err
	}

	train, test, err := TemporalSplit(features, s.opts.TrainRatio)
	if err != nil {
		return nil, err
	}

	X := make([][]float64, len(train))
	y := make([]float64, len(train))
	for i, f := range train {
		X[i] = featureVectorOf(f)
		y[i] = f.Target()
	}

	model := s.newModel()
	if err := model.Fit(X, y); err != nil {
		if errors.Is(err, ErrModelFit) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", ErrModelFit, err)
	}

	predictions := make([]ForecastPoint, len(test))
	actual := make([]float64, len(test))
	predicted := make([]float64, len(test))
	for i, f := range test {
		predicted[i] = model.Predict(featureVectorOf(f))
		actual[i] = f.Target()
		predictions[i] = ForecastPoint{Date: f.Date.Time, PredictedValue: predicted[i]}
	}
	r2, mae := Evaluate(actual, predicted)

	sorted := utils.SortByDate(rows, func(r dataset.ResultRow) time.Time { return r.Date.Time }, true)
	last := sorted[len(sorted)-1]

	return &SupervisedResult{
		Train:           train,
		Test:            test,
		TestPredictions: predictions,
		Evaluation: Evaluation{
			R2:        r2,
			MAE:       mae,
			TrainSize: len(train),
			TestSize:  len(test),
		},
		Forecast: ForecastRecursive(model, last, s.opts.Horizon, s.opts.StepDays),
	}, nil
}
