package output

import (
	"errors"

	"github.com/Raf-Pimentel/PantanalBurns/internal/dataset"
	"github.com/Raf-Pimentel/PantanalBurns/internal/ml"
)

// ForecastBand is the half width of the shaded area drawn around the classical forecast.
const ForecastBand = 0.03

func seriesValues(points []dataset.SeriesPoint) []timedValue {
	out := make([]timedValue, len(points))
	for i, p := range points {
		out[i] = timedValue{T: p.Date, V: p.Value}
	}
	return out
}

func forecastValues(points []ml.ForecastPoint, offset float64) []timedValue {
	out := make([]timedValue, len(points))
	for i, p := range points {
		out[i] = timedValue{T: p.Date, V: p.PredictedValue + offset}
	}
	return out
}

// WriteRegionalChart plots the regional NBR and NDVI means. The classical forecast is
// overlaid with its band when forecast is not nil.
func WriteRegionalChart(outputPath string, nbr, ndvi []dataset.SeriesPoint, forecast *ml.ClassicalForecast) error {
	nbrLine := seriesValues(nbr)
	ndviLine := seriesValues(ndvi)

	var predicted, lower, upper []timedValue
	if forecast != nil {
		predicted = forecastValues(forecast.Points, 0)
		lower = forecastValues(forecast.Points, -ForecastBand)
		upper = forecastValues(forecast.Points, ForecastBand)
	}

	minT, maxT, minV, maxV, ok := bounds(nbrLine, ndviLine, lower, upper)
	if !ok {
		return errors.New("nothing to plot in regional chart")
	}

	frame := newChartFrame(minT, maxT, minV, maxV)
	frame.drawAxes("Post-fire recovery dynamics in the Pantanal (mean of all pixels)", "Year", "Mean index value")
	frame.horizontal(0, 0.3)

	entries := []legendEntry{
		{Label: "Regional mean NBR (vegetation)", Color: green},
		{Label: "Regional mean NDVI", Color: blue, Dashed: true},
	}

	frame.line(nbrLine, green, 2.5, false)
	frame.line(ndviLine, blue, 1.5, true)
	if forecast != nil {
		frame.band(lower, upper, red, 0.1)
		frame.line(predicted, red, 3, true)
		frame.markers(predicted, red, 5)
		entries = append(entries, legendEntry{Label: "Recovery trend (ARIMA" + forecast.Order.String() + ")", Color: red, Dashed: true})
	}
	frame.legend(entries)

	return frame.save(outputPath)
}
