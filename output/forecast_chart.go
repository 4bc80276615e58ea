package output

import (
	"errors"

	"github.com/Raf-Pimentel/PantanalBurns/internal/dataset"
	"github.com/Raf-Pimentel/PantanalBurns/internal/ml"
)

// WriteSupervisedChart plots observed NBR, the held-out predictions and the recursive
// forecast, shading the forecast period.
func WriteSupervisedChart(outputPath string, rows []dataset.ResultRow, result *ml.SupervisedResult) error {
	if result == nil {
		return errors.New("no supervised result to plot")
	}

	observed := make([]timedValue, len(rows))
	for i, row := range rows {
		observed[i] = timedValue{T: row.Date.Time, V: row.MeanNBR}
	}
	validation := forecastValues(result.TestPredictions, 0)
	future := forecastValues(result.Forecast, 0)

	minT, maxT, minV, maxV, ok := bounds(observed, validation, future)
	if !ok {
		return errors.New("nothing to plot in supervised chart")
	}

	frame := newChartFrame(minT, maxT, minV, maxV)
	frame.drawAxes("NBR forecast: random forest with recursive lag feedback", "Date", "Mean NBR")
	frame.horizontal(0, 0.3)

	if len(observed) > 0 && len(future) > 0 {
		frame.zone(observed[len(observed)-1].T, future[len(future)-1].T, red, 0.06)
	}
	frame.line(observed, green, 2.5, false)
	frame.markers(observed, green, 3)
	frame.markers(validation, orange, 5)
	if len(observed) > 0 && len(future) > 0 {
		joined := append([]timedValue{observed[len(observed)-1]}, future...)
		frame.line(joined, red, 2.5, true)
	}
	frame.markers(future, red, 4)

	frame.legend([]legendEntry{
		{Label: "Observed NBR", Color: green},
		{Label: "Validation predictions", Color: orange},
		{Label: "Recursive forecast", Color: red, Dashed: true},
	})

	return frame.save(outputPath)
}
