package delivery

import (
	"errors"

	"github.com/Raf-Pimentel/PantanalBurns/internal/dataset"
	"github.com/Raf-Pimentel/PantanalBurns/internal/ml"
	"github.com/Raf-Pimentel/PantanalBurns/internal/ui"
	"github.com/Raf-Pimentel/PantanalBurns/output"
)

// Run executes the whole pipeline: extraction, both forecasts and every output.
// Forecast failures only mark that forecast unavailable. Missing manifests, an empty
// merge and a feature table with no rows abort the run.
func (r *Runner) Run() (*Report, error) {
	start := r.clock.Now()
	report := &Report{}

	err := r.extract(report)
	if err == nil {
		r.classicalForecast(report)
		err = r.supervisedForecast(report)
	}
	if err == nil {
		r.writeOutputs(report)
		ui.PrintSuccess("\n%s", report.Summary())
	}

	ui.PrintInfo("Total run execution time: %v", r.clock.Since(start))
	r.finish(report, err)
	return report, err
}

// Forecast runs the supervised model on an existing result table.
func (r *Runner) Forecast(rows []dataset.ResultRow) (*Report, error) {
	report := &Report{ScenesMerged: len(rows), Rows: rows}

	err := r.supervisedForecast(report)
	if err == nil {
		r.writeOutputs(report)
		ui.PrintSuccess("\n%s", report.Summary())
	}

	r.finish(report, err)
	return report, err
}

func (r *Runner) classicalForecast(report *Report) {
	_ = r.stage(report, "ClassicalForecast", func() error {
		nbr, ok := report.Series[dataset.IndexNBR]
		if !ok {
			report.ClassicalErr = errors.New("no regional NBR series")
		} else {
			report.Classical, report.ClassicalErr = ml.NewClassicalForecaster(r.cfg.ClassicalOptions()).Forecast(nbr)
		}

		r.metrics.SetForecastAvailable("classical", report.Classical != nil)
		if report.ClassicalErr != nil {
			ui.PrintWarning("Classical forecast unavailable: %v", report.ClassicalErr)
		}
		return nil
	})
}

func (r *Runner) supervisedForecast(report *Report) error {
	return r.stage(report, "SupervisedForecast", func() error {
		result, err := r.supervised.Run(report.Rows)
		r.metrics.SetForecastAvailable("supervised", err == nil)

		if errors.Is(err, ml.ErrInsufficientData) {
			return err
		}
		if err != nil {
			report.SupervisedErr = err
			ui.PrintWarning("Supervised forecast unavailable: %v", err)
			return nil
		}

		report.Supervised = result
		r.metrics.SetEvaluation(result.Evaluation.R2, result.Evaluation.MAE)
		ui.PrintInfo("R² Score: %.4f", result.Evaluation.R2)
		ui.PrintInfo("MAE: %.4f", result.Evaluation.MAE)
		return nil
	})
}

// writeOutputs renders charts, forecast tables and the evaluation report. A failed
// output is reported and skipped.
func (r *Runner) writeOutputs(report *Report) {
	_ = r.stage(report, "WriteOutputs", func() error {
		write := func(name string, fn func(path string) error) {
			path := r.resultPath(name)
			if err := fn(path); err != nil {
				ui.PrintWarning("Failed to write %s: %v", name, err)
				return
			}
			report.Outputs = append(report.Outputs, path)
		}

		if nbr, ok := report.Series[dataset.IndexNBR]; ok {
			write(RegionalChartFile, func(path string) error {
				return output.WriteRegionalChart(path, nbr, report.Series[dataset.IndexNDVI], report.Classical)
			})
		}
		if report.Classical != nil {
			write(ClassicalForecastFile, func(path string) error {
				return output.WriteForecastCSV(path, report.Classical.Points)
			})
		}
		if report.Supervised != nil {
			write(SupervisedForecastFile, func(path string) error {
				return output.WriteForecastCSV(path, report.Supervised.Forecast)
			})
			write(SupervisedChartFile, func(path string) error {
				return output.WriteSupervisedChart(path, report.Rows, report.Supervised)
			})
			write(EvaluationReportFile, func(path string) error {
				return output.WriteEvaluationReport(path, report.Supervised.Evaluation)
			})
		}

		for _, path := range report.Outputs {
			ui.PrintSuccess("Saved %s", path)
		}
		return nil
	})
}
