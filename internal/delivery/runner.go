package delivery

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/Raf-Pimentel/PantanalBurns/internal/cache"
	"github.com/Raf-Pimentel/PantanalBurns/internal/dataset"
	"github.com/Raf-Pimentel/PantanalBurns/internal/ml"
	"github.com/Raf-Pimentel/PantanalBurns/internal/notification"
	"github.com/Raf-Pimentel/PantanalBurns/internal/observability"
	"github.com/Raf-Pimentel/PantanalBurns/internal/properties"
	"github.com/Raf-Pimentel/PantanalBurns/internal/sentinel"
	"github.com/Raf-Pimentel/PantanalBurns/internal/ui"
	"github.com/jonboulle/clockwork"
)

const (
	ResultTableFile        = "temporal_results.csv"
	RegionalChartFile      = "regional_analysis.png"
	SupervisedChartFile    = "ml_nbr_forecast.png"
	ClassicalForecastFile  = "classical_forecast.csv"
	SupervisedForecastFile = "supervised_forecast.csv"
	EvaluationReportFile   = "evaluation.txt"
)

// Runner wires configuration, extraction, forecasting and reporting into one batch run.
type Runner struct {
	cfg          *properties.Config
	extractor    sentinel.Extractor
	metrics      *observability.Metrics
	notifier     *notification.Notifier
	clock        clockwork.Clock
	showProgress bool
	supervised   *ml.SupervisedForecaster
}

type Option func(*Runner)

func WithExtractor(e sentinel.Extractor) Option {
	return func(r *Runner) { r.extractor = e }
}

func WithClock(c clockwork.Clock) Option {
	return func(r *Runner) { r.clock = c }
}

func WithMetrics(m *observability.Metrics) Option {
	return func(r *Runner) { r.metrics = m }
}

func WithNotifier(n *notification.Notifier) Option {
	return func(r *Runner) { r.notifier = n }
}

func WithProgress(show bool) Option {
	return func(r *Runner) { r.showProgress = show }
}

func WithSupervisedForecaster(s *ml.SupervisedForecaster) Option {
	return func(r *Runner) { r.supervised = s }
}

func NewRunner(cfg *properties.Config, opts ...Option) *Runner {
	r := &Runner{
		cfg:      cfg,
		metrics:  observability.NewMetrics(),
		notifier: notification.NewNotifier(cfg.DiscordSuccessURL, cfg.DiscordWarningURL, cfg.DiscordErrorURL),
		clock:    clockwork.NewRealClock(),
	}
	for _, opt := range opts {
		opt(r)
	}

	if r.extractor == nil {
		var extractor sentinel.Extractor = sentinel.NewGodalExtractor(cfg.ExtractOptions())
		if cfg.CacheEnabled {
			extractor = sentinel.NewCachedExtractor(extractor, cfg.ExtractOptions(), cache.NewFileCache[sentinel.Result](cfg.CacheDir()))
		}
		r.extractor = extractor
	}
	if r.supervised == nil {
		supervisedOpts := cfg.SupervisedOptions()
		supervisedOpts.Forest.ShowProgress = r.showProgress
		r.supervised = ml.NewSupervisedForecaster(supervisedOpts)
	}
	return r
}

func (r *Runner) Metrics() *observability.Metrics {
	return r.metrics
}

type StageTiming struct {
	Stage    string
	Duration time.Duration
}

// Report describes what a run produced. A nil forecast with its error set means the
// forecast was unavailable and the run went on without it.
type Report struct {
	ScenesMerged  int
	Rows          []dataset.ResultRow
	Series        map[string][]dataset.SeriesPoint
	Classical     *ml.ClassicalForecast
	ClassicalErr  error
	Supervised    *ml.SupervisedResult
	SupervisedErr error
	Timings       []StageTiming
	Outputs       []string
}

func (r *Report) ScenesDropped() int {
	return r.ScenesMerged - len(r.Rows)
}

func (r *Report) Summary() string {
	summary := fmt.Sprintf("Scenes merged: %d\nRows in result table: %d (dropped %d)", r.ScenesMerged, len(r.Rows), r.ScenesDropped())
	if r.Classical != nil {
		summary += fmt.Sprintf("\nClassical forecast: %d points", len(r.Classical.Points))
	} else {
		summary += "\nClassical forecast: unavailable"
	}
	if r.Supervised != nil {
		summary += fmt.Sprintf("\nSupervised forecast: %d points, R² %.4f, MAE %.4f",
			len(r.Supervised.Forecast), r.Supervised.Evaluation.R2, r.Supervised.Evaluation.MAE)
	} else {
		summary += "\nSupervised forecast: unavailable"
	}
	return summary
}

// stage runs fn and records how long it took.
func (r *Runner) stage(report *Report, name string, fn func() error) error {
	start := r.clock.Now()
	err := fn()
	elapsed := r.clock.Since(start)

	report.Timings = append(report.Timings, StageTiming{Stage: name, Duration: elapsed})
	r.metrics.ObserveStage(name, elapsed.Seconds())
	fmt.Printf("%s took %v\n", name, elapsed)
	return err
}

func (r *Runner) resultPath(name string) string {
	return filepath.Join(r.cfg.ResultDir(), name)
}

// finish exports metrics and sends the notification matching the outcome.
func (r *Runner) finish(report *Report, runErr error) {
	r.metrics.MarkFinished(float64(r.clock.Now().Unix()))
	if err := r.metrics.WriteTextfile(r.cfg.MetricsTextfile); err != nil {
		ui.PrintWarning("%v", err)
	}

	if runErr != nil {
		ui.PrintError("%v", runErr)
		if err := r.notifier.SendError(runErr.Error()); err != nil {
			ui.PrintWarning("Failed to send notification: %v", err)
		}
		return
	}

	if dropped := report.ScenesDropped(); dropped > 0 {
		msg := fmt.Sprintf("%d of %d scenes were left out of the result table", dropped, report.ScenesMerged)
		if err := r.notifier.SendWarning(msg); err != nil {
			ui.PrintWarning("Failed to send notification: %v", err)
		}
	}
	if err := r.notifier.SendSuccess(report.Summary()); err != nil {
		ui.PrintWarning("Failed to send notification: %v", err)
	}
}
