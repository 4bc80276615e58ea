package observability

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the counters and gauges of one pipeline run. A nil *Metrics is valid
// and records nothing, so library code never has to check for it.
type Metrics struct {
	registry *prometheus.Registry

	ScenesMerged      prometheus.Gauge
	RastersExtracted  *prometheus.CounterVec   // labels: index, status={ok,file_unreadable,no_valid_pixels}
	RowsWritten       prometheus.Gauge
	ScenesDropped     prometheus.Gauge
	ForecastAvailable *prometheus.GaugeVec     // labels: model={classical,supervised}
	ModelR2           prometheus.Gauge
	ModelMAE          prometheus.Gauge
	StageDuration     *prometheus.HistogramVec // labels: stage
	LastRunTimestamp  prometheus.Gauge
}

// NewMetrics creates all run metrics on a private registry. The run writes that
// registry to a node-exporter textfile at the end, so nothing is served over HTTP.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		ScenesMerged: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "pantanal",
			Name:      "scenes_merged",
			Help:      "Scenes present in both index manifests.",
		}),
		RastersExtracted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "pantanal",
			Name:      "rasters_extracted_total",
			Help:      "Raster statistic extractions by index and outcome.",
		}, []string{"index", "status"}),
		RowsWritten: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "pantanal",
			Name:      "result_rows",
			Help:      "Rows in the result table after dropping incomplete scenes.",
		}),
		ScenesDropped: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "pantanal",
			Name:      "scenes_dropped",
			Help:      "Merged scenes left out of the result table.",
		}),
		ForecastAvailable: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "pantanal",
			Name:      "forecast_available",
			Help:      "1 when the model produced a forecast in the last run.",
		}, []string{"model"}),
		ModelR2: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "pantanal",
			Name:      "supervised_r2",
			Help:      "Coefficient of determination on the held-out partition.",
		}),
		ModelMAE: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "pantanal",
			Name:      "supervised_mae",
			Help:      "Mean absolute error on the held-out partition.",
		}),
		StageDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "pantanal",
			Name:      "stage_duration_seconds",
			Help:      "Wall time of each pipeline stage.",
			Buckets:   []float64{0.1, 0.5, 1, 5, 15, 30, 60, 300, 900},
		}, []string{"stage"}),
		LastRunTimestamp: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "pantanal",
			Name:      "last_run_timestamp_seconds",
			Help:      "Unix time at which the last run finished.",
		}),
	}

	m.registry.MustRegister(
		m.ScenesMerged,
		m.RastersExtracted,
		m.RowsWritten,
		m.ScenesDropped,
		m.ForecastAvailable,
		m.ModelR2,
		m.ModelMAE,
		m.StageDuration,
		m.LastRunTimestamp,
	)

	return m
}

func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

func (m *Metrics) ObserveExtraction(index, status string) {
	if m == nil {
		return
	}
	m.RastersExtracted.WithLabelValues(index, status).Inc()
}

func (m *Metrics) ObserveStage(stage string, seconds float64) {
	if m == nil {
		return
	}
	m.StageDuration.WithLabelValues(stage).Observe(seconds)
}

func (m *Metrics) SetForecastAvailable(model string, available bool) {
	if m == nil {
		return
	}
	v := 0.0
	if available {
		v = 1
	}
	m.ForecastAvailable.WithLabelValues(model).Set(v)
}

func (m *Metrics) SetTable(merged, rows int) {
	if m == nil {
		return
	}
	m.ScenesMerged.Set(float64(merged))
	m.RowsWritten.Set(float64(rows))
	m.ScenesDropped.Set(float64(merged - rows))
}

func (m *Metrics) SetEvaluation(r2, mae float64) {
	if m == nil {
		return
	}
	m.ModelR2.Set(r2)
	m.ModelMAE.Set(mae)
}

func (m *Metrics) MarkFinished(unixSeconds float64) {
	if m == nil {
		return
	}
	m.LastRunTimestamp.Set(unixSeconds)
}

// WriteTextfile dumps the registry in the text exposition format for the
// node-exporter textfile collector.
func (m *Metrics) WriteTextfile(path string) error {
	if m == nil || path == "" {
		return nil
	}
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("failed to write metrics textfile %s: %w", path, err)
	}
	return nil
}
