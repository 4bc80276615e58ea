package observability

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_RecordAndExport(t *testing.T) {
	m := NewMetrics()

	m.ObserveExtraction("NBR", "ok")
	m.ObserveExtraction("NBR", "ok")
	m.ObserveExtraction("NDVI", "file_unreadable")
	m.SetTable(5, 4)
	m.SetForecastAvailable("classical", true)
	m.SetForecastAvailable("supervised", false)
	m.SetEvaluation(0.81, 0.02)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.RastersExtracted.WithLabelValues("NBR", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.RastersExtracted.WithLabelValues("NDVI", "file_unreadable")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ScenesDropped))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ForecastAvailable.WithLabelValues("classical")))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.ForecastAvailable.WithLabelValues("supervised")))

	path := filepath.Join(t.TempDir(), "pantanal.prom")
	require.NoError(t, m.WriteTextfile(path))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(raw), "pantanal_result_rows 4"))
}

func TestMetrics_NilIsNoop(t *testing.T) {
	var m *Metrics

	assert.NotPanics(t, func() {
		m.ObserveExtraction("NBR", "ok")
		m.ObserveStage("extract", 1)
		m.SetTable(1, 1)
		m.SetForecastAvailable("classical", true)
		m.SetEvaluation(1, 0)
		m.MarkFinished(0)
	})
	assert.NoError(t, m.WriteTextfile("/nonexistent/dir/file.prom"))
	assert.Nil(t, m.Registry())
}
