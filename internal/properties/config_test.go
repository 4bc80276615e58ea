package properties

import (
	"path/filepath"
	"testing"

	"github.com/Raf-Pimentel/PantanalBurns/internal/dataset"
	"github.com/Raf-Pimentel/PantanalBurns/internal/ml"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("ROOT_PATH", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ".", cfg.RootPath)
	assert.Equal(t, filepath.Join("_NBR_OUT", "manifest_nbr.csv"), cfg.NBRManifest)
	assert.Equal(t, filepath.Join("_NDVI_OUT", "manifest_ndvi.csv"), cfg.NDVIManifest)
	assert.Empty(t, cfg.NBRBaseDir)
	assert.Equal(t, -1.1, cfg.ValidRange.Min)
	assert.Equal(t, 1.1, cfg.ValidRange.Max)
	assert.True(t, cfg.Rescale.Enabled)
	assert.Equal(t, 10.0, cfg.Rescale.Threshold)
	assert.Equal(t, 0.0001, cfg.Rescale.Factor)
	assert.Equal(t, ml.ARIMAOrder{P: 5, D: 1, Q: 0}, cfg.ARIMAOrder)
	assert.Equal(t, 6, cfg.ARIMAHorizon)
	assert.Equal(t, ml.FrequencyMonthEnd, cfg.ARIMAFrequency)
	assert.Equal(t, 200, cfg.ForestTrees)
	assert.Equal(t, uint64(42), cfg.ForestSeed)
	assert.Equal(t, 0.8, cfg.TrainRatio)
	assert.Equal(t, 12, cfg.ForecastHorizon)
	assert.Equal(t, 30, cfg.ForecastStepDays)
	assert.Equal(t, 1, cfg.Workers)
	assert.True(t, cfg.CacheEnabled)
	assert.Equal(t, dataset.GapPolicyInterpolate, cfg.SeriesGapPolicy)
	assert.Equal(t, filepath.Join("data", "result", "temporal_results.csv"), cfg.ResultTablePath())
}

func TestLoad_CustomEnv(t *testing.T) {
	t.Setenv("ROOT_PATH", "/srv/pantanal")
	t.Setenv("NBR_MANIFEST", "/data/nbr.csv")
	t.Setenv("NDVI_MANIFEST", "ndvi/manifest.csv")
	t.Setenv("NBR_RASTER_DIR", "rasters/nbr")
	t.Setenv("VALID_MIN", "-11000")
	t.Setenv("VALID_MAX", "11000")
	t.Setenv("RESCALE_ENABLED", "false")
	t.Setenv("ARIMA_P", "2")
	t.Setenv("ARIMA_Q", "1")
	t.Setenv("ARIMA_FREQUENCY", "w")
	t.Setenv("FOREST_TREES", "50")
	t.Setenv("FOREST_SEED", "7")
	t.Setenv("TRAIN_RATIO", "0.75")
	t.Setenv("EXTRACT_WORKERS", "4")
	t.Setenv("CACHE_ENABLED", "false")
	t.Setenv("DISCORD_SUCCESS_NOTIFICATION_URL", "https://discord.test/ok")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "/data/nbr.csv", cfg.NBRManifest)
	assert.Equal(t, filepath.Join("/srv/pantanal", "ndvi", "manifest.csv"), cfg.NDVIManifest)
	assert.Equal(t, filepath.Join("/srv/pantanal", "rasters", "nbr"), cfg.NBRBaseDir)
	assert.Equal(t, -11000.0, cfg.ExtractOptions().Range.Min)
	assert.False(t, cfg.ExtractOptions().Rescale.Enabled)
	assert.Equal(t, ml.ARIMAOrder{P: 2, D: 1, Q: 1}, cfg.ClassicalOptions().Order)
	assert.Equal(t, ml.FrequencyWeekly, cfg.ClassicalOptions().Frequency)

	sup := cfg.SupervisedOptions()
	assert.Equal(t, 0.75, sup.TrainRatio)
	assert.Equal(t, 50, sup.Forest.Trees)
	assert.Equal(t, uint64(7), sup.Forest.Seed)
	assert.Equal(t, 4, sup.Forest.Workers)

	assert.False(t, cfg.CacheEnabled)
	assert.Equal(t, filepath.Join("/srv/pantanal", "data", "cache", "stats"), cfg.CacheDir())
	assert.Equal(t, "https://discord.test/ok", cfg.DiscordWarningURL)
	assert.Len(t, cfg.IndexSources(), 2)
}

func TestLoad_InvalidNumber(t *testing.T) {
	t.Setenv("FOREST_TREES", "lots")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "FOREST_TREES")
}

func TestLoad_InvalidFrequency(t *testing.T) {
	t.Setenv("ARIMA_FREQUENCY", "Q")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ARIMA_FREQUENCY")
}

func TestLoad_SeriesGapPolicy(t *testing.T) {
	t.Setenv("SERIES_GAP_POLICY", "drop")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, dataset.GapPolicyDrop, cfg.SeriesGapPolicy)

	t.Setenv("SERIES_GAP_POLICY", "zero-fill")
	_, err = Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SERIES_GAP_POLICY")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"empty range", func(c *Config) { c.ValidRange.Min = 1.1 }, "VALID_MIN"},
		{"negative order", func(c *Config) { c.ARIMAOrder.P = -1 }, "arima order"},
		{"zero horizon", func(c *Config) { c.ARIMAHorizon = 0 }, "ARIMA_HORIZON"},
		{"no trees", func(c *Config) { c.ForestTrees = 0 }, "FOREST_TREES"},
		{"ratio of one", func(c *Config) { c.TrainRatio = 1 }, "TRAIN_RATIO"},
		{"zero step", func(c *Config) { c.ForecastStepDays = 0 }, "FORECAST_STEP_DAYS"},
		{"no workers", func(c *Config) { c.Workers = 0 }, "EXTRACT_WORKERS"},
		{"missing manifest", func(c *Config) { c.NDVIManifest = "" }, "NDVI_MANIFEST"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Load()
			require.NoError(t, err)

			tt.mutate(cfg)
			err = cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}
