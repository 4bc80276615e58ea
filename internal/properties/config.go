package properties

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/Raf-Pimentel/PantanalBurns/internal/dataset"
	"github.com/Raf-Pimentel/PantanalBurns/internal/ml"
	"github.com/Raf-Pimentel/PantanalBurns/internal/sentinel"
)

// Config holds every tunable of a pipeline run, populated from environment variables.
type Config struct {
	RootPath     string
	NBRManifest  string
	NDVIManifest string
	NBRBaseDir   string
	NDVIBaseDir  string

	ValidRange sentinel.ValidRange
	Rescale    sentinel.RescalePolicy

	ARIMAOrder     ml.ARIMAOrder
	ARIMAHorizon   int
	ARIMAFrequency ml.Frequency

	ForestTrees    int
	ForestSeed     uint64
	ForestMinLeaf  int
	ForestMaxDepth int

	TrainRatio       float64
	ForecastHorizon  int
	ForecastStepDays int

	// SeriesGapPolicy builds the regional series that feeds the chart and the
	// classical forecast. The result table always drops incomplete scenes.
	SeriesGapPolicy dataset.GapPolicy

	Workers         int
	CacheEnabled    bool
	MetricsTextfile string

	DiscordSuccessURL string
	DiscordWarningURL string
	DiscordErrorURL   string
}

// envReader keeps the first parse failure so Load can report it once.
type envReader struct {
	err error
}

func (r *envReader) fail(key, value string, err error) {
	if r.err == nil {
		r.err = fmt.Errorf("invalid %s %q: %w", key, value, err)
	}
}

func (r *envReader) int(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		r.fail(key, v, err)
		return fallback
	}
	return n
}

func (r *envReader) uint(key string, fallback uint64) uint64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.ParseUint(v, 10, 64)
	if err != nil {
		r.fail(key, v, err)
		return fallback
	}
	return n
}

func (r *envReader) float(key string, fallback float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		r.fail(key, v, err)
		return fallback
	}
	return f
}

func (r *envReader) bool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		r.fail(key, v, err)
		return fallback
	}
	return b
}

// Load reads configuration from environment variables, applying defaults where unset.
// Relative manifest paths are taken from ROOT_PATH.
func Load() (*Config, error) {
	r := &envReader{}
	root := RootPath()

	freq, err := ml.ParseFrequency(envOrDefault("ARIMA_FREQUENCY", string(ml.FrequencyMonthEnd)))
	if err != nil {
		return nil, fmt.Errorf("invalid ARIMA_FREQUENCY: %w", err)
	}

	seriesPolicy, err := dataset.ParseGapPolicy(envOrDefault("SERIES_GAP_POLICY", dataset.GapPolicyInterpolate.String()))
	if err != nil {
		return nil, fmt.Errorf("invalid SERIES_GAP_POLICY: %w", err)
	}

	cfg := &Config{
		RootPath:     root,
		NBRManifest:  underRoot(root, envOrDefault("NBR_MANIFEST", filepath.Join("_NBR_OUT", "manifest_nbr.csv"))),
		NDVIManifest: underRoot(root, envOrDefault("NDVI_MANIFEST", filepath.Join("_NDVI_OUT", "manifest_ndvi.csv"))),
		NBRBaseDir:   underRoot(root, os.Getenv("NBR_RASTER_DIR")),
		NDVIBaseDir:  underRoot(root, os.Getenv("NDVI_RASTER_DIR")),

		ValidRange: sentinel.ValidRange{
			Min: r.float("VALID_MIN", -1.1),
			Max: r.float("VALID_MAX", 1.1),
		},
		Rescale: sentinel.RescalePolicy{
			Enabled:   r.bool("RESCALE_ENABLED", true),
			Threshold: r.float("RESCALE_THRESHOLD", 10),
			Factor:    r.float("RESCALE_FACTOR", 0.0001),
		},

		ARIMAOrder: ml.ARIMAOrder{
			P: r.int("ARIMA_P", 5),
			D: r.int("ARIMA_D", 1),
			Q: r.int("ARIMA_Q", 0),
		},
		ARIMAHorizon:   r.int("ARIMA_HORIZON", 6),
		ARIMAFrequency: freq,

		ForestTrees:    r.int("FOREST_TREES", 200),
		ForestSeed:     r.uint("FOREST_SEED", 42),
		ForestMinLeaf:  r.int("FOREST_MIN_LEAF", 1),
		ForestMaxDepth: r.int("FOREST_MAX_DEPTH", 0),

		TrainRatio:       r.float("TRAIN_RATIO", 0.8),
		ForecastHorizon:  r.int("FORECAST_HORIZON", 12),
		ForecastStepDays: r.int("FORECAST_STEP_DAYS", 30),

		SeriesGapPolicy: seriesPolicy,

		Workers:         r.int("EXTRACT_WORKERS", 1),
		CacheEnabled:    r.bool("CACHE_ENABLED", true),
		MetricsTextfile: os.Getenv("METRICS_TEXTFILE"),

		DiscordSuccessURL: DiscordSuccessNotificationUrl(),
		DiscordWarningURL: DiscordWarningNotificationUrl(),
		DiscordErrorURL:   DiscordErrorNotificationUrl(),
	}
	if r.err != nil {
		return nil, r.err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	switch {
	case c.NBRManifest == "" || c.NDVIManifest == "":
		return errors.New("both NBR_MANIFEST and NDVI_MANIFEST are required")
	case c.ValidRange.Min >= c.ValidRange.Max:
		return fmt.Errorf("VALID_MIN (%v) must be below VALID_MAX (%v)", c.ValidRange.Min, c.ValidRange.Max)
	case c.Rescale.Enabled && (c.Rescale.Threshold <= 0 || c.Rescale.Factor <= 0):
		return errors.New("RESCALE_THRESHOLD and RESCALE_FACTOR must be positive")
	case c.ARIMAOrder.Validate() != nil:
		return c.ARIMAOrder.Validate()
	case c.ARIMAHorizon < 1:
		return fmt.Errorf("ARIMA_HORIZON must be at least 1, got %d", c.ARIMAHorizon)
	case c.ForestTrees < 1:
		return fmt.Errorf("FOREST_TREES must be at least 1, got %d", c.ForestTrees)
	case c.ForestMinLeaf < 1:
		return fmt.Errorf("FOREST_MIN_LEAF must be at least 1, got %d", c.ForestMinLeaf)
	case c.ForestMaxDepth < 0:
		return fmt.Errorf("FOREST_MAX_DEPTH must not be negative, got %d", c.ForestMaxDepth)
	case c.TrainRatio <= 0 || c.TrainRatio >= 1:
		return fmt.Errorf("TRAIN_RATIO must be in (0, 1), got %v", c.TrainRatio)
	case c.ForecastHorizon < 1:
		return fmt.Errorf("FORECAST_HORIZON must be at least 1, got %d", c.ForecastHorizon)
	case c.ForecastStepDays < 1:
		return fmt.Errorf("FORECAST_STEP_DAYS must be positive, got %d", c.ForecastStepDays)
	case c.Workers < 1:
		return fmt.Errorf("EXTRACT_WORKERS must be at least 1, got %d", c.Workers)
	}
	return nil
}

func (c *Config) ResultDir() string {
	return filepath.Join(c.RootPath, "data", "result")
}

func (c *Config) CacheDir() string {
	return filepath.Join(c.RootPath, "data", "cache", "stats")
}

func (c *Config) ResultTablePath() string {
	return filepath.Join(c.ResultDir(), "temporal_results.csv")
}

func (c *Config) ExtractOptions() sentinel.Options {
	return sentinel.Options{Range: c.ValidRange, Rescale: c.Rescale}
}

func (c *Config) IndexSources() []dataset.IndexSource {
	return dataset.DefaultIndexSources(c.NBRBaseDir, c.NDVIBaseDir)
}

func (c *Config) ClassicalOptions() ml.ClassicalOptions {
	return ml.ClassicalOptions{
		Order:     c.ARIMAOrder,
		Horizon:   c.ARIMAHorizon,
		Frequency: c.ARIMAFrequency,
	}
}

func (c *Config) SupervisedOptions() ml.SupervisedOptions {
	return ml.SupervisedOptions{
		TrainRatio: c.TrainRatio,
		Horizon:    c.ForecastHorizon,
		StepDays:   c.ForecastStepDays,
		Forest: ml.ForestOptions{
			Trees:    c.ForestTrees,
			Seed:     c.ForestSeed,
			MinLeaf:  c.ForestMinLeaf,
			MaxDepth: c.ForestMaxDepth,
			Workers:  c.Workers,
		},
	}
}
