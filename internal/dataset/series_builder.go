package dataset

import (
	"fmt"
	"math"
	"slices"
	"strings"

	"github.com/Raf-Pimentel/PantanalBurns/internal/observability"
	"github.com/Raf-Pimentel/PantanalBurns/internal/sentinel"
	"github.com/Raf-Pimentel/PantanalBurns/internal/ui"
	"github.com/Raf-Pimentel/PantanalBurns/internal/utils"
	"github.com/gammazero/workerpool"
	"github.com/schollz/progressbar/v3"
)

// GapPolicy decides what happens to scenes whose statistics are unavailable.
type GapPolicy int

const (
	// GapPolicyDrop removes a scene from the table when any index is unavailable.
	GapPolicyDrop GapPolicy = iota
	// GapPolicyInterpolate keeps every scene and fills missing values over time.
	GapPolicyInterpolate
)

func (p GapPolicy) String() string {
	switch p {
	case GapPolicyDrop:
		return "drop"
	case GapPolicyInterpolate:
		return "interpolate"
	default:
		return fmt.Sprintf("gap_policy(%d)", int(p))
	}
}

func ParseGapPolicy(s string) (GapPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "drop":
		return GapPolicyDrop, nil
	case "interpolate":
		return GapPolicyInterpolate, nil
	default:
		return 0, fmt.Errorf("unknown gap policy %q (want drop or interpolate)", s)
	}
}

// IndexSource maps a logical index to its manifest column and the local directory
// its rasters live in.
type IndexSource struct {
	Name    string
	Column  string
	BaseDir string
}

func DefaultIndexSources(nbrBaseDir, ndviBaseDir string) []IndexSource {
	return []IndexSource{
		{Name: IndexNBR, Column: ColumnNBRPath, BaseDir: nbrBaseDir},
		{Name: IndexNDVI, Column: ColumnNDVIPath, BaseDir: ndviBaseDir},
	}
}

type BuilderOptions struct {
	Indexes []IndexSource
	// Workers above 1 extracts scenes on a worker pool. Output order is unchanged.
	Workers      int
	ShowProgress bool
	Metrics      *observability.Metrics
}

type SeriesBuilder struct {
	extractor sentinel.Extractor
	opts      BuilderOptions
}

func NewSeriesBuilder(extractor sentinel.Extractor, opts BuilderOptions) *SeriesBuilder {
	if len(opts.Indexes) == 0 {
		opts.Indexes = DefaultIndexSources("", "")
	}
	if opts.Workers < 1 {
		opts.Workers = 1
	}
	return &SeriesBuilder{extractor: extractor, opts: opts}
}

// SceneStats holds the extraction outcome of every index for one scene.
type SceneStats struct {
	Scene   Scene
	Paths   map[string]string
	Results map[string]sentinel.Result
}

func (s SceneStats) Complete(indexes []string) bool {
	for _, index := range indexes {
		if !s.Results[index].Available() {
			return false
		}
	}
	return true
}

// Extraction is the raw per-scene output, ordered by acquisition date. Gap policies
// are applied on top of it, so one extraction serves both the table and the series.
type Extraction struct {
	Indexes []string
	Scenes  []SceneStats
}

type BuildResult struct {
	Policy     GapPolicy
	Extraction *Extraction
	// Rows is set by GapPolicyDrop.
	Rows []ResultRow
	// Series is keyed by index name. Under GapPolicyDrop it holds only the kept
	// rows and is nil when no row was kept.
	Series map[string][]SeriesPoint
}

func (b *SeriesBuilder) Build(scenes []Scene, policy GapPolicy) (*BuildResult, error) {
	extraction, err := b.Extract(scenes)
	if err != nil {
		return nil, err
	}
	return extraction.Apply(policy)
}

// Extract runs the extractor for every scene and index in date order. Unreadable
// rasters and empty masks are recorded, never returned as errors.
func (b *SeriesBuilder) Extract(scenes []Scene) (*Extraction, error) {
	if len(scenes) == 0 {
		return nil, ErrNoScenes
	}
	for _, source := range b.opts.Indexes {
		if _, ok := (Scene{}).Path(source.Column); !ok {
			return nil, fmt.Errorf("index %s: unknown path column %q", source.Name, source.Column)
		}
	}

	sorted := utils.SortByDate(scenes, sceneDate, true)
	out := make([]SceneStats, len(sorted))

	var progressBar *progressbar.ProgressBar
	if b.opts.ShowProgress {
		progressBar = progressbar.Default(int64(len(sorted)), "Extracting index statistics")
	} else {
		progressBar = progressbar.DefaultSilent(int64(len(sorted)), "Extracting index statistics")
	}

	if b.opts.Workers <= 1 {
		for i, scene := range sorted {
			out[i] = b.extractScene(scene)
			progressBar.Add(1)
		}
	} else {
		wp := workerpool.New(b.opts.Workers)
		for i, scene := range sorted {
			wp.Submit(func() {
				out[i] = b.extractScene(scene)
				progressBar.Add(1)
			})
		}
		wp.StopWait()
	}
	progressBar.Finish()

	indexes := make([]string, len(b.opts.Indexes))
	for i, source := range b.opts.Indexes {
		indexes[i] = source.Name
	}

	return &Extraction{Indexes: indexes, Scenes: out}, nil
}

func (b *SeriesBuilder) extractScene(scene Scene) SceneStats {
	stats := SceneStats{
		Scene:   scene,
		Paths:   make(map[string]string, len(b.opts.Indexes)),
		Results: make(map[string]sentinel.Result, len(b.opts.Indexes)),
	}

	for _, source := range b.opts.Indexes {
		raw, _ := scene.Path(source.Column)
		path := ResolvePath(raw, source.BaseDir)
		result := b.extractor.Extract(path)

		stats.Paths[source.Name] = path
		stats.Results[source.Name] = result
		b.opts.Metrics.ObserveExtraction(source.Name, result.Status.String())

		if !result.Available() {
			ui.PrintWarning("%s", unavailableMessage(source.Name, scene.SceneID, result))
		}
	}

	return stats
}

func unavailableMessage(index, sceneID string, result sentinel.Result) string {
	msg := fmt.Sprintf("%s unavailable for scene %s (%s)", index, sceneID, result.Status)
	if result.Err != nil {
		msg += ": " + result.Err.Error()
	}
	return msg
}

func (e *Extraction) Apply(policy GapPolicy) (*BuildResult, error) {
	result := &BuildResult{Policy: policy, Extraction: e}
	switch policy {
	case GapPolicyDrop:
		rows, err := e.Table()
		if err != nil {
			return nil, err
		}
		result.Rows = rows
		if len(rows) > 0 {
			result.Series = seriesFromRows(rows)
		}
	case GapPolicyInterpolate:
		series, err := e.Series()
		if err != nil {
			return nil, err
		}
		result.Series = series
	default:
		return nil, fmt.Errorf("unsupported gap policy %s", policy)
	}
	return result, nil
}

// Table applies the drop policy: only scenes where every index is available become
// rows. days_since_start counts from the first kept scene.
func (e *Extraction) Table() ([]ResultRow, error) {
	if !slices.Contains(e.Indexes, IndexNBR) || !slices.Contains(e.Indexes, IndexNDVI) {
		return nil, fmt.Errorf("result table needs both %s and %s, got %v", IndexNBR, IndexNDVI, e.Indexes)
	}

	rows := make([]ResultRow, 0, len(e.Scenes))
	for _, s := range e.Scenes {
		if !s.Complete(e.Indexes) {
			continue
		}

		nbr := s.Results[IndexNBR].Stats
		ndvi := s.Results[IndexNDVI].Stats
		start := s.Scene.DateAcquired
		if len(rows) > 0 {
			start = rows[0].Date.Time
		}

		rows = append(rows, ResultRow{
			Date:            CSVDate{s.Scene.DateAcquired},
			DaysSinceStart:  daysBetween(start, s.Scene.DateAcquired),
			MeanNBR:         nbr.Mean,
			StdNBR:          nbr.StdDev,
			MeanNDVI:        ndvi.Mean,
			StdNDVI:         ndvi.StdDev,
			ValidPixelCount: min(nbr.ValidPixelCount, ndvi.ValidPixelCount),
			SceneID:         s.Scene.SceneID,
		})
	}

	return rows, nil
}

func seriesFromRows(rows []ResultRow) map[string][]SeriesPoint {
	nbr := make([]SeriesPoint, len(rows))
	ndvi := make([]SeriesPoint, len(rows))
	for i, row := range rows {
		nbr[i] = SeriesPoint{Date: row.Date.Time, Value: row.MeanNBR, DaysSinceStart: row.DaysSinceStart}
		ndvi[i] = SeriesPoint{Date: row.Date.Time, Value: row.MeanNDVI, DaysSinceStart: row.DaysSinceStart}
	}
	return map[string][]SeriesPoint{IndexNBR: nbr, IndexNDVI: ndvi}
}

// Series applies the interpolate policy: one gap-free series per index with a point
// for every scene. days_since_start counts from the first scene.
func (e *Extraction) Series() (map[string][]SeriesPoint, error) {
	series := make(map[string][]SeriesPoint, len(e.Indexes))
	if len(e.Scenes) == 0 {
		return series, nil
	}

	start := e.Scenes[0].Scene.DateAcquired
	for _, index := range e.Indexes {
		points := make([]SeriesPoint, len(e.Scenes))
		for i, s := range e.Scenes {
			value := math.NaN()
			if result := s.Results[index]; result.Available() {
				value = result.Stats.Mean
			}
			points[i] = SeriesPoint{
				Date:           s.Scene.DateAcquired,
				Value:          value,
				DaysSinceStart: daysBetween(start, s.Scene.DateAcquired),
			}
		}

		filled, err := InterpolateTime(points)
		if err != nil {
			return nil, fmt.Errorf("%s series: %w", index, err)
		}
		series[index] = filled
	}

	return series, nil
}
