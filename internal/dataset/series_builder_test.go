package dataset

import (
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/Raf-Pimentel/PantanalBurns/internal/observability"
	"github.com/Raf-Pimentel/PantanalBurns/internal/sentinel"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeExtractor serves canned results by path. Unknown paths are unreadable.
type fakeExtractor struct {
	mu      sync.Mutex
	results map[string]sentinel.Result
	calls   []string
}

func (f *fakeExtractor) Extract(path string) sentinel.Result {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, path)
	if r, ok := f.results[path]; ok {
		return r
	}
	return sentinel.Unreadable(fmt.Errorf("open %s: corrupted", path))
}

func ok(mean, std float64, count int) sentinel.Result {
	return sentinel.Result{Status: sentinel.StatusOK, Stats: sentinel.Stats{Mean: mean, StdDev: std, ValidPixelCount: count}}
}

func testScenes(ids, dates []string) ([]Scene, *fakeExtractor) {
	fake := &fakeExtractor{results: map[string]sentinel.Result{}}
	scenes := make([]Scene, len(ids))
	for i, id := range ids {
		scenes[i] = Scene{
			SceneID:      id,
			DateAcquired: day(dates[i]),
			NBRPath:      id + "_NBR.tif",
			NDVIPath:     id + "_NDVI.tif",
		}
		fake.results[scenes[i].NBRPath] = ok(0.1*float64(i+1), 0.01, 100+i)
		fake.results[scenes[i].NDVIPath] = ok(0.5+0.05*float64(i), 0.02, 90)
	}
	return scenes, fake
}

func TestSeriesBuilder_ThreeCompleteScenes(t *testing.T) {
	scenes, fake := testScenes(
		[]string{"A", "B", "C"},
		[]string{"2024-09-10", "2024-09-25", "2024-10-10"},
	)

	result, err := NewSeriesBuilder(fake, BuilderOptions{}).Build(scenes, GapPolicyDrop)
	require.NoError(t, err)
	require.Len(t, result.Rows, 3)

	assert.Equal(t, "A", result.Rows[0].SceneID)
	assert.Equal(t, 0, result.Rows[0].DaysSinceStart)
	assert.Equal(t, 15, result.Rows[1].DaysSinceStart)
	assert.Equal(t, 30, result.Rows[2].DaysSinceStart)
	assert.Equal(t, 90, result.Rows[1].ValidPixelCount)
	assert.InDelta(t, 0.55, result.Rows[1].MeanNDVI, 1e-12)

	features, err := BuildFeatures(result.Rows)
	require.NoError(t, err)
	assert.Len(t, features, 2)
}

func TestSeriesBuilder_CorruptedSceneIsInterpolatedAndDropped(t *testing.T) {
	scenes, fake := testScenes(
		[]string{"S1", "S2", "S3", "S4", "S5"},
		[]string{"2024-01-01", "2024-01-11", "2024-01-21", "2024-02-10", "2024-02-20"},
	)
	delete(fake.results, "S3_NBR.tif")

	extraction, err := NewSeriesBuilder(fake, BuilderOptions{}).Extract(scenes)
	require.NoError(t, err)

	series, err := extraction.Apply(GapPolicyInterpolate)
	require.NoError(t, err)
	nbr := series.Series[IndexNBR]
	require.Len(t, nbr, 5)

	// S2 (0.2) on Jan 11, S4 (0.4) on Feb 10: Jan 21 is a third of the way.
	assert.InDelta(t, 0.2+0.2/3, nbr[2].Value, 1e-12)
	assert.Equal(t, 20, nbr[2].DaysSinceStart)
	for _, p := range nbr {
		assert.False(t, p.Missing())
	}
	assert.InDelta(t, 0.6, series.Series[IndexNDVI][2].Value, 1e-12)

	table, err := extraction.Apply(GapPolicyDrop)
	require.NoError(t, err)
	require.Len(t, table.Rows, 4)
	for _, row := range table.Rows {
		assert.NotEqual(t, "S3", row.SceneID)
	}

	kept := table.Series[IndexNBR]
	require.Len(t, kept, 4)
	assert.Equal(t, day("2024-02-10"), kept[2].Date)
	assert.InDelta(t, 0.4, kept[2].Value, 1e-12)
	assert.Equal(t, 40, kept[2].DaysSinceStart)
	assert.Len(t, table.Series[IndexNDVI], 4)
}

func TestSeriesBuilder_DropPolicyCountsFromFirstKeptRow(t *testing.T) {
	scenes, fake := testScenes(
		[]string{"A", "B", "C"},
		[]string{"2024-01-01", "2024-01-06", "2024-01-16"},
	)
	fake.results["A_NDVI.tif"] = sentinel.Result{Status: sentinel.StatusNoValidPixels, Err: errors.New("empty mask")}

	result, err := NewSeriesBuilder(fake, BuilderOptions{}).Build(scenes, GapPolicyDrop)
	require.NoError(t, err)
	require.Len(t, result.Rows, 2)
	assert.Equal(t, 0, result.Rows[0].DaysSinceStart)
	assert.Equal(t, 10, result.Rows[1].DaysSinceStart)
}

func TestSeriesBuilder_RowCountNeverExceedsScenes(t *testing.T) {
	ids := []string{"a", "b", "c", "d", "e", "f"}
	dates := []string{"2024-01-01", "2024-01-02", "2024-01-03", "2024-01-04", "2024-01-05", "2024-01-06"}

	for mask := 0; mask < 1<<len(ids); mask++ {
		scenes, fake := testScenes(ids, dates)
		for i, id := range ids {
			if mask&(1<<i) != 0 {
				delete(fake.results, id+"_NDVI.tif")
			}
		}

		result, err := NewSeriesBuilder(fake, BuilderOptions{}).Build(scenes, GapPolicyDrop)
		require.NoError(t, err)
		assert.LessOrEqual(t, len(result.Rows), len(scenes))
		assert.Equal(t, mask == 0, len(result.Rows) == len(scenes))
	}
}

func TestSeriesBuilder_ResolvesPathsAgainstBaseDir(t *testing.T) {
	scenes := []Scene{{
		SceneID:      "A",
		DateAcquired: day("2024-01-01"),
		NBRPath:      `C:\exports\A_NBR.tif`,
		NDVIPath:     "/remote/A_NDVI.tif",
	}}
	fake := &fakeExtractor{results: map[string]sentinel.Result{}}

	_, err := NewSeriesBuilder(fake, BuilderOptions{
		Indexes: DefaultIndexSources("nbr", "ndvi"),
	}).Extract(scenes)
	require.NoError(t, err)
	assert.Equal(t, []string{"nbr/A_NBR.tif", "ndvi/A_NDVI.tif"}, fake.calls)
}

func TestSeriesBuilder_WorkerPoolKeepsOrder(t *testing.T) {
	ids := []string{"e", "a", "d", "b", "c"}
	dates := []string{"2024-05-01", "2024-01-01", "2024-04-01", "2024-02-01", "2024-03-01"}
	scenes, fake := testScenes(ids, dates)
	metrics := observability.NewMetrics()

	sequential, err := NewSeriesBuilder(fake, BuilderOptions{}).Extract(scenes)
	require.NoError(t, err)
	parallel, err := NewSeriesBuilder(fake, BuilderOptions{Workers: 4, Metrics: metrics}).Extract(scenes)
	require.NoError(t, err)

	require.Len(t, parallel.Scenes, len(sequential.Scenes))
	for i := range sequential.Scenes {
		assert.Equal(t, sequential.Scenes[i].Scene.SceneID, parallel.Scenes[i].Scene.SceneID)
		assert.Equal(t, sequential.Scenes[i].Results, parallel.Scenes[i].Results)
	}
	assert.Equal(t, "a", parallel.Scenes[0].Scene.SceneID)
	assert.Equal(t, 5.0, testutil.ToFloat64(metrics.RastersExtracted.WithLabelValues(IndexNBR, "ok")))
}

func TestSeriesBuilder_Errors(t *testing.T) {
	fake := &fakeExtractor{}

	_, err := NewSeriesBuilder(fake, BuilderOptions{}).Extract(nil)
	assert.True(t, errors.Is(err, ErrNoScenes))

	scenes, _ := testScenes([]string{"A"}, []string{"2024-01-01"})
	_, err = NewSeriesBuilder(fake, BuilderOptions{
		Indexes: []IndexSource{{Name: "NDMI", Column: "ndmi_path"}},
	}).Extract(scenes)
	assert.Error(t, err)

	// every scene unreadable: the series has nothing to fill from
	_, err = NewSeriesBuilder(fake, BuilderOptions{}).Build(scenes, GapPolicyInterpolate)
	assert.True(t, errors.Is(err, ErrNoObservations))
}

func TestSeriesBuilder_ValidPixelCountIsSmallerOfBothIndices(t *testing.T) {
	scenes, fake := testScenes([]string{"A", "B"}, []string{"2024-09-10", "2024-09-25"})
	fake.results["A_NBR.tif"] = ok(0.1, 0.01, 40)
	fake.results["A_NDVI.tif"] = ok(0.5, 0.02, 75)
	fake.results["B_NBR.tif"] = ok(0.2, 0.01, 60)
	fake.results["B_NDVI.tif"] = ok(0.6, 0.02, 35)

	result, err := NewSeriesBuilder(fake, BuilderOptions{}).Build(scenes, GapPolicyDrop)
	require.NoError(t, err)
	require.Len(t, result.Rows, 2)

	assert.Equal(t, 40, result.Rows[0].ValidPixelCount)
	assert.Equal(t, 35, result.Rows[1].ValidPixelCount)
}

func TestUnavailableMessage(t *testing.T) {
	withErr := sentinel.Result{Status: sentinel.StatusFileUnreadable, Err: errors.New("bad header")}
	assert.Equal(t, "NBR unavailable for scene S1 (file_unreadable): bad header", unavailableMessage(IndexNBR, "S1", withErr))

	cached := sentinel.Result{Status: sentinel.StatusNoValidPixels}
	assert.Equal(t, "NDVI unavailable for scene S2 (no_valid_pixels)", unavailableMessage(IndexNDVI, "S2", cached))
}

func TestParseGapPolicy(t *testing.T) {
	p, err := ParseGapPolicy("Drop")
	require.NoError(t, err)
	assert.Equal(t, GapPolicyDrop, p)

	p, err = ParseGapPolicy("interpolate")
	require.NoError(t, err)
	assert.Equal(t, GapPolicyInterpolate, p)
	assert.Equal(t, "interpolate", p.String())

	_, err = ParseGapPolicy("zero")
	assert.Error(t, err)
}
