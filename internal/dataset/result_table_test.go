package dataset

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResultTable_WriteAndRead(t *testing.T) {
	path := filepath.Join(t.TempDir(), "result", "temporal_results.csv")
	rows := []ResultRow{
		{Date: CSVDate{day("2024-09-25")}, DaysSinceStart: 15, MeanNBR: -0.12, StdNBR: 0.05, MeanNDVI: 0.31, StdNDVI: 0.04, ValidPixelCount: 812, SceneID: "B"},
		{Date: CSVDate{day("2024-09-10")}, DaysSinceStart: 0, MeanNBR: -0.3, StdNBR: 0.07, MeanNDVI: 0.22, StdNDVI: 0.06, ValidPixelCount: 790, SceneID: "A"},
	}

	require.NoError(t, WriteResultTable(path, rows))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	header := strings.SplitN(string(raw), "\n", 2)[0]
	assert.Equal(t, "date,days_since_start,mean_nbr,std_nbr,mean_ndvi,std_ndvi,valid_pixel_count,scene_id", header)
	assert.Contains(t, string(raw), "2024-09-25,15,")

	loaded, err := ReadResultTable(path)
	require.NoError(t, err)
	require.Len(t, loaded, 2)
	assert.Equal(t, "A", loaded[0].SceneID)
	assert.True(t, loaded[1].Date.Equal(day("2024-09-25")))
	assert.InDelta(t, -0.12, loaded[1].MeanNBR, 1e-12)
}

func TestReadResultTable_Missing(t *testing.T) {
	_, err := ReadResultTable(filepath.Join(t.TempDir(), "missing.csv"))
	assert.Error(t, err)
}
