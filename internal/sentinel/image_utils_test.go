package sentinel

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/airbusgeo/godal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTestRaster(t *testing.T, path string, width, height int, data []float64, noData *float64) {
	t.Helper()
	registerDrivers()

	ds, err := godal.Create(godal.GTiff, path, 1, godal.Float32, width, height)
	require.NoError(t, err)
	band := ds.Bands()[0]
	if noData != nil {
		require.NoError(t, band.SetNoData(*noData))
	}
	require.NoError(t, band.Write(0, 0, data, width, height))
	require.NoError(t, ds.Close())
}

func TestGodalExtractor_ReadsSingleBand(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nbr_scene.tif")
	writeTestRaster(t, path, 3, 2, []float64{0.25, 0.5, 0.75, -9999, -9999, 0.5}, ptr(-9999))

	result := NewGodalExtractor(DefaultOptions()).Extract(path)

	require.True(t, result.Available(), "err: %v", result.Err)
	assert.Equal(t, 4, result.Stats.ValidPixelCount)
	assert.InDelta(t, 0.5, result.Stats.Mean, 1e-6)
}

func TestGodalExtractor_AllNoData(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.tif")
	writeTestRaster(t, path, 2, 2, []float64{-9999, -9999, -9999, -9999}, ptr(-9999))

	result := NewGodalExtractor(DefaultOptions()).Extract(path)

	assert.Equal(t, StatusNoValidPixels, result.Status)
}

func TestGodalExtractor_CorruptedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "corrupted.tif")
	require.NoError(t, os.WriteFile(path, []byte("definitely not a geotiff"), 0644))

	result := NewGodalExtractor(DefaultOptions()).Extract(path)

	assert.Equal(t, StatusFileUnreadable, result.Status)
	assert.Error(t, result.Err)
}

func TestGodalExtractor_MissingFile(t *testing.T) {
	result := NewGodalExtractor(DefaultOptions()).Extract(filepath.Join(t.TempDir(), "missing.tif"))

	assert.Equal(t, StatusFileUnreadable, result.Status)
}
