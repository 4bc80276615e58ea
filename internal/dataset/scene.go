package dataset

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/gocarina/gocsv"
)

const (
	IndexNBR  = "NBR"
	IndexNDVI = "NDVI"

	ColumnSceneID      = "scene_id"
	ColumnDateAcquired = "date_acquired"
	ColumnNBRPath      = "nbr_path"
	ColumnNDVIPath     = "ndvi_path"
)

var dateLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04:05-07:00",
	"2006/01/02",
}

// ManifestRow is one line of a per-index manifest.
type ManifestRow struct {
	SceneID      string
	DateAcquired time.Time
	Path         string
}

// Scene is one acquisition present in both manifests.
type Scene struct {
	SceneID      string
	DateAcquired time.Time
	NBRPath      string
	NDVIPath     string
}

// Path returns the raw raster path stored under a manifest column name.
func (s Scene) Path(column string) (string, bool) {
	switch column {
	case ColumnNBRPath:
		return s.NBRPath, true
	case ColumnNDVIPath:
		return s.NDVIPath, true
	default:
		return "", false
	}
}

func ParseDate(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", value)
}

// ResolvePath rebuilds a manifest path under baseDir using only its file name.
// Manifests are often produced on another machine, sometimes a Windows one.
func ResolvePath(raw, baseDir string) string {
	if baseDir == "" {
		return raw
	}
	name := path.Base(strings.ReplaceAll(raw, `\`, "/"))
	return filepath.Join(baseDir, name)
}

// LoadManifest reads a manifest CSV holding at least scene_id, date_acquired and pathColumn.
func LoadManifest(manifestPath, pathColumn string) ([]ManifestRow, error) {
	file, err := os.Open(manifestPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNoManifest, manifestPath)
		}
		return nil, fmt.Errorf("failed to open manifest %s: %w", manifestPath, err)
	}
	defer file.Close()

	records, err := gocsv.CSVToMaps(file)
	if err != nil {
		return nil, fmt.Errorf("failed to parse manifest %s: %w", manifestPath, err)
	}

	rows := make([]ManifestRow, 0, len(records))
	for i, record := range records {
		for _, column := range []string{ColumnSceneID, ColumnDateAcquired, pathColumn} {
			if _, ok := record[column]; !ok {
				return nil, fmt.Errorf("manifest %s is missing column %q", manifestPath, column)
			}
		}

		sceneID := strings.TrimSpace(record[ColumnSceneID])
		if sceneID == "" {
			continue
		}

		date, err := ParseDate(record[ColumnDateAcquired])
		if err != nil {
			return nil, fmt.Errorf("manifest %s line %d (scene %s): %w", manifestPath, i+2, sceneID, err)
		}

		rows = append(rows, ManifestRow{
			SceneID:      sceneID,
			DateAcquired: date,
			Path:         strings.TrimSpace(record[pathColumn]),
		})
	}

	return rows, nil
}
