package dataset

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/Raf-Pimentel/PantanalBurns/internal/utils"
	"github.com/gocarina/gocsv"
)

const DateLayout = "2006-01-02"

// CSVDate writes dates as plain ISO days and accepts any layout ParseDate knows.
type CSVDate struct {
	time.Time
}

func (d CSVDate) MarshalCSV() (string, error) {
	return d.Format(DateLayout), nil
}

func (d *CSVDate) UnmarshalCSV(value string) error {
	t, err := ParseDate(value)
	if err != nil {
		return err
	}
	d.Time = t
	return nil
}

// ResultRow is one fully resolved scene: both indices produced statistics.
// ValidPixelCount is the smaller of the two indices' counts.
type ResultRow struct {
	Date            CSVDate `csv:"date"`
	DaysSinceStart  int     `csv:"days_since_start"`
	MeanNBR         float64 `csv:"mean_nbr"`
	StdNBR          float64 `csv:"std_nbr"`
	MeanNDVI        float64 `csv:"mean_ndvi"`
	StdNDVI         float64 `csv:"std_ndvi"`
	ValidPixelCount int     `csv:"valid_pixel_count"`
	SceneID         string  `csv:"scene_id"`
}

func rowDate(r ResultRow) time.Time {
	return r.Date.Time
}

func fileExists(filename string) bool {
	_, err := os.Stat(filename)
	return !os.IsNotExist(err)
}

// WriteResultTable saves the table as CSV, creating parent directories. An empty
// table still gets its header line.
func WriteResultTable(filePath string, rows []ResultRow) error {
	if err := os.MkdirAll(filepath.Dir(filePath), 0755); err != nil {
		return fmt.Errorf("failed to create result directory: %w", err)
	}

	file, err := os.Create(filePath)
	if err != nil {
		return fmt.Errorf("failed to create result table file: %w", err)
	}
	defer file.Close()

	if err := gocsv.MarshalFile(&rows, file); err != nil {
		return fmt.Errorf("failed to save result table to file: %w", err)
	}

	return nil
}

// ReadResultTable loads a table written by WriteResultTable, sorted by date.
func ReadResultTable(filePath string) ([]ResultRow, error) {
	if !fileExists(filePath) {
		return nil, fmt.Errorf("result table %s does not exist", filePath)
	}

	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open result table: %w", err)
	}
	defer file.Close()

	var rows []ResultRow
	if err := gocsv.UnmarshalFile(file, &rows); err != nil {
		return nil, fmt.Errorf("failed to read result table: %w", err)
	}

	return utils.SortByDate(rows, rowDate, true), nil
}
