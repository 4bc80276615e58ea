package output

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/Raf-Pimentel/PantanalBurns/internal/dataset"
	"github.com/Raf-Pimentel/PantanalBurns/internal/ml"
	"github.com/gocarina/gocsv"
)

type ForecastRow struct {
	Date           dataset.CSVDate `csv:"date"`
	PredictedValue float64         `csv:"predicted_value"`
}

func WriteForecastCSV(outputPath string, points []ml.ForecastPoint) error {
	rows := make([]ForecastRow, len(points))
	for i, p := range points {
		rows[i] = ForecastRow{Date: dataset.CSVDate{Time: p.Date}, PredictedValue: p.PredictedValue}
	}

	if err := os.MkdirAll(filepath.Dir(outputPath), 0755); err != nil {
		return fmt.Errorf("failed to create forecast directory: %w", err)
	}

	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create forecast file: %w", err)
	}
	defer file.Close()

	if err := gocsv.MarshalFile(&rows, file); err != nil {
		return fmt.Errorf("failed to save forecast to file: %w", err)
	}
	return nil
}
