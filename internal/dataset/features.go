package dataset

import (
	"github.com/Raf-Pimentel/PantanalBurns/internal/utils"
)

// FeatureRow extends a result row with calendar fields and the previous row's index
// means. The lag is taken by row order, not by calendar day.
type FeatureRow struct {
	ResultRow
	Month     int
	DayOfYear int
	Year      int
	NBRLag1   float64
	NDVILag1  float64
}

// Target is the value the supervised model learns to predict.
func (f FeatureRow) Target() float64 {
	return f.MeanNBR
}

// BuildFeatures sorts rows by date and derives one feature row per row that has a
// predecessor. The first row has no lag and is discarded, so fewer than two rows
// yield ErrInsufficientData.
func BuildFeatures(rows []ResultRow) ([]FeatureRow, error) {
	sorted := utils.SortByDate(rows, rowDate, true)
	if len(sorted) < 2 {
		return nil, ErrInsufficientData
	}

	features := make([]FeatureRow, 0, len(sorted)-1)
	for i := 1; i < len(sorted); i++ {
		row, prev := sorted[i], sorted[i-1]
		features = append(features, FeatureRow{
			ResultRow: row,
			Month:     int(row.Date.Month()),
			DayOfYear: row.Date.YearDay(),
			Year:      row.Date.Year(),
			NBRLag1:   prev.MeanNBR,
			NDVILag1:  prev.MeanNDVI,
		})
	}

	return features, nil
}
