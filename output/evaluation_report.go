package output

import (
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"

	"github.com/Raf-Pimentel/PantanalBurns/internal/ml"
)

func formatMetric(v float64) string {
	if math.IsNaN(v) {
		return "n/a"
	}
	return fmt.Sprintf("%.4f", v)
}

// WriteEvaluation prints the held-out scores in the plain text layout of the report file.
func WriteEvaluation(w io.Writer, eval ml.Evaluation) error {
	_, err := fmt.Fprintf(w, "Supervised NBR model evaluation\n"+
		"Train rows: %d\n"+
		"Test rows: %d\n"+
		"R² Score: %s\n"+
		"MAE: %s\n",
		eval.TrainSize, eval.TestSize, formatMetric(eval.R2), formatMetric(eval.MAE))
	return err
}

func WriteEvaluationReport(outputPath string, eval ml.Evaluation) error {
	if err := os.MkdirAll(filepath.Dir(outputPath), 0755); err != nil {
		return fmt.Errorf("failed to create report directory: %w", err)
	}

	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create evaluation report: %w", err)
	}
	defer file.Close()

	return WriteEvaluation(file, eval)
}
