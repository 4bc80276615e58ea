package ml

import (
	"errors"

	"github.com/Raf-Pimentel/PantanalBurns/internal/dataset"
)

var (
	// ErrInsufficientData is fatal to the supervised path.
	ErrInsufficientData = dataset.ErrInsufficientData
	// ErrModelFit marks a forecast as unavailable without aborting the run.
	ErrModelFit = errors.New("model fit failed")
)
