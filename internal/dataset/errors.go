package dataset

import "errors"

// Structural errors: they mean misconfiguration or an unusable dataset and abort the run.
// Per-scene problems never surface as errors; they become missing observations.
var (
	ErrNoManifest       = errors.New("manifest not found")
	ErrNoScenes         = errors.New("no scenes left after merging manifests")
	ErrNoObservations   = errors.New("series has no valid observation to fill from")
	ErrInsufficientData = errors.New("feature table is empty after lag construction")
)
