package sentinel

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"
)

// ErrNoValidPixels is the error of every StatusNoValidPixels result.
var ErrNoValidPixels = errors.New("no valid pixels left after masking")

// Status tells apart a successful extraction from the two ways a scene can go missing.
type Status int

const (
	StatusOK Status = iota
	StatusFileUnreadable
	StatusNoValidPixels
)

func (s Status) String() string {
	switch s {
	case StatusOK:
		return "ok"
	case StatusFileUnreadable:
		return "file_unreadable"
	case StatusNoValidPixels:
		return "no_valid_pixels"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

type Stats struct {
	Mean            float64 `json:"mean"`
	StdDev          float64 `json:"std_dev"`
	ValidPixelCount int     `json:"valid_pixel_count"`
}

// Result is the outcome of extracting one raster. Stats is only meaningful when Status is StatusOK.
type Result struct {
	Stats  Stats  `json:"stats"`
	Status Status `json:"status"`
	Err    error  `json:"-"`
}

func (r Result) Available() bool {
	return r.Status == StatusOK
}

func Unreadable(err error) Result {
	return Result{Status: StatusFileUnreadable, Err: err}
}

// ValidRange is an open interval: both bounds are excluded.
type ValidRange struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

func (r ValidRange) Contains(v float64) bool {
	return v > r.Min && v < r.Max
}

// RescalePolicy multiplies the statistics by Factor when |mean| exceeds Threshold.
// It exists for manifests that mix integer-scaled products (e.g. Landsat, x10000)
// with float products; nothing checks which scale a file really uses.
type RescalePolicy struct {
	Enabled   bool    `json:"enabled"`
	Threshold float64 `json:"threshold"`
	Factor    float64 `json:"factor"`
}

func (p RescalePolicy) Apply(s Stats) Stats {
	if !p.Enabled || math.Abs(s.Mean) <= p.Threshold {
		return s
	}
	s.Mean *= p.Factor
	s.StdDev *= math.Abs(p.Factor)
	return s
}

type Options struct {
	Range   ValidRange    `json:"range"`
	Rescale RescalePolicy `json:"rescale"`
}

func DefaultOptions() Options {
	return Options{
		Range: ValidRange{Min: -1.1, Max: 1.1},
		Rescale: RescalePolicy{
			Enabled:   true,
			Threshold: 10,
			Factor:    0.0001,
		},
	}
}

// ComputeStats masks the band and aggregates the surviving pixels.
// A pixel survives when it is not NaN, differs from noData (when declared)
// and lies strictly inside opts.Range.
func ComputeStats(data []float64, noData *float64, opts Options) Result {
	valid := make([]float64, 0, len(data))
	for _, v := range data {
		if math.IsNaN(v) {
			continue
		}
		if noData != nil && v == *noData {
			continue
		}
		if !opts.Range.Contains(v) {
			continue
		}
		valid = append(valid, v)
	}

	if len(valid) == 0 {
		return Result{
			Status: StatusNoValidPixels,
			Err:    fmt.Errorf("%w: %d pixels masked", ErrNoValidPixels, len(data)),
		}
	}

	mean, std := stat.PopMeanStdDev(valid, nil)
	stats := opts.Rescale.Apply(Stats{
		Mean:            mean,
		StdDev:          std,
		ValidPixelCount: len(valid),
	})

	return Result{Stats: stats, Status: StatusOK}
}
