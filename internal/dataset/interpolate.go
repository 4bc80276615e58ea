package dataset

import (
	"math"
	"time"
)

// SeriesPoint is one dated value of a single index series. A NaN value marks a
// missing observation before interpolation.
type SeriesPoint struct {
	Date           time.Time
	Value          float64
	DaysSinceStart int
}

func (p SeriesPoint) Missing() bool {
	return math.IsNaN(p.Value)
}

// InterpolateTime fills missing values by linear interpolation weighted by elapsed time
// between the nearest valid neighbours. Leading gaps take the first valid value and
// trailing gaps the last one. Points must be ordered by date; the input is not modified.
func InterpolateTime(points []SeriesPoint) ([]SeriesPoint, error) {
	filled := make([]SeriesPoint, len(points))
	copy(filled, points)

	known := make([]int, 0, len(filled))
	for i, p := range filled {
		if !p.Missing() {
			known = append(known, i)
		}
	}
	if len(known) == 0 {
		return nil, ErrNoObservations
	}

	first, last := known[0], known[len(known)-1]
	for i := 0; i < first; i++ {
		filled[i].Value = filled[first].Value
	}
	for i := last + 1; i < len(filled); i++ {
		filled[i].Value = filled[last].Value
	}

	for k := 1; k < len(known); k++ {
		left, right := known[k-1], known[k]
		if right-left < 2 {
			continue
		}
		t1, v1 := filled[left].Date, filled[left].Value
		t2, v2 := filled[right].Date, filled[right].Value
		span := t2.Sub(t1)
		for i := left + 1; i < right; i++ {
			if span <= 0 {
				filled[i].Value = v1
				continue
			}
			frac := float64(filled[i].Date.Sub(t1)) / float64(span)
			filled[i].Value = v1 + (v2-v1)*frac
		}
	}

	return filled, nil
}

func daysBetween(start, t time.Time) int {
	return int(t.Sub(start) / (24 * time.Hour))
}
