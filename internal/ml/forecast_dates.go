package ml

import (
	"fmt"
	"strings"
	"time"
)

// Frequency is the calendar step between classical forecast dates.
type Frequency string

const (
	FrequencyMonthEnd Frequency = "ME"
	FrequencyDaily    Frequency = "D"
	FrequencyWeekly   Frequency = "W"
)

func ParseFrequency(s string) (Frequency, error) {
	switch f := Frequency(strings.ToUpper(strings.TrimSpace(s))); f {
	case FrequencyMonthEnd, FrequencyDaily, FrequencyWeekly:
		return f, nil
	case "M":
		return FrequencyMonthEnd, nil
	default:
		return "", fmt.Errorf("unknown forecast frequency %q (want ME, D or W)", s)
	}
}

// FutureDates returns the n anchored dates that follow last. Month-end steps land on
// the last day of each following month and weekly steps on Sundays, whether or not
// last itself is anchored.
func FutureDates(last time.Time, n int, freq Frequency) ([]time.Time, error) {
	base := time.Date(last.Year(), last.Month(), last.Day(), 0, 0, 0, 0, last.Location())
	dates := make([]time.Time, 0, n)

	switch freq {
	case FrequencyMonthEnd:
		for i := 1; i <= n; i++ {
			// day 0 of month m+1 is the last day of month m
			dates = append(dates, time.Date(base.Year(), base.Month()+time.Month(i)+1, 0, 0, 0, 0, 0, base.Location()))
		}
	case FrequencyDaily:
		for i := 1; i <= n; i++ {
			dates = append(dates, base.AddDate(0, 0, i))
		}
	case FrequencyWeekly:
		anchor := base.AddDate(0, 0, (7-int(base.Weekday()))%7)
		for i := 1; i <= n; i++ {
			dates = append(dates, anchor.AddDate(0, 0, 7*i))
		}
	default:
		return nil, fmt.Errorf("unknown forecast frequency %q", freq)
	}

	return dates, nil
}
