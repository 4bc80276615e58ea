package utils

import (
	"sort"
	"time"
)

// SortByDate returns a sorted copy. Items sharing a date keep their input order.
func SortByDate[T any](items []T, date func(T) time.Time, asc bool) []T {
	sorted := make([]T, len(items))
	copy(sorted, items)
	sort.SliceStable(sorted, func(i, j int) bool {
		if asc {
			return date(sorted[i]).Before(date(sorted[j]))
		}
		return date(sorted[i]).After(date(sorted[j]))
	})
	return sorted
}

func IsSortedByDate[T any](items []T, date func(T) time.Time) bool {
	for i := 1; i < len(items); i++ {
		if date(items[i]).Before(date(items[i-1])) {
			return false
		}
	}
	return true
}
