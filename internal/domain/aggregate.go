package domain

import (
	"sort"
	"time"
)

// DayBucket holds the nutrient totals of one calendar day.
// derived on every call, never persisted.
type DayBucket struct {
	DayKey    string  `json:"dayKey"`
	Calories  float64 `json:"calories"`
	Protein   float64 `json:"protein"`
	Carbs     float64 `json:"carbs"`
	Fat       float64 `json:"fat"`
	MealCount int     `json:"mealCount"`
}

// IsActive reports whether at least one counted meal landed on this day.
func (b DayBucket) IsActive() bool {
	return b.MealCount > 0
}

// Aggregate groups counted entries into per-day totals for the window.
//
// zeroFillMissing decides completeness of the result:
//   - true: every day of the window is present, unlogged days as zero buckets.
//     trend charts need a continuous x-axis.
//   - false: only days with at least one counted meal are present, so callers
//     can tell "no data" from "zero calories logged".
//
// entries that are not counted, or whose local day falls outside the window,
// are ignored.
func Aggregate(entries []*LogEntry, window DateWindow, tz string, zeroFillMissing bool) map[string]DayBucket {
	return AggregateIn(entries, window, ResolveLocation(tz), zeroFillMissing)
}

// AggregateIn is Aggregate for an already resolved location.
func AggregateIn(entries []*LogEntry, window DateWindow, loc *time.Location, zeroFillMissing bool) map[string]DayBucket {
	buckets := make(map[string]DayBucket)

	if zeroFillMissing {
		for _, key := range window.Days() {
			buckets[key] = DayBucket{DayKey: key}
		}
	}

	for _, entry := range entries {
		if entry == nil || !entry.IsCounted() {
			continue
		}

		key := DayKeyIn(entry.ConsumedAt(), loc)
		if !window.Contains(key) {
			continue
		}

		n := entry.Nutrients()
		b := buckets[key]
		b.DayKey = key
		b.Calories += nonNegative(n.Calories)
		b.Protein += nonNegative(n.Protein)
		b.Carbs += nonNegative(n.Carbs)
		b.Fat += nonNegative(n.Fat)
		b.MealCount++
		buckets[key] = b
	}

	return buckets
}

// SortedBuckets returns the buckets ordered by day key ascending.
func SortedBuckets(buckets map[string]DayBucket) []DayBucket {
	out := make([]DayBucket, 0, len(buckets))
	for _, b := range buckets {
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].DayKey < out[j].DayKey
	})
	return out
}

// ActiveDays is the set of day keys with at least one counted meal.
type ActiveDays map[string]bool

// ActiveDaysFrom extracts the active-day set from a bucket map.
func ActiveDaysFrom(buckets map[string]DayBucket) ActiveDays {
	active := make(ActiveDays, len(buckets))
	for key, b := range buckets {
		if b.IsActive() {
			active[key] = true
		}
	}
	return active
}

// CountIn returns how many days of the window are active.
func (a ActiveDays) CountIn(window DateWindow) int {
	count := 0
	for _, key := range window.Days() {
		if a[key] {
			count++
		}
	}
	return count
}

func nonNegative(v float64) float64 {
	if v < 0 {
		return 0
	}
	return v
}
