package domain

// PeriodWindowStats are the averages of one window over its logged days.
type PeriodWindowStats struct {
	Window             DateWindow `json:"window"`
	AvgCalories        float64    `json:"avgCalories"`
	AvgProtein         float64    `json:"avgProtein"`
	AvgCarbs           float64    `json:"avgCarbs"`
	AvgFat             float64    `json:"avgFat"`
	LoggedDays         int        `json:"loggedDays"`
	TotalDays          int        `json:"totalDays"`
	CalorieVariability float64    `json:"calorieVariability"`
}

// ComparisonDeltas are integer percentages, current relative to previous.
// a negative variability delta is an improvement.
type ComparisonDeltas struct {
	Calories    int `json:"calories"`
	Protein     int `json:"protein"`
	Carbs       int `json:"carbs"`
	Fat         int `json:"fat"`
	Variability int `json:"variability"`
}

// PeriodComparison is the result of comparing two windows.
type PeriodComparison struct {
	Current  PeriodWindowStats `json:"current"`
	Previous PeriodWindowStats `json:"previous"`
	Deltas   ComparisonDeltas  `json:"deltas"`
}

// ComputeWindowStats averages the logged days of the window.
// buckets must not be zero-filled; days without meals are skipped anyway.
func ComputeWindowStats(buckets map[string]DayBucket, window DateWindow) PeriodWindowStats {
	stats := PeriodWindowStats{Window: window, TotalDays: window.Len()}

	var calories []float64
	var protein, carbs, fat float64
	for _, key := range window.Days() {
		b, ok := buckets[key]
		if !ok || !b.IsActive() {
			continue
		}
		calories = append(calories, b.Calories)
		protein += b.Protein
		carbs += b.Carbs
		fat += b.Fat
	}

	stats.LoggedDays = len(calories)
	if stats.LoggedDays == 0 {
		return stats
	}

	n := float64(stats.LoggedDays)
	stats.AvgCalories = mean(calories)
	stats.AvgProtein = protein / n
	stats.AvgCarbs = carbs / n
	stats.AvgFat = fat / n
	stats.CalorieVariability = populationStdDev(calories)
	return stats
}

// PercentDelta is the percent change from previous to current, rounded half up.
// a zero base yields 100 when current is positive and 0 otherwise.
func PercentDelta(current, previous float64) int {
	if previous == 0 {
		if current > 0 {
			return 100
		}
		return 0
	}
	return roundHalfUp((current - previous) / previous * 100)
}

// ComparePeriods aggregates both windows independently and diffs them.
func ComparePeriods(current, previous PeriodWindowStats) PeriodComparison {
	return PeriodComparison{
		Current:  current,
		Previous: previous,
		Deltas: ComparisonDeltas{
			Calories:    PercentDelta(current.AvgCalories, previous.AvgCalories),
			Protein:     PercentDelta(current.AvgProtein, previous.AvgProtein),
			Carbs:       PercentDelta(current.AvgCarbs, previous.AvgCarbs),
			Fat:         PercentDelta(current.AvgFat, previous.AvgFat),
			Variability: PercentDelta(current.CalorieVariability, previous.CalorieVariability),
		},
	}
}

// CompareWindows is the bucket-level entry point: stats for both windows, then deltas.
// windows that share a day are rejected.
func CompareWindows(buckets map[string]DayBucket, current, previous DateWindow) (PeriodComparison, error) {
	if current.Overlaps(previous) {
		return PeriodComparison{}, ErrInvalidWindow
	}
	return ComparePeriods(
		ComputeWindowStats(buckets, current),
		ComputeWindowStats(buckets, previous),
	), nil
}
