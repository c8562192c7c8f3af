package domain

import "math"

// TrendDirection is the coarse movement of a series over its window.
type TrendDirection string

const (
	TrendUp     TrendDirection = "up"
	TrendDown   TrendDirection = "down"
	TrendStable TrendDirection = "stable"
)

// trendChangeThreshold is the percent change between halves that counts as movement.
const trendChangeThreshold = 5.0

// TrendStats describes one metric over a window.
type TrendStats struct {
	Mean             float64        `json:"mean"`
	StdDev           float64        `json:"stdDev"`
	ConsistencyScore int            `json:"consistencyScore"`
	Trend            TrendDirection `json:"trend"`
}

// ComputeTrendStats summarizes a daily series against a goal.
//
// non-positive values are unlogged days and are dropped before any statistic,
// so a missing day never reads as zero intake. a non-positive goal falls back
// to the series mean, which turns the consistency score into a
// coefficient-of-variation measure.
func ComputeTrendStats(values []float64, goal float64) TrendStats {
	logged := make([]float64, 0, len(values))
	for _, v := range values {
		if v > 0 && !math.IsInf(v, 0) {
			logged = append(logged, v)
		}
	}

	if len(logged) == 0 {
		return TrendStats{Trend: TrendStable}
	}

	m := mean(logged)
	sd := populationStdDev(logged)

	denominator := goal
	if denominator <= 0 || math.IsNaN(denominator) || math.IsInf(denominator, 0) {
		denominator = m
	}

	return TrendStats{
		Mean:             m,
		StdDev:           sd,
		ConsistencyScore: roundScore(100 - (sd/denominator)*100),
		Trend:            trendDirection(logged),
	}
}

// trendDirection compares the mean of the first half against the mean of the
// last half. for odd lengths the middle element belongs to neither.
func trendDirection(series []float64) TrendDirection {
	half := len(series) / 2
	if half < 2 {
		return TrendStable
	}

	firstAvg := mean(series[:half])
	secondAvg := mean(series[len(series)-half:])
	if firstAvg == 0 {
		return TrendStable
	}

	changePct := (secondAvg - firstAvg) / firstAvg * 100
	switch {
	case changePct > trendChangeThreshold:
		return TrendUp
	case changePct < -trendChangeThreshold:
		return TrendDown
	default:
		return TrendStable
	}
}

// ConfidenceLevel buckets how much of a window has data.
type ConfidenceLevel string

const (
	ConfidenceHigh   ConfidenceLevel = "high"
	ConfidenceMedium ConfidenceLevel = "medium"
	ConfidenceLow    ConfidenceLevel = "low"
)

// confidence thresholds, in percent of logged days.
const (
	highConfidenceMinPct   = 70
	mediumConfidenceMinPct = 40
)

// Confidence tells consumers how far to trust a window's statistics.
type Confidence struct {
	LoggedDays int             `json:"loggedDays"`
	TotalDays  int             `json:"totalDays"`
	Percentage int             `json:"percentage"`
	Level      ConfidenceLevel `json:"level"`
}

// ComputeConfidence rates the coverage of a window.
func ComputeConfidence(loggedDays, totalDays int) Confidence {
	c := Confidence{LoggedDays: loggedDays, TotalDays: totalDays, Level: ConfidenceLow}
	if totalDays <= 0 {
		return c
	}

	c.Percentage = roundScore(float64(loggedDays) / float64(totalDays) * 100)
	switch {
	case c.Percentage >= highConfidenceMinPct:
		c.Level = ConfidenceHigh
	case c.Percentage >= mediumConfidenceMinPct:
		c.Level = ConfidenceMedium
	}
	return c
}

// MetricTrends groups the trend statistics of the four macros.
type MetricTrends struct {
	Calories TrendStats `json:"calories"`
	Protein  TrendStats `json:"protein"`
	Carbs    TrendStats `json:"carbs"`
	Fat      TrendStats `json:"fat"`
}

// ComputeMetricTrends runs ComputeTrendStats for every macro.
// buckets must be ordered by day; zero-filled days are dropped per metric.
func ComputeMetricTrends(buckets []DayBucket, goals GoalTargets) MetricTrends {
	goals = goals.normalized()

	calories := make([]float64, len(buckets))
	protein := make([]float64, len(buckets))
	carbs := make([]float64, len(buckets))
	fat := make([]float64, len(buckets))
	for i, b := range buckets {
		calories[i] = b.Calories
		protein[i] = b.Protein
		carbs[i] = b.Carbs
		fat[i] = b.Fat
	}

	return MetricTrends{
		Calories: ComputeTrendStats(calories, goals.Calories),
		Protein:  ComputeTrendStats(protein, goals.Protein),
		Carbs:    ComputeTrendStats(carbs, goals.Carbs),
		Fat:      ComputeTrendStats(fat, goals.Fat),
	}
}
