package domain

import "math"

// DayStatusKind classifies a day's adherence to its goals.
type DayStatusKind string

const (
	DayOnTrack   DayStatusKind = "on_track"
	DayOffTarget DayStatusKind = "off_target"
	DayFarOff    DayStatusKind = "far_off"
	DayNoData    DayStatusKind = "no_data"
)

// macro weights of the composite goal score. they sum to 1.
const (
	calorieScoreWeight = 0.40
	proteinScoreWeight = 0.30
	carbsScoreWeight   = 0.15
	fatScoreWeight     = 0.15
)

// status thresholds on the composite score.
const (
	onTrackMinScore   = 70
	offTargetMinScore = 40
)

// DayStatus is one calendar cell: the day's totals plus its goal score.
type DayStatus struct {
	MealCount int           `json:"mealCount"`
	Calories  float64       `json:"calories"`
	Protein   float64       `json:"protein"`
	Carbs     float64       `json:"carbs"`
	Fat       float64       `json:"fat"`
	DayStatus DayStatusKind `json:"dayStatus"`
	GoalScore int           `json:"goalScore"`
}

// ScoreDay rates one day against the targets.
//
// each macro scores max(0, 100 - deviation*200), where deviation is
// |actual-target|/target: a perfect match is 100 and 50% off is 0.
// the composite weights calories 40%, protein 30%, carbs and fat 15% each.
// a day without meals is no_data with score 0.
func ScoreDay(bucket DayBucket, goals GoalTargets) DayStatus {
	status := DayStatus{
		MealCount: bucket.MealCount,
		Calories:  bucket.Calories,
		Protein:   bucket.Protein,
		Carbs:     bucket.Carbs,
		Fat:       bucket.Fat,
	}

	if bucket.MealCount == 0 {
		status.DayStatus = DayNoData
		return status
	}

	goals = goals.normalized()
	composite := macroScore(bucket.Calories, goals.Calories)*calorieScoreWeight +
		macroScore(bucket.Protein, goals.Protein)*proteinScoreWeight +
		macroScore(bucket.Carbs, goals.Carbs)*carbsScoreWeight +
		macroScore(bucket.Fat, goals.Fat)*fatScoreWeight

	status.GoalScore = roundScore(composite)
	status.DayStatus = classifyScore(status.GoalScore)
	return status
}

// ScoreDays scores every bucket of the map, keyed by day.
func ScoreDays(buckets map[string]DayBucket, goals GoalTargets) map[string]DayStatus {
	out := make(map[string]DayStatus, len(buckets))
	for key, b := range buckets {
		out[key] = ScoreDay(b, goals)
	}
	return out
}

func macroScore(actual, target float64) float64 {
	deviation := math.Abs(actual-target) / target
	return math.Max(0, 100-deviation*200)
}

func classifyScore(score int) DayStatusKind {
	switch {
	case score >= onTrackMinScore:
		return DayOnTrack
	case score >= offTargetMinScore:
		return DayOffTarget
	default:
		return DayFarOff
	}
}
