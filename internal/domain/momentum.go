package domain

import "math"

// MomentumLevel is the qualitative bucket of a momentum score.
type MomentumLevel string

const (
	MomentumStrong   MomentumLevel = "strong"
	MomentumBuilding MomentumLevel = "building"
	MomentumSteady   MomentumLevel = "steady"
	MomentumStarting MomentumLevel = "starting"
)

// factor weights of the composite score. they sum to 100.
const (
	loggingConsistencyWeight = 35
	proteinAdherenceWeight   = 25
	calorieStabilityWeight   = 15
	recentActivityWeight     = 15
	improvementWeight        = 10
)

// trailing windows, in days, ending today.
const (
	consistencyWindowDays = 7
	adherenceWindowDays   = 14
	recentWindowDays      = 3
	minStabilityDays      = 3
	improvementTrendDelta = 0.1
)

// label thresholds over today's totals.
const (
	proteinWinRatio     = 0.8
	calorieWinTolerance = 0.1
	streakWinDays       = 3
)

// MomentumFactors are the five behavioral inputs of the momentum score.
// all lie in [0,1] except Improvement, which lies in [-1,1].
type MomentumFactors struct {
	LoggingConsistency float64
	ProteinAdherence   float64
	CalorieStability   float64
	RecentActivity     float64
	Improvement        float64
}

// FactorPercents are the factors rounded to whole percentages for display.
type FactorPercents struct {
	LoggingConsistency int `json:"loggingConsistency"`
	ProteinAdherence   int `json:"proteinAdherence"`
	CalorieStability   int `json:"calorieStability"`
	RecentActivity     int `json:"recentActivity"`
	Improvement        int `json:"improvement"`
}

// MomentumState is the momentum view for one user and day.
type MomentumState struct {
	Level        MomentumLevel  `json:"level"`
	Trend        TrendDirection `json:"trend"`
	Score        int            `json:"score"`
	Streak       int            `json:"streak"`
	WeeklyChange int            `json:"weeklyChange"`
	Building     string         `json:"building"`
	Win          string         `json:"win"`
	Factors      FactorPercents `json:"factors"`
}

// ComputeMomentumFactors derives the five factors from non zero-filled buckets.
// this is a pure function: today and the targets are explicit inputs.
func ComputeMomentumFactors(buckets map[string]DayBucket, today string, goals GoalTargets) MomentumFactors {
	goals = goals.normalized()
	active := ActiveDaysFrom(buckets)

	last7 := active.CountIn(WindowEndingOn(today, consistencyWindowDays))
	prior7 := active.CountIn(WindowEndingOn(AddDays(today, -consistencyWindowDays), consistencyWindowDays))
	recent := active.CountIn(WindowEndingOn(today, recentWindowDays))

	var ratios, calories []float64
	for _, key := range WindowEndingOn(today, adherenceWindowDays).Days() {
		b, ok := buckets[key]
		if !ok || !b.IsActive() {
			continue
		}
		ratios = append(ratios, math.Min(1, b.Protein/goals.Protein))
		calories = append(calories, b.Calories)
	}

	return MomentumFactors{
		LoggingConsistency: float64(last7) / consistencyWindowDays,
		ProteinAdherence:   mean(ratios),
		CalorieStability:   calorieStability(calories),
		RecentActivity:     float64(recent) / recentWindowDays,
		Improvement:        float64(last7-prior7) / consistencyWindowDays,
	}
}

// calorieStability is 1 minus the coefficient of variation, floored at 0.
// fewer than minStabilityDays logged days gives 0.
func calorieStability(calories []float64) float64 {
	if len(calories) < minStabilityDays {
		return 0
	}
	m := mean(calories)
	if m <= 0 {
		return 0
	}
	return math.Max(0, 1-populationStdDev(calories)/m)
}

// ScoreMomentum blends the factors into a 0-100 composite.
// factors are clamped to their ranges first, so the score is always bounded.
func ScoreMomentum(f MomentumFactors) int {
	lc := clampFloat(nanToZero(f.LoggingConsistency), 0, 1)
	pa := clampFloat(nanToZero(f.ProteinAdherence), 0, 1)
	cs := clampFloat(nanToZero(f.CalorieStability), 0, 1)
	ra := clampFloat(nanToZero(f.RecentActivity), 0, 1)
	im := clampFloat(nanToZero(f.Improvement), -1, 1)

	score := lc*loggingConsistencyWeight +
		pa*proteinAdherenceWeight +
		cs*calorieStabilityWeight +
		ra*recentActivityWeight +
		(im+1)/2*improvementWeight
	return roundScore(score)
}

// MomentumLevelFor classifies a composite score.
func MomentumLevelFor(score int) MomentumLevel {
	switch {
	case score >= 70:
		return MomentumStrong
	case score >= 50:
		return MomentumBuilding
	case score >= 25:
		return MomentumSteady
	default:
		return MomentumStarting
	}
}

// MomentumTrendFor classifies the improvement factor.
func MomentumTrendFor(improvement float64) TrendDirection {
	switch {
	case improvement > improvementTrendDelta:
		return TrendUp
	case improvement < -improvementTrendDelta:
		return TrendDown
	default:
		return TrendStable
	}
}

// BuildMomentumState computes the full momentum view.
func BuildMomentumState(buckets map[string]DayBucket, today string, goals GoalTargets) MomentumState {
	goals = goals.normalized()
	f := ComputeMomentumFactors(buckets, today, goals)
	score := ScoreMomentum(f)
	streak := CurrentStreak(ActiveDaysFrom(buckets), today)

	return MomentumState{
		Level:        MomentumLevelFor(score),
		Trend:        MomentumTrendFor(f.Improvement),
		Score:        score,
		Streak:       streak,
		WeeklyChange: roundHalfUp(f.Improvement * consistencyWindowDays),
		Building:     buildingLabel(f),
		Win:          winLabel(buckets[today], goals, streak),
		Factors: FactorPercents{
			LoggingConsistency: roundHalfUp(f.LoggingConsistency * 100),
			ProteinAdherence:   roundHalfUp(f.ProteinAdherence * 100),
			CalorieStability:   roundHalfUp(f.CalorieStability * 100),
			RecentActivity:     roundHalfUp(f.RecentActivity * 100),
			Improvement:        roundHalfUp(f.Improvement * 100),
		},
	}
}

// winLabel picks the first achievement today's totals qualify for.
func winLabel(today DayBucket, goals GoalTargets, streak int) string {
	switch {
	case today.MealCount > 0 && today.Protein >= goals.Protein*proteinWinRatio:
		return "Protein Consistency"
	case today.MealCount > 0 && math.Abs(today.Calories-goals.Calories) <= goals.Calories*calorieWinTolerance:
		return "Calorie Balance"
	case streak >= streakWinDays:
		return "On a Roll"
	case today.MealCount >= 1:
		return "Showing Up"
	default:
		return ""
	}
}

// buildingLabel names the habit the user is currently building.
func buildingLabel(f MomentumFactors) string {
	switch {
	case f.LoggingConsistency >= 6.0/7.0:
		return "Daily Logging Habit"
	case f.ProteinAdherence >= proteinWinRatio:
		return "Protein Foundation"
	case f.Improvement > 0:
		return "Momentum"
	default:
		return "Consistency"
	}
}

func nanToZero(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return v
}
