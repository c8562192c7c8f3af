package domain

import (
	"math"
	"testing"
)

func fullDay(key string) DayBucket {
	return DayBucket{DayKey: key, Calories: 2000, Protein: 150, Carbs: 200, Fat: 65, MealCount: 3}
}

func TestScoreMomentum_Bounds(t *testing.T) {
	tests := []struct {
		name     string
		factors  MomentumFactors
		expected int
	}{
		{"all_max", MomentumFactors{1, 1, 1, 1, 1}, 100},
		{"all_min", MomentumFactors{0, 0, 0, 0, -1}, 0},
		{"neutral_improvement", MomentumFactors{0, 0, 0, 0, 0}, 5},
		{"out_of_range_high", MomentumFactors{5, 5, 5, 5, 5}, 100},
		{"out_of_range_low", MomentumFactors{-3, -3, -3, -3, -3}, 0},
		{"nan", MomentumFactors{math.NaN(), 1, 1, 1, 1}, 65},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ScoreMomentum(tt.factors)
			if got != tt.expected {
				t.Errorf("expected %d, got %d", tt.expected, got)
			}
			if got < 0 || got > 100 {
				t.Errorf("score %d out of bounds", got)
			}
		})
	}
}

func TestScoreMomentum_ImprovementContribution(t *testing.T) {
	improvement := float64(7-3) / 7
	if MomentumTrendFor(improvement) != TrendUp {
		t.Errorf("expected trend up for improvement %f", improvement)
	}

	// only the improvement term is non-zero: ((0.571+1)/2)*10 ~ 7.86.
	got := ScoreMomentum(MomentumFactors{Improvement: improvement})
	if got != 8 {
		t.Errorf("expected 8, got %d", got)
	}
}

func TestMomentumLevelFor(t *testing.T) {
	tests := []struct {
		score    int
		expected MomentumLevel
	}{
		{100, MomentumStrong},
		{70, MomentumStrong},
		{69, MomentumBuilding},
		{50, MomentumBuilding},
		{49, MomentumSteady},
		{25, MomentumSteady},
		{24, MomentumStarting},
		{0, MomentumStarting},
	}

	for _, tt := range tests {
		if got := MomentumLevelFor(tt.score); got != tt.expected {
			t.Errorf("score %d: expected %s, got %s", tt.score, tt.expected, got)
		}
	}
}

func TestComputeMomentumFactors(t *testing.T) {
	today := "2024-05-15"

	t.Run("stability_needs_three_days", func(t *testing.T) {
		buckets := map[string]DayBucket{
			"2024-05-14": fullDay("2024-05-14"),
			"2024-05-15": fullDay("2024-05-15"),
		}
		f := ComputeMomentumFactors(buckets, today, DefaultGoalTargets())
		if f.CalorieStability != 0 {
			t.Errorf("expected stability 0 with two logged days, got %f", f.CalorieStability)
		}
		if f.ProteinAdherence != 1 {
			t.Errorf("expected adherence 1, got %f", f.ProteinAdherence)
		}
	})

	t.Run("protein_ratio_capped", func(t *testing.T) {
		over := fullDay("2024-05-15")
		over.Protein = 300
		under := fullDay("2024-05-14")
		under.Protein = 75
		buckets := map[string]DayBucket{"2024-05-15": over, "2024-05-14": under}

		f := ComputeMomentumFactors(buckets, today, DefaultGoalTargets())
		if math.Abs(f.ProteinAdherence-0.75) > 1e-9 {
			t.Errorf("expected adherence 0.75, got %f", f.ProteinAdherence)
		}
	})

	t.Run("varying_calories", func(t *testing.T) {
		buckets := make(map[string]DayBucket)
		for i, cal := range []float64{1000, 2000, 3000} {
			b := fullDay(AddDays(today, -i))
			b.Calories = cal
			buckets[b.DayKey] = b
		}
		f := ComputeMomentumFactors(buckets, today, DefaultGoalTargets())

		// population stddev of 1000/2000/3000 is 816.5, mean 2000.
		expected := 1 - math.Sqrt(2.0/3.0)*1000/2000
		if math.Abs(f.CalorieStability-expected) > 1e-9 {
			t.Errorf("expected stability %f, got %f", expected, f.CalorieStability)
		}
		if f.RecentActivity != 1 {
			t.Errorf("expected recent activity 1, got %f", f.RecentActivity)
		}
	})
}

func TestBuildMomentumState(t *testing.T) {
	today := "2024-05-15"

	t.Run("strong_week_after_weak_week", func(t *testing.T) {
		buckets := make(map[string]DayBucket)
		for i := 0; i < 7; i++ {
			key := AddDays(today, -i)
			buckets[key] = fullDay(key)
		}
		for _, key := range []string{"2024-05-02", "2024-05-03", "2024-05-04"} {
			buckets[key] = fullDay(key)
		}

		state := BuildMomentumState(buckets, today, DefaultGoalTargets())

		if state.Score != 98 {
			t.Errorf("expected score 98, got %d", state.Score)
		}
		if state.Level != MomentumStrong {
			t.Errorf("expected strong, got %s", state.Level)
		}
		if state.Trend != TrendUp {
			t.Errorf("expected trend up, got %s", state.Trend)
		}
		if state.Streak != 7 {
			t.Errorf("expected streak 7, got %d", state.Streak)
		}
		if state.WeeklyChange != 4 {
			t.Errorf("expected weekly change 4, got %d", state.WeeklyChange)
		}
		if state.Building != "Daily Logging Habit" {
			t.Errorf("expected Daily Logging Habit, got %q", state.Building)
		}
		if state.Win != "Protein Consistency" {
			t.Errorf("expected Protein Consistency, got %q", state.Win)
		}
		expected := FactorPercents{100, 100, 100, 100, 57}
		if state.Factors != expected {
			t.Errorf("expected factors %+v, got %+v", expected, state.Factors)
		}
	})

	t.Run("no_history", func(t *testing.T) {
		state := BuildMomentumState(nil, today, DefaultGoalTargets())

		if state.Score != 5 || state.Level != MomentumStarting || state.Trend != TrendStable {
			t.Errorf("unexpected empty state: %+v", state)
		}
		if state.Building != "Consistency" || state.Win != "" {
			t.Errorf("unexpected labels: building %q win %q", state.Building, state.Win)
		}
	})
}

func TestWinLabel(t *testing.T) {
	goals := DefaultGoalTargets()

	tests := []struct {
		name     string
		today    DayBucket
		streak   int
		expected string
	}{
		{"protein_at_eighty_percent", DayBucket{Protein: 120, MealCount: 1}, 0, "Protein Consistency"},
		{"calories_within_ten_percent", DayBucket{Protein: 50, Calories: 2100, MealCount: 2}, 0, "Calorie Balance"},
		{"streak", DayBucket{Protein: 50, Calories: 1000, MealCount: 1}, 3, "On a Roll"},
		{"showing_up", DayBucket{Protein: 50, Calories: 1000, MealCount: 1}, 1, "Showing Up"},
		{"streak_without_today", DayBucket{}, 4, "On a Roll"},
		{"nothing", DayBucket{}, 0, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := winLabel(tt.today, goals, tt.streak); got != tt.expected {
				t.Errorf("expected %q, got %q", tt.expected, got)
			}
		})
	}
}

func TestBuildingLabel(t *testing.T) {
	tests := []struct {
		name     string
		factors  MomentumFactors
		expected string
	}{
		{"daily_habit", MomentumFactors{LoggingConsistency: 6.0 / 7.0}, "Daily Logging Habit"},
		{"protein", MomentumFactors{LoggingConsistency: 0.5, ProteinAdherence: 0.9}, "Protein Foundation"},
		{"improving", MomentumFactors{LoggingConsistency: 0.5, Improvement: 0.2}, "Momentum"},
		{"default", MomentumFactors{}, "Consistency"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := buildingLabel(tt.factors); got != tt.expected {
				t.Errorf("expected %q, got %q", tt.expected, got)
			}
		})
	}
}
