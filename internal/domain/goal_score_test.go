package domain

import "testing"

func TestScoreDay(t *testing.T) {
	goals := GoalTargets{Calories: 2000, Protein: 150, Carbs: 200, Fat: 65}

	tests := []struct {
		name           string
		bucket         DayBucket
		expectedScore  int
		expectedStatus DayStatusKind
	}{
		{"perfect_day", DayBucket{Calories: 2000, Protein: 150, Carbs: 200, Fat: 65, MealCount: 3}, 100, DayOnTrack},
		{"no_meals", DayBucket{Calories: 2000, Protein: 150, Carbs: 200, Fat: 65}, 0, DayNoData},
		{"calories_ten_percent_over", DayBucket{Calories: 2200, Protein: 150, Carbs: 200, Fat: 65, MealCount: 2}, 92, DayOnTrack},
		{"calories_half_missing", DayBucket{Calories: 1000, Protein: 150, Carbs: 200, Fat: 65, MealCount: 1}, 60, DayOffTarget},
		{"everything_half_off", DayBucket{Calories: 1000, Protein: 75, Carbs: 100, Fat: 32.5, MealCount: 1}, 0, DayFarOff},
		{"far_beyond_target_floors_at_zero", DayBucket{Calories: 9000, Protein: 900, Carbs: 900, Fat: 900, MealCount: 5}, 0, DayFarOff},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status := ScoreDay(tt.bucket, goals)
			if status.GoalScore != tt.expectedScore {
				t.Errorf("expected score %d, got %d", tt.expectedScore, status.GoalScore)
			}
			if status.DayStatus != tt.expectedStatus {
				t.Errorf("expected status %s, got %s", tt.expectedStatus, status.DayStatus)
			}
			if status.MealCount != tt.bucket.MealCount || status.Calories != tt.bucket.Calories {
				t.Errorf("expected totals to be carried over, got %+v", status)
			}
		})
	}
}

func TestScoreDay_Monotonic(t *testing.T) {
	goals := GoalTargets{Calories: 2000, Protein: 150, Carbs: 200, Fat: 65}

	prev := 101
	for protein := 150.0; protein <= 400; protein += 5 {
		bucket := DayBucket{Calories: 2000, Protein: protein, Carbs: 200, Fat: 65, MealCount: 2}
		score := ScoreDay(bucket, goals).GoalScore
		if score > prev {
			t.Fatalf("score increased from %d to %d at protein %f", prev, score, protein)
		}
		prev = score
	}
}

func TestScoreDay_ZeroGoalsUseDefaults(t *testing.T) {
	bucket := DayBucket{
		Calories:  DefaultCalorieTarget,
		Protein:   DefaultProteinTarget,
		Carbs:     DefaultCarbsTarget,
		Fat:       DefaultFatTarget,
		MealCount: 1,
	}

	status := ScoreDay(bucket, GoalTargets{})
	if status.GoalScore != 100 {
		t.Errorf("expected score 100 against default goals, got %d", status.GoalScore)
	}
}
