package domain

import (
	"fmt"
	"math"

	"github.com/google/uuid"
)

// UserID represents a unique identifier for a user profile.
// wrapping uuid to enforce type safety and prevent mixing with other ids.
type UserID struct {
	value uuid.UUID
}

// NewUserID creates a new random UserID.
func NewUserID() UserID {
	return UserID{value: uuid.New()}
}

// ParseUserID parses a string into a UserID.
func ParseUserID(s string) (UserID, error) {
	id, err := uuid.Parse(s)
	if err != nil {
		return UserID{}, fmt.Errorf("invalid user id: %w", err)
	}
	return UserID{value: id}, nil
}

// String returns the string representation of the UserID.
func (id UserID) String() string {
	return id.value.String()
}

// UUID returns the underlying uuid value.
func (id UserID) UUID() uuid.UUID {
	return id.value
}

// IsZero returns true if the UserID is not set.
func (id UserID) IsZero() bool {
	return id.value == uuid.Nil
}

// MealLogID represents a unique identifier for a meal log entry.
type MealLogID struct {
	value uuid.UUID
}

// NewMealLogID creates a new random MealLogID.
func NewMealLogID() MealLogID {
	return MealLogID{value: uuid.New()}
}

// ParseMealLogID parses a string into a MealLogID.
func ParseMealLogID(s string) (MealLogID, error) {
	id, err := uuid.Parse(s)
	if err != nil {
		return MealLogID{}, fmt.Errorf("invalid meal log id: %w", err)
	}
	return MealLogID{value: id}, nil
}

// String returns the string representation of the MealLogID.
func (id MealLogID) String() string {
	return id.value.String()
}

// UUID returns the underlying uuid value.
func (id MealLogID) UUID() uuid.UUID {
	return id.value
}

// IsZero returns true if the MealLogID is not set.
func (id MealLogID) IsZero() bool {
	return id.value == uuid.Nil
}

// default targets substituted for missing or non-positive profile goals.
const (
	DefaultCalorieTarget = 2000.0
	DefaultProteinTarget = 150.0
	DefaultCarbsTarget   = 200.0
	DefaultFatTarget     = 65.0
)

// GoalTargets holds the daily macro targets a day is scored against.
// every field is strictly positive once built through NewGoalTargets.
type GoalTargets struct {
	Calories float64 `json:"calories"`
	Protein  float64 `json:"protein"`
	Carbs    float64 `json:"carbs"`
	Fat      float64 `json:"fat"`
}

// NewGoalTargets builds targets from raw profile values.
// non-positive or non-finite values are replaced by the package defaults,
// so the engine never divides by zero.
func NewGoalTargets(calories, protein, carbs, fat float64) GoalTargets {
	return GoalTargets{
		Calories: positiveOr(calories, DefaultCalorieTarget),
		Protein:  positiveOr(protein, DefaultProteinTarget),
		Carbs:    positiveOr(carbs, DefaultCarbsTarget),
		Fat:      positiveOr(fat, DefaultFatTarget),
	}
}

// DefaultGoalTargets returns the fallback targets.
func DefaultGoalTargets() GoalTargets {
	return GoalTargets{
		Calories: DefaultCalorieTarget,
		Protein:  DefaultProteinTarget,
		Carbs:    DefaultCarbsTarget,
		Fat:      DefaultFatTarget,
	}
}

// normalized re-applies the defaults. engine entry points call this so a
// zero-value GoalTargets still behaves.
func (g GoalTargets) normalized() GoalTargets {
	return NewGoalTargets(g.Calories, g.Protein, g.Carbs, g.Fat)
}

func positiveOr(v, fallback float64) float64 {
	if v <= 0 || math.IsNaN(v) || math.IsInf(v, 0) {
		return fallback
	}
	return v
}
