package domain

import (
	"errors"
	"math"
	"time"
)

// LogEntry is a single meal-log record as the engine sees it.
// entries are owned by the log store; the engine only reads snapshots.
type LogEntry struct {
	id         MealLogID
	userID     UserID
	consumedAt time.Time
	calories   float64
	protein    float64
	carbs      float64
	fat        float64
	// counted is false while the entry is still being analyzed or was superseded.
	counted bool
}

var (
	ErrEntryUserEmpty   = errors.New("meal log entry must have a user id")
	ErrEntryTimeEmpty   = errors.New("meal log entry must have a timestamp")
	ErrNegativeNutrient = errors.New("nutrient values must be non-negative numbers")
)

// Nutrients groups the four tracked macro values of an entry.
type Nutrients struct {
	Calories float64
	Protein  float64
	Carbs    float64
	Fat      float64
}

func (n Nutrients) validate() error {
	for _, v := range []float64{n.Calories, n.Protein, n.Carbs, n.Fat} {
		if v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
			return ErrNegativeNutrient
		}
	}
	return nil
}

// NewLogEntry creates a new validated LogEntry.
func NewLogEntry(userID UserID, consumedAt time.Time, nutrients Nutrients, counted bool) (*LogEntry, error) {
	if userID.IsZero() {
		return nil, ErrEntryUserEmpty
	}
	if consumedAt.IsZero() {
		return nil, ErrEntryTimeEmpty
	}
	if err := nutrients.validate(); err != nil {
		return nil, err
	}

	return &LogEntry{
		id:         NewMealLogID(),
		userID:     userID,
		consumedAt: consumedAt.UTC(),
		calories:   nutrients.Calories,
		protein:    nutrients.Protein,
		carbs:      nutrients.Carbs,
		fat:        nutrients.Fat,
		counted:    counted,
	}, nil
}

// ReconstructLogEntry recreates a LogEntry from stored data.
// use this when loading from database, not for creating new entries.
func ReconstructLogEntry(
	id MealLogID,
	userID UserID,
	consumedAt time.Time,
	nutrients Nutrients,
	counted bool,
) *LogEntry {
	return &LogEntry{
		id:         id,
		userID:     userID,
		consumedAt: consumedAt,
		calories:   nutrients.Calories,
		protein:    nutrients.Protein,
		carbs:      nutrients.Carbs,
		fat:        nutrients.Fat,
		counted:    counted,
	}
}

// ID returns the entry's unique identifier.
func (e *LogEntry) ID() MealLogID {
	return e.id
}

// UserID returns the user who logged this entry.
func (e *LogEntry) UserID() UserID {
	return e.userID
}

// ConsumedAt returns the instant the meal was eaten.
func (e *LogEntry) ConsumedAt() time.Time {
	return e.consumedAt
}

// Nutrients returns the macro values of the entry.
func (e *LogEntry) Nutrients() Nutrients {
	return Nutrients{
		Calories: e.calories,
		Protein:  e.protein,
		Carbs:    e.carbs,
		Fat:      e.fat,
	}
}

// IsCounted reports whether the entry participates in aggregates.
func (e *LogEntry) IsCounted() bool {
	return e.counted
}
