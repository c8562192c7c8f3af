package application

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/joacominatel/platewise/internal/domain"
	"github.com/joacominatel/platewise/internal/infrastructure/logging"
)

var (
	// ErrIngestionBufferFull is returned in async mode when the worker cannot keep up.
	ErrIngestionBufferFull = errors.New("meal ingestion buffer is full")
)

// LogMealInput contains the data needed to record a meal.
type LogMealInput struct {
	ExternalUserID string
	Calories       float64
	Protein        float64
	Carbs          float64
	Fat            float64
	ConsumedAt     *time.Time // optional, defaults to now
	Counted        *bool      // optional, defaults to true
}

// LogMealOutput contains the result of recording a meal.
type LogMealOutput struct {
	EntryID    string    `json:"entryId"`
	UserID     string    `json:"userId"`
	ConsumedAt time.Time `json:"consumedAt"`
	DayKey     string    `json:"dayKey"`
	Counted    bool      `json:"counted"`
	Accepted   bool      `json:"accepted"`
	Async      bool      `json:"async"`
}

// LogMealUseCase writes meal log entries, the only write path into the log.
type LogMealUseCase struct {
	mealRepo     domain.MealLogRepository
	profileRepo  domain.ProfileRepository
	entryChan    chan<- *domain.LogEntry
	defaultTZ    string
	timeProvider TimeProvider
	logger       *logging.Logger
}

// NewLogMealUseCase creates a new LogMealUseCase.
func NewLogMealUseCase(
	mealRepo domain.MealLogRepository,
	profileRepo domain.ProfileRepository,
	logger *logging.Logger,
) *LogMealUseCase {
	return &LogMealUseCase{
		mealRepo:     mealRepo,
		profileRepo:  profileRepo,
		defaultTZ:    domain.DefaultTimezone,
		timeProvider: RealTime,
		logger:       logger.WithComponent("log_meal"),
	}
}

// WithEntryChannel enables async mode: entries are handed to the ingestion
// worker instead of being saved inline.
func (uc *LogMealUseCase) WithEntryChannel(ch chan<- *domain.LogEntry) *LogMealUseCase {
	uc.entryChan = ch
	return uc
}

// WithTimeProvider sets a custom time provider for testing.
func (uc *LogMealUseCase) WithTimeProvider(tp TimeProvider) *LogMealUseCase {
	uc.timeProvider = tp
	return uc
}

// WithDefaultTimezone sets the zone used for profiles without one.
func (uc *LogMealUseCase) WithDefaultTimezone(tz string) *LogMealUseCase {
	uc.defaultTZ = tz
	return uc
}

// Execute validates and records a meal.
func (uc *LogMealUseCase) Execute(ctx context.Context, input LogMealInput) (*LogMealOutput, error) {
	profile, err := uc.profileRepo.FindByExternalID(ctx, input.ExternalUserID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			uc.logger.Warn("meal rejected: profile not found",
				"user_id", input.ExternalUserID,
				"outcome", "rejected",
			)
			return nil, ErrProfileNotFound
		}
		return nil, fmt.Errorf("profile lookup: %w", err)
	}

	consumedAt := uc.timeProvider()
	if input.ConsumedAt != nil {
		consumedAt = *input.ConsumedAt
	}
	counted := true
	if input.Counted != nil {
		counted = *input.Counted
	}

	entry, err := domain.NewLogEntry(profile.ID(), consumedAt, domain.Nutrients{
		Calories: input.Calories,
		Protein:  input.Protein,
		Carbs:    input.Carbs,
		Fat:      input.Fat,
	}, counted)
	if err != nil {
		uc.logger.Warn("meal rejected: invalid entry",
			"user_id", input.ExternalUserID,
			"reason", err.Error(),
		)
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}

	async := uc.entryChan != nil
	if async {
		select {
		case uc.entryChan <- entry:
		default:
			uc.logger.Warn("meal rejected: ingestion buffer full",
				"user_id", input.ExternalUserID,
				"outcome", "rejected",
			)
			return nil, ErrIngestionBufferFull
		}
	} else if err := uc.mealRepo.Save(ctx, entry); err != nil {
		uc.logger.Error("meal save failed",
			"user_id", input.ExternalUserID,
			"entry_id", entry.ID().String(),
			"error", err.Error(),
		)
		return nil, fmt.Errorf("saving meal: %w", err)
	}

	dayKey := domain.DayKey(entry.ConsumedAt(), profile.TimezoneOr(uc.defaultTZ))

	uc.logger.WithContext(ctx).Info("meal logged",
		"entry_id", entry.ID().String(),
		"user_id", input.ExternalUserID,
		"day_key", dayKey,
		"counted", counted,
		"async", async,
		"outcome", "accepted",
	)

	return &LogMealOutput{
		EntryID:    entry.ID().String(),
		UserID:     profile.ID().String(),
		ConsumedAt: entry.ConsumedAt(),
		DayKey:     dayKey,
		Counted:    counted,
		Accepted:   true,
		Async:      async,
	}, nil
}
