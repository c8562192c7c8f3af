package application

import (
	"context"
	"strconv"
	"time"

	"github.com/joacominatel/platewise/internal/domain"
	"github.com/joacominatel/platewise/internal/infrastructure/logging"
)

// GetProgressInput contains the data needed to compute XP and rank.
type GetProgressInput struct {
	ExternalUserID string
}

// GetProgressOutput is the progression view plus the window it covers.
type GetProgressOutput struct {
	domain.ProgressState
	LookbackDays int `json:"lookbackDays"`
}

// GetProgressUseCase builds the progression view.
type GetProgressUseCase struct {
	loader *InsightLoader
	logger *logging.Logger
}

// NewGetProgressUseCase creates a new GetProgressUseCase.
func NewGetProgressUseCase(loader *InsightLoader, logger *logging.Logger) *GetProgressUseCase {
	return &GetProgressUseCase{
		loader: loader,
		logger: logger.WithComponent("get_progress"),
	}
}

// Execute accrues XP over the configured lookback and resolves the rank.
func (uc *GetProgressUseCase) Execute(ctx context.Context, input GetProgressInput) (*GetProgressOutput, error) {
	start := time.Now()

	s, err := uc.loader.resolve(ctx, input.ExternalUserID)
	if err != nil {
		uc.logger.Warn("progress rejected", "user_id", input.ExternalUserID, "reason", err.Error())
		return nil, err
	}

	cfg := uc.loader.Config().Progression
	// XP reads the lookback only; the streak scans further back
	window := domain.WindowEndingOn(s.today, max(cfg.LookbackDays, domain.StreakWindow(s.today).Len()))

	entries, err := uc.loader.load(ctx, s, window)
	if err != nil {
		uc.logger.Error("progress failed", "user_id", input.ExternalUserID, "error", err.Error())
		return nil, err
	}

	key := cacheKey("progress", s, window, entries, strconv.Itoa(cfg.MaxTierSpan))

	var out GetProgressOutput
	hit, err := uc.loader.serve(ctx, "progress", key, &out, func() any {
		buckets := domain.AggregateIn(entries, window, s.location, false)
		return GetProgressOutput{
			ProgressState: domain.BuildProgressState(buckets, s.today, cfg),
			LookbackDays:  cfg.LookbackDays,
		}
	})
	if err != nil {
		uc.logger.Error("progress failed", "user_id", input.ExternalUserID, "error", err.Error())
		return nil, err
	}

	uc.logger.WithContext(ctx).InsightComputed("progress", input.ExternalUserID, time.Since(start), hit)
	return &out, nil
}
