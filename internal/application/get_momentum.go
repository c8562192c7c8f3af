package application

import (
	"context"
	"time"

	"github.com/joacominatel/platewise/internal/domain"
	"github.com/joacominatel/platewise/internal/infrastructure/logging"
)

// momentumFactorDays is the longest trailing window a momentum factor reads.
const momentumFactorDays = 14

// GetMomentumInput contains the data needed to compute momentum.
type GetMomentumInput struct {
	ExternalUserID string
}

// GetMomentumOutput is the momentum view.
type GetMomentumOutput struct {
	domain.MomentumState
}

// GetMomentumUseCase builds the momentum view.
type GetMomentumUseCase struct {
	loader *InsightLoader
	logger *logging.Logger
}

// NewGetMomentumUseCase creates a new GetMomentumUseCase.
func NewGetMomentumUseCase(loader *InsightLoader, logger *logging.Logger) *GetMomentumUseCase {
	return &GetMomentumUseCase{
		loader: loader,
		logger: logger.WithComponent("get_momentum"),
	}
}

// Execute computes the momentum score for today.
func (uc *GetMomentumUseCase) Execute(ctx context.Context, input GetMomentumInput) (*GetMomentumOutput, error) {
	start := time.Now()

	s, err := uc.loader.resolve(ctx, input.ExternalUserID)
	if err != nil {
		uc.logger.Warn("momentum rejected", "user_id", input.ExternalUserID, "reason", err.Error())
		return nil, err
	}

	// factors need two weeks; the streak needs its full scan
	window := domain.StreakWindow(s.today)
	if window.Len() < momentumFactorDays {
		window = domain.WindowEndingOn(s.today, momentumFactorDays)
	}

	entries, err := uc.loader.load(ctx, s, window)
	if err != nil {
		uc.logger.Error("momentum failed", "user_id", input.ExternalUserID, "error", err.Error())
		return nil, err
	}

	goals := s.profile.Goals()
	key := cacheKey("momentum", s, window, entries)

	var out GetMomentumOutput
	hit, err := uc.loader.serve(ctx, "momentum", key, &out, func() any {
		buckets := domain.AggregateIn(entries, window, s.location, false)
		return GetMomentumOutput{
			MomentumState: domain.BuildMomentumState(buckets, s.today, goals),
		}
	})
	if err != nil {
		uc.logger.Error("momentum failed", "user_id", input.ExternalUserID, "error", err.Error())
		return nil, err
	}

	uc.logger.Info("momentum served",
		"user_id", input.ExternalUserID,
		"score", out.Score,
		"level", string(out.Level),
		"trend", string(out.Trend),
	)
	uc.logger.WithContext(ctx).InsightComputed("momentum", input.ExternalUserID, time.Since(start), hit)
	return &out, nil
}
