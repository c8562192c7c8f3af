package application

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/joacominatel/platewise/internal/domain"
	"github.com/joacominatel/platewise/internal/infrastructure/logging"
)

// DefaultTrendDays is used when no window length is requested.
const DefaultTrendDays = 7

// allowedWindowDays are the window lengths the trend and comparison views accept.
var allowedWindowDays = map[int]bool{7: true, 14: true, 30: true, 90: true}

// GetTrendsInput contains the data needed to compute trend statistics.
type GetTrendsInput struct {
	ExternalUserID string
	Days           int
}

// GetTrendsOutput holds per-metric statistics over a trailing window.
type GetTrendsOutput struct {
	Window     domain.DateWindow   `json:"window"`
	Days       int                 `json:"days"`
	Goals      domain.GoalTargets  `json:"goals"`
	Series     []domain.DayBucket  `json:"series"`
	Trends     domain.MetricTrends `json:"trends"`
	Confidence domain.Confidence   `json:"confidence"`
}

// GetTrendsUseCase builds the trend view.
type GetTrendsUseCase struct {
	loader *InsightLoader
	logger *logging.Logger
}

// NewGetTrendsUseCase creates a new GetTrendsUseCase.
func NewGetTrendsUseCase(loader *InsightLoader, logger *logging.Logger) *GetTrendsUseCase {
	return &GetTrendsUseCase{
		loader: loader,
		logger: logger.WithComponent("get_trends"),
	}
}

// Execute computes trend statistics for the trailing window ending today.
func (uc *GetTrendsUseCase) Execute(ctx context.Context, input GetTrendsInput) (*GetTrendsOutput, error) {
	start := time.Now()

	days, err := windowDays(input.Days)
	if err != nil {
		uc.logger.Warn("trends rejected: invalid window", "user_id", input.ExternalUserID, "days", input.Days)
		return nil, err
	}

	s, err := uc.loader.resolve(ctx, input.ExternalUserID)
	if err != nil {
		uc.logger.Warn("trends rejected", "user_id", input.ExternalUserID, "reason", err.Error())
		return nil, err
	}

	window := domain.WindowEndingOn(s.today, days)
	entries, err := uc.loader.load(ctx, s, window)
	if err != nil {
		uc.logger.Error("trends failed", "user_id", input.ExternalUserID, "error", err.Error())
		return nil, err
	}

	goals := s.profile.Goals()
	key := cacheKey("trends", s, window, entries, strconv.Itoa(days))

	var out GetTrendsOutput
	hit, err := uc.loader.serve(ctx, "trends", key, &out, func() any {
		filled := domain.AggregateIn(entries, window, s.location, true)
		series := domain.SortedBuckets(filled)
		logged := domain.ActiveDaysFrom(filled).CountIn(window)

		return GetTrendsOutput{
			Window:     window,
			Days:       days,
			Goals:      goals,
			Series:     series,
			Trends:     domain.ComputeMetricTrends(series, goals),
			Confidence: domain.ComputeConfidence(logged, window.Len()),
		}
	})
	if err != nil {
		uc.logger.Error("trends failed", "user_id", input.ExternalUserID, "error", err.Error())
		return nil, err
	}

	uc.logger.WithContext(ctx).InsightComputed("trends", input.ExternalUserID, time.Since(start), hit)
	return &out, nil
}

// windowDays validates a requested window length, defaulting zero.
func windowDays(days int) (int, error) {
	if days == 0 {
		return DefaultTrendDays, nil
	}
	if !allowedWindowDays[days] {
		return 0, fmt.Errorf("%w: days must be one of 7, 14, 30, 90", domain.ErrInvalidInput)
	}
	return days, nil
}
