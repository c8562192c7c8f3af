package application

import (
	"context"
	"fmt"
	"time"

	"github.com/joacominatel/platewise/internal/domain"
	"github.com/joacominatel/platewise/internal/infrastructure/logging"
)

// ComparePeriodsInput contains the data needed to compare two windows.
// either Days or all four explicit bounds are used.
type ComparePeriodsInput struct {
	ExternalUserID string
	Days           int

	CurrentStart  string
	CurrentEnd    string
	PreviousStart string
	PreviousEnd   string
}

func (in ComparePeriodsInput) hasExplicitWindows() bool {
	return in.CurrentStart != "" || in.CurrentEnd != "" || in.PreviousStart != "" || in.PreviousEnd != ""
}

// ComparePeriodsOutput holds both window summaries and their deltas.
type ComparePeriodsOutput struct {
	domain.PeriodComparison
	Days int `json:"days"`
}

// ComparePeriodsUseCase builds the period-over-period view.
type ComparePeriodsUseCase struct {
	loader *InsightLoader
	logger *logging.Logger
}

// NewComparePeriodsUseCase creates a new ComparePeriodsUseCase.
func NewComparePeriodsUseCase(loader *InsightLoader, logger *logging.Logger) *ComparePeriodsUseCase {
	return &ComparePeriodsUseCase{
		loader: loader,
		logger: logger.WithComponent("compare_periods"),
	}
}

// Execute compares the current window with the one before it.
func (uc *ComparePeriodsUseCase) Execute(ctx context.Context, input ComparePeriodsInput) (*ComparePeriodsOutput, error) {
	start := time.Now()

	s, err := uc.loader.resolve(ctx, input.ExternalUserID)
	if err != nil {
		uc.logger.Warn("comparison rejected", "user_id", input.ExternalUserID, "reason", err.Error())
		return nil, err
	}

	current, previous, err := comparisonWindows(input, s.today)
	if err != nil {
		uc.logger.Warn("comparison rejected: invalid windows",
			"user_id", input.ExternalUserID,
			"reason", err.Error(),
		)
		return nil, err
	}

	entries, err := uc.loader.loadAll(ctx, s, current, previous)
	if err != nil {
		uc.logger.Error("comparison failed", "user_id", input.ExternalUserID, "error", err.Error())
		return nil, err
	}

	key := cacheKey("compare", s, current, entries, previous.Start+".."+previous.End)

	var out ComparePeriodsOutput
	hit, err := uc.loader.serve(ctx, "compare", key, &out, func() any {
		currentBuckets := domain.AggregateIn(entries, current, s.location, false)
		previousBuckets := domain.AggregateIn(entries, previous, s.location, false)

		return ComparePeriodsOutput{
			PeriodComparison: domain.ComparePeriods(
				domain.ComputeWindowStats(currentBuckets, current),
				domain.ComputeWindowStats(previousBuckets, previous),
			),
			Days: current.Len(),
		}
	})
	if err != nil {
		uc.logger.Error("comparison failed", "user_id", input.ExternalUserID, "error", err.Error())
		return nil, err
	}

	uc.logger.WithContext(ctx).InsightComputed("compare", input.ExternalUserID, time.Since(start), hit)
	return &out, nil
}

// comparisonWindows resolves the two windows. the default previous window is
// the one of equal length immediately before the current one.
func comparisonWindows(input ComparePeriodsInput, today string) (domain.DateWindow, domain.DateWindow, error) {
	if !input.hasExplicitWindows() {
		days, err := windowDays(input.Days)
		if err != nil {
			return domain.DateWindow{}, domain.DateWindow{}, err
		}
		current := domain.WindowEndingOn(today, days)
		return current, current.Previous(), nil
	}

	current, err := domain.NewDateWindow(input.CurrentStart, input.CurrentEnd)
	if err != nil {
		return domain.DateWindow{}, domain.DateWindow{}, fmt.Errorf("%w: current window: %v", domain.ErrInvalidInput, err)
	}
	previous, err := domain.NewDateWindow(input.PreviousStart, input.PreviousEnd)
	if err != nil {
		return domain.DateWindow{}, domain.DateWindow{}, fmt.Errorf("%w: previous window: %v", domain.ErrInvalidInput, err)
	}
	if current.Overlaps(previous) {
		return domain.DateWindow{}, domain.DateWindow{}, fmt.Errorf("%w: windows must not overlap", domain.ErrInvalidInput)
	}
	if current.Len() > 366 || previous.Len() > 366 {
		return domain.DateWindow{}, domain.DateWindow{}, fmt.Errorf("%w: windows are limited to one year", domain.ErrInvalidInput)
	}
	return current, previous, nil
}
