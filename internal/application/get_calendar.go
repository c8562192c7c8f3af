package application

import (
	"context"
	"fmt"
	"time"

	"github.com/joacominatel/platewise/internal/domain"
	"github.com/joacominatel/platewise/internal/infrastructure/logging"
)

const calendarMonthLayout = "2006-01"

// GetCalendarInput contains the data needed to build a month calendar.
type GetCalendarInput struct {
	ExternalUserID string
	// Month is YYYY-MM; empty means the current month in the user's zone.
	Month string
}

// GetCalendarOutput is every day of the month scored against the goals.
type GetCalendarOutput struct {
	Month    string                      `json:"month"`
	Timezone string                      `json:"timezone"`
	Goals    domain.GoalTargets          `json:"goals"`
	Days     map[string]domain.DayStatus `json:"days"`
	Stats    domain.CalendarStats        `json:"stats"`
}

// GetCalendarUseCase builds the calendar/status view.
type GetCalendarUseCase struct {
	loader *InsightLoader
	logger *logging.Logger
}

// NewGetCalendarUseCase creates a new GetCalendarUseCase.
func NewGetCalendarUseCase(loader *InsightLoader, logger *logging.Logger) *GetCalendarUseCase {
	return &GetCalendarUseCase{
		loader: loader,
		logger: logger.WithComponent("get_calendar"),
	}
}

// Execute returns the calendar for the requested month.
func (uc *GetCalendarUseCase) Execute(ctx context.Context, input GetCalendarInput) (*GetCalendarOutput, error) {
	start := time.Now()

	s, err := uc.loader.resolve(ctx, input.ExternalUserID)
	if err != nil {
		uc.logger.Warn("calendar rejected", "user_id", input.ExternalUserID, "reason", err.Error())
		return nil, err
	}

	monthStart, err := parseMonth(input.Month, s.today)
	if err != nil {
		uc.logger.Warn("calendar rejected: invalid month",
			"user_id", input.ExternalUserID,
			"month", input.Month,
		)
		return nil, err
	}

	month := domain.MonthWindow(monthStart.Year(), monthStart.Month())
	// the streak is evaluated from today, whichever month is shown
	streakWindow := domain.StreakWindow(s.today)

	entries, err := uc.loader.loadAll(ctx, s, month, streakWindow)
	if err != nil {
		uc.logger.Error("calendar failed", "user_id", input.ExternalUserID, "error", err.Error())
		return nil, err
	}

	goals := s.profile.Goals()
	key := cacheKey("calendar", s, month, entries, streakWindow.Start)

	var out GetCalendarOutput
	hit, err := uc.loader.serve(ctx, "calendar", key, &out, func() any {
		sparse := domain.AggregateIn(entries, domain.DateWindow{
			Start: minDayKey(month.Start, streakWindow.Start),
			End:   maxDayKey(month.End, streakWindow.End),
		}, s.location, false)
		filled := domain.AggregateIn(entries, month, s.location, true)

		return GetCalendarOutput{
			Month:    monthStart.Format(calendarMonthLayout),
			Timezone: s.location.String(),
			Goals:    goals,
			Days:     domain.ScoreDays(filled, goals),
			Stats:    domain.BuildCalendarStats(sparse, monthStart.Year(), monthStart.Month(), s.today),
		}
	})
	if err != nil {
		uc.logger.Error("calendar failed", "user_id", input.ExternalUserID, "error", err.Error())
		return nil, err
	}

	uc.logger.WithContext(ctx).InsightComputed("calendar", input.ExternalUserID, time.Since(start), hit)
	return &out, nil
}

// parseMonth reads YYYY-MM, defaulting to the month containing today.
func parseMonth(month, today string) (time.Time, error) {
	if month == "" {
		t, err := domain.ParseDayKey(today)
		if err != nil {
			return time.Time{}, err
		}
		return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC), nil
	}

	t, err := time.Parse(calendarMonthLayout, month)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: month must be YYYY-MM", domain.ErrInvalidInput)
	}
	return t, nil
}

func minDayKey(a, b string) string {
	if a < b {
		return a
	}
	return b
}

func maxDayKey(a, b string) string {
	if a > b {
		return a
	}
	return b
}
