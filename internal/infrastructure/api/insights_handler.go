package api

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/joacominatel/platewise/internal/application"
)

// InsightsHandler serves the read-only analytics views.
type InsightsHandler struct {
	calendar *application.GetCalendarUseCase
	trends   *application.GetTrendsUseCase
	compare  *application.ComparePeriodsUseCase
	progress *application.GetProgressUseCase
	momentum *application.GetMomentumUseCase
}

// InsightUseCases groups the use cases behind the insight routes.
type InsightUseCases struct {
	Calendar *application.GetCalendarUseCase
	Trends   *application.GetTrendsUseCase
	Compare  *application.ComparePeriodsUseCase
	Progress *application.GetProgressUseCase
	Momentum *application.GetMomentumUseCase
}

// NewInsightsHandler creates a new InsightsHandler.
func NewInsightsHandler(uc InsightUseCases) *InsightsHandler {
	return &InsightsHandler{
		calendar: uc.Calendar,
		trends:   uc.Trends,
		compare:  uc.Compare,
		progress: uc.Progress,
		momentum: uc.Momentum,
	}
}

// RegisterRoutes registers the insight routes on the given group.
func (h *InsightsHandler) RegisterRoutes(g *echo.Group) {
	insights := g.Group("/insights")
	insights.GET("/calendar", h.GetCalendar)
	insights.GET("/trends", h.GetTrends)
	insights.GET("/compare", h.ComparePeriods)
	insights.GET("/progress", h.GetProgress)
	insights.GET("/momentum", h.GetMomentum)
}

// CalendarQuery is the query string of the calendar view.
type CalendarQuery struct {
	Month string `query:"month" validate:"omitempty,datetime=2006-01"`
}

// GetCalendar handles GET /api/v1/insights/calendar?month=YYYY-MM
func (h *InsightsHandler) GetCalendar(c echo.Context) error {
	var q CalendarQuery
	if err := bindQuery(c, &q); err != nil {
		return err
	}

	output, err := h.calendar.Execute(c.Request().Context(), application.GetCalendarInput{
		ExternalUserID: GetUserExternalID(c),
		Month:          q.Month,
	})
	if err != nil {
		return mapDomainError(err)
	}
	return c.JSON(http.StatusOK, output)
}

// TrendsQuery is the query string of the trends view.
type TrendsQuery struct {
	Days int `query:"days" validate:"omitempty,oneof=7 14 30 90"`
}

// GetTrends handles GET /api/v1/insights/trends?days=N
func (h *InsightsHandler) GetTrends(c echo.Context) error {
	var q TrendsQuery
	if err := bindQuery(c, &q); err != nil {
		return err
	}

	output, err := h.trends.Execute(c.Request().Context(), application.GetTrendsInput{
		ExternalUserID: GetUserExternalID(c),
		Days:           q.Days,
	})
	if err != nil {
		return mapDomainError(err)
	}
	return c.JSON(http.StatusOK, output)
}

// CompareQuery is the query string of the comparison view.
// explicit bounds use YYYY-MM-DD and must all be set together.
type CompareQuery struct {
	Days          int    `query:"days" validate:"omitempty,oneof=7 14 30 90"`
	CurrentStart  string `query:"currentStart" validate:"omitempty,datetime=2006-01-02"`
	CurrentEnd    string `query:"currentEnd" validate:"omitempty,datetime=2006-01-02"`
	PreviousStart string `query:"previousStart" validate:"omitempty,datetime=2006-01-02"`
	PreviousEnd   string `query:"previousEnd" validate:"omitempty,datetime=2006-01-02"`
}

// ComparePeriods handles GET /api/v1/insights/compare
func (h *InsightsHandler) ComparePeriods(c echo.Context) error {
	var q CompareQuery
	if err := bindQuery(c, &q); err != nil {
		return err
	}

	output, err := h.compare.Execute(c.Request().Context(), application.ComparePeriodsInput{
		ExternalUserID: GetUserExternalID(c),
		Days:           q.Days,
		CurrentStart:   q.CurrentStart,
		CurrentEnd:     q.CurrentEnd,
		PreviousStart:  q.PreviousStart,
		PreviousEnd:    q.PreviousEnd,
	})
	if err != nil {
		return mapDomainError(err)
	}
	return c.JSON(http.StatusOK, output)
}

// GetProgress handles GET /api/v1/insights/progress
func (h *InsightsHandler) GetProgress(c echo.Context) error {
	output, err := h.progress.Execute(c.Request().Context(), application.GetProgressInput{
		ExternalUserID: GetUserExternalID(c),
	})
	if err != nil {
		return mapDomainError(err)
	}
	return c.JSON(http.StatusOK, output)
}

// GetMomentum handles GET /api/v1/insights/momentum
func (h *InsightsHandler) GetMomentum(c echo.Context) error {
	output, err := h.momentum.Execute(c.Request().Context(), application.GetMomentumInput{
		ExternalUserID: GetUserExternalID(c),
	})
	if err != nil {
		return mapDomainError(err)
	}
	return c.JSON(http.StatusOK, output)
}

func bindQuery(c echo.Context, dst any) error {
	if err := (&echo.DefaultBinder{}).BindQueryParams(c, dst); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid query parameters")
	}
	return c.Validate(dst)
}
