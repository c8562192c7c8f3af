package api

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/joacominatel/platewise/internal/application"
	"github.com/joacominatel/platewise/internal/domain"
)

// mapDomainError maps domain/application errors to HTTP errors.
// the result is always an *echo.HTTPError.
func mapDomainError(err error) error {
	switch {
	case errors.Is(err, application.ErrProfileNotFound), errors.Is(err, domain.ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrInvalidInput),
		errors.Is(err, domain.ErrInvalidDayKey),
		errors.Is(err, domain.ErrInvalidWindow):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case errors.Is(err, application.ErrIngestionBufferFull):
		return echo.NewHTTPError(http.StatusServiceUnavailable, "meal ingestion is busy, try again later")
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, "internal server error").SetInternal(err)
	}
}
