package api

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/joacominatel/platewise/internal/infrastructure/auth"
	"github.com/joacominatel/platewise/internal/infrastructure/logging"
)

// contextKey is a custom type for context keys to avoid collisions.
type contextKey string

const (
	// UserContextKey is the context key for the authenticated user's external ID.
	UserContextKey contextKey = "user_external_id"
)

// TokenValidator validates bearer tokens.
type TokenValidator interface {
	ValidateToken(token string) (*auth.Claims, error)
}

// AuthConfig holds authentication middleware configuration.
type AuthConfig struct {
	Validator TokenValidator

	// Skipper defines a function to skip auth for certain routes.
	Skipper func(c echo.Context) bool

	Logger *logging.Logger
}

// JWTAuthMiddleware requires a valid bearer token and stores its subject in
// the context for downstream handlers.
func JWTAuthMiddleware(config AuthConfig) echo.MiddlewareFunc {
	logger := config.Logger
	if logger == nil {
		logger = logging.Discard()
	}
	logger = logger.WithComponent("auth")

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if config.Skipper != nil && config.Skipper(c) {
				return next(c)
			}

			claims, err := config.Validator.ValidateToken(c.Request().Header.Get(echo.HeaderAuthorization))
			if err != nil {
				logger.Debug("token rejected",
					"path", c.Path(),
					"reason", err.Error(),
				)
				return echo.NewHTTPError(http.StatusUnauthorized, authErrorMessage(err))
			}

			c.Set(string(UserContextKey), claims.ExternalID())
			return next(c)
		}
	}
}

func authErrorMessage(err error) string {
	switch {
	case errors.Is(err, auth.ErrMissingToken):
		return "missing authentication: bearer token required"
	case errors.Is(err, auth.ErrTokenExpired):
		return "token has expired"
	default:
		return "invalid token"
	}
}

// GetUserExternalID retrieves the authenticated user's external ID from context.
// returns empty string if not authenticated.
func GetUserExternalID(c echo.Context) string {
	if val := c.Get(string(UserContextKey)); val != nil {
		if externalID, ok := val.(string); ok {
			return externalID
		}
	}
	return ""
}

// PublicRoutesSkipper returns a skipper function that skips auth for public routes.
func PublicRoutesSkipper(publicPaths ...string) func(echo.Context) bool {
	pathSet := make(map[string]bool)
	for _, p := range publicPaths {
		pathSet[p] = true
	}

	return func(c echo.Context) bool {
		return pathSet[c.Path()]
	}
}
