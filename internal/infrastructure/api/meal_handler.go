package api

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/joacominatel/platewise/internal/application"
)

// MealHandler handles meal log related HTTP requests.
type MealHandler struct {
	logMealUseCase *application.LogMealUseCase
}

// NewMealHandler creates a new MealHandler.
func NewMealHandler(logMealUseCase *application.LogMealUseCase) *MealHandler {
	return &MealHandler{
		logMealUseCase: logMealUseCase,
	}
}

// RegisterRoutes registers the meal routes on the given group.
func (h *MealHandler) RegisterRoutes(g *echo.Group) {
	g.POST("/meals", h.LogMeal)
}

// LogMealRequest is the request body for recording a meal.
type LogMealRequest struct {
	Calories   float64    `json:"calories" validate:"gte=0"`
	Protein    float64    `json:"protein" validate:"gte=0"`
	Carbs      float64    `json:"carbs" validate:"gte=0"`
	Fat        float64    `json:"fat" validate:"gte=0"`
	ConsumedAt *time.Time `json:"consumedAt,omitempty"`
	Counted    *bool      `json:"counted,omitempty"`
}

// LogMeal handles POST /api/v1/meals
// records a meal for the authenticated user. in async mode the entry is
// accepted before it is persisted.
//
// @Summary Log a meal
// @Tags meals
// @Accept json
// @Produce json
// @Param body body LogMealRequest true "Meal nutrients"
// @Success 201 {object} application.LogMealOutput
// @Success 202 {object} application.LogMealOutput
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 503 {object} ErrorResponse
// @Router /api/v1/meals [post]
func (h *MealHandler) LogMeal(c echo.Context) error {
	var req LogMealRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	output, err := h.logMealUseCase.Execute(c.Request().Context(), application.LogMealInput{
		ExternalUserID: GetUserExternalID(c),
		Calories:       req.Calories,
		Protein:        req.Protein,
		Carbs:          req.Carbs,
		Fat:            req.Fat,
		ConsumedAt:     req.ConsumedAt,
		Counted:        req.Counted,
	})
	if err != nil {
		return mapDomainError(err)
	}

	status := http.StatusCreated
	if output.Async {
		status = http.StatusAccepted
	}
	return c.JSON(status, output)
}
