package http

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/pot-code/learniq-api/internal/infrastructure/auth"
	"github.com/pot-code/learniq-api/internal/infrastructure/validate"
	"github.com/pot-code/learniq-api/internal/streak"
)

type ActivityHandler struct {
	streakUseCase streak.StreakUseCase
	validator     validate.Validator
	jwtUtil       *auth.JWTUtil
}

func NewActivityHandler(
	StreakUseCase streak.StreakUseCase,
	JWTUtil *auth.JWTUtil,
	Validator validate.Validator,
) *ActivityHandler {
	return &ActivityHandler{StreakUseCase, Validator, JWTUtil}
}

type activityQuery struct {
	Days int `query:"days" validate:"min=1,max=90"`
}

// HandleGetActivity ?days=N (default 7), messages are translated by ?lang
func (ah *ActivityHandler) HandleGetActivity(c echo.Context) error {
	lang := c.QueryParam("lang")
	query := &activityQuery{Days: streak.DefaultWindow}
	if raw := c.QueryParam("days"); raw != "" {
		days, err := strconv.Atoi(raw)
		if err != nil {
			return c.JSON(http.StatusBadRequest, NewRESTValidationError(http.StatusBadRequest, "Failed to validate params", []*validate.FieldError{
				validate.NewFieldError("days", "days must be an integer"),
			}).SetTraceID(traceIDOf(c)))
		}
		query.Days = days
	}
	if errs := ah.validator.Struct(lang, query); errs != nil {
		return c.JSON(http.StatusBadRequest, NewRESTValidationError(http.StatusBadRequest, "Failed to validate params", errs).SetTraceID(traceIDOf(c)))
	}

	user := currentUser(c, ah.jwtUtil)
	activity, err := ah.streakUseCase.GetActivity(c.Request().Context(), user, query.Days)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, activity)
}
