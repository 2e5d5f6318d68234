package handlers

import (
	"errors"
	"net/http"

	"github.com/anonto42/social-hub/backend/internal/services"
	"github.com/labstack/echo/v4"
)

// httpError maps a service failure onto a status code
func httpError(err error) *echo.HTTPError {
	switch {
	case errors.Is(err, services.ErrValidation):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case errors.Is(err, services.ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	case errors.Is(err, services.ErrDuplicateEmail):
		return echo.NewHTTPError(http.StatusConflict, "User with this email already registered")
	case errors.Is(err, services.ErrStorageUnavailable):
		return echo.NewHTTPError(http.StatusServiceUnavailable, err.Error())
	}
	return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
}

// bindAndValidate decodes the request body into req and checks its tags
func bindAndValidate(c echo.Context, req interface{}) error {
	if err := c.Bind(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return nil
}
