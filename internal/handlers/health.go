package handlers

import (
	"net/http"

	"github.com/anonto42/social-hub/backend/pkg/realtime"
	"github.com/labstack/echo/v4"
)

// HealthHandler reports liveness and the number of realtime observers
type HealthHandler struct {
	hub *realtime.Hub
}

// NewHealthHandler creates a new HealthHandler
func NewHealthHandler(hub *realtime.Hub) *HealthHandler {
	return &HealthHandler{hub: hub}
}

// HealthCheck reports service status
func (h *HealthHandler) HealthCheck(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{
		"status":    "healthy",
		"service":   "social-hub",
		"observers": h.hub.Count(),
	})
}
