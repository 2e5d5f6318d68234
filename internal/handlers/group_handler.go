package handlers

import (
	"net/http"

	"github.com/anonto42/social-hub/backend/internal/models"
	"github.com/anonto42/social-hub/backend/internal/services"
	"github.com/labstack/echo/v4"
)

// GroupHandler handles HTTP requests related to groups and membership
type GroupHandler struct {
	service *services.RelationService
}

// NewGroupHandler creates a new GroupHandler
func NewGroupHandler(service *services.RelationService) *GroupHandler {
	return &GroupHandler{service: service}
}

// RegisterGroupRoutes registers group-related routes
func (h *GroupHandler) RegisterGroupRoutes(g *echo.Group) {
	g.POST("/groups", h.CreateGroup)
	g.GET("/groups", h.GetGroups)
	g.GET("/groups/:id", h.GetGroup)
	g.POST("/groups/:id/join", h.JoinGroup)
}

// CreateGroup creates a new group
func (h *GroupHandler) CreateGroup(c echo.Context) error {
	var req models.CreateGroupRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	group, err := h.service.CreateGroup(c.Request().Context(), req)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, group)
}

// GetGroups lists every group
func (h *GroupHandler) GetGroups(c echo.Context) error {
	groups, err := h.service.ListGroups(c.Request().Context())
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, groups)
}

// GetGroup retrieves a group by ID
func (h *GroupHandler) GetGroup(c echo.Context) error {
	group, err := h.service.GetGroup(c.Request().Context(), c.Param("id"))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, group)
}

// JoinGroup adds the user in the body to the group; repeating it changes nothing
func (h *GroupHandler) JoinGroup(c echo.Context) error {
	var req models.JoinGroupRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	membership, err := h.service.JoinGroup(c.Request().Context(), req.UserID, c.Param("id"))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"message": "User joined the group",
		"group":   membership.Group,
		"user":    membership.User,
	})
}
