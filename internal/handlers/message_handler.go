package handlers

import (
	"net/http"

	"github.com/anonto42/social-hub/backend/internal/models"
	"github.com/anonto42/social-hub/backend/internal/services"
	"github.com/labstack/echo/v4"
)

// MessageHandler handles group chat messages
type MessageHandler struct {
	service *services.RelationService
}

// NewMessageHandler creates a new MessageHandler
func NewMessageHandler(service *services.RelationService) *MessageHandler {
	return &MessageHandler{service: service}
}

// RegisterMessageRoutes registers group message routes
func (h *MessageHandler) RegisterMessageRoutes(g *echo.Group) {
	g.POST("/groups/:id/messages", h.PostMessage)
	g.GET("/groups/:id/messages", h.GetMessages)
}

// PostMessage posts a message to a group and broadcasts it
func (h *MessageHandler) PostMessage(c echo.Context) error {
	var req models.CreateGroupMessageRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	message, err := h.service.CreateMessage(c.Request().Context(), models.CreateMessageRequest{
		Kind:    models.MessageKindGroup,
		Target:  c.Param("id"),
		Author:  req.Sender,
		Content: req.Content,
	})
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, message)
}

// GetMessages lists the messages of a group, oldest first
func (h *MessageHandler) GetMessages(c echo.Context) error {
	messages, err := h.service.ListMessages(c.Request().Context(), models.MessageKindGroup, c.Param("id"))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, messages)
}
