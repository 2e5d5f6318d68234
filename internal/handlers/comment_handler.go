package handlers

import (
	"net/http"

	"github.com/anonto42/social-hub/backend/internal/models"
	"github.com/anonto42/social-hub/backend/internal/services"
	"github.com/labstack/echo/v4"
)

// CommentHandler handles comments on posts
type CommentHandler struct {
	service *services.RelationService
}

// NewCommentHandler creates a new CommentHandler
func NewCommentHandler(service *services.RelationService) *CommentHandler {
	return &CommentHandler{service: service}
}

// RegisterCommentRoutes registers comment-related routes
func (h *CommentHandler) RegisterCommentRoutes(g *echo.Group) {
	g.POST("/posts/:id/comments", h.CreateComment)
	g.GET("/posts/:id/comments", h.GetCommentsByPostID)
}

// CreateComment creates a comment for a post
func (h *CommentHandler) CreateComment(c echo.Context) error {
	var req models.CreateCommentRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	comment, err := h.service.CreateMessage(c.Request().Context(), models.CreateMessageRequest{
		Kind:    models.MessageKindComment,
		Target:  c.Param("id"),
		Author:  req.Author,
		Content: req.Text,
	})
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, comment)
}

// GetCommentsByPostID lists the comments of a post, oldest first
func (h *CommentHandler) GetCommentsByPostID(c echo.Context) error {
	comments, err := h.service.ListMessages(c.Request().Context(), models.MessageKindComment, c.Param("id"))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, comments)
}
