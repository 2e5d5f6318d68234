package handlers

import (
	"net/http"

	"github.com/anonto42/social-hub/backend/internal/models"
	"github.com/anonto42/social-hub/backend/internal/services"
	"github.com/labstack/echo/v4"
)

// LikeHandler handles HTTP requests related to likes
type LikeHandler struct {
	service *services.RelationService
}

// NewLikeHandler creates a new LikeHandler
func NewLikeHandler(service *services.RelationService) *LikeHandler {
	return &LikeHandler{service: service}
}

// RegisterLikeRoutes registers like-related routes
func (h *LikeHandler) RegisterLikeRoutes(g *echo.Group) {
	g.POST("/posts/:id/like", h.LikePost)
	g.GET("/posts/:id/likes/count", h.GetLikesCountForPost)
}

// LikePost handles liking a post. Liking twice is not an error.
func (h *LikeHandler) LikePost(c echo.Context) error {
	var req models.LikePostRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	like, err := h.service.LikePost(c.Request().Context(), req.UserID, c.Param("id"))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"message": "Post liked",
		"post":    like.Post,
		"user":    like.User,
	})
}

// GetLikesCountForPost retrieves the total number of likes for a specific post
func (h *LikeHandler) GetLikesCountForPost(c echo.Context) error {
	postID := c.Param("id")
	post, err := h.service.GetPost(c.Request().Context(), postID)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, echo.Map{"post_id": postID, "likes_count": len(post.LikedBy)})
}
