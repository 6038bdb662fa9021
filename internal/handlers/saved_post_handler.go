package handlers

import (
	"net/http"

	"github.com/anonto42/kratos-hub/backend/internal/metrics"
	"github.com/anonto42/kratos-hub/backend/internal/models"
	"github.com/anonto42/kratos-hub/backend/internal/repositories"
	"github.com/labstack/echo/v4"
)

// SavedPostHandler handles saved post HTTP requests
type SavedPostHandler struct {
	savedPostRepository repositories.SavedPostRepository
	postRepository      repositories.PostRepository
}

// NewSavedPostHandler creates a new SavedPostHandler
func NewSavedPostHandler(savedPostRepo repositories.SavedPostRepository, postRepo repositories.PostRepository) *SavedPostHandler {
	return &SavedPostHandler{
		savedPostRepository: savedPostRepo,
		postRepository:      postRepo,
	}
}

// RegisterSavedPostRoutes registers saved post routes
func (h *SavedPostHandler) RegisterSavedPostRoutes(g *echo.Group) {
	g.POST("/community/posts/save", h.ToggleSave)
}

// ToggleSave saves the post for the viewer, or unsaves it when already saved
func (h *SavedPostHandler) ToggleSave(c echo.Context) error {
	var req models.SaveRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	viewerID, err := resolveViewer(c, req.UserID)
	if err != nil {
		return err
	}
	ctx := c.Request().Context()

	if _, err := h.postRepository.GetPostByID(ctx, req.PostID); err != nil {
		if isPostNotFound(err) {
			return echo.NewHTTPError(http.StatusNotFound, "Post not found")
		}
		return err
	}

	saved, err := h.savedPostRepository.ToggleSave(ctx, viewerID, req.PostID)
	if err != nil {
		return err
	}
	if saved {
		metrics.RecordInteraction(metrics.ActionSave)
	} else {
		metrics.RecordInteraction(metrics.ActionUnsave)
	}

	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": models.SaveResult{IsSaved: saved}})
}
