package handlers

import (
	"context"
	"net/http"

	"github.com/anonto42/kratos-hub/backend/internal/cache"
	"github.com/anonto42/kratos-hub/backend/internal/metrics"
	"github.com/anonto42/kratos-hub/backend/internal/models"
	"github.com/anonto42/kratos-hub/backend/internal/repositories"
	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
)

// LikeHandler handles HTTP requests related to likes
type LikeHandler struct {
	likeRepository         repositories.LikeRepository
	postRepository         repositories.PostRepository // To update like counts in posts
	notificationRepository repositories.NotificationRepository
	likersCache            *cache.LikersCache
	log                    logrus.FieldLogger
}

// NewLikeHandler creates a new LikeHandler
func NewLikeHandler(
	likeRepo repositories.LikeRepository,
	postRepo repositories.PostRepository,
	notificationRepo repositories.NotificationRepository,
	likersCache *cache.LikersCache,
	log logrus.FieldLogger,
) *LikeHandler {
	return &LikeHandler{
		likeRepository:         likeRepo,
		postRepository:         postRepo,
		notificationRepository: notificationRepo,
		likersCache:            likersCache,
		log:                    log,
	}
}

// RegisterLikeRoutes registers like-related routes
func (h *LikeHandler) RegisterLikeRoutes(g *echo.Group) {
	g.POST("/community/posts/like", h.ToggleLike)
	g.GET("/community/posts/:id/likers", h.ListLikers)
}

// ToggleLike likes the post when the viewer has not liked it yet and unlikes
// it otherwise. The response carries the resulting state.
func (h *LikeHandler) ToggleLike(c echo.Context) error {
	var req models.LikeRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	viewerID, err := resolveViewer(c, req.UserID)
	if err != nil {
		return err
	}
	ctx := c.Request().Context()

	post, err := h.postRepository.GetPostByID(ctx, req.PostID)
	if err != nil {
		if isPostNotFound(err) {
			return echo.NewHTTPError(http.StatusNotFound, "Post not found")
		}
		return err
	}

	liked, err := h.likeRepository.ToggleLike(ctx, req.PostID, viewerID)
	if err != nil {
		return err
	}

	logger := h.log.WithFields(logrus.Fields{"post_id": req.PostID, "user_id": viewerID})
	if liked {
		err = h.postRepository.IncrementLikesCount(ctx, req.PostID)
		metrics.RecordInteraction(metrics.ActionLike)
	} else {
		err = h.postRepository.DecrementLikesCount(ctx, req.PostID)
		metrics.RecordInteraction(metrics.ActionUnlike)
	}
	if err != nil {
		// the like row is the source of truth; the counter is denormalized
		logger.WithError(err).Warn("Failed to update post like count")
	}
	if err := h.likersCache.Invalidate(ctx, req.PostID); err != nil {
		logger.WithError(err).Warn("Failed to invalidate likers cache")
	}

	if liked && req.Notification != nil && post.AuthorID != viewerID {
		h.notifyAuthor(ctx, post, viewerID, req.Notification, logger)
	}

	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": models.LikeResult{Liked: liked}})
}

func (h *LikeHandler) notifyAuthor(ctx context.Context, post *models.Post, actorID uint, meta *models.LikeNotification, logger logrus.FieldLogger) {
	notification := &models.Notification{
		Type:            models.NotificationTypeLike,
		ActorID:         actorID,
		RecipientID:     post.AuthorID,
		TargetID:        post.ID.Hex(),
		TargetType:      "post",
		Title:           meta.Title,
		PreviewImageURL: meta.PreviewImageURL,
		Message:         meta.Body,
	}
	if err := h.notificationRepository.CreateNotification(ctx, notification); err != nil {
		logger.WithError(err).Warn("Failed to create like notification")
	}
}

// ListLikers returns the users who liked a post, most recent first
func (h *LikeHandler) ListLikers(c echo.Context) error {
	postID := c.Param("id")
	ctx := c.Request().Context()

	if _, err := h.postRepository.GetPostByID(ctx, postID); err != nil {
		if isPostNotFound(err) {
			return echo.NewHTTPError(http.StatusNotFound, "Post not found")
		}
		return err
	}

	likers, hit, err := h.likersCache.Get(ctx, postID)
	switch {
	case err != nil:
		metrics.RecordCacheLookup("error")
		h.log.WithError(err).WithField("post_id", postID).Warn("Likers cache read failed")
	case hit:
		metrics.RecordCacheLookup("hit")
		return c.JSON(http.StatusOK, echo.Map{"success": true, "data": models.LikersResult{Likers: likers}})
	default:
		metrics.RecordCacheLookup("miss")
	}

	version, versionErr := h.likersCache.Version(ctx, postID)
	likers, err = h.likeRepository.GetLikers(ctx, postID)
	if err != nil {
		return err
	}
	if versionErr == nil {
		if _, err := h.likersCache.Set(ctx, postID, version, likers); err != nil {
			h.log.WithError(err).WithField("post_id", postID).Warn("Likers cache write failed")
		}
	}

	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": models.LikersResult{Likers: likers}})
}
