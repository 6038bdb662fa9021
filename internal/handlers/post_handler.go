package handlers

import (
	"errors"
	"net/http"

	"github.com/anonto42/kratos-hub/backend/internal/cache"
	"github.com/anonto42/kratos-hub/backend/internal/metrics"
	"github.com/anonto42/kratos-hub/backend/internal/models"
	"github.com/anonto42/kratos-hub/backend/internal/repositories"
	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
)

// PostHandler handles HTTP requests related to community posts
type PostHandler struct {
	postRepository      repositories.PostRepository
	likeRepository      repositories.LikeRepository
	savedPostRepository repositories.SavedPostRepository
	likersCache         *cache.LikersCache
	enricher            *postEnricher
	limits              FeedLimits
	log                 logrus.FieldLogger
}

// NewPostHandler creates a new PostHandler
func NewPostHandler(
	postRepo repositories.PostRepository,
	userRepo repositories.UserRepository,
	likeRepo repositories.LikeRepository,
	savedPostRepo repositories.SavedPostRepository,
	likersCache *cache.LikersCache,
	limits FeedLimits,
	log logrus.FieldLogger,
) *PostHandler {
	return &PostHandler{
		postRepository:      postRepo,
		likeRepository:      likeRepo,
		savedPostRepository: savedPostRepo,
		likersCache:         likersCache,
		enricher:            &postEnricher{users: userRepo, likes: likeRepo, saves: savedPostRepo},
		limits:              limits.orDefault(),
		log:                 log,
	}
}

// RegisterPostRoutes registers post-related routes
func (h *PostHandler) RegisterPostRoutes(g *echo.Group) {
	g.GET("/community/posts", h.ListPosts)
	g.POST("/community/posts", h.CreatePost)
	g.GET("/community/posts/saved", h.ListSavedPosts)
	g.DELETE("/community/posts/:id", h.DeletePost)
	g.POST("/community/posts/:id/share", h.SharePost)
}

func isPostNotFound(err error) bool {
	return errors.Is(err, repositories.ErrPostNotFound)
}

// ListPosts returns one page of the community feed or of one author's posts.
// It fetches one extra row to learn whether another page exists.
func (h *PostHandler) ListPosts(c echo.Context) error {
	var req models.ListPostsRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	viewerID, err := resolveViewer(c, req.UserID)
	if err != nil {
		return err
	}
	page, limit := h.limits.normalize(req.Page, req.Limit)

	var filter repositories.PostFilter
	if req.ForUser {
		filter.AuthorID = req.AuthorID
		if filter.AuthorID == 0 {
			filter.AuthorID = viewerID
		}
	}

	ctx := c.Request().Context()
	skip := int64((page - 1) * limit)
	posts, err := h.postRepository.ListPosts(ctx, filter, skip, int64(limit+1))
	if err != nil {
		return err
	}
	hasMore := len(posts) > limit
	if hasMore {
		posts = posts[:limit]
	}

	feed, err := h.enricher.enrich(ctx, viewerID, posts)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"data":    models.PostPage{Posts: feed, HasMore: hasMore},
		"meta": echo.Map{
			"currentPage":  page,
			"itemsPerPage": limit,
		},
	})
}

// CreatePost creates a new post authored by the viewer
func (h *PostHandler) CreatePost(c echo.Context) error {
	viewerID, err := resolveViewer(c, 0)
	if err != nil {
		return err
	}
	var req models.CreatePostRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	post := &models.Post{
		AuthorID:  viewerID,
		Caption:   req.Caption,
		ImageURLs: req.ImageURLs,
		Category:  req.Category,
	}
	ctx := c.Request().Context()
	if err := h.postRepository.CreatePost(ctx, post); err != nil {
		return err
	}

	feed, err := h.enricher.enrich(ctx, viewerID, []models.Post{*post})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, echo.Map{"success": true, "data": echo.Map{"post": feed[0]}})
}

// DeletePost deletes a post with its likes and saves. Only the author or an
// admin may delete.
func (h *PostHandler) DeletePost(c echo.Context) error {
	viewerID, err := resolveViewer(c, 0)
	if err != nil {
		return err
	}
	postID := c.Param("id")
	ctx := c.Request().Context()

	post, err := h.postRepository.GetPostByID(ctx, postID)
	if err != nil {
		if isPostNotFound(err) {
			return echo.NewHTTPError(http.StatusNotFound, "Post not found")
		}
		return err
	}
	if post.AuthorID != viewerID && !isAdmin(c) {
		return echo.NewHTTPError(http.StatusForbidden, "You are not authorized to delete this post")
	}

	if err := h.postRepository.DeletePost(ctx, postID); err != nil {
		if isPostNotFound(err) {
			return echo.NewHTTPError(http.StatusNotFound, "Post not found")
		}
		return err
	}
	if err := h.likeRepository.DeleteByPostID(ctx, postID); err != nil {
		h.log.WithError(err).WithField("post_id", postID).Warn("Failed to delete likes of removed post")
	}
	if err := h.savedPostRepository.DeleteByPostID(ctx, postID); err != nil {
		h.log.WithError(err).WithField("post_id", postID).Warn("Failed to delete saves of removed post")
	}
	if err := h.likersCache.Invalidate(ctx, postID); err != nil {
		h.log.WithError(err).WithField("post_id", postID).Warn("Failed to invalidate likers cache")
	}
	metrics.RecordInteraction(metrics.ActionDelete)

	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": echo.Map{"deleted": true}})
}

// SharePost records a share and returns the new share count
func (h *PostHandler) SharePost(c echo.Context) error {
	if _, err := resolveViewer(c, 0); err != nil {
		return err
	}
	count, err := h.postRepository.IncrementSharesCount(c.Request().Context(), c.Param("id"))
	if err != nil {
		if isPostNotFound(err) {
			return echo.NewHTTPError(http.StatusNotFound, "Post not found")
		}
		return err
	}
	metrics.RecordInteraction(metrics.ActionShare)

	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": models.ShareResult{ShareCount: count}})
}

// ListSavedPosts returns the viewer's saved posts, most recently saved first
func (h *PostHandler) ListSavedPosts(c echo.Context) error {
	viewerID, err := resolveViewer(c, 0)
	if err != nil {
		return err
	}
	page, limit := h.limits.fromQuery(c)
	ctx := c.Request().Context()

	ids, err := h.savedPostRepository.ListSavedPostIDs(ctx, viewerID, (page-1)*limit, limit+1)
	if err != nil {
		return err
	}
	hasMore := len(ids) > limit
	if hasMore {
		ids = ids[:limit]
	}

	posts, err := h.postRepository.GetPostsByIDs(ctx, ids)
	if err != nil {
		return err
	}
	feed, err := h.enricher.enrich(ctx, viewerID, orderByIDs(posts, ids))
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"data":    models.PostPage{Posts: feed, HasMore: hasMore},
		"meta": echo.Map{
			"currentPage":  page,
			"itemsPerPage": limit,
		},
	})
}

// orderByIDs arranges posts in the order of ids, skipping ids with no post
func orderByIDs(posts []models.Post, ids []string) []models.Post {
	byID := make(map[string]models.Post, len(posts))
	for _, p := range posts {
		byID[p.ID.Hex()] = p
	}
	ordered := make([]models.Post, 0, len(posts))
	for _, id := range ids {
		if p, ok := byID[id]; ok {
			ordered = append(ordered, p)
		}
	}
	return ordered
}
