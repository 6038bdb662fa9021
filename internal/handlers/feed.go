package handlers

import (
	"context"
	"fmt"

	"github.com/anonto42/kratos-hub/backend/internal/models"
	"github.com/anonto42/kratos-hub/backend/internal/repositories"
)

// postEnricher turns stored posts into viewer-specific feed posts
type postEnricher struct {
	users repositories.UserRepository
	likes repositories.LikeRepository
	saves repositories.SavedPostRepository
}

func (e *postEnricher) enrich(ctx context.Context, viewerID uint, posts []models.Post) ([]models.FeedPost, error) {
	feed := make([]models.FeedPost, 0, len(posts))
	if len(posts) == 0 {
		return feed, nil
	}

	postIDs := make([]string, len(posts))
	authorIDs := make([]uint, 0, len(posts))
	seen := make(map[uint]bool, len(posts))
	for i, p := range posts {
		postIDs[i] = p.ID.Hex()
		if !seen[p.AuthorID] {
			seen[p.AuthorID] = true
			authorIDs = append(authorIDs, p.AuthorID)
		}
	}

	authors, err := e.users.GetUsersByIDs(ctx, authorIDs)
	if err != nil {
		return nil, fmt.Errorf("load authors: %w", err)
	}
	liked, err := e.likes.GetLikedPostIDs(ctx, viewerID, postIDs)
	if err != nil {
		return nil, fmt.Errorf("load like flags: %w", err)
	}
	saved, err := e.saves.GetSavedPostIDs(ctx, viewerID, postIDs)
	if err != nil {
		return nil, fmt.Errorf("load save flags: %w", err)
	}

	for i, p := range posts {
		author := models.UserCompact{ID: p.AuthorID}
		if u, ok := authors[p.AuthorID]; ok {
			author = u.ToCompact()
		}
		images := p.ImageURLs
		if images == nil {
			images = []string{}
		}
		feed = append(feed, models.FeedPost{
			ID:            postIDs[i],
			Author:        author,
			Caption:       p.Caption,
			ImageURLs:     images,
			Category:      p.Category,
			LikeCount:     p.LikesCount,
			ShareCount:    p.SharesCount,
			CreatedAt:     p.CreatedAt,
			IsLikedByUser: liked[postIDs[i]],
			IsSavedByUser: saved[postIDs[i]],
		})
	}
	return feed, nil
}
