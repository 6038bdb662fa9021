package feed

import "github.com/anonto42/kratos-hub/backend/internal/models"

// Filter returns the posts whose category equals category, in order. The
// models.CategoryAny sentinel keeps every post. The result is always a new
// slice.
func Filter(posts []models.FeedPost, category string) []models.FeedPost {
	out := make([]models.FeedPost, 0, len(posts))
	for _, p := range posts {
		if category == models.CategoryAny || p.Category == category {
			out = append(out, p)
		}
	}
	return out
}
