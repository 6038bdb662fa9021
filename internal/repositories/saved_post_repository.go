package repositories

import (
	"context"

	"github.com/anonto42/kratos-hub/backend/internal/models"
	"gorm.io/gorm"
)

// SavedPostRepository defines the interface for saved post operations
type SavedPostRepository interface {
	ToggleSave(ctx context.Context, userID uint, postID string) (bool, error)
	GetSavedPostIDs(ctx context.Context, userID uint, postIDs []string) (map[string]bool, error)
	ListSavedPostIDs(ctx context.Context, userID uint, offset, limit int) ([]string, error)
	DeleteByPostID(ctx context.Context, postID string) error
}

// PostgresSavedPostRepository implements SavedPostRepository
type PostgresSavedPostRepository struct {
	db *gorm.DB
}

func NewPostgresSavedPostRepository(db *gorm.DB) *PostgresSavedPostRepository {
	return &PostgresSavedPostRepository{db: db}
}

// ToggleSave unsaves the post when saved and saves it otherwise. It reports
// whether the post is saved afterwards.
func (r *PostgresSavedPostRepository) ToggleSave(ctx context.Context, userID uint, postID string) (bool, error) {
	return toggleRow(ctx, r.db, &models.SavedPost{UserID: userID, PostID: postID}, "user_id = ? AND post_id = ?", userID, postID)
}

func (r *PostgresSavedPostRepository) GetSavedPostIDs(ctx context.Context, userID uint, postIDs []string) (map[string]bool, error) {
	result := make(map[string]bool)
	if len(postIDs) == 0 {
		return result, nil
	}
	var saved []models.SavedPost
	err := r.db.WithContext(ctx).Where("user_id = ? AND post_id IN ?", userID, postIDs).Find(&saved).Error
	if err != nil {
		return nil, err
	}
	for _, s := range saved {
		result[s.PostID] = true
	}
	return result, nil
}

// ListSavedPostIDs pages through a user's saved post IDs, most recently saved first
func (r *PostgresSavedPostRepository) ListSavedPostIDs(ctx context.Context, userID uint, offset, limit int) ([]string, error) {
	ids := []string{}
	err := r.db.WithContext(ctx).Model(&models.SavedPost{}).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Order("id DESC").
		Offset(offset).Limit(limit).
		Pluck("post_id", &ids).Error
	return ids, err
}

func (r *PostgresSavedPostRepository) DeleteByPostID(ctx context.Context, postID string) error {
	return r.db.WithContext(ctx).Where("post_id = ?", postID).Delete(&models.SavedPost{}).Error
}
