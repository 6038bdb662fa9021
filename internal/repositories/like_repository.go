package repositories

import (
	"context"

	"github.com/anonto42/kratos-hub/backend/internal/models"
	"gorm.io/gorm"
)

// LikeRepository defines the interface for like data operations
type LikeRepository interface {
	ToggleLike(ctx context.Context, postID string, userID uint) (bool, error)
	HasUserLikedPost(ctx context.Context, postID string, userID uint) (bool, error)
	GetLikedPostIDs(ctx context.Context, userID uint, postIDs []string) (map[string]bool, error)
	GetLikers(ctx context.Context, postID string) ([]models.Liker, error)
	DeleteByPostID(ctx context.Context, postID string) error
}

// PostgresLikeRepository implements LikeRepository for PostgreSQL
type PostgresLikeRepository struct {
	db *gorm.DB
}

// NewPostgresLikeRepository creates a new PostgresLikeRepository
func NewPostgresLikeRepository(db *gorm.DB) *PostgresLikeRepository {
	return &PostgresLikeRepository{db: db}
}

// ToggleLike removes the user's like when present and creates it otherwise.
// It reports whether the post is liked afterwards.
func (r *PostgresLikeRepository) ToggleLike(ctx context.Context, postID string, userID uint) (bool, error) {
	return toggleRow(ctx, r.db, &models.Like{PostID: postID, UserID: userID}, "post_id = ? AND user_id = ?", postID, userID)
}

// HasUserLikedPost checks if a user has liked a specific post
func (r *PostgresLikeRepository) HasUserLikedPost(ctx context.Context, postID string, userID uint) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Like{}).Where("post_id = ? AND user_id = ?", postID, userID).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// GetLikedPostIDs returns the subset of postIDs the user has liked
func (r *PostgresLikeRepository) GetLikedPostIDs(ctx context.Context, userID uint, postIDs []string) (map[string]bool, error) {
	result := make(map[string]bool)
	if len(postIDs) == 0 {
		return result, nil
	}
	var likes []models.Like
	err := r.db.WithContext(ctx).Where("user_id = ? AND post_id IN ?", userID, postIDs).Find(&likes).Error
	if err != nil {
		return nil, err
	}
	for _, l := range likes {
		result[l.PostID] = true
	}
	return result, nil
}

// GetLikers lists the users who liked a post, most recent like first
func (r *PostgresLikeRepository) GetLikers(ctx context.Context, postID string) ([]models.Liker, error) {
	likers := []models.Liker{}
	err := r.db.WithContext(ctx).
		Table("likes").
		Select("users.id AS id, users.first_name AS first_name, users.last_name AS last_name, users.avatar_url AS avatar_url").
		Joins("JOIN users ON users.id = likes.user_id AND users.deleted_at IS NULL").
		Where("likes.post_id = ?", postID).
		Order("likes.created_at DESC").
		Order("likes.id DESC").
		Scan(&likers).Error
	if err != nil {
		return nil, err
	}
	return likers, nil
}

// DeleteByPostID removes every like of a post
func (r *PostgresLikeRepository) DeleteByPostID(ctx context.Context, postID string) error {
	return r.db.WithContext(ctx).Where("post_id = ?", postID).Delete(&models.Like{}).Error
}
