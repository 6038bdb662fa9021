package models

import "time"

// SavedPost represents a bookmarked/saved post by a user
type SavedPost struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	UserID    uint      `json:"user_id" gorm:"index;uniqueIndex:idx_user_post_save"`
	PostID    string    `json:"post_id" gorm:"size:24;index;uniqueIndex:idx_user_post_save"`
	CreatedAt time.Time `json:"created_at"`
}

// SaveRequest defines the request body for toggling a saved post
type SaveRequest struct {
	UserID uint   `json:"userId"`
	PostID string `json:"postId" validate:"required,len=24,hexadecimal"`
}

// SaveResult is the data payload of a save toggle
type SaveResult struct {
	IsSaved bool `json:"isSaved"`
}
