package models

import "time"

// Like represents a like on a post. Likes are hard-deleted on unlike so the
// (post, user) pair stays unique.
type Like struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	PostID    string    `json:"post_id" gorm:"size:24;index;uniqueIndex:idx_post_user_like"` // MongoDB ObjectID as hex
	UserID    uint      `json:"user_id" gorm:"index;uniqueIndex:idx_post_user_like"`
	CreatedAt time.Time `json:"created_at" gorm:"index"`
}

// LikeNotification is optional metadata some clients attach to a like
type LikeNotification struct {
	Title           string `json:"title,omitempty" validate:"omitempty,max=120"`
	Body            string `json:"body,omitempty" validate:"omitempty,max=280"`
	PreviewImageURL string `json:"previewImageUrl,omitempty" validate:"omitempty,url"`
}

// LikeRequest defines the request body for toggling a like
type LikeRequest struct {
	UserID       uint              `json:"userId"`
	PostID       string            `json:"postId" validate:"required,len=24,hexadecimal"`
	Notification *LikeNotification `json:"notification,omitempty"`
}

// LikeResult is the data payload of a like toggle
type LikeResult struct {
	Liked bool `json:"liked"`
}

// Liker is a user who liked a given post
type Liker = UserCompact

// LikersResult is the data payload of the likers listing
type LikersResult struct {
	Likers []Liker `json:"likers"`
}
