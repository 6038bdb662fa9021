package models

import "time"

// FeedPost is a post as seen by one viewer: the stored post enriched with its
// author and the viewer's like/save flags.
type FeedPost struct {
	ID            string      `json:"id"`
	Author        UserCompact `json:"author"`
	Caption       string      `json:"caption"`
	ImageURLs     []string    `json:"imageUrls"`
	Category      string      `json:"category"`
	LikeCount     int         `json:"likeCount"`
	ShareCount    int         `json:"shareCount"`
	CreatedAt     time.Time   `json:"createdAt"`
	IsLikedByUser bool        `json:"isLikedByUser"`
	IsSavedByUser bool        `json:"isSavedByUser"`
}

// ListPostsRequest selects one page of a feed scope
type ListPostsRequest struct {
	UserID   uint `json:"userId" query:"userId"`
	ForUser  bool `json:"forUser" query:"forUser"`
	AuthorID uint `json:"authorId,omitempty" query:"authorId"`
	Page     int  `json:"page" query:"page" validate:"min=0"`
	Limit    int  `json:"limit" query:"limit" validate:"min=0"`
}

// PostPage is the data payload of a feed listing
type PostPage struct {
	Posts   []FeedPost `json:"posts"`
	HasMore bool       `json:"hasMore"`
}

// ShareResult is the data payload of a share
type ShareResult struct {
	ShareCount int `json:"shareCount"`
}
