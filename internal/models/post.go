package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Post categories used by the community feed
const (
	CategoryAny        = "any"
	CategoryWorkout    = "workout"
	CategoryNutrition  = "nutrition"
	CategoryProgress   = "progress"
	CategoryMotivation = "motivation"
)

// Post represents a community post stored in MongoDB
type Post struct {
	ID          primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	AuthorID    uint               `json:"author_id" bson:"author_id"` // PostgreSQL user ID of the author
	Caption     string             `json:"caption" bson:"caption"`
	ImageURLs   []string           `json:"image_urls,omitempty" bson:"image_urls,omitempty"`
	Category    string             `json:"category" bson:"category"`
	LikesCount  int                `json:"likes_count" bson:"likes_count"`
	SharesCount int                `json:"shares_count" bson:"shares_count"`
	CreatedAt   time.Time          `json:"created_at" bson:"created_at"`
	UpdatedAt   time.Time          `json:"updated_at" bson:"updated_at"`
}

// CreatePostRequest defines the request body for creating a new post
type CreatePostRequest struct {
	Caption   string   `json:"caption" validate:"required,min=1,max=2000"`
	ImageURLs []string `json:"imageUrls,omitempty" validate:"omitempty,max=10,dive,url"`
	Category  string   `json:"category" validate:"required,oneof=workout nutrition progress motivation"`
}
