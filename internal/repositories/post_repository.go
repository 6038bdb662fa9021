package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/anonto42/kratos-hub/backend/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ErrPostNotFound is returned when a post ID does not resolve to a stored post
var ErrPostNotFound = errors.New("post not found")

// PostFilter narrows a post listing. A zero AuthorID lists every author.
type PostFilter struct {
	AuthorID uint
}

// PostRepository defines the interface for post data operations
type PostRepository interface {
	CreatePost(ctx context.Context, post *models.Post) error
	GetPostByID(ctx context.Context, id string) (*models.Post, error)
	GetPostsByIDs(ctx context.Context, ids []string) ([]models.Post, error)
	ListPosts(ctx context.Context, filter PostFilter, skip, limit int64) ([]models.Post, error)
	DeletePost(ctx context.Context, id string) error
	IncrementLikesCount(ctx context.Context, postID string) error
	DecrementLikesCount(ctx context.Context, postID string) error
	IncrementSharesCount(ctx context.Context, postID string) (int, error)
}

// MongoPostRepository implements PostRepository for MongoDB
type MongoPostRepository struct {
	collection *mongo.Collection
}

// NewMongoPostRepository creates a new MongoPostRepository
func NewMongoPostRepository(db *mongo.Database) *MongoPostRepository {
	return &MongoPostRepository{collection: db.Collection("posts")}
}

func parseObjectID(id string) (primitive.ObjectID, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		// a malformed ID can never match a stored post
		return primitive.NilObjectID, fmt.Errorf("invalid post ID format: %w", ErrPostNotFound)
	}
	return objID, nil
}

// CreatePost creates a new post in MongoDB
func (r *MongoPostRepository) CreatePost(ctx context.Context, post *models.Post) error {
	now := time.Now().UTC()
	post.ID = primitive.NewObjectID()
	post.CreatedAt = now
	post.UpdatedAt = now
	_, err := r.collection.InsertOne(ctx, post)
	return err
}

// GetPostByID retrieves a post by ID from MongoDB
func (r *MongoPostRepository) GetPostByID(ctx context.Context, id string) (*models.Post, error) {
	objID, err := parseObjectID(id)
	if err != nil {
		return nil, err
	}

	var post models.Post
	err = r.collection.FindOne(ctx, bson.M{"_id": objID}).Decode(&post)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrPostNotFound
		}
		return nil, err
	}
	return &post, nil
}

// GetPostsByIDs retrieves the posts that still exist among ids, newest first.
// Malformed IDs are skipped.
func (r *MongoPostRepository) GetPostsByIDs(ctx context.Context, ids []string) ([]models.Post, error) {
	objIDs := make([]primitive.ObjectID, 0, len(ids))
	for _, id := range ids {
		if objID, err := primitive.ObjectIDFromHex(id); err == nil {
			objIDs = append(objIDs, objID)
		}
	}
	posts := []models.Post{}
	if len(objIDs) == 0 {
		return posts, nil
	}

	findOptions := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := r.collection.Find(ctx, bson.M{"_id": bson.M{"$in": objIDs}}, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	if err = cursor.All(ctx, &posts); err != nil {
		return nil, err
	}
	return posts, nil
}

// ListPosts retrieves posts newest first with skip/limit pagination
func (r *MongoPostRepository) ListPosts(ctx context.Context, filter PostFilter, skip, limit int64) ([]models.Post, error) {
	query := bson.M{}
	if filter.AuthorID != 0 {
		query["author_id"] = filter.AuthorID
	}

	findOptions := options.Find().
		SetSkip(skip).
		SetLimit(limit).
		SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}})
	cursor, err := r.collection.Find(ctx, query, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	posts := []models.Post{}
	if err = cursor.All(ctx, &posts); err != nil {
		return nil, err
	}
	return posts, nil
}

// DeletePost deletes a post by ID from MongoDB
func (r *MongoPostRepository) DeletePost(ctx context.Context, id string) error {
	objID, err := parseObjectID(id)
	if err != nil {
		return err
	}

	res, err := r.collection.DeleteOne(ctx, bson.M{"_id": objID})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrPostNotFound
	}
	return nil
}

// IncrementLikesCount increments the likes count of a post
func (r *MongoPostRepository) IncrementLikesCount(ctx context.Context, postID string) error {
	objID, err := parseObjectID(postID)
	if err != nil {
		return err
	}
	_, err = r.collection.UpdateOne(ctx, bson.M{"_id": objID}, bson.M{"$inc": bson.M{"likes_count": 1}})
	return err
}

// DecrementLikesCount decrements the likes count of a post, never below zero
func (r *MongoPostRepository) DecrementLikesCount(ctx context.Context, postID string) error {
	objID, err := parseObjectID(postID)
	if err != nil {
		return err
	}
	filter := bson.M{"_id": objID, "likes_count": bson.M{"$gt": 0}}
	_, err = r.collection.UpdateOne(ctx, filter, bson.M{"$inc": bson.M{"likes_count": -1}})
	return err
}

// IncrementSharesCount increments the shares count and returns the new value
func (r *MongoPostRepository) IncrementSharesCount(ctx context.Context, postID string) (int, error) {
	objID, err := parseObjectID(postID)
	if err != nil {
		return 0, err
	}

	var post models.Post
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	err = r.collection.FindOneAndUpdate(ctx, bson.M{"_id": objID}, bson.M{"$inc": bson.M{"shares_count": 1}}, opts).Decode(&post)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return 0, ErrPostNotFound
		}
		return 0, err
	}
	return post.SharesCount, nil
}
