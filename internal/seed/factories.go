// Package seed fills a development database with demo users, posts and likes.
package seed

import (
	"context"
	"fmt"
	"time"

	"github.com/anonto42/kratos-hub/backend/internal/models"
	"github.com/anonto42/kratos-hub/backend/internal/repositories"
	"github.com/brianvoe/gofakeit/v6"
	"github.com/sirupsen/logrus"
)

var categories = []string{
	models.CategoryWorkout,
	models.CategoryNutrition,
	models.CategoryProgress,
	models.CategoryMotivation,
}

// Options sizes a seed run
type Options struct {
	Users        int
	PostsPerUser int
	// LikeChance is the probability (0-100) that a user likes a given post
	LikeChance int
	Seed       int64
}

// Seeder writes demo data through the repositories
type Seeder struct {
	users repositories.UserRepository
	posts repositories.PostRepository
	likes repositories.LikeRepository
	log   logrus.FieldLogger
}

func NewSeeder(users repositories.UserRepository, posts repositories.PostRepository, likes repositories.LikeRepository, log logrus.FieldLogger) *Seeder {
	return &Seeder{users: users, posts: posts, likes: likes, log: log}
}

// Result counts what a seed run created
type Result struct {
	Users int
	Posts int
	Likes int
}

// NewUser builds a random user; the first one seeded is an admin
func NewUser(admin bool) *models.User {
	return &models.User{
		FirstName: gofakeit.FirstName(),
		LastName:  gofakeit.LastName(),
		Email:     fmt.Sprintf("%d.%s", gofakeit.Number(1000, 9999), gofakeit.Email()),
		AvatarURL: fmt.Sprintf("https://i.pravatar.cc/150?u=%s", gofakeit.UUID()),
		IsAdmin:   admin,
	}
}

// NewPost builds a random post by authorID
func NewPost(authorID uint) *models.Post {
	post := &models.Post{
		AuthorID: authorID,
		Caption:  gofakeit.Sentence(gofakeit.Number(4, 14)),
		Category: categories[gofakeit.Number(0, len(categories)-1)],
	}
	for i := gofakeit.Number(0, 3); i > 0; i-- {
		post.ImageURLs = append(post.ImageURLs, fmt.Sprintf("https://picsum.photos/seed/%s/800/800", gofakeit.UUID()))
	}
	return post
}

// Run seeds users, their posts and random likes between them
func (s *Seeder) Run(ctx context.Context, opts Options) (Result, error) {
	if opts.Seed == 0 {
		opts.Seed = time.Now().UnixNano()
	}
	gofakeit.Seed(opts.Seed)

	var res Result
	userIDs := make([]uint, 0, opts.Users)
	for i := 0; i < opts.Users; i++ {
		u := NewUser(i == 0)
		if err := s.users.CreateUser(ctx, u); err != nil {
			return res, fmt.Errorf("create user: %w", err)
		}
		userIDs = append(userIDs, u.ID)
		res.Users++
	}

	for _, authorID := range userIDs {
		for i := 0; i < opts.PostsPerUser; i++ {
			p := NewPost(authorID)
			if err := s.posts.CreatePost(ctx, p); err != nil {
				return res, fmt.Errorf("create post: %w", err)
			}
			res.Posts++

			for _, likerID := range userIDs {
				if likerID == authorID || gofakeit.Number(1, 100) > opts.LikeChance {
					continue
				}
				postID := p.ID.Hex()
				if _, err := s.likes.ToggleLike(ctx, postID, likerID); err != nil {
					return res, fmt.Errorf("like post: %w", err)
				}
				if err := s.posts.IncrementLikesCount(ctx, postID); err != nil {
					return res, fmt.Errorf("count like: %w", err)
				}
				res.Likes++
			}
		}
	}

	s.log.WithFields(logrus.Fields{
		"users": res.Users,
		"posts": res.Posts,
		"likes": res.Likes,
		"seed":  opts.Seed,
	}).Info("Seed completed")
	return res, nil
}
