package handlers

import (
	"context"
	"io"
	"sort"
	"sync"
	"time"

	"github.com/anonto42/kratos-hub/backend/internal/middleware"
	"github.com/anonto42/kratos-hub/backend/internal/models"
	"github.com/anonto42/kratos-hub/backend/internal/repositories"
	"github.com/anonto42/kratos-hub/backend/internal/validators"
	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type fakePostRepo struct {
	mu       sync.Mutex
	posts    map[string]*models.Post
	listErr  error
	lastList repositories.PostFilter
}

func newFakePostRepo(posts ...models.Post) *fakePostRepo {
	r := &fakePostRepo{posts: make(map[string]*models.Post)}
	for i := range posts {
		p := posts[i]
		r.posts[p.ID.Hex()] = &p
	}
	return r
}

func (r *fakePostRepo) sorted() []models.Post {
	all := make([]models.Post, 0, len(r.posts))
	for _, p := range r.posts {
		all = append(all, *p)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].CreatedAt.After(all[j].CreatedAt) })
	return all
}

func (r *fakePostRepo) CreatePost(_ context.Context, post *models.Post) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	post.ID = primitive.NewObjectID()
	post.CreatedAt = time.Now().UTC()
	post.UpdatedAt = post.CreatedAt
	p := *post
	r.posts[p.ID.Hex()] = &p
	return nil
}

func (r *fakePostRepo) GetPostByID(_ context.Context, id string) (*models.Post, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.posts[id]
	if !ok {
		return nil, repositories.ErrPostNotFound
	}
	cp := *p
	return &cp, nil
}

func (r *fakePostRepo) GetPostsByIDs(_ context.Context, ids []string) ([]models.Post, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	want := make(map[string]bool, len(ids))
	for _, id := range ids {
		want[id] = true
	}
	out := []models.Post{}
	for _, p := range r.sorted() {
		if want[p.ID.Hex()] {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *fakePostRepo) ListPosts(_ context.Context, filter repositories.PostFilter, skip, limit int64) ([]models.Post, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lastList = filter
	if r.listErr != nil {
		return nil, r.listErr
	}
	var matched []models.Post
	for _, p := range r.sorted() {
		if filter.AuthorID == 0 || p.AuthorID == filter.AuthorID {
			matched = append(matched, p)
		}
	}
	out := []models.Post{}
	for i := skip; i < int64(len(matched)) && int64(len(out)) < limit; i++ {
		out = append(out, matched[i])
	}
	return out, nil
}

func (r *fakePostRepo) DeletePost(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.posts[id]; !ok {
		return repositories.ErrPostNotFound
	}
	delete(r.posts, id)
	return nil
}

func (r *fakePostRepo) IncrementLikesCount(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p, ok := r.posts[id]; ok {
		p.LikesCount++
	}
	return nil
}

func (r *fakePostRepo) DecrementLikesCount(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p, ok := r.posts[id]; ok && p.LikesCount > 0 {
		p.LikesCount--
	}
	return nil
}

func (r *fakePostRepo) IncrementSharesCount(_ context.Context, id string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.posts[id]
	if !ok {
		return 0, repositories.ErrPostNotFound
	}
	p.SharesCount++
	return p.SharesCount, nil
}

type likeKey struct {
	postID string
	userID uint
}

type fakeLikeRepo struct {
	mu         sync.Mutex
	likes      map[likeKey]bool
	likers     map[string][]models.Liker
	likerCalls int
	// onGetLikers runs after each GetLikers read, outside the lock
	onGetLikers func(postID string)
}

func newFakeLikeRepo() *fakeLikeRepo {
	return &fakeLikeRepo{likes: make(map[likeKey]bool), likers: make(map[string][]models.Liker)}
}

func (r *fakeLikeRepo) ToggleLike(_ context.Context, postID string, userID uint) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	k := likeKey{postID, userID}
	if r.likes[k] {
		delete(r.likes, k)
		return false, nil
	}
	r.likes[k] = true
	return true, nil
}

func (r *fakeLikeRepo) HasUserLikedPost(_ context.Context, postID string, userID uint) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.likes[likeKey{postID, userID}], nil
}

func (r *fakeLikeRepo) GetLikedPostIDs(_ context.Context, userID uint, postIDs []string) (map[string]bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make(map[string]bool)
	for _, id := range postIDs {
		if r.likes[likeKey{id, userID}] {
			out[id] = true
		}
	}
	return out, nil
}

func (r *fakeLikeRepo) GetLikers(_ context.Context, postID string) ([]models.Liker, error) {
	r.mu.Lock()
	r.likerCalls++
	likers := r.likers[postID]
	hook := r.onGetLikers
	r.mu.Unlock()
	if likers == nil {
		likers = []models.Liker{}
	}
	if hook != nil {
		hook(postID)
	}
	return likers, nil
}

func (r *fakeLikeRepo) DeleteByPostID(_ context.Context, postID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for k := range r.likes {
		if k.postID == postID {
			delete(r.likes, k)
		}
	}
	return nil
}

type fakeSavedRepo struct {
	mu    sync.Mutex
	order []likeKey
}

func (r *fakeSavedRepo) index(userID uint, postID string) int {
	for i, k := range r.order {
		if k.userID == userID && k.postID == postID {
			return i
		}
	}
	return -1
}

func (r *fakeSavedRepo) ToggleSave(_ context.Context, userID uint, postID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if i := r.index(userID, postID); i >= 0 {
		r.order = append(r.order[:i], r.order[i+1:]...)
		return false, nil
	}
	r.order = append(r.order, likeKey{postID, userID})
	return true, nil
}

func (r *fakeSavedRepo) GetSavedPostIDs(_ context.Context, userID uint, postIDs []string) (map[string]bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make(map[string]bool)
	for _, id := range postIDs {
		if r.index(userID, id) >= 0 {
			out[id] = true
		}
	}
	return out, nil
}

// ListSavedPostIDs lists most recently saved first
func (r *fakeSavedRepo) ListSavedPostIDs(_ context.Context, userID uint, offset, limit int) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var ids []string
	for i := len(r.order) - 1; i >= 0; i-- {
		if r.order[i].userID == userID {
			ids = append(ids, r.order[i].postID)
		}
	}
	out := []string{}
	for i := offset; i < len(ids) && len(out) < limit; i++ {
		out = append(out, ids[i])
	}
	return out, nil
}

func (r *fakeSavedRepo) DeleteByPostID(_ context.Context, postID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	kept := r.order[:0]
	for _, k := range r.order {
		if k.postID != postID {
			kept = append(kept, k)
		}
	}
	r.order = kept
	return nil
}

type fakeUserRepo struct {
	mu    sync.Mutex
	users map[uint]*models.User
}

func newFakeUserRepo(users ...models.User) *fakeUserRepo {
	r := &fakeUserRepo{users: make(map[uint]*models.User)}
	for i := range users {
		u := users[i]
		r.users[u.ID] = &u
	}
	return r
}

func (r *fakeUserRepo) CreateUser(_ context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	user.ID = uint(len(r.users) + 1)
	u := *user
	r.users[u.ID] = &u
	return nil
}

func (r *fakeUserRepo) GetUserByID(_ context.Context, id uint) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, repositories.ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

func (r *fakeUserRepo) GetUserByFirebaseUID(_ context.Context, uid string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.FirebaseUID == uid {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repositories.ErrUserNotFound
}

func (r *fakeUserRepo) GetUsersByIDs(_ context.Context, ids []uint) (map[uint]models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make(map[uint]models.User)
	for _, id := range ids {
		if u, ok := r.users[id]; ok {
			out[id] = *u
		}
	}
	return out, nil
}

func (r *fakeUserRepo) SearchUsers(_ context.Context, _ string, offset, limit int) ([]models.User, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	all := make([]models.User, 0, len(r.users))
	for _, u := range r.users {
		all = append(all, *u)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID < all[j].ID })
	out := []models.User{}
	for i := offset; i < len(all) && len(out) < limit; i++ {
		out = append(out, all[i])
	}
	return out, int64(len(all)), nil
}

func (r *fakeUserRepo) SetBanned(_ context.Context, id uint, banned bool) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, repositories.ErrUserNotFound
	}
	u.IsBanned = banned
	cp := *u
	return &cp, nil
}

func (r *fakeUserRepo) DeleteUser(_ context.Context, id uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[id]; !ok {
		return repositories.ErrUserNotFound
	}
	delete(r.users, id)
	return nil
}

type fakeNotificationRepo struct {
	mu      sync.Mutex
	created []models.Notification
	readAll []uint
}

func (r *fakeNotificationRepo) CreateNotification(_ context.Context, n *models.Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	n.ID = uint(len(r.created) + 1)
	r.created = append(r.created, *n)
	return nil
}

func (r *fakeNotificationRepo) GetByRecipientID(_ context.Context, recipientID uint, page, limit int) ([]models.Notification, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var mine []models.Notification
	for _, n := range r.created {
		if n.RecipientID == recipientID {
			mine = append(mine, n)
		}
	}
	out := []models.Notification{}
	for i := (page - 1) * limit; i < len(mine) && len(out) < limit; i++ {
		out = append(out, mine[i])
	}
	return out, int64(len(mine)), nil
}

func (r *fakeNotificationRepo) GetUnreadCount(_ context.Context, recipientID uint) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, c := range r.created {
		if c.RecipientID == recipientID && !c.IsRead {
			n++
		}
	}
	return n, nil
}

func (r *fakeNotificationRepo) MarkAllAsRead(_ context.Context, recipientID uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.readAll = append(r.readAll, recipientID)
	for i := range r.created {
		if r.created[i].RecipientID == recipientID {
			r.created[i].IsRead = true
		}
	}
	return nil
}

func testLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

// newTestEcho builds an echo instance wired like the server, with the viewer
// injected the way the auth middlewares do.
func newTestEcho(viewerID uint, admin bool) (*echo.Echo, *echo.Group) {
	e := echo.New()
	e.Validator = validators.NewValidator()
	e.HTTPErrorHandler = ErrorHandler(testLogger())
	g := e.Group("/api/v1", func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if viewerID != 0 {
				c.Set(middleware.ContextUserID, viewerID)
			}
			c.Set(middleware.ContextIsAdmin, admin)
			return next(c)
		}
	})
	return e, g
}

func postAt(authorID uint, category string, age time.Duration) models.Post {
	created := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC).Add(-age)
	return models.Post{
		ID:        primitive.NewObjectID(),
		AuthorID:  authorID,
		Caption:   "leg day",
		Category:  category,
		CreatedAt: created,
		UpdatedAt: created,
	}
}
