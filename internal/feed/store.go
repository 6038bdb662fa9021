// Package feed keeps the client-side community feed: a paginated store of
// posts, category filtering and optimistic like/save/share/delete.
package feed

import (
	"context"
	"sync"

	"github.com/anonto42/kratos-hub/backend/internal/gateway"
	"github.com/anonto42/kratos-hub/backend/internal/models"
	"github.com/anonto42/kratos-hub/backend/internal/session"
	"github.com/sirupsen/logrus"
)

// DefaultPageSize matches the server's default page size
const DefaultPageSize = 10

// PageSource fetches feed pages
type PageSource interface {
	ListPosts(ctx context.Context, p gateway.ListPostsParams) (models.PostPage, error)
}

// Scope selects the community feed or one author's posts
type Scope struct {
	ForUser  bool
	AuthorID uint
}

// CommunityScope is the global feed
func CommunityScope() Scope { return Scope{} }

// UserScope lists one author's posts; zero means the viewer
func UserScope(authorID uint) Scope { return Scope{ForUser: true, AuthorID: authorID} }

// Store owns the posts of one feed view. Pages are appended in fetch order
// and loads never overlap: a LoadNextPage issued while another load is in
// flight is dropped. Each LoadFirstPage starts a new generation, and page
// responses from an older generation are discarded.
type Store struct {
	source   PageSource
	session  *session.Session
	pageSize int
	log      logrus.FieldLogger

	mu         sync.Mutex
	posts      []models.FeedPost
	scope      Scope
	page       int
	hasMore    bool
	loading    bool
	generation uint64
	closed     bool
}

// StoreOption configures a Store
type StoreOption func(*Store)

func WithPageSize(n int) StoreOption {
	return func(s *Store) {
		if n > 0 {
			s.pageSize = n
		}
	}
}

func WithStoreLogger(log logrus.FieldLogger) StoreOption {
	return func(s *Store) { s.log = log }
}

func NewStore(source PageSource, sess *session.Session, opts ...StoreOption) *Store {
	s := &Store{
		source:   source,
		session:  sess,
		pageSize: DefaultPageSize,
		log:      logrus.StandardLogger(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Store) params(scope Scope, page int) gateway.ListPostsParams {
	return gateway.ListPostsParams{
		UserID:   s.session.ViewerID(),
		ForUser:  scope.ForUser,
		AuthorID: scope.AuthorID,
		Page:     page,
		Limit:    s.pageSize,
	}
}

// LoadFirstPage replaces the collection with page 1 of scope. The scope is
// switched only once the page arrives; a failed load keeps the previous scope
// with its posts and cursor.
func (s *Store) LoadFirstPage(ctx context.Context, scope Scope) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.generation++
	gen := s.generation
	s.loading = true
	s.mu.Unlock()

	page, err := s.source.ListPosts(ctx, s.params(scope, 1))

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || gen != s.generation {
		s.log.WithField("page", 1).Debug("Discarding superseded feed page")
		return nil
	}
	s.loading = false
	if err != nil {
		return err
	}
	s.scope = scope
	s.posts = append([]models.FeedPost(nil), page.Posts...)
	s.page = 1
	s.hasMore = page.HasMore
	return nil
}

// LoadNextPage appends the next page. It issues no request when the feed is
// exhausted, nothing has been loaded yet, or a load is already running.
func (s *Store) LoadNextPage(ctx context.Context) error {
	s.mu.Lock()
	if s.closed || s.loading || !s.hasMore || s.page == 0 {
		s.mu.Unlock()
		return nil
	}
	s.loading = true
	gen := s.generation
	next := s.page + 1
	scope := s.scope
	s.mu.Unlock()

	page, err := s.source.ListPosts(ctx, s.params(scope, next))

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || gen != s.generation {
		s.log.WithField("page", next).Debug("Discarding superseded feed page")
		return nil
	}
	s.loading = false
	if err != nil {
		return err
	}
	s.posts = append(s.posts, page.Posts...)
	s.page = next
	s.hasMore = page.HasMore
	return nil
}

// Close detaches the store from its view; later completions are ignored
func (s *Store) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
}

// ApplyLikeResult moves the post into the liked or unliked state. The count
// never drops below zero. Unknown posts are ignored.
func (s *Store) ApplyLikeResult(postID string, liked bool) {
	s.update(postID, func(p *models.FeedPost) {
		if liked {
			p.LikeCount++
		} else if p.LikeCount > 0 {
			p.LikeCount--
		}
		p.IsLikedByUser = liked
	})
}

func (s *Store) ApplySaveResult(postID string, saved bool) {
	s.update(postID, func(p *models.FeedPost) { p.IsSavedByUser = saved })
}

// Remove drops a post and reports where it was
func (s *Store) Remove(postID string) (models.FeedPost, int, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return models.FeedPost{}, -1, false
	}
	i := s.indexOf(postID)
	if i < 0 {
		return models.FeedPost{}, -1, false
	}
	removed := s.posts[i]
	s.posts = append(s.posts[:i:i], s.posts[i+1:]...)
	return removed, i, true
}

// insertAt puts post back at index, clamped to the current length
func (s *Store) insertAt(index int, post models.FeedPost) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || s.indexOf(post.ID) >= 0 {
		return
	}
	if index < 0 {
		index = 0
	}
	if index > len(s.posts) {
		index = len(s.posts)
	}
	s.posts = append(s.posts[:index], append([]models.FeedPost{post}, s.posts[index:]...)...)
}

func (s *Store) update(postID string, fn func(p *models.FeedPost)) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return false
	}
	i := s.indexOf(postID)
	if i < 0 {
		return false
	}
	fn(&s.posts[i])
	return true
}

func (s *Store) indexOf(postID string) int {
	for i := range s.posts {
		if s.posts[i].ID == postID {
			return i
		}
	}
	return -1
}

// Posts returns a copy of the collection in feed order
func (s *Store) Posts() []models.FeedPost {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.FeedPost{}, s.posts...)
}

func (s *Store) Post(postID string) (models.FeedPost, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexOf(postID)
	if i < 0 {
		return models.FeedPost{}, false
	}
	return s.posts[i], true
}

// Visible is the collection filtered by category, recomputed on every call
func (s *Store) Visible(category string) []models.FeedPost {
	return Filter(s.Posts(), category)
}

func (s *Store) HasMore() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hasMore
}

// Page is the last loaded page number; zero before the first load
func (s *Store) Page() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.page
}

func (s *Store) Loading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loading
}

func (s *Store) Scope() Scope {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.scope
}

func (s *Store) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}
