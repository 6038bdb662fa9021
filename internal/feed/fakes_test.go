package feed

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/anonto42/kratos-hub/backend/internal/gateway"
	"github.com/anonto42/kratos-hub/backend/internal/models"
	"github.com/anonto42/kratos-hub/backend/internal/session"
	"github.com/stretchr/testify/require"
)

const waitTimeout = 2 * time.Second

func testSession() *session.Session {
	return session.New(models.UserCompact{ID: 7, FirstName: "Kai", LastName: "Stone"}, "token")
}

func makePosts(prefix string, n int, category string) []models.FeedPost {
	posts := make([]models.FeedPost, n)
	for i := range posts {
		posts[i] = models.FeedPost{
			ID:        fmt.Sprintf("%s-%02d", prefix, i),
			Author:    models.UserCompact{ID: uint(100 + i)},
			Caption:   fmt.Sprintf("post %d", i),
			ImageURLs: []string{},
			Category:  category,
			LikeCount: i,
		}
	}
	return posts
}

// staticSource answers instantly from a page table and records every call
type staticSource struct {
	mu    sync.Mutex
	pages map[int]models.PostPage
	err   error
	calls []gateway.ListPostsParams
}

func (s *staticSource) ListPosts(_ context.Context, p gateway.ListPostsParams) (models.PostPage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, p)
	if s.err != nil {
		return models.PostPage{}, s.err
	}
	return s.pages[p.Page], nil
}

func (s *staticSource) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.calls)
}

type pageReply struct {
	page models.PostPage
	err  error
}

type pendingPage struct {
	params gateway.ListPostsParams
	reply  chan pageReply
}

// blockingSource hands every request to the test, which answers it when it
// chooses.
type blockingSource struct {
	calls chan *pendingPage
}

func newBlockingSource() *blockingSource {
	return &blockingSource{calls: make(chan *pendingPage, 8)}
}

func (b *blockingSource) ListPosts(ctx context.Context, p gateway.ListPostsParams) (models.PostPage, error) {
	call := &pendingPage{params: p, reply: make(chan pageReply, 1)}
	b.calls <- call
	select {
	case r := <-call.reply:
		return r.page, r.err
	case <-ctx.Done():
		return models.PostPage{}, ctx.Err()
	}
}

func (b *blockingSource) next(t *testing.T) *pendingPage {
	t.Helper()
	select {
	case c := <-b.calls:
		return c
	case <-time.After(waitTimeout):
		t.Fatal("expected a page request")
		return nil
	}
}

func (b *blockingSource) assertIdle(t *testing.T) {
	t.Helper()
	select {
	case c := <-b.calls:
		t.Fatalf("unexpected page request for page %d", c.params.Page)
	default:
	}
}

// loadedStore returns a store holding posts as page 1
func loadedStore(t *testing.T, posts []models.FeedPost, hasMore bool) (*Store, *staticSource) {
	t.Helper()
	src := &staticSource{pages: map[int]models.PostPage{1: {Posts: posts, HasMore: hasMore}}}
	s := NewStore(src, testSession())
	require.NoError(t, s.LoadFirstPage(context.Background(), CommunityScope()))
	return s, src
}

// fakeInteractions records requests and optionally blocks each call until
// the test releases it.
type fakeInteractions struct {
	mu          sync.Mutex
	likeResult  models.LikeResult
	likeErr     error
	saveResult  models.SaveResult
	saveErr     error
	shareResult models.ShareResult
	shareErr    error
	deleteErr   error

	likeReqs []models.LikeRequest
	saveReqs []models.SaveRequest
	shares   []string
	deletes  []string

	entered chan struct{}
	gate    chan struct{}
}

func (f *fakeInteractions) block() {
	f.entered = make(chan struct{}, 4)
	f.gate = make(chan struct{})
}

func (f *fakeInteractions) wait(ctx context.Context) error {
	if f.entered != nil {
		f.entered <- struct{}{}
	}
	if f.gate == nil {
		return nil
	}
	select {
	case <-f.gate:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (f *fakeInteractions) awaitEntered(t *testing.T) {
	t.Helper()
	select {
	case <-f.entered:
	case <-time.After(waitTimeout):
		t.Fatal("expected an interaction request")
	}
}

func (f *fakeInteractions) ToggleLike(ctx context.Context, req models.LikeRequest) (models.LikeResult, error) {
	f.mu.Lock()
	f.likeReqs = append(f.likeReqs, req)
	f.mu.Unlock()
	if err := f.wait(ctx); err != nil {
		return models.LikeResult{}, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.likeResult, f.likeErr
}

func (f *fakeInteractions) ToggleSave(ctx context.Context, req models.SaveRequest) (models.SaveResult, error) {
	f.mu.Lock()
	f.saveReqs = append(f.saveReqs, req)
	f.mu.Unlock()
	if err := f.wait(ctx); err != nil {
		return models.SaveResult{}, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.saveResult, f.saveErr
}

func (f *fakeInteractions) SharePost(ctx context.Context, postID string) (models.ShareResult, error) {
	f.mu.Lock()
	f.shares = append(f.shares, postID)
	f.mu.Unlock()
	if err := f.wait(ctx); err != nil {
		return models.ShareResult{}, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.shareResult, f.shareErr
}

func (f *fakeInteractions) DeletePost(ctx context.Context, postID string) error {
	f.mu.Lock()
	f.deletes = append(f.deletes, postID)
	f.mu.Unlock()
	if err := f.wait(ctx); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.deleteErr
}

func (f *fakeInteractions) likeCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.likeReqs)
}

type noticeRecorder struct {
	mu      sync.Mutex
	notices []Notice
}

func (r *noticeRecorder) Notify(n Notice) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notices = append(r.notices, n)
}

func (r *noticeRecorder) all() []Notice {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Notice{}, r.notices...)
}

var (
	errTransport = &gateway.RequestError{Kind: gateway.KindTransport, Message: gateway.TransportMessage}
	errRejected  = &gateway.RequestError{Kind: gateway.KindApplication, Status: 400, Code: "VALIDATION_ERROR", Message: "Invalid request payload"}
	errStale     = &gateway.RequestError{Kind: gateway.KindStale, Status: 404, Code: "NOT_FOUND", Message: "Post not found"}
)
