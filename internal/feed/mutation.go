package feed

import (
	"context"
	"errors"
	"sync"

	"github.com/anonto42/kratos-hub/backend/internal/models"
	"github.com/anonto42/kratos-hub/backend/internal/session"
	"github.com/sirupsen/logrus"
)

var (
	// ErrInFlight is returned when the same action is already running for a post
	ErrInFlight = errors.New("feed: action already in flight for this post")
	// ErrPostNotFound is returned for actions on a post the store does not hold
	ErrPostNotFound = errors.New("feed: post is not in the store")
)

// Interactions is the server side of the optimistic actions
type Interactions interface {
	ToggleLike(ctx context.Context, req models.LikeRequest) (models.LikeResult, error)
	ToggleSave(ctx context.Context, req models.SaveRequest) (models.SaveResult, error)
	SharePost(ctx context.Context, postID string) (models.ShareResult, error)
	DeletePost(ctx context.Context, postID string) error
}

// Action names one kind of optimistic mutation
type Action string

const (
	ActionLike   Action = "like"
	ActionSave   Action = "save"
	ActionShare  Action = "share"
	ActionDelete Action = "delete"
)

type inflightKey struct {
	action Action
	postID string
}

// command is one optimistic action. apply runs before the request, commit
// reconciles with the server result, undo restores the snapshot on failure.
type command struct {
	apply  func()
	send   func(ctx context.Context) error
	commit func()
	undo   func()
}

// LikeNotificationFunc builds the optional notification metadata sent with a
// like. Returning nil sends none.
type LikeNotificationFunc func(post models.FeedPost, viewer models.UserCompact) *models.LikeNotification

// Mutator applies user actions to a Store ahead of the server and reconciles
// or rolls back when the response arrives.
type Mutator struct {
	store    *Store
	api      Interactions
	session  *session.Session
	notifier Notifier
	likeMeta LikeNotificationFunc
	log      logrus.FieldLogger

	mu       sync.Mutex
	inflight map[inflightKey]struct{}
}

// MutatorOption configures a Mutator
type MutatorOption func(*Mutator)

func WithNotifier(n Notifier) MutatorOption {
	return func(m *Mutator) {
		if n != nil {
			m.notifier = n
		}
	}
}

func WithLikeNotification(fn LikeNotificationFunc) MutatorOption {
	return func(m *Mutator) { m.likeMeta = fn }
}

func WithMutatorLogger(log logrus.FieldLogger) MutatorOption {
	return func(m *Mutator) { m.log = log }
}

func NewMutator(store *Store, api Interactions, sess *session.Session, opts ...MutatorOption) *Mutator {
	m := &Mutator{
		store:    store,
		api:      api,
		session:  sess,
		notifier: discardNotifier{},
		log:      logrus.StandardLogger(),
		inflight: make(map[inflightKey]struct{}),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *Mutator) acquire(a Action, postID string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := inflightKey{a, postID}
	if _, busy := m.inflight[key]; busy {
		return false
	}
	m.inflight[key] = struct{}{}
	return true
}

func (m *Mutator) release(a Action, postID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.inflight, inflightKey{a, postID})
}

// InFlight reports whether a is running for postID
func (m *Mutator) InFlight(a Action, postID string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, busy := m.inflight[inflightKey{a, postID}]
	return busy
}

func (m *Mutator) run(ctx context.Context, a Action, postID string, build func(before models.FeedPost) command) error {
	if !m.acquire(a, postID) {
		return ErrInFlight
	}
	defer m.release(a, postID)

	before, ok := m.store.Post(postID)
	if !ok {
		return ErrPostNotFound
	}

	cmd := build(before)
	cmd.apply()
	err := cmd.send(ctx)
	if err == nil {
		if cmd.commit != nil {
			cmd.commit()
		}
		return nil
	}

	cmd.undo()
	if m.store.Closed() {
		return err
	}
	notice := NoticeFor(err)
	notice.PostID = postID
	if IsStale(err) {
		m.store.Remove(postID)
	}
	m.log.WithError(err).WithFields(logrus.Fields{"action": string(a), "post_id": postID}).Debug("Optimistic action rolled back")
	m.notifier.Notify(notice)
	return err
}

// restoreLike puts the like fields back to the snapshot
func (m *Mutator) restoreLike(before models.FeedPost) {
	m.store.update(before.ID, func(p *models.FeedPost) {
		p.LikeCount = before.LikeCount
		p.IsLikedByUser = before.IsLikedByUser
	})
}

// ToggleLike flips the like state right away. On success the server's liked
// value wins; on failure the snapshot is restored and a notice is shown.
func (m *Mutator) ToggleLike(ctx context.Context, postID string) error {
	return m.run(ctx, ActionLike, postID, func(before models.FeedPost) command {
		var result models.LikeResult
		return command{
			apply: func() { m.store.ApplyLikeResult(postID, !before.IsLikedByUser) },
			send: func(ctx context.Context) error {
				req := models.LikeRequest{UserID: m.session.ViewerID(), PostID: postID}
				if m.likeMeta != nil && !before.IsLikedByUser {
					req.Notification = m.likeMeta(before, m.session.Viewer())
				}
				var err error
				result, err = m.api.ToggleLike(ctx, req)
				return err
			},
			commit: func() {
				m.restoreLike(before)
				if result.Liked != before.IsLikedByUser {
					m.store.ApplyLikeResult(postID, result.Liked)
				}
			},
			undo: func() { m.restoreLike(before) },
		}
	})
}

// ToggleSave flips the saved flag right away and adopts the server's value
func (m *Mutator) ToggleSave(ctx context.Context, postID string) error {
	return m.run(ctx, ActionSave, postID, func(before models.FeedPost) command {
		var result models.SaveResult
		return command{
			apply: func() { m.store.ApplySaveResult(postID, !before.IsSavedByUser) },
			send: func(ctx context.Context) error {
				var err error
				result, err = m.api.ToggleSave(ctx, models.SaveRequest{UserID: m.session.ViewerID(), PostID: postID})
				return err
			},
			commit: func() { m.store.ApplySaveResult(postID, result.IsSaved) },
			undo:   func() { m.store.ApplySaveResult(postID, before.IsSavedByUser) },
		}
	})
}

// Share bumps the share count right away and adopts the server's count
func (m *Mutator) Share(ctx context.Context, postID string) error {
	return m.run(ctx, ActionShare, postID, func(before models.FeedPost) command {
		var result models.ShareResult
		setCount := func(n int) {
			m.store.update(postID, func(p *models.FeedPost) { p.ShareCount = n })
		}
		return command{
			apply: func() { setCount(before.ShareCount + 1) },
			send: func(ctx context.Context) error {
				var err error
				result, err = m.api.SharePost(ctx, postID)
				return err
			},
			commit: func() { setCount(result.ShareCount) },
			undo:   func() { setCount(before.ShareCount) },
		}
	})
}

// Delete removes the post right away and puts it back at its old position if
// the server refuses.
func (m *Mutator) Delete(ctx context.Context, postID string) error {
	return m.run(ctx, ActionDelete, postID, func(before models.FeedPost) command {
		index := -1
		return command{
			apply: func() { _, index, _ = m.store.Remove(postID) },
			send:  func(ctx context.Context) error { return m.api.DeletePost(ctx, postID) },
			undo: func() {
				if index >= 0 {
					m.store.insertAt(index, before)
				}
			},
		}
	})
}
