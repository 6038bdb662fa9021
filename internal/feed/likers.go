package feed

import (
	"context"
	"sync"

	"github.com/anonto42/kratos-hub/backend/internal/models"
)

// LikersSource fetches who liked a post
type LikersSource interface {
	ListLikers(ctx context.Context, postID string) (models.LikersResult, error)
}

// LikersPopup is the transient "who liked this" list. The likers are held
// only while the popup is on screen.
type LikersPopup struct {
	source   LikersSource
	notifier Notifier

	mu         sync.Mutex
	state      Visibility
	postID     string
	likers     []models.Liker
	generation uint64
}

func NewLikersPopup(source LikersSource, notifier Notifier) *LikersPopup {
	if notifier == nil {
		notifier = discardNotifier{}
	}
	return &LikersPopup{source: source, notifier: notifier}
}

// Open shows the popup for postID and loads its likers. Opening a popup that
// is already entering or visible does not refetch. A fetch that finishes
// after Close is dropped.
func (p *LikersPopup) Open(ctx context.Context, postID string) error {
	p.mu.Lock()
	next := Transition(p.state, Show)
	if next != Entering {
		p.mu.Unlock()
		return nil
	}
	p.state = next
	p.postID = postID
	p.likers = nil
	p.generation++
	gen := p.generation
	p.mu.Unlock()

	res, err := p.source.ListLikers(ctx, postID)

	p.mu.Lock()
	if gen != p.generation {
		p.mu.Unlock()
		return nil
	}
	if err != nil {
		p.state = Transition(p.state, Hide)
		p.mu.Unlock()
		notice := NoticeFor(err)
		notice.PostID = postID
		p.notifier.Notify(notice)
		return err
	}
	p.likers = append([]models.Liker{}, res.Likers...)
	p.state = Transition(p.state, Settle)
	p.mu.Unlock()
	return nil
}

// Close starts the exit transition
func (p *LikersPopup) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.state = Transition(p.state, Hide)
	p.generation++
}

// TransitionEnd reports that the running transition finished. Once hidden the
// likers are discarded.
func (p *LikersPopup) TransitionEnd() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.state = Transition(p.state, Settle)
	if p.state == Hidden {
		p.likers = nil
		p.postID = ""
	}
}

func (p *LikersPopup) State() Visibility {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

func (p *LikersPopup) Likers() []models.Liker {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]models.Liker{}, p.likers...)
}

func (p *LikersPopup) PostID() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.postID
}
