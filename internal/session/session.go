// Package session holds the signed-in viewer and bearer token for client code.
// It is passed explicitly to the gateway and the feed store.
package session

import (
	"sync"

	"github.com/anonto42/kratos-hub/backend/internal/models"
)

type Session struct {
	mu     sync.RWMutex
	viewer models.UserCompact
	token  string
}

func New(viewer models.UserCompact, token string) *Session {
	return &Session{viewer: viewer, token: token}
}

func (s *Session) Viewer() models.UserCompact {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.viewer
}

// ViewerID is zero when nobody is signed in
func (s *Session) ViewerID() uint {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.viewer.ID
}

func (s *Session) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

func (s *Session) SignedIn() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.viewer.ID != 0 && s.token != ""
}

func (s *Session) SetViewer(viewer models.UserCompact) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.viewer = viewer
}

func (s *Session) SetToken(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
}

// SignOut clears the viewer and the token together
func (s *Session) SignOut() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.viewer = models.UserCompact{}
	s.token = ""
}
