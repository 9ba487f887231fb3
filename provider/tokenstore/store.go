// Package tokenstore implements authgate.SessionStore over provider-issued
// signed tokens. It keeps the current session in memory, validates tokens
// on acceptance, and fans change events out to subscribers.
package tokenstore

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/reforzo/go-authgate"
)

// Store is an in-process SessionStore. The hosting application feeds it
// tokens as the identity provider issues or rotates them (Accept,
// Refresh); the controller consumes the resulting event stream.
type Store struct {
	validator TokenValidator
	now       func() time.Time

	mu        sync.Mutex
	current   *authgate.Session
	listeners map[int]func(authgate.SessionEvent)
	nextID    int
}

var _ authgate.SessionStore = (*Store)(nil)

// New creates a store that validates incoming tokens with the given
// validator.
func New(validator TokenValidator) *Store {
	return &Store{
		validator: validator,
		now:       time.Now,
		listeners: map[int]func(authgate.SessionEvent){},
	}
}

// CurrentSession implements authgate.SessionStore. Expired sessions are
// cleared and reported as absent.
func (s *Store) CurrentSession(ctx context.Context) (*authgate.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current != nil && s.current.Expired(s.now()) {
		s.current = nil
	}
	return s.current, nil
}

// OnSessionChange implements authgate.SessionStore.
func (s *Store) OnSessionChange(fn func(authgate.SessionEvent)) authgate.Unsubscribe {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.listeners, id)
		s.mu.Unlock()
	}
}

// ListenerCount reports the number of active subscriptions.
func (s *Store) ListenerCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.listeners)
}

// Accept validates a freshly issued token, installs it as the current
// session and emits SIGNED_IN.
func (s *Store) Accept(ctx context.Context, token string) (*authgate.Session, error) {
	session, err := s.validator.Validate(token)
	if err != nil {
		return nil, err
	}
	if session.Expired(s.now()) {
		return nil, fmt.Errorf("tokenstore: token already expired")
	}

	s.mu.Lock()
	s.current = session
	s.mu.Unlock()

	s.emit(authgate.SessionEvent{Type: authgate.SessionSignedIn, Session: session})
	return session, nil
}

// Refresh validates a rotated token for the same identity and emits
// TOKEN_REFRESHED.
func (s *Store) Refresh(ctx context.Context, token string) (*authgate.Session, error) {
	session, err := s.validator.Validate(token)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.current = session
	s.mu.Unlock()

	s.emit(authgate.SessionEvent{Type: authgate.SessionTokenRefreshed, Session: session})
	return session, nil
}

// SignOut implements authgate.SessionStore: clears the current session and
// emits SIGNED_OUT.
func (s *Store) SignOut(ctx context.Context) error {
	s.mu.Lock()
	s.current = nil
	s.mu.Unlock()

	s.emit(authgate.SessionEvent{Type: authgate.SessionSignedOut})
	return nil
}

func (s *Store) emit(event authgate.SessionEvent) {
	s.mu.Lock()
	fns := make([]func(authgate.SessionEvent), 0, len(s.listeners))
	for _, fn := range s.listeners {
		fns = append(fns, fn)
	}
	s.mu.Unlock()

	// listeners run outside the lock so they can call back into the store
	for _, fn := range fns {
		fn(event)
	}
}
