package authgate

import (
	"context"
	"errors"
	"sync"
	"time"

	goerrors "github.com/goliatone/go-errors"
)

// AuthState is the controller's authoritative view of the session.
// Initializing is true only until the first authoritative answer arrives
// and never flips back. Loading may toggle true again during SignOut.
// Consumers receive value copies and must not mutate the referenced
// User/Session records.
type AuthState struct {
	User         *User
	Session      *Session
	Loading      bool
	Initializing bool
}

// IsAuthenticated reports whether a signed-in user is present.
func (s AuthState) IsAuthenticated() bool {
	return s.User != nil
}

// Controller owns the in-process AuthState. It reconciles the session
// store's push stream and pull snapshot into one consistent view.
//
// A non-nil User never exists without its Session; the two are set and
// cleared together under the controller's lock.
type Controller struct {
	store  SessionStore
	logger Logger
	sink   ActivitySink

	mu          sync.Mutex
	state       AuthState
	started     bool
	resolved    bool
	unsubscribe Unsubscribe
}

// NewController returns a controller in its initial pending state. Call
// Start to attach it to the store and Close to release the subscription.
func NewController(store SessionStore) *Controller {
	return &Controller{
		store:  store,
		logger: defLogger{},
		sink:   noopActivitySink{},
		state:  AuthState{Loading: true, Initializing: true},
	}
}

func (c *Controller) WithLogger(logger Logger) *Controller {
	if logger != nil {
		c.logger = logger
	}
	return c
}

// WithActivitySink configures an ActivitySink for emitting session events.
func (c *Controller) WithActivitySink(sink ActivitySink) *Controller {
	c.sink = normalizeActivitySink(sink)
	return c
}

// Start subscribes to the store's change stream and then issues the pull
// for the current session.
//
// The ordering is load-bearing: subscribing first guarantees an event that
// fires while the pull is in flight is still observed. The pull response
// can then only confirm or upgrade state an event already established,
// never regress it.
//
// Start is idempotent; the guard flag is set synchronously on entry so a
// second invocation in quick succession is a no-op. A store outage during
// the pull degrades to the unauthenticated state and is logged, not
// returned.
func (c *Controller) Start(ctx context.Context) {
	c.mu.Lock()
	if c.started {
		c.mu.Unlock()
		return
	}
	c.started = true
	c.mu.Unlock()

	unsub := c.store.OnSessionChange(c.handleEvent)

	c.mu.Lock()
	c.unsubscribe = unsub
	c.mu.Unlock()

	session, err := c.store.CurrentSession(ctx)
	if err != nil {
		c.logger.Error("session pull failed, treating as signed out", "error", err)
		session = nil
	}
	c.applyPull(ctx, session)
}

// handleEvent is the single reducer for the store's push stream.
func (c *Controller) handleEvent(ev SessionEvent) {
	c.mu.Lock()
	switch ev.Type {
	case SessionSignedOut:
		// the only transition that unconditionally clears Initializing:
		// a sign-out after initial load is still a terminal answer
		c.state = AuthState{}
		c.resolved = true
	case SessionSignedIn:
		c.setSessionLocked(ev.Session)
		c.state.Loading = false
		if !c.resolved {
			c.resolved = true
			c.state.Initializing = false
		}
	default:
		// token refresh and other updates carry the session forward
		if ev.Session != nil {
			c.setSessionLocked(ev.Session)
			if !c.resolved {
				c.resolved = true
				c.state.Loading = false
				c.state.Initializing = false
			}
		}
	}
	c.mu.Unlock()
}

// applyPull applies the pull response as a second, idempotent source of
// truth. If an event already resolved the state the payload is ignored;
// the pull always settles Initializing.
func (c *Controller) applyPull(ctx context.Context, session *Session) {
	c.mu.Lock()
	if !c.resolved {
		c.setSessionLocked(session)
		c.state.Loading = false
		c.resolved = true
	}
	c.state.Initializing = false
	user := c.state.User
	c.mu.Unlock()

	if user != nil {
		c.emit(ctx, ActivityEventSessionResolved, user.ID.String(), nil)
	}
}

func (c *Controller) setSessionLocked(s *Session) {
	c.state.Session = s
	if s != nil {
		c.state.User = s.User
	} else {
		c.state.User = nil
	}
}

// Snapshot returns a copy of the current AuthState.
func (c *Controller) Snapshot() AuthState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// SignOut asks the store to terminate the session. Loading is raised
// synchronously. On failure the session is left untouched, Loading reverts
// and the error is surfaced so the caller can retry; the user stays
// signed in.
func (c *Controller) SignOut(ctx context.Context) error {
	c.mu.Lock()
	userID := ""
	if c.state.User != nil {
		userID = c.state.User.ID.String()
	}
	c.state.Loading = true
	c.mu.Unlock()

	if err := c.store.SignOut(ctx); err != nil {
		c.mu.Lock()
		c.state.Loading = false
		c.mu.Unlock()

		c.logger.Error("sign out failed", "user_id", userID, "error", err)
		c.emit(ctx, ActivityEventSignOutFailure, userID, map[string]any{
			"error": err.Error(),
		})
		return goerrors.Wrap(errors.Join(ErrSignOutIncomplete, err), goerrors.CategoryOperation, "sign out did not complete")
	}

	// the store's own SIGNED_OUT event normally performs the reset; this
	// explicit fallthrough keeps the contract when a store does not echo
	// the event back
	c.mu.Lock()
	c.state = AuthState{}
	c.resolved = true
	c.mu.Unlock()

	c.emit(ctx, ActivityEventSignOutSuccess, userID, nil)
	return nil
}

// Close releases the store subscription and returns the controller to its
// initial state. Unsubscribing and clearing the idempotency flag happen
// together, so a closed controller restarted via Start behaves like a
// fresh instance.
func (c *Controller) Close() {
	c.mu.Lock()
	unsub := c.unsubscribe
	c.unsubscribe = nil
	c.started = false
	c.resolved = false
	c.state = AuthState{Loading: true, Initializing: true}
	c.mu.Unlock()

	if unsub != nil {
		unsub()
	}
}

func (c *Controller) emit(ctx context.Context, eventType ActivityEventType, userID string, metadata map[string]any) {
	event := ActivityEvent{
		EventType:  eventType,
		UserID:     userID,
		Metadata:   metadata,
		OccurredAt: time.Now(),
	}
	if err := c.sink.Record(ctx, event); err != nil {
		c.logger.Error("activity sink record error", "event", string(eventType), "error", err)
	}
}
