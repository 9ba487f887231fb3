package authgate

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

type Logger interface {
	Debug(format string, args ...any)
	Info(format string, args ...any)
	Warn(format string, args ...any)
	Error(format string, args ...any)
}

// SessionEventType identifies the kind of change the session store reported.
type SessionEventType string

const (
	// SessionSignedIn fires when the store established a new session.
	SessionSignedIn SessionEventType = "SIGNED_IN"
	// SessionSignedOut fires when the store terminated the session.
	SessionSignedOut SessionEventType = "SIGNED_OUT"
	// SessionTokenRefreshed fires when the store rotated session credentials.
	SessionTokenRefreshed SessionEventType = "TOKEN_REFRESHED"
)

// SessionEvent is a single entry in the session store's change stream.
type SessionEvent struct {
	Type    SessionEventType
	Session *Session
}

// Unsubscribe removes a previously registered session change listener.
type Unsubscribe func()

// SessionStore is the surface the controller consumes from whatever
// provider issues and persists sessions. CurrentSession is the pull path,
// OnSessionChange the push path; the controller reconciles both.
type SessionStore interface {
	CurrentSession(ctx context.Context) (*Session, error)
	OnSessionChange(fn func(SessionEvent)) Unsubscribe
	SignOut(ctx context.Context) error
}

// RoleStore is a keyed read of the role rows assigned to a user.
type RoleStore interface {
	ListRoles(ctx context.Context, userID uuid.UUID) ([]string, error)
}

// ProfileStore holds per-user profile records. UpsertProfile must be
// idempotent on user identity so concurrent first visits never surface a
// duplicate-row failure.
type ProfileStore interface {
	GetProfile(ctx context.Context, userID uuid.UUID) (*Profile, error)
	UpsertProfile(ctx context.Context, userID uuid.UUID, fields ProfileFields) (*Profile, error)
}

// Config holds the navigation targets guards redirect to.
type Config interface {
	GetLoginPath() string
	GetDashboardPath() string
	GetOnboardingPath() string
	GetSignedOutPath() string
	GetRejectedRouteKey() string
}

type defLogger struct{}

func (d defLogger) Error(format string, args ...any) {
	fmt.Printf("[ERR] AUTHGATE "+newline(format), args...)
}

func (d defLogger) Warn(format string, args ...any) {
	fmt.Printf("[WRN] AUTHGATE "+newline(format), args...)
}

func (d defLogger) Info(format string, args ...any) {
	fmt.Printf("[INF] AUTHGATE "+newline(format), args...)
}

func (d defLogger) Debug(format string, args ...any) {
	fmt.Printf("[DBG] AUTHGATE "+newline(format), args...)
}

func newline(s string) string {
	if len(s) > 0 && s[len(s)-1] != '\n' {
		s += "\n"
	}
	return s
}
