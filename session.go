package authgate

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// User is the identity the session store attached to a session.
type User struct {
	ID       uuid.UUID      `json:"id"`
	Email    string         `json:"email,omitempty"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

// Session is a read-only copy of the provider-issued proof of
// authentication. The store owns the authoritative record; consumers treat
// this as an immutable snapshot.
type Session struct {
	Token     string     `json:"token,omitempty"`
	User      *User      `json:"user,omitempty"`
	IssuedAt  *time.Time `json:"issued_at,omitempty"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
}

// GetUserID returns the session's user identity as a string, or "" when the
// session carries no user.
func (s *Session) GetUserID() string {
	if s == nil || s.User == nil {
		return ""
	}
	return s.User.ID.String()
}

// Expired reports whether the session's expiry has passed at the given time.
// Sessions without expiry metadata never expire here.
func (s *Session) Expired(now time.Time) bool {
	if s == nil || s.ExpiresAt == nil {
		return false
	}
	return now.After(*s.ExpiresAt)
}

func (s Session) String() string {
	issuedAt := "<nil>"
	if s.IssuedAt != nil {
		issuedAt = s.IssuedAt.Format(time.RFC1123)
	}
	expiresAt := "<nil>"
	if s.ExpiresAt != nil {
		expiresAt = s.ExpiresAt.Format(time.RFC1123)
	}
	return fmt.Sprintf(
		"Session(user_id=%s issued_at=%s expires_at=%s)",
		s.GetUserID(),
		issuedAt,
		expiresAt,
	)
}
