package command

import "time"

// SessionState is the lifecycle state of a confirmation session.
type SessionState string

const (
	SessionPending   SessionState = "PENDING"
	SessionConfirmed SessionState = "CONFIRMED"
	SessionCancelled SessionState = "CANCELLED"
	SessionExpired   SessionState = "EXPIRED"
)

// Terminal indicates the session can no longer be resolved.
func (state SessionState) Terminal() bool {
	return state != SessionPending
}

// Session holds one action awaiting explicit human sign-off. Sessions are
// ephemeral: they live in memory until resolved, superseded, or expired.
type Session struct {
	ID        string
	ContextID string // originating conversation/user context
	Action    ActionDescriptor
	State     SessionState
	CreatedAt time.Time
	ExpiresAt time.Time
}

// ExpiredAt reports whether the session's TTL has elapsed at `now`.
// Expiry is observed lazily at resolve time; there is no background sweep.
func (s *Session) ExpiredAt(now time.Time) bool {
	return now.After(s.ExpiresAt)
}
