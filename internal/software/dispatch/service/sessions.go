package service

import (
	"sync"
	"time"

	"fleet-dispatch/internal/domain/command"

	"github.com/google/uuid"
)

// sessionStore holds pending confirmation sessions in memory, keyed by
// session id and by conversation context. A context owns at most one PENDING
// session: opening a new one supersedes the old. Expiry is checked lazily on
// resolve; there is no background sweep.
type sessionStore struct {
	mu        sync.Mutex
	ttl       time.Duration
	now       func() time.Time
	byID      map[string]*command.Session
	byContext map[string]string // contextID -> pending session id
}

func newSessionStore(ttl time.Duration, now func() time.Time) *sessionStore {
	return &sessionStore{
		ttl:       ttl,
		now:       now,
		byID:      make(map[string]*command.Session),
		byContext: make(map[string]string),
	}
}

// Open creates a PENDING session for the action. Any prior PENDING session in
// the same context is marked CANCELLED and detached; only the newest session
// per context is resolvable.
func (store *sessionStore) Open(contextID string, action command.ActionDescriptor) *command.Session {
	store.mu.Lock()
	defer store.mu.Unlock()

	if oldID, ok := store.byContext[contextID]; ok {
		if old := store.byID[oldID]; old != nil && old.State == command.SessionPending {
			old.State = command.SessionCancelled
		}
		delete(store.byID, oldID)
		delete(store.byContext, contextID)
	}

	now := store.now()
	s := &command.Session{
		ID:        uuid.NewString(),
		ContextID: contextID,
		Action:    action,
		State:     command.SessionPending,
		CreatedAt: now,
		ExpiresAt: now.Add(store.ttl),
	}

	store.byID[s.ID] = s
	store.byContext[contextID] = s.ID

	return s
}

// Resolve settles a pending session. Exactly one resolution wins: a session
// already in a terminal state is reported as not found, an expired one as
// expired (and is marked EXPIRED as a side effect).
func (store *sessionStore) Resolve(sessionID string, confirmed bool) (command.ActionDescriptor, error) {
	store.mu.Lock()
	defer store.mu.Unlock()

	s, ok := store.byID[sessionID]
	if !ok || s.State.Terminal() {
		return command.ActionDescriptor{}, command.ErrSessionNotFound
	}

	if s.ExpiredAt(store.now()) {
		s.State = command.SessionExpired
		store.detachLocked(s)
		return command.ActionDescriptor{}, command.ErrSessionExpired
	}

	if confirmed {
		s.State = command.SessionConfirmed
	} else {
		s.State = command.SessionCancelled
	}
	store.detachLocked(s)

	return s.Action, nil
}

// detachLocked drops the context index entry if it still points at s.
func (store *sessionStore) detachLocked(s *command.Session) {
	if store.byContext[s.ContextID] == s.ID {
		delete(store.byContext, s.ContextID)
	}
	delete(store.byID, s.ID)
}
