package service

import (
	"testing"
	"time"

	"fleet-dispatch/internal/domain/command"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionStore(t *testing.T) {
	now := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }

	desc := command.ActionDescriptor{Kind: command.ActionCancelTrip, TripID: 5}

	t.Run("confirm executes exactly once", func(t *testing.T) {
		store := newSessionStore(5*time.Minute, clock)
		s := store.Open("ctx-1", desc)

		got, err := store.Resolve(s.ID, true)
		require.NoError(t, err)
		assert.Equal(t, desc, got)

		// a second resolve finds nothing
		_, err = store.Resolve(s.ID, true)
		assert.ErrorIs(t, err, command.ErrSessionNotFound)
	})

	t.Run("decline cancels without execution", func(t *testing.T) {
		store := newSessionStore(5*time.Minute, clock)
		s := store.Open("ctx-1", desc)

		got, err := store.Resolve(s.ID, false)
		require.NoError(t, err)
		assert.Equal(t, desc, got)
		assert.Equal(t, command.SessionCancelled, s.State)
	})

	t.Run("unknown session id", func(t *testing.T) {
		store := newSessionStore(5*time.Minute, clock)
		_, err := store.Resolve("nope", true)
		assert.ErrorIs(t, err, command.ErrSessionNotFound)
	})

	t.Run("lazy expiry", func(t *testing.T) {
		moment := now
		store := newSessionStore(5*time.Minute, func() time.Time { return moment })
		s := store.Open("ctx-1", desc)

		moment = moment.Add(5*time.Minute + time.Second)
		_, err := store.Resolve(s.ID, true)
		assert.ErrorIs(t, err, command.ErrSessionExpired)
		assert.Equal(t, command.SessionExpired, s.State)
	})

	t.Run("new session supersedes the pending one", func(t *testing.T) {
		store := newSessionStore(5*time.Minute, clock)
		first := store.Open("ctx-1", desc)
		second := store.Open("ctx-1", command.ActionDescriptor{Kind: command.ActionRemoveVehicle, TripID: 7})

		assert.Equal(t, command.SessionCancelled, first.State)
		_, err := store.Resolve(first.ID, true)
		assert.ErrorIs(t, err, command.ErrSessionNotFound)

		got, err := store.Resolve(second.ID, true)
		require.NoError(t, err)
		assert.Equal(t, int64(7), got.TripID)
	})

	t.Run("contexts are independent", func(t *testing.T) {
		store := newSessionStore(5*time.Minute, clock)
		a := store.Open("ctx-a", desc)
		b := store.Open("ctx-b", desc)

		_, err := store.Resolve(a.ID, true)
		assert.NoError(t, err)
		_, err = store.Resolve(b.ID, true)
		assert.NoError(t, err)
	})
}
