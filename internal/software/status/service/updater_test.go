package service

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"fleet-dispatch/internal/domain/trip"
	"fleet-dispatch/internal/general/logger"
	"fleet-dispatch/internal/ports"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeUOW struct{}

func (fakeUOW) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

// memTripRepo is an in-memory trip store for updater tests. Only the methods
// the status machine touches are functional.
type memTripRepo struct {
	mu    sync.Mutex
	trips map[int64]*trip.Trip

	// beforeAuto, when set, runs before each UpdateStatusAuto to simulate
	// concurrent writers between the scan and the row lock
	beforeAuto func()
}

func newMemTripRepo(trips ...*trip.Trip) *memTripRepo {
	repo := &memTripRepo{trips: make(map[int64]*trip.Trip)}
	for _, t := range trips {
		repo.trips[t.ID] = t
	}
	return repo
}

func (r *memTripRepo) GetByID(_ context.Context, id int64) (*trip.Trip, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.trips[id]
	if !ok {
		return nil, trip.ErrNotFound
	}
	return t, nil
}

func (r *memTripRepo) FindByPathForDay(context.Context, int64, time.Time) ([]*trip.Trip, error) {
	return nil, nil
}

func (r *memTripRepo) FindByRouteForDay(context.Context, int64, time.Time) ([]*trip.Trip, error) {
	return nil, nil
}

func (r *memTripRepo) FindActiveForDay(_ context.Context, _ time.Time) ([]*trip.Trip, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*trip.Trip
	for _, t := range r.trips {
		if t.Status == trip.StatusScheduled || t.Status == trip.StatusInProgress {
			snapshot := *t
			out = append(out, &snapshot)
		}
	}
	return out, nil
}

func (r *memTripRepo) AssignVehicle(context.Context, int64, int64, string) error { return nil }
func (r *memTripRepo) RemoveVehicle(context.Context, int64, string) error        { return nil }
func (r *memTripRepo) ChangeDriver(context.Context, int64, int64, string) error  { return nil }
func (r *memTripRepo) Cancel(context.Context, int64, string, string) error       { return nil }

func (r *memTripRepo) UpdateStatusAuto(_ context.Context, tripID int64, from, to trip.Status, _ string) error {
	if r.beforeAuto != nil {
		r.beforeAuto()
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.trips[tripID]
	if !ok {
		return trip.ErrNotFound
	}
	if t.Status != from {
		return fmt.Errorf("%w: trip is %s, expected %s", trip.ErrInvalidStatusTransition, t.Status, from)
	}
	if !from.CanTransitionTo(to) {
		return fmt.Errorf("%w: %s -> %s", trip.ErrInvalidStatusTransition, from, to)
	}
	t.Status = to
	return nil
}

func (r *memTripRepo) UpdateStatusManual(_ context.Context, tripID int64, to trip.Status, _ string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.trips[tripID]
	if !ok {
		return trip.ErrNotFound
	}
	if t.Status == to {
		return nil
	}
	if !t.Status.CanTransitionTo(to) {
		return fmt.Errorf("%w: %s -> %s", trip.ErrInvalidStatusTransition, t.Status, to)
	}
	t.Status = to
	return nil
}

func (r *memTripRepo) status(id int64) trip.Status {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.trips[id].Status
}

var _ ports.TripRepository = (*memTripRepo)(nil)

var day = time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC)

func tripAt(id int64, label string, status trip.Status) *trip.Trip {
	return &trip.Trip{ID: id, OperatingDay: day, ScheduleLabel: label, Status: status}
}

func newTestUpdater(repo *memTripRepo, now time.Time) *statusService {
	return &statusService{
		logger:       logger.New("status-test"),
		uow:          fakeUOW{},
		tripRepo:     repo,
		tickInterval: time.Minute,
		tripDuration: 2 * time.Hour,
		now:          func() time.Time { return now },
	}
}

func TestRunTick(t *testing.T) {
	ctx := context.Background()

	t.Run("starts trips whose time has come", func(t *testing.T) {
		repo := newMemTripRepo(
			tripAt(1, "Path-1 - 08:00", trip.StatusScheduled),
			tripAt(2, "Path-2 - 13:00", trip.StatusScheduled),
		)
		svc := newTestUpdater(repo, day.Add(8*time.Hour)) // 08:00

		n, err := svc.runTick(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, n)
		assert.Equal(t, trip.StatusInProgress, repo.status(1))
		assert.Equal(t, trip.StatusScheduled, repo.status(2))
	})

	t.Run("completes trips past their end", func(t *testing.T) {
		repo := newMemTripRepo(tripAt(1, "Path-1 - 08:00", trip.StatusInProgress))
		svc := newTestUpdater(repo, day.Add(10*time.Hour)) // 10:00 = 08:00 + 2h

		n, err := svc.runTick(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, n)
		assert.Equal(t, trip.StatusCompleted, repo.status(1))
	})

	t.Run("at most one step per tick", func(t *testing.T) {
		// trip observed long after its window: one tick starts it, the next completes it
		repo := newMemTripRepo(tripAt(1, "Path-1 - 08:00", trip.StatusScheduled))
		svc := newTestUpdater(repo, day.Add(15*time.Hour))

		n, err := svc.runTick(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, n)
		assert.Equal(t, trip.StatusInProgress, repo.status(1))

		n, err = svc.runTick(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, n)
		assert.Equal(t, trip.StatusCompleted, repo.status(1))
	})

	t.Run("tick is idempotent once trips are settled", func(t *testing.T) {
		repo := newMemTripRepo(tripAt(1, "Path-1 - 08:00", trip.StatusScheduled))
		svc := newTestUpdater(repo, day.Add(9*time.Hour)) // mid-window

		n, err := svc.runTick(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, n)

		n, err = svc.runTick(ctx)
		require.NoError(t, err)
		assert.Equal(t, 0, n, "same clock, second tick must be a no-op")
		assert.Equal(t, trip.StatusInProgress, repo.status(1))
	})

	t.Run("before the window nothing moves", func(t *testing.T) {
		repo := newMemTripRepo(tripAt(1, "Path-1 - 08:00", trip.StatusScheduled))
		svc := newTestUpdater(repo, day.Add(7*time.Hour+59*time.Minute)) // 07:59

		n, err := svc.runTick(ctx)
		require.NoError(t, err)
		assert.Equal(t, 0, n)
		assert.Equal(t, trip.StatusScheduled, repo.status(1))
	})

	t.Run("unparseable labels are skipped, not fatal", func(t *testing.T) {
		repo := newMemTripRepo(
			tripAt(1, "no time here", trip.StatusScheduled),
			tripAt(2, "Path-2 - 08:00", trip.StatusScheduled),
		)
		svc := newTestUpdater(repo, day.Add(9*time.Hour))

		n, err := svc.runTick(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, n)
		assert.Equal(t, trip.StatusScheduled, repo.status(1))
		assert.Equal(t, trip.StatusInProgress, repo.status(2))
	})

	t.Run("terminal trips are never rescanned", func(t *testing.T) {
		repo := newMemTripRepo(
			tripAt(1, "Path-1 - 08:00", trip.StatusCancelled),
			tripAt(2, "Path-2 - 08:00", trip.StatusCompleted),
		)
		svc := newTestUpdater(repo, day.Add(12*time.Hour))

		n, err := svc.runTick(ctx)
		require.NoError(t, err)
		assert.Equal(t, 0, n)
		assert.Equal(t, trip.StatusCancelled, repo.status(1))
		assert.Equal(t, trip.StatusCompleted, repo.status(2))
	})

	t.Run("lost race is tolerated", func(t *testing.T) {
		repo := newMemTripRepo(tripAt(1, "Path-1 - 08:00", trip.StatusScheduled))
		svc := newTestUpdater(repo, day.Add(9*time.Hour))

		// someone cancels between the scan and the row lock
		repo.beforeAuto = func() {
			repo.beforeAuto = nil
			require.NoError(t, repo.UpdateStatusManual(ctx, 1, trip.StatusCancelled, "disp-1"))
		}

		n, err := svc.runTick(ctx)
		require.NoError(t, err)
		assert.Equal(t, 0, n)
		assert.Equal(t, trip.StatusCancelled, repo.status(1))
	})
}

func TestForceUpdate(t *testing.T) {
	repo := newMemTripRepo(
		tripAt(1, "Path-1 - 08:00", trip.StatusScheduled),
		tripAt(2, "Path-2 - 08:30", trip.StatusScheduled),
	)
	svc := newTestUpdater(repo, day.Add(9*time.Hour))

	res, err := svc.ForceUpdate(context.Background())
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Equal(t, 2, res.Transitioned)
}

func TestManualUpdate(t *testing.T) {
	ctx := context.Background()

	t.Run("valid override ignores the schedule", func(t *testing.T) {
		// 07:00, well before the derived start
		repo := newMemTripRepo(tripAt(1, "Path-1 - 08:00", trip.StatusScheduled))
		svc := newTestUpdater(repo, day.Add(7*time.Hour))

		res, err := svc.ManualUpdate(ctx, ports.ManualUpdateInput{
			TripID: 1, NewStatus: trip.StatusInProgress, UserID: "disp-1",
		})
		require.NoError(t, err)
		assert.Equal(t, "IN_PROGRESS", res.NewStatus)
		assert.Equal(t, trip.StatusInProgress, repo.status(1))
	})

	t.Run("invalid transition is rejected", func(t *testing.T) {
		repo := newMemTripRepo(tripAt(1, "Path-1 - 08:00", trip.StatusCompleted))
		svc := newTestUpdater(repo, day.Add(12*time.Hour))

		_, err := svc.ManualUpdate(ctx, ports.ManualUpdateInput{
			TripID: 1, NewStatus: trip.StatusInProgress, UserID: "disp-1",
		})
		assert.ErrorIs(t, err, trip.ErrInvalidStatusTransition)
	})

	t.Run("unknown trip", func(t *testing.T) {
		svc := newTestUpdater(newMemTripRepo(), day)
		_, err := svc.ManualUpdate(ctx, ports.ManualUpdateInput{
			TripID: 42, NewStatus: trip.StatusCancelled, UserID: "disp-1",
		})
		assert.ErrorIs(t, err, trip.ErrNotFound)
	})
}

func TestStartStop(t *testing.T) {
	repo := newMemTripRepo()
	svc := newTestUpdater(repo, day)

	assert.False(t, svc.Running())
	svc.Start()
	assert.True(t, svc.Running())
	svc.Start() // idempotent
	assert.True(t, svc.Running())
	svc.Stop()
	assert.False(t, svc.Running())
	svc.Stop() // idempotent
	assert.False(t, svc.Running())
}

func TestInfo(t *testing.T) {
	svc := newTestUpdater(newMemTripRepo(), day)
	info := svc.Info()
	assert.False(t, info.Running)
	assert.Equal(t, "1m0s", info.TickInterval)
	assert.Equal(t, "2h0m0s", info.TripDuration)
	assert.Equal(t, []string{"SCHEDULED", "IN_PROGRESS", "COMPLETED", "CANCELLED"}, info.ValidStatuses)
}
