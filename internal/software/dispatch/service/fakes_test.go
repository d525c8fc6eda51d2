package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"fleet-dispatch/internal/domain/audit"
	"fleet-dispatch/internal/domain/command"
	"fleet-dispatch/internal/domain/driver"
	"fleet-dispatch/internal/domain/trip"
	"fleet-dispatch/internal/domain/vehicle"
	"fleet-dispatch/internal/general/logger"
)

// fakeUOW runs the function directly; the fakes below are not transactional.
type fakeUOW struct{}

func (fakeUOW) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

// fakeTripRepo mirrors the store's audit discipline: every applied mutation
// appends exactly one entry to audits, idempotent no-ops append nothing.
type fakeTripRepo struct {
	trips  map[int64]*trip.Trip
	calls  []string // mutation log, e.g. "assign 5 vehicle=7"
	audits []audit.Entry
}

func newFakeTripRepo(trips ...*trip.Trip) *fakeTripRepo {
	repo := &fakeTripRepo{trips: make(map[int64]*trip.Trip)}
	for _, t := range trips {
		repo.trips[t.ID] = t
	}
	return repo
}

func (r *fakeTripRepo) GetByID(_ context.Context, id int64) (*trip.Trip, error) {
	t, ok := r.trips[id]
	if !ok {
		return nil, trip.ErrNotFound
	}
	return t, nil
}

func (r *fakeTripRepo) FindByPathForDay(_ context.Context, pathID int64, _ time.Time) ([]*trip.Trip, error) {
	var out []*trip.Trip
	for _, t := range r.trips {
		if t.PathID != nil && *t.PathID == pathID {
			out = append(out, t)
		}
	}
	return out, nil
}

func (r *fakeTripRepo) FindByRouteForDay(_ context.Context, routeID int64, _ time.Time) ([]*trip.Trip, error) {
	var out []*trip.Trip
	for _, t := range r.trips {
		if t.RouteID != nil && *t.RouteID == routeID {
			out = append(out, t)
		}
	}
	return out, nil
}

func (r *fakeTripRepo) FindActiveForDay(_ context.Context, _ time.Time) ([]*trip.Trip, error) {
	var out []*trip.Trip
	for _, t := range r.trips {
		if !t.Status.Terminal() {
			out = append(out, t)
		}
	}
	return out, nil
}

func (r *fakeTripRepo) recordAudit(action string, tripID int64, userID string) {
	r.audits = append(r.audits, audit.Entry{
		Action:     action,
		EntityType: audit.EntityTrip,
		EntityID:   tripID,
		UserID:     userID,
	})
}

func (r *fakeTripRepo) AssignVehicle(_ context.Context, tripID, vehicleID int64, userID string) error {
	t, ok := r.trips[tripID]
	if !ok {
		return trip.ErrNotFound
	}
	if t.VehicleID != nil && *t.VehicleID == vehicleID {
		return nil // idempotent, no audit row
	}
	t.VehicleID = &vehicleID
	r.calls = append(r.calls, fmt.Sprintf("assign %d vehicle=%d", tripID, vehicleID))
	r.recordAudit(audit.ActionVehicleAssigned, tripID, userID)
	return nil
}

func (r *fakeTripRepo) RemoveVehicle(_ context.Context, tripID int64, userID string) error {
	t, ok := r.trips[tripID]
	if !ok {
		return trip.ErrNotFound
	}
	if t.VehicleID == nil {
		return fmt.Errorf("%w: no vehicle assigned", trip.ErrInvalidStatusTransition)
	}
	t.VehicleID = nil
	r.calls = append(r.calls, fmt.Sprintf("remove %d", tripID))
	r.recordAudit(audit.ActionVehicleRemoved, tripID, userID)
	return nil
}

func (r *fakeTripRepo) ChangeDriver(_ context.Context, tripID, driverID int64, userID string) error {
	t, ok := r.trips[tripID]
	if !ok {
		return trip.ErrNotFound
	}
	if t.DriverID != nil && *t.DriverID == driverID {
		return nil // idempotent, no audit row
	}
	t.DriverID = &driverID
	r.calls = append(r.calls, fmt.Sprintf("driver %d driver=%d", tripID, driverID))
	r.recordAudit(audit.ActionDriverChanged, tripID, userID)
	return nil
}

func (r *fakeTripRepo) Cancel(_ context.Context, tripID int64, reason, userID string) error {
	t, ok := r.trips[tripID]
	if !ok {
		return trip.ErrNotFound
	}
	t.Status = trip.StatusCancelled
	r.calls = append(r.calls, fmt.Sprintf("cancel %d reason=%q", tripID, reason))
	r.recordAudit(audit.ActionTripCancelled, tripID, userID)
	return nil
}

func (r *fakeTripRepo) UpdateStatusAuto(_ context.Context, tripID int64, from, to trip.Status, userID string) error {
	t, ok := r.trips[tripID]
	if !ok {
		return trip.ErrNotFound
	}
	if t.Status != from {
		return fmt.Errorf("%w: trip is %s, expected %s", trip.ErrInvalidStatusTransition, t.Status, from)
	}
	t.Status = to
	r.calls = append(r.calls, fmt.Sprintf("auto %d %s->%s", tripID, from, to))
	r.recordAudit(audit.ActionStatusAutoTransition, tripID, userID)
	return nil
}

func (r *fakeTripRepo) UpdateStatusManual(_ context.Context, tripID int64, to trip.Status, userID string) error {
	t, ok := r.trips[tripID]
	if !ok {
		return trip.ErrNotFound
	}
	if t.Status == to {
		return nil // idempotent, no audit row
	}
	if !t.Status.CanTransitionTo(to) {
		return fmt.Errorf("%w: %s -> %s", trip.ErrInvalidStatusTransition, t.Status, to)
	}
	t.Status = to
	r.calls = append(r.calls, fmt.Sprintf("manual %d ->%s", tripID, to))
	r.recordAudit(audit.ActionStatusManualOverride, tripID, userID)
	return nil
}

type fakeVehicleRepo struct {
	vehicles map[string]*vehicle.Vehicle // keyed by lowercased registration
}

func newFakeVehicleRepo(vehicles ...*vehicle.Vehicle) *fakeVehicleRepo {
	repo := &fakeVehicleRepo{vehicles: make(map[string]*vehicle.Vehicle)}
	for _, v := range vehicles {
		repo.vehicles[strings.ToLower(v.Registration)] = v
	}
	return repo
}

func (r *fakeVehicleRepo) GetByID(_ context.Context, id int64) (*vehicle.Vehicle, error) {
	for _, v := range r.vehicles {
		if v.ID == id {
			return v, nil
		}
	}
	return nil, vehicle.ErrNotFound
}

func (r *fakeVehicleRepo) GetByRegistration(_ context.Context, registration string) (*vehicle.Vehicle, error) {
	v, ok := r.vehicles[strings.ToLower(strings.TrimSpace(registration))]
	if !ok {
		return nil, vehicle.ErrNotFound
	}
	return v, nil
}

type fakeDriverRepo struct {
	drivers []*driver.Driver
}

func (r *fakeDriverRepo) GetByID(_ context.Context, id int64) (*driver.Driver, error) {
	for _, d := range r.drivers {
		if d.ID == id {
			return d, nil
		}
	}
	return nil, driver.ErrNotFound
}

func (r *fakeDriverRepo) FindByNameFragment(_ context.Context, fragment string) (*driver.Driver, error) {
	var best *driver.Driver
	for _, d := range r.drivers {
		if strings.Contains(strings.ToLower(d.Name), strings.ToLower(fragment)) {
			if best == nil || d.ID < best.ID {
				best = d
			}
		}
	}
	if best == nil {
		return nil, driver.ErrNotFound
	}
	return best, nil
}

type fakeAuditRepo struct {
	entries []audit.Entry
}

func (r *fakeAuditRepo) ListRecent(_ context.Context, limit int) ([]audit.Entry, error) {
	if limit > len(r.entries) {
		limit = len(r.entries)
	}
	return r.entries[:limit], nil
}

// fakeClassifier returns a canned record for any input.
type fakeClassifier struct {
	rec command.IntentRecord
	err error
}

func (c fakeClassifier) Classify(_ context.Context, _ string) (command.IntentRecord, error) {
	return c.rec, c.err
}

func newTestService(
	tr *fakeTripRepo,
	vr *fakeVehicleRepo,
	dr *fakeDriverRepo,
	cls fakeClassifier,
	clock func() time.Time,
) *dispatchService {
	return &dispatchService{
		logger:           logger.New("dispatch-test"),
		uow:              fakeUOW{},
		tripRepo:         tr,
		vehicleRepo:      vr,
		driverRepo:       dr,
		auditRepo:        &fakeAuditRepo{},
		classifier:       cls,
		sessions:         newSessionStore(5*time.Minute, clock),
		bookingThreshold: 5,
		now:              clock,
	}
}
