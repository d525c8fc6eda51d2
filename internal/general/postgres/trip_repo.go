package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"fleet-dispatch/internal/domain/audit"
	"fleet-dispatch/internal/domain/trip"
	"fleet-dispatch/internal/ports"

	"github.com/jackc/pgx/v5"
)

// TripRepo persists trips using pgx and plain SQL. Mutations lock the trip
// row, verify preconditions, apply the change, and write the corresponding
// audit row, all inside the caller's transaction.
type TripRepo struct{}

// NewTripRepo constructs a new TripRepo.
func NewTripRepo() ports.TripRepository {
	return &TripRepo{}
}

const tripColumns = `
	id, path_id, route_id, operating_day, schedule_label, status,
	vehicle_id, driver_id, booking_count, created_at, updated_at`

// scanTrip scans one trips row into a domain entity.
func scanTrip(row pgx.Row) (*trip.Trip, error) {
	var out trip.Trip
	var status string

	err := row.Scan(
		&out.ID, &out.PathID, &out.RouteID, &out.OperatingDay, &out.ScheduleLabel, &status,
		&out.VehicleID, &out.DriverID, &out.BookingCount, &out.CreatedAt, &out.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	out.Status = trip.Status(status)

	return &out, nil
}

// GetByID fetches a trip by primary key.
func (repo *TripRepo) GetByID(ctx context.Context, id int64) (*trip.Trip, error) {
	tx, err := MustTxFromContext(ctx)
	if err != nil {
		return nil, err
	}

	out, err := scanTrip(tx.QueryRow(ctx, `
		SELECT `+tripColumns+`
		FROM trips
		WHERE id = $1
	`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, trip.ErrNotFound
		}
		return nil, fmt.Errorf("query trip by id: %w", err)
	}

	return out, nil
}

// FindByPathForDay returns trips on the given path for one operating day.
func (repo *TripRepo) FindByPathForDay(ctx context.Context, pathID int64, day time.Time) ([]*trip.Trip, error) {
	return repo.findByRefForDay(ctx, "path_id", pathID, day)
}

// FindByRouteForDay returns trips on the given route for one operating day.
func (repo *TripRepo) FindByRouteForDay(ctx context.Context, routeID int64, day time.Time) ([]*trip.Trip, error) {
	return repo.findByRefForDay(ctx, "route_id", routeID, day)
}

func (repo *TripRepo) findByRefForDay(ctx context.Context, column string, refID int64, day time.Time) ([]*trip.Trip, error) {
	tx, err := MustTxFromContext(ctx)
	if err != nil {
		return nil, err
	}

	rows, err := tx.Query(ctx, `
		SELECT `+tripColumns+`
		FROM trips
		WHERE `+column+` = $1
		  AND operating_day = $2::date
		ORDER BY id
	`, refID, day.UTC())
	if err != nil {
		return nil, fmt.Errorf("query trips by %s: %w", column, err)
	}
	defer rows.Close()

	return collectTrips(rows)
}

// FindActiveForDay returns the day's trips still subject to automatic
// transitions (terminal statuses are never rescanned).
func (repo *TripRepo) FindActiveForDay(ctx context.Context, day time.Time) ([]*trip.Trip, error) {
	tx, err := MustTxFromContext(ctx)
	if err != nil {
		return nil, err
	}

	rows, err := tx.Query(ctx, `
		SELECT `+tripColumns+`
		FROM trips
		WHERE operating_day = $1::date
		  AND status IN ('SCHEDULED', 'IN_PROGRESS')
		ORDER BY id
	`, day.UTC())
	if err != nil {
		return nil, fmt.Errorf("query active trips: %w", err)
	}
	defer rows.Close()

	return collectTrips(rows)
}

func collectTrips(rows pgx.Rows) ([]*trip.Trip, error) {
	var trips []*trip.Trip
	for rows.Next() {
		t, err := scanTrip(rows)
		if err != nil {
			return nil, fmt.Errorf("scan trip: %w", err)
		}
		trips = append(trips, t)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return trips, nil
}

// lockTrip reads status, vehicle_id, and driver_id under FOR UPDATE so the
// caller's precondition check and mutation are serialized per trip row.
func lockTrip(ctx context.Context, tx pgx.Tx, tripID int64) (status string, vehicleID, driverID *int64, err error) {
	err = tx.QueryRow(ctx, `
		SELECT status, vehicle_id, driver_id
		FROM trips
		WHERE id = $1
		FOR UPDATE
	`, tripID).Scan(&status, &vehicleID, &driverID)
	if errors.Is(err, pgx.ErrNoRows) {
		err = trip.ErrNotFound
	}
	return status, vehicleID, driverID, err
}

// AssignVehicle sets the trip's vehicle. Assignment is a set, not an
// increment: re-applying the same descriptor converges to the same state.
func (repo *TripRepo) AssignVehicle(ctx context.Context, tripID, vehicleID int64, userID string) error {
	tx, err := MustTxFromContext(ctx)
	if err != nil {
		return err
	}

	current, existingVehicle, _, err := lockTrip(ctx, tx, tripID)
	if err != nil {
		return err
	}

	if trip.Status(current).Terminal() {
		return fmt.Errorf("%w: cannot assign a vehicle to a %s trip", trip.ErrInvalidStatusTransition, current)
	}

	// idempotent success
	if existingVehicle != nil && *existingVehicle == vehicleID {
		return nil
	}

	_, err = tx.Exec(ctx, `
		UPDATE trips
		SET vehicle_id = $1,
		    updated_at = now()
		WHERE id = $2
	`, vehicleID, tripID)
	if err != nil {
		return err
	}

	return insertAuditEntry(ctx, tx, audit.ActionVehicleAssigned, audit.EntityTrip, tripID, userID, map[string]any{
		"old_vehicle_id": existingVehicle,
		"new_vehicle_id": vehicleID,
	})
}

// RemoveVehicle clears the trip's vehicle assignment.
func (repo *TripRepo) RemoveVehicle(ctx context.Context, tripID int64, userID string) error {
	tx, err := MustTxFromContext(ctx)
	if err != nil {
		return err
	}

	current, existingVehicle, _, err := lockTrip(ctx, tx, tripID)
	if err != nil {
		return err
	}

	if trip.Status(current).Terminal() {
		return fmt.Errorf("%w: cannot modify a %s trip", trip.ErrInvalidStatusTransition, current)
	}
	if existingVehicle == nil {
		return fmt.Errorf("%w: no vehicle assigned", trip.ErrInvalidStatusTransition)
	}

	_, err = tx.Exec(ctx, `
		UPDATE trips
		SET vehicle_id = NULL,
		    updated_at = now()
		WHERE id = $1
	`, tripID)
	if err != nil {
		return err
	}

	return insertAuditEntry(ctx, tx, audit.ActionVehicleRemoved, audit.EntityTrip, tripID, userID, map[string]any{
		"old_vehicle_id": *existingVehicle,
	})
}

// ChangeDriver sets the trip's driver.
func (repo *TripRepo) ChangeDriver(ctx context.Context, tripID, driverID int64, userID string) error {
	tx, err := MustTxFromContext(ctx)
	if err != nil {
		return err
	}

	current, _, existingDriver, err := lockTrip(ctx, tx, tripID)
	if err != nil {
		return err
	}

	if trip.Status(current).Terminal() {
		return fmt.Errorf("%w: cannot modify a %s trip", trip.ErrInvalidStatusTransition, current)
	}

	// idempotent success
	if existingDriver != nil && *existingDriver == driverID {
		return nil
	}

	_, err = tx.Exec(ctx, `
		UPDATE trips
		SET driver_id = $1,
		    updated_at = now()
		WHERE id = $2
	`, driverID, tripID)
	if err != nil {
		return err
	}

	return insertAuditEntry(ctx, tx, audit.ActionDriverChanged, audit.EntityTrip, tripID, userID, map[string]any{
		"old_driver_id": existingDriver,
		"new_driver_id": driverID,
	})
}

// Cancel moves a non-terminal trip to CANCELLED.
func (repo *TripRepo) Cancel(ctx context.Context, tripID int64, reason, userID string) error {
	tx, err := MustTxFromContext(ctx)
	if err != nil {
		return err
	}

	current, _, _, err := lockTrip(ctx, tx, tripID)
	if err != nil {
		return err
	}

	if trip.Status(current).Terminal() {
		return fmt.Errorf("%w: cannot cancel a %s trip", trip.ErrInvalidStatusTransition, current)
	}

	_, err = tx.Exec(ctx, `
		UPDATE trips
		SET status = 'CANCELLED',
		    updated_at = now()
		WHERE id = $1
	`, tripID)
	if err != nil {
		return err
	}

	details := map[string]any{
		"old_status": current,
		"new_status": trip.StatusCancelled.String(),
	}
	if reason != "" {
		details["reason"] = reason
	}
	return insertAuditEntry(ctx, tx, audit.ActionTripCancelled, audit.EntityTrip, tripID, userID, details)
}

// UpdateStatusAuto applies one timeline-driven transition. The row lock plus
// the `from` re-check make racing updaters lose cleanly instead of writing a
// duplicate transition.
func (repo *TripRepo) UpdateStatusAuto(ctx context.Context, tripID int64, from, to trip.Status, userID string) error {
	tx, err := MustTxFromContext(ctx)
	if err != nil {
		return err
	}

	current, _, _, err := lockTrip(ctx, tx, tripID)
	if err != nil {
		return err
	}

	if trip.Status(current) != from {
		return fmt.Errorf("%w: trip is %s, expected %s", trip.ErrInvalidStatusTransition, current, from)
	}
	if !from.CanTransitionTo(to) {
		return fmt.Errorf("%w: %s -> %s", trip.ErrInvalidStatusTransition, from, to)
	}

	if err := repo.setStatus(ctx, tx, tripID, to); err != nil {
		return err
	}

	return insertAuditEntry(ctx, tx, audit.ActionStatusAutoTransition, audit.EntityTrip, tripID, userID, map[string]any{
		"old_status": from.String(),
		"new_status": to.String(),
		"automatic":  true,
	})
}

// UpdateStatusManual applies a dispatcher override, ignoring the derived
// schedule timestamps but still enforcing transition validity.
func (repo *TripRepo) UpdateStatusManual(ctx context.Context, tripID int64, to trip.Status, userID string) error {
	tx, err := MustTxFromContext(ctx)
	if err != nil {
		return err
	}

	current, _, _, err := lockTrip(ctx, tx, tripID)
	if err != nil {
		return err
	}

	// idempotent success
	if trip.Status(current) == to {
		return nil
	}

	if !trip.Status(current).CanTransitionTo(to) {
		return fmt.Errorf("%w: %s -> %s", trip.ErrInvalidStatusTransition, current, to)
	}

	if err := repo.setStatus(ctx, tx, tripID, to); err != nil {
		return err
	}

	return insertAuditEntry(ctx, tx, audit.ActionStatusManualOverride, audit.EntityTrip, tripID, userID, map[string]any{
		"old_status":      current,
		"new_status":      to.String(),
		"manual_override": true,
	})
}

func (repo *TripRepo) setStatus(ctx context.Context, tx pgx.Tx, tripID int64, to trip.Status) error {
	_, err := tx.Exec(ctx, `
		UPDATE trips
		SET status = $1,
		    updated_at = now()
		WHERE id = $2
	`, to.String(), tripID)
	return err
}
