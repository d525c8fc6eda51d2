package trip

import (
	"errors"
	"time"
)

// Trip is the domain entity corresponding to the `trips` table.
type Trip struct {
	// Identity & audit
	ID        int64
	CreatedAt time.Time
	UpdatedAt time.Time

	// References
	PathID  *int64
	RouteID *int64

	// OperatingDay is the calendar day (UTC) the trip runs on.
	OperatingDay time.Time

	// ScheduleLabel is free text ending in an HH:MM token from which the
	// start timestamp is derived, e.g. "Path-1 - 08:00".
	ScheduleLabel string

	// Core state
	Status Status

	// Assignments (nil until assigned)
	VehicleID *int64
	DriverID  *int64

	// BookingCount is read-only for this service; it feeds the
	// consequence analysis before destructive actions.
	BookingCount int
}

var (
	ErrNotFound                = errors.New("trip not found")
	ErrInvalidStatusTransition = errors.New("invalid trip status transition")
)

// HasVehicle reports whether a vehicle is currently assigned.
func (t *Trip) HasVehicle() bool {
	return t.VehicleID != nil && *t.VehicleID != 0
}

// HasDriver reports whether a driver is currently assigned.
func (t *Trip) HasDriver() bool {
	return t.DriverID != nil && *t.DriverID != 0
}

// NextAutoStatus returns the single timeline-driven transition due at `now`
// for a trip whose window is [start, end), or false when none is due.
// A trip already past its end on first observation still advances only one
// step (SCHEDULED -> IN_PROGRESS); COMPLETED is caught on the next pass.
func NextAutoStatus(current Status, start, end, now time.Time) (Status, bool) {
	switch current {
	case StatusScheduled:
		if !now.Before(start) {
			return StatusInProgress, true
		}
	case StatusInProgress:
		if !now.Before(end) {
			return StatusCompleted, true
		}
	}
	return "", false
}
