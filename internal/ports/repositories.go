package ports

import (
	"context"
	"time"

	"fleet-dispatch/internal/domain/audit"
	"fleet-dispatch/internal/domain/driver"
	"fleet-dispatch/internal/domain/trip"
	"fleet-dispatch/internal/domain/vehicle"
)

// UnitOfWork interface is used to manage transactions across multiple repository operations.
type UnitOfWork interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// TripRepository defines the methods for reading and mutating trip data.
// Every mutation writes exactly one audit row in the same transaction.
type TripRepository interface {
	GetByID(ctx context.Context, id int64) (*trip.Trip, error)
	FindByPathForDay(ctx context.Context, pathID int64, day time.Time) ([]*trip.Trip, error)
	FindByRouteForDay(ctx context.Context, routeID int64, day time.Time) ([]*trip.Trip, error)
	FindActiveForDay(ctx context.Context, day time.Time) ([]*trip.Trip, error)

	AssignVehicle(ctx context.Context, tripID, vehicleID int64, userID string) error
	RemoveVehicle(ctx context.Context, tripID int64, userID string) error
	ChangeDriver(ctx context.Context, tripID, driverID int64, userID string) error
	Cancel(ctx context.Context, tripID int64, reason, userID string) error

	// UpdateStatusAuto applies one timeline-driven transition. It re-checks
	// that the trip is still in `from` under a row lock; a lost race
	// surfaces as trip.ErrInvalidStatusTransition.
	UpdateStatusAuto(ctx context.Context, tripID int64, from, to trip.Status, userID string) error

	// UpdateStatusManual applies a dispatcher override. Transition validity
	// is still enforced; derived timestamps are not consulted.
	UpdateStatusManual(ctx context.Context, tripID int64, to trip.Status, userID string) error
}

// VehicleRepository defines read-only vehicle lookups.
type VehicleRepository interface {
	GetByID(ctx context.Context, id int64) (*vehicle.Vehicle, error)
	// GetByRegistration matches exactly, case-insensitively.
	GetByRegistration(ctx context.Context, registration string) (*vehicle.Vehicle, error)
}

// DriverRepository defines read-only driver lookups.
type DriverRepository interface {
	GetByID(ctx context.Context, id int64) (*driver.Driver, error)
	// FindByNameFragment returns the best partial match; ties break on the
	// lowest id so repeated lookups are deterministic.
	FindByNameFragment(ctx context.Context, fragment string) (*driver.Driver, error)
}

// AuditLogRepository defines read access to the append-only audit log.
// Writes happen inside TripRepository mutations, in the same transaction.
type AuditLogRepository interface {
	ListRecent(ctx context.Context, limit int) ([]audit.Entry, error)
}
