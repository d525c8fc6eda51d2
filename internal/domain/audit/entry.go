package audit

import "time"

// Entity types recorded in the audit log.
const (
	EntityTrip = "trip"
)

// Actions recorded in the audit log. One row is written per store mutation,
// in the same transaction as the mutation itself.
const (
	ActionVehicleAssigned      = "vehicle_assigned"
	ActionVehicleRemoved       = "vehicle_removed"
	ActionDriverChanged        = "driver_changed"
	ActionTripCancelled        = "trip_cancelled"
	ActionStatusAutoTransition = "status_auto_transition"
	ActionStatusManualOverride = "status_manual_override"
)

// SystemUserID is recorded as the acting user for automatic transitions.
const SystemUserID = "system"

// Entry is one append-only audit log row. Rows are never updated or deleted.
type Entry struct {
	ID         int64
	Action     string
	EntityType string
	EntityID   int64
	UserID     string
	Details    map[string]any
	CreatedAt  time.Time
}
