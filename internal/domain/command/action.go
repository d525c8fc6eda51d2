package command

import (
	"errors"
	"fmt"
	"strings"
)

// ActionKind identifies a supported mutation.
type ActionKind string

const (
	ActionAssignVehicle ActionKind = "assign_vehicle"
	ActionRemoveVehicle ActionKind = "remove_vehicle"
	ActionChangeDriver  ActionKind = "change_driver"
	ActionCancelTrip    ActionKind = "cancel_trip"
)

// ParseActionKind normalizes (lowercases+trims) and validates an action string.
func ParseActionKind(s string) (ActionKind, error) {
	kind := ActionKind(strings.ToLower(strings.TrimSpace(s)))
	if kind.Valid() {
		return kind, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownAction, s)
}

// Valid reports whether kind is one of the supported action constants.
func (kind ActionKind) Valid() bool {
	switch kind {
	case ActionAssignVehicle, ActionRemoveVehicle, ActionChangeDriver, ActionCancelTrip:
		return true
	default:
		return false
	}
}

// String returns the string representation of the ActionKind.
func (kind ActionKind) String() string {
	return string(kind)
}

// Destructive reports whether the action is classified high-impact:
// removals and cancellations always require confirmation regardless of
// booking count.
func (kind ActionKind) Destructive() bool {
	switch kind {
	case ActionRemoveVehicle, ActionCancelTrip:
		return true
	default:
		return false
	}
}

var ErrIncompleteDescriptor = errors.New("action descriptor is incomplete")

// ActionDescriptor is a fully resolved action: kind, target trip, and
// concrete numeric parameters. It never carries raw names or registrations;
// the Target Resolver turns those into IDs before a descriptor exists.
type ActionDescriptor struct {
	Kind      ActionKind `json:"kind"`
	TripID    int64      `json:"trip_id"`
	VehicleID int64      `json:"vehicle_id,omitempty"` // assign_vehicle
	DriverID  int64      `json:"driver_id,omitempty"`  // change_driver
	Reason    string     `json:"reason,omitempty"`     // cancel_trip
}

// Validate checks the descriptor carries everything its kind requires.
func (d ActionDescriptor) Validate() error {
	if !d.Kind.Valid() {
		return fmt.Errorf("%w: %q", ErrUnknownAction, d.Kind)
	}
	if d.TripID <= 0 {
		return fmt.Errorf("%w: trip id", ErrIncompleteDescriptor)
	}
	switch d.Kind {
	case ActionAssignVehicle:
		if d.VehicleID <= 0 {
			return fmt.Errorf("%w: vehicle id", ErrIncompleteDescriptor)
		}
	case ActionChangeDriver:
		if d.DriverID <= 0 {
			return fmt.Errorf("%w: driver id", ErrIncompleteDescriptor)
		}
	}
	return nil
}

// Summary returns a short human-readable description of the action.
func (d ActionDescriptor) Summary() string {
	switch d.Kind {
	case ActionAssignVehicle:
		return fmt.Sprintf("Assign vehicle %d to trip %d", d.VehicleID, d.TripID)
	case ActionRemoveVehicle:
		return fmt.Sprintf("Remove the assigned vehicle from trip %d", d.TripID)
	case ActionChangeDriver:
		return fmt.Sprintf("Change the driver of trip %d to driver %d", d.TripID, d.DriverID)
	case ActionCancelTrip:
		return fmt.Sprintf("Cancel trip %d", d.TripID)
	default:
		return fmt.Sprintf("%s on trip %d", d.Kind, d.TripID)
	}
}
