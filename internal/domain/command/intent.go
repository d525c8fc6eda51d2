package command

import (
	"fmt"
	"strings"
)

// IntentRecord is the wire shape produced by the external intent classifier.
// It is a loosely-typed record; ParseIntent validates it into one explicit
// Intent variant at the pipeline boundary so no field can be silently
// dropped between stages.
type IntentRecord struct {
	Action        string            `json:"action"`
	TargetTripID  *int64            `json:"target_trip_id,omitempty"`
	TargetPathID  *int64            `json:"target_path_id,omitempty"`
	TargetRouteID *int64            `json:"target_route_id,omitempty"`
	Parameters    map[string]string `json:"parameters,omitempty"`
}

// TargetRef carries the identifying references of an intent. Resolution
// precedence is explicit trip id, then path, then route.
type TargetRef struct {
	TripID  *int64
	PathID  *int64
	RouteID *int64
}

// Empty reports whether the reference carries nothing to resolve by.
func (ref TargetRef) Empty() bool {
	return ref.TripID == nil && ref.PathID == nil && ref.RouteID == nil
}

// Intent is the validated, structured form of a dispatcher command: one
// variant per action kind, heterogeneous parameters and all.
type Intent interface {
	Kind() ActionKind
	Target() TargetRef
}

// AssignVehicleIntent assigns a vehicle, referenced by registration number,
// to a trip.
type AssignVehicleIntent struct {
	TargetRef
	Registration string
}

func (AssignVehicleIntent) Kind() ActionKind { return ActionAssignVehicle }
func (in AssignVehicleIntent) Target() TargetRef { return in.TargetRef }

// RemoveVehicleIntent removes whatever vehicle is assigned to a trip.
type RemoveVehicleIntent struct {
	TargetRef
}

func (RemoveVehicleIntent) Kind() ActionKind { return ActionRemoveVehicle }
func (in RemoveVehicleIntent) Target() TargetRef { return in.TargetRef }

// ChangeDriverIntent reassigns a trip to a driver referenced by (partial) name.
type ChangeDriverIntent struct {
	TargetRef
	DriverName string
}

func (ChangeDriverIntent) Kind() ActionKind { return ActionChangeDriver }
func (in ChangeDriverIntent) Target() TargetRef { return in.TargetRef }

// CancelTripIntent cancels a trip.
type CancelTripIntent struct {
	TargetRef
	Reason string
}

func (CancelTripIntent) Kind() ActionKind { return ActionCancelTrip }
func (in CancelTripIntent) Target() TargetRef { return in.TargetRef }

// ParseIntent validates a classifier record into an explicit Intent variant.
// Per-kind required parameters are enforced here, at the boundary.
func ParseIntent(rec IntentRecord) (Intent, error) {
	kind, err := ParseActionKind(rec.Action)
	if err != nil {
		return nil, err
	}

	ref := TargetRef{
		TripID:  rec.TargetTripID,
		PathID:  rec.TargetPathID,
		RouteID: rec.TargetRouteID,
	}

	param := func(key string) string {
		return strings.TrimSpace(rec.Parameters[key])
	}

	switch kind {
	case ActionAssignVehicle:
		reg := param("registration")
		if reg == "" {
			return nil, fmt.Errorf("%w: registration", ErrMissingParam)
		}
		return AssignVehicleIntent{TargetRef: ref, Registration: reg}, nil

	case ActionRemoveVehicle:
		return RemoveVehicleIntent{TargetRef: ref}, nil

	case ActionChangeDriver:
		name := param("driver_name")
		if name == "" {
			return nil, fmt.Errorf("%w: driver_name", ErrMissingParam)
		}
		return ChangeDriverIntent{TargetRef: ref, DriverName: name}, nil

	case ActionCancelTrip:
		return CancelTripIntent{TargetRef: ref, Reason: param("reason")}, nil

	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownAction, rec.Action)
	}
}
