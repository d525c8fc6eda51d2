package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"fleet-dispatch/internal/domain/command"
	"fleet-dispatch/internal/domain/trip"
)

// resolveTarget turns a validated intent into a fully-numeric action
// descriptor. Precedence is fixed: an explicit trip id wins outright; path
// and route references must narrow to exactly one trip on the current
// operating day. Secondary references (registration, driver name) resolve
// through the lookup repositories; a failed required lookup fails the whole
// resolution. Must run inside a transaction context.
func (service *dispatchService) resolveTarget(ctx context.Context, intent command.Intent) (command.ActionDescriptor, *trip.Trip, error) {
	target, err := service.resolveTrip(ctx, intent.Target())
	if err != nil {
		return command.ActionDescriptor{}, nil, err
	}

	desc := command.ActionDescriptor{
		Kind:   intent.Kind(),
		TripID: target.ID,
	}

	switch in := intent.(type) {
	case command.AssignVehicleIntent:
		v, err := service.vehicleRepo.GetByRegistration(ctx, in.Registration)
		if err != nil {
			return command.ActionDescriptor{}, nil, fmt.Errorf("resolve vehicle %q: %w", in.Registration, err)
		}
		desc.VehicleID = v.ID

	case command.ChangeDriverIntent:
		d, err := service.driverRepo.FindByNameFragment(ctx, in.DriverName)
		if err != nil {
			return command.ActionDescriptor{}, nil, fmt.Errorf("resolve driver %q: %w", in.DriverName, err)
		}
		desc.DriverID = d.ID

	case command.CancelTripIntent:
		desc.Reason = in.Reason
	}

	if err := desc.Validate(); err != nil {
		return command.ActionDescriptor{}, nil, err
	}

	return desc, target, nil
}

// resolveTrip applies the reference precedence: trip id, then path, then route.
func (service *dispatchService) resolveTrip(ctx context.Context, ref command.TargetRef) (*trip.Trip, error) {
	switch {
	case ref.TripID != nil:
		t, err := service.tripRepo.GetByID(ctx, *ref.TripID)
		if errors.Is(err, trip.ErrNotFound) {
			return nil, fmt.Errorf("%w: trip %d", command.ErrTargetNotFound, *ref.TripID)
		}
		return t, err

	case ref.PathID != nil:
		trips, err := service.tripRepo.FindByPathForDay(ctx, *ref.PathID, service.operatingDay())
		if err != nil {
			return nil, err
		}
		return exactlyOne(trips, "path", *ref.PathID)

	case ref.RouteID != nil:
		trips, err := service.tripRepo.FindByRouteForDay(ctx, *ref.RouteID, service.operatingDay())
		if err != nil {
			return nil, err
		}
		return exactlyOne(trips, "route", *ref.RouteID)

	default:
		return nil, command.ErrTargetNotFound
	}
}

// exactlyOne demands an unambiguous match; the caller must disambiguate by
// trip id otherwise.
func exactlyOne(trips []*trip.Trip, refKind string, refID int64) (*trip.Trip, error) {
	switch len(trips) {
	case 0:
		return nil, fmt.Errorf("%w: no trips on %s %d today", command.ErrTargetNotFound, refKind, refID)
	case 1:
		return trips[0], nil
	default:
		return nil, fmt.Errorf("%w: %d trips on %s %d today", command.ErrAmbiguousTarget, len(trips), refKind, refID)
	}
}

// operatingDay is the current UTC calendar day.
func (service *dispatchService) operatingDay() time.Time {
	return service.now().UTC().Truncate(24 * time.Hour)
}
