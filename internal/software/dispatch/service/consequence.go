package service

import (
	"fleet-dispatch/internal/domain/command"
	"fleet-dispatch/internal/domain/trip"
	"fleet-dispatch/internal/ports"
)

// analyzeConsequence summarizes the blast radius of a candidate action
// before anything is mutated. Cancellation is the one irreversible action:
// CANCELLED is terminal, while assignments can always be set again.
func analyzeConsequence(kind command.ActionKind, target *trip.Trip) ports.ConsequenceSummary {
	return ports.ConsequenceSummary{
		BookingCount: target.BookingCount,
		Destructive:  kind.Destructive(),
		Reversible:   kind != command.ActionCancelTrip,
	}
}
