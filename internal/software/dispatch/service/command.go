package service

import (
	"context"
	"fmt"

	"fleet-dispatch/internal/domain/command"
	"fleet-dispatch/internal/domain/trip"
	"fleet-dispatch/internal/ports"
)

// ExecuteCommand runs one dispatcher command through the pipeline. The
// command either executes immediately, or parks in a confirmation session
// when the consequence analysis demands sign-off. Stage failures surface as
// typed errors; nothing has been mutated until the execute stage runs.
func (service *dispatchService) ExecuteCommand(ctx context.Context, in ports.CommandInput) (ports.CommandResult, error) {
	// stage 1: classify free text into a structured record
	rec, err := service.classifier.Classify(ctx, in.Text)
	if err != nil {
		service.logger.Error(ctx, "command_classify_failed", "Failed to classify command text", err, map[string]any{
			"user_id": in.UserID,
		})
		return ports.CommandResult{}, err
	}

	// stage 2: validate the record into an explicit intent variant
	intent, err := command.ParseIntent(rec)
	if err != nil {
		return ports.CommandResult{}, err
	}

	// stage 3: resolve references to a fully-numeric descriptor
	var (
		desc   command.ActionDescriptor
		target *trip.Trip
	)
	err = service.uow.WithinTx(ctx, func(txCtx context.Context) error {
		var resolveErr error
		desc, target, resolveErr = service.resolveTarget(txCtx, intent)
		return resolveErr
	})
	if err != nil {
		service.logger.Error(ctx, "command_resolve_failed", "Failed to resolve command target", err, map[string]any{
			"action":  intent.Kind().String(),
			"user_id": in.UserID,
		})
		return ports.CommandResult{}, err
	}

	ctx = service.logger.WithTripID(ctx, desc.TripID)

	// stage 4: consequence analysis
	consequence := analyzeConsequence(desc.Kind, target)

	result := ports.CommandResult{
		ActionKind:  desc.Kind.String(),
		TripID:      desc.TripID,
		Consequence: consequence,
	}

	// stage 5: gate behind confirmation when destructive or over threshold
	if consequence.Destructive || consequence.BookingCount > service.bookingThreshold {
		s := service.sessions.Open(in.ContextID, desc)

		service.logger.Info(ctx, "command_gated", "Command requires confirmation", map[string]any{
			"action":        desc.Kind.String(),
			"session_id":    s.ID,
			"booking_count": consequence.BookingCount,
			"user_id":       in.UserID,
		})

		result.NeedsConfirmation = true
		result.SessionID = s.ID
		result.Message = fmt.Sprintf("%s affects %d booking(s). Confirm to proceed.", desc.Summary(), consequence.BookingCount)
		return result, nil
	}

	// stage 6: execute immediately
	if err := service.executeDescriptor(ctx, desc, in.UserID); err != nil {
		return ports.CommandResult{}, err
	}

	result.Executed = true
	result.Message = desc.Summary()
	return result, nil
}
