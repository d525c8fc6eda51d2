package service

import (
	"context"
	"fmt"

	"fleet-dispatch/internal/domain/command"
)

// executeDescriptor applies one resolved action inside a single transaction.
// The repository locks the trip row, re-checks preconditions, mutates, and
// writes the audit row; the transaction commits all of it or none of it.
func (service *dispatchService) executeDescriptor(ctx context.Context, desc command.ActionDescriptor, userID string) error {
	err := service.uow.WithinTx(ctx, func(txCtx context.Context) error {
		switch desc.Kind {
		case command.ActionAssignVehicle:
			return service.tripRepo.AssignVehicle(txCtx, desc.TripID, desc.VehicleID, userID)
		case command.ActionRemoveVehicle:
			return service.tripRepo.RemoveVehicle(txCtx, desc.TripID, userID)
		case command.ActionChangeDriver:
			return service.tripRepo.ChangeDriver(txCtx, desc.TripID, desc.DriverID, userID)
		case command.ActionCancelTrip:
			return service.tripRepo.Cancel(txCtx, desc.TripID, desc.Reason, userID)
		default:
			return fmt.Errorf("%w: %q", command.ErrUnknownAction, desc.Kind)
		}
	})
	if err != nil {
		service.logger.Error(ctx, "command_execute_failed", "Failed to execute command", err, map[string]any{
			"action":  desc.Kind.String(),
			"user_id": userID,
		})
		return err
	}

	service.logger.Info(ctx, "command_executed", desc.Summary(), map[string]any{
		"action":  desc.Kind.String(),
		"user_id": userID,
	})
	return nil
}
