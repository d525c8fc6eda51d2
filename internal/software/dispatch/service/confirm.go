package service

import (
	"context"
	"errors"
	"fmt"

	"fleet-dispatch/internal/domain/command"
	"fleet-dispatch/internal/ports"
)

// ConfirmCommand settles a pending confirmation session: executes the parked
// action on yes, discards it on no. An expired session is a normal outcome,
// not an error; the caller simply re-issues the command.
func (service *dispatchService) ConfirmCommand(ctx context.Context, in ports.ConfirmInput) (ports.ConfirmResult, error) {
	desc, err := service.sessions.Resolve(in.SessionID, in.Confirmed)
	if err != nil {
		if errors.Is(err, command.ErrSessionExpired) {
			service.logger.Info(ctx, "confirmation_expired", "Confirmation session expired before resolution", map[string]any{
				"session_id": in.SessionID,
				"user_id":    in.UserID,
			})
			return ports.ConfirmResult{
				Status:  "expired",
				Message: "Confirmation window elapsed. Re-issue the command.",
			}, nil
		}
		return ports.ConfirmResult{}, err
	}

	if !in.Confirmed {
		service.logger.Info(ctx, "command_cancelled", "Dispatcher declined the pending action", map[string]any{
			"session_id": in.SessionID,
			"action":     desc.Kind.String(),
			"user_id":    in.UserID,
		})
		return ports.ConfirmResult{
			Status:  "cancelled",
			Success: true,
			Message: fmt.Sprintf("Discarded: %s", desc.Summary()),
		}, nil
	}

	ctx = service.logger.WithTripID(ctx, desc.TripID)
	if err := service.executeDescriptor(ctx, desc, in.UserID); err != nil {
		return ports.ConfirmResult{}, err
	}

	return ports.ConfirmResult{
		Status:  "executed",
		Success: true,
		Message: desc.Summary(),
	}, nil
}
