package service

import (
	"context"
	"fmt"

	"fleet-dispatch/internal/ports"
)

// ManualUpdate applies a dispatcher's status override. The derived schedule
// timestamps are ignored; transition validity is still enforced by the
// repository under the row lock.
func (service *statusService) ManualUpdate(ctx context.Context, in ports.ManualUpdateInput) (ports.ManualUpdateResult, error) {
	ctx = service.logger.WithTripID(ctx, in.TripID)

	err := service.uow.WithinTx(ctx, func(txCtx context.Context) error {
		return service.tripRepo.UpdateStatusManual(txCtx, in.TripID, in.NewStatus, in.UserID)
	})
	if err != nil {
		service.logger.Error(ctx, "manual_update_failed", "Failed to apply manual status override", err, map[string]any{
			"new_status": in.NewStatus.String(),
			"user_id":    in.UserID,
		})
		return ports.ManualUpdateResult{}, err
	}

	service.logger.Info(ctx, "status_overridden", "Trip status set manually", map[string]any{
		"new_status": in.NewStatus.String(),
		"user_id":    in.UserID,
	})

	return ports.ManualUpdateResult{
		TripID:    in.TripID,
		NewStatus: in.NewStatus.String(),
		Message:   fmt.Sprintf("Trip %d set to %s", in.TripID, in.NewStatus),
	}, nil
}
