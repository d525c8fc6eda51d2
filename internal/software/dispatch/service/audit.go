package service

import (
	"context"

	"fleet-dispatch/internal/ports"
)

// RecentAudit returns the newest audit entries as read models.
func (service *dispatchService) RecentAudit(ctx context.Context, limit int) ([]ports.AuditEntryView, error) {
	var views []ports.AuditEntryView

	err := service.uow.WithinTx(ctx, func(txCtx context.Context) error {
		entries, err := service.auditRepo.ListRecent(txCtx, limit)
		if err != nil {
			return err
		}

		views = make([]ports.AuditEntryView, 0, len(entries))
		for _, e := range entries {
			views = append(views, ports.AuditEntryView{
				Action:     e.Action,
				EntityType: e.EntityType,
				EntityID:   e.EntityID,
				UserID:     e.UserID,
				Details:    e.Details,
				CreatedAt:  e.CreatedAt,
			})
		}
		return nil
	})
	if err != nil {
		service.logger.Error(ctx, "audit_list_failed", "Failed to list recent audit entries", err, nil)
		return nil, err
	}

	return views, nil
}
