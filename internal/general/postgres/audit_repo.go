package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"fleet-dispatch/internal/domain/audit"
	"fleet-dispatch/internal/ports"

	"github.com/jackc/pgx/v5"
)

// AuditRepo reads the append-only audit_log table. Writes go through
// insertAuditEntry inside the mutating repositories, in the same transaction
// as the mutation they record.
type AuditRepo struct{}

// NewAuditRepo constructs a new AuditRepo.
func NewAuditRepo() ports.AuditLogRepository {
	return &AuditRepo{}
}

// ListRecent returns the newest audit entries, newest first.
func (repo *AuditRepo) ListRecent(ctx context.Context, limit int) ([]audit.Entry, error) {
	tx, err := MustTxFromContext(ctx)
	if err != nil {
		return nil, err
	}

	if limit <= 0 {
		limit = 50
	}

	rows, err := tx.Query(ctx, `
		SELECT id, action, entity_type, entity_id, user_id, details, created_at
		FROM audit_log
		ORDER BY created_at DESC, id DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("query audit log: %w", err)
	}
	defer rows.Close()

	var entries []audit.Entry
	for rows.Next() {
		var e audit.Entry
		var details []byte
		if err := rows.Scan(&e.ID, &e.Action, &e.EntityType, &e.EntityID, &e.UserID, &details, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan audit entry: %w", err)
		}
		if len(details) > 0 {
			if err := json.Unmarshal(details, &e.Details); err != nil {
				return nil, fmt.Errorf("decode audit details: %w", err)
			}
		}
		entries = append(entries, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return entries, nil
}

// insertAuditEntry writes a row into audit_log with encoded details.
// It must run in the same transaction as the mutation it records so the two
// commit or roll back together.
func insertAuditEntry(ctx context.Context, tx pgx.Tx, action, entityType string, entityID int64, userID string, details any) error {
	body, err := json.Marshal(details)
	if err != nil {
		return err
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO audit_log (action, entity_type, entity_id, user_id, details)
		VALUES ($1, $2, $3, $4, $5::jsonb)
	`, action, entityType, entityID, userID, string(body))
	return err
}
