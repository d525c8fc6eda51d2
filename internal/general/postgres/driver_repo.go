package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"fleet-dispatch/internal/domain/driver"
	"fleet-dispatch/internal/ports"

	"github.com/jackc/pgx/v5"
)

// DriverRepo provides read-only driver lookups.
type DriverRepo struct{}

// NewDriverRepo constructs a new DriverRepo.
func NewDriverRepo() ports.DriverRepository {
	return &DriverRepo{}
}

// GetByID fetches a driver by primary key.
func (repo *DriverRepo) GetByID(ctx context.Context, id int64) (*driver.Driver, error) {
	tx, err := MustTxFromContext(ctx)
	if err != nil {
		return nil, err
	}

	var out driver.Driver
	err = tx.QueryRow(ctx, `
		SELECT id, name
		FROM drivers
		WHERE id = $1
	`, id).Scan(&out.ID, &out.Name)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, driver.ErrNotFound
		}
		return nil, fmt.Errorf("query driver by id: %w", err)
	}

	return &out, nil
}

// FindByNameFragment returns the first driver whose name contains the
// fragment (case-insensitive). Multiple matches tie-break on the lowest id
// so lookups are deterministic; correction happens downstream through the
// confirmation flow.
func (repo *DriverRepo) FindByNameFragment(ctx context.Context, fragment string) (*driver.Driver, error) {
	tx, err := MustTxFromContext(ctx)
	if err != nil {
		return nil, err
	}

	fragment = strings.TrimSpace(fragment)
	if fragment == "" {
		return nil, driver.ErrNotFound
	}

	var out driver.Driver
	err = tx.QueryRow(ctx, `
		SELECT id, name
		FROM drivers
		WHERE name ILIKE '%' || $1 || '%'
		ORDER BY id
		LIMIT 1
	`, fragment).Scan(&out.ID, &out.Name)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, driver.ErrNotFound
		}
		return nil, fmt.Errorf("query driver by name: %w", err)
	}

	return &out, nil
}
