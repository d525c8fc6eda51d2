package postgres

import (
	"context"
	"errors"
	"fmt"

	"fleet-dispatch/internal/domain/vehicle"
	"fleet-dispatch/internal/ports"

	"github.com/jackc/pgx/v5"
)

// VehicleRepo provides read-only vehicle lookups.
type VehicleRepo struct{}

// NewVehicleRepo constructs a new VehicleRepo.
func NewVehicleRepo() ports.VehicleRepository {
	return &VehicleRepo{}
}

// GetByID fetches a vehicle by primary key.
func (repo *VehicleRepo) GetByID(ctx context.Context, id int64) (*vehicle.Vehicle, error) {
	tx, err := MustTxFromContext(ctx)
	if err != nil {
		return nil, err
	}

	var out vehicle.Vehicle
	err = tx.QueryRow(ctx, `
		SELECT id, registration
		FROM vehicles
		WHERE id = $1
	`, id).Scan(&out.ID, &out.Registration)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, vehicle.ErrNotFound
		}
		return nil, fmt.Errorf("query vehicle by id: %w", err)
	}

	return &out, nil
}

// GetByRegistration fetches a vehicle by registration number.
// Matching is exact and case-insensitive.
func (repo *VehicleRepo) GetByRegistration(ctx context.Context, registration string) (*vehicle.Vehicle, error) {
	tx, err := MustTxFromContext(ctx)
	if err != nil {
		return nil, err
	}

	var out vehicle.Vehicle
	err = tx.QueryRow(ctx, `
		SELECT id, registration
		FROM vehicles
		WHERE LOWER(registration) = LOWER($1)
	`, vehicle.NormalizeRegistration(registration)).Scan(&out.ID, &out.Registration)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, vehicle.ErrNotFound
		}
		return nil, fmt.Errorf("query vehicle by registration: %w", err)
	}

	return &out, nil
}
