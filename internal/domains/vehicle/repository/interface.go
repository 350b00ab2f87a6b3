package repository

import (
	"context"

	"fleet-registry/internal/domains/vehicle/model"
)

// RepositoryInterface is the row-store contract for the vehicle domain.
// Lookups signal a normal miss with model.ErrVehicleNotFound; any
// unexpected storage fault is wrapped in model.ErrStorageUnavailable.
type RepositoryInterface interface {
	// Create inserts the vehicle and returns the persisted row with
	// id and timestamps assigned by the store. A plate collision
	// returns model.ErrDuplicatePlate.
	Create(ctx context.Context, v *model.Vehicle) (*model.Vehicle, error)

	GetByID(ctx context.Context, id int64) (*model.Vehicle, error)
	GetByPlate(ctx context.Context, plate string) (*model.Vehicle, error)

	// List returns one page of rows matching the filter plus the total
	// count of all matching rows. Both are computed from the same
	// predicate.
	List(ctx context.Context, filter model.VehicleFilter) ([]model.Vehicle, int64, error)

	// Update rewrites the mutable columns of the row identified by
	// v.ID and refreshes updated_at.
	Update(ctx context.Context, v *model.Vehicle) (*model.Vehicle, error)

	// Delete removes the row and reports whether one existed.
	Delete(ctx context.Context, id int64) (bool, error)

	DistinctBrands(ctx context.Context) ([]string, error)
	DistinctModels(ctx context.Context, brand string) ([]string, error)

	Stats(ctx context.Context) (*model.FleetStats, error)
}
