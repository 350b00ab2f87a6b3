package service

import (
	"context"
	"errors"

	"fleet-registry/internal/domains/vehicle/model"
	"fleet-registry/internal/domains/vehicle/repository"
)

// vehicleService implements ServiceInterface on top of the repository
// abstraction. Stateless; safe for concurrent requests.
type vehicleService struct {
	repo repository.RepositoryInterface
}

func NewVehicleService(repo repository.RepositoryInterface) ServiceInterface {
	return &vehicleService{
		repo: repo,
	}
}

// List returns one page of vehicles matching the filters plus the
// pagination metadata. A page past the last one yields empty data with
// the total still filled in.
func (s *vehicleService) List(ctx context.Context, req model.ListVehiclesRequest) (*model.PaginatedVehicles, error) {
	filter := req.ToFilter()

	vehicles, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	return model.NewPaginatedVehicles(vehicles, total, filter), nil
}

func (s *vehicleService) GetByID(ctx context.Context, id int64) (*model.Vehicle, error) {
	if id <= 0 {
		return nil, model.ErrVehicleNotFound
	}

	return s.repo.GetByID(ctx, id)
}

// GetByPlate looks a vehicle up by plate. The argument is normalized
// first so lookups match the stored uppercase form regardless of input
// casing.
func (s *vehicleService) GetByPlate(ctx context.Context, plate string) (*model.Vehicle, error) {
	plate = model.NormalizePlate(plate)
	if plate == "" {
		return nil, model.ErrVehicleNotFound
	}

	return s.repo.GetByPlate(ctx, plate)
}

// Create registers a new vehicle. The plate is checked for duplicates
// before the insert for a friendly early conflict; the unique
// constraint in the store remains the authoritative guard, so a
// concurrent insert sneaking past the pre-check still surfaces as
// ErrDuplicatePlate.
func (s *vehicleService) Create(ctx context.Context, req model.CreateVehicleRequest) (*model.Vehicle, error) {
	v := req.ToEntity()

	existing, err := s.repo.GetByPlate(ctx, v.Plate)
	if err != nil && !errors.Is(err, model.ErrVehicleNotFound) {
		return nil, err
	}
	if existing != nil {
		return nil, model.ErrDuplicatePlate
	}

	return s.repo.Create(ctx, v)
}

// Update applies a partial update. Both preconditions (the row exists,
// a changed plate is free) run before any write, so a failed call
// leaves the stored row exactly as it was.
func (s *vehicleService) Update(ctx context.Context, id int64, req model.UpdateVehicleRequest) (*model.Vehicle, error) {
	if id <= 0 {
		return nil, model.ErrInvalidID
	}

	current, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Plate != nil {
		newPlate := model.NormalizePlate(*req.Plate)
		if newPlate != current.Plate {
			other, err := s.repo.GetByPlate(ctx, newPlate)
			if err != nil && !errors.Is(err, model.ErrVehicleNotFound) {
				return nil, err
			}
			if other != nil {
				return nil, model.ErrDuplicatePlate
			}
		}
	}

	updated := *current
	req.ApplyTo(&updated)

	return s.repo.Update(ctx, &updated)
}

// Delete removes a vehicle. Deleting an id that does not exist is a
// normal outcome reported as false, not an error, which also makes the
// operation idempotent.
func (s *vehicleService) Delete(ctx context.Context, id int64) (bool, error) {
	if id <= 0 {
		return false, nil
	}

	return s.repo.Delete(ctx, id)
}

func (s *vehicleService) DistinctBrands(ctx context.Context) ([]string, error) {
	return s.repo.DistinctBrands(ctx)
}

func (s *vehicleService) DistinctModels(ctx context.Context, brand string) ([]string, error) {
	return s.repo.DistinctModels(ctx, brand)
}

func (s *vehicleService) Stats(ctx context.Context) (*model.FleetStats, error) {
	return s.repo.Stats(ctx)
}
