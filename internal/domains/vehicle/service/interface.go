package service

import (
	"context"

	"fleet-registry/internal/domains/vehicle/model"
)

// ServiceInterface is the vehicle business logic consumed by the HTTP
// layer. Requests are expected to have passed their own Validate before
// reaching the service; everything below here works on well-formed
// input.
type ServiceInterface interface {
	List(ctx context.Context, req model.ListVehiclesRequest) (*model.PaginatedVehicles, error)
	GetByID(ctx context.Context, id int64) (*model.Vehicle, error)
	GetByPlate(ctx context.Context, plate string) (*model.Vehicle, error)
	Create(ctx context.Context, req model.CreateVehicleRequest) (*model.Vehicle, error)
	Update(ctx context.Context, id int64, req model.UpdateVehicleRequest) (*model.Vehicle, error)
	Delete(ctx context.Context, id int64) (bool, error)
	DistinctBrands(ctx context.Context) ([]string, error)
	DistinctModels(ctx context.Context, brand string) ([]string, error)
	Stats(ctx context.Context) (*model.FleetStats, error)
}
