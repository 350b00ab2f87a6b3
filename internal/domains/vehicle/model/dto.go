package model

import (
	"math"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Pagination defaults. Requests above MaxPageSize are rejected, never
// clamped.
const (
	DefaultPage     = 1
	DefaultPageSize = 10
	MaxPageSize     = 100
)

// CreateVehicleRequest - POST /v1/vehicles
type CreateVehicleRequest struct {
	Plate  string        `json:"plate"`
	Brand  string        `json:"brand"`
	Model  string        `json:"model"`
	Year   int           `json:"year"`
	Color  string        `json:"color"`
	Status VehicleStatus `json:"status,omitempty"`
}

// Validate checks the request against the wall clock.
func (r CreateVehicleRequest) Validate() error {
	return r.ValidateAt(time.Now())
}

// ValidateAt checks the request with an explicit "now" so the year
// upper bound can be frozen in tests.
func (r CreateVehicleRequest) ValidateAt(now time.Time) error {
	maxYear := now.Year() + 1
	return validation.ValidateStruct(&r,
		validation.Field(&r.Plate,
			validation.Required.Error("plate is required"),
			validation.RuneLength(PlateMinLength, PlateMaxLength).Error("plate must be 7-10 characters"),
		),
		validation.Field(&r.Brand,
			validation.Required.Error("brand is required"),
			validation.RuneLength(1, BrandMaxLength).Error("brand must be 1-100 characters"),
		),
		validation.Field(&r.Model,
			validation.Required.Error("model is required"),
			validation.RuneLength(1, ModelMaxLength).Error("model must be 1-100 characters"),
		),
		validation.Field(&r.Year,
			validation.Required.Error("year is required"),
			validation.Min(MinYear).Error("year must be 1900 or later"),
			validation.Max(maxYear).Error("year cannot be past next year"),
		),
		validation.Field(&r.Color,
			validation.Required.Error("color is required"),
			validation.RuneLength(1, ColorMaxLength).Error("color must be 1-50 characters"),
		),
		validation.Field(&r.Status,
			validation.In(StatusActive, StatusInactive).Error("status must be active or inactive"),
		),
	)
}

// ToEntity builds the entity to persist. The plate is normalized here,
// after validation has already seen the raw input; an omitted status
// defaults to active.
func (r CreateVehicleRequest) ToEntity() *Vehicle {
	status := r.Status
	if status == "" {
		status = StatusActive
	}

	return &Vehicle{
		Plate:  NormalizePlate(r.Plate),
		Brand:  r.Brand,
		Model:  r.Model,
		Year:   r.Year,
		Color:  r.Color,
		Status: status,
	}
}

// UpdateVehicleRequest - PUT /v1/vehicles/:id
// All fields optional for partial updates; a present field obeys the
// same rule as on create.
type UpdateVehicleRequest struct {
	Plate  *string        `json:"plate,omitempty"`
	Brand  *string        `json:"brand,omitempty"`
	Model  *string        `json:"model,omitempty"`
	Year   *int           `json:"year,omitempty"`
	Color  *string        `json:"color,omitempty"`
	Status *VehicleStatus `json:"status,omitempty"`
}

func (r UpdateVehicleRequest) Validate() error {
	return r.ValidateAt(time.Now())
}

func (r UpdateVehicleRequest) ValidateAt(now time.Time) error {
	maxYear := now.Year() + 1
	return validation.ValidateStruct(&r,
		validation.Field(&r.Plate,
			validation.NilOrNotEmpty.Error("plate cannot be empty"),
			validation.RuneLength(PlateMinLength, PlateMaxLength).Error("plate must be 7-10 characters"),
		),
		validation.Field(&r.Brand,
			validation.NilOrNotEmpty.Error("brand cannot be empty"),
			validation.RuneLength(1, BrandMaxLength).Error("brand must be 1-100 characters"),
		),
		validation.Field(&r.Model,
			validation.NilOrNotEmpty.Error("model cannot be empty"),
			validation.RuneLength(1, ModelMaxLength).Error("model must be 1-100 characters"),
		),
		validation.Field(&r.Year,
			validation.NilOrNotEmpty.Error("year cannot be zero"),
			validation.Min(MinYear).Error("year must be 1900 or later"),
			validation.Max(maxYear).Error("year cannot be past next year"),
		),
		validation.Field(&r.Color,
			validation.NilOrNotEmpty.Error("color cannot be empty"),
			validation.RuneLength(1, ColorMaxLength).Error("color must be 1-50 characters"),
		),
		validation.Field(&r.Status,
			validation.NilOrNotEmpty.Error("status cannot be empty"),
			validation.In(StatusActive, StatusInactive).Error("status must be active or inactive"),
		),
	)
}

// IsEmpty reports whether the request carries no field at all.
func (r UpdateVehicleRequest) IsEmpty() bool {
	return r.Plate == nil && r.Brand == nil && r.Model == nil &&
		r.Year == nil && r.Color == nil && r.Status == nil
}

// ApplyTo copies the supplied fields onto an existing vehicle.
// id and created_at are never touched.
func (r UpdateVehicleRequest) ApplyTo(v *Vehicle) {
	if r.Plate != nil {
		v.Plate = NormalizePlate(*r.Plate)
	}
	if r.Brand != nil {
		v.Brand = *r.Brand
	}
	if r.Model != nil {
		v.Model = *r.Model
	}
	if r.Year != nil {
		v.Year = *r.Year
	}
	if r.Color != nil {
		v.Color = *r.Color
	}
	if r.Status != nil {
		v.Status = *r.Status
	}
}

// ListVehiclesRequest - GET /v1/vehicles query parameters
// Page and page_size are pointers so an omitted parameter (defaulted)
// can be told apart from an explicit zero (rejected).
type ListVehiclesRequest struct {
	Brand    string `form:"brand" json:"brand"`
	Model    string `form:"model" json:"model"`
	Status   string `form:"status" json:"status"`
	Page     *int   `form:"page" json:"page"`
	PageSize *int   `form:"page_size" json:"page_size"`
}

func (r ListVehiclesRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Status,
			validation.In(string(StatusActive), string(StatusInactive)).Error("status must be active or inactive"),
		),
		validation.Field(&r.Page,
			validation.NilOrNotEmpty.Error("page must be a positive integer"),
			validation.Min(1).Error("page must be a positive integer"),
		),
		validation.Field(&r.PageSize,
			validation.NilOrNotEmpty.Error("page_size must be a positive integer"),
			validation.Min(1).Error("page_size must be a positive integer"),
			validation.Max(MaxPageSize).Error("page_size must not exceed 100"),
		),
	)
}

// ToFilter fills in the pagination defaults for omitted parameters.
func (r ListVehiclesRequest) ToFilter() VehicleFilter {
	page := DefaultPage
	if r.Page != nil {
		page = *r.Page
	}
	pageSize := DefaultPageSize
	if r.PageSize != nil {
		pageSize = *r.PageSize
	}

	return VehicleFilter{
		Brand:    r.Brand,
		Model:    r.Model,
		Status:   VehicleStatus(r.Status),
		Page:     page,
		PageSize: pageSize,
	}
}

// VehicleFilter is the validated, defaulted query the repository runs.
// Brand and model match as case-sensitive substrings, status exactly;
// empty filters impose no constraint.
type VehicleFilter struct {
	Brand    string
	Model    string
	Status   VehicleStatus
	Page     int
	PageSize int
}

func (f VehicleFilter) Offset() int {
	return (f.Page - 1) * f.PageSize
}

// PaginatedVehicles is one window of matching rows plus enough metadata
// to compute the page count. Total counts every row matching the same
// predicate, independent of the window.
type PaginatedVehicles struct {
	Data       []Vehicle `json:"data"`
	Total      int64     `json:"total"`
	Page       int       `json:"page"`
	PageSize   int       `json:"page_size"`
	TotalPages int       `json:"total_pages"`
}

// NewPaginatedVehicles assembles the list result, deriving total_pages.
func NewPaginatedVehicles(data []Vehicle, total int64, filter VehicleFilter) *PaginatedVehicles {
	if data == nil {
		data = []Vehicle{}
	}

	return &PaginatedVehicles{
		Data:       data,
		Total:      total,
		Page:       filter.Page,
		PageSize:   filter.PageSize,
		TotalPages: int(math.Ceil(float64(total) / float64(filter.PageSize))),
	}
}

// FleetStats is the dashboard summary.
type FleetStats struct {
	Total    int64 `json:"total"`
	Active   int64 `json:"active"`
	Inactive int64 `json:"inactive"`
}
