package model

import (
	"strings"
	"time"
)

// VehicleStatus is the lifecycle state of a fleet vehicle.
type VehicleStatus string

const (
	StatusActive   VehicleStatus = "active"
	StatusInactive VehicleStatus = "inactive"
)

// IsValid reports whether s is one of the known statuses.
func (s VehicleStatus) IsValid() bool {
	return s == StatusActive || s == StatusInactive
}

// Field constraints; the single source of truth shared by the
// validation schemas and the table definition.
const (
	PlateMinLength = 7
	PlateMaxLength = 10
	BrandMaxLength = 100
	ModelMaxLength = 100
	ColorMaxLength = 50
	MinYear        = 1900
)

// Vehicle is a single fleet registry record. The plate is stored
// normalized to uppercase and is unique across the table.
type Vehicle struct {
	ID        int64         `json:"id" db:"id"`
	Plate     string        `json:"plate" db:"plate"`
	Brand     string        `json:"brand" db:"brand"`
	Model     string        `json:"model" db:"model"`
	Year      int           `json:"year" db:"year"`
	Color     string        `json:"color" db:"color"`
	Status    VehicleStatus `json:"status" db:"status"`
	CreatedAt time.Time     `json:"created_at" db:"created_at"`
	UpdatedAt time.Time     `json:"updated_at" db:"updated_at"`
}

// NormalizePlate folds a plate to its stored form. Applied only after
// validation so length checks see the raw input.
func NormalizePlate(plate string) string {
	return strings.ToUpper(plate)
}
