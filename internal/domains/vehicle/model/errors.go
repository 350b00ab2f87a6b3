package model

import (
	"errors"
	"net/http"
)

var (
	// Business rule errors
	ErrVehicleNotFound = errors.New("vehicle not found")
	ErrDuplicatePlate  = errors.New("vehicle with this plate already exists")
	ErrInvalidID       = errors.New("vehicle id must be a positive integer")

	// Storage errors. Repositories wrap every unexpected database fault
	// in ErrStorageUnavailable so callers never see a raw driver error.
	ErrStorageUnavailable = errors.New("storage unavailable")
)

// ToErrorCode converts a domain error to its API error code.
func ToErrorCode(err error) string {
	switch {
	case errors.Is(err, ErrVehicleNotFound):
		return "VEHICLE_NOT_FOUND"
	case errors.Is(err, ErrDuplicatePlate):
		return "DUPLICATE_PLATE"
	case errors.Is(err, ErrInvalidID):
		return "INVALID_ID"
	case errors.Is(err, ErrStorageUnavailable):
		return "STORAGE_UNAVAILABLE"
	default:
		return "INTERNAL_ERROR"
	}
}

// ToHTTPStatus converts a domain error to an HTTP status code.
func ToHTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrVehicleNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrDuplicatePlate):
		return http.StatusConflict
	case errors.Is(err, ErrInvalidID):
		return http.StatusBadRequest
	case errors.Is(err, ErrStorageUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
