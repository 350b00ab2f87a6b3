package handler

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	validation "github.com/go-ozzo/ozzo-validation/v4"

	"fleet-registry/internal/domains/vehicle/model"
	"fleet-registry/internal/domains/vehicle/service"
	"fleet-registry/internal/shared/response"
	"fleet-registry/pkg/logger"
)

// VehicleHandler exposes the vehicle domain over HTTP. Stateless; only
// holds its service dependency.
type VehicleHandler struct {
	service service.ServiceInterface
}

func NewVehicleHandler(service service.ServiceInterface) *VehicleHandler {
	return &VehicleHandler{
		service: service,
	}
}

// List handles GET /vehicles with optional brand/model/status filters
// and pagination.
func (h *VehicleHandler) List(c *gin.Context) {
	var req model.ListVehiclesRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, "invalid query parameters")
		return
	}

	if !h.validate(c, req) {
		return
	}

	result, err := h.service.List(c.Request.Context(), req)
	if err != nil {
		h.handleError(c, err)
		return
	}

	response.SuccessWithMeta(c, http.StatusOK, result.Data, &response.Meta{
		Page:       result.Page,
		PageSize:   result.PageSize,
		Total:      result.Total,
		TotalPages: result.TotalPages,
	})
}

// GetByID handles GET /vehicles/:id.
func (h *VehicleHandler) GetByID(c *gin.Context) {
	id, ok := h.vehicleID(c)
	if !ok {
		return
	}

	v, err := h.service.GetByID(c.Request.Context(), id)
	if err != nil {
		h.handleError(c, err)
		return
	}

	response.Success(c, http.StatusOK, v)
}

// GetByPlate handles GET /vehicles/by-plate/:plate. Casing of the
// incoming plate does not matter; the service normalizes it.
func (h *VehicleHandler) GetByPlate(c *gin.Context) {
	plate := c.Param("plate")

	v, err := h.service.GetByPlate(c.Request.Context(), plate)
	if err != nil {
		h.handleError(c, err)
		return
	}

	response.Success(c, http.StatusOK, v)
}

// Create handles POST /vehicles.
func (h *VehicleHandler) Create(c *gin.Context) {
	var req model.CreateVehicleRequest
	if !h.bindAndValidate(c, &req) {
		return
	}

	v, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.Header("Location", fmt.Sprintf("/api/v1/vehicles/%d", v.ID))
	response.Success(c, http.StatusCreated, v)
}

// Update handles PUT /vehicles/:id with partial-update semantics: only
// the fields present in the body are validated and applied.
func (h *VehicleHandler) Update(c *gin.Context) {
	id, ok := h.vehicleID(c)
	if !ok {
		return
	}

	var req model.UpdateVehicleRequest
	if !h.bindAndValidate(c, &req) {
		return
	}

	v, err := h.service.Update(c.Request.Context(), id, req)
	if err != nil {
		h.handleError(c, err)
		return
	}

	response.Success(c, http.StatusOK, v)
}

// Delete handles DELETE /vehicles/:id. Deleting a missing vehicle
// reports deleted=false rather than an error.
func (h *VehicleHandler) Delete(c *gin.Context) {
	id, ok := h.vehicleID(c)
	if !ok {
		return
	}

	deleted, err := h.service.Delete(c.Request.Context(), id)
	if err != nil {
		h.handleError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"deleted": deleted})
}

// Brands handles GET /vehicles/brands for the filter dropdowns.
func (h *VehicleHandler) Brands(c *gin.Context) {
	brands, err := h.service.DistinctBrands(c.Request.Context())
	if err != nil {
		h.handleError(c, err)
		return
	}

	response.Success(c, http.StatusOK, brands)
}

// Models handles GET /vehicles/models?brand= for the filter dropdowns.
func (h *VehicleHandler) Models(c *gin.Context) {
	models, err := h.service.DistinctModels(c.Request.Context(), c.Query("brand"))
	if err != nil {
		h.handleError(c, err)
		return
	}

	response.Success(c, http.StatusOK, models)
}

// Stats handles GET /vehicles/stats backing the dashboard counters.
func (h *VehicleHandler) Stats(c *gin.Context) {
	stats, err := h.service.Stats(c.Request.Context())
	if err != nil {
		h.handleError(c, err)
		return
	}

	response.Success(c, http.StatusOK, stats)
}

// Helpers

// vehicleID parses the :id path parameter. Responds with 400 and
// returns false when it is not a positive integer.
func (h *VehicleHandler) vehicleID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		response.ErrorResponse(c, http.StatusBadRequest, "INVALID_ID", model.ErrInvalidID.Error())
		return 0, false
	}
	return id, true
}

func (h *VehicleHandler) bindAndValidate(c *gin.Context, req interface{ Validate() error }) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		response.BadRequest(c, "invalid request body")
		return false
	}
	return h.validate(c, req)
}

// validate runs the DTO schema and reports every violated field in the
// error details.
func (h *VehicleHandler) validate(c *gin.Context, req interface{ Validate() error }) bool {
	err := req.Validate()
	if err == nil {
		return true
	}

	var fieldErrs validation.Errors
	if errors.As(err, &fieldErrs) {
		response.ErrorWithDetails(c, http.StatusBadRequest, "VALIDATION_ERROR", "request validation failed", fieldErrs)
		return false
	}

	response.BadRequest(c, err.Error())
	return false
}

func (h *VehicleHandler) handleError(c *gin.Context, err error) {
	message := err.Error()
	if errors.Is(err, model.ErrStorageUnavailable) {
		logger.Error("vehicle storage failure", err)
		message = model.ErrStorageUnavailable.Error()
	}

	response.ErrorResponse(c, model.ToHTTPStatus(err), model.ToErrorCode(err), message)
}
