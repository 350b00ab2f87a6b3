package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fleet-registry/internal/domains/vehicle/model"
)

// stubService lets each test script the service layer with function
// fields. Unset fields mean the endpoint is not under test.
type stubService struct {
	list     func(context.Context, model.ListVehiclesRequest) (*model.PaginatedVehicles, error)
	getByID  func(context.Context, int64) (*model.Vehicle, error)
	byPlate  func(context.Context, string) (*model.Vehicle, error)
	create   func(context.Context, model.CreateVehicleRequest) (*model.Vehicle, error)
	update   func(context.Context, int64, model.UpdateVehicleRequest) (*model.Vehicle, error)
	remove   func(context.Context, int64) (bool, error)
	brands   func(context.Context) ([]string, error)
	models   func(context.Context, string) ([]string, error)
	getStats func(context.Context) (*model.FleetStats, error)
}

func (s *stubService) List(ctx context.Context, req model.ListVehiclesRequest) (*model.PaginatedVehicles, error) {
	return s.list(ctx, req)
}

func (s *stubService) GetByID(ctx context.Context, id int64) (*model.Vehicle, error) {
	return s.getByID(ctx, id)
}

func (s *stubService) GetByPlate(ctx context.Context, plate string) (*model.Vehicle, error) {
	return s.byPlate(ctx, plate)
}

func (s *stubService) Create(ctx context.Context, req model.CreateVehicleRequest) (*model.Vehicle, error) {
	return s.create(ctx, req)
}

func (s *stubService) Update(ctx context.Context, id int64, req model.UpdateVehicleRequest) (*model.Vehicle, error) {
	return s.update(ctx, id, req)
}

func (s *stubService) Delete(ctx context.Context, id int64) (bool, error) {
	return s.remove(ctx, id)
}

func (s *stubService) DistinctBrands(ctx context.Context) ([]string, error) {
	return s.brands(ctx)
}

func (s *stubService) DistinctModels(ctx context.Context, brand string) ([]string, error) {
	return s.models(ctx, brand)
}

func (s *stubService) Stats(ctx context.Context) (*model.FleetStats, error) {
	return s.getStats(ctx)
}

func newTestRouter(svc *stubService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewVehicleHandler(svc)

	r := gin.New()
	vehicles := r.Group("/api/v1/vehicles")
	{
		vehicles.GET("", h.List)
		vehicles.POST("", h.Create)
		vehicles.GET("/stats", h.Stats)
		vehicles.GET("/brands", h.Brands)
		vehicles.GET("/models", h.Models)
		vehicles.GET("/by-plate/:plate", h.GetByPlate)
		vehicles.GET("/:id", h.GetByID)
		vehicles.PUT("/:id", h.Update)
		vehicles.DELETE("/:id", h.Delete)
	}
	return r
}

func perform(t *testing.T, r *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string                 `json:"code"`
		Message string                 `json:"message"`
		Details map[string]interface{} `json:"details"`
	} `json:"error"`
	Meta *struct {
		Page       int   `json:"page"`
		PageSize   int   `json:"page_size"`
		Total      int64 `json:"total"`
		TotalPages int   `json:"total_pages"`
	} `json:"meta"`
}

func decode(t *testing.T, w *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	return env
}

func sampleVehicle() *model.Vehicle {
	now := time.Date(2024, time.March, 1, 12, 0, 0, 0, time.UTC)
	return &model.Vehicle{
		ID:        1,
		Plate:     "ABC1234",
		Brand:     "Toyota",
		Model:     "Corolla",
		Year:      2020,
		Color:     "Silver",
		Status:    model.StatusActive,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func TestCreateReturns201WithLocation(t *testing.T) {
	svc := &stubService{
		create: func(_ context.Context, req model.CreateVehicleRequest) (*model.Vehicle, error) {
			v := req.ToEntity()
			v.ID = 7
			return v, nil
		},
	}
	r := newTestRouter(svc)

	w := perform(t, r, http.MethodPost, "/api/v1/vehicles", gin.H{
		"plate": "abc1234",
		"brand": "Toyota",
		"model": "Corolla",
		"year":  2020,
		"color": "Silver",
	})

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "/api/v1/vehicles/7", w.Header().Get("Location"))

	env := decode(t, w)
	assert.True(t, env.Success)

	var v model.Vehicle
	require.NoError(t, json.Unmarshal(env.Data, &v))
	assert.Equal(t, "ABC1234", v.Plate)
	assert.Equal(t, model.StatusActive, v.Status)
}

func TestCreateValidationFailureListsEveryField(t *testing.T) {
	r := newTestRouter(&stubService{})

	w := perform(t, r, http.MethodPost, "/api/v1/vehicles", gin.H{
		"plate": "ABC",
		"brand": "",
		"model": "Corolla",
		"year":  1850,
		"color": "Silver",
	})

	assert.Equal(t, http.StatusBadRequest, w.Code)

	env := decode(t, w)
	assert.False(t, env.Success)
	require.NotNil(t, env.Error)
	assert.Equal(t, "VALIDATION_ERROR", env.Error.Code)
	assert.Contains(t, env.Error.Details, "plate")
	assert.Contains(t, env.Error.Details, "brand")
	assert.Contains(t, env.Error.Details, "year")
	assert.NotContains(t, env.Error.Details, "model")
}

func TestCreateMalformedBody(t *testing.T) {
	r := newTestRouter(&stubService{})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/vehicles", bytes.NewReader([]byte("{not json")))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	env := decode(t, w)
	require.NotNil(t, env.Error)
	assert.Equal(t, "BAD_REQUEST", env.Error.Code)
}

func TestCreateDuplicatePlateMapsTo409(t *testing.T) {
	svc := &stubService{
		create: func(context.Context, model.CreateVehicleRequest) (*model.Vehicle, error) {
			return nil, model.ErrDuplicatePlate
		},
	}
	r := newTestRouter(svc)

	w := perform(t, r, http.MethodPost, "/api/v1/vehicles", gin.H{
		"plate": "ABC1234",
		"brand": "Toyota",
		"model": "Corolla",
		"year":  2020,
		"color": "Silver",
	})

	assert.Equal(t, http.StatusConflict, w.Code)
	env := decode(t, w)
	require.NotNil(t, env.Error)
	assert.Equal(t, "DUPLICATE_PLATE", env.Error.Code)
}

func TestGetByIDMapsNotFoundTo404(t *testing.T) {
	svc := &stubService{
		getByID: func(context.Context, int64) (*model.Vehicle, error) {
			return nil, model.ErrVehicleNotFound
		},
	}
	r := newTestRouter(svc)

	w := perform(t, r, http.MethodGet, "/api/v1/vehicles/99", nil)

	assert.Equal(t, http.StatusNotFound, w.Code)
	env := decode(t, w)
	require.NotNil(t, env.Error)
	assert.Equal(t, "VEHICLE_NOT_FOUND", env.Error.Code)
}

func TestNonNumericIDRejectedBeforeService(t *testing.T) {
	r := newTestRouter(&stubService{})

	for _, path := range []string{
		"/api/v1/vehicles/abc",
		"/api/v1/vehicles/0",
		"/api/v1/vehicles/-3",
	} {
		w := perform(t, r, http.MethodGet, path, nil)
		assert.Equal(t, http.StatusBadRequest, w.Code, path)
		env := decode(t, w)
		require.NotNil(t, env.Error, path)
		assert.Equal(t, "INVALID_ID", env.Error.Code, path)
	}
}

func TestListReturnsPaginationMeta(t *testing.T) {
	var captured model.ListVehiclesRequest
	svc := &stubService{
		list: func(_ context.Context, req model.ListVehiclesRequest) (*model.PaginatedVehicles, error) {
			captured = req
			return model.NewPaginatedVehicles([]model.Vehicle{*sampleVehicle()}, 23, model.VehicleFilter{Page: 2, PageSize: 10}), nil
		},
	}
	r := newTestRouter(svc)

	w := perform(t, r, http.MethodGet, "/api/v1/vehicles?brand=Toy&status=active&page=2&page_size=10", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Toy", captured.Brand)
	assert.Equal(t, "active", captured.Status)
	require.NotNil(t, captured.Page)
	assert.Equal(t, 2, *captured.Page)

	env := decode(t, w)
	require.NotNil(t, env.Meta)
	assert.Equal(t, 2, env.Meta.Page)
	assert.Equal(t, 10, env.Meta.PageSize)
	assert.Equal(t, int64(23), env.Meta.Total)
	assert.Equal(t, 3, env.Meta.TotalPages)
}

func TestListRejectsOversizedPage(t *testing.T) {
	r := newTestRouter(&stubService{})

	w := perform(t, r, http.MethodGet, "/api/v1/vehicles?page_size=101", nil)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	env := decode(t, w)
	require.NotNil(t, env.Error)
	assert.Equal(t, "VALIDATION_ERROR", env.Error.Code)
	assert.Contains(t, env.Error.Details, "page_size")
}

func TestListRejectsExplicitZeroPagination(t *testing.T) {
	r := newTestRouter(&stubService{})

	w := perform(t, r, http.MethodGet, "/api/v1/vehicles?page=0", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	env := decode(t, w)
	require.NotNil(t, env.Error)
	assert.Contains(t, env.Error.Details, "page")

	w = perform(t, r, http.MethodGet, "/api/v1/vehicles?page_size=0", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	env = decode(t, w)
	require.NotNil(t, env.Error)
	assert.Contains(t, env.Error.Details, "page_size")
}

func TestListRejectsUnknownStatus(t *testing.T) {
	r := newTestRouter(&stubService{})

	w := perform(t, r, http.MethodGet, "/api/v1/vehicles?status=scrapped", nil)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	env := decode(t, w)
	require.NotNil(t, env.Error)
	assert.Contains(t, env.Error.Details, "status")
}

func TestUpdateEmptyBodyIsNoOpUpdate(t *testing.T) {
	svc := &stubService{
		update: func(_ context.Context, id int64, req model.UpdateVehicleRequest) (*model.Vehicle, error) {
			assert.True(t, req.IsEmpty())
			return sampleVehicle(), nil
		},
	}
	r := newTestRouter(svc)

	w := perform(t, r, http.MethodPut, "/api/v1/vehicles/1", gin.H{})

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestUpdateRejectsPresentButEmptyField(t *testing.T) {
	r := newTestRouter(&stubService{})

	w := perform(t, r, http.MethodPut, "/api/v1/vehicles/1", gin.H{"brand": ""})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	env := decode(t, w)
	require.NotNil(t, env.Error)
	assert.Contains(t, env.Error.Details, "brand")
}

func TestDeleteReportsMissingAsFalse(t *testing.T) {
	svc := &stubService{
		remove: func(context.Context, int64) (bool, error) {
			return false, nil
		},
	}
	r := newTestRouter(svc)

	w := perform(t, r, http.MethodDelete, "/api/v1/vehicles/5", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	env := decode(t, w)
	assert.True(t, env.Success)
	assert.JSONEq(t, `{"deleted": false}`, string(env.Data))
}

func TestGetByPlatePassesRawParam(t *testing.T) {
	var captured string
	svc := &stubService{
		byPlate: func(_ context.Context, plate string) (*model.Vehicle, error) {
			captured = plate
			return sampleVehicle(), nil
		},
	}
	r := newTestRouter(svc)

	w := perform(t, r, http.MethodGet, "/api/v1/vehicles/by-plate/abc1234", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "abc1234", captured)
}

func TestMetaEndpoints(t *testing.T) {
	var capturedBrand string
	svc := &stubService{
		brands: func(context.Context) ([]string, error) {
			return []string{"Honda", "Toyota"}, nil
		},
		models: func(_ context.Context, brand string) ([]string, error) {
			capturedBrand = brand
			return []string{"Corolla"}, nil
		},
		getStats: func(context.Context) (*model.FleetStats, error) {
			return &model.FleetStats{Total: 3, Active: 2, Inactive: 1}, nil
		},
	}
	r := newTestRouter(svc)

	w := perform(t, r, http.MethodGet, "/api/v1/vehicles/brands", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `["Honda","Toyota"]`, string(decode(t, w).Data))

	w = perform(t, r, http.MethodGet, "/api/v1/vehicles/models?brand=Toyota", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Toyota", capturedBrand)

	w = perform(t, r, http.MethodGet, "/api/v1/vehicles/stats", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"total":3,"active":2,"inactive":1}`, string(decode(t, w).Data))
}

func TestStorageFailureMapsTo503(t *testing.T) {
	svc := &stubService{
		getStats: func(context.Context) (*model.FleetStats, error) {
			return nil, model.ErrStorageUnavailable
		},
	}
	r := newTestRouter(svc)

	w := perform(t, r, http.MethodGet, "/api/v1/vehicles/stats", nil)

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	env := decode(t, w)
	require.NotNil(t, env.Error)
	assert.Equal(t, "STORAGE_UNAVAILABLE", env.Error.Code)
}
