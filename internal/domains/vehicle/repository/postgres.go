package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"fleet-registry/internal/domains/vehicle/model"
	"fleet-registry/internal/shared/utils"
	"fleet-registry/pkg/cache"
	"fleet-registry/pkg/logger"
)

// Querier is the subset of pgxpool.Pool the repository needs.
// Satisfied by *pgxpool.Pool in production and by pgxmock in tests.
type Querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// postgresRepository implements RepositoryInterface with pgxpool for
// PostgreSQL and a read-side cache for hot lookups.
type postgresRepository struct {
	pool  Querier
	cache cache.Cache
}

func NewPostgresRepository(pool Querier, cache cache.Cache) RepositoryInterface {
	return &postgresRepository{
		pool:  pool,
		cache: cache,
	}
}

// Cache key constants
const (
	vehicleCacheKeyPrefix = "vehicle:"
	vehiclePlateKeyPrefix = "vehicle:plate:"
	brandsCacheKey        = "vehicles:brands"
	modelsCacheKeyPrefix  = "vehicles:models:"
	statsCacheKey         = "vehicles:stats"
	cacheTTL              = 15 * time.Minute
)

const vehicleColumns = `id, plate, brand, model, year, color, status, created_at, updated_at`

// uniqueViolation is the PostgreSQL error code raised when the plate
// unique constraint rejects a write. It is the hard backstop for the
// best-effort pre-check in the service layer.
const uniqueViolation = "23505"

// storageFailure tags an unexpected database fault so callers can match
// it with errors.Is(err, model.ErrStorageUnavailable).
func storageFailure(op string, err error) error {
	return fmt.Errorf("%w: %s: %v", model.ErrStorageUnavailable, op, err)
}

func scanVehicle(row pgx.Row) (*model.Vehicle, error) {
	var v model.Vehicle
	err := row.Scan(
		&v.ID,
		&v.Plate,
		&v.Brand,
		&v.Model,
		&v.Year,
		&v.Color,
		&v.Status,
		&v.CreatedAt,
		&v.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// Create inserts a new vehicle. id, created_at and updated_at come back
// from the store; created_at equals updated_at on a fresh row.
func (r *postgresRepository) Create(ctx context.Context, v *model.Vehicle) (*model.Vehicle, error) {
	query := `
        INSERT INTO vehicles (plate, brand, model, year, color, status)
        VALUES ($1, $2, $3, $4, $5, $6)
        RETURNING ` + vehicleColumns

	created, err := scanVehicle(r.pool.QueryRow(
		ctx,
		query,
		v.Plate,
		v.Brand,
		v.Model,
		v.Year,
		v.Color,
		v.Status,
	))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return nil, model.ErrDuplicatePlate
		}
		return nil, storageFailure("failed to create vehicle", err)
	}

	r.invalidateMetaCache(ctx)

	return created, nil
}

// GetByID retrieves a vehicle by id with caching.
func (r *postgresRepository) GetByID(ctx context.Context, id int64) (*model.Vehicle, error) {
	cacheKey := fmt.Sprintf("%s%d", vehicleCacheKeyPrefix, id)

	var cached model.Vehicle
	if hit, err := r.cache.Get(ctx, cacheKey, &cached); err == nil && hit {
		return &cached, nil
	}

	query := `SELECT ` + vehicleColumns + ` FROM vehicles WHERE id = $1`

	v, err := scanVehicle(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrVehicleNotFound
		}
		return nil, storageFailure("failed to get vehicle by id", err)
	}

	r.cacheSet(ctx, cacheKey, v)

	return v, nil
}

// GetByPlate retrieves a vehicle by its normalized plate with caching.
func (r *postgresRepository) GetByPlate(ctx context.Context, plate string) (*model.Vehicle, error) {
	cacheKey := vehiclePlateKeyPrefix + plate

	var cached model.Vehicle
	if hit, err := r.cache.Get(ctx, cacheKey, &cached); err == nil && hit {
		return &cached, nil
	}

	query := `SELECT ` + vehicleColumns + ` FROM vehicles WHERE plate = $1`

	v, err := scanVehicle(r.pool.QueryRow(ctx, query, plate))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrVehicleNotFound
		}
		return nil, storageFailure("failed to get vehicle by plate", err)
	}

	r.cacheSet(ctx, cacheKey, v)

	return v, nil
}

// List runs the filtered, paginated query. The WHERE clause is built
// once and shared by the count and the page query so total and data can
// never disagree on the predicate.
func (r *postgresRepository) List(ctx context.Context, filter model.VehicleFilter) ([]model.Vehicle, int64, error) {
	var conditions []string
	var args []interface{}
	argPos := 1

	if filter.Brand != "" {
		conditions = append(conditions, fmt.Sprintf("brand LIKE $%d", argPos))
		args = append(args, "%"+filter.Brand+"%")
		argPos++
	}
	if filter.Model != "" {
		conditions = append(conditions, fmt.Sprintf("model LIKE $%d", argPos))
		args = append(args, "%"+filter.Model+"%")
		argPos++
	}
	if filter.Status != "" {
		conditions = append(conditions, fmt.Sprintf("status = $%d", argPos))
		args = append(args, filter.Status)
		argPos++
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = " WHERE " + utils.JoinWithAnd(conditions)
	}

	var total int64
	countQuery := `SELECT COUNT(*) FROM vehicles` + whereClause
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, storageFailure("failed to count vehicles", err)
	}

	var queryBuilder strings.Builder
	queryBuilder.WriteString(`SELECT ` + vehicleColumns + ` FROM vehicles`)
	queryBuilder.WriteString(whereClause)
	queryBuilder.WriteString(" ORDER BY created_at DESC")
	queryBuilder.WriteString(fmt.Sprintf(" LIMIT $%d OFFSET $%d", argPos, argPos+1))
	args = append(args, filter.PageSize, filter.Offset())

	rows, err := r.pool.Query(ctx, queryBuilder.String(), args...)
	if err != nil {
		return nil, 0, storageFailure("failed to query vehicles", err)
	}
	defer rows.Close()

	var vehicles []model.Vehicle
	for rows.Next() {
		v, err := scanVehicle(rows)
		if err != nil {
			return nil, 0, storageFailure("failed to scan vehicle", err)
		}
		vehicles = append(vehicles, *v)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, storageFailure("error iterating vehicles", err)
	}

	return vehicles, total, nil
}

// Update rewrites the mutable columns and refreshes updated_at.
// id and created_at stay untouched.
func (r *postgresRepository) Update(ctx context.Context, v *model.Vehicle) (*model.Vehicle, error) {
	// Load the stored plate first so a plate change can drop the old
	// cache entry as well.
	var oldPlate string
	err := r.pool.QueryRow(ctx, `SELECT plate FROM vehicles WHERE id = $1`, v.ID).Scan(&oldPlate)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return nil, storageFailure("failed to load vehicle for update", err)
	}

	query := `
        UPDATE vehicles
        SET plate = $1,
            brand = $2,
            model = $3,
            year = $4,
            color = $5,
            status = $6,
            updated_at = NOW()
        WHERE id = $7
        RETURNING ` + vehicleColumns

	updated, err := scanVehicle(r.pool.QueryRow(
		ctx,
		query,
		v.Plate,
		v.Brand,
		v.Model,
		v.Year,
		v.Color,
		v.Status,
		v.ID,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrVehicleNotFound
		}
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return nil, model.ErrDuplicatePlate
		}
		return nil, storageFailure("failed to update vehicle", err)
	}

	r.invalidateVehicleCache(ctx, v.ID, oldPlate, updated.Plate)
	r.invalidateMetaCache(ctx)

	return updated, nil
}

// Delete removes the row if present. A missing id is a normal outcome,
// not an error.
func (r *postgresRepository) Delete(ctx context.Context, id int64) (bool, error) {
	// Fetch the plate first so its cache entry can be dropped too.
	var plate string
	err := r.pool.QueryRow(ctx, `SELECT plate FROM vehicles WHERE id = $1`, id).Scan(&plate)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return false, storageFailure("failed to load vehicle for delete", err)
	}

	cmdTag, err := r.pool.Exec(ctx, `DELETE FROM vehicles WHERE id = $1`, id)
	if err != nil {
		return false, storageFailure("failed to delete vehicle", err)
	}

	if cmdTag.RowsAffected() == 0 {
		return false, nil
	}

	r.invalidateVehicleCache(ctx, id, plate, plate)
	r.invalidateMetaCache(ctx)

	return true, nil
}

// DistinctBrands returns every brand present, lexicographically.
func (r *postgresRepository) DistinctBrands(ctx context.Context) ([]string, error) {
	var cached []string
	if hit, err := r.cache.Get(ctx, brandsCacheKey, &cached); err == nil && hit {
		return cached, nil
	}

	rows, err := r.pool.Query(ctx, `SELECT DISTINCT brand FROM vehicles ORDER BY brand`)
	if err != nil {
		return nil, storageFailure("failed to query distinct brands", err)
	}
	defer rows.Close()

	brands, err := collectStrings(rows)
	if err != nil {
		return nil, storageFailure("failed to scan distinct brands", err)
	}

	r.cacheSet(ctx, brandsCacheKey, brands)

	return brands, nil
}

// DistinctModels returns distinct models, optionally restricted to an
// exact brand, lexicographically.
func (r *postgresRepository) DistinctModels(ctx context.Context, brand string) ([]string, error) {
	cacheKey := modelsCacheKeyPrefix + "all"
	if brand != "" {
		cacheKey = modelsCacheKeyPrefix + brand
	}

	var cached []string
	if hit, err := r.cache.Get(ctx, cacheKey, &cached); err == nil && hit {
		return cached, nil
	}

	query := `SELECT DISTINCT model FROM vehicles ORDER BY model`
	args := []interface{}{}
	if brand != "" {
		query = `SELECT DISTINCT model FROM vehicles WHERE brand = $1 ORDER BY model`
		args = append(args, brand)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, storageFailure("failed to query distinct models", err)
	}
	defer rows.Close()

	models, err := collectStrings(rows)
	if err != nil {
		return nil, storageFailure("failed to scan distinct models", err)
	}

	r.cacheSet(ctx, cacheKey, models)

	return models, nil
}

// Stats aggregates the dashboard counters in a single round trip.
func (r *postgresRepository) Stats(ctx context.Context) (*model.FleetStats, error) {
	var cached model.FleetStats
	if hit, err := r.cache.Get(ctx, statsCacheKey, &cached); err == nil && hit {
		return &cached, nil
	}

	query := `
        SELECT COUNT(*),
               COUNT(*) FILTER (WHERE status = $1),
               COUNT(*) FILTER (WHERE status = $2)
        FROM vehicles`

	var stats model.FleetStats
	err := r.pool.QueryRow(ctx, query, model.StatusActive, model.StatusInactive).
		Scan(&stats.Total, &stats.Active, &stats.Inactive)
	if err != nil {
		return nil, storageFailure("failed to aggregate fleet stats", err)
	}

	r.cacheSet(ctx, statsCacheKey, stats)

	return &stats, nil
}

func collectStrings(rows pgx.Rows) ([]string, error) {
	values := []string{}
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, err
		}
		values = append(values, v)
	}
	return values, rows.Err()
}

// Cache helper methods

// cacheSet writes through to the cache. A failed write only costs a
// future cache miss, so it is logged and swallowed.
func (r *postgresRepository) cacheSet(ctx context.Context, key string, value interface{}) {
	if err := r.cache.Set(ctx, key, value, cacheTTL); err != nil {
		logger.Warn("cache write failed", err)
	}
}

func (r *postgresRepository) invalidateVehicleCache(ctx context.Context, id int64, oldPlate, newPlate string) {
	keys := []string{fmt.Sprintf("%s%d", vehicleCacheKeyPrefix, id)}
	if oldPlate != "" {
		keys = append(keys, vehiclePlateKeyPrefix+oldPlate)
	}
	if newPlate != "" && newPlate != oldPlate {
		keys = append(keys, vehiclePlateKeyPrefix+newPlate)
	}
	r.cache.Delete(ctx, keys...)
}

func (r *postgresRepository) invalidateMetaCache(ctx context.Context) {
	r.cache.Delete(ctx, brandsCacheKey, statsCacheKey)
	r.cache.DeletePattern(ctx, modelsCacheKeyPrefix+"*")
}
