package container

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"fleet-registry/internal/config"
	infraCache "fleet-registry/internal/infrastructure/cache"
	"fleet-registry/internal/infrastructure/database"
	"fleet-registry/pkg/cache"

	vehicleHandler "fleet-registry/internal/domains/vehicle/handler"
	vehicleRepo "fleet-registry/internal/domains/vehicle/repository"
	vehicleService "fleet-registry/internal/domains/vehicle/service"
)

// Container is the root of the dependency graph. Everything in it is a
// singleton built once at startup; there is no lazy global state.
//
// Initialization order matters: config first, then infrastructure
// (database, cache), then repository -> service -> handler.
type Container struct {
	Config *config.Config
	DB     *database.PostgresDB
	Cache  cache.Cache

	VehicleRepo    vehicleRepo.RepositoryInterface
	VehicleService vehicleService.ServiceInterface
	VehicleHandler *vehicleHandler.VehicleHandler

	redisClient *infraCache.RedisClient
}

// NewContainer builds and wires the whole application.
func NewContainer() (*Container, error) {
	c := &Container{}

	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	c.Config = cfg

	// Database
	dbConfig, err := config.LoadDatabaseConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load database config: %w", err)
	}

	c.DB = database.NewPostgresDB(dbConfig)

	connectCtx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	if err := c.DB.Connect(connectCtx); err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Cache
	c.redisClient = infraCache.NewRedisClient(cfg.Redis.Host, cfg.Redis.Password, cfg.Redis.DB)
	if err := c.redisClient.Connect(connectCtx); err != nil {
		c.DB.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	c.Cache = c.redisClient

	// Vehicle domain
	c.VehicleRepo = vehicleRepo.NewPostgresRepository(c.DB.Pool, c.Cache)
	c.VehicleService = vehicleService.NewVehicleService(c.VehicleRepo)
	c.VehicleHandler = vehicleHandler.NewVehicleHandler(c.VehicleService)

	log.Info().Str("environment", cfg.App.Environment).Msg("Container initialized")

	return c, nil
}

// Cleanup releases every resource the container owns. Called once on
// shutdown.
func (c *Container) Cleanup() {
	if c.redisClient != nil {
		if err := c.redisClient.Close(); err != nil {
			log.Error().Err(err).Msg("Failed to close redis client")
		}
	}

	if c.DB != nil {
		if err := c.DB.Close(); err != nil {
			log.Error().Err(err).Msg("Failed to close database pool")
		}
	}
}
