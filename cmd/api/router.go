package main

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"fleet-registry/internal/shared/middleware"
	"fleet-registry/internal/shared/response"
	"fleet-registry/pkg/container"
)

func SetupRouter(c *container.Container) *gin.Engine {
	router := gin.New()

	// Global middlewares
	router.Use(
		middleware.Recovery(),
		middleware.RequestID(),
		middleware.Logger(),
		middleware.CORS(),
	)

	router.NoRoute(func(ctx *gin.Context) {
		response.NotFound(ctx, "route not found")
	})

	v1 := router.Group("/api/v1")
	{
		v1.GET("/health", healthCheckHandler(c))

		setupVehicleRoutes(v1, c)
	}

	return router
}

func setupVehicleRoutes(v1 *gin.RouterGroup, c *container.Container) {
	vehicles := v1.Group("/vehicles")
	{
		vehicles.GET("", c.VehicleHandler.List)
		vehicles.POST("", c.VehicleHandler.Create)
		vehicles.GET("/stats", c.VehicleHandler.Stats)
		vehicles.GET("/brands", c.VehicleHandler.Brands)
		vehicles.GET("/models", c.VehicleHandler.Models)
		vehicles.GET("/by-plate/:plate", c.VehicleHandler.GetByPlate)
		vehicles.GET("/:id", c.VehicleHandler.GetByID)
		vehicles.PUT("/:id", c.VehicleHandler.Update)
		vehicles.DELETE("/:id", c.VehicleHandler.Delete)
	}
}

// healthCheckHandler reports liveness plus the state of the two shared
// resources. Degraded dependencies flip the status but keep the body
// informative.
func healthCheckHandler(c *container.Container) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		checks := gin.H{}
		status := http.StatusOK

		if err := c.DB.Ping(ctx.Request.Context()); err != nil {
			checks["database"] = err.Error()
			status = http.StatusServiceUnavailable
		} else {
			checks["database"] = "ok"
		}

		if err := c.Cache.Ping(ctx.Request.Context()); err != nil {
			checks["redis"] = err.Error()
			status = http.StatusServiceUnavailable
		} else {
			checks["redis"] = "ok"
		}

		ctx.JSON(status, gin.H{
			"status":      http.StatusText(status),
			"version":     c.Config.App.Version,
			"environment": c.Config.App.Environment,
			"timestamp":   time.Now().UTC(),
			"checks":      checks,
		})
	}
}
