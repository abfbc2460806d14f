package api

import (
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/teranga/client-registry/internal/api/handler"
	"github.com/teranga/client-registry/internal/core/ports"
)

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(service ports.ClientService, db *mongo.Database, rdb *redis.Client, log zerolog.Logger) *echo.Echo {
	e := echo.New()
	e.HideBanner = true

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echomiddleware.Logger())

	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(log)

	// --- Client registry routes ---
	clients := handler.NewClientHandler(service)

	v1 := e.Group("/v1")
	v1.POST("/clients", clients.Create)
	v1.GET("/clients", clients.List)
	v1.POST("/clients/telephone", clients.SearchByPhone)
	v1.GET("/clients/:id", clients.Get)
	v1.PUT("/clients/:id", clients.Update)
	v1.DELETE("/clients/:id", clients.Delete)
	v1.GET("/clients/:id/dettes", clients.ListDettes)
	v1.GET("/clients/:id/user", clients.GetAccount)

	// --- Health probes and metrics (no envelope) ---
	healthHandler := handler.NewHealthHandler()
	healthDepsHandler := handler.NewHealthDependenciesHandler(db, rdb)

	e.GET("/health", healthHandler.Liveness)            // liveness  – is the process alive?
	e.GET("/health/ready", healthDepsHandler.Readiness) // readiness – are dependencies up?
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	return e
}
