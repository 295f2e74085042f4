package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/ahnxd/qrnotify/internal/api/handler"
	"github.com/ahnxd/qrnotify/internal/api/middleware"
	"github.com/ahnxd/qrnotify/internal/core/ports"
)

// Services groups the core services the HTTP surface translates requests into.
type Services struct {
	Registration ports.RegistrationService
	Directory    ports.DirectoryService
	Notify       ports.NotifyService
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(db *mongo.Database, rdb *redis.Client, svcs Services, jwtSecret string, log zerolog.Logger) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echomiddleware.Logger())
	e.Use(echoprometheus.NewMiddleware("qrnotify"))

	// --- Handlers ---
	identityHandler := handler.NewIdentityHandler(svcs.Registration)
	directoryHandler := handler.NewDirectoryHandler(svcs.Directory)
	notifyHandler := handler.NewNotifyHandler(svcs.Notify)

	// --- Public routes ---
	e.POST("/v1/identities", identityHandler.Register)
	e.GET("/v1/links", directoryHandler.ListLinks)

	// --- Provisioning routes (service-token gated) ---
	ops := e.Group("/v1", middleware.Auth(jwtSecret), middleware.RBAC("ops"))
	ops.POST("/admins", directoryHandler.AddAdmin)
	ops.POST("/links", directoryHandler.AddLink)
	ops.POST("/notifications/qr", notifyHandler.HandleCodeImage)

	// --- Health probes and metrics (no auth required) ---
	healthHandler := handler.NewHealthHandler()
	readinessHandler := handler.NewReadinessHandler(db, rdb)

	e.GET("/health", healthHandler.Liveness)          // liveness  – is the process alive?
	e.GET("/health/ready", readinessHandler.Readiness) // readiness – are dependencies up?
	e.GET("/metrics", echoprometheus.NewHandler())

	return e
}
