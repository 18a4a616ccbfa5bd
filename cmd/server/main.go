package main

import (
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	sentryfiber "github.com/getsentry/sentry-go/fiber"

	"github.com/carelinkhq/carelink-backend/internal/config"
	"github.com/carelinkhq/carelink-backend/internal/database"
	"github.com/carelinkhq/carelink-backend/internal/gate"
	"github.com/carelinkhq/carelink-backend/internal/handlers"
	"github.com/carelinkhq/carelink-backend/internal/logging"
	"github.com/carelinkhq/carelink-backend/internal/middleware"
	"github.com/carelinkhq/carelink-backend/internal/resolver"
	"github.com/carelinkhq/carelink-backend/internal/roleapp"
	"github.com/carelinkhq/carelink-backend/internal/roleapp/doctor"
	"github.com/carelinkhq/carelink-backend/internal/roleapp/nurse"
	"github.com/carelinkhq/carelink-backend/internal/roleapp/patient"
	"github.com/carelinkhq/carelink-backend/internal/roleapp/pharmacist"
	"github.com/carelinkhq/carelink-backend/internal/roleapp/superadmin"
	"github.com/carelinkhq/carelink-backend/internal/routes"
	"github.com/carelinkhq/carelink-backend/internal/services"
	"github.com/gofiber/fiber/v2"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
)

func main() {
	// Structured logging (JSON to stdout)
	logging.Setup()

	cfg := config.Load()

	if cfg.JWTSecret == "" {
		slog.Error("JWT_SECRET environment variable is required")
		os.Exit(1)
	}
	if cfg.DBPassword == "" {
		slog.Error("DB_PASSWORD environment variable is required")
		os.Exit(1)
	}

	// Database
	if err := database.Connect(cfg); err != nil {
		slog.Error("database connection failed", "error", err)
		os.Exit(1)
	}

	// Migrate shared models
	if err := database.MigrateShared(); err != nil {
		slog.Error("shared migration failed", "error", err)
		os.Exit(1)
	}

	// PostgreSQL log handler (ERROR+ async batch)
	dbLogHandler := logging.NewDBHandler(database.DB)
	slog.SetDefault(slog.New(logging.NewMultiHandler(
		slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}),
		dbLogHandler,
	)))

	// Log cleanup (30-day retention)
	cleanupDone := make(chan struct{})
	logging.StartCleanup(database.DB, cleanupDone)

	// Role modules
	modules := []roleapp.Module{
		doctor.New(),
		nurse.New(),
		patient.New(),
		pharmacist.New(),
		superadmin.New(),
	}

	// Migrate module models
	for _, m := range modules {
		if models := m.Models(); len(models) > 0 {
			if err := database.MigrateModels(models); err != nil {
				slog.Error("module migration failed", "role", m.Role(), "error", err)
				os.Exit(1)
			}
			slog.Info("module migrated", "role", m.Role(), "models", len(models))
		}
	}

	// Role resolution + gates
	res := resolver.New(database.DB, cfg)
	edgeGate := gate.NewEdge(cfg, res)
	clientGate := gate.NewClient(res)

	// Services
	authService := services.NewAuthService(database.DB, cfg)
	roleService := services.NewRoleService(database.DB, modules)
	verificationService := services.NewVerificationService(database.DB)

	// Handlers
	authHandler := handlers.NewAuthHandler(authService, roleService, cfg)
	accessHandler := handlers.NewAccessHandler(cfg, clientGate, res)
	adminHandler := handlers.NewAdminHandler(verificationService)
	healthHandler := handlers.NewHealthHandler()
	legalHandler := handlers.NewLegalHandler()

	// Sentry error tracking
	if dsn := os.Getenv("SENTRY_DSN"); dsn != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:              dsn,
			EnableTracing:    true,
			TracesSampleRate: 0.2,
			Environment:      os.Getenv("APP_ENV"),
		}); err != nil {
			slog.Error("sentry init failed", "error", err)
		} else {
			defer sentry.Flush(2 * time.Second)
		}
	}

	// Fiber app
	app := fiber.New(fiber.Config{
		BodyLimit:    4 * 1024 * 1024,
		ErrorHandler: customErrorHandler,
	})

	// Sentry middleware
	app.Use(sentryfiber.New(sentryfiber.Options{
		Repanic:         true,
		WaitForDelivery: false,
	}))

	// Global middleware
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(fiberlogger.New(fiberlogger.Config{
		Format: "${time} | ${status} | ${latency} | ${ip} | ${method} | ${path}\n",
	}))
	app.Use(middleware.CORS(cfg))
	app.Use(func(c *fiber.Ctx) error {
		c.Set("X-Content-Type-Options", "nosniff")
		c.Set("X-Frame-Options", "DENY")
		c.Set("X-XSS-Protection", "1; mode=block")
		return c.Next()
	})
	app.Use(edgeGate.Handler())

	// Routes
	routes.Setup(app, cfg, database.DB, res, clientGate,
		authHandler, accessHandler, adminHandler, healthHandler, legalHandler, modules)

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		slog.Info("server starting", "port", cfg.Port)
		if err := app.Listen(":" + cfg.Port); err != nil {
			slog.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	<-quit
	slog.Info("shutting down server...")

	close(cleanupDone)
	dbLogHandler.Stop()
	sentry.Flush(2 * time.Second)

	if err := app.Shutdown(); err != nil {
		slog.Error("server shutdown error", "error", err)
	}

	// Close database connections
	if sqlDB, err := database.DB.DB(); err == nil {
		if err := sqlDB.Close(); err != nil {
			slog.Error("database close error", "error", err)
		}
	}

	slog.Info("server stopped")
}

func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal server error"
	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
		message = e.Message
	}

	// Only expose error details for client errors (4xx), not server errors (5xx)
	if code >= 500 {
		slog.Error("unhandled server error", "method", c.Method(), "path", c.Path(), "error", err.Error())
		message = "Internal server error"
	}

	return c.Status(code).JSON(fiber.Map{
		"error":   true,
		"message": message,
	})
}
