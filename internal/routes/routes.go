package routes

import (
	"time"

	"github.com/carelinkhq/carelink-backend/internal/config"
	"github.com/carelinkhq/carelink-backend/internal/gate"
	"github.com/carelinkhq/carelink-backend/internal/handlers"
	"github.com/carelinkhq/carelink-backend/internal/middleware"
	"github.com/carelinkhq/carelink-backend/internal/resolver"
	"github.com/carelinkhq/carelink-backend/internal/roleapp"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"gorm.io/gorm"
)

func Setup(
	app *fiber.App,
	cfg *config.Config,
	db *gorm.DB,
	res *resolver.Resolver,
	clientGate *gate.Client,
	authHandler *handlers.AuthHandler,
	accessHandler *handlers.AccessHandler,
	adminHandler *handlers.AdminHandler,
	healthHandler *handlers.HealthHandler,
	legalHandler *handlers.LegalHandler,
	modules []roleapp.Module,
) {
	app.Get("/", healthHandler.Root)
	app.Get("/unauthorized", accessHandler.Unauthorized)

	api := app.Group("/api")

	// General API rate limiter: 60 req/min per IP
	api.Use(limiter.New(limiter.Config{
		Max:               60,
		Expiration:        1 * time.Minute,
		LimiterMiddleware: limiter.SlidingWindow{},
		KeyGenerator:      func(c *fiber.Ctx) string { return c.IP() },
	}))

	api.Get("/health", healthHandler.Check)

	api.Get("/legal/privacy", legalHandler.PrivacyPolicy)
	api.Get("/legal/terms", legalHandler.TermsOfService)

	// Auth — public, with a stricter rate limit: 10 req/min per IP
	auth := api.Group("/auth")
	auth.Use(limiter.New(limiter.Config{
		Max:               10,
		Expiration:        1 * time.Minute,
		LimiterMiddleware: limiter.SlidingWindow{},
		KeyGenerator:      func(c *fiber.Ctx) string { return c.IP() },
	}))
	auth.Post("/register", authHandler.Register)
	auth.Post("/login", authHandler.Login)
	auth.Post("/refresh", authHandler.Refresh)

	// Protected auth routes — JWT applied per-route so the public
	// auth endpoints above stay reachable without a token.
	api.Post("/auth/logout", middleware.JWTProtected(cfg), authHandler.Logout)
	api.Get("/auth/me", middleware.JWTProtected(cfg), authHandler.Me)
	api.Post("/auth/select-role", middleware.JWTProtected(cfg), authHandler.SelectRole)

	api.Get("/access/check", middleware.JWTProtected(cfg), accessHandler.Check)

	// Admin panel (token header or super-admin session)
	admin := api.Group("/admin", middleware.AdminRequired(cfg, res))
	admin.Get("/verifications", adminHandler.ListVerifications)
	admin.Put("/verifications/:id", adminHandler.ActionVerification)
	admin.Put("/users/:id/active", adminHandler.SetUserActive)
	admin.Get("/users", adminHandler.ListUsers)

	// Role areas: /{role}/... behind JWT plus the client-side gate.
	for _, m := range modules {
		group := app.Group("/"+string(m.Role()),
			middleware.JWTProtected(cfg),
			middleware.RoleRequired(clientGate, m.Role()),
		)
		m.RegisterRoutes(group, db, cfg)
	}
}
