package roleapp

import (
	"github.com/carelinkhq/carelink-backend/internal/config"
	"github.com/carelinkhq/carelink-backend/internal/rbac"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Pending is the placeholder written into profile fields at role selection,
// replaced when the user completes the profile form.
const Pending = "PENDING"

// Module is the per-role application area. Each role contributes its profile
// model, a placeholder-profile constructor used at role selection, and the
// routes mounted under /{role}/ behind the JWT and role-gate middleware.
type Module interface {
	// Role returns the role this module serves.
	Role() rbac.Role

	// Models returns the GORM model pointers for AutoMigrate.
	Models() []interface{}

	// NewPendingProfile builds the profile row created at role selection,
	// populated with placeholder values until the user completes it.
	NewPendingProfile(userID uuid.UUID) interface{}

	// RegisterRoutes mounts the module's routes. The router is already
	// prefixed with /{role} and carries JWT + role-gate middleware.
	RegisterRoutes(router fiber.Router, db *gorm.DB, cfg *config.Config)
}

// ByRole finds the module serving a role.
func ByRole(modules []Module, role rbac.Role) (Module, bool) {
	for _, m := range modules {
		if m.Role() == role {
			return m, true
		}
	}
	return nil, false
}
