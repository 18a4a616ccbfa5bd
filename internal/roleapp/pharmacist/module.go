package pharmacist

import (
	"github.com/carelinkhq/carelink-backend/internal/config"
	"github.com/carelinkhq/carelink-backend/internal/rbac"
	"github.com/carelinkhq/carelink-backend/internal/roleapp"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Module struct{}

func New() *Module { return &Module{} }

func (m *Module) Role() rbac.Role { return rbac.Pharmacist }

func (m *Module) Models() []interface{} {
	return []interface{}{
		&Profile{},
		&Prescription{},
	}
}

func (m *Module) NewPendingProfile(userID uuid.UUID) interface{} {
	return &Profile{
		ID:            uuid.New(),
		UserID:        userID,
		LicenseNumber: roleapp.Pending,
	}
}

func (m *Module) RegisterRoutes(router fiber.Router, db *gorm.DB, cfg *config.Config) {
	h := NewHandler(db)

	router.Get("/dashboard", h.Dashboard)
	router.Get("/complete-profile", h.GetProfile)
	router.Post("/complete-profile", h.CompleteProfile)
	router.Get("/verify", roleapp.VerifyStatus(db))
	router.Get("/in-active", roleapp.InactiveStatus(db))

	router.Get("/prescriptions", h.ListPrescriptions)
	router.Put("/prescriptions/:id/dispense", h.Dispense)
}
