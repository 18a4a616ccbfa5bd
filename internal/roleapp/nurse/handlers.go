package nurse

import (
	"github.com/carelinkhq/carelink-backend/internal/models"
	"github.com/carelinkhq/carelink-backend/internal/rbac"
	"github.com/carelinkhq/carelink-backend/internal/roleapp"
	"github.com/carelinkhq/carelink-backend/internal/session"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Handler struct {
	db *gorm.DB
}

func NewHandler(db *gorm.DB) *Handler {
	return &Handler{db: db}
}

func (h *Handler) Dashboard(c *fiber.Ctx) error {
	sess, err := session.FromCtx(c)
	if err != nil {
		return unauthorized(c)
	}

	var profile Profile
	if err := h.db.Where("user_id = ?", sess.UserID).First(&profile).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": true, "message": "Profile not found",
		})
	}

	var patientCount int64
	h.db.Model(&models.User{}).Where("role = ?", rbac.Patient).Count(&patientCount)

	return c.JSON(fiber.Map{
		"error":         false,
		"profile":       profile,
		"patient_count": patientCount,
	})
}

func (h *Handler) GetProfile(c *fiber.Ctx) error {
	sess, err := session.FromCtx(c)
	if err != nil {
		return unauthorized(c)
	}
	var profile Profile
	if err := h.db.Where("user_id = ?", sess.UserID).First(&profile).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": true, "message": "Profile not found",
		})
	}
	return c.JSON(fiber.Map{"error": false, "profile": profile})
}

func (h *Handler) CompleteProfile(c *fiber.Ctx) error {
	sess, err := session.FromCtx(c)
	if err != nil {
		return unauthorized(c)
	}

	var req struct {
		LicenseNumber string `json:"license_number"`
		Department    string `json:"department"`
		HospitalID    string `json:"hospital_id"`
	}
	if err := c.BodyParser(&req); err != nil || req.LicenseNumber == "" || req.Department == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": true, "message": "License number and department are required",
		})
	}

	updates := map[string]interface{}{
		"license_number": req.LicenseNumber,
		"department":     req.Department,
	}
	if req.HospitalID != "" {
		hospitalID, err := uuid.Parse(req.HospitalID)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": true, "message": "Invalid hospital ID",
			})
		}
		updates["hospital_id"] = hospitalID
	}

	err = h.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&Profile{}).Where("user_id = ?", sess.UserID).Updates(updates).Error; err != nil {
			return err
		}
		return roleapp.CompleteProfileFlag(tx, sess.UserID)
	})
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": true, "message": "Failed to complete profile",
		})
	}

	return c.JSON(fiber.Map{
		"error":   false,
		"message": "Profile completed; refresh your token to update the session",
	})
}

func (h *Handler) ListPatients(c *fiber.Ctx) error {
	var patients []models.User
	if err := h.db.Where("role = ?", rbac.Patient).Order("full_name asc").Find(&patients).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": true, "message": "Failed to retrieve patients",
		})
	}
	return c.JSON(fiber.Map{"error": false, "patients": patients})
}

func unauthorized(c *fiber.Ctx) error {
	return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
		"error": true, "message": "Unauthorized",
	})
}
