package patient

import (
	"encoding/json"
	"time"

	"github.com/carelinkhq/carelink-backend/internal/roleapp"
	"github.com/carelinkhq/carelink-backend/internal/roleapp/pharmacist"
	"github.com/carelinkhq/carelink-backend/internal/session"
	"github.com/gofiber/fiber/v2"
	"gorm.io/datatypes"
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

	var recordCount int64
	h.db.Model(&MedicalRecord{}).Where("patient_id = ?", sess.UserID).Count(&recordCount)
	var openPrescriptions int64
	h.db.Model(&pharmacist.Prescription{}).
		Where("patient_id = ? AND status = ?", sess.UserID, pharmacist.StatusPending).
		Count(&openPrescriptions)

	return c.JSON(fiber.Map{
		"error":              false,
		"profile":            profile,
		"record_count":       recordCount,
		"open_prescriptions": openPrescriptions,
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

// CompleteProfile fills in the placeholder profile and flips
// profile_completed, releasing the edge gate's complete-profile redirect.
func (h *Handler) CompleteProfile(c *fiber.Ctx) error {
	sess, err := session.FromCtx(c)
	if err != nil {
		return unauthorized(c)
	}

	var req struct {
		DateOfBirth      string   `json:"date_of_birth"`
		BloodType        string   `json:"blood_type"`
		Allergies        []string `json:"allergies"`
		EmergencyContact string   `json:"emergency_contact"`
	}
	if err := c.BodyParser(&req); err != nil || req.BloodType == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": true, "message": "Blood type is required",
		})
	}

	dob, err := time.Parse("2006-01-02", req.DateOfBirth)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": true, "message": "date_of_birth must be YYYY-MM-DD",
		})
	}

	allergies, _ := json.Marshal(req.Allergies)

	err = h.db.Transaction(func(tx *gorm.DB) error {
		updates := map[string]interface{}{
			"date_of_birth":     dob,
			"blood_type":        req.BloodType,
			"allergies":         datatypes.JSON(allergies),
			"emergency_contact": req.EmergencyContact,
		}
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

func (h *Handler) ListRecords(c *fiber.Ctx) error {
	sess, err := session.FromCtx(c)
	if err != nil {
		return unauthorized(c)
	}

	var records []MedicalRecord
	if err := h.db.Where("patient_id = ?", sess.UserID).Order("created_at desc").Find(&records).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": true, "message": "Failed to retrieve records",
		})
	}
	return c.JSON(fiber.Map{"error": false, "records": records})
}

func (h *Handler) ListPrescriptions(c *fiber.Ctx) error {
	sess, err := session.FromCtx(c)
	if err != nil {
		return unauthorized(c)
	}

	var prescriptions []pharmacist.Prescription
	if err := h.db.Where("patient_id = ?", sess.UserID).Order("created_at desc").Find(&prescriptions).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": true, "message": "Failed to retrieve prescriptions",
		})
	}
	return c.JSON(fiber.Map{"error": false, "prescriptions": prescriptions})
}

func unauthorized(c *fiber.Ctx) error {
	return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
		"error": true, "message": "Unauthorized",
	})
}
