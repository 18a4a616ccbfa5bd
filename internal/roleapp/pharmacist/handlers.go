package pharmacist

import (
	"time"

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

	var pending, dispensed int64
	h.db.Model(&Prescription{}).Where("status = ?", StatusPending).Count(&pending)
	h.db.Model(&Prescription{}).Where("dispensed_by = ?", sess.UserID).Count(&dispensed)

	return c.JSON(fiber.Map{
		"error":                 false,
		"profile":               profile,
		"pending_prescriptions": pending,
		"dispensed_by_me":       dispensed,
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
		PharmacyID    string `json:"pharmacy_id"`
	}
	if err := c.BodyParser(&req); err != nil || req.LicenseNumber == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": true, "message": "License number is required",
		})
	}

	updates := map[string]interface{}{"license_number": req.LicenseNumber}
	if req.PharmacyID != "" {
		pharmacyID, err := uuid.Parse(req.PharmacyID)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": true, "message": "Invalid pharmacy ID",
			})
		}
		updates["pharmacy_id"] = pharmacyID
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

func (h *Handler) ListPrescriptions(c *fiber.Ctx) error {
	q := h.db.Order("created_at desc")
	if status := c.Query("status"); status != "" {
		q = q.Where("status = ?", status)
	}

	var prescriptions []Prescription
	if err := q.Find(&prescriptions).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": true, "message": "Failed to retrieve prescriptions",
		})
	}
	return c.JSON(fiber.Map{"error": false, "prescriptions": prescriptions})
}

func (h *Handler) Dispense(c *fiber.Ctx) error {
	sess, err := session.FromCtx(c)
	if err != nil {
		return unauthorized(c)
	}

	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": true, "message": "Invalid prescription ID",
		})
	}

	var prescription Prescription
	if err := h.db.First(&prescription, "id = ?", id).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": true, "message": "Prescription not found",
		})
	}
	if prescription.Status == StatusDispensed {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"error": true, "message": "Prescription already dispensed",
		})
	}

	now := time.Now()
	updates := map[string]interface{}{
		"status":       StatusDispensed,
		"dispensed_by": sess.UserID,
		"dispensed_at": now,
	}
	if err := h.db.Model(&prescription).Updates(updates).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": true, "message": "Failed to dispense prescription",
		})
	}

	prescription.Status = StatusDispensed
	prescription.DispensedBy = &sess.UserID
	prescription.DispensedAt = &now
	return c.JSON(fiber.Map{"error": false, "prescription": prescription})
}

func unauthorized(c *fiber.Ctx) error {
	return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
		"error": true, "message": "Unauthorized",
	})
}
