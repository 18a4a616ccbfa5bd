package superadmin

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

	counts := fiber.Map{}
	for _, role := range rbac.All() {
		var n int64
		h.db.Model(&models.User{}).Where("role = ?", role).Count(&n)
		counts[string(role)] = n
	}

	var pendingVerification int64
	h.db.Model(&models.User{}).
		Where("role <> '' AND role <> ? AND is_verified = ?", rbac.Patient, false).
		Count(&pendingVerification)

	var hospitals, pharmacies int64
	h.db.Model(&models.Hospital{}).Count(&hospitals)
	h.db.Model(&models.Pharmacy{}).Count(&pharmacies)

	return c.JSON(fiber.Map{
		"error":                false,
		"profile":              profile,
		"users_by_role":        counts,
		"pending_verification": pendingVerification,
		"hospital_count":       hospitals,
		"pharmacy_count":       pharmacies,
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
		AccessLevel string `json:"access_level"`
	}
	if err := c.BodyParser(&req); err != nil || req.AccessLevel == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": true, "message": "Access level is required",
		})
	}

	err = h.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&Profile{}).Where("user_id = ?", sess.UserID).
			Update("access_level", req.AccessLevel).Error; err != nil {
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

func (h *Handler) ListHospitals(c *fiber.Ctx) error {
	var hospitals []models.Hospital
	if err := h.db.Order("name asc").Find(&hospitals).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": true, "message": "Failed to retrieve hospitals",
		})
	}
	return c.JSON(fiber.Map{"error": false, "hospitals": hospitals})
}

func (h *Handler) CreateHospital(c *fiber.Ctx) error {
	var req struct {
		Name    string `json:"name"`
		Address string `json:"address"`
		City    string `json:"city"`
		Phone   string `json:"phone"`
	}
	if err := c.BodyParser(&req); err != nil || req.Name == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": true, "message": "Hospital name is required",
		})
	}

	hospital := models.Hospital{
		ID:      uuid.New(),
		Name:    req.Name,
		Address: req.Address,
		City:    req.City,
		Phone:   req.Phone,
	}
	if err := h.db.Create(&hospital).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": true, "message": "Failed to create hospital",
		})
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"error": false, "hospital": hospital})
}

func (h *Handler) UpdateHospital(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return invalidID(c)
	}

	var req struct {
		Name    string `json:"name"`
		Address string `json:"address"`
		City    string `json:"city"`
		Phone   string `json:"phone"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": true, "message": "Invalid request body",
		})
	}

	var hospital models.Hospital
	if err := h.db.First(&hospital, "id = ?", id).Error; err != nil {
		return notFound(c, "Hospital not found")
	}

	updates := map[string]interface{}{}
	if req.Name != "" {
		updates["name"] = req.Name
	}
	if req.Address != "" {
		updates["address"] = req.Address
	}
	if req.City != "" {
		updates["city"] = req.City
	}
	if req.Phone != "" {
		updates["phone"] = req.Phone
	}
	if len(updates) > 0 {
		if err := h.db.Model(&hospital).Updates(updates).Error; err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": true, "message": "Failed to update hospital",
			})
		}
	}
	return c.JSON(fiber.Map{"error": false, "hospital": hospital})
}

func (h *Handler) DeleteHospital(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return invalidID(c)
	}
	result := h.db.Delete(&models.Hospital{}, "id = ?", id)
	if result.Error != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": true, "message": "Failed to delete hospital",
		})
	}
	if result.RowsAffected == 0 {
		return notFound(c, "Hospital not found")
	}
	return c.JSON(fiber.Map{"error": false, "message": "Hospital deleted"})
}

func (h *Handler) ListPharmacies(c *fiber.Ctx) error {
	var pharmacies []models.Pharmacy
	if err := h.db.Order("name asc").Find(&pharmacies).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": true, "message": "Failed to retrieve pharmacies",
		})
	}
	return c.JSON(fiber.Map{"error": false, "pharmacies": pharmacies})
}

func (h *Handler) CreatePharmacy(c *fiber.Ctx) error {
	var req struct {
		Name    string `json:"name"`
		Address string `json:"address"`
		City    string `json:"city"`
		Phone   string `json:"phone"`
	}
	if err := c.BodyParser(&req); err != nil || req.Name == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": true, "message": "Pharmacy name is required",
		})
	}

	pharmacy := models.Pharmacy{
		ID:      uuid.New(),
		Name:    req.Name,
		Address: req.Address,
		City:    req.City,
		Phone:   req.Phone,
	}
	if err := h.db.Create(&pharmacy).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": true, "message": "Failed to create pharmacy",
		})
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"error": false, "pharmacy": pharmacy})
}

func (h *Handler) UpdatePharmacy(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return invalidID(c)
	}

	var req struct {
		Name    string `json:"name"`
		Address string `json:"address"`
		City    string `json:"city"`
		Phone   string `json:"phone"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": true, "message": "Invalid request body",
		})
	}

	var pharmacy models.Pharmacy
	if err := h.db.First(&pharmacy, "id = ?", id).Error; err != nil {
		return notFound(c, "Pharmacy not found")
	}

	updates := map[string]interface{}{}
	if req.Name != "" {
		updates["name"] = req.Name
	}
	if req.Address != "" {
		updates["address"] = req.Address
	}
	if req.City != "" {
		updates["city"] = req.City
	}
	if req.Phone != "" {
		updates["phone"] = req.Phone
	}
	if len(updates) > 0 {
		if err := h.db.Model(&pharmacy).Updates(updates).Error; err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": true, "message": "Failed to update pharmacy",
			})
		}
	}
	return c.JSON(fiber.Map{"error": false, "pharmacy": pharmacy})
}

func (h *Handler) DeletePharmacy(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return invalidID(c)
	}
	result := h.db.Delete(&models.Pharmacy{}, "id = ?", id)
	if result.Error != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": true, "message": "Failed to delete pharmacy",
		})
	}
	if result.RowsAffected == 0 {
		return notFound(c, "Pharmacy not found")
	}
	return c.JSON(fiber.Map{"error": false, "message": "Pharmacy deleted"})
}

func invalidID(c *fiber.Ctx) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"error": true, "message": "Invalid ID",
	})
}

func notFound(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
		"error": true, "message": msg,
	})
}

func unauthorized(c *fiber.Ctx) error {
	return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
		"error": true, "message": "Unauthorized",
	})
}
