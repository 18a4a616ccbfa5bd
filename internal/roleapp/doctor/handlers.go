package doctor

import (
	"time"

	"github.com/carelinkhq/carelink-backend/internal/models"
	"github.com/carelinkhq/carelink-backend/internal/rbac"
	"github.com/carelinkhq/carelink-backend/internal/roleapp"
	"github.com/carelinkhq/carelink-backend/internal/roleapp/patient"
	"github.com/carelinkhq/carelink-backend/internal/roleapp/pharmacist"
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
	var myRecords int64
	h.db.Model(&patient.MedicalRecord{}).Where("doctor_id = ?", sess.UserID).Count(&myRecords)

	return c.JSON(fiber.Map{
		"error":         false,
		"profile":       profile,
		"patient_count": patientCount,
		"records_by_me": myRecords,
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
		LicenseNumber  string `json:"license_number"`
		Specialization string `json:"specialization"`
		HospitalID     string `json:"hospital_id"`
		DateOfBirth    string `json:"date_of_birth"`
	}
	if err := c.BodyParser(&req); err != nil || req.LicenseNumber == "" || req.Specialization == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": true, "message": "License number and specialization are required",
		})
	}

	updates := map[string]interface{}{
		"license_number": req.LicenseNumber,
		"specialization": req.Specialization,
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
	if req.DateOfBirth != "" {
		dob, err := time.Parse("2006-01-02", req.DateOfBirth)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": true, "message": "date_of_birth must be YYYY-MM-DD",
			})
		}
		updates["date_of_birth"] = dob
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

func (h *Handler) ListPatientRecords(c *fiber.Ctx) error {
	patientID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": true, "message": "Invalid patient ID",
		})
	}

	var records []patient.MedicalRecord
	if err := h.db.Where("patient_id = ?", patientID).Order("created_at desc").Find(&records).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": true, "message": "Failed to retrieve records",
		})
	}
	return c.JSON(fiber.Map{"error": false, "records": records})
}

func (h *Handler) CreateRecord(c *fiber.Ctx) error {
	sess, err := session.FromCtx(c)
	if err != nil {
		return unauthorized(c)
	}

	patientID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": true, "message": "Invalid patient ID",
		})
	}
	if err := h.requirePatient(patientID); err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": true, "message": "Patient not found",
		})
	}

	var req struct {
		Diagnosis string `json:"diagnosis"`
		Notes     string `json:"notes"`
	}
	if err := c.BodyParser(&req); err != nil || req.Diagnosis == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": true, "message": "Diagnosis is required",
		})
	}

	record := patient.MedicalRecord{
		ID:        uuid.New(),
		PatientID: patientID,
		DoctorID:  sess.UserID,
		Diagnosis: req.Diagnosis,
		Notes:     req.Notes,
	}
	if err := h.db.Create(&record).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": true, "message": "Failed to create record",
		})
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"error": false, "record": record})
}

func (h *Handler) CreatePrescription(c *fiber.Ctx) error {
	sess, err := session.FromCtx(c)
	if err != nil {
		return unauthorized(c)
	}

	var req struct {
		PatientID    string `json:"patient_id"`
		Medication   string `json:"medication"`
		Dosage       string `json:"dosage"`
		Instructions string `json:"instructions"`
	}
	if err := c.BodyParser(&req); err != nil || req.Medication == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": true, "message": "Patient ID and medication are required",
		})
	}
	patientID, err := uuid.Parse(req.PatientID)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": true, "message": "Invalid patient ID",
		})
	}
	if err := h.requirePatient(patientID); err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": true, "message": "Patient not found",
		})
	}

	prescription := pharmacist.Prescription{
		ID:           uuid.New(),
		PatientID:    patientID,
		DoctorID:     sess.UserID,
		Medication:   req.Medication,
		Dosage:       req.Dosage,
		Instructions: req.Instructions,
		Status:       pharmacist.StatusPending,
	}
	if err := h.db.Create(&prescription).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": true, "message": "Failed to create prescription",
		})
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"error": false, "prescription": prescription})
}

func (h *Handler) requirePatient(patientID uuid.UUID) error {
	var count int64
	h.db.Model(&models.User{}).
		Where("id = ? AND role = ?", patientID, rbac.Patient).
		Count(&count)
	if count == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func unauthorized(c *fiber.Ctx) error {
	return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
		"error": true, "message": "Unauthorized",
	})
}
