package pharmacist

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	StatusPending   = "pending"
	StatusDispensed = "dispensed"
)

type Profile struct {
	ID            uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	UserID        uuid.UUID      `gorm:"type:uuid;not null;uniqueIndex" json:"user_id"`
	LicenseNumber string         `gorm:"size:100" json:"license_number"`
	PharmacyID    *uuid.UUID     `gorm:"type:uuid;index" json:"pharmacy_id,omitempty"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`
}

// Prescription is written by doctors and dispensed by pharmacists; patients
// can read their own.
type Prescription struct {
	ID           uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	PatientID    uuid.UUID      `gorm:"type:uuid;not null;index" json:"patient_id"`
	DoctorID     uuid.UUID      `gorm:"type:uuid;not null;index" json:"doctor_id"`
	Medication   string         `gorm:"not null;size:255" json:"medication"`
	Dosage       string         `gorm:"size:100" json:"dosage"`
	Instructions string         `gorm:"type:text" json:"instructions"`
	Status       string         `gorm:"size:20;default:'pending';index" json:"status"`
	DispensedBy  *uuid.UUID     `gorm:"type:uuid" json:"dispensed_by,omitempty"`
	DispensedAt  *time.Time     `json:"dispensed_at,omitempty"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
}
