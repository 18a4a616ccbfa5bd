package patient

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Profile holds the patient-specific attributes, created with placeholder
// values at role selection and filled in via the completion form.
type Profile struct {
	ID               uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	UserID           uuid.UUID      `gorm:"type:uuid;not null;uniqueIndex" json:"user_id"`
	DateOfBirth      *time.Time     `gorm:"type:date" json:"date_of_birth,omitempty"`
	BloodType        string         `gorm:"size:10" json:"blood_type"`
	Allergies        datatypes.JSON `gorm:"type:jsonb;default:'[]'" json:"allergies"`
	EmergencyContact string         `gorm:"size:255" json:"emergency_contact"`
	CreatedAt        time.Time      `json:"created_at"`
	UpdatedAt        time.Time      `json:"updated_at"`
	DeletedAt        gorm.DeletedAt `gorm:"index" json:"-"`
}

// MedicalRecord is written by doctors and readable by the patient it
// belongs to.
type MedicalRecord struct {
	ID        uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	PatientID uuid.UUID      `gorm:"type:uuid;not null;index" json:"patient_id"`
	DoctorID  uuid.UUID      `gorm:"type:uuid;not null;index" json:"doctor_id"`
	Diagnosis string         `gorm:"size:500" json:"diagnosis"`
	Notes     string         `gorm:"type:text" json:"notes"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}
