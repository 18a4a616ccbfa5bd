package models

import (
	"time"

	"github.com/carelinkhq/carelink-backend/internal/rbac"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User is the identity record. The account-state flags that used to live in a
// loosely typed metadata bag are explicit columns here; only Role keeps the
// "absent" state (empty string = not chosen yet).
type User struct {
	ID               uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	Email            string         `gorm:"not null;size:255;uniqueIndex" json:"email"`
	Password         string         `gorm:"not null" json:"-"`
	FullName         string         `gorm:"size:255" json:"full_name"`
	Role             rbac.Role      `gorm:"size:20;index" json:"role,omitempty"`
	ProfileCompleted bool           `gorm:"default:false" json:"profile_completed"`
	IsVerified       bool           `gorm:"default:false" json:"is_verified"`
	IsActive         bool           `gorm:"default:true" json:"is_active"`
	CreatedAt        time.Time      `json:"created_at"`
	UpdatedAt        time.Time      `json:"updated_at"`
	DeletedAt        gorm.DeletedAt `gorm:"index" json:"-"`
}

// BeforeCreate ensures UUID is set before creation
func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}
