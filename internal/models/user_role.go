package models

import (
	"time"

	"github.com/carelinkhq/carelink-backend/internal/rbac"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// UserRole is the durable role assignment, written once at role selection.
// It is the fallback source when a session's metadata snapshot predates the
// assignment (the snapshot only catches up on token refresh). At most one row
// per user; when both disagree, the users table wins once its role is set.
type UserRole struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex" json:"user_id"`
	Role      rbac.Role `gorm:"size:20;not null" json:"role"`
	CreatedAt time.Time `json:"created_at"`
	User      User      `gorm:"foreignKey:UserID" json:"-"`
}

func (ur *UserRole) BeforeCreate(tx *gorm.DB) error {
	if ur.ID == uuid.Nil {
		ur.ID = uuid.New()
	}
	return nil
}
