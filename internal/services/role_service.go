package services

import (
	"errors"
	"fmt"

	"github.com/carelinkhq/carelink-backend/internal/models"
	"github.com/carelinkhq/carelink-backend/internal/rbac"
	"github.com/carelinkhq/carelink-backend/internal/roleapp"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	ErrUnknownRole         = errors.New("unknown role")
	ErrRoleAlreadyAssigned = errors.New("role already assigned")
)

// RoleService owns the one-shot role assignment. One transaction writes the
// durable user_roles row, the placeholder role profile, and the identity
// metadata; the caller's session snapshot stays stale until token refresh,
// which the resolver's fallback chain is built for.
type RoleService struct {
	db      *gorm.DB
	modules []roleapp.Module
}

func NewRoleService(db *gorm.DB, modules []roleapp.Module) *RoleService {
	return &RoleService{db: db, modules: modules}
}

func (s *RoleService) SelectRole(userID uuid.UUID, roleStr string) (*models.User, error) {
	role, ok := rbac.Parse(roleStr)
	if !ok {
		return nil, ErrUnknownRole
	}

	var user models.User
	if err := s.db.First(&user, "id = ?", userID).Error; err != nil {
		return nil, ErrUserNotFound
	}
	if user.Role != "" {
		return nil, ErrRoleAlreadyAssigned
	}
	var existing models.UserRole
	if err := s.db.Where("user_id = ?", userID).First(&existing).Error; err == nil {
		return nil, ErrRoleAlreadyAssigned
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		assignment := models.UserRole{
			ID:     uuid.New(),
			UserID: userID,
			Role:   role,
		}
		if err := tx.Create(&assignment).Error; err != nil {
			return fmt.Errorf("failed to store role assignment: %w", err)
		}

		if module, ok := roleapp.ByRole(s.modules, role); ok {
			if err := tx.Create(module.NewPendingProfile(userID)).Error; err != nil {
				return fmt.Errorf("failed to create role profile: %w", err)
			}
		}

		updates := map[string]interface{}{
			"role": role,
		}
		if role.VerifiedByDefault() {
			updates["is_verified"] = true
		}
		return tx.Model(&user).Updates(updates).Error
	})
	if err != nil {
		return nil, err
	}

	user.Role = role
	if role.VerifiedByDefault() {
		user.IsVerified = true
	}
	return &user, nil
}
