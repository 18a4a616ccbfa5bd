package services

import (
	"log/slog"

	"github.com/carelinkhq/carelink-backend/internal/models"
	"github.com/carelinkhq/carelink-backend/internal/rbac"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// VerificationService backs the admin panel: reviewing pending professional
// accounts and toggling account activation.
type VerificationService struct {
	db *gorm.DB
}

func NewVerificationService(db *gorm.DB) *VerificationService {
	return &VerificationService{db: db}
}

// Pending lists professional accounts awaiting verification. Patients never
// appear here; they are verified at role selection.
func (s *VerificationService) Pending() ([]models.User, error) {
	var users []models.User
	err := s.db.
		Where("role <> '' AND role <> ? AND is_verified = false", rbac.Patient).
		Order("created_at asc").
		Find(&users).Error
	return users, err
}

// Action approves or rejects a pending verification. Approval marks the
// account verified; rejection deactivates it pending manual review.
func (s *VerificationService) Action(userID uuid.UUID, approve bool, note string) (*models.User, error) {
	var user models.User
	if err := s.db.First(&user, "id = ?", userID).Error; err != nil {
		return nil, ErrUserNotFound
	}

	updates := map[string]interface{}{}
	if approve {
		updates["is_verified"] = true
	} else {
		updates["is_active"] = false
	}
	if err := s.db.Model(&user).Updates(updates).Error; err != nil {
		return nil, err
	}

	slog.Info("verification actioned",
		"user_id", userID.String(), "role", string(user.Role),
		"approved", approve, "note", note)

	if approve {
		user.IsVerified = true
	} else {
		user.IsActive = false
	}
	return &user, nil
}

func (s *VerificationService) SetActive(userID uuid.UUID, active bool) (*models.User, error) {
	var user models.User
	if err := s.db.First(&user, "id = ?", userID).Error; err != nil {
		return nil, ErrUserNotFound
	}
	if err := s.db.Model(&user).Update("is_active", active).Error; err != nil {
		return nil, err
	}
	user.IsActive = active
	return &user, nil
}

// ListUsers returns accounts, optionally filtered by role.
func (s *VerificationService) ListUsers(roleFilter string) ([]models.User, error) {
	q := s.db.Order("created_at desc")
	if roleFilter != "" {
		role, ok := rbac.Parse(roleFilter)
		if !ok {
			return nil, ErrUnknownRole
		}
		q = q.Where("role = ?", role)
	}
	var users []models.User
	err := q.Find(&users).Error
	return users, err
}
