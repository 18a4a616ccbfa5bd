package roleapp

import (
	"github.com/carelinkhq/carelink-backend/internal/models"
	"github.com/carelinkhq/carelink-backend/internal/session"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CurrentUser loads the caller's authoritative user row. Handlers use this
// instead of trusting the token snapshot.
func CurrentUser(c *fiber.Ctx, db *gorm.DB) (*models.User, error) {
	sess, err := session.FromCtx(c)
	if err != nil {
		return nil, err
	}
	var user models.User
	if err := db.First(&user, "id = ?", sess.UserID).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// VerifyStatus serves the /{role}/verify page: where the edge gate parks
// unverified professionals.
func VerifyStatus(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, err := CurrentUser(c, db)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": true, "message": "Unauthorized",
			})
		}
		message := "Your account is pending verification by an administrator."
		if user.IsVerified {
			message = "Your account is verified."
		}
		return c.JSON(fiber.Map{
			"error": false, "is_verified": user.IsVerified, "message": message,
		})
	}
}

// InactiveStatus serves the /{role}/in-active page for deactivated accounts.
func InactiveStatus(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, err := CurrentUser(c, db)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": true, "message": "Unauthorized",
			})
		}
		message := "Your account has been deactivated. Contact an administrator."
		if user.IsActive {
			message = "Your account is active."
		}
		return c.JSON(fiber.Map{
			"error": false, "is_active": user.IsActive, "message": message,
		})
	}
}

// CompleteProfileFlag flips profile_completed once the role-specific profile
// form has been saved. Runs inside the module's completion transaction.
func CompleteProfileFlag(tx *gorm.DB, userID uuid.UUID) error {
	return tx.Model(&models.User{}).
		Where("id = ?", userID).
		Update("profile_completed", true).Error
}
