package services

import (
	"testing"
	"time"

	"github.com/carelinkhq/carelink-backend/internal/config"
	"github.com/carelinkhq/carelink-backend/internal/dto"
	"github.com/carelinkhq/carelink-backend/internal/models"
	"github.com/carelinkhq/carelink-backend/internal/rbac"
	"github.com/carelinkhq/carelink-backend/internal/session"
	"github.com/stretchr/testify/assert"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("Failed to connect to test database: %v", err)
	}
	if err := db.AutoMigrate(&models.User{}, &models.UserRole{}, &models.RefreshToken{}); err != nil {
		t.Fatalf("Failed to migrate test database: %v", err)
	}
	return db
}

func testConfig() *config.Config {
	return &config.Config{
		JWTSecret:        "test-secret",
		JWTAccessExpiry:  15 * time.Minute,
		JWTRefreshExpiry: time.Hour,
		RoleHintTTL:      5 * time.Minute,
	}
}

func TestRegister(t *testing.T) {
	s := NewAuthService(setupTestDB(t), testConfig())

	resp, err := s.Register(&dto.RegisterRequest{
		Email:    "new@carelink.test",
		Password: "password123",
		FullName: "New User",
	})
	assert.NoError(t, err)
	assert.NotEmpty(t, resp.AccessToken)
	assert.NotEmpty(t, resp.RefreshToken)

	// Accounts start without a role; selection is a separate one-shot step.
	assert.Equal(t, rbac.Role(""), resp.User.Role)
	assert.False(t, resp.User.ProfileCompleted)
	assert.False(t, resp.User.IsVerified)
	assert.True(t, resp.User.IsActive)

	// The minted token must not carry a role claim either.
	sess, err := session.FromToken(resp.AccessToken, "test-secret")
	assert.NoError(t, err)
	assert.Equal(t, rbac.Role(""), sess.Meta.Role)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	s := NewAuthService(setupTestDB(t), testConfig())

	req := &dto.RegisterRequest{Email: "dup@carelink.test", Password: "password123"}
	_, err := s.Register(req)
	assert.NoError(t, err)

	_, err = s.Register(req)
	assert.ErrorIs(t, err, ErrEmailTaken)
}

func TestRegisterWeakPassword(t *testing.T) {
	s := NewAuthService(setupTestDB(t), testConfig())
	_, err := s.Register(&dto.RegisterRequest{Email: "weak@carelink.test", Password: "short"})
	assert.Error(t, err)
}

func TestLogin(t *testing.T) {
	s := NewAuthService(setupTestDB(t), testConfig())
	_, err := s.Register(&dto.RegisterRequest{Email: "login@carelink.test", Password: "password123"})
	assert.NoError(t, err)

	resp, err := s.Login(&dto.LoginRequest{Email: "login@carelink.test", Password: "password123"})
	assert.NoError(t, err)
	assert.NotEmpty(t, resp.AccessToken)

	_, err = s.Login(&dto.LoginRequest{Email: "login@carelink.test", Password: "wrong-password"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = s.Login(&dto.LoginRequest{Email: "nobody@carelink.test", Password: "password123"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestRefreshRotatesAndCatchesUp(t *testing.T) {
	db := setupTestDB(t)
	s := NewAuthService(db, testConfig())

	reg, err := s.Register(&dto.RegisterRequest{Email: "r@carelink.test", Password: "password123"})
	assert.NoError(t, err)

	// Simulate role selection after the first token was minted.
	err = db.Model(&models.User{}).
		Where("id = ?", reg.User.ID).
		Updates(map[string]interface{}{"role": rbac.Patient, "is_verified": true}).Error
	assert.NoError(t, err)

	refreshed, err := s.Refresh(&dto.RefreshRequest{RefreshToken: reg.RefreshToken})
	assert.NoError(t, err)

	// The new access token is minted from the current row: the stale
	// snapshot catches up here.
	sess, err := session.FromToken(refreshed.AccessToken, "test-secret")
	assert.NoError(t, err)
	assert.Equal(t, rbac.Patient, sess.Meta.Role)
	assert.True(t, sess.Meta.IsVerified)

	// Rotation: the old refresh token is burned.
	_, err = s.Refresh(&dto.RefreshRequest{RefreshToken: reg.RefreshToken})
	assert.ErrorIs(t, err, ErrInvalidToken)

	// The new one still works.
	_, err = s.Refresh(&dto.RefreshRequest{RefreshToken: refreshed.RefreshToken})
	assert.NoError(t, err)
}

func TestRefreshRejectsUnknownToken(t *testing.T) {
	s := NewAuthService(setupTestDB(t), testConfig())
	_, err := s.Refresh(&dto.RefreshRequest{RefreshToken: "never-issued"})
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestLogoutRevokesRefreshToken(t *testing.T) {
	s := NewAuthService(setupTestDB(t), testConfig())

	reg, err := s.Register(&dto.RegisterRequest{Email: "out@carelink.test", Password: "password123"})
	assert.NoError(t, err)

	assert.NoError(t, s.Logout(&dto.LogoutRequest{RefreshToken: reg.RefreshToken}))

	_, err = s.Refresh(&dto.RefreshRequest{RefreshToken: reg.RefreshToken})
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestCurrentUserReadsDatabase(t *testing.T) {
	db := setupTestDB(t)
	s := NewAuthService(db, testConfig())

	reg, err := s.Register(&dto.RegisterRequest{Email: "me@carelink.test", Password: "password123"})
	assert.NoError(t, err)

	// The DB is authoritative, not whatever snapshot the caller holds.
	err = db.Model(&models.User{}).Where("id = ?", reg.User.ID).Update("role", rbac.Nurse).Error
	assert.NoError(t, err)

	me, err := s.CurrentUser(reg.User.ID)
	assert.NoError(t, err)
	assert.Equal(t, rbac.Nurse, me.Role)
}
