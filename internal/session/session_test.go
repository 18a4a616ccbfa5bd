package session

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/carelinkhq/carelink-backend/internal/models"
	"github.com/carelinkhq/carelink-backend/internal/rbac"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

const testSecret = "test-secret"

func signToken(t *testing.T, claims jwt.MapClaims, secret string) string {
	claims["exp"] = time.Now().Add(time.Hour).Unix()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("Failed to sign token: %v", err)
	}
	return signed
}

func TestClaimsOmitsRoleWhenUnset(t *testing.T) {
	u := &models.User{ID: uuid.New(), Email: "new@carelink.test", IsActive: true}
	claims := Claims(u)

	_, present := claims["role"]
	assert.False(t, present, "role claim must be absent, not empty")

	u.Role = rbac.Doctor
	claims = Claims(u)
	assert.Equal(t, "doctor", claims["role"])
}

func TestFromClaimsRoundTrip(t *testing.T) {
	u := &models.User{
		ID:               uuid.New(),
		Email:            "doc@carelink.test",
		FullName:         "Dr. Grey",
		Role:             rbac.Doctor,
		ProfileCompleted: true,
		IsVerified:       true,
		IsActive:         true,
	}

	sess, err := FromClaims(Claims(u))
	assert.NoError(t, err)
	assert.Equal(t, u.ID, sess.UserID)
	assert.Equal(t, u.Email, sess.Email)
	assert.Equal(t, rbac.Doctor, sess.Meta.Role)
	assert.True(t, sess.Meta.ProfileCompleted)
	assert.True(t, sess.Meta.IsVerified)
	assert.True(t, sess.Meta.IsActive)
}

func TestFromClaimsDefaults(t *testing.T) {
	// A token minted before the is_active flag existed has no claim for it;
	// absence must read as active, not suspended.
	sess, err := FromClaims(jwt.MapClaims{"sub": uuid.New().String()})
	assert.NoError(t, err)
	assert.True(t, sess.Meta.IsActive)
	assert.False(t, sess.Meta.IsVerified)
	assert.False(t, sess.Meta.ProfileCompleted)
	assert.Equal(t, rbac.Role(""), sess.Meta.Role)
}

func TestFromClaimsRejectsBadSubject(t *testing.T) {
	_, err := FromClaims(jwt.MapClaims{"sub": "not-a-uuid"})
	assert.ErrorIs(t, err, ErrInvalidClaims)

	_, err = FromClaims(jwt.MapClaims{})
	assert.ErrorIs(t, err, ErrInvalidClaims)
}

func TestFromClaimsIgnoresUnknownRole(t *testing.T) {
	sess, err := FromClaims(jwt.MapClaims{
		"sub":  uuid.New().String(),
		"role": "superuser",
	})
	assert.NoError(t, err)
	assert.Equal(t, rbac.Role(""), sess.Meta.Role)
}

func TestFromTokenRejectsBadSignature(t *testing.T) {
	token := signToken(t, jwt.MapClaims{"sub": uuid.New().String()}, "wrong-secret")
	_, err := FromToken(token, testSecret)
	assert.ErrorIs(t, err, ErrInvalidClaims)
}

func TestFromRequest(t *testing.T) {
	userID := uuid.New()
	token := signToken(t, jwt.MapClaims{"sub": userID.String(), "role": "nurse"}, testSecret)

	app := fiber.New()
	var sess *Session
	app.Get("/probe", func(c *fiber.Ctx) error {
		sess = FromRequest(c, testSecret)
		return c.SendStatus(fiber.StatusOK)
	})

	// Bearer header
	req := httptest.NewRequest(http.MethodGet, "/probe", nil)
	req.Header.Set(fiber.HeaderAuthorization, "Bearer "+token)
	_, err := app.Test(req)
	assert.NoError(t, err)
	assert.NotNil(t, sess)
	assert.Equal(t, userID, sess.UserID)
	assert.Equal(t, rbac.Nurse, sess.Meta.Role)

	// Session cookie
	sess = nil
	req = httptest.NewRequest(http.MethodGet, "/probe", nil)
	req.AddCookie(&http.Cookie{Name: CookieName, Value: token})
	_, err = app.Test(req)
	assert.NoError(t, err)
	assert.NotNil(t, sess)
	assert.Equal(t, userID, sess.UserID)

	// No token at all: nil, never an error
	sess = nil
	req = httptest.NewRequest(http.MethodGet, "/probe", nil)
	_, err = app.Test(req)
	assert.NoError(t, err)
	assert.Nil(t, sess)

	// Garbage token: treated the same as no session
	req = httptest.NewRequest(http.MethodGet, "/probe", nil)
	req.Header.Set(fiber.HeaderAuthorization, "Bearer garbage")
	_, err = app.Test(req)
	assert.NoError(t, err)
	assert.Nil(t, sess)
}
