package session

import (
	"errors"
	"strings"

	"github.com/carelinkhq/carelink-backend/internal/models"
	"github.com/carelinkhq/carelink-backend/internal/rbac"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// CookieName is the session cookie set by browser clients; API clients send
// the same token as a bearer header instead.
const CookieName = "session"

var (
	ErrNoToken       = errors.New("no token in context")
	ErrInvalidClaims = errors.New("invalid claims")
)

// Metadata is the typed account-state snapshot embedded in access-token
// claims at mint time. It can lag behind the users table until the client
// refreshes its token; the resolver's fallback chain covers that window.
type Metadata struct {
	Role             rbac.Role `json:"role,omitempty"`
	ProfileCompleted bool      `json:"profile_completed"`
	IsVerified       bool      `json:"is_verified"`
	IsActive         bool      `json:"is_active"`
	FullName         string    `json:"full_name,omitempty"`
}

// Session is the authenticated caller as seen by the gates. Absence of a
// Session (nil) always routes to login.
type Session struct {
	UserID uuid.UUID
	Email  string
	Meta   Metadata
}

// Claims builds the access-token claim set for a user. The role claim is
// omitted entirely while no role is chosen, so claim absence and flag
// falseness stay distinguishable.
func Claims(u *models.User) jwt.MapClaims {
	claims := jwt.MapClaims{
		"sub":               u.ID.String(),
		"email":             u.Email,
		"full_name":         u.FullName,
		"profile_completed": u.ProfileCompleted,
		"is_verified":       u.IsVerified,
		"is_active":         u.IsActive,
	}
	if u.Role != "" {
		claims["role"] = string(u.Role)
	}
	return claims
}

// FromClaims converts a validated claim set into a Session.
func FromClaims(claims jwt.MapClaims) (*Session, error) {
	sub, _ := claims["sub"].(string)
	userID, err := uuid.Parse(sub)
	if err != nil {
		return nil, ErrInvalidClaims
	}

	sess := &Session{UserID: userID}
	sess.Email, _ = claims["email"].(string)
	sess.Meta.FullName, _ = claims["full_name"].(string)

	if roleStr, ok := claims["role"].(string); ok {
		if role, valid := rbac.Parse(roleStr); valid {
			sess.Meta.Role = role
		}
	}
	sess.Meta.ProfileCompleted = boolClaim(claims, "profile_completed", false)
	sess.Meta.IsVerified = boolClaim(claims, "is_verified", false)
	sess.Meta.IsActive = boolClaim(claims, "is_active", true)

	return sess, nil
}

// FromToken parses and validates a raw HS256 token.
func FromToken(tokenStr, secret string) (*Session, error) {
	token, err := jwt.Parse(tokenStr, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(secret), nil
	})
	if err != nil || !token.Valid {
		return nil, ErrInvalidClaims
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, ErrInvalidClaims
	}
	return FromClaims(claims)
}

// FromRequest extracts the session from the Authorization header or the
// session cookie. A missing or invalid token is treated as "no session" —
// the caller decides what that means (the edge gate redirects to login).
func FromRequest(c *fiber.Ctx, secret string) *Session {
	tokenStr := ""
	if auth := c.Get(fiber.HeaderAuthorization); strings.HasPrefix(auth, "Bearer ") {
		tokenStr = strings.TrimPrefix(auth, "Bearer ")
	} else if cookie := c.Cookies(CookieName); cookie != "" {
		tokenStr = cookie
	}
	if tokenStr == "" {
		return nil
	}

	sess, err := FromToken(tokenStr, secret)
	if err != nil {
		return nil
	}
	return sess
}

// FromCtx extracts the session from the jwtware-validated token in locals.
func FromCtx(c *fiber.Ctx) (*Session, error) {
	token, ok := c.Locals("user").(*jwt.Token)
	if !ok || token == nil {
		return nil, ErrNoToken
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, ErrInvalidClaims
	}
	return FromClaims(claims)
}

func boolClaim(claims jwt.MapClaims, key string, fallback bool) bool {
	if v, ok := claims[key].(bool); ok {
		return v
	}
	return fallback
}
