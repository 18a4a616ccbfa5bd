package resolver

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/carelinkhq/carelink-backend/internal/config"
	"github.com/carelinkhq/carelink-backend/internal/models"
	"github.com/carelinkhq/carelink-backend/internal/rbac"
	"github.com/carelinkhq/carelink-backend/internal/session"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// HintCookie caches the resolved role client-side so repeat checks skip the
// role-table query. The value is HMAC-signed; a tampered or expired cookie is
// ignored, never an error.
const HintCookie = "role_hint"

// Resolver is the single source of truth for "what is this user's role".
// Both gates consult it; resolution order is fixed:
//  1. session metadata snapshot
//  2. signed role-hint cookie
//  3. user_roles table
//  4. privileged users-table lookup
//
// A hit on (3) schedules a best-effort metadata write-back so (1) succeeds
// after the next token refresh.
type Resolver struct {
	db      *gorm.DB
	secret  []byte
	hintTTL time.Duration
}

func New(db *gorm.DB, cfg *config.Config) *Resolver {
	return &Resolver{
		db:      db,
		secret:  []byte(cfg.JWTSecret),
		hintTTL: cfg.RoleHintTTL,
	}
}

// Resolve returns the user's role, or "" when no source yields one (callers
// interpret that as "send to role selection"). Lookup errors propagate so
// each gate can apply its own failure policy.
func (r *Resolver) Resolve(c *fiber.Ctx, sess *session.Session) (rbac.Role, error) {
	if sess == nil {
		return "", nil
	}
	if sess.Meta.Role != "" {
		return sess.Meta.Role, nil
	}
	if role := r.ReadHint(c); role != "" {
		return role, nil
	}

	role, err := r.TableRole(sess.UserID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return "", err
	}
	if role != "" {
		r.SetHint(c, role)
		return role, nil
	}

	role, err = r.PrivilegedRole(sess.UserID)
	if err != nil {
		return "", err
	}
	if role != "" {
		r.SetHint(c, role)
	}
	return role, nil
}

// ResolveID resolves a role outside a request context (admin APIs, server
// jobs). Metadata is authoritative when present, the role table is the
// fallback.
func (r *Resolver) ResolveID(userID uuid.UUID) (rbac.Role, error) {
	role, err := r.PrivilegedRole(userID)
	if err != nil {
		return "", err
	}
	if role != "" {
		return role, nil
	}
	role, err = r.TableRole(userID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return "", err
	}
	return role, nil
}

// TableRole queries the user_roles fallback table. gorm.ErrRecordNotFound is
// returned as-is — the edge gate's /dashboard branch distinguishes "no row"
// (role selection) from a failed query (pass through). A hit schedules the
// async metadata write-back.
func (r *Resolver) TableRole(userID uuid.UUID) (rbac.Role, error) {
	var row models.UserRole
	if err := r.db.Where("user_id = ?", userID).First(&row).Error; err != nil {
		return "", err
	}
	go r.writeBack(userID, row.Role)
	return row.Role, nil
}

// PrivilegedRole reads the identity record's role column directly. Used as
// the last resort in request contexts and first in service-credential
// contexts. "User has no role yet" is not an error.
func (r *Resolver) PrivilegedRole(userID uuid.UUID) (rbac.Role, error) {
	var user models.User
	if err := r.db.Select("role").First(&user, "id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", nil
		}
		return "", err
	}
	return user.Role, nil
}

// writeBack copies a table-resolved role into the identity record so the
// session snapshot catches up on the next refresh. Failures are logged and
// otherwise ignored; this must never block or fail the current request.
func (r *Resolver) writeBack(userID uuid.UUID, role rbac.Role) {
	err := r.db.Model(&models.User{}).
		Where("id = ? AND (role IS NULL OR role = '')", userID).
		Update("role", role).Error
	if err != nil {
		slog.Error("role metadata write-back failed",
			"user_id", userID.String(), "role", string(role), "error", err)
	}
}

// SetHint writes the signed role-hint cookie.
func (r *Resolver) SetHint(c *fiber.Ctx, role rbac.Role) {
	exp := time.Now().Add(r.hintTTL).Unix()
	payload := string(role) + "." + strconv.FormatInt(exp, 10)
	c.Cookie(&fiber.Cookie{
		Name:    HintCookie,
		Value:   payload + "." + r.sign(payload),
		Expires: time.Now().Add(r.hintTTL),
		Path:    "/",
	})
}

// ReadHint returns the cached role, or "" when the cookie is missing,
// expired, malformed, or has a bad signature.
func (r *Resolver) ReadHint(c *fiber.Ctx) rbac.Role {
	value := c.Cookies(HintCookie)
	if value == "" {
		return ""
	}
	parts := strings.Split(value, ".")
	if len(parts) != 3 {
		return ""
	}
	payload := parts[0] + "." + parts[1]
	if !hmac.Equal([]byte(r.sign(payload)), []byte(parts[2])) {
		return ""
	}
	exp, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil || time.Now().Unix() > exp {
		return ""
	}
	role, ok := rbac.Parse(parts[0])
	if !ok {
		return ""
	}
	return role
}

func (r *Resolver) sign(payload string) string {
	mac := hmac.New(sha256.New, r.secret)
	fmt.Fprint(mac, payload)
	return hex.EncodeToString(mac.Sum(nil))
}
