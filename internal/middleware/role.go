package middleware

import (
	"github.com/carelinkhq/carelink-backend/internal/dto"
	"github.com/carelinkhq/carelink-backend/internal/gate"
	"github.com/carelinkhq/carelink-backend/internal/rbac"
	"github.com/carelinkhq/carelink-backend/internal/session"
	"github.com/gofiber/fiber/v2"
)

// RoleRequired wraps a role-scoped group with the client gate. Runs after
// JWTProtected, so a missing token never reaches it; anything short of an
// authorized verdict is rejected with the gate's redirect target attached.
func RoleRequired(g *gate.Client, required rbac.Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		sess, err := session.FromCtx(c)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
				Error: true, Message: "Unauthorized",
			})
		}

		decision := g.Evaluate(c, sess, required, c.Path())
		if !decision.Authorized {
			return c.Status(fiber.StatusForbidden).JSON(dto.AccessDeniedResponse{
				Error:      true,
				Message:    "Access denied",
				RedirectTo: decision.RedirectTo,
			})
		}
		return c.Next()
	}
}
