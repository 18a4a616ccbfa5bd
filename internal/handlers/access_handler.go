package handlers

import (
	"github.com/carelinkhq/carelink-backend/internal/config"
	"github.com/carelinkhq/carelink-backend/internal/dto"
	"github.com/carelinkhq/carelink-backend/internal/gate"
	"github.com/carelinkhq/carelink-backend/internal/rbac"
	"github.com/carelinkhq/carelink-backend/internal/resolver"
	"github.com/carelinkhq/carelink-backend/internal/session"
	"github.com/gofiber/fiber/v2"
)

// AccessHandler exposes the client gate to page bootstrapping and serves the
// unauthorized page's payload.
type AccessHandler struct {
	cfg        *config.Config
	clientGate *gate.Client
	res        *resolver.Resolver
}

func NewAccessHandler(cfg *config.Config, clientGate *gate.Client, res *resolver.Resolver) *AccessHandler {
	return &AccessHandler{cfg: cfg, clientGate: clientGate, res: res}
}

// Check runs the client-gate state machine for a mounting page:
// GET /api/access/check?role=<required>&path=<current>.
func (h *AccessHandler) Check(c *fiber.Ctx) error {
	required, ok := rbac.Parse(c.Query("role"))
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid or missing role parameter",
		})
	}
	path := c.Query("path")
	if path == "" {
		path = required.DashboardPath()
	}

	sess := session.FromRequest(c, h.cfg.JWTSecret)
	decision := h.clientGate.Evaluate(c, sess, required, path)
	return c.JSON(decision)
}

// Unauthorized backs the /unauthorized page: an explicit message plus the
// countdown and the best-effort redirect target (the caller's own dashboard,
// or login when no role is resolvable).
func (h *AccessHandler) Unauthorized(c *fiber.Ctx) error {
	redirectTo := "/"

	sess := session.FromRequest(c, h.cfg.JWTSecret)
	if sess != nil {
		if role, err := h.res.Resolve(c, sess); err == nil && role != "" {
			redirectTo = role.DashboardPath()
		}
	}

	return c.JSON(dto.UnauthorizedResponse{
		Message:          "You do not have permission to view this page.",
		RedirectTo:       redirectTo,
		CountdownSeconds: int(h.cfg.UnauthorizedCountdown.Seconds()),
	})
}
