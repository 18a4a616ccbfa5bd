package gate

import (
	"errors"
	"log/slog"
	"strings"

	"github.com/carelinkhq/carelink-backend/internal/config"
	"github.com/carelinkhq/carelink-backend/internal/rbac"
	"github.com/carelinkhq/carelink-backend/internal/resolver"
	"github.com/carelinkhq/carelink-backend/internal/session"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

const (
	loginPath      = "/"
	selectRolePath = "/auth/select-role"
	dashboardPath  = "/dashboard"
)

// Paths exempt from all checks. Exempt requests never touch the session.
var publicPaths = []string{
	loginPath,
	"/auth/register",
	"/auth/callback",
	selectRolePath,
	"/unauthorized",
	"/api/health",
}

var publicPrefixes = []string{
	"/api/auth/",
	"/api/admin/",
	"/static/",
}

var staticExtensions = []string{
	".ico", ".png", ".jpg", ".jpeg", ".svg", ".css", ".js",
}

// PublicPath reports whether a path is exempt from the edge gate.
func PublicPath(path string) bool {
	for _, p := range publicPaths {
		if path == p {
			return true
		}
	}
	for _, prefix := range publicPrefixes {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	for _, ext := range staticExtensions {
		if strings.HasSuffix(path, ext) {
			return true
		}
	}
	return false
}

// Edge is the request-time policy gate. It runs before every protected
// handler and decides redirect vs pass-through from the session snapshot
// alone. On lookup errors it fails open and leaves enforcement to the client
// gate; by the time a page mounts, wrong content matters more than one
// broken navigation, so the two gates deliberately disagree on failure.
type Edge struct {
	cfg *config.Config
	res *resolver.Resolver
}

func NewEdge(cfg *config.Config, res *resolver.Resolver) *Edge {
	return &Edge{cfg: cfg, res: res}
}

// Handler returns the Fiber middleware enforcing the edge policy.
func (g *Edge) Handler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		path := c.Path()
		if PublicPath(path) {
			return c.Next()
		}

		sess := session.FromRequest(c, g.cfg.JWTSecret)

		if path == dashboardPath {
			return g.routeDashboard(c, sess)
		}

		if sess == nil {
			return c.Redirect(loginPath, fiber.StatusFound)
		}

		role := sess.Meta.Role
		if role == "" {
			// No role means an empty allowlist; there is no dashboard to
			// bounce to, so go straight to role selection.
			return c.Redirect(selectRolePath, fiber.StatusFound)
		}

		if !rbac.Allowed(role, basePath(path)) {
			return c.Redirect(role.DashboardPath(), fiber.StatusFound)
		}

		// Precondition funnel, fixed order: completed -> verified -> active.
		// Only the earliest unmet precondition acts; a user already on that
		// precondition's page passes through, so the funnel cannot loop.
		if !sess.Meta.ProfileCompleted {
			if !strings.Contains(path, "/complete-profile") {
				return c.Redirect(role.Prefix()+"complete-profile", fiber.StatusFound)
			}
		} else if !sess.Meta.IsVerified {
			if !strings.Contains(path, "/verify") {
				return c.Redirect(role.Prefix()+"verify", fiber.StatusFound)
			}
		} else if !sess.Meta.IsActive {
			if !strings.Contains(path, "/in-active") {
				return c.Redirect(role.Prefix()+"in-active", fiber.StatusFound)
			}
		}

		return c.Next()
	}
}

// routeDashboard sends the generic /dashboard to the role-specific one.
func (g *Edge) routeDashboard(c *fiber.Ctx, sess *session.Session) error {
	if sess == nil {
		return c.Redirect(loginPath, fiber.StatusFound)
	}
	if sess.Meta.Role != "" {
		return c.Redirect(sess.Meta.Role.DashboardPath(), fiber.StatusFound)
	}

	role, err := g.res.TableRole(sess.UserID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return c.Redirect(selectRolePath, fiber.StatusFound)
	}
	if err != nil {
		// Fail open: defer to the client gate rather than hard-locking the
		// user out on a transient backend error.
		slog.Warn("edge gate role lookup failed, passing through",
			"user_id", sess.UserID.String(), "error", err)
		return c.Next()
	}

	g.res.SetHint(c, role)
	return c.Redirect(role.DashboardPath(), fiber.StatusFound)
}

// basePath extracts "/<first segment>/" from a request path.
func basePath(path string) string {
	trimmed := strings.TrimPrefix(path, "/")
	if i := strings.IndexByte(trimmed, '/'); i >= 0 {
		trimmed = trimmed[:i]
	}
	return "/" + trimmed + "/"
}
