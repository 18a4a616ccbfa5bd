package gate

import (
	"strings"

	"github.com/carelinkhq/carelink-backend/internal/rbac"
	"github.com/carelinkhq/carelink-backend/internal/resolver"
	"github.com/carelinkhq/carelink-backend/internal/session"
	"github.com/gofiber/fiber/v2"
)

// State is the client gate's position in its check sequence.
type State string

const (
	StateLoading        State = "loading"
	StateCheckingAccess State = "checking_access"
	StateAuthorized     State = "authorized"
	StateDenied         State = "denied"
)

// Decision is the client gate's verdict for one mount. Content is rendered
// iff State is StateAuthorized; otherwise RedirectTo carries the navigation
// target.
type Decision struct {
	State      State  `json:"state"`
	Authorized bool   `json:"authorized"`
	RedirectTo string `json:"redirect_to,omitempty"`
}

func authorized() Decision {
	return Decision{State: StateAuthorized, Authorized: true}
}

func denied(redirectTo string) Decision {
	return Decision{State: StateDenied, RedirectTo: redirectTo}
}

// Client is the render-time policy gate. It re-checks the page's required
// role against client-visible state, covering the requests the edge gate
// passed through deferred. Unlike the edge gate it fails closed: a lookup
// error denies and navigates back to login.
type Client struct {
	res *resolver.Resolver
}

func NewClient(res *resolver.Resolver) *Client {
	return &Client{res: res}
}

// Evaluate runs the check sequence for one page mount.
func (g *Client) Evaluate(c *fiber.Ctx, sess *session.Session, required rbac.Role, path string) Decision {
	if sess == nil {
		return denied(loginPath)
	}

	if !sess.Meta.ProfileCompleted && !strings.Contains(path, "/complete-profile") {
		return denied(required.Prefix() + "complete-profile")
	}

	// CheckingAccess: the cached hint short-circuits the lookup.
	if hint := g.res.ReadHint(c); hint == required || hint == rbac.SuperAdmin {
		return authorized()
	}

	role, err := g.res.Resolve(c, sess)
	if err != nil {
		return denied(loginPath)
	}
	if role == required || role == rbac.SuperAdmin {
		return authorized()
	}
	return denied("/unauthorized")
}
