package gate

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/carelinkhq/carelink-backend/internal/config"
	"github.com/carelinkhq/carelink-backend/internal/models"
	"github.com/carelinkhq/carelink-backend/internal/rbac"
	"github.com/carelinkhq/carelink-backend/internal/resolver"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("Failed to connect to test database: %v", err)
	}
	if err := db.AutoMigrate(&models.User{}, &models.UserRole{}); err != nil {
		t.Fatalf("Failed to migrate test database: %v", err)
	}
	return db
}

func testConfig() *config.Config {
	return &config.Config{
		JWTSecret:   "test-secret",
		RoleHintTTL: 5 * time.Minute,
	}
}

func setupEdgeApp(t *testing.T, db *gorm.DB, cfg *config.Config) *fiber.App {
	res := resolver.New(db, cfg)
	app := fiber.New()
	app.Use(NewEdge(cfg, res).Handler())
	app.All("/*", func(c *fiber.Ctx) error {
		return c.SendString("ok")
	})
	return app
}

func accessToken(t *testing.T, cfg *config.Config, u *models.User) string {
	claims := jwt.MapClaims{
		"sub":               u.ID.String(),
		"email":             u.Email,
		"profile_completed": u.ProfileCompleted,
		"is_verified":       u.IsVerified,
		"is_active":         u.IsActive,
		"exp":               time.Now().Add(time.Hour).Unix(),
	}
	if u.Role != "" {
		claims["role"] = string(u.Role)
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(cfg.JWTSecret))
	if err != nil {
		t.Fatalf("Failed to sign token: %v", err)
	}
	return signed
}

func get(t *testing.T, app *fiber.App, path, token string) *http.Response {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.Header.Set(fiber.HeaderAuthorization, "Bearer "+token)
	}
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("Request failed: %v", err)
	}
	return resp
}

func assertRedirect(t *testing.T, resp *http.Response, target string) {
	t.Helper()
	assert.Equal(t, fiber.StatusFound, resp.StatusCode)
	assert.Equal(t, target, resp.Header.Get(fiber.HeaderLocation))
}

func TestPublicPath(t *testing.T) {
	for _, path := range []string{
		"/", "/auth/register", "/auth/callback", "/auth/select-role",
		"/unauthorized", "/api/health", "/api/auth/login", "/api/admin/users",
		"/static/app.css", "/favicon.ico", "/logo.svg",
	} {
		assert.True(t, PublicPath(path), "path %s", path)
	}
	for _, path := range []string{
		"/dashboard", "/doctor/dashboard", "/patient/records", "/api/access/check",
	} {
		assert.False(t, PublicPath(path), "path %s", path)
	}
}

func TestEdgePublicPassesWithoutSession(t *testing.T) {
	app := setupEdgeApp(t, setupTestDB(t), testConfig())
	resp := get(t, app, "/api/health", "")
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestEdgeNoSessionRedirectsToLogin(t *testing.T) {
	app := setupEdgeApp(t, setupTestDB(t), testConfig())
	resp := get(t, app, "/doctor/dashboard", "")
	assertRedirect(t, resp, "/")
}

func TestEdgeDashboardFanOut(t *testing.T) {
	cfg := testConfig()
	app := setupEdgeApp(t, setupTestDB(t), cfg)

	u := &models.User{ID: uuid.New(), Role: rbac.Nurse, ProfileCompleted: true, IsVerified: true, IsActive: true}
	resp := get(t, app, "/dashboard", accessToken(t, cfg, u))
	assertRedirect(t, resp, "/nurse/dashboard")
}

func TestEdgeDashboardNoSession(t *testing.T) {
	app := setupEdgeApp(t, setupTestDB(t), testConfig())
	resp := get(t, app, "/dashboard", "")
	assertRedirect(t, resp, "/")
}

func TestEdgeDashboardNoRoleRowGoesToSelection(t *testing.T) {
	cfg := testConfig()
	db := setupTestDB(t)
	app := setupEdgeApp(t, db, cfg)

	u := &models.User{ID: uuid.New(), IsActive: true}
	resp := get(t, app, "/dashboard", accessToken(t, cfg, u))
	assertRedirect(t, resp, "/auth/select-role")
}

func TestEdgeDashboardTableFallback(t *testing.T) {
	cfg := testConfig()
	db := setupTestDB(t)
	app := setupEdgeApp(t, db, cfg)

	u := &models.User{ID: uuid.New(), IsActive: true}
	if err := db.Create(&models.UserRole{UserID: u.ID, Role: rbac.Pharmacist}).Error; err != nil {
		t.Fatalf("Failed to seed role row: %v", err)
	}

	resp := get(t, app, "/dashboard", accessToken(t, cfg, u))
	assertRedirect(t, resp, "/pharmacist/dashboard")

	var cached bool
	for _, ck := range resp.Cookies() {
		if ck.Name == resolver.HintCookie {
			cached = true
		}
	}
	assert.True(t, cached, "table hit should set the hint cookie")
}

func TestEdgeDashboardLookupFailurePassesThrough(t *testing.T) {
	cfg := testConfig()
	db := setupTestDB(t)
	db.Migrator().DropTable(&models.UserRole{})
	app := setupEdgeApp(t, db, cfg)

	u := &models.User{ID: uuid.New(), IsActive: true}
	resp := get(t, app, "/dashboard", accessToken(t, cfg, u))
	assert.Equal(t, fiber.StatusOK, resp.StatusCode, "fail open on backend errors")
}

func TestEdgeNoRoleRedirectsToSelection(t *testing.T) {
	cfg := testConfig()
	app := setupEdgeApp(t, setupTestDB(t), cfg)

	u := &models.User{ID: uuid.New(), ProfileCompleted: true, IsActive: true}
	resp := get(t, app, "/doctor/patients", accessToken(t, cfg, u))
	assertRedirect(t, resp, "/auth/select-role")
}

func TestEdgeWrongAreaRedirectsToOwnDashboard(t *testing.T) {
	cfg := testConfig()
	app := setupEdgeApp(t, setupTestDB(t), cfg)

	u := &models.User{ID: uuid.New(), Role: rbac.Nurse, ProfileCompleted: true, IsVerified: true, IsActive: true}
	resp := get(t, app, "/patient/records", accessToken(t, cfg, u))
	assertRedirect(t, resp, "/nurse/dashboard")
}

func TestEdgeSuperAdminEntersAnyArea(t *testing.T) {
	cfg := testConfig()
	app := setupEdgeApp(t, setupTestDB(t), cfg)

	u := &models.User{ID: uuid.New(), Role: rbac.SuperAdmin, ProfileCompleted: true, IsVerified: true, IsActive: true}
	for _, path := range []string{"/doctor/dashboard", "/patient/records", "/super-admin/hospitals"} {
		resp := get(t, app, path, accessToken(t, cfg, u))
		assert.Equal(t, fiber.StatusOK, resp.StatusCode, "path %s", path)
	}
}

func TestEdgePreconditionOrder(t *testing.T) {
	cfg := testConfig()
	app := setupEdgeApp(t, setupTestDB(t), cfg)

	// All three flags down: completion comes first.
	u := &models.User{ID: uuid.New(), Role: rbac.Doctor}
	resp := get(t, app, "/doctor/dashboard", accessToken(t, cfg, u))
	assertRedirect(t, resp, "/doctor/complete-profile")

	// Completed but unverified and inactive: verification next.
	u.ProfileCompleted = true
	resp = get(t, app, "/doctor/dashboard", accessToken(t, cfg, u))
	assertRedirect(t, resp, "/doctor/verify")

	// Verified but inactive.
	u.IsVerified = true
	resp = get(t, app, "/doctor/dashboard", accessToken(t, cfg, u))
	assertRedirect(t, resp, "/doctor/in-active")

	// All flags up: through.
	u.IsActive = true
	resp = get(t, app, "/doctor/dashboard", accessToken(t, cfg, u))
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestEdgePreconditionTargetsReachable(t *testing.T) {
	cfg := testConfig()
	app := setupEdgeApp(t, setupTestDB(t), cfg)

	// An incomplete doctor must be able to load the completion page itself.
	u := &models.User{ID: uuid.New(), Role: rbac.Doctor}
	resp := get(t, app, "/doctor/complete-profile", accessToken(t, cfg, u))
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	// An unverified doctor can sit on the verify page.
	u.ProfileCompleted = true
	resp = get(t, app, "/doctor/verify", accessToken(t, cfg, u))
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	// A suspended doctor can see the in-active notice.
	u.IsVerified = true
	u.IsActive = false
	token := accessToken(t, cfg, u)
	resp = get(t, app, "/doctor/in-active", token)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	// But not anything else in their area.
	resp = get(t, app, "/doctor/patients", token)
	assertRedirect(t, resp, "/doctor/in-active")
}

func TestEdgeFreshProfessionalSettlesOnCompletion(t *testing.T) {
	cfg := testConfig()
	app := setupEdgeApp(t, setupTestDB(t), cfg)

	// A doctor straight out of role selection: profile incomplete AND
	// unverified. Following redirects must settle on the completion page,
	// never bounce between the completion and verify targets.
	u := &models.User{ID: uuid.New(), Role: rbac.Doctor, IsActive: true}
	token := accessToken(t, cfg, u)

	path := "/doctor/dashboard"
	for hops := 0; hops < 5; hops++ {
		resp := get(t, app, path, token)
		if resp.StatusCode == fiber.StatusOK {
			assert.Equal(t, "/doctor/complete-profile", path)
			return
		}
		next := resp.Header.Get(fiber.HeaderLocation)
		assert.NotEqual(t, path, next, "redirected back to the same page")
		path = next
	}
	t.Fatalf("never settled on a reachable page, stuck at %s", path)
}

func TestEdgeEarliestPreconditionWins(t *testing.T) {
	cfg := testConfig()
	app := setupEdgeApp(t, setupTestDB(t), cfg)

	// With several flags down, only the earliest unmet precondition acts:
	// sitting on the completion page must not trigger the verify redirect.
	u := &models.User{ID: uuid.New(), Role: rbac.Nurse}
	resp := get(t, app, "/nurse/complete-profile", accessToken(t, cfg, u))
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	// And an incomplete profile outranks every later flag everywhere else.
	resp = get(t, app, "/nurse/verify", accessToken(t, cfg, u))
	assertRedirect(t, resp, "/nurse/complete-profile")
}

func TestBasePath(t *testing.T) {
	assert.Equal(t, "/doctor/", basePath("/doctor/patients/123/records"))
	assert.Equal(t, "/doctor/", basePath("/doctor"))
	assert.Equal(t, "/patient/", basePath("/patient/dashboard"))
}
