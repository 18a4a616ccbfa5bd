package resolver

import (
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/carelinkhq/carelink-backend/internal/config"
	"github.com/carelinkhq/carelink-backend/internal/models"
	"github.com/carelinkhq/carelink-backend/internal/rbac"
	"github.com/carelinkhq/carelink-backend/internal/session"
	"github.com/gofiber/fiber/v2"
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

// resolveViaRequest runs Resolve inside a real request so cookie reads and
// writes go through Fiber.
func resolveViaRequest(t *testing.T, r *Resolver, sess *session.Session, cookies ...*http.Cookie) (rbac.Role, error, *http.Response) {
	app := fiber.New()
	var role rbac.Role
	var resolveErr error
	app.Get("/probe", func(c *fiber.Ctx) error {
		role, resolveErr = r.Resolve(c, sess)
		return c.SendStatus(fiber.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/probe", nil)
	for _, ck := range cookies {
		req.AddCookie(ck)
	}
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("Request failed: %v", err)
	}
	return role, resolveErr, resp
}

func hintCookie(resp *http.Response) *http.Cookie {
	for _, ck := range resp.Cookies() {
		if ck.Name == HintCookie {
			return ck
		}
	}
	return nil
}

func TestResolveNilSession(t *testing.T) {
	r := New(setupTestDB(t), testConfig())
	role, err, _ := resolveViaRequest(t, r, nil)
	assert.NoError(t, err)
	assert.Equal(t, rbac.Role(""), role)
}

func TestResolveMetadataWinsWithoutQuery(t *testing.T) {
	db := setupTestDB(t)
	// Drop the fallback table: if the resolver touched it the test would
	// surface an error, proving the snapshot short-circuits.
	db.Migrator().DropTable(&models.UserRole{})

	r := New(db, testConfig())
	sess := &session.Session{
		UserID: uuid.New(),
		Meta:   session.Metadata{Role: rbac.Doctor},
	}

	role, err, _ := resolveViaRequest(t, r, sess)
	assert.NoError(t, err)
	assert.Equal(t, rbac.Doctor, role)
}

func TestResolveHintBeforeTable(t *testing.T) {
	db := setupTestDB(t)
	db.Migrator().DropTable(&models.UserRole{})

	r := New(db, testConfig())
	sess := &session.Session{UserID: uuid.New()}

	exp := time.Now().Add(time.Minute).Unix()
	payload := "nurse." + strconv.FormatInt(exp, 10)
	cookie := &http.Cookie{Name: HintCookie, Value: payload + "." + r.sign(payload)}

	role, err, _ := resolveViaRequest(t, r, sess, cookie)
	assert.NoError(t, err)
	assert.Equal(t, rbac.Nurse, role)
}

func TestResolveTableFallbackAndWriteBack(t *testing.T) {
	db := setupTestDB(t)
	r := New(db, testConfig())

	user := models.User{ID: uuid.New(), Email: "p@carelink.test", Password: "x", IsActive: true}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("Failed to seed user: %v", err)
	}
	if err := db.Create(&models.UserRole{UserID: user.ID, Role: rbac.Pharmacist}).Error; err != nil {
		t.Fatalf("Failed to seed role row: %v", err)
	}

	sess := &session.Session{UserID: user.ID}
	role, err, resp := resolveViaRequest(t, r, sess)
	assert.NoError(t, err)
	assert.Equal(t, rbac.Pharmacist, role)

	// A table hit caches the result client-side.
	assert.NotNil(t, hintCookie(resp))

	// And schedules the async metadata write-back.
	assert.Eventually(t, func() bool {
		var fresh models.User
		if err := db.First(&fresh, "id = ?", user.ID).Error; err != nil {
			return false
		}
		return fresh.Role == rbac.Pharmacist
	}, 2*time.Second, 20*time.Millisecond, "users.role should catch up")
}

func TestResolvePrivilegedFallback(t *testing.T) {
	// The users row already carries a role (write-back ran on a previous
	// request) but the role table row is gone and the token is stale.
	db := setupTestDB(t)
	r := New(db, testConfig())

	user := models.User{ID: uuid.New(), Email: "d@carelink.test", Password: "x", Role: rbac.Doctor, IsActive: true}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("Failed to seed user: %v", err)
	}

	role, err, resp := resolveViaRequest(t, r, &session.Session{UserID: user.ID})
	assert.NoError(t, err)
	assert.Equal(t, rbac.Doctor, role)
	assert.NotNil(t, hintCookie(resp))
}

func TestResolveExhausted(t *testing.T) {
	db := setupTestDB(t)
	r := New(db, testConfig())

	user := models.User{ID: uuid.New(), Email: "n@carelink.test", Password: "x", IsActive: true}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("Failed to seed user: %v", err)
	}

	role, err, _ := resolveViaRequest(t, r, &session.Session{UserID: user.ID})
	assert.NoError(t, err)
	assert.Equal(t, rbac.Role(""), role, "no source: empty role, not an error")
}

func TestResolvePropagatesLookupError(t *testing.T) {
	db := setupTestDB(t)
	db.Migrator().DropTable(&models.UserRole{})
	r := New(db, testConfig())

	_, err, _ := resolveViaRequest(t, r, &session.Session{UserID: uuid.New()})
	assert.Error(t, err, "a broken lookup must surface, the gates choose the policy")
}

func TestReadHintRejectsTampered(t *testing.T) {
	r := New(setupTestDB(t), testConfig())
	exp := time.Now().Add(time.Minute).Unix()

	// Role swapped after signing.
	payload := "patient." + strconv.FormatInt(exp, 10)
	forged := "super-admin." + strconv.FormatInt(exp, 10) + "." + r.sign(payload)

	role, err, _ := resolveViaRequest(t, r,
		&session.Session{UserID: uuid.New()},
		&http.Cookie{Name: HintCookie, Value: forged})
	assert.NoError(t, err)
	assert.NotEqual(t, rbac.SuperAdmin, role)
}

func TestReadHintRejectsExpired(t *testing.T) {
	db := setupTestDB(t)
	r := New(db, testConfig())

	user := models.User{ID: uuid.New(), Email: "e@carelink.test", Password: "x", IsActive: true}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("Failed to seed user: %v", err)
	}

	exp := time.Now().Add(-time.Minute).Unix()
	payload := "doctor." + strconv.FormatInt(exp, 10)
	stale := &http.Cookie{Name: HintCookie, Value: payload + "." + r.sign(payload)}

	role, err, _ := resolveViaRequest(t, r, &session.Session{UserID: user.ID}, stale)
	assert.NoError(t, err)
	assert.Equal(t, rbac.Role(""), role, "expired hint falls through to the table")
}

func TestReadHintRejectsMalformed(t *testing.T) {
	r := New(setupTestDB(t), testConfig())

	app := fiber.New()
	var got rbac.Role
	app.Get("/probe", func(c *fiber.Ctx) error {
		got = r.ReadHint(c)
		return c.SendStatus(fiber.StatusOK)
	})

	for _, value := range []string{"doctor", "doctor.123", "a.b.c.d", "doctor.notanumber.ffff"} {
		req := httptest.NewRequest(http.MethodGet, "/probe", nil)
		req.AddCookie(&http.Cookie{Name: HintCookie, Value: value})
		if _, err := app.Test(req); err != nil {
			t.Fatalf("Request failed: %v", err)
		}
		assert.Equal(t, rbac.Role(""), got, "value %q", value)
	}
}
