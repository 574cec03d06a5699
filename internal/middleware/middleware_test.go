package middleware

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"

	"github.com/magpress/magpress/internal/authz"
	"github.com/magpress/magpress/internal/logger"
	"github.com/magpress/magpress/internal/models"
	"github.com/magpress/magpress/internal/session"
)

func newGuardedApp(t *testing.T) (*fiber.App, *session.Manager, *gorm.DB) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(models.All()...); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	mgr := session.NewManager("test-secret", time.Hour)
	res := authz.NewResolver(db, nil, logger.Nop())
	cache := authz.NewDecisionCache(authz.DecisionTTL)

	app := fiber.New()
	app.Use(RequestContext())
	app.Use(Perimeter(mgr, []string{"/public/*", "/healthz", UnauthorizedPath}, logger.Nop()))
	app.Get("/healthz", func(c *fiber.Ctx) error { return c.SendString("ok") })
	app.Get("/public/blogs", func(c *fiber.Ctx) error { return c.SendString("public") })

	admin := app.Group("/admin", PageGuard(res, cache, logger.Nop()))
	admin.Get("/unauthorized", func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusForbidden).SendString("unauthorized view")
	})
	admin.Get("/dashboard", func(c *fiber.Ctx) error { return c.SendString("dashboard") })
	admin.Get("/blogs", func(c *fiber.Ctx) error { return c.SendString("blogs") })
	admin.Get("/blogs/:id", func(c *fiber.Ctx) error { return c.SendString("blog") })
	return app, mgr, db
}

func grantPage(t *testing.T, db *gorm.DB, path, roleName string) {
	t.Helper()
	page := models.Page{Name: path, Path: path, Active: true}
	if err := db.Create(&page).Error; err != nil {
		t.Fatalf("seed page: %v", err)
	}
	role := models.Role{Name: roleName, Active: true}
	if err := db.Create(&role).Error; err != nil {
		t.Fatalf("seed role: %v", err)
	}
	if err := db.Create(&models.PageRole{PageID: page.ID, RoleID: role.ID}).Error; err != nil {
		t.Fatalf("seed page role: %v", err)
	}
}

func bearerRequest(t *testing.T, mgr *session.Manager, path string, roles ...string) *http.Request {
	t.Helper()
	token, err := mgr.Issue(session.Principal{UserID: 1, DisplayName: "Jo", Roles: roles})
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}
	req := httptest.NewRequest(http.MethodGet, path, nil)
	req.Header.Set("Authorization", "Bearer "+token)
	return req
}

func TestPublicPathsBypassPerimeter(t *testing.T) {
	app, _, _ := newGuardedApp(t)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/public/blogs", nil))
	assert.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestPerimeterRejectsMissingToken(t *testing.T) {
	app, _, _ := newGuardedApp(t)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/admin/dashboard", nil))
	assert.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestPerimeterRedirectsBrowsersToLogin(t *testing.T) {
	app, _, _ := newGuardedApp(t)

	req := httptest.NewRequest(http.MethodGet, "/admin/dashboard", nil)
	req.Header.Set("Accept", "text/html")
	resp, err := app.Test(req)
	assert.NoError(t, err)
	assert.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, LoginPath, resp.Header.Get("Location"))
}

func TestPerimeterRejectsRolelessSession(t *testing.T) {
	app, mgr, _ := newGuardedApp(t)

	resp, err := app.Test(bearerRequest(t, mgr, "/admin/dashboard"))
	assert.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestPerimeterAcceptsCookieToken(t *testing.T) {
	app, mgr, _ := newGuardedApp(t)
	token, err := mgr.Issue(session.Principal{UserID: 1, Roles: []string{"Editor"}})
	assert.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/admin/dashboard", nil)
	req.AddCookie(&http.Cookie{Name: "magpress_session", Value: token})
	resp, err := app.Test(req)
	assert.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestPageGuardAllowsDashboardForAnySession(t *testing.T) {
	app, mgr, _ := newGuardedApp(t)

	resp, err := app.Test(bearerRequest(t, mgr, "/admin/dashboard", "Editor"))
	assert.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestPageGuardEnforcesPageGrants(t *testing.T) {
	app, mgr, db := newGuardedApp(t)
	grantPage(t, db, "/admin/blogs", "Editor")

	resp, err := app.Test(bearerRequest(t, mgr, "/admin/blogs", "Editor"))
	assert.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = app.Test(bearerRequest(t, mgr, "/admin/blogs", "Viewer"))
	assert.NoError(t, err)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestPageGuardChecksDeepRoutesUnderTheirPage(t *testing.T) {
	app, mgr, db := newGuardedApp(t)
	grantPage(t, db, "/admin/blogs", "Editor")

	resp, err := app.Test(bearerRequest(t, mgr, "/admin/blogs/5", "Editor"))
	assert.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = app.Test(bearerRequest(t, mgr, "/admin/blogs/5", "Viewer"))
	assert.NoError(t, err)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestPageGuardDeniesUnregisteredPages(t *testing.T) {
	app, mgr, _ := newGuardedApp(t)

	resp, err := app.Test(bearerRequest(t, mgr, "/admin/blogs", "Editor"))
	assert.NoError(t, err)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestUnauthorizedViewIsReachableAfterDenial(t *testing.T) {
	app, mgr, _ := newGuardedApp(t)

	token, err := mgr.Issue(session.Principal{UserID: 1, DisplayName: "Jo", Roles: []string{"Viewer"}})
	assert.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/admin/blogs", nil)
	req.Header.Set("Accept", "text/html")
	req.AddCookie(&http.Cookie{Name: "magpress_session", Value: token})
	resp, err := app.Test(req)
	assert.NoError(t, err)
	assert.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, UnauthorizedPath, resp.Header.Get("Location"))

	// Following the redirect lands on the view, not back at the login form.
	follow := httptest.NewRequest(http.MethodGet, UnauthorizedPath, nil)
	follow.Header.Set("Accept", "text/html")
	follow.AddCookie(&http.Cookie{Name: "magpress_session", Value: token})
	resp, err = app.Test(follow)
	assert.NoError(t, err)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	body, err := io.ReadAll(resp.Body)
	assert.NoError(t, err)
	assert.Equal(t, "unauthorized view", string(body))
}

func TestPageGuardFailsClosedOnResolverError(t *testing.T) {
	app, mgr, db := newGuardedApp(t)
	if err := db.Migrator().DropTable(&models.Page{}); err != nil {
		t.Fatalf("drop table: %v", err)
	}

	resp, err := app.Test(bearerRequest(t, mgr, "/admin/blogs", "Editor"))
	assert.NoError(t, err)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}
