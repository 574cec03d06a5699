// The routes package pulls in handlers, so these tests live in an external
// test package to stay importable from both sides.
package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"

	"github.com/magpress/magpress/internal/audit"
	"github.com/magpress/magpress/internal/authz"
	"github.com/magpress/magpress/internal/blob"
	"github.com/magpress/magpress/internal/handlers"
	"github.com/magpress/magpress/internal/logger"
	"github.com/magpress/magpress/internal/models"
	"github.com/magpress/magpress/internal/routes"
	"github.com/magpress/magpress/internal/session"
	"github.com/magpress/magpress/internal/store"
)

type testEnv struct {
	app   *fiber.App
	store *store.Store
	db    *gorm.DB
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(models.All()...); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	log := logger.Nop()
	rec := audit.NewRecorder(db, log)
	st := store.New(db, rec, log)
	res := authz.NewResolver(db, nil, log)
	cache := authz.NewDecisionCache(authz.DecisionTTL)
	mgr := session.NewManager("test-secret", time.Hour)
	blobs, err := blob.NewDiskStorage(t.TempDir(), "/uploads")
	if err != nil {
		t.Fatalf("blob storage: %v", err)
	}
	h := handlers.New(st, rec, res, cache, mgr, blobs, log)

	app := fiber.New()
	routes.Setup(app, h, mgr, res, cache, t.TempDir(), log)
	return &testEnv{app: app, store: st, db: db}
}

// seedEditor creates an editor user with access to the given admin pages and
// returns a session token obtained through the login endpoint.
func (e *testEnv) seedEditor(t *testing.T, pages ...string) string {
	t.Helper()
	ctx := context.Background()
	role, err := e.store.CreateRole(ctx, "Editor", true)
	if err != nil {
		t.Fatalf("create role: %v", err)
	}
	if _, err := e.store.CreateUser(ctx, store.CreateUserParams{
		Email:       "editor@example.com",
		DisplayName: "Jo Editor",
		Password:    "secret123",
		Active:      true,
		RoleIDs:     []uint{role.ID},
	}); err != nil {
		t.Fatalf("create user: %v", err)
	}
	for _, path := range pages {
		page, err := e.store.CreatePage(ctx, store.PageParams{Name: path, Path: path, Active: true})
		if err != nil {
			t.Fatalf("create page: %v", err)
		}
		if _, err := e.store.ReplacePageRoles(ctx, page.ID, []uint{role.ID}); err != nil {
			t.Fatalf("grant page: %v", err)
		}
	}

	body, _ := json.Marshal(map[string]string{"email": "editor@example.com", "password": "secret123"})
	req := httptest.NewRequest(http.MethodPost, "/auth/login", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := e.app.Test(req)
	if err != nil {
		t.Fatalf("login request: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("login failed with status %d", resp.StatusCode)
	}
	var payload struct {
		Token string `json:"token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		t.Fatalf("decode login response: %v", err)
	}
	return payload.Token
}

func (e *testEnv) request(t *testing.T, method, path, token string, body any) *http.Response {
	t.Helper()
	var rd io.Reader
	if body != nil {
		b, _ := json.Marshal(body)
		rd = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, rd)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := e.app.Test(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	return resp
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	e := newTestEnv(t)
	e.seedEditor(t)

	body, _ := json.Marshal(map[string]string{"email": "editor@example.com", "password": "wrong"})
	req := httptest.NewRequest(http.MethodPost, "/auth/login", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := e.app.Test(req)
	assert.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	var count int64
	assert.NoError(t, e.db.Model(&models.AuditLog{}).Where("action = ?", "auth.login.failure").Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestMeReturnsPrincipal(t *testing.T) {
	e := newTestEnv(t)
	token := e.seedEditor(t)

	resp := e.request(t, http.MethodGet, "/auth/me", token, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var payload struct {
		DisplayName string   `json:"display_name"`
		Roles       []string `json:"roles"`
	}
	assert.NoError(t, json.NewDecoder(resp.Body).Decode(&payload))
	assert.Equal(t, "Jo Editor", payload.DisplayName)
	assert.Equal(t, []string{"Editor"}, payload.Roles)
}

func TestDashboardReachableRightAfterLogin(t *testing.T) {
	e := newTestEnv(t)
	token := e.seedEditor(t)

	resp := e.request(t, http.MethodGet, "/admin/dashboard", token, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestAdminPageDeniedWithoutGrant(t *testing.T) {
	e := newTestEnv(t)
	token := e.seedEditor(t)

	resp := e.request(t, http.MethodGet, "/admin/roles/", token, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestReplaceRolePermissionsEndpoint(t *testing.T) {
	e := newTestEnv(t)
	token := e.seedEditor(t, "/admin/roles")
	ctx := context.Background()

	role, err := e.store.CreateRole(ctx, "Publisher", true)
	assert.NoError(t, err)
	pa, err := e.store.CreatePermission(ctx, "Create")
	assert.NoError(t, err)
	pb, err := e.store.CreatePermission(ctx, "View")
	assert.NoError(t, err)

	resp := e.request(t, http.MethodPut, fmt.Sprintf("/admin/roles/%d/permissions", role.ID), token,
		map[string][]uint{"permission_ids": {pa.ID, pb.ID}})
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var payload struct {
		Summary     string   `json:"summary"`
		Permissions []string `json:"permissions"`
	}
	assert.NoError(t, json.NewDecoder(resp.Body).Decode(&payload))
	assert.Len(t, payload.Permissions, 2)
	assert.Contains(t, payload.Summary, "Publisher")
}

func TestReplaceWithUnknownIDReturns400(t *testing.T) {
	e := newTestEnv(t)
	token := e.seedEditor(t, "/admin/roles")

	role, err := e.store.CreateRole(context.Background(), "Publisher", true)
	assert.NoError(t, err)

	resp := e.request(t, http.MethodPut, fmt.Sprintf("/admin/roles/%d/permissions", role.ID), token,
		map[string][]uint{"permission_ids": {9999}})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestAuditLogEndpointFiltersAndPaginates(t *testing.T) {
	e := newTestEnv(t)
	token := e.seedEditor(t, "/admin/audit-logs")

	// Seeding already produced audit records; narrow to role creations.
	resp := e.request(t, http.MethodGet, "/admin/audit-logs?action=role.create&page=1&page_size=5", token, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var payload struct {
		Items []models.AuditLog `json:"items"`
		Total int64             `json:"total"`
	}
	assert.NoError(t, json.NewDecoder(resp.Body).Decode(&payload))
	assert.EqualValues(t, 1, payload.Total)
	for _, item := range payload.Items {
		assert.Equal(t, "role.create", item.Action)
	}
}

func TestAuditLogEndpointRejectsBadTimestamp(t *testing.T) {
	e := newTestEnv(t)
	token := e.seedEditor(t, "/admin/audit-logs")

	resp := e.request(t, http.MethodGet, "/admin/audit-logs?from=yesterday", token, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestPublicBlogListingNeedsNoSession(t *testing.T) {
	e := newTestEnv(t)

	resp := e.request(t, http.MethodGet, "/public/blogs", "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
