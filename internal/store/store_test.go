package store

import (
	"context"
	"testing"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"

	"github.com/magpress/magpress/internal/audit"
	"github.com/magpress/magpress/internal/logger"
	"github.com/magpress/magpress/internal/models"
)

// newTestStore returns a store backed by an in-memory sqlite DB.
func newTestStore(t *testing.T) *Store {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(models.All()...); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	rec := audit.NewRecorder(db, logger.Nop())
	return New(db, rec, logger.Nop())
}

func mustCreateRole(t *testing.T, s *Store, name string) *models.Role {
	t.Helper()
	role, err := s.CreateRole(context.Background(), name, true)
	if err != nil {
		t.Fatalf("create role %s: %v", name, err)
	}
	return role
}

func mustCreatePermission(t *testing.T, s *Store, name string) *models.Permission {
	t.Helper()
	perm, err := s.CreatePermission(context.Background(), name)
	if err != nil {
		t.Fatalf("create permission %s: %v", name, err)
	}
	return perm
}

func mustCreateUser(t *testing.T, s *Store, email string) *models.User {
	t.Helper()
	user, err := s.CreateUser(context.Background(), CreateUserParams{
		Email:       email,
		DisplayName: "Test User",
		Password:    "secret123",
		Active:      true,
	})
	if err != nil {
		t.Fatalf("create user %s: %v", email, err)
	}
	return user
}

func mustCreatePage(t *testing.T, s *Store, name, path string) *models.Page {
	t.Helper()
	page, err := s.CreatePage(context.Background(), PageParams{Name: name, Path: path, Active: true})
	if err != nil {
		t.Fatalf("create page %s: %v", path, err)
	}
	return page
}

// lastAuditLog returns the newest audit record for an action.
func lastAuditLog(t *testing.T, s *Store, action string) *models.AuditLog {
	t.Helper()
	var rec models.AuditLog
	if err := s.db.Where("action = ?", action).Order("id DESC").First(&rec).Error; err != nil {
		t.Fatalf("load audit log for %s: %v", action, err)
	}
	return &rec
}
