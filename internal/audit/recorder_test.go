package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"

	"github.com/magpress/magpress/internal/logger"
	"github.com/magpress/magpress/internal/models"
	"github.com/magpress/magpress/internal/session"
)

func newTestRecorder(t *testing.T) (*Recorder, *gorm.DB) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&models.AuditLog{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return NewRecorder(db, logger.Nop()), db
}

func TestRecordResolvesPrincipalFromContext(t *testing.T) {
	r, db := newTestRecorder(t)
	ctx := session.WithPrincipal(context.Background(), &session.Principal{
		UserID:      7,
		DisplayName: "Jo Editor",
	})

	r.Record(ctx, Entry{Action: "role.create", Entity: "role", Description: "Created role Editor"})

	var rec models.AuditLog
	if err := db.First(&rec).Error; err != nil {
		t.Fatalf("load record: %v", err)
	}
	if rec.UserID == nil || *rec.UserID != 7 {
		t.Fatalf("expected principal user id, got %+v", rec.UserID)
	}
	if rec.UserName != "Jo Editor" {
		t.Fatalf("expected principal display name, got %q", rec.UserName)
	}
}

func TestRecordExplicitUserWinsOverPrincipal(t *testing.T) {
	r, db := newTestRecorder(t)
	ctx := session.WithPrincipal(context.Background(), &session.Principal{UserID: 7, DisplayName: "Jo"})

	id := uint(3)
	r.Record(ctx, Entry{Action: "auth.login.success", Entity: "user", UserID: &id, UserName: "target"})

	var rec models.AuditLog
	if err := db.First(&rec).Error; err != nil {
		t.Fatalf("load record: %v", err)
	}
	if rec.UserID == nil || *rec.UserID != 3 || rec.UserName != "target" {
		t.Fatalf("explicit attribution lost: %+v", rec)
	}
}

func TestRecordCapturesRequestInfo(t *testing.T) {
	r, db := newTestRecorder(t)
	ctx := WithRequestInfo(context.Background(), RequestInfo{
		RequestID: "req-1",
		IPAddress: "10.0.0.9",
		UserAgent: "curl/8",
	})

	r.Record(ctx, Entry{Action: "role.create", Entity: "role"})

	var rec models.AuditLog
	if err := db.First(&rec).Error; err != nil {
		t.Fatalf("load record: %v", err)
	}
	if rec.IPAddress != "10.0.0.9" || rec.UserAgent != "curl/8" {
		t.Fatalf("request info not captured: %+v", rec)
	}
}

func TestRecordSwallowsPersistenceFailure(t *testing.T) {
	r, db := newTestRecorder(t)
	if err := db.Migrator().DropTable(&models.AuditLog{}); err != nil {
		t.Fatalf("drop table: %v", err)
	}

	// Must not panic or surface an error to the caller.
	r.Record(context.Background(), Entry{Action: "role.create", Entity: "role"})
}

func TestRecordMetadataEnvelope(t *testing.T) {
	r, db := newTestRecorder(t)

	r.Record(context.Background(), Entry{
		Action: "user.update",
		Entity: "user",
		Metadata: FieldDiff{Field: "active", From: true, To: false},
	})

	var rec models.AuditLog
	if err := db.First(&rec).Error; err != nil {
		t.Fatalf("load record: %v", err)
	}
	var env struct {
		Kind string    `json:"kind"`
		Data FieldDiff `json:"data"`
	}
	if err := json.Unmarshal(rec.Metadata, &env); err != nil {
		t.Fatalf("unmarshal metadata: %v", err)
	}
	if env.Kind != "field_diff" || env.Data.Field != "active" {
		t.Fatalf("unexpected envelope: %+v", env)
	}
}

func seedLogs(t *testing.T, r *Recorder, n int) {
	t.Helper()
	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < n; i++ {
		id := uint(i%2 + 1)
		rec := models.AuditLog{
			UserID:    &id,
			Action:    fmt.Sprintf("entity.action%d", i%3),
			Entity:    "role",
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		}
		if err := r.db.Create(&rec).Error; err != nil {
			t.Fatalf("seed log: %v", err)
		}
	}
}

func TestListFiltersAreANDed(t *testing.T) {
	r, _ := newTestRecorder(t)
	seedLogs(t, r, 12)

	id := uint(1)
	page, err := r.List(context.Background(), Filter{UserID: &id, Action: "entity.action0"}, 1, 20)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	for _, item := range page.Items {
		if item.UserID == nil || *item.UserID != 1 || item.Action != "entity.action0" {
			t.Fatalf("filter leaked a record: %+v", item)
		}
	}
	if page.Total == 0 {
		t.Fatalf("expected at least one match")
	}
}

func TestListTimeRangeFilter(t *testing.T) {
	r, _ := newTestRecorder(t)
	seedLogs(t, r, 12)

	from := time.Date(2026, 8, 1, 12, 5, 0, 0, time.UTC)
	to := time.Date(2026, 8, 1, 12, 8, 0, 0, time.UTC)
	page, err := r.List(context.Background(), Filter{From: &from, To: &to}, 1, 20)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if page.Total != 4 {
		t.Fatalf("expected 4 records in range, got %d", page.Total)
	}
}

func TestListPaginatesNewestFirst(t *testing.T) {
	r, _ := newTestRecorder(t)
	seedLogs(t, r, 12)

	page, err := r.List(context.Background(), Filter{}, 1, 5)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if page.Total != 12 || page.PageCount != 3 || len(page.Items) != 5 {
		t.Fatalf("unexpected page shape: total=%d pages=%d items=%d", page.Total, page.PageCount, len(page.Items))
	}
	for i := 1; i < len(page.Items); i++ {
		if page.Items[i].CreatedAt.After(page.Items[i-1].CreatedAt) {
			t.Fatalf("items not ordered newest first")
		}
	}

	last, err := r.List(context.Background(), Filter{}, 3, 5)
	if err != nil {
		t.Fatalf("list last page: %v", err)
	}
	if len(last.Items) != 2 {
		t.Fatalf("expected 2 items on the last page, got %d", len(last.Items))
	}
}

func TestListClampsPageArguments(t *testing.T) {
	r, _ := newTestRecorder(t)
	seedLogs(t, r, 3)

	page, err := r.List(context.Background(), Filter{}, -1, 100000)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if page.Page != 1 || page.PageSize != 20 {
		t.Fatalf("expected clamped paging, got page=%d size=%d", page.Page, page.PageSize)
	}
}
