package audit

import (
	"context"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/magpress/magpress/internal/apperr"
	"github.com/magpress/magpress/internal/models"
	"github.com/magpress/magpress/internal/session"
)

// Recorder appends immutable audit records and serves the query side.
type Recorder struct {
	db  *gorm.DB
	log *zap.SugaredLogger
}

func NewRecorder(db *gorm.DB, log *zap.SugaredLogger) *Recorder {
	return &Recorder{db: db, log: log}
}

// Entry describes one auditable action. UserID and UserName are optional;
// when absent they are resolved from the request's session principal, so
// system-triggered events with no live session stay recordable.
type Entry struct {
	Action      string
	Entity      string
	EntityID    *uint
	Description string
	Metadata    Metadata
	UserID      *uint
	UserName    string
}

// Record appends one audit record. Persistence failure is logged and
// swallowed: an audit write must never abort the business mutation that
// triggered it.
func (r *Recorder) Record(ctx context.Context, e Entry) {
	userID := e.UserID
	userName := e.UserName
	if userID == nil {
		if p, ok := session.FromContext(ctx); ok {
			id := p.UserID
			userID = &id
			if userName == "" {
				userName = p.DisplayName
			}
		}
	}

	meta, err := marshalMetadata(e.Metadata)
	if err != nil {
		r.log.Errorw("audit metadata marshal failed", "action", e.Action, "error", err)
		meta = nil
	}

	info := requestInfoFromContext(ctx)
	rec := models.AuditLog{
		UserID:      userID,
		UserName:    userName,
		Action:      e.Action,
		Entity:      e.Entity,
		EntityID:    e.EntityID,
		Description: e.Description,
		Metadata:    meta,
		IPAddress:   info.IPAddress,
		UserAgent:   info.UserAgent,
		CreatedAt:   time.Now(),
	}
	if err := r.db.WithContext(ctx).Create(&rec).Error; err != nil {
		r.log.Errorw("audit write failed", "action", e.Action, "entity", e.Entity, "error", err)
	}
}

// Filter narrows an audit query. All fields are optional and ANDed together.
type Filter struct {
	UserID   *uint
	Action   string
	Entity   string
	EntityID *uint
	From     *time.Time
	To       *time.Time
}

// Page is one page of audit records, newest first.
type Page struct {
	Items     []models.AuditLog
	Total     int64
	Page      int
	PageSize  int
	PageCount int
}

// List returns a page of audit records matching the filter, ordered newest
// first, together with the total and computed page count.
func (r *Recorder) List(ctx context.Context, f Filter, page, pageSize int) (*Page, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 200 {
		pageSize = 20
	}

	q := r.db.WithContext(ctx).Model(&models.AuditLog{})
	if f.UserID != nil {
		q = q.Where("user_id = ?", *f.UserID)
	}
	if f.Action != "" {
		q = q.Where("action = ?", f.Action)
	}
	if f.Entity != "" {
		q = q.Where("entity = ?", f.Entity)
	}
	if f.EntityID != nil {
		q = q.Where("entity_id = ?", *f.EntityID)
	}
	if f.From != nil {
		q = q.Where("created_at >= ?", *f.From)
	}
	if f.To != nil {
		q = q.Where("created_at <= ?", *f.To)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, apperr.Persistence("count audit logs", err)
	}

	var items []models.AuditLog
	if err := q.Order("created_at DESC, id DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&items).Error; err != nil {
		return nil, apperr.Persistence("list audit logs", err)
	}

	pageCount := int((total + int64(pageSize) - 1) / int64(pageSize))
	return &Page{Items: items, Total: total, Page: page, PageSize: pageSize, PageCount: pageCount}, nil
}
