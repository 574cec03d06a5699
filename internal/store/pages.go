package store

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/magpress/magpress/internal/apperr"
	"github.com/magpress/magpress/internal/audit"
	"github.com/magpress/magpress/internal/models"
)

// PageParams carries the fields of a protected route descriptor.
type PageParams struct {
	Name        string
	Path        string
	Description string
	Active      bool
}

func (p *PageParams) validate() error {
	p.Name = strings.TrimSpace(p.Name)
	p.Path = strings.TrimSpace(p.Path)
	if p.Name == "" {
		return &apperr.ValidationError{Field: "name", Reason: "must not be blank"}
	}
	if p.Path == "" || !strings.HasPrefix(p.Path, "/") {
		return &apperr.ValidationError{Field: "path", Reason: "must start with /"}
	}
	return nil
}

// CreatePage registers a protected page.
func (s *Store) CreatePage(ctx context.Context, p PageParams) (*models.Page, error) {
	if err := p.validate(); err != nil {
		return nil, err
	}
	var existing models.Page
	if err := s.db.WithContext(ctx).Unscoped().Where("path = ?", p.Path).First(&existing).Error; err == nil {
		return nil, &apperr.ValidationError{Field: "path", Reason: "already registered"}
	}

	page := models.Page{Name: p.Name, Path: p.Path, Description: p.Description, Active: p.Active}
	if err := s.db.WithContext(ctx).Create(&page).Error; err != nil {
		return nil, apperr.Persistence("create page", err)
	}

	s.rec.Record(ctx, audit.Entry{
		Action:      "page.create",
		Entity:      "page",
		EntityID:    &page.ID,
		Description: "Registered page " + page.Path,
	})
	return &page, nil
}

// UpdatePage updates a page descriptor.
func (s *Store) UpdatePage(ctx context.Context, id uint, p PageParams) (*models.Page, error) {
	var page models.Page
	if err := s.db.WithContext(ctx).First(&page, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &apperr.NotFoundError{Entity: "page", ID: id}
		}
		return nil, apperr.Persistence("load page", err)
	}
	if err := p.validate(); err != nil {
		return nil, err
	}
	if p.Path != page.Path {
		var clash models.Page
		if err := s.db.WithContext(ctx).Unscoped().Where("path = ? AND id <> ?", p.Path, id).First(&clash).Error; err == nil {
			return nil, &apperr.ValidationError{Field: "path", Reason: "already registered"}
		}
	}

	prevPath := page.Path
	page.Name = p.Name
	page.Path = p.Path
	page.Description = p.Description
	page.Active = p.Active
	if err := s.db.WithContext(ctx).Save(&page).Error; err != nil {
		return nil, apperr.Persistence("update page", err)
	}

	entry := audit.Entry{
		Action:      "page.update",
		Entity:      "page",
		EntityID:    &page.ID,
		Description: "Updated page " + page.Path,
	}
	if prevPath != page.Path {
		entry.Metadata = audit.FieldDiff{Field: "path", From: prevPath, To: page.Path}
	}
	s.rec.Record(ctx, entry)
	return &page, nil
}

// GetPage retrieves a page by ID.
func (s *Store) GetPage(ctx context.Context, id uint) (*models.Page, error) {
	var page models.Page
	if err := s.db.WithContext(ctx).First(&page, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &apperr.NotFoundError{Entity: "page", ID: id}
		}
		return nil, apperr.Persistence("load page", err)
	}
	return &page, nil
}

// ListPages retrieves all registered pages.
func (s *Store) ListPages(ctx context.Context) ([]models.Page, error) {
	var pages []models.Page
	if err := s.db.WithContext(ctx).Order("path").Find(&pages).Error; err != nil {
		return nil, apperr.Persistence("list pages", err)
	}
	return pages, nil
}

// DeletePage soft-deletes a page and its role associations.
func (s *Store) DeletePage(ctx context.Context, id uint) error {
	var page models.Page
	if err := s.db.WithContext(ctx).First(&page, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &apperr.NotFoundError{Entity: "page", ID: id}
		}
		return apperr.Persistence("load page", err)
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("page_id = ?", id).Delete(&models.PageRole{}).Error; err != nil {
			return err
		}
		return tx.Delete(&page).Error
	})
	if err != nil {
		return apperr.Persistence("delete page", err)
	}

	s.rec.Record(ctx, audit.Entry{
		Action:      "page.delete",
		Entity:      "page",
		EntityID:    &id,
		Description: "Deleted page " + page.Path,
	})
	return nil
}
