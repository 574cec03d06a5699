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

// CreatePermission creates a new permission.
func (s *Store) CreatePermission(ctx context.Context, name string) (*models.Permission, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, &apperr.ValidationError{Field: "name", Reason: "must not be blank"}
	}
	var existing models.Permission
	if err := s.db.WithContext(ctx).Unscoped().Where("name = ?", name).First(&existing).Error; err == nil {
		return nil, &apperr.ValidationError{Field: "name", Reason: "already in use"}
	}

	perm := models.Permission{Name: name}
	if err := s.db.WithContext(ctx).Create(&perm).Error; err != nil {
		return nil, apperr.Persistence("create permission", err)
	}

	s.rec.Record(ctx, audit.Entry{
		Action:      "permission.create",
		Entity:      "permission",
		EntityID:    &perm.ID,
		Description: "Created permission " + perm.Name,
	})
	return &perm, nil
}

// UpdatePermission renames a permission.
func (s *Store) UpdatePermission(ctx context.Context, id uint, name string) (*models.Permission, error) {
	var perm models.Permission
	if err := s.db.WithContext(ctx).First(&perm, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &apperr.NotFoundError{Entity: "permission", ID: id}
		}
		return nil, apperr.Persistence("load permission", err)
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, &apperr.ValidationError{Field: "name", Reason: "must not be blank"}
	}

	prev := perm.Name
	perm.Name = name
	if err := s.db.WithContext(ctx).Save(&perm).Error; err != nil {
		return nil, apperr.Persistence("update permission", err)
	}

	s.rec.Record(ctx, audit.Entry{
		Action:      "permission.update",
		Entity:      "permission",
		EntityID:    &perm.ID,
		Description: "Updated permission " + perm.Name,
		Metadata:    audit.FieldDiff{Field: "name", From: prev, To: perm.Name},
	})
	return &perm, nil
}

// ListPermissions retrieves all permissions.
func (s *Store) ListPermissions(ctx context.Context) ([]models.Permission, error) {
	var perms []models.Permission
	if err := s.db.WithContext(ctx).Order("id").Find(&perms).Error; err != nil {
		return nil, apperr.Persistence("list permissions", err)
	}
	return perms, nil
}

// DeletePermission soft-deletes a permission and its role grants.
func (s *Store) DeletePermission(ctx context.Context, id uint) error {
	var perm models.Permission
	if err := s.db.WithContext(ctx).First(&perm, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &apperr.NotFoundError{Entity: "permission", ID: id}
		}
		return apperr.Persistence("load permission", err)
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("permission_id = ?", id).Delete(&models.RolePermission{}).Error; err != nil {
			return err
		}
		return tx.Delete(&perm).Error
	})
	if err != nil {
		return apperr.Persistence("delete permission", err)
	}

	s.rec.Record(ctx, audit.Entry{
		Action:      "permission.delete",
		Entity:      "permission",
		EntityID:    &id,
		Description: "Deleted permission " + perm.Name,
	})
	return nil
}
