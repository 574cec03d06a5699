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

// CreateRole creates a new role. The reserved super-role name is not
// creatable through the admin surface.
func (s *Store) CreateRole(ctx context.Context, name string, active bool) (*models.Role, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, &apperr.ValidationError{Field: "name", Reason: "must not be blank"}
	}
	if name == models.SuperRoleName {
		return nil, &apperr.ValidationError{Field: "name", Reason: "reserved role name"}
	}

	// Soft-deleted rows still occupy the unique index, so the check must
	// see them too.
	var existing models.Role
	if err := s.db.WithContext(ctx).Unscoped().Where("name = ?", name).First(&existing).Error; err == nil {
		return nil, &apperr.ValidationError{Field: "name", Reason: "already in use"}
	}

	role := models.Role{Name: name, Active: active}
	if err := s.db.WithContext(ctx).Create(&role).Error; err != nil {
		return nil, apperr.Persistence("create role", err)
	}

	s.rec.Record(ctx, audit.Entry{
		Action:      "role.create",
		Entity:      "role",
		EntityID:    &role.ID,
		Description: "Created role " + role.Name,
	})
	return &role, nil
}

// UpdateRole renames a role or toggles its state.
func (s *Store) UpdateRole(ctx context.Context, id uint, name string, active bool) (*models.Role, error) {
	var role models.Role
	if err := s.db.WithContext(ctx).First(&role, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &apperr.NotFoundError{Entity: "role", ID: id}
		}
		return nil, apperr.Persistence("load role", err)
	}
	if role.Name == models.SuperRoleName {
		return nil, &apperr.ValidationError{Field: "id", Reason: "reserved role cannot be edited"}
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, &apperr.ValidationError{Field: "name", Reason: "must not be blank"}
	}
	if name == models.SuperRoleName {
		return nil, &apperr.ValidationError{Field: "name", Reason: "reserved role name"}
	}

	prev := role.Name
	role.Name = name
	role.Active = active
	if err := s.db.WithContext(ctx).Save(&role).Error; err != nil {
		return nil, apperr.Persistence("update role", err)
	}

	entry := audit.Entry{
		Action:      "role.update",
		Entity:      "role",
		EntityID:    &role.ID,
		Description: "Updated role " + role.Name,
	}
	if prev != role.Name {
		entry.Metadata = audit.FieldDiff{Field: "name", From: prev, To: role.Name}
	}
	s.rec.Record(ctx, entry)
	return &role, nil
}

// GetRole retrieves a role by ID.
func (s *Store) GetRole(ctx context.Context, id uint) (*models.Role, error) {
	var role models.Role
	if err := s.db.WithContext(ctx).First(&role, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &apperr.NotFoundError{Entity: "role", ID: id}
		}
		return nil, apperr.Persistence("load role", err)
	}
	return &role, nil
}

// ListRoles retrieves all roles except the reserved super-role.
func (s *Store) ListRoles(ctx context.Context) ([]models.Role, error) {
	var roles []models.Role
	if err := s.db.WithContext(ctx).
		Where("name <> ?", models.SuperRoleName).
		Order("id DESC").Find(&roles).Error; err != nil {
		return nil, apperr.Persistence("list roles", err)
	}
	return roles, nil
}

// DeleteRole soft-deletes a role and clears every relation that points at it.
func (s *Store) DeleteRole(ctx context.Context, id uint) error {
	var role models.Role
	if err := s.db.WithContext(ctx).First(&role, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &apperr.NotFoundError{Entity: "role", ID: id}
		}
		return apperr.Persistence("load role", err)
	}
	if role.Name == models.SuperRoleName {
		return &apperr.ValidationError{Field: "id", Reason: "reserved role cannot be deleted"}
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("role_id = ?", id).Delete(&models.RolePermission{}).Error; err != nil {
			return err
		}
		if err := tx.Where("role_id = ?", id).Delete(&models.UserRole{}).Error; err != nil {
			return err
		}
		if err := tx.Where("role_id = ?", id).Delete(&models.PageRole{}).Error; err != nil {
			return err
		}
		return tx.Delete(&role).Error
	})
	if err != nil {
		return apperr.Persistence("delete role", err)
	}

	s.rec.Record(ctx, audit.Entry{
		Action:      "role.delete",
		Entity:      "role",
		EntityID:    &id,
		Description: "Deleted role " + role.Name,
	})
	return nil
}
