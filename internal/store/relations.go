package store

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/magpress/magpress/internal/apperr"
	"github.com/magpress/magpress/internal/audit"
	"github.com/magpress/magpress/internal/models"
)

// ReplaceResult is the success payload of a full-replace relation update.
type ReplaceResult struct {
	Summary     string
	TargetNames []string
	Diff        audit.RelationDiff
}

// Relation sets are always replaced as a whole: delete everything for the
// owner, then insert the complete new set, inside one transaction. Targets
// are validated before the delete so an unknown id aborts with the store
// unchanged. An empty target set is an explicit "remove all".

// ReplaceRolePermissions replaces the permission set granted to a role.
func (s *Store) ReplaceRolePermissions(ctx context.Context, roleID uint, permissionIDs []uint) (*ReplaceResult, error) {
	var role models.Role
	if err := s.db.WithContext(ctx).First(&role, roleID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &apperr.NotFoundError{Entity: "role", ID: roleID}
		}
		return nil, apperr.Persistence("load role", err)
	}

	ids := dedupeIDs(permissionIDs)
	var before, after []audit.EntityRef
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		if before, err = joinedRefs(tx, &models.Permission{}, "permissions", "role_permissions", "permission_id", "role_id", roleID); err != nil {
			return err
		}
		if after, err = targetRefs(tx, &models.Permission{}, "permission", "permission_ids", ids); err != nil {
			return err
		}
		if err := tx.Where("role_id = ?", roleID).Delete(&models.RolePermission{}).Error; err != nil {
			return err
		}
		if len(ids) == 0 {
			return nil
		}
		rows := make([]models.RolePermission, 0, len(ids))
		for _, id := range ids {
			rows = append(rows, models.RolePermission{RoleID: roleID, PermissionID: id})
		}
		return tx.Create(&rows).Error
	})
	if err != nil {
		return nil, apperr.Persistence("replace role permissions", err)
	}

	res := s.finishReplace(ctx, before, after, replaceEvent{
		action:      "role.permissions.replace",
		entity:      "role",
		entityID:    roleID,
		description: fmt.Sprintf("Replaced permissions of role %q", role.Name),
	})
	res.Summary = fmt.Sprintf("role %q now holds %d permission(s)", role.Name, len(after))
	return res, nil
}

// ReplaceUserRoles replaces the role set assigned to a user.
func (s *Store) ReplaceUserRoles(ctx context.Context, userID uint, roleIDs []uint) (*ReplaceResult, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &apperr.NotFoundError{Entity: "user", ID: userID}
		}
		return nil, apperr.Persistence("load user", err)
	}

	ids := dedupeIDs(roleIDs)
	var before, after []audit.EntityRef
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		if before, err = joinedRefs(tx, &models.Role{}, "roles", "user_roles", "role_id", "user_id", userID); err != nil {
			return err
		}
		if after, err = targetRefs(tx, &models.Role{}, "role", "role_ids", ids); err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", userID).Delete(&models.UserRole{}).Error; err != nil {
			return err
		}
		if len(ids) == 0 {
			return nil
		}
		rows := make([]models.UserRole, 0, len(ids))
		for _, id := range ids {
			rows = append(rows, models.UserRole{UserID: userID, RoleID: id})
		}
		return tx.Create(&rows).Error
	})
	if err != nil {
		return nil, apperr.Persistence("replace user roles", err)
	}

	res := s.finishReplace(ctx, before, after, replaceEvent{
		action:      "user.roles.replace",
		entity:      "user",
		entityID:    userID,
		description: fmt.Sprintf("Replaced roles of user %q", user.Email),
	})
	res.Summary = fmt.Sprintf("user %q now holds %d role(s)", user.Email, len(after))
	return res, nil
}

// ReplacePageRoles replaces the role set allowed to access a page.
func (s *Store) ReplacePageRoles(ctx context.Context, pageID uint, roleIDs []uint) (*ReplaceResult, error) {
	var page models.Page
	if err := s.db.WithContext(ctx).First(&page, pageID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &apperr.NotFoundError{Entity: "page", ID: pageID}
		}
		return nil, apperr.Persistence("load page", err)
	}

	ids := dedupeIDs(roleIDs)
	var before, after []audit.EntityRef
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		if before, err = joinedRefs(tx, &models.Role{}, "roles", "page_roles", "role_id", "page_id", pageID); err != nil {
			return err
		}
		if after, err = targetRefs(tx, &models.Role{}, "role", "role_ids", ids); err != nil {
			return err
		}
		if err := tx.Where("page_id = ?", pageID).Delete(&models.PageRole{}).Error; err != nil {
			return err
		}
		if len(ids) == 0 {
			return nil
		}
		rows := make([]models.PageRole, 0, len(ids))
		for _, id := range ids {
			rows = append(rows, models.PageRole{PageID: pageID, RoleID: id})
		}
		return tx.Create(&rows).Error
	})
	if err != nil {
		return nil, apperr.Persistence("replace page roles", err)
	}

	res := s.finishReplace(ctx, before, after, replaceEvent{
		action:      "page.roles.replace",
		entity:      "page",
		entityID:    pageID,
		description: fmt.Sprintf("Replaced roles of page %q", page.Path),
	})
	res.Summary = fmt.Sprintf("page %q is now visible to %d role(s)", page.Path, len(after))
	return res, nil
}

// ReplaceBlogCategories replaces the category set attached to a blog.
func (s *Store) ReplaceBlogCategories(ctx context.Context, blogID uint, categoryIDs []uint) (*ReplaceResult, error) {
	var blog models.Blog
	if err := s.db.WithContext(ctx).First(&blog, blogID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &apperr.NotFoundError{Entity: "blog", ID: blogID}
		}
		return nil, apperr.Persistence("load blog", err)
	}

	ids := dedupeIDs(categoryIDs)
	var before, after []audit.EntityRef
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		if before, err = joinedRefs(tx, &models.Category{}, "categories", "blog_categories", "category_id", "blog_id", blogID); err != nil {
			return err
		}
		if after, err = targetRefs(tx, &models.Category{}, "category", "category_ids", ids); err != nil {
			return err
		}
		if err := tx.Where("blog_id = ?", blogID).Delete(&models.BlogCategory{}).Error; err != nil {
			return err
		}
		if len(ids) == 0 {
			return nil
		}
		rows := make([]models.BlogCategory, 0, len(ids))
		for _, id := range ids {
			rows = append(rows, models.BlogCategory{BlogID: blogID, CategoryID: id})
		}
		return tx.Create(&rows).Error
	})
	if err != nil {
		return nil, apperr.Persistence("replace blog categories", err)
	}

	res := s.finishReplace(ctx, before, after, replaceEvent{
		action:      "blog.categories.replace",
		entity:      "blog",
		entityID:    blogID,
		description: fmt.Sprintf("Replaced categories of blog %q", blog.Slug),
	})
	res.Summary = fmt.Sprintf("blog %q now has %d category(ies)", blog.Slug, len(after))
	return res, nil
}

type replaceEvent struct {
	action      string
	entity      string
	entityID    uint
	description string
}

func (s *Store) finishReplace(ctx context.Context, before, after []audit.EntityRef, ev replaceEvent) *ReplaceResult {
	sortRefs(before)
	sortRefs(after)
	added, removed := diffRefs(before, after)
	diff := audit.RelationDiff{Before: before, After: after, Added: added, Removed: removed}

	id := ev.entityID
	s.rec.Record(ctx, audit.Entry{
		Action:      ev.action,
		Entity:      ev.entity,
		EntityID:    &id,
		Description: ev.description,
		Metadata:    diff,
	})
	return &ReplaceResult{TargetNames: refNames(after), Diff: diff}
}

// joinedRefs loads the current id/name target set for an owner through a
// join table.
func joinedRefs(tx *gorm.DB, targetModel any, targetTable, joinTable, targetCol, ownerCol string, ownerID uint) ([]audit.EntityRef, error) {
	refs := []audit.EntityRef{}
	err := tx.Model(targetModel).
		Select(targetTable+".id AS id, "+targetTable+".name AS name").
		Joins(fmt.Sprintf("JOIN %s j ON j.%s = %s.id", joinTable, targetCol, targetTable)).
		Where(fmt.Sprintf("j.%s = ?", ownerCol), ownerID).
		Scan(&refs).Error
	if err != nil {
		return nil, err
	}
	return refs, nil
}

// targetRefs validates that every id references an existing target and
// returns the id/name set. The first unknown id fails the whole operation.
func targetRefs(tx *gorm.DB, targetModel any, entity, field string, ids []uint) ([]audit.EntityRef, error) {
	if len(ids) == 0 {
		return []audit.EntityRef{}, nil
	}
	refs := []audit.EntityRef{}
	if err := tx.Model(targetModel).Select("id, name").Where("id IN ?", ids).Scan(&refs).Error; err != nil {
		return nil, err
	}
	if len(refs) != len(ids) {
		found := make(map[uint]struct{}, len(refs))
		for _, r := range refs {
			found[r.ID] = struct{}{}
		}
		for _, id := range ids {
			if _, ok := found[id]; !ok {
				return nil, &apperr.ValidationError{
					Field:  field,
					Reason: fmt.Sprintf("%s %d does not exist", entity, id),
				}
			}
		}
	}
	return refs, nil
}
