package store

import (
	"context"
	"errors"
	"strings"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/magpress/magpress/internal/apperr"
	"github.com/magpress/magpress/internal/audit"
	"github.com/magpress/magpress/internal/models"
)

// CreateUserParams carries the fields of a new admin user.
type CreateUserParams struct {
	Email       string
	DisplayName string
	Phone       string
	Password    string
	Active      bool
	RoleIDs     []uint
}

// CreateUser creates a user and assigns its initial role set.
func (s *Store) CreateUser(ctx context.Context, p CreateUserParams) (*models.User, error) {
	p.Email = strings.TrimSpace(strings.ToLower(p.Email))
	if p.Email == "" {
		return nil, &apperr.ValidationError{Field: "email", Reason: "must not be blank"}
	}
	if p.DisplayName == "" {
		return nil, &apperr.ValidationError{Field: "display_name", Reason: "must not be blank"}
	}
	if p.Password == "" {
		return nil, &apperr.ValidationError{Field: "password", Reason: "must not be blank"}
	}

	var existing models.User
	if err := s.db.WithContext(ctx).Unscoped().Where("email = ?", p.Email).First(&existing).Error; err == nil {
		return nil, &apperr.ValidationError{Field: "email", Reason: "already in use"}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(p.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, apperr.Persistence("hash password", err)
	}

	user := models.User{
		Email:        p.Email,
		DisplayName:  p.DisplayName,
		Phone:        p.Phone,
		Active:       p.Active,
		PasswordHash: string(hash),
	}
	if err := s.db.WithContext(ctx).Create(&user).Error; err != nil {
		return nil, apperr.Persistence("create user", err)
	}

	if len(p.RoleIDs) > 0 {
		if _, err := s.ReplaceUserRoles(ctx, user.ID, p.RoleIDs); err != nil {
			return nil, err
		}
	}

	s.rec.Record(ctx, audit.Entry{
		Action:      "user.create",
		Entity:      "user",
		EntityID:    &user.ID,
		Description: "Created user " + user.Email,
	})
	return &user, nil
}

// UpdateUserParams carries the editable fields of a user.
type UpdateUserParams struct {
	DisplayName string
	Phone       string
	Active      bool
	ImageURL    string
}

// UpdateUser updates a user's profile fields.
func (s *Store) UpdateUser(ctx context.Context, id uint, p UpdateUserParams) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &apperr.NotFoundError{Entity: "user", ID: id}
		}
		return nil, apperr.Persistence("load user", err)
	}
	if p.DisplayName == "" {
		return nil, &apperr.ValidationError{Field: "display_name", Reason: "must not be blank"}
	}

	wasActive := user.Active
	user.DisplayName = p.DisplayName
	user.Phone = p.Phone
	user.Active = p.Active
	if p.ImageURL != "" {
		user.ImageURL = p.ImageURL
	}
	if err := s.db.WithContext(ctx).Save(&user).Error; err != nil {
		return nil, apperr.Persistence("update user", err)
	}

	entry := audit.Entry{
		Action:      "user.update",
		Entity:      "user",
		EntityID:    &user.ID,
		Description: "Updated user " + user.Email,
	}
	if wasActive != user.Active {
		entry.Metadata = audit.FieldDiff{Field: "active", From: wasActive, To: user.Active}
	}
	s.rec.Record(ctx, entry)
	return &user, nil
}

// SetUserPassword replaces a user's password credential.
func (s *Store) SetUserPassword(ctx context.Context, id uint, plain string) error {
	if strings.TrimSpace(plain) == "" {
		return &apperr.ValidationError{Field: "password", Reason: "must not be blank"}
	}
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &apperr.NotFoundError{Entity: "user", ID: id}
		}
		return apperr.Persistence("load user", err)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)
	if err != nil {
		return apperr.Persistence("hash password", err)
	}
	if err := s.db.WithContext(ctx).Model(&user).Update("password_hash", string(hash)).Error; err != nil {
		return apperr.Persistence("update password", err)
	}
	s.rec.Record(ctx, audit.Entry{
		Action:      "user.password.change",
		Entity:      "user",
		EntityID:    &user.ID,
		Description: "Changed password of user " + user.Email,
	})
	return nil
}

// GetUser retrieves a user by ID.
func (s *Store) GetUser(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &apperr.NotFoundError{Entity: "user", ID: id}
		}
		return nil, apperr.Persistence("load user", err)
	}
	return &user, nil
}

// ListUsers retrieves all users, newest first.
func (s *Store) ListUsers(ctx context.Context) ([]models.User, error) {
	var users []models.User
	if err := s.db.WithContext(ctx).Order("id DESC").Find(&users).Error; err != nil {
		return nil, apperr.Persistence("list users", err)
	}
	return users, nil
}

// DeleteUser soft-deletes a user and clears its role assignments.
func (s *Store) DeleteUser(ctx context.Context, id uint) error {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &apperr.NotFoundError{Entity: "user", ID: id}
		}
		return apperr.Persistence("load user", err)
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", id).Delete(&models.UserRole{}).Error; err != nil {
			return err
		}
		return tx.Delete(&user).Error
	})
	if err != nil {
		return apperr.Persistence("delete user", err)
	}
	s.rec.Record(ctx, audit.Entry{
		Action:      "user.delete",
		Entity:      "user",
		EntityID:    &id,
		Description: "Deleted user " + user.Email,
	})
	return nil
}

// VerifyCredentials checks an email/password pair against the stored
// credential. Inactive users cannot log in.
func (s *Store) VerifyCredentials(ctx context.Context, email, password string) (*models.User, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	var user models.User
	if err := s.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		return nil, apperr.ErrPermissionDenied
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, apperr.ErrPermissionDenied
	}
	if !user.Active {
		return nil, apperr.ErrPermissionDenied
	}
	return &user, nil
}

// UserRoleNames retrieves the role-name set held by a user.
func (s *Store) UserRoleNames(ctx context.Context, userID uint) ([]string, error) {
	var names []string
	err := s.db.WithContext(ctx).Model(&models.Role{}).
		Joins("JOIN user_roles ur ON ur.role_id = roles.id").
		Where("ur.user_id = ?", userID).
		Pluck("roles.name", &names).Error
	if err != nil {
		return nil, apperr.Persistence("load user roles", err)
	}
	return names, nil
}
