package store

import (
	"context"
	"errors"
	"testing"

	"github.com/magpress/magpress/internal/apperr"
)

func TestCreateUserNormalizesEmail(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	user, err := s.CreateUser(ctx, CreateUserParams{
		Email:       "  Editor@Example.COM ",
		DisplayName: "Editor",
		Password:    "secret123",
		Active:      true,
	})
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	if user.Email != "editor@example.com" {
		t.Fatalf("expected normalized email, got %q", user.Email)
	}

	_, err = s.CreateUser(ctx, CreateUserParams{
		Email:       "EDITOR@example.com",
		DisplayName: "Dup",
		Password:    "secret123",
	})
	var ve *apperr.ValidationError
	if !errors.As(err, &ve) || ve.Field != "email" {
		t.Fatalf("expected email validation error, got %v", err)
	}
}

func TestVerifyCredentials(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	mustCreateUser(t, s, "editor@example.com")

	user, err := s.VerifyCredentials(ctx, "editor@example.com", "secret123")
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if user.Email != "editor@example.com" {
		t.Fatalf("unexpected user %q", user.Email)
	}

	if _, err := s.VerifyCredentials(ctx, "editor@example.com", "wrong"); !errors.Is(err, apperr.ErrPermissionDenied) {
		t.Fatalf("expected permission denied for bad password, got %v", err)
	}
	if _, err := s.VerifyCredentials(ctx, "ghost@example.com", "secret123"); !errors.Is(err, apperr.ErrPermissionDenied) {
		t.Fatalf("expected permission denied for unknown email, got %v", err)
	}
}

func TestVerifyCredentialsRejectsInactive(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	user := mustCreateUser(t, s, "editor@example.com")

	if _, err := s.UpdateUser(ctx, user.ID, UpdateUserParams{DisplayName: "Editor", Active: false}); err != nil {
		t.Fatalf("deactivate: %v", err)
	}
	if _, err := s.VerifyCredentials(ctx, "editor@example.com", "secret123"); !errors.Is(err, apperr.ErrPermissionDenied) {
		t.Fatalf("expected permission denied for inactive user, got %v", err)
	}
}

func TestVerifyCredentialsRejectsUserCreatedInactive(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if _, err := s.CreateUser(ctx, CreateUserParams{
		Email:       "dormant@example.com",
		DisplayName: "Dormant",
		Password:    "secret123",
		Active:      false,
	}); err != nil {
		t.Fatalf("create user: %v", err)
	}
	if _, err := s.VerifyCredentials(ctx, "dormant@example.com", "secret123"); !errors.Is(err, apperr.ErrPermissionDenied) {
		t.Fatalf("expected permission denied for user created inactive, got %v", err)
	}
}

func TestUserRoleNames(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	user := mustCreateUser(t, s, "editor@example.com")
	ra := mustCreateRole(t, s, "Editor")
	rb := mustCreateRole(t, s, "Publisher")

	if _, err := s.ReplaceUserRoles(ctx, user.ID, []uint{ra.ID, rb.ID}); err != nil {
		t.Fatalf("replace roles: %v", err)
	}
	names, err := s.UserRoleNames(ctx, user.ID)
	if err != nil {
		t.Fatalf("role names: %v", err)
	}
	if len(names) != 2 {
		t.Fatalf("expected 2 role names, got %v", names)
	}
}

func TestDeleteUserClearsRoleAssignments(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	user := mustCreateUser(t, s, "editor@example.com")
	role := mustCreateRole(t, s, "Editor")
	if _, err := s.ReplaceUserRoles(ctx, user.ID, []uint{role.ID}); err != nil {
		t.Fatalf("replace roles: %v", err)
	}

	if err := s.DeleteUser(ctx, user.ID); err != nil {
		t.Fatalf("delete user: %v", err)
	}
	if _, err := s.GetUser(ctx, user.ID); !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("expected not found after delete, got %v", err)
	}
	names, err := s.UserRoleNames(ctx, user.ID)
	if err != nil {
		t.Fatalf("role names: %v", err)
	}
	if len(names) != 0 {
		t.Fatalf("expected role assignments cleared, got %v", names)
	}
}

func TestSetUserPassword(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	user := mustCreateUser(t, s, "editor@example.com")

	if err := s.SetUserPassword(ctx, user.ID, "newsecret"); err != nil {
		t.Fatalf("set password: %v", err)
	}
	if _, err := s.VerifyCredentials(ctx, "editor@example.com", "newsecret"); err != nil {
		t.Fatalf("verify new password: %v", err)
	}
	if _, err := s.VerifyCredentials(ctx, "editor@example.com", "secret123"); !errors.Is(err, apperr.ErrPermissionDenied) {
		t.Fatalf("old password should no longer verify, got %v", err)
	}
}
