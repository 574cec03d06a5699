package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/magpress/magpress/internal/audit"
	"github.com/magpress/magpress/internal/middleware"
	"github.com/magpress/magpress/internal/session"
)

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login verifies credentials, issues a session token and records the
// attempt either way.
func (h *Handler) Login(c *fiber.Ctx) error {
	var req loginRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "malformed request body"})
	}

	user, err := h.store.VerifyCredentials(c.UserContext(), req.Email, req.Password)
	if err != nil {
		h.rec.Record(c.UserContext(), audit.Entry{
			Action:      "auth.login.failure",
			Entity:      "user",
			Description: "Failed login for " + req.Email,
			UserName:    req.Email,
		})
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "invalid credentials"})
	}

	roles, err := h.store.UserRoleNames(c.UserContext(), user.ID)
	if err != nil {
		return h.respondErr(c, err)
	}

	p := session.Principal{UserID: user.ID, DisplayName: user.DisplayName, Roles: roles}
	token, err := h.sessions.Issue(p)
	if err != nil {
		return h.respondErr(c, err)
	}

	h.rec.Record(c.UserContext(), audit.Entry{
		Action:      "auth.login.success",
		Entity:      "user",
		EntityID:    &user.ID,
		Description: "Logged in " + user.Email,
		UserID:      &user.ID,
		UserName:    user.DisplayName,
	})

	c.Cookie(&fiber.Cookie{Name: "magpress_session", Value: token, HTTPOnly: true, Path: "/"})
	return c.JSON(fiber.Map{
		"token": token,
		"user": fiber.Map{
			"id":           user.ID,
			"email":        user.Email,
			"display_name": user.DisplayName,
			"roles":        roles,
		},
	})
}

// Logout clears the session cookie and records the event.
func (h *Handler) Logout(c *fiber.Ctx) error {
	if p := middleware.PrincipalFromCtx(c); p != nil {
		h.rec.Record(c.UserContext(), audit.Entry{
			Action:      "auth.logout",
			Entity:      "user",
			EntityID:    &p.UserID,
			Description: "Logged out " + p.DisplayName,
			UserID:      &p.UserID,
			UserName:    p.DisplayName,
		})
	}
	c.ClearCookie("magpress_session")
	return c.JSON(fiber.Map{"ok": true})
}

// Me returns the current principal.
func (h *Handler) Me(c *fiber.Ctx) error {
	p := middleware.PrincipalFromCtx(c)
	if p == nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "authentication required"})
	}
	return c.JSON(fiber.Map{
		"id":           p.UserID,
		"display_name": p.DisplayName,
		"roles":        p.Roles,
	})
}
