package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/magpress/magpress/internal/store"
)

type userRequest struct {
	Email       string `json:"email"`
	DisplayName string `json:"display_name"`
	Phone       string `json:"phone"`
	Password    string `json:"password"`
	Active      bool   `json:"active"`
	ImageURL    string `json:"image_url"`
	RoleIDs     []uint `json:"role_ids"`
}

func (h *Handler) CreateUser(c *fiber.Ctx) error {
	var req userRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "malformed request body"})
	}
	user, err := h.store.CreateUser(c.UserContext(), store.CreateUserParams{
		Email:       req.Email,
		DisplayName: req.DisplayName,
		Phone:       req.Phone,
		Password:    req.Password,
		Active:      req.Active,
		RoleIDs:     req.RoleIDs,
	})
	if err != nil {
		return h.respondErr(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(user)
}

func (h *Handler) UpdateUser(c *fiber.Ctx) error {
	id, err := pathID(c)
	if err != nil {
		return h.respondErr(c, err)
	}
	var req userRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "malformed request body"})
	}
	user, err := h.store.UpdateUser(c.UserContext(), id, store.UpdateUserParams{
		DisplayName: req.DisplayName,
		Phone:       req.Phone,
		Active:      req.Active,
		ImageURL:    req.ImageURL,
	})
	if err != nil {
		return h.respondErr(c, err)
	}
	return c.JSON(user)
}

func (h *Handler) GetUser(c *fiber.Ctx) error {
	id, err := pathID(c)
	if err != nil {
		return h.respondErr(c, err)
	}
	user, err := h.store.GetUser(c.UserContext(), id)
	if err != nil {
		return h.respondErr(c, err)
	}
	return c.JSON(user)
}

func (h *Handler) ListUsers(c *fiber.Ctx) error {
	users, err := h.store.ListUsers(c.UserContext())
	if err != nil {
		return h.respondErr(c, err)
	}
	return c.JSON(users)
}

func (h *Handler) DeleteUser(c *fiber.Ctx) error {
	id, err := pathID(c)
	if err != nil {
		return h.respondErr(c, err)
	}
	if err := h.store.DeleteUser(c.UserContext(), id); err != nil {
		return h.respondErr(c, err)
	}
	return c.JSON(fiber.Map{"ok": true})
}

type replaceRequest struct {
	RoleIDs       []uint `json:"role_ids"`
	PermissionIDs []uint `json:"permission_ids"`
	CategoryIDs   []uint `json:"category_ids"`
}

// ReplaceUserRoles replaces a user's role set as a whole.
func (h *Handler) ReplaceUserRoles(c *fiber.Ctx) error {
	id, err := pathID(c)
	if err != nil {
		return h.respondErr(c, err)
	}
	var req replaceRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "malformed request body"})
	}
	res, err := h.store.ReplaceUserRoles(c.UserContext(), id, req.RoleIDs)
	if err != nil {
		return h.respondErr(c, err)
	}
	return c.JSON(fiber.Map{"summary": res.Summary, "roles": res.TargetNames})
}

func (h *Handler) SetUserPassword(c *fiber.Ctx) error {
	id, err := pathID(c)
	if err != nil {
		return h.respondErr(c, err)
	}
	var req struct {
		Password string `json:"password"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "malformed request body"})
	}
	if err := h.store.SetUserPassword(c.UserContext(), id, req.Password); err != nil {
		return h.respondErr(c, err)
	}
	return c.JSON(fiber.Map{"ok": true})
}
