package handlers

import (
	"github.com/gofiber/fiber/v2"
)

type roleRequest struct {
	Name   string `json:"name"`
	Active bool   `json:"active"`
}

func (h *Handler) CreateRole(c *fiber.Ctx) error {
	var req roleRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "malformed request body"})
	}
	role, err := h.store.CreateRole(c.UserContext(), req.Name, req.Active)
	if err != nil {
		return h.respondErr(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(role)
}

func (h *Handler) UpdateRole(c *fiber.Ctx) error {
	id, err := pathID(c)
	if err != nil {
		return h.respondErr(c, err)
	}
	var req roleRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "malformed request body"})
	}
	role, err := h.store.UpdateRole(c.UserContext(), id, req.Name, req.Active)
	if err != nil {
		return h.respondErr(c, err)
	}
	// Renames can change what a page's role grants mean.
	h.resolver.InvalidateAll(c.UserContext())
	return c.JSON(role)
}

func (h *Handler) ListRoles(c *fiber.Ctx) error {
	roles, err := h.store.ListRoles(c.UserContext())
	if err != nil {
		return h.respondErr(c, err)
	}
	return c.JSON(roles)
}

func (h *Handler) DeleteRole(c *fiber.Ctx) error {
	id, err := pathID(c)
	if err != nil {
		return h.respondErr(c, err)
	}
	if err := h.store.DeleteRole(c.UserContext(), id); err != nil {
		return h.respondErr(c, err)
	}
	h.resolver.InvalidateAll(c.UserContext())
	h.cache.Clear()
	return c.JSON(fiber.Map{"ok": true})
}

// ReplaceRolePermissions replaces a role's permission set as a whole.
func (h *Handler) ReplaceRolePermissions(c *fiber.Ctx) error {
	id, err := pathID(c)
	if err != nil {
		return h.respondErr(c, err)
	}
	var req replaceRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "malformed request body"})
	}
	res, err := h.store.ReplaceRolePermissions(c.UserContext(), id, req.PermissionIDs)
	if err != nil {
		return h.respondErr(c, err)
	}
	return c.JSON(fiber.Map{"summary": res.Summary, "permissions": res.TargetNames})
}
