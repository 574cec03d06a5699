package handlers

import (
	"github.com/gofiber/fiber/v2"
)

type permissionRequest struct {
	Name string `json:"name"`
}

func (h *Handler) CreatePermission(c *fiber.Ctx) error {
	var req permissionRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "malformed request body"})
	}
	perm, err := h.store.CreatePermission(c.UserContext(), req.Name)
	if err != nil {
		return h.respondErr(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(perm)
}

func (h *Handler) UpdatePermission(c *fiber.Ctx) error {
	id, err := pathID(c)
	if err != nil {
		return h.respondErr(c, err)
	}
	var req permissionRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "malformed request body"})
	}
	perm, err := h.store.UpdatePermission(c.UserContext(), id, req.Name)
	if err != nil {
		return h.respondErr(c, err)
	}
	return c.JSON(perm)
}

func (h *Handler) ListPermissions(c *fiber.Ctx) error {
	perms, err := h.store.ListPermissions(c.UserContext())
	if err != nil {
		return h.respondErr(c, err)
	}
	return c.JSON(perms)
}

func (h *Handler) DeletePermission(c *fiber.Ctx) error {
	id, err := pathID(c)
	if err != nil {
		return h.respondErr(c, err)
	}
	if err := h.store.DeletePermission(c.UserContext(), id); err != nil {
		return h.respondErr(c, err)
	}
	return c.JSON(fiber.Map{"ok": true})
}
