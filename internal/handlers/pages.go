package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/magpress/magpress/internal/store"
)

type pageRequest struct {
	Name        string `json:"name"`
	Path        string `json:"path"`
	Description string `json:"description"`
	Active      bool   `json:"active"`
}

func (h *Handler) CreatePage(c *fiber.Ctx) error {
	var req pageRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "malformed request body"})
	}
	page, err := h.store.CreatePage(c.UserContext(), store.PageParams{
		Name:        req.Name,
		Path:        req.Path,
		Description: req.Description,
		Active:      req.Active,
	})
	if err != nil {
		return h.respondErr(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(page)
}

func (h *Handler) UpdatePage(c *fiber.Ctx) error {
	id, err := pathID(c)
	if err != nil {
		return h.respondErr(c, err)
	}
	var req pageRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "malformed request body"})
	}
	prev, err := h.store.GetPage(c.UserContext(), id)
	if err != nil {
		return h.respondErr(c, err)
	}
	page, err := h.store.UpdatePage(c.UserContext(), id, store.PageParams{
		Name:        req.Name,
		Path:        req.Path,
		Description: req.Description,
		Active:      req.Active,
	})
	if err != nil {
		return h.respondErr(c, err)
	}
	h.resolver.InvalidatePage(c.UserContext(), prev.Path)
	h.resolver.InvalidatePage(c.UserContext(), page.Path)
	h.cache.Clear()
	return c.JSON(page)
}

func (h *Handler) ListPages(c *fiber.Ctx) error {
	pages, err := h.store.ListPages(c.UserContext())
	if err != nil {
		return h.respondErr(c, err)
	}
	return c.JSON(pages)
}

func (h *Handler) DeletePage(c *fiber.Ctx) error {
	id, err := pathID(c)
	if err != nil {
		return h.respondErr(c, err)
	}
	page, err := h.store.GetPage(c.UserContext(), id)
	if err != nil {
		return h.respondErr(c, err)
	}
	if err := h.store.DeletePage(c.UserContext(), id); err != nil {
		return h.respondErr(c, err)
	}
	h.resolver.InvalidatePage(c.UserContext(), page.Path)
	h.cache.Clear()
	return c.JSON(fiber.Map{"ok": true})
}

// ReplacePageRoles replaces the role set allowed to access a page.
func (h *Handler) ReplacePageRoles(c *fiber.Ctx) error {
	id, err := pathID(c)
	if err != nil {
		return h.respondErr(c, err)
	}
	var req replaceRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "malformed request body"})
	}
	res, err := h.store.ReplacePageRoles(c.UserContext(), id, req.RoleIDs)
	if err != nil {
		return h.respondErr(c, err)
	}
	if page, err := h.store.GetPage(c.UserContext(), id); err == nil {
		h.resolver.InvalidatePage(c.UserContext(), page.Path)
	}
	h.cache.Clear()
	return c.JSON(fiber.Map{"summary": res.Summary, "roles": res.TargetNames})
}
