package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/magpress/magpress/internal/store"
)

type blogRequest struct {
	Title       string `json:"title"`
	Slug        string `json:"slug"`
	Body        string `json:"body"`
	ImageURL    string `json:"image_url"`
	Published   bool   `json:"published"`
	CategoryIDs []uint `json:"category_ids"`
}

func (h *Handler) blogParams(c *fiber.Ctx, req blogRequest) store.BlogParams {
	p := store.BlogParams{
		Title:       req.Title,
		Slug:        req.Slug,
		Body:        req.Body,
		ImageURL:    req.ImageURL,
		Published:   req.Published,
		CategoryIDs: req.CategoryIDs,
	}
	if principal := principalID(c); principal != nil {
		p.AuthorID = principal
	}
	return p
}

func (h *Handler) CreateBlog(c *fiber.Ctx) error {
	var req blogRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "malformed request body"})
	}
	blog, err := h.store.CreateBlog(c.UserContext(), h.blogParams(c, req))
	if err != nil {
		return h.respondErr(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(blog)
}

func (h *Handler) UpdateBlog(c *fiber.Ctx) error {
	id, err := pathID(c)
	if err != nil {
		return h.respondErr(c, err)
	}
	var req blogRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "malformed request body"})
	}
	blog, err := h.store.UpdateBlog(c.UserContext(), id, h.blogParams(c, req))
	if err != nil {
		return h.respondErr(c, err)
	}
	return c.JSON(blog)
}

func (h *Handler) GetBlog(c *fiber.Ctx) error {
	id, err := pathID(c)
	if err != nil {
		return h.respondErr(c, err)
	}
	blog, err := h.store.GetBlog(c.UserContext(), id)
	if err != nil {
		return h.respondErr(c, err)
	}
	return c.JSON(blog)
}

func (h *Handler) ListBlogs(c *fiber.Ctx) error {
	blogs, err := h.store.ListBlogs(c.UserContext(), c.QueryBool("published"))
	if err != nil {
		return h.respondErr(c, err)
	}
	return c.JSON(blogs)
}

// ListPublishedBlogs serves the public blog listing.
func (h *Handler) ListPublishedBlogs(c *fiber.Ctx) error {
	blogs, err := h.store.ListBlogs(c.UserContext(), true)
	if err != nil {
		return h.respondErr(c, err)
	}
	return c.JSON(blogs)
}

func (h *Handler) DeleteBlog(c *fiber.Ctx) error {
	id, err := pathID(c)
	if err != nil {
		return h.respondErr(c, err)
	}
	if err := h.store.DeleteBlog(c.UserContext(), id); err != nil {
		return h.respondErr(c, err)
	}
	return c.JSON(fiber.Map{"ok": true})
}

// ReplaceBlogCategories replaces a blog's category set as a whole.
func (h *Handler) ReplaceBlogCategories(c *fiber.Ctx) error {
	id, err := pathID(c)
	if err != nil {
		return h.respondErr(c, err)
	}
	var req replaceRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "malformed request body"})
	}
	res, err := h.store.ReplaceBlogCategories(c.UserContext(), id, req.CategoryIDs)
	if err != nil {
		return h.respondErr(c, err)
	}
	return c.JSON(fiber.Map{"summary": res.Summary, "categories": res.TargetNames})
}

type categoryRequest struct {
	Name string `json:"name"`
}

func (h *Handler) CreateCategory(c *fiber.Ctx) error {
	var req categoryRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "malformed request body"})
	}
	cat, err := h.store.CreateCategory(c.UserContext(), req.Name)
	if err != nil {
		return h.respondErr(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(cat)
}

func (h *Handler) UpdateCategory(c *fiber.Ctx) error {
	id, err := pathID(c)
	if err != nil {
		return h.respondErr(c, err)
	}
	var req categoryRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "malformed request body"})
	}
	cat, err := h.store.UpdateCategory(c.UserContext(), id, req.Name)
	if err != nil {
		return h.respondErr(c, err)
	}
	return c.JSON(cat)
}

func (h *Handler) ListCategories(c *fiber.Ctx) error {
	cats, err := h.store.ListCategories(c.UserContext())
	if err != nil {
		return h.respondErr(c, err)
	}
	return c.JSON(cats)
}

func (h *Handler) DeleteCategory(c *fiber.Ctx) error {
	id, err := pathID(c)
	if err != nil {
		return h.respondErr(c, err)
	}
	if err := h.store.DeleteCategory(c.UserContext(), id); err != nil {
		return h.respondErr(c, err)
	}
	return c.JSON(fiber.Map{"ok": true})
}
