package handlers

import (
	"io"

	"github.com/gofiber/fiber/v2"

	"github.com/magpress/magpress/internal/audit"
	"github.com/magpress/magpress/internal/blob"
)

// Upload accepts a multipart file under the "file" field, stores it and
// returns its serving URL. Size and content type limits are enforced by
// the blob layer.
func (h *Handler) Upload(c *fiber.Ctx) error {
	fh, err := c.FormFile("file")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "missing file field"})
	}
	if fh.Size > blob.MaxSize {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "file exceeds 4MB limit"})
	}

	f, err := fh.Open()
	if err != nil {
		return h.respondErr(c, err)
	}
	defer f.Close()
	data, err := io.ReadAll(io.LimitReader(f, blob.MaxSize+1))
	if err != nil {
		return h.respondErr(c, err)
	}

	url, err := h.blobs.Store(c.UserContext(), fh.Filename, fh.Header.Get("Content-Type"), data)
	if err != nil {
		return h.respondErr(c, err)
	}

	h.rec.Record(c.UserContext(), audit.Entry{
		Action:      "upload.create",
		Entity:      "upload",
		Description: "Uploaded file " + fh.Filename,
	})
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"url": url})
}

// DeleteUpload removes a previously uploaded file by its serving URL.
func (h *Handler) DeleteUpload(c *fiber.Ctx) error {
	var req struct {
		URL string `json:"url"`
	}
	if err := c.BodyParser(&req); err != nil || req.URL == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "missing url"})
	}
	if err := h.blobs.Delete(c.UserContext(), req.URL); err != nil {
		return h.respondErr(c, err)
	}

	h.rec.Record(c.UserContext(), audit.Entry{
		Action:      "upload.delete",
		Entity:      "upload",
		Description: "Deleted file " + req.URL,
	})
	return c.JSON(fiber.Map{"ok": true})
}
