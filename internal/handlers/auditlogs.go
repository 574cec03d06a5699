package handlers

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/magpress/magpress/internal/apperr"
	"github.com/magpress/magpress/internal/audit"
)

// ListAuditLogs serves the audit trail. Query parameters narrow the result
// and are ANDed together: user_id, action, entity, entity_id, from, to
// (RFC 3339), plus page and page_size.
func (h *Handler) ListAuditLogs(c *fiber.Ctx) error {
	var f audit.Filter
	var err error

	if f.UserID, err = queryUint(c, "user_id"); err != nil {
		return h.respondErr(c, err)
	}
	if f.EntityID, err = queryUint(c, "entity_id"); err != nil {
		return h.respondErr(c, err)
	}
	f.Action = c.Query("action")
	f.Entity = c.Query("entity")
	if f.From, err = queryTime(c, "from"); err != nil {
		return h.respondErr(c, err)
	}
	if f.To, err = queryTime(c, "to"); err != nil {
		return h.respondErr(c, err)
	}

	page, err := h.rec.List(c.UserContext(), f, c.QueryInt("page", 1), c.QueryInt("page_size", 20))
	if err != nil {
		return h.respondErr(c, err)
	}
	return c.JSON(fiber.Map{
		"items":      page.Items,
		"total":      page.Total,
		"page":       page.Page,
		"page_size":  page.PageSize,
		"page_count": page.PageCount,
	})
}

func queryUint(c *fiber.Ctx, name string) (*uint, error) {
	raw := c.Query(name)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return nil, &apperr.ValidationError{Field: name, Reason: "must be a positive integer"}
	}
	id := uint(v)
	return &id, nil
}

func queryTime(c *fiber.Ctx, name string) (*time.Time, error) {
	raw := c.Query(name)
	if raw == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return nil, &apperr.ValidationError{Field: name, Reason: "must be an RFC 3339 timestamp"}
	}
	return &t, nil
}
