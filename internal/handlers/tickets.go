package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/magpress/magpress/internal/store"
)

type ticketRequest struct {
	EventID   *uint  `json:"event_id"`
	Name      string `json:"name"`
	PriceCent int    `json:"price_cent"`
	Quantity  int    `json:"quantity"`
	Active    bool   `json:"active"`
}

func (r ticketRequest) params() store.TicketParams {
	return store.TicketParams{
		EventID:   r.EventID,
		Name:      r.Name,
		PriceCent: r.PriceCent,
		Quantity:  r.Quantity,
		Active:    r.Active,
	}
}

func (h *Handler) CreateTicket(c *fiber.Ctx) error {
	var req ticketRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "malformed request body"})
	}
	tk, err := h.store.CreateTicket(c.UserContext(), req.params())
	if err != nil {
		return h.respondErr(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(tk)
}

func (h *Handler) UpdateTicket(c *fiber.Ctx) error {
	id, err := pathID(c)
	if err != nil {
		return h.respondErr(c, err)
	}
	var req ticketRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "malformed request body"})
	}
	tk, err := h.store.UpdateTicket(c.UserContext(), id, req.params())
	if err != nil {
		return h.respondErr(c, err)
	}
	return c.JSON(tk)
}

// ListTickets lists tickets, narrowed by ?event_id when present.
func (h *Handler) ListTickets(c *fiber.Ctx) error {
	eventID, err := queryUint(c, "event_id")
	if err != nil {
		return h.respondErr(c, err)
	}
	tks, err := h.store.ListTickets(c.UserContext(), eventID)
	if err != nil {
		return h.respondErr(c, err)
	}
	return c.JSON(tks)
}

func (h *Handler) DeleteTicket(c *fiber.Ctx) error {
	id, err := pathID(c)
	if err != nil {
		return h.respondErr(c, err)
	}
	if err := h.store.DeleteTicket(c.UserContext(), id); err != nil {
		return h.respondErr(c, err)
	}
	return c.JSON(fiber.Map{"ok": true})
}
