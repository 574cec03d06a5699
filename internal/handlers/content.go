package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/magpress/magpress/internal/store"
)

type eventRequest struct {
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Location    string    `json:"location"`
	StartsAt    time.Time `json:"starts_at"`
	EndsAt      time.Time `json:"ends_at"`
	ImageURL    string    `json:"image_url"`
}

func (r eventRequest) params() store.EventParams {
	return store.EventParams{
		Title:       r.Title,
		Description: r.Description,
		Location:    r.Location,
		StartsAt:    r.StartsAt,
		EndsAt:      r.EndsAt,
		ImageURL:    r.ImageURL,
	}
}

func (h *Handler) CreateEvent(c *fiber.Ctx) error {
	var req eventRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "malformed request body"})
	}
	ev, err := h.store.CreateEvent(c.UserContext(), req.params())
	if err != nil {
		return h.respondErr(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(ev)
}

func (h *Handler) UpdateEvent(c *fiber.Ctx) error {
	id, err := pathID(c)
	if err != nil {
		return h.respondErr(c, err)
	}
	var req eventRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "malformed request body"})
	}
	ev, err := h.store.UpdateEvent(c.UserContext(), id, req.params())
	if err != nil {
		return h.respondErr(c, err)
	}
	return c.JSON(ev)
}

func (h *Handler) ListEvents(c *fiber.Ctx) error {
	evs, err := h.store.ListEvents(c.UserContext())
	if err != nil {
		return h.respondErr(c, err)
	}
	return c.JSON(evs)
}

func (h *Handler) DeleteEvent(c *fiber.Ctx) error {
	id, err := pathID(c)
	if err != nil {
		return h.respondErr(c, err)
	}
	if err := h.store.DeleteEvent(c.UserContext(), id); err != nil {
		return h.respondErr(c, err)
	}
	return c.JSON(fiber.Map{"ok": true})
}

type sponsorRequest struct {
	Name    string `json:"name"`
	Website string `json:"website"`
	LogoURL string `json:"logo_url"`
	Active  bool   `json:"active"`
}

func (r sponsorRequest) params() store.SponsorParams {
	return store.SponsorParams{Name: r.Name, Website: r.Website, LogoURL: r.LogoURL, Active: r.Active}
}

func (h *Handler) CreateSponsor(c *fiber.Ctx) error {
	var req sponsorRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "malformed request body"})
	}
	sp, err := h.store.CreateSponsor(c.UserContext(), req.params())
	if err != nil {
		return h.respondErr(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(sp)
}

func (h *Handler) UpdateSponsor(c *fiber.Ctx) error {
	id, err := pathID(c)
	if err != nil {
		return h.respondErr(c, err)
	}
	var req sponsorRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "malformed request body"})
	}
	sp, err := h.store.UpdateSponsor(c.UserContext(), id, req.params())
	if err != nil {
		return h.respondErr(c, err)
	}
	return c.JSON(sp)
}

func (h *Handler) ListSponsors(c *fiber.Ctx) error {
	sps, err := h.store.ListSponsors(c.UserContext())
	if err != nil {
		return h.respondErr(c, err)
	}
	return c.JSON(sps)
}

func (h *Handler) DeleteSponsor(c *fiber.Ctx) error {
	id, err := pathID(c)
	if err != nil {
		return h.respondErr(c, err)
	}
	if err := h.store.DeleteSponsor(c.UserContext(), id); err != nil {
		return h.respondErr(c, err)
	}
	return c.JSON(fiber.Map{"ok": true})
}

type teamMemberRequest struct {
	Name     string `json:"name"`
	Title    string `json:"title"`
	Bio      string `json:"bio"`
	ImageURL string `json:"image_url"`
}

func (r teamMemberRequest) params() store.TeamMemberParams {
	return store.TeamMemberParams{Name: r.Name, Title: r.Title, Bio: r.Bio, ImageURL: r.ImageURL}
}

func (h *Handler) CreateTeamMember(c *fiber.Ctx) error {
	var req teamMemberRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "malformed request body"})
	}
	tm, err := h.store.CreateTeamMember(c.UserContext(), req.params())
	if err != nil {
		return h.respondErr(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(tm)
}

func (h *Handler) UpdateTeamMember(c *fiber.Ctx) error {
	id, err := pathID(c)
	if err != nil {
		return h.respondErr(c, err)
	}
	var req teamMemberRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "malformed request body"})
	}
	tm, err := h.store.UpdateTeamMember(c.UserContext(), id, req.params())
	if err != nil {
		return h.respondErr(c, err)
	}
	return c.JSON(tm)
}

func (h *Handler) ListTeamMembers(c *fiber.Ctx) error {
	tms, err := h.store.ListTeamMembers(c.UserContext())
	if err != nil {
		return h.respondErr(c, err)
	}
	return c.JSON(tms)
}

func (h *Handler) DeleteTeamMember(c *fiber.Ctx) error {
	id, err := pathID(c)
	if err != nil {
		return h.respondErr(c, err)
	}
	if err := h.store.DeleteTeamMember(c.UserContext(), id); err != nil {
		return h.respondErr(c, err)
	}
	return c.JSON(fiber.Map{"ok": true})
}

type printedMaterialRequest struct {
	Title       string    `json:"title"`
	IssueNumber string    `json:"issue_number"`
	PublishedOn time.Time `json:"published_on"`
	FileURL     string    `json:"file_url"`
	CoverURL    string    `json:"cover_url"`
}

func (r printedMaterialRequest) params() store.PrintedMaterialParams {
	return store.PrintedMaterialParams{
		Title:       r.Title,
		IssueNumber: r.IssueNumber,
		PublishedOn: r.PublishedOn,
		FileURL:     r.FileURL,
		CoverURL:    r.CoverURL,
	}
}

func (h *Handler) CreatePrintedMaterial(c *fiber.Ctx) error {
	var req printedMaterialRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "malformed request body"})
	}
	pm, err := h.store.CreatePrintedMaterial(c.UserContext(), req.params())
	if err != nil {
		return h.respondErr(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(pm)
}

func (h *Handler) UpdatePrintedMaterial(c *fiber.Ctx) error {
	id, err := pathID(c)
	if err != nil {
		return h.respondErr(c, err)
	}
	var req printedMaterialRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "malformed request body"})
	}
	pm, err := h.store.UpdatePrintedMaterial(c.UserContext(), id, req.params())
	if err != nil {
		return h.respondErr(c, err)
	}
	return c.JSON(pm)
}

func (h *Handler) ListPrintedMaterials(c *fiber.Ctx) error {
	pms, err := h.store.ListPrintedMaterials(c.UserContext())
	if err != nil {
		return h.respondErr(c, err)
	}
	return c.JSON(pms)
}

func (h *Handler) DeletePrintedMaterial(c *fiber.Ctx) error {
	id, err := pathID(c)
	if err != nil {
		return h.respondErr(c, err)
	}
	if err := h.store.DeletePrintedMaterial(c.UserContext(), id); err != nil {
		return h.respondErr(c, err)
	}
	return c.JSON(fiber.Map{"ok": true})
}
