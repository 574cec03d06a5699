// Package handlers holds the Fiber handlers for the admin API. Handlers
// parse and validate the request, call into the store, and translate typed
// errors into HTTP responses with short human-readable reasons.
package handlers

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/magpress/magpress/internal/apperr"
	"github.com/magpress/magpress/internal/audit"
	"github.com/magpress/magpress/internal/authz"
	"github.com/magpress/magpress/internal/blob"
	"github.com/magpress/magpress/internal/session"
	"github.com/magpress/magpress/internal/store"
)

type Handler struct {
	store    *store.Store
	rec      *audit.Recorder
	resolver *authz.Resolver
	cache    *authz.DecisionCache
	sessions *session.Manager
	blobs    blob.Storage
	log      *zap.SugaredLogger
}

func New(s *store.Store, rec *audit.Recorder, res *authz.Resolver, cache *authz.DecisionCache, mgr *session.Manager, blobs blob.Storage, log *zap.SugaredLogger) *Handler {
	return &Handler{store: s, rec: rec, resolver: res, cache: cache, sessions: mgr, blobs: blobs, log: log}
}

// respondErr maps typed application errors onto HTTP statuses. Validation
// and not-found conditions surface their messages; everything else is
// reduced to a generic message and logged with its cause.
func (h *Handler) respondErr(c *fiber.Ctx, err error) error {
	var ve *apperr.ValidationError
	if errors.As(err, &ve) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": ve.Reason, "field": ve.Field})
	}
	var nf *apperr.NotFoundError
	if errors.As(err, &nf) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": nf.Error()})
	}
	if errors.Is(err, apperr.ErrPermissionDenied) {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "permission denied"})
	}
	if errors.Is(err, apperr.ErrInvalidInput) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid input"})
	}
	if errors.Is(err, apperr.ErrNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "resource not found"})
	}
	h.log.Errorw("request failed", "path", c.Path(), "error", err)
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "something went wrong"})
}

// principalID returns the authenticated user's id, or nil for anonymous
// requests (public routes share some handlers with the admin surface).
func principalID(c *fiber.Ctx) *uint {
	p, ok := session.FromContext(c.UserContext())
	if !ok {
		return nil
	}
	id := p.UserID
	return &id
}

func pathID(c *fiber.Ctx) (uint, error) {
	id, err := strconv.ParseUint(c.Params("id"), 10, 64)
	if err != nil || id == 0 {
		return 0, &apperr.ValidationError{Field: "id", Reason: "must be a positive integer"}
	}
	return uint(id), nil
}
