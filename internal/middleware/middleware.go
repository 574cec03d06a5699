// Package middleware wires the two-layer authorization gate in front of the
// admin routes: a coarse perimeter filter, then a per-page guard.
package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/magpress/magpress/internal/audit"
	"github.com/magpress/magpress/internal/authz"
	"github.com/magpress/magpress/internal/session"
)

const principalKey = "principal"

// LoginPath and UnauthorizedPath are where denied browsers get sent.
const (
	LoginPath        = "/auth/login"
	UnauthorizedPath = "/admin/unauthorized"
)

// RequestContext attaches a request id and the caller's network context to
// the request context so the audit recorder can capture them.
func RequestContext() fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx := audit.WithRequestInfo(c.UserContext(), audit.RequestInfo{
			RequestID: uuid.NewString(),
			IPAddress: c.IP(),
			UserAgent: c.Get(fiber.HeaderUserAgent),
		})
		c.SetUserContext(ctx)
		return c.Next()
	}
}

// Perimeter is the coarse filter: public paths and the auth subsystem's own
// paths pass unconditionally; everything else requires a valid session token
// bearing a non-empty role list. Fine-grained per-page checks are deferred
// to PageGuard.
func Perimeter(mgr *session.Manager, publicPaths []string, log *zap.SugaredLogger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		path := c.Path()
		if isPublic(path, publicPaths) {
			return c.Next()
		}

		p, err := mgr.Parse(tokenFromRequest(c))
		if err != nil {
			return redirectOrStatus(c, LoginPath, fiber.StatusUnauthorized, "authentication required")
		}
		if len(p.Roles) == 0 {
			return redirectOrStatus(c, LoginPath, fiber.StatusUnauthorized, "session has no roles")
		}

		c.Locals(principalKey, p)
		c.SetUserContext(session.WithPrincipal(c.UserContext(), p))
		return c.Next()
	}
}

// PageGuard runs the composed authorization pipeline (session presence, then
// page access) for the admin region. Requests guard under their page path:
// "/admin/roles/5/permissions" is checked as "/admin/roles". A resolver
// failure is treated as a denial, never an implicit allow.
func PageGuard(res *authz.Resolver, cache *authz.DecisionCache, log *zap.SugaredLogger) fiber.Handler {
	pipeline := authz.Pipeline{authz.SessionStage(), authz.PageStage(res, cache)}
	return func(c *fiber.Ctx) error {
		// The unauthorized view is where denials land; guarding it would
		// bounce every denied browser onward to the login form.
		if c.Path() == UnauthorizedPath {
			return c.Next()
		}

		req := authz.Request{Path: pagePath(c.Path()), Principal: PrincipalFromCtx(c)}
		d := pipeline.Evaluate(c.UserContext(), req)
		switch d.Verdict {
		case authz.VerdictAllow:
			return c.Next()
		case authz.VerdictFault:
			log.Errorw("page access resolution failed", "path", req.Path, "error", d.Cause)
			return redirectOrStatus(c, UnauthorizedPath, fiber.StatusForbidden, "access denied")
		default:
			if d.Reason == "no session" {
				return redirectOrStatus(c, LoginPath, fiber.StatusUnauthorized, "authentication required")
			}
			return redirectOrStatus(c, UnauthorizedPath, fiber.StatusForbidden, "access denied")
		}
	}
}

// PrincipalFromCtx returns the principal stashed by Perimeter, if any.
func PrincipalFromCtx(c *fiber.Ctx) *session.Principal {
	if p, ok := c.Locals(principalKey).(*session.Principal); ok {
		return p
	}
	return nil
}

// pagePath reduces a request path to the page it belongs to: the admin
// section prefix, with any deeper segments stripped.
func pagePath(path string) string {
	const root = "/admin/"
	rest := strings.TrimPrefix(path, root)
	if rest == path {
		return path
	}
	if i := strings.IndexByte(rest, '/'); i >= 0 {
		rest = rest[:i]
	}
	return root + rest
}

func tokenFromRequest(c *fiber.Ctx) string {
	if h := c.Get(fiber.HeaderAuthorization); strings.HasPrefix(h, "Bearer ") {
		return strings.TrimPrefix(h, "Bearer ")
	}
	return c.Cookies("magpress_session")
}

// isPublic matches exact paths and trailing-* prefixes.
func isPublic(path string, publics []string) bool {
	for _, p := range publics {
		if strings.HasSuffix(p, "*") {
			if strings.HasPrefix(path, strings.TrimSuffix(p, "*")) {
				return true
			}
			continue
		}
		if path == p {
			return true
		}
	}
	return false
}

// redirectOrStatus sends a browser to the given view and an API caller a
// JSON error.
func redirectOrStatus(c *fiber.Ctx, location string, status int, msg string) error {
	if strings.Contains(c.Get(fiber.HeaderAccept), "text/html") {
		return c.Redirect(location, fiber.StatusFound)
	}
	return c.Status(status).JSON(fiber.Map{"error": msg})
}
