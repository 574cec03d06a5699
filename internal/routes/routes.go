// Package routes mounts the HTTP surface: the auth endpoints, the public
// site API, and the admin API behind the two-layer authorization gate.
package routes

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/magpress/magpress/internal/authz"
	"github.com/magpress/magpress/internal/handlers"
	"github.com/magpress/magpress/internal/middleware"
	"github.com/magpress/magpress/internal/session"
)

// PublicPaths are reachable without a session. Everything else passes the
// perimeter filter first.
var PublicPaths = []string{
	"/healthz",
	"/auth/login",
	"/public/*",
	"/uploads/*",
	middleware.UnauthorizedPath,
}

// Setup mounts all routes on the app. Admin routes carry the per-page guard
// on top of the app-wide perimeter filter.
func Setup(app *fiber.App, h *handlers.Handler, mgr *session.Manager, res *authz.Resolver, cache *authz.DecisionCache, blobDir string, log *zap.SugaredLogger) {
	app.Use(middleware.RequestContext())
	app.Use(middleware.Perimeter(mgr, PublicPaths, log))

	app.Get("/healthz", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})
	app.Static("/uploads", blobDir)

	auth := app.Group("/auth")
	auth.Post("/login", h.Login)
	auth.Post("/logout", h.Logout)
	auth.Get("/me", h.Me)

	// Public site API, no session required.
	public := app.Group("/public")
	public.Get("/blogs", h.ListPublishedBlogs)
	public.Get("/blogs/:id", h.GetBlog)
	public.Get("/categories", h.ListCategories)
	public.Get("/events", h.ListEvents)
	public.Get("/sponsors", h.ListSponsors)
	public.Get("/team", h.ListTeamMembers)
	public.Get("/printed-materials", h.ListPrintedMaterials)

	admin := app.Group("/admin", middleware.PageGuard(res, cache, log))
	admin.Get("/dashboard", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})
	admin.Get("/unauthorized", func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "access denied"})
	})

	users := admin.Group("/users")
	users.Get("/", h.ListUsers)
	users.Post("/", h.CreateUser)
	users.Get("/:id", h.GetUser)
	users.Put("/:id", h.UpdateUser)
	users.Delete("/:id", h.DeleteUser)
	users.Put("/:id/roles", h.ReplaceUserRoles)
	users.Put("/:id/password", h.SetUserPassword)

	roles := admin.Group("/roles")
	roles.Get("/", h.ListRoles)
	roles.Post("/", h.CreateRole)
	roles.Put("/:id", h.UpdateRole)
	roles.Delete("/:id", h.DeleteRole)
	roles.Put("/:id/permissions", h.ReplaceRolePermissions)

	perms := admin.Group("/permissions")
	perms.Get("/", h.ListPermissions)
	perms.Post("/", h.CreatePermission)
	perms.Put("/:id", h.UpdatePermission)
	perms.Delete("/:id", h.DeletePermission)

	pages := admin.Group("/pages")
	pages.Get("/", h.ListPages)
	pages.Post("/", h.CreatePage)
	pages.Put("/:id", h.UpdatePage)
	pages.Delete("/:id", h.DeletePage)
	pages.Put("/:id/roles", h.ReplacePageRoles)

	blogs := admin.Group("/blogs")
	blogs.Get("/", h.ListBlogs)
	blogs.Post("/", h.CreateBlog)
	blogs.Get("/:id", h.GetBlog)
	blogs.Put("/:id", h.UpdateBlog)
	blogs.Delete("/:id", h.DeleteBlog)
	blogs.Put("/:id/categories", h.ReplaceBlogCategories)

	cats := admin.Group("/categories")
	cats.Get("/", h.ListCategories)
	cats.Post("/", h.CreateCategory)
	cats.Put("/:id", h.UpdateCategory)
	cats.Delete("/:id", h.DeleteCategory)

	events := admin.Group("/events")
	events.Get("/", h.ListEvents)
	events.Post("/", h.CreateEvent)
	events.Put("/:id", h.UpdateEvent)
	events.Delete("/:id", h.DeleteEvent)

	tickets := admin.Group("/tickets")
	tickets.Get("/", h.ListTickets)
	tickets.Post("/", h.CreateTicket)
	tickets.Put("/:id", h.UpdateTicket)
	tickets.Delete("/:id", h.DeleteTicket)

	sponsors := admin.Group("/sponsors")
	sponsors.Get("/", h.ListSponsors)
	sponsors.Post("/", h.CreateSponsor)
	sponsors.Put("/:id", h.UpdateSponsor)
	sponsors.Delete("/:id", h.DeleteSponsor)

	team := admin.Group("/team")
	team.Get("/", h.ListTeamMembers)
	team.Post("/", h.CreateTeamMember)
	team.Put("/:id", h.UpdateTeamMember)
	team.Delete("/:id", h.DeleteTeamMember)

	printed := admin.Group("/printed-materials")
	printed.Get("/", h.ListPrintedMaterials)
	printed.Post("/", h.CreatePrintedMaterial)
	printed.Put("/:id", h.UpdatePrintedMaterial)
	printed.Delete("/:id", h.DeletePrintedMaterial)

	admin.Get("/audit-logs", h.ListAuditLogs)
	admin.Post("/uploads", h.Upload)
	admin.Delete("/uploads", h.DeleteUpload)
}
