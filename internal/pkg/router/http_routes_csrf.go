package router

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/csrf"

	"github.com/MindMentorHQ/MindMentor/app/controllers"
	"github.com/MindMentorHQ/MindMentor/internal/pkg/env"
	"github.com/MindMentorHQ/MindMentor/internal/pkg/middleware"
)

func (h HttpRouter) registerCSRFProtectedRoutes(app *fiber.App) {
	csrfConf := csrf.Config{
		KeyLookup:      "form:_csrf",
		ContextKey:     "csrf",
		CookieName:     "csrf_",
		CookieSameSite: "Lax",
		Expiration:     1 * time.Hour,
		CookieSecure:   !env.IsDev(),
		Next: func(c *fiber.Ctx) bool {
			return strings.HasPrefix(c.Path(), "/api/") || strings.HasPrefix(c.Path(), "/webhooks/")
		},
	}

	group := app.Group("", cors.New(), csrf.New(csrfConf))
	group.Get("/", loggedInMiddleware, controllers.HandleStart)
	group.Get("/login", loggedInMiddleware, controllers.HandleAuthLogin)
	group.Post("/login", loggedInMiddleware, controllers.HandleAuthLogin)
	group.Get("/register", loggedInMiddleware, controllers.HandleAuthRegister)
	group.Post("/register", loggedInMiddleware, controllers.HandleAuthRegister)
	group.Get("/activate", loggedInMiddleware, controllers.HandleAuthActivate)
	group.Get("/upgrade", loggedInMiddleware, controllers.HandleUpgradePage)

	// Tutoring tools (anonymous allowed, metered per IP)
	group.Get("/tools", loggedInMiddleware, controllers.HandleToolsIndex)
	group.Get("/tools/:category", loggedInMiddleware, controllers.HandleToolCategory)
	group.Post("/tools/:category", loggedInMiddleware, controllers.HandleToolRun)

	// User area
	group.Get("/user/dashboard", middleware.RequireAuth, controllers.HandleUserDashboard)
	group.Get("/user/settings", middleware.RequireAuth, controllers.HandleUserSettings)
	group.Post("/user/settings", middleware.RequireAuth, controllers.HandleUserSettings)
	group.Post("/user/settings/api-key", middleware.RequireAuth, controllers.HandleAPIKeyGenerate)
	group.Post("/user/settings/api-key/revoke", middleware.RequireAuth, controllers.HandleAPIKeyRevoke)
	group.Get("/user/settings/membership", middleware.RequireAuth, controllers.HandleUserMembership)
	group.Post("/user/settings/membership/resync", middleware.RequireAuth, controllers.HandleUserBillingResync)

	// Admin forms
	group.Get("/admin/users", middleware.RequireAdmin, controllers.HandleAdminUsers)
	group.Get("/admin/users/:id", middleware.RequireAdmin, controllers.HandleAdminUserEdit)
	group.Post("/admin/users/:id", middleware.RequireAdmin, controllers.HandleAdminUserEdit)
	group.Get("/admin/settings", middleware.RequireAdmin, controllers.HandleAdminSettings)
	group.Post("/admin/settings", middleware.RequireAdmin, controllers.HandleAdminSettings)
	group.Get("/admin/pages", middleware.RequireAdmin, controllers.HandleAdminPages)
	group.Get("/admin/pages/new", middleware.RequireAdmin, controllers.HandleAdminPageCreate)
	group.Post("/admin/pages/new", middleware.RequireAdmin, controllers.HandleAdminPageCreate)
	group.Get("/admin/pages/:id", middleware.RequireAdmin, controllers.HandleAdminPageEdit)
	group.Post("/admin/pages/:id", middleware.RequireAdmin, controllers.HandleAdminPageEdit)
	group.Post("/admin/pages/:id/delete", middleware.RequireAdmin, controllers.HandleAdminPageDelete)
}
