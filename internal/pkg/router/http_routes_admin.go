package router

import (
	"github.com/gofiber/fiber/v2"

	"github.com/MindMentorHQ/MindMentor/app/controllers"
	"github.com/MindMentorHQ/MindMentor/internal/pkg/middleware"
)

// Read-only admin monitor routes. The admin forms (users, settings, pages)
// live in the CSRF-protected group.
func (h HttpRouter) registerAdminRoutes(app *fiber.App) {
	adminGroup := app.Group("/admin", middleware.RequireAdmin)
	adminGroup.Get("/", controllers.HandleAdminDashboard)
	adminGroup.Get("/usage", controllers.HandleAdminUsage)
	adminGroup.Get("/webhooks", controllers.HandleAdminWebhookEvents)
}
