package router

import (
	"github.com/gofiber/fiber/v2"

	"github.com/MindMentorHQ/MindMentor/app/controllers"
	"github.com/MindMentorHQ/MindMentor/internal/pkg/middleware"
)

func (h HttpRouter) registerPublicRoutes(app *fiber.App) {
	// Public static pages
	app.Get("/page/:slug", loggedInMiddleware, controllers.HandlePage)

	// Outbound partner referrals
	app.Get("/go/:service", loggedInMiddleware, controllers.HandleAffiliateRedirect)

	// Auth
	app.Post("/logout", middleware.RequireAuth, controllers.HandleAuthLogout)

	// Social OAuth
	app.Get("/auth/:provider", controllers.HandleOAuthBegin)
	app.Get("/auth/:provider/callback", controllers.HandleOAuthCallback)

	// Billing provider webhooks (no CSRF, signature-verified in controller)
	app.Post("/webhooks/paypal", controllers.HandlePayPalWebhook)
}
