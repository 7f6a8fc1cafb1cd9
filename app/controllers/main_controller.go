package controllers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/MindMentorHQ/MindMentor/app/models"
	"github.com/MindMentorHQ/MindMentor/app/repository"
	"github.com/MindMentorHQ/MindMentor/internal/pkg/statistics"
	"github.com/MindMentorHQ/MindMentor/views"
)

// HandleStart renders the landing page with live platform statistics.
func HandleStart(c *fiber.Ctx) error {
	statistics.UpdateCacheIfNeeded()

	settings := models.GetAppSettings()
	hindex := views.HomeIndex(isLoggedIn(c), statistics.GetStatisticsData(), settings.AreToolsEnabled())

	return render(c, "", hindex)
}

// HandlePage serves an admin-authored static page by slug.
func HandlePage(c *fiber.Ctx) error {
	slug := c.Params("slug")

	page, err := repository.GetGlobalFactory().GetPageRepository().GetBySlug(slug)
	if err != nil || page == nil || !page.IsActive {
		return HandleNotFound(c)
	}

	return render(c, " | "+page.Title, views.ContentPage(page))
}

// HandleNotFound renders the shared 404 page.
func HandleNotFound(c *fiber.Ctx) error {
	c.Status(fiber.StatusNotFound)
	return render(c, " | Not Found", views.NotFound())
}
