package controllers

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/sujit-baniya/flash"

	"github.com/MindMentorHQ/MindMentor/app/models"
	"github.com/MindMentorHQ/MindMentor/app/repository"
	"github.com/MindMentorHQ/MindMentor/internal/pkg/billing"
	"github.com/MindMentorHQ/MindMentor/internal/pkg/database"
	"github.com/MindMentorHQ/MindMentor/internal/pkg/metering"
	"github.com/MindMentorHQ/MindMentor/internal/pkg/statistics"
	"github.com/MindMentorHQ/MindMentor/views"
)

const adminUserPageSize = 50

// HandleAdminDashboard shows platform statistics and today's usage split.
func HandleAdminDashboard(c *fiber.Ctx) error {
	statistics.UpdateCacheIfNeeded()

	today := metering.DayKey(time.Now())
	totals, err := repository.GetGlobalFactory().GetUsageRepository().TotalsByCategory(today)
	if err != nil {
		return flash.WithError(c, fiber.Map{"type": "error", "message": "Usage totals could not be loaded"}).Redirect("/")
	}

	return render(c, " | Admin", views.AdminDashboard(statistics.GetStatisticsData(), totals))
}

// HandleAdminUsers lists accounts, optionally filtered by a search query.
func HandleAdminUsers(c *fiber.Ctx) error {
	userRepo := repository.GetGlobalFactory().GetUserRepository()

	query := c.Query("q")
	var (
		users []models.User
		err   error
	)
	if query != "" {
		users, err = userRepo.Search(query)
	} else {
		page, _ := strconv.Atoi(c.Query("page", "1"))
		if page < 1 {
			page = 1
		}
		users, err = userRepo.List((page-1)*adminUserPageSize, adminUserPageSize)
	}
	if err != nil {
		return flash.WithError(c, fiber.Map{"type": "error", "message": "Users could not be loaded"}).Redirect("/admin")
	}

	return render(c, " | Users", views.AdminUsers(users, query, csrfToken(c)))
}

// HandleAdminUserEdit renders and applies manual tier/status changes.
// Tier changes made here stick even against later billing webhooks when the
// target tier is admin.
func HandleAdminUserEdit(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return HandleNotFound(c)
	}

	userRepo := repository.GetGlobalFactory().GetUserRepository()
	user, err := userRepo.GetByID(uint(id))
	if err != nil {
		return HandleNotFound(c)
	}

	if c.Method() == fiber.MethodPost {
		tier := c.FormValue("tier")
		switch tier {
		case models.TIER_ADMIN, models.TIER_PAID, models.TIER_UNPAID:
		default:
			return flash.WithError(c, fiber.Map{"type": "error", "message": "Unknown tier"}).Redirect(fmt.Sprintf("/admin/users/%d", user.ID))
		}

		status := c.FormValue("status")
		switch status {
		case models.STATUS_ACTIVE, models.STATUS_INACTIVE, models.STATUS_DISABLED:
		default:
			return flash.WithError(c, fiber.Map{"type": "error", "message": "Unknown status"}).Redirect(fmt.Sprintf("/admin/users/%d", user.ID))
		}

		if err := userRepo.UpdateTier(user.ID, tier); err != nil {
			return flash.WithError(c, fiber.Map{"type": "error", "message": fmt.Sprintf("something went wrong: %s", err)}).Redirect(fmt.Sprintf("/admin/users/%d", user.ID))
		}
		if status != user.Status {
			user.Status = status
			if err := userRepo.Update(user); err != nil {
				return flash.WithError(c, fiber.Map{"type": "error", "message": fmt.Sprintf("something went wrong: %s", err)}).Redirect(fmt.Sprintf("/admin/users/%d", user.ID))
			}
		}

		go statistics.UpdateStatisticsCache()

		return flash.WithSuccess(c, fiber.Map{"type": "success", "message": "User updated"}).Redirect("/admin/users")
	}

	return render(c, " | Edit User", views.AdminUserEdit(user, csrfToken(c)))
}

// HandleAdminSettings renders and saves the application settings.
func HandleAdminSettings(c *fiber.Ctx) error {
	if c.Method() == fiber.MethodPost {
		freeMinutes, err := strconv.Atoi(c.FormValue("free_daily_minutes"))
		if err != nil || freeMinutes < 1 || freeMinutes > 1440 {
			return flash.WithError(c, fiber.Map{"type": "error", "message": "Free daily minutes must be between 1 and 1440"}).Redirect("/admin/settings")
		}

		settings := &models.AppSettings{
			SiteTitle:           c.FormValue("site_title"),
			SiteDescription:     c.FormValue("site_description"),
			RegistrationEnabled: c.FormValue("registration_enabled") != "",
			ToolsEnabled:        c.FormValue("tools_enabled") != "",
			FreeDailyMinutes:    freeMinutes,
		}

		if err := repository.GetGlobalFactory().GetSettingRepository().Save(settings); err != nil {
			return flash.WithError(c, fiber.Map{"type": "error", "message": fmt.Sprintf("something went wrong: %s", err)}).Redirect("/admin/settings")
		}

		return flash.WithSuccess(c, fiber.Map{"type": "success", "message": "Settings saved"}).Redirect("/admin/settings")
	}

	return render(c, " | Settings", views.AdminSettings(models.GetAppSettings(), csrfToken(c)))
}

// HandleAdminUsage shows ledger aggregates for a picked day.
func HandleAdminUsage(c *fiber.Ctx) error {
	day := c.Query("day")
	if _, err := time.Parse("2006-01-02", day); err != nil {
		day = metering.DayKey(time.Now())
	}

	usageRepo := repository.GetGlobalFactory().GetUsageRepository()
	totals, err := usageRepo.TotalsByCategory(day)
	if err != nil {
		return flash.WithError(c, fiber.Map{"type": "error", "message": "Usage totals could not be loaded"}).Redirect("/admin")
	}
	topActors, err := usageRepo.TopActors(day, 20)
	if err != nil {
		return flash.WithError(c, fiber.Map{"type": "error", "message": "Top actors could not be loaded"}).Redirect("/admin")
	}

	return render(c, " | Usage", views.AdminUsage(day, totals, topActors))
}

// HandleAdminWebhookEvents shows the most recent billing deliveries.
func HandleAdminWebhookEvents(c *fiber.Ctx) error {
	svc := billing.NewServiceFromDB(database.GetDB())
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	events, err := svc.ListRecentWebhookEvents(ctx, 100)
	if err != nil {
		return flash.WithError(c, fiber.Map{"type": "error", "message": "Webhook log could not be loaded"}).Redirect("/admin")
	}

	return render(c, " | Webhook Log", views.AdminWebhookEvents(events))
}
