package controllers

import (
	"context"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/sujit-baniya/flash"

	"github.com/MindMentorHQ/MindMentor/app/models"
	"github.com/MindMentorHQ/MindMentor/app/repository"
	"github.com/MindMentorHQ/MindMentor/internal/pkg/billing"
	"github.com/MindMentorHQ/MindMentor/internal/pkg/constants"
	"github.com/MindMentorHQ/MindMentor/internal/pkg/database"
	"github.com/MindMentorHQ/MindMentor/internal/pkg/entitlements"
	"github.com/MindMentorHQ/MindMentor/internal/pkg/metering"
	"github.com/MindMentorHQ/MindMentor/internal/pkg/session"
	"github.com/MindMentorHQ/MindMentor/internal/pkg/usercontext"
	"github.com/MindMentorHQ/MindMentor/internal/pkg/utils"
	"github.com/MindMentorHQ/MindMentor/views"
)

// one-time API key reveal, passed between the issue POST and the next
// settings render via session
const freshAPIKeySessionKey = "fresh_api_key"

// HandleUserDashboard shows the account overview with today's usage.
func HandleUserDashboard(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)

	user, err := repository.GetGlobalFactory().GetUserRepository().GetByID(userCtx.UserID)
	if err != nil {
		return flash.WithError(c, fiber.Map{"type": "error", "message": "Account could not be loaded"}).Redirect("/")
	}

	actor := actorFromContext(c)
	svc := metering.NewService(metering.NewDefaultRepository())

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	overview, err := svc.GetUsageOverview(ctx, actor)
	if err != nil {
		return flash.WithError(c, fiber.Map{"type": "error", "message": "Usage could not be loaded"}).Redirect("/")
	}

	gravatarURL := utils.GetGravatarURL(user.Email, 160)

	return render(c, " | Dashboard", views.Dashboard(user, overview, actor.Unlimited(), gravatarURL))
}

// HandleUserSettings renders and saves per-user preferences.
func HandleUserSettings(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)
	db := database.GetDB()

	settings, err := models.GetOrCreateUserSettings(db, userCtx.UserID)
	if err != nil {
		return flash.WithError(c, fiber.Map{"type": "error", "message": "Settings could not be loaded"}).Redirect(constants.DashboardRoute)
	}

	if c.Method() == fiber.MethodPost {
		settings.PreferredModel = c.FormValue("preferred_model")
		settings.EmailOnQuotaLimit = c.FormValue("email_on_quota_limit") != ""

		if err := db.Save(settings).Error; err != nil {
			return flash.WithError(c, fiber.Map{"type": "error", "message": fmt.Sprintf("something went wrong: %s", err)}).Redirect(constants.SettingsRoute)
		}

		return flash.WithSuccess(c, fiber.Map{"type": "success", "message": "Settings saved"}).Redirect(constants.SettingsRoute)
	}

	// Pick up the one-time key reveal from the previous issue request.
	freshKey := session.GetSessionValue(c, freshAPIKeySessionKey)
	if freshKey != "" {
		_ = session.DeleteSessionValue(c, freshAPIKeySessionKey)
	}

	return render(c, " | Settings", views.SettingsPage(settings, csrfToken(c), freshKey))
}

// HandleAPIKeyGenerate issues a new API key and reveals it exactly once.
func HandleAPIKeyGenerate(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)
	db := database.GetDB()

	settings, err := models.GetOrCreateUserSettings(db, userCtx.UserID)
	if err != nil {
		return flash.WithError(c, fiber.Map{"type": "error", "message": "Settings could not be loaded"}).Redirect(constants.SettingsRoute)
	}

	rawKey, err := settings.IssueAPIKey()
	if err != nil {
		return flash.WithError(c, fiber.Map{"type": "error", "message": "API key could not be generated"}).Redirect(constants.SettingsRoute)
	}

	if err := db.Save(settings).Error; err != nil {
		return flash.WithError(c, fiber.Map{"type": "error", "message": fmt.Sprintf("something went wrong: %s", err)}).Redirect(constants.SettingsRoute)
	}

	if err := session.SetSessionValue(c, freshAPIKeySessionKey, rawKey); err != nil {
		return flash.WithError(c, fiber.Map{"type": "error", "message": "Session could not be saved"}).Redirect(constants.SettingsRoute)
	}

	return flash.WithSuccess(c, fiber.Map{"type": "success", "message": "New API key created. Copy it now, it will not be shown again."}).Redirect(constants.SettingsRoute)
}

// HandleAPIKeyRevoke invalidates the active API key.
func HandleAPIKeyRevoke(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)
	db := database.GetDB()

	settings, err := models.GetOrCreateUserSettings(db, userCtx.UserID)
	if err != nil {
		return flash.WithError(c, fiber.Map{"type": "error", "message": "Settings could not be loaded"}).Redirect(constants.SettingsRoute)
	}

	if !settings.HasActiveAPIKey() {
		return flash.WithError(c, fiber.Map{"type": "error", "message": "No active API key"}).Redirect(constants.SettingsRoute)
	}

	settings.RevokeAPIKey()
	if err := db.Save(settings).Error; err != nil {
		return flash.WithError(c, fiber.Map{"type": "error", "message": fmt.Sprintf("something went wrong: %s", err)}).Redirect(constants.SettingsRoute)
	}

	return flash.WithSuccess(c, fiber.Map{"type": "success", "message": "API key revoked"}).Redirect(constants.SettingsRoute)
}

// HandleUserMembership shows the subscription mirror for the account.
func HandleUserMembership(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)

	user, err := repository.GetGlobalFactory().GetUserRepository().GetByID(userCtx.UserID)
	if err != nil {
		return flash.WithError(c, fiber.Map{"type": "error", "message": "Account could not be loaded"}).Redirect(constants.DashboardRoute)
	}

	svc := billing.NewServiceFromDB(database.GetDB())
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	subs, err := svc.ListUserSubscriptions(ctx, userCtx.UserID)
	if err != nil {
		return flash.WithError(c, fiber.Map{"type": "error", "message": "Subscriptions could not be loaded"}).Redirect(constants.DashboardRoute)
	}

	return render(c, " | Membership", views.MembershipPage(user, subs, csrfToken(c)))
}

// HandleUserBillingResync recomputes the tier from the subscription mirror.
func HandleUserBillingResync(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)

	user, err := repository.GetGlobalFactory().GetUserRepository().GetByID(userCtx.UserID)
	if err != nil {
		return flash.WithError(c, fiber.Map{"type": "error", "message": "Account could not be loaded"}).Redirect("/user/settings/membership")
	}

	svc := billing.NewServiceFromDB(database.GetDB())
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if _, err := svc.ResyncUserFromSubscriptions(ctx, user); err != nil {
		return flash.WithError(c, fiber.Map{"type": "error", "message": "Tier re-sync failed"}).Redirect("/user/settings/membership")
	}

	// Read the tier back through the resolver so the session copy reflects
	// what entitlement checks will actually see.
	tier := entitlements.NewResolverFromDB(database.GetDB()).ResolveTier(ctx, user.ID)
	_ = session.SetSessionValue(c, usercontext.KeyUserTier, string(tier))
	msg := fmt.Sprintf("Tier recomputed. Current tier: %s", tier)
	return flash.WithSuccess(c, fiber.Map{"type": "success", "message": msg}).Redirect("/user/settings/membership")
}
