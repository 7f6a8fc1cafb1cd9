package controllers

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
	"github.com/sujit-baniya/flash"

	"github.com/MindMentorHQ/MindMentor/app/models"
	"github.com/MindMentorHQ/MindMentor/internal/pkg/aiproxy"
	"github.com/MindMentorHQ/MindMentor/internal/pkg/constants"
	"github.com/MindMentorHQ/MindMentor/internal/pkg/database"
	"github.com/MindMentorHQ/MindMentor/internal/pkg/env"
	"github.com/MindMentorHQ/MindMentor/internal/pkg/imagetool"
	"github.com/MindMentorHQ/MindMentor/internal/pkg/jobqueue"
	"github.com/MindMentorHQ/MindMentor/internal/pkg/metering"
	"github.com/MindMentorHQ/MindMentor/internal/pkg/usercontext"
	"github.com/MindMentorHQ/MindMentor/views"
)

const toolRunTimeout = 90 * time.Second

// HandleToolsIndex lists the tutorial categories with today's usage badges.
func HandleToolsIndex(c *fiber.Ctx) error {
	actor := actorFromContext(c)
	svc := metering.NewService(metering.NewDefaultRepository())

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	overview, err := svc.GetUsageOverview(ctx, actor)
	if err != nil {
		return flash.WithError(c, fiber.Map{"type": "error", "message": "Usage could not be loaded"}).Redirect("/")
	}

	return render(c, " | Tools", views.ToolsIndex(overview, actor.Unlimited()))
}

// HandleToolCategory renders the prompt page for one category, or the quota
// wall when the free minutes are exhausted.
func HandleToolCategory(c *fiber.Ctx) error {
	category, err := metering.ParseCategory(c.Params("category"))
	if err != nil {
		return HandleNotFound(c)
	}

	actor := actorFromContext(c)
	svc := metering.NewService(metering.NewDefaultRepository())

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	usage, err := svc.GetUsage(ctx, actor, category)
	if err != nil {
		return flash.WithError(c, fiber.Map{"type": "error", "message": "Usage could not be loaded"}).Redirect(constants.ToolsRoute)
	}

	title := " | " + views.CategoryLabel(category)
	return render(c, title, views.ToolSession(category, usage, actor.Unlimited(), csrfToken(c), ""))
}

// HandleToolRun executes a tutoring prompt. The quota gate is checked before
// the session starts; the elapsed minutes are recorded after it finishes, so
// sessions crossing the cap mid-run complete and the overshoot counts.
func HandleToolRun(c *fiber.Ctx) error {
	category, err := metering.ParseCategory(c.Params("category"))
	if err != nil {
		return HandleNotFound(c)
	}

	if !models.GetAppSettings().AreToolsEnabled() {
		return flash.WithError(c, fiber.Map{"type": "error", "message": "Tools are currently in maintenance"}).Redirect(constants.ToolsRoute)
	}

	prompt := strings.TrimSpace(c.FormValue("prompt"))
	if prompt == "" {
		return flash.WithError(c, fiber.Map{"type": "error", "message": "Please enter a prompt"}).Redirect("/tools/" + string(category))
	}

	actor := actorFromContext(c)
	svc := metering.NewService(metering.NewDefaultRepository())

	ctx, cancel := context.WithTimeout(context.Background(), toolRunTimeout)
	defer cancel()

	usage, err := svc.GetUsage(ctx, actor, category)
	if err != nil {
		return flash.WithError(c, fiber.Map{"type": "error", "message": "Usage could not be loaded"}).Redirect(constants.ToolsRoute)
	}
	if usage.LimitReached {
		return render(c, " | "+views.CategoryLabel(category), views.ToolSession(category, usage, actor.Unlimited(), csrfToken(c), ""))
	}

	if category == metering.CategoryImages {
		if photoContext := processReferencePhoto(c); photoContext != "" {
			prompt = prompt + "\n\nReference photo: " + photoContext
		}
	}

	start := time.Now()
	client := aiproxy.NewClientFromEnv()
	completion, err := client.Complete(ctx, aiproxy.CompletionRequest{
		Model:        preferredModel(c),
		SystemPrompt: systemPromptFor(category),
		Prompt:       prompt,
	})
	if err != nil {
		log.Errorf("tool run failed for %s: %v", actor.Key(), err)
		return flash.WithError(c, fiber.Map{"type": "error", "message": "The tutor is unavailable right now, please retry"}).Redirect("/tools/" + string(category))
	}

	minutes := elapsedMinutes(time.Since(start))
	if err := svc.RecordUsage(ctx, actor, category, minutes); err != nil {
		log.Errorf("failed to record %d minutes for %s: %v", minutes, actor.Key(), err)
	}

	usage, err = svc.GetUsage(ctx, actor, category)
	if err == nil && usage.LimitReached {
		notifyQuotaReached(c, category)
	}

	return render(c, " | "+views.CategoryLabel(category), views.ToolSession(category, usage, actor.Unlimited(), csrfToken(c), completion.Text))
}

// elapsedMinutes rounds a session duration up to whole minutes, minimum one.
func elapsedMinutes(d time.Duration) int {
	minutes := int((d + time.Minute - 1) / time.Minute)
	if minutes < 1 {
		minutes = 1
	}
	return minutes
}

func preferredModel(c *fiber.Ctx) string {
	userCtx := usercontext.GetUserContext(c)
	if !userCtx.IsLoggedIn {
		return ""
	}
	settings, err := models.GetOrCreateUserSettings(database.GetDB(), userCtx.UserID)
	if err != nil {
		return ""
	}
	return settings.PreferredModel
}

// processReferencePhoto stores an optional uploaded photo, feeds its EXIF
// metadata into the prompt and queues preview generation. Upload problems
// never fail the tool run.
func processReferencePhoto(c *fiber.Ctx) string {
	file, err := c.FormFile("photo")
	if err != nil || file == nil {
		return ""
	}

	uploadDir := env.GetEnv("UPLOAD_DIR", "./uploads")
	if err := os.MkdirAll(uploadDir, 0o755); err != nil {
		log.Errorf("failed to create upload dir: %v", err)
		return ""
	}

	destPath := filepath.Join(uploadDir, fmt.Sprintf("%d_%s", time.Now().UnixNano(), filepath.Base(file.Filename)))
	if err := c.SaveFile(file, destPath); err != nil {
		log.Errorf("failed to store reference photo: %v", err)
		return ""
	}

	if err := jobqueue.EnqueuePreview(destPath, uploadDir); err != nil {
		log.Errorf("failed to enqueue preview job: %v", err)
	}

	meta, err := imagetool.ExtractMetadata(destPath)
	if err != nil {
		log.Errorf("failed to read photo metadata: %v", err)
		return file.Filename
	}
	if desc := meta.Describe(); desc != "" {
		return fmt.Sprintf("%s (%s)", file.Filename, desc)
	}
	return file.Filename
}

func systemPromptFor(category metering.Category) string {
	return fmt.Sprintf("You are a patient tutor for %s. Explain step by step, ask the learner to try things themselves, and keep answers focused on the topic.", views.CategoryLabel(category))
}

// notifyQuotaReached mails the user once their free minutes for a category
// are used up, if they opted in.
func notifyQuotaReached(c *fiber.Ctx, category metering.Category) {
	userCtx := usercontext.GetUserContext(c)
	if !userCtx.IsLoggedIn {
		return
	}

	settings, err := models.GetOrCreateUserSettings(database.GetDB(), userCtx.UserID)
	if err != nil || !settings.EmailOnQuotaLimit {
		return
	}

	body := fmt.Sprintf("Hi %s,\n\nyour free minutes for %s are used up for today. The quota resets at midnight UTC.\n\nUpgrade for unlimited access: /upgrade", userCtx.Username, views.CategoryLabel(category))
	if err := jobqueue.EnqueueEmail(userCtx.Email, "Daily limit reached", body); err != nil {
		log.Errorf("failed to enqueue quota mail: %v", err)
	}
}
