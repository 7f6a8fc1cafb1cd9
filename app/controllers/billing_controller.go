package controllers

import (
	"context"
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
	"github.com/sujit-baniya/flash"

	"github.com/MindMentorHQ/MindMentor/app/models"
	"github.com/MindMentorHQ/MindMentor/internal/pkg/billing"
	"github.com/MindMentorHQ/MindMentor/internal/pkg/database"
	"github.com/MindMentorHQ/MindMentor/internal/pkg/env"
	"github.com/MindMentorHQ/MindMentor/internal/pkg/jobqueue"
	"github.com/MindMentorHQ/MindMentor/views"
)

// HandlePayPalWebhook ingests PayPal subscription notifications. Every
// delivery is persisted before processing; duplicates, unsupported event
// types and unknown payer emails are acknowledged with 2xx so PayPal stops
// retrying them.
func HandlePayPalWebhook(c *fiber.Ctx) error {
	rawBody := append([]byte(nil), c.BodyRaw()...)

	client := billing.NewPayPalClientFromEnv()
	headers := billing.PayPalWebhookHeadersFromRequest(c.Get)

	svc := billing.NewServiceFromDB(database.GetDB())
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	signatureValid, err := client.VerifyWebhookSignature(ctx, headers, rawBody)
	if err != nil {
		log.Errorf("paypal signature verification failed: %v", err)
		signatureValid = false
	}

	ev, parseErr := billing.ParsePayPalWebhookEvent(rawBody)
	eventID := ""
	eventType := ""
	if ev != nil {
		eventID = ev.ProviderEventID
		eventType = ev.EventType
	}

	created, stored, err := svc.RecordWebhookEvent(ctx, billing.WebhookEventInput{
		Provider:        models.BillingProviderPayPal,
		ProviderEventID: eventID,
		EventType:       eventType,
		PayloadJSON:     string(rawBody),
		SignatureValid:  signatureValid,
	})
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "webhook_persist_failed"})
	}
	if !created {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"ok": true, "duplicate": true})
	}

	if !signatureValid {
		_ = svc.MarkWebhookProcessed(ctx, stored.ID, errors.New("invalid webhook signature"))
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "invalid_signature"})
	}

	if parseErr != nil {
		if errors.Is(parseErr, billing.ErrUnsupportedEventType) {
			_ = svc.MarkWebhookProcessed(ctx, stored.ID, nil)
			enqueueWebhookArchive(stored.ID)
			return c.Status(fiber.StatusOK).JSON(fiber.Map{"ok": true, "ignored": true})
		}
		_ = svc.MarkWebhookProcessed(ctx, stored.ID, parseErr)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid_payload"})
	}

	applyErr := svc.ApplyBillingEvent(ctx, ev)
	if applyErr != nil {
		if errors.Is(applyErr, billing.ErrNoAccountForEmail) {
			// No local account matches the payer email. Acknowledged so
			// PayPal does not retry, but kept visible in the webhook log.
			_ = svc.MarkWebhookProcessed(ctx, stored.ID, applyErr)
			enqueueWebhookArchive(stored.ID)
			return c.Status(fiber.StatusOK).JSON(fiber.Map{"ok": true, "ignored": true})
		}
		_ = svc.MarkWebhookProcessed(ctx, stored.ID, applyErr)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "event_apply_failed"})
	}

	_ = svc.MarkWebhookProcessed(ctx, stored.ID, nil)
	enqueueWebhookArchive(stored.ID)

	return c.Status(fiber.StatusOK).JSON(fiber.Map{"ok": true})
}

// HandleUpgradePage renders the PayPal subscribe page.
func HandleUpgradePage(c *fiber.Ctx) error {
	planID := env.GetEnv("PAYPAL_PLAN_ID", "")
	if planID == "" {
		return flash.WithError(c, fiber.Map{"type": "error", "message": "Upgrades are currently unavailable"}).Redirect("/")
	}

	return render(c, " | Upgrade", views.UpgradePage(isLoggedIn(c), planID))
}

func enqueueWebhookArchive(webhookEventID uint) {
	if err := jobqueue.EnqueueWebhookArchive(webhookEventID); err != nil {
		log.Errorf("failed to enqueue webhook archive for event %d: %v", webhookEventID, err)
	}
}
