package billing

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"log"
	"strings"

	"gorm.io/gorm"

	"github.com/MindMentorHQ/MindMentor/app/models"
	"github.com/MindMentorHQ/MindMentor/internal/pkg/entitlements"
)

// ErrNoAccountForEmail marks events whose payer email matches no account.
// This is a permanent condition for the delivery at hand, so the webhook
// endpoint acknowledges it and stores the error instead of provoking
// provider retries.
var ErrNoAccountForEmail = errors.New("no account matches payer email")

// Service synchronizes provider subscription events into local entitlement
// state. The account tier is the single source of truth; subscriptions are
// an informational mirror.
type Service struct {
	repo Repository
}

// NewService creates a billing service from an injected repository.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// NewServiceFromDB creates a billing service from a GORM DB handle.
func NewServiceFromDB(db *gorm.DB) *Service {
	return NewService(NewRepository(db))
}

// RecordWebhookEvent persists webhook payloads idempotently. The returned
// bool is false when the same provider event was already stored, which is
// how delivery replays are detected.
func (s *Service) RecordWebhookEvent(ctx context.Context, in WebhookEventInput) (bool, *models.BillingWebhookEvent, error) {
	_ = ctx
	provider := strings.ToLower(strings.TrimSpace(in.Provider))
	if provider == "" {
		return false, nil, errors.New("provider is required")
	}
	eventID := strings.TrimSpace(in.ProviderEventID)
	if eventID == "" {
		sum := sha256.Sum256([]byte(in.PayloadJSON))
		eventID = "hash:" + hex.EncodeToString(sum[:])
	}

	event := &models.BillingWebhookEvent{
		Provider:        provider,
		ProviderEventID: eventID,
		EventType:       strings.TrimSpace(in.EventType),
		PayloadJSON:     in.PayloadJSON,
		SignatureValid:  in.SignatureValid,
	}
	return s.repo.CreateWebhookEventIfNotExists(event)
}

// MarkWebhookProcessed marks an event as processed and stores an optional error.
func (s *Service) MarkWebhookProcessed(ctx context.Context, webhookEventID uint, processingErr error) error {
	_ = ctx
	if webhookEventID == 0 {
		return errors.New("webhook_event_id is required")
	}
	errMsg := ""
	if processingErr != nil {
		errMsg = processingErr.Error()
	}
	return s.repo.MarkWebhookProcessed(webhookEventID, errMsg)
}

// ApplyBillingEvent applies one normalized subscription event to local
// state: correlate the payer email to an account, guard against stale and
// out-of-order deliveries, set the tier, and update the subscription mirror.
// Setting the tier is a plain set, so replays of the same event are no-ops.
func (s *Service) ApplyBillingEvent(ctx context.Context, ev *NormalizedEvent) error {
	_ = ctx
	if ev == nil {
		return errors.New("event is required")
	}
	email := strings.ToLower(strings.TrimSpace(ev.PayerEmail))
	if email == "" {
		return ErrNoAccountForEmail
	}

	user, err := s.repo.GetUserByEmail(email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNoAccountForEmail
		}
		return err
	}

	// Deliveries can arrive out of order. An event older than the last one
	// applied to this account must not roll the tier back.
	if user.LastBillingEventAt != nil && ev.OccurredAt.Before(*user.LastBillingEventAt) {
		log.Printf("[Billing] Skipping stale %s event for user %d (event %s is older than last applied)",
			ev.Provider, user.ID, ev.ProviderEventID)
		return s.mirrorSubscription(user.ID, ev)
	}

	targetTier := PayPalEventToTier(ev.EventType)

	// Tiers outranking paid are operator-granted and never touched by
	// provider events.
	current := entitlements.NormalizeTier(user.Tier)
	if entitlements.TierRank(current) > entitlements.TierRank(entitlements.TierPaid) {
		log.Printf("[Billing] Ignoring tier change for admin user %d from %s event %s",
			user.ID, ev.Provider, ev.ProviderEventID)
	} else if err := s.repo.UpdateUserTier(user.ID, targetTier, ev.OccurredAt); err != nil {
		return err
	}

	return s.mirrorSubscription(user.ID, ev)
}

func (s *Service) mirrorSubscription(userID uint, ev *NormalizedEvent) error {
	if strings.TrimSpace(ev.ProviderSubscriptionID) == "" {
		return nil
	}
	eventAt := ev.OccurredAt
	sub := &models.Subscription{
		UserID:                 userID,
		Provider:               ev.Provider,
		ProviderSubscriptionID: strings.TrimSpace(ev.ProviderSubscriptionID),
		PayerEmail:             strings.ToLower(strings.TrimSpace(ev.PayerEmail)),
		Status:                 PayPalEventToSubscriptionStatus(ev.EventType),
		LastEventType:          ev.EventType,
		LastEventAt:            &eventAt,
		RawPayloadJSON:         ev.RawPayloadJSON,
	}
	return s.repo.UpsertSubscription(sub)
}

// ResyncUserFromSubscriptions recomputes a user's tier from the stored
// subscription mirror. Used by the admin console after manual data fixes.
func (s *Service) ResyncUserFromSubscriptions(ctx context.Context, user *models.User) (string, error) {
	_ = ctx
	if user == nil || user.ID == 0 {
		return "", errors.New("user is required")
	}
	if entitlements.TierRank(entitlements.NormalizeTier(user.Tier)) > entitlements.TierRank(entitlements.TierPaid) {
		return models.TIER_ADMIN, nil
	}

	subs, err := s.repo.ListSubscriptionsByUser(user.ID)
	if err != nil {
		return "", err
	}

	tier := models.TIER_UNPAID
	for _, sub := range subs {
		if sub.Status == models.SubscriptionStatusActive {
			tier = models.TIER_PAID
			break
		}
	}

	eventAt := user.UpdatedAt
	if user.LastBillingEventAt != nil {
		eventAt = *user.LastBillingEventAt
	}
	if err := s.repo.UpdateUserTier(user.ID, tier, eventAt); err != nil {
		return "", err
	}
	return tier, nil
}

// ListUserSubscriptions returns the subscription mirror rows for one user.
func (s *Service) ListUserSubscriptions(ctx context.Context, userID uint) ([]models.Subscription, error) {
	_ = ctx
	return s.repo.ListSubscriptionsByUser(userID)
}

// ListRecentWebhookEvents returns the newest stored deliveries for the
// admin webhook log.
func (s *Service) ListRecentWebhookEvents(ctx context.Context, limit int) ([]models.BillingWebhookEvent, error) {
	_ = ctx
	return s.repo.ListRecentWebhookEvents(limit)
}
