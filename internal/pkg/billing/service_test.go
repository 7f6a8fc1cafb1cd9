package billing

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"gorm.io/gorm"

	"github.com/MindMentorHQ/MindMentor/app/models"
)

type fakeRepository struct {
	users         map[string]*models.User
	subscriptions map[string]*models.Subscription
	events        map[string]*models.BillingWebhookEvent
	nextEventID   uint
	processed     map[uint]string
}

func newFakeRepository() *fakeRepository {
	return &fakeRepository{
		users:         make(map[string]*models.User),
		subscriptions: make(map[string]*models.Subscription),
		events:        make(map[string]*models.BillingWebhookEvent),
		processed:     make(map[uint]string),
	}
}

func (f *fakeRepository) addUser(id uint, email, tier string) *models.User {
	u := &models.User{ID: id, Email: email, Tier: tier}
	f.users[email] = u
	return u
}

func (f *fakeRepository) GetUserByEmail(email string) (*models.User, error) {
	u, ok := f.users[email]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *u
	return &copied, nil
}

func (f *fakeRepository) UpdateUserTier(userID uint, tier string, eventAt time.Time) error {
	for _, u := range f.users {
		if u.ID == userID {
			u.Tier = tier
			at := eventAt
			u.LastBillingEventAt = &at
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (f *fakeRepository) UpsertSubscription(sub *models.Subscription) error {
	key := sub.Provider + "|" + sub.ProviderSubscriptionID
	stored := *sub
	f.subscriptions[key] = &stored
	return nil
}

func (f *fakeRepository) ListSubscriptionsByUser(userID uint) ([]models.Subscription, error) {
	var out []models.Subscription
	for _, sub := range f.subscriptions {
		if sub.UserID == userID {
			out = append(out, *sub)
		}
	}
	return out, nil
}

func (f *fakeRepository) CreateWebhookEventIfNotExists(event *models.BillingWebhookEvent) (bool, *models.BillingWebhookEvent, error) {
	key := event.Provider + "|" + event.ProviderEventID
	if stored, ok := f.events[key]; ok {
		copied := *stored
		return false, &copied, nil
	}
	f.nextEventID++
	event.ID = f.nextEventID
	stored := *event
	f.events[key] = &stored
	copied := stored
	return true, &copied, nil
}

func (f *fakeRepository) MarkWebhookProcessed(id uint, processingError string) error {
	f.processed[id] = processingError
	return nil
}

func (f *fakeRepository) ListRecentWebhookEvents(limit int) ([]models.BillingWebhookEvent, error) {
	var out []models.BillingWebhookEvent
	for _, ev := range f.events {
		out = append(out, *ev)
	}
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func activatedEvent(email string, at time.Time) *NormalizedEvent {
	return &NormalizedEvent{
		Provider:               models.BillingProviderPayPal,
		ProviderEventID:        fmt.Sprintf("WH-%d", at.UnixNano()),
		EventType:              PayPalEventSubscriptionActivated,
		OccurredAt:             at,
		PayerEmail:             email,
		ProviderSubscriptionID: "I-TEST1",
	}
}

func TestApplyBillingEvent_ActivationGrantsPaidTier(t *testing.T) {
	repo := newFakeRepository()
	repo.addUser(1, "payer@example.com", models.TIER_UNPAID)
	svc := NewService(repo)

	ev := activatedEvent("payer@example.com", time.Now().UTC())
	if err := svc.ApplyBillingEvent(context.Background(), ev); err != nil {
		t.Fatalf("ApplyBillingEvent failed: %v", err)
	}

	if repo.users["payer@example.com"].Tier != models.TIER_PAID {
		t.Fatalf("tier = %q, want paid", repo.users["payer@example.com"].Tier)
	}
	sub := repo.subscriptions["paypal|I-TEST1"]
	if sub == nil || sub.Status != models.SubscriptionStatusActive {
		t.Fatalf("subscription mirror not updated: %+v", sub)
	}
}

func TestApplyBillingEvent_IsIdempotent(t *testing.T) {
	repo := newFakeRepository()
	repo.addUser(1, "payer@example.com", models.TIER_UNPAID)
	svc := NewService(repo)

	ev := activatedEvent("payer@example.com", time.Now().UTC())
	for i := 0; i < 3; i++ {
		if err := svc.ApplyBillingEvent(context.Background(), ev); err != nil {
			t.Fatalf("apply %d failed: %v", i, err)
		}
	}
	if repo.users["payer@example.com"].Tier != models.TIER_PAID {
		t.Fatal("repeated application must leave the tier at paid")
	}
}

func TestApplyBillingEvent_CancellationRevokesPaidTier(t *testing.T) {
	repo := newFakeRepository()
	repo.addUser(1, "payer@example.com", models.TIER_PAID)
	svc := NewService(repo)
	ctx := context.Background()

	// Activation then cancellation, in order.
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	if err := svc.ApplyBillingEvent(ctx, activatedEvent("payer@example.com", base)); err != nil {
		t.Fatalf("activation failed: %v", err)
	}
	cancel := &NormalizedEvent{
		Provider:               models.BillingProviderPayPal,
		ProviderEventID:        "WH-CANCEL",
		EventType:              PayPalEventSubscriptionCancelled,
		OccurredAt:             base.Add(time.Hour),
		PayerEmail:             "payer@example.com",
		ProviderSubscriptionID: "I-TEST1",
	}
	if err := svc.ApplyBillingEvent(ctx, cancel); err != nil {
		t.Fatalf("cancellation failed: %v", err)
	}

	if repo.users["payer@example.com"].Tier != models.TIER_UNPAID {
		t.Fatalf("tier = %q, want unpaid after cancellation", repo.users["payer@example.com"].Tier)
	}
	if repo.subscriptions["paypal|I-TEST1"].Status != models.SubscriptionStatusCancelled {
		t.Fatal("subscription mirror should show cancelled")
	}
}

func TestApplyBillingEvent_StaleEventDoesNotRollBack(t *testing.T) {
	repo := newFakeRepository()
	repo.addUser(1, "payer@example.com", models.TIER_UNPAID)
	svc := NewService(repo)
	ctx := context.Background()

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	if err := svc.ApplyBillingEvent(ctx, activatedEvent("payer@example.com", base)); err != nil {
		t.Fatalf("activation failed: %v", err)
	}

	// A cancellation from before the activation arrives late.
	stale := &NormalizedEvent{
		Provider:               models.BillingProviderPayPal,
		ProviderEventID:        "WH-STALE",
		EventType:              PayPalEventSubscriptionCancelled,
		OccurredAt:             base.Add(-time.Hour),
		PayerEmail:             "payer@example.com",
		ProviderSubscriptionID: "I-TEST1",
	}
	if err := svc.ApplyBillingEvent(ctx, stale); err != nil {
		t.Fatalf("stale event should not error: %v", err)
	}

	if repo.users["payer@example.com"].Tier != models.TIER_PAID {
		t.Fatalf("stale cancellation must not revoke paid access, tier = %q",
			repo.users["payer@example.com"].Tier)
	}
}

func TestApplyBillingEvent_AdminTierIsNeverTouched(t *testing.T) {
	repo := newFakeRepository()
	repo.addUser(1, "admin@example.com", models.TIER_ADMIN)
	svc := NewService(repo)
	ctx := context.Background()

	cancel := &NormalizedEvent{
		Provider:               models.BillingProviderPayPal,
		ProviderEventID:        "WH-ADMIN-CANCEL",
		EventType:              PayPalEventSubscriptionCancelled,
		OccurredAt:             time.Now().UTC(),
		PayerEmail:             "admin@example.com",
		ProviderSubscriptionID: "I-ADMIN",
	}
	if err := svc.ApplyBillingEvent(ctx, cancel); err != nil {
		t.Fatalf("ApplyBillingEvent failed: %v", err)
	}

	if repo.users["admin@example.com"].Tier != models.TIER_ADMIN {
		t.Fatal("billing events must never change an admin tier")
	}
	// The mirror still records the provider state.
	if repo.subscriptions["paypal|I-ADMIN"] == nil {
		t.Fatal("subscription mirror should be recorded even for admin accounts")
	}
}

func TestApplyBillingEvent_UnknownPayerEmail(t *testing.T) {
	repo := newFakeRepository()
	svc := NewService(repo)

	ev := activatedEvent("stranger@example.com", time.Now().UTC())
	err := svc.ApplyBillingEvent(context.Background(), ev)
	if !errors.Is(err, ErrNoAccountForEmail) {
		t.Fatalf("expected ErrNoAccountForEmail, got %v", err)
	}
}

func TestRecordWebhookEvent_DetectsReplay(t *testing.T) {
	repo := newFakeRepository()
	svc := NewService(repo)
	ctx := context.Background()

	in := WebhookEventInput{
		Provider:        models.BillingProviderPayPal,
		ProviderEventID: "WH-DUP-1",
		EventType:       PayPalEventSubscriptionActivated,
		PayloadJSON:     `{"id":"WH-DUP-1"}`,
		SignatureValid:  true,
	}
	created, first, err := svc.RecordWebhookEvent(ctx, in)
	if err != nil || !created {
		t.Fatalf("first delivery should be created: created=%v err=%v", created, err)
	}
	created, second, err := svc.RecordWebhookEvent(ctx, in)
	if err != nil {
		t.Fatalf("replay failed: %v", err)
	}
	if created {
		t.Fatal("replayed delivery must not be reported as created")
	}
	if first.ID != second.ID {
		t.Fatalf("replay should return the stored event, got ids %d and %d", first.ID, second.ID)
	}
}

func TestRecordWebhookEvent_HashesMissingEventID(t *testing.T) {
	repo := newFakeRepository()
	svc := NewService(repo)
	ctx := context.Background()

	in := WebhookEventInput{
		Provider:    models.BillingProviderPayPal,
		EventType:   PayPalEventSubscriptionActivated,
		PayloadJSON: `{"event_type":"BILLING.SUBSCRIPTION.ACTIVATED"}`,
	}
	created, ev, err := svc.RecordWebhookEvent(ctx, in)
	if err != nil || !created {
		t.Fatalf("create failed: created=%v err=%v", created, err)
	}
	if len(ev.ProviderEventID) == 0 || ev.ProviderEventID[:5] != "hash:" {
		t.Fatalf("missing event id should fall back to payload hash, got %q", ev.ProviderEventID)
	}

	// Identical payload without an id still dedupes via the hash.
	created, _, err = svc.RecordWebhookEvent(ctx, in)
	if err != nil {
		t.Fatalf("replay failed: %v", err)
	}
	if created {
		t.Fatal("identical payload should dedupe on the hash id")
	}
}

func TestResyncUserFromSubscriptions(t *testing.T) {
	repo := newFakeRepository()
	user := repo.addUser(1, "payer@example.com", models.TIER_UNPAID)
	repo.subscriptions["paypal|I-RESYNC"] = &models.Subscription{
		UserID:                 1,
		Provider:               models.BillingProviderPayPal,
		ProviderSubscriptionID: "I-RESYNC",
		Status:                 models.SubscriptionStatusActive,
	}
	svc := NewService(repo)

	tier, err := svc.ResyncUserFromSubscriptions(context.Background(), user)
	if err != nil {
		t.Fatalf("resync failed: %v", err)
	}
	if tier != models.TIER_PAID {
		t.Fatalf("tier = %q, want paid with an active subscription", tier)
	}

	repo.subscriptions["paypal|I-RESYNC"].Status = models.SubscriptionStatusCancelled
	tier, err = svc.ResyncUserFromSubscriptions(context.Background(), user)
	if err != nil {
		t.Fatalf("resync failed: %v", err)
	}
	if tier != models.TIER_UNPAID {
		t.Fatalf("tier = %q, want unpaid with no active subscription", tier)
	}
}
