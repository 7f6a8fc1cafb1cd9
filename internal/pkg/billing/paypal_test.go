package billing

import (
	"errors"
	"testing"

	"github.com/MindMentorHQ/MindMentor/app/models"
)

func TestParsePayPalWebhookEvent_Activated(t *testing.T) {
	raw := []byte(`{
		"id": "WH-1AB23456CD789012E-3FG45678HI901234J",
		"event_type": "BILLING.SUBSCRIPTION.ACTIVATED",
		"create_time": "2026-03-14T09:30:00Z",
		"resource": {
			"id": "I-BW452GLLEP1G",
			"subscriber": { "email_address": "Payer@Example.com" }
		}
	}`)

	ev, err := ParsePayPalWebhookEvent(raw)
	if err != nil {
		t.Fatalf("unexpected parse error: %v", err)
	}
	if ev.ProviderEventID != "WH-1AB23456CD789012E-3FG45678HI901234J" {
		t.Fatalf("unexpected event id: %q", ev.ProviderEventID)
	}
	if ev.PayerEmail != "payer@example.com" {
		t.Fatalf("payer email should be lowercased, got %q", ev.PayerEmail)
	}
	if ev.ProviderSubscriptionID != "I-BW452GLLEP1G" {
		t.Fatalf("unexpected subscription id: %q", ev.ProviderSubscriptionID)
	}
	if ev.OccurredAt.IsZero() || ev.OccurredAt.Hour() != 9 {
		t.Fatalf("create_time not parsed: %v", ev.OccurredAt)
	}
}

func TestParsePayPalWebhookEvent_SaleCompleted(t *testing.T) {
	raw := []byte(`{
		"id": "WH-SALE-1",
		"event_type": "PAYMENT.SALE.COMPLETED",
		"create_time": "2026-03-14T10:00:00Z",
		"resource": {
			"id": "SALE-123",
			"payer_email": "payer@example.com",
			"billing_agreement_id": "I-BW452GLLEP1G"
		}
	}`)

	ev, err := ParsePayPalWebhookEvent(raw)
	if err != nil {
		t.Fatalf("unexpected parse error: %v", err)
	}
	if ev.PayerEmail != "payer@example.com" {
		t.Fatalf("payer_email fallback not used, got %q", ev.PayerEmail)
	}
	if ev.ProviderSubscriptionID != "I-BW452GLLEP1G" {
		t.Fatalf("billing_agreement_id should win for sale events, got %q", ev.ProviderSubscriptionID)
	}
}

func TestParsePayPalWebhookEvent_UnsupportedType(t *testing.T) {
	raw := []byte(`{
		"id": "WH-OTHER-1",
		"event_type": "CUSTOMER.DISPUTE.CREATED",
		"resource": {}
	}`)

	ev, err := ParsePayPalWebhookEvent(raw)
	if !errors.Is(err, ErrUnsupportedEventType) {
		t.Fatalf("expected ErrUnsupportedEventType, got %v", err)
	}
	if ev == nil || ev.ProviderEventID != "WH-OTHER-1" {
		t.Fatal("envelope should still be populated for unsupported types")
	}
}

func TestParsePayPalWebhookEvent_MissingEventType(t *testing.T) {
	if _, err := ParsePayPalWebhookEvent([]byte(`{"id":"x"}`)); err == nil {
		t.Fatal("expected error for payload without event_type")
	}
	if _, err := ParsePayPalWebhookEvent([]byte(`not json`)); err == nil {
		t.Fatal("expected error for invalid json")
	}
}

func TestPayPalEventToTier(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: PayPalEventSubscriptionActivated, want: models.TIER_PAID},
		{in: PayPalEventPaymentSaleCompleted, want: models.TIER_PAID},
		{in: PayPalEventSubscriptionCancelled, want: models.TIER_UNPAID},
		{in: PayPalEventSubscriptionSuspended, want: models.TIER_UNPAID},
		{in: "SOMETHING.ELSE", want: models.TIER_UNPAID},
	}

	for _, tt := range tests {
		if got := PayPalEventToTier(tt.in); got != tt.want {
			t.Fatalf("PayPalEventToTier(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestPayPalEventToSubscriptionStatus(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: PayPalEventSubscriptionActivated, want: models.SubscriptionStatusActive},
		{in: PayPalEventPaymentSaleCompleted, want: models.SubscriptionStatusActive},
		{in: PayPalEventSubscriptionCancelled, want: models.SubscriptionStatusCancelled},
		{in: PayPalEventSubscriptionSuspended, want: models.SubscriptionStatusSuspended},
		{in: "SOMETHING.ELSE", want: models.SubscriptionStatusUnknown},
	}

	for _, tt := range tests {
		if got := PayPalEventToSubscriptionStatus(tt.in); got != tt.want {
			t.Fatalf("PayPalEventToSubscriptionStatus(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
