package billing

import "time"

// NormalizedEvent is the provider-agnostic shape of one subscription
// lifecycle event after parsing, ready for the sync service.
type NormalizedEvent struct {
	Provider               string
	ProviderEventID        string
	EventType              string
	OccurredAt             time.Time
	PayerEmail             string
	ProviderSubscriptionID string
	RawPayloadJSON         string
}

// WebhookEventInput is the normalized input for webhook event persistence.
type WebhookEventInput struct {
	Provider        string
	ProviderEventID string
	EventType       string
	PayloadJSON     string
	SignatureValid  bool
}
