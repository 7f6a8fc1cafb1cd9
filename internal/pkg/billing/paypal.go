package billing

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/MindMentorHQ/MindMentor/app/models"
	"github.com/MindMentorHQ/MindMentor/internal/pkg/env"
)

const (
	defaultPayPalAPIBaseURL = "https://api-m.paypal.com"

	// Subscription lifecycle event types handled by the sync service.
	PayPalEventSubscriptionActivated = "BILLING.SUBSCRIPTION.ACTIVATED"
	PayPalEventSubscriptionCancelled = "BILLING.SUBSCRIPTION.CANCELLED"
	PayPalEventSubscriptionSuspended = "BILLING.SUBSCRIPTION.SUSPENDED"
	PayPalEventPaymentSaleCompleted  = "PAYMENT.SALE.COMPLETED"
)

// ErrUnsupportedEventType marks event types outside the handled set. The
// webhook endpoint still acknowledges them so the provider stops retrying.
var ErrUnsupportedEventType = errors.New("unsupported paypal event type")

type PayPalClient struct {
	ClientID     string
	ClientSecret string
	WebhookID    string

	APIBaseURL string

	HTTPClient *http.Client
}

func NewPayPalClientFromEnv() *PayPalClient {
	return &PayPalClient{
		ClientID:     strings.TrimSpace(env.GetEnv("PAYPAL_CLIENT_ID", "")),
		ClientSecret: strings.TrimSpace(env.GetEnv("PAYPAL_CLIENT_SECRET", "")),
		WebhookID:    strings.TrimSpace(env.GetEnv("PAYPAL_WEBHOOK_ID", "")),
		APIBaseURL:   strings.TrimRight(strings.TrimSpace(env.GetEnv("PAYPAL_API_BASE_URL", defaultPayPalAPIBaseURL)), "/"),
		HTTPClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

type payPalTokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
}

func (c *PayPalClient) fetchAccessToken(ctx context.Context) (string, error) {
	if strings.TrimSpace(c.ClientID) == "" || strings.TrimSpace(c.ClientSecret) == "" {
		return "", errors.New("PAYPAL_CLIENT_ID/PAYPAL_CLIENT_SECRET are not configured")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.APIBaseURL+"/v1/oauth2/token", strings.NewReader("grant_type=client_credentials"))
	if err != nil {
		return "", err
	}
	req.SetBasicAuth(c.ClientID, c.ClientSecret)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("paypal token request failed: status=%d body=%s", resp.StatusCode, string(body))
	}

	var out payPalTokenResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return "", err
	}
	if strings.TrimSpace(out.AccessToken) == "" {
		return "", errors.New("paypal token request returned empty access_token")
	}
	return out.AccessToken, nil
}

// ParsePayPalWebhookEvent extracts the fields the sync service needs from a
// raw webhook payload. Events outside the handled type set return
// ErrUnsupportedEventType with the parsed envelope still populated, so the
// caller can log and acknowledge them.
func ParsePayPalWebhookEvent(payload []byte) (*NormalizedEvent, error) {
	type rawPayload struct {
		ID         string `json:"id"`
		EventType  string `json:"event_type"`
		CreateTime string `json:"create_time"`
		Resource   struct {
			ID         string `json:"id"`
			Subscriber struct {
				EmailAddress string `json:"email_address"`
			} `json:"subscriber"`
			// PAYMENT.SALE.COMPLETED carries the payer email here and the
			// subscription id in billing_agreement_id.
			PayerEmail         string `json:"payer_email"`
			BillingAgreementID string `json:"billing_agreement_id"`
		} `json:"resource"`
	}

	var raw rawPayload
	if err := json.Unmarshal(payload, &raw); err != nil {
		return nil, err
	}

	eventType := strings.ToUpper(strings.TrimSpace(raw.EventType))
	if eventType == "" {
		return nil, errors.New("paypal webhook payload missing event_type")
	}

	occurredAt := time.Now().UTC()
	if ts := strings.TrimSpace(raw.CreateTime); ts != "" {
		if parsed, err := time.Parse(time.RFC3339, ts); err == nil {
			occurredAt = parsed.UTC()
		}
	}

	email := strings.ToLower(strings.TrimSpace(raw.Resource.Subscriber.EmailAddress))
	if email == "" {
		email = strings.ToLower(strings.TrimSpace(raw.Resource.PayerEmail))
	}

	subscriptionID := strings.TrimSpace(raw.Resource.ID)
	if eventType == PayPalEventPaymentSaleCompleted {
		if baID := strings.TrimSpace(raw.Resource.BillingAgreementID); baID != "" {
			subscriptionID = baID
		}
	}

	out := &NormalizedEvent{
		Provider:               models.BillingProviderPayPal,
		ProviderEventID:        strings.TrimSpace(raw.ID),
		EventType:              eventType,
		OccurredAt:             occurredAt,
		PayerEmail:             email,
		ProviderSubscriptionID: subscriptionID,
		RawPayloadJSON:         string(payload),
	}

	switch eventType {
	case PayPalEventSubscriptionActivated, PayPalEventSubscriptionCancelled,
		PayPalEventSubscriptionSuspended, PayPalEventPaymentSaleCompleted:
		return out, nil
	default:
		return out, ErrUnsupportedEventType
	}
}

// PayPalEventToSubscriptionStatus maps a handled event type to the local
// subscription status mirror.
func PayPalEventToSubscriptionStatus(eventType string) string {
	switch strings.ToUpper(strings.TrimSpace(eventType)) {
	case PayPalEventSubscriptionActivated, PayPalEventPaymentSaleCompleted:
		return models.SubscriptionStatusActive
	case PayPalEventSubscriptionCancelled:
		return models.SubscriptionStatusCancelled
	case PayPalEventSubscriptionSuspended:
		return models.SubscriptionStatusSuspended
	default:
		return models.SubscriptionStatusUnknown
	}
}

// PayPalEventToTier maps a handled event type to the entitlement tier it
// grants. Cancellation and suspension both revoke paid access immediately.
func PayPalEventToTier(eventType string) string {
	switch strings.ToUpper(strings.TrimSpace(eventType)) {
	case PayPalEventSubscriptionActivated, PayPalEventPaymentSaleCompleted:
		return models.TIER_PAID
	case PayPalEventSubscriptionCancelled, PayPalEventSubscriptionSuspended:
		return models.TIER_UNPAID
	default:
		return models.TIER_UNPAID
	}
}
