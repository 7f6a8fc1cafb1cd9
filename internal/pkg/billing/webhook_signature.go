package billing

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// PayPalWebhookHeaders carries the transmission headers PayPal attaches to
// each webhook delivery, needed for signature verification.
type PayPalWebhookHeaders struct {
	TransmissionID   string
	TransmissionTime string
	TransmissionSig  string
	CertURL          string
	AuthAlgo         string
}

// PayPalWebhookHeadersFromRequest reads the verification headers from an
// incoming delivery by header name.
func PayPalWebhookHeadersFromRequest(get func(key string) string) PayPalWebhookHeaders {
	return PayPalWebhookHeaders{
		TransmissionID:   strings.TrimSpace(get("Paypal-Transmission-Id")),
		TransmissionTime: strings.TrimSpace(get("Paypal-Transmission-Time")),
		TransmissionSig:  strings.TrimSpace(get("Paypal-Transmission-Sig")),
		CertURL:          strings.TrimSpace(get("Paypal-Cert-Url")),
		AuthAlgo:         strings.TrimSpace(get("Paypal-Auth-Algo")),
	}
}

// VerifyWebhookSignature validates a delivery against PayPal's
// verify-webhook-signature endpoint. PayPal signs deliveries with a
// certificate rather than a shared secret, so verification is an API call.
// A missing webhook id or missing headers fail verification, never pass it.
func (c *PayPalClient) VerifyWebhookSignature(ctx context.Context, headers PayPalWebhookHeaders, payload []byte) (bool, error) {
	if strings.TrimSpace(c.WebhookID) == "" {
		return false, fmt.Errorf("PAYPAL_WEBHOOK_ID is not configured")
	}
	if headers.TransmissionID == "" || headers.TransmissionSig == "" || headers.CertURL == "" {
		return false, nil
	}

	token, err := c.fetchAccessToken(ctx)
	if err != nil {
		return false, err
	}

	reqBody := map[string]interface{}{
		"transmission_id":   headers.TransmissionID,
		"transmission_time": headers.TransmissionTime,
		"transmission_sig":  headers.TransmissionSig,
		"cert_url":          headers.CertURL,
		"auth_algo":         headers.AuthAlgo,
		"webhook_id":        c.WebhookID,
		"webhook_event":     json.RawMessage(payload),
	}
	encoded, err := json.Marshal(reqBody)
	if err != nil {
		return false, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.APIBaseURL+"/v1/notification/verify-webhook-signature", bytes.NewReader(encoded))
	if err != nil {
		return false, err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return false, err
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return false, fmt.Errorf("paypal signature verification failed: status=%d body=%s", resp.StatusCode, string(body))
	}

	var out struct {
		VerificationStatus string `json:"verification_status"`
	}
	if err := json.Unmarshal(body, &out); err != nil {
		return false, err
	}
	return strings.EqualFold(out.VerificationStatus, "SUCCESS"), nil
}
