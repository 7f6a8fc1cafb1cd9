package s3archive

import (
	"testing"
	"time"
)

func TestLoadConfigDisabledByDefault(t *testing.T) {
	t.Setenv("S3_ARCHIVE_ENABLED", "")
	t.Setenv("S3_ACCESS_KEY_ID", "")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig() error: %v", err)
	}
	if cfg.IsEnabled() {
		t.Fatal("archiving should be disabled without S3_ARCHIVE_ENABLED=true")
	}
	if cfg.Region != "us-east-1" {
		t.Fatalf("default region = %q, want us-east-1", cfg.Region)
	}
}

func TestLoadConfigEnabledRequiresCredentials(t *testing.T) {
	t.Setenv("S3_ARCHIVE_ENABLED", "true")
	t.Setenv("S3_ACCESS_KEY_ID", "")
	t.Setenv("S3_SECRET_ACCESS_KEY", "")
	t.Setenv("S3_BUCKET_NAME", "")

	if _, err := LoadConfig(); err == nil {
		t.Fatal("expected error when enabled without credentials")
	}
}

func TestWebhookObjectKey(t *testing.T) {
	cfg := &Config{}
	at := time.Date(2025, time.March, 7, 23, 30, 0, 0, time.FixedZone("UTC-5", -5*3600))

	got := cfg.WebhookObjectKey("paypal", "WH-123", at)
	// 23:30 UTC-5 is already March 8 in UTC
	want := "webhooks/paypal/2025/03/WH-123.json"
	if got != want {
		t.Fatalf("WebhookObjectKey = %q, want %q", got, want)
	}
}

func TestUsageExportObjectKey(t *testing.T) {
	cfg := &Config{}
	if got := cfg.UsageExportObjectKey("2025-03-08"); got != "usage-exports/2025-03-08.csv" {
		t.Fatalf("UsageExportObjectKey = %q", got)
	}
}
