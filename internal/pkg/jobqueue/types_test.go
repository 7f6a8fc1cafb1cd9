package jobqueue

import "testing"

func TestJobLifecycleTransitions(t *testing.T) {
	job := &Job{Status: JobStatusPending, MaxRetries: 2}

	job.MarkAsProcessing()
	if job.Status != JobStatusProcessing || job.ProcessedAt == nil {
		t.Fatalf("MarkAsProcessing left job in %s", job.Status)
	}

	job.MarkAsFailed("boom")
	if job.Status != JobStatusFailed || job.RetryCount != 1 {
		t.Fatalf("MarkAsFailed: status=%s retries=%d", job.Status, job.RetryCount)
	}
	if !job.IsRetryable() {
		t.Fatal("one failure of two allowed retries should be retryable")
	}

	job.MarkAsFailed("boom")
	job.MarkAsFailed("boom")
	if job.IsRetryable() {
		t.Fatalf("job with %d failures and max %d must not be retryable", job.RetryCount, job.MaxRetries)
	}

	job.MarkAsCompleted()
	if job.Status != JobStatusCompleted {
		t.Fatalf("MarkAsCompleted left job in %s", job.Status)
	}
}

func TestJobPayloadAccessors(t *testing.T) {
	job := &Job{Payload: map[string]interface{}{
		"to":               "user@example.com",
		"webhook_event_id": float64(42), // json round-trip turns ints into float64
		"native_int":       7,
		"wrong_type":       []string{"x"},
	}}

	if got := job.StringValue("to"); got != "user@example.com" {
		t.Fatalf("StringValue = %q", got)
	}
	if got := job.StringValue("missing"); got != "" {
		t.Fatalf("missing key should read empty, got %q", got)
	}
	if got := job.UintValue("webhook_event_id"); got != 42 {
		t.Fatalf("UintValue(float64) = %d", got)
	}
	if got := job.UintValue("native_int"); got != 7 {
		t.Fatalf("UintValue(int) = %d", got)
	}
	if got := job.UintValue("wrong_type"); got != 0 {
		t.Fatalf("wrong type should read zero, got %d", got)
	}
}
