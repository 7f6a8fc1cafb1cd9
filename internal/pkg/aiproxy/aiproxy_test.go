package aiproxy

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func newTestClient(baseURL string) *Client {
	return &Client{
		APIBaseURL: baseURL,
		APIKey:     "test-key",
		Model:      DefaultModel,
		HTTPClient: &http.Client{Timeout: 5 * time.Second},
	}
}

func TestComplete(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("unexpected authorization header: %q", got)
		}

		var req chatRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("failed to decode request: %v", err)
		}
		if len(req.Messages) != 2 || req.Messages[0].Role != "system" {
			t.Errorf("expected system + user messages, got %+v", req.Messages)
		}

		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"model": req.Model,
			"choices": []map[string]interface{}{
				{"message": map[string]string{"role": "assistant", "content": "Hello there."}},
			},
			"usage": map[string]int{"prompt_tokens": 12, "completion_tokens": 4},
		})
	}))
	defer srv.Close()

	client := newTestClient(srv.URL)
	resp, err := client.Complete(context.Background(), CompletionRequest{
		SystemPrompt: "You are a writing tutor.",
		Prompt:       "Say hello",
	})
	if err != nil {
		t.Fatalf("Complete failed: %v", err)
	}
	if resp.Text != "Hello there." {
		t.Fatalf("unexpected text: %q", resp.Text)
	}
	if resp.PromptTokens != 12 || resp.CompletionTokens != 4 {
		t.Fatalf("token usage not propagated: %+v", resp)
	}
}

func TestCompleteRejectsEmptyPrompt(t *testing.T) {
	client := newTestClient("http://127.0.0.1:0")
	if _, err := client.Complete(context.Background(), CompletionRequest{Prompt: "   "}); err == nil {
		t.Fatal("expected error for empty prompt")
	}
}

func TestCompleteRequiresAPIKey(t *testing.T) {
	client := newTestClient("http://127.0.0.1:0")
	client.APIKey = ""
	if _, err := client.Complete(context.Background(), CompletionRequest{Prompt: "hi"}); err == nil {
		t.Fatal("expected error without api key")
	}
}

func TestCompletePropagatesUpstreamErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"rate limited"}`, http.StatusTooManyRequests)
	}))
	defer srv.Close()

	client := newTestClient(srv.URL)
	if _, err := client.Complete(context.Background(), CompletionRequest{Prompt: "hi"}); err == nil {
		t.Fatal("expected error for non-2xx upstream status")
	}
}
