package aiproxy

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/MindMentorHQ/MindMentor/internal/pkg/env"
)

const (
	defaultAPIBaseURL = "https://api.openai.com/v1"
	DefaultModel      = "gpt-4o-mini"
)

// Client talks to an OpenAI-compatible chat completion API. All tool
// categories go through this one client; the category only changes the
// system prompt.
type Client struct {
	APIBaseURL string
	APIKey     string
	Model      string

	HTTPClient *http.Client
}

// NewClientFromEnv builds a client from AI_* environment variables.
func NewClientFromEnv() *Client {
	return &Client{
		APIBaseURL: strings.TrimRight(strings.TrimSpace(env.GetEnv("AI_API_BASE_URL", defaultAPIBaseURL)), "/"),
		APIKey:     strings.TrimSpace(env.GetEnv("AI_API_KEY", "")),
		Model:      strings.TrimSpace(env.GetEnv("AI_MODEL", DefaultModel)),
		HTTPClient: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
}

// CompletionRequest is one prompt turn sent to the provider.
type CompletionRequest struct {
	Model        string
	SystemPrompt string
	Prompt       string
	MaxTokens    int
}

// CompletionResponse is the provider's answer plus token accounting.
type CompletionResponse struct {
	Text             string
	Model            string
	PromptTokens     int
	CompletionTokens int
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model     string        `json:"model"`
	Messages  []chatMessage `json:"messages"`
	MaxTokens int           `json:"max_tokens,omitempty"`
}

type chatResponse struct {
	Model   string `json:"model"`
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
	} `json:"usage"`
}

// Complete sends one prompt and returns the model's reply.
func (c *Client) Complete(ctx context.Context, in CompletionRequest) (*CompletionResponse, error) {
	if strings.TrimSpace(c.APIKey) == "" {
		return nil, errors.New("AI_API_KEY is not configured")
	}
	prompt := strings.TrimSpace(in.Prompt)
	if prompt == "" {
		return nil, errors.New("prompt is required")
	}

	model := strings.TrimSpace(in.Model)
	if model == "" {
		model = c.Model
	}

	var messages []chatMessage
	if sys := strings.TrimSpace(in.SystemPrompt); sys != "" {
		messages = append(messages, chatMessage{Role: "system", Content: sys})
	}
	messages = append(messages, chatMessage{Role: "user", Content: prompt})

	encoded, err := json.Marshal(chatRequest{
		Model:     model,
		Messages:  messages,
		MaxTokens: in.MaxTokens,
	})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.APIBaseURL+"/chat/completions", bytes.NewReader(encoded))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.APIKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("ai completion request failed: status=%d body=%s", resp.StatusCode, string(body))
	}

	var out chatResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, err
	}
	if len(out.Choices) == 0 {
		return nil, errors.New("ai completion response contained no choices")
	}

	return &CompletionResponse{
		Text:             out.Choices[0].Message.Content,
		Model:            out.Model,
		PromptTokens:     out.Usage.PromptTokens,
		CompletionTokens: out.Usage.CompletionTokens,
	}, nil
}
