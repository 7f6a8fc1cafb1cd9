package apiv1

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MindMentorHQ/MindMentor/app/models"
	"github.com/MindMentorHQ/MindMentor/internal/pkg/aiproxy"
	"github.com/MindMentorHQ/MindMentor/internal/pkg/metering"
	"github.com/MindMentorHQ/MindMentor/internal/pkg/usercontext"
)

// memoryMeterRepo is an in-memory usage store for handler tests.
type memoryMeterRepo struct {
	mu         sync.Mutex
	minutes    map[string]int
	addFailure error
}

func newMemoryMeterRepo() *memoryMeterRepo {
	return &memoryMeterRepo{minutes: make(map[string]int)}
}

func meterKey(actorKey string, category metering.Category, day string) string {
	return fmt.Sprintf("%s|%s|%s", actorKey, category, day)
}

func (m *memoryMeterRepo) AddMinutes(_ context.Context, actorKey string, category metering.Category, day string, minutes int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.addFailure != nil {
		return m.addFailure
	}
	m.minutes[meterKey(actorKey, category, day)] += minutes
	return nil
}

func (m *memoryMeterRepo) GetMinutes(_ context.Context, actorKey string, category metering.Category, day string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.minutes[meterKey(actorKey, category, day)], nil
}

func (m *memoryMeterRepo) GetMinutesForDay(_ context.Context, actorKey string, day string) (map[metering.Category]int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[metering.Category]int)
	for _, c := range metering.Categories() {
		if v, ok := m.minutes[meterKey(actorKey, c, day)]; ok {
			out[c] = v
		}
	}
	return out, nil
}

func (m *memoryMeterRepo) InsertAffiliateClick(_ context.Context, _ *models.AffiliateClick) error {
	return nil
}

type stubCompleter struct{}

func (stubCompleter) Complete(_ context.Context, _ aiproxy.CompletionRequest) (*aiproxy.CompletionResponse, error) {
	return &aiproxy.CompletionResponse{Text: "stub reply", Model: "test-model"}, nil
}

func newPromptTestApp(s *APIServer) *fiber.App {
	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		c.Locals("USER_CONTEXT", usercontext.UserContext{
			UserID:     7,
			IsLoggedIn: true,
			Tier:       models.TIER_UNPAID,
		})
		return c.Next()
	})
	app.Post("/prompt", s.PostPrompt)
	return app
}

func postPrompt(t *testing.T, app *fiber.App, body string) (int, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/prompt", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var parsed map[string]any
	require.NoError(t, json.Unmarshal(raw, &parsed))
	return resp.StatusCode, parsed
}

func TestPostPromptChargesMinutes(t *testing.T) {
	repo := newMemoryMeterRepo()
	server := &APIServer{meter: repo, ai: stubCompleter{}}
	app := newPromptTestApp(server)

	status, body := postPrompt(t, app, `{"category":"writing","prompt":"explain interfaces"}`)

	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "stub reply", body["text"])
	assert.GreaterOrEqual(t, body["minutes_charged"].(float64), float64(1))
	assert.NotContains(t, body, "warning")

	total := 0
	for _, v := range repo.minutes {
		total += v
	}
	assert.GreaterOrEqual(t, total, 1, "completed prompt must be written to the ledger")
}

func TestPostPromptRecordFailureIsSurfaced(t *testing.T) {
	repo := newMemoryMeterRepo()
	repo.addFailure = errors.New("ledger unavailable")
	server := &APIServer{meter: repo, ai: stubCompleter{}}
	app := newPromptTestApp(server)

	status, body := postPrompt(t, app, `{"category":"writing","prompt":"explain interfaces"}`)

	// The completion already ran, so the caller keeps the text, but the
	// response must not claim minutes that were never written.
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "stub reply", body["text"])
	assert.Equal(t, float64(0), body["minutes_charged"])
	assert.Equal(t, "usage_recording_failed", body["warning"])
}

func TestPostPromptQuotaExhausted(t *testing.T) {
	repo := newMemoryMeterRepo()
	server := &APIServer{meter: repo, ai: stubCompleter{}}
	app := newPromptTestApp(server)

	// Fill today's counter past the default cap.
	require.NoError(t, repo.AddMinutes(context.Background(), "user:7", metering.CategoryWriting, metering.DayKey(time.Now()), 30))

	status, body := postPrompt(t, app, `{"category":"writing","prompt":"one more"}`)

	require.Equal(t, http.StatusTooManyRequests, status)
	assert.Equal(t, "quota_exhausted", body["error"])
}
