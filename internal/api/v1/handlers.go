package apiv1

import (
	"context"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"

	"github.com/MindMentorHQ/MindMentor/app/models"
	"github.com/MindMentorHQ/MindMentor/app/repository"
	"github.com/MindMentorHQ/MindMentor/internal/pkg/aiproxy"
	"github.com/MindMentorHQ/MindMentor/internal/pkg/entitlements"
	"github.com/MindMentorHQ/MindMentor/internal/pkg/metering"
	"github.com/MindMentorHQ/MindMentor/internal/pkg/middleware"
	"github.com/MindMentorHQ/MindMentor/internal/pkg/usercontext"
)

// completer is the slice of the AI client the prompt endpoint needs.
type completer interface {
	Complete(ctx context.Context, in aiproxy.CompletionRequest) (*aiproxy.CompletionResponse, error)
}

// APIServer serves the key-authenticated JSON API.
type APIServer struct {
	meter metering.Repository
	ai    completer
}

// NewAPIServer creates a new API server instance
func NewAPIServer() *APIServer {
	return &APIServer{}
}

// meterService builds the usage service per request so the repository picks
// up the global database handle set during boot.
func (s *APIServer) meterService() *metering.Service {
	repo := s.meter
	if repo == nil {
		repo = metering.NewDefaultRepository()
	}
	return metering.NewService(repo)
}

func (s *APIServer) aiClient() completer {
	if s.ai != nil {
		return s.ai
	}
	return aiproxy.NewClientFromEnv()
}

// RegisterHandlers attaches all v1 routes. Everything except ping requires a
// valid API key.
func RegisterHandlers(v1 fiber.Router, s *APIServer) {
	v1.Get("/ping", s.GetPing)

	protected := v1.Group("", middleware.APIKeyAuthMiddleware())
	protected.Get("/account", s.GetAccount)
	protected.Get("/usage", s.GetUsage)
	protected.Post("/prompt", s.PostPrompt)
}

// GetPing handles the ping endpoint
func (s *APIServer) GetPing(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{"ping": "pong"})
}

// GetAccount returns account information for the authenticated key.
func (s *APIServer) GetAccount(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)

	user, err := repository.GetGlobalFactory().GetUserRepository().GetByID(userCtx.UserID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "account_lookup_failed"})
	}

	return c.JSON(fiber.Map{
		"id":    user.ID,
		"name":  user.Name,
		"email": user.Email,
		"tier":  user.Tier,
	})
}

// GetUsage returns today's quota state across all categories.
func (s *APIServer) GetUsage(c *fiber.Ctx) error {
	actor := apiActor(c)
	svc := s.meterService()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	overview, err := svc.GetUsageOverview(ctx, actor)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "usage_read_failed"})
	}

	categories := make(fiber.Map, len(overview))
	for category, usage := range overview {
		categories[string(category)] = fiber.Map{
			"minutes_used":  usage.MinutesUsed,
			"minutes_limit": usage.MinutesLimit,
			"limit_reached": usage.LimitReached,
		}
	}

	return c.JSON(fiber.Map{
		"unlimited":  actor.Unlimited(),
		"categories": categories,
	})
}

type promptRequest struct {
	Category string `json:"category"`
	Prompt   string `json:"prompt"`
	Model    string `json:"model"`
}

// PostPrompt runs one tutoring prompt against the AI backend. The same quota
// gate and post-hoc metering apply as on the web tool pages.
func (s *APIServer) PostPrompt(c *fiber.Ctx) error {
	var req promptRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "bad_request", "message": "invalid JSON body"})
	}

	category, err := metering.ParseCategory(req.Category)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "bad_request", "message": "unknown category"})
	}
	if strings.TrimSpace(req.Prompt) == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "bad_request", "message": "prompt is required"})
	}

	if !models.GetAppSettings().AreToolsEnabled() {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"error": "maintenance"})
	}

	actor := apiActor(c)
	svc := s.meterService()

	ctx, cancel := context.WithTimeout(context.Background(), 90*time.Second)
	defer cancel()

	usage, err := svc.GetUsage(ctx, actor, category)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "usage_read_failed"})
	}
	if usage.LimitReached {
		return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
			"error":         "quota_exhausted",
			"minutes_used":  usage.MinutesUsed,
			"minutes_limit": usage.MinutesLimit,
		})
	}

	start := time.Now()
	completion, err := s.aiClient().Complete(ctx, aiproxy.CompletionRequest{
		Model:  req.Model,
		Prompt: req.Prompt,
	})
	if err != nil {
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"error": "upstream_failed"})
	}

	minutes := int((time.Since(start) + time.Minute - 1) / time.Minute)
	if minutes < 1 {
		minutes = 1
	}
	// The completion already happened, so the caller still gets the text,
	// but a failed write means nothing was charged and that must show.
	if err := svc.RecordUsage(ctx, actor, category, minutes); err != nil {
		log.Errorf("[API] Usage recording failed for %s/%s: %v", actor.Key(), category, err)
		return c.JSON(fiber.Map{
			"text":            completion.Text,
			"model":           completion.Model,
			"minutes_charged": 0,
			"warning":         "usage_recording_failed",
		})
	}

	return c.JSON(fiber.Map{
		"text":            completion.Text,
		"model":           completion.Model,
		"minutes_charged": minutes,
	})
}

func apiActor(c *fiber.Ctx) metering.Actor {
	userCtx := usercontext.GetUserContext(c)
	return metering.Actor{
		UserID: userCtx.UserID,
		IP:     c.IP(),
		Tier:   entitlements.NormalizeTier(userCtx.Tier),
	}
}
