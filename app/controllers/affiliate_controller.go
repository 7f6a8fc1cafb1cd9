package controllers

import (
	"context"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"

	"github.com/MindMentorHQ/MindMentor/internal/pkg/env"
	"github.com/MindMentorHQ/MindMentor/internal/pkg/metering"
)

// partner targets for outbound referral links, keyed by the :service path
// segment. Targets are env-driven so campaigns can change without a deploy.
var affiliateTargets = map[string]string{
	"hosting": "AFFILIATE_URL_HOSTING",
	"domains": "AFFILIATE_URL_DOMAINS",
	"courses": "AFFILIATE_URL_COURSES",
	"books":   "AFFILIATE_URL_BOOKS",
}

// HandleAffiliateRedirect records the outbound click and forwards to the
// partner. Clicks are append-only, a failed insert never blocks the redirect.
func HandleAffiliateRedirect(c *fiber.Ctx) error {
	service := strings.ToLower(strings.TrimSpace(c.Params("service")))

	envKey, ok := affiliateTargets[service]
	if !ok {
		return HandleNotFound(c)
	}
	target := env.GetEnv(envKey, "")
	if target == "" {
		return HandleNotFound(c)
	}

	actor := actorFromContext(c)
	svc := metering.NewService(metering.NewDefaultRepository())

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := svc.RecordAffiliateClick(ctx, actor, service); err != nil {
		log.Errorf("failed to record affiliate click for %s: %v", service, err)
	}

	return c.Redirect(target, fiber.StatusFound)
}
