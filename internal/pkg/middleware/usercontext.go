package middleware

import (
	"context"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/MindMentorHQ/MindMentor/app/models"
	"github.com/MindMentorHQ/MindMentor/internal/pkg/database"
	"github.com/MindMentorHQ/MindMentor/internal/pkg/entitlements"
	"github.com/MindMentorHQ/MindMentor/internal/pkg/session"
	"github.com/MindMentorHQ/MindMentor/internal/pkg/usercontext"
)

// tierResolver supplies the fail-closed account-to-tier lookup. Overridable
// so tests can swap the account source.
var tierResolver = func() *entitlements.Resolver {
	return entitlements.NewResolverFromDB(database.GetDB())
}

// resolveTierForUser answers the session-cache miss: one lookup through the
// entitlement resolver, degrading to unpaid on any failure.
func resolveTierForUser(ctx context.Context, userID uint) string {
	return string(tierResolver().ResolveTier(ctx, userID))
}

func setAnonymousContext(c *fiber.Ctx) {
	c.Locals("USER_CONTEXT", usercontext.UserContext{
		IsLoggedIn: false,
		IsAdmin:    false,
		Tier:       models.TIER_UNPAID,
	})
	c.Locals(usercontext.KeyFromProtected, false)
	c.Locals(usercontext.KeyIsAdmin, false)
}

// UserContextMiddleware sets up the complete user context for every request.
// This centralizes user session handling and eliminates code duplication.
func UserContextMiddleware(c *fiber.Ctx) error {
	// Avoid interfering with Goth/Fiber session handling on OAuth routes.
	// Goth uses its own fiber session store and relies on per-request locals.
	// We skip our app session on /auth/* to prevent cross-store collisions.
	if strings.HasPrefix(c.Path(), "/auth/") {
		return c.Next()
	}

	sess, err := session.GetSessionStore().Get(c)
	if err != nil {
		setAnonymousContext(c)
		return c.Next()
	}

	userID := sess.Get(usercontext.KeyUserID)
	if userID == nil {
		setAnonymousContext(c)
		return c.Next()
	}

	username := session.GetSessionValue(c, usercontext.KeyUsername)
	email := session.GetSessionValue(c, usercontext.KeyUserEmail)
	isAdmin := sess.Get(usercontext.KeyIsAdmin)

	// Tier with session-first strategy. The session copy is refreshed on
	// login and whenever a billing event or admin change touches the user.
	tier := session.GetSessionValue(c, usercontext.KeyUserTier)
	if tier == "" {
		tier = resolveTierForUser(c.UserContext(), userID.(uint))
		_ = session.SetSessionValue(c, usercontext.KeyUserTier, tier)
	}

	userCtx := usercontext.UserContext{
		UserID:     userID.(uint),
		Username:   username,
		Email:      email,
		IsLoggedIn: true,
		IsAdmin:    isAdmin != nil && isAdmin.(bool),
		Tier:       tier,
	}
	c.Locals("USER_CONTEXT", userCtx)

	c.Locals(usercontext.KeyFromProtected, true)
	c.Locals(usercontext.KeyUsername, username)
	c.Locals(usercontext.KeyUserID, userID.(uint))
	c.Locals(usercontext.KeyIsAdmin, userCtx.IsAdmin)

	return c.Next()
}
