package middleware

import (
	"context"
	"errors"
	"testing"

	"github.com/MindMentorHQ/MindMentor/app/models"
	"github.com/MindMentorHQ/MindMentor/internal/pkg/entitlements"
)

type staticAccountSource struct {
	user *models.User
	err  error
}

func (s staticAccountSource) GetByID(_ uint) (*models.User, error) {
	return s.user, s.err
}

func withTierResolver(t *testing.T, source entitlements.AccountSource) {
	t.Helper()
	prev := tierResolver
	tierResolver = func() *entitlements.Resolver {
		return entitlements.NewResolver(source)
	}
	t.Cleanup(func() { tierResolver = prev })
}

func TestResolveTierForUserGoesThroughResolver(t *testing.T) {
	withTierResolver(t, staticAccountSource{user: &models.User{Tier: models.TIER_PAID}})

	if got := resolveTierForUser(context.Background(), 42); got != models.TIER_PAID {
		t.Errorf("resolveTierForUser() = %q, want %q", got, models.TIER_PAID)
	}
}

func TestResolveTierForUserFailsClosed(t *testing.T) {
	withTierResolver(t, staticAccountSource{err: errors.New("store down")})

	if got := resolveTierForUser(context.Background(), 42); got != models.TIER_UNPAID {
		t.Errorf("resolveTierForUser() on store error = %q, want %q", got, models.TIER_UNPAID)
	}
}
