package metering

import (
	"context"
	"fmt"
	"time"

	"github.com/MindMentorHQ/MindMentor/app/models"
)

// LimitProvider supplies the current daily minute limit for quota-limited
// actors. Wired to the admin settings so the cap is adjustable at runtime.
type LimitProvider func() int

// Service implements quota reads and usage recording on top of a Repository.
type Service struct {
	repo  Repository
	limit LimitProvider
	now   func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithClock overrides the service clock. Used by tests to pin the day.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithLimitProvider overrides the daily-limit source.
func WithLimitProvider(limit LimitProvider) Option {
	return func(s *Service) { s.limit = limit }
}

// NewService builds a metering service. By default the limit comes from the
// admin-managed application settings.
func NewService(repo Repository, opts ...Option) *Service {
	s := &Service{
		repo: repo,
		limit: func() int {
			return models.GetAppSettings().GetFreeDailyMinutes()
		},
		now: time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) dailyLimit() int {
	limit := s.limit()
	if limit <= 0 {
		limit = DefaultDailyMinuteLimit
	}
	return limit
}

// GetUsage returns the actor's quota state for a category today. Unlimited
// actors never touch the store and always read as zero used, limit not
// reached.
func (s *Service) GetUsage(ctx context.Context, actor Actor, category Category) (Usage, error) {
	if actor.Unlimited() {
		return Usage{MinutesUsed: 0, MinutesLimit: 0, LimitReached: false}, nil
	}
	limit := s.dailyLimit()
	minutes, err := s.repo.GetMinutes(ctx, actor.Key(), category, DayKey(s.now()))
	if err != nil {
		return Usage{}, fmt.Errorf("read usage: %w", err)
	}
	return Usage{
		MinutesUsed:  minutes,
		MinutesLimit: limit,
		LimitReached: minutes >= limit,
	}, nil
}

// GetUsageOverview returns today's quota state across all categories.
func (s *Service) GetUsageOverview(ctx context.Context, actor Actor) (map[Category]Usage, error) {
	overview := make(map[Category]Usage, len(Categories()))
	if actor.Unlimited() {
		for _, c := range Categories() {
			overview[c] = Usage{}
		}
		return overview, nil
	}
	limit := s.dailyLimit()
	minutes, err := s.repo.GetMinutesForDay(ctx, actor.Key(), DayKey(s.now()))
	if err != nil {
		return nil, fmt.Errorf("read usage overview: %w", err)
	}
	for _, c := range Categories() {
		used := minutes[c]
		overview[c] = Usage{
			MinutesUsed:  used,
			MinutesLimit: limit,
			LimitReached: used >= limit,
		}
	}
	return overview, nil
}

// RecordUsage adds minutes to the actor's counter for the category today.
// Recording is post-hoc and never rejected for being over the cap: a session
// that starts under the limit runs to completion and the overshoot counts.
// Unlimited actors are a no-op so the ledger stays free of admin and paid
// traffic.
func (s *Service) RecordUsage(ctx context.Context, actor Actor, category Category, minutes int) error {
	if minutes <= 0 {
		return fmt.Errorf("usage minutes must be positive, got %d", minutes)
	}
	if actor.Unlimited() {
		return nil
	}
	if err := s.repo.AddMinutes(ctx, actor.Key(), category, DayKey(s.now()), minutes); err != nil {
		return fmt.Errorf("record usage: %w", err)
	}
	return nil
}

// RecordAffiliateClick appends an outbound-referral click for the actor.
// Clicks are append-only and never deduplicated.
func (s *Service) RecordAffiliateClick(ctx context.Context, actor Actor, service string) error {
	click := &models.AffiliateClick{
		IP:      actor.IP,
		Service: service,
	}
	if actor.UserID != 0 {
		id := actor.UserID
		click.UserID = &id
	}
	if err := s.repo.InsertAffiliateClick(ctx, click); err != nil {
		return fmt.Errorf("record affiliate click: %w", err)
	}
	return nil
}
