package metering

import (
	"fmt"
	"strings"
	"time"

	"github.com/MindMentorHQ/MindMentor/internal/pkg/entitlements"
)

// DefaultDailyMinuteLimit is the per-category daily cap for quota-limited
// actors when no admin override is configured.
const DefaultDailyMinuteLimit = 30

// Category identifies a tool category. The set is closed; unknown input is
// rejected at the boundary.
type Category string

const (
	CategoryWriting  Category = "writing"
	CategoryImages   Category = "images"
	CategoryData     Category = "data"
	CategoryBusiness Category = "business"
	CategoryWebsite  Category = "website"
	CategoryGeneral  Category = "general"
)

// Categories lists every known tool category.
func Categories() []Category {
	return []Category{
		CategoryWriting,
		CategoryImages,
		CategoryData,
		CategoryBusiness,
		CategoryWebsite,
		CategoryGeneral,
	}
}

// ParseCategory validates a raw category string.
func ParseCategory(raw string) (Category, error) {
	c := Category(strings.ToLower(strings.TrimSpace(raw)))
	switch c {
	case CategoryWriting, CategoryImages, CategoryData, CategoryBusiness, CategoryWebsite, CategoryGeneral:
		return c, nil
	default:
		return "", fmt.Errorf("unknown tool category: %q", raw)
	}
}

// Actor is the identity usage is keyed by: the account id when
// authenticated, otherwise the caller's network address. Tier travels with
// the actor so the ledger can bypass the store for unlimited access.
type Actor struct {
	UserID uint
	IP     string
	Tier   entitlements.Tier
}

// Key returns the ledger key for the actor. Anonymous actors behind the same
// address share one key; that is a documented policy tradeoff, not a bug.
func (a Actor) Key() string {
	if a.UserID != 0 {
		return fmt.Sprintf("user:%d", a.UserID)
	}
	ip := strings.TrimSpace(a.IP)
	if ip == "" {
		ip = "unknown"
	}
	return "ip:" + ip
}

// Unlimited reports whether the actor bypasses quota accounting.
func (a Actor) Unlimited() bool {
	return entitlements.HasUnlimitedAccess(a.Tier)
}

// Usage is the quota state reported to callers.
type Usage struct {
	MinutesUsed  int  `json:"minutes_used"`
	MinutesLimit int  `json:"minutes_limit"`
	LimitReached bool `json:"limit_reached"`
}

// Remaining returns the minutes left before the cap, never negative.
func (u Usage) Remaining() int {
	if u.MinutesLimit <= 0 {
		return 0
	}
	left := u.MinutesLimit - u.MinutesUsed
	if left < 0 {
		return 0
	}
	return left
}

// DayKey formats the UTC calendar day the given instant belongs to.
// The whole system keys usage on UTC; mixing clocks here would skew quota
// resets between instances.
func DayKey(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}
