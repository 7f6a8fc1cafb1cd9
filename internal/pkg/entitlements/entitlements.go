package entitlements

import "strings"

type Tier string

const (
	TierAdmin  Tier = "admin"
	TierPaid   Tier = "paid"
	TierUnpaid Tier = "unpaid"
)

// NormalizeTier maps arbitrary input to a known tier, defaulting to unpaid.
// Anything unknown degrades to the most restricted tier.
func NormalizeTier(tier string) Tier {
	switch strings.ToLower(strings.TrimSpace(tier)) {
	case string(TierAdmin):
		return TierAdmin
	case string(TierPaid):
		return TierPaid
	default:
		return TierUnpaid
	}
}

// HasUnlimitedAccess reports whether the tier bypasses the daily usage quota.
func HasUnlimitedAccess(tier Tier) bool {
	switch tier {
	case TierAdmin, TierPaid:
		return true
	default:
		return false
	}
}

// TierRank orders tiers for precedence decisions (admin outranks billing-driven tiers).
func TierRank(tier Tier) int {
	switch NormalizeTier(string(tier)) {
	case TierAdmin:
		return 2
	case TierPaid:
		return 1
	default:
		return 0
	}
}
