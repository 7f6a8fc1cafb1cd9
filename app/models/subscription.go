package models

import "time"

const (
	SubscriptionStatusActive    = "active"
	SubscriptionStatusCancelled = "cancelled"
	SubscriptionStatusSuspended = "suspended"
	SubscriptionStatusUnknown   = "unknown"
)

// Subscription mirrors provider subscription state for the admin console and
// the user's membership page. The entitlement source of truth is User.Tier;
// this table is informational.
type Subscription struct {
	ID                     uint       `gorm:"primaryKey" json:"id"`
	UserID                 uint       `gorm:"not null;index" json:"user_id"`
	Provider               string     `gorm:"type:varchar(20);not null;index:ux_subscriptions_provider_subid,unique,priority:1" json:"provider"`
	ProviderSubscriptionID string     `gorm:"type:varchar(191);not null;index:ux_subscriptions_provider_subid,unique,priority:2" json:"provider_subscription_id"`
	PayerEmail             string     `gorm:"type:varchar(200);not null;index" json:"payer_email"`
	Status                 string     `gorm:"type:varchar(32);not null;default:'unknown';index" json:"status"`
	LastEventType          string     `gorm:"type:varchar(100);default:''" json:"last_event_type"`
	LastEventAt            *time.Time `gorm:"type:timestamp;default:null" json:"last_event_at,omitempty"`
	RawPayloadJSON         string     `gorm:"type:longtext" json:"raw_payload_json"`
	CreatedAt              time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt              time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}
