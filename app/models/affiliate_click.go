package models

import "time"

// AffiliateClick is an append-only log entry for outbound partner links.
// Rows are inserted once and never mutated.
type AffiliateClick struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    *uint     `gorm:"index" json:"user_id,omitempty"`
	IP        string    `gorm:"type:varchar(45);not null" json:"ip"`
	Service   string    `gorm:"type:varchar(100);not null;index" json:"service"`
	CreatedAt time.Time `gorm:"autoCreateTime;index" json:"created_at"`
}
