package models

import "time"

// UsageRecord accumulates tool minutes for one actor, one category and one
// UTC calendar day. There is at most one row per (actor_key, category,
// usage_date) tuple; it is only ever created or incremented, never rewritten.
type UsageRecord struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	ActorKey  string    `gorm:"type:varchar(128);not null;index:ux_usage_actor_category_date,unique,priority:1" json:"actor_key"`
	Category  string    `gorm:"type:varchar(32);not null;index:ux_usage_actor_category_date,unique,priority:2" json:"category"`
	UsageDate string    `gorm:"type:char(10);not null;index:ux_usage_actor_category_date,unique,priority:3;index" json:"usage_date"`
	Minutes   int       `gorm:"not null;default:0" json:"minutes"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}
