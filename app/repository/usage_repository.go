package repository

import (
	"time"

	"gorm.io/gorm"

	"github.com/MindMentorHQ/MindMentor/app/models"
)

// usageRepository implements the UsageRepository interface
type usageRepository struct {
	db *gorm.DB
}

// NewUsageRepository creates a new usage repository instance
func NewUsageRepository(db *gorm.DB) UsageRepository {
	return &usageRepository{db: db}
}

// TotalsByCategory sums minutes per category for one UTC day
func (r *usageRepository) TotalsByCategory(day string) ([]CategoryUsage, error) {
	var totals []CategoryUsage
	err := r.db.Model(&models.UsageRecord{}).
		Select("category, COALESCE(SUM(minutes), 0) AS minutes").
		Where("usage_date = ?", day).
		Group("category").
		Order("minutes DESC").
		Scan(&totals).Error
	return totals, err
}

// TopActors returns the heaviest actors for one UTC day
func (r *usageRepository) TopActors(day string, limit int) ([]ActorUsage, error) {
	if limit <= 0 {
		limit = 20
	}
	var actors []ActorUsage
	err := r.db.Model(&models.UsageRecord{}).
		Select("actor_key, COALESCE(SUM(minutes), 0) AS minutes").
		Where("usage_date = ?", day).
		Group("actor_key").
		Order("minutes DESC").
		Limit(limit).
		Scan(&actors).Error
	return actors, err
}

// RecordsForActor lists the raw ledger rows for one actor and day
func (r *usageRepository) RecordsForActor(actorKey, day string) ([]models.UsageRecord, error) {
	var records []models.UsageRecord
	err := r.db.Where("actor_key = ? AND usage_date = ?", actorKey, day).
		Order("category ASC").Find(&records).Error
	return records, err
}

// AffiliateClickCounts aggregates outbound clicks per day over the last N days
func (r *usageRepository) AffiliateClickCounts(days int) ([]models.DailyStats, error) {
	if days <= 0 {
		days = 30
	}
	since := time.Now().UTC().AddDate(0, 0, -days)
	var stats []models.DailyStats
	err := r.db.Model(&models.AffiliateClick{}).
		Select("DATE(created_at) AS date, COUNT(*) AS count").
		Where("created_at >= ?", since).
		Group("DATE(created_at)").
		Order("date ASC").
		Scan(&stats).Error
	return stats, err
}
