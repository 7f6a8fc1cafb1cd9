package statistics

import (
	"log"
	"strconv"
	"sync"
	"time"

	"gorm.io/gorm"

	"github.com/MindMentorHQ/MindMentor/app/models"
	"github.com/MindMentorHQ/MindMentor/internal/pkg/cache"
	"github.com/MindMentorHQ/MindMentor/internal/pkg/database"
)

const (
	CacheKeyUsers        = "statistics:users:total"
	CacheKeyPaidUsers    = "statistics:users:paid"
	CacheKeyTodayMinutes = "statistics:usage:today_minutes"
	CacheExpiration      = 30 * time.Minute
)

// StatisticsData holds the counters shown on the landing page and the
// admin dashboard.
type StatisticsData struct {
	TotalUsers   int
	PaidUsers    int
	TodayMinutes int
}

var (
	lastCacheUpdate     time.Time
	cacheUpdateMutex    sync.Mutex
	cacheUpdateInterval = 5 * time.Minute
)

// ShouldUpdateCache reports whether the cached counters are due a refresh.
func ShouldUpdateCache() bool {
	cacheUpdateMutex.Lock()
	defer cacheUpdateMutex.Unlock()

	return time.Since(lastCacheUpdate) > cacheUpdateInterval
}

// UpdateCacheIfNeeded refreshes the counters when the interval has passed.
func UpdateCacheIfNeeded() {
	if ShouldUpdateCache() {
		cacheUpdateMutex.Lock()
		defer cacheUpdateMutex.Unlock()

		if err := UpdateStatisticsCache(); err != nil {
			log.Printf("Error updating statistics cache: %v", err)
		} else {
			lastCacheUpdate = time.Now()
		}
	}
}

// ResetCacheUpdateTimer forces the next read to refresh the cache.
func ResetCacheUpdateTimer() {
	cacheUpdateMutex.Lock()
	defer cacheUpdateMutex.Unlock()

	lastCacheUpdate = time.Time{}
}

func sumTodayMinutes(db *gorm.DB) (int64, error) {
	today := time.Now().UTC().Format("2006-01-02")
	var total int64
	err := db.Model(&models.UsageRecord{}).
		Where("usage_date = ?", today).
		Select("COALESCE(SUM(minutes), 0)").
		Scan(&total).Error
	return total, err
}

// UpdateStatisticsCache recomputes all counters and stores them in Redis.
func UpdateStatisticsCache() error {
	db := database.GetDB()

	var totalUsers int64
	if err := db.Model(&models.User{}).Count(&totalUsers).Error; err != nil {
		log.Printf("Error counting users: %v", err)
		return err
	}

	var paidUsers int64
	if err := db.Model(&models.User{}).Where("tier = ?", models.TIER_PAID).Count(&paidUsers).Error; err != nil {
		log.Printf("Error counting paid users: %v", err)
		return err
	}

	todayMinutes, err := sumTodayMinutes(db)
	if err != nil {
		log.Printf("Error summing today's usage: %v", err)
		return err
	}

	if err := cache.Set(CacheKeyUsers, strconv.FormatInt(totalUsers, 10), CacheExpiration); err != nil {
		return err
	}
	if err := cache.Set(CacheKeyPaidUsers, strconv.FormatInt(paidUsers, 10), CacheExpiration); err != nil {
		return err
	}
	if err := cache.Set(CacheKeyTodayMinutes, strconv.FormatInt(todayMinutes, 10), CacheExpiration); err != nil {
		return err
	}

	log.Printf("Statistics updated in cache: Users: %d, Paid: %d, Today's Minutes: %d",
		totalUsers, paidUsers, todayMinutes)
	return nil
}

func cachedCount(key string, compute func(db *gorm.DB) (int64, error)) int {
	val, err := cache.Get(key)
	if err == nil {
		if count, perr := strconv.ParseInt(val, 10, 64); perr == nil {
			return int(count)
		}
		return 0
	}

	count, err := compute(database.GetDB())
	if err != nil {
		log.Printf("Error computing statistic %s: %v", key, err)
		return 0
	}
	if err := cache.Set(key, strconv.FormatInt(count, 10), CacheExpiration); err != nil {
		log.Printf("Error caching statistic %s: %v", key, err)
	}
	return int(count)
}

// GetTotalUsers returns the user count from cache or database.
func GetTotalUsers() int {
	return cachedCount(CacheKeyUsers, func(db *gorm.DB) (int64, error) {
		var count int64
		err := db.Model(&models.User{}).Count(&count).Error
		return count, err
	})
}

// GetPaidUsers returns the paid-tier user count from cache or database.
func GetPaidUsers() int {
	return cachedCount(CacheKeyPaidUsers, func(db *gorm.DB) (int64, error) {
		var count int64
		err := db.Model(&models.User{}).Where("tier = ?", models.TIER_PAID).Count(&count).Error
		return count, err
	})
}

// GetTodayMinutes returns today's total tool minutes from cache or database.
func GetTodayMinutes() int {
	return cachedCount(CacheKeyTodayMinutes, sumTodayMinutes)
}

// GetStatisticsData returns all counters, refreshing the cache if stale.
func GetStatisticsData() StatisticsData {
	UpdateCacheIfNeeded()

	return StatisticsData{
		TotalUsers:   GetTotalUsers(),
		PaidUsers:    GetPaidUsers(),
		TodayMinutes: GetTodayMinutes(),
	}
}
