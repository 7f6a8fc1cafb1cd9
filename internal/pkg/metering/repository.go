package metering

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/MindMentorHQ/MindMentor/app/models"
	"github.com/MindMentorHQ/MindMentor/internal/pkg/database"
)

// Repository is the persistence boundary of the usage ledger.
type Repository interface {
	// AddMinutes atomically adds minutes to the (actor, category, day)
	// counter, creating the row if it does not exist yet.
	AddMinutes(ctx context.Context, actorKey string, category Category, day string, minutes int) error
	// GetMinutes returns the counter for one (actor, category, day); a
	// missing row reads as zero.
	GetMinutes(ctx context.Context, actorKey string, category Category, day string) (int, error)
	// GetMinutesForDay returns per-category counters for one actor and day.
	GetMinutesForDay(ctx context.Context, actorKey string, day string) (map[Category]int, error)
	// InsertAffiliateClick appends one outbound-referral click.
	InsertAffiliateClick(ctx context.Context, click *models.AffiliateClick) error
}

type gormRepository struct {
	db *gorm.DB
}

// NewRepository returns a Repository backed by the given gorm handle.
func NewRepository(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

// NewDefaultRepository returns a Repository on the global database handle.
func NewDefaultRepository() Repository {
	return &gormRepository{db: database.GetDB()}
}

func (r *gormRepository) AddMinutes(ctx context.Context, actorKey string, category Category, day string, minutes int) error {
	record := models.UsageRecord{
		ActorKey:  actorKey,
		Category:  string(category),
		UsageDate: day,
		Minutes:   minutes,
	}
	// Single-statement upsert so concurrent recordings never lose an
	// increment. The conflict target is the unique
	// (actor_key, category, usage_date) index.
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{
			{Name: "actor_key"},
			{Name: "category"},
			{Name: "usage_date"},
		},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"minutes": gorm.Expr("minutes + ?", minutes),
		}),
	}).Create(&record).Error
}

func (r *gormRepository) GetMinutes(ctx context.Context, actorKey string, category Category, day string) (int, error) {
	var record models.UsageRecord
	err := r.db.WithContext(ctx).
		Where("actor_key = ? AND category = ? AND usage_date = ?", actorKey, string(category), day).
		First(&record).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return 0, nil
		}
		return 0, err
	}
	return record.Minutes, nil
}

func (r *gormRepository) GetMinutesForDay(ctx context.Context, actorKey string, day string) (map[Category]int, error) {
	var records []models.UsageRecord
	err := r.db.WithContext(ctx).
		Where("actor_key = ? AND usage_date = ?", actorKey, day).
		Find(&records).Error
	if err != nil {
		return nil, err
	}
	usage := make(map[Category]int, len(records))
	for _, rec := range records {
		usage[Category(rec.Category)] = rec.Minutes
	}
	return usage, nil
}

func (r *gormRepository) InsertAffiliateClick(ctx context.Context, click *models.AffiliateClick) error {
	return r.db.WithContext(ctx).Create(click).Error
}
