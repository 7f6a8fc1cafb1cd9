package repository

import (
	"github.com/MindMentorHQ/MindMentor/app/models"
)

// UserRepository defines the interface for user-related database operations
type UserRepository interface {
	Create(user *models.User) error
	GetByID(id uint) (*models.User, error)
	GetByEmail(email string) (*models.User, error)
	GetByActivationToken(token string) (*models.User, error)
	GetByAPIKeyHash(hash string) (*models.User, *models.UserSettings, error)
	Update(user *models.User) error
	UpdateTier(userID uint, tier string) error
	Delete(id uint) error
	List(offset, limit int) ([]models.User, error)
	Count() (int64, error)
	CountByTier(tier string) (int64, error)
	Search(query string) ([]models.User, error)
}

// SettingRepository defines the interface for application settings
type SettingRepository interface {
	Get() (*models.AppSettings, error)
	Save(settings *models.AppSettings) error
}

// PageRepository defines the interface for page-related operations
type PageRepository interface {
	Create(page *models.Page) error
	GetByID(id uint) (*models.Page, error)
	GetBySlug(slug string) (*models.Page, error)
	GetAll() ([]models.Page, error)
	GetActive() ([]models.Page, error)
	Update(page *models.Page) error
	Delete(id uint) error
	SlugExists(slug string) (bool, error)
	SlugExistsExceptID(slug string, id uint) (bool, error)
}

// CategoryUsage is one aggregated ledger row for the admin dashboard.
type CategoryUsage struct {
	Category string `json:"category"`
	Minutes  int    `json:"minutes"`
}

// ActorUsage aggregates one actor's minutes across categories for a day.
type ActorUsage struct {
	ActorKey string `json:"actor_key"`
	Minutes  int    `json:"minutes"`
}

// UsageRepository exposes read-side usage aggregates for the admin console.
type UsageRepository interface {
	TotalsByCategory(day string) ([]CategoryUsage, error)
	TopActors(day string, limit int) ([]ActorUsage, error)
	RecordsForActor(actorKey, day string) ([]models.UsageRecord, error)
	AffiliateClickCounts(days int) ([]models.DailyStats, error)
}

// Repositories bundles all repository instances
type Repositories struct {
	User    UserRepository
	Setting SettingRepository
	Page    PageRepository
	Usage   UsageRepository
}
