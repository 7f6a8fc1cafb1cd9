package entitlements

import (
	"context"
	"log"

	"github.com/MindMentorHQ/MindMentor/app/models"
	"gorm.io/gorm"
)

// AccountSource is the minimal account lookup the resolver needs.
type AccountSource interface {
	GetByID(id uint) (*models.User, error)
}

// Resolver answers "which tier applies to this actor" against the account
// store. Lookup failures and missing rows resolve to unpaid: an error must
// never grant unlimited access.
type Resolver struct {
	accounts AccountSource
}

// NewResolver creates a resolver from an injected account source.
func NewResolver(accounts AccountSource) *Resolver {
	return &Resolver{accounts: accounts}
}

// NewResolverFromDB creates a resolver backed by a GORM DB handle. A nil
// handle yields a resolver with no source, which resolves everything to
// unpaid.
func NewResolverFromDB(db *gorm.DB) *Resolver {
	if db == nil {
		return NewResolver(nil)
	}
	return NewResolver(gormAccountSource{db: db})
}

// ResolveTier returns the entitlement tier for the given account id.
// An id of 0 means an unauthenticated actor and resolves to unpaid without
// touching the store.
func (r *Resolver) ResolveTier(ctx context.Context, accountID uint) Tier {
	_ = ctx
	if accountID == 0 {
		return TierUnpaid
	}
	if r.accounts == nil {
		log.Print("entitlements: no account source configured, resolving to unpaid")
		return TierUnpaid
	}

	user, err := r.accounts.GetByID(accountID)
	if err != nil {
		// Fail closed: store errors and missing rows both degrade to unpaid.
		if err != gorm.ErrRecordNotFound {
			log.Printf("entitlements: account lookup for %d failed: %v", accountID, err)
		}
		return TierUnpaid
	}
	return NormalizeTier(user.Tier)
}

type gormAccountSource struct {
	db *gorm.DB
}

func (s gormAccountSource) GetByID(id uint) (*models.User, error) {
	var user models.User
	if err := s.db.First(&user, id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}
