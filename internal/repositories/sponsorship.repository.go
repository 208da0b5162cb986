package repositories

import (
	"context"
	"time"

	"portal/internal/database"
	"portal/internal/logger"
	. "portal/internal/models"
	"portal/internal/services"

	"gorm.io/gorm"
)

const SPONSORSHIP_CACHE_EXPIRY = 6 * time.Hour

type SponsorshipRepository interface {
	GetCurrent(ctx context.Context) (*BenefitSponsorship, error)
	Create(ctx context.Context, sponsorship *BenefitSponsorship) error
}

type sponsorshipRepository struct {
	db  database.DB
	ttl time.Duration
	log logger.Logger
}

func NewSponsorship(db database.DB, ttl time.Duration) SponsorshipRepository {
	if ttl <= 0 {
		ttl = SPONSORSHIP_CACHE_EXPIRY
	}
	return &sponsorshipRepository{
		db:  db,
		ttl: ttl,
		log: logger.New("sponsorshipRepository"),
	}
}

func (r *sponsorshipRepository) getDB(ctx context.Context) *gorm.DB {
	if tx, ok := services.GetTransaction(ctx); ok {
		return tx
	}
	return r.db.SQLWithContext(ctx)
}

func (r *sponsorshipRepository) cacheItem() database.CacheItem[BenefitSponsorship] {
	pattern := services.SponsorshipCachePattern
	expiry := r.ttl
	return database.CacheItem[BenefitSponsorship]{
		Cache:       r.db.Cache.Sponsorship,
		Key:         services.CurrentSponsorshipKey,
		Expiry:      &expiry,
		HashPattern: &pattern,
	}
}

// GetCurrent returns the exchange's sponsorship with its coverage periods and packages. There is
// one per exchange; the oldest record wins if more exist.
func (r *sponsorshipRepository) GetCurrent(ctx context.Context) (*BenefitSponsorship, error) {
	log := r.log.Function("GetCurrent")

	cached, found, err := database.GetValue(ctx, r.cacheItem())
	if err != nil {
		log.Warn("failed to get sponsorship from cache", "error", err)
	} else if found {
		return &cached, nil
	}

	var sponsorship BenefitSponsorship
	err = r.getDB(ctx).
		Preload("CoveragePeriods", func(db *gorm.DB) *gorm.DB { return db.Order("start_on ASC") }).
		Preload("CoveragePeriods.BenefitPackages").
		Order("created_at ASC").
		First(&sponsorship).Error
	if err != nil {
		return nil, log.Err("failed to get benefit sponsorship", err)
	}

	item := r.cacheItem()
	item.Value = sponsorship
	if err := database.SetValue(ctx, item); err != nil {
		log.Warn("failed to add sponsorship to cache", "error", err)
	}

	return &sponsorship, nil
}

func (r *sponsorshipRepository) Create(ctx context.Context, sponsorship *BenefitSponsorship) error {
	log := r.log.Function("Create")

	if err := r.getDB(ctx).Create(sponsorship).Error; err != nil {
		return log.Err("failed to create benefit sponsorship", err, "name", sponsorship.Name)
	}

	return nil
}
