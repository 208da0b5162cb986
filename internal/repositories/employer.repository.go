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

const EMPLOYER_CACHE_EXPIRY = time.Hour

type EmployerRepository interface {
	GetByID(ctx context.Context, id string) (*Employer, error)
	GetByIDs(ctx context.Context, ids []string) (map[string]*Employer, error)
	GetByFEINs(ctx context.Context, feins []string) ([]*Employer, error)
	Create(ctx context.Context, employer *Employer) error
}

type employerRepository struct {
	db  database.DB
	ttl time.Duration
	log logger.Logger
}

// NewEmployer caches employers for ttl, or EMPLOYER_CACHE_EXPIRY when ttl is not positive.
func NewEmployer(db database.DB, ttl time.Duration) EmployerRepository {
	if ttl <= 0 {
		ttl = EMPLOYER_CACHE_EXPIRY
	}
	return &employerRepository{
		db:  db,
		ttl: ttl,
		log: logger.New("employerRepository"),
	}
}

func (r *employerRepository) getDB(ctx context.Context) *gorm.DB {
	if tx, ok := services.GetTransaction(ctx); ok {
		return tx
	}
	return r.db.SQLWithContext(ctx)
}

func withPlanYears(db *gorm.DB) *gorm.DB {
	return db.
		Preload("PlanYears", func(db *gorm.DB) *gorm.DB { return db.Order("start_on ASC") }).
		Preload("PlanYears.BenefitGroups").
		Preload("PlanYears.BenefitGroups.RelationshipBenefits")
}

func (r *employerRepository) GetByID(ctx context.Context, id string) (*Employer, error) {
	log := r.log.Function("GetByID")

	var employer Employer
	if err := r.getCacheByID(ctx, id, &employer); err == nil {
		return &employer, nil
	}

	if err := withPlanYears(r.getDB(ctx)).First(&employer, "id = ?", id).Error; err != nil {
		return nil, log.Err("failed to get employer by id", err, "employerID", id)
	}

	if err := r.addEmployerToCache(ctx, &employer); err != nil {
		log.Warn("failed to add employer to cache", "employerID", id, "error", err)
	}

	return &employer, nil
}

// GetByIDs skips duplicate ids and fails on the first one that cannot be loaded.
func (r *employerRepository) GetByIDs(ctx context.Context, ids []string) (map[string]*Employer, error) {
	employers := make(map[string]*Employer, len(ids))
	for _, id := range ids {
		if _, ok := employers[id]; ok {
			continue
		}
		employer, err := r.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		employers[id] = employer
	}
	return employers, nil
}

func (r *employerRepository) GetByFEINs(ctx context.Context, feins []string) ([]*Employer, error) {
	log := r.log.Function("GetByFEINs")

	var employers []*Employer
	if err := r.getDB(ctx).Where("fein IN ?", feins).Order("fein").Find(&employers).Error; err != nil {
		return nil, log.Err("failed to get employers by fein", err, "feins", feins)
	}

	return employers, nil
}

func (r *employerRepository) Create(ctx context.Context, employer *Employer) error {
	log := r.log.Function("Create")

	if err := r.getDB(ctx).Create(employer).Error; err != nil {
		return log.Err("failed to create employer", err, "fein", employer.FEIN)
	}

	return nil
}

func (r *employerRepository) getCacheByID(ctx context.Context, employerID string, employer *Employer) error {
	found, err := database.NewCacheBuilder(r.db.Cache.Employer, employerID).
		WithHash(services.EmployerCachePattern).
		WithContext(ctx).
		Get(employer)
	if err != nil {
		return r.log.Function("getCacheByID").
			Err("failed to get employer from cache", err, "employerID", employerID)
	}

	if !found {
		return r.log.Function("getCacheByID").
			Error("employer not found in cache", "employerID", employerID)
	}

	return nil
}

func (r *employerRepository) addEmployerToCache(ctx context.Context, employer *Employer) error {
	if err := database.NewCacheBuilder(r.db.Cache.Employer, employer.ID).
		WithHash(services.EmployerCachePattern).
		WithStruct(employer).
		WithTTL(r.ttl).
		WithContext(ctx).
		Set(); err != nil {
		return r.log.Function("addEmployerToCache").
			Err("failed to add employer to cache", err, "employerID", employer.ID)
	}

	return nil
}
