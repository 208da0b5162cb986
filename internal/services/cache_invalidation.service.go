package services

import (
	"context"

	"portal/internal/database"
	"portal/internal/logger"
)

const (
	EmployerCachePattern    = "employer:%s"
	SponsorshipCachePattern = "sponsorship:%s"
	CurrentSponsorshipKey   = "current"
)

type CacheInvalidationService struct {
	db  database.DB
	log logger.Logger
}

func NewCacheInvalidationService(db database.DB) *CacheInvalidationService {
	return &CacheInvalidationService{
		db:  db,
		log: logger.New("CacheInvalidationService"),
	}
}

// InvalidateEmployerCache drops cached employers, returning how many ids were attempted.
func (s *CacheInvalidationService) InvalidateEmployerCache(ctx context.Context, employerIDs ...string) (int, error) {
	log := s.log.Function("InvalidateEmployerCache")

	for i, id := range employerIDs {
		err := database.NewCacheBuilder(s.db.Cache.Employer, id).
			WithHash(EmployerCachePattern).
			WithContext(ctx).
			Delete()
		if err != nil {
			return i, log.Err("failed to invalidate employer cache", err, "employerID", id)
		}
	}

	log.Debug("invalidated employer cache", "count", len(employerIDs))
	return len(employerIDs), nil
}

func (s *CacheInvalidationService) InvalidateSponsorshipCache(ctx context.Context) (int, error) {
	log := s.log.Function("InvalidateSponsorshipCache")

	err := database.NewCacheBuilder(s.db.Cache.Sponsorship, CurrentSponsorshipKey).
		WithHash(SponsorshipCachePattern).
		WithContext(ctx).
		Delete()
	if err != nil {
		return 0, log.Err("failed to invalidate sponsorship cache", err)
	}

	return 1, nil
}
