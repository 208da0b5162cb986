package repositories

import (
	"context"

	"portal/internal/database"
	"portal/internal/logger"
	. "portal/internal/models"
	"portal/internal/services"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type QualifyingLifeEventKindRepository interface {
	GetByReason(ctx context.Context, reason string) (*QualifyingLifeEventKind, error)
	ListActive(ctx context.Context, market MarketKind) ([]QualifyingLifeEventKind, error)
	Upsert(ctx context.Context, kinds []QualifyingLifeEventKind) error
}

type qualifyingLifeEventKindRepository struct {
	db  database.DB
	log logger.Logger
}

func NewQualifyingLifeEventKind(db database.DB) QualifyingLifeEventKindRepository {
	return &qualifyingLifeEventKindRepository{
		db:  db,
		log: logger.New("qualifyingLifeEventKindRepository"),
	}
}

func (r *qualifyingLifeEventKindRepository) getDB(ctx context.Context) *gorm.DB {
	if tx, ok := services.GetTransaction(ctx); ok {
		return tx
	}
	return r.db.SQLWithContext(ctx)
}

func (r *qualifyingLifeEventKindRepository) GetByReason(ctx context.Context, reason string) (*QualifyingLifeEventKind, error) {
	log := r.log.Function("GetByReason")

	var kind QualifyingLifeEventKind
	if err := r.getDB(ctx).First(&kind, "reason = ?", reason).Error; err != nil {
		return nil, log.Err("failed to get qualifying life event kind", err, "reason", reason)
	}

	return &kind, nil
}

func (r *qualifyingLifeEventKindRepository) ListActive(ctx context.Context, market MarketKind) ([]QualifyingLifeEventKind, error) {
	log := r.log.Function("ListActive")

	var kinds []QualifyingLifeEventKind
	err := r.getDB(ctx).
		Where("is_active = ? AND market_kind = ?", true, market).
		Order("title").
		Find(&kinds).Error
	if err != nil {
		return nil, log.Err("failed to list qualifying life event kinds", err, "market", market)
	}

	return kinds, nil
}

// Upsert inserts the catalog, updating existing kinds matched by reason.
func (r *qualifyingLifeEventKindRepository) Upsert(ctx context.Context, kinds []QualifyingLifeEventKind) error {
	log := r.log.Function("Upsert")

	if len(kinds) == 0 {
		return log.Error("empty qualifying life event kind catalog")
	}

	err := r.getDB(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "reason"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"title",
				"market_kind",
				"effective_on_kinds",
				"pre_event_sep_in_days",
				"post_event_sep_in_days",
				"is_active",
				"updated_at",
			}),
		}).
		Create(&kinds).Error
	if err != nil {
		return log.Err("failed to upsert qualifying life event kinds", err, "count", len(kinds))
	}

	return nil
}
