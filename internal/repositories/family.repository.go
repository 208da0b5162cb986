package repositories

import (
	"context"

	"portal/internal/database"
	"portal/internal/logger"
	. "portal/internal/models"
	"portal/internal/services"

	"gorm.io/gorm"
)

type FamilyRepository interface {
	GetByPrimaryPersonID(ctx context.Context, personID string) (*Family, error)
	Create(ctx context.Context, family *Family) error
}

type familyRepository struct {
	db  database.DB
	log logger.Logger
}

func NewFamily(db database.DB) FamilyRepository {
	return &familyRepository{
		db:  db,
		log: logger.New("familyRepository"),
	}
}

func (r *familyRepository) getDB(ctx context.Context) *gorm.DB {
	if tx, ok := services.GetTransaction(ctx); ok {
		return tx
	}
	return r.db.SQLWithContext(ctx)
}

func (r *familyRepository) GetByPrimaryPersonID(ctx context.Context, personID string) (*Family, error) {
	log := r.log.Function("GetByPrimaryPersonID")

	var family Family
	err := r.getDB(ctx).
		Preload("Members").
		Preload("Households").
		Preload("Households.Enrollments", func(db *gorm.DB) *gorm.DB {
			return db.Order("effective_on DESC")
		}).
		Preload("Households.Enrollments.Members").
		Preload("SpecialEnrollmentPeriods").
		Preload("SpecialEnrollmentPeriods.QualifyingLifeEventKind").
		First(&family, "primary_person_id = ?", personID).Error
	if err != nil {
		return nil, log.Err("failed to get family by primary person", err, "personID", personID)
	}

	return &family, nil
}

func (r *familyRepository) Create(ctx context.Context, family *Family) error {
	log := r.log.Function("Create")

	if err := r.getDB(ctx).Create(family).Error; err != nil {
		return log.Err("failed to create family", err, "primaryPersonID", family.PrimaryPersonID)
	}

	return nil
}
