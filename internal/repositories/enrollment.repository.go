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

type EnrollmentRepository interface {
	GetByID(ctx context.Context, id string) (*Enrollment, error)
	ListShopByEmployers(ctx context.Context, employerIDs []string, effectiveOnOrBefore time.Time) ([]Enrollment, error)
	Create(ctx context.Context, enrollment *Enrollment) error
}

type enrollmentRepository struct {
	db  database.DB
	log logger.Logger
}

func NewEnrollment(db database.DB) EnrollmentRepository {
	return &enrollmentRepository{
		db:  db,
		log: logger.New("enrollmentRepository"),
	}
}

func (r *enrollmentRepository) getDB(ctx context.Context) *gorm.DB {
	if tx, ok := services.GetTransaction(ctx); ok {
		return tx
	}
	return r.db.SQLWithContext(ctx)
}

func (r *enrollmentRepository) GetByID(ctx context.Context, id string) (*Enrollment, error) {
	log := r.log.Function("GetByID")

	var enrollment Enrollment
	if err := r.getDB(ctx).Preload("Members").First(&enrollment, "id = ?", id).Error; err != nil {
		return nil, log.Err("failed to get enrollment by id", err, "enrollmentID", id)
	}

	return &enrollment, nil
}

// ListShopByEmployers returns the shop enrollments of the employers' employees that start on or
// before the given date, newest first.
func (r *enrollmentRepository) ListShopByEmployers(
	ctx context.Context,
	employerIDs []string,
	effectiveOnOrBefore time.Time,
) ([]Enrollment, error) {
	log := r.log.Function("ListShopByEmployers")

	if len(employerIDs) == 0 {
		return []Enrollment{}, nil
	}

	roles := r.getDB(ctx).
		Model(&EmployeeRole{}).
		Select("id").
		Where("employer_id IN ?", employerIDs)

	var enrollments []Enrollment
	err := r.getDB(ctx).
		Where("market_kind = ?", MarketShop).
		Where("employee_role_id IN (?)", roles).
		Where("effective_on <= ?", effectiveOnOrBefore).
		Order("effective_on DESC").
		Order("id").
		Find(&enrollments).Error
	if err != nil {
		return nil, log.Err("failed to list shop enrollments", err,
			"employerIDs", employerIDs,
			"effectiveOn", effectiveOnOrBefore)
	}

	return enrollments, nil
}

func (r *enrollmentRepository) Create(ctx context.Context, enrollment *Enrollment) error {
	log := r.log.Function("Create")

	if err := r.getDB(ctx).Create(enrollment).Error; err != nil {
		return log.Err("failed to create enrollment", err, "householdID", enrollment.HouseholdID)
	}

	return nil
}
