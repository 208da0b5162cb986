package reportsController

import (
	"context"
	"errors"
	"fmt"
	"time"

	"portal/internal/logger"
	. "portal/internal/models"
	"portal/internal/repositories"
	"portal/internal/selection"
)

var ErrInvalidRequest = errors.New("invalid request")

type ReportsController struct {
	employerRepo   repositories.EmployerRepository
	enrollmentRepo repositories.EnrollmentRepository
	log            logger.Logger
}

func New(
	employerRepo repositories.EmployerRepository,
	enrollmentRepo repositories.EnrollmentRepository,
) *ReportsController {
	return &ReportsController{
		employerRepo:   employerRepo,
		enrollmentRepo: enrollmentRepo,
		log:            logger.New("ReportsController"),
	}
}

type MonthlyReport struct {
	EffectiveOn   time.Time `json:"effectiveOn"`
	FEINs         []string  `json:"feins"`
	EnrollmentIDs []string  `json:"enrollmentIds"`
}

// ShopMonthlyEnrollments lists the open-enrollment coverage the employers' employees start on
// effectiveOn.
func (rc *ReportsController) ShopMonthlyEnrollments(ctx context.Context, feins []string, effectiveOn time.Time) (MonthlyReport, error) {
	log := rc.log.Function("ShopMonthlyEnrollments")

	enrollments, err := rc.loadEnrollments(ctx, feins, effectiveOn)
	if err != nil {
		return MonthlyReport{}, log.Err("failed to load enrollments", err, "feins", feins)
	}

	ids := selection.ShopMonthlyEnrollments(enrollments, effectiveOn)
	log.Info("built monthly enrollment report", "feins", feins, "effectiveOn", effectiveOn, "count", len(ids))
	return MonthlyReport{EffectiveOn: effectiveOn, FEINs: feins, EnrollmentIDs: ids}, nil
}

// ShopMonthlyTerminations lists the coverage ended by waivers that take effect on effectiveOn.
func (rc *ReportsController) ShopMonthlyTerminations(ctx context.Context, feins []string, effectiveOn time.Time) (MonthlyReport, error) {
	log := rc.log.Function("ShopMonthlyTerminations")

	enrollments, err := rc.loadEnrollments(ctx, feins, effectiveOn)
	if err != nil {
		return MonthlyReport{}, log.Err("failed to load enrollments", err, "feins", feins)
	}

	ids := selection.ShopMonthlyTerminations(enrollments, effectiveOn)
	log.Info("built monthly termination report", "feins", feins, "effectiveOn", effectiveOn, "count", len(ids))
	return MonthlyReport{EffectiveOn: effectiveOn, FEINs: feins, EnrollmentIDs: ids}, nil
}

func (rc *ReportsController) loadEnrollments(ctx context.Context, feins []string, effectiveOn time.Time) ([]Enrollment, error) {
	if len(feins) == 0 {
		return nil, fmt.Errorf("%w: at least one fein is required", ErrInvalidRequest)
	}
	if effectiveOn.IsZero() {
		return nil, fmt.Errorf("%w: effective date is required", ErrInvalidRequest)
	}

	employers, err := rc.employerRepo.GetByFEINs(ctx, feins)
	if err != nil {
		return nil, err
	}

	employerIDs := make([]string, 0, len(employers))
	for _, employer := range employers {
		employerIDs = append(employerIDs, employer.ID)
	}

	return rc.enrollmentRepo.ListShopByEmployers(ctx, employerIDs, effectiveOn)
}
