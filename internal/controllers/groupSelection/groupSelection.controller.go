package groupSelectionController

import (
	"context"
	"errors"
	"fmt"
	"time"

	"portal/config"
	"portal/internal/logger"
	. "portal/internal/models"
	"portal/internal/repositories"
	"portal/internal/selection"
	"portal/internal/utils"

	"github.com/go-playground/validator/v10"
	"gorm.io/gorm"
)

var ErrInvalidRequest = errors.New("invalid request")

type GroupSelectionController struct {
	personRepo      repositories.PersonRepository
	familyRepo      repositories.FamilyRepository
	employerRepo    repositories.EmployerRepository
	enrollmentRepo  repositories.EnrollmentRepository
	sponsorshipRepo repositories.SponsorshipRepository
	validate        *validator.Validate
	config          config.Config
	location        *time.Location
	now             func() time.Time
	log             logger.Logger
}

func New(
	personRepo repositories.PersonRepository,
	familyRepo repositories.FamilyRepository,
	employerRepo repositories.EmployerRepository,
	enrollmentRepo repositories.EnrollmentRepository,
	sponsorshipRepo repositories.SponsorshipRepository,
	config config.Config,
) *GroupSelectionController {
	log := logger.New("GroupSelectionController")

	location, err := time.LoadLocation(config.TimeZone)
	if err != nil {
		log.Function("New").Warn("unknown time zone, using UTC", "timeZone", config.TimeZone, "error", err)
		location = time.UTC
	}

	return &GroupSelectionController{
		personRepo:      personRepo,
		familyRepo:      familyRepo,
		employerRepo:    employerRepo,
		enrollmentRepo:  enrollmentRepo,
		sponsorshipRepo: sponsorshipRepo,
		validate:        validator.New(validator.WithRequiredStructEnabled()),
		config:          config,
		location:        location,
		now:             time.Now,
		log:             log,
	}
}

// Today is the date of record: DATE_OF_RECORD when configured, else the wall clock in the
// exchange's time zone.
func (gc *GroupSelectionController) Today() (time.Time, error) {
	if gc.config.DateOfRecord != "" {
		today, err := utils.ParseISODate(gc.config.DateOfRecord)
		if err != nil {
			return time.Time{}, gc.log.Function("Today").
				Err("invalid date of record", err, "dateOfRecord", gc.config.DateOfRecord)
		}
		return today, nil
	}
	return utils.DateOnly(gc.now().In(gc.location)), nil
}

func (gc *GroupSelectionController) policy() selection.MarketPolicy {
	if gc.config.AmbiguousMarketPolicy == config.PolicyRequireExplicit {
		return selection.RequireExplicitWhenAmbiguous
	}
	return selection.PreferEmployer
}

func (gc *GroupSelectionController) Evaluate(ctx context.Context, req selection.Request) (selection.Result, error) {
	log := gc.log.Function("Evaluate")

	if err := gc.validate.Struct(req); err != nil {
		return selection.Result{}, fmt.Errorf("%w: %w", ErrInvalidRequest, err)
	}

	today, err := gc.Today()
	if err != nil {
		return selection.Result{}, err
	}

	snap, err := gc.loadSnapshot(ctx, req)
	if err != nil {
		return selection.Result{}, err
	}

	result, err := selection.Evaluate(snap, req, selection.Options{
		Today:  today,
		DueDay: gc.config.IndividualEnrollmentDueDay,
		Policy: gc.policy(),
	})
	if err != nil {
		return selection.Result{}, log.Err("failed to evaluate group selection", err, "personID", req.PersonID)
	}

	log.Debug("evaluated group selection",
		"personID", req.PersonID,
		"marketKind", result.MarketKind,
		"effectiveOn", result.EffectiveOn)
	return result, nil
}

func (gc *GroupSelectionController) Eligibility(ctx context.Context, personID string) (selection.Eligibility, error) {
	log := gc.log.Function("Eligibility")

	if personID == "" {
		return selection.Eligibility{}, fmt.Errorf("%w: person id is required", ErrInvalidRequest)
	}

	person, err := gc.personRepo.GetByID(ctx, personID)
	if err != nil {
		return selection.Eligibility{}, log.Err("failed to load person", notFound(err), "personID", personID)
	}

	employers, err := gc.loadEmployers(ctx, person)
	if err != nil {
		return selection.Eligibility{}, log.Err("failed to load employers", err, "personID", personID)
	}

	return selection.EligibilityFor(person, employers), nil
}

func (gc *GroupSelectionController) loadEmployers(ctx context.Context, person *Person) (map[string]*Employer, error) {
	employerIDs := make([]string, 0, len(person.EmployeeRoles))
	for _, role := range person.EmployeeRoles {
		employerIDs = append(employerIDs, role.EmployerID)
	}
	employers, err := gc.employerRepo.GetByIDs(ctx, employerIDs)
	if err != nil {
		return nil, notFound(err)
	}
	return employers, nil
}

func (gc *GroupSelectionController) loadSnapshot(ctx context.Context, req selection.Request) (selection.Snapshot, error) {
	log := gc.log.Function("loadSnapshot")

	person, err := gc.personRepo.GetByID(ctx, req.PersonID)
	if err != nil {
		return selection.Snapshot{}, log.Err("failed to load person", notFound(err), "personID", req.PersonID)
	}

	family, err := gc.familyRepo.GetByPrimaryPersonID(ctx, person.ID)
	if err != nil {
		return selection.Snapshot{}, log.Err("failed to load family", notFound(err), "personID", person.ID)
	}

	employers, err := gc.loadEmployers(ctx, person)
	if err != nil {
		return selection.Snapshot{}, log.Err("failed to load employers", err, "personID", person.ID)
	}

	sponsorship, err := gc.sponsorshipRepo.GetCurrent(ctx)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		log.Warn("no benefit sponsorship configured")
		sponsorship = nil
	} else if err != nil {
		return selection.Snapshot{}, log.Err("failed to load benefit sponsorship", err)
	}

	var enrollment *Enrollment
	if req.EnrollmentID != "" {
		enrollment, err = gc.enrollmentRepo.GetByID(ctx, req.EnrollmentID)
		if err != nil {
			return selection.Snapshot{}, log.Err("failed to load enrollment", notFound(err), "enrollmentID", req.EnrollmentID)
		}
	}

	return selection.Snapshot{
		Person:      person,
		Family:      family,
		Employers:   employers,
		Sponsorship: sponsorship,
		Enrollment:  enrollment,
	}, nil
}

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%w: %w", selection.ErrNotFound, err)
	}
	return err
}
