package app

import (
	"portal/config"
	"portal/internal/database"
	"portal/internal/logger"
	"portal/internal/repositories"
	"portal/internal/services"

	groupSelectionController "portal/internal/controllers/groupSelection"
	reportsController "portal/internal/controllers/reports"
)

type App struct {
	Database database.DB
	Config   config.Config

	// Services
	TransactionService       *services.TransactionService
	CacheInvalidationService *services.CacheInvalidationService

	// Repositories
	PersonRepo                  repositories.PersonRepository
	FamilyRepo                  repositories.FamilyRepository
	EmployerRepo                repositories.EmployerRepository
	EnrollmentRepo              repositories.EnrollmentRepository
	SponsorshipRepo             repositories.SponsorshipRepository
	QualifyingLifeEventKindRepo repositories.QualifyingLifeEventKindRepository

	// Controllers
	GroupSelectionController *groupSelectionController.GroupSelectionController
	ReportsController        *reportsController.ReportsController
}

// New opens the database described by config and wires the application around it. Callers
// initialize the logger first so the database logs through it.
func New(config config.Config) (*App, error) {
	log := logger.New("app").Function("New")

	db, err := database.New(config)
	if err != nil {
		return &App{}, log.Err("failed to create database", err)
	}

	app, err := NewWithDatabase(config, db)
	if err != nil {
		_ = db.Close()
		return &App{}, err
	}

	return app, nil
}

// NewWithDatabase wires the application around an already opened database.
func NewWithDatabase(config config.Config, db database.DB) (*App, error) {
	log := logger.New("app").Function("NewWithDatabase")

	// Initialize services
	transactionService := services.NewTransactionService(db)
	cacheInvalidationService := services.NewCacheInvalidationService(db)

	// Initialize repositories
	personRepo := repositories.NewPerson(db)
	familyRepo := repositories.NewFamily(db)
	employerRepo := repositories.NewEmployer(db, config.CacheTTL())
	enrollmentRepo := repositories.NewEnrollment(db)
	sponsorshipRepo := repositories.NewSponsorship(db, config.CacheTTL())
	qleKindRepo := repositories.NewQualifyingLifeEventKind(db)

	// Initialize controllers with repositories and services
	groupSelection := groupSelectionController.New(
		personRepo,
		familyRepo,
		employerRepo,
		enrollmentRepo,
		sponsorshipRepo,
		config,
	)
	reports := reportsController.New(employerRepo, enrollmentRepo)

	app := &App{
		Database:                    db,
		Config:                      config,
		TransactionService:          transactionService,
		CacheInvalidationService:    cacheInvalidationService,
		PersonRepo:                  personRepo,
		FamilyRepo:                  familyRepo,
		EmployerRepo:                employerRepo,
		EnrollmentRepo:              enrollmentRepo,
		SponsorshipRepo:             sponsorshipRepo,
		QualifyingLifeEventKindRepo: qleKindRepo,
		GroupSelectionController:    groupSelection,
		ReportsController:           reports,
	}

	if err := app.validate(); err != nil {
		return &App{}, log.Err("failed to validate app", err)
	}

	return app, nil
}

func (a *App) validate() error {
	log := logger.New("app").Function("validate")
	if a.Database.SQL == nil {
		return log.ErrMsg("database is nil")
	}

	if a.Config == (config.Config{}) {
		return log.ErrMsg("config is nil")
	}

	nilChecks := []any{
		a.TransactionService,
		a.CacheInvalidationService,
		a.PersonRepo,
		a.FamilyRepo,
		a.EmployerRepo,
		a.EnrollmentRepo,
		a.SponsorshipRepo,
		a.QualifyingLifeEventKindRepo,
		a.GroupSelectionController,
		a.ReportsController,
	}

	for _, check := range nilChecks {
		if check == nil {
			return log.ErrMsg("nil check failed")
		}
	}

	return nil
}

func (a *App) Close() (err error) {
	if dbErr := a.Database.Close(); dbErr != nil {
		err = dbErr
	}

	return err
}
