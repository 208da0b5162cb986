package repositories

import (
	"context"

	"portal/internal/database"
	"portal/internal/logger"
	. "portal/internal/models"
	"portal/internal/services"

	"gorm.io/gorm"
)

type PersonRepository interface {
	GetByID(ctx context.Context, id string) (*Person, error)
	Create(ctx context.Context, person *Person) error
}

type personRepository struct {
	db  database.DB
	log logger.Logger
}

func NewPerson(db database.DB) PersonRepository {
	return &personRepository{
		db:  db,
		log: logger.New("personRepository"),
	}
}

func (r *personRepository) getDB(ctx context.Context) *gorm.DB {
	if tx, ok := services.GetTransaction(ctx); ok {
		return tx
	}
	return r.db.SQLWithContext(ctx)
}

// GetByID loads the person with every role and the employee roles' benefit group assignments.
func (r *personRepository) GetByID(ctx context.Context, id string) (*Person, error) {
	log := r.log.Function("GetByID")

	var person Person
	err := r.getDB(ctx).
		Preload("EmployeeRoles", func(db *gorm.DB) *gorm.DB { return db.Order("hired_on DESC") }).
		Preload("EmployeeRoles.CensusEmployee.BenefitGroupAssignments").
		Preload("ConsumerRole").
		Preload("ResidentRole").
		First(&person, "id = ?", id).Error
	if err != nil {
		return nil, log.Err("failed to get person by id", err, "personID", id)
	}

	return &person, nil
}

func (r *personRepository) Create(ctx context.Context, person *Person) error {
	log := r.log.Function("Create")

	if err := r.getDB(ctx).Create(person).Error; err != nil {
		return log.Err("failed to create person", err, "personID", person.ID)
	}

	return nil
}
