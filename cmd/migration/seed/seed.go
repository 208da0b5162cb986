package seed

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"time"

	"portal/internal/app"
	"portal/internal/logger"
	. "portal/internal/models"
	"portal/internal/services"
	"portal/internal/utils"

	"gopkg.in/yaml.v3"
)

//go:embed fixture.yaml
var defaultFixture []byte

var errNoTransaction = errors.New("seeding requires a transaction")

type Fixture struct {
	Sponsorship *sponsorshipFixture `yaml:"sponsorship"`
	Employers   []employerFixture   `yaml:"employers"`
	People      []personFixture     `yaml:"people"`
}

type sponsorshipFixture struct {
	Name            string `yaml:"name"`
	CoveragePeriods []struct {
		Title                 string `yaml:"title"`
		StartOn               string `yaml:"startOn"`
		EndOn                 string `yaml:"endOn"`
		OpenEnrollmentStartOn string `yaml:"openEnrollmentStartOn"`
		OpenEnrollmentEndOn   string `yaml:"openEnrollmentEndOn"`
	} `yaml:"coveragePeriods"`
}

type employerFixture struct {
	LegalName string            `yaml:"legalName"`
	FEIN      string            `yaml:"fein"`
	PlanYears []planYearFixture `yaml:"planYears"`
	Employees []employeeFixture `yaml:"employees"`
}

type planYearFixture struct {
	StartOn               string `yaml:"startOn"`
	EndOn                 string `yaml:"endOn"`
	OpenEnrollmentStartOn string `yaml:"openEnrollmentStartOn"`
	OpenEnrollmentEndOn   string `yaml:"openEnrollmentEndOn"`
	State                 string `yaml:"state"`
	BenefitGroups         []struct {
		Title                string `yaml:"title"`
		EffectiveOnKind      string `yaml:"effectiveOnKind"`
		EffectiveOnOffset    int    `yaml:"effectiveOnOffset"`
		RelationshipBenefits []struct {
			CoverageKind   string `yaml:"coverageKind"`
			Relationship   string `yaml:"relationship"`
			Offered        bool   `yaml:"offered"`
			PremiumPct     string `yaml:"premiumPct"`
			EmployerMaxAmt string `yaml:"employerMaxAmt"`
		} `yaml:"relationshipBenefits"`
	} `yaml:"benefitGroups"`
}

type employeeFixture struct {
	FirstName    string `yaml:"firstName"`
	LastName     string `yaml:"lastName"`
	HiredOn      string `yaml:"hiredOn"`
	BenefitGroup string `yaml:"benefitGroup"`
	Consumer     bool   `yaml:"consumer"`
	Enrollments  []struct {
		CoverageKind string `yaml:"coverageKind"`
		State        string `yaml:"state"`
		EffectiveOn  string `yaml:"effectiveOn"`
	} `yaml:"enrollments"`
}

type personFixture struct {
	FirstName string `yaml:"firstName"`
	LastName  string `yaml:"lastName"`
	Consumer  bool   `yaml:"consumer"`
	Resident  bool   `yaml:"resident"`
}

func ParseFixture(raw []byte) (Fixture, error) {
	var fixture Fixture
	if err := yaml.Unmarshal(raw, &fixture); err != nil {
		return Fixture{}, fmt.Errorf("failed to parse seed fixture: %w", err)
	}
	return fixture, nil
}

// Seed loads the bundled development data set.
func Seed(ctx context.Context, a *app.App, log logger.Logger) error {
	fixture, err := ParseFixture(defaultFixture)
	if err != nil {
		return log.Err("failed to read fixture", err)
	}
	return SeedFixture(ctx, a, fixture, log)
}

// SeedFixture writes fixture in one transaction. Employers whose FEIN already exists are
// skipped along with their employees, so running it twice is harmless.
func SeedFixture(ctx context.Context, a *app.App, fixture Fixture, log logger.Logger) error {
	log = log.Function("seed")
	log.Info("Seeding development data")

	var employerIDs []string
	err := a.TransactionService.Execute(ctx, func(txCtx context.Context) error {
		if err := seedSponsorship(txCtx, a, fixture.Sponsorship, log); err != nil {
			return err
		}

		for _, ef := range fixture.Employers {
			id, err := seedEmployer(txCtx, a, ef, log)
			if err != nil {
				return err
			}
			if id != "" {
				employerIDs = append(employerIDs, id)
			}
		}

		for _, pf := range fixture.People {
			exists, err := personExists(txCtx, pf.FirstName, pf.LastName)
			if err != nil {
				return err
			}
			if exists {
				log.Info("Person already exists", "firstName", pf.FirstName, "lastName", pf.LastName)
				continue
			}

			person := &Person{FirstName: pf.FirstName, LastName: pf.LastName}
			if pf.Consumer {
				person.ConsumerRole = &ConsumerRole{IsActive: true}
			}
			if pf.Resident {
				person.ResidentRole = &ResidentRole{IsActive: true}
			}
			if err := createPersonWithFamily(txCtx, a, person, nil); err != nil {
				return err
			}
			log.Info("Seeded person", "name", person.FullName())
		}
		return nil
	})
	if err != nil {
		return log.Err("failed to seed data", err)
	}

	if _, err := a.CacheInvalidationService.InvalidateEmployerCache(ctx, employerIDs...); err != nil {
		log.Warn("failed to invalidate employer cache", "error", err)
	}
	if _, err := a.CacheInvalidationService.InvalidateSponsorshipCache(ctx); err != nil {
		log.Warn("failed to invalidate sponsorship cache", "error", err)
	}

	log.Info("Seeding complete", "employers", len(employerIDs))
	return nil
}

func seedSponsorship(ctx context.Context, a *app.App, sf *sponsorshipFixture, log logger.Logger) error {
	if sf == nil {
		return nil
	}
	if _, err := a.SponsorshipRepo.GetCurrent(ctx); err == nil {
		log.Info("Sponsorship already exists")
		return nil
	}

	sponsorship := &BenefitSponsorship{Name: sf.Name}
	for _, pf := range sf.CoveragePeriods {
		dates, err := parseDates(pf.StartOn, pf.EndOn, pf.OpenEnrollmentStartOn, pf.OpenEnrollmentEndOn)
		if err != nil {
			return fmt.Errorf("coverage period %s: %w", pf.Title, err)
		}
		sponsorship.CoveragePeriods = append(sponsorship.CoveragePeriods, BenefitCoveragePeriod{
			Title:                 pf.Title,
			StartOn:               dates[0],
			EndOn:                 dates[1],
			OpenEnrollmentStartOn: dates[2],
			OpenEnrollmentEndOn:   dates[3],
			BenefitPackages: []BenefitPackage{
				{Title: IndividualHealthPackageTitle(dates[0].Year()), MarketKind: MarketIndividual, CoverageKind: CoverageHealth},
				{Title: fmt.Sprintf("individual_dental_benefits_%d", dates[0].Year()), MarketKind: MarketIndividual, CoverageKind: CoverageDental},
			},
		})
	}

	if err := a.SponsorshipRepo.Create(ctx, sponsorship); err != nil {
		return err
	}
	log.Info("Seeded sponsorship", "name", sponsorship.Name, "periods", len(sponsorship.CoveragePeriods))
	return nil
}

func seedEmployer(ctx context.Context, a *app.App, ef employerFixture, log logger.Logger) (string, error) {
	existing, err := a.EmployerRepo.GetByFEINs(ctx, []string{ef.FEIN})
	if err != nil {
		return "", err
	}
	if len(existing) > 0 {
		log.Info("Employer already exists", "fein", ef.FEIN)
		return "", nil
	}

	employer, err := buildEmployer(ef)
	if err != nil {
		return "", fmt.Errorf("employer %s: %w", ef.FEIN, err)
	}
	if err := employer.Validate(); err != nil {
		return "", err
	}
	if err := a.EmployerRepo.Create(ctx, employer); err != nil {
		return "", err
	}

	for _, emp := range ef.Employees {
		if err := seedEmployee(ctx, a, employer, emp); err != nil {
			return "", fmt.Errorf("employee %s %s: %w", emp.FirstName, emp.LastName, err)
		}
	}

	log.Info("Seeded employer", "legalName", employer.LegalName, "employees", len(ef.Employees))
	return employer.ID, nil
}

func buildEmployer(ef employerFixture) (*Employer, error) {
	employer := &Employer{LegalName: ef.LegalName, FEIN: ef.FEIN}
	for _, pyf := range ef.PlanYears {
		dates, err := parseDates(pyf.StartOn, pyf.EndOn, pyf.OpenEnrollmentStartOn, pyf.OpenEnrollmentEndOn)
		if err != nil {
			return nil, err
		}
		py := PlanYear{
			StartOn:               dates[0],
			EndOn:                 dates[1],
			OpenEnrollmentStartOn: dates[2],
			OpenEnrollmentEndOn:   dates[3],
			State:                 PlanYearState(pyf.State),
		}

		for _, bgf := range pyf.BenefitGroups {
			bg := BenefitGroup{
				Title:             bgf.Title,
				EffectiveOnKind:   bgf.EffectiveOnKind,
				EffectiveOnOffset: bgf.EffectiveOnOffset,
			}
			for _, rbf := range bgf.RelationshipBenefits {
				pct, err := utils.ParsePercent(rbf.PremiumPct)
				if err != nil {
					return nil, err
				}
				maxAmt, err := utils.ParseMoney(rbf.EmployerMaxAmt)
				if err != nil {
					return nil, err
				}
				bg.RelationshipBenefits = append(bg.RelationshipBenefits, RelationshipBenefit{
					CoverageKind:   CoverageKind(rbf.CoverageKind),
					Relationship:   rbf.Relationship,
					Offered:        rbf.Offered,
					PremiumPct:     pct,
					EmployerMaxAmt: maxAmt,
				})
			}
			py.BenefitGroups = append(py.BenefitGroups, bg)
		}
		employer.PlanYears = append(employer.PlanYears, py)
	}
	return employer, nil
}

// seedEmployee assigns the employee to the titled benefit group in every plan year offering it.
func seedEmployee(ctx context.Context, a *app.App, employer *Employer, ef employeeFixture) error {
	hiredOn, err := utils.ParseISODate(ef.HiredOn)
	if err != nil {
		return err
	}

	census := CensusEmployee{
		EmployerID: employer.ID,
		FirstName:  ef.FirstName,
		LastName:   ef.LastName,
		HiredOn:    hiredOn,
	}
	for _, py := range employer.PlanYears {
		for _, bg := range py.BenefitGroups {
			if bg.Title != ef.BenefitGroup {
				continue
			}
			census.BenefitGroupAssignments = append(census.BenefitGroupAssignments, BenefitGroupAssignment{
				BenefitGroupID: bg.ID,
				StartOn:        utils.MaxDate(py.StartOn, hiredOn),
				IsActive:       py.IsActive(),
			})
		}
	}

	tx, ok := services.GetTransaction(ctx)
	if !ok {
		return errNoTransaction
	}
	if err := tx.Create(&census).Error; err != nil {
		return err
	}

	person := &Person{
		FirstName: ef.FirstName,
		LastName:  ef.LastName,
		EmployeeRoles: []EmployeeRole{{
			EmployerID:       employer.ID,
			CensusEmployeeID: census.ID,
			HiredOn:          hiredOn,
			IsActive:         true,
		}},
	}
	if ef.Consumer {
		person.ConsumerRole = &ConsumerRole{IsActive: true}
	}

	var enrollments []Enrollment
	for _, enf := range ef.Enrollments {
		effectiveOn, err := utils.ParseISODate(enf.EffectiveOn)
		if err != nil {
			return err
		}
		py := employer.PlanYearCovering(effectiveOn)
		if py == nil {
			return fmt.Errorf("no plan year covers %s", enf.EffectiveOn)
		}
		enrollment := Enrollment{
			MarketKind:     MarketShop,
			CoverageKind:   CoverageKind(enf.CoverageKind),
			State:          EnrollmentState(enf.State),
			EnrollmentKind: EnrollmentKindOpen,
			EffectiveOn:    effectiveOn,
		}
		for _, bg := range py.BenefitGroups {
			if bg.Title == ef.BenefitGroup {
				id := bg.ID
				enrollment.BenefitGroupID = &id
			}
		}
		enrollments = append(enrollments, enrollment)
	}

	return createPersonWithFamily(ctx, a, person, enrollments)
}

// createPersonWithFamily gives the person a family of one with an active household. Shop
// enrollments are attached to the person's first employee role.
func createPersonWithFamily(ctx context.Context, a *app.App, person *Person, enrollments []Enrollment) error {
	if err := a.PersonRepo.Create(ctx, person); err != nil {
		return err
	}

	if len(person.EmployeeRoles) > 0 {
		for i := range enrollments {
			roleID := person.EmployeeRoles[0].ID
			enrollments[i].EmployeeRoleID = &roleID
		}
	}

	family := &Family{
		PrimaryPersonID: person.ID,
		Members: []FamilyMember{
			{PersonID: person.ID, Relationship: "self", IsPrimaryApplicant: true, IsActive: true},
		},
		Households: []Household{{IsActive: true, Enrollments: enrollments}},
	}
	return a.FamilyRepo.Create(ctx, family)
}

func personExists(ctx context.Context, firstName, lastName string) (bool, error) {
	tx, ok := services.GetTransaction(ctx)
	if !ok {
		return false, errNoTransaction
	}
	var count int64
	err := tx.Model(&Person{}).
		Where("first_name = ? AND last_name = ?", firstName, lastName).
		Count(&count).Error
	return count > 0, err
}

func parseDates(values ...string) ([]time.Time, error) {
	dates := make([]time.Time, 0, len(values))
	for _, value := range values {
		date, err := utils.ParseISODate(value)
		if err != nil {
			return nil, err
		}
		dates = append(dates, date)
	}
	return dates, nil
}
