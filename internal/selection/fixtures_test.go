package selection

import (
	"fmt"
	"time"

	. "portal/internal/models"
	"portal/internal/utils"

	"github.com/shopspring/decimal"
)

const (
	employerID  = "employer-1"
	censusID    = "census-1"
	roleID      = "employee-role-1"
	otherRoleID = "employee-role-2"
	personID    = "person-1"
	familyID    = "family-1"
	householdID = "household-1"
	bgExpired   = "bg-2023"
	bgActive    = "bg-2024"
	bgRenewal   = "bg-2025"
)

var today = utils.Date(2024, time.March, 10)

func date(y int, m time.Month, d int) time.Time { return utils.Date(y, m, d) }

func ptr[T any](v T) *T { return &v }

func relationshipBenefits(bgID string) []RelationshipBenefit {
	rb := func(kind CoverageKind, relationship string, offered bool) RelationshipBenefit {
		return RelationshipBenefit{
			BaseUUIDModel:  BaseUUIDModel{ID: bgID + "-" + string(kind) + "-" + relationship},
			BenefitGroupID: bgID,
			CoverageKind:   kind,
			Relationship:   relationship,
			Offered:        offered,
			PremiumPct:     decimal.NewFromInt(75),
			EmployerMaxAmt: decimal.NewFromInt(500),
		}
	}
	return []RelationshipBenefit{
		rb(CoverageHealth, "employee", true),
		rb(CoverageHealth, "spouse", true),
		rb(CoverageHealth, "child_under_26", false),
		rb(CoverageDental, "employee", true),
	}
}

func planYear(id, bgID string, year int, state PlanYearState) PlanYear {
	return PlanYear{
		BaseUUIDModel:         BaseUUIDModel{ID: id},
		EmployerID:            employerID,
		StartOn:               date(year, time.January, 1),
		EndOn:                 date(year, time.December, 31),
		OpenEnrollmentStartOn: date(year-1, time.November, 1),
		OpenEnrollmentEndOn:   date(year-1, time.December, 10),
		State:                 state,
		BenefitGroups: []BenefitGroup{{
			BaseUUIDModel:        BaseUUIDModel{ID: bgID},
			PlanYearID:           id,
			Title:                "Everyone " + id,
			EffectiveOnKind:      EffectiveOnFirstOfMonth,
			RelationshipBenefits: relationshipBenefits(bgID),
		}},
	}
}

// newEmployer has an expired 2023, an active 2024 and a published 2025 renewal plan year.
func newEmployer() *Employer {
	return &Employer{
		BaseUUIDModel: BaseUUIDModel{ID: employerID},
		LegalName:     "Acme Widgets",
		FEIN:          "123456789",
		PlanYears: []PlanYear{
			planYear("py-2023", bgExpired, 2023, PlanYearExpired),
			planYear("py-2024", bgActive, 2024, PlanYearActive),
			planYear("py-2025", bgRenewal, 2025, PlanYearRenewingPublished),
		},
	}
}

func assignment(bgID string, start time.Time, end *time.Time, active bool) BenefitGroupAssignment {
	return BenefitGroupAssignment{
		BaseUUIDModel:    BaseUUIDModel{ID: "bga-" + bgID},
		CensusEmployeeID: censusID,
		BenefitGroupID:   bgID,
		StartOn:          start,
		EndOn:            end,
		IsActive:         active,
	}
}

func newEmployeeRole() EmployeeRole {
	return EmployeeRole{
		BaseUUIDModel:    BaseUUIDModel{ID: roleID},
		PersonID:         personID,
		EmployerID:       employerID,
		CensusEmployeeID: censusID,
		HiredOn:          date(2020, time.May, 15),
		IsActive:         true,
		CensusEmployee: &CensusEmployee{
			BaseUUIDModel: BaseUUIDModel{ID: censusID},
			EmployerID:    employerID,
			FirstName:     "Jane",
			LastName:      "Doe",
			HiredOn:       date(2020, time.May, 15),
			BenefitGroupAssignments: []BenefitGroupAssignment{
				assignment(bgExpired, date(2023, time.January, 1), ptr(date(2023, time.December, 31)), false),
				assignment(bgActive, date(2024, time.January, 1), nil, true),
				assignment(bgRenewal, date(2025, time.January, 1), nil, false),
			},
		},
	}
}

func newPerson(employee, consumer, resident bool) *Person {
	person := &Person{
		BaseUUIDModel: BaseUUIDModel{ID: personID},
		FirstName:     "Jane",
		LastName:      "Doe",
	}
	if employee {
		person.EmployeeRoles = []EmployeeRole{newEmployeeRole()}
	}
	if consumer {
		person.ConsumerRole = &ConsumerRole{BaseUUIDModel: BaseUUIDModel{ID: "consumer-role-1"}, PersonID: personID, IsActive: true}
	}
	if resident {
		person.ResidentRole = &ResidentRole{BaseUUIDModel: BaseUUIDModel{ID: "resident-role-1"}, PersonID: personID, IsActive: true}
	}
	return person
}

func shopEnrollment(id string, state EnrollmentState, effectiveOn time.Time, bgID string) Enrollment {
	return Enrollment{
		BaseUUIDModel:  BaseUUIDModel{ID: id},
		HouseholdID:    householdID,
		MarketKind:     MarketShop,
		CoverageKind:   CoverageHealth,
		State:          state,
		EnrollmentKind: EnrollmentKindOpen,
		EffectiveOn:    effectiveOn,
		EmployeeRoleID: ptr(roleID),
		BenefitGroupID: ptr(bgID),
		Members: []EnrollmentMember{
			{BaseUUIDModel: BaseUUIDModel{ID: id + "-m2"}, EnrollmentID: id, FamilyMemberID: "fm-spouse", CoverageStartOn: effectiveOn},
			{BaseUUIDModel: BaseUUIDModel{ID: id + "-m1"}, EnrollmentID: id, FamilyMemberID: "fm-primary", IsSubscriber: true, CoverageStartOn: effectiveOn},
		},
	}
}

func newFamily(enrollments ...Enrollment) *Family {
	return &Family{
		BaseUUIDModel:   BaseUUIDModel{ID: familyID},
		PrimaryPersonID: personID,
		Members: []FamilyMember{
			{BaseUUIDModel: BaseUUIDModel{ID: "fm-primary"}, FamilyID: familyID, PersonID: personID, Relationship: "self", IsPrimaryApplicant: true, IsActive: true},
			{BaseUUIDModel: BaseUUIDModel{ID: "fm-spouse"}, FamilyID: familyID, PersonID: "person-2", Relationship: "spouse", IsActive: true},
		},
		Households: []Household{{
			BaseUUIDModel: BaseUUIDModel{ID: householdID},
			FamilyID:      familyID,
			IsActive:      true,
			Enrollments:   enrollments,
		}},
	}
}

func qleKind(kinds ...string) *QualifyingLifeEventKind {
	q := &QualifyingLifeEventKind{
		BaseUUIDModel:      BaseUUIDModel{ID: "qle-marriage"},
		Title:              "Married",
		Reason:             "marriage",
		MarketKind:         MarketShop,
		PostEventSepInDays: 60,
		IsActive:           true,
	}
	if err := q.SetEffectiveOnKinds(kinds); err != nil {
		panic(err)
	}
	return q
}

func newSEP(market MarketKind, qleOn time.Time, kind string, kinds ...string) SpecialEnrollmentPeriod {
	if len(kinds) == 0 {
		kinds = []string{kind}
	}
	q := qleKind(kinds...)
	return SpecialEnrollmentPeriod{
		BaseUUIDModel:             BaseUUIDModel{ID: "sep-1"},
		FamilyID:                  familyID,
		QualifyingLifeEventKindID: q.ID,
		QualifyingLifeEventKind:   q,
		MarketKind:                market,
		QLEOn:                     qleOn,
		StartOn:                   qleOn,
		EndOn:                     qleOn.AddDate(0, 0, 60),
		EffectiveOnKind:           kind,
	}
}

func coveragePeriod(year int) BenefitCoveragePeriod {
	id := fmt.Sprintf("bcp-%d", year)
	pkgID := fmt.Sprintf("pkg-individual-%d", year)
	return BenefitCoveragePeriod{
		BaseUUIDModel:         BaseUUIDModel{ID: id},
		BenefitSponsorshipID:  "sponsorship-1",
		Title:                 "Individual " + id,
		StartOn:               date(year, time.January, 1),
		EndOn:                 date(year, time.December, 31),
		OpenEnrollmentStartOn: date(year-1, time.November, 1),
		OpenEnrollmentEndOn:   date(year, time.January, 31),
		BenefitPackages: []BenefitPackage{{
			BaseUUIDModel:           BaseUUIDModel{ID: pkgID},
			BenefitCoveragePeriodID: id,
			Title:                   IndividualHealthPackageTitle(year),
			MarketKind:              MarketIndividual,
			CoverageKind:            CoverageHealth,
		}},
	}
}

func newSponsorship() *BenefitSponsorship {
	return &BenefitSponsorship{
		BaseUUIDModel:   BaseUUIDModel{ID: "sponsorship-1"},
		Name:            "DC Health Link",
		CoveragePeriods: []BenefitCoveragePeriod{coveragePeriod(2024), coveragePeriod(2025)},
	}
}

func snapshot(person *Person, family *Family) Snapshot {
	return Snapshot{
		Person:      person,
		Family:      family,
		Employers:   map[string]*Employer{employerID: newEmployer()},
		Sponsorship: newSponsorship(),
	}
}

func evalOptions() Options {
	return Options{Today: today, DueDay: 15, Policy: PreferEmployer}
}
