package models

import (
	"fmt"
	"strings"
	"time"

	"portal/internal/utils"

	"github.com/shopspring/decimal"
)

type PlanYearState string

const (
	PlanYearDraft             PlanYearState = "draft"
	PlanYearPublished         PlanYearState = "published"
	PlanYearEnrolling         PlanYearState = "enrolling"
	PlanYearEnrolled          PlanYearState = "enrolled"
	PlanYearActive            PlanYearState = "active"
	PlanYearRenewingDraft     PlanYearState = "renewing_draft"
	PlanYearRenewingPublished PlanYearState = "renewing_published"
	PlanYearRenewingEnrolling PlanYearState = "renewing_enrolling"
	PlanYearRenewingEnrolled  PlanYearState = "renewing_enrolled"
	PlanYearExpired           PlanYearState = "expired"
	PlanYearTerminated        PlanYearState = "terminated"
)

const (
	EffectiveOnDateOfHire   = "date_of_hire"
	EffectiveOnFirstOfMonth = "first_of_month"
)

type Employer struct {
	BaseUUIDModel
	LegalName string     `gorm:"type:varchar(255);not null"      json:"legalName"`
	FEIN      string     `gorm:"type:varchar(9);not null;unique" json:"fein"`
	PlanYears []PlanYear `gorm:"foreignKey:EmployerID"           json:"planYears,omitempty"`
}

func (e *Employer) ActivePlanYear() *PlanYear {
	for i := range e.PlanYears {
		if e.PlanYears[i].IsActive() {
			return &e.PlanYears[i]
		}
	}
	return nil
}

// InitialPlanYear is a first plan year that has been published but has not started yet.
func (e *Employer) InitialPlanYear() *PlanYear {
	for i := range e.PlanYears {
		if e.PlanYears[i].IsInitial() {
			return &e.PlanYears[i]
		}
	}
	return nil
}

func (e *Employer) RenewingPlanYear() *PlanYear {
	for i := range e.PlanYears {
		if e.PlanYears[i].IsRenewing() {
			return &e.PlanYears[i]
		}
	}
	return nil
}

// PlanYearCovering returns the non-draft plan year whose period contains day.
func (e *Employer) PlanYearCovering(day time.Time) *PlanYear {
	for i := range e.PlanYears {
		py := &e.PlanYears[i]
		if py.State == PlanYearDraft || py.State == PlanYearRenewingDraft {
			continue
		}
		if py.Contains(day) {
			return py
		}
	}
	return nil
}

// BenefitGroupByID returns the benefit group and the plan year that owns it.
func (e *Employer) BenefitGroupByID(id string) (*PlanYear, *BenefitGroup) {
	for i := range e.PlanYears {
		py := &e.PlanYears[i]
		for j := range py.BenefitGroups {
			if py.BenefitGroups[j].ID == id {
				return py, &py.BenefitGroups[j]
			}
		}
	}
	return nil, nil
}

// Validate checks that the employer has at most one active and one renewing plan year.
func (e *Employer) Validate() error {
	var active, renewing int
	for _, py := range e.PlanYears {
		if py.IsActive() {
			active++
		}
		if py.IsRenewing() {
			renewing++
		}
	}
	if active > 1 {
		return fmt.Errorf("employer %s has %d active plan years", e.ID, active)
	}
	if renewing > 1 {
		return fmt.Errorf("employer %s has %d renewing plan years", e.ID, renewing)
	}
	return nil
}

type PlanYear struct {
	BaseUUIDModel
	EmployerID            string         `gorm:"type:varchar(64);not null;index" json:"employerId"`
	StartOn               time.Time      `gorm:"type:date;not null"              json:"startOn"`
	EndOn                 time.Time      `gorm:"type:date;not null"              json:"endOn"`
	OpenEnrollmentStartOn time.Time      `gorm:"type:date;not null"              json:"openEnrollmentStartOn"`
	OpenEnrollmentEndOn   time.Time      `gorm:"type:date;not null"              json:"openEnrollmentEndOn"`
	State                 PlanYearState  `gorm:"type:varchar(32);not null"       json:"state"`
	BenefitGroups         []BenefitGroup `gorm:"foreignKey:PlanYearID"           json:"benefitGroups,omitempty"`
}

func (py *PlanYear) IsActive() bool {
	return py.State == PlanYearActive
}

func (py *PlanYear) IsInitial() bool {
	switch py.State {
	case PlanYearPublished, PlanYearEnrolling, PlanYearEnrolled:
		return true
	}
	return false
}

func (py *PlanYear) IsRenewing() bool {
	return strings.HasPrefix(string(py.State), "renewing_")
}

// IsPublishedRenewal excludes renewals still in draft.
func (py *PlanYear) IsPublishedRenewal() bool {
	return py.IsRenewing() && py.State != PlanYearRenewingDraft
}

func (py *PlanYear) IsExpired() bool {
	return py.State == PlanYearExpired
}

func (py *PlanYear) Contains(day time.Time) bool {
	return utils.Covers(py.StartOn, py.EndOn, day)
}

func (py *PlanYear) BenefitGroupIDs() []string {
	ids := make([]string, 0, len(py.BenefitGroups))
	for _, bg := range py.BenefitGroups {
		ids = append(ids, bg.ID)
	}
	return ids
}

type BenefitGroup struct {
	BaseUUIDModel
	PlanYearID           string                `gorm:"type:varchar(64);not null;index" json:"planYearId"`
	Title                string                `gorm:"type:varchar(255);not null"      json:"title"`
	EffectiveOnKind      string                `gorm:"type:varchar(32);not null"       json:"effectiveOnKind"`
	EffectiveOnOffset    int                   `gorm:"not null;default:0"              json:"effectiveOnOffset"`
	RelationshipBenefits []RelationshipBenefit `gorm:"foreignKey:BenefitGroupID"       json:"relationshipBenefits,omitempty"`
}

// EffectiveOnFor is the earliest coverage date for someone hired on hiredOn.
func (bg *BenefitGroup) EffectiveOnFor(hiredOn time.Time) time.Time {
	eligible := utils.DateOnly(hiredOn).AddDate(0, 0, bg.EffectiveOnOffset)
	if bg.EffectiveOnKind == EffectiveOnDateOfHire {
		return eligible
	}
	return utils.FirstOfMonthOnOrAfter(eligible)
}

// OfferedRelationships lists relationships offered for the coverage kind, in stored order.
func (bg *BenefitGroup) OfferedRelationships(kind CoverageKind) []string {
	var relationships []string
	for _, rb := range bg.RelationshipBenefits {
		if rb.CoverageKind == kind && rb.Offered {
			relationships = append(relationships, rb.Relationship)
		}
	}
	return relationships
}

type RelationshipBenefit struct {
	BaseUUIDModel
	BenefitGroupID string          `gorm:"type:varchar(64);not null;index" json:"benefitGroupId"`
	CoverageKind   CoverageKind    `gorm:"type:varchar(16);not null"       json:"coverageKind"`
	Relationship   string          `gorm:"type:varchar(32);not null"       json:"relationship"`
	Offered        bool            `gorm:"not null"                        json:"offered"`
	PremiumPct     decimal.Decimal `gorm:"type:decimal(7,4);not null"      json:"premiumPct"`
	EmployerMaxAmt decimal.Decimal `gorm:"type:decimal(12,2);not null"     json:"employerMaxAmt"`
}
