package models

import (
	"fmt"
	"time"

	"portal/internal/utils"
)

// BenefitSponsorship is the exchange's individual-market calendar.
type BenefitSponsorship struct {
	BaseUUIDModel
	Name            string                  `gorm:"type:varchar(255);not null"      json:"name"`
	CoveragePeriods []BenefitCoveragePeriod `gorm:"foreignKey:BenefitSponsorshipID" json:"coveragePeriods,omitempty"`
}

func (b *BenefitSponsorship) PeriodContaining(day time.Time) *BenefitCoveragePeriod {
	for i := range b.CoveragePeriods {
		if b.CoveragePeriods[i].Contains(day) {
			return &b.CoveragePeriods[i]
		}
	}
	return nil
}

func (b *BenefitSponsorship) CurrentPeriod(today time.Time) *BenefitCoveragePeriod {
	return b.PeriodContaining(today)
}

// RenewalPeriod is the upcoming period whose open enrollment is running today.
func (b *BenefitSponsorship) RenewalPeriod(today time.Time) *BenefitCoveragePeriod {
	for i := range b.CoveragePeriods {
		period := &b.CoveragePeriods[i]
		if period.StartOn.After(utils.DateOnly(today)) && period.IsOpenEnrollment(today) {
			return period
		}
	}
	return nil
}

type BenefitCoveragePeriod struct {
	BaseUUIDModel
	BenefitSponsorshipID  string           `gorm:"type:varchar(64);not null;index"    json:"benefitSponsorshipId"`
	Title                 string           `gorm:"type:varchar(255);not null"         json:"title"`
	StartOn               time.Time        `gorm:"type:date;not null"                 json:"startOn"`
	EndOn                 time.Time        `gorm:"type:date;not null"                 json:"endOn"`
	OpenEnrollmentStartOn time.Time        `gorm:"type:date;not null"                 json:"openEnrollmentStartOn"`
	OpenEnrollmentEndOn   time.Time        `gorm:"type:date;not null"                 json:"openEnrollmentEndOn"`
	BenefitPackages       []BenefitPackage `gorm:"foreignKey:BenefitCoveragePeriodID" json:"benefitPackages,omitempty"`
}

func (p *BenefitCoveragePeriod) Contains(day time.Time) bool {
	return utils.Covers(p.StartOn, p.EndOn, day)
}

func (p *BenefitCoveragePeriod) IsOpenEnrollment(day time.Time) bool {
	return utils.Covers(p.OpenEnrollmentStartOn, p.OpenEnrollmentEndOn, day)
}

// EarliestEffectiveDate applies the monthly enrollment due day and clamps to the period.
func (p *BenefitCoveragePeriod) EarliestEffectiveDate(today time.Time, dueDay int) time.Time {
	effective := utils.FirstOfNextMonth(today)
	if today.Day() > dueDay {
		effective = utils.FirstOfNextMonth(effective)
	}
	return utils.MinDate(utils.MaxDate(effective, utils.DateOnly(p.StartOn)), utils.DateOnly(p.EndOn))
}

func (p *BenefitCoveragePeriod) PackageTitled(title string) *BenefitPackage {
	for i := range p.BenefitPackages {
		if p.BenefitPackages[i].Title == title {
			return &p.BenefitPackages[i]
		}
	}
	return nil
}

func IndividualHealthPackageTitle(year int) string {
	return fmt.Sprintf("individual_health_benefits_%d", year)
}

type BenefitPackage struct {
	BaseUUIDModel
	BenefitCoveragePeriodID string       `gorm:"type:varchar(64);not null;index" json:"benefitCoveragePeriodId"`
	Title                   string       `gorm:"type:varchar(255);not null"      json:"title"`
	MarketKind              MarketKind   `gorm:"type:varchar(16);not null"       json:"marketKind"`
	CoverageKind            CoverageKind `gorm:"type:varchar(16);not null"       json:"coverageKind"`
}
