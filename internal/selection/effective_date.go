package selection

import (
	"fmt"
	"slices"
	"time"

	. "portal/internal/models"
	"portal/internal/utils"
)

// SEPEffectiveOn is the coverage date a special enrollment period grants. A date fixed by an
// administrator wins over the period's rule.
func SEPEffectiveOn(sep *SpecialEnrollmentPeriod, today time.Time, dueDay int) (time.Time, error) {
	if sep.EffectiveOn != nil {
		return utils.DateOnly(*sep.EffectiveOn), nil
	}
	return EffectiveOnForKind(sep.EffectiveOnKind, sep.MarketKind, sep.QLEOn, today, dueDay)
}

// EffectiveOnForKind applies one qualifying-life-event rule. Rules anchored on "now" use the
// later of the event and today, so a reported future event starts coverage after it happens.
func EffectiveOnForKind(kind string, market MarketKind, qleOn, today time.Time, dueDay int) (time.Time, error) {
	qleOn, today = utils.DateOnly(qleOn), utils.DateOnly(today)
	anchor := utils.MaxDate(qleOn, today)

	switch kind {
	case SEPDateOfEvent:
		return qleOn, nil
	case SEPFirstOfMonth:
		effective := utils.FirstOfNextMonth(anchor)
		if market != MarketShop && anchor.Equal(today) && today.Day() > dueDay {
			effective = utils.FirstOfNextMonth(effective)
		}
		return effective, nil
	case SEPFirstOfNextMonth:
		return utils.FirstOfNextMonth(anchor), nil
	case SEPFixedFirstOfNextMonth:
		return utils.FirstOfNextMonth(qleOn), nil
	case SEPExactDate:
		return time.Time{}, fmt.Errorf("exact date rule without a fixed date: %w", ErrInvalidEffectiveDate)
	}
	return time.Time{}, fmt.Errorf("unknown effective on kind %q: %w", kind, ErrInvalidEffectiveDate)
}

// EffectiveOnOptions lists the distinct dates a person may choose between when the event
// offers more than one rule. A single-rule event offers no choice.
func EffectiveOnOptions(sep *SpecialEnrollmentPeriod, today time.Time, dueDay int) ([]time.Time, error) {
	if sep == nil || sep.QualifyingLifeEventKind == nil || sep.EffectiveOn != nil {
		return nil, nil
	}
	kinds, err := sep.QualifyingLifeEventKind.EffectiveOnKindList()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvariantViolated, err)
	}
	if len(kinds) < 2 {
		return nil, nil
	}

	var options []time.Time
	for _, kind := range kinds {
		if kind == SEPExactDate {
			continue
		}
		date, err := EffectiveOnForKind(kind, sep.MarketKind, sep.QLEOn, today, dueDay)
		if err != nil {
			return nil, err
		}
		if !slices.ContainsFunc(options, date.Equal) {
			options = append(options, date)
		}
	}
	slices.SortFunc(options, time.Time.Compare)
	return options, nil
}

type EffectiveDateInput struct {
	MarketKind   MarketKind
	Trigger      Trigger
	Family       *Family
	EmployeeRole *EmployeeRole
	PlanYear     *PlanYear
	BenefitGroup *BenefitGroup
	Sponsorship  *BenefitSponsorship
	Today        time.Time
	DueDay       int
}

// ComputeEffectiveOn derives the coverage start date. A qualifying life event uses the family's
// current special enrollment period. Otherwise shop coverage follows the benefit group's
// waiting period and the individual and coverall markets follow the exchange calendar.
func ComputeEffectiveOn(in EffectiveDateInput) (time.Time, error) {
	today := utils.DateOnly(in.Today)

	if in.Trigger.IsQLE() && in.Family != nil {
		if sep := in.Family.CurrentSEP(today); sep != nil {
			return SEPEffectiveOn(sep, today, in.DueDay)
		}
	}

	switch in.MarketKind {
	case MarketShop:
		return shopEffectiveOn(in)
	case MarketIndividual, MarketCoverall:
		return IndividualEffectiveOn(in.Sponsorship, today, in.DueDay)
	}
	return time.Time{}, fmt.Errorf("market kind %q: %w", in.MarketKind, ErrNoEligibleRole)
}

func shopEffectiveOn(in EffectiveDateInput) (time.Time, error) {
	if in.BenefitGroup == nil || in.PlanYear == nil {
		return time.Time{}, fmt.Errorf("no benefit group to derive a shop effective date: %w", ErrNoMatchingAssignment)
	}
	if in.EmployeeRole == nil {
		return time.Time{}, fmt.Errorf("shop effective date needs an employee role: %w", ErrNoEligibleRole)
	}
	earliest := in.BenefitGroup.EffectiveOnFor(in.EmployeeRole.HiredOn)
	return utils.MaxDate(earliest, utils.DateOnly(in.PlanYear.StartOn)), nil
}

// IndividualEffectiveOn uses the renewal period while its open enrollment runs, otherwise the
// current period.
func IndividualEffectiveOn(sponsorship *BenefitSponsorship, today time.Time, dueDay int) (time.Time, error) {
	period := CoveragePeriodFor(sponsorship, today)
	if period == nil {
		return time.Time{}, fmt.Errorf("no benefit coverage period covers %s: %w", today.Format(time.DateOnly), ErrNotFound)
	}
	return period.EarliestEffectiveDate(today, dueDay), nil
}

func CoveragePeriodFor(sponsorship *BenefitSponsorship, today time.Time) *BenefitCoveragePeriod {
	if sponsorship == nil {
		return nil
	}
	if period := sponsorship.RenewalPeriod(today); period != nil {
		return period
	}
	return sponsorship.CurrentPeriod(today)
}

// IndividualBenefitPackage is the health package of the coverage period containing effectiveOn.
func IndividualBenefitPackage(sponsorship *BenefitSponsorship, effectiveOn time.Time) *BenefitPackage {
	if sponsorship == nil {
		return nil
	}
	period := sponsorship.PeriodContaining(effectiveOn)
	if period == nil {
		return nil
	}
	return period.PackageTitled(IndividualHealthPackageTitle(effectiveOn.Year()))
}

// ParseSelectedEffectiveOn reads the caller's chosen date.
func ParseSelectedEffectiveOn(value string) (time.Time, error) {
	date, err := utils.ParseUSDate(value)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %w", ErrInvalidEffectiveDate, err)
	}
	return date, nil
}
