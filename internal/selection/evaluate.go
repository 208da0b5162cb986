package selection

import (
	"fmt"
	"time"

	. "portal/internal/models"
	"portal/internal/utils"
)

type Request struct {
	PersonID                  string       `json:"personId"                  validate:"required"`
	EnrollmentID              string       `json:"enrollmentId,omitempty"`
	EmployeeRoleID            string       `json:"employeeRoleId,omitempty"`
	ResidentRoleID            string       `json:"residentRoleId,omitempty"`
	MarketKind                MarketKind   `json:"marketKind,omitempty"      validate:"omitempty,oneof=shop individual coverall"`
	CoverageKind              CoverageKind `json:"coverageKind,omitempty"    validate:"omitempty,oneof=health dental"`
	Trigger                   Trigger      `json:"trigger,omitempty"         validate:"omitempty,oneof=shop_for_plans change_by_qle sep make_changes"`
	EffectiveOnOptionSelected string       `json:"effectiveOnOptionSelected,omitempty"`
}

// Snapshot is everything Evaluate reads. Callers load it once; Evaluate never reaches back
// into storage.
type Snapshot struct {
	Person      *Person
	Family      *Family
	Employers   map[string]*Employer
	Sponsorship *BenefitSponsorship
	Enrollment  *Enrollment
}

type Options struct {
	Today  time.Time
	DueDay int
	Policy MarketPolicy
}

type Result struct {
	PersonID                 string       `json:"personId"`
	MarketKind               MarketKind   `json:"marketKind"`
	CoverageKind             CoverageKind `json:"coverageKind"`
	RoleKind                 RoleKind     `json:"roleKind"`
	RoleID                   string       `json:"roleId"`
	Trigger                  Trigger      `json:"trigger"`
	EffectiveOn              time.Time    `json:"effectiveOn"`
	EffectiveOnOptions       []time.Time  `json:"effectiveOnOptions,omitempty"`
	PriorEnrollmentID        *string      `json:"priorEnrollmentId,omitempty"`
	SelectedEnrollmentID     *string      `json:"selectedEnrollmentId,omitempty"`
	BenefitGroupID           *string      `json:"benefitGroupId,omitempty"`
	BenefitGroupAssignmentID *string      `json:"benefitGroupAssignmentId,omitempty"`
	BenefitPackageID         *string      `json:"benefitPackageId,omitempty"`
	DisabledMarketKind       *MarketKind  `json:"disabledMarketKind,omitempty"`
	CobraMemberIDs           []string     `json:"cobraMemberIds,omitempty"`
	Waivable                 bool         `json:"waivable"`
	HealthRelationships      []string     `json:"healthRelationships,omitempty"`
	DentalRelationships      []string     `json:"dentalRelationships,omitempty"`
	Eligibility              Eligibility  `json:"eligibility"`
	Shopping                 ShoppingView `json:"shopping"`
}

// Evaluate runs role resolution, enrollment selection and effective date calculation for one
// shopping request.
func Evaluate(snap Snapshot, req Request, opts Options) (Result, error) {
	if snap.Person == nil {
		return Result{}, fmt.Errorf("person %s: %w", req.PersonID, ErrNotFound)
	}
	if snap.Family == nil {
		return Result{}, fmt.Errorf("family of person %s: %w", snap.Person.ID, ErrNotFound)
	}
	if req.EnrollmentID != "" && (snap.Enrollment == nil || snap.Enrollment.ID != req.EnrollmentID) {
		return Result{}, fmt.Errorf("enrollment %s: %w", req.EnrollmentID, ErrNotFound)
	}
	if !req.Trigger.Valid() {
		return Result{}, fmt.Errorf("unknown trigger %q: %w", req.Trigger, ErrInvariantViolated)
	}

	today := utils.DateOnly(opts.Today)
	household, err := snap.Family.ActiveHousehold()
	if err != nil {
		return Result{}, fmt.Errorf("%w: %w", ErrInvariantViolated, err)
	}

	resolution, err := ResolveRole(snap.Person, RoleRequest{
		MarketKind:     req.MarketKind,
		EmployeeRoleID: req.EmployeeRoleID,
		ResidentRoleID: req.ResidentRoleID,
	}, opts.Policy)
	if err != nil {
		return Result{}, err
	}

	trigger := EffectiveTrigger(req.Trigger, snap.Enrollment)
	employeeRole := resolution.Employee()

	var employer *Employer
	if employeeRole != nil {
		employer = snap.Employers[employeeRole.EmployerID]
		if employer == nil {
			return Result{}, fmt.Errorf("employer %s: %w", employeeRole.EmployerID, ErrNotFound)
		}
		if err := employer.Validate(); err != nil {
			return Result{}, fmt.Errorf("%w: %w", ErrInvariantViolated, err)
		}
	}

	var sep *SpecialEnrollmentPeriod
	var qleEffectiveOn *time.Time
	if trigger.IsQLE() {
		if sep = snap.Family.CurrentSEP(today); sep != nil {
			date, err := SEPEffectiveOn(sep, today, opts.DueDay)
			if err != nil {
				return Result{}, err
			}
			qleEffectiveOn = &date
		}
	}

	sel, err := SelectEnrollment(SelectionInput{
		Resolution:     resolution,
		CoverageKind:   req.CoverageKind,
		Trigger:        trigger,
		Household:      household,
		Employer:       employer,
		Existing:       snap.Enrollment,
		QLEEffectiveOn: qleEffectiveOn,
	})
	if err != nil {
		return Result{}, err
	}

	effectiveOn, err := ComputeEffectiveOn(EffectiveDateInput{
		MarketKind:   resolution.MarketKind,
		Trigger:      trigger,
		Family:       snap.Family,
		EmployeeRole: employeeRole,
		PlanYear:     sel.PlanYear,
		BenefitGroup: sel.BenefitGroup,
		Sponsorship:  snap.Sponsorship,
		Today:        today,
		DueDay:       opts.DueDay,
	})
	if err != nil {
		return Result{}, err
	}

	options, err := EffectiveOnOptions(sep, today, opts.DueDay)
	if err != nil {
		return Result{}, err
	}

	if req.EffectiveOnOptionSelected != "" {
		if effectiveOn, err = ParseSelectedEffectiveOn(req.EffectiveOnOptionSelected); err != nil {
			return Result{}, err
		}
	}

	result := Result{
		PersonID:           snap.Person.ID,
		MarketKind:         resolution.MarketKind,
		CoverageKind:       sel.Options.CoverageKind,
		RoleKind:           resolution.Role.Kind(),
		RoleID:             resolution.Role.RoleID(),
		Trigger:            trigger,
		EffectiveOn:        effectiveOn,
		EffectiveOnOptions: options,
		CobraMemberIDs:     sel.CobraMemberIDs,
		Waivable:           sel.Waivable,
		Eligibility:        EligibilityFor(snap.Person, snap.Employers),
		Shopping:           sel.Options.View(snap.Person.EmployeeRoles),
	}
	if sel.PriorEnrollment != nil {
		result.PriorEnrollmentID = &sel.PriorEnrollment.ID
	}
	if sel.SelectedEnrollment != nil {
		result.SelectedEnrollmentID = &sel.SelectedEnrollment.ID
	}
	if sel.BenefitGroup != nil {
		result.BenefitGroupID = &sel.BenefitGroup.ID
		result.HealthRelationships = sel.BenefitGroup.OfferedRelationships(CoverageHealth)
		result.DentalRelationships = sel.BenefitGroup.OfferedRelationships(CoverageDental)
	}
	if sel.BenefitGroupAssignment != nil {
		result.BenefitGroupAssignmentID = &sel.BenefitGroupAssignment.ID
	}
	if sel.DisabledMarketKind != "" {
		disabled := sel.DisabledMarketKind
		result.DisabledMarketKind = &disabled
	}

	if pkg := individualPackage(snap, resolution, trigger, today, opts.DueDay); pkg != nil {
		result.BenefitPackageID = &pkg.ID
	}

	return result, nil
}

// individualPackage resolves the individual health package for anyone who may shop that
// market, even when the resolved market is shop. A gap in the exchange calendar leaves it unset.
func individualPackage(snap Snapshot, resolution Resolution, trigger Trigger, today time.Time, dueDay int) *BenefitPackage {
	eligibility := EligibilityFor(snap.Person, snap.Employers)
	if resolution.MarketKind == MarketShop && !eligibility.CanShopBothMarkets && !snap.Person.HasActiveResidentRole() {
		return nil
	}
	if snap.Sponsorship == nil {
		return nil
	}

	effectiveOn, err := ComputeEffectiveOn(EffectiveDateInput{
		MarketKind:  MarketIndividual,
		Trigger:     trigger,
		Family:      snap.Family,
		Sponsorship: snap.Sponsorship,
		Today:       today,
		DueDay:      dueDay,
	})
	if err != nil {
		return nil
	}
	return IndividualBenefitPackage(snap.Sponsorship, effectiveOn)
}
