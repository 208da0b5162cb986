package selection

import (
	"fmt"
	"time"

	. "portal/internal/models"
)

type Trigger string

const (
	TriggerShopForPlans Trigger = "shop_for_plans"
	TriggerQLE          Trigger = "change_by_qle"
	TriggerSEP          Trigger = "sep"
	TriggerMakeChanges  Trigger = "make_changes"
)

func (t Trigger) Valid() bool {
	switch t {
	case "", TriggerShopForPlans, TriggerQLE, TriggerSEP, TriggerMakeChanges:
		return true
	}
	return false
}

func (t Trigger) IsQLE() bool {
	return t == TriggerQLE || t == TriggerSEP
}

// EffectiveTrigger treats changes to a shop special enrollment as qualifying-life-event
// shopping.
func EffectiveTrigger(requested Trigger, existing *Enrollment) Trigger {
	if requested == "" {
		requested = TriggerShopForPlans
	}
	if existing != nil && existing.IsShop() && existing.IsSpecialEnrollment() {
		return TriggerQLE
	}
	return requested
}

func assignmentIn(role *EmployeeRole, py *PlanYear) *BenefitGroupAssignment {
	if role == nil || role.CensusEmployee == nil || py == nil {
		return nil
	}
	return role.CensusEmployee.AssignmentAmong(py.BenefitGroupIDs())
}

func benefitGroupOf(employer *Employer, assignment *BenefitGroupAssignment) *BenefitGroup {
	if assignment == nil {
		return nil
	}
	_, bg := employer.BenefitGroupByID(assignment.BenefitGroupID)
	return bg
}

// ActiveBenefitGroup is the group the employee is assigned to in the active plan year. A
// first-year employer has none yet, so the active assignment in its initial plan year stands in.
func ActiveBenefitGroup(employer *Employer, role *EmployeeRole) *BenefitGroup {
	if py := employer.ActivePlanYear(); py != nil {
		return benefitGroupOf(employer, assignmentIn(role, py))
	}
	if assignment := assignmentIn(role, employer.InitialPlanYear()); assignment != nil && assignment.IsActive {
		return benefitGroupOf(employer, assignment)
	}
	return nil
}

// RenewalBenefitGroup is the group in a published renewal plan year.
func RenewalBenefitGroup(employer *Employer, role *EmployeeRole) *BenefitGroup {
	py := employer.RenewingPlanYear()
	if py == nil || !py.IsPublishedRenewal() {
		return nil
	}
	return benefitGroupOf(employer, assignmentIn(role, py))
}

// ShopBenefitGroup is the group an employee shops under by default: the active group, then the
// published renewal group.
func ShopBenefitGroup(employer *Employer, role *EmployeeRole) *BenefitGroup {
	if employer == nil || role == nil {
		return nil
	}
	if bg := ActiveBenefitGroup(employer, role); bg != nil {
		return bg
	}
	return RenewalBenefitGroup(employer, role)
}

// BenefitGroupOn is the group assigned in whichever plan year covers day.
func BenefitGroupOn(employer *Employer, role *EmployeeRole, day time.Time) *BenefitGroup {
	return benefitGroupOf(employer, assignmentIn(role, employer.PlanYearCovering(day)))
}

// BenefitGroupAssignmentByPlanYear finds the employee's assignment for the plan year owning
// benefitGroupID. Expired plan years are only reachable through a qualifying life event whose
// effective date falls inside them.
func BenefitGroupAssignmentByPlanYear(employer *Employer, role *EmployeeRole, benefitGroupID string, trigger Trigger, qleEffectiveOn *time.Time) (*BenefitGroupAssignment, error) {
	py, bg := employer.BenefitGroupByID(benefitGroupID)
	if bg == nil {
		return nil, fmt.Errorf("benefit group %s is not offered by employer %s: %w", benefitGroupID, employer.ID, ErrNoMatchingAssignment)
	}
	if role == nil || role.CensusEmployee == nil {
		return nil, fmt.Errorf("employee role has no census record: %w", ErrNoMatchingAssignment)
	}

	var assignment *BenefitGroupAssignment
	switch {
	case py.IsActive(), py.IsInitial(), py.IsRenewing():
		assignment = assignmentIn(role, py)
	case py.IsExpired():
		if trigger.IsQLE() && qleEffectiveOn != nil && py.Contains(*qleEffectiveOn) {
			assignment = role.CensusEmployee.AssignmentFor(bg.ID)
		}
	}

	if assignment == nil {
		return nil, fmt.Errorf("census employee %s, plan year %s (%s): %w", role.CensusEmployeeID, py.ID, py.State, ErrNoMatchingAssignment)
	}
	return assignment, nil
}

// SelectedEnrollment is the employee's existing coverage in the plan year covering
// effectiveOn: the renewal group's enrollment when that year is a renewal, otherwise the
// active group's.
func SelectedEnrollment(enrollments []Enrollment, employer *Employer, role *EmployeeRole, effectiveOn time.Time) *Enrollment {
	if employer == nil || role == nil {
		return nil
	}

	var target *BenefitGroup
	if py := employer.PlanYearCovering(effectiveOn); py != nil && py.IsRenewing() {
		target = RenewalBenefitGroup(employer, role)
	} else {
		target = ActiveBenefitGroup(employer, role)
	}
	if target == nil {
		return nil
	}

	for i := range enrollments {
		enrollment := &enrollments[i]
		if enrollment.State == StateShopping {
			continue
		}
		if enrollment.HasBenefitGroup(target.ID) {
			return enrollment
		}
	}
	return nil
}
