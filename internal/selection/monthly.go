package selection

import (
	"slices"
	"time"

	. "portal/internal/models"
	"portal/internal/utils"
)

type coverageKey struct {
	employeeRoleID string
	coverageKind   CoverageKind
}

func keyOf(e *Enrollment) coverageKey {
	var role string
	if e.EmployeeRoleID != nil {
		role = *e.EmployeeRoleID
	}
	return coverageKey{employeeRoleID: role, coverageKind: e.CoverageKind}
}

// ShopMonthlyEnrollments returns ids of open-enrollment shop coverage starting on effectiveOn.
// A passive renewal is dropped when the same employee actively chose coverage of that kind.
func ShopMonthlyEnrollments(enrollments []Enrollment, effectiveOn time.Time) []string {
	var matched []*Enrollment
	active := map[coverageKey]bool{}
	for i := range enrollments {
		enrollment := &enrollments[i]
		if !enrollment.IsShop() || enrollment.IsSpecialEnrollment() || !enrollment.IsEnrolledOrRenewing() {
			continue
		}
		if !utils.SameDate(enrollment.EffectiveOn, effectiveOn) {
			continue
		}
		matched = append(matched, enrollment)
		if !enrollment.IsPassiveRenewal() {
			active[keyOf(enrollment)] = true
		}
	}

	ids := make([]string, 0, len(matched))
	for _, enrollment := range matched {
		if enrollment.IsPassiveRenewal() && active[keyOf(enrollment)] {
			continue
		}
		ids = append(ids, enrollment.ID)
	}
	slices.Sort(ids)
	return ids
}

// ShopMonthlyTerminations returns ids of the coverage ended by waivers taking effect on
// effectiveOn: for each waiver, the household's latest earlier shop enrollment of the same kind.
func ShopMonthlyTerminations(enrollments []Enrollment, effectiveOn time.Time) []string {
	ids := []string{}
	for i := range enrollments {
		waiver := &enrollments[i]
		if !waiver.IsShop() || !waiver.IsWaived() || !utils.SameDate(waiver.EffectiveOn, effectiveOn) {
			continue
		}
		if prior := priorCoverage(enrollments, waiver); prior != nil && !slices.Contains(ids, prior.ID) {
			ids = append(ids, prior.ID)
		}
	}
	slices.Sort(ids)
	return ids
}

func priorCoverage(enrollments []Enrollment, waiver *Enrollment) *Enrollment {
	var prior *Enrollment
	for i := range enrollments {
		candidate := &enrollments[i]
		if candidate.ID == waiver.ID || candidate.HouseholdID != waiver.HouseholdID {
			continue
		}
		if !candidate.IsShop() || candidate.CoverageKind != waiver.CoverageKind {
			continue
		}
		if candidate.IsWaived() || candidate.State == StateCoverageCanceled || candidate.State == StateShopping {
			continue
		}
		if !utils.DateOnly(candidate.EffectiveOn).Before(utils.DateOnly(waiver.EffectiveOn)) {
			continue
		}
		if prior == nil || candidate.EffectiveOn.After(prior.EffectiveOn) {
			prior = candidate
		}
	}
	return prior
}
