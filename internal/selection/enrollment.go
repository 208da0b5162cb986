package selection

import (
	"cmp"
	"slices"
	"time"

	. "portal/internal/models"
)

type SelectionInput struct {
	Resolution   Resolution
	CoverageKind CoverageKind
	Trigger      Trigger
	Household    *Household
	Employer     *Employer
	// Existing is the enrollment the caller asked to change, if any.
	Existing *Enrollment
	// QLEEffectiveOn is the effective date derived from the current special enrollment period.
	QLEEffectiveOn *time.Time
}

type Selection struct {
	PriorEnrollment        *Enrollment
	SelectedEnrollment     *Enrollment
	PlanYear               *PlanYear
	BenefitGroup           *BenefitGroup
	BenefitGroupAssignment *BenefitGroupAssignment
	DisabledMarketKind     MarketKind
	CobraMemberIDs         []string
	Waivable               bool
	Options                ShoppingOptions
}

// ShopEnrollmentsNewestFirst returns shop enrollments in enrolled or renewing states ordered by
// effective date, latest first. Ties keep household order.
func ShopEnrollmentsNewestFirst(enrollments []Enrollment) []*Enrollment {
	var shop []*Enrollment
	for i := range enrollments {
		if enrollments[i].IsShop() && enrollments[i].IsEnrolledOrRenewing() {
			shop = append(shop, &enrollments[i])
		}
	}
	slices.SortStableFunc(shop, func(a, b *Enrollment) int {
		return b.EffectiveOn.Compare(a.EffectiveOn)
	})
	return shop
}

// PriorShopEnrollment is the latest shop coverage that can still be terminated.
func PriorShopEnrollment(enrollments []Enrollment) *Enrollment {
	for _, enrollment := range ShopEnrollmentsNewestFirst(enrollments) {
		if enrollment.MayTerminateCoverage() {
			return enrollment
		}
	}
	return nil
}

// SelectEnrollment finds the prior enrollment and the benefit group that prices a new
// selection. A missing prior enrollment or benefit group is not an error, but a benefit group
// without a usable assignment is.
func SelectEnrollment(in SelectionInput) (Selection, error) {
	var sel Selection
	market := in.Resolution.MarketKind
	var enrollments []Enrollment
	if in.Household != nil {
		enrollments = in.Household.Enrollments
	}

	sel.PriorEnrollment = in.Existing
	if market == MarketShop && in.Trigger.IsQLE() && in.Existing == nil {
		sel.PriorEnrollment = PriorShopEnrollment(enrollments)
	}

	sel.DisabledMarketKind = disabledMarketKind(in.Trigger, market)

	if sel.PriorEnrollment != nil {
		sel.Waivable = sel.PriorEnrollment.CanCompleteShopping()
	}

	role := in.Resolution.Employee()
	if market == MarketShop && role != nil && in.Employer != nil {
		bg := governingBenefitGroup(in.Employer, role, in.Trigger, in.QLEEffectiveOn, sel.PriorEnrollment)
		if bg != nil {
			assignment, err := BenefitGroupAssignmentByPlanYear(in.Employer, role, bg.ID, in.Trigger, in.QLEEffectiveOn)
			if err != nil {
				return Selection{}, err
			}
			sel.PlanYear, sel.BenefitGroup = in.Employer.BenefitGroupByID(bg.ID)
			sel.BenefitGroupAssignment = assignment
		}

		if in.QLEEffectiveOn != nil {
			sel.SelectedEnrollment = SelectedEnrollment(enrollments, in.Employer, role, *in.QLEEffectiveOn)
		}

		if role.IsCobra && !in.Trigger.IsQLE() {
			sel.CobraMemberIDs = cobraMembers(enrollments, role, in.Existing)
		}
	}

	sel.Options = shoppingOptions(in, role)
	return sel, nil
}

// governingBenefitGroup picks the group whose plan year covers a qualifying event's effective
// date, then the group of the enrollment being changed, then the active group, then the
// published renewal group.
func governingBenefitGroup(employer *Employer, role *EmployeeRole, trigger Trigger, qleEffectiveOn *time.Time, prior *Enrollment) *BenefitGroup {
	if trigger.IsQLE() && qleEffectiveOn != nil {
		if bg := BenefitGroupOn(employer, role, *qleEffectiveOn); bg != nil {
			return bg
		}
	}
	if prior != nil && prior.BelongsToEmployeeRole(role.ID) && prior.BenefitGroupID != nil {
		if _, bg := employer.BenefitGroupByID(*prior.BenefitGroupID); bg != nil {
			return bg
		}
	}
	return ShopBenefitGroup(employer, role)
}

// disabledMarketKind keeps a qualifying-life-event flow in the market it started in.
func disabledMarketKind(trigger Trigger, market MarketKind) MarketKind {
	if !trigger.IsQLE() {
		return ""
	}
	if market == MarketShop {
		return MarketIndividual
	}
	return MarketShop
}

func cobraMembers(enrollments []Enrollment, role *EmployeeRole, existing *Enrollment) []string {
	source := existing
	if source == nil {
		for _, enrollment := range ShopEnrollmentsNewestFirst(enrollments) {
			if enrollment.BelongsToEmployeeRole(role.ID) && enrollment.MayTerminateCoverage() {
				source = enrollment
				break
			}
		}
	}
	if source == nil {
		return nil
	}
	ids := source.FamilyMemberIDs()
	slices.Sort(ids)
	return ids
}

// ShoppingOptions fixes what the plan shopping screen may change. During make-changes the
// market, coverage kind and employer of the enrollment being changed are locked.
type ShoppingOptions struct {
	MarketKind            MarketKind   `json:"marketKind"`
	CoverageKind          CoverageKind `json:"coverageKind"`
	ChangeMarketKind      MarketKind   `json:"changeMarketKind,omitempty"`
	ChangeCoverageKind    CoverageKind `json:"changeCoverageKind,omitempty"`
	ChangeEmployeeRoleID  string       `json:"changeEmployeeRoleId,omitempty"`
	DisabledMarketKind    MarketKind   `json:"disabledMarketKind,omitempty"`
	DefaultEmployeeRoleID string       `json:"defaultEmployeeRoleId,omitempty"`
}

func shoppingOptions(in SelectionInput, role *EmployeeRole) ShoppingOptions {
	opts := ShoppingOptions{
		MarketKind:   in.Resolution.MarketKind,
		CoverageKind: CoverageHealth,
	}
	if in.CoverageKind != "" {
		opts.CoverageKind = in.CoverageKind
	}
	if role != nil {
		opts.DefaultEmployeeRoleID = role.ID
	}
	opts.DisabledMarketKind = disabledMarketKind(in.Trigger, in.Resolution.MarketKind)
	if in.Trigger == TriggerMakeChanges && in.Existing != nil {
		opts.ChangeMarketKind = in.Existing.MarketKind
		opts.ChangeCoverageKind = in.Existing.CoverageKind
		opts.CoverageKind = in.Existing.CoverageKind
		if in.Existing.EmployeeRoleID != nil {
			opts.ChangeEmployeeRoleID = *in.Existing.EmployeeRoleID
		}
	}
	return opts
}

func (o ShoppingOptions) IsMarketKindDisabled(kind MarketKind) bool {
	if o.ChangeMarketKind != "" {
		return kind != o.ChangeMarketKind
	}
	return kind == o.DisabledMarketKind
}

func (o ShoppingOptions) IsMarketKindChecked(kind MarketKind) bool {
	if o.ChangeMarketKind != "" {
		return kind == o.ChangeMarketKind
	}
	return kind == o.MarketKind
}

func (o ShoppingOptions) IsCoverageKindDisabled(kind CoverageKind) bool {
	return o.ChangeCoverageKind != "" && kind != o.ChangeCoverageKind
}

func (o ShoppingOptions) IsCoverageKindChecked(kind CoverageKind) bool {
	return kind == o.CoverageKind
}

// IsEmployerDisabled locks every employer when an individual enrollment is being changed, and
// every other employer when a shop enrollment is.
func (o ShoppingOptions) IsEmployerDisabled(employeeRoleID string) bool {
	switch o.ChangeMarketKind {
	case "":
		return false
	case MarketShop:
		return employeeRoleID != o.ChangeEmployeeRoleID
	default:
		return true
	}
}

func (o ShoppingOptions) IsEmployerChecked(employeeRoleID string) bool {
	switch o.ChangeMarketKind {
	case "":
		return employeeRoleID == o.DefaultEmployeeRoleID
	case MarketShop:
		return employeeRoleID == o.ChangeEmployeeRoleID
	default:
		return false
	}
}

// ShoppingView flattens ShoppingOptions against the kinds and employers a person can pick.
type ShoppingView struct {
	DisabledMarketKinds     []MarketKind   `json:"disabledMarketKinds"`
	CheckedMarketKind       MarketKind     `json:"checkedMarketKind"`
	DisabledCoverageKinds   []CoverageKind `json:"disabledCoverageKinds"`
	CheckedCoverageKind     CoverageKind   `json:"checkedCoverageKind"`
	DisabledEmployeeRoleIDs []string       `json:"disabledEmployeeRoleIds"`
	CheckedEmployeeRoleID   string         `json:"checkedEmployeeRoleId,omitempty"`
}

func (o ShoppingOptions) View(employeeRoles []EmployeeRole) ShoppingView {
	view := ShoppingView{
		DisabledMarketKinds:     []MarketKind{},
		DisabledCoverageKinds:   []CoverageKind{},
		DisabledEmployeeRoleIDs: []string{},
	}
	for _, kind := range []MarketKind{MarketShop, MarketIndividual, MarketCoverall} {
		if o.IsMarketKindDisabled(kind) {
			view.DisabledMarketKinds = append(view.DisabledMarketKinds, kind)
		}
		if o.IsMarketKindChecked(kind) {
			view.CheckedMarketKind = kind
		}
	}
	for _, kind := range []CoverageKind{CoverageHealth, CoverageDental} {
		if o.IsCoverageKindDisabled(kind) {
			view.DisabledCoverageKinds = append(view.DisabledCoverageKinds, kind)
		}
		if o.IsCoverageKindChecked(kind) {
			view.CheckedCoverageKind = kind
		}
	}
	roles := slices.Clone(employeeRoles)
	slices.SortFunc(roles, func(a, b EmployeeRole) int { return cmp.Compare(a.ID, b.ID) })
	for _, role := range roles {
		if o.IsEmployerDisabled(role.ID) {
			view.DisabledEmployeeRoleIDs = append(view.DisabledEmployeeRoleIDs, role.ID)
		}
		if o.IsEmployerChecked(role.ID) {
			view.CheckedEmployeeRoleID = role.ID
		}
	}
	return view
}
