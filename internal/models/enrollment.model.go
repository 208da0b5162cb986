package models

import (
	"slices"
	"time"
)

type MarketKind string

const (
	MarketShop       MarketKind = "shop"
	MarketIndividual MarketKind = "individual"
	MarketCoverall   MarketKind = "coverall"
)

func (m MarketKind) Valid() bool {
	switch m {
	case MarketShop, MarketIndividual, MarketCoverall:
		return true
	}
	return false
}

type CoverageKind string

const (
	CoverageHealth CoverageKind = "health"
	CoverageDental CoverageKind = "dental"
)

const (
	EnrollmentKindOpen    = "open_enrollment"
	EnrollmentKindSpecial = "special_enrollment"
)

type EnrollmentState string

const (
	StateShopping                     EnrollmentState = "shopping"
	StateCoverageSelected             EnrollmentState = "coverage_selected"
	StateTransmittedToCarrier         EnrollmentState = "transmitted_to_carrier"
	StateCoverageEnrolled             EnrollmentState = "coverage_enrolled"
	StateCoverageTerminationPending   EnrollmentState = "coverage_termination_pending"
	StateAutoRenewing                 EnrollmentState = "auto_renewing"
	StateRenewingCoverageSelected     EnrollmentState = "renewing_coverage_selected"
	StateRenewingTransmittedToCarrier EnrollmentState = "renewing_transmitted_to_carrier"
	StateRenewingCoverageEnrolled     EnrollmentState = "renewing_coverage_enrolled"
	StateCoverageTerminated           EnrollmentState = "coverage_terminated"
	StateCoverageCanceled             EnrollmentState = "coverage_canceled"
	StateCoverageExpired              EnrollmentState = "coverage_expired"
	StateInactive                     EnrollmentState = "inactive"
	StateRenewingWaived               EnrollmentState = "renewing_waived"
)

var (
	EnrolledStates = []EnrollmentState{
		StateCoverageSelected,
		StateTransmittedToCarrier,
		StateCoverageEnrolled,
		StateCoverageTerminationPending,
	}
	RenewingStates = []EnrollmentState{
		StateAutoRenewing,
		StateRenewingCoverageSelected,
		StateRenewingTransmittedToCarrier,
		StateRenewingCoverageEnrolled,
	}
	WaivedStates     = []EnrollmentState{StateInactive, StateRenewingWaived}
	TerminatedStates = []EnrollmentState{StateCoverageTerminated, StateCoverageCanceled, StateCoverageExpired}

	terminableStates = []EnrollmentState{
		StateCoverageSelected,
		StateTransmittedToCarrier,
		StateCoverageEnrolled,
		StateAutoRenewing,
		StateRenewingCoverageSelected,
		StateRenewingTransmittedToCarrier,
		StateRenewingCoverageEnrolled,
	}
	// Nothing has been sent to the carrier yet, so the selection can still be waived.
	waivableStates = []EnrollmentState{
		StateShopping,
		StateCoverageSelected,
		StateAutoRenewing,
		StateRenewingCoverageSelected,
	}
)

func EnrolledAndRenewingStates() []EnrollmentState {
	return slices.Concat(EnrolledStates, RenewingStates)
}

type Enrollment struct {
	BaseUUIDModel
	HouseholdID              string             `gorm:"type:varchar(64);not null;index" json:"householdId"`
	MarketKind               MarketKind         `gorm:"type:varchar(16);not null"       json:"marketKind"`
	CoverageKind             CoverageKind       `gorm:"type:varchar(16);not null"       json:"coverageKind"`
	State                    EnrollmentState    `gorm:"type:varchar(40);not null;index" json:"state"`
	EnrollmentKind           string             `gorm:"type:varchar(32);not null"       json:"enrollmentKind"`
	EffectiveOn              time.Time          `gorm:"type:date;not null;index"        json:"effectiveOn"`
	TerminatedOn             *time.Time         `gorm:"type:date"                       json:"terminatedOn,omitempty"`
	SubmittedAt              *time.Time         `gorm:"index"                           json:"submittedAt,omitempty"`
	EmployeeRoleID           *string            `gorm:"type:varchar(64);index"          json:"employeeRoleId,omitempty"`
	BenefitGroupID           *string            `gorm:"type:varchar(64);index"          json:"benefitGroupId,omitempty"`
	BenefitGroupAssignmentID *string            `gorm:"type:varchar(64)"                json:"benefitGroupAssignmentId,omitempty"`
	ConsumerRoleID           *string            `gorm:"type:varchar(64)"                json:"consumerRoleId,omitempty"`
	ResidentRoleID           *string            `gorm:"type:varchar(64)"                json:"residentRoleId,omitempty"`
	Members                  []EnrollmentMember `gorm:"foreignKey:EnrollmentID"         json:"members,omitempty"`
}

func (e *Enrollment) IsShop() bool {
	return e.MarketKind == MarketShop
}

func (e *Enrollment) IsSpecialEnrollment() bool {
	return e.EnrollmentKind == EnrollmentKindSpecial
}

func (e *Enrollment) IsEnrolledOrRenewing() bool {
	return slices.Contains(EnrolledAndRenewingStates(), e.State)
}

func (e *Enrollment) IsRenewing() bool {
	return slices.Contains(RenewingStates, e.State)
}

func (e *Enrollment) IsPassiveRenewal() bool {
	return e.State == StateAutoRenewing
}

func (e *Enrollment) IsWaived() bool {
	return slices.Contains(WaivedStates, e.State)
}

// IsTerminal reports states that can never change again.
func (e *Enrollment) IsTerminal() bool {
	return e.IsWaived() || slices.Contains(TerminatedStates, e.State)
}

func (e *Enrollment) MayTerminateCoverage() bool {
	return slices.Contains(terminableStates, e.State)
}

func (e *Enrollment) CanCompleteShopping() bool {
	return slices.Contains(waivableStates, e.State)
}

func (e *Enrollment) HasBenefitGroup(id string) bool {
	return e.BenefitGroupID != nil && *e.BenefitGroupID == id
}

func (e *Enrollment) BelongsToEmployeeRole(id string) bool {
	return e.EmployeeRoleID != nil && *e.EmployeeRoleID == id
}

func (e *Enrollment) FamilyMemberIDs() []string {
	ids := make([]string, 0, len(e.Members))
	for _, member := range e.Members {
		ids = append(ids, member.FamilyMemberID)
	}
	return ids
}

type EnrollmentMember struct {
	BaseUUIDModel
	EnrollmentID    string    `gorm:"type:varchar(64);not null;index" json:"enrollmentId"`
	FamilyMemberID  string    `gorm:"type:varchar(64);not null"       json:"familyMemberId"`
	IsSubscriber    bool      `gorm:"not null"                        json:"isSubscriber"`
	CoverageStartOn time.Time `gorm:"type:date;not null"              json:"coverageStartOn"`
}
