package models

import (
	"encoding/json"
	"fmt"
	"time"

	"portal/internal/utils"

	"gorm.io/datatypes"
)

type Family struct {
	BaseUUIDModel
	PrimaryPersonID          string                    `gorm:"type:varchar(64);not null;uniqueIndex" json:"primaryPersonId"`
	Members                  []FamilyMember            `gorm:"foreignKey:FamilyID"                   json:"members,omitempty"`
	Households               []Household               `gorm:"foreignKey:FamilyID"                   json:"households,omitempty"`
	SpecialEnrollmentPeriods []SpecialEnrollmentPeriod `gorm:"foreignKey:FamilyID"                   json:"specialEnrollmentPeriods,omitempty"`
}

// ActiveHousehold fails unless exactly one household is active.
func (f *Family) ActiveHousehold() (*Household, error) {
	var active *Household
	for i := range f.Households {
		if !f.Households[i].IsActive {
			continue
		}
		if active != nil {
			return nil, fmt.Errorf("family %s has more than one active household", f.ID)
		}
		active = &f.Households[i]
	}
	if active == nil {
		return nil, fmt.Errorf("family %s has no active household", f.ID)
	}
	return active, nil
}

// CurrentSEP is the most recently opened special enrollment period covering today.
func (f *Family) CurrentSEP(today time.Time) *SpecialEnrollmentPeriod {
	var current *SpecialEnrollmentPeriod
	for i := range f.SpecialEnrollmentPeriods {
		sep := &f.SpecialEnrollmentPeriods[i]
		if !sep.IsActiveOn(today) {
			continue
		}
		if current == nil || sep.StartOn.After(current.StartOn) ||
			(sep.StartOn.Equal(current.StartOn) && sep.QLEOn.After(current.QLEOn)) {
			current = sep
		}
	}
	return current
}

type FamilyMember struct {
	BaseUUIDModel
	FamilyID           string `gorm:"type:varchar(64);not null;index" json:"familyId"`
	PersonID           string `gorm:"type:varchar(64);not null"       json:"personId"`
	Relationship       string `gorm:"type:varchar(32);not null"       json:"relationship"`
	IsPrimaryApplicant bool   `gorm:"not null"                        json:"isPrimaryApplicant"`
	IsActive           bool   `gorm:"not null"                        json:"isActive"`
}

type Household struct {
	BaseUUIDModel
	FamilyID    string       `gorm:"type:varchar(64);not null;index" json:"familyId"`
	IsActive    bool         `gorm:"not null"                        json:"isActive"`
	Enrollments []Enrollment `gorm:"foreignKey:HouseholdID"          json:"enrollments,omitempty"`
}

const (
	SEPDateOfEvent           = "date_of_event"
	SEPFirstOfMonth          = "first_of_month"
	SEPFirstOfNextMonth      = "first_of_next_month"
	SEPFixedFirstOfNextMonth = "fixed_first_of_next_month"
	SEPExactDate             = "exact_date"
)

type SpecialEnrollmentPeriod struct {
	BaseUUIDModel
	FamilyID                  string                   `gorm:"type:varchar(64);not null;index"      json:"familyId"`
	QualifyingLifeEventKindID string                   `gorm:"type:varchar(64);not null"            json:"qualifyingLifeEventKindId"`
	QualifyingLifeEventKind   *QualifyingLifeEventKind `gorm:"foreignKey:QualifyingLifeEventKindID" json:"qualifyingLifeEventKind,omitempty"`
	MarketKind                MarketKind               `gorm:"type:varchar(16);not null"            json:"marketKind"`
	QLEOn                     time.Time                `gorm:"column:qle_on;type:date;not null"     json:"qleOn"`
	StartOn                   time.Time                `gorm:"type:date;not null"                   json:"startOn"`
	EndOn                     time.Time                `gorm:"type:date;not null"                   json:"endOn"`
	EffectiveOnKind           string                   `gorm:"type:varchar(32);not null"            json:"effectiveOnKind"`
	// EffectiveOn, when set, was fixed by an administrator and wins over EffectiveOnKind.
	EffectiveOn *time.Time `gorm:"type:date" json:"effectiveOn,omitempty"`
}

func (s *SpecialEnrollmentPeriod) IsActiveOn(day time.Time) bool {
	return utils.Covers(s.StartOn, s.EndOn, day)
}

type QualifyingLifeEventKind struct {
	BaseUUIDModel
	Title              string         `gorm:"type:varchar(255);not null"       json:"title"`
	Reason             string         `gorm:"type:varchar(64);not null;unique" json:"reason"`
	MarketKind         MarketKind     `gorm:"type:varchar(16);not null"        json:"marketKind"`
	EffectiveOnKinds   datatypes.JSON `gorm:"type:text;not null"               json:"effectiveOnKinds"`
	PreEventSepInDays  int            `gorm:"not null;default:0"               json:"preEventSepInDays"`
	PostEventSepInDays int            `gorm:"not null"                         json:"postEventSepInDays"`
	IsActive           bool           `gorm:"not null"                         json:"isActive"`
}

func (q *QualifyingLifeEventKind) EffectiveOnKindList() ([]string, error) {
	if len(q.EffectiveOnKinds) == 0 {
		return nil, nil
	}
	var kinds []string
	if err := json.Unmarshal(q.EffectiveOnKinds, &kinds); err != nil {
		return nil, fmt.Errorf("invalid effective on kinds for qle %s: %w", q.Reason, err)
	}
	return kinds, nil
}

func (q *QualifyingLifeEventKind) SetEffectiveOnKinds(kinds []string) error {
	raw, err := json.Marshal(kinds)
	if err != nil {
		return err
	}
	q.EffectiveOnKinds = datatypes.JSON(raw)
	return nil
}
