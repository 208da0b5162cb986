package models

import (
	"time"
)

type Person struct {
	BaseUUIDModel
	FirstName     string         `gorm:"type:varchar(255);not null" json:"firstName"`
	LastName      string         `gorm:"type:varchar(255);not null" json:"lastName"`
	DateOfBirth   *time.Time     `gorm:"type:date"                  json:"dateOfBirth,omitempty"`
	EmployeeRoles []EmployeeRole `gorm:"foreignKey:PersonID"        json:"employeeRoles,omitempty"`
	ConsumerRole  *ConsumerRole  `gorm:"foreignKey:PersonID"        json:"consumerRole,omitempty"`
	ResidentRole  *ResidentRole  `gorm:"foreignKey:PersonID"        json:"residentRole,omitempty"`
}

func (p *Person) FullName() string {
	return p.FirstName + " " + p.LastName
}

func (p *Person) ActiveEmployeeRoles() []EmployeeRole {
	var roles []EmployeeRole
	for _, role := range p.EmployeeRoles {
		if role.IsActive {
			roles = append(roles, role)
		}
	}
	return roles
}

func (p *Person) EmployeeRoleByID(id string) *EmployeeRole {
	for i := range p.EmployeeRoles {
		if p.EmployeeRoles[i].ID == id {
			return &p.EmployeeRoles[i]
		}
	}
	return nil
}

func (p *Person) HasActiveEmployeeRole() bool {
	return len(p.ActiveEmployeeRoles()) > 0
}

func (p *Person) HasActiveConsumerRole() bool {
	return p.ConsumerRole != nil && p.ConsumerRole.IsActive
}

func (p *Person) HasActiveResidentRole() bool {
	return p.ResidentRole != nil && p.ResidentRole.IsActive
}

type EmployeeRole struct {
	BaseUUIDModel
	PersonID         string          `gorm:"type:varchar(64);not null;index" json:"personId"`
	EmployerID       string          `gorm:"type:varchar(64);not null;index" json:"employerId"`
	CensusEmployeeID string          `gorm:"type:varchar(64);not null"       json:"censusEmployeeId"`
	CensusEmployee   *CensusEmployee `gorm:"foreignKey:CensusEmployeeID"     json:"censusEmployee,omitempty"`
	HiredOn          time.Time       `gorm:"type:date;not null"              json:"hiredOn"`
	TerminatedOn     *time.Time      `gorm:"type:date"                       json:"terminatedOn,omitempty"`
	IsActive         bool            `gorm:"not null"                        json:"isActive"`
	IsCobra          bool            `gorm:"not null"                        json:"isCobra"`
}

func (r *EmployeeRole) HasBenefitGroupAssignment() bool {
	if r.CensusEmployee == nil {
		return false
	}
	for _, assignment := range r.CensusEmployee.BenefitGroupAssignments {
		if assignment.EndOn == nil {
			return true
		}
	}
	return false
}

type CensusEmployee struct {
	BaseUUIDModel
	EmployerID              string                   `gorm:"type:varchar(64);not null;index" json:"employerId"`
	FirstName               string                   `gorm:"type:varchar(255);not null"      json:"firstName"`
	LastName                string                   `gorm:"type:varchar(255);not null"      json:"lastName"`
	HiredOn                 time.Time                `gorm:"type:date;not null"              json:"hiredOn"`
	BenefitGroupAssignments []BenefitGroupAssignment `gorm:"foreignKey:CensusEmployeeID"     json:"benefitGroupAssignments,omitempty"`
}

// AssignmentFor returns the assignment to benefitGroupID, if any.
func (c *CensusEmployee) AssignmentFor(benefitGroupID string) *BenefitGroupAssignment {
	var found *BenefitGroupAssignment
	for i := range c.BenefitGroupAssignments {
		assignment := &c.BenefitGroupAssignments[i]
		if assignment.BenefitGroupID != benefitGroupID {
			continue
		}
		if found == nil || (assignment.IsActive && !found.IsActive) {
			found = assignment
		}
	}
	return found
}

// AssignmentAmong returns the assignment whose benefit group is one of ids, preferring the
// one flagged active.
func (c *CensusEmployee) AssignmentAmong(ids []string) *BenefitGroupAssignment {
	var found *BenefitGroupAssignment
	for _, id := range ids {
		assignment := c.AssignmentFor(id)
		if assignment == nil {
			continue
		}
		if found == nil || (assignment.IsActive && !found.IsActive) {
			found = assignment
		}
	}
	return found
}

type BenefitGroupAssignment struct {
	BaseUUIDModel
	CensusEmployeeID string     `gorm:"type:varchar(64);not null;uniqueIndex:idx_assignment_employee_group" json:"censusEmployeeId"`
	BenefitGroupID   string     `gorm:"type:varchar(64);not null;uniqueIndex:idx_assignment_employee_group" json:"benefitGroupId"`
	StartOn          time.Time  `gorm:"type:date;not null"                                                  json:"startOn"`
	EndOn            *time.Time `gorm:"type:date"                                                           json:"endOn,omitempty"`
	IsActive         bool       `gorm:"not null"                                                            json:"isActive"`
}

type ConsumerRole struct {
	BaseUUIDModel
	PersonID string `gorm:"type:varchar(64);not null;uniqueIndex" json:"personId"`
	IsActive bool   `gorm:"not null"                              json:"isActive"`
}

type ResidentRole struct {
	BaseUUIDModel
	PersonID string `gorm:"type:varchar(64);not null;uniqueIndex" json:"personId"`
	IsActive bool   `gorm:"not null"                              json:"isActive"`
}
