// Package selection decides which market, prior enrollment, benefit group and coverage
// effective date apply when a person starts shopping for coverage.
//
// Everything here is a pure function over records loaded by the caller. Nothing is written
// and nothing is cached, so identical inputs always produce identical decisions.
package selection

import (
	"fmt"

	. "portal/internal/models"
)

type RoleKind string

const (
	RoleEmployee RoleKind = "employee"
	RoleConsumer RoleKind = "consumer"
	RoleResident RoleKind = "resident"
)

// Role is one of Employee, Consumer or Resident.
type Role interface {
	Kind() RoleKind
	RoleID() string
	MarketKind() MarketKind
	isRole()
}

type Employee struct{ *EmployeeRole }

type Consumer struct{ *ConsumerRole }

type Resident struct{ *ResidentRole }

func (Employee) Kind() RoleKind { return RoleEmployee }
func (e Employee) RoleID() string { return e.ID }
func (Employee) MarketKind() MarketKind { return MarketShop }
func (Employee) isRole() {}
func (Consumer) Kind() RoleKind { return RoleConsumer }
func (c Consumer) RoleID() string { return c.ID }
func (Consumer) MarketKind() MarketKind { return MarketIndividual }
func (Consumer) isRole() {}
func (Resident) Kind() RoleKind { return RoleResident }
func (r Resident) RoleID() string { return r.ID }
func (Resident) MarketKind() MarketKind { return MarketCoverall }
func (Resident) isRole() {}

// MarketPolicy picks a market when the caller did not name one.
type MarketPolicy func(person *Person) (MarketKind, error)

// PreferEmployer walks employee, consumer, resident in that order.
func PreferEmployer(person *Person) (MarketKind, error) {
	switch {
	case person.HasActiveEmployeeRole():
		return MarketShop, nil
	case person.HasActiveConsumerRole():
		return MarketIndividual, nil
	case person.HasActiveResidentRole():
		return MarketCoverall, nil
	}
	return "", fmt.Errorf("person %s: %w", person.ID, ErrNoEligibleRole)
}

// RequireExplicitWhenAmbiguous refuses to guess for someone holding both an active employee
// and an active consumer role.
func RequireExplicitWhenAmbiguous(person *Person) (MarketKind, error) {
	if person.HasActiveEmployeeRole() && person.HasActiveConsumerRole() {
		return "", fmt.Errorf("person %s: %w", person.ID, ErrAmbiguousMarket)
	}
	return PreferEmployer(person)
}

type Eligibility struct {
	CanShopShop        bool `json:"canShopShop"`
	CanShopIndividual  bool `json:"canShopIndividual"`
	CanShopCoverall    bool `json:"canShopCoverall"`
	CanShopBothMarkets bool `json:"canShopBothMarkets"`
}

// EligibilityFor reports the markets person may shop. Shop eligibility needs an active employee
// role whose employer offers it a benefit group Evaluate can shop under.
func EligibilityFor(person *Person, employers map[string]*Employer) Eligibility {
	shop := false
	for _, role := range person.ActiveEmployeeRoles() {
		if !role.HasBenefitGroupAssignment() {
			continue
		}
		if ShopBenefitGroup(employers[role.EmployerID], &role) != nil {
			shop = true
			break
		}
	}
	individual := person.HasActiveConsumerRole()
	return Eligibility{
		CanShopShop:        shop,
		CanShopIndividual:  individual,
		CanShopCoverall:    person.HasActiveResidentRole(),
		CanShopBothMarkets: shop && individual,
	}
}

type RoleRequest struct {
	MarketKind     MarketKind
	EmployeeRoleID string
	ResidentRoleID string
}

type Resolution struct {
	MarketKind MarketKind
	Role       Role
}

// Employee returns the employee role when the resolution is for the shop market.
func (r Resolution) Employee() *EmployeeRole {
	if e, ok := r.Role.(Employee); ok {
		return e.EmployeeRole
	}
	return nil
}

// ResolveRole settles the market and the role that will shop in it. A named role implies its
// market when no market is given.
func ResolveRole(person *Person, req RoleRequest, policy MarketPolicy) (Resolution, error) {
	if person == nil {
		return Resolution{}, fmt.Errorf("person: %w", ErrNotFound)
	}
	if policy == nil {
		policy = PreferEmployer
	}

	var named *EmployeeRole
	if req.EmployeeRoleID != "" {
		named = person.EmployeeRoleByID(req.EmployeeRoleID)
		if named == nil {
			return Resolution{}, fmt.Errorf("employee role %s of person %s: %w", req.EmployeeRoleID, person.ID, ErrNotFound)
		}
	}
	if req.ResidentRoleID != "" && (person.ResidentRole == nil || person.ResidentRole.ID != req.ResidentRoleID) {
		return Resolution{}, fmt.Errorf("resident role %s of person %s: %w", req.ResidentRoleID, person.ID, ErrNotFound)
	}

	market := req.MarketKind
	switch {
	case market != "":
		if !market.Valid() {
			return Resolution{}, fmt.Errorf("market kind %q: %w", market, ErrNoEligibleRole)
		}
	case named != nil:
		market = MarketShop
	case req.ResidentRoleID != "":
		market = MarketCoverall
	default:
		var err error
		if market, err = policy(person); err != nil {
			return Resolution{}, err
		}
	}

	switch market {
	case MarketShop:
		if named != nil {
			return Resolution{MarketKind: market, Role: Employee{named}}, nil
		}
		for i := range person.EmployeeRoles {
			if person.EmployeeRoles[i].IsActive {
				return Resolution{MarketKind: market, Role: Employee{&person.EmployeeRoles[i]}}, nil
			}
		}
	case MarketIndividual:
		if person.HasActiveConsumerRole() {
			return Resolution{MarketKind: market, Role: Consumer{person.ConsumerRole}}, nil
		}
	case MarketCoverall:
		if person.HasActiveResidentRole() {
			return Resolution{MarketKind: market, Role: Resident{person.ResidentRole}}, nil
		}
	}

	return Resolution{}, fmt.Errorf("person %s has no active role for the %s market: %w", person.ID, market, ErrNoEligibleRole)
}
