package selection

import (
	"testing"

	. "portal/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveRole_PreferEmployer(t *testing.T) {
	tests := []struct {
		name       string
		person     *Person
		wantMarket MarketKind
		wantKind   RoleKind
		wantErr    error
	}{
		{name: "employee wins over everything", person: newPerson(true, true, true), wantMarket: MarketShop, wantKind: RoleEmployee},
		{name: "consumer wins over resident", person: newPerson(false, true, true), wantMarket: MarketIndividual, wantKind: RoleConsumer},
		{name: "resident alone", person: newPerson(false, false, true), wantMarket: MarketCoverall, wantKind: RoleResident},
		{name: "no roles", person: newPerson(false, false, false), wantErr: ErrNoEligibleRole},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ResolveRole(tt.person, RoleRequest{}, PreferEmployer)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantMarket, got.MarketKind)
			assert.Equal(t, tt.wantKind, got.Role.Kind())
			assert.Equal(t, tt.wantMarket, got.Role.MarketKind())
		})
	}
}

func TestResolveRole_InactiveEmployeeRoleIsSkipped(t *testing.T) {
	person := newPerson(true, true, false)
	person.EmployeeRoles[0].IsActive = false

	got, err := ResolveRole(person, RoleRequest{}, PreferEmployer)
	require.NoError(t, err)
	assert.Equal(t, MarketIndividual, got.MarketKind)
	assert.Nil(t, got.Employee())
}

// Holding both an employee and a consumer role is the ambiguous case. Each policy settles it
// differently and both are valid configurations.
func TestResolveRole_AmbiguousMarket(t *testing.T) {
	person := newPerson(true, true, false)

	preferred, err := ResolveRole(person, RoleRequest{}, PreferEmployer)
	require.NoError(t, err)
	assert.Equal(t, MarketShop, preferred.MarketKind)

	_, err = ResolveRole(person, RoleRequest{}, RequireExplicitWhenAmbiguous)
	assert.ErrorIs(t, err, ErrAmbiguousMarket)

	explicit, err := ResolveRole(person, RoleRequest{MarketKind: MarketIndividual}, RequireExplicitWhenAmbiguous)
	require.NoError(t, err)
	assert.Equal(t, RoleConsumer, explicit.Role.Kind())
	assert.Equal(t, "consumer-role-1", explicit.Role.RoleID())
}

func TestResolveRole_NamedRoles(t *testing.T) {
	person := newPerson(true, true, true)

	t.Run("employee role implies shop", func(t *testing.T) {
		got, err := ResolveRole(person, RoleRequest{EmployeeRoleID: roleID}, RequireExplicitWhenAmbiguous)
		require.NoError(t, err)
		assert.Equal(t, MarketShop, got.MarketKind)
		require.NotNil(t, got.Employee())
		assert.Equal(t, roleID, got.Employee().ID)
	})

	t.Run("resident role implies coverall", func(t *testing.T) {
		got, err := ResolveRole(person, RoleRequest{ResidentRoleID: "resident-role-1"}, PreferEmployer)
		require.NoError(t, err)
		assert.Equal(t, MarketCoverall, got.MarketKind)
		assert.Equal(t, RoleResident, got.Role.Kind())
	})

	t.Run("unknown employee role", func(t *testing.T) {
		_, err := ResolveRole(person, RoleRequest{EmployeeRoleID: "missing"}, PreferEmployer)
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("unknown resident role", func(t *testing.T) {
		_, err := ResolveRole(person, RoleRequest{ResidentRoleID: "missing"}, PreferEmployer)
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestResolveRole_ExplicitMarketWithoutRole(t *testing.T) {
	_, err := ResolveRole(newPerson(true, false, false), RoleRequest{MarketKind: MarketIndividual}, PreferEmployer)
	assert.ErrorIs(t, err, ErrNoEligibleRole)

	_, err = ResolveRole(newPerson(true, false, false), RoleRequest{MarketKind: "medicare"}, PreferEmployer)
	assert.ErrorIs(t, err, ErrNoEligibleRole)
}

func TestResolveRole_NilPerson(t *testing.T) {
	_, err := ResolveRole(nil, RoleRequest{}, nil)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestEligibilityFor(t *testing.T) {
	employers := map[string]*Employer{employerID: newEmployer()}

	both := EligibilityFor(newPerson(true, true, false), employers)
	assert.True(t, both.CanShopShop)
	assert.True(t, both.CanShopIndividual)
	assert.True(t, both.CanShopBothMarkets)
	assert.False(t, both.CanShopCoverall)

	person := newPerson(true, true, false)
	for i := range person.EmployeeRoles[0].CensusEmployee.BenefitGroupAssignments {
		person.EmployeeRoles[0].CensusEmployee.BenefitGroupAssignments[i].EndOn = ptr(date(2023, 12, 31))
	}
	noBenefits := EligibilityFor(person, employers)
	assert.False(t, noBenefits.CanShopShop)
	assert.False(t, noBenefits.CanShopBothMarkets)

	noEmployer := EligibilityFor(newPerson(true, true, false), nil)
	assert.False(t, noEmployer.CanShopShop)
	assert.True(t, noEmployer.CanShopIndividual)
}
