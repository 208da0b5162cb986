package groupSelectionController

import (
	"context"
	"testing"
	"time"

	"portal/config"
	. "portal/internal/models"
	"portal/internal/selection"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type personRepoMock struct{ mock.Mock }

func (m *personRepoMock) GetByID(ctx context.Context, id string) (*Person, error) {
	args := m.Called(ctx, id)
	person, _ := args.Get(0).(*Person)
	return person, args.Error(1)
}

func (m *personRepoMock) Create(ctx context.Context, person *Person) error {
	return m.Called(ctx, person).Error(0)
}

type familyRepoMock struct{ mock.Mock }

func (m *familyRepoMock) GetByPrimaryPersonID(ctx context.Context, personID string) (*Family, error) {
	args := m.Called(ctx, personID)
	family, _ := args.Get(0).(*Family)
	return family, args.Error(1)
}

func (m *familyRepoMock) Create(ctx context.Context, family *Family) error {
	return m.Called(ctx, family).Error(0)
}

type employerRepoMock struct{ mock.Mock }

func (m *employerRepoMock) GetByID(ctx context.Context, id string) (*Employer, error) {
	args := m.Called(ctx, id)
	employer, _ := args.Get(0).(*Employer)
	return employer, args.Error(1)
}

func (m *employerRepoMock) GetByIDs(ctx context.Context, ids []string) (map[string]*Employer, error) {
	args := m.Called(ctx, ids)
	employers, _ := args.Get(0).(map[string]*Employer)
	return employers, args.Error(1)
}

func (m *employerRepoMock) GetByFEINs(ctx context.Context, feins []string) ([]*Employer, error) {
	args := m.Called(ctx, feins)
	employers, _ := args.Get(0).([]*Employer)
	return employers, args.Error(1)
}

func (m *employerRepoMock) Create(ctx context.Context, employer *Employer) error {
	return m.Called(ctx, employer).Error(0)
}

type enrollmentRepoMock struct{ mock.Mock }

func (m *enrollmentRepoMock) GetByID(ctx context.Context, id string) (*Enrollment, error) {
	args := m.Called(ctx, id)
	enrollment, _ := args.Get(0).(*Enrollment)
	return enrollment, args.Error(1)
}

func (m *enrollmentRepoMock) ListShopByEmployers(ctx context.Context, employerIDs []string, effectiveOn time.Time) ([]Enrollment, error) {
	args := m.Called(ctx, employerIDs, effectiveOn)
	enrollments, _ := args.Get(0).([]Enrollment)
	return enrollments, args.Error(1)
}

func (m *enrollmentRepoMock) Create(ctx context.Context, enrollment *Enrollment) error {
	return m.Called(ctx, enrollment).Error(0)
}

type sponsorshipRepoMock struct{ mock.Mock }

func (m *sponsorshipRepoMock) GetCurrent(ctx context.Context) (*BenefitSponsorship, error) {
	args := m.Called(ctx)
	sponsorship, _ := args.Get(0).(*BenefitSponsorship)
	return sponsorship, args.Error(1)
}

func (m *sponsorshipRepoMock) Create(ctx context.Context, sponsorship *BenefitSponsorship) error {
	return m.Called(ctx, sponsorship).Error(0)
}

type repos struct {
	person      *personRepoMock
	family      *familyRepoMock
	employer    *employerRepoMock
	enrollment  *enrollmentRepoMock
	sponsorship *sponsorshipRepoMock
}

func date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

func testConfig() config.Config {
	return config.Config{
		TimeZone:                   "America/New_York",
		DateOfRecord:               "2024-03-10",
		IndividualEnrollmentDueDay: 15,
		AmbiguousMarketPolicy:      config.PolicyPreferEmployer,
	}
}

func newController(cfg config.Config) (*GroupSelectionController, repos) {
	r := repos{
		person:      &personRepoMock{},
		family:      &familyRepoMock{},
		employer:    &employerRepoMock{},
		enrollment:  &enrollmentRepoMock{},
		sponsorship: &sponsorshipRepoMock{},
	}
	return New(r.person, r.family, r.employer, r.enrollment, r.sponsorship, cfg), r
}

func shopPerson() *Person {
	return &Person{
		BaseUUIDModel: BaseUUIDModel{ID: "person-1"},
		FirstName:     "Ada",
		LastName:      "Lovelace",
		EmployeeRoles: []EmployeeRole{{
			BaseUUIDModel:    BaseUUIDModel{ID: "role-1"},
			PersonID:         "person-1",
			EmployerID:       "employer-1",
			CensusEmployeeID: "census-1",
			HiredOn:          date(2020, time.May, 15),
			IsActive:         true,
			CensusEmployee: &CensusEmployee{
				BaseUUIDModel: BaseUUIDModel{ID: "census-1"},
				EmployerID:    "employer-1",
				BenefitGroupAssignments: []BenefitGroupAssignment{{
					BaseUUIDModel:    BaseUUIDModel{ID: "bga-1"},
					CensusEmployeeID: "census-1",
					BenefitGroupID:   "bg-2024",
					StartOn:          date(2024, time.January, 1),
					IsActive:         true,
				}},
			},
		}},
	}
}

func shopEmployer() *Employer {
	return &Employer{
		BaseUUIDModel: BaseUUIDModel{ID: "employer-1"},
		LegalName:     "Acme",
		FEIN:          "123456789",
		PlanYears: []PlanYear{{
			BaseUUIDModel:         BaseUUIDModel{ID: "py-2024"},
			EmployerID:            "employer-1",
			StartOn:               date(2024, time.January, 1),
			EndOn:                 date(2024, time.December, 31),
			OpenEnrollmentStartOn: date(2023, time.November, 1),
			OpenEnrollmentEndOn:   date(2023, time.December, 10),
			State:                 PlanYearActive,
			BenefitGroups: []BenefitGroup{{
				BaseUUIDModel:   BaseUUIDModel{ID: "bg-2024"},
				PlanYearID:      "py-2024",
				Title:           "Everyone",
				EffectiveOnKind: EffectiveOnFirstOfMonth,
			}},
		}},
	}
}

func shopFamily() *Family {
	return &Family{
		BaseUUIDModel:   BaseUUIDModel{ID: "family-1"},
		PrimaryPersonID: "person-1",
		Households:      []Household{{BaseUUIDModel: BaseUUIDModel{ID: "household-1"}, FamilyID: "family-1", IsActive: true}},
	}
}

func expectShopSnapshot(r repos) {
	r.person.On("GetByID", mock.Anything, "person-1").Return(shopPerson(), nil)
	r.family.On("GetByPrimaryPersonID", mock.Anything, "person-1").Return(shopFamily(), nil)
	r.employer.On("GetByIDs", mock.Anything, []string{"employer-1"}).
		Return(map[string]*Employer{"employer-1": shopEmployer()}, nil)
	r.sponsorship.On("GetCurrent", mock.Anything).Return(nil, gorm.ErrRecordNotFound)
}

func TestEvaluate_LoadsSnapshotAndEvaluates(t *testing.T) {
	controller, r := newController(testConfig())
	expectShopSnapshot(r)

	result, err := controller.Evaluate(context.Background(), selection.Request{PersonID: "person-1"})
	require.NoError(t, err)

	assert.Equal(t, MarketShop, result.MarketKind)
	assert.Equal(t, "role-1", result.RoleID)
	assert.Equal(t, date(2024, time.January, 1), result.EffectiveOn)
	require.NotNil(t, result.BenefitGroupAssignmentID)
	assert.Equal(t, "bga-1", *result.BenefitGroupAssignmentID)
	r.person.AssertExpectations(t)
	r.family.AssertExpectations(t)
	r.employer.AssertExpectations(t)
	r.enrollment.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything)
}

func TestEvaluate_LoadsRequestedEnrollment(t *testing.T) {
	controller, r := newController(testConfig())
	expectShopSnapshot(r)
	r.enrollment.On("GetByID", mock.Anything, "missing").Return(nil, gorm.ErrRecordNotFound)

	_, err := controller.Evaluate(context.Background(), selection.Request{PersonID: "person-1", EnrollmentID: "missing"})
	assert.ErrorIs(t, err, selection.ErrNotFound)
	r.enrollment.AssertExpectations(t)
}

func TestEvaluate_Errors(t *testing.T) {
	tests := []struct {
		name    string
		req     selection.Request
		setup   func(r repos)
		wantErr error
	}{
		{
			name:    "missing person id",
			req:     selection.Request{},
			setup:   func(r repos) {},
			wantErr: ErrInvalidRequest,
		},
		{
			name:    "unknown market kind",
			req:     selection.Request{PersonID: "person-1", MarketKind: "medicare"},
			setup:   func(r repos) {},
			wantErr: ErrInvalidRequest,
		},
		{
			name: "unknown person",
			req:  selection.Request{PersonID: "nobody"},
			setup: func(r repos) {
				r.person.On("GetByID", mock.Anything, "nobody").Return(nil, gorm.ErrRecordNotFound)
			},
			wantErr: selection.ErrNotFound,
		},
		{
			name: "person without a family",
			req:  selection.Request{PersonID: "person-1"},
			setup: func(r repos) {
				r.person.On("GetByID", mock.Anything, "person-1").Return(shopPerson(), nil)
				r.family.On("GetByPrimaryPersonID", mock.Anything, "person-1").Return(nil, gorm.ErrRecordNotFound)
			},
			wantErr: selection.ErrNotFound,
		},
		{
			name: "explicit market without a matching role",
			req:  selection.Request{PersonID: "person-1", MarketKind: MarketCoverall},
			setup: func(r repos) {
				expectShopSnapshot(r)
			},
			wantErr: selection.ErrNoEligibleRole,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			controller, r := newController(testConfig())
			tt.setup(r)

			_, err := controller.Evaluate(context.Background(), tt.req)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestToday(t *testing.T) {
	controller, _ := newController(testConfig())
	today, err := controller.Today()
	require.NoError(t, err)
	assert.Equal(t, date(2024, time.March, 10), today)

	cfg := testConfig()
	cfg.DateOfRecord = ""
	controller, _ = newController(cfg)
	// 02:00 UTC on the 1st is still the previous evening in New York.
	controller.now = func() time.Time { return time.Date(2024, time.April, 1, 2, 0, 0, 0, time.UTC) }
	today, err = controller.Today()
	require.NoError(t, err)
	assert.Equal(t, 31, today.Day())
	assert.Equal(t, time.March, today.Month())

	cfg.DateOfRecord = "03/10/2024"
	controller, _ = newController(cfg)
	_, err = controller.Today()
	assert.Error(t, err)
}

func TestEligibility(t *testing.T) {
	controller, r := newController(testConfig())
	person := shopPerson()
	person.ConsumerRole = &ConsumerRole{IsActive: true}
	r.person.On("GetByID", mock.Anything, "person-1").Return(person, nil)
	r.employer.On("GetByIDs", mock.Anything, []string{"employer-1"}).
		Return(map[string]*Employer{"employer-1": shopEmployer()}, nil)

	eligibility, err := controller.Eligibility(context.Background(), "person-1")
	require.NoError(t, err)
	assert.True(t, eligibility.CanShopShop)
	assert.True(t, eligibility.CanShopIndividual)
	assert.True(t, eligibility.CanShopBothMarkets)
	assert.False(t, eligibility.CanShopCoverall)

	_, err = controller.Eligibility(context.Background(), "")
	assert.ErrorIs(t, err, ErrInvalidRequest)
}

func TestEligibility_DraftPlanYearCannotShop(t *testing.T) {
	controller, r := newController(testConfig())
	employer := shopEmployer()
	employer.PlanYears[0].State = PlanYearDraft
	r.person.On("GetByID", mock.Anything, "person-1").Return(shopPerson(), nil)
	r.employer.On("GetByIDs", mock.Anything, []string{"employer-1"}).
		Return(map[string]*Employer{"employer-1": employer}, nil)

	eligibility, err := controller.Eligibility(context.Background(), "person-1")
	require.NoError(t, err)
	assert.False(t, eligibility.CanShopShop)
}

func TestEligibility_EmployerLoadFails(t *testing.T) {
	controller, r := newController(testConfig())
	r.person.On("GetByID", mock.Anything, "person-1").Return(shopPerson(), nil)
	r.employer.On("GetByIDs", mock.Anything, []string{"employer-1"}).Return(nil, gorm.ErrRecordNotFound)

	_, err := controller.Eligibility(context.Background(), "person-1")
	assert.ErrorIs(t, err, selection.ErrNotFound)
}
