package repositories

import (
	"path/filepath"
	"testing"
	"time"

	"portal/internal/database"
	. "portal/internal/models"

	"github.com/alicebob/miniredis/v2"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

func ptr[T any](v T) *T {
	return &v
}

// newTestDB opens a migrated sqlite database with every cache on one miniredis server.
func newTestDB(t *testing.T) (database.DB, *miniredis.Miniredis) {
	t.Helper()

	sql, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "repositories.db")), &gorm.Config{})
	require.NoError(t, err)

	server := miniredis.RunT(t)
	employer, err := database.NewCacheClient(server.Addr(), 1)
	require.NoError(t, err)
	sponsorship, err := database.NewCacheClient(server.Addr(), 2)
	require.NoError(t, err)

	db := database.NewWithConnections(sql, database.Cache{Employer: employer, Sponsorship: sponsorship})
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.Migrate(database.MigrateUp)
	require.NoError(t, err)
	return db, server
}

func employerFixture(fein string) *Employer {
	return &Employer{
		LegalName: "Employer " + fein,
		FEIN:      fein,
		PlanYears: []PlanYear{
			{
				StartOn:               date(2024, time.January, 1),
				EndOn:                 date(2024, time.December, 31),
				OpenEnrollmentStartOn: date(2023, time.November, 1),
				OpenEnrollmentEndOn:   date(2023, time.December, 10),
				State:                 PlanYearActive,
				BenefitGroups: []BenefitGroup{{
					Title:           "Everyone",
					EffectiveOnKind: EffectiveOnFirstOfMonth,
					RelationshipBenefits: []RelationshipBenefit{
						{CoverageKind: CoverageHealth, Relationship: "employee", Offered: true, PremiumPct: decimal.NewFromInt(80), EmployerMaxAmt: decimal.RequireFromString("450.50")},
						{CoverageKind: CoverageHealth, Relationship: "spouse", Offered: true, PremiumPct: decimal.NewFromInt(50), EmployerMaxAmt: decimal.Zero},
					},
				}},
			},
			{
				StartOn:               date(2025, time.January, 1),
				EndOn:                 date(2025, time.December, 31),
				OpenEnrollmentStartOn: date(2024, time.November, 1),
				OpenEnrollmentEndOn:   date(2024, time.December, 10),
				State:                 PlanYearRenewingPublished,
				BenefitGroups:         []BenefitGroup{{Title: "Everyone 2025", EffectiveOnKind: EffectiveOnFirstOfMonth}},
			},
		},
	}
}
