package services

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"portal/internal/database"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) database.DB {
	t.Helper()
	sql, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "services.db")), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, sql.Exec("CREATE TABLE notes (id INTEGER PRIMARY KEY, body TEXT)").Error)

	server := miniredis.RunT(t)
	employer, err := database.NewCacheClient(server.Addr(), 0)
	require.NoError(t, err)
	sponsorship, err := database.NewCacheClient(server.Addr(), 1)
	require.NoError(t, err)

	db := database.NewWithConnections(sql, database.Cache{Employer: employer, Sponsorship: sponsorship})
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func countNotes(t *testing.T, db database.DB) int64 {
	var count int64
	require.NoError(t, db.SQL.Table("notes").Count(&count).Error)
	return count
}

func TestTransactionService_Commit(t *testing.T) {
	db := newTestDB(t)
	service := NewTransactionService(db)

	err := service.Execute(context.Background(), func(txCtx context.Context) error {
		tx, ok := GetTransaction(txCtx)
		require.True(t, ok)
		return tx.Exec("INSERT INTO notes (body) VALUES (?)", "kept").Error
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), countNotes(t, db))
}

func TestTransactionService_Rollback(t *testing.T) {
	db := newTestDB(t)
	service := NewTransactionService(db)
	boom := errors.New("boom")

	err := service.Execute(context.Background(), func(txCtx context.Context) error {
		tx, _ := GetTransaction(txCtx)
		require.NoError(t, tx.Exec("INSERT INTO notes (body) VALUES (?)", "dropped").Error)
		return boom
	})
	assert.ErrorIs(t, err, boom)
	assert.Zero(t, countNotes(t, db))
}

func TestTransactionService_NestedJoinsOuter(t *testing.T) {
	db := newTestDB(t)
	service := NewTransactionService(db)

	err := service.Execute(context.Background(), func(outer context.Context) error {
		outerTx, _ := GetTransaction(outer)
		return service.Execute(outer, func(inner context.Context) error {
			innerTx, ok := GetTransaction(inner)
			require.True(t, ok)
			assert.Same(t, outerTx, innerTx)
			return nil
		})
	})
	require.NoError(t, err)
}

func TestGetTransaction_Absent(t *testing.T) {
	_, ok := GetTransaction(context.Background())
	assert.False(t, ok)
}

func TestCacheInvalidationService(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	service := NewCacheInvalidationService(db)

	for _, id := range []string{"e1", "e2"} {
		require.NoError(t, database.NewCacheBuilder(db.Cache.Employer, id).WithHash(EmployerCachePattern).WithStruct(id).Set())
	}
	require.NoError(t, database.NewCacheBuilder(db.Cache.Sponsorship, CurrentSponsorshipKey).WithHash(SponsorshipCachePattern).WithStruct("s").Set())

	count, err := service.InvalidateEmployerCache(ctx, "e1", "e2")
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	var value string
	found, err := database.NewCacheBuilder(db.Cache.Employer, "e1").WithHash(EmployerCachePattern).Get(&value)
	require.NoError(t, err)
	assert.False(t, found)

	count, err = service.InvalidateSponsorshipCache(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
	found, err = database.NewCacheBuilder(db.Cache.Sponsorship, CurrentSponsorshipKey).WithHash(SponsorshipCachePattern).Get(&value)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestCacheInvalidationService_WithoutCache(t *testing.T) {
	service := NewCacheInvalidationService(database.DB{})
	count, err := service.InvalidateEmployerCache(context.Background(), "e1")
	assert.ErrorIs(t, err, database.ErrCacheUnavailable)
	assert.Zero(t, count)
}
