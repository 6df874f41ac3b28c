package journal

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// openTestStore opens a migrated store on a fresh in-memory SQLite
// database. The pool is pinned to one connection since every SQLite
// :memory: connection is its own database.
func openTestStore(t *testing.T) (*GormStore, *gorm.DB) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err, "open in-memory sqlite")

	store, err := NewGormStoreWithPool(db, MaxOpenConns(1), MaxIdleConns(1))
	require.NoError(t, err)
	require.NoError(t, store.Migrate(context.Background()))

	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return store, db
}
