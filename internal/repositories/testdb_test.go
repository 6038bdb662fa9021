package repositories

import (
	"context"
	"errors"
	"testing"

	"github.com/anonto42/kratos-hub/backend/internal/models"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// setupTestDB opens a private in-memory sqlite database with the relational schema
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent), TranslateError: true})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(&models.User{}, &models.Like{}, &models.SavedPost{}, &models.Notification{}))
	return db
}

func seedUsers(t *testing.T, repo UserRepository, users ...models.User) []models.User {
	t.Helper()
	for i := range users {
		require.NoError(t, repo.CreateUser(context.Background(), &users[i]))
	}
	return users
}

// insertOnMiss registers a query callback that inserts row, once, right after
// a lookup on table finds nothing. It stands in for a concurrent request that
// commits the same row between a toggle's lookup and its insert.
func insertOnMiss(t *testing.T, db *gorm.DB, table string, row interface{}) *bool {
	t.Helper()
	fired := false
	err := db.Callback().Query().After("gorm:query").Register("test:insert_on_miss", func(tx *gorm.DB) {
		if fired || tx.Statement.Table != table || !errors.Is(tx.Error, gorm.ErrRecordNotFound) {
			return
		}
		fired = true
		require.NoError(t, tx.Session(&gorm.Session{NewDB: true}).Create(row).Error)
	})
	require.NoError(t, err)
	return &fired
}
