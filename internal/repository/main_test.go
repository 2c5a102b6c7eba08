package repository

import (
	"testing"

	"shortlink/internal/config"
	"shortlink/internal/database"
	"shortlink/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// setupMockDB returns a GORM handle speaking the postgres dialect to sqlmock.
func setupMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	gormDB, err := gorm.Open(postgres.New(postgres.Config{
		Conn: db,
	}), &gorm.Config{})
	require.NoError(t, err)

	return gormDB, mock
}

// setupSQLiteDB returns a migrated in-memory database.
func setupSQLiteDB(t *testing.T) *gorm.DB {
	db, err := database.Connect(&config.Config{
		Env:            "test",
		DBDriver:       "sqlite",
		DBPath:         ":memory:",
		DBMaxOpenConns: 1,
		DBMaxIdleConns: 1,
	})
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

func createUser(t *testing.T, db *gorm.DB, username string) *models.User {
	t.Helper()
	u := &models.User{Username: username, PasswordHash: "hash", Name: username}
	require.NoError(t, db.Create(u).Error)
	return u
}
