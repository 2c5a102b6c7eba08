package database

import (
	"testing"

	"shortlink/internal/config"
	"shortlink/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func memoryConfig() *config.Config {
	return &config.Config{
		Env:                      "test",
		DBDriver:                 "sqlite",
		DBPath:                   ":memory:",
		DBMaxOpenConns:           4,
		DBMaxIdleConns:           1,
		DBConnMaxLifetimeMinutes: 5,
	}
}

func TestConnect_SQLiteMigratesSchema(t *testing.T) {
	db, err := Connect(memoryConfig())
	require.NoError(t, err)

	for _, table := range []string{"users", "short_urls", "short_url_pairs"} {
		assert.True(t, db.Migrator().HasTable(table), "missing table %s", table)
	}
	assert.True(t, db.Migrator().HasColumn(&models.User{}, "password_hash"))
	assert.True(t, db.Migrator().HasColumn(&models.ShortURLPair{}, "short_url_id"))
}

func TestConnect_UsernameLengthCheck(t *testing.T) {
	db, err := Connect(memoryConfig())
	require.NoError(t, err)

	assert.Error(t, db.Create(&models.User{Username: "abcd", PasswordHash: "x"}).Error)
	assert.Error(t, db.Create(&models.User{Username: "abcdefghij", PasswordHash: "x"}).Error)
	assert.NoError(t, db.Create(&models.User{Username: "abcde", PasswordHash: "x"}).Error)
	assert.NoError(t, db.Create(&models.User{Username: "abcdefghi", PasswordHash: "x"}).Error)
}

func TestConnect_OneGroupPerUser(t *testing.T) {
	db, err := Connect(memoryConfig())
	require.NoError(t, err)

	user := models.User{Username: "alice01", PasswordHash: "x"}
	require.NoError(t, db.Create(&user).Error)

	require.NoError(t, db.Create(&models.ShortURLGroup{UserID: &user.ID}).Error)
	assert.Error(t, db.Create(&models.ShortURLGroup{UserID: &user.ID}).Error)

	var count int64
	require.NoError(t, db.Model(&models.ShortURLGroup{}).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestDialector_Unsupported(t *testing.T) {
	cfg := memoryConfig()
	cfg.DBDriver = "mysql"
	_, err := Dialector(cfg)
	assert.Error(t, err)

	cfg.DBDriver = "postgres"
	d, err := Dialector(cfg)
	require.NoError(t, err)
	assert.Equal(t, "postgres", d.Name())
}

func TestPersistentModels_ParentsFirst(t *testing.T) {
	ms := PersistentModels()
	require.Len(t, ms, 3)
	assert.IsType(t, &models.User{}, ms[0])
	assert.IsType(t, &models.ShortURLGroup{}, ms[1])
	assert.IsType(t, &models.ShortURLPair{}, ms[2])
}
