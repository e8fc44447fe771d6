package db

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"campus-crowd-backend/config"
)

func TestInit_SQLiteMigrates(t *testing.T) {
	gormDB, err := Init(&config.DatabaseConfig{
		Driver: "sqlite",
		DSN:    "file:db_init_test?mode=memory&cache=shared",
	}, zap.NewNop())
	require.NoError(t, err)
	sqlDB, _ := gormDB.DB()
	defer sqlDB.Close()

	for _, table := range []string{"locations", "vouches", "push_subscriptions", "subscription_location_mapping"} {
		assert.True(t, gormDB.Migrator().HasTable(table), "missing table %s", table)
	}
}

func TestInit_UnsupportedDriver(t *testing.T) {
	_, err := Init(&config.DatabaseConfig{Driver: "oracle"}, zap.NewNop())
	assert.ErrorContains(t, err, "unsupported database driver")
}

func TestInit_GormLogsThroughZap(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)

	gormDB, err := Init(&config.DatabaseConfig{
		Driver:     "sqlite",
		DSN:        "file:db_gorm_log_test?mode=memory&cache=shared",
		LogQueries: true,
	}, zap.New(core))
	require.NoError(t, err)
	sqlDB, _ := gormDB.DB()
	defer sqlDB.Close()

	statements := logs.Filter(func(e observer.LoggedEntry) bool {
		return e.LoggerName == "gorm" && strings.Contains(e.Message, "CREATE TABLE")
	})
	assert.NotZero(t, statements.Len())
}

func TestInit_GormQuietByDefault(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)

	gormDB, err := Init(&config.DatabaseConfig{
		Driver: "sqlite",
		DSN:    "file:db_gorm_quiet_test?mode=memory&cache=shared",
	}, zap.New(core))
	require.NoError(t, err)
	sqlDB, _ := gormDB.DB()
	defer sqlDB.Close()

	gormEntries := logs.Filter(func(e observer.LoggedEntry) bool { return e.LoggerName == "gorm" })
	assert.Zero(t, gormEntries.Len())
	assert.NotZero(t, logs.FilterMessage("database initialization complete").Len())
}
