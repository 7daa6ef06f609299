// Package testutil opens throwaway stores for package tests.
package testutil

import (
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/mroshb/kudos/internal/database"
	"github.com/mroshb/kudos/internal/models"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// NewDB returns a migrated in-memory SQLite database private to t.
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_foreign_keys=1", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	// One connection keeps the shared in-memory database alive and
	// serializes writers the way SQLite expects.
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, database.AutoMigrate(db))

	t.Cleanup(func() {
		_ = sqlDB.Close()
	})
	return db
}

// CreateUser inserts a user with the given giving budget.
func CreateUser(t *testing.T, db *gorm.DB, name string, budget int) *models.User {
	t.Helper()

	user := &models.User{
		UserName:     name,
		Email:        name + "@example.com",
		FirstName:    name,
		GivingBudget: budget,
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

func CreateAdmin(t *testing.T, db *gorm.DB, name string) *models.User {
	t.Helper()

	user := &models.User{
		UserName: name,
		Email:    name + "@example.com",
		Role:     models.RoleAdmin,
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

func CreateCoreValue(t *testing.T, db *gorm.DB, name string) *models.CoreValue {
	t.Helper()

	cv := &models.CoreValue{Name: name, Emoji: "⭐"}
	require.NoError(t, db.Create(cv).Error)
	return cv
}

func CreateReward(t *testing.T, db *gorm.DB, name string, cost int, active bool) *models.Reward {
	t.Helper()

	reward := &models.Reward{Name: name, PointsCost: cost, Stock: 10, IsActive: active}
	require.NoError(t, db.Create(reward).Error)
	return reward
}
