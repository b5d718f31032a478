// Package dbtest hands tests an isolated, migrated in-memory database.
package dbtest

import (
	"fmt"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/AditRobertho/eshop-backend/internal/db"
	"github.com/AditRobertho/eshop-backend/internal/models"
)

func New(t testing.TB) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	gdb, err := gorm.Open(sqlite.Open(dsn), db.GormConfig())
	require.NoError(t, err)

	sqlDB, err := gdb.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, gdb.AutoMigrate(models.All()...))

	t.Cleanup(func() { _ = sqlDB.Close() })
	return gdb
}

func SeedCategory(t testing.TB, gdb *gorm.DB, name string) models.Category {
	t.Helper()
	cat := models.Category{Name: name, Icon: "icon-" + name, Color: "#000000"}
	require.NoError(t, gdb.Create(&cat).Error)
	return cat
}

func SeedProduct(t testing.TB, gdb *gorm.DB, p models.Product) models.Product {
	t.Helper()
	require.NoError(t, gdb.Create(&p).Error)
	return p
}
