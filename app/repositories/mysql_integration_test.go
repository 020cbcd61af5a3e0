//go:build integration
// +build integration

package repositories

import (
	"context"
	"sync"
	"testing"

	"github.com/Rakhulsr/go-classifieds/app/configs"
	"github.com/Rakhulsr/go-classifieds/app/models"
	"github.com/Rakhulsr/go-classifieds/app/models/migrations"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go/modules/mysql"
	gormmysql "gorm.io/driver/mysql"
	"gorm.io/gorm"
)

var (
	mysqlOnce sync.Once
	mysqlDSN  string
	mysqlErr  error
)

func init() {
	openDB = openMySQL
}

func startMySQL() {
	ctx := context.Background()

	container, err := mysql.Run(
		ctx,
		"mysql:8",
		mysql.WithDatabase("classifieds"),
		mysql.WithUsername("ads"),
		mysql.WithPassword("ads"),
	)
	if err != nil {
		mysqlErr = err
		return
	}

	mysqlDSN, mysqlErr = container.ConnectionString(ctx, "parseTime=true", "charset=utf8mb4")
}

// openMySQL shares one container across the suite and gives every test
// freshly migrated tables.
func openMySQL(t *testing.T) *gorm.DB {
	t.Helper()

	mysqlOnce.Do(startMySQL)
	if mysqlErr != nil {
		t.Skipf("mysql container unavailable: %v", mysqlErr)
	}

	db, err := gorm.Open(gormmysql.Open(mysqlDSN), &gorm.Config{
		Logger:         configs.NewGormLogger(zerolog.Nop(), false),
		TranslateError: true,
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.Migrator().DropTable("user_locations", &models.Ad{}, &models.User{}, &models.Location{}, &models.Category{}))
	require.NoError(t, migrations.AutoMigrate(db))
	return db
}
