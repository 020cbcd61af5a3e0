package seeders

import (
	"context"
	"testing"

	"github.com/Rakhulsr/go-classifieds/app/db/fakers"
	"github.com/Rakhulsr/go-classifieds/app/db/testdb"
	"github.com/Rakhulsr/go-classifieds/app/models"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDBSeed(t *testing.T) {
	db := testdb.New(t)
	ctx := context.Background()

	counts := Counts{Categories: 2, Users: 3, AdsPerUser: 2}
	require.NoError(t, DBSeed(ctx, db, counts, zerolog.Nop()))

	var n int64
	require.NoError(t, db.Model(&models.Category{}).Count(&n).Error)
	assert.Equal(t, int64(2), n)
	require.NoError(t, db.Model(&models.User{}).Count(&n).Error)
	assert.Equal(t, int64(3), n)
	require.NoError(t, db.Model(&models.Ad{}).Count(&n).Error)
	assert.Equal(t, int64(6), n)

	var moscow models.Location
	require.NoError(t, db.Where("name = ?", "Moscow").First(&moscow).Error)
	assert.True(t, moscow.Lat.Valid)
	assert.Equal(t, "55.755826", moscow.Lat.Decimal.String())
}

func TestDBSeed_Twice(t *testing.T) {
	db := testdb.New(t)
	ctx := context.Background()

	counts := Counts{Categories: 1, Users: 1, AdsPerUser: 0}
	require.NoError(t, DBSeed(ctx, db, counts, zerolog.Nop()))
	require.NoError(t, DBSeed(ctx, db, counts, zerolog.Nop()))

	var n int64
	require.NoError(t, db.Model(&models.Location{}).Count(&n).Error)
	assert.Equal(t, int64(len(fakers.Cities)), n)
	require.NoError(t, db.Model(&models.User{}).Count(&n).Error)
	assert.Equal(t, int64(2), n)
}
