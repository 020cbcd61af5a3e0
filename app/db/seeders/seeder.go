package seeders

import (
	"context"
	"fmt"
	"math/rand"

	"github.com/Rakhulsr/go-classifieds/app/db/fakers"
	"github.com/Rakhulsr/go-classifieds/app/models"
	"github.com/Rakhulsr/go-classifieds/app/repositories"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Counts struct {
	Categories int
	Users      int
	AdsPerUser int
}

var DefaultCounts = Counts{Categories: 5, Users: 10, AdsPerUser: 3}

// DBSeed fills the database with fake categories, located users and ads.
// It goes through the repositories so seeded rows obey the same rules as
// rows created over HTTP.
func DBSeed(ctx context.Context, db *gorm.DB, counts Counts, logger zerolog.Logger) error {
	locationRepo := repositories.NewLocationRepository(db)
	categoryRepo := repositories.NewCategoryRepository(db)
	userRepo := repositories.NewUserRepository(db)
	adRepo := repositories.NewAdRepository(db)

	for _, city := range fakers.Cities {
		loc, created, err := locationRepo.GetOrCreate(ctx, city.Name)
		if err != nil {
			return err
		}
		if !created {
			continue
		}
		loc.Lat = decimal.NewNullDecimal(decimal.NewFromFloat(city.Lat))
		loc.Lng = decimal.NewNullDecimal(decimal.NewFromFloat(city.Lng))
		if err := db.WithContext(ctx).Save(loc).Error; err != nil {
			return fmt.Errorf("failed to set coordinates of %s: %w", city.Name, err)
		}
	}

	categories := make([]*models.Category, 0, counts.Categories)
	for i := 0; i < counts.Categories; i++ {
		category := fakers.CategoryFaker()
		if err := categoryRepo.Create(ctx, category); err != nil {
			return fmt.Errorf("failed to seed category: %w", err)
		}
		categories = append(categories, category)
	}

	var ads int
	for i := 0; i < counts.Users; i++ {
		user, locations := fakers.UserFaker()
		if err := userRepo.Create(ctx, user, locations); err != nil {
			return fmt.Errorf("failed to seed user: %w", err)
		}

		for j := 0; j < counts.AdsPerUser; j++ {
			var category *models.Category
			if len(categories) > 0 {
				category = categories[rand.Intn(len(categories))]
			}
			if err := adRepo.Create(ctx, fakers.AdFaker(user, category)); err != nil {
				return fmt.Errorf("failed to seed ad: %w", err)
			}
			ads++
		}
	}

	logger.Info().
		Int("categories", len(categories)).
		Int("users", counts.Users).
		Int("ads", ads).
		Msg("database seeded")
	return nil
}
