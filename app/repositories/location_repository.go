package repositories

import (
	"context"
	"fmt"

	"github.com/Rakhulsr/go-classifieds/app/models"
	"gorm.io/gorm"
)

type LocationRepositoryImpl interface {
	GetOrCreate(ctx context.Context, name string) (*models.Location, bool, error)
}

type locationRepository struct {
	db *gorm.DB
}

func NewLocationRepository(db *gorm.DB) LocationRepositoryImpl {
	return &locationRepository{db: db}
}

// GetOrCreate returns the location called name, creating it when no row
// matches. The bool reports whether a row was created. When several rows
// share the name the one with the lowest id wins.
func (r *locationRepository) GetOrCreate(ctx context.Context, name string) (*models.Location, bool, error) {
	return getOrCreateLocation(r.db.WithContext(ctx), name)
}

func getOrCreateLocation(db *gorm.DB, name string) (*models.Location, bool, error) {
	var location models.Location
	res := db.Where("name = ?", name).Order("id ASC").Limit(1).Find(&location)
	if res.Error != nil {
		return nil, false, fmt.Errorf("failed to look up location %q: %w", name, res.Error)
	}
	if res.RowsAffected > 0 {
		return &location, false, nil
	}

	location = models.Location{Name: name}
	if err := db.Create(&location).Error; err != nil {
		return nil, false, fmt.Errorf("failed to create location %q: %w", name, err)
	}
	return &location, true, nil
}
