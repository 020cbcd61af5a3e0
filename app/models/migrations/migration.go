package migrations

import (
	"github.com/Rakhulsr/go-classifieds/app/models"
	"gorm.io/gorm"
)

func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(&models.Category{}, &models.Location{}, &models.User{}, &models.Ad{})
}
