package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/Rakhulsr/go-classifieds/app/models"
	"github.com/Rakhulsr/go-classifieds/app/utils/pagination"
	"gorm.io/gorm"
)

type AdRepositoryImpl interface {
	Create(ctx context.Context, ad *models.Ad) error
	GetByID(ctx context.Context, id uint) (*models.Ad, error)
	GetPaginated(ctx context.Context, pager pagination.Paginator, rawPage string) ([]models.Ad, pagination.Page, error)
	Update(ctx context.Context, ad *models.Ad) error
	SetImage(ctx context.Context, id uint, image string) error
	// Delete removes the ad and returns the image key it held, if any.
	Delete(ctx context.Context, id uint) ([]string, error)
}

type adRepository struct {
	db *gorm.DB
}

func NewAdRepository(db *gorm.DB) AdRepositoryImpl {
	return &adRepository{db}
}

func (r *adRepository) Create(ctx context.Context, ad *models.Ad) error {
	return r.db.WithContext(ctx).Omit("Author", "Category").Create(ad).Error
}

func (r *adRepository) GetByID(ctx context.Context, id uint) (*models.Ad, error) {
	var ad models.Ad
	err := r.db.WithContext(ctx).
		Joins("Author").
		Joins("Category").
		First(&ad, "ads.id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &ad, nil
}

// GetPaginated lists ads from most to least expensive. Unpublished ads are
// included.
func (r *adRepository) GetPaginated(ctx context.Context, pager pagination.Paginator, rawPage string) ([]models.Ad, pagination.Page, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&models.Ad{}).Count(&total).Error; err != nil {
		return nil, pagination.Page{}, fmt.Errorf("failed to count ads: %w", err)
	}

	page := pager.Page(rawPage, total)

	var ads []models.Ad
	err := r.db.WithContext(ctx).
		Joins("Author").
		Joins("Category").
		Order("ads.price DESC").
		Order("ads.id ASC").
		Limit(page.Limit).
		Offset(page.Offset).
		Find(&ads).Error
	if err != nil {
		return nil, page, fmt.Errorf("failed to list ads: %w", err)
	}
	return ads, page, nil
}

// Update overwrites every editable column of ad. The image is left alone;
// it only changes through SetImage.
func (r *adRepository) Update(ctx context.Context, ad *models.Ad) error {
	return r.db.WithContext(ctx).
		Model(&models.Ad{ID: ad.ID}).
		Select("name", "author_id", "price", "description", "is_published", "category_id").
		Updates(ad).Error
}

func (r *adRepository) SetImage(ctx context.Context, id uint, image string) error {
	return r.db.WithContext(ctx).Model(&models.Ad{ID: id}).Update("image", image).Error
}

func (r *adRepository) Delete(ctx context.Context, id uint) ([]string, error) {
	var images []string
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		if images, err = imageKeys(tx.Where("id = ?", id)); err != nil {
			return err
		}
		if err := tx.Delete(&models.Ad{}, "id = ?", id).Error; err != nil {
			return fmt.Errorf("failed to delete ad %d: %w", id, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return images, nil
}

// imageKeys plucks the non-empty image keys of the ads matched by scope.
func imageKeys(scope *gorm.DB) ([]string, error) {
	var images []string
	err := scope.Model(&models.Ad{}).
		Where("image IS NOT NULL AND image <> ?", "").
		Pluck("image", &images).Error
	if err != nil {
		return nil, fmt.Errorf("failed to look up ad images: %w", err)
	}
	return images, nil
}
