package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/Rakhulsr/go-classifieds/app/models"
	"github.com/Rakhulsr/go-classifieds/app/utils/pagination"
	"gorm.io/gorm"
)

type CategoryRepositoryImpl interface {
	Create(ctx context.Context, category *models.Category) error
	GetByID(ctx context.Context, id uint) (*models.Category, error)
	GetPaginated(ctx context.Context, pager pagination.Paginator, rawPage string) ([]models.Category, pagination.Page, error)
	Update(ctx context.Context, category *models.Category) error
	Delete(ctx context.Context, id uint) error
}

type categoryRepository struct {
	db *gorm.DB
}

func NewCategoryRepository(db *gorm.DB) CategoryRepositoryImpl {
	return &categoryRepository{db: db}
}

func (r *categoryRepository) Create(ctx context.Context, category *models.Category) error {
	return r.db.WithContext(ctx).Create(category).Error
}

func (r *categoryRepository) GetByID(ctx context.Context, id uint) (*models.Category, error) {
	var category models.Category
	err := r.db.WithContext(ctx).First(&category, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &category, nil
}

func (r *categoryRepository) GetPaginated(ctx context.Context, pager pagination.Paginator, rawPage string) ([]models.Category, pagination.Page, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&models.Category{}).Count(&total).Error; err != nil {
		return nil, pagination.Page{}, fmt.Errorf("failed to count categories: %w", err)
	}

	page := pager.Page(rawPage, total)

	var categories []models.Category
	err := r.db.WithContext(ctx).
		Order("name ASC").
		Order("id ASC").
		Limit(page.Limit).
		Offset(page.Offset).
		Find(&categories).Error
	if err != nil {
		return nil, page, fmt.Errorf("failed to list categories: %w", err)
	}
	return categories, page, nil
}

func (r *categoryRepository) Update(ctx context.Context, category *models.Category) error {
	return r.db.WithContext(ctx).Save(category).Error
}

// Delete detaches the category from its ads before removing it, so ads
// survive with no category even where the store does not enforce
// ON DELETE SET NULL.
func (r *categoryRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Ad{}).Where("category_id = ?", id).Update("category_id", nil).Error; err != nil {
			return fmt.Errorf("failed to detach ads from category %d: %w", id, err)
		}
		if err := tx.Delete(&models.Category{}, "id = ?", id).Error; err != nil {
			return fmt.Errorf("failed to delete category %d: %w", id, err)
		}
		return nil
	})
}
