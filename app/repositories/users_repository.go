package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/Rakhulsr/go-classifieds/app/models"
	"github.com/Rakhulsr/go-classifieds/app/utils/pagination"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// UserRepositoryImpl stores users and their location links. Passwords
// handed to Create and Update are plaintext and are stored as bcrypt hashes.
type UserRepositoryImpl interface {
	Create(ctx context.Context, user *models.User, locations []string) error
	FindByID(ctx context.Context, id uint) (*models.User, error)
	GetPaginated(ctx context.Context, pager pagination.Paginator, rawPage string) ([]models.User, pagination.Page, error)
	GetPaginatedWithAdCount(ctx context.Context, pager pagination.Paginator, rawPage string) ([]models.UserAdCount, pagination.Page, error)
	Update(ctx context.Context, user *models.User, locations []string) error
	// Delete removes the user with their ads and returns the image keys
	// those ads held.
	Delete(ctx context.Context, id uint) ([]string, error)
}

type userRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) UserRepositoryImpl {
	return &userRepository{db}
}

func (r *userRepository) Create(ctx context.Context, user *models.User, locations []string) error {
	if err := hashPassword(user); err != nil {
		return err
	}

	if user.Role == "" {
		user.Role = models.RoleMember
	}
	user.Locations = nil

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(user).Error; err != nil {
			return fmt.Errorf("failed to create user %s: %w", user.Username, err)
		}
		if err := attachLocations(tx, user, locations); err != nil {
			return err
		}
		return reloadLocations(tx, user)
	})
}

func (r *userRepository) FindByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).Preload("Locations", orderByID).First(&user, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) GetPaginated(ctx context.Context, pager pagination.Paginator, rawPage string) ([]models.User, pagination.Page, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&models.User{}).Count(&total).Error; err != nil {
		return nil, pagination.Page{}, fmt.Errorf("failed to count users: %w", err)
	}

	page := pager.Page(rawPage, total)

	var users []models.User
	err := r.db.WithContext(ctx).
		Preload("Locations", orderByID).
		Order("username ASC").
		Order("id ASC").
		Limit(page.Limit).
		Offset(page.Offset).
		Find(&users).Error
	if err != nil {
		return nil, page, fmt.Errorf("failed to list users: %w", err)
	}
	return users, page, nil
}

// GetPaginatedWithAdCount lists users with TotalAds set to the number of
// their published ads. Users without published ads report zero.
func (r *userRepository) GetPaginatedWithAdCount(ctx context.Context, pager pagination.Paginator, rawPage string) ([]models.UserAdCount, pagination.Page, error) {
	users, page, err := r.GetPaginated(ctx, pager, rawPage)
	if err != nil {
		return nil, page, err
	}
	if len(users) == 0 {
		return []models.UserAdCount{}, page, nil
	}

	ids := make([]uint, 0, len(users))
	for _, u := range users {
		ids = append(ids, u.ID)
	}

	var counts []struct {
		AuthorID uint
		Total    int64
	}
	err = r.db.WithContext(ctx).
		Model(&models.Ad{}).
		Select("author_id, COUNT(*) AS total").
		Where("author_id IN ? AND is_published = ?", ids, true).
		Group("author_id").
		Scan(&counts).Error
	if err != nil {
		return nil, page, fmt.Errorf("failed to count published ads: %w", err)
	}

	byAuthor := make(map[uint]int64, len(counts))
	for _, c := range counts {
		byAuthor[c.AuthorID] = c.Total
	}

	result := make([]models.UserAdCount, 0, len(users))
	for _, u := range users {
		result = append(result, models.UserAdCount{User: u, TotalAds: byAuthor[u.ID]})
	}
	return result, page, nil
}

// Update replaces every scalar field of user. Locations are only ever
// added: names already linked stay linked and nothing is unlinked.
func (r *userRepository) Update(ctx context.Context, user *models.User, locations []string) error {
	if err := hashPassword(user); err != nil {
		return err
	}
	if user.Role == "" {
		user.Role = models.RoleMember
	}

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Model(&models.User{ID: user.ID}).
			Select("first_name", "last_name", "username", "password", "role", "age").
			Updates(user).Error
		if err != nil {
			return fmt.Errorf("failed to update user %d: %w", user.ID, err)
		}
		if err := reloadLocations(tx, user); err != nil {
			return err
		}
		if err := attachLocations(tx, user, locations); err != nil {
			return err
		}
		return reloadLocations(tx, user)
	})
}

// Delete removes the user together with their ads and location links.
func (r *userRepository) Delete(ctx context.Context, id uint) ([]string, error) {
	var images []string
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		if images, err = imageKeys(tx.Where("author_id = ?", id)); err != nil {
			return err
		}
		if err := tx.Where("author_id = ?", id).Delete(&models.Ad{}).Error; err != nil {
			return fmt.Errorf("failed to delete ads of user %d: %w", id, err)
		}
		if err := tx.Exec("DELETE FROM user_locations WHERE user_id = ?", id).Error; err != nil {
			return fmt.Errorf("failed to unlink locations of user %d: %w", id, err)
		}
		if err := tx.Delete(&models.User{}, "id = ?", id).Error; err != nil {
			return fmt.Errorf("failed to delete user %d: %w", id, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return images, nil
}

// attachLocations links user to each named location, creating missing
// ones. A location that is already linked is skipped, so repeated names
// produce a single link.
func attachLocations(tx *gorm.DB, user *models.User, names []string) error {
	linked := make(map[uint]bool, len(user.Locations))
	for _, loc := range user.Locations {
		linked[loc.ID] = true
	}

	for _, name := range names {
		loc, _, err := getOrCreateLocation(tx, name)
		if err != nil {
			return err
		}
		if linked[loc.ID] {
			continue
		}
		if err := tx.Model(&models.User{ID: user.ID}).Association("Locations").Append(loc); err != nil {
			return fmt.Errorf("failed to link location %q to user %d: %w", name, user.ID, err)
		}
		linked[loc.ID] = true
	}
	return nil
}

func reloadLocations(tx *gorm.DB, user *models.User) error {
	var locations []models.Location
	if err := tx.Model(&models.User{ID: user.ID}).Order("locations.id ASC").Association("Locations").Find(&locations); err != nil {
		return fmt.Errorf("failed to load locations of user %d: %w", user.ID, err)
	}
	user.Locations = locations
	return nil
}

func hashPassword(user *models.User) error {
	hashed, err := bcrypt.GenerateFromPassword([]byte(user.Password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password for user %s: %w", user.Username, err)
	}
	user.Password = string(hashed)
	return nil
}

func orderByID(db *gorm.DB) *gorm.DB {
	return db.Order("id ASC")
}
