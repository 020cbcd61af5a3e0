package repositories

import (
	"context"
	"testing"

	"github.com/Rakhulsr/go-classifieds/app/db/testdb"
	"github.com/Rakhulsr/go-classifieds/app/models"
	"github.com/Rakhulsr/go-classifieds/app/utils/pagination"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type fixture struct {
	db         *gorm.DB
	categories CategoryRepositoryImpl
	locations  LocationRepositoryImpl
	users      UserRepositoryImpl
	ads        AdRepositoryImpl
}

// openDB is replaced by the integration build to run the suite on MySQL.
var openDB = func(t *testing.T) *gorm.DB { return testdb.New(t) }

func newFixture(t *testing.T) *fixture {
	db := openDB(t)
	return &fixture{
		db:         db,
		categories: NewCategoryRepository(db),
		locations:  NewLocationRepository(db),
		users:      NewUserRepository(db),
		ads:        NewAdRepository(db),
	}
}

func (f *fixture) user(t *testing.T, username string, locations ...string) *models.User {
	t.Helper()
	u := &models.User{FirstName: "Ivan", Username: username, Password: "secret", Age: 30}
	require.NoError(t, f.users.Create(context.Background(), u, locations))
	return u
}

func (f *fixture) category(t *testing.T, name string) *models.Category {
	t.Helper()
	c := &models.Category{Name: name}
	require.NoError(t, f.categories.Create(context.Background(), c))
	return c
}

func (f *fixture) ad(t *testing.T, name string, price int64, published bool, author *models.User, category *models.Category) *models.Ad {
	t.Helper()
	a := &models.Ad{Name: name, Price: decimal.NewFromInt(price), IsPublished: published}
	if author != nil {
		a.AuthorID = &author.ID
	}
	if category != nil {
		a.CategoryID = &category.ID
	}
	require.NoError(t, f.ads.Create(context.Background(), a))
	return a
}

func (f *fixture) countRows(t *testing.T, model interface{}, query string, args ...interface{}) int64 {
	t.Helper()
	var n int64
	require.NoError(t, f.db.Model(model).Where(query, args...).Count(&n).Error)
	return n
}

func TestCategoryRepository_CRUD(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	c := f.category(t, "Bikes")
	require.NotZero(t, c.ID)

	got, err := f.categories.GetByID(ctx, c.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Bikes", got.Name)

	got.Name = "Bicycles"
	require.NoError(t, f.categories.Update(ctx, got))

	got, err = f.categories.GetByID(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, "Bicycles", got.Name)

	missing, err := f.categories.GetByID(ctx, 9999)
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestCategoryRepository_ListOrderedByName(t *testing.T) {
	f := newFixture(t)
	for _, name := range []string{"Cars", "Animals", "Books"} {
		f.category(t, name)
	}

	categories, page, err := f.categories.GetPaginated(context.Background(), pagination.New(2), "1")
	require.NoError(t, err)

	assert.Equal(t, int64(3), page.Total)
	assert.Equal(t, 2, page.NumPages)
	require.Len(t, categories, 2)
	assert.Equal(t, "Animals", categories[0].Name)
	assert.Equal(t, "Books", categories[1].Name)
}

func TestCategoryRepository_DeleteDetachesAds(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	author := f.user(t, "seller")
	c := f.category(t, "Phones")
	a := f.ad(t, "Old phone", 100, true, author, c)

	require.NoError(t, f.categories.Delete(ctx, c.ID))

	gone, err := f.categories.GetByID(ctx, c.ID)
	require.NoError(t, err)
	assert.Nil(t, gone)

	got, err := f.ads.GetByID(ctx, a.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Nil(t, got.CategoryID)
}

func TestCategoryRepository_DeleteMissingIsNotAnError(t *testing.T) {
	f := newFixture(t)
	assert.NoError(t, f.categories.Delete(context.Background(), 12345))
}

func TestLocationRepository_GetOrCreate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	first, created, err := f.locations.GetOrCreate(ctx, "Moscow")
	require.NoError(t, err)
	assert.True(t, created)

	again, created, err := f.locations.GetOrCreate(ctx, "Moscow")
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, first.ID, again.ID)

	assert.Equal(t, int64(1), f.countRows(t, &models.Location{}, "name = ?", "Moscow"))
}

func TestUserRepository_CreateHashesPasswordAndDefaultsRole(t *testing.T) {
	f := newFixture(t)

	u := f.user(t, "ivan")

	assert.Equal(t, models.RoleMember, u.Role)
	assert.NotEqual(t, "secret", u.Password)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(u.Password), []byte("secret")))
}

func TestUserRepository_DuplicateLocationNamesLinkOnce(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	u := f.user(t, "ivan", "Moscow", "Moscow")

	assert.Equal(t, []string{"Moscow"}, u.LocationNames())
	assert.Equal(t, int64(1), f.countRows(t, &models.Location{}, "name = ?", "Moscow"))

	var links int64
	require.NoError(t, f.db.Table("user_locations").Where("user_id = ?", u.ID).Count(&links).Error)
	assert.Equal(t, int64(1), links)

	got, err := f.users.FindByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"Moscow"}, got.LocationNames())
}

func TestUserRepository_ExistingDuplicateLocationsResolveToFirst(t *testing.T) {
	f := newFixture(t)

	// No unique index on name, so duplicates can already be in the table.
	older := &models.Location{Name: "Kazan"}
	newer := &models.Location{Name: "Kazan"}
	require.NoError(t, f.db.Create(older).Error)
	require.NoError(t, f.db.Create(newer).Error)

	u := f.user(t, "ivan", "Kazan")

	require.Len(t, u.Locations, 1)
	assert.Equal(t, older.ID, u.Locations[0].ID)
	assert.Equal(t, int64(2), f.countRows(t, &models.Location{}, "name = ?", "Kazan"))
}

func TestUserRepository_UpdateAddsLocationsAndKeepsOld(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	u := f.user(t, "ivan", "Moscow")

	lastName := "Petrov"
	u.FirstName = "Pyotr"
	u.LastName = &lastName
	u.Password = "new-secret"
	u.Role = models.RoleModerator
	u.Age = 41
	require.NoError(t, f.users.Update(ctx, u, []string{"Kazan", "Moscow"}))

	got, err := f.users.FindByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "Pyotr", got.FirstName)
	require.NotNil(t, got.LastName)
	assert.Equal(t, "Petrov", *got.LastName)
	assert.Equal(t, models.RoleModerator, got.Role)
	assert.Equal(t, int16(41), got.Age)
	assert.Equal(t, []string{"Moscow", "Kazan"}, got.LocationNames())
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(got.Password), []byte("new-secret")))

	// An update naming no locations unlinks nothing.
	require.NoError(t, f.users.Update(ctx, got, nil))
	got, err = f.users.FindByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"Moscow", "Kazan"}, got.LocationNames())
}

func TestUserRepository_ListOrderedByUsername(t *testing.T) {
	f := newFixture(t)
	for _, name := range []string{"zoe", "adam", "mila"} {
		f.user(t, name, "Moscow")
	}

	users, page, err := f.users.GetPaginated(context.Background(), pagination.New(10), "")
	require.NoError(t, err)

	assert.Equal(t, int64(3), page.Total)
	require.Len(t, users, 3)
	assert.Equal(t, []string{"adam", "mila", "zoe"}, []string{users[0].Username, users[1].Username, users[2].Username})
	assert.Equal(t, []string{"Moscow"}, users[0].LocationNames())
}

func TestUserRepository_DeleteCascadesAds(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	seller := f.user(t, "seller", "Moscow")
	other := f.user(t, "other")
	sofa := f.ad(t, "Sofa", 300, true, seller, nil)
	f.ad(t, "Lamp", 20, false, seller, nil)
	kept := f.ad(t, "Table", 150, true, other, nil)
	require.NoError(t, f.ads.SetImage(ctx, sofa.ID, "images/sofa.jpg"))
	require.NoError(t, f.ads.SetImage(ctx, kept.ID, "images/table.jpg"))

	images, err := f.users.Delete(ctx, seller.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"images/sofa.jpg"}, images)

	gone, err := f.users.FindByID(ctx, seller.ID)
	require.NoError(t, err)
	assert.Nil(t, gone)

	ads, _, err := f.ads.GetPaginated(ctx, pagination.New(10), "1")
	require.NoError(t, err)
	require.Len(t, ads, 1)
	assert.Equal(t, kept.ID, ads[0].ID)

	var links int64
	require.NoError(t, f.db.Table("user_locations").Where("user_id = ?", seller.ID).Count(&links).Error)
	assert.Zero(t, links)
	// The location itself outlives the user.
	assert.Equal(t, int64(1), f.countRows(t, &models.Location{}, "name = ?", "Moscow"))
}

func TestUserRepository_AdCountOnlyPublished(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	busy := f.user(t, "busy")
	idle := f.user(t, "idle")
	f.ad(t, "one", 10, true, busy, nil)
	f.ad(t, "two", 20, true, busy, nil)
	f.ad(t, "three", 30, false, busy, nil)
	f.ad(t, "draft", 40, false, idle, nil)

	users, page, err := f.users.GetPaginatedWithAdCount(ctx, pagination.New(10), "1")
	require.NoError(t, err)
	assert.Equal(t, int64(2), page.Total)

	counts := make(map[string]int64)
	for _, u := range users {
		counts[u.Username] = u.TotalAds
	}
	assert.Equal(t, map[string]int64{"busy": 2, "idle": 0}, counts)
}

func TestAdRepository_CreateAndGet(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	author := f.user(t, "seller")
	c := f.category(t, "Bikes")
	a := &models.Ad{
		Name:        "Road bike",
		AuthorID:    &author.ID,
		Price:       decimal.NewFromInt(1500),
		Description: "Barely used",
		CategoryID:  &c.ID,
		IsPublished: true,
	}
	require.NoError(t, f.ads.Create(ctx, a))

	got, err := f.ads.GetByID(ctx, a.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Road bike", got.Name)
	assert.True(t, got.Price.Equal(decimal.NewFromInt(1500)))
	assert.Equal(t, "Barely used", got.Description)
	assert.True(t, got.IsPublished)
	require.NotNil(t, got.AuthorID)
	assert.Equal(t, author.ID, *got.AuthorID)
	require.NotNil(t, got.CategoryID)
	assert.Equal(t, c.ID, *got.CategoryID)
	assert.Nil(t, got.Image)

	missing, err := f.ads.GetByID(ctx, 424242)
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestAdRepository_ListByPriceIncludesUnpublished(t *testing.T) {
	f := newFixture(t)

	f.ad(t, "cheap", 10, true, nil, nil)
	f.ad(t, "pricey", 1000, false, nil, nil)
	f.ad(t, "middle", 500, true, nil, nil)

	ads, page, err := f.ads.GetPaginated(context.Background(), pagination.New(10), "1")
	require.NoError(t, err)

	assert.Equal(t, int64(3), page.Total)
	require.Len(t, ads, 3)
	assert.Equal(t, []string{"pricey", "middle", "cheap"}, []string{ads[0].Name, ads[1].Name, ads[2].Name})
	assert.False(t, ads[0].IsPublished)
}

func TestAdRepository_Pagination(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	pager := pagination.New(10)

	for i := 0; i < 25; i++ {
		f.ad(t, "ad", int64(i+1), true, nil, nil)
	}

	first, page, err := f.ads.GetPaginated(ctx, pager, "1")
	require.NoError(t, err)
	assert.Len(t, first, 10)
	assert.Equal(t, int64(25), page.Total)
	assert.Equal(t, 3, page.NumPages)

	last, page, err := f.ads.GetPaginated(ctx, pager, "3")
	require.NoError(t, err)
	assert.Len(t, last, 5)
	assert.Equal(t, 3, page.Number)

	clamped, page, err := f.ads.GetPaginated(ctx, pager, "42")
	require.NoError(t, err)
	assert.Len(t, clamped, 5)
	assert.Equal(t, 3, page.Number)
}

func TestAdRepository_UpdateLeavesImage(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	c := f.category(t, "Bikes")
	a := f.ad(t, "Bike", 100, false, nil, c)
	require.NoError(t, f.ads.SetImage(ctx, a.ID, "images/bike.jpg"))

	a.Name = "Better bike"
	a.Price = decimal.NewFromInt(250)
	a.IsPublished = true
	a.CategoryID = nil
	a.Image = nil
	require.NoError(t, f.ads.Update(ctx, a))

	got, err := f.ads.GetByID(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, "Better bike", got.Name)
	assert.True(t, got.Price.Equal(decimal.NewFromInt(250)))
	assert.True(t, got.IsPublished)
	assert.Nil(t, got.CategoryID)
	require.NotNil(t, got.Image)
	assert.Equal(t, "images/bike.jpg", *got.Image)
}

func TestAdRepository_Delete(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	a := f.ad(t, "Bike", 100, true, nil, nil)
	require.NoError(t, f.ads.SetImage(ctx, a.ID, "images/bike.jpg"))

	images, err := f.ads.Delete(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"images/bike.jpg"}, images)

	images, err = f.ads.Delete(ctx, a.ID)
	require.NoError(t, err)
	assert.Empty(t, images)

	got, err := f.ads.GetByID(ctx, a.ID)
	require.NoError(t, err)
	assert.Nil(t, got)
}
