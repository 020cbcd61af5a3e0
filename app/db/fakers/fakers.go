package fakers

import (
	"math/rand"

	"github.com/Rakhulsr/go-classifieds/app/models"
	"github.com/go-faker/faker/v4"
	"github.com/shopspring/decimal"
)

// City is a seed location with known coordinates.
type City struct {
	Name string
	Lat  float64
	Lng  float64
}

var Cities = []City{
	{Name: "Moscow", Lat: 55.755826, Lng: 37.617300},
	{Name: "Saint Petersburg", Lat: 59.934280, Lng: 30.335099},
	{Name: "Kazan", Lat: 55.796127, Lng: 49.106405},
	{Name: "Novosibirsk", Lat: 55.008353, Lng: 82.935733},
	{Name: "Yekaterinburg", Lat: 56.838011, Lng: 60.597465},
}

var roles = []string{models.RoleMember, models.RoleMember, models.RoleMember, models.RoleModerator, models.RoleAdmin}

func CategoryFaker() *models.Category {
	return &models.Category{Name: faker.Word()}
}

// UserFaker returns an unsaved user with a plaintext password and the names
// of one or two cities to link.
func UserFaker() (*models.User, []string) {
	lastName := faker.LastName()
	user := &models.User{
		FirstName: faker.FirstName(),
		LastName:  &lastName,
		Username:  faker.Username(),
		Password:  faker.Password(),
		Role:      roles[rand.Intn(len(roles))],
		Age:       int16(18 + rand.Intn(60)),
	}

	locations := []string{Cities[rand.Intn(len(Cities))].Name}
	if rand.Intn(2) == 0 {
		locations = append(locations, Cities[rand.Intn(len(Cities))].Name)
	}
	return user, locations
}

func AdFaker(author *models.User, category *models.Category) *models.Ad {
	ad := &models.Ad{
		Name:        faker.Sentence(),
		Price:       decimal.NewFromInt(int64(100 + rand.Intn(100000))),
		Description: faker.Paragraph(),
		IsPublished: rand.Intn(4) != 0,
	}
	if author != nil {
		ad.AuthorID = &author.ID
	}
	if category != nil {
		ad.CategoryID = &category.ID
	}
	return ad
}
