package models

type User struct {
	ID        uint       `gorm:"primaryKey"`
	FirstName string     `gorm:"size:50;not null"`
	LastName  *string    `gorm:"size:50"`
	Username  string     `gorm:"size:50;not null;index"`
	Password  string     `gorm:"size:255;not null"`
	Role      string     `gorm:"size:10;not null;default:member"`
	Age       int16      `gorm:"not null"`
	Locations []Location `gorm:"many2many:user_locations;constraint:OnDelete:CASCADE;"`
}

const (
	RoleMember    = "member"
	RoleModerator = "moderator"
	RoleAdmin     = "admin"
)

// LocationNames returns the names of the user's locations in load order.
func (u *User) LocationNames() []string {
	names := make([]string, 0, len(u.Locations))
	for _, loc := range u.Locations {
		names = append(names, loc.Name)
	}
	return names
}

// UserAdCount is a user annotated with the number of published ads they own.
type UserAdCount struct {
	User
	TotalAds int64
}
