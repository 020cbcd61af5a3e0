package models

type Category struct {
	ID   uint   `gorm:"primaryKey"`
	Name string `gorm:"size:150;not null"`
}
