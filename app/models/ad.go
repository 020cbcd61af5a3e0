package models

import "github.com/shopspring/decimal"

type Ad struct {
	ID          uint            `gorm:"primaryKey"`
	Name        string          `gorm:"size:200;not null"`
	AuthorID    *uint           `gorm:"index"`
	Author      *User           `gorm:"foreignKey:AuthorID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	Price       decimal.Decimal `gorm:"type:decimal(10,0);not null"`
	Description string          `gorm:"type:text"`
	Image       *string         `gorm:"size:255"`
	CategoryID  *uint           `gorm:"index"`
	Category    *Category       `gorm:"foreignKey:CategoryID;constraint:OnUpdate:CASCADE,OnDelete:SET NULL;"`
	IsPublished bool            `gorm:"not null"`
}
