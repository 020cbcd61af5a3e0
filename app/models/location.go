package models

import "github.com/shopspring/decimal"

// Location has no unique index on Name. Lookups by name treat it as a key
// and resolve duplicates to the lowest id.
type Location struct {
	ID   uint                `gorm:"primaryKey"`
	Name string              `gorm:"size:100;not null;index"`
	Lat  decimal.NullDecimal `gorm:"type:decimal(8,6)"`
	Lng  decimal.NullDecimal `gorm:"type:decimal(8,6)"`
}
