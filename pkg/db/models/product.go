package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Product is a catalog entry. Prices are stored in cents.
type Product struct {
	ID             uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	Name           string    `gorm:"column:name;not null"`
	Category       string    `gorm:"column:category;not null;default:''"`
	UnitPriceCents int64     `gorm:"column:unit_price_cents;not null"`
	IsActive       bool      `gorm:"column:is_active;not null"`
	CreatedAt      time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (Product) TableName() string { return "products" }

func (p *Product) BeforeCreate(*gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}
