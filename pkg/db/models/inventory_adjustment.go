package models

import (
	"time"

	"github.com/angelmondragon/directsales-backend/pkg/enums"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// InventoryAdjustment is a decrement owed by a committed sale that could not
// be applied when the sale was recorded.
type InventoryAdjustment struct {
	ID           uuid.UUID              `gorm:"column:id;type:uuid;primaryKey"`
	SaleID       uuid.UUID              `gorm:"column:sale_id;type:uuid;not null;index"`
	ConsultantID uuid.UUID              `gorm:"column:consultant_id;type:uuid;not null"`
	ProductID    uuid.UUID              `gorm:"column:product_id;type:uuid;not null"`
	Quantity     int                    `gorm:"column:quantity;not null"`
	Status       enums.AdjustmentStatus `gorm:"column:status;type:text;not null;default:pending;index"`
	Attempts     int                    `gorm:"column:attempts;not null;default:0"`
	LastError    *string                `gorm:"column:last_error"`
	AppliedAt    *time.Time             `gorm:"column:applied_at"`
	CreatedAt    time.Time              `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time              `gorm:"column:updated_at;autoUpdateTime"`
}

func (InventoryAdjustment) TableName() string { return "inventory_adjustments" }

func (a *InventoryAdjustment) BeforeCreate(*gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}
