package models

import (
	"time"

	"github.com/google/uuid"
)

// InventoryItem is a consultant's on-hand stock for one product.
type InventoryItem struct {
	ConsultantID uuid.UUID `gorm:"column:consultant_id;type:uuid;primaryKey"`
	ProductID    uuid.UUID `gorm:"column:product_id;type:uuid;primaryKey"`
	OnHandQty    int       `gorm:"column:on_hand_qty;not null;default:0;check:on_hand_qty >= 0"`
	MinStockQty  int       `gorm:"column:min_stock_qty;not null;default:0"`
	UpdatedAt    time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (InventoryItem) TableName() string { return "inventory_items" }
