package models

import (
	"time"

	"github.com/angelmondragon/directsales-backend/pkg/enums"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// StockMovement is an append-only audit row for every on-hand change.
type StockMovement struct {
	ID           uuid.UUID                 `gorm:"column:id;type:uuid;primaryKey"`
	ConsultantID uuid.UUID                 `gorm:"column:consultant_id;type:uuid;not null;index:idx_stock_movements_owner"`
	ProductID    uuid.UUID                 `gorm:"column:product_id;type:uuid;not null;index:idx_stock_movements_owner"`
	Delta        int                       `gorm:"column:delta;not null"`
	QtyAfter     int                       `gorm:"column:qty_after;not null"`
	Reason       enums.StockMovementReason `gorm:"column:reason;type:text;not null"`
	SaleID       *uuid.UUID                `gorm:"column:sale_id;type:uuid"`
	CreatedAt    time.Time                 `gorm:"column:created_at;autoCreateTime"`
}

func (StockMovement) TableName() string { return "stock_movements" }

func (m *StockMovement) BeforeCreate(*gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}
