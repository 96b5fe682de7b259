package inventory

import (
	"time"

	"github.com/angelmondragon/directsales-backend/pkg/db/models"
	"github.com/angelmondragon/directsales-backend/pkg/types"
	"github.com/google/uuid"
)

type ItemDTO struct {
	ProductID   uuid.UUID `json:"product_id"`
	ProductName string    `json:"product_name"`
	UnitPrice   string    `json:"unit_price"`
	OnHandQty   int       `json:"on_hand_qty"`
	MinStockQty int       `json:"min_stock_qty"`
	LowStock    bool      `json:"low_stock"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func toItemDTO(v ItemView) ItemDTO {
	return ItemDTO{
		ProductID:   v.ProductID,
		ProductName: v.ProductName,
		UnitPrice:   types.FormatCents(v.UnitPriceCents),
		OnHandQty:   v.OnHandQty,
		MinStockQty: v.MinStockQty,
		LowStock:    IsLowStock(v.OnHandQty, v.MinStockQty),
		UpdatedAt:   v.UpdatedAt,
	}
}

// RestockInput adds Quantity units; MinStockQty optionally resets the threshold.
type RestockInput struct {
	ConsultantID uuid.UUID
	ProductID    uuid.UUID
	Quantity     int
	MinStockQty  *int
}

type RestockResult struct {
	ProductID   uuid.UUID `json:"product_id"`
	OnHandQty   int       `json:"on_hand_qty"`
	MinStockQty int       `json:"min_stock_qty"`
}

func toRestockResult(item *models.InventoryItem) *RestockResult {
	return &RestockResult{
		ProductID:   item.ProductID,
		OnHandQty:   item.OnHandQty,
		MinStockQty: item.MinStockQty,
	}
}

// IsLowStock reports whether on-hand quantity reached the threshold.
func IsLowStock(onHand, minStock int) bool {
	return minStock > 0 && onHand <= minStock
}
