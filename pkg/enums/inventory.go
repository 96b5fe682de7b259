package enums

import "fmt"

// AdjustmentStatus tracks a deferred inventory decrement.
type AdjustmentStatus string

const (
	AdjustmentStatusPending AdjustmentStatus = "pending"
	AdjustmentStatusApplied AdjustmentStatus = "applied"
)

var validAdjustmentStatuses = []AdjustmentStatus{
	AdjustmentStatusPending,
	AdjustmentStatusApplied,
}

func (a AdjustmentStatus) IsValid() bool {
	for _, candidate := range validAdjustmentStatuses {
		if candidate == a {
			return true
		}
	}
	return false
}

// StockMovementReason explains why on-hand quantity changed.
type StockMovementReason string

const (
	StockMovementSale      StockMovementReason = "sale"
	StockMovementSaleRetry StockMovementReason = "sale_retry"
	StockMovementRestock   StockMovementReason = "restock"
)

var validStockMovementReasons = []StockMovementReason{
	StockMovementSale,
	StockMovementSaleRetry,
	StockMovementRestock,
}

func (r StockMovementReason) IsValid() bool {
	for _, candidate := range validStockMovementReasons {
		if candidate == r {
			return true
		}
	}
	return false
}

// ParseStockMovementReason converts raw input into a StockMovementReason.
func ParseStockMovementReason(value string) (StockMovementReason, error) {
	for _, candidate := range validStockMovementReasons {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid stock movement reason %q", value)
}
