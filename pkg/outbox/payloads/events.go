package payloads

import (
	"time"

	"github.com/google/uuid"
)

// SaleRecordedEvent is emitted once a sale header and its line items exist.
type SaleRecordedEvent struct {
	SaleID           uuid.UUID         `json:"saleId"`
	ConsultantID     uuid.UUID         `json:"consultantId"`
	ClientID         uuid.UUID         `json:"clientId"`
	TotalAmountCents int64             `json:"totalAmountCents"`
	PaymentPlan      string            `json:"paymentPlan"`
	PaymentStatus    string            `json:"paymentStatus"`
	Lines            []SaleLinePayload `json:"lines"`
	// PendingProducts lists products whose stock was not decremented yet.
	PendingProducts []uuid.UUID `json:"pendingProducts,omitempty"`
}

type SaleLinePayload struct {
	ProductID      uuid.UUID `json:"productId"`
	Quantity       int       `json:"quantity"`
	UnitPriceCents int64     `json:"unitPriceCents"`
}

// SalePaidEvent is emitted when a pending sale is marked as paid.
type SalePaidEvent struct {
	SaleID       uuid.UUID `json:"saleId"`
	ConsultantID uuid.UUID `json:"consultantId"`
	PaidAt       time.Time `json:"paidAt"`
}

// InventoryLowStockEvent fires when on-hand quantity reaches the minimum threshold.
type InventoryLowStockEvent struct {
	ConsultantID uuid.UUID `json:"consultantId"`
	ProductID    uuid.UUID `json:"productId"`
	OnHandQty    int       `json:"onHandQty"`
	MinStockQty  int       `json:"minStockQty"`
}

// InventoryRestockedEvent fires after a restock increments on-hand quantity.
type InventoryRestockedEvent struct {
	ConsultantID uuid.UUID `json:"consultantId"`
	ProductID    uuid.UUID `json:"productId"`
	Added        int       `json:"added"`
	OnHandQty    int       `json:"onHandQty"`
}
