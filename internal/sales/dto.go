package sales

import (
	"time"

	"github.com/angelmondragon/directsales-backend/internal/clients"
	"github.com/angelmondragon/directsales-backend/pkg/db/models"
	"github.com/angelmondragon/directsales-backend/pkg/enums"
	"github.com/angelmondragon/directsales-backend/pkg/types"
	"github.com/google/uuid"
)

// LineInput is one requested line. Duplicate products stay separate lines.
type LineInput struct {
	ProductID uuid.UUID
	Quantity  int
}

// RecordSaleInput references an existing client or carries a new one, never both.
type RecordSaleInput struct {
	ConsultantID uuid.UUID
	ClientID     *uuid.UUID
	NewClient    *clients.CreateInput
	Lines        []LineInput
	PaymentPlan  enums.PaymentPlan
}

type RecordSaleResult struct {
	SaleID        uuid.UUID           `json:"sale_id"`
	ClientID      uuid.UUID           `json:"client_id"`
	TotalCents    int64               `json:"-"`
	TotalAmount   string              `json:"total_amount"`
	PaymentStatus enums.PaymentStatus `json:"payment_status"`
}

type LineItemDTO struct {
	LineIndex   int       `json:"line_index"`
	ProductID   uuid.UUID `json:"product_id"`
	ProductName string    `json:"product_name"`
	Quantity    int       `json:"quantity"`
	UnitPrice   string    `json:"unit_price"`
	LineTotal   string    `json:"line_total"`
}

type SaleDTO struct {
	ID                   uuid.UUID                  `json:"id"`
	ConsultantID         uuid.UUID                  `json:"consultant_id"`
	ClientID             uuid.UUID                  `json:"client_id"`
	TotalAmount          string                     `json:"total_amount"`
	PaymentPlan          enums.PaymentPlan          `json:"payment_plan"`
	PaymentStatus        enums.PaymentStatus        `json:"payment_status"`
	ReconciliationStatus enums.ReconciliationStatus `json:"reconciliation_status"`
	PaidAt               *time.Time                 `json:"paid_at,omitempty"`
	CreatedAt            time.Time                  `json:"created_at"`
	Items                []LineItemDTO              `json:"items,omitempty"`
}

type SaleListDTO struct {
	Sales      []SaleDTO `json:"sales"`
	NextCursor string    `json:"next_cursor,omitempty"`
}

// RetryResult reports which owed decrements were applied by a retry.
type RetryResult struct {
	SaleID               uuid.UUID                  `json:"sale_id"`
	Applied              []uuid.UUID                `json:"applied_products"`
	StillPending         []uuid.UUID                `json:"pending_products"`
	ReconciliationStatus enums.ReconciliationStatus `json:"reconciliation_status"`
}

func toSaleDTO(s *models.Sale) SaleDTO {
	dto := SaleDTO{
		ID:                   s.ID,
		ConsultantID:         s.ConsultantID,
		ClientID:             s.ClientID,
		TotalAmount:          types.FormatCents(s.TotalAmountCents),
		PaymentPlan:          s.PaymentPlan,
		PaymentStatus:        s.PaymentStatus,
		ReconciliationStatus: s.ReconciliationStatus,
		PaidAt:               s.PaidAt,
		CreatedAt:            s.CreatedAt,
	}
	for _, item := range s.Items {
		dto.Items = append(dto.Items, LineItemDTO{
			LineIndex:   item.LineIndex,
			ProductID:   item.ProductID,
			ProductName: item.ProductName,
			Quantity:    item.Quantity,
			UnitPrice:   types.FormatCents(item.UnitPriceCents),
			LineTotal:   types.FormatCents(item.LineTotalCents),
		})
	}
	return dto
}

func toSaleListDTO(rows []models.Sale, next string) *SaleListDTO {
	out := &SaleListDTO{Sales: make([]SaleDTO, 0, len(rows)), NextCursor: next}
	for i := range rows {
		out.Sales = append(out.Sales, toSaleDTO(&rows[i]))
	}
	return out
}
