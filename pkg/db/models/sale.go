package models

import (
	"time"

	"github.com/angelmondragon/directsales-backend/pkg/enums"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Sale is the header row of a recorded sale.
type Sale struct {
	ID                   uuid.UUID                  `gorm:"column:id;type:uuid;primaryKey"`
	ConsultantID         uuid.UUID                  `gorm:"column:consultant_id;type:uuid;not null;index"`
	ClientID             uuid.UUID                  `gorm:"column:client_id;type:uuid;not null"`
	TotalAmountCents     int64                      `gorm:"column:total_amount_cents;not null"`
	PaymentPlan          enums.PaymentPlan          `gorm:"column:payment_plan;type:text;not null"`
	PaymentStatus        enums.PaymentStatus        `gorm:"column:payment_status;type:text;not null"`
	ReconciliationStatus enums.ReconciliationStatus `gorm:"column:reconciliation_status;type:text;not null;default:ok"`
	PaidAt               *time.Time                 `gorm:"column:paid_at"`
	CreatedAt            time.Time                  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt            time.Time                  `gorm:"column:updated_at;autoUpdateTime"`

	Items []SaleLineItem `gorm:"foreignKey:SaleID;references:ID"`
}

func (Sale) TableName() string { return "sales" }

func (s *Sale) BeforeCreate(*gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

// SaleLineItem freezes the product price at the time of the sale.
type SaleLineItem struct {
	ID             uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	SaleID         uuid.UUID `gorm:"column:sale_id;type:uuid;not null;index"`
	LineIndex      int       `gorm:"column:line_index;not null"`
	ProductID      uuid.UUID `gorm:"column:product_id;type:uuid;not null"`
	ProductName    string    `gorm:"column:product_name;not null"`
	Quantity       int       `gorm:"column:quantity;not null"`
	UnitPriceCents int64     `gorm:"column:unit_price_cents;not null"`
	LineTotalCents int64     `gorm:"column:line_total_cents;not null"`
	CreatedAt      time.Time `gorm:"column:created_at;autoCreateTime"`
}

func (SaleLineItem) TableName() string { return "sale_line_items" }

func (i *SaleLineItem) BeforeCreate(*gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}
