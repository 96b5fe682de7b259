package sales

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/angelmondragon/directsales-backend/internal/inventory"
	"github.com/angelmondragon/directsales-backend/pkg/db/models"
	"github.com/angelmondragon/directsales-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/directsales-backend/pkg/errors"
	"github.com/angelmondragon/directsales-backend/pkg/logger"
	"github.com/angelmondragon/directsales-backend/pkg/metrics"
	"github.com/angelmondragon/directsales-backend/pkg/outbox"
	"github.com/angelmondragon/directsales-backend/pkg/outbox/payloads"
	"github.com/angelmondragon/directsales-backend/pkg/pagination"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Service records sales and manages their lifecycle.
type Service interface {
	RecordSale(ctx context.Context, input RecordSaleInput) (*RecordSaleResult, error)
	GetSale(ctx context.Context, consultantID, saleID uuid.UUID) (*SaleDTO, error)
	ListSales(ctx context.Context, consultantID uuid.UUID, params pagination.Params, filter ListFilter) (*SaleListDTO, error)
	MarkPaid(ctx context.Context, consultantID, saleID uuid.UUID) (*SaleDTO, error)
	RetryInventory(ctx context.Context, consultantID, saleID uuid.UUID) (*RetryResult, error)
	ListOrphaned(ctx context.Context, params pagination.Params) (*SaleListDTO, error)
	FlagOrphans(ctx context.Context, grace time.Duration, limit int) (int, error)
	ReconcileAdjustments(ctx context.Context, limit, maxAttempts int) (ReconcileReport, error)
}

// ClientDirectory resolves or creates the buyer of a sale.
type ClientDirectory interface {
	Create(ctx context.Context, client *models.Client) error
	FindForConsultant(ctx context.Context, consultantID, clientID uuid.UUID) (*models.Client, error)
}

// InventoryStore reads stock snapshots and applies conditional decrements.
type InventoryStore interface {
	GetSnapshot(ctx context.Context, consultantID, productID uuid.UUID) (*inventory.Snapshot, error)
	Decrement(ctx context.Context, consultantID, productID uuid.UUID, qty int, saleID *uuid.UUID, reason enums.StockMovementReason) (*models.InventoryItem, error)
	DecrementTx(ctx context.Context, tx *gorm.DB, consultantID, productID uuid.UUID, qty int, saleID *uuid.UUID, reason enums.StockMovementReason) (*models.InventoryItem, error)
}

// Ledger persists sale headers, line items and owed adjustments.
type Ledger interface {
	InsertHeader(ctx context.Context, sale *models.Sale) error
	InsertLineItems(ctx context.Context, items []models.SaleLineItem) error
	InsertAdjustments(ctx context.Context, adjustments []models.InventoryAdjustment) error
	SetReconciliationStatus(ctx context.Context, saleID uuid.UUID, status enums.ReconciliationStatus) error
	MarkPaid(ctx context.Context, consultantID, saleID uuid.UUID, at time.Time) (bool, error)
	FindByID(ctx context.Context, consultantID, saleID uuid.UUID) (*models.Sale, error)
	List(ctx context.Context, consultantID uuid.UUID, params pagination.Params, filter ListFilter) ([]models.Sale, string, error)
	ListByReconciliationStatus(ctx context.Context, status enums.ReconciliationStatus, params pagination.Params) ([]models.Sale, string, error)
	FindOrphanCandidates(ctx context.Context, olderThan time.Time, limit int) ([]models.Sale, error)
	PendingAdjustmentsForSale(ctx context.Context, saleID uuid.UUID) ([]models.InventoryAdjustment, error)
	PendingAdjustments(ctx context.Context, limit, maxAttempts int) ([]models.InventoryAdjustment, error)
	ApplyAdjustment(ctx context.Context, id uuid.UUID, at time.Time, apply func(tx *gorm.DB) error) (bool, error)
	RecordAdjustmentFailure(ctx context.Context, id uuid.UUID, cause string) error
	CountPendingAdjustments(ctx context.Context, saleID uuid.UUID) (int64, error)
}

// EventPublisher queues domain events in their own transaction.
type EventPublisher interface {
	Publish(ctx context.Context, events ...outbox.DomainEvent) error
}

type ServiceParams struct {
	Ledger    Ledger
	Inventory InventoryStore
	Clients   ClientDirectory
	Events    EventPublisher
	Metrics   *metrics.SalesMetrics
	Logger    *logger.Logger
	Now       func() time.Time
}

type service struct {
	ledger    Ledger
	inventory InventoryStore
	clients   ClientDirectory
	events    EventPublisher
	metrics   *metrics.SalesMetrics
	logg      *logger.Logger
	now       func() time.Time
}

func NewService(params ServiceParams) (Service, error) {
	if params.Ledger == nil {
		return nil, fmt.Errorf("sale ledger required")
	}
	if params.Inventory == nil {
		return nil, fmt.Errorf("inventory store required")
	}
	if params.Clients == nil {
		return nil, fmt.Errorf("client directory required")
	}
	now := params.Now
	if now == nil {
		now = func() time.Time { return time.Now().UTC() }
	}
	return &service{
		ledger:    params.Ledger,
		inventory: params.Inventory,
		clients:   params.Clients,
		events:    params.Events,
		metrics:   params.Metrics,
		logg:      params.Logger,
		now:       now,
	}, nil
}

func (s *service) GetSale(ctx context.Context, consultantID, saleID uuid.UUID) (*SaleDTO, error) {
	sale, err := s.ledger.FindByID(ctx, consultantID, saleID)
	if err != nil {
		return nil, mapLedgerErr(err, "load sale")
	}
	dto := toSaleDTO(sale)
	return &dto, nil
}

func (s *service) ListSales(ctx context.Context, consultantID uuid.UUID, params pagination.Params, filter ListFilter) (*SaleListDTO, error) {
	rows, next, err := s.ledger.List(ctx, consultantID, params, filter)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "list sales")
	}
	return toSaleListDTO(rows, next), nil
}

func (s *service) ListOrphaned(ctx context.Context, params pagination.Params) (*SaleListDTO, error) {
	rows, next, err := s.ledger.ListByReconciliationStatus(ctx, enums.ReconciliationOrphaned, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "list orphaned sales")
	}
	return toSaleListDTO(rows, next), nil
}

// MarkPaid settles a pending sale. Marking an already paid sale is a no-op.
func (s *service) MarkPaid(ctx context.Context, consultantID, saleID uuid.UUID) (*SaleDTO, error) {
	at := s.now()
	transitioned, err := s.ledger.MarkPaid(ctx, consultantID, saleID, at)
	if err != nil {
		return nil, mapLedgerErr(err, "mark sale paid")
	}
	if transitioned {
		s.publish(ctx, outbox.DomainEvent{
			EventType:     enums.EventSalePaid,
			AggregateType: enums.AggregateSale,
			AggregateID:   saleID,
			Actor:         consultantActor(consultantID),
			Data: payloads.SalePaidEvent{
				SaleID:       saleID,
				ConsultantID: consultantID,
				PaidAt:       at,
			},
		})
	}
	return s.GetSale(ctx, consultantID, saleID)
}

func (s *service) publish(ctx context.Context, events ...outbox.DomainEvent) {
	if s.events == nil || len(events) == 0 {
		return
	}
	if err := s.events.Publish(ctx, events...); err != nil && s.logg != nil {
		s.logg.Warn(s.logg.WithField(ctx, "error", err.Error()), "sale events not queued")
	}
}

func consultantActor(consultantID uuid.UUID) *outbox.ActorRef {
	return &outbox.ActorRef{UserID: consultantID, Role: string(enums.UserRoleConsultant)}
}

func mapLedgerErr(err error, msg string) error {
	if errors.Is(err, ErrSaleNotFound) {
		return pkgerrors.New(pkgerrors.CodeNotFound, "sale not found")
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, msg)
}
