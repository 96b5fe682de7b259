package inventory

import (
	"context"
	"errors"
	"fmt"

	"github.com/angelmondragon/directsales-backend/pkg/db/models"
	"github.com/angelmondragon/directsales-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/directsales-backend/pkg/errors"
	"github.com/angelmondragon/directsales-backend/pkg/logger"
	"github.com/angelmondragon/directsales-backend/pkg/outbox"
	"github.com/angelmondragon/directsales-backend/pkg/outbox/payloads"
	"github.com/google/uuid"
)

// Service exposes consultant inventory reads and restocking.
type Service interface {
	List(ctx context.Context, consultantID uuid.UUID) ([]ItemDTO, error)
	ListLowStock(ctx context.Context, consultantID uuid.UUID) ([]ItemDTO, error)
	Restock(ctx context.Context, input RestockInput) (*RestockResult, error)
}

type store interface {
	GetSnapshot(ctx context.Context, consultantID, productID uuid.UUID) (*Snapshot, error)
	Increment(ctx context.Context, consultantID, productID uuid.UUID, qty int, minStock *int) (*models.InventoryItem, error)
	List(ctx context.Context, consultantID uuid.UUID) ([]ItemView, error)
	ListLowStock(ctx context.Context, consultantID uuid.UUID) ([]ItemView, error)
}

// EventPublisher queues domain events outside any caller transaction.
type EventPublisher interface {
	Publish(ctx context.Context, events ...outbox.DomainEvent) error
}

type ServiceParams struct {
	Store           store
	Events          EventPublisher
	Logger          *logger.Logger
	DefaultMinStock int
}

type service struct {
	store           store
	events          EventPublisher
	logg            *logger.Logger
	defaultMinStock int
}

func NewService(params ServiceParams) (Service, error) {
	if params.Store == nil {
		return nil, fmt.Errorf("inventory store required")
	}
	return &service{
		store:           params.Store,
		events:          params.Events,
		logg:            params.Logger,
		defaultMinStock: params.DefaultMinStock,
	}, nil
}

func (s *service) List(ctx context.Context, consultantID uuid.UUID) ([]ItemDTO, error) {
	views, err := s.store.List(ctx, consultantID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list inventory")
	}
	return toItemDTOs(views), nil
}

func (s *service) ListLowStock(ctx context.Context, consultantID uuid.UUID) ([]ItemDTO, error) {
	views, err := s.store.ListLowStock(ctx, consultantID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list low stock")
	}
	return toItemDTOs(views), nil
}

func (s *service) Restock(ctx context.Context, input RestockInput) (*RestockResult, error) {
	if input.Quantity <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive")
	}
	if input.MinStockQty != nil && *input.MinStockQty < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "min_stock_qty must not be negative")
	}

	snap, err := s.store.GetSnapshot(ctx, input.ConsultantID, input.ProductID)
	if errors.Is(err, ErrProductNotFound) {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	}
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load inventory snapshot")
	}

	minStock := input.MinStockQty
	if minStock == nil && !snap.HasRecord && s.defaultMinStock > 0 {
		def := s.defaultMinStock
		minStock = &def
	}

	item, err := s.store.Increment(ctx, input.ConsultantID, input.ProductID, input.Quantity, minStock)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "restock inventory")
	}

	s.publish(ctx, outbox.DomainEvent{
		EventType:     enums.EventInventoryRestocked,
		AggregateType: enums.AggregateInventoryItem,
		AggregateID:   item.ProductID,
		Actor:         &outbox.ActorRef{UserID: input.ConsultantID, Role: string(enums.UserRoleConsultant)},
		Data: payloads.InventoryRestockedEvent{
			ConsultantID: input.ConsultantID,
			ProductID:    item.ProductID,
			Added:        input.Quantity,
			OnHandQty:    item.OnHandQty,
		},
	})
	return toRestockResult(item), nil
}

func (s *service) publish(ctx context.Context, events ...outbox.DomainEvent) {
	if s.events == nil {
		return
	}
	if err := s.events.Publish(ctx, events...); err != nil && s.logg != nil {
		s.logg.Warn(s.logg.WithField(ctx, "error", err.Error()), "inventory event not queued")
	}
}

func toItemDTOs(views []ItemView) []ItemDTO {
	out := make([]ItemDTO, 0, len(views))
	for _, v := range views {
		out = append(out, toItemDTO(v))
	}
	return out
}
