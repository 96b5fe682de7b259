package sales

import (
	"context"
	"errors"
	"time"

	"github.com/angelmondragon/directsales-backend/internal/clients"
	"github.com/angelmondragon/directsales-backend/internal/inventory"
	"github.com/angelmondragon/directsales-backend/pkg/db/models"
	"github.com/angelmondragon/directsales-backend/pkg/enums"
	"github.com/angelmondragon/directsales-backend/pkg/outbox"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type stubClients struct {
	createCalls int
	findCalls   int
	createErr   error
	known       map[uuid.UUID]*models.Client
}

func (s *stubClients) Create(_ context.Context, client *models.Client) error {
	s.createCalls++
	if s.createErr != nil {
		return s.createErr
	}
	if client.ID == uuid.Nil {
		client.ID = uuid.New()
	}
	return nil
}

func (s *stubClients) FindForConsultant(_ context.Context, consultantID, clientID uuid.UUID) (*models.Client, error) {
	s.findCalls++
	client, ok := s.known[clientID]
	if !ok || client.ConsultantID != consultantID {
		return nil, clients.ErrClientNotFound
	}
	return client, nil
}

func (s *stubClients) calls() int { return s.createCalls + s.findCalls }

type stubInventory struct {
	snapshotCalls  int
	decrementCalls int
	products       map[uuid.UUID]*inventory.Snapshot
	failDecrement  map[uuid.UUID]bool
	decremented    map[uuid.UUID]int
}

func newStubInventory() *stubInventory {
	return &stubInventory{
		products:      map[uuid.UUID]*inventory.Snapshot{},
		failDecrement: map[uuid.UUID]bool{},
		decremented:   map[uuid.UUID]int{},
	}
}

func (s *stubInventory) addProduct(name string, priceCents int64, onHand, minStock int) uuid.UUID {
	id := uuid.New()
	s.products[id] = &inventory.Snapshot{
		ProductID:      id,
		ProductName:    name,
		UnitPriceCents: priceCents,
		IsActive:       true,
		OnHandQty:      onHand,
		MinStockQty:    minStock,
		HasRecord:      true,
	}
	return id
}

func (s *stubInventory) GetSnapshot(_ context.Context, _, productID uuid.UUID) (*inventory.Snapshot, error) {
	s.snapshotCalls++
	snap, ok := s.products[productID]
	if !ok {
		return nil, inventory.ErrProductNotFound
	}
	copied := *snap
	return &copied, nil
}

func (s *stubInventory) Decrement(_ context.Context, consultantID, productID uuid.UUID, qty int, _ *uuid.UUID, _ enums.StockMovementReason) (*models.InventoryItem, error) {
	s.decrementCalls++
	snap, ok := s.products[productID]
	if !ok || s.failDecrement[productID] || snap.OnHandQty < qty {
		return nil, inventory.ErrInsufficientStock
	}
	snap.OnHandQty -= qty
	s.decremented[productID] += qty
	return &models.InventoryItem{
		ConsultantID: consultantID,
		ProductID:    productID,
		OnHandQty:    snap.OnHandQty,
		MinStockQty:  snap.MinStockQty,
	}, nil
}

func (s *stubInventory) DecrementTx(ctx context.Context, _ *gorm.DB, consultantID, productID uuid.UUID, qty int, saleID *uuid.UUID, reason enums.StockMovementReason) (*models.InventoryItem, error) {
	return s.Decrement(ctx, consultantID, productID, qty, saleID, reason)
}

func (s *stubInventory) calls() int { return s.snapshotCalls + s.decrementCalls }

// stubLedger implements the RecordSale writes; other Ledger methods panic via the nil embed.
type stubLedger struct {
	Ledger
	headerErr   error
	itemsErr    error
	headers     []*models.Sale
	items       []models.SaleLineItem
	adjustments []models.InventoryAdjustment
	statuses    map[uuid.UUID]enums.ReconciliationStatus
	writeCalls  int
}

func newStubLedger() *stubLedger {
	return &stubLedger{statuses: map[uuid.UUID]enums.ReconciliationStatus{}}
}

func (s *stubLedger) InsertHeader(_ context.Context, sale *models.Sale) error {
	s.writeCalls++
	if s.headerErr != nil {
		return s.headerErr
	}
	sale.ID = uuid.New()
	sale.CreatedAt = time.Now()
	s.headers = append(s.headers, sale)
	return nil
}

func (s *stubLedger) InsertLineItems(_ context.Context, items []models.SaleLineItem) error {
	s.writeCalls++
	if s.itemsErr != nil {
		return s.itemsErr
	}
	s.items = append(s.items, items...)
	return nil
}

func (s *stubLedger) InsertAdjustments(_ context.Context, adjustments []models.InventoryAdjustment) error {
	s.writeCalls++
	s.adjustments = append(s.adjustments, adjustments...)
	return nil
}

func (s *stubLedger) SetReconciliationStatus(_ context.Context, saleID uuid.UUID, status enums.ReconciliationStatus) error {
	s.writeCalls++
	s.statuses[saleID] = status
	return nil
}

func (s *stubLedger) itemsFor(saleID uuid.UUID) []models.SaleLineItem {
	var out []models.SaleLineItem
	for _, item := range s.items {
		if item.SaleID == saleID {
			out = append(out, item)
		}
	}
	return out
}

type stubEvents struct {
	events []outbox.DomainEvent
	err    error
}

func (s *stubEvents) Publish(_ context.Context, events ...outbox.DomainEvent) error {
	if s.err != nil {
		return s.err
	}
	s.events = append(s.events, events...)
	return nil
}

func (s *stubEvents) ofType(t enums.OutboxEventType) []outbox.DomainEvent {
	var out []outbox.DomainEvent
	for _, e := range s.events {
		if e.EventType == t {
			out = append(out, e)
		}
	}
	return out
}

var errBoom = errors.New("boom")
