package sales

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/angelmondragon/directsales-backend/internal/clients"
	"github.com/angelmondragon/directsales-backend/internal/inventory"
	"github.com/angelmondragon/directsales-backend/pkg/db/models"
	"github.com/angelmondragon/directsales-backend/pkg/enums"
	"github.com/angelmondragon/directsales-backend/pkg/metrics"
	"github.com/angelmondragon/directsales-backend/pkg/outbox"
	"github.com/angelmondragon/directsales-backend/pkg/outbox/payloads"
	"github.com/angelmondragon/directsales-backend/pkg/types"
	"github.com/google/uuid"
)

// MaxLineQuantity bounds a single line; quantities are stored as INTEGER.
const MaxLineQuantity = math.MaxInt32

// RecordSale validates stock, writes the header and line items, then
// decrements inventory line by line. Once the header is written the sale is
// committed; later failures are reported with its id and never undone.
//
// A *RecordSaleError is returned on failure. For PartialInventoryAdjustment
// the result is returned as well.
func (s *service) RecordSale(ctx context.Context, input RecordSaleInput) (*RecordSaleResult, error) {
	started := time.Now()
	result, saleErr := s.recordSale(ctx, input)
	s.metrics.ObserveSale(outcomeOf(saleErr), time.Since(started))
	s.logOutcome(ctx, input.ConsultantID, result, saleErr)
	if saleErr != nil {
		return result, saleErr
	}
	return result, nil
}

func (s *service) recordSale(ctx context.Context, input RecordSaleInput) (*RecordSaleResult, *RecordSaleError) {
	newClient, saleErr := validateRecordSale(input)
	if saleErr != nil {
		return nil, saleErr
	}

	client, saleErr := s.resolveClient(ctx, input, newClient)
	if saleErr != nil {
		return nil, saleErr
	}

	snapshots, saleErr := s.loadSnapshots(ctx, input.ConsultantID, input.Lines)
	if saleErr != nil {
		return nil, saleErr
	}
	if saleErr := checkStock(input.Lines, snapshots); saleErr != nil {
		return nil, saleErr
	}

	items, total, saleErr := priceLines(input.Lines, snapshots)
	if saleErr != nil {
		return nil, saleErr
	}
	status := input.PaymentPlan.InitialPaymentStatus()
	sale := &models.Sale{
		ConsultantID:         input.ConsultantID,
		ClientID:             client.ID,
		TotalAmountCents:     total,
		PaymentPlan:          input.PaymentPlan,
		PaymentStatus:        status,
		ReconciliationStatus: enums.ReconciliationOK,
	}
	if status == enums.PaymentStatusPaid {
		paidAt := s.now()
		sale.PaidAt = &paidAt
	}
	if err := s.ledger.InsertHeader(ctx, sale); err != nil {
		return nil, newSaleError(KindSalePersistFailed, "sale header could not be saved", err)
	}

	saleID := sale.ID
	for i := range items {
		items[i].SaleID = saleID
	}
	if err := s.ledger.InsertLineItems(ctx, items); err != nil {
		saleErr := newSaleError(KindSaleLineItemsPersistFailed, "sale saved without line items; inventory was not changed", err)
		saleErr.SaleID = &saleID
		return nil, saleErr
	}

	result := &RecordSaleResult{
		SaleID:        saleID,
		ClientID:      client.ID,
		TotalCents:    total,
		TotalAmount:   types.FormatCents(total),
		PaymentStatus: status,
	}

	failed, lowStock := s.decrementLines(ctx, input.ConsultantID, saleID, items)
	affected := distinctProducts(failed)
	s.publish(ctx, saleEvents(sale, items, affected, lowStock)...)

	if len(failed) == 0 {
		return result, nil
	}

	s.metrics.AddDecrementFailures(len(failed))
	s.recordOwedAdjustments(ctx, sale, failed)
	saleErr = newSaleError(KindPartialInventoryAdjustment,
		fmt.Sprintf("sale recorded; inventory not adjusted for %d line(s)", len(failed)), nil)
	saleErr.SaleID = &saleID
	saleErr.AffectedProducts = affected
	return result, saleErr
}

func validateRecordSale(input RecordSaleInput) (*clients.CreateInput, *RecordSaleError) {
	if len(input.Lines) == 0 {
		return nil, newSaleError(KindEmptySale, "a sale needs at least one line", nil)
	}
	if input.ConsultantID == uuid.Nil {
		return nil, newSaleError(KindInvalidSaleRequest, "consultant is required", nil)
	}
	for i, line := range input.Lines {
		if line.ProductID == uuid.Nil {
			return nil, newSaleError(KindInvalidSaleRequest, fmt.Sprintf("line %d: product_id is required", i), nil)
		}
		if line.Quantity <= 0 {
			return nil, newSaleError(KindInvalidSaleRequest, fmt.Sprintf("line %d: quantity must be positive", i), nil)
		}
		if line.Quantity > MaxLineQuantity {
			return nil, newSaleError(KindInvalidSaleRequest, fmt.Sprintf("line %d: quantity must not exceed %d", i, MaxLineQuantity), nil)
		}
	}
	if !input.PaymentPlan.IsValid() {
		return nil, newSaleError(KindInvalidSaleRequest, fmt.Sprintf("unknown payment plan %q", input.PaymentPlan), nil)
	}
	hasID := input.ClientID != nil && *input.ClientID != uuid.Nil
	if hasID == (input.NewClient != nil) {
		return nil, newSaleError(KindInvalidSaleRequest, "exactly one of client_id or new_client is required", nil)
	}
	if input.NewClient == nil {
		return nil, nil
	}
	normalized, problem := input.NewClient.Normalize()
	if problem != "" {
		return nil, newSaleError(KindInvalidSaleRequest, "new_client: "+problem, nil)
	}
	return &normalized, nil
}

func (s *service) resolveClient(ctx context.Context, input RecordSaleInput, newClient *clients.CreateInput) (*models.Client, *RecordSaleError) {
	if newClient != nil {
		client := newClient.ToModel(input.ConsultantID)
		if err := s.clients.Create(ctx, client); err != nil {
			return nil, newSaleError(KindClientCreateFailed, "client could not be created", err)
		}
		return client, nil
	}
	client, err := s.clients.FindForConsultant(ctx, input.ConsultantID, *input.ClientID)
	if errors.Is(err, clients.ErrClientNotFound) {
		return nil, newSaleError(KindClientNotFound, "client not found", err)
	}
	if err != nil {
		return nil, newSaleError(KindLookupFailed, "client could not be loaded", err)
	}
	return client, nil
}

// loadSnapshots reads each distinct product once.
func (s *service) loadSnapshots(ctx context.Context, consultantID uuid.UUID, lines []LineInput) (map[uuid.UUID]*inventory.Snapshot, *RecordSaleError) {
	snapshots := make(map[uuid.UUID]*inventory.Snapshot, len(lines))
	var unknown []uuid.UUID
	for _, line := range lines {
		if _, seen := snapshots[line.ProductID]; seen {
			continue
		}
		snap, err := s.inventory.GetSnapshot(ctx, consultantID, line.ProductID)
		if errors.Is(err, inventory.ErrProductNotFound) {
			snapshots[line.ProductID] = nil
			unknown = append(unknown, line.ProductID)
			continue
		}
		if err != nil {
			return nil, newSaleError(KindLookupFailed, "inventory could not be read", err)
		}
		snapshots[line.ProductID] = snap
		if !snap.IsActive {
			unknown = append(unknown, line.ProductID)
		}
	}
	if len(unknown) > 0 {
		saleErr := newSaleError(KindInvalidSaleRequest, "unknown or inactive products", nil)
		saleErr.AffectedProducts = unknown
		return nil, saleErr
	}
	return snapshots, nil
}

// checkStock compares the summed demand per product with the on-hand quantity.
// Demand saturates at MaxInt64 instead of wrapping.
func checkStock(lines []LineInput, snapshots map[uuid.UUID]*inventory.Snapshot) *RecordSaleError {
	demand := make(map[uuid.UUID]int64, len(snapshots))
	var order []uuid.UUID
	for _, line := range lines {
		current, ok := demand[line.ProductID]
		if !ok {
			order = append(order, line.ProductID)
		}
		qty := int64(line.Quantity)
		if current > math.MaxInt64-qty {
			demand[line.ProductID] = math.MaxInt64
			continue
		}
		demand[line.ProductID] = current + qty
	}
	var short []uuid.UUID
	for _, productID := range order {
		if demand[productID] > int64(snapshots[productID].OnHandQty) {
			short = append(short, productID)
		}
	}
	if len(short) == 0 {
		return nil
	}
	saleErr := newSaleError(KindInsufficientStock, fmt.Sprintf("not enough stock for %d product(s)", len(short)), nil)
	saleErr.AffectedProducts = short
	return saleErr
}

// priceLines freezes the current price into each line item. A total that
// does not fit in int64 cents is rejected before anything is written.
func priceLines(lines []LineInput, snapshots map[uuid.UUID]*inventory.Snapshot) ([]models.SaleLineItem, int64, *RecordSaleError) {
	items := make([]models.SaleLineItem, 0, len(lines))
	var total int64
	for i, line := range lines {
		snap := snapshots[line.ProductID]
		qty := int64(line.Quantity)
		if snap.UnitPriceCents < 0 || (snap.UnitPriceCents > 0 && qty > math.MaxInt64/snap.UnitPriceCents) {
			return nil, 0, newSaleError(KindInvalidSaleRequest, fmt.Sprintf("line %d: amount out of range", i), nil)
		}
		lineTotal := qty * snap.UnitPriceCents
		if total > math.MaxInt64-lineTotal {
			return nil, 0, newSaleError(KindInvalidSaleRequest, "sale total out of range", nil)
		}
		total += lineTotal
		items = append(items, models.SaleLineItem{
			LineIndex:      i,
			ProductID:      line.ProductID,
			ProductName:    snap.ProductName,
			Quantity:       line.Quantity,
			UnitPriceCents: snap.UnitPriceCents,
			LineTotalCents: lineTotal,
		})
	}
	return items, total, nil
}

type failedLine struct {
	item models.SaleLineItem
	err  error
}

// decrementLines applies every line and keeps going after a failure.
func (s *service) decrementLines(ctx context.Context, consultantID, saleID uuid.UUID, items []models.SaleLineItem) ([]failedLine, map[uuid.UUID]*models.InventoryItem) {
	var failed []failedLine
	lowStock := map[uuid.UUID]*models.InventoryItem{}
	for _, item := range items {
		updated, err := s.inventory.Decrement(ctx, consultantID, item.ProductID, item.Quantity, &saleID, enums.StockMovementSale)
		if err != nil {
			failed = append(failed, failedLine{item: item, err: err})
			continue
		}
		if updated != nil && inventory.IsLowStock(updated.OnHandQty, updated.MinStockQty) {
			lowStock[item.ProductID] = updated
		}
	}
	return failed, lowStock
}

func (s *service) recordOwedAdjustments(ctx context.Context, sale *models.Sale, failed []failedLine) {
	adjustments := make([]models.InventoryAdjustment, 0, len(failed))
	for _, line := range failed {
		cause := line.err.Error()
		adjustments = append(adjustments, models.InventoryAdjustment{
			SaleID:       sale.ID,
			ConsultantID: sale.ConsultantID,
			ProductID:    line.item.ProductID,
			Quantity:     line.item.Quantity,
			Status:       enums.AdjustmentStatusPending,
			LastError:    &cause,
		})
	}
	if err := s.ledger.InsertAdjustments(ctx, adjustments); err != nil {
		s.warn(ctx, sale.ID, "owed inventory adjustments not recorded", err)
	}
	if err := s.ledger.SetReconciliationStatus(ctx, sale.ID, enums.ReconciliationInventoryPending); err != nil {
		s.warn(ctx, sale.ID, "sale not flagged inventory_pending", err)
	}
}

func distinctProducts(failed []failedLine) []uuid.UUID {
	seen := map[uuid.UUID]struct{}{}
	var out []uuid.UUID
	for _, line := range failed {
		if _, ok := seen[line.item.ProductID]; ok {
			continue
		}
		seen[line.item.ProductID] = struct{}{}
		out = append(out, line.item.ProductID)
	}
	return out
}

func saleEvents(sale *models.Sale, items []models.SaleLineItem, pending []uuid.UUID, lowStock map[uuid.UUID]*models.InventoryItem) []outbox.DomainEvent {
	lines := make([]payloads.SaleLinePayload, 0, len(items))
	for _, item := range items {
		lines = append(lines, payloads.SaleLinePayload{
			ProductID:      item.ProductID,
			Quantity:       item.Quantity,
			UnitPriceCents: item.UnitPriceCents,
		})
	}
	actor := consultantActor(sale.ConsultantID)
	events := []outbox.DomainEvent{{
		EventType:     enums.EventSaleRecorded,
		AggregateType: enums.AggregateSale,
		AggregateID:   sale.ID,
		Actor:         actor,
		Data: payloads.SaleRecordedEvent{
			SaleID:           sale.ID,
			ConsultantID:     sale.ConsultantID,
			ClientID:         sale.ClientID,
			TotalAmountCents: sale.TotalAmountCents,
			PaymentPlan:      string(sale.PaymentPlan),
			PaymentStatus:    string(sale.PaymentStatus),
			Lines:            lines,
			PendingProducts:  pending,
		},
	}}
	for _, item := range items {
		low, ok := lowStock[item.ProductID]
		if !ok {
			continue
		}
		delete(lowStock, item.ProductID)
		events = append(events, outbox.DomainEvent{
			EventType:     enums.EventInventoryLowStock,
			AggregateType: enums.AggregateInventoryItem,
			AggregateID:   item.ProductID,
			Actor:         actor,
			Data: payloads.InventoryLowStockEvent{
				ConsultantID: sale.ConsultantID,
				ProductID:    item.ProductID,
				OnHandQty:    low.OnHandQty,
				MinStockQty:  low.MinStockQty,
			},
		})
	}
	return events
}

func outcomeOf(saleErr *RecordSaleError) string {
	if saleErr == nil {
		return metrics.OutcomeSuccess
	}
	switch saleErr.Kind {
	case KindEmptySale, KindInvalidSaleRequest, KindClientNotFound:
		return metrics.OutcomeRejected
	case KindInsufficientStock:
		return metrics.OutcomeInsufficientStock
	case KindSaleLineItemsPersistFailed:
		return metrics.OutcomeIncomplete
	case KindPartialInventoryAdjustment:
		return metrics.OutcomePartial
	default:
		return metrics.OutcomeFailed
	}
}

func (s *service) logOutcome(ctx context.Context, consultantID uuid.UUID, result *RecordSaleResult, saleErr *RecordSaleError) {
	if s.logg == nil {
		return
	}
	fields := map[string]any{"consultant_id": consultantID.String()}
	if result != nil {
		fields["sale_id"] = result.SaleID.String()
		fields["total_amount"] = result.TotalAmount
	}
	if saleErr == nil {
		s.logg.Info(s.logg.WithFields(ctx, fields), "sale recorded")
		return
	}
	fields["kind"] = string(saleErr.Kind)
	if saleErr.SaleID != nil {
		fields["sale_id"] = saleErr.SaleID.String()
	}
	if len(saleErr.AffectedProducts) > 0 {
		fields["affected_products"] = saleErr.AffectedProducts
	}
	logCtx := s.logg.WithFields(ctx, fields)
	switch saleErr.Kind {
	case KindEmptySale, KindInvalidSaleRequest, KindClientNotFound, KindInsufficientStock:
		s.logg.Info(logCtx, "sale rejected")
	case KindPartialInventoryAdjustment:
		s.logg.Warn(logCtx, "sale recorded with pending inventory")
	default:
		s.logg.Error(logCtx, "sale failed", saleErr)
	}
}

func (s *service) warn(ctx context.Context, saleID uuid.UUID, msg string, err error) {
	if s.logg == nil {
		return
	}
	s.logg.Warn(s.logg.WithFields(ctx, map[string]any{
		"sale_id": saleID.String(),
		"error":   err.Error(),
	}), msg)
}
