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
	"github.com/google/uuid"
	"go.uber.org/multierr"
	"gorm.io/gorm"
)

// ReconcileReport summarizes one pass over owed inventory adjustments.
type ReconcileReport struct {
	Scanned      int
	Applied      int
	StillShort   int
	SalesCleared int
}

// RetryInventory re-applies the owed decrements of one sale. A row is marked
// applied only in the transaction that decrements it, so repeating the call is safe.
func (s *service) RetryInventory(ctx context.Context, consultantID, saleID uuid.UUID) (*RetryResult, error) {
	sale, err := s.ledger.FindByID(ctx, consultantID, saleID)
	if err != nil {
		return nil, mapLedgerErr(err, "load sale")
	}
	pending, err := s.ledger.PendingAdjustmentsForSale(ctx, saleID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load pending adjustments")
	}

	result := &RetryResult{
		SaleID:               saleID,
		Applied:              []uuid.UUID{},
		StillPending:         []uuid.UUID{},
		ReconciliationStatus: sale.ReconciliationStatus,
	}
	var errs error
	for _, adj := range pending {
		if err := s.applyAdjustment(ctx, adj); err != nil {
			result.StillPending = append(result.StillPending, adj.ProductID)
			if !errors.Is(err, inventory.ErrInsufficientStock) {
				errs = multierr.Append(errs, err)
			}
			continue
		}
		result.Applied = append(result.Applied, adj.ProductID)
	}

	if len(result.StillPending) == 0 {
		cleared, err := s.clearIfSettled(ctx, sale.ID, sale.ReconciliationStatus)
		errs = multierr.Append(errs, err)
		if cleared {
			result.ReconciliationStatus = enums.ReconciliationOK
		}
	}
	if errs != nil && len(result.Applied) == 0 && len(result.StillPending) > 0 {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, errs, "retry inventory")
	}
	if errs != nil {
		s.warn(ctx, saleID, "inventory retry finished with errors", errs)
	}
	return result, nil
}

// ReconcileAdjustments retries pending adjustments across all sales. Rows
// still short on stock stay pending; other failures are combined.
func (s *service) ReconcileAdjustments(ctx context.Context, limit, maxAttempts int) (ReconcileReport, error) {
	var report ReconcileReport
	pending, err := s.ledger.PendingAdjustments(ctx, limit, maxAttempts)
	if err != nil {
		return report, fmt.Errorf("load pending adjustments: %w", err)
	}
	report.Scanned = len(pending)

	var errs error
	touched := map[uuid.UUID]struct{}{}
	failed := map[uuid.UUID]struct{}{}
	for _, adj := range pending {
		if err := ctx.Err(); err != nil {
			return report, multierr.Append(errs, err)
		}
		err := s.applyAdjustment(ctx, adj)
		switch {
		case err == nil:
			report.Applied++
			touched[adj.SaleID] = struct{}{}
		case errors.Is(err, inventory.ErrInsufficientStock):
			report.StillShort++
			failed[adj.SaleID] = struct{}{}
		default:
			errs = multierr.Append(errs, fmt.Errorf("adjustment %s: %w", adj.ID, err))
			failed[adj.SaleID] = struct{}{}
		}
	}

	for saleID := range touched {
		if _, ok := failed[saleID]; ok {
			continue
		}
		cleared, err := s.clearIfSettled(ctx, saleID, enums.ReconciliationInventoryPending)
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("sale %s: %w", saleID, err))
			continue
		}
		if cleared {
			report.SalesCleared++
		}
	}
	return report, errs
}

// FlagOrphans marks headers without line items once the grace period passed.
func (s *service) FlagOrphans(ctx context.Context, grace time.Duration, limit int) (int, error) {
	candidates, err := s.ledger.FindOrphanCandidates(ctx, s.now().Add(-grace), limit)
	if err != nil {
		return 0, fmt.Errorf("find orphan candidates: %w", err)
	}
	var (
		errs    error
		flagged int
	)
	for _, sale := range candidates {
		if err := s.ledger.SetReconciliationStatus(ctx, sale.ID, enums.ReconciliationOrphaned); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("sale %s: %w", sale.ID, err))
			continue
		}
		flagged++
		if s.logg != nil {
			s.logg.Warn(s.logg.WithField(ctx, "sale_id", sale.ID.String()), "sale flagged as orphaned")
		}
	}
	return flagged, errs
}

// applyAdjustment decrements an owed row and marks it applied in one
// transaction. A failed decrement leaves the row pending with the attempt counted.
func (s *service) applyAdjustment(ctx context.Context, adj models.InventoryAdjustment) error {
	saleID := adj.SaleID
	_, err := s.ledger.ApplyAdjustment(ctx, adj.ID, s.now(), func(tx *gorm.DB) error {
		_, err := s.inventory.DecrementTx(ctx, tx, adj.ConsultantID, adj.ProductID, adj.Quantity, &saleID, enums.StockMovementSaleRetry)
		return err
	})
	if err == nil {
		return nil
	}
	if recordErr := s.ledger.RecordAdjustmentFailure(ctx, adj.ID, err.Error()); recordErr != nil {
		return fmt.Errorf("record failed attempt (%v): %w", err, recordErr)
	}
	return err
}

// clearIfSettled resets an inventory_pending sale to ok once nothing is owed.
func (s *service) clearIfSettled(ctx context.Context, saleID uuid.UUID, current enums.ReconciliationStatus) (bool, error) {
	if current != enums.ReconciliationInventoryPending {
		return false, nil
	}
	remaining, err := s.ledger.CountPendingAdjustments(ctx, saleID)
	if err != nil {
		return false, err
	}
	if remaining > 0 {
		return false, nil
	}
	if err := s.ledger.SetReconciliationStatus(ctx, saleID, enums.ReconciliationOK); err != nil {
		return false, err
	}
	return true, nil
}
