package sales

import (
	"context"
	"errors"
	"time"

	"github.com/angelmondragon/directsales-backend/pkg/db/models"
	"github.com/angelmondragon/directsales-backend/pkg/enums"
	"github.com/angelmondragon/directsales-backend/pkg/pagination"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ErrSaleNotFound is returned when the sale does not exist for the consultant.
var ErrSaleNotFound = errors.New("sale not found")

// ListFilter narrows sale listings.
type ListFilter struct {
	PaymentStatus *enums.PaymentStatus
	ClientID      *uuid.UUID
}

// Repository is the sale ledger: headers, line items and owed inventory adjustments.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) InsertHeader(ctx context.Context, sale *models.Sale) error {
	return r.db.WithContext(ctx).Omit("Items").Create(sale).Error
}

func (r *Repository) InsertLineItems(ctx context.Context, items []models.SaleLineItem) error {
	if len(items) == 0 {
		return errors.New("no line items")
	}
	return r.db.WithContext(ctx).Create(&items).Error
}

// MarkPaid moves a pending sale to paid. It reports whether this call made the transition.
func (r *Repository) MarkPaid(ctx context.Context, consultantID, saleID uuid.UUID, at time.Time) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Sale{}).
		Where("id = ? AND consultant_id = ? AND payment_status = ?", saleID, consultantID, enums.PaymentStatusPending).
		Updates(map[string]any{
			"payment_status": enums.PaymentStatusPaid,
			"paid_at":        at,
			"updated_at":     at,
		})
	if res.Error != nil {
		return false, res.Error
	}
	if res.RowsAffected == 1 {
		return true, nil
	}
	if _, err := r.FindByID(ctx, consultantID, saleID); err != nil {
		return false, err
	}
	return false, nil
}

// FindByID loads a consultant's sale with its line items in line order.
func (r *Repository) FindByID(ctx context.Context, consultantID, saleID uuid.UUID) (*models.Sale, error) {
	var sale models.Sale
	err := r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("line_index ASC") }).
		Where("id = ? AND consultant_id = ?", saleID, consultantID).
		First(&sale).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrSaleNotFound
	}
	if err != nil {
		return nil, err
	}
	return &sale, nil
}

func (r *Repository) List(ctx context.Context, consultantID uuid.UUID, params pagination.Params, filter ListFilter) ([]models.Sale, string, error) {
	query := r.db.WithContext(ctx).Where("consultant_id = ?", consultantID)
	if filter.PaymentStatus != nil {
		query = query.Where("payment_status = ?", *filter.PaymentStatus)
	}
	if filter.ClientID != nil {
		query = query.Where("client_id = ?", *filter.ClientID)
	}
	return r.page(query, params)
}

// ListByReconciliationStatus pages sales across consultants, for admins.
func (r *Repository) ListByReconciliationStatus(ctx context.Context, status enums.ReconciliationStatus, params pagination.Params) ([]models.Sale, string, error) {
	return r.page(r.db.WithContext(ctx).Where("reconciliation_status = ?", status), params)
}

func (r *Repository) page(query *gorm.DB, params pagination.Params) ([]models.Sale, string, error) {
	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, "", err
	}
	if cursor != nil {
		query = query.Where("(created_at < ?) OR (created_at = ? AND id < ?)", cursor.CreatedAt, cursor.CreatedAt, cursor.ID)
	}
	var rows []models.Sale
	if err := query.
		Order("created_at DESC").
		Order("id DESC").
		Limit(pagination.LimitWithBuffer(params.Limit)).
		Find(&rows).Error; err != nil {
		return nil, "", err
	}
	page, next := pagination.Page(rows, params.Limit, func(s models.Sale) pagination.Cursor {
		return pagination.Cursor{CreatedAt: s.CreatedAt, ID: s.ID}
	})
	return page, next, nil
}

// FindOrphanCandidates returns headers created before olderThan that still
// have no line items and have not been flagged yet.
func (r *Repository) FindOrphanCandidates(ctx context.Context, olderThan time.Time, limit int) ([]models.Sale, error) {
	var rows []models.Sale
	err := r.db.WithContext(ctx).
		Where("created_at < ?", olderThan).
		Where("reconciliation_status = ?", enums.ReconciliationOK).
		Where("NOT EXISTS (SELECT 1 FROM sale_line_items sli WHERE sli.sale_id = sales.id)").
		Order("created_at ASC").
		Limit(limit).
		Find(&rows).Error
	return rows, err
}

func (r *Repository) SetReconciliationStatus(ctx context.Context, saleID uuid.UUID, status enums.ReconciliationStatus) error {
	return r.db.WithContext(ctx).
		Model(&models.Sale{}).
		Where("id = ?", saleID).
		Updates(map[string]any{
			"reconciliation_status": status,
			"updated_at":            time.Now().UTC(),
		}).Error
}

func (r *Repository) InsertAdjustments(ctx context.Context, adjustments []models.InventoryAdjustment) error {
	if len(adjustments) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&adjustments).Error
}

// PendingAdjustmentsForSale lists owed decrements of one sale.
func (r *Repository) PendingAdjustmentsForSale(ctx context.Context, saleID uuid.UUID) ([]models.InventoryAdjustment, error) {
	var rows []models.InventoryAdjustment
	err := r.db.WithContext(ctx).
		Where("sale_id = ? AND status = ?", saleID, enums.AdjustmentStatusPending).
		Order("created_at ASC").
		Find(&rows).Error
	return rows, err
}

// PendingAdjustments lists owed decrements across sales that still have attempts left.
func (r *Repository) PendingAdjustments(ctx context.Context, limit, maxAttempts int) ([]models.InventoryAdjustment, error) {
	query := r.db.WithContext(ctx).Where("status = ?", enums.AdjustmentStatusPending)
	if maxAttempts > 0 {
		query = query.Where("attempts < ?", maxAttempts)
	}
	var rows []models.InventoryAdjustment
	err := query.Order("created_at ASC").Limit(limit).Find(&rows).Error
	return rows, err
}

// ApplyAdjustment claims a pending row and runs apply in the same
// transaction. A failed apply rolls the claim back, so the row stays pending.
// It reports false when another caller already applied the row.
func (r *Repository) ApplyAdjustment(ctx context.Context, id uuid.UUID, at time.Time, apply func(tx *gorm.DB) error) (bool, error) {
	claimed := false
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.InventoryAdjustment{}).
			Where("id = ? AND status = ?", id, enums.AdjustmentStatusPending).
			Updates(map[string]any{
				"status":     enums.AdjustmentStatusApplied,
				"applied_at": at,
				"attempts":   gorm.Expr("attempts + 1"),
				"updated_at": at,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return nil
		}
		if err := apply(tx); err != nil {
			return err
		}
		claimed = true
		return nil
	})
	if err != nil {
		return false, err
	}
	return claimed, nil
}

// RecordAdjustmentFailure counts a failed attempt on a row that is still pending.
func (r *Repository) RecordAdjustmentFailure(ctx context.Context, id uuid.UUID, cause string) error {
	return r.db.WithContext(ctx).
		Model(&models.InventoryAdjustment{}).
		Where("id = ? AND status = ?", id, enums.AdjustmentStatusPending).
		Updates(map[string]any{
			"attempts":   gorm.Expr("attempts + 1"),
			"last_error": cause,
			"updated_at": time.Now().UTC(),
		}).Error
}

func (r *Repository) CountPendingAdjustments(ctx context.Context, saleID uuid.UUID) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).
		Model(&models.InventoryAdjustment{}).
		Where("sale_id = ? AND status = ?", saleID, enums.AdjustmentStatusPending).
		Count(&n).Error
	return n, err
}
