package inventory

import (
	"context"
	"errors"
	"time"

	"github.com/angelmondragon/directsales-backend/pkg/db/models"
	"github.com/angelmondragon/directsales-backend/pkg/enums"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	// ErrInsufficientStock is returned when a conditional decrement matched no row.
	ErrInsufficientStock = errors.New("insufficient stock")
	// ErrProductNotFound is returned when the snapshot product does not exist.
	ErrProductNotFound = errors.New("product not found")
)

// Snapshot is the on-hand quantity and current catalog data for one product.
// A consultant without an inventory row has OnHandQty 0.
type Snapshot struct {
	ProductID      uuid.UUID
	ProductName    string
	UnitPriceCents int64
	IsActive       bool
	OnHandQty      int
	MinStockQty    int
	HasRecord      bool
}

// ItemView is an inventory row joined with its product.
type ItemView struct {
	ProductID      uuid.UUID
	ProductName    string
	UnitPriceCents int64
	OnHandQty      int
	MinStockQty    int
	UpdatedAt      time.Time
}

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{db: tx}
}

const snapshotQuery = `
SELECT p.id AS product_id,
       p.name AS product_name,
       p.unit_price_cents,
       p.is_active,
       ii.on_hand_qty,
       ii.min_stock_qty
FROM products p
LEFT JOIN inventory_items ii ON ii.product_id = p.id AND ii.consultant_id = ?
WHERE p.id = ?
`

type snapshotRow struct {
	ProductID      uuid.UUID
	ProductName    string
	UnitPriceCents int64
	IsActive       bool
	OnHandQty      *int
	MinStockQty    *int
}

func (r *Repository) GetSnapshot(ctx context.Context, consultantID, productID uuid.UUID) (*Snapshot, error) {
	var rows []snapshotRow
	if err := r.db.WithContext(ctx).Raw(snapshotQuery, consultantID, productID).Scan(&rows).Error; err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, ErrProductNotFound
	}
	row := rows[0]
	snap := &Snapshot{
		ProductID:      row.ProductID,
		ProductName:    row.ProductName,
		UnitPriceCents: row.UnitPriceCents,
		IsActive:       row.IsActive,
	}
	if row.OnHandQty != nil {
		snap.HasRecord = true
		snap.OnHandQty = *row.OnHandQty
	}
	if row.MinStockQty != nil {
		snap.MinStockQty = *row.MinStockQty
	}
	return snap, nil
}

// Decrement subtracts qty only if enough stock is on hand, then appends a
// stock movement in the same transaction. It returns the updated row.
func (r *Repository) Decrement(ctx context.Context, consultantID, productID uuid.UUID, qty int, saleID *uuid.UUID, reason enums.StockMovementReason) (*models.InventoryItem, error) {
	if qty <= 0 {
		return nil, errors.New("decrement quantity must be positive")
	}
	var updated models.InventoryItem
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.InventoryItem{}).
			Where("consultant_id = ? AND product_id = ? AND on_hand_qty >= ?", consultantID, productID, qty).
			Updates(map[string]any{
				"on_hand_qty": gorm.Expr("on_hand_qty - ?", qty),
				"updated_at":  time.Now().UTC(),
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrInsufficientStock
		}
		if err := tx.First(&updated, "consultant_id = ? AND product_id = ?", consultantID, productID).Error; err != nil {
			return err
		}
		return tx.Create(&models.StockMovement{
			ConsultantID: consultantID,
			ProductID:    productID,
			Delta:        -qty,
			QtyAfter:     updated.OnHandQty,
			Reason:       reason,
			SaleID:       saleID,
		}).Error
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

// DecrementTx runs Decrement inside tx so the caller can commit it together
// with its own writes.
func (r *Repository) DecrementTx(ctx context.Context, tx *gorm.DB, consultantID, productID uuid.UUID, qty int, saleID *uuid.UUID, reason enums.StockMovementReason) (*models.InventoryItem, error) {
	return r.WithTx(tx).Decrement(ctx, consultantID, productID, qty, saleID, reason)
}

// Increment adds qty, creating the row on first restock. minStock, when set,
// replaces the low-stock threshold.
func (r *Repository) Increment(ctx context.Context, consultantID, productID uuid.UUID, qty int, minStock *int) (*models.InventoryItem, error) {
	if qty < 0 {
		return nil, errors.New("increment quantity must not be negative")
	}
	var updated models.InventoryItem
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		now := time.Now().UTC()
		item := models.InventoryItem{
			ConsultantID: consultantID,
			ProductID:    productID,
			OnHandQty:    qty,
			UpdatedAt:    now,
		}
		assignments := map[string]any{
			"on_hand_qty": gorm.Expr("inventory_items.on_hand_qty + ?", qty),
			"updated_at":  now,
		}
		if minStock != nil {
			item.MinStockQty = *minStock
			assignments["min_stock_qty"] = *minStock
		}
		if err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "consultant_id"}, {Name: "product_id"}},
			DoUpdates: clause.Assignments(assignments),
		}).Create(&item).Error; err != nil {
			return err
		}
		if err := tx.First(&updated, "consultant_id = ? AND product_id = ?", consultantID, productID).Error; err != nil {
			return err
		}
		if qty == 0 {
			return nil
		}
		return tx.Create(&models.StockMovement{
			ConsultantID: consultantID,
			ProductID:    productID,
			Delta:        qty,
			QtyAfter:     updated.OnHandQty,
			Reason:       enums.StockMovementRestock,
		}).Error
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

func (r *Repository) List(ctx context.Context, consultantID uuid.UUID) ([]ItemView, error) {
	return r.listViews(ctx, consultantID, false)
}

// ListLowStock returns rows at or below their minimum stock threshold.
func (r *Repository) ListLowStock(ctx context.Context, consultantID uuid.UUID) ([]ItemView, error) {
	return r.listViews(ctx, consultantID, true)
}

func (r *Repository) listViews(ctx context.Context, consultantID uuid.UUID, lowOnly bool) ([]ItemView, error) {
	query := r.db.WithContext(ctx).
		Table("inventory_items AS ii").
		Select("ii.product_id, p.name AS product_name, p.unit_price_cents, ii.on_hand_qty, ii.min_stock_qty, ii.updated_at").
		Joins("JOIN products p ON p.id = ii.product_id").
		Where("ii.consultant_id = ?", consultantID)
	if lowOnly {
		query = query.Where("ii.on_hand_qty <= ii.min_stock_qty")
	}
	var views []ItemView
	if err := query.Order("p.name ASC").Scan(&views).Error; err != nil {
		return nil, err
	}
	return views, nil
}

// ListMovements returns the most recent stock movements for a product.
func (r *Repository) ListMovements(ctx context.Context, consultantID, productID uuid.UUID, limit int) ([]models.StockMovement, error) {
	if limit <= 0 {
		limit = 50
	}
	var movements []models.StockMovement
	err := r.db.WithContext(ctx).
		Where("consultant_id = ? AND product_id = ?", consultantID, productID).
		Order("created_at DESC").
		Limit(limit).
		Find(&movements).Error
	return movements, err
}
