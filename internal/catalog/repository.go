package catalog

import (
	"context"
	"errors"

	"github.com/angelmondragon/directsales-backend/pkg/db/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ErrProductNotFound is returned when no product matches the id.
var ErrProductNotFound = errors.New("product not found")

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{db: tx}
}

func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	var product models.Product
	err := r.db.WithContext(ctx).First(&product, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrProductNotFound
	}
	if err != nil {
		return nil, err
	}
	return &product, nil
}

// ListActive returns sellable products ordered by name.
func (r *Repository) ListActive(ctx context.Context, category string) ([]models.Product, error) {
	query := r.db.WithContext(ctx).Where("is_active = ?", true)
	if category != "" {
		query = query.Where("category = ?", category)
	}
	var products []models.Product
	if err := query.Order("name ASC").Order("id ASC").Find(&products).Error; err != nil {
		return nil, err
	}
	return products, nil
}

func (r *Repository) Create(ctx context.Context, product *models.Product) error {
	return r.db.WithContext(ctx).Create(product).Error
}

// UpdatePrice changes the current list price. Recorded sales keep their frozen price.
func (r *Repository) UpdatePrice(ctx context.Context, id uuid.UUID, priceCents int64) error {
	res := r.db.WithContext(ctx).
		Model(&models.Product{}).
		Where("id = ?", id).
		Update("unit_price_cents", priceCents)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrProductNotFound
	}
	return nil
}
