package catalog

import (
	"time"

	"github.com/angelmondragon/directsales-backend/pkg/db/models"
	"github.com/angelmondragon/directsales-backend/pkg/types"
	"github.com/google/uuid"
)

type ProductDTO struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Category  string    `json:"category"`
	UnitPrice string    `json:"unit_price"`
	IsActive  bool      `json:"is_active"`
	UpdatedAt time.Time `json:"updated_at"`
}

func toProductDTO(p models.Product) ProductDTO {
	return ProductDTO{
		ID:        p.ID,
		Name:      p.Name,
		Category:  p.Category,
		UnitPrice: types.FormatCents(p.UnitPriceCents),
		IsActive:  p.IsActive,
		UpdatedAt: p.UpdatedAt,
	}
}

// CreateProductInput is the validated admin payload for a new product.
type CreateProductInput struct {
	Name       string
	Category   string
	PriceCents int64
}
