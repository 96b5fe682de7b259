package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/angelmondragon/directsales-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/directsales-backend/pkg/errors"
	"github.com/google/uuid"
)

// Service exposes catalog reads for consultants and writes for admins.
type Service interface {
	ListProducts(ctx context.Context, category string) ([]ProductDTO, error)
	GetProduct(ctx context.Context, id uuid.UUID) (*ProductDTO, error)
	CreateProduct(ctx context.Context, input CreateProductInput) (*ProductDTO, error)
	UpdatePrice(ctx context.Context, id uuid.UUID, priceCents int64) (*ProductDTO, error)
}

type productStore interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
	ListActive(ctx context.Context, category string) ([]models.Product, error)
	Create(ctx context.Context, product *models.Product) error
	UpdatePrice(ctx context.Context, id uuid.UUID, priceCents int64) error
}

type service struct {
	repo productStore
}

func NewService(repo productStore) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("catalog repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) ListProducts(ctx context.Context, category string) ([]ProductDTO, error) {
	products, err := s.repo.ListActive(ctx, strings.TrimSpace(category))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list products")
	}
	out := make([]ProductDTO, 0, len(products))
	for _, p := range products {
		out = append(out, toProductDTO(p))
	}
	return out, nil
}

func (s *service) GetProduct(ctx context.Context, id uuid.UUID) (*ProductDTO, error) {
	product, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, mapProductErr(err, "load product")
	}
	dto := toProductDTO(*product)
	return &dto, nil
}

func (s *service) CreateProduct(ctx context.Context, input CreateProductInput) (*ProductDTO, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "name is required")
	}
	if input.PriceCents <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unit_price must be positive")
	}
	product := &models.Product{
		Name:           name,
		Category:       strings.TrimSpace(input.Category),
		UnitPriceCents: input.PriceCents,
		IsActive:       true,
	}
	if err := s.repo.Create(ctx, product); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create product")
	}
	dto := toProductDTO(*product)
	return &dto, nil
}

func (s *service) UpdatePrice(ctx context.Context, id uuid.UUID, priceCents int64) (*ProductDTO, error) {
	if priceCents <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unit_price must be positive")
	}
	if err := s.repo.UpdatePrice(ctx, id, priceCents); err != nil {
		return nil, mapProductErr(err, "update price")
	}
	return s.GetProduct(ctx, id)
}

func mapProductErr(err error, msg string) error {
	if errors.Is(err, ErrProductNotFound) {
		return pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, msg)
}
