package controllers

import (
	"net/http"
	"strings"

	"github.com/angelmondragon/directsales-backend/api/responses"
	"github.com/angelmondragon/directsales-backend/api/validators"
	"github.com/angelmondragon/directsales-backend/internal/catalog"
	pkgerrors "github.com/angelmondragon/directsales-backend/pkg/errors"
	"github.com/angelmondragon/directsales-backend/pkg/logger"
	"github.com/angelmondragon/directsales-backend/pkg/types"
)

type createProductRequest struct {
	Name      string `json:"name" validate:"required,max=200"`
	Category  string `json:"category" validate:"required,max=100"`
	UnitPrice string `json:"unit_price" validate:"required"`
}

type updatePriceRequest struct {
	UnitPrice string `json:"unit_price" validate:"required"`
}

// ListProducts returns the active catalog, optionally filtered by ?category=.
func ListProducts(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, unavailable("catalog service"))
			return
		}
		products, err := svc.ListProducts(r.Context(), validators.SanitizeString(r.URL.Query().Get("category"), 100))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, products)
	}
}

func GetProduct(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, unavailable("catalog service"))
			return
		}
		id, err := validators.ParseUUIDParam(r, "productId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		product, err := svc.GetProduct(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, product)
	}
}

// AdminCreateProduct adds a product to the catalog.
func AdminCreateProduct(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, unavailable("catalog service"))
			return
		}

		var body createProductRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		cents, err := parsePrice(body.UnitPrice)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		product, err := svc.CreateProduct(r.Context(), catalog.CreateProductInput{
			Name:       strings.TrimSpace(body.Name),
			Category:   strings.TrimSpace(body.Category),
			PriceCents: cents,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, product)
	}
}

// AdminUpdateProductPrice changes the list price. Recorded sales keep the
// price they were sold at.
func AdminUpdateProductPrice(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, unavailable("catalog service"))
			return
		}
		id, err := validators.ParseUUIDParam(r, "productId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body updatePriceRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		cents, err := parsePrice(body.UnitPrice)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		product, err := svc.UpdatePrice(r.Context(), id, cents)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, product)
	}
}

func parsePrice(raw string) (int64, error) {
	cents, err := types.ParseAmount(raw)
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid unit_price").
			WithDetails(map[string]string{"unit_price": err.Error()})
	}
	return cents, nil
}
