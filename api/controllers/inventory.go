package controllers

import (
	"net/http"

	"github.com/angelmondragon/directsales-backend/api/responses"
	"github.com/angelmondragon/directsales-backend/api/validators"
	"github.com/angelmondragon/directsales-backend/internal/inventory"
	"github.com/angelmondragon/directsales-backend/pkg/logger"
)

type restockRequest struct {
	Quantity    int  `json:"quantity" validate:"required,min=1"`
	MinStockQty *int `json:"min_stock_qty,omitempty" validate:"omitempty,min=0"`
}

func ListInventory(svc inventory.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, unavailable("inventory service"))
			return
		}
		owner, err := consultantID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		items, err := svc.List(r.Context(), owner)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, items)
	}
}

func ListLowStock(svc inventory.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, unavailable("inventory service"))
			return
		}
		owner, err := consultantID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		items, err := svc.ListLowStock(r.Context(), owner)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, items)
	}
}

// RestockInventory adds units to the consultant's stock of one product.
func RestockInventory(svc inventory.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, unavailable("inventory service"))
			return
		}
		owner, err := consultantID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		productID, err := validators.ParseUUIDParam(r, "productId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body restockRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.Restock(r.Context(), inventory.RestockInput{
			ConsultantID: owner,
			ProductID:    productID,
			Quantity:     body.Quantity,
			MinStockQty:  body.MinStockQty,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}
