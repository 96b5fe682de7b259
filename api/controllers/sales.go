package controllers

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/angelmondragon/directsales-backend/api/responses"
	"github.com/angelmondragon/directsales-backend/api/validators"
	"github.com/angelmondragon/directsales-backend/internal/sales"
	"github.com/angelmondragon/directsales-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/directsales-backend/pkg/errors"
	"github.com/angelmondragon/directsales-backend/pkg/logger"
)

type saleLineRequest struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

type recordSaleRequest struct {
	ClientID    *string           `json:"client_id,omitempty"`
	NewClient   *clientRequest    `json:"new_client,omitempty"`
	Lines       []saleLineRequest `json:"lines"`
	PaymentPlan string            `json:"payment_plan"`
}

// toInput converts the payload. Malformed identifiers are reported as an
// invalid sale so every RecordSale rejection carries an error kind.
func (req recordSaleRequest) toInput(owner uuid.UUID) (sales.RecordSaleInput, error) {
	input := sales.RecordSaleInput{
		ConsultantID: owner,
		PaymentPlan:  enums.PaymentPlan(strings.TrimSpace(req.PaymentPlan)),
		Lines:        make([]sales.LineInput, 0, len(req.Lines)),
	}
	if req.ClientID != nil && strings.TrimSpace(*req.ClientID) != "" {
		id, err := uuid.Parse(strings.TrimSpace(*req.ClientID))
		if err != nil {
			return input, invalidSale("client_id is not a valid id", err)
		}
		input.ClientID = &id
	}
	if req.NewClient != nil {
		client, err := req.NewClient.toInput()
		if err != nil {
			return input, invalidSale("new_client: birth_date must be YYYY-MM-DD", err)
		}
		input.NewClient = &client
	}
	for i, line := range req.Lines {
		productID, err := uuid.Parse(strings.TrimSpace(line.ProductID))
		if err != nil {
			return input, invalidSale(fmt.Sprintf("line %d: product_id is not a valid id", i), err)
		}
		if line.Quantity > sales.MaxLineQuantity {
			return input, invalidSale(fmt.Sprintf("line %d: quantity must not exceed %d", i, sales.MaxLineQuantity), nil)
		}
		input.Lines = append(input.Lines, sales.LineInput{ProductID: productID, Quantity: line.Quantity})
	}
	return input, nil
}

func invalidSale(detail string, err error) error {
	return &sales.RecordSaleError{Kind: sales.KindInvalidSaleRequest, Detail: detail, Err: err}
}

// RecordSale records a sale for the authenticated consultant. A sale whose
// inventory was only partly adjusted answers 207 with the sale id.
func RecordSale(svc sales.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, unavailable("sales service"))
			return
		}
		owner, err := consultantID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body recordSaleRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		input, err := body.toInput(owner)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.RecordSale(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, result)
	}
}

func ListSales(svc sales.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, unavailable("sales service"))
			return
		}
		owner, err := consultantID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		params, err := pageParams(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		filter, err := saleFilter(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		list, err := svc.ListSales(r.Context(), owner, params, filter)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}

func saleFilter(r *http.Request) (sales.ListFilter, error) {
	var filter sales.ListFilter
	query := r.URL.Query()
	if raw := strings.TrimSpace(query.Get("payment_status")); raw != "" {
		status, err := enums.ParsePaymentStatus(raw)
		if err != nil {
			return filter, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid payment_status").
				WithDetails(map[string]any{"field": "payment_status"})
		}
		filter.PaymentStatus = &status
	}
	if raw := strings.TrimSpace(query.Get("client_id")); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return filter, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid client_id").
				WithDetails(map[string]any{"field": "client_id"})
		}
		filter.ClientID = &id
	}
	return filter, nil
}

func GetSale(svc sales.Service, logg *logger.Logger) http.HandlerFunc {
	return saleAction(svc, logg, func(r *http.Request, owner, saleID uuid.UUID) (any, error) {
		return svc.GetSale(r.Context(), owner, saleID)
	})
}

// MarkSalePaid settles a pending sale. Repeating it is a no-op.
func MarkSalePaid(svc sales.Service, logg *logger.Logger) http.HandlerFunc {
	return saleAction(svc, logg, func(r *http.Request, owner, saleID uuid.UUID) (any, error) {
		return svc.MarkPaid(r.Context(), owner, saleID)
	})
}

// RetrySaleInventory re-applies decrements still owed by a sale.
func RetrySaleInventory(svc sales.Service, logg *logger.Logger) http.HandlerFunc {
	return saleAction(svc, logg, func(r *http.Request, owner, saleID uuid.UUID) (any, error) {
		return svc.RetryInventory(r.Context(), owner, saleID)
	})
}

func saleAction(svc sales.Service, logg *logger.Logger, run func(r *http.Request, owner, saleID uuid.UUID) (any, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, unavailable("sales service"))
			return
		}
		owner, err := consultantID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		saleID, err := validators.ParseUUIDParam(r, "saleId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		out, err := run(r, owner, saleID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, out)
	}
}
