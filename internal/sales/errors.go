package sales

import (
	"fmt"

	pkgerrors "github.com/angelmondragon/directsales-backend/pkg/errors"
	"github.com/google/uuid"
)

// ErrorKind classifies how RecordSale failed and how far it got.
type ErrorKind string

const (
	KindEmptySale                  ErrorKind = "EmptySale"
	KindInvalidSaleRequest         ErrorKind = "InvalidSaleRequest"
	KindClientNotFound             ErrorKind = "ClientNotFound"
	KindClientCreateFailed         ErrorKind = "ClientCreateFailed"
	KindLookupFailed               ErrorKind = "LookupFailed"
	KindInsufficientStock          ErrorKind = "InsufficientStock"
	KindSalePersistFailed          ErrorKind = "SalePersistFailed"
	KindSaleLineItemsPersistFailed ErrorKind = "SaleLineItemsPersistFailed"
	KindPartialInventoryAdjustment ErrorKind = "PartialInventoryAdjustment"
)

// RecordSaleError is the typed failure of RecordSale. SaleID is set once the
// header has been written; AffectedProducts lists the products that caused
// the failure.
type RecordSaleError struct {
	Kind             ErrorKind
	Detail           string
	SaleID           *uuid.UUID
	AffectedProducts []uuid.UUID
	Err              error
}

func (e *RecordSaleError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Detail, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Detail)
}

func (e *RecordSaleError) Unwrap() error {
	return e.Err
}

func (e *RecordSaleError) ErrorKindName() string {
	return string(e.Kind)
}

// ErrorDetails is the error.details payload of a failed sale.
type ErrorDetails struct {
	ErrorKind        ErrorKind   `json:"error_kind"`
	Detail           string      `json:"detail"`
	SaleID           *uuid.UUID  `json:"sale_id,omitempty"`
	AffectedProducts []uuid.UUID `json:"affected_products,omitempty"`
}

var codeByKind = map[ErrorKind]pkgerrors.Code{
	KindEmptySale:                  pkgerrors.CodeValidation,
	KindInvalidSaleRequest:         pkgerrors.CodeValidation,
	KindClientNotFound:             pkgerrors.CodeNotFound,
	KindClientCreateFailed:         pkgerrors.CodeInternal,
	KindLookupFailed:               pkgerrors.CodeDependency,
	KindInsufficientStock:          pkgerrors.CodeInsufficientStock,
	KindSalePersistFailed:          pkgerrors.CodeInternal,
	KindSaleLineItemsPersistFailed: pkgerrors.CodeSaleIncomplete,
	KindPartialInventoryAdjustment: pkgerrors.CodeInventoryPartial,
}

// APIError maps the failure onto the shared error envelope.
func (e *RecordSaleError) APIError() *pkgerrors.Error {
	code, ok := codeByKind[e.Kind]
	if !ok {
		code = pkgerrors.CodeInternal
	}
	return pkgerrors.Wrap(code, e.Err, e.Detail).WithDetails(ErrorDetails{
		ErrorKind:        e.Kind,
		Detail:           e.Detail,
		SaleID:           e.SaleID,
		AffectedProducts: e.AffectedProducts,
	})
}

func newSaleError(kind ErrorKind, detail string, err error) *RecordSaleError {
	return &RecordSaleError{Kind: kind, Detail: detail, Err: err}
}
