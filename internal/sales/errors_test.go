package sales

import (
	"errors"
	"net/http"
	"testing"

	pkgerrors "github.com/angelmondragon/directsales-backend/pkg/errors"
	"github.com/google/uuid"
)

func TestRecordSaleErrorAPIMapping(t *testing.T) {
	tests := []struct {
		kind   ErrorKind
		status int
	}{
		{KindEmptySale, http.StatusBadRequest},
		{KindInvalidSaleRequest, http.StatusBadRequest},
		{KindClientNotFound, http.StatusNotFound},
		{KindClientCreateFailed, http.StatusInternalServerError},
		{KindLookupFailed, http.StatusServiceUnavailable},
		{KindInsufficientStock, http.StatusConflict},
		{KindSalePersistFailed, http.StatusInternalServerError},
		{KindSaleLineItemsPersistFailed, http.StatusInternalServerError},
		{KindPartialInventoryAdjustment, http.StatusMultiStatus},
	}
	for _, tt := range tests {
		apiErr := newSaleError(tt.kind, "detail", nil).APIError()
		if got := pkgerrors.MetadataFor(apiErr.Code()).HTTPStatus; got != tt.status {
			t.Fatalf("kind %s expected status %d got %d", tt.kind, tt.status, got)
		}
	}
}

func TestRecordSaleErrorDetails(t *testing.T) {
	saleID := uuid.New()
	product := uuid.New()
	saleErr := newSaleError(KindPartialInventoryAdjustment, "one line pending", errBoom)
	saleErr.SaleID = &saleID
	saleErr.AffectedProducts = []uuid.UUID{product}

	apiErr := saleErr.APIError()
	details, ok := apiErr.Details().(ErrorDetails)
	if !ok {
		t.Fatalf("expected ErrorDetails, got %T", apiErr.Details())
	}
	if details.ErrorKind != KindPartialInventoryAdjustment || details.SaleID == nil || *details.SaleID != saleID {
		t.Fatalf("unexpected details %+v", details)
	}
	if len(details.AffectedProducts) != 1 || details.AffectedProducts[0] != product {
		t.Fatalf("affected products lost: %+v", details.AffectedProducts)
	}
	if !errors.Is(apiErr, errBoom) {
		t.Fatalf("cause should unwrap through the api error")
	}
}

func TestRecordSaleErrorMessage(t *testing.T) {
	err := newSaleError(KindEmptySale, "a sale needs at least one line", nil)
	if err.Error() != "EmptySale: a sale needs at least one line" {
		t.Fatalf("unexpected message %q", err.Error())
	}
	wrapped := newSaleError(KindSalePersistFailed, "header", errBoom)
	if !errors.Is(wrapped, errBoom) {
		t.Fatalf("expected wrapped cause")
	}
}
