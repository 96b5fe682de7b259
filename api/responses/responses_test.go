package responses

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	pkgerrors "github.com/angelmondragon/directsales-backend/pkg/errors"
	"github.com/angelmondragon/directsales-backend/pkg/types"
)

type curatedErr struct {
	code pkgerrors.Code
}

func (e curatedErr) Error() string { return "curated failure" }

func (e curatedErr) APIError() *pkgerrors.Error {
	return pkgerrors.New(e.code, "sale saved without line items").
		WithDetails(map[string]string{"error_kind": "SaleLineItemsPersistFailed"})
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) types.ErrorEnvelope {
	t.Helper()
	var body types.ErrorEnvelope
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode error envelope: %v", err)
	}
	return body
}

func TestWriteSuccess(t *testing.T) {
	w := httptest.NewRecorder()
	WriteSuccess(w, map[string]string{"hello": "world"})

	if got := w.Code; got != http.StatusOK {
		t.Fatalf("expected status 200 but got %d", got)
	}

	var body types.SuccessEnvelope
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode success envelope: %v", err)
	}
	if body.Data.(map[string]any)["hello"] != "world" {
		t.Fatalf("unexpected payload %v", body.Data)
	}
}

func TestWriteSuccessStatus(t *testing.T) {
	w := httptest.NewRecorder()
	WriteSuccessStatus(w, http.StatusCreated, map[string]string{"sale_id": "x"})
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); ct != "application/json" {
		t.Fatalf("unexpected content type %q", ct)
	}
}

func TestWriteErrorMapsTypedError(t *testing.T) {
	w := httptest.NewRecorder()
	err := pkgerrors.New(pkgerrors.CodeValidation, "bad input").
		WithDetails(map[string]string{"field": "demo"})
	WriteError(context.Background(), nil, w, err)

	if got := w.Code; got != http.StatusBadRequest {
		t.Fatalf("expected status 400 but got %d", got)
	}
	body := decodeError(t, w)
	if body.Error.Code != string(pkgerrors.CodeValidation) {
		t.Fatalf("unexpected code %s", body.Error.Code)
	}
	if body.Error.Message != "bad input" {
		t.Fatalf("unexpected message %q", body.Error.Message)
	}
	if body.Error.Details == nil {
		t.Fatalf("expected details in public payload")
	}
}

func TestWriteErrorDefaultsToInternalForUntrustedErrors(t *testing.T) {
	w := httptest.NewRecorder()
	WriteError(context.Background(), nil, w, errors.New("boom"))

	if got := w.Code; got != http.StatusInternalServerError {
		t.Fatalf("expected status 500 but got %d", got)
	}
	body := decodeError(t, w)
	if body.Error.Code != string(pkgerrors.CodeInternal) {
		t.Fatalf("unexpected code %s", body.Error.Code)
	}
	if body.Error.Message != "internal server error" {
		t.Fatalf("internal message leaked: %q", body.Error.Message)
	}
	if body.Error.Details != nil {
		t.Fatalf("details should be omitted for internal errors")
	}
}

func TestWriteErrorHidesInternalDetails(t *testing.T) {
	w := httptest.NewRecorder()
	err := pkgerrors.New(pkgerrors.CodeInternal, "db exploded").WithDetails(map[string]string{"dsn": "secret"})
	WriteError(context.Background(), nil, w, err)

	body := decodeError(t, w)
	if body.Error.Details != nil {
		t.Fatalf("expected details stripped, got %v", body.Error.Details)
	}
}

func TestWriteErrorUsesCuratedDomainError(t *testing.T) {
	w := httptest.NewRecorder()
	wrapped := fmt.Errorf("handler: %w", curatedErr{code: pkgerrors.CodeSaleIncomplete})
	WriteError(context.Background(), nil, w, wrapped)

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500 got %d", w.Code)
	}
	body := decodeError(t, w)
	if body.Error.Code != string(pkgerrors.CodeSaleIncomplete) {
		t.Fatalf("unexpected code %s", body.Error.Code)
	}
	if body.Error.Message != "sale saved without line items" {
		t.Fatalf("unexpected message %q", body.Error.Message)
	}
	details, ok := body.Error.Details.(map[string]any)
	if !ok || details["error_kind"] != "SaleLineItemsPersistFailed" {
		t.Fatalf("unexpected details %v", body.Error.Details)
	}
}

func TestWriteErrorPartialIsMultiStatus(t *testing.T) {
	w := httptest.NewRecorder()
	WriteError(context.Background(), nil, w, curatedErr{code: pkgerrors.CodeInventoryPartial})
	if w.Code != http.StatusMultiStatus {
		t.Fatalf("expected 207 got %d", w.Code)
	}
}
