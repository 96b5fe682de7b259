package responses

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"

	pkgerrors "github.com/angelmondragon/directsales-backend/pkg/errors"
	"github.com/angelmondragon/directsales-backend/pkg/logger"
	"github.com/angelmondragon/directsales-backend/pkg/types"
)

// apiErrorer is implemented by domain errors that carry their own curated
// envelope, such as a failed RecordSale.
type apiErrorer interface {
	APIError() *pkgerrors.Error
}

func WriteSuccess(w http.ResponseWriter, data any) {
	WriteSuccessStatus(w, http.StatusOK, data)
}

func WriteSuccessStatus(w http.ResponseWriter, status int, data any) {
	writeJSON(w, status, types.SuccessEnvelope{Data: data})
}

func WriteError(ctx context.Context, logg *logger.Logger, w http.ResponseWriter, err error) {
	if err == nil {
		err = errors.New("unknown error")
	}

	typed, curated := resolve(err)
	meta := pkgerrors.MetadataFor(typed.Code())

	msg := meta.PublicMessage
	if curated {
		msg = typed.Message()
	} else {
		switch typed.Code() {
		case pkgerrors.CodeValidation,
			pkgerrors.CodeForbidden,
			pkgerrors.CodeUnauthorized,
			pkgerrors.CodeNotFound,
			pkgerrors.CodeConflict,
			pkgerrors.CodeStateConflict,
			pkgerrors.CodeIdempotency,
			pkgerrors.CodeRateLimit,
			pkgerrors.CodeInsufficientStock,
			pkgerrors.CodeSubscriptionInactive:
			if m := typed.Message(); m != "" {
				msg = m
			}
		}
	}

	payload := types.ErrorEnvelope{
		Error: types.APIError{
			Code:    string(typed.Code()),
			Message: msg,
		},
	}
	if meta.DetailsAllowed || curated {
		if details := typed.Details(); details != nil {
			payload.Error.Details = details
		}
	}

	if logg != nil {
		dump := pkgerrors.Dump(err)
		ctx = logg.WithFields(ctx, map[string]any{
			"error":         dump.TopMessage,
			"error_code":    string(typed.Code()),
			"error_kind":    dump.Kind,
			"error_chain":   dump.Chain,
			"pg_code":       dump.PGCode,
			"pg_detail":     dump.PGDetail,
			"pg_constraint": dump.PGConstraint,
			"http_status":   meta.HTTPStatus,
		})
		if meta.HTTPStatus >= http.StatusInternalServerError {
			logg.Error(ctx, "request.error", err)
		} else {
			logg.Warn(ctx, "request.rejected")
		}
	}

	writeJSON(w, meta.HTTPStatus, payload)
}

// resolve reports the envelope error for err and whether its message and
// details were curated by the domain for public display.
func resolve(err error) (*pkgerrors.Error, bool) {
	var mapper apiErrorer
	if errors.As(err, &mapper) {
		if typed := mapper.APIError(); typed != nil {
			return typed, true
		}
	}
	if typed := pkgerrors.As(err); typed != nil {
		return typed, false
	}
	return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "unexpected error"), false
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Printf(`{"level":"error","msg":"failed to encode response","err":"%v"}`, err)
	}
}
