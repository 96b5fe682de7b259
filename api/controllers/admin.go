package controllers

import (
	"net/http"
	"strings"

	"github.com/angelmondragon/directsales-backend/api/responses"
	"github.com/angelmondragon/directsales-backend/api/validators"
	"github.com/angelmondragon/directsales-backend/internal/sales"
	"github.com/angelmondragon/directsales-backend/internal/subscriptions"
	"github.com/angelmondragon/directsales-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/directsales-backend/pkg/errors"
	"github.com/angelmondragon/directsales-backend/pkg/logger"
)

type setSubscriptionRequest struct {
	Status string `json:"status" validate:"required"`
}

// AdminListOrphanedSales lists sale headers the reconciler flagged as having
// no line items.
func AdminListOrphanedSales(svc sales.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, unavailable("sales service"))
			return
		}
		params, err := pageParams(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		list, err := svc.ListOrphaned(r.Context(), params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}

// AdminSetSubscription overrides a consultant's subscription status.
func AdminSetSubscription(svc subscriptions.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, unavailable("subscription service"))
			return
		}
		id, err := validators.ParseUUIDParam(r, "consultantId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body setSubscriptionRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		status, err := enums.ParseSubscriptionStatus(strings.TrimSpace(body.Status))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status").
				WithDetails(map[string]string{"status": err.Error()}))
			return
		}

		out, err := svc.SetStatus(r.Context(), id, status)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, out)
	}
}

// MySubscription reports the caller's own subscription status. It sits
// outside the subscription gate so a lapsed consultant can still read it.
func MySubscription(svc subscriptions.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, unavailable("subscription service"))
			return
		}
		owner, err := consultantID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		status, err := svc.Status(r.Context(), owner)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, subscriptions.StatusDTO{
			ConsultantID: owner,
			Status:       status,
			Active:       status.GrantsAccess(),
		})
	}
}
