package controllers

import (
	"net/http"
	"strings"

	"github.com/angelmondragon/directsales-backend/api/responses"
	"github.com/angelmondragon/directsales-backend/api/validators"
	"github.com/angelmondragon/directsales-backend/internal/clients"
	pkgerrors "github.com/angelmondragon/directsales-backend/pkg/errors"
	"github.com/angelmondragon/directsales-backend/pkg/logger"
	"github.com/angelmondragon/directsales-backend/pkg/pagination"
)

// clientRequest is a new client as sent by the app, both standalone and
// inline in a sale.
type clientRequest struct {
	Name           string  `json:"name"`
	DocumentNumber string  `json:"document_number"`
	Email          *string `json:"email,omitempty"`
	Phone          *string `json:"phone,omitempty"`
	BirthDate      *string `json:"birth_date,omitempty"`
}

func (c clientRequest) toInput() (clients.CreateInput, error) {
	input := clients.CreateInput{
		Name:           validators.SanitizeString(c.Name, 200),
		DocumentNumber: validators.SanitizeString(c.DocumentNumber, 64),
		Email:          c.Email,
		Phone:          c.Phone,
	}
	if c.BirthDate != nil {
		birth, err := clients.ParseBirthDate(*c.BirthDate)
		if err != nil {
			return input, err
		}
		input.BirthDate = birth
	}
	return input, nil
}

func pageParams(r *http.Request) (pagination.Params, error) {
	limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
	if err != nil {
		return pagination.Params{}, err
	}
	return pagination.Params{
		Limit:  limit,
		Cursor: strings.TrimSpace(r.URL.Query().Get("cursor")),
	}, nil
}

func ListClients(svc clients.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, unavailable("clients service"))
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
		list, err := svc.List(r.Context(), owner, params, validators.SanitizeString(r.URL.Query().Get("q"), 100))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}

func GetClient(svc clients.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, unavailable("clients service"))
			return
		}
		owner, err := consultantID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		id, err := validators.ParseUUIDParam(r, "clientId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		client, err := svc.Get(r.Context(), owner, id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, client)
	}
}

func CreateClient(svc clients.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, unavailable("clients service"))
			return
		}
		owner, err := consultantID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body clientRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		input, err := body.toInput()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "birth_date must be YYYY-MM-DD"))
			return
		}

		client, err := svc.Create(r.Context(), owner, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, client)
	}
}
