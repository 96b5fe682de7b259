package clients

import (
	"context"
	"errors"
	"fmt"

	"github.com/angelmondragon/directsales-backend/pkg/db"
	"github.com/angelmondragon/directsales-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/directsales-backend/pkg/errors"
	"github.com/angelmondragon/directsales-backend/pkg/pagination"
	"github.com/google/uuid"
)

const documentConstraint = "clients_consultant_document_key"

type Service interface {
	Create(ctx context.Context, consultantID uuid.UUID, input CreateInput) (*ClientDTO, error)
	Get(ctx context.Context, consultantID, clientID uuid.UUID) (*ClientDTO, error)
	List(ctx context.Context, consultantID uuid.UUID, params pagination.Params, search string) (*ClientListDTO, error)
}

type store interface {
	Create(ctx context.Context, client *models.Client) error
	FindForConsultant(ctx context.Context, consultantID, clientID uuid.UUID) (*models.Client, error)
	List(ctx context.Context, consultantID uuid.UUID, params pagination.Params, search string) ([]models.Client, string, error)
}

type service struct {
	repo store
}

func NewService(repo store) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("clients repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) Create(ctx context.Context, consultantID uuid.UUID, input CreateInput) (*ClientDTO, error) {
	normalized, problem := input.Normalize()
	if problem != "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, problem)
	}
	client := normalized.ToModel(consultantID)
	if err := s.repo.Create(ctx, client); err != nil {
		if db.IsUniqueViolation(err, documentConstraint) {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "a client with this document number already exists")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create client")
	}
	dto := FromModel(client)
	return &dto, nil
}

func (s *service) Get(ctx context.Context, consultantID, clientID uuid.UUID) (*ClientDTO, error) {
	client, err := s.repo.FindForConsultant(ctx, consultantID, clientID)
	if errors.Is(err, ErrClientNotFound) {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "client not found")
	}
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load client")
	}
	dto := FromModel(client)
	return &dto, nil
}

func (s *service) List(ctx context.Context, consultantID uuid.UUID, params pagination.Params, search string) (*ClientListDTO, error) {
	rows, next, err := s.repo.List(ctx, consultantID, params, search)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "list clients")
	}
	out := &ClientListDTO{Clients: make([]ClientDTO, 0, len(rows)), NextCursor: next}
	for i := range rows {
		out.Clients = append(out.Clients, FromModel(&rows[i]))
	}
	return out, nil
}
