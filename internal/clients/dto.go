package clients

import (
	"strings"
	"time"

	"github.com/angelmondragon/directsales-backend/pkg/db/models"
	"github.com/google/uuid"
)

type ClientDTO struct {
	ID             uuid.UUID  `json:"id"`
	Name           string     `json:"name"`
	DocumentNumber string     `json:"document_number"`
	Email          *string    `json:"email,omitempty"`
	Phone          *string    `json:"phone,omitempty"`
	BirthDate      *string    `json:"birth_date,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
}

type ClientListDTO struct {
	Clients    []ClientDTO `json:"clients"`
	NextCursor string      `json:"next_cursor,omitempty"`
}

// CreateInput is a new client as typed by the consultant.
type CreateInput struct {
	Name           string
	DocumentNumber string
	Email          *string
	Phone          *string
	BirthDate      *time.Time
}

const birthDateLayout = "2006-01-02"

func FromModel(c *models.Client) ClientDTO {
	dto := ClientDTO{
		ID:             c.ID,
		Name:           c.Name,
		DocumentNumber: c.DocumentNumber,
		Email:          c.Email,
		Phone:          c.Phone,
		CreatedAt:      c.CreatedAt,
	}
	if c.BirthDate != nil {
		formatted := c.BirthDate.Format(birthDateLayout)
		dto.BirthDate = &formatted
	}
	return dto
}

// Normalize trims the input and reports the first missing required field.
func (in CreateInput) Normalize() (CreateInput, string) {
	in.Name = strings.TrimSpace(in.Name)
	in.DocumentNumber = strings.TrimSpace(in.DocumentNumber)
	in.Email = trimOptional(in.Email)
	in.Phone = trimOptional(in.Phone)
	if in.Name == "" {
		return in, "name is required"
	}
	if in.DocumentNumber == "" {
		return in, "document_number is required"
	}
	return in, ""
}

// ToModel builds the row owned by consultantID.
func (in CreateInput) ToModel(consultantID uuid.UUID) *models.Client {
	return &models.Client{
		ConsultantID:   consultantID,
		Name:           in.Name,
		DocumentNumber: in.DocumentNumber,
		Email:          in.Email,
		Phone:          in.Phone,
		BirthDate:      in.BirthDate,
	}
}

// ParseBirthDate accepts YYYY-MM-DD.
func ParseBirthDate(raw string) (*time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	t, err := time.Parse(birthDateLayout, raw)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func trimOptional(v *string) *string {
	if v == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*v)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
