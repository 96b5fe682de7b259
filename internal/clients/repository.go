package clients

import (
	"context"
	"errors"
	"strings"

	"github.com/angelmondragon/directsales-backend/pkg/db/models"
	"github.com/angelmondragon/directsales-backend/pkg/pagination"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ErrClientNotFound is returned when the client does not exist for the consultant.
var ErrClientNotFound = errors.New("client not found")

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) Create(ctx context.Context, client *models.Client) error {
	return r.db.WithContext(ctx).Create(client).Error
}

// FindForConsultant loads a client only if it belongs to the consultant.
func (r *Repository) FindForConsultant(ctx context.Context, consultantID, clientID uuid.UUID) (*models.Client, error) {
	var client models.Client
	err := r.db.WithContext(ctx).
		Where("id = ? AND consultant_id = ?", clientID, consultantID).
		First(&client).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrClientNotFound
	}
	if err != nil {
		return nil, err
	}
	return &client, nil
}

// List pages through a consultant's clients, newest first. search matches
// name or document number.
func (r *Repository) List(ctx context.Context, consultantID uuid.UUID, params pagination.Params, search string) ([]models.Client, string, error) {
	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, "", err
	}
	query := r.db.WithContext(ctx).Where("consultant_id = ?", consultantID)
	if term := strings.TrimSpace(search); term != "" {
		like := "%" + strings.ToLower(term) + "%"
		query = query.Where("LOWER(name) LIKE ? OR document_number LIKE ?", like, like)
	}
	if cursor != nil {
		query = query.Where("(created_at < ?) OR (created_at = ? AND id < ?)", cursor.CreatedAt, cursor.CreatedAt, cursor.ID)
	}

	var rows []models.Client
	if err := query.
		Order("created_at DESC").
		Order("id DESC").
		Limit(pagination.LimitWithBuffer(params.Limit)).
		Find(&rows).Error; err != nil {
		return nil, "", err
	}
	page, next := pagination.Page(rows, params.Limit, func(c models.Client) pagination.Cursor {
		return pagination.Cursor{CreatedAt: c.CreatedAt, ID: c.ID}
	})
	return page, next, nil
}
