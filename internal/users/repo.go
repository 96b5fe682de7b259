package users

import (
	"context"
	"strings"
	"time"

	"github.com/angelmondragon/directsales-backend/pkg/db/models"
	"github.com/angelmondragon/directsales-backend/pkg/enums"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository exposes user-related persistence operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a users repo bound to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts a new user and returns the persisted model.
func (r *Repository) Create(ctx context.Context, dto CreateUserDTO) (*models.User, error) {
	user := dto.ToModel()
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		return nil, err
	}
	return user, nil
}

// FindByEmail matches case-insensitively; emails are stored lowercased.
func (r *Repository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("email = ?", NormalizeEmail(email)).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// FindByID loads a user by their UUID.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// UpdateLastLogin refreshes the user's last_login_at timestamp.
func (r *Repository) UpdateLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error {
	return r.db.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ?", id).
		UpdateColumn("last_login_at", at).Error
}

// SubscriptionStatus reads only the status column, for the access gate.
func (r *Repository) SubscriptionStatus(ctx context.Context, id uuid.UUID) (enums.SubscriptionStatus, error) {
	var user models.User
	err := r.db.WithContext(ctx).
		Select("subscription_status").
		Where("id = ?", id).
		First(&user).Error
	if err != nil {
		return "", err
	}
	return user.SubscriptionStatus, nil
}

// SetSubscriptionStatus returns gorm.ErrRecordNotFound for an unknown consultant.
func (r *Repository) SetSubscriptionStatus(ctx context.Context, id uuid.UUID, status enums.SubscriptionStatus) error {
	res := r.db.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ? AND role = ?", id, enums.UserRoleConsultant).
		Updates(map[string]any{
			"subscription_status": status,
			"updated_at":          time.Now().UTC(),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
