package users

import (
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/directsales-backend/pkg/db/models"
	"github.com/angelmondragon/directsales-backend/pkg/enums"
)

// UserDTO is the transport shape that omits sensitive credentials.
type UserDTO struct {
	ID                 uuid.UUID                `json:"id"`
	Email              string                   `json:"email"`
	FirstName          string                   `json:"first_name"`
	LastName           string                   `json:"last_name"`
	Phone              *string                  `json:"phone,omitempty"`
	Role               enums.UserRole           `json:"role"`
	SubscriptionStatus enums.SubscriptionStatus `json:"subscription_status"`
	IsActive           bool                     `json:"is_active"`
	LastLoginAt        *time.Time               `json:"last_login_at,omitempty"`
	CreatedAt          time.Time                `json:"created_at"`
	UpdatedAt          time.Time                `json:"updated_at"`
}

// CreateUserDTO holds the data required by the repo to persist a new user.
type CreateUserDTO struct {
	Email              string
	PasswordHash       string
	FirstName          string
	LastName           string
	Phone              *string
	Role               enums.UserRole
	SubscriptionStatus enums.SubscriptionStatus
	IsActive           *bool
}

func FromModel(u *models.User) *UserDTO {
	if u == nil {
		return nil
	}

	return &UserDTO{
		ID:                 u.ID,
		Email:              u.Email,
		FirstName:          u.FirstName,
		LastName:           u.LastName,
		Phone:              u.Phone,
		Role:               u.Role,
		SubscriptionStatus: u.SubscriptionStatus,
		IsActive:           u.IsActive,
		LastLoginAt:        u.LastLoginAt,
		CreatedAt:          u.CreatedAt,
		UpdatedAt:          u.UpdatedAt,
	}
}

func (c CreateUserDTO) ToModel() *models.User {
	isActive := true
	if c.IsActive != nil {
		isActive = *c.IsActive
	}
	role := c.Role
	if role == "" {
		role = enums.UserRoleConsultant
	}
	status := c.SubscriptionStatus
	if status == "" {
		status = enums.SubscriptionStatusTrialing
	}

	return &models.User{
		Email:              NormalizeEmail(c.Email),
		PasswordHash:       c.PasswordHash,
		FirstName:          c.FirstName,
		LastName:           c.LastName,
		Phone:              c.Phone,
		Role:               role,
		SubscriptionStatus: status,
		IsActive:           isActive,
	}
}
