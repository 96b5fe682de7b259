package models

import (
	"time"

	"github.com/angelmondragon/directsales-backend/pkg/enums"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User is a consultant or platform admin.
type User struct {
	ID                 uuid.UUID                `gorm:"column:id;type:uuid;primaryKey"`
	Email              string                   `gorm:"column:email;type:text;not null;uniqueIndex:users_email_key"`
	PasswordHash       string                   `gorm:"column:password_hash;not null"`
	FirstName          string                   `gorm:"column:first_name;not null"`
	LastName           string                   `gorm:"column:last_name;not null"`
	Phone              *string                  `gorm:"column:phone"`
	Role               enums.UserRole           `gorm:"column:role;type:text;not null;default:consultant"`
	SubscriptionStatus enums.SubscriptionStatus `gorm:"column:subscription_status;type:text;not null;default:trialing"`
	IsActive           bool                     `gorm:"column:is_active;not null"`
	LastLoginAt        *time.Time               `gorm:"column:last_login_at"`
	CreatedAt          time.Time                `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt          time.Time                `gorm:"column:updated_at;autoUpdateTime"`
}

func (User) TableName() string { return "users" }

func (u *User) BeforeCreate(*gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}
