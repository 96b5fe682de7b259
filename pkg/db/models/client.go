package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Client is a buyer owned by one consultant.
type Client struct {
	ID             uuid.UUID  `gorm:"column:id;type:uuid;primaryKey"`
	ConsultantID   uuid.UUID  `gorm:"column:consultant_id;type:uuid;not null;uniqueIndex:clients_consultant_document_key"`
	Name           string     `gorm:"column:name;not null"`
	DocumentNumber string     `gorm:"column:document_number;not null;uniqueIndex:clients_consultant_document_key"`
	Email          *string    `gorm:"column:email"`
	Phone          *string    `gorm:"column:phone"`
	BirthDate      *time.Time `gorm:"column:birth_date;type:date"`
	CreatedAt      time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}

func (Client) TableName() string { return "clients" }

func (c *Client) BeforeCreate(*gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}
