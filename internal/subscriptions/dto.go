package subscriptions

import (
	"github.com/angelmondragon/directsales-backend/pkg/enums"
	"github.com/google/uuid"
)

type StatusDTO struct {
	ConsultantID uuid.UUID                `json:"consultant_id"`
	Status       enums.SubscriptionStatus `json:"status"`
	Active       bool                     `json:"active"`
}
