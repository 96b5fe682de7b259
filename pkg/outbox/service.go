package outbox

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/angelmondragon/directsales-backend/pkg/db/models"
	"github.com/angelmondragon/directsales-backend/pkg/enums"
	"github.com/angelmondragon/directsales-backend/pkg/logger"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const currentVersion = 1

type DomainEvent struct {
	EventType     enums.OutboxEventType
	AggregateType enums.OutboxAggregateType
	AggregateID   uuid.UUID
	Actor         *ActorRef
	Data          interface{}
	Version       int
	OccurredAt    time.Time
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type Service struct {
	repo *Repository
	db   txRunner
	logg *logger.Logger
}

func NewService(repo *Repository, db txRunner, logg *logger.Logger) *Service {
	return &Service{repo: repo, db: db, logg: logg}
}

// Emit queues an event inside the caller's transaction.
func (s *Service) Emit(ctx context.Context, tx *gorm.DB, event DomainEvent) error {
	if tx == nil {
		return errors.New("transaction required")
	}
	if !event.EventType.IsValid() || !event.AggregateType.IsValid() {
		return errors.New("unknown event or aggregate type")
	}
	row, envelope, err := buildRow(event)
	if err != nil {
		return err
	}
	if err := s.repo.Insert(tx, row); err != nil {
		return err
	}
	if s.logg != nil {
		s.logg.Info(s.logg.WithFields(ctx, map[string]any{
			"event_id":       envelope.EventID,
			"event_type":     event.EventType,
			"aggregate_id":   event.AggregateID.String(),
			"aggregate_type": event.AggregateType,
		}), "outbox event queued")
	}
	return nil
}

// Publish queues events in their own transaction, for callers whose writes
// are already committed.
func (s *Service) Publish(ctx context.Context, events ...DomainEvent) error {
	if len(events) == 0 {
		return nil
	}
	if s.db == nil {
		return errors.New("transaction runner required")
	}
	return s.db.WithTx(ctx, func(tx *gorm.DB) error {
		for _, event := range events {
			if err := s.Emit(ctx, tx, event); err != nil {
				return err
			}
		}
		return nil
	})
}

func buildRow(event DomainEvent) (models.OutboxEvent, PayloadEnvelope, error) {
	payload, err := json.Marshal(event.Data)
	if err != nil {
		return models.OutboxEvent{}, PayloadEnvelope{}, err
	}
	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now().UTC()
	}
	if event.Version == 0 {
		event.Version = currentVersion
	}
	envelope := PayloadEnvelope{
		Version:    event.Version,
		EventID:    uuid.NewString(),
		OccurredAt: event.OccurredAt,
		Actor:      event.Actor,
		Data:       payload,
	}
	payloadJSON, err := json.Marshal(envelope)
	if err != nil {
		return models.OutboxEvent{}, PayloadEnvelope{}, err
	}
	return models.OutboxEvent{
		EventType:     event.EventType,
		AggregateType: event.AggregateType,
		AggregateID:   event.AggregateID,
		Payload:       json.RawMessage(payloadJSON),
	}, envelope, nil
}
