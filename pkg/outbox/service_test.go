package outbox

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/angelmondragon/directsales-backend/pkg/db"
	"github.com/angelmondragon/directsales-backend/pkg/db/models"
	"github.com/angelmondragon/directsales-backend/pkg/enums"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func newOutboxDB(t *testing.T) *db.Client {
	t.Helper()
	dsn := fmt.Sprintf("file:outbox_%s?mode=memory&cache=shared", uuid.NewString())
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{SkipDefaultTransaction: true, NowFunc: func() time.Time { return time.Now().UTC() }})
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(&models.OutboxEvent{}, &models.OutboxDLQ{}))
	return db.NewFromConn(conn)
}

func TestServiceEmitWritesEnvelope(t *testing.T) {
	client := newOutboxDB(t)
	svc := NewService(NewRepository(client.DB()), client, nil)
	saleID := uuid.New()
	actor := uuid.New()

	err := svc.Publish(context.Background(), DomainEvent{
		EventType:     enums.EventSaleRecorded,
		AggregateType: enums.AggregateSale,
		AggregateID:   saleID,
		Actor:         &ActorRef{UserID: actor, Role: "consultant"},
		Data:          map[string]any{"saleId": saleID.String()},
	})
	require.NoError(t, err)

	var rows []models.OutboxEvent
	require.NoError(t, client.DB().Find(&rows).Error)
	require.Len(t, rows, 1)
	require.Equal(t, saleID, rows[0].AggregateID)
	require.Nil(t, rows[0].PublishedAt)

	var envelope PayloadEnvelope
	require.NoError(t, json.Unmarshal(rows[0].Payload, &envelope))
	require.Equal(t, 1, envelope.Version)
	require.NotEmpty(t, envelope.EventID)
	require.Equal(t, actor, envelope.Actor.UserID)
	require.JSONEq(t, fmt.Sprintf(`{"saleId":%q}`, saleID.String()), string(envelope.Data))
}

func TestServiceEmitRejectsUnknownType(t *testing.T) {
	client := newOutboxDB(t)
	svc := NewService(NewRepository(client.DB()), client, nil)

	err := svc.Publish(context.Background(), DomainEvent{
		EventType:     enums.OutboxEventType("nope"),
		AggregateType: enums.AggregateSale,
		AggregateID:   uuid.New(),
	})
	require.Error(t, err)

	var count int64
	require.NoError(t, client.DB().Model(&models.OutboxEvent{}).Count(&count).Error)
	require.Zero(t, count)
}

func TestServiceEmitRequiresTx(t *testing.T) {
	svc := NewService(NewRepository(nil), nil, nil)
	err := svc.Emit(context.Background(), nil, DomainEvent{})
	require.Error(t, err)
}

func TestRepositoryMarkLifecycle(t *testing.T) {
	client := newOutboxDB(t)
	repo := NewRepository(client.DB())
	svc := NewService(repo, client, nil)
	ctx := context.Background()

	require.NoError(t, svc.Publish(ctx,
		DomainEvent{EventType: enums.EventSalePaid, AggregateType: enums.AggregateSale, AggregateID: uuid.New(), Data: map[string]any{}},
		DomainEvent{EventType: enums.EventInventoryLowStock, AggregateType: enums.AggregateInventoryItem, AggregateID: uuid.New(), Data: map[string]any{}},
	))

	var fetched []models.OutboxEvent
	require.NoError(t, client.WithTx(ctx, func(tx *gorm.DB) error {
		var err error
		fetched, err = repo.FetchUnpublishedForPublish(tx, 10, 3)
		return err
	}))
	require.Len(t, fetched, 2)

	require.NoError(t, client.WithTx(ctx, func(tx *gorm.DB) error {
		if err := repo.MarkPublishedTx(tx, fetched[0].ID); err != nil {
			return err
		}
		return repo.MarkFailedTx(tx, fetched[1].ID, errors.New("boom"))
	}))

	pending, err := repo.CountPending(ctx)
	require.NoError(t, err)
	require.Equal(t, int64(1), pending)

	var failed models.OutboxEvent
	require.NoError(t, client.DB().First(&failed, "id = ?", fetched[1].ID).Error)
	require.Equal(t, 1, failed.AttemptCount)
	require.NotNil(t, failed.LastError)
	require.Equal(t, "boom", *failed.LastError)

	require.NoError(t, client.WithTx(ctx, func(tx *gorm.DB) error {
		return repo.MarkTerminalTx(tx, failed.ID, errors.New("dead"), 3)
	}))
	require.NoError(t, client.WithTx(ctx, func(tx *gorm.DB) error {
		rows, err := repo.FetchUnpublishedForPublish(tx, 10, 3)
		require.Empty(t, rows)
		return err
	}))
}

func TestRepositoryDeleteSettledBefore(t *testing.T) {
	client := newOutboxDB(t)
	repo := NewRepository(client.DB())
	svc := NewService(repo, client, nil)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		require.NoError(t, svc.Publish(ctx, DomainEvent{
			EventType: enums.EventSaleRecorded, AggregateType: enums.AggregateSale, AggregateID: uuid.New(), Data: map[string]any{},
		}))
	}
	var rows []models.OutboxEvent
	require.NoError(t, client.DB().Order("created_at ASC").Find(&rows).Error)
	require.Len(t, rows, 3)

	require.NoError(t, client.WithTx(ctx, func(tx *gorm.DB) error {
		if err := repo.MarkPublishedTx(tx, rows[0].ID); err != nil {
			return err
		}
		return repo.MarkTerminalTx(tx, rows[1].ID, errors.New("dead"), 5)
	}))

	var deleted int64
	require.NoError(t, client.WithTx(ctx, func(tx *gorm.DB) error {
		var err error
		deleted, err = repo.DeleteSettledBefore(ctx, tx, time.Now().UTC().Add(time.Minute), 5)
		return err
	}))
	require.Equal(t, int64(2), deleted)

	pending, err := repo.CountPending(ctx)
	require.NoError(t, err)
	require.Equal(t, int64(1), pending)
}

func TestTruncateLongErrors(t *testing.T) {
	long := make([]byte, maxLastErrorLen+10)
	for i := range long {
		long[i] = 'x'
	}
	require.Len(t, truncate(string(long)), maxLastErrorLen)
	require.Equal(t, "short", truncate("short"))
}
