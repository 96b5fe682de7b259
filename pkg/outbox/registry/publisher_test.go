package registry

import (
	"encoding/json"
	"errors"
	"sort"
	"testing"
	"time"

	"github.com/angelmondragon/directsales-backend/pkg/config"
	"github.com/angelmondragon/directsales-backend/pkg/db/models"
	"github.com/angelmondragon/directsales-backend/pkg/enums"
	"github.com/angelmondragon/directsales-backend/pkg/outbox"
	"github.com/angelmondragon/directsales-backend/pkg/outbox/payloads"
	"github.com/google/uuid"
)

func TestEventRegistryResolveSaleRecorded(t *testing.T) {
	reg := newTestEventRegistry(t)
	saleID := uuid.New()
	data := mustMarshal(t, payloads.SaleRecordedEvent{
		SaleID:           saleID,
		TotalAmountCents: 4500,
		PaymentPlan:      "full",
		PaymentStatus:    "paid",
	})

	resolved, err := reg.Resolve(models.OutboxEvent{
		EventType:     enums.EventSaleRecorded,
		AggregateType: enums.AggregateSale,
		AggregateID:   saleID,
		Payload:       mustEnvelope(t, data),
	})
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if resolved.Descriptor.Topic != "sales-topic" {
		t.Fatalf("unexpected topic %s", resolved.Descriptor.Topic)
	}
	payload, ok := resolved.Payload.(*payloads.SaleRecordedEvent)
	if !ok {
		t.Fatalf("unexpected payload type %T", resolved.Payload)
	}
	if payload.SaleID != saleID || payload.TotalAmountCents != 4500 {
		t.Fatalf("unexpected payload %+v", payload)
	}
}

func TestEventRegistryRoutesInventoryEvents(t *testing.T) {
	reg := newTestEventRegistry(t)
	data := mustMarshal(t, payloads.InventoryLowStockEvent{ProductID: uuid.New(), OnHandQty: 1, MinStockQty: 2})

	resolved, err := reg.Resolve(models.OutboxEvent{
		EventType:     enums.EventInventoryLowStock,
		AggregateType: enums.AggregateInventoryItem,
		AggregateID:   uuid.New(),
		Payload:       mustEnvelope(t, data),
	})
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if resolved.Descriptor.Topic != "inventory-topic" {
		t.Fatalf("unexpected topic %s", resolved.Descriptor.Topic)
	}
}

func TestEventRegistryResolveUnknownEvent(t *testing.T) {
	reg := newTestEventRegistry(t)

	_, err := reg.Resolve(models.OutboxEvent{
		EventType:     enums.OutboxEventType("order_created"),
		AggregateType: enums.AggregateSale,
		AggregateID:   uuid.New(),
		Payload:       mustEnvelope(t, []byte(`{}`)),
	})
	assertNonRetryable(t, err)
}

func TestEventRegistryResolveAggregateMismatch(t *testing.T) {
	reg := newTestEventRegistry(t)

	_, err := reg.Resolve(models.OutboxEvent{
		EventType:     enums.EventSaleRecorded,
		AggregateType: enums.AggregateInventoryItem,
		AggregateID:   uuid.New(),
		Payload:       mustEnvelope(t, []byte(`{"saleId":"00000000-0000-0000-0000-000000000000"}`)),
	})
	assertNonRetryable(t, err)
}

func TestEventRegistryResolveMissingAggregateID(t *testing.T) {
	reg := newTestEventRegistry(t)

	_, err := reg.Resolve(models.OutboxEvent{
		EventType:     enums.EventSalePaid,
		AggregateType: enums.AggregateSale,
		AggregateID:   uuid.Nil,
		Payload:       mustEnvelope(t, []byte(`{}`)),
	})
	assertNonRetryable(t, err)
}

func TestEventRegistryResolveNullPayload(t *testing.T) {
	reg := newTestEventRegistry(t)

	_, err := reg.Resolve(models.OutboxEvent{
		EventType:     enums.EventSaleRecorded,
		AggregateType: enums.AggregateSale,
		AggregateID:   uuid.New(),
		Payload:       mustEnvelope(t, []byte("null")),
	})
	assertNonRetryable(t, err)
}

func TestNewEventRegistryRequiresTopics(t *testing.T) {
	if _, err := NewEventRegistry(config.PubSubConfig{SalesTopic: "sales"}); err == nil {
		t.Fatalf("expected error for missing inventory topic")
	}
	if _, err := NewEventRegistry(config.PubSubConfig{InventoryTopic: "inv"}); err == nil {
		t.Fatalf("expected error for missing sales topic")
	}
}

func TestEventRegistryTopics(t *testing.T) {
	topics := newTestEventRegistry(t).Topics()
	sort.Strings(topics)
	if len(topics) != 2 || topics[0] != "inventory-topic" || topics[1] != "sales-topic" {
		t.Fatalf("unexpected topics %v", topics)
	}
}

func assertNonRetryable(t *testing.T, err error) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected error")
	}
	var nonRetry NonRetryableError
	if !errors.As(err, &nonRetry) {
		t.Fatalf("expected non-retryable error, got %v", err)
	}
}

func newTestEventRegistry(t *testing.T) *EventRegistry {
	t.Helper()
	reg, err := NewEventRegistry(config.PubSubConfig{
		SalesTopic:     "sales-topic",
		InventoryTopic: "inventory-topic",
	})
	if err != nil {
		t.Fatalf("build registry: %v", err)
	}
	return reg
}

func mustMarshal(t *testing.T, v interface{}) []byte {
	t.Helper()
	data, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal payload: %v", err)
	}
	return data
}

func mustEnvelope(t *testing.T, payload []byte) json.RawMessage {
	t.Helper()
	envelope := outbox.PayloadEnvelope{
		Version:    1,
		EventID:    uuid.NewString(),
		OccurredAt: time.Now().UTC(),
		Data:       payload,
	}
	data, err := json.Marshal(envelope)
	if err != nil {
		t.Fatalf("marshal envelope: %v", err)
	}
	return data
}
