package enums

import "fmt"

// OutboxAggregateType names the entity an outbox event belongs to.
type OutboxAggregateType string

const (
	AggregateSale          OutboxAggregateType = "sale"
	AggregateInventoryItem OutboxAggregateType = "inventory_item"
)

var validAggregateTypes = []OutboxAggregateType{
	AggregateSale,
	AggregateInventoryItem,
}

// IsValid reports whether the value is a known aggregate type.
func (a OutboxAggregateType) IsValid() bool {
	for _, candidate := range validAggregateTypes {
		if candidate == a {
			return true
		}
	}
	return false
}

// ParseOutboxAggregateType converts raw input into OutboxAggregateType.
func ParseOutboxAggregateType(value string) (OutboxAggregateType, error) {
	for _, candidate := range validAggregateTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid aggregate type %q", value)
}

// OutboxEventType names a domain event.
type OutboxEventType string

const (
	EventSaleRecorded       OutboxEventType = "sale_recorded"
	EventSalePaid           OutboxEventType = "sale_paid"
	EventInventoryLowStock  OutboxEventType = "inventory_low_stock"
	EventInventoryRestocked OutboxEventType = "inventory_restocked"
)

var validOutboxEventTypes = []OutboxEventType{
	EventSaleRecorded,
	EventSalePaid,
	EventInventoryLowStock,
	EventInventoryRestocked,
}

// IsValid reports whether the value is a known event type.
func (e OutboxEventType) IsValid() bool {
	for _, candidate := range validOutboxEventTypes {
		if candidate == e {
			return true
		}
	}
	return false
}

// ParseOutboxEventType converts raw input into OutboxEventType.
func ParseOutboxEventType(value string) (OutboxEventType, error) {
	for _, candidate := range validOutboxEventTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid event type %q", value)
}
