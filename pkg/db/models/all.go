package models

// All lists every persisted model, used for sqlite auto-migration.
func All() []any {
	return []any{
		&User{},
		&Product{},
		&InventoryItem{},
		&StockMovement{},
		&Client{},
		&Sale{},
		&SaleLineItem{},
		&InventoryAdjustment{},
		&OutboxEvent{},
		&OutboxDLQ{},
	}
}
