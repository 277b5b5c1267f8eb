package models

import "time"

// Event types
const (
	EventTypeOrderPlaced        = "ORDER_PLACED"
	EventTypeOrderStatusChanged = "ORDER_STATUS_CHANGED"
	EventTypeProductChanged     = "PRODUCT_CHANGED"
	EventTypeUserRegistered     = "USER_REGISTERED"
)

// BaseEvent contains common fields for all events
type BaseEvent struct {
	EventID   string    `json:"event_id"`
	EventType string    `json:"event_type"`
	Timestamp time.Time `json:"timestamp"`
}

// OrderPlacedEvent is published after an order commits. Items mirror the
// denormalized order snapshot.
type OrderPlacedEvent struct {
	BaseEvent
	OrderID     int64           `json:"order_id"`
	OrderNumber string          `json:"order_number"`
	UserID      int64           `json:"user_id,omitempty"`
	Total       float64         `json:"total"`
	Items       []OrderItemData `json:"items"`
}

// OrderStatusChangedEvent is published when an admin moves an order through
// its lifecycle.
type OrderStatusChangedEvent struct {
	BaseEvent
	OrderID   int64  `json:"order_id"`
	OldStatus string `json:"old_status"`
	NewStatus string `json:"new_status"`
}

// ProductChangedEvent is published when a product is created, updated or
// deleted, so catalog snapshots can refresh without waiting for the next tick.
type ProductChangedEvent struct {
	BaseEvent
	ProductID int64  `json:"product_id"`
	Change    string `json:"change"`
}

// UserRegisteredEvent is published after a successful registration.
type UserRegisteredEvent struct {
	BaseEvent
	UserID int64  `json:"user_id"`
	Email  string `json:"email"`
}

// OrderItemData represents item data in events
type OrderItemData struct {
	ProductID int64   `json:"product_id"`
	Name      string  `json:"name"`
	Quantity  int     `json:"quantity"`
	UnitPrice float64 `json:"unit_price"`
}
