package domain

import (
	"math"
	"time"
)

// OrderStatus is the lifecycle status of an order.
type OrderStatus string

const (
	OrderStatusNew       OrderStatus = "new"
	OrderStatusConfirmed OrderStatus = "confirmed"
	OrderStatusCancelled OrderStatus = "cancelled"

	// Display-only statuses set by back-office tooling.
	OrderStatusShipping  OrderStatus = "shipping"
	OrderStatusDelivered OrderStatus = "delivered"
)

const (
	MinQuantity = 1
	MaxQuantity = 100

	// MaxPrice keeps price × MaxQuantity within int64.
	MaxPrice int64 = math.MaxInt64 / MaxQuantity
)

// Order is the durable record created when the order workflow completes.
type Order struct {
	ID               int64       `json:"id"`
	Number           string      `json:"order_number"`
	ProductID        int64       `json:"product_id"`
	CustomerName     string      `json:"customer_name"`
	Phone            string      `json:"phone"`
	Address          string      `json:"address"`
	Quantity         int         `json:"quantity"`
	ActorID          int64       `json:"actor_id"`
	ActorDisplayName string      `json:"actor_display_name"`
	Status           OrderStatus `json:"status"`
	CreatedAt        time.Time   `json:"created_at"`
	UpdatedAt        time.Time   `json:"updated_at"`
}

// AllowedTransitions defines which status transitions are valid.
func AllowedTransitions() map[OrderStatus][]OrderStatus {
	return map[OrderStatus][]OrderStatus{
		OrderStatusNew:       {OrderStatusConfirmed, OrderStatusCancelled},
		OrderStatusConfirmed: {},
		OrderStatusCancelled: {},
	}
}

// CanTransitionTo checks if the order can move to the target status.
func (o *Order) CanTransitionTo(target OrderStatus) bool {
	for _, s := range AllowedTransitions()[o.Status] {
		if s == target {
			return true
		}
	}
	return false
}

// Total returns price multiplied by the ordered quantity.
func (o *Order) Total(price int64) int64 {
	return price * int64(o.Quantity)
}

// OrderEventType names a lifecycle event published for an order.
type OrderEventType string

const (
	OrderEventCreated   OrderEventType = "order.created"
	OrderEventConfirmed OrderEventType = "order.confirmed"
	OrderEventCancelled OrderEventType = "order.cancelled"
)

// OrderEvent is the payload published to the event stream on lifecycle changes.
type OrderEvent struct {
	Type       OrderEventType `json:"type"`
	OrderID    int64          `json:"order_id"`
	Number     string         `json:"order_number"`
	ActorID    int64          `json:"actor_id"`
	Status     OrderStatus    `json:"status"`
	OccurredAt time.Time      `json:"occurred_at"`
}
