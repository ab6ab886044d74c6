package domain

import (
	"context"
	"time"
)

// EventType defines the category of the event.
type EventType string

const (
	EventStepEnter      EventType = "step_enter"
	EventOrderCreated   EventType = "order_created"
	EventOrderStatus    EventType = "order_status"
	EventDelivery       EventType = "delivery"
	EventValidationFail EventType = "validation_fail"
)

// EventBase contains common fields for all events.
type EventBase struct {
	Timestamp time.Time `json:"timestamp"`
	Type      EventType `json:"type"`
	ActorID   int64     `json:"actor_id"`
}

// StepEvent is emitted when a session enters a step or rejects input in it.
type StepEvent struct {
	EventBase
	Workflow WorkflowKind `json:"workflow"`
	Step     Step         `json:"step"`
	Reason   string       `json:"reason,omitempty"`
}

// OrderChangeEvent is emitted when an order is created or changes status.
type OrderChangeEvent struct {
	EventBase
	OrderID int64       `json:"order_id"`
	Status  OrderStatus `json:"status"`
}

// DeliveryEvent is emitted for each fan-out or broadcast delivery attempt.
type DeliveryEvent struct {
	EventBase
	Channel   string `json:"channel"` // "notify" or "broadcast"
	Recipient int64  `json:"recipient"`
	Failed    bool   `json:"failed,omitempty"`
}

// Hooks defines optional callbacks for observability. Nil callbacks are skipped.
type Hooks struct {
	OnStepEnter      func(context.Context, *StepEvent)
	OnValidationFail func(context.Context, *StepEvent)
	OnOrderCreated   func(context.Context, *OrderChangeEvent)
	OnOrderStatus    func(context.Context, *OrderChangeEvent)
	OnDelivery       func(context.Context, *DeliveryEvent)
}

// EmitStep calls OnStepEnter if it is set.
func (h Hooks) EmitStep(ctx context.Context, actorID int64, workflow WorkflowKind, step Step) {
	if h.OnStepEnter == nil {
		return
	}
	h.OnStepEnter(ctx, &StepEvent{
		EventBase: EventBase{Timestamp: time.Now(), Type: EventStepEnter, ActorID: actorID},
		Workflow:  workflow,
		Step:      step,
	})
}

// EmitValidationFail calls OnValidationFail if it is set.
func (h Hooks) EmitValidationFail(ctx context.Context, actorID int64, workflow WorkflowKind, step Step, reason string) {
	if h.OnValidationFail == nil {
		return
	}
	h.OnValidationFail(ctx, &StepEvent{
		EventBase: EventBase{Timestamp: time.Now(), Type: EventValidationFail, ActorID: actorID},
		Workflow:  workflow,
		Step:      step,
		Reason:    reason,
	})
}

// EmitOrder calls OnOrderCreated or OnOrderStatus depending on typ.
func (h Hooks) EmitOrder(ctx context.Context, typ EventType, o *Order) {
	fn := h.OnOrderStatus
	if typ == EventOrderCreated {
		fn = h.OnOrderCreated
	}
	if fn == nil {
		return
	}
	fn(ctx, &OrderChangeEvent{
		EventBase: EventBase{Timestamp: time.Now(), Type: typ, ActorID: o.ActorID},
		OrderID:   o.ID,
		Status:    o.Status,
	})
}

// EmitDelivery calls OnDelivery if it is set.
func (h Hooks) EmitDelivery(ctx context.Context, channel string, recipient int64, failed bool) {
	if h.OnDelivery == nil {
		return
	}
	h.OnDelivery(ctx, &DeliveryEvent{
		EventBase: EventBase{Timestamp: time.Now(), Type: EventDelivery},
		Channel:   channel,
		Recipient: recipient,
		Failed:    failed,
	})
}
