package observability

import (
	"context"
	"log/slog"

	"github.com/aretw0/storefront/pkg/domain"
)

// LogHooks returns hooks that write one log line per event.
func LogHooks(logger *slog.Logger) domain.Hooks {
	return domain.Hooks{
		OnStepEnter: func(ctx context.Context, e *domain.StepEvent) {
			logger.DebugContext(ctx, "step_enter", "actor_id", e.ActorID, "workflow", e.Workflow, "step", e.Step)
		},
		OnValidationFail: func(ctx context.Context, e *domain.StepEvent) {
			logger.InfoContext(ctx, "validation_fail", "actor_id", e.ActorID, "step", e.Step, "reason", e.Reason)
		},
		OnOrderCreated: func(ctx context.Context, e *domain.OrderChangeEvent) {
			logger.InfoContext(ctx, "order_created", "order_id", e.OrderID, "actor_id", e.ActorID)
		},
		OnOrderStatus: func(ctx context.Context, e *domain.OrderChangeEvent) {
			logger.InfoContext(ctx, "order_status", "order_id", e.OrderID, "status", e.Status)
		},
		OnDelivery: func(ctx context.Context, e *domain.DeliveryEvent) {
			if e.Failed {
				logger.WarnContext(ctx, "delivery_failed", "channel", e.Channel, "recipient", e.Recipient)
			}
		},
	}
}

// Merge combines hooks; each callback runs every non-nil counterpart in order.
func Merge(all ...domain.Hooks) domain.Hooks {
	var steps, fails []func(context.Context, *domain.StepEvent)
	var created, status []func(context.Context, *domain.OrderChangeEvent)
	var deliveries []func(context.Context, *domain.DeliveryEvent)
	for _, h := range all {
		if h.OnStepEnter != nil {
			steps = append(steps, h.OnStepEnter)
		}
		if h.OnValidationFail != nil {
			fails = append(fails, h.OnValidationFail)
		}
		if h.OnOrderCreated != nil {
			created = append(created, h.OnOrderCreated)
		}
		if h.OnOrderStatus != nil {
			status = append(status, h.OnOrderStatus)
		}
		if h.OnDelivery != nil {
			deliveries = append(deliveries, h.OnDelivery)
		}
	}
	return domain.Hooks{
		OnStepEnter:      fanOut(steps),
		OnValidationFail: fanOut(fails),
		OnOrderCreated:   fanOut(created),
		OnOrderStatus:    fanOut(status),
		OnDelivery:       fanOut(deliveries),
	}
}

func fanOut[E any](fns []func(context.Context, E)) func(context.Context, E) {
	if len(fns) == 0 {
		return nil
	}
	return func(ctx context.Context, e E) {
		for _, fn := range fns {
			fn(ctx, e)
		}
	}
}
