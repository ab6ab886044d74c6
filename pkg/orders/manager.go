package orders

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/aretw0/storefront/internal/logging"
	"github.com/aretw0/storefront/pkg/domain"
	"github.com/aretw0/storefront/pkg/notify"
	"github.com/aretw0/storefront/pkg/ports"
)

// maxNumberAttempts bounds order-number regeneration on collision.
const maxNumberAttempts = 5

// Notifier delivers a confirmed order to the privileged recipients.
type Notifier interface {
	Notify(ctx context.Context, o *domain.Order, p *domain.Product) notify.Report
}

// Manager implements the order lifecycle.
type Manager struct {
	orders    ports.OrderRepository
	products  ports.ProductRepository
	notifier  Notifier
	publisher ports.EventPublisher

	// mu serializes status transitions so an order is confirmed at most once.
	mu sync.Mutex

	hooks     domain.Hooks
	newNumber NumberFunc
	now       func() time.Time
	logger    *slog.Logger
}

// Option configures the Manager.
type Option func(*Manager)

// WithPublisher publishes lifecycle events. Publish failures are logged only.
func WithPublisher(p ports.EventPublisher) Option {
	return func(m *Manager) {
		m.publisher = p
	}
}

// WithHooks reports order creation and status changes.
func WithHooks(hooks domain.Hooks) Option {
	return func(m *Manager) {
		m.hooks = hooks
	}
}

// WithNumberFunc overrides the order number generator.
func WithNumberFunc(fn NumberFunc) Option {
	return func(m *Manager) {
		m.newNumber = fn
	}
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) {
		m.now = now
	}
}

// WithLogger configures a logger for the Manager.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		m.logger = logger
	}
}

// NewManager creates an order lifecycle manager.
func NewManager(orders ports.OrderRepository, products ports.ProductRepository, notifier Notifier, opts ...Option) *Manager {
	m := &Manager{
		orders:    orders,
		products:  products,
		notifier:  notifier,
		newNumber: NewNumber,
		now:       time.Now,
		logger:    logging.NewNop(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// CreateInput holds the collected order form.
type CreateInput struct {
	ActorID          int64
	ActorDisplayName string
	ProductID        int64
	CustomerName     string
	Phone            string
	Address          string
	Quantity         int
}

// Create stores a new order with status new and a fresh order number.
func (m *Manager) Create(ctx context.Context, in CreateInput) (*domain.Order, error) {
	if in.Quantity < domain.MinQuantity || in.Quantity > domain.MaxQuantity {
		return nil, fmt.Errorf("quantity %d: %w", in.Quantity, domain.ErrInvalidOrder)
	}

	now := m.now().UTC()
	order := &domain.Order{
		ProductID:        in.ProductID,
		CustomerName:     in.CustomerName,
		Phone:            in.Phone,
		Address:          in.Address,
		Quantity:         in.Quantity,
		ActorID:          in.ActorID,
		ActorDisplayName: in.ActorDisplayName,
		Status:           domain.OrderStatusNew,
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	var err error
	for attempt := 0; attempt < maxNumberAttempts; attempt++ {
		order.Number, err = m.freeNumber(ctx, now)
		if err != nil {
			return nil, err
		}
		err = m.orders.CreateOrder(ctx, order)
		if !errors.Is(err, domain.ErrDuplicateOrderNumber) {
			break
		}
		m.logger.DebugContext(ctx, "order number collision", slog.String("order_number", order.Number))
	}
	if err != nil {
		return nil, fmt.Errorf("create order: %w", err)
	}

	m.logger.InfoContext(ctx, "order created",
		slog.Int64("order_id", order.ID),
		slog.String("order_number", order.Number),
		slog.Int64("actor_id", order.ActorID),
		slog.Int("quantity", order.Quantity),
	)
	m.hooks.EmitOrder(ctx, domain.EventOrderCreated, order)
	m.publish(ctx, domain.OrderEventCreated, order)
	return order, nil
}

// freeNumber generates numbers until one is not yet taken.
func (m *Manager) freeNumber(ctx context.Context, now time.Time) (string, error) {
	for attempt := 0; attempt < maxNumberAttempts; attempt++ {
		number := m.newNumber(now)
		_, err := m.orders.GetOrderByNumber(ctx, number)
		if errors.Is(err, domain.ErrOrderNotFound) {
			return number, nil
		}
		if err != nil {
			return "", fmt.Errorf("check order number: %w", err)
		}
	}
	return "", fmt.Errorf("no free order number after %d attempts: %w", maxNumberAttempts, domain.ErrDuplicateOrderNumber)
}

// Confirm moves a new order to confirmed and notifies the privileged
// recipients. Confirming an order that is not new returns
// domain.ErrInvalidTransition and sends nothing.
func (m *Manager) Confirm(ctx context.Context, id int64) (*domain.Order, error) {
	order, err := m.transition(ctx, id, domain.OrderStatusConfirmed)
	if err != nil {
		return nil, err
	}

	product, err := m.products.GetProduct(ctx, order.ProductID)
	switch {
	case errors.Is(err, domain.ErrProductNotFound):
		m.logger.WarnContext(ctx, "product of confirmed order not found",
			slog.Int64("order_id", order.ID),
			slog.Int64("product_id", order.ProductID),
		)
		product = &domain.Product{ID: order.ProductID, Name: "(deleted product)"}
	case err != nil:
		m.logger.ErrorContext(ctx, "failed to load product of confirmed order",
			slog.Int64("order_id", order.ID),
			slog.Int64("product_id", order.ProductID),
			slog.String("err", err.Error()),
		)
		product = &domain.Product{ID: order.ProductID, Name: "(product unavailable)"}
	}

	// Delivery failures stay in the report; the confirmation stands.
	m.notifier.Notify(ctx, order, product)

	m.publish(ctx, domain.OrderEventConfirmed, order)
	return order, nil
}

// Cancel moves a new order to cancelled. No notification is sent.
func (m *Manager) Cancel(ctx context.Context, id int64) (*domain.Order, error) {
	order, err := m.transition(ctx, id, domain.OrderStatusCancelled)
	if err != nil {
		return nil, err
	}
	m.publish(ctx, domain.OrderEventCancelled, order)
	return order, nil
}

func (m *Manager) transition(ctx context.Context, id int64, target domain.OrderStatus) (*domain.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	order, err := m.orders.GetOrder(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get order %d: %w", id, err)
	}
	if !order.CanTransitionTo(target) {
		return nil, fmt.Errorf("order %s is %s, cannot become %s: %w",
			order.Number, order.Status, target, domain.ErrInvalidTransition)
	}

	old := order.Status
	if err := m.orders.UpdateOrderStatus(ctx, id, target); err != nil {
		return nil, fmt.Errorf("update order status: %w", err)
	}
	order.Status = target
	order.UpdatedAt = m.now().UTC()

	m.logger.InfoContext(ctx, "order status updated",
		slog.Int64("order_id", id),
		slog.String("old_status", string(old)),
		slog.String("new_status", string(target)),
	)
	m.hooks.EmitOrder(ctx, domain.EventOrderStatus, order)
	return order, nil
}

// Get returns an order by ID.
func (m *Manager) Get(ctx context.Context, id int64) (*domain.Order, error) {
	order, err := m.orders.GetOrder(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get order %d: %w", id, err)
	}
	return order, nil
}

// ListForActor returns the actor's orders, oldest first.
func (m *Manager) ListForActor(ctx context.Context, actorID int64) ([]domain.Order, error) {
	orders, err := m.orders.ListOrdersByActor(ctx, actorID)
	if err != nil {
		return nil, fmt.Errorf("list orders for actor %d: %w", actorID, err)
	}
	return orders, nil
}

func (m *Manager) publish(ctx context.Context, typ domain.OrderEventType, o *domain.Order) {
	if m.publisher == nil {
		return
	}
	event := domain.OrderEvent{
		Type:       typ,
		OrderID:    o.ID,
		Number:     o.Number,
		ActorID:    o.ActorID,
		Status:     o.Status,
		OccurredAt: m.now().UTC(),
	}
	if err := m.publisher.Publish(ctx, event); err != nil {
		m.logger.ErrorContext(ctx, "failed to publish order event",
			slog.String("type", string(typ)),
			slog.Int64("order_id", o.ID),
			slog.String("err", err.Error()),
		)
	}
}
