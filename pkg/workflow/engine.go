package workflow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/aretw0/storefront/internal/logging"
	"github.com/aretw0/storefront/pkg/domain"
	"github.com/aretw0/storefront/pkg/form"
	"github.com/aretw0/storefront/pkg/orders"
	"github.com/aretw0/storefront/pkg/ports"
	"github.com/aretw0/storefront/pkg/session"
	"github.com/aretw0/storefront/pkg/text"
)

// OrderCreator creates the order once the form completes.
type OrderCreator interface {
	Create(ctx context.Context, in orders.CreateInput) (*domain.Order, error)
}

// Engine drives the order form.
type Engine struct {
	sessions  *session.Manager
	products  ports.ProductRepository
	orders    OrderCreator
	messenger ports.Messenger

	menu   func(actorID int64) domain.Keyboard
	hooks  domain.Hooks
	logger *slog.Logger
}

// Option configures the Engine.
type Option func(*Engine)

// WithMenu sets the keyboard shown when the actor leaves the form.
func WithMenu(menu func(actorID int64) domain.Keyboard) Option {
	return func(e *Engine) {
		e.menu = menu
	}
}

// WithHooks reports step changes and validation failures.
func WithHooks(hooks domain.Hooks) Option {
	return func(e *Engine) {
		e.hooks = hooks
	}
}

// WithLogger configures a logger for the Engine.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// NewEngine creates an order form engine.
func NewEngine(sessions *session.Manager, products ports.ProductRepository, creator OrderCreator, messenger ports.Messenger, opts ...Option) *Engine {
	e := &Engine{
		sessions:  sessions,
		products:  products,
		orders:    creator,
		messenger: messenger,
		menu:      func(int64) domain.Keyboard { return text.MainMenu(false) },
		logger:    logging.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Start opens the order form for a product. A missing or unavailable product
// is reported to the actor, no session is created, and the matching domain
// error is returned. Any other active workflow of the actor is replaced.
func (e *Engine) Start(ctx context.Context, actor domain.Actor, productID int64) error {
	product, err := e.products.GetProduct(ctx, productID)
	if errors.Is(err, domain.ErrProductNotFound) {
		e.send(ctx, actor.ID, domain.Message{Text: text.ProductNotFound})
		return fmt.Errorf("start order for product %d: %w", productID, err)
	}
	if err != nil {
		return fmt.Errorf("get product %d: %w", productID, err)
	}
	if !product.Available {
		e.send(ctx, actor.ID, domain.Message{Text: text.ProductUnavailable})
		return fmt.Errorf("start order for product %d: %w", productID, domain.ErrProductUnavailable)
	}

	err = e.sessions.WithLock(ctx, actor.ID, func(ctx context.Context, tx *session.Tx) error {
		s := domain.NewSession(actor.ID, domain.WorkflowOrder, domain.StepCollectingName)
		s.Order = &domain.OrderDraft{ProductID: product.ID}
		return tx.Save(ctx, s)
	})
	if err != nil {
		return fmt.Errorf("save session: %w", err)
	}

	e.logger.DebugContext(ctx, "order form started", slog.Int64("actor_id", actor.ID), slog.Int64("product_id", product.ID))
	e.hooks.EmitStep(ctx, actor.ID, domain.WorkflowOrder, domain.StepCollectingName)
	e.send(ctx, actor.ID, domain.Message{Text: text.AskName(product), Keyboard: text.CancelKeyboard()})
	return nil
}

// Handle feeds one input to the actor's order form. It reports false when
// the actor has no order form in progress, leaving the input to other
// handlers. Rejected input re-prompts the same step and keeps the session.
func (e *Engine) Handle(ctx context.Context, actor domain.Actor, in form.Input) (bool, error) {
	handled := false
	err := e.sessions.WithLock(ctx, actor.ID, func(ctx context.Context, tx *session.Tx) error {
		s, err := tx.Load(ctx)
		if errors.Is(err, domain.ErrSessionNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		if s.Workflow != domain.WorkflowOrder || !s.Step.Collecting() || s.Order == nil {
			return nil
		}
		handled = true

		if in.Contact == nil && text.IsCancel(in.Text) {
			return e.cancel(ctx, tx, actor.ID)
		}
		return e.step(ctx, tx, actor, s, in)
	})
	return handled, err
}

// Cancel abandons the actor's order form, if any, and reports whether one was active.
func (e *Engine) Cancel(ctx context.Context, actorID int64) (bool, error) {
	cancelled := false
	err := e.sessions.WithLock(ctx, actorID, func(ctx context.Context, tx *session.Tx) error {
		s, err := tx.Load(ctx)
		if errors.Is(err, domain.ErrSessionNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		if s.Workflow != domain.WorkflowOrder {
			return nil
		}
		cancelled = true
		return e.cancel(ctx, tx, actorID)
	})
	return cancelled, err
}

func (e *Engine) cancel(ctx context.Context, tx *session.Tx, actorID int64) error {
	if err := tx.Delete(ctx); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	e.hooks.EmitStep(ctx, actorID, domain.WorkflowOrder, domain.StepIdle)
	e.send(ctx, actorID, domain.Message{Text: text.OrderCancelled(), Keyboard: e.menu(actorID)})
	return nil
}

func (e *Engine) step(ctx context.Context, tx *session.Tx, actor domain.Actor, s *domain.Session, in form.Input) error {
	field, ok := form.OrderFieldFor(s.Step)
	if !ok {
		return fmt.Errorf("no field for step %s", s.Step)
	}

	res, err := field.Accept(in, s.Order)
	if ve, ok := form.AsValidationError(err); ok {
		e.hooks.EmitValidationFail(ctx, actor.ID, domain.WorkflowOrder, s.Step, ve.Reason)
		e.send(ctx, actor.ID, domain.Message{Text: text.Reprompt(ve.Message), Keyboard: keyboardFor(s.Step)})
		return nil
	}
	if err != nil {
		return err
	}

	next := field.Next()
	if next == domain.StepCompleted {
		return e.complete(ctx, tx, actor, s)
	}

	s.Advance(next)
	if err := tx.Save(ctx, s); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	e.hooks.EmitStep(ctx, actor.ID, domain.WorkflowOrder, next)
	e.send(ctx, actor.ID, domain.Message{Text: promptAfter(s.Step, s.Order, res), Keyboard: keyboardFor(next)})
	return nil
}

// complete turns the finished form into an order. The product is fetched
// again because it may have been deleted while the form was open.
func (e *Engine) complete(ctx context.Context, tx *session.Tx, actor domain.Actor, s *domain.Session) error {
	draft := s.Order

	product, err := e.products.GetProduct(ctx, draft.ProductID)
	if errors.Is(err, domain.ErrProductNotFound) {
		e.logger.InfoContext(ctx, "product vanished during order form",
			slog.Int64("actor_id", actor.ID), slog.Int64("product_id", draft.ProductID))
		if err := tx.Delete(ctx); err != nil {
			return fmt.Errorf("delete session: %w", err)
		}
		e.hooks.EmitStep(ctx, actor.ID, domain.WorkflowOrder, domain.StepIdle)
		e.send(ctx, actor.ID, domain.Message{Text: text.ProductVanished, Keyboard: e.menu(actor.ID)})
		return nil
	}
	if err != nil {
		return fmt.Errorf("get product %d: %w", draft.ProductID, err)
	}

	order, err := e.orders.Create(ctx, orders.CreateInput{
		ActorID:          actor.ID,
		ActorDisplayName: actor.User().DisplayName(),
		ProductID:        product.ID,
		CustomerName:     draft.CustomerName,
		Phone:            draft.Phone,
		Address:          draft.Address,
		Quantity:         draft.Quantity,
	})
	if err != nil {
		return fmt.Errorf("complete order form: %w", err)
	}

	// The order is durable now; a stale session must not create it twice.
	if err := tx.Delete(ctx); err != nil {
		e.logger.ErrorContext(ctx, "failed to clear completed order form",
			slog.Int64("actor_id", actor.ID), slog.Int64("order_id", order.ID), slog.String("err", err.Error()))
		s.Order = nil
		s.Advance(domain.StepCompleted)
		if err := tx.Save(ctx, s); err != nil {
			e.logger.ErrorContext(ctx, "failed to close completed order form",
				slog.Int64("actor_id", actor.ID), slog.String("err", err.Error()))
		}
	}
	e.hooks.EmitStep(ctx, actor.ID, domain.WorkflowOrder, domain.StepCompleted)
	e.send(ctx, actor.ID, text.PendingSummary(order, product))
	return nil
}

// send delivers a message to the actor. Failures are logged; the session
// state is already persisted.
func (e *Engine) send(ctx context.Context, chatID int64, msg domain.Message) {
	if _, err := e.messenger.Send(ctx, chatID, msg); err != nil {
		e.logger.WarnContext(ctx, "failed to send message", slog.Int64("actor_id", chatID), slog.String("err", err.Error()))
	}
}

func promptAfter(step domain.Step, d *domain.OrderDraft, res form.Result) string {
	switch step {
	case domain.StepCollectingPhone:
		return text.AskPhone(d.CustomerName)
	case domain.StepCollectingAddress:
		return text.PhoneAccepted(d.Phone, res.Warning)
	case domain.StepCollectingQuantity:
		return text.AddressAccepted()
	}
	return ""
}

func keyboardFor(step domain.Step) domain.Keyboard {
	if step == domain.StepCollectingPhone {
		return text.ContactKeyboard()
	}
	return text.CancelKeyboard()
}
