package bot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/aretw0/storefront/internal/logging"
	"github.com/aretw0/storefront/pkg/broadcast"
	"github.com/aretw0/storefront/pkg/catalog"
	"github.com/aretw0/storefront/pkg/domain"
	"github.com/aretw0/storefront/pkg/form"
	"github.com/aretw0/storefront/pkg/orders"
	"github.com/aretw0/storefront/pkg/ports"
	"github.com/aretw0/storefront/pkg/session"
	"github.com/aretw0/storefront/pkg/text"
	"github.com/aretw0/storefront/pkg/workflow"
)

// Commands understood outside of the menu.
const (
	CommandStart = "/start"
	CommandHelp  = "/help"
)

// Deps are the components the router dispatches to.
type Deps struct {
	Sessions  *session.Manager
	Users     ports.UserRepository
	Products  ports.ProductRepository
	Workflow  *workflow.Engine
	Orders    *orders.Manager
	Catalog   *catalog.Catalog
	Broadcast *broadcast.Dispatcher
	Messenger ports.Messenger
}

// Router dispatches updates.
type Router struct {
	Deps

	admins  map[int64]bool
	faq     string
	contact string

	// broadcastCtx outlives the update that starts a broadcast.
	broadcastCtx context.Context
	logger       *slog.Logger
}

// Option configures the Router.
type Option func(*Router)

// WithAdmins sets the privileged actor allowlist.
func WithAdmins(ids []int64) Option {
	return func(r *Router) {
		for _, id := range ids {
			r.admins[id] = true
		}
	}
}

// WithFAQ overrides the FAQ answer.
func WithFAQ(s string) Option {
	return func(r *Router) {
		if s != "" {
			r.faq = s
		}
	}
}

// WithContact overrides the contact answer.
func WithContact(s string) Option {
	return func(r *Router) {
		if s != "" {
			r.contact = s
		}
	}
}

// WithBroadcastContext sets the parent context of broadcast runs. Cancelling
// it stops running broadcasts on shutdown.
func WithBroadcastContext(ctx context.Context) Option {
	return func(r *Router) {
		r.broadcastCtx = ctx
	}
}

// WithLogger configures a logger for the Router.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Router) {
		r.logger = logger
	}
}

// NewRouter creates a Router.
func NewRouter(deps Deps, opts ...Option) *Router {
	r := &Router{
		Deps:         deps,
		admins:       make(map[int64]bool),
		faq:          text.DefaultFAQ,
		contact:      text.DefaultContact,
		broadcastCtx: context.Background(),
		logger:       logging.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// IsAdmin reports whether the actor is on the allowlist.
func (r *Router) IsAdmin(actorID int64) bool {
	return r.admins[actorID]
}

// Menu returns the main keyboard for the actor.
func (r *Router) Menu(actorID int64) domain.Keyboard {
	return text.MainMenu(r.IsAdmin(actorID))
}

// Handle processes one update. User-correctable conditions are answered in
// the chat and not returned; domain.ErrForbidden is returned after the
// actor has been told.
func (r *Router) Handle(ctx context.Context, u domain.Update) error {
	r.logger.DebugContext(ctx, "update received",
		slog.String("update_id", u.ID),
		slog.Int64("actor_id", u.Actor.ID),
		slog.Bool("callback", u.Callback != ""),
	)

	var err error
	if u.Callback != "" {
		err = r.handleCallback(ctx, u)
	} else {
		err = r.handleMessage(ctx, u)
	}
	return settled(err)
}

// settled drops errors the actor has already been told about.
func settled(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, domain.ErrProductNotFound),
		errors.Is(err, domain.ErrOrderNotFound),
		errors.Is(err, domain.ErrProductUnavailable),
		errors.Is(err, domain.ErrInvalidTransition):
		return nil
	}
	return err
}

func (r *Router) handleMessage(ctx context.Context, u domain.Update) error {
	actor := u.Actor
	switch u.Text {
	case CommandStart:
		return r.start(ctx, actor)
	case CommandHelp:
		r.send(ctx, actor.ID, domain.Message{Text: text.Help, Keyboard: r.Menu(actor.ID)})
		return nil
	}

	in := form.Input{Text: u.Text, Contact: u.Contact, PhotoRef: u.PhotoRef}
	if handled, err := r.Workflow.Handle(ctx, actor, in); handled || err != nil {
		return err
	}
	if handled, err := r.Catalog.Handle(ctx, actor, in); handled || err != nil {
		return err
	}
	if handled, err := r.handleBroadcastContent(ctx, actor, in); handled || err != nil {
		return err
	}

	switch u.Text {
	case text.LabelCancel, text.CancelCommand:
		r.send(ctx, actor.ID, domain.Message{Text: text.NothingToCancel, Keyboard: r.Menu(actor.ID)})
		return nil
	case text.LabelCatalog:
		return r.Catalog.Browse(ctx, actor.ID)
	case text.LabelMyOrders:
		return r.myOrders(ctx, actor.ID)
	case text.LabelFAQ:
		r.send(ctx, actor.ID, domain.Message{Text: r.faq})
		return nil
	case text.LabelContact:
		r.send(ctx, actor.ID, domain.Message{Text: r.contact})
		return nil
	case text.LabelAddProduct, text.LabelProducts, text.LabelBroadcast, text.LabelStats:
		if err := r.requireAdmin(ctx, actor.ID); err != nil {
			return err
		}
		return r.adminMenu(ctx, actor.ID, u.Text)
	}

	r.send(ctx, actor.ID, domain.Message{Text: text.UnknownInput, Keyboard: r.Menu(actor.ID)})
	return nil
}

// start registers the actor, drops any open workflow and shows the menu.
func (r *Router) start(ctx context.Context, actor domain.Actor) error {
	if err := r.Users.AddUser(ctx, actor.User()); err != nil {
		return fmt.Errorf("register user %d: %w", actor.ID, err)
	}
	if err := r.Sessions.Delete(ctx, actor.ID); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	r.send(ctx, actor.ID, domain.Message{Text: text.Welcome(actor.User().DisplayName()), Keyboard: r.Menu(actor.ID)})
	return nil
}

func (r *Router) myOrders(ctx context.Context, actorID int64) error {
	list, err := r.Orders.ListForActor(ctx, actorID)
	if err != nil {
		return err
	}
	products := make(map[int64]*domain.Product, len(list))
	for _, o := range list {
		if _, seen := products[o.ProductID]; seen {
			continue
		}
		p, err := r.Products.GetProduct(ctx, o.ProductID)
		if err != nil && !errors.Is(err, domain.ErrProductNotFound) {
			return fmt.Errorf("get product %d: %w", o.ProductID, err)
		}
		products[o.ProductID] = p
	}
	r.send(ctx, actorID, domain.Message{Text: text.MyOrders(list, products)})
	return nil
}

func (r *Router) adminMenu(ctx context.Context, actorID int64, label string) error {
	switch label {
	case text.LabelAddProduct:
		return r.Catalog.StartAdd(ctx, actorID)
	case text.LabelProducts:
		return r.Catalog.AdminList(ctx, actorID)
	case text.LabelBroadcast:
		return r.startBroadcast(ctx, actorID)
	case text.LabelStats:
		return r.stats(ctx, actorID)
	}
	return nil
}

func (r *Router) stats(ctx context.Context, actorID int64) error {
	users, err := r.Users.CountUsers(ctx)
	if err != nil {
		return fmt.Errorf("count users: %w", err)
	}
	products, err := r.Products.ListProducts(ctx)
	if err != nil {
		return fmt.Errorf("list products: %w", err)
	}
	available := 0
	for _, p := range products {
		if p.Available {
			available++
		}
	}
	r.send(ctx, actorID, domain.Message{Text: text.Stats(users, len(products), available)})
	return nil
}

func (r *Router) requireAdmin(ctx context.Context, actorID int64) error {
	if r.IsAdmin(actorID) {
		return nil
	}
	r.logger.WarnContext(ctx, "admin trigger rejected", slog.Int64("actor_id", actorID))
	r.send(ctx, actorID, domain.Message{Text: text.Forbidden})
	return fmt.Errorf("actor %d: %w", actorID, domain.ErrForbidden)
}

func (r *Router) send(ctx context.Context, chatID int64, msg domain.Message) {
	if _, err := r.Messenger.Send(ctx, chatID, msg); err != nil {
		r.logger.WarnContext(ctx, "failed to send message", slog.Int64("chat_id", chatID), slog.String("err", err.Error()))
	}
}
