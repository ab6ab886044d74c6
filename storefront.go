package storefront

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/aretw0/storefront/internal/logging"
	"github.com/aretw0/storefront/pkg/adapters/memory"
	"github.com/aretw0/storefront/pkg/bot"
	"github.com/aretw0/storefront/pkg/broadcast"
	"github.com/aretw0/storefront/pkg/catalog"
	"github.com/aretw0/storefront/pkg/domain"
	"github.com/aretw0/storefront/pkg/notify"
	"github.com/aretw0/storefront/pkg/orders"
	"github.com/aretw0/storefront/pkg/ports"
	"github.com/aretw0/storefront/pkg/session"
	"github.com/aretw0/storefront/pkg/workflow"
)

// Shop is the high-level entry point of the storefront.
// It wires sessions, records, workflows and the update router.
type Shop struct {
	store      ports.SessionStore
	records    ports.Records
	messenger  ports.Messenger
	publisher  ports.EventPublisher
	locker     ports.DistributedLocker
	sessionTTL time.Duration

	admins         []int64
	categories     []string
	faq, contact   string
	broadcastDelay time.Duration
	hooks          domain.Hooks
	logger         *slog.Logger

	sessions   *session.Manager
	orders     *orders.Manager
	notifier   *notify.Notifier
	workflow   *workflow.Engine
	catalog    *catalog.Catalog
	dispatcher *broadcast.Dispatcher
	router     *bot.Router

	stopBroadcasts context.CancelFunc
}

// Option defines a functional option for configuring the Shop.
type Option func(*Shop)

// WithSessionStore sets the session store (default: in memory).
func WithSessionStore(store ports.SessionStore) Option {
	return func(s *Shop) {
		s.store = store
	}
}

// WithRecords sets the product, order and user store (default: in memory).
func WithRecords(records ports.Records) Option {
	return func(s *Shop) {
		s.records = records
	}
}

// WithPublisher publishes order lifecycle events.
func WithPublisher(p ports.EventPublisher) Option {
	return func(s *Shop) {
		s.publisher = p
	}
}

// WithLocker coordinates session access through a distributed lock.
func WithLocker(l ports.DistributedLocker) Option {
	return func(s *Shop) {
		s.locker = l
	}
}

// WithSessionTTL expires abandoned sessions after ttl. Zero disables expiry.
func WithSessionTTL(ttl time.Duration) Option {
	return func(s *Shop) {
		s.sessionTTL = ttl
	}
}

// WithAdmins sets the privileged actors. They receive order notifications
// and may use the admin menu.
func WithAdmins(ids ...int64) Option {
	return func(s *Shop) {
		s.admins = append(s.admins, ids...)
	}
}

// WithCategories restricts product categories.
func WithCategories(categories ...string) Option {
	return func(s *Shop) {
		s.categories = append(s.categories, categories...)
	}
}

// WithFAQ overrides the FAQ answer.
func WithFAQ(faq string) Option {
	return func(s *Shop) {
		s.faq = faq
	}
}

// WithContact overrides the contact answer.
func WithContact(contact string) Option {
	return func(s *Shop) {
		s.contact = contact
	}
}

// WithBroadcastDelay sets the pause between broadcast sends (default 50ms).
func WithBroadcastDelay(d time.Duration) Option {
	return func(s *Shop) {
		s.broadcastDelay = d
	}
}

// WithHooks registers observability hooks.
func WithHooks(hooks domain.Hooks) Option {
	return func(s *Shop) {
		s.hooks = hooks
	}
}

// WithLogger sets a custom structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Shop) {
		s.logger = logger
	}
}

// New builds a Shop sending through messenger.
func New(messenger ports.Messenger, opts ...Option) (*Shop, error) {
	if messenger == nil {
		return nil, errors.New("messenger is required")
	}
	s := &Shop{messenger: messenger, broadcastDelay: broadcast.DefaultDelay}
	for _, opt := range opts {
		opt(s)
	}

	if s.store == nil {
		s.store = memory.NewStore()
	}
	if s.records == nil {
		s.records = memory.NewRecords()
	}
	if s.logger == nil {
		s.logger = logging.NewNop()
	}

	sessionOpts := []session.Option{session.WithLogger(s.logger)}
	if s.locker != nil {
		sessionOpts = append(sessionOpts, session.WithLocker(s.locker))
	}
	if s.sessionTTL > 0 {
		sessionOpts = append(sessionOpts, session.WithTTL(s.sessionTTL))
	}
	s.sessions = session.NewManager(s.store, sessionOpts...)

	s.notifier = notify.New(s.messenger, s.admins,
		notify.WithHooks(s.hooks),
		notify.WithLogger(s.logger.With("component", "notify")),
	)

	orderOpts := []orders.Option{
		orders.WithHooks(s.hooks),
		orders.WithLogger(s.logger.With("component", "orders")),
	}
	if s.publisher != nil {
		orderOpts = append(orderOpts, orders.WithPublisher(s.publisher))
	}
	s.orders = orders.NewManager(s.records, s.records, s.notifier, orderOpts...)

	s.dispatcher = broadcast.New(s.messenger, s.records,
		broadcast.WithDelay(s.broadcastDelay),
		broadcast.WithHooks(s.hooks),
		broadcast.WithLogger(s.logger.With("component", "broadcast")),
	)

	// The router owns the menu; the workflows ask it lazily.
	var router *bot.Router
	menu := func(actorID int64) domain.Keyboard { return router.Menu(actorID) }

	s.workflow = workflow.NewEngine(s.sessions, s.records, s.orders, s.messenger,
		workflow.WithMenu(menu),
		workflow.WithHooks(s.hooks),
		workflow.WithLogger(s.logger.With("component", "workflow")),
	)
	s.catalog = catalog.New(s.sessions, s.records, s.messenger,
		catalog.WithCategories(s.categories),
		catalog.WithMenu(menu),
		catalog.WithHooks(s.hooks),
		catalog.WithLogger(s.logger.With("component", "catalog")),
	)

	broadcastCtx, stop := context.WithCancel(context.Background())
	s.stopBroadcasts = stop

	router = bot.NewRouter(bot.Deps{
		Sessions:  s.sessions,
		Users:     s.records,
		Products:  s.records,
		Workflow:  s.workflow,
		Orders:    s.orders,
		Catalog:   s.catalog,
		Broadcast: s.dispatcher,
		Messenger: s.messenger,
	},
		bot.WithAdmins(s.admins),
		bot.WithFAQ(s.faq),
		bot.WithContact(s.contact),
		bot.WithBroadcastContext(broadcastCtx),
		bot.WithLogger(s.logger.With("component", "bot")),
	)
	s.router = router

	return s, nil
}

// Handle processes one inbound update.
func (s *Shop) Handle(ctx context.Context, u domain.Update) error {
	return s.router.Handle(ctx, u)
}

// Shutdown waits for running broadcasts to finish. If ctx ends first the
// broadcasts are stopped and ctx.Err() is returned.
func (s *Shop) Shutdown(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		s.dispatcher.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.stopBroadcasts()
		return nil
	case <-ctx.Done():
		s.stopBroadcasts()
		<-done
		return ctx.Err()
	}
}

// Sessions returns the session manager.
func (s *Shop) Sessions() *session.Manager { return s.sessions }

// Orders returns the order lifecycle manager.
func (s *Shop) Orders() *orders.Manager { return s.orders }

// Records returns the record store.
func (s *Shop) Records() ports.Records { return s.records }

// Router returns the update router.
func (s *Shop) Router() *bot.Router { return s.router }
