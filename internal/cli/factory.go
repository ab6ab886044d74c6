package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"

	"github.com/aretw0/storefront"
	"github.com/aretw0/storefront/internal/config"
	"github.com/aretw0/storefront/internal/logging"
	"github.com/aretw0/storefront/pkg/adapters/file"
	httpAdapter "github.com/aretw0/storefront/pkg/adapters/http"
	"github.com/aretw0/storefront/pkg/adapters/kafka"
	"github.com/aretw0/storefront/pkg/adapters/memory"
	"github.com/aretw0/storefront/pkg/adapters/postgres"
	"github.com/aretw0/storefront/pkg/adapters/redis"
	"github.com/aretw0/storefront/pkg/observability"
	"github.com/aretw0/storefront/pkg/persistence/middleware"
	"github.com/aretw0/storefront/pkg/ports"
)

// Runtime is a fully wired storefront plus the resources it holds open.
type Runtime struct {
	Config  *config.Config
	Logger  *slog.Logger
	Shop    *storefront.Shop
	Metrics *observability.Metrics

	closers []func() error
}

// NewLogger builds the logger described by cfg.
func NewLogger(cfg *config.Config, w io.Writer) *slog.Logger {
	return logging.NewWithFormat(w, logging.ParseLevel(cfg.LogLevel), cfg.LogFormat)
}

// Build wires a Shop from cfg, sending through messenger.
func Build(ctx context.Context, cfg *config.Config, messenger ports.Messenger, logger *slog.Logger) (*Runtime, error) {
	rt := &Runtime{Config: cfg, Logger: logger}

	store, err := rt.openSessions(cfg)
	if err != nil {
		_ = rt.Close(ctx)
		return nil, err
	}

	records, err := rt.openRecords(ctx, cfg)
	if err != nil {
		_ = rt.Close(ctx)
		return nil, err
	}

	rt.Metrics = observability.NewMetrics(nil)
	hooks := observability.Merge(
		observability.LogHooks(logger.With("component", "hooks")),
		rt.Metrics.Hooks(),
	)

	opts := []storefront.Option{
		storefront.WithSessionStore(store),
		storefront.WithRecords(records),
		storefront.WithAdmins(cfg.Admins...),
		storefront.WithCategories(cfg.Categories...),
		storefront.WithBroadcastDelay(cfg.BroadcastDelay),
		storefront.WithSessionTTL(cfg.SessionTTL),
		storefront.WithHooks(hooks),
		storefront.WithLogger(logger),
	}
	if cfg.FAQ != "" {
		opts = append(opts, storefront.WithFAQ(cfg.FAQ))
	}
	if cfg.Contact != "" {
		opts = append(opts, storefront.WithContact(cfg.Contact))
	}
	if locker := rt.lockerFor(store, cfg); locker != nil {
		opts = append(opts, storefront.WithLocker(locker))
	}
	if len(cfg.Kafka.Brokers) > 0 {
		pub := kafka.New(kafka.NewWriter(cfg.Kafka.Brokers),
			kafka.WithTopic(cfg.Kafka.Topic),
			kafka.WithLogger(logger.With("component", "kafka")),
		)
		rt.closers = append(rt.closers, pub.Close)
		opts = append(opts, storefront.WithPublisher(pub))
	}

	shop, err := storefront.New(messenger, opts...)
	if err != nil {
		_ = rt.Close(ctx)
		return nil, fmt.Errorf("create shop: %w", err)
	}
	rt.Shop = shop
	return rt, nil
}

// OpenSessionStore opens only the session backend, for the session
// maintenance commands.
func OpenSessionStore(cfg *config.Config) (ports.SessionStore, func() error, error) {
	rt := &Runtime{Config: cfg}
	store, err := rt.openSessions(cfg)
	if err != nil {
		_ = rt.Close(context.Background())
		return nil, nil, err
	}
	return store, func() error { return rt.Close(context.Background()) }, nil
}

// OpenRecords opens only the record backend.
func OpenRecords(ctx context.Context, cfg *config.Config) (ports.Records, func() error, error) {
	rt := &Runtime{Config: cfg}
	records, err := rt.openRecords(ctx, cfg)
	if err != nil {
		_ = rt.Close(ctx)
		return nil, nil, err
	}
	return records, func() error { return rt.Close(ctx) }, nil
}

func (rt *Runtime) openSessions(cfg *config.Config) (ports.SessionStore, error) {
	var store ports.SessionStore
	switch cfg.Storage.Sessions {
	case "file":
		store = file.New(filepath.Join(cfg.Storage.Dir, "sessions"))
	case "redis":
		rs := redis.New(cfg.Storage.RedisAddr, cfg.Storage.RedisPassword, cfg.Storage.RedisDB,
			redis.WithTTL(cfg.SessionTTL),
		)
		rt.closers = append(rt.closers, rs.Close)
		store = rs
	default:
		store = memory.NewStore()
	}

	if cfg.Encryption.Enabled() {
		active, fallbacks, err := cfg.Encryption.Decode()
		if err != nil {
			return nil, fmt.Errorf("session encryption: %w", err)
		}
		store = middleware.Chain(store, middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{
			ActiveKey:    active,
			FallbackKeys: fallbacks,
		}))
	}
	return store, nil
}

// lockerFor returns a Redis locker sharing the session client, or nil.
func (rt *Runtime) lockerFor(store ports.SessionStore, cfg *config.Config) ports.DistributedLocker {
	if !cfg.Storage.RedisLock {
		return nil
	}
	if cfg.Storage.Sessions != "redis" {
		if rt.Logger != nil {
			rt.Logger.Warn("redis_lock ignored: sessions are not stored in redis")
		}
		return nil
	}
	// The encryption middleware hides the concrete store; dial a client of our own.
	rs, ok := store.(*redis.Store)
	if !ok {
		rs = redis.New(cfg.Storage.RedisAddr, cfg.Storage.RedisPassword, cfg.Storage.RedisDB)
		rt.closers = append(rt.closers, rs.Close)
	}
	return redis.NewLocker(rs.Client(), "storefront:")
}

func (rt *Runtime) openRecords(ctx context.Context, cfg *config.Config) (ports.Records, error) {
	switch cfg.Storage.Records {
	case "file":
		records, err := file.OpenRecords(filepath.Join(cfg.Storage.Dir, "records"))
		if err != nil {
			return nil, fmt.Errorf("open file records: %w", err)
		}
		return records, nil
	case "postgres":
		pool, err := postgres.Connect(ctx, cfg.Storage.PostgresDSN)
		if err != nil {
			return nil, err
		}
		rt.closers = append(rt.closers, func() error {
			pool.Close()
			return nil
		})
		if err := postgres.Migrate(ctx, pool); err != nil {
			return nil, err
		}
		return postgres.NewRecords(pool), nil
	default:
		return memory.NewRecords(), nil
	}
}

// NewMessenger picks the outbound channel for the webhook server: the chat
// gateway when one is configured, server-sent event streams otherwise.
// streams is nil when the gateway is used.
func NewMessenger(cfg *config.Config, logger *slog.Logger) (ports.Messenger, *httpAdapter.StreamManager) {
	if cfg.HTTP.GatewayURL != "" {
		return httpAdapter.NewClientMessenger(cfg.HTTP.GatewayURL,
			httpAdapter.DefaultBreakerConfig("gateway"),
			httpAdapter.WithClientLogger(logger.With("component", "gateway")),
		), nil
	}
	streams := httpAdapter.NewStreamManager(logger.With("component", "streams"))
	return httpAdapter.NewStreamMessenger(streams), streams
}

// Close waits for the shop to settle, then releases every backend in
// reverse order of opening.
func (rt *Runtime) Close(ctx context.Context) error {
	var errs []error
	if rt.Shop != nil {
		if err := rt.Shop.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("shutdown shop: %w", err))
		}
	}
	for i := len(rt.closers) - 1; i >= 0; i-- {
		if err := rt.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	rt.closers = nil
	return errors.Join(errs...)
}
