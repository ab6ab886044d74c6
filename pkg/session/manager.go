package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/aretw0/storefront/internal/logging"
	"github.com/aretw0/storefront/pkg/domain"
	"github.com/aretw0/storefront/pkg/ports"
)

const defaultLockTTL = 30 * time.Second

// lockEntry holds the mutex and the reference count.
type lockEntry struct {
	mu   sync.Mutex
	refs int
}

// Manager owns the keyed session map of the workflow engine. It serializes
// access per actor and uses reference counting to garbage collect unused locks.
type Manager struct {
	store ports.SessionStore

	mu    sync.Mutex            // Global lock for the map
	locks map[string]*lockEntry // Map of active locks

	locker  ports.DistributedLocker // Optional distributed locker
	lockTTL time.Duration
	ttl     time.Duration // Session expiry; zero disables it
	now     func() time.Time
	logger  *slog.Logger
}

// Option configures the Manager.
type Option func(*Manager)

// WithLocker enables distributed locking.
func WithLocker(locker ports.DistributedLocker) Option {
	return func(m *Manager) {
		m.locker = locker
	}
}

// WithLockTTL sets the lease of distributed locks (default 30s).
func WithLockTTL(ttl time.Duration) Option {
	return func(m *Manager) {
		m.lockTTL = ttl
	}
}

// WithTTL expires sessions that were not updated for longer than ttl.
// Expired sessions are removed lazily on the next load.
func WithTTL(ttl time.Duration) Option {
	return func(m *Manager) {
		m.ttl = ttl
	}
}

// WithClock overrides the time source used for expiry.
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

// NewManager creates a new Session Manager with the given persistence store.
func NewManager(store ports.SessionStore, opts ...Option) *Manager {
	m := &Manager{
		store:   store,
		locks:   make(map[string]*lockEntry),
		lockTTL: defaultLockTTL,
		now:     time.Now,
		logger:  logging.NewNop(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// acquire gets or creates a lock entry and increments its reference count.
// The caller MUST Lock the entry.mu, and then call release(key) after unlocking.
func (m *Manager) acquire(key string) *lockEntry {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[key]
	if !exists {
		entry = &lockEntry{}
		m.locks[key] = entry
	}
	entry.refs++
	return entry
}

// release decrements the reference count and deletes the entry if it reaches zero.
func (m *Manager) release(key string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[key]
	if !exists {
		return
	}

	entry.refs--
	if entry.refs <= 0 {
		delete(m.locks, key)
	}
}

// Tx is the view of one actor's session while its lock is held.
type Tx struct {
	m   *Manager
	key string
	id  int64
}

// Load returns the actor's session, or domain.ErrSessionNotFound.
func (tx *Tx) Load(ctx context.Context) (*domain.Session, error) {
	s, err := tx.m.store.Load(ctx, tx.key)
	if err != nil {
		return nil, err
	}
	if tx.m.expired(s) {
		tx.m.logger.Debug("session expired", "actor_id", tx.id, "step", s.Step)
		if err := tx.m.store.Delete(ctx, tx.key); err != nil {
			return nil, fmt.Errorf("failed to delete expired session: %w", err)
		}
		return nil, domain.ErrSessionNotFound
	}
	return s, nil
}

// Save persists the session and refreshes its UpdatedAt.
func (tx *Tx) Save(ctx context.Context, s *domain.Session) error {
	s.ActorID = tx.id
	s.UpdatedAt = tx.m.now().UTC()
	if s.CreatedAt.IsZero() {
		s.CreatedAt = s.UpdatedAt
	}
	return tx.m.store.Save(ctx, tx.key, s)
}

// Delete removes the actor's session.
func (tx *Tx) Delete(ctx context.Context) error {
	return tx.m.store.Delete(ctx, tx.key)
}

func (m *Manager) expired(s *domain.Session) bool {
	return m.ttl > 0 && m.now().Sub(s.UpdatedAt) > m.ttl
}

// Load retrieves the actor's session.
func (m *Manager) Load(ctx context.Context, actorID int64) (*domain.Session, error) {
	var s *domain.Session
	err := m.WithLock(ctx, actorID, func(ctx context.Context, tx *Tx) error {
		var err error
		s, err = tx.Load(ctx)
		return err
	})
	return s, err
}

// Active returns the actor's session, or nil if there is none.
func (m *Manager) Active(ctx context.Context, actorID int64) (*domain.Session, error) {
	s, err := m.Load(ctx, actorID)
	if errors.Is(err, domain.ErrSessionNotFound) {
		return nil, nil
	}
	return s, err
}

// Start replaces any session of the actor with a fresh one.
func (m *Manager) Start(ctx context.Context, s *domain.Session) error {
	return m.WithLock(ctx, s.ActorID, func(ctx context.Context, tx *Tx) error {
		return tx.Save(ctx, s)
	})
}

// Save persists the session.
func (m *Manager) Save(ctx context.Context, s *domain.Session) error {
	return m.WithLock(ctx, s.ActorID, func(ctx context.Context, tx *Tx) error {
		return tx.Save(ctx, s)
	})
}

// Delete removes the actor's session from the store.
func (m *Manager) Delete(ctx context.Context, actorID int64) error {
	return m.WithLock(ctx, actorID, func(ctx context.Context, tx *Tx) error {
		return tx.Delete(ctx)
	})
}

// List delegates to the store.
func (m *Manager) List(ctx context.Context) ([]string, error) {
	return m.store.List(ctx)
}

// Store returns the underlying session store.
func (m *Manager) Store() ports.SessionStore {
	return m.store
}

// WithLock executes fn while holding the actor's session lock.
// fn must go through tx; calling Manager methods for the same actor deadlocks.
func (m *Manager) WithLock(ctx context.Context, actorID int64, fn func(context.Context, *Tx) error) error {
	key := domain.SessionKey(actorID)
	entry := m.acquire(key)
	entry.mu.Lock()
	defer func() {
		entry.mu.Unlock()
		m.release(key)
	}()

	if m.locker != nil {
		unlock, err := m.locker.Lock(ctx, key, m.lockTTL)
		if err != nil {
			return fmt.Errorf("failed to acquire distributed lock: %w", err)
		}
		defer func() {
			if err := unlock(ctx); err != nil {
				m.logger.Warn("Failed to release distributed lock (will expire via TTL)",
					"actor_id", actorID,
					"err", err,
				)
			}
		}()
	}

	return fn(ctx, &Tx{m: m, key: key, id: actorID})
}
