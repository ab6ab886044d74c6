package session_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/aretw0/storefront/pkg/adapters/memory"
	"github.com/aretw0/storefront/pkg/domain"
	"github.com/aretw0/storefront/pkg/ports"
	"github.com/aretw0/storefront/pkg/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManager_StartLoadDelete(t *testing.T) {
	ctx := context.Background()
	mgr := session.NewManager(memory.NewStore())

	s := domain.NewSession(7, domain.WorkflowOrder, domain.StepCollectingName)
	s.Order = &domain.OrderDraft{ProductID: 3}
	require.NoError(t, mgr.Start(ctx, s))

	loaded, err := mgr.Load(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, domain.StepCollectingName, loaded.Step)
	assert.False(t, loaded.CreatedAt.IsZero())

	keys, err := mgr.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{domain.SessionKey(7)}, keys)

	require.NoError(t, mgr.Delete(ctx, 7))
	active, err := mgr.Active(ctx, 7)
	require.NoError(t, err)
	assert.Nil(t, active)

	_, err = mgr.Load(ctx, 7)
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
}

func TestManager_StartReplacesExisting(t *testing.T) {
	ctx := context.Background()
	mgr := session.NewManager(memory.NewStore())

	require.NoError(t, mgr.Start(ctx, domain.NewSession(1, domain.WorkflowOrder, domain.StepCollectingAddress)))
	require.NoError(t, mgr.Start(ctx, domain.NewSession(1, domain.WorkflowAddProduct, domain.StepProductCategory)))

	s, err := mgr.Load(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, domain.WorkflowAddProduct, s.Workflow)
	assert.Nil(t, s.Order)
}

func TestManager_TTLExpiry(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }

	store := memory.NewStore()
	mgr := session.NewManager(store, session.WithTTL(10*time.Minute), session.WithClock(clock))

	require.NoError(t, mgr.Start(ctx, domain.NewSession(5, domain.WorkflowOrder, domain.StepCollectingPhone)))

	now = now.Add(9 * time.Minute)
	_, err := mgr.Load(ctx, 5)
	require.NoError(t, err)

	now = now.Add(2 * time.Minute)
	_, err = mgr.Load(ctx, 5)
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)

	keys, err := store.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, keys, "expired session is removed from the store")
}

func TestManager_WithLockSerializesActor(t *testing.T) {
	ctx := context.Background()
	mgr := session.NewManager(memory.NewStore())
	require.NoError(t, mgr.Start(ctx, domain.NewSession(9, domain.WorkflowOrder, domain.StepCollectingQuantity)))

	const workers = 50
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := mgr.WithLock(ctx, 9, func(ctx context.Context, tx *session.Tx) error {
				s, err := tx.Load(ctx)
				if err != nil {
					return err
				}
				if s.Order == nil {
					s.Order = &domain.OrderDraft{}
				}
				s.Order.Quantity++
				return tx.Save(ctx, s)
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	s, err := mgr.Load(ctx, 9)
	require.NoError(t, err)
	assert.Equal(t, workers, s.Order.Quantity)
}

type fakeLocker struct {
	mu       sync.Mutex
	locked   []string
	released int
	fail     bool
}

func (l *fakeLocker) Lock(ctx context.Context, key string, ttl time.Duration) (ports.UnlockFunc, error) {
	if l.fail {
		return nil, errors.New("redis down")
	}
	l.mu.Lock()
	l.locked = append(l.locked, key)
	l.mu.Unlock()
	return func(ctx context.Context) error {
		l.mu.Lock()
		l.released++
		l.mu.Unlock()
		return nil
	}, nil
}

func TestManager_DistributedLocker(t *testing.T) {
	ctx := context.Background()
	locker := &fakeLocker{}
	mgr := session.NewManager(memory.NewStore(), session.WithLocker(locker))

	require.NoError(t, mgr.Start(ctx, domain.NewSession(3, domain.WorkflowBroadcast, domain.StepBroadcastContent)))
	assert.Equal(t, []string{domain.SessionKey(3)}, locker.locked)
	assert.Equal(t, 1, locker.released)

	locker.fail = true
	err := mgr.Delete(ctx, 3)
	assert.ErrorContains(t, err, "distributed lock")
}
