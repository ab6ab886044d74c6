package redis_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/aretw0/storefront/pkg/adapters/redis"
	"github.com/aretw0/storefront/pkg/domain"
	"github.com/aretw0/storefront/pkg/ports/tests"
	backend "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newClient(t *testing.T) (*miniredis.Miniredis, *backend.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := backend.NewClient(&backend.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

func TestRedisStore_Contract(t *testing.T) {
	_, client := newClient(t)
	tests.RunSessionStoreContract(t, redis.NewFromClient(client))
}

func TestRedisStore_TTL_Expiration(t *testing.T) {
	mr, client := newClient(t)

	now := time.Now()
	store := redis.NewFromClient(client,
		redis.WithTTL(time.Second),
		redis.WithClock(func() time.Time { return now }),
	)
	ctx := context.Background()

	s := domain.NewSession(42, domain.WorkflowOrder, domain.StepCollectingName)
	s.Order = &domain.OrderDraft{ProductID: 1}
	require.NoError(t, store.Save(ctx, "42", s))

	keys, err := store.List(ctx)
	require.NoError(t, err)
	assert.Contains(t, keys, "42")

	// Key expiration happens inside redis.
	mr.FastForward(2 * time.Second)
	_, err = store.Load(ctx, "42")
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)

	// The index is pruned lazily against the store clock.
	now = now.Add(2 * time.Second)
	keys, err = store.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, keys)
}

func TestRedisStore_Prefix(t *testing.T) {
	mr, client := newClient(t)

	store := redis.NewFromClient(client, redis.WithPrefix("custom:app:"))
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "7", domain.NewSession(7, domain.WorkflowAddProduct, domain.StepProductName)))

	assert.True(t, mr.Exists("custom:app:7"), "Expected key with custom prefix to exist")
	assert.True(t, mr.Exists("custom:app:index"), "Expected index with custom prefix to exist")

	list, err := store.List(ctx)
	require.NoError(t, err)
	assert.Contains(t, list, "7")
}

func TestRedisStore_DefaultPrefix(t *testing.T) {
	mr, client := newClient(t)
	store := redis.NewFromClient(client)

	require.NoError(t, store.Save(context.Background(), "1", domain.NewSession(1, domain.WorkflowOrder, domain.StepCollectingName)))
	assert.True(t, mr.Exists(redis.DefaultPrefix+"1"))
	assert.Same(t, client, store.Client())
}
