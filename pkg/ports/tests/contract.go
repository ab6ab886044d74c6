package tests

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/aretw0/storefront/pkg/domain"
	"github.com/aretw0/storefront/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunSessionStoreContract verifies that a SessionStore implementation adheres to the interface contract.
func RunSessionStoreContract(t *testing.T, store ports.SessionStore) {
	t.Helper()
	ctx := context.Background()
	key := "contract-" + time.Now().Format("150405.000000")

	t.Run("Save and Load", func(t *testing.T) {
		s := domain.NewSession(42, domain.WorkflowOrder, domain.StepCollectingPhone)
		s.Order = &domain.OrderDraft{ProductID: 7, CustomerName: "Dilorom"}

		require.NoError(t, store.Save(ctx, key, s))

		loaded, err := store.Load(ctx, key)
		require.NoError(t, err)
		assert.Equal(t, int64(42), loaded.ActorID)
		assert.Equal(t, domain.StepCollectingPhone, loaded.Step)
		require.NotNil(t, loaded.Order)
		assert.Equal(t, int64(7), loaded.Order.ProductID)
		assert.Equal(t, "Dilorom", loaded.Order.CustomerName)
	})

	t.Run("Load returns a copy", func(t *testing.T) {
		loaded, err := store.Load(ctx, key)
		require.NoError(t, err)
		loaded.Order.CustomerName = "mutated"

		again, err := store.Load(ctx, key)
		require.NoError(t, err)
		assert.Equal(t, "Dilorom", again.Order.CustomerName)
	})

	t.Run("Load Non-Existent", func(t *testing.T) {
		_, err := store.Load(ctx, "missing-"+key)
		assert.ErrorIs(t, err, domain.ErrSessionNotFound)
	})

	t.Run("List", func(t *testing.T) {
		require.NoError(t, store.Save(ctx, key+"-b", domain.NewSession(43, domain.WorkflowBroadcast, domain.StepBroadcastContent)))

		keys, err := store.List(ctx)
		require.NoError(t, err)
		assert.Contains(t, keys, key)
		assert.Contains(t, keys, key+"-b")
	})

	t.Run("Delete", func(t *testing.T) {
		require.NoError(t, store.Delete(ctx, key))
		require.NoError(t, store.Delete(ctx, key+"-b"))

		_, err := store.Load(ctx, key)
		assert.ErrorIs(t, err, domain.ErrSessionNotFound)

		keys, err := store.List(ctx)
		require.NoError(t, err)
		assert.NotContains(t, keys, key)

		// Deleting twice is fine.
		assert.NoError(t, store.Delete(ctx, key))
	})
}

// RunRecordsContract verifies product, order and user repository behavior.
// newRecords must return an empty store on every call.
func RunRecordsContract(t *testing.T, newRecords func(t *testing.T) ports.Records) {
	t.Helper()
	ctx := context.Background()

	t.Run("Products", func(t *testing.T) {
		r := newRecords(t)

		p := &domain.Product{Category: "Shoes", Name: "Sneakers", Price: 50000, Available: true}
		require.NoError(t, r.CreateProduct(ctx, p))
		assert.NotZero(t, p.ID)
		assert.False(t, p.CreatedAt.IsZero())

		got, err := r.GetProduct(ctx, p.ID)
		require.NoError(t, err)
		assert.Equal(t, "Sneakers", got.Name)
		assert.Equal(t, int64(50000), got.Price)

		got.Price = 65000
		require.NoError(t, r.UpdateProduct(ctx, got))
		got, err = r.GetProduct(ctx, p.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(65000), got.Price)

		toggled, err := r.ToggleAvailability(ctx, p.ID)
		require.NoError(t, err)
		assert.False(t, toggled.Available)

		list, err := r.ListProducts(ctx)
		require.NoError(t, err)
		assert.Len(t, list, 1)

		require.NoError(t, r.DeleteProduct(ctx, p.ID))
		_, err = r.GetProduct(ctx, p.ID)
		assert.ErrorIs(t, err, domain.ErrProductNotFound)

		_, err = r.ToggleAvailability(ctx, p.ID)
		assert.ErrorIs(t, err, domain.ErrProductNotFound)
	})

	t.Run("Orders", func(t *testing.T) {
		r := newRecords(t)

		o := &domain.Order{
			Number: "ORD-1", ProductID: 1, CustomerName: "Abdulloh", Phone: "+998901234567",
			Address: "Tashkent, Chilonzor 12", Quantity: 2, ActorID: 10, ActorDisplayName: "@abdulloh",
			Status: domain.OrderStatusNew, CreatedAt: time.Now().UTC(),
		}
		require.NoError(t, r.CreateOrder(ctx, o))
		assert.NotZero(t, o.ID)

		dup := *o
		dup.ID = 0
		assert.ErrorIs(t, r.CreateOrder(ctx, &dup), domain.ErrDuplicateOrderNumber)

		got, err := r.GetOrder(ctx, o.ID)
		require.NoError(t, err)
		assert.Equal(t, "ORD-1", got.Number)

		byNumber, err := r.GetOrderByNumber(ctx, "ORD-1")
		require.NoError(t, err)
		assert.Equal(t, o.ID, byNumber.ID)

		_, err = r.GetOrderByNumber(ctx, "ORD-404")
		assert.ErrorIs(t, err, domain.ErrOrderNotFound)

		require.NoError(t, r.UpdateOrderStatus(ctx, o.ID, domain.OrderStatusConfirmed))
		got, err = r.GetOrder(ctx, o.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.OrderStatusConfirmed, got.Status)

		assert.ErrorIs(t, r.UpdateOrderStatus(ctx, 9999, domain.OrderStatusConfirmed), domain.ErrOrderNotFound)

		mine, err := r.ListOrdersByActor(ctx, 10)
		require.NoError(t, err)
		assert.Len(t, mine, 1)

		none, err := r.ListOrdersByActor(ctx, 11)
		require.NoError(t, err)
		assert.Empty(t, none)
	})

	t.Run("Concurrent order IDs are unique", func(t *testing.T) {
		r := newRecords(t)
		const n = 20

		ids := make(chan int64, n)
		var wg sync.WaitGroup
		for i := 0; i < n; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				o := &domain.Order{
					Number:  "ORD-C" + time.Now().Format("150405.000000000") + string(rune('a'+i)),
					ActorID: 1, Quantity: 1, Status: domain.OrderStatusNew,
				}
				if assert.NoError(t, r.CreateOrder(ctx, o)) {
					ids <- o.ID
				}
			}(i)
		}
		wg.Wait()
		close(ids)

		seen := make(map[int64]bool)
		for id := range ids {
			assert.False(t, seen[id], "duplicate id %d", id)
			seen[id] = true
		}
		assert.Len(t, seen, n)
	})

	t.Run("Users", func(t *testing.T) {
		r := newRecords(t)

		require.NoError(t, r.AddUser(ctx, domain.User{ID: 1, Username: "a"}))
		require.NoError(t, r.AddUser(ctx, domain.User{ID: 2, FirstName: "Bob"}))
		require.NoError(t, r.AddUser(ctx, domain.User{ID: 1, Username: "a2"}))

		count, err := r.CountUsers(ctx)
		require.NoError(t, err)
		assert.Equal(t, 2, count)

		users, err := r.ListUsers(ctx)
		require.NoError(t, err)
		require.Len(t, users, 2)
		assert.Equal(t, "a2", users[0].Username)
	})
}
