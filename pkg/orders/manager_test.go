package orders_test

import (
	"context"
	"errors"
	"regexp"
	"sync"
	"testing"
	"time"

	"github.com/aretw0/storefront/pkg/adapters/memory"
	"github.com/aretw0/storefront/pkg/domain"
	"github.com/aretw0/storefront/pkg/notify"
	"github.com/aretw0/storefront/pkg/orders"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockPublisher struct {
	mock.Mock
}

func (m *mockPublisher) Publish(ctx context.Context, e domain.OrderEvent) error {
	return m.Called(ctx, e).Error(0)
}

type fixture struct {
	records   *memory.Records
	messenger *memory.Messenger
	manager   *orders.Manager
	product   *domain.Product
}

var admins = []int64{900, 901, 902}

func newFixture(t *testing.T, opts ...orders.Option) *fixture {
	t.Helper()
	records := memory.NewRecords()
	messenger := memory.NewMessenger()
	product := &domain.Product{Category: "Shoes", Name: "Sneakers", Price: 50000, Available: true}
	require.NoError(t, records.CreateProduct(context.Background(), product))

	return &fixture{
		records:   records,
		messenger: messenger,
		manager:   orders.NewManager(records, records, notify.New(messenger, admins), opts...),
		product:   product,
	}
}

func (f *fixture) create(t *testing.T) *domain.Order {
	t.Helper()
	o, err := f.manager.Create(context.Background(), orders.CreateInput{
		ActorID: 10, ActorDisplayName: "@ab", ProductID: f.product.ID,
		CustomerName: "Ab", Phone: "+998901234567", Address: "Tashkent, Chilonzor 12", Quantity: 5,
	})
	require.NoError(t, err)
	return o
}

func TestNewNumber_Format(t *testing.T) {
	now := time.Date(2026, 10, 18, 9, 0, 0, 0, time.UTC)
	number := orders.NewNumber(now)
	assert.Regexp(t, regexp.MustCompile(`^ORD-261018-[0-9A-F]{6}$`), number)
	assert.NotEqual(t, number, orders.NewNumber(now))
}

func TestCreate(t *testing.T) {
	f := newFixture(t)
	o := f.create(t)

	assert.NotZero(t, o.ID)
	assert.Equal(t, domain.OrderStatusNew, o.Status)
	assert.NotEqual(t, "", o.Number)
	assert.Equal(t, int64(250000), o.Total(f.product.Price))

	stored, err := f.manager.Get(context.Background(), o.ID)
	require.NoError(t, err)
	assert.Equal(t, o.Number, stored.Number)
	assert.Empty(t, f.messenger.To(admins[0]), "creation does not notify")
}

func TestCreate_RejectsQuantityOutOfRange(t *testing.T) {
	f := newFixture(t)
	for _, q := range []int{0, 101} {
		_, err := f.manager.Create(context.Background(), orders.CreateInput{ProductID: f.product.ID, Quantity: q})
		assert.ErrorIs(t, err, domain.ErrInvalidOrder)
	}
}

func TestCreate_RegeneratesCollidingNumber(t *testing.T) {
	numbers := []string{"ORD-X", "ORD-X", "ORD-Y"}
	var i int
	f := newFixture(t, orders.WithNumberFunc(func(time.Time) string {
		n := numbers[i]
		i++
		return n
	}))

	first := f.create(t)
	second := f.create(t)
	assert.Equal(t, "ORD-X", first.Number)
	assert.Equal(t, "ORD-Y", second.Number)
}

func TestCreate_ConcurrentNumbersAndIDsAreUnique(t *testing.T) {
	f := newFixture(t)
	const n = 30

	var (
		mu      sync.Mutex
		ids     = map[int64]bool{}
		numbers = map[string]bool{}
		wg      sync.WaitGroup
	)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			o := f.create(t)
			mu.Lock()
			ids[o.ID] = true
			numbers[o.Number] = true
			mu.Unlock()
		}()
	}
	wg.Wait()

	assert.Len(t, ids, n)
	assert.Len(t, numbers, n)
}

func TestConfirm_NotifiesEveryAdminDespiteFailures(t *testing.T) {
	f := newFixture(t)
	f.messenger.FailFor(901)
	o := f.create(t)

	confirmed, err := f.manager.Confirm(context.Background(), o.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusConfirmed, confirmed.Status)

	stored, err := f.manager.Get(context.Background(), o.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusConfirmed, stored.Status)

	assert.Len(t, f.messenger.To(900), 1)
	assert.Empty(t, f.messenger.To(901))
	assert.Len(t, f.messenger.To(902), 1)
}

func TestConfirm_IsGuarded(t *testing.T) {
	f := newFixture(t)
	o := f.create(t)

	_, err := f.manager.Confirm(context.Background(), o.ID)
	require.NoError(t, err)

	_, err = f.manager.Confirm(context.Background(), o.ID)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
	assert.Len(t, f.messenger.To(900), 1, "second confirm must not notify again")

	_, err = f.manager.Cancel(context.Background(), o.ID)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
}

func TestConfirm_NotFound(t *testing.T) {
	f := newFixture(t)
	_, err := f.manager.Confirm(context.Background(), 404)
	assert.ErrorIs(t, err, domain.ErrOrderNotFound)
}

func TestConfirm_DeletedProductStillNotifies(t *testing.T) {
	f := newFixture(t)
	o := f.create(t)
	require.NoError(t, f.records.DeleteProduct(context.Background(), f.product.ID))

	_, err := f.manager.Confirm(context.Background(), o.ID)
	require.NoError(t, err)
	assert.Contains(t, f.messenger.Last(900), "(deleted product)")
}

// brokenProducts fails every product lookup with a storage error.
type brokenProducts struct {
	*memory.Records
}

func (brokenProducts) GetProduct(context.Context, int64) (*domain.Product, error) {
	return nil, errors.New("connection reset")
}

func TestConfirm_ProductLookupErrorIsNotDeletion(t *testing.T) {
	f := newFixture(t)
	o := f.create(t)
	manager := orders.NewManager(f.records, brokenProducts{f.records}, notify.New(f.messenger, admins))

	confirmed, err := manager.Confirm(context.Background(), o.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusConfirmed, confirmed.Status)

	last := f.messenger.Last(900)
	assert.Contains(t, last, "(product unavailable)")
	assert.NotContains(t, last, "(deleted product)")
}

func TestCancel(t *testing.T) {
	f := newFixture(t)
	o := f.create(t)

	cancelled, err := f.manager.Cancel(context.Background(), o.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusCancelled, cancelled.Status)
	assert.Empty(t, f.messenger.To(900))

	_, err = f.manager.Confirm(context.Background(), o.ID)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
}

func TestListForActor(t *testing.T) {
	f := newFixture(t)
	f.create(t)
	f.create(t)

	mine, err := f.manager.ListForActor(context.Background(), 10)
	require.NoError(t, err)
	assert.Len(t, mine, 2)

	others, err := f.manager.ListForActor(context.Background(), 11)
	require.NoError(t, err)
	assert.Empty(t, others)
}

func TestPublisher_FailuresAreNotFatal(t *testing.T) {
	pub := new(mockPublisher)
	pub.On("Publish", mock.Anything, mock.MatchedBy(func(e domain.OrderEvent) bool {
		return e.Type == domain.OrderEventCreated
	})).Return(errors.New("broker down")).Once()
	pub.On("Publish", mock.Anything, mock.MatchedBy(func(e domain.OrderEvent) bool {
		return e.Type == domain.OrderEventConfirmed && e.Status == domain.OrderStatusConfirmed
	})).Return(nil).Once()

	f := newFixture(t, orders.WithPublisher(pub))
	o := f.create(t)
	_, err := f.manager.Confirm(context.Background(), o.ID)
	require.NoError(t, err)

	pub.AssertExpectations(t)
}

func TestHooks(t *testing.T) {
	var created, changed int
	hooks := domain.Hooks{
		OnOrderCreated: func(context.Context, *domain.OrderChangeEvent) { created++ },
		OnOrderStatus:  func(context.Context, *domain.OrderChangeEvent) { changed++ },
	}
	f := newFixture(t, orders.WithHooks(hooks))
	o := f.create(t)
	_, err := f.manager.Cancel(context.Background(), o.ID)
	require.NoError(t, err)

	assert.Equal(t, 1, created)
	assert.Equal(t, 1, changed)
}
