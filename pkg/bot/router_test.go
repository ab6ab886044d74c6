package bot_test

import (
	"context"
	"testing"
	"time"

	"github.com/aretw0/storefront"
	"github.com/aretw0/storefront/pkg/adapters/memory"
	"github.com/aretw0/storefront/pkg/domain"
	"github.com/aretw0/storefront/pkg/text"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	admin    = domain.Actor{ID: 1, Username: "boss"}
	admin2   = domain.Actor{ID: 2, FirstName: "Second"}
	customer = domain.Actor{ID: 42, Username: "ab"}
	stranger = domain.Actor{ID: 43, FirstName: "Eve"}
)

type harness struct {
	shop      *storefront.Shop
	messenger *memory.Messenger
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	messenger := memory.NewMessenger()
	shop, err := storefront.New(messenger,
		storefront.WithAdmins(admin.ID, admin2.ID),
		storefront.WithBroadcastDelay(0),
	)
	require.NoError(t, err)
	return &harness{shop: shop, messenger: messenger}
}

func (h *harness) text(t *testing.T, a domain.Actor, s string) {
	t.Helper()
	require.NoError(t, h.shop.Handle(context.Background(), domain.Update{Actor: a, Text: s}))
}

func (h *harness) press(t *testing.T, a domain.Actor, data string) error {
	t.Helper()
	return h.shop.Handle(context.Background(), domain.Update{Actor: a, Callback: data})
}

func (h *harness) product(t *testing.T) *domain.Product {
	t.Helper()
	p := &domain.Product{Category: "Shoes", Name: "Sneakers", Price: 50000, Available: true}
	require.NoError(t, h.shop.Records().CreateProduct(context.Background(), p))
	return p
}

func (h *harness) order(t *testing.T, p *domain.Product) *domain.Order {
	t.Helper()
	require.NoError(t, h.press(t, customer, domain.CallbackData(domain.CallbackOrder, p.ID)))
	for _, in := range []string{"Ab", "+998901234567", "Tashkent, Chilonzor 12", "5"} {
		h.text(t, customer, in)
	}
	list, err := h.shop.Orders().ListForActor(context.Background(), customer.ID)
	require.NoError(t, err)
	require.NotEmpty(t, list)
	return &list[len(list)-1]
}

func TestStart_RegistersUserAndClearsSession(t *testing.T) {
	h := newHarness(t)
	p := h.product(t)
	require.NoError(t, h.press(t, customer, domain.CallbackData(domain.CallbackOrder, p.ID)))

	h.text(t, customer, "/start")

	count, err := h.shop.Records().CountUsers(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, count)
	assert.Contains(t, h.messenger.Last(customer.ID), "Welcome, @ab")

	active, err := h.shop.Sessions().Active(context.Background(), customer.ID)
	require.NoError(t, err)
	assert.Nil(t, active)
}

func TestAdminMenuIsForbiddenForCustomers(t *testing.T) {
	h := newHarness(t)

	err := h.shop.Handle(context.Background(), domain.Update{Actor: customer, Text: text.LabelBroadcast})
	assert.ErrorIs(t, err, domain.ErrForbidden)
	assert.Equal(t, text.Forbidden, h.messenger.Last(customer.ID))

	err = h.press(t, customer, domain.CallbackData(domain.CallbackAdminToggle, 1))
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestOrderConfirmationFlow(t *testing.T) {
	h := newHarness(t)
	h.messenger.FailFor(admin2.ID)
	p := h.product(t)
	o := h.order(t, p)
	assert.Equal(t, domain.OrderStatusNew, o.Status)

	require.NoError(t, h.press(t, customer, domain.CallbackData(domain.CallbackConfirmOrder, o.ID)))
	assert.Contains(t, h.messenger.Last(customer.ID), o.Number)
	assert.Contains(t, h.messenger.Last(admin.ID), "NEW ORDER")
	assert.Contains(t, h.messenger.Last(admin.ID), "250,000 so'm")

	stored, err := h.shop.Orders().Get(context.Background(), o.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusConfirmed, stored.Status)

	// A second confirm does not notify again.
	require.NoError(t, h.press(t, customer, domain.CallbackData(domain.CallbackConfirmOrder, o.ID)))
	assert.Contains(t, h.messenger.Last(customer.ID), "already been processed")
	assert.Len(t, h.messenger.To(admin.ID), 1)

	require.NoError(t, h.press(t, customer, domain.CallbackData(domain.CallbackCancelOrder, o.ID)))
	assert.Contains(t, h.messenger.Last(customer.ID), "already been processed")
}

func TestCancelOrderCallback(t *testing.T) {
	h := newHarness(t)
	o := h.order(t, h.product(t))

	require.NoError(t, h.press(t, customer, domain.CallbackData(domain.CallbackCancelOrder, o.ID)))
	assert.Contains(t, h.messenger.Last(customer.ID), text.OrderCancelledShort)
	assert.Empty(t, h.messenger.To(admin.ID))

	stored, err := h.shop.Orders().Get(context.Background(), o.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusCancelled, stored.Status)
}

func TestConfirmSomeoneElsesOrder(t *testing.T) {
	h := newHarness(t)
	o := h.order(t, h.product(t))

	err := h.press(t, stranger, domain.CallbackData(domain.CallbackConfirmOrder, o.ID))
	assert.ErrorIs(t, err, domain.ErrForbidden)
	assert.Equal(t, text.OrderNotFound, h.messenger.Last(stranger.ID))
}

func TestConfirmMissingOrder(t *testing.T) {
	h := newHarness(t)
	require.NoError(t, h.press(t, customer, domain.CallbackData(domain.CallbackConfirmOrder, 404)))
	assert.Equal(t, text.OrderNotFound, h.messenger.Last(customer.ID))
}

func TestOrderUnavailableProduct(t *testing.T) {
	h := newHarness(t)
	p := h.product(t)
	require.NoError(t, h.press(t, admin, domain.CallbackData(domain.CallbackAdminToggle, p.ID)))

	require.NoError(t, h.press(t, customer, domain.CallbackData(domain.CallbackOrder, p.ID)))
	assert.Equal(t, text.ProductUnavailable, h.messenger.Last(customer.ID))

	active, err := h.shop.Sessions().Active(context.Background(), customer.ID)
	require.NoError(t, err)
	assert.Nil(t, active)
}

func TestMyOrders(t *testing.T) {
	h := newHarness(t)
	h.order(t, h.product(t))

	h.text(t, customer, text.LabelMyOrders)
	assert.Contains(t, h.messenger.Last(customer.ID), "🆕 New")
	assert.Contains(t, h.messenger.Last(customer.ID), "Sneakers × 5")
}

func TestAdminAddsProductThroughMenu(t *testing.T) {
	h := newHarness(t)

	h.text(t, admin, text.LabelAddProduct)
	for _, in := range []string{"Hats", "Cap", "30000", "-", "-", "-"} {
		h.text(t, admin, in)
	}
	assert.Contains(t, h.messenger.Last(admin.ID), "Cap")

	h.text(t, customer, text.LabelCatalog)
	catalog := h.messenger.To(customer.ID)
	require.NotEmpty(t, catalog)
	assert.Contains(t, catalog[len(catalog)-1].Message.Keyboard[0][0].Text, "Cap")
}

func TestAdminCategoryCallback(t *testing.T) {
	h := newHarness(t)
	h.text(t, admin, text.LabelAddProduct)

	require.NoError(t, h.press(t, admin, "admin_category:Hats"))
	assert.Equal(t, text.AskProductName, h.messenger.Last(admin.ID))
}

func TestAdminEditCallbacks(t *testing.T) {
	h := newHarness(t)
	p := h.product(t)

	require.NoError(t, h.press(t, admin, domain.CallbackData(domain.CallbackAdminEdit, p.ID)))
	require.NoError(t, h.press(t, admin, domain.EditFieldCallback(domain.ProductFieldName, p.ID)))
	h.text(t, admin, "Running shoes")

	got, err := h.shop.Records().GetProduct(context.Background(), p.ID)
	require.NoError(t, err)
	assert.Equal(t, "Running shoes", got.Name)

	require.NoError(t, h.press(t, admin, domain.CallbackData(domain.CallbackAdminDelete, p.ID)))
	require.NoError(t, h.press(t, admin, domain.CallbackData(domain.CallbackAdminConfirmDelete, p.ID)))
	_, err = h.shop.Records().GetProduct(context.Background(), p.ID)
	assert.ErrorIs(t, err, domain.ErrProductNotFound)
}

func TestBroadcast(t *testing.T) {
	h := newHarness(t)
	for _, a := range []domain.Actor{customer, stranger} {
		h.text(t, a, "/start")
	}
	h.messenger.FailFor(stranger.ID)

	h.text(t, admin, text.LabelBroadcast)
	assert.Equal(t, text.AskBroadcast, h.messenger.Last(admin.ID))

	require.NoError(t, h.shop.Handle(context.Background(), domain.Update{Actor: admin, Text: "Big sale", PhotoRef: "p1"}))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, h.shop.Shutdown(ctx))

	assert.Equal(t, "Big sale", h.messenger.Last(customer.ID))
	assert.Contains(t, h.messenger.Last(admin.ID), "Delivered: 1")
	assert.Contains(t, h.messenger.Last(admin.ID), "Failed: 1")
}

func TestBroadcastCancelledBeforeStart(t *testing.T) {
	h := newHarness(t)
	h.text(t, customer, "/start")

	h.text(t, admin, text.LabelBroadcast)
	h.text(t, admin, text.CancelCommand)
	require.NoError(t, h.shop.Shutdown(context.Background()))

	assert.Equal(t, text.BroadcastCancelled, h.messenger.Last(admin.ID))
	assert.Contains(t, h.messenger.Last(customer.ID), "Welcome")
}

func TestUnknownInputAndNothingToCancel(t *testing.T) {
	h := newHarness(t)

	h.text(t, customer, "hello?")
	assert.Equal(t, text.UnknownInput, h.messenger.Last(customer.ID))

	h.text(t, customer, text.CancelCommand)
	assert.Equal(t, text.NothingToCancel, h.messenger.Last(customer.ID))
}

func TestFAQAndContact(t *testing.T) {
	h := newHarness(t)
	h.text(t, customer, text.LabelFAQ)
	assert.Equal(t, text.DefaultFAQ, h.messenger.Last(customer.ID))
	h.text(t, customer, text.LabelContact)
	assert.Equal(t, text.DefaultContact, h.messenger.Last(customer.ID))
}

func TestMalformedCallback(t *testing.T) {
	h := newHarness(t)
	assert.Error(t, h.press(t, customer, "order:abc"))
	assert.Error(t, h.press(t, customer, "nonsense:1"))
}
