package text_test

import (
	"strings"
	"testing"
	"time"

	"github.com/aretw0/storefront/pkg/domain"
	"github.com/aretw0/storefront/pkg/text"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMoney(t *testing.T) {
	cases := map[int64]string{
		0:        "0 so'm",
		999:      "999 so'm",
		1000:     "1,000 so'm",
		50000:    "50,000 so'm",
		250000:   "250,000 so'm",
		1234567:  "1,234,567 so'm",
		-1500000: "-1,500,000 so'm",
	}
	for in, want := range cases {
		assert.Equal(t, want, text.Money(in), "amount %d", in)
	}
}

func TestPendingSummary(t *testing.T) {
	o := &domain.Order{ID: 12, Quantity: 5, CustomerName: "Ab", Phone: "+998901234567", Address: "Tashkent 1234"}
	p := &domain.Product{Name: "Sneakers", Price: 50000}

	msg := text.PendingSummary(o, p)
	assert.Contains(t, msg.Text, "250,000 so'm")
	require.Len(t, msg.Keyboard, 1)
	require.Len(t, msg.Keyboard[0], 2)
	assert.Equal(t, "confirm_order:12", msg.Keyboard[0][0].Data)
	assert.Equal(t, "cancel_order:12", msg.Keyboard[0][1].Data)
}

func TestProductCard_OrderButtonOnlyWhenAvailable(t *testing.T) {
	p := &domain.Product{ID: 4, Name: "Cap", Price: 1000, Available: true}
	assert.Equal(t, "order:4", text.ProductCard(p).Keyboard[0][0].Data)

	p.Available = false
	assert.Empty(t, text.ProductCard(p).Keyboard)
}

func TestMyOrders_NewestFirst(t *testing.T) {
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	orders := []domain.Order{
		{Number: "ORD-A", ProductID: 1, Quantity: 1, Status: domain.OrderStatusConfirmed, CreatedAt: now},
		{Number: "ORD-B", ProductID: 2, Quantity: 2, Status: domain.OrderStatusShipping, CreatedAt: now.Add(time.Hour)},
	}
	out := text.MyOrders(orders, map[int64]*domain.Product{1: {Name: "Cap", Price: 1000}})

	assert.Less(t, strings.Index(out, "ORD-B"), strings.Index(out, "ORD-A"))
	assert.Contains(t, out, "🚚 Shipping")
	assert.Contains(t, out, "(deleted product)")
	assert.Equal(t, "📭 You have no orders yet.", text.MyOrders(nil, nil))
}

func TestIsCancel(t *testing.T) {
	assert.True(t, text.IsCancel("/cancel"))
	assert.True(t, text.IsCancel(text.LabelCancel))
	assert.False(t, text.IsCancel("cancel"))
}

func TestMainMenu(t *testing.T) {
	assert.Len(t, text.MainMenu(false), 2)
	assert.Len(t, text.MainMenu(true), 4)
}
