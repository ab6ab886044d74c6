package storefront_test

import (
	"context"
	"testing"
	"time"

	"github.com/aretw0/storefront"
	"github.com/aretw0/storefront/pkg/adapters/memory"
	"github.com/aretw0/storefront/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_RequiresMessenger(t *testing.T) {
	_, err := storefront.New(nil)
	assert.Error(t, err)
}

func TestNew_Defaults(t *testing.T) {
	shop, err := storefront.New(memory.NewMessenger())
	require.NoError(t, err)

	assert.NotNil(t, shop.Sessions())
	assert.NotNil(t, shop.Orders())
	assert.NotNil(t, shop.Records())
	assert.NotNil(t, shop.Router())
}

func TestShop_UsesInjectedStores(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	records := memory.NewRecords()

	shop, err := storefront.New(memory.NewMessenger(),
		storefront.WithSessionStore(store),
		storefront.WithRecords(records),
	)
	require.NoError(t, err)

	p := &domain.Product{Category: "Shoes", Name: "Sneakers", Price: 50000, Available: true}
	require.NoError(t, records.CreateProduct(ctx, p))

	actor := domain.Actor{ID: 7, FirstName: "Aziz"}
	require.NoError(t, shop.Handle(ctx, domain.Update{Actor: actor, Text: "/start"}))
	require.NoError(t, shop.Handle(ctx, domain.Update{Actor: actor, Callback: domain.CallbackData(domain.CallbackOrder, p.ID)}))

	keys, err := store.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{domain.SessionKey(7)}, keys)

	users, err := records.CountUsers(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, users)
}

func TestShop_HooksObserveWorkflow(t *testing.T) {
	ctx := context.Background()
	var steps []domain.Step
	hooks := domain.Hooks{
		OnStepEnter: func(ctx context.Context, e *domain.StepEvent) {
			steps = append(steps, e.Step)
		},
	}

	shop, err := storefront.New(memory.NewMessenger(), storefront.WithHooks(hooks))
	require.NoError(t, err)

	p := &domain.Product{Category: "Shoes", Name: "Sneakers", Price: 50000, Available: true}
	require.NoError(t, shop.Records().CreateProduct(ctx, p))

	actor := domain.Actor{ID: 7}
	require.NoError(t, shop.Handle(ctx, domain.Update{Actor: actor, Callback: domain.CallbackData(domain.CallbackOrder, p.ID)}))
	require.NoError(t, shop.Handle(ctx, domain.Update{Actor: actor, Text: "Aziz"}))

	assert.Equal(t, []domain.Step{domain.StepCollectingName, domain.StepCollectingPhone}, steps)
}

func TestShop_ShutdownWithoutBroadcasts(t *testing.T) {
	shop, err := storefront.New(memory.NewMessenger())
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	assert.NoError(t, shop.Shutdown(ctx))
}
