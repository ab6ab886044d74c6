package middleware_test

import (
	"context"
	"crypto/rand"
	"io"
	"testing"

	"github.com/aretw0/storefront/pkg/adapters/memory"
	"github.com/aretw0/storefront/pkg/domain"
	"github.com/aretw0/storefront/pkg/persistence/middleware"
	"github.com/aretw0/storefront/pkg/ports/tests"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func generateKey(t *testing.T) []byte {
	k := make([]byte, 32)
	if _, err := io.ReadFull(rand.Reader, k); err != nil {
		t.Fatal(err)
	}
	return k
}

func orderSession(name string) *domain.Session {
	s := domain.NewSession(42, domain.WorkflowOrder, domain.StepCollectingAddress)
	s.Order = &domain.OrderDraft{ProductID: 7, CustomerName: name, Phone: "+998901234567"}
	return s
}

func TestEncryptionMiddleware_Roundtrip(t *testing.T) {
	underlyingStore := NewMockStore()
	mw := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: generateKey(t)})
	secureStore := mw(underlyingStore)

	ctx := context.Background()
	require.NoError(t, secureStore.Save(ctx, "42", orderSession("Dilorom")))

	// The underlying store only sees the envelope.
	stored, err := underlyingStore.Load(ctx, "42")
	require.NoError(t, err)
	assert.Nil(t, stored.Order)
	assert.NotEmpty(t, stored.Sealed)
	assert.NotContains(t, stored.Sealed, "Dilorom")
	assert.Equal(t, domain.StepCollectingAddress, stored.Step)

	loaded, err := secureStore.Load(ctx, "42")
	require.NoError(t, err)
	require.NotNil(t, loaded.Order)
	assert.Equal(t, "Dilorom", loaded.Order.CustomerName)
	assert.Empty(t, loaded.Sealed)
}

func TestEncryptionMiddleware_KeyRotation(t *testing.T) {
	underlyingStore := NewMockStore()
	oldKey := generateKey(t)
	newKey := generateKey(t)

	secureStoreOld := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: oldKey})(underlyingStore)
	ctx := context.Background()
	require.NoError(t, secureStoreOld.Save(ctx, "42", orderSession("old")))

	secureStoreNew := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{
		ActiveKey:    newKey,
		FallbackKeys: [][]byte{oldKey},
	})(underlyingStore)

	loaded, err := secureStoreNew.Load(ctx, "42")
	require.NoError(t, err, "fallback key decrypts old sessions")
	assert.Equal(t, "old", loaded.Order.CustomerName)

	loaded.Order.CustomerName = "new"
	require.NoError(t, secureStoreNew.Save(ctx, "42", loaded))

	_, err = secureStoreOld.Load(ctx, "42")
	assert.Error(t, err, "old key alone cannot read sessions sealed with the new key")
}

func TestEncryptionMiddleware_RejectsPlainSessions(t *testing.T) {
	underlyingStore := NewMockStore()
	ctx := context.Background()
	require.NoError(t, underlyingStore.Save(ctx, "42", orderSession("plain")))

	secureStore := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: generateKey(t)})(underlyingStore)
	_, err := secureStore.Load(ctx, "42")
	assert.ErrorContains(t, err, "missing encrypted data envelope")
}

func TestEncryptionMiddleware_Contract(t *testing.T) {
	mw := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: generateKey(t)})
	tests.RunSessionStoreContract(t, mw(memory.NewStore()))
}

func TestEncryptionMiddleware_InvalidKey(t *testing.T) {
	assert.Panics(t, func() {
		middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: []byte("short-key")})
	})
}
