package ports

import (
	"context"

	"github.com/aretw0/storefront/pkg/domain"
)

// SessionStore defines the interface for persisting per-actor workflow sessions.
// This allows a half-filled form to survive process restarts.
type SessionStore interface {
	// Save persists the session under the given key.
	Save(ctx context.Context, key string, session *domain.Session) error

	// Load retrieves the session for the given key.
	// Returns domain.ErrSessionNotFound if the session does not exist.
	Load(ctx context.Context, key string) (*domain.Session, error)

	// Delete removes the session. Deleting a missing session is not an error.
	Delete(ctx context.Context, key string) error

	// List returns the keys of all stored sessions.
	List(ctx context.Context) ([]string, error)
}
