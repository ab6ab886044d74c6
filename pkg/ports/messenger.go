package ports

import (
	"context"

	"github.com/aretw0/storefront/pkg/domain"
)

// Messenger is the outbound side of the chat transport.
type Messenger interface {
	// Send delivers a message to a chat and returns a reference usable by Edit.
	Send(ctx context.Context, chatID int64, msg domain.Message) (domain.MessageRef, error)

	// Edit replaces the content of a previously sent message in place.
	Edit(ctx context.Context, ref domain.MessageRef, msg domain.Message) error
}

// EventPublisher publishes order lifecycle events to an external stream.
type EventPublisher interface {
	Publish(ctx context.Context, event domain.OrderEvent) error
}
