/*
Package storefront is a conversational shop for chat platforms: a product
catalog, a guided order form, order confirmation with admin notification, and
an admin toolset for managing products and broadcasting to every user.

The Shop routes each inbound domain.Update to the menu, the catalog or a
multi-step workflow. Workflows keep their progress in per-actor sessions, so a
customer can leave the order form and resume it later, and updates of one
actor are processed one at a time even across replicas when a distributed
locker is configured.

# Architecture

The core is transport agnostic. Everything outside it is a port:

  - ports.Messenger delivers outbound messages (HTTP gateway, SSE streams, terminal).
  - ports.SessionStore keeps workflow sessions (memory, file, Redis).
  - ports.Records stores products, orders and users (memory, file, PostgreSQL).
  - ports.EventPublisher announces order lifecycle events (Kafka).

# Usage

	messenger := memory.NewMessenger()
	shop, err := storefront.New(messenger,
		storefront.WithAdmins(1001),
		storefront.WithSessionStore(redis.New("localhost:6379", "", 0)),
	)
	if err != nil {
		log.Fatal(err)
	}

	// Feed updates from your transport.
	err = shop.Handle(ctx, domain.Update{Actor: domain.Actor{ID: 42}, Text: "/start"})

	// Wait for running broadcasts before exiting.
	_ = shop.Shutdown(ctx)

The storefront command wires all of this from a YAML file and STOREFRONT_*
environment variables.
*/
package storefront
