/*
Package ports defines the interfaces between the storefront core and its adapters.

Driven ports (implemented by adapters, called by the core):

  - SessionStore: persistence of per-actor workflow sessions.
  - DistributedLocker: optional cross-process session locking.
  - ProductRepository, OrderRepository, UserRepository: the record store.
  - Messenger: outbound chat messages.
  - EventPublisher: order lifecycle event stream.

Reusable contract suites for adapter tests live in pkg/ports/tests.
*/
package ports
