// Package workflow implements the customer order form: a linear state
// machine collecting name, phone, address and quantity, one validated field
// per turn, that ends by creating an order and asking the customer to
// confirm it.
//
// Sessions live in a session.Manager keyed by actor. Every turn runs under
// the actor's session lock.
package workflow
