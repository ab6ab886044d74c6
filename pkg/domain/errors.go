package domain

import "errors"

// ErrSessionNotFound is returned when an actor has no active session in the store.
var ErrSessionNotFound = errors.New("session not found")

// ErrProductNotFound is returned when a referenced product does not exist.
var ErrProductNotFound = errors.New("product not found")

// ErrOrderNotFound is returned when a referenced order does not exist.
var ErrOrderNotFound = errors.New("order not found")

// ErrUserNotFound is returned when a user record does not exist.
var ErrUserNotFound = errors.New("user not found")

// ErrProductUnavailable is returned when a workflow is started for a product
// that is switched off.
var ErrProductUnavailable = errors.New("product unavailable")

// ErrInvalidTransition is returned when an order status change is not allowed.
var ErrInvalidTransition = errors.New("invalid order status transition")

// ErrForbidden is returned when a non-admin actor triggers an admin operation.
var ErrForbidden = errors.New("forbidden")

// ErrDuplicateOrderNumber is returned by repositories when an order number is already taken.
var ErrDuplicateOrderNumber = errors.New("order number already exists")

// ErrInvalidOrder is returned when order input violates a domain invariant.
var ErrInvalidOrder = errors.New("invalid order")
