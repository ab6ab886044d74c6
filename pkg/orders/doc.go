// Package orders owns order records after the order form completes:
// creation with a human-readable number, confirmation with admin fan-out,
// and cancellation.
package orders
