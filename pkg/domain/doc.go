/*
Package domain contains the core models of the storefront.

It defines the per-actor workflow Session, the durable Order with its status
lifecycle, the read-only Product and User records, and the inbound/outbound
message shapes exchanged with the chat transport. The package is kept free of
I/O and persistence concerns; adapters live under pkg/adapters.

# Key Entities

  - Session: ephemeral per-actor state of the active workflow (current Step + drafts).
  - Order: durable record created when the order workflow completes.
  - Product: catalog entry; Available gates the order workflow.
  - Update: an inbound event from the transport (text, contact, photo or callback).
  - Message: an outbound message, optionally carrying a photo and a keyboard.
*/
package domain
