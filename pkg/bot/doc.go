// Package bot routes inbound chat updates to the storefront components:
// commands and menu labels, inline button callbacks, and the free-form
// input of whichever workflow the actor has open.
//
// Admin-only triggers are checked against a static allowlist.
package bot
