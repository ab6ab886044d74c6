/*
Package observability turns the storefront lifecycle hooks into Prometheus
metrics and structured log lines.

Metrics are registered on a caller-supplied registry so several shops (or
tests) can coexist in one process. Hooks from different sinks are combined
with Merge before being handed to storefront.WithHooks.
*/
package observability
