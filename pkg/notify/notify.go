// Package notify delivers confirmed-order summaries to the privileged
// recipients of the store.
package notify

import (
	"context"
	"log/slog"

	"github.com/aretw0/storefront/internal/logging"
	"github.com/aretw0/storefront/pkg/domain"
	"github.com/aretw0/storefront/pkg/ports"
	"github.com/aretw0/storefront/pkg/text"
)

// Channel is the delivery channel name reported to hooks.
const Channel = "notify"

// Result is the outcome of one delivery.
type Result struct {
	Recipient int64
	Err       error
}

// Failed reports whether the delivery failed.
func (r Result) Failed() bool { return r.Err != nil }

// Report aggregates the outcome of a fan-out, one Result per recipient.
type Report struct {
	Results []Result
}

// Delivered counts successful deliveries.
func (r Report) Delivered() int {
	n := 0
	for _, res := range r.Results {
		if !res.Failed() {
			n++
		}
	}
	return n
}

// Failed counts failed deliveries.
func (r Report) Failed() int {
	return len(r.Results) - r.Delivered()
}

// Notifier fans an order summary out to a fixed recipient list.
type Notifier struct {
	messenger  ports.Messenger
	recipients []int64
	hooks      domain.Hooks
	logger     *slog.Logger
}

// Option configures the Notifier.
type Option func(*Notifier)

// WithLogger sets the logger for delivery failures.
func WithLogger(logger *slog.Logger) Option {
	return func(n *Notifier) {
		n.logger = logger
	}
}

// WithHooks reports every delivery to the hooks.
func WithHooks(hooks domain.Hooks) Option {
	return func(n *Notifier) {
		n.hooks = hooks
	}
}

// New creates a Notifier for the given recipients.
func New(messenger ports.Messenger, recipients []int64, opts ...Option) *Notifier {
	n := &Notifier{
		messenger:  messenger,
		recipients: append([]int64(nil), recipients...),
		logger:     logging.NewNop(),
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// Recipients returns the configured recipient list.
func (n *Notifier) Recipients() []int64 {
	return append([]int64(nil), n.recipients...)
}

// Notify attempts one delivery per recipient. Failures are logged and
// recorded; they never stop the remaining deliveries and are not retried.
// The product photo, when present, is attached to every delivery.
func (n *Notifier) Notify(ctx context.Context, o *domain.Order, p *domain.Product) Report {
	msg := domain.Message{Text: text.AdminNotice(o, p), PhotoRef: p.PhotoRef}

	report := Report{Results: make([]Result, 0, len(n.recipients))}
	for _, recipient := range n.recipients {
		_, err := n.messenger.Send(ctx, recipient, msg)
		if err != nil {
			n.logger.WarnContext(ctx, "order notification failed",
				slog.Int64("recipient", recipient),
				slog.String("order_number", o.Number),
				slog.String("err", err.Error()),
			)
		}
		n.hooks.EmitDelivery(ctx, Channel, recipient, err != nil)
		report.Results = append(report.Results, Result{Recipient: recipient, Err: err})
	}

	n.logger.InfoContext(ctx, "order notification sent",
		slog.String("order_number", o.Number),
		slog.Int("delivered", report.Delivered()),
		slog.Int("failed", report.Failed()),
	)
	return report
}
