// Package broadcast copies admin content to every known user, one at a
// time, at a throttled rate and in-place progress reports.
package broadcast

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/aretw0/storefront/internal/logging"
	"github.com/aretw0/storefront/pkg/domain"
	"github.com/aretw0/storefront/pkg/ports"
	"github.com/aretw0/storefront/pkg/text"
	"golang.org/x/time/rate"
)

const (
	// Channel is the delivery channel name reported to hooks.
	Channel = "broadcast"

	DefaultDelay         = 50 * time.Millisecond
	DefaultProgressEvery = 10
)

// Result is the outcome of one delivery.
type Result struct {
	Recipient int64
	Err       error
}

// Failed reports whether the delivery failed.
func (r Result) Failed() bool { return r.Err != nil }

// Summary aggregates a broadcast run.
type Summary struct {
	Total     int
	Attempted int
	Succeeded int
	Failed    int
	Results   []Result
}

func (s *Summary) record(r Result) {
	s.Attempted++
	if r.Failed() {
		s.Failed++
	} else {
		s.Succeeded++
	}
	s.Results = append(s.Results, r)
}

// Dispatcher runs broadcasts.
type Dispatcher struct {
	messenger     ports.Messenger
	users         ports.UserRepository
	delay         time.Duration
	limiter       *rate.Limiter
	progressEvery int
	hooks         domain.Hooks
	logger        *slog.Logger

	wg sync.WaitGroup
}

// Option configures the Dispatcher.
type Option func(*Dispatcher)

// WithDelay sets the minimum gap between two sends (default 50ms). Zero
// disables throttling.
func WithDelay(d time.Duration) Option {
	return func(b *Dispatcher) {
		b.delay = d
	}
}

// WithProgressEvery sets how many sends happen between progress edits (default 10).
func WithProgressEvery(n int) Option {
	return func(b *Dispatcher) {
		if n > 0 {
			b.progressEvery = n
		}
	}
}

// WithHooks reports every delivery to the hooks.
func WithHooks(hooks domain.Hooks) Option {
	return func(b *Dispatcher) {
		b.hooks = hooks
	}
}

// WithLogger configures a logger for the Dispatcher.
func WithLogger(logger *slog.Logger) Option {
	return func(b *Dispatcher) {
		b.logger = logger
	}
}

// New creates a Dispatcher sending through messenger to every user in users.
func New(messenger ports.Messenger, users ports.UserRepository, opts ...Option) *Dispatcher {
	b := &Dispatcher{
		messenger:     messenger,
		users:         users,
		delay:         DefaultDelay,
		progressEvery: DefaultProgressEvery,
		logger:        logging.NewNop(),
	}
	for _, opt := range opts {
		opt(b)
	}
	b.limiter = rate.NewLimiter(limitFor(b.delay), 1)
	return b
}

// limitFor converts a gap between sends into a limiter rate.
func limitFor(d time.Duration) rate.Limit {
	if d <= 0 {
		return rate.Inf
	}
	return rate.Every(d)
}

// Run delivers content to every known user sequentially. Per-recipient
// failures are recorded in the summary and never stop the run. The admin
// chat receives a progress message that is edited every few sends and
// finally replaced by the summary. Run returns early only if ctx ends.
func (b *Dispatcher) Run(ctx context.Context, adminChat int64, content domain.Content) (Summary, error) {
	users, err := b.users.ListUsers(ctx)
	if err != nil {
		return Summary{}, fmt.Errorf("list broadcast recipients: %w", err)
	}

	summary := Summary{Total: len(users), Results: make([]Result, 0, len(users))}
	if len(users) == 0 {
		b.notifyAdmin(ctx, adminChat, text.NoRecipients)
		return summary, nil
	}

	progress, err := b.messenger.Send(ctx, adminChat, domain.Message{Text: text.BroadcastStarted(len(users))})
	hasProgress := err == nil
	if err != nil {
		b.logger.WarnContext(ctx, "failed to send broadcast progress message",
			slog.Int64("admin", adminChat), slog.String("err", err.Error()))
	}

	msg := content.Message()
	for _, u := range users {
		// The limiter is shared, so concurrent runs split one send budget.
		if err := b.limiter.Wait(ctx); err != nil {
			return summary, err
		}

		_, err := b.messenger.Send(ctx, u.ID, msg)
		if err != nil {
			b.logger.WarnContext(ctx, "broadcast delivery failed",
				slog.Int64("recipient", u.ID), slog.String("err", err.Error()))
		}
		b.hooks.EmitDelivery(ctx, Channel, u.ID, err != nil)
		summary.record(Result{Recipient: u.ID, Err: err})

		if hasProgress && summary.Attempted%b.progressEvery == 0 && summary.Attempted < summary.Total {
			b.edit(ctx, progress, text.BroadcastProgress(summary.Attempted, summary.Total, summary.Succeeded, summary.Failed))
		}
	}

	final := text.BroadcastDone(summary.Total, summary.Succeeded, summary.Failed)
	if hasProgress {
		b.edit(ctx, progress, final)
	} else {
		b.notifyAdmin(ctx, adminChat, final)
	}

	b.logger.InfoContext(ctx, "broadcast finished",
		slog.Int("total", summary.Total),
		slog.Int("succeeded", summary.Succeeded),
		slog.Int("failed", summary.Failed),
	)
	return summary, nil
}

// Start runs the broadcast on its own goroutine so update handling is not
// blocked. Use Wait to block until every started run has finished.
func (b *Dispatcher) Start(ctx context.Context, adminChat int64, content domain.Content) {
	b.wg.Add(1)
	go func() {
		defer b.wg.Done()
		if _, err := b.Run(ctx, adminChat, content); err != nil {
			b.logger.ErrorContext(ctx, "broadcast aborted", slog.String("err", err.Error()))
		}
	}()
}

// Wait blocks until all runs started with Start have returned.
func (b *Dispatcher) Wait() {
	b.wg.Wait()
}

func (b *Dispatcher) edit(ctx context.Context, ref domain.MessageRef, s string) {
	if err := b.messenger.Edit(ctx, ref, domain.Message{Text: s}); err != nil {
		b.logger.WarnContext(ctx, "failed to update broadcast progress", slog.String("err", err.Error()))
	}
}

func (b *Dispatcher) notifyAdmin(ctx context.Context, adminChat int64, s string) {
	if _, err := b.messenger.Send(ctx, adminChat, domain.Message{Text: s}); err != nil {
		b.logger.WarnContext(ctx, "failed to notify admin", slog.Int64("admin", adminChat), slog.String("err", err.Error()))
	}
}
