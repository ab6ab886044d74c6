package bot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/aretw0/storefront/pkg/domain"
	"github.com/aretw0/storefront/pkg/form"
	"github.com/aretw0/storefront/pkg/session"
	"github.com/aretw0/storefront/pkg/text"
)

// startBroadcast opens the content step. The run itself starts only once
// content arrives, so cancelling here is the only way to abort it.
func (r *Router) startBroadcast(ctx context.Context, actorID int64) error {
	if err := r.Sessions.Start(ctx, domain.NewSession(actorID, domain.WorkflowBroadcast, domain.StepBroadcastContent)); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	r.send(ctx, actorID, domain.Message{Text: text.AskBroadcast, Keyboard: text.CancelKeyboard()})
	return nil
}

func (r *Router) handleBroadcastContent(ctx context.Context, actor domain.Actor, in form.Input) (bool, error) {
	var (
		handled bool
		content *domain.Content
	)
	err := r.Sessions.WithLock(ctx, actor.ID, func(ctx context.Context, tx *session.Tx) error {
		s, err := tx.Load(ctx)
		if errors.Is(err, domain.ErrSessionNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		if s.Workflow != domain.WorkflowBroadcast {
			return nil
		}
		handled = true

		if err := tx.Delete(ctx); err != nil {
			return fmt.Errorf("delete session: %w", err)
		}
		if in.PhotoRef == "" && text.IsCancel(in.Text) {
			r.send(ctx, actor.ID, domain.Message{Text: text.BroadcastCancelled, Keyboard: r.Menu(actor.ID)})
			return nil
		}
		content = &domain.Content{Text: in.Text, PhotoRef: in.PhotoRef}
		return nil
	})
	if err != nil || content == nil {
		return handled, err
	}

	// The allowlist may have changed since the content step was opened.
	if err := r.requireAdmin(ctx, actor.ID); err != nil {
		return true, err
	}
	r.logger.InfoContext(ctx, "broadcast started", slog.Int64("admin", actor.ID))
	r.Broadcast.Start(r.broadcastCtx, actor.ID, *content)
	return true, nil
}
