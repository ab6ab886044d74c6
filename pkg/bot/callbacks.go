package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/aretw0/storefront/pkg/domain"
	"github.com/aretw0/storefront/pkg/form"
	"github.com/aretw0/storefront/pkg/text"
)

func (r *Router) handleCallback(ctx context.Context, u domain.Update) error {
	actor := u.Actor
	cb := domain.ParseCallback(u.Callback)

	if strings.HasPrefix(cb.Action, "admin_") {
		if err := r.requireAdmin(ctx, actor.ID); err != nil {
			return err
		}
		return r.handleAdminCallback(ctx, actor, cb)
	}

	id, ok := cb.ID()
	if !ok {
		return fmt.Errorf("malformed callback %q", u.Callback)
	}

	switch cb.Action {
	case domain.CallbackProduct:
		return r.Catalog.Show(ctx, actor.ID, id)
	case domain.CallbackOrder:
		return r.Workflow.Start(ctx, actor, id)
	case domain.CallbackConfirmOrder:
		return r.confirmOrder(ctx, actor.ID, id)
	case domain.CallbackCancelOrder:
		return r.cancelOrder(ctx, actor.ID, id)
	}
	return fmt.Errorf("unknown callback %q", u.Callback)
}

// ownOrder loads an order the actor may decide on: their own, or any order for admins.
func (r *Router) ownOrder(ctx context.Context, actorID, orderID int64) (*domain.Order, error) {
	o, err := r.Orders.Get(ctx, orderID)
	if errors.Is(err, domain.ErrOrderNotFound) {
		r.send(ctx, actorID, domain.Message{Text: text.OrderNotFound})
	}
	if err != nil {
		return nil, err
	}
	if o.ActorID != actorID && !r.IsAdmin(actorID) {
		r.send(ctx, actorID, domain.Message{Text: text.OrderNotFound})
		return nil, fmt.Errorf("order %d belongs to another actor: %w", orderID, domain.ErrForbidden)
	}
	return o, nil
}

func (r *Router) confirmOrder(ctx context.Context, actorID, orderID int64) error {
	o, err := r.ownOrder(ctx, actorID, orderID)
	if err != nil {
		return err
	}
	confirmed, err := r.Orders.Confirm(ctx, o.ID)
	if errors.Is(err, domain.ErrInvalidTransition) {
		r.send(ctx, actorID, domain.Message{Text: text.AlreadyProcessed(o.Number)})
	}
	if err != nil {
		return err
	}
	r.send(ctx, actorID, domain.Message{Text: text.OrderConfirmed(confirmed), Keyboard: r.Menu(actorID)})
	return nil
}

func (r *Router) cancelOrder(ctx context.Context, actorID, orderID int64) error {
	o, err := r.ownOrder(ctx, actorID, orderID)
	if err != nil {
		return err
	}
	if _, err := r.Orders.Cancel(ctx, o.ID); err != nil {
		if errors.Is(err, domain.ErrInvalidTransition) {
			r.send(ctx, actorID, domain.Message{Text: text.AlreadyProcessed(o.Number)})
		}
		return err
	}
	r.send(ctx, actorID, domain.Message{Text: text.OrderCancelled(), Keyboard: r.Menu(actorID)})
	return nil
}

func (r *Router) handleAdminCallback(ctx context.Context, actor domain.Actor, cb domain.Callback) error {
	switch cb.Action {
	case domain.CallbackAdminProducts:
		return r.Catalog.AdminList(ctx, actor.ID)
	case domain.CallbackAdminCategory:
		_, err := r.Catalog.Handle(ctx, actor, form.Input{Text: cb.Arg})
		return err
	}

	id, ok := cb.ID()
	if !ok {
		return fmt.Errorf("malformed callback %s:%s", cb.Action, cb.Arg)
	}

	switch cb.Action {
	case domain.CallbackAdminProduct:
		return r.Catalog.AdminShow(ctx, actor.ID, id)
	case domain.CallbackAdminToggle:
		_, err := r.Catalog.Toggle(ctx, actor.ID, id)
		return err
	case domain.CallbackAdminDelete:
		return r.Catalog.AskDelete(ctx, actor.ID, id)
	case domain.CallbackAdminConfirmDelete:
		return r.Catalog.Delete(ctx, actor.ID, id)
	case domain.CallbackAdminEdit:
		return r.Catalog.EditMenu(ctx, actor.ID, id)
	}
	if field, ok := cb.EditField(); ok {
		return r.Catalog.StartEdit(ctx, actor.ID, id, field)
	}
	return fmt.Errorf("unknown callback %s:%s", cb.Action, cb.Arg)
}
