package catalog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/aretw0/storefront/internal/validator"
	"github.com/aretw0/storefront/pkg/domain"
	"github.com/aretw0/storefront/pkg/form"
	"github.com/aretw0/storefront/pkg/session"
	"github.com/aretw0/storefront/pkg/text"
)

// addStep is one step of the add-product workflow.
type addStep struct {
	step   domain.Step
	kind   domain.ProductFieldKind
	prompt string
}

var addSteps = []addStep{
	{domain.StepProductCategory, domain.ProductFieldCategory, text.AskCategory},
	{domain.StepProductName, domain.ProductFieldName, text.AskProductName},
	{domain.StepProductPrice, domain.ProductFieldPrice, text.AskPrice},
	{domain.StepProductDescription, domain.ProductFieldDescription, text.AskDescription},
	{domain.StepProductSize, domain.ProductFieldSize, text.AskSize},
	{domain.StepProductPhoto, domain.ProductFieldPhoto, text.AskPhoto},
}

// EditableFields lists the fields offered by the edit menu, in menu order.
var EditableFields = []domain.ProductFieldKind{
	domain.ProductFieldName,
	domain.ProductFieldPrice,
	domain.ProductFieldDescription,
	domain.ProductFieldSize,
	domain.ProductFieldCategory,
	domain.ProductFieldPhoto,
}

func addStepIndex(step domain.Step) int {
	for i, s := range addSteps {
		if s.step == step {
			return i
		}
	}
	return -1
}

// StartAdd opens the add-product workflow for an admin.
func (c *Catalog) StartAdd(ctx context.Context, actorID int64) error {
	err := c.sessions.WithLock(ctx, actorID, func(ctx context.Context, tx *session.Tx) error {
		s := domain.NewSession(actorID, domain.WorkflowAddProduct, addSteps[0].step)
		s.Product = &domain.ProductDraft{}
		return tx.Save(ctx, s)
	})
	if err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	c.hooks.EmitStep(ctx, actorID, domain.WorkflowAddProduct, addSteps[0].step)
	c.send(ctx, actorID, c.prompt(addSteps[0].kind, addSteps[0].prompt))
	return nil
}

// EditMenu sends the field picker for a product.
func (c *Catalog) EditMenu(ctx context.Context, chatID, productID int64) error {
	p, err := c.product(ctx, chatID, productID)
	if err != nil {
		return err
	}
	labels := make(map[domain.ProductFieldKind]string, len(EditableFields))
	for _, kind := range EditableFields {
		if f, ok := form.ProductFieldFor(kind, c.categories); ok {
			labels[kind] = f.Label()
		}
	}
	c.send(ctx, chatID, text.EditFieldMenu(p, labels, EditableFields))
	return nil
}

// StartEdit opens the single-field edit workflow.
func (c *Catalog) StartEdit(ctx context.Context, actorID, productID int64, kind domain.ProductFieldKind) error {
	field, ok := form.ProductFieldFor(kind, c.categories)
	if !ok {
		return fmt.Errorf("unknown product field %q", kind)
	}
	if _, err := c.product(ctx, actorID, productID); err != nil {
		return err
	}

	err := c.sessions.WithLock(ctx, actorID, func(ctx context.Context, tx *session.Tx) error {
		s := domain.NewSession(actorID, domain.WorkflowEditProduct, domain.StepProductEditValue)
		s.Product = &domain.ProductDraft{ProductID: productID, EditField: kind}
		return tx.Save(ctx, s)
	})
	if err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	c.hooks.EmitStep(ctx, actorID, domain.WorkflowEditProduct, domain.StepProductEditValue)
	c.send(ctx, actorID, c.prompt(kind, text.AskEditValue(field.Label())))
	return nil
}

// Handle feeds one input to the actor's add or edit workflow. It reports
// false when neither is in progress.
func (c *Catalog) Handle(ctx context.Context, actor domain.Actor, in form.Input) (bool, error) {
	handled := false
	err := c.sessions.WithLock(ctx, actor.ID, func(ctx context.Context, tx *session.Tx) error {
		s, err := tx.Load(ctx)
		if errors.Is(err, domain.ErrSessionNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		if s.Product == nil || (s.Workflow != domain.WorkflowAddProduct && s.Workflow != domain.WorkflowEditProduct) {
			return nil
		}
		handled = true

		if in.PhotoRef == "" && text.IsCancel(in.Text) {
			return c.cancel(ctx, tx, s)
		}
		if s.Workflow == domain.WorkflowAddProduct {
			return c.handleAdd(ctx, tx, s, in)
		}
		return c.handleEdit(ctx, tx, s, in)
	})
	return handled, err
}

// Cancel abandons the actor's add or edit workflow and reports whether one was active.
func (c *Catalog) Cancel(ctx context.Context, actorID int64) (bool, error) {
	cancelled := false
	err := c.sessions.WithLock(ctx, actorID, func(ctx context.Context, tx *session.Tx) error {
		s, err := tx.Load(ctx)
		if errors.Is(err, domain.ErrSessionNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		if s.Workflow != domain.WorkflowAddProduct && s.Workflow != domain.WorkflowEditProduct {
			return nil
		}
		cancelled = true
		return c.cancel(ctx, tx, s)
	})
	return cancelled, err
}

func (c *Catalog) cancel(ctx context.Context, tx *session.Tx, s *domain.Session) error {
	if err := tx.Delete(ctx); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	msg := text.AddCancelled
	if s.Workflow == domain.WorkflowEditProduct {
		msg = text.EditCancelled
	}
	c.hooks.EmitStep(ctx, s.ActorID, s.Workflow, domain.StepIdle)
	c.send(ctx, s.ActorID, domain.Message{Text: msg, Keyboard: c.menu(s.ActorID)})
	return nil
}

func (c *Catalog) handleAdd(ctx context.Context, tx *session.Tx, s *domain.Session, in form.Input) error {
	i := addStepIndex(s.Step)
	if i < 0 {
		return fmt.Errorf("unexpected add-product step %s", s.Step)
	}
	cur := addSteps[i]
	field, _ := form.ProductFieldFor(cur.kind, c.categories)

	if err := field.Set(in, s.Product); err != nil {
		return c.reject(ctx, s, cur.kind, err)
	}

	if i+1 < len(addSteps) {
		next := addSteps[i+1]
		s.Advance(next.step)
		if err := tx.Save(ctx, s); err != nil {
			return fmt.Errorf("save session: %w", err)
		}
		c.hooks.EmitStep(ctx, s.ActorID, s.Workflow, next.step)
		c.send(ctx, s.ActorID, c.prompt(next.kind, next.prompt))
		return nil
	}

	d := s.Product
	p := &domain.Product{
		Category:    d.Category,
		Name:        d.Name,
		Price:       d.Price,
		Description: d.Description,
		Size:        d.Size,
		PhotoRef:    d.PhotoRef,
		Available:   true,
	}
	if err := validator.Validate(p); err != nil {
		return fmt.Errorf("new product: %w", err)
	}
	if err := c.products.CreateProduct(ctx, p); err != nil {
		return fmt.Errorf("create product: %w", err)
	}
	if err := tx.Delete(ctx); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}

	c.logger.InfoContext(ctx, "product added", slog.Int64("product_id", p.ID), slog.String("name", p.Name))
	c.hooks.EmitStep(ctx, s.ActorID, s.Workflow, domain.StepCompleted)
	c.send(ctx, s.ActorID, domain.Message{Text: text.ProductAdded, Keyboard: c.menu(s.ActorID)})
	c.send(ctx, s.ActorID, text.AdminProductCard(p))
	return nil
}

func (c *Catalog) handleEdit(ctx context.Context, tx *session.Tx, s *domain.Session, in form.Input) error {
	d := s.Product
	field, ok := form.ProductFieldFor(d.EditField, c.categories)
	if !ok {
		return fmt.Errorf("unknown product field %q", d.EditField)
	}
	if err := field.Set(in, d); err != nil {
		return c.reject(ctx, s, d.EditField, err)
	}

	p, err := c.products.GetProduct(ctx, d.ProductID)
	if errors.Is(err, domain.ErrProductNotFound) {
		if err := tx.Delete(ctx); err != nil {
			return fmt.Errorf("delete session: %w", err)
		}
		c.send(ctx, s.ActorID, domain.Message{Text: text.ProductNotFound, Keyboard: c.menu(s.ActorID)})
		return nil
	}
	if err != nil {
		return fmt.Errorf("get product %d: %w", d.ProductID, err)
	}

	field.Apply(d, p)
	if err := validator.Validate(p); err != nil {
		return fmt.Errorf("edited product: %w", err)
	}
	if err := c.products.UpdateProduct(ctx, p); err != nil {
		return fmt.Errorf("update product %d: %w", p.ID, err)
	}
	if err := tx.Delete(ctx); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}

	c.logger.InfoContext(ctx, "product updated", slog.Int64("product_id", p.ID), slog.String("field", string(d.EditField)))
	c.hooks.EmitStep(ctx, s.ActorID, s.Workflow, domain.StepCompleted)
	c.send(ctx, s.ActorID, domain.Message{Text: text.ProductUpdated, Keyboard: c.menu(s.ActorID)})
	c.send(ctx, s.ActorID, text.AdminProductCard(p))
	return nil
}

// reject re-prompts the current step for a validation failure.
func (c *Catalog) reject(ctx context.Context, s *domain.Session, kind domain.ProductFieldKind, err error) error {
	ve, ok := form.AsValidationError(err)
	if !ok {
		return err
	}
	c.hooks.EmitValidationFail(ctx, s.ActorID, s.Workflow, s.Step, ve.Reason)
	c.send(ctx, s.ActorID, c.prompt(kind, text.Reprompt(ve.Message)))
	return nil
}

// prompt attaches the category picker to category prompts.
func (c *Catalog) prompt(kind domain.ProductFieldKind, s string) domain.Message {
	kb := text.CancelKeyboard()
	if kind == domain.ProductFieldCategory && len(c.categories) > 0 {
		kb = append(text.CategoryKeyboard(c.categories), kb...)
	}
	return domain.Message{Text: s, Keyboard: kb}
}
