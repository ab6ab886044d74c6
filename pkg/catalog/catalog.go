package catalog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/aretw0/storefront/internal/logging"
	"github.com/aretw0/storefront/pkg/domain"
	"github.com/aretw0/storefront/pkg/ports"
	"github.com/aretw0/storefront/pkg/session"
	"github.com/aretw0/storefront/pkg/text"
)

// Catalog implements product browsing and management.
type Catalog struct {
	sessions   *session.Manager
	products   ports.ProductRepository
	messenger  ports.Messenger
	categories []string

	menu   func(actorID int64) domain.Keyboard
	hooks  domain.Hooks
	logger *slog.Logger
}

// Option configures the Catalog.
type Option func(*Catalog)

// WithCategories restricts product categories to the given list.
func WithCategories(categories []string) Option {
	return func(c *Catalog) {
		c.categories = append([]string(nil), categories...)
	}
}

// WithMenu sets the keyboard shown when an admin workflow ends.
func WithMenu(menu func(actorID int64) domain.Keyboard) Option {
	return func(c *Catalog) {
		c.menu = menu
	}
}

// WithHooks reports workflow steps and validation failures.
func WithHooks(hooks domain.Hooks) Option {
	return func(c *Catalog) {
		c.hooks = hooks
	}
}

// WithLogger configures a logger for the Catalog.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Catalog) {
		c.logger = logger
	}
}

// New creates a Catalog.
func New(sessions *session.Manager, products ports.ProductRepository, messenger ports.Messenger, opts ...Option) *Catalog {
	c := &Catalog{
		sessions:  sessions,
		products:  products,
		messenger: messenger,
		menu:      func(int64) domain.Keyboard { return text.MainMenu(true) },
		logger:    logging.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Categories returns the configured categories.
func (c *Catalog) Categories() []string {
	return append([]string(nil), c.categories...)
}

// Browse sends the list of available products.
func (c *Catalog) Browse(ctx context.Context, chatID int64) error {
	all, err := c.products.ListProducts(ctx)
	if err != nil {
		return fmt.Errorf("list products: %w", err)
	}
	available := make([]domain.Product, 0, len(all))
	for _, p := range all {
		if p.Available {
			available = append(available, p)
		}
	}
	c.send(ctx, chatID, text.CatalogList(available))
	return nil
}

// Show sends the customer detail card of a product.
func (c *Catalog) Show(ctx context.Context, chatID, productID int64) error {
	p, err := c.product(ctx, chatID, productID)
	if err != nil {
		return err
	}
	c.send(ctx, chatID, text.ProductCard(p))
	return nil
}

// AdminList sends every product with its availability marker.
func (c *Catalog) AdminList(ctx context.Context, chatID int64) error {
	all, err := c.products.ListProducts(ctx)
	if err != nil {
		return fmt.Errorf("list products: %w", err)
	}
	c.send(ctx, chatID, text.AdminProductList(all))
	return nil
}

// AdminShow sends the management card of a product.
func (c *Catalog) AdminShow(ctx context.Context, chatID, productID int64) error {
	p, err := c.product(ctx, chatID, productID)
	if err != nil {
		return err
	}
	c.send(ctx, chatID, text.AdminProductCard(p))
	return nil
}

// Toggle flips the availability of a product and sends the updated card.
func (c *Catalog) Toggle(ctx context.Context, chatID, productID int64) (*domain.Product, error) {
	p, err := c.products.ToggleAvailability(ctx, productID)
	if errors.Is(err, domain.ErrProductNotFound) {
		c.send(ctx, chatID, domain.Message{Text: text.ProductNotFound})
		return nil, fmt.Errorf("toggle product %d: %w", productID, err)
	}
	if err != nil {
		return nil, fmt.Errorf("toggle product %d: %w", productID, err)
	}
	c.logger.InfoContext(ctx, "product availability changed",
		slog.Int64("product_id", p.ID), slog.Bool("available", p.Available))
	c.send(ctx, chatID, text.AdminProductCard(p))
	return p, nil
}

// AskDelete asks the admin to confirm deletion.
func (c *Catalog) AskDelete(ctx context.Context, chatID, productID int64) error {
	p, err := c.product(ctx, chatID, productID)
	if err != nil {
		return err
	}
	c.send(ctx, chatID, text.DeleteConfirmation(p))
	return nil
}

// Delete removes a product after confirmation. Existing orders keep their
// product reference.
func (c *Catalog) Delete(ctx context.Context, chatID, productID int64) error {
	if _, err := c.product(ctx, chatID, productID); err != nil {
		return err
	}
	if err := c.products.DeleteProduct(ctx, productID); err != nil {
		return fmt.Errorf("delete product %d: %w", productID, err)
	}
	c.logger.InfoContext(ctx, "product deleted", slog.Int64("product_id", productID))
	c.send(ctx, chatID, domain.Message{Text: text.ProductDeleted})
	return nil
}

// product loads a product, telling the chat when it does not exist.
func (c *Catalog) product(ctx context.Context, chatID, productID int64) (*domain.Product, error) {
	p, err := c.products.GetProduct(ctx, productID)
	if errors.Is(err, domain.ErrProductNotFound) {
		c.send(ctx, chatID, domain.Message{Text: text.ProductNotFound})
	}
	if err != nil {
		return nil, fmt.Errorf("get product %d: %w", productID, err)
	}
	return p, nil
}

func (c *Catalog) send(ctx context.Context, chatID int64, msg domain.Message) {
	if _, err := c.messenger.Send(ctx, chatID, msg); err != nil {
		c.logger.WarnContext(ctx, "failed to send message", slog.Int64("chat_id", chatID), slog.String("err", err.Error()))
	}
}
