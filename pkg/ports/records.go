package ports

import (
	"context"

	"github.com/aretw0/storefront/pkg/domain"
)

// ProductRepository is the catalog record store.
type ProductRepository interface {
	// CreateProduct assigns an ID and CreatedAt and stores the product.
	CreateProduct(ctx context.Context, p *domain.Product) error

	// GetProduct returns domain.ErrProductNotFound if the product does not exist.
	GetProduct(ctx context.Context, id int64) (*domain.Product, error)

	// UpdateProduct replaces the stored product with the same ID.
	UpdateProduct(ctx context.Context, p *domain.Product) error

	// DeleteProduct removes the product. Missing products are not an error.
	DeleteProduct(ctx context.Context, id int64) error

	// ListProducts returns every product ordered by ID.
	ListProducts(ctx context.Context) ([]domain.Product, error)

	// ToggleAvailability flips Available and returns the updated product.
	ToggleAvailability(ctx context.Context, id int64) (*domain.Product, error)
}

// OrderRepository is the durable order record store.
// Implementations must allocate IDs uniquely under concurrent Create calls.
type OrderRepository interface {
	// CreateOrder assigns the next sequential ID and stores the order.
	// Returns domain.ErrDuplicateOrderNumber if the number is taken.
	CreateOrder(ctx context.Context, o *domain.Order) error

	// GetOrder returns domain.ErrOrderNotFound if the order does not exist.
	GetOrder(ctx context.Context, id int64) (*domain.Order, error)

	// GetOrderByNumber returns domain.ErrOrderNotFound if no order has the number.
	GetOrderByNumber(ctx context.Context, number string) (*domain.Order, error)

	// ListOrdersByActor returns the actor's orders, oldest first.
	ListOrdersByActor(ctx context.Context, actorID int64) ([]domain.Order, error)

	// UpdateOrderStatus sets the status and UpdatedAt of an order.
	UpdateOrderStatus(ctx context.Context, id int64, status domain.OrderStatus) error
}

// UserRepository stores known chat users.
type UserRepository interface {
	// AddUser inserts the user or refreshes its names if it already exists.
	AddUser(ctx context.Context, u domain.User) error

	// ListUsers returns every known user ordered by join time.
	ListUsers(ctx context.Context) ([]domain.User, error)

	// CountUsers returns the number of known users.
	CountUsers(ctx context.Context) (int, error)
}

// Records groups the three record stores. Adapters usually implement all of them.
type Records interface {
	ProductRepository
	OrderRepository
	UserRepository
}
