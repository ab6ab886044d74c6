package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aretw0/storefront/pkg/domain"
	"github.com/aretw0/storefront/pkg/ports"
	"github.com/jackc/pgx/v5"
)

const (
	productColumns = `id, category, name, price, description, size, photo_ref, is_available, created_at`
	orderColumns   = `id, order_number, product_id, customer_name, phone, address, quantity, actor_id, actor_display_name, status, created_at, updated_at`
	userColumns    = `user_id, username, first_name, last_name, joined_at`
)

// Records implements ports.Records using PostgreSQL.
type Records struct {
	db  DBTX
	now func() time.Time
}

// NewRecords creates a PostgreSQL-backed record store.
func NewRecords(db DBTX) *Records {
	return &Records{db: db, now: func() time.Time { return time.Now().UTC() }}
}

var _ ports.Records = (*Records)(nil)

func scanProduct(row pgx.Row) (*domain.Product, error) {
	var p domain.Product
	err := row.Scan(&p.ID, &p.Category, &p.Name, &p.Price, &p.Description, &p.Size, &p.PhotoRef, &p.Available, &p.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func scanOrder(row pgx.Row) (*domain.Order, error) {
	var o domain.Order
	var status string
	err := row.Scan(&o.ID, &o.Number, &o.ProductID, &o.CustomerName, &o.Phone, &o.Address,
		&o.Quantity, &o.ActorID, &o.ActorDisplayName, &status, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return nil, err
	}
	o.Status = domain.OrderStatus(status)
	return &o, nil
}

// Products

func (r *Records) CreateProduct(ctx context.Context, p *domain.Product) error {
	if p.CreatedAt.IsZero() {
		p.CreatedAt = r.now()
	}
	query := `
		INSERT INTO products (category, name, price, description, size, photo_ref, is_available, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id`
	err := r.db.QueryRow(ctx, query,
		p.Category, p.Name, p.Price, p.Description, p.Size, p.PhotoRef, p.Available, p.CreatedAt,
	).Scan(&p.ID)
	if err != nil {
		return fmt.Errorf("insert product: %w", err)
	}
	return nil
}

func (r *Records) GetProduct(ctx context.Context, id int64) (*domain.Product, error) {
	p, err := scanProduct(r.db.QueryRow(ctx, `SELECT `+productColumns+` FROM products WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrProductNotFound
		}
		return nil, fmt.Errorf("get product: %w", err)
	}
	return p, nil
}

func (r *Records) UpdateProduct(ctx context.Context, p *domain.Product) error {
	query := `
		UPDATE products
		SET category = $2, name = $3, price = $4, description = $5, size = $6, photo_ref = $7, is_available = $8
		WHERE id = $1`
	tag, err := r.db.Exec(ctx, query,
		p.ID, p.Category, p.Name, p.Price, p.Description, p.Size, p.PhotoRef, p.Available,
	)
	if err != nil {
		return fmt.Errorf("update product: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrProductNotFound
	}
	return nil
}

func (r *Records) DeleteProduct(ctx context.Context, id int64) error {
	if _, err := r.db.Exec(ctx, `DELETE FROM products WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	return nil
}

func (r *Records) ListProducts(ctx context.Context) ([]domain.Product, error) {
	rows, err := r.db.Query(ctx, `SELECT `+productColumns+` FROM products ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()

	out := []domain.Product{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		out = append(out, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate products: %w", err)
	}
	return out, nil
}

func (r *Records) ToggleAvailability(ctx context.Context, id int64) (*domain.Product, error) {
	query := `UPDATE products SET is_available = NOT is_available WHERE id = $1 RETURNING ` + productColumns
	p, err := scanProduct(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrProductNotFound
		}
		return nil, fmt.Errorf("toggle product: %w", err)
	}
	return p, nil
}

// Orders

func (r *Records) CreateOrder(ctx context.Context, o *domain.Order) error {
	if o.CreatedAt.IsZero() {
		o.CreatedAt = r.now()
	}
	if o.UpdatedAt.IsZero() {
		o.UpdatedAt = o.CreatedAt
	}
	query := `
		INSERT INTO orders (order_number, product_id, customer_name, phone, address, quantity, actor_id, actor_display_name, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id`
	err := r.db.QueryRow(ctx, query,
		o.Number, o.ProductID, o.CustomerName, o.Phone, o.Address, o.Quantity,
		o.ActorID, o.ActorDisplayName, string(o.Status), o.CreatedAt, o.UpdatedAt,
	).Scan(&o.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicateOrderNumber
		}
		return fmt.Errorf("insert order: %w", err)
	}
	return nil
}

func (r *Records) GetOrder(ctx context.Context, id int64) (*domain.Order, error) {
	return r.getOrder(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = $1`, id)
}

func (r *Records) GetOrderByNumber(ctx context.Context, number string) (*domain.Order, error) {
	return r.getOrder(ctx, `SELECT `+orderColumns+` FROM orders WHERE order_number = $1`, number)
}

func (r *Records) getOrder(ctx context.Context, query string, arg any) (*domain.Order, error) {
	o, err := scanOrder(r.db.QueryRow(ctx, query, arg))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrOrderNotFound
		}
		return nil, fmt.Errorf("get order: %w", err)
	}
	return o, nil
}

func (r *Records) ListOrdersByActor(ctx context.Context, actorID int64) ([]domain.Order, error) {
	rows, err := r.db.Query(ctx, `SELECT `+orderColumns+` FROM orders WHERE actor_id = $1 ORDER BY id`, actorID)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	defer rows.Close()

	out := []domain.Order{}
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		out = append(out, *o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate orders: %w", err)
	}
	return out, nil
}

func (r *Records) UpdateOrderStatus(ctx context.Context, id int64, status domain.OrderStatus) error {
	tag, err := r.db.Exec(ctx, `UPDATE orders SET status = $2, updated_at = $3 WHERE id = $1`, id, string(status), r.now())
	if err != nil {
		return fmt.Errorf("update order status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrOrderNotFound
	}
	return nil
}

// Users

func (r *Records) AddUser(ctx context.Context, u domain.User) error {
	if u.JoinedAt.IsZero() {
		u.JoinedAt = r.now()
	}
	query := `
		INSERT INTO users (user_id, username, first_name, last_name, joined_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (user_id) DO UPDATE
		SET username = EXCLUDED.username, first_name = EXCLUDED.first_name, last_name = EXCLUDED.last_name`
	if _, err := r.db.Exec(ctx, query, u.ID, u.Username, u.FirstName, u.LastName, u.JoinedAt); err != nil {
		return fmt.Errorf("upsert user: %w", err)
	}
	return nil
}

func (r *Records) ListUsers(ctx context.Context) ([]domain.User, error) {
	rows, err := r.db.Query(ctx, `SELECT `+userColumns+` FROM users ORDER BY joined_at, user_id`)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	out := []domain.User{}
	for rows.Next() {
		var u domain.User
		if err := rows.Scan(&u.ID, &u.Username, &u.FirstName, &u.LastName, &u.JoinedAt); err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		out = append(out, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate users: %w", err)
	}
	return out, nil
}

func (r *Records) CountUsers(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM users`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count users: %w", err)
	}
	return n, nil
}
