package postgres_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aretw0/storefront/pkg/adapters/postgres"
	"github.com/aretw0/storefront/pkg/domain"
	"github.com/jackc/pgx/v5"
	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- Test Helpers ---

func newTestRepo(t *testing.T) (*postgres.Records, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return postgres.NewRecords(mock), mock
}

var (
	productCols = []string{"id", "category", "name", "price", "description", "size", "photo_ref", "is_available", "created_at"}
	orderCols   = []string{"id", "order_number", "product_id", "customer_name", "phone", "address", "quantity", "actor_id", "actor_display_name", "status", "created_at", "updated_at"}
	userCols    = []string{"user_id", "username", "first_name", "last_name", "joined_at"}
)

func sampleOrder() *domain.Order {
	now := time.Now().UTC().Truncate(time.Microsecond)
	return &domain.Order{
		ID:               3,
		Number:           "ORD-260101-ABCDEF",
		ProductID:        7,
		CustomerName:     "Dilorom",
		Phone:            "+998901234567",
		Address:          "Tashkent, Chilonzor 12",
		Quantity:         2,
		ActorID:          42,
		ActorDisplayName: "@dilorom",
		Status:           domain.OrderStatusNew,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
}

func orderRow(rows *pgxmock.Rows, o *domain.Order) *pgxmock.Rows {
	return rows.AddRow(o.ID, o.Number, o.ProductID, o.CustomerName, o.Phone, o.Address,
		o.Quantity, o.ActorID, o.ActorDisplayName, string(o.Status), o.CreatedAt, o.UpdatedAt)
}

// --- Products ---

func TestRecords_CreateProduct(t *testing.T) {
	repo, mock := newTestRepo(t)

	p := &domain.Product{Category: "Shoes", Name: "Sneakers", Price: 50000, Available: true}
	mock.ExpectQuery("INSERT INTO products").
		WithArgs("Shoes", "Sneakers", int64(50000), "", "", "", true, pgxmock.AnyArg()).
		WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(int64(11)))

	require.NoError(t, repo.CreateProduct(context.Background(), p))
	assert.Equal(t, int64(11), p.ID)
	assert.False(t, p.CreatedAt.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRecords_GetProduct(t *testing.T) {
	repo, mock := newTestRepo(t)
	now := time.Now().UTC()

	mock.ExpectQuery("SELECT .+ FROM products WHERE id").
		WithArgs(int64(7)).
		WillReturnRows(pgxmock.NewRows(productCols).
			AddRow(int64(7), "Shoes", "Sneakers", int64(50000), "white", "42", "photo-1", true, now))

	p, err := repo.GetProduct(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, "Sneakers", p.Name)
	assert.Equal(t, "photo-1", p.PhotoRef)
	assert.True(t, p.Available)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRecords_GetProduct_NotFound(t *testing.T) {
	repo, mock := newTestRepo(t)

	mock.ExpectQuery("SELECT .+ FROM products WHERE id").
		WithArgs(int64(99)).
		WillReturnError(pgx.ErrNoRows)

	p, err := repo.GetProduct(context.Background(), 99)
	assert.Nil(t, p)
	assert.ErrorIs(t, err, domain.ErrProductNotFound)
}

func TestRecords_UpdateProduct_NotFound(t *testing.T) {
	repo, mock := newTestRepo(t)

	p := &domain.Product{ID: 99, Category: "Shoes", Name: "Sneakers", Price: 1}
	mock.ExpectExec("UPDATE products").
		WithArgs(int64(99), "Shoes", "Sneakers", int64(1), "", "", "", false).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	assert.ErrorIs(t, repo.UpdateProduct(context.Background(), p), domain.ErrProductNotFound)
}

func TestRecords_ListProducts(t *testing.T) {
	repo, mock := newTestRepo(t)
	now := time.Now().UTC()

	mock.ExpectQuery("SELECT .+ FROM products ORDER BY id").
		WillReturnRows(pgxmock.NewRows(productCols).
			AddRow(int64(1), "Shoes", "Sneakers", int64(50000), "", "", "", true, now).
			AddRow(int64(2), "Shoes", "Boots", int64(90000), "", "", "", false, now))

	products, err := repo.ListProducts(context.Background())
	require.NoError(t, err)
	require.Len(t, products, 2)
	assert.Equal(t, "Boots", products[1].Name)
	assert.False(t, products[1].Available)
}

func TestRecords_ToggleAvailability(t *testing.T) {
	repo, mock := newTestRepo(t)
	now := time.Now().UTC()

	mock.ExpectQuery("UPDATE products SET is_available = NOT is_available").
		WithArgs(int64(1)).
		WillReturnRows(pgxmock.NewRows(productCols).
			AddRow(int64(1), "Shoes", "Sneakers", int64(50000), "", "", "", false, now))

	p, err := repo.ToggleAvailability(context.Background(), 1)
	require.NoError(t, err)
	assert.False(t, p.Available)

	mock.ExpectQuery("UPDATE products SET is_available = NOT is_available").
		WithArgs(int64(2)).
		WillReturnError(pgx.ErrNoRows)
	_, err = repo.ToggleAvailability(context.Background(), 2)
	assert.ErrorIs(t, err, domain.ErrProductNotFound)
}

func TestRecords_DeleteProduct(t *testing.T) {
	repo, mock := newTestRepo(t)

	mock.ExpectExec("DELETE FROM products").
		WithArgs(int64(5)).
		WillReturnResult(pgxmock.NewResult("DELETE", 0))

	assert.NoError(t, repo.DeleteProduct(context.Background(), 5))
	assert.NoError(t, mock.ExpectationsWereMet())
}

// --- Orders ---

func TestRecords_CreateOrder(t *testing.T) {
	repo, mock := newTestRepo(t)
	o := sampleOrder()
	o.ID = 0

	mock.ExpectQuery("INSERT INTO orders").
		WithArgs(o.Number, o.ProductID, o.CustomerName, o.Phone, o.Address, o.Quantity,
			o.ActorID, o.ActorDisplayName, "new", o.CreatedAt, o.UpdatedAt).
		WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(int64(3)))

	require.NoError(t, repo.CreateOrder(context.Background(), o))
	assert.Equal(t, int64(3), o.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRecords_CreateOrder_DuplicateNumber(t *testing.T) {
	repo, mock := newTestRepo(t)

	mock.ExpectQuery("INSERT INTO orders").
		WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(),
			pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnError(errors.New("ERROR: duplicate key value violates unique constraint (SQLSTATE 23505)"))

	err := repo.CreateOrder(context.Background(), sampleOrder())
	assert.ErrorIs(t, err, domain.ErrDuplicateOrderNumber)
}

func TestRecords_GetOrder(t *testing.T) {
	repo, mock := newTestRepo(t)
	o := sampleOrder()

	mock.ExpectQuery("SELECT .+ FROM orders WHERE id").
		WithArgs(o.ID).
		WillReturnRows(orderRow(pgxmock.NewRows(orderCols), o))

	got, err := repo.GetOrder(context.Background(), o.ID)
	require.NoError(t, err)
	assert.Equal(t, o.Number, got.Number)
	assert.Equal(t, domain.OrderStatusNew, got.Status)
	assert.Equal(t, 2, got.Quantity)
}

func TestRecords_GetOrderByNumber_NotFound(t *testing.T) {
	repo, mock := newTestRepo(t)

	mock.ExpectQuery("SELECT .+ FROM orders WHERE order_number").
		WithArgs("ORD-000000-XXXXXX").
		WillReturnError(pgx.ErrNoRows)

	_, err := repo.GetOrderByNumber(context.Background(), "ORD-000000-XXXXXX")
	assert.ErrorIs(t, err, domain.ErrOrderNotFound)
}

func TestRecords_ListOrdersByActor(t *testing.T) {
	repo, mock := newTestRepo(t)
	first := sampleOrder()
	second := sampleOrder()
	second.ID, second.Number = 4, "ORD-260101-BBBBBB"

	mock.ExpectQuery("SELECT .+ FROM orders WHERE actor_id").
		WithArgs(int64(42)).
		WillReturnRows(orderRow(orderRow(pgxmock.NewRows(orderCols), first), second))

	orders, err := repo.ListOrdersByActor(context.Background(), 42)
	require.NoError(t, err)
	require.Len(t, orders, 2)
	assert.Equal(t, "ORD-260101-BBBBBB", orders[1].Number)
}

func TestRecords_UpdateOrderStatus(t *testing.T) {
	repo, mock := newTestRepo(t)

	mock.ExpectExec("UPDATE orders SET status").
		WithArgs(int64(3), "confirmed", pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	require.NoError(t, repo.UpdateOrderStatus(context.Background(), 3, domain.OrderStatusConfirmed))

	mock.ExpectExec("UPDATE orders SET status").
		WithArgs(int64(9), "confirmed", pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))
	assert.ErrorIs(t, repo.UpdateOrderStatus(context.Background(), 9, domain.OrderStatusConfirmed), domain.ErrOrderNotFound)
}

// --- Users ---

func TestRecords_AddUser(t *testing.T) {
	repo, mock := newTestRepo(t)

	mock.ExpectExec("INSERT INTO users .+ ON CONFLICT").
		WithArgs(int64(42), "dilorom", "Dilorom", "", pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	require.NoError(t, repo.AddUser(context.Background(), domain.User{ID: 42, Username: "dilorom", FirstName: "Dilorom"}))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRecords_ListAndCountUsers(t *testing.T) {
	repo, mock := newTestRepo(t)
	now := time.Now().UTC()

	mock.ExpectQuery("SELECT .+ FROM users ORDER BY joined_at").
		WillReturnRows(pgxmock.NewRows(userCols).
			AddRow(int64(1), "a", "", "", now).
			AddRow(int64(2), "", "Bek", "", now.Add(time.Minute)))
	mock.ExpectQuery("SELECT COUNT").
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(2))

	users, err := repo.ListUsers(context.Background())
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, "Bek", users[1].DisplayName())

	n, err := repo.CountUsers(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestMigrate(t *testing.T) {
	_, mock := newTestRepo(t)

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS products").
		WillReturnResult(pgxmock.NewResult("CREATE", 0))

	require.NoError(t, postgres.Migrate(context.Background(), mock))
	assert.NoError(t, mock.ExpectationsWereMet())
}
