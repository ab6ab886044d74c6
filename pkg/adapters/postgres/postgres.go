// Package postgres implements the storefront record repositories on PostgreSQL
// with pgx. IDs come from BIGSERIAL columns, so allocation stays atomic across
// concurrent writers.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// DBTX is the subset of pgxpool.Pool used by the repositories.
// pgxmock pools satisfy it in tests.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Schema creates the tables used by Records.
const Schema = `
CREATE TABLE IF NOT EXISTS products (
	id           BIGSERIAL PRIMARY KEY,
	category     TEXT NOT NULL,
	name         TEXT NOT NULL,
	price        BIGINT NOT NULL CHECK (price > 0),
	description  TEXT NOT NULL DEFAULT '',
	size         TEXT NOT NULL DEFAULT '',
	photo_ref    TEXT NOT NULL DEFAULT '',
	is_available BOOLEAN NOT NULL DEFAULT TRUE,
	created_at   TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS orders (
	id                 BIGSERIAL PRIMARY KEY,
	order_number       TEXT NOT NULL UNIQUE,
	product_id         BIGINT NOT NULL,
	customer_name      TEXT NOT NULL,
	phone              TEXT NOT NULL,
	address            TEXT NOT NULL,
	quantity           INTEGER NOT NULL CHECK (quantity BETWEEN 1 AND 100),
	actor_id           BIGINT NOT NULL,
	actor_display_name TEXT NOT NULL DEFAULT '',
	status             TEXT NOT NULL,
	created_at         TIMESTAMPTZ NOT NULL,
	updated_at         TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS orders_actor_id_idx ON orders (actor_id);

CREATE TABLE IF NOT EXISTS users (
	user_id    BIGINT PRIMARY KEY,
	username   TEXT NOT NULL DEFAULT '',
	first_name TEXT NOT NULL DEFAULT '',
	last_name  TEXT NOT NULL DEFAULT '',
	joined_at  TIMESTAMPTZ NOT NULL
);
`

// Connect opens a pool for dsn and pings it.
func Connect(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("create postgres pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return pool, nil
}

// Migrate creates the schema if it does not exist.
func Migrate(ctx context.Context, db DBTX) error {
	if _, err := db.Exec(ctx, Schema); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}

// isUniqueViolation checks for SQLSTATE 23505.
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return err != nil && strings.Contains(err.Error(), "23505")
}
