// Package postgres is the raw-SQL storage backend, selected with
// DATABASE_DRIVER=postgres. It implements the same store interfaces as the
// GORM-backed repositories in internal/database, using a pgx connection pool
// and the goqu query builder.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres" // driver import
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mrlokans/library-ms/internal/config"
)

const dialect = "postgres"

const pgUniqueViolation = "23505"

var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS books (
		id BIGSERIAL PRIMARY KEY,
		title TEXT NOT NULL,
		author TEXT NOT NULL,
		isbn TEXT NOT NULL UNIQUE,
		available_quantity INTEGER NOT NULL DEFAULT 0 CHECK (available_quantity >= 0),
		shelf_location TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS borrowers (
		id BIGSERIAL PRIMARY KEY,
		name TEXT NOT NULL,
		email TEXT NOT NULL UNIQUE,
		registered_date TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS borrowings (
		id BIGSERIAL PRIMARY KEY,
		book_id BIGINT NOT NULL REFERENCES books (id),
		borrower_id BIGINT NOT NULL REFERENCES borrowers (id),
		checkout_date TIMESTAMPTZ NOT NULL,
		due_date TIMESTAMPTZ NOT NULL,
		returned_date TIMESTAMPTZ
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS idx_borrowings_active_pair
		ON borrowings (book_id, borrower_id) WHERE returned_date IS NULL`,
}

// Store holds the pgx pool shared by all operations.
type Store struct {
	pool *pgxpool.Pool
}

// NewStore connects to Postgres and installs the schema.
func NewStore(ctx context.Context, cfg config.Database) (*Store, error) {
	dsn := fmt.Sprintf("postgres://%s:%s@%s:%d/%s",
		cfg.User, cfg.Password, cfg.Host, cfg.Port, cfg.Name)

	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := installSchema(ctx, pool); err != nil {
		pool.Close()
		return nil, err
	}

	log.Printf("Database initialized successfully at %s:%d/%s", cfg.Host, cfg.Port, cfg.Name)

	return &Store{pool: pool}, nil
}

// NewStoreFromPool wraps an existing pool, mainly for tests.
func NewStoreFromPool(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

func (s *Store) Close() error {
	s.pool.Close()
	return nil
}

// Ping checks database connectivity for health reporting.
func (s *Store) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

func installSchema(ctx context.Context, pool *pgxpool.Pool) error {
	for _, stmt := range schemaStatements {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("failed to install schema: %w", err)
		}
	}
	return nil
}

func builder() goqu.DialectWrapper {
	return goqu.Dialect(dialect)
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation
}
