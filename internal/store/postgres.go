package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/serroba/shortlink/internal/shortener"
)

const postgresSchema = `
	CREATE TABLE IF NOT EXISTS short_urls (
		code       TEXT PRIMARY KEY,
		long_url   TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)
`

// PostgresStore is a PostgreSQL implementation of shortener.Store.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a new PostgreSQL-backed URL store.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// EnsureSchema creates the short_urls table when it does not exist.
func (p *PostgresStore) EnsureSchema(ctx context.Context) error {
	if _, err := p.pool.Exec(ctx, postgresSchema); err != nil {
		return fmt.Errorf("postgres schema: %w", err)
	}

	return nil
}

func (p *PostgresStore) Get(ctx context.Context, key string) (string, error) {
	var url string

	err := p.pool.QueryRow(ctx, `SELECT long_url FROM short_urls WHERE code = $1`, key).Scan(&url)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", shortener.ErrNotFound
		}

		return "", fmt.Errorf("postgres get: %w", err)
	}

	return url, nil
}

func (p *PostgresStore) Keys(ctx context.Context) ([]string, error) {
	rows, err := p.pool.Query(ctx, `SELECT code FROM short_urls`)
	if err != nil {
		return nil, fmt.Errorf("postgres keys: %w", err)
	}

	keys, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("postgres keys: %w", err)
	}

	return keys, nil
}

func (p *PostgresStore) SetIfAbsent(ctx context.Context, key, value string) (bool, error) {
	query := `
		INSERT INTO short_urls (code, long_url)
		VALUES ($1, $2)
		ON CONFLICT (code) DO NOTHING
	`

	tag, err := p.pool.Exec(ctx, query, key, value)
	if err != nil {
		return false, fmt.Errorf("postgres insert: %w", err)
	}

	return tag.RowsAffected() == 1, nil
}

func (p *PostgresStore) Set(ctx context.Context, key, value string) error {
	query := `
		INSERT INTO short_urls (code, long_url)
		VALUES ($1, $2)
		ON CONFLICT (code) DO UPDATE SET long_url = EXCLUDED.long_url
	`

	if _, err := p.pool.Exec(ctx, query, key, value); err != nil {
		return fmt.Errorf("postgres upsert: %w", err)
	}

	return nil
}

func (p *PostgresStore) Delete(ctx context.Context, key string) error {
	if _, err := p.pool.Exec(ctx, `DELETE FROM short_urls WHERE code = $1`, key); err != nil {
		return fmt.Errorf("postgres delete: %w", err)
	}

	return nil
}

// Ping checks PostgreSQL connectivity.
func (p *PostgresStore) Ping(ctx context.Context) error {
	return p.pool.Ping(ctx)
}

// Compile-time check.
var _ shortener.Store = (*PostgresStore)(nil)

// Shutdown closes the connection pool.
func (p *PostgresStore) Shutdown() error {
	p.pool.Close()

	return nil
}
