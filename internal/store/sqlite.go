package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/jmoiron/sqlx"
	"github.com/serroba/shortlink/internal/shortener"
	_ "modernc.org/sqlite" // registers the "sqlite" driver
)

// SQLiteMemory opens a private in-memory database.
const SQLiteMemory = ":memory:"

const sqliteSchema = `
	CREATE TABLE IF NOT EXISTS short_urls (
		code       TEXT PRIMARY KEY,
		long_url   TEXT NOT NULL,
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	)
`

// SQLiteStore is a SQLite implementation of shortener.Store.
type SQLiteStore struct {
	db *sqlx.DB
}

// NewSQLiteStore opens (or creates) the database at path and ensures the schema.
func NewSQLiteStore(ctx context.Context, path string) (*SQLiteStore, error) {
	dsn := SQLiteMemory

	if path != SQLiteMemory {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("sqlite directory: %w", err)
		}

		dsn = "file:" + path
	}

	db, err := sqlx.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("sqlite open: %w", err)
	}

	// A single connection keeps an in-memory database alive and serializes writers.
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()

		return nil, fmt.Errorf("sqlite ping: %w", err)
	}

	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		_ = db.Close()

		return nil, fmt.Errorf("sqlite schema: %w", err)
	}

	return NewSQLiteStoreFromDB(db), nil
}

// NewSQLiteStoreFromDB wraps an already opened database that has the short_urls table.
func NewSQLiteStoreFromDB(db *sqlx.DB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

func (s *SQLiteStore) Get(ctx context.Context, key string) (string, error) {
	var url string

	err := s.db.GetContext(ctx, &url, `SELECT long_url FROM short_urls WHERE code = ?`, key)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", shortener.ErrNotFound
		}

		return "", fmt.Errorf("sqlite get: %w", err)
	}

	return url, nil
}

func (s *SQLiteStore) Keys(ctx context.Context) ([]string, error) {
	keys := []string{}

	if err := s.db.SelectContext(ctx, &keys, `SELECT code FROM short_urls`); err != nil {
		return nil, fmt.Errorf("sqlite keys: %w", err)
	}

	return keys, nil
}

func (s *SQLiteStore) SetIfAbsent(ctx context.Context, key, value string) (bool, error) {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO short_urls (code, long_url) VALUES (?, ?) ON CONFLICT (code) DO NOTHING`,
		key, value,
	)
	if err != nil {
		return false, fmt.Errorf("sqlite insert: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("sqlite insert: %w", err)
	}

	return n == 1, nil
}

func (s *SQLiteStore) Set(ctx context.Context, key, value string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO short_urls (code, long_url) VALUES (?, ?)
		 ON CONFLICT (code) DO UPDATE SET long_url = excluded.long_url`,
		key, value,
	)
	if err != nil {
		return fmt.Errorf("sqlite upsert: %w", err)
	}

	return nil
}

func (s *SQLiteStore) Delete(ctx context.Context, key string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM short_urls WHERE code = ?`, key); err != nil {
		return fmt.Errorf("sqlite delete: %w", err)
	}

	return nil
}

// Ping checks the database handle.
func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Shutdown closes the database.
func (s *SQLiteStore) Shutdown() error {
	return s.db.Close()
}

// Compile-time check.
var _ shortener.Store = (*SQLiteStore)(nil)
