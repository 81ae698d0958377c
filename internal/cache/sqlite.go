package cache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

// noExpiry marks rows stored with a zero TTL.
const noExpiry int64 = 0

// SQLiteStore provides a SQLite-based caching mechanism.
type SQLiteStore struct {
	db *sqlx.DB
}

var _ Store = (*SQLiteStore)(nil)

// NewSQLiteStore opens the SQLite database at the given file path and ensures the
// cache table is created.
func NewSQLiteStore(filePath string) (*SQLiteStore, error) {
	db, err := sqlx.Connect("sqlite", filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to sqlite cache: %w", err)
	}

	// Every connection to an in-memory database sees its own empty database.
	if strings.Contains(filePath, ":memory:") {
		db.SetMaxOpenConns(1)
	}

	_, err = db.Exec("PRAGMA journal_mode=WAL;")
	if err != nil {
		return nil, fmt.Errorf("failed to set WAL mode on sqlite cache: %w", err)
	}

	schema := `
	CREATE TABLE IF NOT EXISTS cache (
		key TEXT PRIMARY KEY,
		value BLOB,
		expires_at INTEGER
	);
	CREATE INDEX IF NOT EXISTS idx_expires_at ON cache (expires_at);
	`
	_, err = db.Exec(schema)
	if err != nil {
		return nil, fmt.Errorf("failed to create cache schema: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Get retrieves an item from the cache. Expired rows are treated as a miss.
func (c *SQLiteStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var item struct {
		Value     []byte `db:"value"`
		ExpiresAt int64  `db:"expires_at"`
	}
	query := `SELECT value, expires_at FROM cache WHERE key = ?`
	err := c.db.GetContext(ctx, &item, query, key)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("failed to get item from cache: %w", err)
	}

	if item.ExpiresAt != noExpiry && time.Now().UnixNano() > item.ExpiresAt {
		// best effort
		_ = c.Delete(ctx, key)
		return nil, false, nil
	}

	return item.Value, true, nil
}

// Set adds an item to the cache with a specific TTL (time-to-live).
func (c *SQLiteStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	expiresAt := noExpiry
	if ttl > 0 {
		expiresAt = time.Now().Add(ttl).UnixNano()
	}
	query := `INSERT OR REPLACE INTO cache (key, value, expires_at) VALUES (?, ?, ?)`
	_, err := c.db.ExecContext(ctx, query, key, value, expiresAt)
	if err != nil {
		return fmt.Errorf("failed to set item in cache: %w", err)
	}
	return nil
}

// Delete removes an item from the cache.
func (c *SQLiteStore) Delete(ctx context.Context, key string) error {
	query := `DELETE FROM cache WHERE key = ?`
	_, err := c.db.ExecContext(ctx, query, key)
	if err != nil {
		return fmt.Errorf("failed to delete item from cache: %w", err)
	}
	return nil
}

// Clear removes every item from the cache.
func (c *SQLiteStore) Clear(ctx context.Context) error {
	if _, err := c.db.ExecContext(ctx, `DELETE FROM cache`); err != nil {
		return fmt.Errorf("failed to clear cache: %w", err)
	}
	return nil
}

// PurgeExpired deletes expired rows and returns how many were removed.
func (c *SQLiteStore) PurgeExpired(ctx context.Context) (int64, error) {
	query := `DELETE FROM cache WHERE expires_at != ? AND expires_at < ?`
	res, err := c.db.ExecContext(ctx, query, noExpiry, time.Now().UnixNano())
	if err != nil {
		return 0, fmt.Errorf("failed to purge expired cache items: %w", err)
	}
	return res.RowsAffected()
}

// Close closes the database connection.
func (c *SQLiteStore) Close() error {
	return c.db.Close()
}
