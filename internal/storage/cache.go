// Package storage caches fetched Source records in a local SQLite database so
// repeat builds can skip refetching metadata. The cache is an optimization,
// not a system of record; clearing it is always safe.
package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// Cache wraps a SQLite database of raw Source records keyed by source id.
type Cache struct {
	db *sql.DB
}

// DefaultPath returns the cache location under the user cache directory.
func DefaultPath() (string, error) {
	dir, err := os.UserCacheDir()
	if err != nil {
		return "", fmt.Errorf("resolving cache directory: %w", err)
	}
	return filepath.Join(dir, "oatrends", "sources.db"), nil
}

// Open opens or creates the cache database at the given path.
func Open(path string) (*Cache, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("creating cache directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening cache database: %w", err)
	}

	db.SetMaxOpenConns(1) // SQLite doesn't support concurrent writes

	if err := createSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating cache schema: %w", err)
	}

	return &Cache{db: db}, nil
}

// Close closes the cache database.
func (c *Cache) Close() error {
	return c.db.Close()
}

func createSchema(db *sql.DB) error {
	schema := `
		CREATE TABLE IF NOT EXISTS sources (
			id TEXT PRIMARY KEY,
			display_name TEXT,
			raw_json TEXT NOT NULL,
			fetched_at TEXT NOT NULL
		);
	`
	_, err := db.Exec(schema)
	return err
}

// Get returns the cached raw record for a source id, or nil when absent.
func (c *Cache) Get(id string) ([]byte, error) {
	var raw []byte
	err := c.db.QueryRow(`SELECT raw_json FROM sources WHERE id = ?`, id).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading cached source %s: %w", id, err)
	}
	return raw, nil
}

// Put stores or replaces the raw record for a source id.
func (c *Cache) Put(id, displayName string, raw []byte) error {
	_, err := c.db.Exec(
		`INSERT OR REPLACE INTO sources (id, display_name, raw_json, fetched_at) VALUES (?, ?, ?, ?)`,
		id, displayName, string(raw), time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("caching source %s: %w", id, err)
	}
	return nil
}

// Count returns the number of cached source records.
func (c *Cache) Count() (int, error) {
	var n int
	if err := c.db.QueryRow(`SELECT COUNT(*) FROM sources`).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting cached sources: %w", err)
	}
	return n, nil
}

// Clear removes all cached records.
func (c *Cache) Clear() error {
	if _, err := c.db.Exec(`DELETE FROM sources`); err != nil {
		return fmt.Errorf("clearing cache: %w", err)
	}
	return nil
}
