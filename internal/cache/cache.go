// Package cache is a persistent URL-keyed result cache backed by sqlite.
// Entries never expire; a result written for a URL stays until cleared.
package cache

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3" // Import for side-effects only

	"ost-labs/orgmeta/internal/models"
)

// Cache wraps the sqlite handle bound to a cache file.
type Cache struct {
	db *sql.DB
}

// Open opens (or creates) the cache database and ensures the schema exists.
// It applies the same connection settings we use elsewhere to prevent
// "database locked" errors (WAL mode, busy timeout).
func Open(path string) (*Cache, error) {
	dsn := fmt.Sprintf("%s?_busy_timeout=5000&_journal_mode=WAL", path)

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open cache database: %w", err)
	}

	if err = db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping cache database: %w", err)
	}

	if err = createSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ensure cache schema: %w", err)
	}

	return &Cache{db: db}, nil
}

// Close releases the underlying handle.
func (c *Cache) Close() error {
	return c.db.Close()
}

func createSchema(db *sql.DB) error {
	table := `
	CREATE TABLE IF NOT EXISTS enrichment_cache (
		url TEXT PRIMARY KEY,
		result TEXT NOT NULL,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);
	`
	_, err := db.Exec(table)
	return err
}

// Get returns the cached result for a URL, or nil on a miss.
// An entry whose stored JSON no longer parses is treated as a miss so that
// old schema versions cannot break a run.
func (c *Cache) Get(url string) (models.Result, error) {
	var raw string
	err := c.db.QueryRow("SELECT result FROM enrichment_cache WHERE url = ?", url).Scan(&raw)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("cache lookup failed for %s: %w", url, err)
	}

	var result models.Result
	if err := json.Unmarshal([]byte(raw), &result); err != nil {
		return nil, nil
	}
	return result, nil
}

// Add stores a result for a URL only if no entry exists yet. An earlier
// entry for the same key is never overwritten.
func (c *Cache) Add(url string, result models.Result) error {
	raw, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("failed to serialize result for %s: %w", url, err)
	}
	_, err = c.db.Exec("INSERT OR IGNORE INTO enrichment_cache (url, result) VALUES (?, ?)", url, string(raw))
	return err
}

// --- Cache management for the CLI ---

// Entry describes one cached result for listings.
type Entry struct {
	URL          string
	CreatedAt    time.Time
	HasException bool
}

// Entries returns all cached results, newest first.
func (c *Cache) Entries() ([]Entry, error) {
	rows, err := c.db.Query("SELECT url, result, created_at FROM enrichment_cache ORDER BY created_at DESC")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		var raw string
		if err := rows.Scan(&e.URL, &raw, &e.CreatedAt); err != nil {
			continue
		}
		var result models.Result
		if err := json.Unmarshal([]byte(raw), &result); err == nil {
			_, e.HasException = result.Exception()
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Clear removes a specific URL from the cache.
func (c *Cache) Clear(url string) (int64, error) {
	res, err := c.db.Exec("DELETE FROM enrichment_cache WHERE url = ?", url)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// ClearAll wipes the entire cache.
func (c *Cache) ClearAll() (int64, error) {
	res, err := c.db.Exec("DELETE FROM enrichment_cache")
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
