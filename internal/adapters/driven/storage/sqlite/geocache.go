package sqlite

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/custodia-labs/lineage-cli/internal/core/ports/driven"
)

// DefaultTTL is how long a cached response stays fresh.
const DefaultTTL = 24 * time.Hour

// Ensure GeoCache implements the interface.
var _ driven.ResponseCache = (*GeoCache)(nil)

// GeoCache is a SQLite-backed response cache for gazetteer requests.
type GeoCache struct {
	db   *sql.DB
	path string
	ttl  time.Duration
	now  func() time.Time
}

// NewGeoCache opens (or creates) the cache database under dataDir.
// If dataDir is empty, defaults to ~/.lineage/data.
func NewGeoCache(dataDir string) (*GeoCache, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".lineage", "data")
	}

	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, "geocache.db")

	// Open database with WAL mode for better concurrency
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	const schema = `
		CREATE TABLE IF NOT EXISTS responses (
			request_url TEXT PRIMARY KEY,
			body        BLOB NOT NULL,
			fetched_at  INTEGER NOT NULL
		)`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return &GeoCache{
		db:   db,
		path: dbPath,
		ttl:  DefaultTTL,
		now:  time.Now,
	}, nil
}

// Close closes the database connection.
func (c *GeoCache) Close() error {
	return c.db.Close()
}

// Path returns the database file path.
func (c *GeoCache) Path() string {
	return c.path
}

// Get returns the cached body for a request URL if it is still fresh.
func (c *GeoCache) Get(key string) ([]byte, bool) {
	var body []byte
	var fetchedAt int64
	err := c.db.QueryRow(
		"SELECT body, fetched_at FROM responses WHERE request_url = ?", key,
	).Scan(&body, &fetchedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false
	}
	if err != nil {
		return nil, false
	}
	if c.now().Unix()-fetchedAt > int64(c.ttl.Seconds()) {
		return nil, false
	}
	return body, true
}

// Put stores a response body, replacing any stale entry for the same URL.
func (c *GeoCache) Put(key string, body []byte) error {
	_, err := c.db.Exec(
		`INSERT INTO responses (request_url, body, fetched_at) VALUES (?, ?, ?)
		 ON CONFLICT(request_url) DO UPDATE SET body = excluded.body, fetched_at = excluded.fetched_at`,
		key, body, c.now().Unix(),
	)
	if err != nil {
		return fmt.Errorf("caching response: %w", err)
	}
	return nil
}

// Prune deletes every entry older than the TTL.
func (c *GeoCache) Prune() error {
	cutoff := c.now().Add(-c.ttl).Unix()
	if _, err := c.db.Exec("DELETE FROM responses WHERE fetched_at < ?", cutoff); err != nil {
		return fmt.Errorf("pruning cache: %w", err)
	}
	return nil
}
