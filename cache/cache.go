// Package cache stores evaluation results keyed by expression tree hash.
//
// Evaluation is deterministic and programs read no outside state, so a
// tree's hash identifies its result. Values are stored in their wire
// encoding; results that contain functions are never cached.
package cache

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/tliron/commonlog"
	_ "modernc.org/sqlite"

	"github.com/chazu/nick/vm"
	"github.com/chazu/nick/vm/wire"
)

// ErrNotFound indicates that no result is stored for a hash.
var ErrNotFound = errors.New("result not found")

var log = commonlog.GetLogger("nick.cache")

// Cache is a SQLite-backed result store.
type Cache struct {
	db   *sql.DB
	path string
}

// Open opens (creating if needed) the cache database at path.
func Open(path string) (*Cache, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating cache directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening cache: %w", err)
	}

	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting busy timeout: %w", err)
	}

	_, err = db.Exec(`CREATE TABLE IF NOT EXISTS results (
		hash  TEXT PRIMARY KEY,
		value BLOB NOT NULL
	)`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating table: %w", err)
	}

	log.Debugf("opened result cache %s", path)
	return &Cache{db: db, path: path}, nil
}

// Path returns the database file path.
func (c *Cache) Path() string {
	return c.path
}

// Close closes the database connection.
func (c *Cache) Close() error {
	if c.db != nil {
		return c.db.Close()
	}
	return nil
}

// Get returns the stored result for hash, or ErrNotFound.
func (c *Cache) Get(hash string) (vm.Value, error) {
	var data []byte
	err := c.db.QueryRow("SELECT value FROM results WHERE hash = ?", hash).Scan(&data)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("querying result: %w", err)
	}

	v, err := wire.Unmarshal(data)
	if err != nil {
		return nil, fmt.Errorf("decoding result %s: %w", hash, err)
	}
	log.Debugf("cache hit %s", hash)
	return v, nil
}

// Put stores v as the result for hash. Values that contain functions
// are skipped and reported as wire.ErrNotSerializable.
func (c *Cache) Put(hash string, v vm.Value) error {
	data, err := wire.Marshal(v)
	if err != nil {
		return err
	}
	_, err = c.db.Exec("INSERT OR REPLACE INTO results (hash, value) VALUES (?, ?)", hash, data)
	if err != nil {
		return fmt.Errorf("saving result: %w", err)
	}
	return nil
}

// Len returns the number of stored results.
func (c *Cache) Len() (int, error) {
	var n int
	if err := c.db.QueryRow("SELECT COUNT(*) FROM results").Scan(&n); err != nil {
		return 0, fmt.Errorf("counting results: %w", err)
	}
	return n, nil
}

// Clear removes every stored result.
func (c *Cache) Clear() error {
	if _, err := c.db.Exec("DELETE FROM results"); err != nil {
		return fmt.Errorf("clearing results: %w", err)
	}
	return nil
}
