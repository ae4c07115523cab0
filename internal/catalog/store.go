package catalog

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// Store persists catalog cache entries in sqlite so a restarted
// process reuses listings that are still inside their TTL.
type Store struct {
	db *sql.DB
}

func OpenStore(sqlitePath string) (*Store, error) {
	dir := filepath.Dir(sqlitePath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create sqlite dir: %w", err)
	}

	db, err := sql.Open("sqlite", sqlitePath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	if _, err := db.Exec(`PRAGMA journal_mode = WAL;`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("set sqlite WAL: %w", err)
	}

	if _, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS catalog_cache (
			cache_key  TEXT PRIMARY KEY,
			payload    BLOB NOT NULL,
			expires_at INTEGER NOT NULL
		);
	`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create catalog_cache table: %w", err)
	}

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}

	store := &Store{db: db}
	if err := store.pruneExpired(time.Now()); err != nil {
		_ = db.Close()
		return nil, err
	}

	return store, nil
}

// Get returns the payload and its expiry. Entries at or past their
// expiry are deleted and reported as misses.
func (s *Store) Get(key string, now time.Time) ([]byte, time.Time, bool) {
	var payload []byte
	var expiresAt int64
	err := s.db.QueryRow(
		`SELECT payload, expires_at FROM catalog_cache WHERE cache_key = ?`, key,
	).Scan(&payload, &expiresAt)
	if err != nil {
		return nil, time.Time{}, false
	}
	if now.Unix() >= expiresAt {
		_, _ = s.db.Exec(`DELETE FROM catalog_cache WHERE cache_key = ?`, key)
		return nil, time.Time{}, false
	}
	return payload, time.Unix(expiresAt, 0), true
}

func (s *Store) Set(key string, payload []byte, expiresAt time.Time) error {
	_, err := s.db.Exec(`
		INSERT INTO catalog_cache (cache_key, payload, expires_at) VALUES (?, ?, ?)
		ON CONFLICT(cache_key) DO UPDATE SET payload = excluded.payload, expires_at = excluded.expires_at
	`, key, payload, expiresAt.Unix())
	if err != nil {
		return fmt.Errorf("store catalog cache entry: %w", err)
	}
	return nil
}

func (s *Store) Ping() error {
	return s.db.Ping()
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) pruneExpired(now time.Time) error {
	if _, err := s.db.Exec(`DELETE FROM catalog_cache WHERE expires_at <= ?`, now.Unix()); err != nil {
		return fmt.Errorf("prune catalog cache: %w", err)
	}
	return nil
}
