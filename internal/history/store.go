// Package history keeps the bounded most-recently-used list of past city
// searches, persisted so it survives restarts.
package history

import (
	"database/sql"
	"fmt"
	"sync"

	json "github.com/goccy/go-json"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"github.com/alutech/weather-service/internal/models"
)

const (
	// storageKey is the single durable key the list lives under.
	storageKey = "history"

	// maxEntries caps the list; the oldest entry is evicted past this.
	maxEntries = 5
)

// Store is a concurrency-safe MRU list of "City, Country" strings backed by
// a sqlite key-value table. Every mutation persists synchronously; a
// persistence failure is reported but the in-memory list stays usable.
type Store struct {
	db     *sql.DB
	logger *zap.Logger

	mu      sync.Mutex
	entries []string
}

// Open loads (or creates) the store at the given sqlite path.
func Open(path string, logger *zap.Logger) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening history database: %w", err)
	}

	if _, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS kv (
			key   TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);
	`); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating kv table: %w", err)
	}

	s := &Store{db: db, logger: logger}
	if err := s.load(); err != nil {
		// A corrupt value should not brick the store; start empty.
		logger.Warn("Failed to load search history, starting empty", zap.Error(err))
		s.entries = nil
	}

	return s, nil
}

func (s *Store) load() error {
	var raw string
	err := s.db.QueryRow(`SELECT value FROM kv WHERE key = ?`, storageKey).Scan(&raw)
	if err == sql.ErrNoRows {
		return nil
	}
	if err != nil {
		return fmt.Errorf("reading %q: %w", storageKey, err)
	}

	var entries []string
	if err := json.Unmarshal([]byte(raw), &entries); err != nil {
		return fmt.Errorf("decoding %q: %w", storageKey, err)
	}
	if len(entries) > maxEntries {
		entries = entries[:maxEntries]
	}
	s.entries = entries
	return nil
}

// Record inserts an entry at the front of the list. An entry that is already
// present moves to the front instead of duplicating; the list is truncated to
// its cap afterwards. The updated list is written through before returning.
func (s *Store) Record(entry string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	updated := make([]string, 0, len(s.entries)+1)
	updated = append(updated, entry)
	for _, e := range s.entries {
		if e != entry {
			updated = append(updated, e)
		}
	}
	if len(updated) > maxEntries {
		updated = updated[:maxEntries]
	}
	s.entries = updated

	return s.persist()
}

// List returns the history most-recent-first.
func (s *Store) List() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]string, len(s.entries))
	copy(out, s.entries)
	return out
}

// Clear drops the list and its persisted value.
func (s *Store) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries = nil
	if _, err := s.db.Exec(`DELETE FROM kv WHERE key = ?`, storageKey); err != nil {
		return fmt.Errorf("%w: clearing history: %v", models.ErrPersistence, err)
	}
	return nil
}

// persist writes the current list under the storage key. Caller holds the lock.
func (s *Store) persist() error {
	raw, err := json.Marshal(s.entries)
	if err != nil {
		return fmt.Errorf("%w: encoding history: %v", models.ErrPersistence, err)
	}

	_, err = s.db.Exec(`
		INSERT INTO kv (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, storageKey, string(raw))
	if err != nil {
		return fmt.Errorf("%w: writing history: %v", models.ErrPersistence, err)
	}
	return nil
}

func (s *Store) Close() error {
	return s.db.Close()
}
