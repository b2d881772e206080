// ABOUTME: SQLite implementation of SessionStore using modernc.org/sqlite
// ABOUTME: Single key/value table with automatic schema creation and WAL mode

package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/pandora-edu/session-gateway/internal/session"

	_ "modernc.org/sqlite"
)

// SQLiteStore implements SessionStore on a local SQLite database.
type SQLiteStore struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewSQLiteStore opens (or creates) a session database at the given path.
// Parent directories are created if needed.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	logger := slog.Default().With("component", "store")

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating storage directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening session database: %w", err)
	}

	// WAL keeps the single-key overwrite atomic under concurrent readers
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling WAL mode: %w", err)
	}

	schema := `
		CREATE TABLE IF NOT EXISTS session_state (
			key   TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	logger.Debug("session store initialized", "path", path)
	return &SQLiteStore{db: db, logger: logger}, nil
}

// Close releases the underlying database handle.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Save serializes the session and writes both storage entries in one
// transaction, overwriting any prior session.
func (s *SQLiteStore) Save(sess *session.Session) error {
	data, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("serializing session: %w", err)
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("starting save: %w", err)
	}
	defer tx.Rollback()

	if err := upsert(tx, KeyCredential, sess.Credential); err != nil {
		return err
	}
	if err := upsert(tx, KeySession, string(data)); err != nil {
		return err
	}
	return tx.Commit()
}

// Current reads and deserializes the stored session. A missing entry yields
// (nil, nil). A corrupted entry is cleared, logged, and also yields
// (nil, nil) so callers never branch on deserialization failures.
func (s *SQLiteStore) Current() (*session.Session, error) {
	value, ok, err := s.get(KeySession)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}

	var sess session.Session
	if err := json.Unmarshal([]byte(value), &sess); err != nil {
		s.logger.Warn("stored session is corrupted, clearing", "error", err)
		if clearErr := s.Clear(); clearErr != nil {
			return nil, fmt.Errorf("clearing corrupted session: %w", clearErr)
		}
		return nil, nil
	}
	return &sess, nil
}

// Clear removes the session and the bare credential entry.
func (s *SQLiteStore) Clear() error {
	_, err := s.db.Exec(
		"DELETE FROM session_state WHERE key IN (?, ?)",
		KeyCredential, KeySession,
	)
	if err != nil {
		return fmt.Errorf("clearing session: %w", err)
	}
	return nil
}

// IsAuthenticated reports whether a non-empty credential entry exists. It
// reads only the credential key and never parses the session JSON.
func (s *SQLiteStore) IsAuthenticated() bool {
	cred, ok := s.Credential()
	return ok && cred != ""
}

// Credential returns the stored bearer credential, if any.
func (s *SQLiteStore) Credential() (string, bool) {
	value, ok, err := s.get(KeyCredential)
	if err != nil {
		s.logger.Warn("reading credential failed", "error", err)
		return "", false
	}
	if !ok || value == "" {
		return "", false
	}
	return value, true
}

func (s *SQLiteStore) get(key string) (string, bool, error) {
	var value string
	err := s.db.QueryRow(
		"SELECT value FROM session_state WHERE key = ?", key,
	).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("reading %s: %w", key, err)
	}
	return value, true, nil
}

func upsert(tx *sql.Tx, key, value string) error {
	_, err := tx.Exec(
		`INSERT INTO session_state (key, value) VALUES (?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		key, value,
	)
	if err != nil {
		return fmt.Errorf("writing %s: %w", key, err)
	}
	return nil
}
