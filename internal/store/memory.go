// ABOUTME: In-memory SessionStore for tests and embedding
// ABOUTME: Mirrors SQLiteStore semantics including corrupted-entry recovery

package store

import (
	"encoding/json"
	"sync"

	"github.com/pandora-edu/session-gateway/internal/session"
)

// MemoryStore is a SessionStore backed by a map. It mirrors SQLiteStore
// semantics exactly, including the clear-on-corruption recovery, so tests
// exercise the same contract the durable store provides.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]string
}

// NewMemoryStore creates an empty in-memory session store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[string]string)}
}

// Save serializes the session and overwrites both entries.
func (m *MemoryStore) Save(sess *session.Session) error {
	data, err := json.Marshal(sess)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[KeyCredential] = sess.Credential
	m.entries[KeySession] = string(data)
	return nil
}

// Current returns the stored session, clearing and reporting nil when the
// entry does not deserialize.
func (m *MemoryStore) Current() (*session.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	value, ok := m.entries[KeySession]
	if !ok {
		return nil, nil
	}

	var sess session.Session
	if err := json.Unmarshal([]byte(value), &sess); err != nil {
		delete(m.entries, KeyCredential)
		delete(m.entries, KeySession)
		return nil, nil
	}
	return &sess, nil
}

// Clear removes both entries.
func (m *MemoryStore) Clear() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, KeyCredential)
	delete(m.entries, KeySession)
	return nil
}

// IsAuthenticated reports whether a non-empty credential entry exists.
func (m *MemoryStore) IsAuthenticated() bool {
	cred, ok := m.Credential()
	return ok && cred != ""
}

// Credential returns the stored bearer credential, if any.
func (m *MemoryStore) Credential() (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	value, ok := m.entries[KeyCredential]
	if !ok || value == "" {
		return "", false
	}
	return value, true
}

// SetRaw writes a raw value under a storage key, bypassing serialization.
// Tests use it to simulate corrupted or inconsistent storage states.
func (m *MemoryStore) SetRaw(key, value string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[key] = value
}
