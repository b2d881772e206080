// ABOUTME: Contract tests run against both SessionStore implementations
// ABOUTME: Covers round-trip, clear, cheap auth checks, and corruption recovery

package store

import (
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pandora-edu/session-gateway/internal/session"
)

func testSession() *session.Session {
	return &session.Session{
		ID:          session.StringID("u-1"),
		DisplayName: "Ana",
		Email:       "a@b.com",
		Graduation:  "CS",
		Role:        session.RoleProfessor,
		Credential:  "tok-1",
	}
}

// stores returns one of each implementation so the contract tests cover both.
func stores(t *testing.T) map[string]SessionStore {
	t.Helper()

	sqlite, err := NewSQLiteStore(filepath.Join(t.TempDir(), "session.db"))
	require.NoError(t, err)
	t.Cleanup(func() { sqlite.Close() })

	return map[string]SessionStore{
		"sqlite": sqlite,
		"memory": NewMemoryStore(),
	}
}

func TestSessionStore_RoundTrip(t *testing.T) {
	for name, st := range stores(t) {
		t.Run(name, func(t *testing.T) {
			want := testSession()
			require.NoError(t, st.Save(want))

			got, err := st.Current()
			require.NoError(t, err)
			assert.Equal(t, want, got)
			assert.True(t, st.IsAuthenticated())

			cred, ok := st.Credential()
			assert.True(t, ok)
			assert.Equal(t, "tok-1", cred)
		})
	}
}

func TestSessionStore_EmptyByDefault(t *testing.T) {
	for name, st := range stores(t) {
		t.Run(name, func(t *testing.T) {
			got, err := st.Current()
			require.NoError(t, err)
			assert.Nil(t, got)
			assert.False(t, st.IsAuthenticated())
		})
	}
}

func TestSessionStore_Clear(t *testing.T) {
	for name, st := range stores(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, st.Save(testSession()))
			require.NoError(t, st.Clear())

			assert.False(t, st.IsAuthenticated())
			got, err := st.Current()
			require.NoError(t, err)
			assert.Nil(t, got)

			_, ok := st.Credential()
			assert.False(t, ok)
		})
	}
}

func TestSessionStore_SaveOverwrites(t *testing.T) {
	for name, st := range stores(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, st.Save(testSession()))

			second := testSession()
			second.Email = "later@b.com"
			second.Credential = "tok-2"
			require.NoError(t, st.Save(second))

			got, err := st.Current()
			require.NoError(t, err)
			assert.Equal(t, "later@b.com", got.Email)

			cred, _ := st.Credential()
			assert.Equal(t, "tok-2", cred)
		})
	}
}

func TestSessionStore_AnonymousSessionIsUnauthenticated(t *testing.T) {
	for name, st := range stores(t) {
		t.Run(name, func(t *testing.T) {
			anon := testSession()
			anon.Credential = ""
			require.NoError(t, st.Save(anon))

			assert.False(t, st.IsAuthenticated())
		})
	}
}

func TestMemoryStore_CorruptedSessionCleared(t *testing.T) {
	st := NewMemoryStore()
	st.SetRaw(KeyCredential, "tok-x")
	st.SetRaw(KeySession, "{not json")

	got, err := st.Current()
	require.NoError(t, err)
	assert.Nil(t, got)

	// Recovery clears the credential too, so both views agree.
	assert.False(t, st.IsAuthenticated())
}

func TestSQLiteStore_CorruptedSessionCleared(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.db")
	st, err := NewSQLiteStore(path)
	require.NoError(t, err)
	defer st.Close()

	require.NoError(t, st.Save(testSession()))
	corruptEntry(t, path, KeySession, "{not json")

	got, err := st.Current()
	require.NoError(t, err)
	assert.Nil(t, got)
	assert.False(t, st.IsAuthenticated())
}

func TestSQLiteStore_PersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.db")

	first, err := NewSQLiteStore(path)
	require.NoError(t, err)
	require.NoError(t, first.Save(testSession()))
	require.NoError(t, first.Close())

	second, err := NewSQLiteStore(path)
	require.NoError(t, err)
	defer second.Close()

	got, err := second.Current()
	require.NoError(t, err)
	assert.Equal(t, testSession(), got)
	assert.True(t, second.IsAuthenticated())
}

// corruptEntry writes a raw value directly into the database, bypassing Save.
func corruptEntry(t *testing.T, path, key, value string) {
	t.Helper()

	db, err := sql.Open("sqlite", path)
	require.NoError(t, err)
	defer db.Close()

	_, err = db.Exec(
		`INSERT INTO session_state (key, value) VALUES (?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		key, value,
	)
	require.NoError(t, err)
}
