// ABOUTME: SessionStore interface and the fixed storage keys it operates on
// ABOUTME: Defines save/current/clear/isAuthenticated semantics for session persistence

package store

import (
	"github.com/pandora-edu/session-gateway/internal/session"
)

// Storage keys. The credential is stored separately from the full session
// so authentication checks never depend on the session JSON parsing.
const (
	KeyCredential = "authToken"
	KeySession    = "userData"
)

// SessionStore persists the single current Session. Exactly one session is
// current at a time; Save overwrites unconditionally and the last writer
// wins. Implementations must keep IsAuthenticated and Current consistent:
// a credential without a readable session is treated as unauthenticated
// and both entries are cleared.
type SessionStore interface {
	// Save serializes and writes the session, replacing any prior one.
	Save(s *session.Session) error

	// Current returns the stored session, or nil when none is stored.
	// A corrupted entry is cleared and reported as nil, never as an error.
	Current() (*session.Session, error)

	// Clear removes both the session and the bare credential entry.
	Clear() error

	// IsAuthenticated reports whether a non-empty bearer credential is
	// stored. It is a cheap local read and performs no network calls.
	IsAuthenticated() bool

	// Credential returns the stored bearer credential, if any.
	Credential() (string, bool)
}
