// ABOUTME: Canonical Session record plus the ID and Role types it is built from
// ABOUTME: ID preserves the backend's string-or-number identifier form verbatim

package session

import (
	"encoding/json"
	"fmt"
)

// Role is the user's role as reported by the identity backend.
type Role string

// Known roles. The backend may introduce others; Role is a string type so
// unknown values pass through untouched.
const (
	RoleStudent   Role = "STUDENT"
	RoleProfessor Role = "PROFESSOR"
	RoleAdmin     Role = "ADMIN"
)

// ID is the backend-assigned user identifier. Backends disagree on its JSON
// type (some send numbers, some strings), so ID records which form was
// received and re-emits the same form on marshal.
type ID struct {
	value  string
	number bool
}

// StringID returns an ID that marshals as a JSON string.
func StringID(s string) ID {
	return ID{value: s}
}

// NumberID returns an ID that marshals as a JSON number.
func NumberID(n json.Number) ID {
	return ID{value: n.String(), number: true}
}

// String returns the identifier's textual form regardless of JSON type.
func (id ID) String() string { return id.value }

// IsZero reports whether the identifier is absent.
func (id ID) IsZero() bool { return id.value == "" }

// MarshalJSON emits the identifier in the form it was received.
func (id ID) MarshalJSON() ([]byte, error) {
	if id.number {
		return []byte(id.value), nil
	}
	return json.Marshal(id.value)
}

// UnmarshalJSON accepts either a JSON string or a JSON number.
func (id *ID) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*id = ID{value: s}
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("id must be a string or number: %w", err)
	}
	*id = ID{value: n.String(), number: true}
	return nil
}

// Session is the canonical record of an authenticated user held by the
// client. It is created by Normalize and persisted by the store package.
type Session struct {
	ID          ID     `json:"id"`
	DisplayName string `json:"displayName"`
	Email       string `json:"email"`
	Graduation  string `json:"graduation,omitempty"`
	Role        Role   `json:"role"`
	Credential  string `json:"credential,omitempty"`
}

// Authenticated reports whether this session carries a bearer credential.
// A session without one is an anonymous/guest session.
func (s *Session) Authenticated() bool {
	return s != nil && s.Credential != ""
}
