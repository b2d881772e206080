// ABOUTME: Normalizer mapping raw identity-backend payloads to the canonical Session
// ABOUTME: Detects nested-vs-flat payload shape and decodes the role claim fallback

package session

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

// NormalizeJSON decodes data as a JSON object and normalizes it. The only
// error condition is syntactically invalid JSON; every valid object yields
// a Session.
func NormalizeJSON(data []byte) (*Session, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var payload map[string]any
	if err := dec.Decode(&payload); err != nil {
		return nil, fmt.Errorf("decoding auth payload: %w", err)
	}
	return Normalize(payload), nil
}

// Normalize maps a raw backend auth payload to the canonical Session.
//
// Shape detection: a payload carrying a nested "user" object with a sibling
// "token" is the nested variant; field resolution then works on the inner
// object. Anything else is treated as flat.
//
// Field precedence, first match wins:
//
//	id          <- id
//	displayName <- name, else nome
//	email       <- email
//	graduation  <- graduation
//	role        <- role field, else role claim in the credential, else STUDENT
//	credential  <- token (always read from the outer object)
//
// Normalize never fails; missing fields surface as zero values and role is
// always populated.
func Normalize(payload map[string]any) *Session {
	credential, _ := payload["token"].(string)
	_, hasToken := payload["token"]

	fields := payload
	if user, ok := payload["user"].(map[string]any); ok && hasToken {
		fields = user
	}

	s := &Session{
		DisplayName: firstString(fields, "name", "nome"),
		Email:       stringField(fields, "email"),
		Graduation:  stringField(fields, "graduation"),
		Credential:  credential,
	}
	s.ID = idField(fields, "id")

	if role := stringField(fields, "role"); role != "" {
		s.Role = Role(role)
	} else if claim, ok := roleFromCredential(credential); ok {
		s.Role = claim
	} else {
		s.Role = RoleStudent
	}

	return s
}

// roleFromCredential decodes the bearer credential as a JWT without
// verifying its signature and reads the "role" claim. The second return
// value reports whether a usable claim was found; decode failures never
// propagate, they simply report false so the caller falls through to the
// default.
func roleFromCredential(credential string) (Role, bool) {
	if credential == "" {
		return "", false
	}

	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(credential, claims); err != nil {
		return "", false
	}

	role, ok := claims["role"].(string)
	if !ok || role == "" {
		return "", false
	}
	return Role(role), true
}

func stringField(fields map[string]any, key string) string {
	s, _ := fields[key].(string)
	return s
}

func firstString(fields map[string]any, keys ...string) string {
	for _, key := range keys {
		if s := stringField(fields, key); s != "" {
			return s
		}
	}
	return ""
}

func idField(fields map[string]any, key string) ID {
	switch v := fields[key].(type) {
	case string:
		return StringID(v)
	case json.Number:
		return NumberID(v)
	case float64:
		// Payloads decoded without UseNumber arrive here.
		return NumberID(json.Number(jsonFloat(v)))
	default:
		return ID{}
	}
}

func jsonFloat(f float64) string {
	data, _ := json.Marshal(f)
	return string(data)
}
