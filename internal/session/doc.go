// Package session defines the canonical Session record and the normalizer
// that produces it from raw identity-backend responses.
//
// # Session
//
// A Session is the single client-side representation of an authenticated
// user. It is created exclusively by Normalize after a successful login or
// register call, persisted by the store package, and read by everything
// else. A Session without a Credential is an anonymous session and is never
// considered authenticated.
//
// # Normalization
//
// The identity backend answers in two observed shapes:
//
//	{ "user": { ...fields... }, "token": "..." }   (nested)
//	{ ...fields..., "token": "..." }               (flat)
//
// Normalize detects the shape explicitly and resolves fields by a fixed
// precedence (see Normalize). Role resolution falls back to the "role"
// claim embedded in the bearer credential when the payload carries no role
// field; a malformed credential falls through to RoleStudent rather than
// failing. Normalize is total: any syntactically valid JSON object yields
// a Session.
package session
