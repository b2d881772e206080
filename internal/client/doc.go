// Package client issues authenticated calls on behalf of features that need
// the identity backend after login.
//
// The Requester reads the bearer credential from the session store and
// attaches it as an Authorization header; when no credential is stored the
// header is omitted entirely. A 401 response is the uniform expiry signal:
// the store is cleared, the injected Redirector is pointed at the login
// entry with an "expired" indicator, and the call fails with
// ErrSessionExpired — in that order, so callers observing the failure can
// assume the session is already gone.
package client
