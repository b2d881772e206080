// ABOUTME: Requester attaching the stored credential to outbound backend calls
// ABOUTME: Handles credential expiry (401) by clearing the session and redirecting

package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/pandora-edu/session-gateway/internal/gateway"
	"github.com/pandora-edu/session-gateway/internal/store"
)

// ErrSessionExpired is returned when an authenticated call receives a 401.
// By the time it is surfaced the session store has been cleared and the
// redirector pointed at the login entry.
var ErrSessionExpired = errors.New("session expired")

// ReasonExpired is the indicator passed to the redirector on expiry.
const ReasonExpired = "expired"

const genericRequestMessage = "request failed"

// Redirector receives the client-side navigation side effect on expiry.
// The presentation layer supplies the real implementation.
type Redirector interface {
	RedirectToLogin(reason string)
}

// NopRedirector ignores redirects. It keeps the Requester usable in
// headless contexts such as CLIs and tests.
type NopRedirector struct{}

func (NopRedirector) RedirectToLogin(string) {}

// Requester issues authenticated JSON calls against the backend.
type Requester struct {
	cfg      gateway.Config
	http     *http.Client
	store    store.SessionStore
	redirect Redirector
	logger   *slog.Logger
}

// New creates a Requester reading credentials from st. A nil redirector
// falls back to NopRedirector.
func New(cfg gateway.Config, st store.SessionStore, redirect Redirector) *Requester {
	if redirect == nil {
		redirect = NopRedirector{}
	}
	return &Requester{
		cfg:      cfg,
		http:     &http.Client{Timeout: 30 * time.Second},
		store:    st,
		redirect: redirect,
		logger:   slog.Default().With("component", "client"),
	}
}

// WithHTTPClient replaces the underlying HTTP client.
func (r *Requester) WithHTTPClient(client *http.Client) *Requester {
	r.http = client
	return r
}

// Get issues an authenticated GET.
func (r *Requester) Get(ctx context.Context, path string) (json.RawMessage, error) {
	return r.Call(ctx, http.MethodGet, path, nil)
}

// Post issues an authenticated POST with a JSON body.
func (r *Requester) Post(ctx context.Context, path string, body any) (json.RawMessage, error) {
	return r.Call(ctx, http.MethodPost, path, body)
}

// Call issues an authenticated request and returns the parsed JSON body.
// Paths already carrying a scheme are used verbatim; everything else is
// resolved against the configured backend (or relay, in forwarded mode).
func (r *Requester) Call(ctx context.Context, method, path string, body any) (json.RawMessage, error) {
	url := path
	if !strings.HasPrefix(path, "http://") && !strings.HasPrefix(path, "https://") {
		url = r.cfg.Endpoint(path)
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encoding request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	// Attach the credential only when one is stored; never send a
	// malformed Authorization header.
	if cred, ok := r.store.Credential(); ok {
		req.Header.Set("Authorization", "Bearer "+cred)
	}

	resp, err := r.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("calling backend: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode == http.StatusUnauthorized {
		return nil, r.expire()
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &gateway.RequestRejectedError{
			Status:  resp.StatusCode,
			Message: rejectionMessage(raw, resp.StatusCode),
		}
	}

	if len(bytes.TrimSpace(raw)) == 0 {
		return nil, gateway.ErrEmptyResponse
	}
	if !json.Valid(raw) {
		return nil, &gateway.InvalidResponseError{Status: resp.StatusCode}
	}

	return json.RawMessage(raw), nil
}

// expire handles the 401 path: clear the session, redirect to the login
// entry with the expired indicator, then surface ErrSessionExpired.
func (r *Requester) expire() error {
	if err := r.store.Clear(); err != nil {
		r.logger.Warn("clearing expired session failed", "error", err)
	}
	r.redirect.RedirectToLogin(ReasonExpired)
	return ErrSessionExpired
}

// rejectionMessage extracts the backend message from a JSON error body.
// Bodies that do not parse are swallowed into the generic fallback; no
// parse error ever escapes this boundary.
func rejectionMessage(raw []byte, status int) string {
	var payload map[string]any
	if err := json.Unmarshal(raw, &payload); err == nil {
		if msg, ok := payload["message"].(string); ok && msg != "" {
			return msg
		}
	}
	return fmt.Sprintf("%s (status %d)", genericRequestMessage, status)
}
