// ABOUTME: AuthGateway performing login/register calls against the identity backend
// ABOUTME: Applies the empty/non-JSON/rejected response ladder and saves the Session

package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/pandora-edu/session-gateway/internal/session"
	"github.com/pandora-edu/session-gateway/internal/store"
)

// Mode selects how auth requests reach the identity backend.
type Mode string

const (
	// ModeDirect calls the backend's absolute URL. Used in production.
	ModeDirect Mode = "direct"

	// ModeForwarded routes through the same-origin relay, which rewrites
	// to the backend. Used to avoid cross-origin restrictions in
	// development. Both modes produce identical sessions for identical
	// backend responses.
	ModeForwarded Mode = "forwarded"
)

// DefaultPrefix is the relay mount prefix used when none is configured.
const DefaultPrefix = "/api"

const genericRejectedMessage = "authentication request failed"

// Config holds the transport configuration for backend calls.
type Config struct {
	// BackendURL is the identity backend's absolute base URL (direct mode).
	BackendURL string

	// RelayURL is the relay's origin (forwarded mode).
	RelayURL string

	// Prefix is the relay mount prefix, DefaultPrefix when empty.
	Prefix string

	Mode Mode
}

// Endpoint builds the full URL for a backend path under the configured mode.
func (c Config) Endpoint(path string) string {
	if c.Mode == ModeForwarded {
		prefix := c.Prefix
		if prefix == "" {
			prefix = DefaultPrefix
		}
		return strings.TrimRight(c.RelayURL, "/") + prefix + path
	}
	return strings.TrimRight(c.BackendURL, "/") + path
}

// Registration carries the fields for a register call. Secret maps to the
// backend's "password" field; Role defaults to STUDENT when empty.
type Registration struct {
	Name       string
	Email      string
	Secret     string
	Graduation string
	Role       session.Role
}

// Gateway performs login and register calls and updates the session store
// on success. Failures never mutate the store.
type Gateway struct {
	cfg    Config
	http   *http.Client
	store  store.SessionStore
	logger *slog.Logger
}

// New creates a Gateway writing successful sessions to st.
func New(cfg Config, st store.SessionStore) *Gateway {
	return NewWithClient(cfg, st, &http.Client{Timeout: 30 * time.Second})
}

// NewWithClient creates a Gateway using the given HTTP client.
func NewWithClient(cfg Config, st store.SessionStore, client *http.Client) *Gateway {
	return &Gateway{
		cfg:    cfg,
		http:   client,
		store:  st,
		logger: slog.Default().With("component", "gateway"),
	}
}

// Login authenticates with email and secret. In direct mode the secret is
// sent under the backend's "password" field; in forwarded mode it is sent
// under the local "senha" field and the relay owns the translation.
func (g *Gateway) Login(ctx context.Context, email, secret string) (*session.Session, error) {
	body := map[string]any{"email": email, "password": secret}
	if g.cfg.Mode == ModeForwarded {
		body = map[string]any{"email": email, "senha": secret}
	}
	return g.authenticate(ctx, "/auth/login", body)
}

// Register creates an account and authenticates in one call.
func (g *Gateway) Register(ctx context.Context, reg Registration) (*session.Session, error) {
	role := reg.Role
	if role == "" {
		role = session.RoleStudent
	}
	body := map[string]any{
		"name":       reg.Name,
		"email":      reg.Email,
		"password":   reg.Secret,
		"graduation": reg.Graduation,
		"role":       role,
	}
	return g.authenticate(ctx, "/auth/register", body)
}

// authenticate issues the call, walks the response ladder, normalizes the
// payload, and saves the resulting session. Any follow-up navigation is the
// caller's responsibility.
func (g *Gateway) authenticate(ctx context.Context, path string, body map[string]any) (*session.Session, error) {
	payload, err := g.post(ctx, g.cfg.Endpoint(path), body)
	if err != nil {
		return nil, err
	}

	sess := session.Normalize(payload)
	if err := g.store.Save(sess); err != nil {
		return nil, fmt.Errorf("saving session: %w", err)
	}

	g.logger.Info("authenticated", "email", sess.Email, "role", sess.Role)
	return sess, nil
}

func (g *Gateway) post(ctx context.Context, url string, body map[string]any) (map[string]any, error) {
	data, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("encoding request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("calling backend: %w", err)
	}
	defer resp.Body.Close()

	return decodeResponse(resp)
}

// decodeResponse applies the three-way ladder: an empty body fails with
// ErrEmptyResponse, a non-JSON body with InvalidResponseError, and a JSON
// body on a non-2xx status with RequestRejectedError. Only a 2xx JSON body
// yields a payload.
func decodeResponse(resp *http.Response) (map[string]any, error) {
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}

	if len(bytes.TrimSpace(raw)) == 0 {
		return nil, ErrEmptyResponse
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var payload map[string]any
	if err := dec.Decode(&payload); err != nil {
		return nil, &InvalidResponseError{Status: resp.StatusCode}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &RequestRejectedError{
			Status:  resp.StatusCode,
			Message: messageField(payload),
		}
	}

	return payload, nil
}

// messageField pulls the backend's "message" field, falling back to the
// generic description when it is absent.
func messageField(payload map[string]any) string {
	if msg, ok := payload["message"].(string); ok && msg != "" {
		return msg
	}
	return genericRejectedMessage
}
