// ABOUTME: Relay type, router wiring, and shared response plumbing
// ABOUTME: Mounts auth forwarding and the generic proxy under one chi router

package relay

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
)

// Relay forwards same-origin requests to the identity backend.
type Relay struct {
	backendURL string
	http       *http.Client
	logger     *slog.Logger
	metrics    *metrics
}

// New creates a Relay targeting the given backend base URL. A nil
// registerer disables metrics collection.
func New(backendURL string, reg prometheus.Registerer) *Relay {
	rl := &Relay{
		backendURL: strings.TrimRight(backendURL, "/"),
		http:       &http.Client{Timeout: 30 * time.Second},
		logger:     slog.Default().With("component", "relay"),
	}
	if reg != nil {
		rl.metrics = newMetrics(reg)
	}
	return rl
}

// WithHTTPClient replaces the upstream HTTP client.
func (rl *Relay) WithHTTPClient(client *http.Client) *Relay {
	rl.http = client
	return rl
}

// Routes returns the relay's HTTP handler. Callers mount it under the
// configured same-origin prefix (usually /api).
func (rl *Relay) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(rl.observe)

	r.Post("/auth/login", rl.handleLogin)
	r.Post("/auth/register", rl.handleRegister)
	r.Get("/proxy/*", rl.handleProxy)
	r.Post("/proxy/*", rl.handleProxy)

	return r
}

// observe logs each request with a generated ID and records metrics.
func (rl *Relay) observe(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		requestID := uuid.New().String()

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		elapsed := time.Since(start)
		route := chi.RouteContext(r.Context()).RoutePattern()

		rl.logger.Info("relayed request",
			"request_id", requestID,
			"method", r.Method,
			"route", route,
			"status", ww.Status(),
			"duration", elapsed,
		)
		if rl.metrics != nil {
			rl.metrics.observe(route, r.Method, ww.Status(), elapsed)
		}
	})
}

// forward issues the upstream request, copying the Authorization header
// through when present.
func (rl *Relay) forward(ctx context.Context, method, path string, body io.Reader, authorization string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, rl.backendURL+path, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}
	return rl.http.Do(req)
}

// upstreamJSON reads an upstream response and enforces the JSON contract:
// empty and non-JSON bodies become structured errors carrying the upstream
// status, never raw pass-through.
func upstreamJSON(resp *http.Response) (map[string]any, []byte, *relayError) {
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, nil, &relayError{http.StatusBadGateway, "error reading upstream response"}
	}

	if len(bytes.TrimSpace(raw)) == 0 {
		return nil, nil, &relayError{resp.StatusCode, "upstream returned an empty response"}
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var payload map[string]any
	if err := dec.Decode(&payload); err != nil {
		return nil, nil, &relayError{resp.StatusCode, "upstream returned a non-JSON response"}
	}

	return payload, raw, nil
}

// relayError is a structured error answer: a status plus a message body.
type relayError struct {
	status  int
	message string
}

func writeMessage(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"message": message})
}

func writeRaw(w http.ResponseWriter, status int, body []byte) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(body)
}

func upstreamMessage(payload map[string]any, fallback string) string {
	if msg, ok := payload["message"].(string); ok && msg != "" {
		return msg
	}
	return fallback
}

func is2xx(status int) bool {
	return status >= 200 && status <= 299
}
