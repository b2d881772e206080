// ABOUTME: Login and register forwarding handlers with field translation
// ABOUTME: Login flattens {user, token} responses into the flat shape

package relay

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
)

// handleLogin accepts the local login body, translates the secret field to
// the backend's "password", forwards the call, and flattens a nested
// {user, token} answer before responding.
func (rl *Relay) handleLogin(w http.ResponseWriter, r *http.Request) {
	var body map[string]any
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	// Accept the local field name alongside the backend's.
	secret := firstNonEmpty(body, "senha", "password", "secret")
	email, _ := body["email"].(string)

	payload, err := json.Marshal(map[string]any{"email": email, "password": secret})
	if err != nil {
		writeMessage(w, http.StatusInternalServerError, "error building upstream request")
		return
	}

	resp, err := rl.forward(r.Context(), http.MethodPost, "/auth/login", bytes.NewReader(payload), "")
	if err != nil {
		rl.logger.Error("login forward failed", "error", err)
		writeMessage(w, http.StatusInternalServerError, "error forwarding request")
		return
	}
	defer resp.Body.Close()

	data, _, relayErr := upstreamJSON(resp)
	if relayErr != nil {
		writeMessage(w, relayErr.status, relayErr.message)
		return
	}

	if !is2xx(resp.StatusCode) {
		writeMessage(w, resp.StatusCode, upstreamMessage(data, "invalid credentials"))
		return
	}

	flat, err := json.Marshal(flattenAuthPayload(data))
	if err != nil {
		writeMessage(w, http.StatusInternalServerError, "error encoding response")
		return
	}
	writeRaw(w, resp.StatusCode, flat)
}

// handleRegister forwards the registration body verbatim and relays the
// backend's answer through the usual JSON contract.
func (rl *Relay) handleRegister(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		writeMessage(w, http.StatusBadRequest, "error reading request body")
		return
	}

	resp, err := rl.forward(r.Context(), http.MethodPost, "/auth/register", bytes.NewReader(body), "")
	if err != nil {
		rl.logger.Error("register forward failed", "error", err)
		writeMessage(w, http.StatusInternalServerError, "error forwarding request")
		return
	}
	defer resp.Body.Close()

	data, raw, relayErr := upstreamJSON(resp)
	if relayErr != nil {
		writeMessage(w, relayErr.status, relayErr.message)
		return
	}

	if !is2xx(resp.StatusCode) {
		writeMessage(w, resp.StatusCode, upstreamMessage(data, "registration failed"))
		return
	}

	writeRaw(w, resp.StatusCode, raw)
}

// flattenAuthPayload lifts the fields of a nested {user, token} payload to
// the top level, keeping the outer token. Flat payloads pass through with
// the same field selection.
func flattenAuthPayload(data map[string]any) map[string]any {
	fields := data
	if user, ok := data["user"].(map[string]any); ok {
		fields = user
	}

	flat := map[string]any{}
	if id, ok := fields["id"]; ok {
		flat["id"] = id
	}
	if name := firstNonEmpty(fields, "name", "nome"); name != "" {
		flat["nome"] = name
	}
	for _, key := range []string{"email", "graduation", "role"} {
		if v, ok := fields[key].(string); ok && v != "" {
			flat[key] = v
		}
	}
	if token, ok := data["token"].(string); ok && token != "" {
		flat["token"] = token
	}
	return flat
}

func firstNonEmpty(body map[string]any, keys ...string) string {
	for _, key := range keys {
		if s, ok := body[key].(string); ok && s != "" {
			return s
		}
	}
	return ""
}
