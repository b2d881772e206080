// ABOUTME: Generic forwarding handler for arbitrary backend sub-paths
// ABOUTME: Relays method, JSON body, status, and the Authorization header

package relay

import (
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
)

// handleProxy relays the request to the backend path matching the trailing
// sub-path. Method and JSON body are preserved; the response status is
// relayed verbatim. Non-JSON upstream answers become structured errors.
func (rl *Relay) handleProxy(w http.ResponseWriter, r *http.Request) {
	path := "/" + chi.URLParam(r, "*")
	if r.URL.RawQuery != "" {
		path += "?" + r.URL.RawQuery
	}

	var body io.Reader
	if r.Method == http.MethodPost {
		body = r.Body
	}

	resp, err := rl.forward(r.Context(), r.Method, path, body, r.Header.Get("Authorization"))
	if err != nil {
		rl.logger.Error("proxy forward failed", "path", path, "error", err)
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
		writeMessage(w, resp.StatusCode, upstreamMessage(data, "request failed"))
		return
	}

	writeRaw(w, resp.StatusCode, raw)
}
