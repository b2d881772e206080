// ABOUTME: Tests for route guard decisions and the RequireSession middleware
// ABOUTME: Covers authenticated, anonymous, and still-resolving states

package guard

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pandora-edu/session-gateway/internal/session"
	"github.com/pandora-edu/session-gateway/internal/store"
)

func TestDecide(t *testing.T) {
	st := store.NewMemoryStore()
	assert.Equal(t, RedirectToLogin, Decide(st))

	require.NoError(t, st.Save(&session.Session{
		ID:         session.StringID("u-1"),
		Email:      "a@b.com",
		Role:       session.RoleStudent,
		Credential: "tok",
	}))
	assert.Equal(t, Render, Decide(st))

	require.NoError(t, st.Clear())
	assert.Equal(t, RedirectToLogin, Decide(st))
}

func TestDecideSession(t *testing.T) {
	tests := []struct {
		name      string
		sess      *session.Session
		resolving bool
		want      Decision
	}{
		{name: "resolving", resolving: true, want: StillResolving},
		{name: "nil session", want: RedirectToLogin},
		{name: "anonymous session", sess: &session.Session{Role: session.RoleStudent}, want: RedirectToLogin},
		{name: "authenticated", sess: &session.Session{Credential: "tok", Role: session.RoleStudent}, want: Render},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DecideSession(tt.sess, tt.resolving))
		})
	}
}

func TestRequireSession_Middleware(t *testing.T) {
	st := store.NewMemoryStore()
	handler := RequireSession(st, "/login")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	t.Run("anonymous API request gets 401", func(t *testing.T) {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/dashboard", nil))
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.JSONEq(t, `{"message":"not authenticated"}`, rec.Body.String())
	})

	t.Run("anonymous browser navigation redirects", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
		req.Header.Set("Accept", "text/html,application/xhtml+xml")

		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusSeeOther, rec.Code)
		assert.Equal(t, "/login", rec.Header().Get("Location"))
	})

	t.Run("authenticated request passes", func(t *testing.T) {
		require.NoError(t, st.Save(&session.Session{
			ID: session.StringID("u-1"), Email: "a@b.com",
			Role: session.RoleStudent, Credential: "tok",
		}))

		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/dashboard", nil))
		assert.Equal(t, http.StatusOK, rec.Code)
	})
}

func TestDecision_String(t *testing.T) {
	assert.Equal(t, "render", Render.String())
	assert.Equal(t, "redirect-to-login", RedirectToLogin.String())
	assert.Equal(t, "still-resolving", StillResolving.String())
}
