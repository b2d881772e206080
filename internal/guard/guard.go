// ABOUTME: Route guard deciding whether a view may render for the current session
// ABOUTME: Stateless per-navigation check plus an HTTP middleware form

package guard

import (
	"net/http"
	"strings"

	"github.com/pandora-edu/session-gateway/internal/session"
	"github.com/pandora-edu/session-gateway/internal/store"
)

// Decision is the guard's answer for a navigation.
type Decision int

const (
	// Render allows the view to render.
	Render Decision = iota

	// RedirectToLogin sends the client to the login entry point.
	RedirectToLogin

	// StillResolving signals that the session state is not known yet;
	// the presentation layer shows its loading state and asks again.
	StillResolving
)

func (d Decision) String() string {
	switch d {
	case Render:
		return "render"
	case RedirectToLogin:
		return "redirect-to-login"
	case StillResolving:
		return "still-resolving"
	default:
		return "unknown"
	}
}

// Decide answers whether a guarded view may render given the current store
// state. It is stateless and consulted once per navigation.
func Decide(st store.SessionStore) Decision {
	if st.IsAuthenticated() {
		return Render
	}
	return RedirectToLogin
}

// DecideSession is the resolved-session form used by callers that already
// hold the session value (or know resolution is still in flight).
func DecideSession(s *session.Session, resolving bool) Decision {
	if resolving {
		return StillResolving
	}
	if s.Authenticated() {
		return Render
	}
	return RedirectToLogin
}

// RequireSession is the middleware form of the guard for HTTP surfaces.
// Unauthenticated requests get a 401 JSON error; browser navigations
// (requests preferring HTML) are redirected to the login entry instead.
func RequireSession(st store.SessionStore, loginPath string) func(http.Handler) http.Handler {
	if loginPath == "" {
		loginPath = "/login"
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if st.IsAuthenticated() {
				next.ServeHTTP(w, r)
				return
			}

			if prefersHTML(r) {
				http.Redirect(w, r, loginPath, http.StatusSeeOther)
				return
			}

			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"message":"not authenticated"}`))
		})
	}
}

func prefersHTML(r *http.Request) bool {
	return strings.Contains(r.Header.Get("Accept"), "text/html")
}
