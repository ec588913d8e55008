package http

import (
	"log/slog"
	"net/http"

	"spendlog/internal/auth"
)

// resolveSession maps the request's cookie and query parameters to a session
// resolution, clearing a stale cookie when the resolver says so.
func (s *Server) resolveSession(w http.ResponseWriter, r *http.Request) auth.Resolution {
	var cookieToken string
	if c, err := r.Cookie(s.cookieName); err == nil {
		cookieToken = c.Value
	}

	params := auth.ParseCallbackParams(r.URL.Query())
	res := s.sessions.ResolveSession(r.Context(), params, cookieToken)

	if res.ClearCookie {
		http.SetCookie(w, auth.ClearedSessionCookie(s.cookieName))
	}
	return res
}

// currentSession returns the authenticated session or nil, redirecting
// anonymous requests to the login page.
func (s *Server) currentSession(w http.ResponseWriter, r *http.Request) *auth.Session {
	res := s.resolveSession(w, r)
	if res.State != auth.StateAuthenticated {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return nil
	}
	return res.Session
}

// handleIndex renders the login page, or sends signed-in users to their
// expenses.
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}

	res := s.resolveSession(w, r)
	if res.State == auth.StateAuthenticated {
		http.Redirect(w, r, "/expenses", http.StatusSeeOther)
		return
	}

	authURL, _ := s.sessions.BeginLogin()
	data := struct {
		AuthURL string
		Reason  string
	}{
		AuthURL: authURL,
		Reason:  res.Reason,
	}
	s.render(w, r, "login.html", data)
}

// handleLogin redirects straight to the provider's authorization URL.
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	authURL, state := s.sessions.BeginLogin()
	slog.InfoContext(r.Context(), "Login started", "state", state)
	http.Redirect(w, r, authURL, http.StatusFound)
}

// handleOAuthCallback completes the login and redirects away from the
// callback URL so a refresh cannot replay the consumed authorization code.
func (s *Server) handleOAuthCallback(w http.ResponseWriter, r *http.Request) {
	res := s.resolveSession(w, r)

	if res.CompletedLogin {
		http.SetCookie(w, auth.SessionCookie(s.cookieName, res.Session.Token, s.sessionTTL))
		slog.InfoContext(r.Context(), "Login completed",
			"owner", res.Session.Identity.Email)
		http.Redirect(w, r, "/expenses", http.StatusSeeOther)
		return
	}

	if res.State == auth.StateAuthenticated {
		// Already signed in via cookie; nothing to complete.
		http.Redirect(w, r, "/expenses", http.StatusSeeOther)
		return
	}

	// A bare hit with no code and no provider error has nothing to show.
	if !auth.ParseCallbackParams(r.URL.Query()).HasCallback() {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	// Provider error or failed exchange: render the login page with the
	// reason so the redirect parameters are dropped with the response.
	authURL, _ := s.sessions.BeginLogin()
	data := struct {
		AuthURL string
		Reason  string
	}{
		AuthURL: authURL,
		Reason:  res.Reason,
	}
	s.render(w, r, "login.html", data)
}

// handleLogout forgets the session. Logging out twice is harmless.
func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", "POST")
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	http.SetCookie(w, auth.ClearedSessionCookie(s.cookieName))
	slog.InfoContext(r.Context(), "Logout completed")
	http.Redirect(w, r, "/", http.StatusSeeOther)
}
