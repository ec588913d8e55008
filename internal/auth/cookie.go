package auth

import (
	"net/http"
	"time"
)

// SessionCookie builds the durable cookie holding the raw identity token.
// The cookie only short-circuits re-authentication; its value is re-verified
// on every restore.
func SessionCookie(name, token string, ttl time.Duration) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    token,
		Path:     "/",
		MaxAge:   int(ttl.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
}

// ClearedSessionCookie builds the cookie that removes a stored session.
// Safe to send repeatedly; clearing an absent cookie is a no-op.
func ClearedSessionCookie(name string) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
}
