package auth

import (
	"net/url"
	"strings"
)

// CallbackParams is the typed view of the provider redirect query string.
// Only the parameters the login flow understands are kept; anything else the
// provider or the browser tacks on is ignored at this boundary.
type CallbackParams struct {
	Code      string
	State     string
	ErrorCode string
}

// ParseCallbackParams extracts the OAuth callback parameters from a query.
func ParseCallbackParams(q url.Values) CallbackParams {
	return CallbackParams{
		Code:      strings.TrimSpace(q.Get("code")),
		State:     strings.TrimSpace(q.Get("state")),
		ErrorCode: strings.TrimSpace(q.Get("error")),
	}
}

// HasCallback reports whether the request carries a provider redirect,
// successful or not.
func (p CallbackParams) HasCallback() bool {
	return p.Code != "" || p.ErrorCode != ""
}
