package auth

import (
	"net/http"
	"net/url"
	"testing"
	"time"
)

func TestParseCallbackParams(t *testing.T) {
	tests := []struct {
		name  string
		query url.Values
		want  CallbackParams
	}{
		{
			name:  "code and state",
			query: url.Values{"code": {"abc"}, "state": {"xyz"}},
			want:  CallbackParams{Code: "abc", State: "xyz"},
		},
		{
			name:  "provider error",
			query: url.Values{"error": {"access_denied"}},
			want:  CallbackParams{ErrorCode: "access_denied"},
		},
		{
			name:  "unknown parameters ignored",
			query: url.Values{"code": {"abc"}, "scope": {"openid"}, "authuser": {"0"}, "prompt": {"consent"}},
			want:  CallbackParams{Code: "abc"},
		},
		{
			name:  "whitespace trimmed",
			query: url.Values{"code": {"  abc  "}},
			want:  CallbackParams{Code: "abc"},
		},
		{
			name:  "empty query",
			query: url.Values{},
			want:  CallbackParams{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseCallbackParams(tt.query)
			if got != tt.want {
				t.Errorf("ParseCallbackParams() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestCallbackParams_HasCallback(t *testing.T) {
	if (CallbackParams{}).HasCallback() {
		t.Error("empty params should not report a callback")
	}
	if !(CallbackParams{Code: "abc"}).HasCallback() {
		t.Error("code should report a callback")
	}
	if !(CallbackParams{ErrorCode: "access_denied"}).HasCallback() {
		t.Error("provider error should report a callback")
	}
}

func TestSessionCookie(t *testing.T) {
	c := SessionCookie("spendlog_session", "tok", 24*time.Hour)

	if c.Value != "tok" {
		t.Errorf("Value = %s, want tok", c.Value)
	}
	if c.MaxAge != 86400 {
		t.Errorf("MaxAge = %d, want 86400", c.MaxAge)
	}
	if !c.HttpOnly {
		t.Error("session cookie must be HttpOnly")
	}
	if c.SameSite != http.SameSiteLaxMode {
		t.Error("session cookie must be SameSite=Lax")
	}
}

func TestClearedSessionCookie(t *testing.T) {
	c := ClearedSessionCookie("spendlog_session")

	if c.Value != "" {
		t.Errorf("Value = %q, want empty", c.Value)
	}
	if c.MaxAge >= 0 {
		t.Errorf("MaxAge = %d, want negative to delete the cookie", c.MaxAge)
	}
}
