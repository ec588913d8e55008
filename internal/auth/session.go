// Package auth implements the identity session lifecycle: OAuth login,
// callback completion, cookie-backed session restore and logout. All state
// lives in the browser cookie and the per-request Resolution; nothing is
// shared across concurrent sessions.
package auth

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"spendlog/internal/core"
)

// State is the position of a browser session in the login lifecycle.
type State string

const (
	StateAnonymous       State = "anonymous"
	StatePendingCallback State = "pending_callback"
	StateAuthenticated   State = "authenticated"
)

// Session pairs a verified identity with the raw token that proved it.
// The token is mirrored into the durable cookie so a restart can restore
// the session after re-verification.
type Session struct {
	Identity core.Identity
	Token    string
}

// Resolution is the outcome of resolving one inbound request. It is
// constructed fresh per request and never shared.
type Resolution struct {
	State   State
	Session *Session

	// Reason explains why resolution ended Anonymous; surfaced on the
	// login page, never fatal.
	Reason string

	// CompletedLogin marks a fresh code exchange. The HTTP layer must write
	// the durable cookie and redirect away from the callback URL so a page
	// refresh cannot replay the consumed code.
	CompletedLogin bool

	// ClearCookie marks a cookie token that failed re-verification; the
	// stale cookie must be cleared.
	ClearCookie bool
}

// Config is the fixed OAuth client configuration.
type Config struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
}

// Manager drives the Anonymous / PendingCallback / Authenticated state
// machine for the configured identity provider.
type Manager struct {
	oauth    *oauth2.Config
	verifier Verifier

	// exchange is swappable in tests; defaults to oauth.Exchange.
	exchange func(ctx context.Context, code string) (*oauth2.Token, error)
}

func NewManager(cfg Config, verifier Verifier) *Manager {
	oc := &oauth2.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		RedirectURL:  cfg.RedirectURL,
		Endpoint:     google.Endpoint,
		Scopes: []string{
			"openid",
			"https://www.googleapis.com/auth/userinfo.email",
			"https://www.googleapis.com/auth/userinfo.profile",
		},
	}
	m := &Manager{oauth: oc, verifier: verifier}
	m.exchange = func(ctx context.Context, code string) (*oauth2.Token, error) {
		return oc.Exchange(ctx, code)
	}
	return m
}

// BeginLogin returns the provider authorization URL and the state nonce
// bound into it. The URL is presented as a link, never auto-followed.
//
// The nonce satisfies the provider's requirement that every authorization
// request carry a state parameter; it is not round-tripped on the callback.
// The callback is authenticated by verifying the returned id_token itself
// (signature and audience), so a forged callback yields no session.
func (m *Manager) BeginLogin() (authURL, state string) {
	state = uuid.NewString()
	return m.oauth.AuthCodeURL(state), state
}

// CompleteLogin exchanges a single-use authorization code and verifies the
// returned identity token. The caller must drop the redirect parameters
// whether this succeeds or fails: a consumed code is dead either way.
func (m *Manager) CompleteLogin(ctx context.Context, code string) (*Session, error) {
	tok, err := m.exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("exchange authorization code: %w", err)
	}

	raw, _ := tok.Extra("id_token").(string)
	if raw == "" {
		return nil, fmt.Errorf("token response missing id_token")
	}

	identity, err := m.verifier.Verify(ctx, raw)
	if err != nil {
		return nil, fmt.Errorf("verify exchanged token: %w", err)
	}

	return &Session{Identity: identity, Token: raw}, nil
}

// ResolveSession maps an inbound request to a verified identity, if any.
// Resolution order: durable cookie token first (short-circuit to
// Authenticated), then a pending callback code, else Anonymous. Provider,
// network and verification failures never escape; they degrade to an
// Anonymous resolution carrying the reason.
func (m *Manager) ResolveSession(ctx context.Context, params CallbackParams, cookieToken string) Resolution {
	var clearCookie bool

	if cookieToken != "" {
		identity, err := m.verifier.Verify(ctx, cookieToken)
		if err == nil {
			return Resolution{
				State:   StateAuthenticated,
				Session: &Session{Identity: identity, Token: cookieToken},
			}
		}
		// Expired or tampered cookie: clear it and fall through to the
		// callback path, if any.
		slog.WarnContext(ctx, "Session cookie failed re-verification",
			"component", "auth", "error", err)
		clearCookie = true
	}

	if params.ErrorCode != "" {
		return Resolution{
			State:       StateAnonymous,
			Reason:      "Login was cancelled or refused (" + params.ErrorCode + ").",
			ClearCookie: clearCookie,
		}
	}

	if params.Code != "" {
		slog.DebugContext(ctx, "Completing login callback",
			"component", "auth", "state", string(StatePendingCallback))
		session, err := m.CompleteLogin(ctx, params.Code)
		if err != nil {
			slog.WarnContext(ctx, "Login callback failed",
				"component", "auth", "error", err)
			return Resolution{
				State:       StateAnonymous,
				Reason:      "Login failed. Please try again.",
				ClearCookie: clearCookie,
			}
		}
		return Resolution{
			State:          StateAuthenticated,
			Session:        session,
			CompletedLogin: true,
		}
	}

	return Resolution{State: StateAnonymous, ClearCookie: clearCookie}
}
