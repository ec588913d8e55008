package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"google.golang.org/api/idtoken"

	"spendlog/internal/core"
)

// clockSkew is the tolerance applied when re-checking token expiry.
const clockSkew = 10 * time.Second

var (
	ErrNoToken          = errors.New("no identity token")
	ErrTokenExpired     = errors.New("identity token expired")
	ErrAudienceMismatch = errors.New("identity token audience mismatch")
)

// Verifier turns an opaque identity token into a verified Identity.
// Every acceptance path (fresh callback or cookie restore) must pass through
// the same verifier; a token is never trusted as-is.
type Verifier interface {
	Verify(ctx context.Context, token string) (core.Identity, error)
}

// GoogleVerifier validates Google-issued ID tokens against the provider's
// public signing keys.
type GoogleVerifier struct {
	clientID string

	// validate is swappable in tests; defaults to idtoken.Validate.
	validate func(ctx context.Context, token, audience string) (*idtoken.Payload, error)
}

func NewGoogleVerifier(clientID string) *GoogleVerifier {
	return &GoogleVerifier{
		clientID: clientID,
		validate: idtoken.Validate,
	}
}

// Verify checks signature, audience and expiry, and extracts the identity
// claims. The audience must equal the configured OAuth client id; without
// that check the system would admit tokens minted for other applications.
func (v *GoogleVerifier) Verify(ctx context.Context, token string) (core.Identity, error) {
	if strings.TrimSpace(token) == "" {
		return core.Identity{}, ErrNoToken
	}

	payload, err := v.validate(ctx, token, v.clientID)
	if err != nil {
		return core.Identity{}, fmt.Errorf("validate identity token: %w", err)
	}

	// The validator already matches the audience; re-assert it so a
	// misconfigured or permissive validator still fails closed.
	if payload.Audience != v.clientID {
		return core.Identity{}, ErrAudienceMismatch
	}

	expiresAt := time.Unix(payload.Expires, 0)
	if time.Now().After(expiresAt.Add(clockSkew)) {
		return core.Identity{}, ErrTokenExpired
	}

	email, _ := payload.Claims["email"].(string)
	if email == "" {
		return core.Identity{}, errors.New("identity token missing email claim")
	}
	name, _ := payload.Claims["name"].(string)
	if name == "" {
		name = email
	}
	picture, _ := payload.Claims["picture"].(string)

	return core.Identity{
		Email:     email,
		Name:      name,
		Picture:   picture,
		IssuedAt:  time.Unix(payload.IssuedAt, 0),
		ExpiresAt: expiresAt,
	}, nil
}
