package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/idtoken"
)

const testClientID = "spendlog-client-id.apps.googleusercontent.com"

// stubValidator fakes the provider-side signature check so the wrapper's own
// audience and expiry handling can be exercised.
func stubValidator(payload *idtoken.Payload, err error) func(context.Context, string, string) (*idtoken.Payload, error) {
	return func(ctx context.Context, token, audience string) (*idtoken.Payload, error) {
		if err != nil {
			return nil, err
		}
		return payload, nil
	}
}

func goodPayload(now time.Time) *idtoken.Payload {
	return &idtoken.Payload{
		Audience: testClientID,
		IssuedAt: now.Unix(),
		Expires:  now.Add(time.Hour).Unix(),
		Claims: map[string]interface{}{
			"email":   "a@x.com",
			"name":    "Ada",
			"picture": "https://example.com/ada.png",
		},
	}
}

func TestGoogleVerifier_Verify(t *testing.T) {
	now := time.Now()

	v := NewGoogleVerifier(testClientID)
	v.validate = stubValidator(goodPayload(now), nil)

	identity, err := v.Verify(context.Background(), "raw-token")
	require.NoError(t, err)
	assert.Equal(t, "a@x.com", identity.Email)
	assert.Equal(t, "Ada", identity.Name)
	assert.Equal(t, "https://example.com/ada.png", identity.Picture)
	assert.Equal(t, now.Unix(), identity.IssuedAt.Unix())
	assert.Equal(t, now.Add(time.Hour).Unix(), identity.ExpiresAt.Unix())
}

func TestGoogleVerifier_EmptyToken(t *testing.T) {
	v := NewGoogleVerifier(testClientID)
	v.validate = func(ctx context.Context, token, audience string) (*idtoken.Payload, error) {
		t.Fatal("validator must not be called for an empty token")
		return nil, nil
	}

	_, err := v.Verify(context.Background(), "   ")
	assert.ErrorIs(t, err, ErrNoToken)
}

func TestGoogleVerifier_AudienceMismatch(t *testing.T) {
	// Signature and expiry fine; the token was just minted for someone else.
	payload := goodPayload(time.Now())
	payload.Audience = "other-app.apps.googleusercontent.com"

	v := NewGoogleVerifier(testClientID)
	v.validate = stubValidator(payload, nil)

	_, err := v.Verify(context.Background(), "raw-token")
	assert.ErrorIs(t, err, ErrAudienceMismatch)
}

func TestGoogleVerifier_Expiry(t *testing.T) {
	tests := []struct {
		name    string
		expires time.Time
		wantErr bool
	}{
		{name: "valid for an hour", expires: time.Now().Add(time.Hour)},
		{name: "just expired, inside skew", expires: time.Now().Add(-5 * time.Second)},
		{name: "expired beyond skew", expires: time.Now().Add(-time.Minute), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			payload := goodPayload(time.Now())
			payload.Expires = tt.expires.Unix()

			v := NewGoogleVerifier(testClientID)
			v.validate = stubValidator(payload, nil)

			_, err := v.Verify(context.Background(), "raw-token")
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrTokenExpired)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestGoogleVerifier_MissingEmail(t *testing.T) {
	payload := goodPayload(time.Now())
	delete(payload.Claims, "email")

	v := NewGoogleVerifier(testClientID)
	v.validate = stubValidator(payload, nil)

	_, err := v.Verify(context.Background(), "raw-token")
	assert.Error(t, err)
}

func TestGoogleVerifier_NameFallsBackToEmail(t *testing.T) {
	payload := goodPayload(time.Now())
	delete(payload.Claims, "name")

	v := NewGoogleVerifier(testClientID)
	v.validate = stubValidator(payload, nil)

	identity, err := v.Verify(context.Background(), "raw-token")
	require.NoError(t, err)
	assert.Equal(t, "a@x.com", identity.Name)
}
