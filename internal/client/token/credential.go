// Package token owns the client credential: its derivation from the raw
// bearer token, its persistence in a session-shared durable store, and the
// manager every other component queries for auth state.
package token

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Credential is the bearer token plus derived lifecycle fields. The token
// bytes are never mutated after issue; validity is re-derived on demand.
type Credential struct {
	Token     string    `json:"token"`
	IssuedAt  time.Time `json:"issued_at"`
	ExpiresAt time.Time `json:"expires_at,omitzero"`
}

// NewCredential derives issue and expiry metadata from the raw bearer token.
// Tokens that parse as JWTs contribute their iat/exp claims; anything else
// stays opaque with no known expiry. The signature is not verified: the
// client never holds the signing key, it only schedules around expiry.
func NewCredential(raw string, now time.Time) Credential {
	c := Credential{Token: raw, IssuedAt: now}

	claims := &jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(raw, claims); err == nil {
		if claims.IssuedAt != nil {
			c.IssuedAt = claims.IssuedAt.Time
		}
		if claims.ExpiresAt != nil {
			c.ExpiresAt = claims.ExpiresAt.Time
		}
	}
	return c
}

// Valid reports whether the credential can still be presented at now.
// A credential without a known expiry stays valid until cleared.
func (c Credential) Valid(now time.Time) bool {
	if c.Token == "" {
		return false
	}
	if c.ExpiresAt.IsZero() {
		return true
	}
	return now.Before(c.ExpiresAt)
}

// ExpiresIn returns the time left until expiry, or 0 when no expiry is
// known. Negative values mean the credential already expired.
func (c Credential) ExpiresIn(now time.Time) time.Duration {
	if c.ExpiresAt.IsZero() {
		return 0
	}
	return c.ExpiresAt.Sub(now)
}

// Info is the validity snapshot the session layer polls.
type Info struct {
	IsValid   bool
	ExpiresIn time.Duration
}
