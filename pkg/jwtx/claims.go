package jwtx

import (
	"crypto/rand"
	"encoding/base64"
	"slices"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Default token TTLs. Services override these from configuration.
const (
	DefaultAccessTokenTTL = time.Hour
	DefaultIDTokenTTL     = time.Hour
)

// token_use values. One RSA key signs everything, so the claim is what
// stops a session cookie from being replayed as a bearer token.
const (
	UseAccess  = "access"
	UseSession = "session"
	UseConsent = "consent"
)

// Claims are the structured claims for tokens this server both mints and
// consumes (access tokens, session cookies, consent tickets). ID tokens are
// built as MapClaims instead since their shape depends on scope.
type Claims struct {
	jwt.RegisteredClaims

	// TokenUse distinguishes access, session and consent tokens.
	TokenUse string `json:"token_use,omitempty"`

	// Scope is the space-delimited granted scope.
	Scope string `json:"scope,omitempty"`

	// ClientID is the OAuth2 client the token was issued to.
	ClientID string `json:"client_id,omitempty"`
}

// NewClaims builds minimally-correct claims for the given token_use.
func NewClaims(
	use string,
	issuer, subject string,
	audience []string,
	ttl time.Duration,
	now time.Time,
) Claims {
	return Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   subject,
			Audience:  jwt.ClaimStrings(audience),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			ID:        NewJTI(),
		},
		TokenUse: use,
	}
}

// NewAccessClaims builds access-token claims bound to a client and scope.
func NewAccessClaims(
	issuer, subject, clientID, scope string,
	ttl time.Duration,
	now time.Time,
) Claims {
	c := NewClaims(UseAccess, issuer, subject, []string{clientID}, ttl, now)
	c.ClientID = clientID
	c.Scope = scope
	return c
}

// NewIDTokenClaims builds the registered part of an OpenID Connect ID token.
// extra is merged last but can never override iss, sub, aud, iat or exp.
func NewIDTokenClaims(
	issuer, subject, clientID string,
	ttl time.Duration,
	now time.Time,
	extra map[string]any,
) jwt.MapClaims {
	mc := jwt.MapClaims{}
	for k, v := range extra {
		mc[k] = v
	}
	mc["iss"] = issuer
	mc["sub"] = subject
	mc["aud"] = clientID
	mc["iat"] = now.Unix()
	mc["exp"] = now.Add(ttl).Unix()
	return mc
}

// NewJTI returns a URL-safe random identifier for the "jti" claim.
func NewJTI() string {
	var b [20]byte
	_, _ = rand.Read(b[:])
	return base64.RawURLEncoding.EncodeToString(b[:])
}

// ValidateIssuer checks if the issuer matches expected value.
func (c *Claims) ValidateIssuer(expected string) error {
	if expected == "" {
		return nil // nothing to enforce
	}
	if c.Issuer != expected {
		return ErrIssuer
	}
	return nil
}

// ValidateAudience checks if at least one expected audience is present.
func (c *Claims) ValidateAudience(expected []string) error {
	if len(expected) == 0 {
		return nil // nothing to enforce
	}
	for _, want := range expected {
		if slices.Contains(c.Audience, want) {
			return nil
		}
	}
	return ErrAudience
}

// ValidateExpiry ensures the token hasn't expired (exp) and isn't before nbf.
func (c *Claims) ValidateExpiry() error {
	return c.ValidateExpiryWithLeeway(0)
}

// ValidateExpiryWithLeeway adds a small grace period for clock skew.
func (c *Claims) ValidateExpiryWithLeeway(leeway time.Duration) error {
	now := time.Now().UTC()

	if c.ExpiresAt != nil && now.After(c.ExpiresAt.Add(leeway)) {
		return ErrExpired
	}
	if c.NotBefore != nil && now.Before(c.NotBefore.Add(-leeway)) {
		return ErrNotYetValid
	}
	return nil
}
