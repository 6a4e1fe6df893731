package jwtx

import (
	"errors"
	"time"
)

// Verifier validates a JWT and gives you back the claims if it's legit.
type Verifier interface {
	Verify(token string) (Claims, error)
}

var (
	ErrMalformed   = errors.New("jwtx: malformed token")
	ErrUnknownKID  = errors.New("jwtx: unknown kid")
	ErrInvalidSig  = errors.New("jwtx: invalid signature")
	ErrIssuer      = errors.New("jwtx: issuer mismatch")
	ErrAudience    = errors.New("jwtx: audience mismatch")
	ErrExpired     = errors.New("jwtx: token expired")
	ErrNotYetValid = errors.New("jwtx: token not yet valid")
	ErrTokenUse    = errors.New("jwtx: unexpected token_use")
)

// DefaultLeeway is the clock skew tolerated on exp/nbf.
const DefaultLeeway = 30 * time.Second

// RS256Adapter wraps the concrete verifier in the common interface.
type RS256Adapter struct{ *RS256Verifier }

func (a RS256Adapter) Verify(token string) (Claims, error) {
	c, err := a.RS256Verifier.Verify(token)
	if err != nil {
		return Claims{}, err
	}
	return *c, nil
}

// NewCommonRS256 returns a Verifier using the RS256 implementation wrapped
// in the common interface.
func NewCommonRS256(keys *KeySet, issuer string, audience []string) Verifier {
	return RS256Adapter{NewVerifierRS256(keys, issuer, audience)}
}

// UseVerifier only accepts tokens whose token_use claim matches Use. The
// same key signs sessions, consent tickets and access tokens, so every
// consumer pins the kind it expects.
type UseVerifier struct {
	Verifier
	Use string
}

func (v UseVerifier) Verify(token string) (Claims, error) {
	c, err := v.Verifier.Verify(token)
	if err != nil {
		return Claims{}, err
	}
	if c.TokenUse != v.Use {
		return Claims{}, ErrTokenUse
	}
	return c, nil
}

// ForUse restricts a verifier to a single token_use.
func ForUse(v Verifier, use string) Verifier {
	return UseVerifier{Verifier: v, Use: use}
}
