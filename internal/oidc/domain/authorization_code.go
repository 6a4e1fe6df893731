package domain

import "time"

// AuthorizationCode is the persisted half of an authorization code. The
// code itself is handed to the client and only its fingerprint is stored.
type AuthorizationCode struct {
	CodeHash            string
	ClientID            string
	Subject             string
	RedirectURI         string
	Scope               string
	IDToken             string // signed at /authorize, empty when openid was not requested
	Nonce               string
	CodeChallenge       string
	CodeChallengeMethod string
	ExpiresAt           time.Time
	CreatedAt           time.Time
}

// Expired reports whether the code is past its expiry at now.
func (c AuthorizationCode) Expired(now time.Time) bool {
	return !now.Before(c.ExpiresAt)
}
