package domain

import "time"

// TokenSet is what the token endpoint hands back for a redeemed code.
type TokenSet struct {
	AccessToken string
	IDToken     string
	TokenType   string
	ExpiresIn   time.Duration
	Scope       string
}
