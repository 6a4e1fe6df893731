package jwtx

import (
	"crypto/rsa"

	"github.com/golang-jwt/jwt/v5"
)

// Signer signs JWTs with a single private key and publishes the matching
// public key as a JWK.
type Signer interface {
	Alg() string
	KID() string
	Sign(jwt.Claims) (string, error)
	PublicJWK() JWK
	PublicKey() *rsa.PublicKey
	Validate() error
}

// NewSignerRS256 creates an RS256 signer from PEM bytes (PKCS1 or PKCS8).
func NewSignerRS256(kid string, pemKey []byte) (Signer, error) {
	return newRS256Signer(kid, pemKey)
}
