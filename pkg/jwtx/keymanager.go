package jwtx

import (
	"errors"
	"fmt"

	"github.com/aussiebroadwan/openid/pkg/cryptox"
)

// AlgorithmRS256 is the only signing algorithm the issuer advertises.
const AlgorithmRS256 = "RS256"

// KeyManager bundles the process-wide signing key with the verifier and
// KeySet derived from it. It is built once at startup and never mutated.
type KeyManager struct {
	Signer   Signer
	Verifier *RS256Verifier
	KeySet   *KeySet
	issuer   string
}

// KeyManagerOptions configures a KeyManager.
type KeyManagerOptions struct {
	// Issuer is the iss claim validated on tokens this server consumes.
	Issuer string

	// PrivateKeyPEM is the RSA private key (PKCS1 or PKCS8).
	PrivateKeyPEM []byte

	// PublicKeyPEM is optional. When set it must match the private key;
	// operators supply both and a mismatched pair is a configuration bug.
	PublicKeyPEM []byte

	// KID overrides the RFC 7638 thumbprint used as the key id.
	KID string
}

var ErrKeyMismatch = errors.New("jwtx: public key does not match private key")

// NewKeyManager loads the keypair and wires signer, KeySet and verifier.
// Any failure here is fatal for the caller: there is no degraded mode.
func NewKeyManager(opts KeyManagerOptions) (*KeyManager, error) {
	if opts.Issuer == "" {
		return nil, errors.New("jwtx: Issuer is required")
	}
	if len(opts.PrivateKeyPEM) == 0 {
		return nil, errors.New("jwtx: private key is required")
	}

	signer, err := newRS256Signer(opts.KID, opts.PrivateKeyPEM)
	if err != nil {
		return nil, err
	}
	if err := signer.Validate(); err != nil {
		return nil, fmt.Errorf("jwtx: validate private key: %w", err)
	}

	if len(opts.PublicKeyPEM) > 0 {
		pub, err := ParseRSAPublicKey(opts.PublicKeyPEM)
		if err != nil {
			return nil, err
		}
		if !pub.Equal(signer.PublicKey()) {
			return nil, ErrKeyMismatch
		}
	}

	keyset := NewKeySet()
	if err := keyset.AddSigner(signer); err != nil {
		return nil, fmt.Errorf("jwtx: add signer to keyset: %w", err)
	}

	return &KeyManager{
		Signer:   signer,
		Verifier: NewVerifierRS256(keyset, opts.Issuer, nil),
		KeySet:   keyset,
		issuer:   opts.Issuer,
	}, nil
}

// NewEphemeralKeyManager generates a fresh in-memory RSA key. Tokens die
// with the process, which is what tests and local experiments want.
func NewEphemeralKeyManager(issuer string, bits int) (*KeyManager, error) {
	if bits == 0 {
		bits = 2048
	}
	pemBytes, err := cryptox.GenerateRSAKey(bits)
	if err != nil {
		return nil, fmt.Errorf("jwtx: generate RSA key: %w", err)
	}
	return NewKeyManager(KeyManagerOptions{Issuer: issuer, PrivateKeyPEM: pemBytes})
}

// Issuer returns the configured issuer.
func (km *KeyManager) Issuer() string { return km.issuer }

// IsReady returns true if the KeyManager has valid keys loaded.
func (km *KeyManager) IsReady() bool {
	return km != nil && km.Signer != nil && km.KeySet.IsReady()
}

// VerifierFor returns a verifier pinned to one token_use.
func (km *KeyManager) VerifierFor(use string) Verifier {
	return ForUse(RS256Adapter{km.Verifier}, use)
}
