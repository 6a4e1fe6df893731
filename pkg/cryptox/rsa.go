package cryptox

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"fmt"
)

// MinRSABits is the smallest modulus we will generate or accept.
const MinRSABits = 2048

// GenerateRSAKey generates a new RSA private key and returns it PEM encoded
// as PKCS1 ("RSA PRIVATE KEY").
func GenerateRSAKey(bits int) ([]byte, error) {
	key, err := generateRSA(bits)
	if err != nil {
		return nil, err
	}
	return pem.EncodeToMemory(&pem.Block{
		Type:  "RSA PRIVATE KEY",
		Bytes: x509.MarshalPKCS1PrivateKey(key),
	}), nil
}

// GenerateRSAKeyPair generates a keypair ready to be written to disk: the
// private key as PKCS1 and the public key as PKIX ("PUBLIC KEY"), which is
// the layout the server expects in its key files.
func GenerateRSAKeyPair(bits int) (privPEM, pubPEM []byte, err error) {
	key, err := generateRSA(bits)
	if err != nil {
		return nil, nil, err
	}
	pubPEM, err = EncodeRSAPublicKey(&key.PublicKey)
	if err != nil {
		return nil, nil, err
	}
	privPEM = pem.EncodeToMemory(&pem.Block{
		Type:  "RSA PRIVATE KEY",
		Bytes: x509.MarshalPKCS1PrivateKey(key),
	})
	return privPEM, pubPEM, nil
}

// EncodeRSAPublicKey marshals a public key to a PKIX PEM block.
func EncodeRSAPublicKey(pub *rsa.PublicKey) ([]byte, error) {
	der, err := x509.MarshalPKIXPublicKey(pub)
	if err != nil {
		return nil, fmt.Errorf("cryptox: marshal public key: %w", err)
	}
	return pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: der}), nil
}

func generateRSA(bits int) (*rsa.PrivateKey, error) {
	if bits < MinRSABits {
		return nil, fmt.Errorf("cryptox: RSA key size must be at least %d bits", MinRSABits)
	}
	key, err := rsa.GenerateKey(rand.Reader, bits)
	if err != nil {
		return nil, fmt.Errorf("cryptox: failed to generate RSA key: %w", err)
	}
	return key, nil
}
