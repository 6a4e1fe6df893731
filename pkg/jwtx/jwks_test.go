package jwtx

import (
	"crypto/rand"
	"crypto/rsa"
	"encoding/base64"
	"encoding/json"
	"math/big"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewRSAJWK_Encoding(t *testing.T) {
	priv, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	jwk := NewRSAJWK("kid-1", "sig", "RS256", &priv.PublicKey)
	require.Equal(t, "RSA", jwk.Kty)
	require.Equal(t, "AQAB", jwk.E, "65537 is AQAB in base64url")
	require.NotContains(t, jwk.N, "=")
	require.NotContains(t, jwk.N, "+")
	require.NotContains(t, jwk.N, "/")

	nb, err := base64.RawURLEncoding.DecodeString(jwk.N)
	require.NoError(t, err)
	require.Zero(t, new(big.Int).SetBytes(nb).Cmp(priv.N))

	raw, err := json.Marshal(JWKS{Keys: []JWK{jwk}})
	require.NoError(t, err)
	require.Contains(t, string(raw), `"kty":"RSA"`)
	require.Contains(t, string(raw), `"use":"sig"`)
	require.Contains(t, string(raw), `"alg":"RS256"`)
}

func TestThumbprint_RFC7638Example(t *testing.T) {
	// Key from RFC 7638 section 3.1.
	n := "0vx7agoebGcQSuuPiLJXZptN9nndrQmbXEps2aiAFbWhM78LhWx4cbbfAAtVT86zwu1RK7aPFFxuhDR1L6tSoc_BJECPebWKRXjBZCiFV4n3oknjhMstn64tZ_2W-5JsGY4Hc5n9yBXArwl93lqt7_RN5w6Cf0h4QyQ5v-65YGjQR0_FDW2QvzqY368QQMicAtaSqzs8KJZgnYb9c7d0zgdAZHzu6qMQvRL5hajrn1n91CbOpbISD08qNLyrdkt-bFTWhAI4vMQFh6WeZu0fM4lFd2NcRwr3XPksINHaQ-G_xBniIqbw0Ls1jF44-csFCur-kEgU8awapJzKnqDKgw"
	pub, err := JWK{Kty: "RSA", N: n, E: "AQAB"}.RSAPublicKey()
	require.NoError(t, err)

	require.Equal(t, "NzbLsXh8uDCcd-6MNwXF4W_7noWXFZAfHkxZsRGC9Xs", Thumbprint(pub))
}

func TestJWK_PEM_RoundTrip(t *testing.T) {
	priv, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	pemStr, err := NewRSAJWK("kid", "sig", "RS256", &priv.PublicKey).PEM()
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(pemStr, "-----BEGIN PUBLIC KEY-----"))

	pub, err := ParseRSAPublicKey([]byte(pemStr))
	require.NoError(t, err)
	require.True(t, pub.Equal(&priv.PublicKey))
}

func TestJWK_RejectsUnsupported(t *testing.T) {
	_, err := JWK{Kty: "EC"}.RSAPublicKey()
	require.Error(t, err)

	_, err = JWK{Kty: "RSA", N: "", E: "AQAB"}.RSAPublicKey()
	require.Error(t, err)
}

func TestKeySet_ResetFromJWKS(t *testing.T) {
	priv, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	ks := NewKeySet()
	require.False(t, ks.IsReady())

	jwk := NewRSAJWK("kid-a", "sig", "RS256", &priv.PublicKey)
	require.NoError(t, ks.ResetFromJWKS(JWKS{Keys: []JWK{jwk}}))
	require.True(t, ks.IsReady())

	got, err := ks.Get("kid-a")
	require.NoError(t, err)
	require.True(t, got.Equal(&priv.PublicKey))

	_, err = ks.Get("kid-b")
	require.ErrorIs(t, err, ErrNoKey)

	// Adding the same kid twice keeps a single entry in the published set.
	require.NoError(t, ks.AddJWK(jwk))
	require.Len(t, ks.PublicJWKS().Keys, 1)
}
