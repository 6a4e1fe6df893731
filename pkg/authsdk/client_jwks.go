package authsdk

import (
	"context"
	"net/http"

	"github.com/aussiebroadwan/openid/pkg/jwtx"
)

// GetJWKS retrieves the provider's JSON Web Key Set.
func (c *SDKClient) GetJWKS(ctx context.Context) (*JWKSResponse, error) {
	resp, err := c.doRequest(ctx, http.MethodGet, c.jwksURL(), nil, nil)
	if err != nil {
		return nil, err
	}

	var jwks JWKSResponse
	if err := decodeJSON(resp, &jwks, http.StatusOK); err != nil {
		return nil, err
	}
	return &jwks, nil
}

// NewIDTokenVerifier fetches the JWKS and returns a verifier bound to the
// issuer. Use VerifyMap on ID tokens and check aud against your client id.
func (c *SDKClient) NewIDTokenVerifier(ctx context.Context, issuer string) (*jwtx.RS256Verifier, error) {
	jwks, err := c.GetJWKS(ctx)
	if err != nil {
		return nil, err
	}
	ks := jwtx.NewKeySet()
	if err := ks.ResetFromJWKS(jwtx.JWKS(*jwks)); err != nil {
		return nil, err
	}
	return jwtx.NewVerifierRS256(ks, issuer, nil), nil
}
