package service

import (
	"strings"

	"github.com/aussiebroadwan/openid/pkg/authsdk"
	"github.com/aussiebroadwan/openid/pkg/jwtx"
)

// Endpoint paths relative to the issuer.
const (
	PathAuthorize = "/authorize"
	PathToken     = "/token"
	PathUserInfo  = "/userinfo"
	PathJWKS      = "/.well-known/jwks.json"
	PathDiscovery = "/.well-known/openid-configuration"
)

// Discovery builds the provider metadata. It depends only on static
// configuration so callers may compute it once.
func Discovery(issuer string, claims *ClaimsProvider) authsdk.DiscoveryDocument {
	base := strings.TrimRight(issuer, "/")
	return authsdk.DiscoveryDocument{
		Issuer:                            issuer,
		AuthorizationEndpoint:             base + PathAuthorize,
		TokenEndpoint:                     base + PathToken,
		UserInfoEndpoint:                  base + PathUserInfo,
		JWKSURI:                           base + PathJWKS,
		ScopesSupported:                   claims.SupportedScopes(),
		ResponseTypesSupported:            []string{"code"},
		GrantTypesSupported:               []string{grantTypeAuthorizationCode},
		SubjectTypesSupported:             []string{"public"},
		IDTokenSigningAlgValuesSupported:  []string{jwtx.AlgorithmRS256},
		TokenEndpointAuthMethodsSupported: []string{"client_secret_post", "client_secret_basic", "none"},
		CodeChallengeMethodsSupported:     []string{"S256", "plain"},
		ClaimsSupported:                   claims.SupportedClaims(),
	}
}
