package authsdk

import (
	"github.com/aussiebroadwan/openid/pkg/jwtx"
)

// TokenResponse is the token endpoint response for the authorization_code
// grant.
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	IDToken     string `json:"id_token,omitempty"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
	Scope       string `json:"scope,omitempty"`
}

// DiscoveryDocument is the subset of OpenID Provider Metadata this server
// publishes at /.well-known/openid-configuration.
type DiscoveryDocument struct {
	Issuer                            string   `json:"issuer"`
	AuthorizationEndpoint             string   `json:"authorization_endpoint"`
	TokenEndpoint                     string   `json:"token_endpoint"`
	UserInfoEndpoint                  string   `json:"userinfo_endpoint"`
	JWKSURI                           string   `json:"jwks_uri"`
	ScopesSupported                   []string `json:"scopes_supported"`
	ResponseTypesSupported            []string `json:"response_types_supported"`
	GrantTypesSupported               []string `json:"grant_types_supported,omitempty"`
	SubjectTypesSupported             []string `json:"subject_types_supported,omitempty"`
	IDTokenSigningAlgValuesSupported  []string `json:"id_token_signing_alg_values_supported"`
	TokenEndpointAuthMethodsSupported []string `json:"token_endpoint_auth_methods_supported,omitempty"`
	CodeChallengeMethodsSupported     []string `json:"code_challenge_methods_supported,omitempty"`
	ClaimsSupported                   []string `json:"claims_supported,omitempty"`
}

// UserInfo is the decoded userinfo response. Claims vary with scope, so
// the SDK keeps them as a map.
type UserInfo map[string]any

// Subject returns the sub claim.
func (u UserInfo) Subject() string {
	s, _ := u["sub"].(string)
	return s
}

// HealthResponse is returned by /livez and /readyz.
type HealthResponse struct {
	Status  string        `json:"status"`
	Uptime  string        `json:"uptime,omitempty"`
	Version string        `json:"version,omitempty"`
	Checks  *HealthChecks `json:"checks,omitempty"`
}

// HealthChecks reports readiness of each dependency ("ok" or a reason).
type HealthChecks struct {
	Database string `json:"database"`
	Signer   string `json:"signer"`
	Clients  string `json:"clients"`
}

// JWKSResponse is the published key set.
type JWKSResponse jwtx.JWKS
