package http

import (
	"net/http"

	"github.com/aussiebroadwan/openid/pkg/authsdk"
	"github.com/aussiebroadwan/openid/pkg/httpx"
	"github.com/aussiebroadwan/openid/pkg/jwtx"
)

// JWKSHandler exposes the public half of the signing key.
//
//	@Summary		Get JWKS
//	@Description	Returns the JSON Web Key Set used to verify ID and access tokens.
//	@Tags			well-known
//	@Produce		json
//	@Success		200	{object}	authsdk.JWKSResponse	"The JSON Web Key Set"
//	@Router			/.well-known/jwks.json [get]
func JWKSHandler(keys *jwtx.KeySet) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		httpx.WriteJSON(w, http.StatusOK, authsdk.JWKSResponse(keys.PublicJWKS()))
	}
}
