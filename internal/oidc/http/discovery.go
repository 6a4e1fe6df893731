package http

import (
	"net/http"
	"time"

	"github.com/aussiebroadwan/openid/pkg/authsdk"
	"github.com/aussiebroadwan/openid/pkg/httpx"
)

const discoveryMaxAge = time.Hour

// DiscoveryHandler serves the OpenID Provider Metadata. The document is
// static for the life of the process.
//
//	@Summary		OpenID Provider configuration
//	@Description	Discovery document for relying parties. Cacheable for an hour.
//	@Tags			well-known
//	@Produce		json
//	@Success		200	{object}	authsdk.DiscoveryDocument
//	@Router			/.well-known/openid-configuration [get]
func DiscoveryHandler(doc authsdk.DiscoveryDocument) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		httpx.WritePublicJSON(w, http.StatusOK, doc, discoveryMaxAge)
	}
}
