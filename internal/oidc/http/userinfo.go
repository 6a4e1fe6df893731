package http

import (
	"net/http"

	"github.com/aussiebroadwan/openid/internal/oidc/service"
	"github.com/aussiebroadwan/openid/pkg/authsdk"
	"github.com/aussiebroadwan/openid/pkg/httpx"
	"github.com/aussiebroadwan/openid/pkg/slogx"
)

type UserInfoHandler struct {
	UserInfoService *service.UserInfoService
}

// ServeHTTP handles the OpenID Connect UserInfo endpoint.
//
//	@Summary		Get user claims
//	@Description	Returns the claims the access token's scope unlocks. Requires the openid scope.
//	@Tags			OAuth2
//	@Security		BearerAuth
//	@Produce		json
//	@Success		200	{object}	map[string]interface{}	"sub plus scope dependent claims"
//	@Failure		401	{object}	authsdk.OAuth2Error		"Invalid or missing access token"
//	@Failure		403	{object}	authsdk.OAuth2Error		"Token lacks the openid scope"
//	@Failure		500	{object}	authsdk.OAuth2Error		"Internal server error"
//	@Router			/userinfo [get]
//	@Router			/userinfo [post]
func (h *UserInfoHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	claims, ok := httpx.ClaimsFromContext(ctx)
	if !ok || claims.Subject == "" {
		authsdk.ErrInvalidToken.WriteError(w)
		return
	}

	info, err := h.UserInfoService.UserInfo(ctx, claims.Subject, claims.Scope)
	if err != nil {
		slogx.FromContext(ctx).Error("userinfo failed", "subject", claims.Subject, slogx.Err(err))
		authsdk.ErrServerError.WriteError(w)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, info)
}
