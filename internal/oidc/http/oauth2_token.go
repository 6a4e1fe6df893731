package http

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/aussiebroadwan/openid/internal/oidc/service"
	"github.com/aussiebroadwan/openid/pkg/authsdk"
	"github.com/aussiebroadwan/openid/pkg/httpx"
	"github.com/aussiebroadwan/openid/pkg/slogx"
)

// TokenHandler serves POST /token.
// Accepts application/x-www-form-urlencoded per RFC 6749.
type TokenHandler struct {
	TokenService *service.TokenService
}

// ServeHTTP godoc
//
//	@Summary		OAuth2 token endpoint
//	@Description	Exchanges an authorization code for an access token and, when openid was granted, an ID token.
//	@Description	Clients authenticate with client_secret_post or HTTP Basic; public clients send only client_id.
//	@Tags			OAuth2
//	@Accept			x-www-form-urlencoded
//	@Produce		json
//	@Param			grant_type		formData	string					true	"Grant type"	Enums(authorization_code)
//	@Param			code			formData	string					true	"Authorization code"
//	@Param			redirect_uri	formData	string					true	"Redirect URI the code was issued for"
//	@Param			client_id		formData	string					true	"Client identifier"
//	@Param			client_secret	formData	string					false	"Client secret"
//	@Param			code_verifier	formData	string					false	"PKCE code_verifier"
//	@Success		200				{object}	authsdk.TokenResponse	"access_token, id_token, token_type, expires_in, scope"
//	@Failure		400				{object}	authsdk.OAuth2Error		"error, error_description"
//	@Failure		401				{object}	authsdk.OAuth2Error		"error, error_description"
//	@Failure		500				{object}	authsdk.OAuth2Error		"error, error_description"
//	@Header			200				{string}	Cache-Control			"no-store"
//	@Header			200				{string}	Pragma					"no-cache"
//	@Router			/token [post]
func (h *TokenHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if ct := r.Header.Get("Content-Type"); ct != "" &&
		!strings.HasPrefix(ct, "application/x-www-form-urlencoded") {
		authsdk.ErrInvalidContentType.WriteError(w)
		return
	}
	if err := r.ParseForm(); err != nil {
		authsdk.ErrInvalidFormBody.WriteError(w)
		return
	}
	form := r.PostForm

	clientID := strings.TrimSpace(form.Get("client_id"))
	clientSecret := form.Get("client_secret")
	if id, secret, ok := basicCredentials(r); ok {
		if clientID != "" && clientID != id {
			authsdk.ErrInvalidRequest.WithDescription("client_id does not match the Authorization header").WriteError(w)
			return
		}
		clientID, clientSecret = id, secret
	}

	r = r.WithContext(slogx.With(r.Context(), "client_id", clientID))
	set, err := h.TokenService.Exchange(r.Context(), service.TokenRequest{
		GrantType:    form.Get("grant_type"),
		Code:         form.Get("code"),
		RedirectURI:  form.Get("redirect_uri"),
		ClientID:     clientID,
		ClientSecret: clientSecret,
		CodeVerifier: form.Get("code_verifier"),
	})
	if err != nil {
		writeServiceError(w, r, err, "token request failed")
		return
	}

	httpx.WriteJSON(w, http.StatusOK, authsdk.TokenResponse{
		AccessToken: set.AccessToken,
		IDToken:     set.IDToken,
		TokenType:   set.TokenType,
		ExpiresIn:   int(set.ExpiresIn.Seconds()),
		Scope:       set.Scope,
	})
}

// basicCredentials reads client_secret_basic credentials. Both parts are
// form-urlencoded before being joined (RFC 6749 section 2.3.1).
func basicCredentials(r *http.Request) (string, string, bool) {
	user, pass, ok := r.BasicAuth()
	if !ok {
		return "", "", false
	}
	id, err := url.QueryUnescape(user)
	if err != nil {
		return "", "", false
	}
	secret, err := url.QueryUnescape(pass)
	if err != nil {
		return "", "", false
	}
	return id, secret, true
}
