package http

import (
	"errors"
	"net/http"
	"strings"

	"github.com/aussiebroadwan/openid/internal/oidc/service"
	"github.com/aussiebroadwan/openid/pkg/authsdk"
	"github.com/aussiebroadwan/openid/pkg/slogx"
)

var errorMapping = []struct {
	sentinel error
	oauth    *authsdk.OAuth2Error
}{
	{service.ErrInvalidRequest, authsdk.ErrInvalidRequest},
	{service.ErrInvalidClient, authsdk.ErrInvalidClient},
	{service.ErrInvalidGrant, authsdk.ErrInvalidGrant},
	{service.ErrUnauthorizedClient, authsdk.ErrUnauthorizedClient},
	{service.ErrUnsupportedGrantType, authsdk.ErrUnsupportedGrantType},
	{service.ErrUnsupportedResponseType, authsdk.ErrUnsupportedResponseType},
	{service.ErrInvalidScope, authsdk.ErrInvalidScope},
	{service.ErrAccessDenied, authsdk.ErrAccessDenied},
	{service.ErrRedirectURIMismatch, authsdk.ErrInvalidRequest.WithDescription(
		"the redirect_uri is missing or does not match a registered URI for the client")},
}

// toOAuth2Error maps a service error onto its wire form. The second return
// is false for errors with no OAuth2 meaning; callers log those and answer
// server_error.
func toOAuth2Error(err error) (*authsdk.OAuth2Error, bool) {
	for _, m := range errorMapping {
		if !errors.Is(err, m.sentinel) {
			continue
		}
		// "invalid_request: code is required" -> "code is required"
		if detail, ok := strings.CutPrefix(err.Error(), m.sentinel.Error()+": "); ok && detail != "" {
			return m.oauth.WithDescription(detail), true
		}
		return m.oauth, true
	}
	return nil, false
}

// writeServiceError writes err as a JSON OAuth2 error, collapsing anything
// unrecognised to server_error after logging it.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error, msg string) {
	if oerr, ok := toOAuth2Error(err); ok {
		slogx.FromContext(r.Context()).Debug(msg, slogx.Err(err))
		oerr.WriteError(w)
		return
	}
	slogx.FromContext(r.Context()).Error(msg, slogx.Err(err))
	authsdk.ErrServerError.WriteError(w)
}
