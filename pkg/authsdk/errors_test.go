package authsdk

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestOAuth2ErrorWriteError(t *testing.T) {
	rec := httptest.NewRecorder()
	ErrInvalidClient.WriteError(rec)

	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.Equal(t, "no-store", rec.Header().Get("Cache-Control"))
	require.Equal(t, "no-cache", rec.Header().Get("Pragma"))
	require.Equal(t, `Basic realm="oidc"`, rec.Header().Get("WWW-Authenticate"))
	require.JSONEq(t, `{"error":"invalid_client","error_description":"client authentication failed"}`, rec.Body.String())
}

func TestOAuth2ErrorMatchesByCode(t *testing.T) {
	custom := ErrInvalidGrant.WithDescription("redirect_uri does not match")
	require.True(t, errors.Is(custom, ErrInvalidGrant))
	require.False(t, errors.Is(custom, ErrInvalidRequest))
	require.Equal(t, "the authorization code is invalid, expired or already used", ErrInvalidGrant.Description, "copy must not mutate the shared value")
}

func TestRedirectQuery(t *testing.T) {
	q := ErrAccessDenied.WithDescription("user declined").RedirectQuery("xyz")
	require.Equal(t, "access_denied", q.Get("error"))
	require.Equal(t, "user declined", q.Get("error_description"))
	require.Equal(t, "xyz", q.Get("state"))

	require.False(t, ErrAccessDenied.RedirectQuery("").Has("state"))
}

func TestParseErrorResponseFallback(t *testing.T) {
	err := parseErrorResponse(&http.Response{StatusCode: http.StatusBadGateway}, []byte("<html>"))
	var oe *OAuth2Error
	require.ErrorAs(t, err, &oe)
	require.Equal(t, ErrorCodeServerError, oe.Code)
	require.Equal(t, http.StatusBadGateway, oe.StatusCode)

	require.NoError(t, parseErrorResponse(&http.Response{StatusCode: http.StatusOK}, nil))
}
