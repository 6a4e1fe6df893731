package httpx

import (
	"mime"
	"net/http"
	"strings"

	"github.com/aussiebroadwan/openid/pkg/jwtx"
	"github.com/aussiebroadwan/openid/pkg/slogx"
)

// AuthnMiddleware requires a valid bearer access token. The token is read
// from the Authorization header or, for form-encoded POSTs, from the
// access_token body parameter (RFC 6750 section 2.2).
func AuthnMiddleware(v jwtx.Verifier) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			log := slogx.FromContext(ctx)

			raw, ok := bearerToken(r)
			if !ok {
				writeBearerError(w, "", "")
				return
			}

			claims, err := v.Verify(raw)
			if err != nil {
				log.Warn("bearer token rejected", slogx.Err(err))
				writeBearerError(w, "invalid_token", "token verification failed")
				return
			}

			next.ServeHTTP(w, r.WithContext(WithClaims(ctx, claims)))
		})
	}
}

func bearerToken(r *http.Request) (string, bool) {
	if authz := r.Header.Get("Authorization"); authz != "" {
		scheme, token, found := strings.Cut(authz, " ")
		if !found || !strings.EqualFold(scheme, "Bearer") {
			return "", false
		}
		token = strings.TrimSpace(token)
		return token, token != ""
	}

	if r.Method != http.MethodPost {
		return "", false
	}
	mt, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if err != nil || mt != "application/x-www-form-urlencoded" {
		return "", false
	}
	if err := r.ParseForm(); err != nil {
		return "", false
	}
	token := r.PostForm.Get("access_token")
	return token, token != ""
}

// writeBearerError writes an RFC 6750 challenge. A request with no
// credentials gets a bare challenge without an error code.
func writeBearerError(w http.ResponseWriter, code, desc string) {
	challenge := `Bearer realm="oidc"`
	if code != "" {
		challenge += `, error="` + code + `", error_description="` + desc + `"`
	}
	w.Header().Set("WWW-Authenticate", challenge)
	NoCache(w)
	w.WriteHeader(http.StatusUnauthorized)
}
