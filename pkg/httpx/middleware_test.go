package httpx_test

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/aussiebroadwan/openid/pkg/httpx"
	"github.com/aussiebroadwan/openid/pkg/jwtx"
	"github.com/stretchr/testify/require"
)

const issuer = "https://id.example.com"

func newKeyManager(t *testing.T) *jwtx.KeyManager {
	t.Helper()
	km, err := jwtx.NewEphemeralKeyManager(issuer, 2048)
	require.NoError(t, err)
	return km
}

func TestAuthnMiddleware(t *testing.T) {
	km := newKeyManager(t)
	now := time.Now()

	access, err := km.Signer.Sign(jwtx.NewAccessClaims(issuer, "alice", "client-abc123", "openid profile", time.Hour, now))
	require.NoError(t, err)
	session, err := km.Signer.Sign(jwtx.NewClaims(jwtx.UseSession, issuer, "alice", nil, time.Hour, now))
	require.NoError(t, err)

	var gotSubject string
	h := httpx.Chain(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotSubject = httpx.SubjectFromContext(r.Context())
			w.WriteHeader(http.StatusOK)
		}),
		httpx.AuthnMiddleware(km.VerifierFor(jwtx.UseAccess)),
		httpx.RequireAnyScope("openid"),
	)

	t.Run("header token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/userinfo", nil)
		req.Header.Set("Authorization", "Bearer "+access)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)
		require.Equal(t, "alice", gotSubject)
	})

	t.Run("form body token", func(t *testing.T) {
		body := url.Values{"access_token": {access}}.Encode()
		req := httptest.NewRequest(http.MethodPost, "/userinfo", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("missing token", func(t *testing.T) {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/userinfo", nil))
		require.Equal(t, http.StatusUnauthorized, rec.Code)
		require.Equal(t, `Bearer realm="oidc"`, rec.Header().Get("WWW-Authenticate"))
	})

	t.Run("session cookie token is not an access token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/userinfo", nil)
		req.Header.Set("Authorization", "Bearer "+session)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		require.Equal(t, http.StatusUnauthorized, rec.Code)
		require.Contains(t, rec.Header().Get("WWW-Authenticate"), `error="invalid_token"`)
	})

	t.Run("wrong scheme", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/userinfo", nil)
		req.Header.Set("Authorization", "Basic Zm9vOmJhcg==")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		require.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestRequireScopes(t *testing.T) {
	ctx := httpx.WithClaims(httptest.NewRequest(http.MethodGet, "/", nil).Context(), jwtx.Claims{Scope: "openid email"})

	tests := []struct {
		name string
		mw   httpx.Middleware
		want int
	}{
		{"any matches", httpx.RequireAnyScope("profile", "email"), http.StatusOK},
		{"any misses", httpx.RequireAnyScope("profile"), http.StatusForbidden},
		{"all matches", httpx.RequireAllScopes("openid", "email"), http.StatusOK},
		{"all misses", httpx.RequireAllScopes("openid", "phone"), http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			tt.mw(okHandler).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil).WithContext(ctx))
			require.Equal(t, tt.want, rec.Code)
		})
	}
}

func TestChainOrderAndHeaders(t *testing.T) {
	var order []string
	mark := func(name string) httpx.Middleware {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				order = append(order, name)
				next.ServeHTTP(w, r)
			})
		}
	}

	rec := httptest.NewRecorder()
	httpx.Chain(okHandler, mark("outer"), httpx.AllowAnyOrigin, httpx.NoStore, mark("inner")).
		ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	require.Equal(t, []string{"outer", "inner"}, order)
	require.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
	require.Equal(t, "no-store", rec.Header().Get("Cache-Control"))
	require.Equal(t, "no-cache", rec.Header().Get("Pragma"))
}

func TestWritePublicJSON(t *testing.T) {
	rec := httptest.NewRecorder()
	httpx.WritePublicJSON(rec, http.StatusOK, map[string]string{"issuer": issuer}, time.Hour)
	require.Equal(t, "public, max-age=3600", rec.Header().Get("Cache-Control"))
	require.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	require.JSONEq(t, `{"issuer":"https://id.example.com"}`, rec.Body.String())
}
