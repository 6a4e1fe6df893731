package app

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/aussiebroadwan/openid/internal/oidc/service"
	"github.com/aussiebroadwan/openid/pkg/authsdk"
	"github.com/aussiebroadwan/openid/pkg/cryptox"
	"github.com/stretchr/testify/require"
)

const clientsYAML = `clients:
  - id: wiki-client-0001
    name: Wiki
    secret: wiki-secret
    redirect_uris:
      - https://wiki.example/callback
    scope: openid profile
`

func testConfig(t *testing.T) Config {
	t.Helper()
	dir := t.TempDir()

	priv, pub, err := cryptox.GenerateRSAKeyPair(2048)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "private.pem"), priv, 0600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "public.pem"), pub, 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "clients.yaml"), []byte(clientsYAML), 0644))

	t.Setenv("OIDC_ISSUER", "https://issuer.test")
	t.Setenv("OIDC_PRIVATE_KEY_FILE", filepath.Join(dir, "private.pem"))
	t.Setenv("OIDC_PUBLIC_KEY_FILE", filepath.Join(dir, "public.pem"))
	t.Setenv("OIDC_CLIENTS_FILE", filepath.Join(dir, "clients.yaml"))
	t.Setenv("OIDC_DATABASE_FILE", filepath.Join(dir, "oidc.db"))
	t.Setenv("OIDC_PEPPER_FILE", filepath.Join(dir, "pepper"))
	t.Setenv("LOG_LEVEL", "error")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	return cfg
}

func TestNew_ServesDiscovery(t *testing.T) {
	cfg := testConfig(t)

	application, err := New(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = application.db.Close() })

	rec := httptest.NewRecorder()
	application.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/.well-known/openid-configuration", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var doc authsdk.DiscoveryDocument
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &doc))
	require.Equal(t, "https://issuer.test", doc.Issuer)

	rec = httptest.NewRecorder()
	application.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestNew_FailsOnBadRegistry(t *testing.T) {
	cfg := testConfig(t)
	require.NoError(t, os.WriteFile(cfg.ClientsFile, []byte("clients:\n  - name: no id\n"), 0644))

	_, err := New(cfg)
	require.Error(t, err)
	require.Contains(t, err.Error(), "client registry")
}

func TestNew_FailsOnMismatchedKeys(t *testing.T) {
	cfg := testConfig(t)
	_, otherPub, err := cryptox.GenerateRSAKeyPair(2048)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(cfg.PublicKeyFile, otherPub, 0644))

	_, err = New(cfg)
	require.Error(t, err)
}

func TestDiagnostics_FlagsShortClientID(t *testing.T) {
	cfg := testConfig(t)
	require.NoError(t, os.WriteFile(cfg.ClientsFile, []byte(`clients:
  - id: short
    name: Short
    redirect_uris: [https://short.example/cb]
`), 0644))

	application, err := New(cfg)
	require.NoError(t, err, "diagnostics warn, they do not block startup")
	t.Cleanup(func() { _ = application.db.Close() })

	results := Diagnostics(cfg, application.registry).Run()
	require.True(t, service.HasCritical(results))
}
