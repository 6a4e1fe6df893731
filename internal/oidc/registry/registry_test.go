package registry

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/aussiebroadwan/openid/internal/oidc/domain"
	"github.com/aussiebroadwan/openid/pkg/cryptox"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	dir, err := os.MkdirTemp("", "registry-pepper")
	if err != nil {
		panic(err)
	}
	cryptox.SetPepperPath(filepath.Join(dir, "pepper"))

	code := m.Run()
	_ = os.RemoveAll(dir)
	os.Exit(code)
}

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadYAML(t *testing.T) {
	path := writeFile(t, "clients.yaml", `
clients:
  - id: client-abc123
    name: Wiki
    secret: s3cret
    redirect_uris:
      - https://app/cb
    scope: openid profile
    grant_types: [authorization_code]
  - id: client-public1
    name: SPA
    redirect_uris: [https://spa/cb]
`)

	reg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, 2, reg.Len())

	c, err := reg.Get("client-abc123")
	require.NoError(t, err)
	require.Equal(t, "Wiki", c.Name)
	require.Equal(t, []string{"openid", "profile"}, c.Scopes())
	require.True(t, c.HasRedirectURI("https://app/cb"))
	require.False(t, c.HasRedirectURI("https://app/cb/"))

	all := reg.All()
	require.Equal(t, "client-abc123", all[0].ID)
	require.Equal(t, "client-public1", all[1].ID)
}

func TestLoadJSON(t *testing.T) {
	path := writeFile(t, "clients.json", `{"clients":[{"id":"client-json01","name":"J","redirect_uris":["https://j/cb"]}]}`)

	reg, err := Load(path)
	require.NoError(t, err)

	c, err := reg.Get("client-json01")
	require.NoError(t, err)
	require.True(t, c.IsPublic())
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}

func TestNewRejectsBadDefinitions(t *testing.T) {
	tests := []struct {
		name    string
		clients []domain.Client
	}{
		{"empty id", []domain.Client{{ID: " "}}},
		{"duplicate", []domain.Client{{ID: "a"}, {ID: "a"}}},
		{"relative redirect", []domain.Client{{ID: "a", RedirectURIs: []string{"/cb"}}}},
		{"fragment", []domain.Client{{ID: "a", RedirectURIs: []string{"https://app/cb#x"}}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.clients...)
			require.ErrorIs(t, err, ErrInvalidClient)
		})
	}
}

func TestGetUnknown(t *testing.T) {
	reg, err := New()
	require.NoError(t, err)

	_, err = reg.Get("doesnotexist")
	require.ErrorIs(t, err, ErrClientNotFound)
	require.False(t, reg.ValidateCredentials("doesnotexist", ""))
	require.False(t, reg.IsGrantTypeAllowed("doesnotexist", "authorization_code"))
}

func TestValidateCredentials(t *testing.T) {
	hashed, err := cryptox.HashPassword("hashed-secret")
	require.NoError(t, err)

	reg, err := New(
		domain.Client{ID: "plain", Secret: "s3cret"},
		domain.Client{ID: "hashed", Secret: hashed},
		domain.Client{ID: "public"},
	)
	require.NoError(t, err)

	tests := []struct {
		name   string
		id     string
		secret string
		want   bool
	}{
		{"plain match", "plain", "s3cret", true},
		{"plain mismatch", "plain", "S3cret", false},
		{"plain empty", "plain", "", false},
		{"hashed match", "hashed", "hashed-secret", true},
		{"hashed mismatch", "hashed", "nope", false},
		{"hashed given the hash", "hashed", hashed, false},
		{"public empty", "public", "", true},
		{"public anything", "public", "whatever", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, reg.ValidateCredentials(tt.id, tt.secret))
		})
	}
}

func TestIsGrantTypeAllowed(t *testing.T) {
	reg, err := New(
		domain.Client{ID: "any"},
		domain.Client{ID: "code-only", GrantTypes: []string{"authorization_code"}},
	)
	require.NoError(t, err)

	require.True(t, reg.IsGrantTypeAllowed("any", "authorization_code"))
	require.True(t, reg.IsGrantTypeAllowed("any", "client_credentials"))
	require.True(t, reg.IsGrantTypeAllowed("code-only", "authorization_code"))
	require.False(t, reg.IsGrantTypeAllowed("code-only", "client_credentials"))
}

func TestRegistryIsImmutable(t *testing.T) {
	uris := []string{"https://app/cb"}
	reg, err := New(domain.Client{ID: "a", RedirectURIs: uris})
	require.NoError(t, err)

	uris[0] = "https://evil/cb"
	c, _ := reg.Get("a")
	require.Equal(t, "https://app/cb", c.RedirectURIs[0])
}
