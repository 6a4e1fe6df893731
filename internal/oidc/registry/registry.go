// Package registry holds the static set of OAuth2 clients the issuer serves.
package registry

import (
	"errors"
	"fmt"
	"net/url"
	"slices"
	"strings"

	"github.com/aussiebroadwan/openid/internal/oidc/domain"
	"github.com/aussiebroadwan/openid/pkg/cryptox"
	"github.com/ilyakaznacheev/cleanenv"
)

var (
	ErrClientNotFound = errors.New("registry: client not found")
	ErrInvalidClient  = errors.New("registry: invalid client definition")
)

// File is the on-disk shape of the registry (YAML or JSON).
//
//	clients:
//	  - id: client-abc123
//	    name: Wiki
//	    secret: s3cret
//	    redirect_uris: [https://wiki.example.com/cb]
//	    scope: openid profile
type File struct {
	Clients []domain.Client `yaml:"clients" json:"clients"`
}

// Registry is an immutable lookup of clients by id. It is safe for
// concurrent use because nothing mutates it after construction.
type Registry struct {
	clients map[string]domain.Client
	order   []string
}

// Load reads and validates a registry file. The format follows the file
// extension.
func Load(path string) (*Registry, error) {
	var f File
	if err := cleanenv.ReadConfig(path, &f); err != nil {
		return nil, fmt.Errorf("registry: read %s: %w", path, err)
	}
	return New(f.Clients...)
}

// New builds a registry from clients, rejecting duplicates and malformed
// redirect URIs.
func New(clients ...domain.Client) (*Registry, error) {
	r := &Registry{clients: make(map[string]domain.Client, len(clients))}

	for i, c := range clients {
		c.ID = strings.TrimSpace(c.ID)
		if c.ID == "" {
			return nil, fmt.Errorf("%w: client #%d has no id", ErrInvalidClient, i)
		}
		if _, dup := r.clients[c.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate id %q", ErrInvalidClient, c.ID)
		}
		for _, uri := range c.RedirectURIs {
			u, err := url.Parse(uri)
			if err != nil || !u.IsAbs() || u.Fragment != "" {
				return nil, fmt.Errorf("%w: client %q redirect_uri %q must be an absolute URI without fragment", ErrInvalidClient, c.ID, uri)
			}
		}

		c.RedirectURIs = slices.Clone(c.RedirectURIs)
		c.GrantTypes = slices.Clone(c.GrantTypes)
		r.clients[c.ID] = c
		r.order = append(r.order, c.ID)
	}

	return r, nil
}

// Get returns the client registered under id.
func (r *Registry) Get(id string) (domain.Client, error) {
	c, ok := r.clients[id]
	if !ok {
		return domain.Client{}, ErrClientNotFound
	}
	return c, nil
}

// ValidateCredentials reports whether secret authenticates client id.
// Public clients accept any secret, including none.
func (r *Registry) ValidateCredentials(id, secret string) bool {
	c, ok := r.clients[id]
	if !ok {
		return false
	}
	if c.IsPublic() {
		return true
	}
	if cryptox.IsPasswordHash(c.Secret) {
		return cryptox.VerifyPassword(secret, c.Secret) == nil
	}
	return cryptox.ConstantTimeEqual(secret, c.Secret)
}

// IsGrantTypeAllowed reports whether client id may use grantType. A client
// without a grant_types list is unrestricted.
func (r *Registry) IsGrantTypeAllowed(id, grantType string) bool {
	c, ok := r.clients[id]
	if !ok {
		return false
	}
	if len(c.GrantTypes) == 0 {
		return true
	}
	return slices.Contains(c.GrantTypes, grantType)
}

// All returns the clients in file order.
func (r *Registry) All() []domain.Client {
	out := make([]domain.Client, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.clients[id])
	}
	return out
}

// Len returns the number of registered clients.
func (r *Registry) Len() int { return len(r.order) }
