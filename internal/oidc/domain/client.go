package domain

import (
	"slices"
	"strings"
)

// Client is a registered relying party. Clients come from the operator's
// registry file and never change at runtime.
type Client struct {
	ID           string   `yaml:"id" json:"id"`
	Name         string   `yaml:"name" json:"name"`
	Secret       string   `yaml:"secret" json:"secret"` // plain text or argon2id PHC hash; empty for public clients
	RedirectURIs []string `yaml:"redirect_uris" json:"redirect_uris"`
	Scope        string   `yaml:"scope" json:"scope"`             // space-delimited
	GrantTypes   []string `yaml:"grant_types" json:"grant_types"` // empty means unrestricted
}

// IsPublic reports whether the client has no secret.
func (c Client) IsPublic() bool {
	return c.Secret == ""
}

// HasRedirectURI reports whether uri exactly matches a registered URI.
func (c Client) HasRedirectURI(uri string) bool {
	return slices.Contains(c.RedirectURIs, uri)
}

// Scopes returns the client's registered scope as a list.
func (c Client) Scopes() []string {
	return strings.Fields(c.Scope)
}
