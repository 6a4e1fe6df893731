package authsdk

import (
	"context"
	"net/http"
	"strings"
	"sync"
	"time"
)

// SDKClient talks to the OpenID provider on behalf of a relying party.
// Endpoint URLs come from discovery; until discovery has run the client
// falls back to the server's default paths under BaseURL.
type SDKClient struct {
	BaseURL    string
	HTTPClient *http.Client

	mu        sync.RWMutex
	discovery *DiscoveryDocument
}

// NewSDKClient creates a client with a 10 second timeout.
func NewSDKClient(baseURL string) *SDKClient {
	return &SDKClient{
		BaseURL:    strings.TrimSuffix(baseURL, "/"),
		HTTPClient: &http.Client{Timeout: 10 * time.Second},
	}
}

// Discover fetches and caches the provider metadata.
func (c *SDKClient) Discover(ctx context.Context) (*DiscoveryDocument, error) {
	resp, err := c.doRequest(ctx, http.MethodGet, c.BaseURL+"/.well-known/openid-configuration", nil, nil)
	if err != nil {
		return nil, err
	}

	var doc DiscoveryDocument
	if err := decodeJSON(resp, &doc, http.StatusOK); err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.discovery = &doc
	c.mu.Unlock()
	return &doc, nil
}

// endpoint picks the discovered URL when known, else BaseURL+fallback.
func (c *SDKClient) endpoint(pick func(*DiscoveryDocument) string, fallback string) string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.discovery != nil {
		if u := pick(c.discovery); u != "" {
			return u
		}
	}
	return c.BaseURL + fallback
}

func (c *SDKClient) authorizeURL() string {
	return c.endpoint(func(d *DiscoveryDocument) string { return d.AuthorizationEndpoint }, "/authorize")
}

func (c *SDKClient) tokenURL() string {
	return c.endpoint(func(d *DiscoveryDocument) string { return d.TokenEndpoint }, "/token")
}

func (c *SDKClient) userInfoURL() string {
	return c.endpoint(func(d *DiscoveryDocument) string { return d.UserInfoEndpoint }, "/userinfo")
}

func (c *SDKClient) jwksURL() string {
	return c.endpoint(func(d *DiscoveryDocument) string { return d.JWKSURI }, "/.well-known/jwks.json")
}
