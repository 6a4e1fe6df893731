package service

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"

	"github.com/aussiebroadwan/openid/internal/oidc/registry"
	"github.com/aussiebroadwan/openid/pkg/jwtx"
)

type DiagnosticStatus string

const (
	StatusGood     DiagnosticStatus = "good"
	StatusCritical DiagnosticStatus = "critical"
)

// MinClientIDLength is the shortest client id the diagnostics accept.
const MinClientIDLength = 10

// Diagnostic is one operator-facing check result.
type Diagnostic struct {
	Test        string           `json:"test"`
	Label       string           `json:"label"`
	Status      DiagnosticStatus `json:"status"`
	Description string           `json:"description"`
}

// Diagnostics surfaces configuration problems (bad keys, unusable clients)
// to operators instead of failing individual requests.
type Diagnostics struct {
	PublicKeyFile  string
	PrivateKeyFile string
	Registry       *registry.Registry
}

// Run executes every check in a fixed order.
func (d Diagnostics) Run() []Diagnostic {
	pub, pubResult := d.checkPublicKey()
	return []Diagnostic{
		pubResult,
		d.checkPrivateKey(pub),
		d.checkClients(),
	}
}

// HasCritical reports whether any result is critical.
func HasCritical(results []Diagnostic) bool {
	for _, r := range results {
		if r.Status == StatusCritical {
			return true
		}
	}
	return false
}

func (d Diagnostics) checkPublicKey() ([]byte, Diagnostic) {
	res := Diagnostic{Test: "oidc-public-key", Label: "OpenID Connect public key"}

	data, problem := readKeyFile(d.PublicKeyFile)
	if problem != "" {
		return nil, critical(res, problem)
	}
	if _, err := jwtx.ParseRSAPublicKey(data); err != nil {
		return nil, critical(res, fmt.Sprintf("%s is not a PEM encoded RSA public key: %v", d.PublicKeyFile, err))
	}

	res.Status = StatusGood
	res.Description = "The public key is a valid RSA key."
	return data, res
}

func (d Diagnostics) checkPrivateKey(pubPEM []byte) Diagnostic {
	res := Diagnostic{Test: "oidc-private-key", Label: "OpenID Connect private key"}

	data, problem := readKeyFile(d.PrivateKeyFile)
	if problem != "" {
		return critical(res, problem)
	}
	priv, err := jwtx.ParseRSAPrivateKey(data)
	if err != nil {
		return critical(res, fmt.Sprintf("%s is not a PEM encoded RSA private key: %v", d.PrivateKeyFile, err))
	}

	if pubPEM != nil {
		pub, err := jwtx.ParseRSAPublicKey(pubPEM)
		if err == nil && !pub.Equal(&priv.PublicKey) {
			return critical(res, "The private key does not match the public key.")
		}
	}

	res.Status = StatusGood
	res.Description = "The private key is a valid RSA key."
	return res
}

func (d Diagnostics) checkClients() Diagnostic {
	res := Diagnostic{Test: "oidc-clients", Label: "OpenID Connect clients"}

	if d.Registry == nil || d.Registry.Len() == 0 {
		return critical(res, "No clients are registered.")
	}

	for _, c := range d.Registry.All() {
		if len(c.ID) < MinClientIDLength {
			return critical(res, fmt.Sprintf("Client %q: the id must be at least %d characters.", c.ID, MinClientIDLength))
		}
		if c.Name == "" {
			return critical(res, fmt.Sprintf("Client %q has no display name.", c.ID))
		}
		if len(c.RedirectURIs) == 0 {
			return critical(res, fmt.Sprintf("Client %q has no redirect URIs.", c.ID))
		}
		for _, raw := range c.RedirectURIs {
			u, err := url.Parse(raw)
			if err != nil || u.Scheme != "https" {
				return critical(res, fmt.Sprintf("Client %q: redirect URI %q must use https.", c.ID, raw))
			}
		}
	}

	res.Status = StatusGood
	res.Description = fmt.Sprintf("%d client(s) registered.", d.Registry.Len())
	return res
}

// readKeyFile returns the file contents, or a description of why it
// could not be read.
func readKeyFile(path string) ([]byte, string) {
	if path == "" {
		return nil, "No key file is configured."
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Sprintf("The key file %s does not exist.", path)
	}
	if err != nil {
		return nil, fmt.Sprintf("The key file %s could not be read: %v", path, err)
	}
	return data, ""
}

func critical(d Diagnostic, desc string) Diagnostic {
	d.Status = StatusCritical
	d.Description = desc
	return d
}
