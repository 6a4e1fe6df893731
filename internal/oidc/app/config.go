package app

import (
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

type Config struct {
	Issuer string `env:"OIDC_ISSUER" env-default:"http://localhost:8080" env-description:"Issuer URL, base of every discovery endpoint"`

	PrivateKeyFile string `env:"OIDC_PRIVATE_KEY_FILE" env-default:"oidc-private.pem" env-description:"RSA private key PEM (PKCS1 or PKCS8)"`
	PublicKeyFile  string `env:"OIDC_PUBLIC_KEY_FILE" env-default:"oidc-public.pem" env-description:"RSA public key PEM (PKIX)"`
	ClientsFile    string `env:"OIDC_CLIENTS_FILE" env-default:"clients.yaml" env-description:"Client registry file (YAML or JSON)"`
	DatabaseFile   string `env:"OIDC_DATABASE_FILE" env-default:"oidc.db" env-description:"Path to the SQLite database file"`
	PepperFile     string `env:"OIDC_PEPPER_FILE" env-default:"pepper" env-description:"Pepper for user passwords and hashed client secrets"`

	CodeTTL        time.Duration `env:"OIDC_CODE_TTL" env-default:"30s" env-description:"Authorization code lifetime"`
	AccessTokenTTL time.Duration `env:"OIDC_ACCESS_TOKEN_TTL" env-default:"1h" env-description:"Access token lifetime"`
	IDTokenTTL     time.Duration `env:"OIDC_ID_TOKEN_TTL" env-default:"1h" env-description:"ID token lifetime"`
	SessionTTL     time.Duration `env:"OIDC_SESSION_TTL" env-default:"12h" env-description:"Login session cookie lifetime"`
	ConsentTTL     time.Duration `env:"OIDC_CONSENT_TTL" env-default:"168h" env-description:"How long a consent decision is remembered"`
	CodeGrace      time.Duration `env:"OIDC_CODE_GRACE_PERIOD" env-default:"1h" env-description:"How long expired codes are kept before the sweep removes them"`
	StoreTimeout   time.Duration `env:"OIDC_STORE_TIMEOUT" env-default:"5s" env-description:"Per-operation database timeout"`

	RequiredCapability string `env:"OIDC_REQUIRED_CAPABILITY" env-default:"oidc:login" env-description:"Capability a user needs to sign in to clients"`
	RequirePKCE        bool   `env:"OIDC_REQUIRE_PKCE" env-default:"false" env-description:"Require PKCE from public clients"`

	Env                  string        `env:"ENV" env-default:"dev" env-description:"Environment (dev, staging, prod)"`
	LogLevel             string        `env:"LOG_LEVEL" env-default:"info" env-description:"Log level (debug, info, warn, error)"`
	LogFormat            string        `env:"LOG_FORMAT" env-default:"json" env-description:"Log format (json, text)"`
	Port                 int           `env:"PORT" env-default:"8080" env-description:"HTTP server port"`
	ShutdownGracePeriod  time.Duration `env:"SHUTDOWN_GRACE_PERIOD" env-default:"10s" env-description:"Graceful shutdown timeout"`
	HousekeepingInterval time.Duration `env:"HOUSEKEEPING_INTERVAL" env-default:"1h" env-description:"Expired code sweep interval"`
}

// LoadConfig reads the environment into a Config and validates it.
func LoadConfig() (Config, error) {
	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return Config{}, fmt.Errorf("read environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects settings the server cannot run with.
func (c Config) Validate() error {
	u, err := url.Parse(c.Issuer)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("OIDC_ISSUER must be an absolute URL, got %q", c.Issuer)
	}
	if u.RawQuery != "" || u.Fragment != "" {
		return errors.New("OIDC_ISSUER must not carry a query or fragment")
	}

	for name, d := range map[string]time.Duration{
		"OIDC_CODE_TTL":         c.CodeTTL,
		"OIDC_ACCESS_TOKEN_TTL": c.AccessTokenTTL,
		"OIDC_ID_TOKEN_TTL":     c.IDTokenTTL,
		"OIDC_SESSION_TTL":      c.SessionTTL,
		"OIDC_CONSENT_TTL":      c.ConsentTTL,
		"OIDC_STORE_TIMEOUT":    c.StoreTimeout,
	} {
		if d <= 0 {
			return fmt.Errorf("%s must be positive", name)
		}
	}
	if c.CodeGrace < 0 {
		return errors.New("OIDC_CODE_GRACE_PERIOD must not be negative")
	}
	return nil
}

// SecureCookies is false only for local development over plain http.
func (c Config) SecureCookies() bool {
	return c.Env != "dev"
}

// Usage describes every environment variable the server reads.
func Usage() string {
	header := "Environment variables:"
	text, err := cleanenv.GetDescription(&Config{}, &header)
	if err != nil {
		return header
	}
	return text
}
