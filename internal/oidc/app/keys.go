package app

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"

	"github.com/aussiebroadwan/openid/pkg/jwtx"
)

// LoadKeys reads the configured keypair and builds the KeyManager. The
// private key is required. A missing public key file is tolerated since
// the public half is derived from the private key; when present, the two
// must match.
func LoadKeys(cfg Config, logger *slog.Logger) (*jwtx.KeyManager, error) {
	privPEM, err := os.ReadFile(cfg.PrivateKeyFile)
	if err != nil {
		return nil, fmt.Errorf("read private key %s: %w", cfg.PrivateKeyFile, err)
	}

	pubPEM, err := os.ReadFile(cfg.PublicKeyFile)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		logger.Warn("public key file not found, deriving it from the private key",
			"path", cfg.PublicKeyFile)
		pubPEM = nil
	case err != nil:
		return nil, fmt.Errorf("read public key %s: %w", cfg.PublicKeyFile, err)
	}

	keys, err := jwtx.NewKeyManager(jwtx.KeyManagerOptions{
		Issuer:        cfg.Issuer,
		PrivateKeyPEM: privPEM,
		PublicKeyPEM:  pubPEM,
	})
	if err != nil {
		return nil, fmt.Errorf("load signing key: %w", err)
	}

	logger.Info("signing key loaded",
		"algorithm", jwtx.AlgorithmRS256,
		"kid", keys.Signer.KID(),
		"issuer", keys.Issuer(),
	)
	return keys, nil
}
