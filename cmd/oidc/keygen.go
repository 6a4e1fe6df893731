package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/aussiebroadwan/openid/internal/oidc/app"
	"github.com/aussiebroadwan/openid/pkg/cryptox"
	"github.com/spf13/cobra"
)

func newKeygenCmd() *cobra.Command {
	var (
		bits           int
		privateKeyPath string
		publicKeyPath  string
		force          bool
	)

	cmd := &cobra.Command{
		Use:   "keygen",
		Short: "Generate the RSA signing keypair",
		Long: `keygen writes a new RSA private key (PKCS1 PEM) and its public key
(PKIX PEM). Paths default to OIDC_PRIVATE_KEY_FILE and
OIDC_PUBLIC_KEY_FILE. Existing files are kept unless --force is given;
replacing the key invalidates every token already issued.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := app.LoadConfig()
			if err != nil {
				return err
			}
			if privateKeyPath == "" {
				privateKeyPath = cfg.PrivateKeyFile
			}
			if publicKeyPath == "" {
				publicKeyPath = cfg.PublicKeyFile
			}
			return runKeygen(cmd.OutOrStdout(), bits, privateKeyPath, publicKeyPath, force)
		},
	}
	cmd.Flags().IntVar(&bits, "bits", 2048, "RSA key size")
	cmd.Flags().StringVar(&privateKeyPath, "private-key", "", "Where to write the private key")
	cmd.Flags().StringVar(&publicKeyPath, "public-key", "", "Where to write the public key")
	cmd.Flags().BoolVar(&force, "force", false, "Overwrite existing key files")
	return cmd
}

func runKeygen(w io.Writer, bits int, privateKeyPath, publicKeyPath string, force bool) error {
	if bits < 2048 {
		return fmt.Errorf("refusing to generate a %d bit key, use at least 2048", bits)
	}
	if !force {
		for _, p := range []string{privateKeyPath, publicKeyPath} {
			if _, err := os.Stat(p); err == nil {
				return fmt.Errorf("%s already exists, pass --force to replace it", p)
			}
		}
	}

	privPEM, pubPEM, err := cryptox.GenerateRSAKeyPair(bits)
	if err != nil {
		return err
	}

	for _, f := range []struct {
		path string
		data []byte
		perm os.FileMode
	}{
		{privateKeyPath, privPEM, 0600},
		{publicKeyPath, pubPEM, 0644},
	} {
		if err := os.MkdirAll(filepath.Dir(f.path), 0755); err != nil {
			return fmt.Errorf("create directory for %s: %w", f.path, err)
		}
		if err := os.WriteFile(f.path, f.data, f.perm); err != nil {
			return fmt.Errorf("write %s: %w", f.path, err)
		}
	}

	fmt.Fprintf(w, "Generated %d bit RSA keypair:\nPrivate key: %s\nPublic key: %s\n", bits, privateKeyPath, publicKeyPath)
	return nil
}
