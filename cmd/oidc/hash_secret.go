package main

import (
	"fmt"
	"io"

	"github.com/aussiebroadwan/openid/internal/oidc/app"
	"github.com/aussiebroadwan/openid/pkg/cryptox"
	"github.com/spf13/cobra"
)

func newHashSecretCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "hash-secret [secret]",
		Short: "Hash a client secret for the registry file",
		Long: `hash-secret prints an argon2id hash of the secret that can be used as a
client's secret in the registry file. With no argument a random secret
is generated and printed along with its hash. The hash depends on the
pepper, so run it with the server's OIDC_PEPPER_FILE.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := app.LoadConfig()
			if err != nil {
				return err
			}
			cryptox.SetPepperPath(cfg.PepperFile)

			secret := ""
			if len(args) == 1 {
				secret = args[0]
			}
			return runHashSecret(cmd.OutOrStdout(), secret)
		},
	}
}

func runHashSecret(w io.Writer, secret string) error {
	if secret == "" {
		s, err := cryptox.GenerateToken(32)
		if err != nil {
			return err
		}
		secret = s
		fmt.Fprintf(w, "Secret: %s\n", secret)
	}

	hash, err := cryptox.HashPassword(secret)
	if err != nil {
		return err
	}
	fmt.Fprintln(w, hash)
	return nil
}
