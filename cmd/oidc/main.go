package main

import (
	"fmt"
	"os"

	"github.com/aussiebroadwan/openid/internal/oidc/app"
	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "oidc",
		Short: "OpenID Connect provider",
		Long: `oidc runs an OpenID Connect authorization server for a fixed set of
registered clients, plus the operator tools around it.

` + app.Usage(),
		SilenceUsage: true,
		// Running the bare binary starts the server.
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve()
		},
	}

	root.AddCommand(
		newServeCmd(),
		newDoctorCmd(),
		newPurgeCmd(),
		newKeygenCmd(),
		newUserCmd(),
		newHashSecretCmd(),
	)
	return root
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
