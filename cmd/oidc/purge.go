package main

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/aussiebroadwan/openid/internal/oidc/app"
	"github.com/aussiebroadwan/openid/internal/oidc/service"
	"github.com/aussiebroadwan/openid/internal/oidc/store"
	"github.com/spf13/cobra"
)

func newPurgeCmd() *cobra.Command {
	var confirm bool

	cmd := &cobra.Command{
		Use:   "purge",
		Short: "Delete every stored consent and authorization code",
		Long: `purge removes all consent records and outstanding authorization codes.
Users are asked for consent again on their next sign in. Use it when
retiring the provider or after rotating the client registry.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !confirm {
				return errors.New("refusing to purge without --yes")
			}
			cfg, err := app.LoadConfig()
			if err != nil {
				return err
			}
			db, err := app.OpenStore(cfg)
			if err != nil {
				return err
			}
			defer db.Close()

			return runPurge(cmd.Context(), cmd.OutOrStdout(), db)
		},
	}
	cmd.Flags().BoolVar(&confirm, "yes", false, "Confirm the purge")
	return cmd
}

func runPurge(ctx context.Context, w io.Writer, st store.Store) error {
	consents, err := (&service.ConsentService{Store: st}).PurgeAll(ctx)
	if err != nil {
		return fmt.Errorf("purge consents: %w", err)
	}
	codes, err := (&service.CodeService{Store: st}).PurgeAll(ctx)
	if err != nil {
		return fmt.Errorf("purge authorization codes: %w", err)
	}
	fmt.Fprintf(w, "Removed %d consents and %d authorization codes.\n", consents, codes)
	return nil
}
