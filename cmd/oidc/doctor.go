package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/aussiebroadwan/openid/internal/oidc/app"
	"github.com/aussiebroadwan/openid/internal/oidc/registry"
	"github.com/aussiebroadwan/openid/internal/oidc/service"
	"github.com/spf13/cobra"
)

var errDiagnosticsFailed = errors.New("one or more checks are critical")

func newDoctorCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Check the signing keys and client registry",
		Long: `doctor runs the same checks the server logs at startup: the public and
private key files are valid RSA keys that belong together, and every
registered client has a long enough id, a name and https redirect URIs.

It exits non-zero when any check is critical.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := app.LoadConfig()
			if err != nil {
				return err
			}
			return runDoctor(cmd.OutOrStdout(), cfg, asJSON)
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print results as JSON")
	return cmd
}

func runDoctor(w io.Writer, cfg app.Config, asJSON bool) error {
	var results []service.Diagnostic

	reg, err := registry.Load(cfg.ClientsFile)
	if err != nil {
		// Key checks still run; the registry problem is reported alongside.
		results = append(results, service.Diagnostic{
			Test:        "oidc-clients-file",
			Label:       "OpenID Connect client registry",
			Status:      service.StatusCritical,
			Description: err.Error(),
		})
	}
	results = append(results, app.Diagnostics(cfg, reg).Run()...)

	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(results); err != nil {
			return err
		}
	} else {
		tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "STATUS\tCHECK\tDESCRIPTION")
		for _, r := range results {
			fmt.Fprintf(tw, "%s\t%s\t%s\n", r.Status, r.Label, r.Description)
		}
		if err := tw.Flush(); err != nil {
			return err
		}
	}

	if service.HasCritical(results) {
		return errDiagnosticsFailed
	}
	return nil
}
