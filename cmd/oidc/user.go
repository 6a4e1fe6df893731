package main

import (
	"context"
	"fmt"
	"io"

	"github.com/aussiebroadwan/openid/internal/oidc/app"
	"github.com/aussiebroadwan/openid/internal/oidc/service"
	"github.com/aussiebroadwan/openid/internal/oidc/store"
	"github.com/aussiebroadwan/openid/pkg/cryptox"
	"github.com/spf13/cobra"
)

func newUserCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Manage local user accounts",
	}
	cmd.AddCommand(newUserAddCmd())
	return cmd
}

func newUserAddCmd() *cobra.Command {
	var p service.CreateUserParams

	cmd := &cobra.Command{
		Use:   "add <username>",
		Short: "Create a local user",
		Long: `add creates a user who can sign in at /login. The username is also the
subject of every token issued for the user. A random password is
generated and printed when --password is not given.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := app.LoadConfig()
			if err != nil {
				return err
			}
			cryptox.SetPepperPath(cfg.PepperFile)

			db, err := app.OpenStore(cfg)
			if err != nil {
				return err
			}
			defer db.Close()

			p.Username = args[0]
			return runUserAdd(cmd.Context(), cmd.OutOrStdout(), db, p)
		},
	}

	f := cmd.Flags()
	f.StringVar(&p.Password, "password", "", "Password; generated when empty")
	f.StringVar(&p.GivenName, "given-name", "", "Given name")
	f.StringVar(&p.FamilyName, "family-name", "", "Family name")
	f.StringVar(&p.Nickname, "nickname", "", "Nickname shown on the consent page")
	f.StringVar(&p.Email, "email", "", "Email address")
	f.BoolVar(&p.EmailVerified, "email-verified", false, "Mark the email address as verified")
	f.StringVar(&p.PhoneNumber, "phone", "", "Phone number")
	f.StringVar(&p.Picture, "picture", "", "Profile picture URL")
	f.StringSliceVar(&p.Capabilities, "capability", []string{service.DefaultRequiredCapability}, "Capabilities granted to the user")
	return cmd
}

func runUserAdd(ctx context.Context, w io.Writer, st store.Store, p service.CreateUserParams) error {
	generated := false
	if p.Password == "" {
		pw, err := cryptox.GeneratePassword()
		if err != nil {
			return err
		}
		p.Password = pw
		generated = true
	}

	u, err := (&service.UserService{Store: st}).CreateUser(ctx, p)
	if err != nil {
		return fmt.Errorf("create user: %w", err)
	}

	fmt.Fprintf(w, "Created user %s (%s).\n", u.Username, u.ID)
	if generated {
		fmt.Fprintf(w, "Password: %s\n", p.Password)
	}
	return nil
}
