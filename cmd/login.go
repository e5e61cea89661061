// Copyright (c) 2025 Sessionctl
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"context"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"sessionctl/cli/internal/terminal"
)

var loginEmail string

// loginCmd exchanges email and password for session cookies.
var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Log in with email and password",
	Long: `The login command authenticates against the auth server. The email is taken
from --email or prompted for; the password is prompted for without echo, or read
from stdin when it is not a terminal.

The session cookies the server sets are saved to the OS keychain, so later
commands reuse them until you log out.`,
	Args: cobra.NoArgs,
	RunE: runE(func(ctx context.Context, a *app, args []string) error {
		p := terminal.New()
		email := loginEmail
		if email == "" {
			var err error
			if email, err = p.ReadLine("Email: "); err != nil {
				return err
			}
		}
		password, err := p.ReadPassword("Password: ")
		if err != nil {
			return err
		}

		done := spinWhileBusy(a.store, "Logging in")
		err = a.store.Login(ctx, email, password)
		done()
		if err != nil {
			a.hints(err, "logging in")
			return reported(err)
		}
		if !quietFlag {
			pterm.Info.Printfln("Signed in as %s", a.store.State().User.Identifier())
		}
		return nil
	}),
}

func init() {
	rootCmd.AddCommand(loginCmd)
	loginCmd.Flags().StringVar(&loginEmail, "email", "", "Account email")
}
