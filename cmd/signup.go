// Copyright (c) 2025 Sessionctl
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"context"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"sessionctl/cli/internal/auth"
	"sessionctl/cli/internal/terminal"
)

var (
	signupName  string
	signupEmail string
)

// signupCmd creates an account. The server starts a session right away, so a
// successful signup leaves the CLI logged in.
var signupCmd = &cobra.Command{
	Use:   "signup",
	Short: "Create an account and log in",
	Long: `The signup command registers a new account on the auth server. Name and email
are taken from the flags or prompted for; the password is always prompted for
twice without echo. Mismatched passwords are rejected before anything is sent.`,
	Args: cobra.NoArgs,
	RunE: runE(func(ctx context.Context, a *app, args []string) error {
		p := terminal.New()
		in, err := promptSignup(p, signupName, signupEmail)
		if err != nil {
			return err
		}

		done := spinWhileBusy(a.store, "Creating account")
		err = a.store.Signup(ctx, in)
		done()
		if err != nil {
			a.hints(err, "signing up")
			return reported(err)
		}
		if !quietFlag {
			pterm.Info.Printfln("Signed in as %s", a.store.State().User.Identifier())
		}
		return nil
	}),
}

func promptSignup(p *terminal.Prompter, name, email string) (auth.SignupInput, error) {
	var err error
	if name == "" {
		if name, err = p.ReadLine("Name: "); err != nil {
			return auth.SignupInput{}, err
		}
	}
	if email == "" {
		if email, err = p.ReadLine("Email: "); err != nil {
			return auth.SignupInput{}, err
		}
	}
	password, err := p.ReadPassword("Password: ")
	if err != nil {
		return auth.SignupInput{}, err
	}
	confirm, err := p.ReadPassword("Confirm password: ")
	if err != nil {
		return auth.SignupInput{}, err
	}
	return auth.SignupInput{Name: name, Email: email, Password: password, ConfirmPassword: confirm}, nil
}

func init() {
	rootCmd.AddCommand(signupCmd)
	signupCmd.Flags().StringVar(&signupName, "name", "", "Display name for the new account")
	signupCmd.Flags().StringVar(&signupEmail, "email", "", "Email address for the new account")
}
