// Copyright (c) 2025 Sessionctl
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/spf13/cobra"

	"sessionctl/cli/internal/auth"
	apperrors "sessionctl/cli/internal/errors"
)

var profileJSON bool

// profileCmd shows who the saved session belongs to.
var profileCmd = &cobra.Command{
	Use:     "profile",
	Aliases: []string{"me", "whoami"},
	Short:   "Show the current authenticated account",
	Long: `The profile command validates the saved session with the auth server and shows
the account it belongs to.

If the access cookie has expired the session is refreshed once and checked
again. If no valid session exists, it will indicate that you are not logged in.`,
	Args: cobra.NoArgs,
	RunE: runE(func(ctx context.Context, a *app, args []string) error {
		done := spinWhileBusy(a.store, "Checking session")
		err := checkSession(ctx, a.store)
		done()

		st := a.store.State()
		if !st.Authenticated() {
			if apperrors.StatusOf(err) == 0 && err != nil {
				a.hints(err, "checking the session")
				return reported(err)
			}
			fmt.Println("🔒 You're not logged in yet!")
			fmt.Println("   Run 'sessionctl login' to get started.")
			return nil
		}

		if profileJSON {
			b, err := json.MarshalIndent(st.User, "", "  ")
			if err != nil {
				return err
			}
			fmt.Println(string(b))
			return nil
		}
		fmt.Printf("👤 Current user: %s\n", st.User.Identifier())
		return nil
	}),
}

// checkSession runs an auth check. A check is never refreshed on its own, so
// an expired access cookie gets one explicit refresh and a second check.
func checkSession(ctx context.Context, store *auth.Store) error {
	err := store.CheckAuth(ctx)
	if apperrors.StatusOf(err) != http.StatusUnauthorized {
		return err
	}
	if _, rerr := store.RefreshToken(ctx); rerr != nil {
		return err
	}
	return store.CheckAuth(ctx)
}

func init() {
	rootCmd.AddCommand(profileCmd)
	profileCmd.Flags().BoolVar(&profileJSON, "json", false, "Print the full profile as JSON")
}
