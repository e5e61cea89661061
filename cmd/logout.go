// Copyright (c) 2025 Sessionctl
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"sessionctl/cli/internal/auth"
)

// logoutCmd ends the session on the server and forgets the saved cookies.
var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "End the session and remove the saved cookies",
	Long: `The logout command asks the auth server to end the current session and then
removes the saved session from the OS keychain.

If the server call fails, the saved session is kept so that you can retry.`,
	Args: cobra.NoArgs,
	RunE: runE(func(ctx context.Context, a *app, args []string) error {
		done := spinWhileBusy(a.store, "Logging out")
		err := a.store.Logout(ctx)
		done()
		if err != nil {
			a.hints(err, "logging out")
			return reported(err)
		}
		a.jar.Clear()
		return auth.ClearSnapshot(a.keys)
	}),
}

func init() {
	rootCmd.AddCommand(logoutCmd)
}
