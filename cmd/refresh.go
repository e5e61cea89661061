// Copyright (c) 2025 Sessionctl
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"context"
	"fmt"
	"sort"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	apperrors "sessionctl/cli/internal/errors"
)

// refreshCmd exchanges the refresh cookie for a new access cookie.
var refreshCmd = &cobra.Command{
	Use:   "refresh",
	Short: "Refresh the access cookie now",
	Long: `The refresh command asks the auth server for a new access cookie using the
saved refresh cookie and prints the token metadata the server returns.

Requests made by other commands refresh automatically; this command is useful
to extend a session ahead of time or to check that the refresh cookie is valid.`,
	Args: cobra.NoArgs,
	RunE: runE(func(ctx context.Context, a *app, args []string) error {
		done := spinWhileBusy(a.store, "Refreshing session")
		meta, err := a.store.RefreshToken(ctx)
		done()
		if err != nil {
			pterm.Error.Println(apperrors.MessageOr(err, "Session refresh failed"))
			a.hints(err, "refreshing the session")
			return reported(err)
		}

		if !quietFlag {
			pterm.Success.Println("Session refreshed")
		}
		keys := make([]string, 0, len(meta))
		for k := range meta {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Printf("%s: %v\n", k, meta[k])
		}
		return nil
	}),
}

func init() {
	rootCmd.AddCommand(refreshCmd)
}
