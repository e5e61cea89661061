// Copyright (c) 2025 Sessionctl
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"sessionctl/cli/internal/config"
	"sessionctl/cli/internal/endpoints"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show or change the saved client settings",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective server and endpoint settings",
	Args:  cobra.NoArgs,
	RunE: runE(func(_ context.Context, a *app, _ []string) error {
		writeConfig(os.Stdout, a)
		return nil
	}),
}

var configSetServerCmd = &cobra.Command{
	Use:   "set-server URL",
	Short: "Save the auth server base URL",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		base, err := endpoints.BaseURL(args[0])
		if err != nil {
			return fmt.Errorf("invalid server URL %q: %w", args[0], err)
		}
		if _, err := config.Update(func(c *config.Config) { c.ServerURL = base }); err != nil {
			return fmt.Errorf("save config: %w", err)
		}
		if !quietFlag {
			pterm.Success.Printf("Server set to %s\n", base)
		}
		return nil
	},
}

// writeConfig prints the settings the current command stack was built with.
func writeConfig(w io.Writer, a *app) {
	eps := a.api.Endpoints()
	backend := a.cfg.KeyringBackend
	if backend == "" {
		backend = "auto"
	}
	rows := [][2]string{
		{"server", a.api.BaseURL()},
		{"timeout_seconds", strconv.Itoa(a.cfg.TimeoutSeconds)},
		{"keyring_backend", backend},
		{"signup", eps.Signup},
		{"login", eps.Login},
		{"logout", eps.Logout},
		{"profile", eps.Profile},
		{"refresh_token", eps.Refresh},
	}
	for _, r := range rows {
		fmt.Fprintf(w, "%-16s %s\n", r[0]+":", r[1])
	}
}

func init() {
	configCmd.AddCommand(configShowCmd, configSetServerCmd)
	rootCmd.AddCommand(configCmd)
}
