// Copyright (c) 2025 Sessionctl
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package cmd provides the command-line interface for sessionctl. Every
// subcommand builds the same client stack: a cookie jar restored from the OS
// keychain, an HTTP client wrapped by the refresh interceptor, the backend
// adapter and the session store. The jar is written back when the command ends.
package cmd

import (
	"context"
	"errors"
	"os"
	"os/signal"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"sessionctl/cli/internal/logging"
)

var (
	showVersion bool
	serverFlag  string
	verboseFlag bool
	quietFlag   bool
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "sessionctl",
	Short: "Sign up, log in and make authenticated calls against a cookie-session auth server",
	Long: `sessionctl is a command-line client for auth servers that keep the session in
HTTP-only cookies: a short-lived access cookie and a longer-lived refresh cookie.

The session is kept in the OS keychain between invocations. When the access
cookie expires, requests are refreshed and replayed automatically; if the
refresh is rejected you are logged out.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		if showVersion {
			printVersion()
			return nil
		}
		return cmd.Help()
	},
}

// reportedError marks an error the user has already been shown.
type reportedError struct{ error }

func (e reportedError) Unwrap() error { return e.error }

func reported(err error) error {
	if err == nil {
		return nil
	}
	return reportedError{err}
}

// Execute runs the CLI application and exits with status 1 on failure.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	cmd, err := rootCmd.ExecuteContextC(ctx)
	stop()
	if err != nil {
		var shown reportedError
		if !errors.As(err, &shown) {
			pterm.Error.Println(logging.PresentError(cmd.CommandPath(), err))
		}
		os.Exit(1)
	}
}

func init() {
	rootCmd.Flags().BoolVar(&showVersion, "version", false, "Show CLI version information")
	rootCmd.PersistentFlags().StringVar(&serverFlag, "server", "", "Auth server base URL (overrides config and SESSIONCTL_SERVER)")
	rootCmd.PersistentFlags().BoolVarP(&verboseFlag, "verbose", "v", false, "Enable verbose debug output")
	rootCmd.PersistentFlags().BoolVarP(&quietFlag, "quiet", "q", false, "Only print errors and command output")
}
