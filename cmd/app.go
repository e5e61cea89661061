// Copyright (c) 2025 Sessionctl
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"context"
	"fmt"
	"net/http"
	"path/filepath"
	"time"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"sessionctl/cli/internal/auth"
	"sessionctl/cli/internal/backend"
	"sessionctl/cli/internal/config"
	"sessionctl/cli/internal/endpoints"
	"sessionctl/cli/internal/httperrors"
	"sessionctl/cli/internal/interceptor"
	"sessionctl/cli/internal/keychain"
	"sessionctl/cli/internal/logging"
	"sessionctl/cli/internal/notify"
	"sessionctl/cli/internal/xdg"
)

// app is the client stack shared by every command.
type app struct {
	cfg   config.Config
	log   *pterm.Logger
	keys  *keychain.Manager
	jar   *auth.Jar
	icp   *interceptor.Interceptor
	api   *backend.HTTP
	store *auth.Store
}

// newApp loads configuration, applies the global flags and opens the keyring.
func newApp() (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if serverFlag != "" {
		cfg.ServerURL = serverFlag
	}
	if verboseFlag {
		cfg.LogLevel = "debug"
	}

	stateDir, err := xdg.StateDir()
	if err != nil {
		return nil, fmt.Errorf("resolve state dir: %w", err)
	}
	keys, err := keychain.NewManager(keychain.Options{
		Backend:      cfg.KeyringBackend,
		FileDir:      filepath.Join(stateDir, "keyring"),
		FilePassword: cfg.KeyringPassword,
	})
	if err != nil {
		return nil, fmt.Errorf("open keyring: %w", err)
	}

	return buildApp(cfg, keys, logging.New(cfg.Verbose()), notify.Terminal{Quiet: quietFlag})
}

// buildApp wires the stack and restores the saved session into the jar.
func buildApp(cfg config.Config, keys *keychain.Manager, log *pterm.Logger, n notify.Notifier) (*app, error) {
	base, err := endpoints.BaseURL(cfg.ServerURL)
	if err != nil {
		return nil, fmt.Errorf("invalid server URL %q: %w", cfg.ServerURL, err)
	}
	eps := cfg.Endpoints.Merge(endpoints.Defaults())

	jar, err := auth.NewJar()
	if err != nil {
		return nil, err
	}
	client := &http.Client{
		Jar:     jar,
		Timeout: time.Duration(cfg.TimeoutSeconds) * time.Second,
	}
	icp := interceptor.New(client, interceptor.Options{
		Skip:           eps.Unintercepted(),
		RefreshTimeout: client.Timeout,
		Logger:         log,
	})
	api := backend.New(base, eps, icp, backend.WithLogger(log), backend.WithUserAgent("sessionctl/"+Version))
	store := auth.NewStore(api, n, auth.WithLogger(log))
	icp.Bind(store)

	a := &app{cfg: cfg, log: log, keys: keys, jar: jar, icp: icp, api: api, store: store}

	restored, err := auth.RestoreSnapshot(keys, jar)
	if err != nil {
		// A corrupt snapshot is treated as logged out.
		log.Warn("ignoring stored session", log.Args("error", err.Error()))
	}
	log.Debug("session restored", log.Args("cookies", restored, "server", base))
	return a, nil
}

// persist writes the jar back to the keyring.
func (a *app) persist() {
	if err := auth.SaveSnapshot(a.keys, a.jar); err != nil {
		a.log.Warn("could not save session", a.log.Args("error", err.Error()))
	}
}

// hints prints troubleshooting help for network-level failures.
func (a *app) hints(err error, doing string) {
	httperrors.PrintHints(err, doing, a.api.BaseURL())
}

// runE builds the app, runs fn and persists the session afterwards, whatever
// fn returned.
func runE(fn func(ctx context.Context, a *app, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.persist()
		return fn(cmd.Context(), a, args)
	}
}
