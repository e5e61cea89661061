// Package xdg resolves XDG Base Directory paths for sessionctl.
// When the XDG environment variables are unset it falls back to the usual
// locations under the home directory. Directories are created private (0700)
// because they hold the config file and the encrypted keyring.
package xdg

import (
	"os"
	"path/filepath"
)

// AppName is the directory name used under every XDG base.
const AppName = "sessionctl"

// ConfigDir returns the XDG config directory for sessionctl.
// It falls back to ~/.config/sessionctl when XDG_CONFIG_HOME is unset.
func ConfigDir() (string, error) {
	return resolve("XDG_CONFIG_HOME", ".config")
}

// StateDir returns the XDG state directory for sessionctl.
// It falls back to ~/.local/state/sessionctl when XDG_STATE_HOME is unset.
func StateDir() (string, error) {
	return resolve("XDG_STATE_HOME", filepath.Join(".local", "state"))
}

func resolve(env, homeRel string) (string, error) {
	base := os.Getenv(env)
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		base = filepath.Join(home, homeRel)
	}
	dir := filepath.Join(base, AppName)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return "", err
	}
	return dir, nil
}
