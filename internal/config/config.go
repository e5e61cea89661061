// Package config loads and stores CLI configuration in the XDG config dir.
// Only non-secret settings are kept here; session cookies go to the OS keychain.
//
// Precedence, lowest first: built-in defaults, config.json, .env files,
// process environment.
package config

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"sessionctl/cli/internal/endpoints"
	"sessionctl/cli/internal/xdg"
)

// Environment variables recognised by Load.
const (
	EnvServer          = "SESSIONCTL_SERVER"
	EnvTimeout         = "SESSIONCTL_TIMEOUT"
	EnvVerbose         = "SESSIONCTL_VERBOSE"
	EnvKeyringBackend  = "SESSIONCTL_KEYRING_BACKEND"
	EnvKeyringPassword = "SESSIONCTL_KEYRING_PASSWORD"
)

// Config holds non-sensitive CLI settings.
type Config struct {
	ServerURL      string                  `json:"server_url"`
	TimeoutSeconds int                     `json:"timeout_seconds"`
	LogLevel       string                  `json:"log_level"`
	Endpoints      endpoints.HTTPEndpoints `json:"endpoints"`
	KeyringBackend string                  `json:"keyring_backend,omitempty"`

	// KeyringPassword unlocks the file keyring. Never written to disk.
	KeyringPassword string `json:"-"`
}

// Defaults returns the configuration used when no file exists.
func Defaults() Config {
	return Config{
		ServerURL:      "http://localhost:5000/api",
		TimeoutSeconds: 15,
		LogLevel:       "info",
		Endpoints:      endpoints.Defaults(),
	}
}

// Verbose reports whether debug logging is on.
func (c Config) Verbose() bool {
	return strings.EqualFold(c.LogLevel, "debug")
}

// path returns the path to the config file.
func path() (string, error) {
	dir, err := xdg.ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// Load reads configuration; missing file returns defaults. Environment
// overrides are applied afterwards.
func Load() (Config, error) {
	p, err := path()
	if err != nil {
		return Config{}, err
	}
	c, err := loadFile(p)
	if err != nil {
		return c, err
	}
	loadDotEnv(filepath.Join(filepath.Dir(p), ".env"), ".env")
	applyEnv(&c)
	return c, nil
}

func loadFile(p string) (Config, error) {
	c := Defaults()
	data, err := os.ReadFile(p)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return c, nil
		}
		return c, err
	}
	if err := json.Unmarshal(data, &c); err != nil {
		return c, err
	}
	c.Endpoints = c.Endpoints.Merge(endpoints.Defaults())
	if c.TimeoutSeconds <= 0 {
		c.TimeoutSeconds = Defaults().TimeoutSeconds
	}
	return c, nil
}

// loadDotEnv loads each existing file; variables already set are kept.
func loadDotEnv(files ...string) {
	for _, f := range files {
		if _, err := os.Stat(f); err == nil {
			_ = godotenv.Load(f)
		}
	}
}

func applyEnv(c *Config) {
	if v := strings.TrimSpace(os.Getenv(EnvServer)); v != "" {
		c.ServerURL = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvTimeout)); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			c.TimeoutSeconds = n
		}
	}
	if os.Getenv(EnvVerbose) == "1" {
		c.LogLevel = "debug"
	}
	if v := strings.TrimSpace(os.Getenv(EnvKeyringBackend)); v != "" {
		c.KeyringBackend = v
	}
	c.KeyringPassword = os.Getenv(EnvKeyringPassword)
}

// Save writes configuration with 0600 permissions.
func Save(c Config) error {
	p, err := path()
	if err != nil {
		return err
	}
	b, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(p, b, 0o600)
}

// Update applies fn to the configuration stored on disk and saves the result.
// Environment overrides are not applied, so they never end up in the file.
func Update(fn func(*Config)) (Config, error) {
	p, err := path()
	if err != nil {
		return Config{}, err
	}
	c, err := loadFile(p)
	if err != nil {
		return c, err
	}
	fn(&c)
	return c, Save(c)
}
