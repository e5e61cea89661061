// Copyright (c) 2025 Sessionctl
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package keychain stores the CLI's session secrets in the OS keychain or
// credential store, falling back to an encrypted file keyring where no native
// store exists. The only secret kept today is the serialized session snapshot
// (the auth server's cookies).
package keychain

import (
	"errors"
	"io/fs"
	"runtime"
	"strings"
	"sync"

	"github.com/99designs/keyring"
)

// ServiceName identifies our keychain/credential store namespace.
const ServiceName = "sessionctl"

// Keys used for storing secrets in the keyring.
const (
	KeySession = "session_snapshot"
)

// Options selects and unlocks the keyring backend.
type Options struct {
	// Backend forces a single backend by name ("keychain", "wincred",
	// "secret-service", "kwallet", "pass", "keyctl", "file").
	Backend string
	// FileDir is where the file backend keeps its encrypted items.
	FileDir string
	// FilePassword unlocks the file backend. Empty means prompt on the terminal.
	FilePassword string
}

// Manager provides thread-safe operations on the keyring.
type Manager struct {
	mu   sync.RWMutex
	ring keyring.Keyring
}

// NewManager opens the keyring described by opts.
func NewManager(opts Options) (*Manager, error) {
	ring, err := openRing(opts)
	if err != nil {
		return nil, err
	}
	return &Manager{ring: ring}, nil
}

// NewManagerWithRing wraps an already opened keyring.
func NewManagerWithRing(ring keyring.Keyring) *Manager {
	return &Manager{ring: ring}
}

// NewMemoryManager returns a Manager backed by an in-memory keyring.
func NewMemoryManager() *Manager {
	return &Manager{ring: keyring.NewArrayKeyring(nil)}
}

func openRing(opts Options) (keyring.Keyring, error) {
	cfg := keyring.Config{
		ServiceName:     ServiceName,
		AllowedBackends: allowedBackends(opts.Backend),
		PassPrefix:      ServiceName,
		FileDir:         opts.FileDir,
	}
	if opts.FilePassword != "" {
		cfg.FilePasswordFunc = keyring.FixedStringPrompt(opts.FilePassword)
	} else {
		cfg.FilePasswordFunc = keyring.TerminalPrompt
	}
	if runtime.GOOS == "windows" {
		cfg.WinCredPrefix = ServiceName
	}

	ring, err := keyring.Open(cfg)
	if err != nil {
		if errors.Is(err, keyring.ErrNoAvailImpl) {
			return nil, errors.New("no keyring backend available; set SESSIONCTL_KEYRING_BACKEND=file and SESSIONCTL_KEYRING_PASSWORD")
		}
		return nil, err
	}
	return ring, nil
}

// allowedBackends returns the native backends for the current OS followed by
// the file backend, or only the named backend when one is forced.
func allowedBackends(forced string) []keyring.BackendType {
	if f := strings.TrimSpace(strings.ToLower(forced)); f != "" {
		return []keyring.BackendType{keyring.BackendType(f)}
	}
	switch runtime.GOOS {
	case "darwin":
		return []keyring.BackendType{keyring.KeychainBackend, keyring.PassBackend, keyring.FileBackend}
	case "windows":
		return []keyring.BackendType{keyring.WinCredBackend, keyring.FileBackend}
	}
	return []keyring.BackendType{keyring.SecretServiceBackend, keyring.KWalletBackend, keyring.PassBackend, keyring.FileBackend}
}

// SaveSession stores the serialized session snapshot.
func (m *Manager) SaveSession(data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.ring.Set(keyring.Item{Key: KeySession, Data: data, Label: ServiceName + " session"})
}

// LoadSession retrieves the serialized session snapshot. A missing item
// yields nil data and no error.
func (m *Manager) LoadSession() ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	it, err := m.ring.Get(KeySession)
	if err != nil {
		if errors.Is(err, keyring.ErrKeyNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return it.Data, nil
}

// ClearSession removes the stored snapshot. Removing a missing item is not an error.
func (m *Manager) ClearSession() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	err := m.ring.Remove(KeySession)
	if err != nil && !errors.Is(err, keyring.ErrKeyNotFound) && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}
