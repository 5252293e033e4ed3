// Copyright (c) 2025 The jobdash Authors
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package keychain stores the database connection string in the OS credential store.
// jobdash keeps exactly one secret there: the DSN saved by 'jobdash connect'. Everything
// else lives in the plain config file.
//
// macOS Keychain, Windows Credential Manager, and on Linux the Secret Service, KWallet or
// pass are used through 99designs/keyring. There is deliberately no encrypted-file fallback.
package keychain

import (
	"errors"
	"runtime"
	"strings"
	"sync"

	"github.com/99designs/keyring"
)

// ServiceName identifies our keychain/credential store namespace.
const ServiceName = "jobdash"

// KeyDBDSN is the item holding the saved connection string.
const KeyDBDSN = "db_dsn"

// ErrNotFound is returned when no DSN has been saved.
var ErrNotFound = errors.New("no database connection saved in keychain")

// Store is the minimal secret store the Manager needs.
type Store interface {
	Set(key, value string) error
	Get(key string) (string, error)
	Delete(key string) error
}

// Manager provides thread-safe access to the saved DSN.
type Manager struct {
	mu    sync.RWMutex
	store Store
}

// Global keychain manager instance
var (
	globalManager *Manager
	mu            sync.Mutex
)

// NewManager opens the OS keyring.
func NewManager() (*Manager, error) {
	ring, err := openRing()
	if err != nil {
		return nil, err
	}
	return &Manager{store: ringStore{ring: ring}}, nil
}

// NewManagerWithStore wraps an arbitrary Store, e.g. an in-memory one in tests.
func NewManagerWithStore(s Store) *Manager {
	return &Manager{store: s}
}

// GetManager returns the process-wide manager, opening the keyring on first use.
// A failed open is retried on the next call.
func GetManager() (*Manager, error) {
	mu.Lock()
	defer mu.Unlock()

	if globalManager != nil {
		return globalManager, nil
	}
	m, err := NewManager()
	if err != nil {
		return nil, err
	}
	globalManager = m
	return globalManager, nil
}

// openRing opens the OS keyring using native platform backends only.
func openRing() (keyring.Keyring, error) {
	var allowedBackends []keyring.BackendType
	switch runtime.GOOS {
	case "darwin":
		allowedBackends = []keyring.BackendType{keyring.KeychainBackend, keyring.PassBackend}
	case "windows":
		allowedBackends = []keyring.BackendType{keyring.WinCredBackend}
	case "linux", "freebsd", "openbsd":
		allowedBackends = []keyring.BackendType{keyring.SecretServiceBackend, keyring.KWalletBackend, keyring.PassBackend}
	default:
		return nil, errors.New("secure storage not supported on " + runtime.GOOS)
	}

	cfg := keyring.Config{
		ServiceName:              ServiceName,
		AllowedBackends:          allowedBackends,
		PassPrefix:               ServiceName,
		WinCredPrefix:            ServiceName,
		KeychainTrustApplication: true,
		KWalletAppID:             ServiceName,
		KWalletFolder:            ServiceName,
		LibSecretCollectionName:  "login",
	}

	ring, err := keyring.Open(cfg)
	if err != nil {
		if runtime.GOOS == "darwin" {
			return nil, errors.New("macOS Keychain unavailable. Install 'pass' as a fallback: brew install pass gnupg && pass init <gpg-key-id>")
		}
		return nil, err
	}
	return ring, nil
}

// SaveDBDSN stores the database DSN in the keychain.
// This method is thread-safe.
func (m *Manager) SaveDBDSN(dsn string) error {
	dsn = strings.TrimSpace(dsn)
	if dsn == "" {
		return errors.New("refusing to save an empty DSN")
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	return m.store.Set(KeyDBDSN, dsn)
}

// LoadDBDSN retrieves the database DSN from the keychain. ErrNotFound means nothing
// has been saved yet.
// This method is thread-safe.
func (m *Manager) LoadDBDSN() (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	v, err := m.store.Get(KeyDBDSN)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(v) == "" {
		return "", ErrNotFound
	}
	return v, nil
}

// ClearDB removes the saved DSN. Removing a DSN that is not there is not an error.
// This method is thread-safe.
func (m *Manager) ClearDB() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.store.Delete(KeyDBDSN); err != nil && !errors.Is(err, ErrNotFound) {
		return err
	}
	return nil
}

// ringStore adapts keyring.Keyring to Store.
type ringStore struct {
	ring keyring.Keyring
}

func (r ringStore) Set(key, value string) error {
	return r.ring.Set(keyring.Item{Key: key, Data: []byte(value), Label: ServiceName + " " + key})
}

func (r ringStore) Get(key string) (string, error) {
	it, err := r.ring.Get(key)
	if errors.Is(err, keyring.ErrKeyNotFound) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", err
	}
	return string(it.Data), nil
}

func (r ringStore) Delete(key string) error {
	err := r.ring.Remove(key)
	if errors.Is(err, keyring.ErrKeyNotFound) {
		return ErrNotFound
	}
	return err
}
