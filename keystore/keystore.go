// Package keystore is the client-held identity and key store. Private
// keys live in a per-identity file under a private directory and never
// leave the device except inside a passphrase-encrypted backup blob.
package keystore

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"ember_server/crypto"
)

// ErrNoKeys is returned when no keypair is stored for an identity.
var ErrNoKeys = errors.New("no keys stored for identity")

type storedKeys struct {
	ClerkID    string `json:"clerkId"`
	PublicKey  string `json:"publicKey"`
	PrivateKey string `json:"privateKey"`
	CreatedAt  int64  `json:"createdAt"`
}

// Store persists keypairs under dir, one file per identity, mode 0600.
type Store struct {
	dir string
}

func New(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create key directory: %w", err)
	}
	return &Store{dir: dir}, nil
}

func (s *Store) path(clerkID string) string {
	return filepath.Join(s.dir, clerkID+".json")
}

// Save writes the keypair for an identity, replacing any previous one.
func (s *Store) Save(clerkID string, keys crypto.KeyPair) error {
	data, err := json.Marshal(storedKeys{
		ClerkID:    clerkID,
		PublicKey:  keys.PublicKey,
		PrivateKey: keys.PrivateKey,
		CreatedAt:  time.Now().UnixMilli(),
	})
	if err != nil {
		return err
	}
	if err := os.WriteFile(s.path(clerkID), data, 0600); err != nil {
		return fmt.Errorf("failed to store keys: %w", err)
	}
	return nil
}

// Load returns the stored keypair for an identity.
func (s *Store) Load(clerkID string) (crypto.KeyPair, error) {
	data, err := os.ReadFile(s.path(clerkID))
	if errors.Is(err, os.ErrNotExist) {
		return crypto.KeyPair{}, ErrNoKeys
	}
	if err != nil {
		return crypto.KeyPair{}, fmt.Errorf("failed to read keys: %w", err)
	}
	var stored storedKeys
	if err := json.Unmarshal(data, &stored); err != nil {
		return crypto.KeyPair{}, fmt.Errorf("failed to parse stored keys: %w", err)
	}
	return crypto.KeyPair{PublicKey: stored.PublicKey, PrivateKey: stored.PrivateKey}, nil
}

// Has reports whether a keypair exists for the identity.
func (s *Store) Has(clerkID string) bool {
	_, err := os.Stat(s.path(clerkID))
	return err == nil
}

// Delete removes the identity's keypair (logout or account deletion).
func (s *Store) Delete(clerkID string) error {
	err := os.Remove(s.path(clerkID))
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}

// LoadOrCreate returns the existing keypair or generates and stores a
// fresh one on first use.
func (s *Store) LoadOrCreate(clerkID string) (crypto.KeyPair, bool, error) {
	keys, err := s.Load(clerkID)
	if err == nil {
		return keys, false, nil
	}
	if !errors.Is(err, ErrNoKeys) {
		return crypto.KeyPair{}, false, err
	}
	keys, err = crypto.GenerateKeyPair()
	if err != nil {
		return crypto.KeyPair{}, false, err
	}
	if err := s.Save(clerkID, keys); err != nil {
		return crypto.KeyPair{}, false, err
	}
	return keys, true, nil
}

// Regenerate discards the stored keypair and creates a fresh one. Any
// message encrypted under the old keys becomes permanently unreadable,
// so callers must require explicit user confirmation first.
func (s *Store) Regenerate(clerkID string) (crypto.KeyPair, error) {
	keys, err := crypto.GenerateKeyPair()
	if err != nil {
		return crypto.KeyPair{}, err
	}
	if err := s.Save(clerkID, keys); err != nil {
		return crypto.KeyPair{}, err
	}
	return keys, nil
}

// ExportBackup produces a backup blob for the identity's keypair.
func (s *Store) ExportBackup(clerkID, passphrase string) ([]byte, error) {
	keys, err := s.Load(clerkID)
	if err != nil {
		return nil, err
	}
	return crypto.ExportBackup(clerkID, keys, passphrase)
}

// ImportBackup restores a keypair from a backup blob and stores it.
func (s *Store) ImportBackup(clerkID string, backupJSON []byte, passphrase string) (crypto.KeyPair, error) {
	keys, err := crypto.ImportBackup(clerkID, backupJSON, passphrase)
	if err != nil {
		return crypto.KeyPair{}, err
	}
	if err := s.Save(clerkID, keys); err != nil {
		return crypto.KeyPair{}, err
	}
	return keys, nil
}
