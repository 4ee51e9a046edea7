package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"

	"golang.org/x/crypto/argon2"
)

// Backup file format. Version 2 wraps the keypair in a passphrase-derived
// key (argon2id + AES-GCM). Version 1 is the legacy plaintext export,
// still importable for backward compatibility.
const (
	BackupVersionPlaintext = 1
	BackupVersionEncrypted = 2
)

// MinPassphraseLength is the floor for encrypted exports.
const MinPassphraseLength = 6

var (
	// ErrPassphraseRequired is returned when importing an encrypted
	// backup without a passphrase.
	ErrPassphraseRequired = errors.New("passphrase required for encrypted backup")
	// ErrWrongIdentity is returned when a backup belongs to a different user.
	ErrWrongIdentity = errors.New("backup is for a different user")
	// ErrBadBackup is returned for unparseable or unsupported backup files.
	ErrBadBackup = errors.New("invalid or unsupported backup")
)

// argon2id parameters for the backup KDF.
const (
	kdfTime    = 1
	kdfMemory  = 64 * 1024 // KiB
	kdfThreads = 4
	kdfKeyLen  = 32
)

type backupEnvelope struct {
	Version   int    `json:"version"`
	Encrypted bool   `json:"encrypted,omitempty"`
	Data      string `json:"data,omitempty"`
	Salt      string `json:"salt,omitempty"`
	IV        string `json:"iv,omitempty"`

	// Version 1 plaintext fields
	ClerkID    string `json:"clerkId,omitempty"`
	PublicKey  string `json:"publicKey,omitempty"`
	PrivateKey string `json:"privateKey,omitempty"`
}

type backupKeyData struct {
	ClerkID    string `json:"clerkId"`
	PublicKey  string `json:"publicKey"`
	PrivateKey string `json:"privateKey"`
}

// ExportBackup serializes a keypair for offline storage. With a
// passphrase the result is the version-2 encrypted envelope; an empty
// passphrase produces the legacy version-1 plaintext format.
func ExportBackup(clerkID string, keys KeyPair, passphrase string) ([]byte, error) {
	if passphrase == "" {
		return json.MarshalIndent(backupEnvelope{
			Version:    BackupVersionPlaintext,
			ClerkID:    clerkID,
			PublicKey:  keys.PublicKey,
			PrivateKey: keys.PrivateKey,
		}, "", "  ")
	}
	if len(passphrase) < MinPassphraseLength {
		return nil, fmt.Errorf("passphrase must be at least %d characters", MinPassphraseLength)
	}

	payload, err := json.Marshal(backupKeyData{
		ClerkID:    clerkID,
		PublicKey:  keys.PublicKey,
		PrivateKey: keys.PrivateKey,
	})
	if err != nil {
		return nil, err
	}

	salt := make([]byte, 16)
	if _, err := rand.Read(salt); err != nil {
		return nil, fmt.Errorf("failed to generate salt: %w", err)
	}
	iv := make([]byte, 12)
	if _, err := rand.Read(iv); err != nil {
		return nil, fmt.Errorf("failed to generate IV: %w", err)
	}

	gcm, err := newGCM(passphrase, salt)
	if err != nil {
		return nil, err
	}
	sealed := gcm.Seal(nil, iv, payload, nil)

	return json.MarshalIndent(backupEnvelope{
		Version:   BackupVersionEncrypted,
		Encrypted: true,
		Data:      base64.StdEncoding.EncodeToString(sealed),
		Salt:      base64.StdEncoding.EncodeToString(salt),
		IV:        base64.StdEncoding.EncodeToString(iv),
	}, "", "  ")
}

// ImportBackup restores a keypair from a backup file. A wrong passphrase
// fails closed with ErrDecryptionFailed; it never yields corrupt keys.
func ImportBackup(clerkID string, backupJSON []byte, passphrase string) (KeyPair, error) {
	var envelope backupEnvelope
	if err := json.Unmarshal(backupJSON, &envelope); err != nil {
		return KeyPair{}, ErrBadBackup
	}

	switch {
	case envelope.Version == BackupVersionEncrypted && envelope.Encrypted:
		if passphrase == "" {
			return KeyPair{}, ErrPassphraseRequired
		}
		salt, err := base64.StdEncoding.DecodeString(envelope.Salt)
		if err != nil {
			return KeyPair{}, ErrBadBackup
		}
		iv, err := base64.StdEncoding.DecodeString(envelope.IV)
		if err != nil || len(iv) != 12 {
			return KeyPair{}, ErrBadBackup
		}
		sealed, err := base64.StdEncoding.DecodeString(envelope.Data)
		if err != nil {
			return KeyPair{}, ErrBadBackup
		}

		gcm, err := newGCM(passphrase, salt)
		if err != nil {
			return KeyPair{}, err
		}
		payload, err := gcm.Open(nil, iv, sealed, nil)
		if err != nil {
			return KeyPair{}, ErrDecryptionFailed
		}

		var keyData backupKeyData
		if err := json.Unmarshal(payload, &keyData); err != nil {
			return KeyPair{}, ErrDecryptionFailed
		}
		if keyData.ClerkID != clerkID {
			return KeyPair{}, ErrWrongIdentity
		}
		return KeyPair{PublicKey: keyData.PublicKey, PrivateKey: keyData.PrivateKey}, nil

	case envelope.Version == BackupVersionPlaintext:
		if envelope.ClerkID != clerkID {
			return KeyPair{}, ErrWrongIdentity
		}
		return KeyPair{PublicKey: envelope.PublicKey, PrivateKey: envelope.PrivateKey}, nil

	default:
		return KeyPair{}, ErrBadBackup
	}
}

func newGCM(passphrase string, salt []byte) (cipher.AEAD, error) {
	key := argon2.IDKey([]byte(passphrase), salt, kdfTime, kdfMemory, kdfThreads, kdfKeyLen)
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}
