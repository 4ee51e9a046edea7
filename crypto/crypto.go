// Package crypto is the end-to-end encryption engine.
//
// Each user owns an X25519 keypair; public keys are published to the
// server, private keys stay on the client. For any two users the shared
// secret is computed with box.Precompute, so both sides derive the same
// key independently. Messages are sealed with secretbox
// (XSalsa20-Poly1305) under a fresh random 24-byte nonce; the server
// only ever stores ciphertext+nonce.
package crypto

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"

	"golang.org/x/crypto/nacl/box"
	"golang.org/x/crypto/nacl/secretbox"
)

// ErrDecryptionFailed is returned when a ciphertext cannot be opened.
// Decryption fails closed: a wrong key or corrupted payload never yields
// garbled plaintext.
var ErrDecryptionFailed = errors.New("decryption failed: invalid key or corrupted data")

// KeyPair holds a base64-encoded X25519 keypair.
type KeyPair struct {
	PublicKey  string `json:"publicKey"`
	PrivateKey string `json:"privateKey"`
}

// EncryptedPayload is what the server stores for an encrypted message.
type EncryptedPayload struct {
	Ciphertext string `json:"ciphertext"`
	Nonce      string `json:"nonce"`
}

// GenerateKeyPair creates a fresh random X25519 keypair. Deterministic
// derivation from a user ID is deprecated; losing an unbacked-up private
// key permanently forfeits old ciphertexts.
func GenerateKeyPair() (KeyPair, error) {
	pub, priv, err := box.GenerateKey(rand.Reader)
	if err != nil {
		return KeyPair{}, fmt.Errorf("failed to generate keypair: %w", err)
	}
	return KeyPair{
		PublicKey:  base64.StdEncoding.EncodeToString(pub[:]),
		PrivateKey: base64.StdEncoding.EncodeToString(priv[:]),
	}, nil
}

// DeriveSharedSecret computes the symmetric secret for a conversation
// from own private key and the partner's public key. Both directions
// yield the same secret.
func DeriveSharedSecret(myPrivateKey, theirPublicKey string) (string, error) {
	priv, err := decodeKey(myPrivateKey)
	if err != nil {
		return "", fmt.Errorf("invalid private key: %w", err)
	}
	pub, err := decodeKey(theirPublicKey)
	if err != nil {
		return "", fmt.Errorf("invalid public key: %w", err)
	}

	var shared [32]byte
	box.Precompute(&shared, pub, priv)
	return base64.StdEncoding.EncodeToString(shared[:]), nil
}

// Encrypt seals plaintext under the shared secret with a fresh random nonce.
func Encrypt(plaintext, sharedSecret string) (EncryptedPayload, error) {
	key, err := decodeKey(sharedSecret)
	if err != nil {
		return EncryptedPayload{}, fmt.Errorf("invalid shared secret: %w", err)
	}

	var nonce [24]byte
	if _, err := rand.Read(nonce[:]); err != nil {
		return EncryptedPayload{}, fmt.Errorf("failed to generate nonce: %w", err)
	}

	ciphertext := secretbox.Seal(nil, []byte(plaintext), &nonce, key)
	return EncryptedPayload{
		Ciphertext: base64.StdEncoding.EncodeToString(ciphertext),
		Nonce:      base64.StdEncoding.EncodeToString(nonce[:]),
	}, nil
}

// Decrypt opens a ciphertext+nonce pair under the shared secret.
func Decrypt(ciphertext, nonce, sharedSecret string) (string, error) {
	key, err := decodeKey(sharedSecret)
	if err != nil {
		return "", fmt.Errorf("invalid shared secret: %w", err)
	}
	nonceBytes, err := base64.StdEncoding.DecodeString(nonce)
	if err != nil || len(nonceBytes) != 24 {
		return "", ErrDecryptionFailed
	}
	ciphertextBytes, err := base64.StdEncoding.DecodeString(ciphertext)
	if err != nil {
		return "", ErrDecryptionFailed
	}

	var nonceArr [24]byte
	copy(nonceArr[:], nonceBytes)

	plaintext, ok := secretbox.Open(nil, ciphertextBytes, &nonceArr, key)
	if !ok {
		return "", ErrDecryptionFailed
	}
	return string(plaintext), nil
}

func decodeKey(encoded string) (*[32]byte, error) {
	raw, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, err
	}
	if len(raw) != 32 {
		return nil, fmt.Errorf("bad key size: %d", len(raw))
	}
	var key [32]byte
	copy(key[:], raw)
	return &key, nil
}
