package crypto

import (
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateKeyPair(t *testing.T) {
	a, err := GenerateKeyPair()
	require.NoError(t, err)
	b, err := GenerateKeyPair()
	require.NoError(t, err)

	assert.NotEqual(t, a.PublicKey, b.PublicKey)
	assert.NotEqual(t, a.PrivateKey, b.PrivateKey)

	raw, err := base64.StdEncoding.DecodeString(a.PublicKey)
	require.NoError(t, err)
	assert.Len(t, raw, 32)
}

func TestSharedSecretSymmetry(t *testing.T) {
	alice, err := GenerateKeyPair()
	require.NoError(t, err)
	bob, err := GenerateKeyPair()
	require.NoError(t, err)

	fromAlice, err := DeriveSharedSecret(alice.PrivateKey, bob.PublicKey)
	require.NoError(t, err)
	fromBob, err := DeriveSharedSecret(bob.PrivateKey, alice.PublicKey)
	require.NoError(t, err)

	assert.Equal(t, fromAlice, fromBob)
}

func TestEncryptDecryptRoundTrip(t *testing.T) {
	alice, _ := GenerateKeyPair()
	bob, _ := GenerateKeyPair()
	secret, err := DeriveSharedSecret(alice.PrivateKey, bob.PublicKey)
	require.NoError(t, err)

	payload, err := Encrypt("hey, how was your day?", secret)
	require.NoError(t, err)
	assert.NotEmpty(t, payload.Ciphertext)
	assert.NotEmpty(t, payload.Nonce)

	plaintext, err := Decrypt(payload.Ciphertext, payload.Nonce, secret)
	require.NoError(t, err)
	assert.Equal(t, "hey, how was your day?", plaintext)
}

func TestEncryptUsesFreshNonce(t *testing.T) {
	alice, _ := GenerateKeyPair()
	bob, _ := GenerateKeyPair()
	secret, _ := DeriveSharedSecret(alice.PrivateKey, bob.PublicKey)

	first, err := Encrypt("same message", secret)
	require.NoError(t, err)
	second, err := Encrypt("same message", secret)
	require.NoError(t, err)

	assert.NotEqual(t, first.Nonce, second.Nonce)
	assert.NotEqual(t, first.Ciphertext, second.Ciphertext)
}

func TestDecryptFailsClosed(t *testing.T) {
	alice, _ := GenerateKeyPair()
	bob, _ := GenerateKeyPair()
	eve, _ := GenerateKeyPair()

	secret, _ := DeriveSharedSecret(alice.PrivateKey, bob.PublicKey)
	payload, err := Encrypt("private", secret)
	require.NoError(t, err)

	// Wrong key.
	wrongSecret, _ := DeriveSharedSecret(eve.PrivateKey, bob.PublicKey)
	_, err = Decrypt(payload.Ciphertext, payload.Nonce, wrongSecret)
	assert.ErrorIs(t, err, ErrDecryptionFailed)

	// Corrupted ciphertext.
	raw, _ := base64.StdEncoding.DecodeString(payload.Ciphertext)
	raw[0] ^= 0xff
	_, err = Decrypt(base64.StdEncoding.EncodeToString(raw), payload.Nonce, secret)
	assert.ErrorIs(t, err, ErrDecryptionFailed)

	// Garbage nonce.
	_, err = Decrypt(payload.Ciphertext, "not base64!!", secret)
	assert.ErrorIs(t, err, ErrDecryptionFailed)
}

func TestDeriveSharedSecretRejectsBadKeys(t *testing.T) {
	alice, _ := GenerateKeyPair()

	_, err := DeriveSharedSecret("short", alice.PublicKey)
	assert.Error(t, err)

	_, err = DeriveSharedSecret(alice.PrivateKey, base64.StdEncoding.EncodeToString([]byte("too-short")))
	assert.Error(t, err)
}
