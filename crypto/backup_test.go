package crypto

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBackupEncryptedRoundTrip(t *testing.T) {
	keys, err := GenerateKeyPair()
	require.NoError(t, err)

	blob, err := ExportBackup("user_123", keys, "correct horse")
	require.NoError(t, err)

	var envelope map[string]interface{}
	require.NoError(t, json.Unmarshal(blob, &envelope))
	assert.EqualValues(t, BackupVersionEncrypted, envelope["version"])
	assert.Equal(t, true, envelope["encrypted"])
	// The private key must never appear in the encrypted envelope.
	assert.NotContains(t, string(blob), keys.PrivateKey)

	restored, err := ImportBackup("user_123", blob, "correct horse")
	require.NoError(t, err)
	assert.Equal(t, keys, restored)
}

func TestBackupWrongPassphrase(t *testing.T) {
	keys, _ := GenerateKeyPair()
	blob, err := ExportBackup("user_123", keys, "correct horse")
	require.NoError(t, err)

	_, err = ImportBackup("user_123", blob, "wrong horse")
	assert.ErrorIs(t, err, ErrDecryptionFailed)

	_, err = ImportBackup("user_123", blob, "")
	assert.ErrorIs(t, err, ErrPassphraseRequired)
}

func TestBackupWrongIdentity(t *testing.T) {
	keys, _ := GenerateKeyPair()
	blob, err := ExportBackup("user_123", keys, "correct horse")
	require.NoError(t, err)

	_, err = ImportBackup("user_456", blob, "correct horse")
	assert.ErrorIs(t, err, ErrWrongIdentity)
}

func TestBackupShortPassphrase(t *testing.T) {
	keys, _ := GenerateKeyPair()
	_, err := ExportBackup("user_123", keys, "abc")
	assert.Error(t, err)
}

func TestBackupLegacyPlaintext(t *testing.T) {
	keys, _ := GenerateKeyPair()

	blob, err := ExportBackup("user_123", keys, "")
	require.NoError(t, err)

	var envelope map[string]interface{}
	require.NoError(t, json.Unmarshal(blob, &envelope))
	assert.EqualValues(t, BackupVersionPlaintext, envelope["version"])

	restored, err := ImportBackup("user_123", blob, "")
	require.NoError(t, err)
	assert.Equal(t, keys, restored)

	_, err = ImportBackup("someone_else", blob, "")
	assert.ErrorIs(t, err, ErrWrongIdentity)
}

func TestImportRejectsGarbage(t *testing.T) {
	_, err := ImportBackup("user_123", []byte("not json"), "pass")
	assert.ErrorIs(t, err, ErrBadBackup)

	_, err = ImportBackup("user_123", []byte(`{"version":99}`), "pass")
	assert.ErrorIs(t, err, ErrBadBackup)
}
