package keystore

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(t.TempDir())
	require.NoError(t, err)
	return s
}

func TestLoadOrCreate(t *testing.T) {
	s := newTestStore(t)

	keys, created, err := s.LoadOrCreate("user_1")
	require.NoError(t, err)
	assert.True(t, created)
	assert.NotEmpty(t, keys.PublicKey)
	assert.NotEmpty(t, keys.PrivateKey)

	again, created, err := s.LoadOrCreate("user_1")
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, keys, again)
}

func TestLoadMissing(t *testing.T) {
	s := newTestStore(t)
	_, err := s.Load("nobody")
	assert.ErrorIs(t, err, ErrNoKeys)
	assert.False(t, s.Has("nobody"))
}

func TestRegenerateReplacesKeys(t *testing.T) {
	s := newTestStore(t)
	old, _, err := s.LoadOrCreate("user_1")
	require.NoError(t, err)

	fresh, err := s.Regenerate("user_1")
	require.NoError(t, err)
	assert.NotEqual(t, old.PrivateKey, fresh.PrivateKey)

	loaded, err := s.Load("user_1")
	require.NoError(t, err)
	assert.Equal(t, fresh, loaded)
}

func TestDeleteIdempotent(t *testing.T) {
	s := newTestStore(t)
	_, _, err := s.LoadOrCreate("user_1")
	require.NoError(t, err)

	require.NoError(t, s.Delete("user_1"))
	assert.False(t, s.Has("user_1"))
	require.NoError(t, s.Delete("user_1"))
}

func TestBackupRoundTripThroughStore(t *testing.T) {
	s := newTestStore(t)
	keys, _, err := s.LoadOrCreate("user_1")
	require.NoError(t, err)

	blob, err := s.ExportBackup("user_1", "hunter22")
	require.NoError(t, err)

	// Restore onto a fresh device.
	other := newTestStore(t)
	restored, err := other.ImportBackup("user_1", blob, "hunter22")
	require.NoError(t, err)
	assert.Equal(t, keys, restored)
	assert.True(t, other.Has("user_1"))
}

func TestSecretCache(t *testing.T) {
	s := newTestStore(t)
	alice, _, err := s.LoadOrCreate("alice")
	require.NoError(t, err)
	bob, _, err := s.LoadOrCreate("bob")
	require.NoError(t, err)

	cache := NewSecretCache()
	fromAlice, err := cache.SharedSecret("alice", "bob", alice.PrivateKey, bob.PublicKey)
	require.NoError(t, err)
	fromBob, err := cache.SharedSecret("bob", "alice", bob.PrivateKey, alice.PublicKey)
	require.NoError(t, err)

	// Both directions share one cache slot, so the second call returns
	// the memoized value and the secrets necessarily agree.
	assert.Equal(t, fromAlice, fromBob)

	cache.Clear()
	again, err := cache.SharedSecret("alice", "bob", alice.PrivateKey, bob.PublicKey)
	require.NoError(t, err)
	assert.Equal(t, fromAlice, again)
}
