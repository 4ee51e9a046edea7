package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ember_server/crypto"
)

func TestPublishAndFetchPublicKey(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	env.addUser(t, "alice", "female", "male")

	status, err := env.encryption.MyStatus(ctx, "alice")
	require.NoError(t, err)
	assert.False(t, status.HasPublicKey)

	keys, err := crypto.GenerateKeyPair()
	require.NoError(t, err)
	require.NoError(t, env.encryption.UpdatePublicKey(ctx, "alice", keys.PublicKey))

	status, err = env.encryption.MyStatus(ctx, "alice")
	require.NoError(t, err)
	assert.True(t, status.HasPublicKey)
	assert.Equal(t, keys.PublicKey, status.PublicKey)

	fetched, err := env.encryption.GetPublicKey(ctx, "u_alice")
	require.NoError(t, err)
	assert.Equal(t, keys.PublicKey, fetched)

	assert.Error(t, env.encryption.UpdatePublicKey(ctx, "alice", ""))
}

func TestChatKeysReadiness(t *testing.T) {
	env, sessionID := setupPair(t)
	ctx := context.Background()

	keys, err := env.encryption.ChatKeys(ctx, "alice", sessionID)
	require.NoError(t, err)
	assert.False(t, keys.Ready)

	aliceKeys, _ := crypto.GenerateKeyPair()
	bobKeys, _ := crypto.GenerateKeyPair()
	require.NoError(t, env.encryption.UpdatePublicKey(ctx, "alice", aliceKeys.PublicKey))

	// Only one side published: still not ready.
	keys, err = env.encryption.ChatKeys(ctx, "alice", sessionID)
	require.NoError(t, err)
	assert.False(t, keys.Ready)

	require.NoError(t, env.encryption.UpdatePublicKey(ctx, "bob", bobKeys.PublicKey))
	keys, err = env.encryption.ChatKeys(ctx, "alice", sessionID)
	require.NoError(t, err)
	assert.True(t, keys.Ready)
	assert.Equal(t, aliceKeys.PublicKey, keys.MyPublicKey)
	assert.Equal(t, bobKeys.PublicKey, keys.PartnerPublicKey)

	// Both sides can now derive the same conversation secret.
	fromAlice, err := crypto.DeriveSharedSecret(aliceKeys.PrivateKey, keys.PartnerPublicKey)
	require.NoError(t, err)
	bobView, err := env.encryption.ChatKeys(ctx, "bob", sessionID)
	require.NoError(t, err)
	fromBob, err := crypto.DeriveSharedSecret(bobKeys.PrivateKey, bobView.PartnerPublicKey)
	require.NoError(t, err)
	assert.Equal(t, fromAlice, fromBob)
}
