package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ember_server/models"
	"ember_server/store"
)

func TestSyncCreatesThenRefreshes(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	user, err := env.users.Sync(ctx, "clerk_1", SyncInput{Email: "a@example.com", Name: "Ada"})
	require.NoError(t, err)
	assert.NotEmpty(t, user.UserID)
	assert.Equal(t, "clerk_1", user.ClerkID)
	assert.Equal(t, "Ada", user.Name)

	again, err := env.users.Sync(ctx, "clerk_1", SyncInput{Email: "a@example.com", Name: "Ada L."})
	require.NoError(t, err)
	assert.Equal(t, user.UserID, again.UserID)
	assert.Equal(t, "Ada L.", again.Name)
}

func TestSyncWithoutIdentity(t *testing.T) {
	env := newTestEnv()
	_, err := env.users.Sync(context.Background(), "", SyncInput{})
	assert.ErrorIs(t, err, ErrUnauthenticated)
}

func TestUpdateProfile(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	env.addUser(t, "alice", "female", "male")

	updated, err := env.users.UpdateProfile(ctx, "alice", ProfileInput{
		Bio: strPtr("hi there"),
		Age: intPtr(29),
	})
	require.NoError(t, err)
	assert.Equal(t, "hi there", updated.Bio)
	assert.Equal(t, 29, updated.Age)

	_, err = env.users.UpdateProfile(ctx, "alice", ProfileInput{Age: intPtr(15)})
	assert.ErrorIs(t, err, ErrPreconditionFailed)
}

func TestDeleteAccountCascades(t *testing.T) {
	env, sessionID := setupPair(t)
	ctx := context.Background()
	matchID := env.promote(t, "alice", "bob", sessionID)

	_, err := env.chat.Send(ctx, "alice", SendInput{SessionID: sessionID, Content: "hello"})
	require.NoError(t, err)

	require.NoError(t, env.users.DeleteAccount(ctx, "alice"))

	_, err = env.store.GetUser(ctx, "u_alice")
	assert.ErrorIs(t, err, store.ErrNotFound)

	_, err = env.store.GetMatch(ctx, matchID)
	assert.ErrorIs(t, err, store.ErrNotFound)

	session, err := env.store.GetSession(ctx, sessionID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusEnded, session.Status)

	msgs, err := env.store.ListMessages(ctx, sessionID, 10)
	require.NoError(t, err)
	assert.Empty(t, msgs)
}

func intPtr(v int) *int { return &v }
