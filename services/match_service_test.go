package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ember_server/models"
)

func setupMatch(t *testing.T) (*testEnv, string, string) {
	t.Helper()
	env, sessionID := setupPair(t)
	matchID := env.promote(t, "alice", "bob", sessionID)
	return env, sessionID, matchID
}

func TestListMatches(t *testing.T) {
	env, sessionID, matchID := setupMatch(t)
	ctx := context.Background()

	views, err := env.matches.List(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.Equal(t, matchID, views[0].Match.MatchID)
	assert.Equal(t, "u_bob", views[0].Partner.UserID)
	assert.Equal(t, sessionID, views[0].SessionID)
	assert.Nil(t, views[0].LastMessage)

	_, err = env.chat.Send(ctx, "bob", SendInput{SessionID: sessionID, Content: "hey"})
	require.NoError(t, err)

	views, err = env.matches.List(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, views, 1)
	require.NotNil(t, views[0].LastMessage)
	assert.Equal(t, "hey", views[0].LastMessage.Content)
}

func TestCutConnection(t *testing.T) {
	env, sessionID, matchID := setupMatch(t)
	ctx := context.Background()

	_, err := env.chat.Send(ctx, "alice", SendInput{SessionID: sessionID, Content: "bye"})
	require.NoError(t, err)

	require.NoError(t, env.matches.CutConnection(ctx, "alice", matchID))

	match, err := env.store.GetMatch(ctx, matchID)
	require.NoError(t, err)
	assert.False(t, match.Active())
	assert.Equal(t, "u_alice", match.EndedBy)

	// The attached session is closed and its messages are gone.
	session, err := env.store.GetSession(ctx, sessionID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusEnded, session.Status)
	msgs, err := env.store.ListMessages(ctx, sessionID, 10)
	require.NoError(t, err)
	assert.Empty(t, msgs)

	// Cutting again is a no-op.
	require.NoError(t, env.matches.CutConnection(ctx, "alice", matchID))

	// The cut match no longer shows in either list.
	views, err := env.matches.List(ctx, "bob")
	require.NoError(t, err)
	assert.Empty(t, views)
}

func TestKickedNotice(t *testing.T) {
	env, _, matchID := setupMatch(t)
	ctx := context.Background()

	require.NoError(t, env.matches.CutConnection(ctx, "alice", matchID))

	// Bob sees the notice, Alice does not.
	status, err := env.matches.CheckKickedStatus(ctx, "bob")
	require.NoError(t, err)
	assert.True(t, status.Kicked)
	assert.Equal(t, matchID, status.MatchID)

	status, err = env.matches.CheckKickedStatus(ctx, "alice")
	require.NoError(t, err)
	assert.False(t, status.Kicked)

	// Reading does not consume the notice.
	status, err = env.matches.CheckKickedStatus(ctx, "bob")
	require.NoError(t, err)
	assert.True(t, status.Kicked)

	// Explicit acknowledgement clears it.
	require.NoError(t, env.matches.ClearKickedStatus(ctx, "bob", matchID))
	status, err = env.matches.CheckKickedStatus(ctx, "bob")
	require.NoError(t, err)
	assert.False(t, status.Kicked)
}

func TestPurgeRequiresInactive(t *testing.T) {
	env, _, matchID := setupMatch(t)
	ctx := context.Background()

	err := env.matches.Purge(ctx, "alice", matchID)
	assert.ErrorIs(t, err, ErrPreconditionFailed)

	require.NoError(t, env.matches.CutConnection(ctx, "alice", matchID))
	require.NoError(t, env.matches.Purge(ctx, "alice", matchID))

	_, err = env.store.GetMatch(ctx, matchID)
	assert.Error(t, err)
}

func TestReconnectFlow(t *testing.T) {
	env, _, matchID := setupMatch(t)
	ctx := context.Background()

	// Requests only make sense against a cut connection.
	_, err := env.matches.RequestReconnect(ctx, "alice", matchID)
	assert.ErrorIs(t, err, ErrPreconditionFailed)

	require.NoError(t, env.matches.CutConnection(ctx, "bob", matchID))

	req, err := env.matches.RequestReconnect(ctx, "alice", matchID)
	require.NoError(t, err)
	assert.Equal(t, models.RequestPending, req.Status)
	assert.Equal(t, "u_bob", req.ToUserID)

	// Repeating returns the same pending request.
	again, err := env.matches.RequestReconnect(ctx, "alice", matchID)
	require.NoError(t, err)
	assert.Equal(t, req.RequestID, again.RequestID)

	pending, err := env.matches.PendingRequests(ctx, "bob")
	require.NoError(t, err)
	require.Len(t, pending, 1)

	// Only the addressee may answer.
	_, err = env.matches.RespondChatRequest(ctx, "alice", req.RequestID, true)
	assert.ErrorIs(t, err, ErrUnauthorized)

	answered, err := env.matches.RespondChatRequest(ctx, "bob", req.RequestID, true)
	require.NoError(t, err)
	assert.Equal(t, models.RequestAccepted, answered.Status)
	assert.NotZero(t, answered.RespondedAt)

	// Accepting reactivates the match on a fresh extended session.
	match, err := env.store.GetMatch(ctx, matchID)
	require.NoError(t, err)
	assert.True(t, match.Active())
	assert.Empty(t, match.EndedBy)

	session, err := env.store.GetSession(ctx, match.ChatSessionID)
	require.NoError(t, err)
	assert.Equal(t, models.PhaseExtended, session.Phase)
	assert.Equal(t, models.StatusActive, session.Status)

	// A settled request cannot be answered twice.
	_, err = env.matches.RespondChatRequest(ctx, "bob", req.RequestID, false)
	assert.ErrorIs(t, err, ErrPreconditionFailed)
}

func TestDeclineLeavesMatchInactive(t *testing.T) {
	env, _, matchID := setupMatch(t)
	ctx := context.Background()

	require.NoError(t, env.matches.CutConnection(ctx, "bob", matchID))
	req, err := env.matches.RequestReconnect(ctx, "alice", matchID)
	require.NoError(t, err)

	answered, err := env.matches.RespondChatRequest(ctx, "bob", req.RequestID, false)
	require.NoError(t, err)
	assert.Equal(t, models.RequestDeclined, answered.Status)

	match, err := env.store.GetMatch(ctx, matchID)
	require.NoError(t, err)
	assert.False(t, match.Active())
}

func TestMatchAccessControl(t *testing.T) {
	env, _, matchID := setupMatch(t)
	env.addUser(t, "mallory", "other", models.PreferenceBoth)

	err := env.matches.CutConnection(context.Background(), "mallory", matchID)
	assert.ErrorIs(t, err, ErrUnauthorized)
}
