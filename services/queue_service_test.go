package services

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ember_server/models"
)

func TestJoinEmptyQueueParks(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	env.addUser(t, "alice", "female", "male")

	result, err := env.queue.Join(ctx, "alice")
	require.NoError(t, err)
	assert.False(t, result.Matched)

	queued, err := env.store.IsQueued(ctx, "u_alice")
	require.NoError(t, err)
	assert.True(t, queued)

	user, err := env.store.GetUser(ctx, "u_alice")
	require.NoError(t, err)
	assert.True(t, user.IsInQueue)
}

func TestJoinPairsCompatibleUsers(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	env.addUser(t, "alice", "female", "male")
	env.addUser(t, "bob", "male", "female")

	sessionID := env.pair(t, "alice", "bob")

	session, err := env.store.GetSession(ctx, sessionID)
	require.NoError(t, err)
	assert.Equal(t, models.PhaseSpeedDating, session.Phase)
	assert.Equal(t, models.StatusActive, session.Status)
	assert.Equal(t, session.StartedAt+models.SpeedDatingDurationMs, session.SpeedDatingEndsAt)
	assert.True(t, session.HasParticipant("u_alice"))
	assert.True(t, session.HasParticipant("u_bob"))

	// Both users are out of the queue.
	for _, id := range []string{"u_alice", "u_bob"} {
		queued, err := env.store.IsQueued(ctx, id)
		require.NoError(t, err)
		assert.False(t, queued, id)
		user, err := env.store.GetUser(ctx, id)
		require.NoError(t, err)
		assert.False(t, user.IsInQueue, id)
	}
}

func TestJoinSkipsIncompatibleUsers(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	env.addUser(t, "alice", "female", "female")
	env.addUser(t, "bob", "male", "female")

	first, err := env.queue.Join(ctx, "alice")
	require.NoError(t, err)
	assert.False(t, first.Matched)

	// Bob wants female and Alice is female, but Alice wants female too.
	second, err := env.queue.Join(ctx, "bob")
	require.NoError(t, err)
	assert.False(t, second.Matched)

	entries, err := env.store.ListQueueEntries(ctx)
	require.NoError(t, err)
	assert.Len(t, entries, 2)
}

func TestJoinPreferenceBothIsWildcard(t *testing.T) {
	env := newTestEnv()
	env.addUser(t, "alice", "female", models.PreferenceBoth)
	env.addUser(t, "bob", "male", models.PreferenceBoth)

	env.pair(t, "alice", "bob")
}

func TestJoinWhileInSession(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	env.addUser(t, "alice", "female", "male")
	env.addUser(t, "bob", "male", "female")
	env.pair(t, "alice", "bob")

	_, err := env.queue.Join(ctx, "alice")
	assert.ErrorIs(t, err, ErrAlreadyInSession)
}

func TestRepeatJoinIsNoOp(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	env.addUser(t, "alice", "female", "male")

	_, err := env.queue.Join(ctx, "alice")
	require.NoError(t, err)
	_, err = env.queue.Join(ctx, "alice")
	require.NoError(t, err)

	entries, err := env.store.ListQueueEntries(ctx)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestJoinUnknownIdentity(t *testing.T) {
	env := newTestEnv()
	_, err := env.queue.Join(context.Background(), "stranger")
	assert.ErrorIs(t, err, ErrAccountNotSynced)
}

func TestLeaveIsIdempotent(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	env.addUser(t, "alice", "female", "male")

	_, err := env.queue.Join(ctx, "alice")
	require.NoError(t, err)

	require.NoError(t, env.queue.Leave(ctx, "alice"))
	require.NoError(t, env.queue.Leave(ctx, "alice"))

	queued, err := env.store.IsQueued(ctx, "u_alice")
	require.NoError(t, err)
	assert.False(t, queued)
}

func TestStatus(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	env.addUser(t, "alice", "female", "male")
	env.addUser(t, "bob", "male", "female")

	status, err := env.queue.Status(ctx, "alice")
	require.NoError(t, err)
	assert.False(t, status.InQueue)
	assert.False(t, status.Matched)
	assert.Empty(t, status.ActiveSession)

	_, err = env.queue.Join(ctx, "alice")
	require.NoError(t, err)
	status, err = env.queue.Status(ctx, "alice")
	require.NoError(t, err)
	assert.True(t, status.InQueue)
	assert.False(t, status.Matched)

	// Bob joins and picks Alice up.
	result, err := env.queue.Join(ctx, "bob")
	require.NoError(t, err)
	require.True(t, result.Matched)

	status, err = env.queue.Status(ctx, "alice")
	require.NoError(t, err)
	assert.False(t, status.InQueue)
	assert.True(t, status.Matched)
	assert.NotEmpty(t, status.ActiveSession)
}

// Concurrent joins must never place a user into two active sessions.
func TestConcurrentJoinsExclusive(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	const n = 16
	clerks := make([]string, 0, n)
	for i := 0; i < n; i++ {
		clerk := fmt.Sprintf("user%02d", i)
		env.addUser(t, clerk, "other", models.PreferenceBoth)
		clerks = append(clerks, clerk)
	}

	var wg sync.WaitGroup
	for _, clerk := range clerks {
		wg.Add(1)
		go func(c string) {
			defer wg.Done()
			if _, err := env.queue.Join(ctx, c); err != nil {
				t.Errorf("join %s: %v", c, err)
			}
		}(clerk)
	}
	wg.Wait()

	// Every user sits in at most one active speed dating session, and
	// every session has two distinct members.
	seen := map[string]string{}
	for _, clerk := range clerks {
		userID := "u_" + clerk
		sessions, err := env.store.ListSessionsForUser(ctx, userID)
		require.NoError(t, err)
		var active int
		for _, s := range sessions {
			if s.Status != models.StatusEnded {
				active++
				require.NotEqual(t, s.User1ID, s.User2ID)
				if prev, ok := seen[userID]; ok {
					assert.Equal(t, prev, s.SessionID, "user %s in two sessions", userID)
				}
				seen[userID] = s.SessionID
			}
		}
		assert.LessOrEqual(t, active, 1, "user %s has %d active sessions", userID, active)

		// A user is never simultaneously queued and in a session.
		queued, err := env.store.IsQueued(ctx, userID)
		require.NoError(t, err)
		if active > 0 {
			assert.False(t, queued, "user %s is queued while in a session", userID)
		}
	}
}
