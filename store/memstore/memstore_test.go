package memstore

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ember_server/models"
	"ember_server/store"
)

func TestClaimQueueEntryExactlyOnce(t *testing.T) {
	s := New()
	ctx := context.Background()
	require.NoError(t, s.Enqueue(ctx, models.QueueEntry{UserID: "u1", EnqueuedAt: 1}))

	var wins int64
	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			won, err := s.ClaimQueueEntry(ctx, "u1")
			require.NoError(t, err)
			if won {
				atomic.AddInt64(&wins, 1)
			}
		}()
	}
	wg.Wait()

	assert.EqualValues(t, 1, wins)
	queued, err := s.IsQueued(ctx, "u1")
	require.NoError(t, err)
	assert.False(t, queued)
}

func TestDequeueIdempotent(t *testing.T) {
	s := New()
	ctx := context.Background()
	require.NoError(t, s.Enqueue(ctx, models.QueueEntry{UserID: "u1", EnqueuedAt: 1}))
	require.NoError(t, s.Dequeue(ctx, "u1"))
	require.NoError(t, s.Dequeue(ctx, "u1"))
}

func TestPatchSessionClearFlags(t *testing.T) {
	s := New()
	ctx := context.Background()
	yes := true
	require.NoError(t, s.CreateSession(ctx, models.ChatSession{
		SessionID:          "s1",
		User1ID:            "u1",
		User2ID:            "u2",
		Phase:              models.PhaseSpeedDating,
		Status:             models.StatusWaitingReveal,
		User1WantsContinue: &yes,
		RevealStartedAt:    123,
	}))

	updated, err := s.PatchSession(ctx, "s1", models.SessionPatch{
		ClearUser1Continue: true,
		ClearRevealStarted: true,
	})
	require.NoError(t, err)
	assert.Nil(t, updated.User1WantsContinue)
	assert.Zero(t, updated.RevealStartedAt)
}

func TestPatchSessionIfNotEndedGuard(t *testing.T) {
	s := New()
	ctx := context.Background()
	require.NoError(t, s.CreateSession(ctx, models.ChatSession{
		SessionID: "s1",
		Phase:     models.PhaseSpeedDating,
		Status:    models.StatusEnded,
		EndedAt:   123,
	}))

	waiting := models.StatusWaitingReveal
	current, applied, err := s.PatchSessionIfNotEnded(ctx, "s1", models.SessionPatch{Status: &waiting})
	require.NoError(t, err)
	assert.False(t, applied)
	assert.Equal(t, models.StatusEnded, current.Status)

	_, _, err = s.PatchSessionIfNotEnded(ctx, "missing", models.SessionPatch{Status: &waiting})
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestPromoteSessionExactlyOnce(t *testing.T) {
	s := New()
	ctx := context.Background()
	require.NoError(t, s.CreateSession(ctx, models.ChatSession{
		SessionID: "s1",
		Phase:     models.PhaseSpeedDating,
		Status:    models.StatusWaitingReveal,
	}))

	extended := models.PhaseExtended
	active := models.StatusActive
	patch := models.SessionPatch{Phase: &extended, Status: &active}

	var wins int64
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, won, err := s.PromoteSession(ctx, "s1", patch)
			require.NoError(t, err)
			if won {
				atomic.AddInt64(&wins, 1)
			}
		}()
	}
	wg.Wait()

	assert.EqualValues(t, 1, wins)
	sess, err := s.GetSession(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, models.PhaseExtended, sess.Phase)
	assert.Equal(t, models.StatusActive, sess.Status)
}

func TestGetMissingReturnsNotFound(t *testing.T) {
	s := New()
	ctx := context.Background()

	_, err := s.GetUser(ctx, "nobody")
	assert.ErrorIs(t, err, store.ErrNotFound)
	_, err = s.GetSession(ctx, "nosession")
	assert.ErrorIs(t, err, store.ErrNotFound)
	_, err = s.GetMatch(ctx, "nomatch")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestListMessagesOrderAndCap(t *testing.T) {
	s := New()
	ctx := context.Background()
	for i := 0; i < 5; i++ {
		require.NoError(t, s.InsertMessage(ctx, models.Message{
			ChatSessionID: "s1",
			MessageID:     string(rune('a' + i)),
			CreatedAt:     int64(100 + i),
		}))
	}

	asc, err := s.ListMessages(ctx, "s1", 3)
	require.NoError(t, err)
	require.Len(t, asc, 3)
	// Most recent three, oldest first.
	assert.EqualValues(t, 102, asc[0].CreatedAt)
	assert.EqualValues(t, 104, asc[2].CreatedAt)

	desc, err := s.ListRecentMessages(ctx, "s1", 2)
	require.NoError(t, err)
	require.Len(t, desc, 2)
	assert.EqualValues(t, 104, desc[0].CreatedAt)
}
