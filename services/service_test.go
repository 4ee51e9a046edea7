package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"ember_server/models"
	"ember_server/store/memstore"
)

// testEnv wires every service against a fresh in-memory store. The hub
// is nil; Publish is a no-op without one.
type testEnv struct {
	store      *memstore.Store
	users      *UserService
	queue      *QueueService
	decisions  *DecisionService
	chat       *ChatService
	matches    *MatchService
	encryption *EncryptionService
	reports    *ReportService
}

func newTestEnv() *testEnv {
	st := memstore.New()
	decisions := &DecisionService{Store: st}
	return &testEnv{
		store:      st,
		users:      &UserService{Store: st},
		queue:      &QueueService{Store: st},
		decisions:  decisions,
		chat:       &ChatService{Store: st, Decisions: decisions},
		matches:    &MatchService{Store: st},
		encryption: &EncryptionService{Store: st},
		reports:    &ReportService{Store: st},
	}
}

// addUser seeds a user whose clerk ID doubles as a readable handle.
func (e *testEnv) addUser(t *testing.T, clerkID, gender, preference string) models.User {
	t.Helper()
	user := models.User{
		UserID:           "u_" + clerkID,
		ClerkID:          clerkID,
		Email:            clerkID + "@example.com",
		Name:             clerkID,
		Age:              25,
		Gender:           gender,
		GenderPreference: preference,
		CreatedAt:        nowMillis(),
		UpdatedAt:        nowMillis(),
	}
	require.NoError(t, e.store.CreateUser(context.Background(), user))
	return user
}

// pair runs two users through the queue and returns their session ID.
func (e *testEnv) pair(t *testing.T, clerkA, clerkB string) string {
	t.Helper()
	ctx := context.Background()
	first, err := e.queue.Join(ctx, clerkA)
	require.NoError(t, err)
	require.False(t, first.Matched)

	second, err := e.queue.Join(ctx, clerkB)
	require.NoError(t, err)
	require.True(t, second.Matched)
	return second.SessionID
}

// promote takes a paired session all the way to extended via mutual
// continue votes.
func (e *testEnv) promote(t *testing.T, clerkA, clerkB, sessionID string) string {
	t.Helper()
	ctx := context.Background()
	_, err := e.decisions.MakeDecision(ctx, clerkA, sessionID, true)
	require.NoError(t, err)
	result, err := e.decisions.MakeDecision(ctx, clerkB, sessionID, true)
	require.NoError(t, err)
	require.True(t, result.Matched)
	return result.MatchID
}
