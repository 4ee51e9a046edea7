package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"ember_server/models"
	"ember_server/store"
)

func nowMillis() int64 {
	return time.Now().UnixMilli()
}

func boolPtr(v bool) *bool    { return &v }
func int64Ptr(v int64) *int64 { return &v }
func strPtr(v string) *string { return &v }

// resolveUser maps the auth-provider subject to the internal user record.
func resolveUser(ctx context.Context, st store.Store, clerkID string) (models.User, error) {
	if clerkID == "" {
		return models.User{}, ErrUnauthenticated
	}
	user, err := st.GetUserByClerkID(ctx, clerkID)
	if errors.Is(err, store.ErrNotFound) {
		return models.User{}, ErrAccountNotSynced
	}
	if err != nil {
		return models.User{}, fmt.Errorf("failed to look up user: %w", err)
	}
	return user, nil
}

// loadSessionFor fetches a session and verifies the caller participates.
func loadSessionFor(ctx context.Context, st store.Store, user models.User, sessionID string) (models.ChatSession, error) {
	session, err := st.GetSession(ctx, sessionID)
	if errors.Is(err, store.ErrNotFound) {
		return models.ChatSession{}, fmt.Errorf("chat session: %w", ErrNotFound)
	}
	if err != nil {
		return models.ChatSession{}, fmt.Errorf("failed to load session: %w", err)
	}
	if !session.HasParticipant(user.UserID) {
		log.Printf("user %s attempted to access session %s without membership", user.UserID, sessionID)
		return models.ChatSession{}, ErrUnauthorized
	}
	return session, nil
}
